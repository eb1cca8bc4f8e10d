package domain

// Environment is the build mode. It is resolved once at process start and
// passed explicitly to the pipeline and every compiler.
type Environment struct {
	Production bool
}

// Mode returns "production" or "development".
func (e Environment) Mode() string {
	if e.Production {
		return "production"
	}
	return "development"
}
