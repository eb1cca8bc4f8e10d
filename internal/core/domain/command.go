package domain

// Command is an external process invocation, used by compilers that
// delegate to a tool such as sass.
type Command struct {
	Name string
	Args []string
	// Dir is the working directory. Empty means the current directory.
	Dir string
	// Env overrides variables of the inherited environment.
	Env map[string]string
}
