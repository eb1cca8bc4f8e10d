package domain

const (
	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for build artifacts (rw-r--r--).
	FilePerm = 0o644
)
