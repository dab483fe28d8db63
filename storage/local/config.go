package local

import "os"

// Permissions for the scratch directory and the files written into it.
const (
	DirPerm  os.FileMode = 0o750
	FilePerm os.FileMode = 0o600
)
