package platform

import (
	"os"
	"path/filepath"
	"runtime"
)

// Chmod sets file permissions. On Windows this is a no-op because Windows
// does not support Unix-style permission bits.
func Chmod(path string, mode os.FileMode) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	return os.Chmod(path, mode)
}

// pseudoRoots are kernel-backed trees on Linux.
var pseudoRoots = []string{"/proc", "/sys", "/dev"}

// IsProtected reports whether dir is a pseudo filesystem root that the shell
// refuses to enter. dir should already be absolute and symlink-resolved.
func IsProtected(dir string) bool {
	if runtime.GOOS != "linux" {
		return false
	}
	dir = filepath.Clean(dir)
	for _, root := range pseudoRoots {
		if dir == root {
			return true
		}
	}
	return false
}
