// Package platform holds the few operating system differences the shell
// cares about: permission bits and the pseudo filesystems cd must not enter.
package platform
