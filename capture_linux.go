//go:build linux

package gmk

import "golang.org/x/sys/unix"

// dup2 on linux goes through dup3, which exists on every architecture.
func dup2(oldfd, newfd int) error {
	return unix.Dup3(oldfd, newfd, 0)
}
