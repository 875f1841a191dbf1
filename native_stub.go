//go:build !cgo || windows

package gmk

import "errors"

// Init binds the hosting make process, which needs cgo on a unix-like
// platform. This stub keeps pure-Go builds compiling; New over a Host
// still works everywhere.
func Init() (*Make, error) {
	return nil, errors.New("gmk: the native make bridge requires cgo on a unix-like platform")
}
