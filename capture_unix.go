//go:build unix

package gmk

import (
	"os"

	"golang.org/x/sys/unix"
)

// redirectStdout points file descriptor 1 at f and returns the function
// that puts the original descriptor back, reporting when it cannot.
// os.Stdout wraps descriptor 1 the whole time, so Go-level printing
// follows the redirection without further plumbing.
func redirectStdout(f *os.File) (func() error, error) {
	saved, err := unix.Dup(1)
	if err != nil {
		return nil, err
	}
	unix.CloseOnExec(saved)
	if err := dup2(int(f.Fd()), 1); err != nil {
		unix.Close(saved)
		return nil, err
	}
	return func() error {
		err := dup2(saved, 1)
		unix.Close(saved)
		return err
	}, nil
}
