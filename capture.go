package gmk

import (
	"fmt"
	"io"
	"os"
)

// Capture runs fn with standard output redirected into a temporary file
// and returns everything fn wrote there. The original stdout is restored
// on every exit path, including a panic out of fn. On unix the
// redirection happens at the file descriptor level, so output printed by
// C code ends up in the capture too. When fn fails its output is
// discarded and only the error returns; a restore that fails surfaces as
// Capture's error unless fn already failed.
func Capture(fn func() error) (out string, err error) {
	f, err := os.CreateTemp("", "gmk-capture-*")
	if err != nil {
		return "", err
	}
	defer func() {
		f.Close()
		os.Remove(f.Name())
	}()

	restore, err := redirectStdout(f)
	if err != nil {
		return "", err
	}
	defer func() {
		if rerr := restore(); rerr != nil && err == nil {
			out, err = "", fmt.Errorf("restore stdout: %w", rerr)
		}
	}()

	if err := fn(); err != nil {
		return "", err
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	raw, err := io.ReadAll(f)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
