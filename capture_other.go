//go:build !unix

package gmk

import "os"

// redirectStdout swaps the os.Stdout file where descriptor duplication
// is unavailable. Only Go-level printing is captured on these platforms,
// and swapping back cannot fail.
func redirectStdout(f *os.File) (func() error, error) {
	saved := os.Stdout
	os.Stdout = f
	return func() error {
		os.Stdout = saved
		return nil
	}, nil
}
