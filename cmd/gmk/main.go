// Command gmk is a developer tool for make plugins built on the gmk
// module: an interactive session against an emulated make for trying
// exported functions, plus helpers for the escaping and expansion rules.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "gmk:", err)
		os.Exit(1)
	}
}
