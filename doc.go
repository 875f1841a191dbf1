// Package gmk builds GNU make plugins in Go.
//
// # Overview
//
// gmk bridges Go code to make's loadable-object API, so a shared object
// built from Go can extend make from the inside. It provides:
//
//   - First-class make functions backed by plain Go functions
//   - Calling conventions derived from the Go signature
//   - A faithful variable interface: flavors, origins, escaping
//   - Failure containment: a broken call never kills the build
//   - An in-memory make emulation for tests (package maketest)
//
// # Quick Start
//
//	import (
//	    "github.com/feather-lang/gmk"
//	)
//
//	//export hello_gmk_setup
//	func hello_gmk_setup(flocp *C.gmk_floc) C.int {
//	    m, err := gmk.Init()
//	    if err != nil {
//	        return 0
//	    }
//	    m.MustExport("hello", func(name string) string {
//	        return "Hello, " + name + "!"
//	    })
//	    return 1
//	}
//
// Built with -buildmode=c-shared into hello.so and loaded from a
// makefile with `load ./hello.so`, the function is a normal make
// function:
//
//	greeting := $(hello world)
//
// examples/hello in the source tree is the complete plugin.
//
// # Exporting Functions
//
// Export accepts plain Go functions and derives the argument bounds
// make enforces from the signature:
//
//	// Two required arguments
//	m.Export("concat", func(a, b string) string { return a + b })
//
//	// One required, one optional: $(greet world) and $(greet world,Hi)
//	m.Export("greet", func(name string, greeting *string) string { ... })
//
//	// Unbounded: $(sum 1,2,3)
//	m.Export("sum", func(nums ...int) int { ... })
//
//	// Errors surface in $(GMK_LAST_ERROR), never as a crash
//	m.Export("div", func(a, b int) (int, error) { ... })
//
// ExportSpec controls the rest: explicit bounds, no-expand mode for
// macro-like functions that want raw $(text), and stdout capture for
// functions that print their result instead of returning it.
//
// # Variables
//
// The Vars facade reads and writes make variables with make's own
// semantics:
//
//	m.Vars.Set("NAME", "value")                         // NAME = value
//	m.Vars.SetFlavor("NAME", "now", gmk.FlavorSimple)   // NAME := now
//	m.Vars.Append("CFLAGS", "-O2")
//	v, _ := m.Vars.Get("NAME")
//	if defined, _ := m.Vars.Defined("NAME"); defined { ... }
//
// Multi-line values round-trip through define blocks; Escape and
// EscapeAll implement the quoting rules.
//
// # Value Conversions
//
// Arguments arrive as the strings make passes and convert per
// parameter type:
//
//   - string, []byte → verbatim
//   - int, int64, float64 → parsed, bad numbers are call errors
//   - bool → "1"/"true"/"yes"/"on" and "0"/"false"/"no"/"off"/""
//
// Results convert the other way:
//
//   - nil and false → no value (undefined, not empty)
//   - true → "1"
//   - string, []byte → verbatim
//   - encoding.TextMarshaler → its text
//   - anything else → fmt %v
//
// # Testing
//
// Package maketest emulates make in memory, so exported functions and
// variable handling are testable without a make process:
//
//	host := maketest.NewHost()
//	m := gmk.New(host)
//	m.Export("twice", func(s string) string { return s + s })
//	got := m.Expand("$(twice ab)") // "abab"
package gmk
