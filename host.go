package gmk

// DispatchFunc is the callback a Host fires when make invokes a
// registered function. The argument strings arrive expanded or verbatim
// depending on the function's no-expand flag. A nil result tells make the
// function produced no value, which is different from an empty string.
type DispatchFunc func(name string, args []string) *string

// Host is the connection to a make process. The real implementation binds
// the loadable-object API of the process the plugin was loaded into;
// maketest provides an in-memory one for tests and the repl.
//
// Make serializes all calls on one logical thread, and callbacks may
// reenter: a dispatched function is allowed to call Eval or Expand while
// make is still inside the expansion that triggered it. Implementations
// must tolerate that reentrancy and need no locking.
type Host interface {
	// Eval hands text to make to be parsed as makefile syntax. Side
	// effects only; syntax errors are make's to deal with.
	Eval(text string)

	// Expand runs make's macro expansion over text and returns the
	// result.
	Expand(text string) string

	// AddFunction registers fn with make under name. maxArgs 0 means
	// unbounded. When noExpand is set make passes arguments verbatim.
	// Bounds are validated by the caller beforehand; make aborts the
	// whole process on a bad registration.
	AddFunction(name string, fn DispatchFunc, minArgs, maxArgs int, noExpand bool)
}
