package gmk

// Variable names the bridge reserves in make's namespace.
const (
	// LastErrorVariable holds the message of the most recent failed
	// function call. The next successful call undefines it.
	LastErrorVariable = "GMK_LAST_ERROR"

	// StacktraceVariable turns on failure diagnostics: while it expands
	// to a non-empty value, a failed call also logs detail, including
	// the goroutine stack for panics, to stderr.
	StacktraceVariable = "GMK_PRINT_STACKTRACE"

	// LibrariesVariable accumulates the names of extension libraries
	// loaded through the gmk-library function.
	LibrariesVariable = "GMK_LIBRARIES"
)

// reportFailure surfaces a failed call to the makefile: the message is
// stored fully escaped in GMK_LAST_ERROR, so it survives verbatim,
// multi-line and all, and expands to itself. stack is the recovered
// goroutine stack when the failure was a panic.
func (m *Make) reportFailure(name string, err error, stack []byte) {
	if m.Expand("$("+StacktraceVariable+")") != "" {
		entry := m.log.WithField("function", name).WithError(err)
		if len(stack) > 0 {
			entry = entry.WithField("stack", string(stack))
		}
		entry.Error("function call failed")
	}
	m.Eval("define " + LastErrorVariable + "\n" + EscapeAll(err.Error()) + "\nendef")
}

// reportSuccess clears the error variable after a completed call.
func (m *Make) reportSuccess() {
	m.Eval("undefine " + LastErrorVariable)
}
