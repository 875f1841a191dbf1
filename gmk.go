package gmk

import (
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/sirupsen/logrus"
)

// ErrUnknownFunction is the failure recorded in GMK_LAST_ERROR when make
// dispatches a name nothing is registered under.
var ErrUnknownFunction = errors.New("unknown function")

// Make is a connection to a make process: the exported-function registry,
// the variable facade and the two primitives everything else is built
// on, Eval and Expand. Construct one over any Host with New, or call
// Init from a loaded plugin to bind the real thing.
type Make struct {
	host  Host
	funcs *Registry
	log   *logrus.Logger

	// Vars reads and writes make variables.
	Vars *Vars
}

// New builds a bridge over host. Every Make owns a fresh Registry, so
// tests get isolated function tables, and carries the built-in
// gmk-library function from the start.
func New(host Host) *Make {
	m := &Make{
		host:  host,
		funcs: NewRegistry(),
		log:   newLogger(),
	}
	m.Vars = &Vars{m: m}
	registerBuiltins(m)
	return m
}

// Eval hands text to make to be parsed as makefile syntax, as if
// $(eval ...) had appeared in the makefile. Side effects only; make owns
// the parse and reports its own errors.
func (m *Make) Eval(text string) {
	m.host.Eval(text)
}

// Expand resolves every $(...) reference in text according to make's
// expansion rules and returns the result.
func (m *Make) Expand(text string) string {
	return m.host.Expand(text)
}

// Registry returns the function registry this bridge dispatches from.
func (m *Make) Registry() *Registry {
	return m.funcs
}

// Logger returns the bridge's diagnostic logger.
func (m *Make) Logger() *logrus.Logger {
	return m.log
}

// Invoke dispatches one function call from make: decode, look up, call,
// encode. It is the single path make enters the module through, and no
// failure may cross it back out; make would terminate the whole build.
// Errors and panics from the called function end up in GMK_LAST_ERROR
// and the call returns nil, which make reads as "no value". A completed
// call undefines GMK_LAST_ERROR after its result is encoded.
func (m *Make) Invoke(name string, args []string) (result *string) {
	defer func() {
		if r := recover(); r != nil {
			m.reportFailure(name, fmt.Errorf("panic: %v", r), debug.Stack())
			result = nil
		}
	}()

	fn, ok := m.funcs.Lookup(name)
	if !ok {
		m.reportFailure(name, fmt.Errorf("%w: %s", ErrUnknownFunction, name), nil)
		return nil
	}
	value, err := fn.call(args)
	if err != nil {
		m.reportFailure(name, err, nil)
		return nil
	}
	encoded, defined := encode(value)
	m.reportSuccess()
	if !defined {
		return nil
	}
	return &encoded
}
