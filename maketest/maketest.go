// Package maketest emulates enough of GNU make to exercise a gmk bridge
// without a make process: a variable table with flavors and origins, the
// directive subset the bridge emits through Eval, and an expander that
// dispatches registered functions. Plugins use it to unit test their
// exported functions; the gmk repl runs on it too.
//
// The emulation is deliberately loud. Directives the parser does not
// understand and expansion errors make itself would die on, such as
// unterminated references or argument counts outside a function's
// registered bounds, panic instead of being smoothed over.
package maketest

import (
	"fmt"
	"sort"
	"strings"

	"github.com/feather-lang/gmk"
)

// maxExpandDepth bounds recursive expansion, catching circular
// references like A = $(A).
const maxExpandDepth = 200

// Variable is one entry in the emulated variable table.
type Variable struct {
	Value  string
	Flavor gmk.Flavor
	Origin gmk.Origin
}

type function struct {
	fn       gmk.DispatchFunc
	minArgs  int
	maxArgs  int
	noExpand bool
}

// Host implements gmk.Host in memory. The zero value is not usable;
// construct with NewHost.
type Host struct {
	vars  map[string]Variable
	funcs map[string]function

	// Evals and Expands record every call in order, so tests can assert
	// exactly what reached make, or that nothing did.
	Evals   []string
	Expands []string
}

// NewHost returns an empty emulated make process.
func NewHost() *Host {
	return &Host{
		vars:  make(map[string]Variable),
		funcs: make(map[string]function),
	}
}

// SeedEnv defines name as an environment-origin variable, the way make
// imports the process environment at startup.
func (h *Host) SeedEnv(name, value string) {
	h.vars[name] = Variable{Value: value, Flavor: gmk.FlavorRecursive, Origin: gmk.OriginEnvironment}
}

// Lookup returns the table entry for name.
func (h *Host) Lookup(name string) (Variable, bool) {
	v, ok := h.vars[name]
	return v, ok
}

// Names returns the defined variable names, sorted.
func (h *Host) Names() []string {
	names := make([]string, 0, len(h.vars))
	for name := range h.vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResetLog clears the recorded Eval and Expand calls.
func (h *Host) ResetLog() {
	h.Evals, h.Expands = nil, nil
}

// AddFunction registers fn for dispatch during expansion.
func (h *Host) AddFunction(name string, fn gmk.DispatchFunc, minArgs, maxArgs int, noExpand bool) {
	h.funcs[name] = function{fn: fn, minArgs: minArgs, maxArgs: maxArgs, noExpand: noExpand}
}

// Eval parses text as the directive subset the bridge emits:
// define/endef blocks, undefine, and one-line =, :=, += and ?=
// assignments. Lines inside a define body that open a nested define
// deepen the block, mirroring make's own counting.
func (h *Host) Eval(text string) {
	h.Evals = append(h.Evals, text)
	lines := strings.Split(text, "\n")
	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		switch {
		case line == "" || strings.HasPrefix(line, "#"):

		case strings.HasPrefix(line, "define "):
			name, op := parseDefineHeader(line[len("define "):])
			var body []string
			depth := 1
			for i++; i < len(lines); i++ {
				inner := strings.TrimSpace(lines[i])
				if strings.HasPrefix(inner, "define ") {
					depth++
				} else if inner == "endef" {
					depth--
					if depth == 0 {
						break
					}
				}
				body = append(body, lines[i])
			}
			if depth != 0 {
				panic(fmt.Sprintf("maketest: missing endef for %q", name))
			}
			h.assign(name, op, strings.Join(body, "\n"))

		case strings.HasPrefix(line, "undefine "):
			delete(h.vars, strings.TrimSpace(line[len("undefine "):]))

		default:
			name, op, value, ok := parseAssignment(line)
			if !ok {
				panic(fmt.Sprintf("maketest: cannot parse %q", line))
			}
			h.assign(name, op, value)
		}
	}
}

// Expand resolves $-references in text the way make would and returns
// the result.
func (h *Host) Expand(text string) string {
	h.Expands = append(h.Expands, text)
	return h.expand(text, 0)
}

func parseDefineHeader(rest string) (name, op string) {
	fields := strings.Fields(rest)
	switch {
	case len(fields) == 1:
		return fields[0], "="
	case len(fields) == 2 && isAssignOp(fields[1]):
		return fields[0], fields[1]
	}
	panic(fmt.Sprintf("maketest: bad define header %q", rest))
}

func isAssignOp(s string) bool {
	switch s {
	case "=", ":=", "+=", "?=":
		return true
	}
	return false
}

// parseAssignment splits a one-line assignment on its first = sign,
// classifying the operator by the byte before it.
func parseAssignment(line string) (name, op, value string, ok bool) {
	idx := strings.IndexByte(line, '=')
	if idx <= 0 {
		return "", "", "", false
	}
	op = "="
	nameEnd := idx
	switch line[idx-1] {
	case ':':
		op, nameEnd = ":=", idx-1
	case '+':
		op, nameEnd = "+=", idx-1
	case '?':
		op, nameEnd = "?=", idx-1
	}
	name = strings.TrimSpace(line[:nameEnd])
	if name == "" {
		return "", "", "", false
	}
	return name, op, strings.TrimLeft(line[idx+1:], " \t"), true
}

func (h *Host) assign(name, op, value string) {
	switch op {
	case "=":
		h.vars[name] = Variable{Value: value, Flavor: gmk.FlavorRecursive, Origin: gmk.OriginFile}
	case ":=":
		h.vars[name] = Variable{Value: h.expand(value, 0), Flavor: gmk.FlavorSimple, Origin: gmk.OriginFile}
	case "?=":
		if _, ok := h.vars[name]; !ok {
			h.vars[name] = Variable{Value: value, Flavor: gmk.FlavorRecursive, Origin: gmk.OriginFile}
		}
	case "+=":
		old, ok := h.vars[name]
		if !ok {
			h.vars[name] = Variable{Value: value, Flavor: gmk.FlavorRecursive, Origin: gmk.OriginFile}
			return
		}
		// Simple variables expand the appended text now, recursive ones
		// keep it verbatim; both join with a single space.
		if old.Flavor == gmk.FlavorSimple {
			old.Value += " " + h.expand(value, 0)
		} else {
			old.Value += " " + value
		}
		h.vars[name] = old
	}
}

func (h *Host) expand(s string, depth int) string {
	if depth > maxExpandDepth {
		panic("maketest: expansion nested too deeply (circular variable reference?)")
	}
	var out strings.Builder
	i := 0
	for i < len(s) {
		c := s[i]
		if c != '$' {
			out.WriteByte(c)
			i++
			continue
		}
		if i+1 >= len(s) {
			out.WriteByte('$')
			break
		}
		switch next := s[i+1]; next {
		case '$':
			out.WriteByte('$')
			i += 2
		case '(', '{':
			end := matchDelim(s, i+1)
			if end < 0 {
				panic(fmt.Sprintf("maketest: unterminated variable reference in %q", s))
			}
			out.WriteString(h.resolve(s[i+2:end], depth))
			i = end + 1
		default:
			out.WriteString(h.resolve(string(next), depth))
			i += 2
		}
	}
	return out.String()
}

// matchDelim returns the index of the delimiter closing the one at open,
// honoring nesting of the same pair.
func matchDelim(s string, open int) int {
	opener := s[open]
	closer := byte(')')
	if opener == '{' {
		closer = '}'
	}
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case opener:
			depth++
		case closer:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// resolve handles the inside of one $(...) reference: a builtin, a
// registered function when the first word matches one, and a plain
// variable reference otherwise. Unknown function-looking text falls
// through to a variable lookup of the whole reference, which is what
// make does, and yields "" for names nobody defined.
func (h *Host) resolve(ref string, depth int) string {
	if ref == "" {
		return ""
	}
	// Function dispatch needs whitespace after the name: $(fn ) calls
	// fn with one empty argument, while a bare $(fn) reads the variable
	// fn no matter what functions are registered.
	if idx := strings.IndexAny(ref, " \t"); idx > 0 {
		name, rest := ref[:idx], strings.TrimLeft(ref[idx+1:], " \t")
		switch name {
		case "origin":
			return string(h.lookupVar(h.expand(rest, depth+1)).Origin)
		case "flavor":
			return string(h.lookupVar(h.expand(rest, depth+1)).Flavor)
		case "value":
			v, ok := h.vars[h.expand(rest, depth+1)]
			if !ok {
				return ""
			}
			return v.Value
		}
		if fn, ok := h.funcs[name]; ok {
			return h.dispatch(name, fn, splitArgs(rest), depth)
		}
	}
	name := h.expand(ref, depth+1)
	v, ok := h.vars[name]
	if !ok {
		return ""
	}
	if v.Flavor == gmk.FlavorRecursive {
		return h.expand(v.Value, depth+1)
	}
	return v.Value
}

func (h *Host) lookupVar(name string) Variable {
	if v, ok := h.vars[name]; ok {
		return v
	}
	return Variable{Flavor: gmk.FlavorUndefined, Origin: gmk.OriginUndefined}
}

// dispatch calls a registered function: enforce the registered bounds on
// the argument count, expand the arguments unless the function was
// registered no-expand, and substitute the result. A nil result
// substitutes as the empty string.
func (h *Host) dispatch(name string, fn function, args []string, depth int) string {
	if len(args) < fn.minArgs {
		panic(fmt.Sprintf("maketest: insufficient number of arguments (%d) to function %q", len(args), name))
	}
	if fn.maxArgs > 0 && len(args) > fn.maxArgs {
		panic(fmt.Sprintf("maketest: too many arguments (%d) to function %q", len(args), name))
	}
	if !fn.noExpand {
		for i, arg := range args {
			args[i] = h.expand(arg, depth+1)
		}
	}
	result := fn.fn(name, args)
	if result == nil {
		return ""
	}
	return *result
}

// splitArgs splits function arguments on commas outside any nested
// bracket pair. make does not trim the pieces and neither does this.
func splitArgs(s string) []string {
	var args []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '{':
			depth++
		case ')', '}':
			depth--
		case ',':
			if depth == 0 {
				args = append(args, s[start:i])
				start = i + 1
			}
		}
	}
	return append(args, s[start:])
}
