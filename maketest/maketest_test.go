package maketest_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feather-lang/gmk"
	"github.com/feather-lang/gmk/maketest"
)

// =============================================================================
// Directive Parsing
// =============================================================================

func TestAssignmentFlavors(t *testing.T) {
	h := maketest.NewHost()

	h.Eval("LAZY = $(WORD)")
	h.Eval("WORD := one")
	h.Eval("EAGER := $(WORD)")
	h.Eval("WORD := two")

	// Recursive assignments re-expand per reference, simple ones
	// snapshot at assignment time.
	assert.Equal(t, "two", h.Expand("$(LAZY)"))
	assert.Equal(t, "one", h.Expand("$(EAGER)"))

	lazy, ok := h.Lookup("LAZY")
	require.True(t, ok)
	assert.Equal(t, gmk.FlavorRecursive, lazy.Flavor)
	assert.Equal(t, "$(WORD)", lazy.Value)

	eager, ok := h.Lookup("EAGER")
	require.True(t, ok)
	assert.Equal(t, gmk.FlavorSimple, eager.Flavor)
	assert.Equal(t, "one", eager.Value)
}

func TestConditionalAssignment(t *testing.T) {
	h := maketest.NewHost()

	h.Eval("ONCE ?= first")
	h.Eval("ONCE ?= second")
	assert.Equal(t, "first", h.Expand("$(ONCE)"))
}

func TestAppendFollowsFlavor(t *testing.T) {
	h := maketest.NewHost()
	h.Eval("WORD := now")

	h.Eval("LAZY = $(WORD)")
	h.Eval("LAZY += $(WORD)")
	h.Eval("EAGER := $(WORD)")
	h.Eval("EAGER += $(WORD)")
	h.Eval("WORD := later")

	// The recursive variable kept both references live; the simple one
	// expanded both at assignment.
	assert.Equal(t, "later later", h.Expand("$(LAZY)"))
	assert.Equal(t, "now now", h.Expand("$(EAGER)"))

	h.Eval("FRESH += seeded")
	fresh, ok := h.Lookup("FRESH")
	require.True(t, ok)
	assert.Equal(t, "seeded", fresh.Value)
	assert.Equal(t, gmk.FlavorRecursive, fresh.Flavor)
}

func TestDefineBlocks(t *testing.T) {
	h := maketest.NewHost()

	h.Eval("define BODY\nline one\nline two\nendef")
	body, ok := h.Lookup("BODY")
	require.True(t, ok)
	assert.Equal(t, "line one\nline two", body.Value)
	assert.Equal(t, gmk.FlavorRecursive, body.Flavor)

	h.Eval("define SNAP :=\na  spaced\nendef")
	snap, ok := h.Lookup("SNAP")
	require.True(t, ok)
	assert.Equal(t, "a  spaced", snap.Value)
	assert.Equal(t, gmk.FlavorSimple, snap.Flavor)
}

func TestDefineNesting(t *testing.T) {
	h := maketest.NewHost()

	h.Eval("define OUTER\ndefine INNER\nvalue\nendef\nendef")
	outer, ok := h.Lookup("OUTER")
	require.True(t, ok)
	assert.Equal(t, "define INNER\nvalue\nendef", outer.Value)
}

func TestDefineMissingEndefPanics(t *testing.T) {
	h := maketest.NewHost()
	assert.PanicsWithValue(t, `maketest: missing endef for "BROKEN"`, func() {
		h.Eval("define BROKEN\nno terminator")
	})
}

func TestUnparseableLinePanics(t *testing.T) {
	h := maketest.NewHost()
	assert.PanicsWithValue(t, `maketest: cannot parse "this is not make"`, func() {
		h.Eval("this is not make")
	})
}

func TestCommentsAndBlanksIgnored(t *testing.T) {
	h := maketest.NewHost()
	h.Eval("# a comment\n\nX = 1\n")
	assert.Equal(t, "1", h.Expand("$(X)"))
}

func TestUndefine(t *testing.T) {
	h := maketest.NewHost()
	h.Eval("GONE = here")
	h.Eval("undefine GONE")

	_, ok := h.Lookup("GONE")
	assert.False(t, ok)
	assert.Equal(t, "undefined", h.Expand("$(origin GONE)"))

	// Undefining what was never defined parses fine.
	h.Eval("undefine NEVER_WAS")
}

// =============================================================================
// Expansion
// =============================================================================

func TestExpandBasics(t *testing.T) {
	h := maketest.NewHost()
	h.Eval("X = hi")
	h.Eval("N = X")

	assert.Equal(t, "plain", h.Expand("plain"))
	assert.Equal(t, "$", h.Expand("$$"))
	assert.Equal(t, "hi", h.Expand("$(X)"))
	assert.Equal(t, "hi", h.Expand("${X}"))
	assert.Equal(t, "ahib", h.Expand("a$Xb"), "single-character reference")
	assert.Equal(t, "hi", h.Expand("$($(N))"), "computed variable name")
	assert.Equal(t, "", h.Expand("$(UNDEFINED)"))
	assert.Equal(t, "tail$", h.Expand("tail$"), "lone trailing sigil")
}

func TestExpandUnterminatedPanics(t *testing.T) {
	h := maketest.NewHost()
	assert.PanicsWithValue(t, `maketest: unterminated variable reference in "$(OOPS"`, func() {
		h.Expand("$(OOPS")
	})
}

func TestExpandCircularPanics(t *testing.T) {
	h := maketest.NewHost()
	h.Eval("LOOP = $(LOOP)")
	assert.PanicsWithValue(t, "maketest: expansion nested too deeply (circular variable reference?)", func() {
		h.Expand("$(LOOP)")
	})
}

func TestBuiltinInspectors(t *testing.T) {
	h := maketest.NewHost()
	h.SeedEnv("FROM_ENV", "imported")
	h.Eval("INNER := deep")
	h.Eval("LAZY = $(INNER)")

	assert.Equal(t, "environment", h.Expand("$(origin FROM_ENV)"))
	assert.Equal(t, "file", h.Expand("$(origin LAZY)"))
	assert.Equal(t, "undefined", h.Expand("$(origin MISSING)"))
	assert.Equal(t, "recursive", h.Expand("$(flavor LAZY)"))
	assert.Equal(t, "simple", h.Expand("$(flavor INNER)"))
	assert.Equal(t, "undefined", h.Expand("$(flavor MISSING)"))
	assert.Equal(t, "$(INNER)", h.Expand("$(value LAZY)"))
	assert.Equal(t, "", h.Expand("$(value MISSING)"))
}

// =============================================================================
// Function Dispatch
// =============================================================================

func TestDispatchArgumentShapes(t *testing.T) {
	h := maketest.NewHost()

	var calls [][]string
	h.AddFunction("record", func(name string, args []string) *string {
		calls = append(calls, args)
		joined := strings.Join(args, "|")
		return &joined
	}, 0, 0, false)

	// Without whitespace after the name the reference is a variable
	// lookup, even while a function is registered under that name.
	h.Eval("record = just a variable")
	assert.Equal(t, "just a variable", h.Expand("$(record)"))
	assert.Empty(t, calls, "a bare reference must not dispatch")

	// A trailing space is a call carrying one empty argument.
	assert.Equal(t, "", h.Expand("$(record )"))
	// Arguments split on commas and keep their whitespace.
	assert.Equal(t, "a| b", h.Expand("$(record a, b)"))

	require.Len(t, calls, 2)
	assert.Equal(t, []string{""}, calls[0])
	assert.Equal(t, []string{"a", " b"}, calls[1])
}

func TestDispatchExpandsArguments(t *testing.T) {
	h := maketest.NewHost()
	h.Eval("WHO = world")

	echo := func(name string, args []string) *string { return &args[0] }
	h.AddFunction("echo", echo, 1, 1, false)
	h.AddFunction("echo-raw", echo, 1, 1, true)

	assert.Equal(t, "world", h.Expand("$(echo $(WHO))"))
	assert.Equal(t, "$(WHO)", h.Expand("$(echo-raw $(WHO))"))
}

func TestDispatchNilResultIsEmpty(t *testing.T) {
	h := maketest.NewHost()
	h.AddFunction("void", func(name string, args []string) *string { return nil }, 0, 0, false)
	assert.Equal(t, "pre/post", h.Expand("pre$(void )/post"))
}

func TestDispatchEnforcesBounds(t *testing.T) {
	h := maketest.NewHost()
	pick := func(name string, args []string) *string { return &args[0] }
	h.AddFunction("two", pick, 2, 2, false)

	assert.Equal(t, "a", h.Expand("$(two a,b)"))
	assert.PanicsWithValue(t, `maketest: insufficient number of arguments (1) to function "two"`, func() {
		h.Expand("$(two a)")
	})
	assert.PanicsWithValue(t, `maketest: too many arguments (3) to function "two"`, func() {
		h.Expand("$(two a,b,c)")
	})
}

func TestSplitArgsHonorsNesting(t *testing.T) {
	h := maketest.NewHost()
	h.Eval("PAIR = x,y")

	var got []string
	h.AddFunction("collect", func(name string, args []string) *string {
		got = args
		return nil
	}, 0, 0, false)

	// The comma inside the nested reference does not split; the expanded
	// comma arrives inside a single argument.
	h.Expand("$(collect $(PAIR),z)")
	assert.Equal(t, []string{"x,y", "z"}, got)
}

func TestUnknownFunctionNameIsAVariable(t *testing.T) {
	h := maketest.NewHost()
	h.Eval("greet world = defined-as-variable")

	// No function registered: the whole reference is looked up as one
	// variable name, which is make's behavior.
	assert.Equal(t, "defined-as-variable", h.Expand("$(greet world)"))
	assert.Equal(t, "", h.Expand("$(no such function)"))
}

// =============================================================================
// Call Log
// =============================================================================

func TestCallLogRecordsAndResets(t *testing.T) {
	h := maketest.NewHost()

	h.Eval("A = 1")
	h.Expand("$(A)")
	assert.Equal(t, []string{"A = 1"}, h.Evals)
	assert.Equal(t, []string{"$(A)"}, h.Expands)

	h.ResetLog()
	assert.Empty(t, h.Evals)
	assert.Empty(t, h.Expands)

	_, ok := h.Lookup("A")
	assert.True(t, ok, "resetting the log keeps the variable table")
}

func TestNamesSorted(t *testing.T) {
	h := maketest.NewHost()
	h.Eval("ZEBRA = z")
	h.Eval("ALPHA = a")
	h.SeedEnv("MIDDLE", "m")

	assert.Equal(t, []string{"ALPHA", "MIDDLE", "ZEBRA"}, h.Names())
}
