package gmk_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feather-lang/gmk"
)

// =============================================================================
// Arity Inference
// =============================================================================

func TestArityInference(t *testing.T) {
	cases := []struct {
		name     string
		fn       any
		min, max int
	}{
		{"one required", func(a string) string { return a }, 1, 1},
		{"two required", func(a, b string) string { return a + b }, 2, 2},
		{"required plus optional", func(a, b string, c *string) string { return a }, 2, 3},
		{"mixed optionals", func(a string, b *int, c *bool) string { return a }, 1, 3},
		{"only optional", func(a *string) string { return "" }, 0, 1},
		{"pure variadic", func(args ...string) string { return "" }, 0, 0},
		{"required plus variadic", func(a string, rest ...int) string { return a }, 1, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m, _ := newTestMake(t)
			require.NoError(t, m.Export("sample", tc.fn))

			fn, ok := m.Registry().Lookup("sample")
			require.True(t, ok)
			assert.Equal(t, tc.min, fn.MinArgs, "min args")
			assert.Equal(t, tc.max, fn.MaxArgs, "max args")
		})
	}
}

func TestExplicitBoundsSkipInference(t *testing.T) {
	m, _ := newTestMake(t)

	err := m.ExportSpec(gmk.FuncSpec{
		Name:    "padded",
		Func:    func(args ...string) string { return strings.Join(args, "|") },
		MinArgs: 2,
		MaxArgs: 5,
	})
	require.NoError(t, err)

	fn, ok := m.Registry().Lookup("padded")
	require.True(t, ok)
	assert.Equal(t, 2, fn.MinArgs)
	assert.Equal(t, 5, fn.MaxArgs)
}

// A function with no parameters cannot have bounds inferred, but explicit
// bounds register it fine. No makefile spelling reaches it with zero
// arguments: a bare $(now) reads the variable and $(now ) carries one
// empty argument, which the call wrapper rejects. Only a direct Invoke
// with no arguments lands.
func TestNiladicNeedsExplicitBounds(t *testing.T) {
	m, _ := newTestMake(t)

	err := m.Export("now", func() string { return "later" })
	require.ErrorIs(t, err, gmk.ErrNiladic)

	err = m.ExportSpec(gmk.FuncSpec{Name: "now", Func: func() string { return "later" }})
	require.NoError(t, err)

	assert.Equal(t, "", m.Expand("$(now)"), "bare reference is a variable lookup")

	result := m.Invoke("now", nil)
	require.NotNil(t, result)
	assert.Equal(t, "later", *result)

	assert.Equal(t, "", m.Expand("$(now )"))
	msg, _ := m.Vars.Get(gmk.LastErrorVariable)
	assert.Equal(t, "wrong number of arguments: at most 0, got 1", msg)
}

// =============================================================================
// Registration Validation
// =============================================================================

func TestRegistrationErrors(t *testing.T) {
	ident := func(s string) string { return s }

	cases := []struct {
		name string
		spec gmk.FuncSpec
		want error
	}{
		{
			"not a function",
			gmk.FuncSpec{Name: "num", Func: 42},
			gmk.ErrNotAFunction,
		},
		{
			"max below min",
			gmk.FuncSpec{Name: "bounds", Func: ident, MinArgs: 3, MaxArgs: 2},
			gmk.ErrArgBounds,
		},
		{
			"min beyond the wire limit",
			gmk.FuncSpec{Name: "wide", Func: ident, MinArgs: 256, MaxArgs: 0},
			gmk.ErrTooManyArgs,
		},
		{
			"name beyond the wire limit",
			gmk.FuncSpec{Name: strings.Repeat("n", 256), Func: ident, MinArgs: 1, MaxArgs: 1},
			gmk.ErrNameTooLong,
		},
		{
			"unsupported parameter type",
			gmk.FuncSpec{Name: "chan", Func: func(ch chan int) string { return "" }, MinArgs: gmk.InferArgs, MaxArgs: gmk.InferArgs},
			gmk.ErrBadSignature,
		},
		{
			"required after optional",
			gmk.FuncSpec{Name: "order", Func: func(a *string, b string) string { return b }, MinArgs: gmk.InferArgs, MaxArgs: gmk.InferArgs},
			gmk.ErrBadSignature,
		},
		{
			"too many return values",
			gmk.FuncSpec{Name: "multi", Func: func(a string) (int, string) { return 0, "" }, MinArgs: 1, MaxArgs: 1},
			gmk.ErrBadReturn,
		},
		{
			"capture with a value return",
			gmk.FuncSpec{Name: "cap", Func: func(a string) string { return a }, MinArgs: 1, MaxArgs: 1, CaptureStdout: true},
			gmk.ErrCaptureReturn,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m, _ := newTestMake(t)
			err := m.ExportSpec(tc.spec)
			require.ErrorIs(t, err, tc.want)
			assert.Contains(t, err.Error(), "export")

			_, registered := m.Registry().Lookup(tc.spec.Name)
			assert.False(t, registered, "a rejected spec must not register")
		})
	}
}

func TestMustExportPanics(t *testing.T) {
	m, _ := newTestMake(t)
	assert.Panics(t, func() { m.MustExport("bad", 42) })
}

// Registering a name again silently replaces the earlier function, which
// is what makes reloading a plugin idempotent.
func TestReRegistrationReplaces(t *testing.T) {
	m, _ := newTestMake(t)

	require.NoError(t, m.Export("version", func(s string) string { return "first" }))
	before := m.Registry().Len()
	require.NoError(t, m.Export("version", func(s string) string { return "second" }))

	assert.Equal(t, before, m.Registry().Len())
	assert.Equal(t, "second", m.Expand("$(version x)"))
}

// =============================================================================
// Argument Conversion
// =============================================================================

func TestBoolArgumentTokens(t *testing.T) {
	m, _ := newTestMake(t)
	require.NoError(t, m.Export("flag", func(b bool) string {
		if b {
			return "T"
		}
		return "F"
	}))

	truthy := []string{"1", "true", "yes", "on", "TRUE", "Yes", "ON"}
	for _, tok := range truthy {
		result := m.Invoke("flag", []string{tok})
		require.NotNil(t, result, "token %q", tok)
		assert.Equal(t, "T", *result, "token %q", tok)
	}

	falsy := []string{"0", "false", "no", "off", "OFF", ""}
	for _, tok := range falsy {
		result := m.Invoke("flag", []string{tok})
		require.NotNil(t, result, "token %q", tok)
		assert.Equal(t, "F", *result, "token %q", tok)
	}

	m.Invoke("flag", []string{"maybe"})
	msg, _ := m.Vars.Get(gmk.LastErrorVariable)
	assert.Equal(t, `argument 1: expected boolean but got "maybe"`, msg)
}

func TestNumericConversion(t *testing.T) {
	m, _ := newTestMake(t)
	require.NoError(t, m.Export("scale", func(n int64, factor float64) string {
		return gmk.Display(float64(n) * factor)
	}))

	assert.Equal(t, "15", m.Expand("$(scale 6,2.5)"))

	m.Invoke("scale", []string{"6", "fast"})
	msg, _ := m.Vars.Get(gmk.LastErrorVariable)
	assert.Equal(t, `argument 2: expected number but got "fast"`, msg)
}

func TestByteSliceArguments(t *testing.T) {
	m, _ := newTestMake(t)
	require.NoError(t, m.Export("len", func(raw []byte) int { return len(raw) }))

	assert.Equal(t, "5", m.Expand("$(len hello)"))
}

func TestResultEncodings(t *testing.T) {
	m, _ := newTestMake(t)

	require.NoError(t, m.Export("shout", func(s string) shoutText { return shoutText(s) }))
	assert.Equal(t, "hi!", m.Expand("$(shout hi)"))

	type pair struct{ A, B int }
	require.NoError(t, m.Export("pair", func(a, b int) pair { return pair{a, b} }))
	assert.Equal(t, "{1 2}", m.Expand("$(pair 1,2)"))
}
