package gmk

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// InferArgs in a FuncSpec bound means "derive this bound from the
// function signature".
const InferArgs = -1

// maxABIBound is the largest name length and argument count the make
// loadable-object ABI can carry.
const maxABIBound = 255

// Registration errors. These indicate a defect in the plugin itself, not
// a runtime condition; plugin setup is expected to treat them as fatal.
var (
	ErrNotAFunction  = errors.New("not a function")
	ErrNiladic       = errors.New("function must take at least one parameter")
	ErrArgBounds     = errors.New("max args less than min args")
	ErrTooManyArgs   = errors.New("too many args")
	ErrNameTooLong   = errors.New("name too long")
	ErrBadSignature  = errors.New("unsupported signature")
	ErrBadReturn     = errors.New("unsupported return values")
	ErrCaptureReturn = errors.New("capture function must not return a value")
)

// FuncSpec describes one function to export to make.
type FuncSpec struct {
	// Name is what makefiles call, as in $(name arg,...).
	Name string

	// Func is the Go function to run. Parameters are filled positionally
	// from the call's arguments: a plain parameter is required, a pointer
	// parameter is optional (nil when the caller omits it) and a trailing
	// variadic parameter soaks up the rest. Supported parameter types are
	// string, []byte, int, int64, float64 and bool. Func may return
	// nothing, a value, an error, or a value and an error.
	Func any

	// MinArgs and MaxArgs bound the argument count make will accept.
	// InferArgs derives a bound from Func's signature. MaxArgs 0 means
	// unbounded.
	MinArgs int
	MaxArgs int

	// NoExpand makes make pass arguments verbatim, $(references) and
	// all, instead of expanding them first.
	NoExpand bool

	// CaptureStdout runs Func with standard output redirected and uses
	// whatever it printed, minus trailing newlines, as the call's result.
	// Func may return only an error, or nothing.
	CaptureStdout bool
}

// Export registers fn as a make function under name, deriving the
// argument bounds from fn's signature. See FuncSpec for the supported
// shapes of fn.
func (m *Make) Export(name string, fn any) error {
	return m.ExportSpec(FuncSpec{Name: name, Func: fn, MinArgs: InferArgs, MaxArgs: InferArgs})
}

// ExportSpec validates spec, inserts the resulting function into the
// registry and registers it with make. Violating the ABI limits here
// would make the host process exit, so every bound is checked first and
// a registration error is returned instead.
func (m *Make) ExportSpec(spec FuncSpec) error {
	fn, err := buildFunction(spec)
	if err != nil {
		return fmt.Errorf("export %q: %w", spec.Name, err)
	}
	m.funcs.Insert(fn)
	m.host.AddFunction(fn.Name, m.Invoke, fn.MinArgs, fn.MaxArgs, fn.NoExpand)
	return nil
}

// MustExport is Export for plugin setup paths, where a registration
// failure is a programming defect. It panics on error.
func (m *Make) MustExport(name string, fn any) {
	if err := m.Export(name, fn); err != nil {
		panic(err)
	}
}

// paramKind classifies one parameter of an exported function for arity
// purposes.
type paramKind int

const (
	paramRequired paramKind = iota // plain parameter
	paramOptional                  // pointer parameter
	paramVariadic                  // trailing variadic parameter
)

// reduceArity folds a parameter-kind list into argument bounds. A max of
// -1 reports unbounded. Pure; buildFunction maps -1 onto make's
// 0-for-unbounded convention afterwards.
func reduceArity(kinds []paramKind) (min, max int) {
	for _, k := range kinds {
		switch k {
		case paramRequired:
			if max != -1 {
				max++
			}
			min++
		case paramOptional:
			if max != -1 {
				max++
			}
		case paramVariadic:
			max = -1
		}
	}
	return min, max
}

// classifyParams maps fn's parameter list to kinds, rejecting parameter
// types the argument converter cannot fill and required parameters that
// follow optional ones.
func classifyParams(fnType reflect.Type) ([]paramKind, error) {
	numIn := fnType.NumIn()
	kinds := make([]paramKind, 0, numIn)
	sawOptional := false
	for i := 0; i < numIn; i++ {
		paramType := fnType.In(i)
		if fnType.IsVariadic() && i == numIn-1 {
			if !convertible(paramType.Elem()) {
				return nil, fmt.Errorf("%w: parameter %d: ...%v", ErrBadSignature, i+1, paramType.Elem())
			}
			kinds = append(kinds, paramVariadic)
			continue
		}
		if paramType.Kind() == reflect.Ptr {
			if !convertible(paramType.Elem()) {
				return nil, fmt.Errorf("%w: parameter %d: %v", ErrBadSignature, i+1, paramType)
			}
			kinds = append(kinds, paramOptional)
			sawOptional = true
			continue
		}
		if !convertible(paramType) {
			return nil, fmt.Errorf("%w: parameter %d: %v", ErrBadSignature, i+1, paramType)
		}
		if sawOptional {
			return nil, fmt.Errorf("%w: required parameter %d after optional", ErrBadSignature, i+1)
		}
		kinds = append(kinds, paramRequired)
	}
	return kinds, nil
}

// convertible reports whether convertArg can produce t from an argument
// string.
func convertible(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.String, reflect.Int, reflect.Int64, reflect.Float64, reflect.Bool:
		return true
	case reflect.Slice:
		return t.Elem().Kind() == reflect.Uint8
	}
	return false
}

// buildFunction turns a FuncSpec into a registered Function: resolve the
// argument bounds, validate them against the ABI limits and wrap the
// callable.
func buildFunction(spec FuncSpec) (*Function, error) {
	fnVal := reflect.ValueOf(spec.Func)
	if !fnVal.IsValid() || fnVal.Kind() != reflect.Func {
		return nil, fmt.Errorf("%w: %T", ErrNotAFunction, spec.Func)
	}
	fnType := fnVal.Type()

	kinds, err := classifyParams(fnType)
	if err != nil {
		return nil, err
	}

	minArgs, maxArgs := spec.MinArgs, spec.MaxArgs
	if minArgs < 0 || maxArgs < 0 {
		guessedMin, guessedMax := reduceArity(kinds)
		if maxArgs < 0 {
			switch guessedMax {
			case 0:
				return nil, ErrNiladic
			case -1:
				maxArgs = 0
			default:
				maxArgs = guessedMax
			}
		}
		if minArgs < 0 {
			minArgs = guessedMin
		}
	}

	// make exits the whole process on a bad registration, so check
	// everything it would reject before touching the ABI.
	if maxArgs != 0 && maxArgs < minArgs {
		return nil, fmt.Errorf("%w: max %d, min %d", ErrArgBounds, maxArgs, minArgs)
	}
	if maxArgs > maxABIBound || minArgs > maxABIBound {
		return nil, ErrTooManyArgs
	}
	if len(spec.Name) > maxABIBound {
		return nil, ErrNameTooLong
	}

	call, err := wrapCall(fnVal)
	if err != nil {
		return nil, err
	}
	if spec.CaptureStdout {
		if fnType.NumOut() > 1 || (fnType.NumOut() == 1 && !isErrorType(fnType.Out(0))) {
			return nil, ErrCaptureReturn
		}
		call = wrapCapture(call)
	}

	return &Function{
		Name:     spec.Name,
		MinArgs:  minArgs,
		MaxArgs:  maxArgs,
		NoExpand: spec.NoExpand,
		call:     call,
	}, nil
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

func isErrorType(t reflect.Type) bool {
	return t.Implements(errorType)
}

// wrapCall wraps a Go function so the bridge can call it with the
// argument strings make passed. Return shapes other than none, T, error
// and (T, error) are rejected.
func wrapCall(fnVal reflect.Value) (func(args []string) (any, error), error) {
	fnType := fnVal.Type()

	numOut := fnType.NumOut()
	lastIsError := numOut > 0 && isErrorType(fnType.Out(numOut-1))
	if numOut > 2 || (numOut == 2 && !lastIsError) {
		return nil, ErrBadReturn
	}

	numIn := fnType.NumIn()
	isVariadic := fnType.IsVariadic()
	fixed := numIn
	if isVariadic {
		fixed = numIn - 1
	}

	return func(args []string) (any, error) {
		// Registered bounds normally keep the count in range, but an
		// explicit FuncSpec may declare wider bounds than the signature
		// carries.
		if len(args) > fixed && !isVariadic {
			return nil, fmt.Errorf("wrong number of arguments: at most %d, got %d", fixed, len(args))
		}

		callArgs := make([]reflect.Value, 0, len(args))
		for i := 0; i < len(args); i++ {
			var paramType reflect.Type
			if isVariadic && i >= fixed {
				paramType = fnType.In(numIn - 1).Elem()
			} else {
				paramType = fnType.In(i)
			}
			converted, err := convertArg(args[i], paramType)
			if err != nil {
				return nil, fmt.Errorf("argument %d: %w", i+1, err)
			}
			callArgs = append(callArgs, converted)
		}
		// Unfilled trailing parameters must all be optional.
		for i := len(args); i < fixed; i++ {
			paramType := fnType.In(i)
			if paramType.Kind() != reflect.Ptr {
				return nil, fmt.Errorf("wrong number of arguments: at least %d, got %d", i+1, len(args))
			}
			callArgs = append(callArgs, reflect.Zero(paramType))
		}

		results := fnVal.Call(callArgs)
		if lastIsError {
			if errVal := results[numOut-1]; !errVal.IsNil() {
				return nil, errVal.Interface().(error)
			}
			results = results[:numOut-1]
		}
		if len(results) == 0 {
			return nil, nil
		}
		return results[0].Interface(), nil
	}, nil
}

// wrapCapture runs call with standard output captured and returns the
// captured text, minus trailing newlines, as the result.
func wrapCapture(call func(args []string) (any, error)) func(args []string) (any, error) {
	return func(args []string) (any, error) {
		out, err := Capture(func() error {
			_, err := call(args)
			return err
		})
		if err != nil {
			return nil, err
		}
		return strings.TrimRight(out, "\n"), nil
	}
}

// convertArg converts one argument string to the parameter type. A
// pointer type marks an optional parameter that was supplied, so the
// converted value is returned by address.
func convertArg(s string, t reflect.Type) (reflect.Value, error) {
	switch t.Kind() {
	case reflect.String:
		return reflect.ValueOf(s), nil

	case reflect.Slice:
		return reflect.ValueOf([]byte(s)), nil

	case reflect.Int:
		n, err := strconv.Atoi(s)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("expected integer but got %q", s)
		}
		return reflect.ValueOf(n), nil

	case reflect.Int64:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("expected integer but got %q", s)
		}
		return reflect.ValueOf(n), nil

	case reflect.Float64:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("expected number but got %q", s)
		}
		return reflect.ValueOf(f), nil

	case reflect.Bool:
		switch strings.ToLower(s) {
		case "1", "true", "yes", "on":
			return reflect.ValueOf(true), nil
		case "0", "false", "no", "off", "":
			return reflect.ValueOf(false), nil
		default:
			return reflect.Value{}, fmt.Errorf("expected boolean but got %q", s)
		}

	case reflect.Ptr:
		elem, err := convertArg(s, t.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		ptr := reflect.New(t.Elem())
		ptr.Elem().Set(elem)
		return ptr, nil

	default:
		return reflect.Value{}, fmt.Errorf("unsupported parameter type: %v", t)
	}
}
