package gmk

import "errors"

// Flavor is a make variable's assignment semantics: recursive variables
// are re-expanded on every reference, simple ones were expanded once at
// assignment.
type Flavor string

const (
	FlavorRecursive Flavor = "recursive"
	FlavorSimple    Flavor = "simple"
	FlavorUndefined Flavor = "undefined"
)

// Origin classifies where a variable got its value. The strings are
// make's own, as reported by $(origin).
type Origin string

const (
	OriginUndefined   Origin = "undefined"
	OriginDefault     Origin = "default"
	OriginEnvironment Origin = "environment"
	OriginEnvOverride Origin = "environment override"
	OriginFile        Origin = "file"
	OriginCommandLine Origin = "command line"
	OriginOverride    Origin = "override"
	OriginAutomatic   Origin = "automatic"
)

// ErrBadFlavor is returned by SetFlavor for flavors other than recursive
// and simple.
var ErrBadFlavor = errors.New("flavor must be recursive or simple")

// Vars reads and writes make variables. It is built entirely on Eval and
// Expand, so variable state lives in make, never here. Reach it through
// a Make's Vars field.
type Vars struct {
	m *Make
}

// Get returns the expanded value of the variable, or "" if it is
// undefined. Computed names are not supported: name must be the plain
// variable name, no $(...) inside.
func (v *Vars) Get(name string) (string, error) {
	return v.GetDefault(name, "")
}

// GetDefault is Get with a fallback for undefined variables. The
// fallback is only used when the variable is actually undefined, never
// when it is defined to an empty value; with an empty fallback no
// definedness probe happens at all.
func (v *Vars) GetDefault(name, fallback string) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}
	ret := v.m.Expand("$(" + name + ")")
	if ret == "" && fallback != "" {
		defined, err := v.Defined(name)
		if err != nil {
			return "", err
		}
		if !defined {
			ret = fallback
		}
	}
	return ret, nil
}

// Value returns the variable's value verbatim, without expanding it, the
// way $(value NAME) does. For simple variables this is the same as Get.
func (v *Vars) Value(name string) (string, error) {
	return v.ValueDefault(name, "")
}

// ValueDefault is Value with a fallback for undefined variables, under
// the same rule as GetDefault: the fallback applies only when the
// variable is actually undefined, never when it holds an empty value,
// and an empty fallback skips the definedness probe.
func (v *Vars) ValueDefault(name, fallback string) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}
	ret := v.m.Expand("$(value " + name + ")")
	if ret == "" && fallback != "" {
		defined, err := v.Defined(name)
		if err != nil {
			return "", err
		}
		if !defined {
			ret = fallback
		}
	}
	return ret, nil
}

// Lookup returns the expanded value together with whether the variable
// is defined at all, distinguishing an empty value from no value.
func (v *Vars) Lookup(name string) (value string, defined bool, err error) {
	if err := checkName(name); err != nil {
		return "", false, err
	}
	value = v.m.Expand("$(" + name + ")")
	defined, err = v.Defined(name)
	if err != nil {
		return "", false, err
	}
	return value, defined, nil
}

// Set defines the variable as a recursive variable. The value is
// converted with Display and escaped so newlines survive; dollar signs
// are left alone and will expand on reference.
func (v *Vars) Set(name string, value any) error {
	return v.SetFlavor(name, value, FlavorRecursive)
}

// SetFlavor defines the variable with an explicit flavor. FlavorRecursive
// is the = assignment, FlavorSimple the := one; anything else is
// rejected with ErrBadFlavor.
func (v *Vars) SetFlavor(name string, value any, flavor Flavor) error {
	if err := checkName(name); err != nil {
		return err
	}
	var equals string
	switch flavor {
	case FlavorRecursive:
		equals = "="
	case FlavorSimple:
		equals = ":="
	default:
		return ErrBadFlavor
	}
	v.m.Eval("define " + name + " " + equals + "\n" + Escape(Display(value)) + "\nendef")
	return nil
}

// Append appends the value to the variable with the += assignment, which
// inserts a single space before the new text and keeps whatever flavor
// the variable already has.
func (v *Vars) Append(name string, value any) error {
	if err := checkName(name); err != nil {
		return err
	}
	v.m.Eval("define " + name + " +=\n" + Escape(Display(value)) + "\nendef")
	return nil
}

// Undefine removes the variable entirely, so its origin reverts to
// undefined. Undefining an undefined variable is fine.
func (v *Vars) Undefine(name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	v.m.Eval("undefine " + name)
	return nil
}

// Origin returns make's provenance classification for the variable.
func (v *Vars) Origin(name string) (Origin, error) {
	if err := checkName(name); err != nil {
		return "", err
	}
	return Origin(v.m.Expand("$(origin " + name + ")")), nil
}

// Flavor returns the variable's flavor: recursive, simple or undefined.
func (v *Vars) Flavor(name string) (Flavor, error) {
	if err := checkName(name); err != nil {
		return "", err
	}
	return Flavor(v.m.Expand("$(flavor " + name + ")")), nil
}

// Defined reports whether the variable is defined, meaning its origin is
// anything but undefined. A variable set to the empty string is defined.
func (v *Vars) Defined(name string) (bool, error) {
	origin, err := v.Origin(name)
	if err != nil {
		return false, err
	}
	return origin != OriginUndefined, nil
}
