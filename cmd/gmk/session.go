package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/feather-lang/gmk"
	_ "github.com/feather-lang/gmk/library"
	"github.com/feather-lang/gmk/maketest"
)

// standardLibraries is what a fresh session loads through the same
// gmk-library path a makefile would use.
const standardLibraries = "calc uuid yaml color state"

// newSession builds a bridge over a fresh make emulation with the
// standard packs installed, optionally preseeding variables from a YAML
// file of name: value pairs.
func newSession(varsFile string) (*gmk.Make, *maketest.Host, error) {
	host := maketest.NewHost()
	m := gmk.New(host)

	m.Expand("$(gmk-library " + standardLibraries + ")")
	if msg, err := m.Vars.Get(gmk.LastErrorVariable); err != nil {
		return nil, nil, err
	} else if msg != "" {
		return nil, nil, fmt.Errorf("loading libraries: %s", msg)
	}

	if varsFile != "" {
		raw, err := os.ReadFile(varsFile)
		if err != nil {
			return nil, nil, err
		}
		var vars map[string]any
		if err := yaml.Unmarshal(raw, &vars); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", varsFile, err)
		}
		for name, value := range vars {
			if err := m.Vars.SetFlavor(name, value, gmk.FlavorSimple); err != nil {
				return nil, nil, fmt.Errorf("%s: %w", varsFile, err)
			}
		}
	}

	host.ResetLog()
	return m, host, nil
}
