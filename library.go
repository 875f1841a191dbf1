package gmk

import (
	"fmt"
	"regexp"
	"strings"
)

// Library is an optional pack of make functions that a makefile pulls in
// with $(gmk-library name). Packs call RegisterLibrary from an init
// function; importing the pack's package is what makes it loadable.
type Library struct {
	// Name is what makefiles pass to gmk-library. Only identifier-shaped
	// names are loadable: letters, digits and underscores, not starting
	// with a digit.
	Name string

	// Install exports the pack's functions onto m. It runs once per
	// gmk-library mention, so exports must tolerate re-registration;
	// plain Export calls do, since re-inserting a name replaces it.
	Install func(m *Make) error
}

// The catalog is process-wide, like the set of importable packages it
// stands in for. Writes happen in init functions and reads on make's
// single dispatch thread, so it takes no lock.
var libraries = make(map[string]Library)

// RegisterLibrary adds lib to the catalog the gmk-library function
// consults. Registering a name again replaces the earlier entry.
func RegisterLibrary(lib Library) {
	libraries[lib.Name] = lib
}

var libraryName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// registerBuiltins exports the functions every bridge carries.
func registerBuiltins(m *Make) {
	m.MustExport("gmk-library", m.loadLibraries)
}

// loadLibraries implements $(gmk-library names): install every cataloged
// pack in the whitespace-separated list and append each one loaded to
// GMK_LIBRARIES. Names that are not identifier-shaped or not in the
// catalog are skipped without touching the error variable; a pack whose
// install fails is a real error.
func (m *Make) loadLibraries(names string) error {
	for _, name := range strings.Fields(names) {
		if !libraryName.MatchString(name) {
			continue
		}
		lib, ok := libraries[name]
		if !ok {
			continue
		}
		if err := lib.Install(m); err != nil {
			return fmt.Errorf("library %s: %w", name, err)
		}
		m.Eval(LibrariesVariable + " += " + name)
	}
	return nil
}
