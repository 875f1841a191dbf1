package gmk

import "sort"

// Function is a callable exported to make, together with the calling
// convention it was registered under. Instances are built by ExportSpec
// and owned by a Registry afterwards.
type Function struct {
	Name     string
	MinArgs  int
	MaxArgs  int // 0 means unbounded
	NoExpand bool

	call func(args []string) (any, error)
}

// Registry maps exported names to functions. Each Make owns its own
// Registry, so a fresh Make in a test starts empty. Make serializes all
// host calls on one logical thread: the registry is written during setup
// and read during dispatch, never concurrently, so it takes no locks.
type Registry struct {
	funcs map[string]*Function
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]*Function)}
}

// Insert adds fn under its name. Inserting a name that is already
// present silently replaces the earlier entry.
func (r *Registry) Insert(fn *Function) {
	r.funcs[fn.Name] = fn
}

// Lookup returns the function registered under name.
func (r *Registry) Lookup(name string) (*Function, bool) {
	fn, ok := r.funcs[name]
	return fn, ok
}

// Len returns the number of registered functions.
func (r *Registry) Len() int {
	return len(r.funcs)
}

// Names returns all registered names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
