//go:build cgo && !windows

package gmk

/*
#cgo LDFLAGS: -ldl

#include <dlfcn.h>
#include <stdlib.h>

// The slice of gnumake.h this bridge needs, restated because make only
// ships the header with its own source tree.
typedef struct {
	const char *filenm;
	unsigned long lineno;
	unsigned long offset;
} gmk_floc;

typedef char *(*gmk_func_ptr)(const char *name, unsigned int argc, char **argv);

#define GMK_FUNC_DEFAULT  0x00
#define GMK_FUNC_NOEXPAND 0x01

typedef void (*gmk_eval_fn)(const char *buffer, const gmk_floc *floc);
typedef char *(*gmk_expand_fn)(const char *str);
typedef void (*gmk_add_function_fn)(const char *name, gmk_func_ptr func,
	unsigned int min_args, unsigned int max_args, unsigned int flags);
typedef char *(*gmk_alloc_fn)(unsigned int size);
typedef void (*gmk_free_fn)(char *s);

static gmk_eval_fn         gmk_eval_p;
static gmk_expand_fn       gmk_expand_p;
static gmk_add_function_fn gmk_add_function_p;
static gmk_alloc_fn        gmk_alloc_p;
static gmk_free_fn         gmk_free_p;

// resolveGmk looks the API up in the running process image, which is
// make itself once the plugin has been pulled in by a load directive.
// Returns NULL on success and a message otherwise.
static inline const char *resolveGmk(void) {
	void *self = dlopen(NULL, RTLD_NOW | RTLD_GLOBAL);
	if (!self) {
		return dlerror();
	}
	gmk_eval_p         = (gmk_eval_fn)dlsym(self, "gmk_eval");
	gmk_expand_p       = (gmk_expand_fn)dlsym(self, "gmk_expand");
	gmk_add_function_p = (gmk_add_function_fn)dlsym(self, "gmk_add_function");
	gmk_alloc_p        = (gmk_alloc_fn)dlsym(self, "gmk_alloc");
	gmk_free_p         = (gmk_free_fn)dlsym(self, "gmk_free");
	if (!gmk_eval_p || !gmk_expand_p || !gmk_add_function_p || !gmk_alloc_p || !gmk_free_p) {
		return "gmk_* symbols not found; the process is not GNU make 4.0 or newer";
	}
	return NULL;
}

char *gmkGoDispatch(char *name, unsigned int argc, char **argv);

static inline void callGmkEval(const char *s) { gmk_eval_p(s, NULL); }
static inline char *callGmkExpand(const char *s) { return gmk_expand_p(s); }
static inline void callGmkAddFunction(const char *name, unsigned int min_args,
	unsigned int max_args, unsigned int flags) {
	gmk_add_function_p(name, (gmk_func_ptr)gmkGoDispatch, min_args, max_args, flags);
}
static inline char *callGmkAlloc(unsigned int size) { return gmk_alloc_p(size); }
static inline void callGmkFree(char *s) { gmk_free_p(s); }
*/
import "C"

import (
	"fmt"
	"unsafe"
)

// One make process per plugin: the trampoline make calls back through
// has no user data pointer, so the bound bridge lives here.
var (
	activeMake *Make
	activeHost *nativeHost
)

// Init binds the make process this plugin was loaded into and returns
// its bridge. Call it from the plugin's <stem>_gmk_setup function. The
// first call resolves the gmk_* API from the process image; later calls
// return the same bridge.
func Init() (*Make, error) {
	if activeMake != nil {
		return activeMake, nil
	}
	if msg := C.resolveGmk(); msg != nil {
		return nil, fmt.Errorf("gmk: %s", C.GoString(msg))
	}
	activeHost = &nativeHost{
		mem:   nativeMemory{},
		funcs: make(map[string]DispatchFunc),
	}
	activeMake = New(activeHost)
	return activeMake, nil
}

// nativeHost talks to the resolved gmk_* API.
type nativeHost struct {
	mem   Memory
	funcs map[string]DispatchFunc
}

func (h *nativeHost) Eval(text string) {
	ctext := C.CString(text)
	defer C.free(unsafe.Pointer(ctext))
	C.callGmkEval(ctext)
}

func (h *nativeHost) Expand(text string) string {
	ctext := C.CString(text)
	defer C.free(unsafe.Pointer(ctext))
	out := C.callGmkExpand(ctext)
	// make allocated the result; take it, free it, exactly once.
	return NewBuffer(uintptr(unsafe.Pointer(out)), h.mem, OwnedByModule).Take()
}

func (h *nativeHost) AddFunction(name string, fn DispatchFunc, minArgs, maxArgs int, noExpand bool) {
	h.funcs[name] = fn
	flags := C.uint(C.GMK_FUNC_DEFAULT)
	if noExpand {
		flags = C.GMK_FUNC_NOEXPAND
	}
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	C.callGmkAddFunction(cname, C.uint(minArgs), C.uint(maxArgs), flags)
}

// nativeMemory allocates through make's own allocator, the required
// currency for buffers handed across the boundary.
type nativeMemory struct{}

func (nativeMemory) Alloc(s string) uintptr {
	p := C.callGmkAlloc(C.uint(len(s) + 1))
	buf := unsafe.Slice((*byte)(unsafe.Pointer(p)), len(s)+1)
	copy(buf, s)
	buf[len(s)] = 0
	return uintptr(unsafe.Pointer(p))
}

func (nativeMemory) Read(ptr uintptr) string {
	return C.GoString((*C.char)(unsafe.Pointer(ptr)))
}

func (nativeMemory) Free(ptr uintptr) {
	C.callGmkFree((*C.char)(unsafe.Pointer(ptr)))
}

// gmkGoDispatch is the single C entry point registered for every
// exported function. make passes the function name as argv[0]-style
// context, so one trampoline serves all registrations.
//
//export gmkGoDispatch
func gmkGoDispatch(name *C.char, argc C.uint, argv **C.char) *C.char {
	host := activeHost
	if host == nil {
		return nil
	}
	goName := C.GoString(name)
	fn, ok := host.funcs[goName]
	if !ok {
		return nil
	}

	args := make([]string, int(argc))
	for i, arg := range unsafe.Slice(argv, int(argc)) {
		args[i] = C.GoString(arg)
	}

	result := fn(goName, args)
	if result == nil {
		return nil
	}
	// The result crosses in make-allocated memory, which make frees.
	b := AllocBuffer(host.mem, *result)
	return (*C.char)(unsafe.Pointer(b.Handoff()))
}
