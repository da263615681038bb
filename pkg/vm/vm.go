package vm

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"
	"sync"
	"time"

	cmap "github.com/orcaman/concurrent-map"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/daimatz/classvm/pkg/native"
)

// Options configures a VM.
type Options struct {
	// ClassPath is searched by the default bootstrap loader. Ignored when
	// Loader is set.
	ClassPath ClassPath
	Loader    ClassLoader

	// MaxFrames bounds each thread's call depth. Zero means
	// DefaultMaxFrames.
	MaxFrames int

	// Stdout and Stderr back System.out and System.err. Nil means the
	// process streams.
	Stdout io.Writer
	Stderr io.Writer
}

// VM is the virtual machine that executes Java bytecode. It owns the heap
// and the method area shared by its threads.
type VM struct {
	loader    ClassLoader
	maxFrames int
	stdout    *native.PrintStream
	stderr    *native.PrintStream
	started   time.Time

	// mu guards the heap, the method area and the built-in class state
	// below it.
	mu        sync.RWMutex
	heap      *Heap
	classes   map[string]*classData
	builtins  map[string]Value // static fields of built-in classes
	integers  map[int32]Ref    // Integer.valueOf cache
	classObjs map[string]Ref   // java/lang/Class instances by name

	threads cmap.ConcurrentMap

	// group holds the threads started since the last Wait.
	groupMu sync.Mutex
	group   *errgroup.Group
}

// New creates a VM.
func New(opts Options) *VM {
	loader := opts.Loader
	if loader == nil {
		loader = NewBootstrapClassLoader(opts.ClassPath)
	}
	stdout, stderr := opts.Stdout, opts.Stderr
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	vm := &VM{
		loader:    loader,
		maxFrames: opts.MaxFrames,
		stdout:    native.NewPrintStream(stdout),
		stderr:    native.NewPrintStream(stderr),
		started:   time.Now(),
		heap:      NewHeap(),
		classes:   make(map[string]*classData),
		builtins:  make(map[string]Value),
		integers:  make(map[int32]Ref),
		classObjs: make(map[string]Ref),
		threads:   cmap.New(),
		group:     new(errgroup.Group),
	}
	vm.builtins["java/lang/System.out"] = RefValue(vm.heap.NewObject("java/io/PrintStream", vm.stdout))
	vm.builtins["java/lang/System.err"] = RefValue(vm.heap.NewObject("java/io/PrintStream", vm.stderr))
	return vm
}

// Loader returns the VM's class loader.
func (vm *VM) Loader() ClassLoader { return vm.loader }

// Heap returns the VM's heap. It is not synchronized; read it only while
// no thread is running.
func (vm *VM) Heap() *Heap { return vm.heap }

func (vm *VM) read(fn func(h *Heap)) {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	fn(vm.heap)
}

func (vm *VM) write(fn func(h *Heap)) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	fn(vm.heap)
}

// NewString allocates a java/lang/String.
func (vm *VM) NewString(s string) Ref {
	var r Ref
	vm.write(func(h *Heap) { r = h.NewString(s) })
	return r
}

// GoString returns the contents of the String at r.
func (vm *VM) GoString(r Ref) (s string, ok bool) {
	vm.read(func(h *Heap) { s, ok = h.String(r) })
	return s, ok
}

func (vm *VM) classOf(r Ref) (name string) {
	vm.read(func(h *Heap) { name = h.ClassOf(r) })
	return name
}

func (vm *VM) nativeOf(r Ref) (payload any) {
	vm.read(func(h *Heap) {
		if o, ok := h.Object(r); ok {
			payload = o.Native
		}
	})
	return payload
}

// classData returns the method area entry for name, loading and linking
// the class on first use. Built-in classes have no entry and return nil.
func (vm *VM) classData(name string) (*classData, error) {
	vm.mu.RLock()
	cd := vm.classes[name]
	vm.mu.RUnlock()
	if cd != nil {
		return cd, nil
	}
	if native.IsBuiltin(name) {
		return nil, nil
	}

	// No lock is held while the loader reads the class path.
	c, err := vm.loader.FindOrLoadClass(name)
	if err != nil {
		return nil, err
	}

	vm.mu.Lock()
	defer vm.mu.Unlock()
	if cd := vm.classes[name]; cd != nil {
		return cd, nil
	}
	cd, err = link(c, vm.heap)
	if err != nil {
		return nil, err
	}
	vm.classes[name] = cd
	return cd, nil
}

// NewThread creates a thread that is not yet running anything.
func (vm *VM) NewThread(name string) *Thread {
	return &Thread{Name: name, vm: vm, stack: NewStack(vm.maxFrames)}
}

// prepare resolves className.methodName and pushes its frame on a new
// thread.
func (vm *VM) prepare(name, className, methodName, desc string, args []Value) (*Thread, error) {
	cd, err := vm.classData(className)
	if err != nil {
		return nil, err
	}
	if cd == nil {
		return nil, fmt.Errorf("%w: cannot run built-in class %s", ErrUnsupported, className)
	}
	method := cd.class.FindMethod(methodName, desc)
	if method == nil {
		return nil, fmt.Errorf("%w: %s.%s:%s", ErrMethodNotFound, className, methodName, desc)
	}
	t := vm.NewThread(name)
	if err := t.Invoke(cd.class, method, args); err != nil {
		return nil, err
	}
	return t, nil
}

// Call runs className.methodName on a new thread on the calling goroutine
// and returns its result.
func (vm *VM) Call(className, methodName, desc string, args ...Value) (Value, error) {
	t, err := vm.prepare("call", className, methodName, desc, args)
	if err != nil {
		return Value{}, err
	}
	return t.Run()
}

// Start resolves className.methodName and runs it on a new thread. The
// thread runs on its own goroutine locked to an OS thread. Name must be
// unique among running threads.
func (vm *VM) Start(name, className, methodName, desc string, args ...Value) error {
	t, err := vm.prepare(name, className, methodName, desc, args)
	if err != nil {
		return err
	}
	if !vm.threads.SetIfAbsent(name, t) {
		return fmt.Errorf("thread %q already running", name)
	}
	vm.groupMu.Lock()
	defer vm.groupMu.Unlock()
	vm.group.Go(func() error {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		defer vm.threads.Remove(name)

		Logger().Debug("thread started",
			zap.String("thread", name),
			zap.String("entry", className+"."+methodName+":"+desc))
		_, err := t.Run()
		if err != nil {
			Logger().Debug("thread failed", zap.String("thread", name), zap.Error(err))
			return fmt.Errorf("thread %s: %w", name, err)
		}
		Logger().Debug("thread finished", zap.String("thread", name))
		return nil
	})
	return nil
}

// Wait blocks until every thread started since the previous Wait has
// finished and returns the first error among them.
func (vm *VM) Wait() error {
	vm.groupMu.Lock()
	g := vm.group
	vm.group = new(errgroup.Group)
	vm.groupMu.Unlock()
	return g.Wait()
}

// Threads returns the names of the running threads, sorted.
func (vm *VM) Threads() []string {
	names := vm.threads.Keys()
	sort.Strings(names)
	return names
}

// RunMain runs className.main(String[]) with a null argument array on the
// thread "main" and waits for it.
func (vm *VM) RunMain(className string) error {
	if err := vm.Start("main", className, "main", "([Ljava/lang/String;)V", NullValue()); err != nil {
		return err
	}
	return vm.Wait()
}

// Define registers a class from its bytes with a BootstrapClassLoader.
func (vm *VM) Define(data []byte) (*Class, error) {
	bl, ok := vm.loader.(*BootstrapClassLoader)
	if !ok {
		return nil, errors.New("define: loader does not accept class bytes")
	}
	return bl.DefineClass(data)
}

// methodKey formats a method for messages and intrinsic lookups.
func methodKey(class, name, desc string) string {
	return class + "." + name + ":" + desc
}
