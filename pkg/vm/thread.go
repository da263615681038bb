package vm

import (
	"errors"
	"fmt"
	"runtime"

	"go.uber.org/zap"

	"github.com/daimatz/classvm/pkg/classfile"
	"github.com/daimatz/classvm/pkg/native"
)

// Thread is one thread of execution. It owns its Stack; nothing else
// touches it.
type Thread struct {
	Name  string
	vm    *VM
	stack *Stack

	// Value returned by the bottom frame.
	result Value
}

// Stack returns the thread's call stack.
func (t *Thread) Stack() *Stack { return t.stack }

// VM returns the VM the thread belongs to.
func (t *Thread) VM() *VM { return t.vm }

// Invoke pushes a frame for method with args laid out in its locals. The
// receiver, if any, is args[0]. Long and double arguments take two
// slots. A static method's class is initialized before the method runs.
func (t *Thread) Invoke(class *Class, method *classfile.MethodInfo, args []Value) error {
	name, desc := method.Name(class.ConstantPool), method.Descriptor(class.ConstantPool)
	md, err := classfile.ParseMethodDescriptor(desc)
	if err != nil {
		return err
	}
	want := len(md.Params)
	if !method.AccessFlags.IsStatic() {
		want++
	}
	if len(args) != want {
		return fmt.Errorf("invoking %s: got %d arguments, want %d", methodKey(class.Name, name, desc), len(args), want)
	}
	code := method.Code()
	if code == nil {
		return fmt.Errorf("%w: %s has no code", ErrUnsupported, methodKey(class.Name, name, desc))
	}

	if method.AccessFlags.IsStatic() {
		cd, err := t.vm.classData(class.Name)
		if err != nil {
			return err
		}
		if err := t.ensureInitialized(cd); err != nil {
			var jex *JavaException
			if errors.As(err, &jex) {
				return t.throw(jex.Ref)
			}
			return err
		}
	}

	frame := newMethodFrame(class, method, code)
	if err := loadArgs(frame, args); err != nil {
		return err
	}
	return t.stack.PushFrame(frame)
}

// ensureInitialized runs any pending <clinit> for cd to completion on top
// of a bridge frame. An exception escaping it is returned as a
// *JavaException.
func (t *Thread) ensureInitialized(cd *classData) error {
	bridge := NewFrame(0, 0, nil, nil)
	bridge.bridge = true
	if err := t.stack.PushFrame(bridge); err != nil {
		return err
	}
	defer func() {
		if t.stack.Current() == bridge {
			t.stack.PopFrame()
		}
	}()
	done, err := t.initialize(bridge, cd)
	if err != nil {
		var jex *JavaException
		if errors.As(err, &jex) && t.stack.Current() != bridge {
			return t.throw(jex.Ref)
		}
		return err
	}
	if done {
		return nil
	}
	for t.stack.Current() != bridge {
		if err := t.step(); err != nil {
			return err
		}
	}
	return nil
}

func loadArgs(frame *Frame, args []Value) (err error) {
	defer func() {
		if r := recover(); r != nil {
			f, ok := r.(*Fault)
			if !ok {
				panic(r)
			}
			err = f
		}
	}()
	slot := 0
	for _, arg := range args {
		arg = arg.widen()
		frame.SetLocal(slot, arg)
		slot += arg.Kind().Category()
	}
	return nil
}

// Run executes until the stack is empty and returns the bottom frame's
// return value (the zero Value for void methods).
func (t *Thread) Run() (result Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			f, ok := r.(*Fault)
			if !ok {
				panic(r)
			}
			if cur := t.stack.Current(); cur != nil && f.Method == "" {
				f.Method = cur.String()
				f.PC = cur.opPC
			}
			Logger().Error("thread aborted", zap.String("thread", t.Name), zap.Error(f))
			err = f
		}
	}()

	for t.stack.Current() != nil {
		if err := t.step(); err != nil {
			return Value{}, err
		}
	}
	return t.result, nil
}

// step executes one instruction of the current frame and dispatches a
// thrown exception.
func (t *Thread) step() error {
	frame := t.stack.Current()
	frame.opPC = frame.PC
	frame.started = true
	opcode := frame.ReadU8()

	err := t.execute(frame, opcode)
	if err == nil {
		return nil
	}
	var jex *JavaException
	if errors.As(err, &jex) {
		return t.throw(jex.Ref)
	}
	return fmt.Errorf("%s at PC=%d (%s): %w", frame, frame.opPC, OpcodeName(opcode), err)
}

// callback runs m to completion on top of the current frame and returns
// its result. Intrinsics use it to call back into bytecode. An exception
// escaping m is returned as a *JavaException.
func (t *Thread) callback(m *method, md *classfile.MethodDescriptor, args []Value) (Value, error) {
	bridge := NewFrame(0, 2, nil, nil)
	bridge.bridge = true
	if err := t.stack.PushFrame(bridge); err != nil {
		return Value{}, err
	}
	defer func() {
		if t.stack.Current() == bridge {
			t.stack.PopFrame()
		}
	}()
	if err := t.call(bridge, m, md, args); err != nil {
		return Value{}, err
	}
	for t.stack.Current() != bridge {
		if err := t.step(); err != nil {
			return Value{}, err
		}
	}
	if md.IsVoid() {
		return Value{}, nil
	}
	return bridge.Pop(), nil
}

// ret pops the current frame and hands v to the caller.
func (t *Thread) ret(v Value, hasValue bool) {
	done := t.stack.PopFrame()
	if done.init != nil {
		t.vm.mu.Lock()
		done.init.state = classInitialized
		done.init.initializer = nil
		t.vm.mu.Unlock()
		Logger().Debug("class initialized", zap.String("class", done.init.class.Name))
	}
	caller := t.stack.Current()
	if caller == nil {
		if hasValue {
			t.result = v
		}
		return
	}
	if hasValue {
		caller.Push(v)
	}
}

// throw unwinds to the innermost handler covering the faulting
// instruction whose catch type matches the exception.
func (t *Thread) throw(ref Ref) error {
	className := t.vm.classOf(ref)
	for {
		frame := t.stack.Current()
		if frame == nil {
			return t.uncaught(ref, className)
		}
		if frame.bridge {
			return &JavaException{Ref: ref, ClassName: className}
		}
		// A <clinit> that has not started fails with its superclass's
		// exception as is.
		pending := frame.init != nil && !frame.started
		if !pending {
			handler, err := t.findHandler(frame, className)
			if err != nil {
				return err
			}
			if handler >= 0 {
				frame.Clear()
				frame.Push(RefValue(ref))
				frame.PC = handler
				return nil
			}
		}

		t.stack.PopFrame()
		switch {
		case pending:
			t.markFailed(frame.init, className)
		case frame.init != nil:
			ref, className = t.initFailed(frame.init, ref, className)
		}
	}
}

func (t *Thread) findHandler(frame *Frame, className string) (int, error) {
	if frame.attr == nil {
		return -1, nil
	}
	for _, h := range frame.attr.ExceptionTable {
		if frame.opPC < int(h.StartPC) || frame.opPC >= int(h.EndPC) {
			continue
		}
		if h.CatchType == 0 {
			return int(h.HandlerPC), nil
		}
		catch, err := frame.Pool.ClassName(h.CatchType)
		if err != nil {
			return -1, fmt.Errorf("exception table of %s: %w", frame, err)
		}
		ok, err := t.vm.assignable(className, catch)
		if err != nil {
			return -1, err
		}
		if ok {
			return int(h.HandlerPC), nil
		}
	}
	return -1, nil
}

// initFailed marks a class whose <clinit> completed abruptly. Anything
// other than an Error is wrapped in ExceptionInInitializerError.
func (t *Thread) initFailed(cd *classData, ref Ref, className string) (Ref, string) {
	t.markFailed(cd, className)
	if isError, _ := t.vm.assignable(className, "java/lang/Error"); isError {
		return ref, className
	}
	const eiie = "java/lang/ExceptionInInitializerError"
	wrapped := t.vm.newThrowable(eiie, "", ref)
	return wrapped, eiie
}

func (t *Thread) markFailed(cd *classData, className string) {
	t.vm.mu.Lock()
	cd.state = classFailed
	cd.initializer = nil
	t.vm.mu.Unlock()
	Logger().Debug("class initialization failed",
		zap.String("class", cd.class.Name),
		zap.String("exception", className))
}

func (t *Thread) uncaught(ref Ref, className string) error {
	msg := t.vm.throwableMessage(ref)
	Logger().Info("uncaught exception",
		zap.String("thread", t.Name),
		zap.String("exception", className),
		zap.String("message", msg))
	return &UncaughtException{ClassName: className, Message: msg, Ref: ref}
}

// initialize makes sure cd's class is initialized before frame's current
// instruction uses it. When <clinit> code has to run first, the frames
// are pushed (superclass on top), frame's PC is rewound so the
// instruction re-executes afterwards, and initialize reports false. A
// class being initialized by another thread is waited for.
func (t *Thread) initialize(frame *Frame, cd *classData) (bool, error) {
	if cd == nil {
		return true, nil
	}
	var super *classData
	if name := cd.class.SuperName; name != "" {
		s, err := t.vm.classData(name)
		if err != nil {
			return false, err
		}
		super = s
	}
	clinit := cd.class.FindMethod("<clinit>", "()V")
	if clinit != nil && clinit.Code() == nil {
		clinit = nil
	}

	for {
		t.vm.mu.Lock()
		state, mine := cd.state, cd.initializer == t
		switch {
		case state != classLinked:
		case clinit == nil && (super == nil || super.state == classInitialized):
			cd.state = classInitialized
			state = classInitialized
		default:
			cd.state = classInitializing
			cd.initializer = t
		}
		t.vm.mu.Unlock()

		switch state {
		case classInitialized:
			return true, nil
		case classFailed:
			return false, t.vm.throwNew("java/lang/NoClassDefFoundError", "Could not initialize class "+native.JavaName(cd.class.Name))
		case classInitializing:
			if mine {
				return true, nil
			}
			runtime.Gosched()
			continue
		}
		break
	}

	var init *Frame
	if clinit != nil {
		init = newMethodFrame(cd.class, clinit, clinit.Code())
	} else {
		// Nothing to run for this class; the frame marks it initialized
		// once the superclass is done.
		init = NewFrame(0, 0, []byte{OpReturn}, cd.class.ConstantPool)
		init.Class = cd.class
	}
	init.init = cd
	if err := t.stack.PushFrame(init); err != nil {
		t.vm.mu.Lock()
		cd.state = classFailed
		cd.initializer = nil
		t.vm.mu.Unlock()
		return false, err
	}
	frame.PC = frame.opPC
	if _, err := t.initialize(frame, super); err != nil {
		return false, err
	}
	return false, nil
}
