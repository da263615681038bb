package vm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/daimatz/classvm/pkg/classfile"
	"github.com/daimatz/classvm/pkg/native"
)

// method is a resolved invocation target: bytecode in a loaded class or
// a host intrinsic.
type method struct {
	key       string
	class     *Class
	info      *classfile.MethodInfo
	intrinsic intrinsic
}

// findMethod looks name:desc up starting at className and walking the
// superclass chain, then falls back to default methods of the
// superinterfaces.
func (vm *VM) findMethod(className, name, desc string) (*method, error) {
	var ifaces []string
	for c := className; c != ""; {
		key := methodKey(c, name, desc)
		if fn, ok := intrinsics[key]; ok {
			return &method{key: key, intrinsic: fn}, nil
		}
		if super, ok := native.SuperOf(c); ok {
			ifaces = append(ifaces, native.InterfacesOf(c)...)
			c = super
			continue
		}
		cls, err := vm.loader.FindOrLoadClass(c)
		if err != nil {
			return nil, err
		}
		if m := cls.FindMethod(name, desc); m != nil {
			return &method{key: key, class: cls, info: m}, nil
		}
		ifaces = append(ifaces, cls.Interfaces...)
		c = cls.SuperName
	}

	seen := make(map[string]bool)
	for len(ifaces) > 0 {
		i := ifaces[0]
		ifaces = ifaces[1:]
		if seen[i] || native.IsBuiltin(i) {
			continue
		}
		seen[i] = true
		cls, err := vm.loader.FindOrLoadClass(i)
		if errors.Is(err, ErrClassNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if m := cls.FindMethod(name, desc); m != nil && !m.AccessFlags.IsAbstract() {
			return &method{key: methodKey(i, name, desc), class: cls, info: m}, nil
		}
		ifaces = append(ifaces, cls.Interfaces...)
	}
	return nil, fmt.Errorf("%w: %s", ErrMethodNotFound, methodKey(className, name, desc))
}

// invoke implements invokevirtual, invokespecial, invokestatic and
// invokeinterface.
func (t *Thread) invoke(f *Frame, op byte) error {
	pool, err := f.constantPool()
	if err != nil {
		return err
	}
	index := f.ReadU16()
	var ref *classfile.MemberRef
	if op == OpInvokeinterface {
		f.ReadU8() // count
		f.ReadU8() // 0
		ref, err = pool.ResolveInterfaceMethodref(index)
	} else {
		ref, err = pool.ResolveMethodref(index)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", OpcodeName(op), err)
	}
	md, err := classfile.ParseMethodDescriptor(ref.Descriptor)
	if err != nil {
		return err
	}

	static := op == OpInvokestatic
	if static {
		cd, err := t.vm.classData(ref.ClassName)
		if err != nil {
			return t.linkError(ref.ClassName, err)
		}
		if ready, err := t.initialize(f, cd); !ready || err != nil {
			return err
		}
	}

	n := len(md.Params)
	if !static {
		n++
	}
	args := make([]Value, n)
	for i := n - 1; i >= 0; i-- {
		args[i] = f.Pop()
	}

	target := ref.ClassName
	if !static {
		this := args[0].AsRef()
		if this == 0 {
			return t.vm.throwNPE()
		}
		if op != OpInvokespecial {
			target = t.vm.classOf(this)
			if strings.HasPrefix(target, "[") {
				target = "java/lang/Object"
			}
		}
	}
	m, err := t.vm.findMethod(target, ref.Name, ref.Descriptor)
	if err != nil {
		if errors.Is(err, ErrMethodNotFound) {
			return t.vm.throwNew("java/lang/NoSuchMethodError", ref.String())
		}
		return t.linkError(target, err)
	}
	return t.call(f, m, md, args)
}

// call runs an intrinsic in place or pushes a frame for bytecode.
func (t *Thread) call(caller *Frame, m *method, md *classfile.MethodDescriptor, args []Value) error {
	if m.intrinsic != nil {
		v, err := m.intrinsic(t, args)
		if err != nil {
			return err
		}
		if !md.IsVoid() {
			caller.Push(v.widen())
		}
		return nil
	}
	flags := m.info.AccessFlags
	switch {
	case flags.IsAbstract():
		return t.vm.throwNew("java/lang/AbstractMethodError", m.key)
	case flags.IsNative():
		return fmt.Errorf("%w: native method %s", ErrUnsupported, m.key)
	}
	code := m.info.Code()
	if code == nil {
		return fmt.Errorf("%s has no Code attribute", m.key)
	}
	frame := newMethodFrame(m.class, m.info, code)
	slot := 0
	for _, a := range args {
		frame.SetLocal(slot, a)
		slot += a.Kind().Category()
	}
	return t.stack.PushFrame(frame)
}

// linkError turns a missing class into NoClassDefFoundError.
func (t *Thread) linkError(className string, err error) error {
	if errors.Is(err, ErrClassNotFound) {
		return t.vm.throwNew("java/lang/NoClassDefFoundError", className)
	}
	return err
}

// newObject implements new. The class is initialized first.
func (t *Thread) newObject(f *Frame) error {
	pool, err := f.constantPool()
	if err != nil {
		return err
	}
	name, err := pool.ClassName(f.ReadU16())
	if err != nil {
		return fmt.Errorf("new: %w", err)
	}
	cd, err := t.vm.classData(name)
	if err != nil {
		return t.linkError(name, err)
	}
	if cd != nil && (cd.class.IsInterface() || cd.class.File.AccessFlags.IsAbstract()) {
		return t.vm.throwNew("java/lang/InstantiationError", javaTypeName(name))
	}
	if ready, err := t.initialize(f, cd); !ready || err != nil {
		return err
	}
	payload := t.vm.newPayload(name)
	var r Ref
	t.vm.write(func(h *Heap) { r = h.NewObject(name, payload) })
	f.Push(RefValue(r))
	return nil
}

// --- Fields ---

func fieldRef(f *Frame) (*classfile.MemberRef, error) {
	pool, err := f.constantPool()
	if err != nil {
		return nil, err
	}
	return pool.ResolveFieldref(f.ReadU16())
}

// staticOwner finds the class declaring a static field, searching the
// named class, its superinterfaces and then its superclasses.
func (vm *VM) staticOwner(className, name, desc string) (*classData, error) {
	cd, err := vm.classData(className)
	if err != nil || cd == nil {
		return nil, err
	}
	if fi := cd.class.File.FindField(name, desc); fi != nil && fi.AccessFlags.IsStatic() {
		return cd, nil
	}
	for _, i := range cd.class.Interfaces {
		owner, err := vm.staticOwner(i, name, desc)
		if err != nil && !errors.Is(err, ErrClassNotFound) {
			return nil, err
		}
		if owner != nil {
			return owner, nil
		}
	}
	if cd.class.SuperName == "" {
		return nil, nil
	}
	return vm.staticOwner(cd.class.SuperName, name, desc)
}

func (t *Thread) staticField(f *Frame, ref *classfile.MemberRef) (*classData, bool, error) {
	owner, err := t.vm.staticOwner(ref.ClassName, ref.Name, ref.Descriptor)
	if err != nil {
		return nil, false, t.linkError(ref.ClassName, err)
	}
	if owner == nil {
		return nil, false, t.vm.throwNew("java/lang/NoSuchFieldError", ref.Name)
	}
	ready, err := t.initialize(f, owner)
	return owner, ready, err
}

func (t *Thread) getstatic(f *Frame) error {
	ref, err := fieldRef(f)
	if err != nil {
		return fmt.Errorf("getstatic: %w", err)
	}
	if v, ok := t.vm.builtinStatic(ref.ClassName, ref.Name); ok {
		f.Push(v)
		return nil
	}
	owner, ready, err := t.staticField(f, ref)
	if !ready || err != nil {
		return err
	}
	t.vm.mu.RLock()
	v, ok := owner.statics[ref.Name]
	t.vm.mu.RUnlock()
	if !ok {
		v = zeroValue(ref.Descriptor)
	}
	f.Push(v)
	return nil
}

func (t *Thread) putstatic(f *Frame) error {
	ref, err := fieldRef(f)
	if err != nil {
		return fmt.Errorf("putstatic: %w", err)
	}
	if native.IsBuiltin(ref.ClassName) {
		return fmt.Errorf("%w: putstatic %s", ErrUnsupported, ref)
	}
	owner, ready, err := t.staticField(f, ref)
	if !ready || err != nil {
		return err
	}
	v := fieldValue(ref.Descriptor, f.Pop())
	t.vm.mu.Lock()
	owner.statics[ref.Name] = v
	t.vm.mu.Unlock()
	return nil
}

func (t *Thread) getfield(f *Frame) error {
	ref, err := fieldRef(f)
	if err != nil {
		return fmt.Errorf("getfield: %w", err)
	}
	obj := f.PopRef()
	if obj == 0 {
		return t.vm.throwNPE()
	}
	var v Value
	var ok bool
	t.vm.read(func(h *Heap) {
		var o *Object
		if o, ok = h.Object(obj); ok {
			v = o.Field(ref.Name, ref.Descriptor)
		}
	})
	if !ok {
		panic(newFault(FaultTypeMismatch, "getfield %s on %s", ref.Name, t.vm.classOf(obj)))
	}
	f.Push(v)
	return nil
}

func (t *Thread) putfield(f *Frame) error {
	ref, err := fieldRef(f)
	if err != nil {
		return fmt.Errorf("putfield: %w", err)
	}
	v := fieldValue(ref.Descriptor, f.Pop())
	obj := f.PopRef()
	if obj == 0 {
		return t.vm.throwNPE()
	}
	var ok bool
	t.vm.write(func(h *Heap) {
		var o *Object
		if o, ok = h.Object(obj); ok {
			o.Fields[ref.Name] = v
		}
	})
	if !ok {
		panic(newFault(FaultTypeMismatch, "putfield %s on %s", ref.Name, t.vm.classOf(obj)))
	}
	return nil
}

// fieldValue checks v against a field descriptor and truncates int
// values stored into narrow fields.
func fieldValue(desc string, v Value) Value {
	switch desc[0] {
	case 'Z':
		return IntValue(v.AsInt() & 1)
	case 'B':
		return IntValue(int32(int8(v.AsInt())))
	case 'C':
		return IntValue(int32(uint16(v.AsInt())))
	case 'S':
		return IntValue(int32(int16(v.AsInt())))
	case 'I':
		v.want(KindInt)
	case 'J':
		v.want(KindLong)
	case 'F':
		v.want(KindFloat)
	case 'D':
		v.want(KindDouble)
	default:
		v.want(KindReference)
	}
	return v
}

func (vm *VM) builtinStatic(className, name string) (Value, bool) {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	v, ok := vm.builtins[className+"."+name]
	return v, ok
}

// classObject returns the java/lang/Class instance for name.
func (vm *VM) classObject(name string) Ref {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if r, ok := vm.classObjs[name]; ok {
		return r
	}
	r := vm.heap.NewObject("java/lang/Class", name)
	vm.classObjs[name] = r
	return r
}
