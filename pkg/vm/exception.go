package vm

import (
	"errors"
	"strings"

	"github.com/daimatz/classvm/pkg/native"
)

// JavaException represents a JVM exception being thrown. Instruction
// handlers return it and the thread loop dispatches it to a handler.
type JavaException struct {
	Ref       Ref
	ClassName string
}

func (e *JavaException) Error() string {
	return "JavaException: " + e.ClassName
}

// newThrowable allocates an exception object with the given detail
// message (none when empty) and cause (none when 0).
func (vm *VM) newThrowable(className, msg string, cause Ref) Ref {
	var r Ref
	vm.write(func(h *Heap) {
		r = h.NewObject(className, nil)
		o, _ := h.Object(r)
		if msg != "" {
			o.Fields["detailMessage"] = RefValue(h.NewString(msg))
		}
		if cause != 0 {
			o.Fields["cause"] = RefValue(cause)
		}
	})
	return r
}

// throwNew allocates an exception and returns it for the thread loop to
// throw.
func (vm *VM) throwNew(className, msg string) error {
	return &JavaException{Ref: vm.newThrowable(className, msg, 0), ClassName: className}
}

func (vm *VM) throwNPE() error {
	return vm.throwNew("java/lang/NullPointerException", "")
}

// throwableMessage returns the detail message of a throwable, or "".
func (vm *VM) throwableMessage(r Ref) (msg string) {
	vm.read(func(h *Heap) {
		o, ok := h.Object(r)
		if !ok {
			return
		}
		if v, ok := o.Fields["detailMessage"]; ok && v.Kind() == KindReference {
			msg, _ = h.String(v.AsRef())
		}
	})
	return msg
}

// superTypes returns the direct superclass and superinterfaces of a class.
func (vm *VM) superTypes(name string) (string, []string, error) {
	if super, ok := native.SuperOf(name); ok {
		return super, native.InterfacesOf(name), nil
	}
	c, err := vm.loader.FindOrLoadClass(name)
	if err != nil {
		return "", nil, err
	}
	return c.SuperName, c.Interfaces, nil
}

// assignable reports whether an instance of class from can be used where
// type to is expected. Both are internal names; array classes use their
// descriptor form ("[I", "[Ljava/lang/String;").
func (vm *VM) assignable(from, to string) (bool, error) {
	if from == to || to == "java/lang/Object" {
		return true, nil
	}
	if strings.HasPrefix(from, "[") {
		switch {
		case to == "java/lang/Cloneable" || to == "java/io/Serializable":
			return true, nil
		case !strings.HasPrefix(to, "["):
			return false, nil
		}
		fc, tc := from[1:], to[1:]
		switch {
		case fc[0] == 'L' && tc[0] == 'L':
			return vm.assignable(fc[1:len(fc)-1], tc[1:len(tc)-1])
		case fc[0] == '[' && tc[0] == '[':
			return vm.assignable(fc, tc)
		case fc[0] == '[' && tc[0] == 'L':
			return vm.assignable(fc, tc[1:len(tc)-1])
		}
		return false, nil
	}
	if strings.HasPrefix(to, "[") {
		return false, nil
	}

	seen := make(map[string]bool)
	type step struct {
		name  string
		iface bool
	}
	queue := []step{{name: from}}
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		if s.name == to {
			return true, nil
		}
		if seen[s.name] {
			continue
		}
		seen[s.name] = true
		super, ifaces, err := vm.superTypes(s.name)
		if err != nil {
			// Interfaces outside the class path are treated as leaves.
			if s.iface && errors.Is(err, ErrClassNotFound) {
				continue
			}
			return false, err
		}
		if super != "" {
			queue = append(queue, step{name: super})
		}
		for _, i := range ifaces {
			queue = append(queue, step{name: i, iface: true})
		}
	}
	return false, nil
}

// resolveType checks that a class named in a type test can be resolved.
func (vm *VM) resolveType(name string) error {
	if strings.HasPrefix(name, "[") {
		elem := strings.TrimLeft(name, "[")
		if len(elem) == 1 {
			return nil // primitive component
		}
		name = elem[1 : len(elem)-1]
	}
	if native.IsBuiltin(name) {
		return nil
	}
	if _, err := vm.loader.FindOrLoadClass(name); err != nil {
		if errors.Is(err, ErrClassNotFound) {
			return errors.Join(ErrUnsupported, err)
		}
		return err
	}
	return nil
}
