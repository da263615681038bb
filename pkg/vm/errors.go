package vm

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupported is returned for instructions and methods the VM does
	// not link: invokedynamic, native methods without an intrinsic, and
	// type checks against classes that cannot be resolved.
	ErrUnsupported = errors.New("unsupported")

	// ErrStackOverflow is returned when a call would exceed the frame limit.
	ErrStackOverflow = errors.New("stack overflow")

	// ErrClassNotFound is returned when no class path entry has the class.
	ErrClassNotFound = errors.New("class not found")

	// ErrMethodNotFound is returned when a resolved class has no method
	// with the requested name and descriptor.
	ErrMethodNotFound = errors.New("method not found")
)

// FaultKind classifies internal consistency violations.
type FaultKind int

const (
	FaultStackUnderflow FaultKind = iota + 1
	FaultStackOverflow
	FaultTypeMismatch
	FaultLocalIndexOutOfRange
	FaultPCOutOfRange
	FaultUnknownOpcode
)

func (k FaultKind) String() string {
	switch k {
	case FaultStackUnderflow:
		return "operand stack underflow"
	case FaultStackOverflow:
		return "operand stack overflow"
	case FaultTypeMismatch:
		return "type mismatch"
	case FaultLocalIndexOutOfRange:
		return "local variable index out of range"
	case FaultPCOutOfRange:
		return "pc out of range"
	case FaultUnknownOpcode:
		return "unknown opcode"
	}
	return fmt.Sprintf("FaultKind(%d)", int(k))
}

// Fault is an internal consistency violation: the executing code broke
// the operand stack or locals discipline that verification would have
// rejected. Faults are raised with panic and abort the thread; Thread.Run
// returns them as errors.
type Fault struct {
	Kind   FaultKind
	Detail string

	// Filled in by the thread when the fault unwinds through it.
	Method string
	PC     int
}

func newFault(kind FaultKind, format string, args ...any) *Fault {
	return &Fault{Kind: kind, Detail: fmt.Sprintf(format, args...), PC: -1}
}

func (f *Fault) Error() string {
	msg := "fault: " + f.Kind.String()
	if f.Detail != "" {
		msg += ": " + f.Detail
	}
	if f.Method != "" {
		msg += fmt.Sprintf(" in %s at PC=%d", f.Method, f.PC)
	}
	return msg
}

// Is matches another *Fault with the same Kind.
func (f *Fault) Is(target error) bool {
	t, ok := target.(*Fault)
	return ok && t.Kind == f.Kind
}

// UncaughtException is returned by Thread.Run when a throwable propagates
// out of the bottom frame.
type UncaughtException struct {
	ClassName string
	Message   string
	Ref       Ref
}

func (e *UncaughtException) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("uncaught exception %s: %s", e.ClassName, e.Message)
	}
	return "uncaught exception " + e.ClassName
}
