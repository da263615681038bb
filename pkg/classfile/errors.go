package classfile

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a class file was rejected.
type ErrorKind int

const (
	InvalidMagicValue ErrorKind = iota + 1
	InvalidConstantPoolInfoTag
	InvalidReferenceKind
	InvalidVerificationTypeTag
	InvalidTypePathKind
	InvalidTypeAnnotationTargetType
	InvalidElementValueTag
	InvalidAttributeNameIndex
	UnexpectedEOF
	InvalidStackMapFrameType
	InvalidAttributeLength
	NestingTooDeep
)

var errorKindNames = map[ErrorKind]string{
	InvalidMagicValue:               "invalid magic value",
	InvalidConstantPoolInfoTag:      "invalid constant pool tag",
	InvalidReferenceKind:            "invalid reference kind",
	InvalidVerificationTypeTag:      "invalid verification type tag",
	InvalidTypePathKind:             "invalid type path kind",
	InvalidTypeAnnotationTargetType: "invalid type annotation target type",
	InvalidElementValueTag:          "invalid element value tag",
	InvalidAttributeNameIndex:       "invalid attribute name index",
	UnexpectedEOF:                   "unexpected EOF",
	InvalidStackMapFrameType:        "invalid stack map frame type",
	InvalidAttributeLength:          "invalid attribute length",
	NestingTooDeep:                  "nesting too deep",
}

func (k ErrorKind) String() string {
	if s, ok := errorKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Sentinels for errors.Is. A *ParseError matches the sentinel of its Kind.
var (
	ErrInvalidMagicValue               = &ParseError{Kind: InvalidMagicValue}
	ErrInvalidConstantPoolInfoTag      = &ParseError{Kind: InvalidConstantPoolInfoTag}
	ErrInvalidReferenceKind            = &ParseError{Kind: InvalidReferenceKind}
	ErrInvalidVerificationTypeTag      = &ParseError{Kind: InvalidVerificationTypeTag}
	ErrInvalidTypePathKind             = &ParseError{Kind: InvalidTypePathKind}
	ErrInvalidTypeAnnotationTargetType = &ParseError{Kind: InvalidTypeAnnotationTargetType}
	ErrInvalidElementValueTag          = &ParseError{Kind: InvalidElementValueTag}
	ErrInvalidAttributeNameIndex       = &ParseError{Kind: InvalidAttributeNameIndex}
	ErrUnexpectedEOF                   = &ParseError{Kind: UnexpectedEOF}
	ErrInvalidStackMapFrameType        = &ParseError{Kind: InvalidStackMapFrameType}
	ErrInvalidAttributeLength          = &ParseError{Kind: InvalidAttributeLength}
	ErrNestingTooDeep                  = &ParseError{Kind: NestingTooDeep}
)

// Constant pool lookups made after decoding fail with these.
var (
	ErrInvalidConstantPoolIndex = errors.New("classfile: invalid constant pool index")
	ErrUnexpectedConstantType   = errors.New("classfile: unexpected constant pool entry type")
)

// ParseError is returned for every malformed class file.
type ParseError struct {
	Kind    ErrorKind
	Offset  int64  // byte offset in the input where the problem was found
	Context string // dotted path of the structure being decoded
	Detail  string
	Err     error
}

func (e *ParseError) Error() string {
	msg := "classfile: " + e.Kind.String()
	if e.Context != "" {
		msg += " in " + e.Context
	}
	msg += fmt.Sprintf(" at offset %d", e.Offset)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is reports whether target is a *ParseError of the same Kind.
func (e *ParseError) Is(target error) bool {
	t, ok := target.(*ParseError)
	return ok && t.Kind == e.Kind
}

// withContext prefixes the context of a *ParseError with ctx. Other errors
// are returned unchanged.
func withContext(err error, ctx string) error {
	var pe *ParseError
	if !errors.As(err, &pe) {
		return err
	}
	if pe.Context == "" {
		pe.Context = ctx
	} else {
		pe.Context = ctx + "." + pe.Context
	}
	return err
}
