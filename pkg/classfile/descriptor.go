package classfile

import (
	"fmt"
	"strings"
)

// FieldType is one parsed field descriptor, e.g. "I", "[J" or
// "Ljava/lang/String;".
type FieldType string

// Slots returns the number of local variable slots the type occupies.
func (t FieldType) Slots() int {
	if t == "J" || t == "D" {
		return 2
	}
	return 1
}

// IsReference reports whether the type is a class or array type.
func (t FieldType) IsReference() bool {
	return len(t) > 0 && (t[0] == 'L' || t[0] == '[')
}

// ClassName returns the internal class name of an object type, or "".
func (t FieldType) ClassName() string {
	if len(t) > 2 && t[0] == 'L' {
		return string(t[1 : len(t)-1])
	}
	return ""
}

// MethodDescriptor is a parsed method descriptor.
type MethodDescriptor struct {
	Params []FieldType
	Return FieldType // "V" for void
}

// ArgSlots returns the number of local slots the parameters occupy,
// not counting a receiver.
func (d *MethodDescriptor) ArgSlots() int {
	n := 0
	for _, p := range d.Params {
		n += p.Slots()
	}
	return n
}

// IsVoid reports whether the method returns nothing.
func (d *MethodDescriptor) IsVoid() bool { return d.Return == "V" }

// ParseMethodDescriptor parses a descriptor such as "(I[JLjava/lang/String;)V".
func ParseMethodDescriptor(desc string) (*MethodDescriptor, error) {
	if !strings.HasPrefix(desc, "(") {
		return nil, fmt.Errorf("invalid method descriptor %q: missing '('", desc)
	}
	md := &MethodDescriptor{}
	i := 1
	for i < len(desc) && desc[i] != ')' {
		t, n, err := parseFieldType(desc[i:])
		if err != nil {
			return nil, fmt.Errorf("invalid method descriptor %q: %w", desc, err)
		}
		md.Params = append(md.Params, t)
		i += n
	}
	if i >= len(desc) {
		return nil, fmt.Errorf("invalid method descriptor %q: missing ')'", desc)
	}
	rest := desc[i+1:]
	if rest == "V" {
		md.Return = "V"
		return md, nil
	}
	t, n, err := parseFieldType(rest)
	if err != nil || n != len(rest) {
		return nil, fmt.Errorf("invalid method descriptor %q: bad return type", desc)
	}
	md.Return = t
	return md, nil
}

// ParseFieldType parses a single field descriptor.
func ParseFieldType(desc string) (FieldType, error) {
	t, n, err := parseFieldType(desc)
	if err != nil {
		return "", err
	}
	if n != len(desc) {
		return "", fmt.Errorf("trailing data in field descriptor %q", desc)
	}
	return t, nil
}

func parseFieldType(s string) (FieldType, int, error) {
	if s == "" {
		return "", 0, fmt.Errorf("empty type")
	}
	switch s[0] {
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z':
		return FieldType(s[:1]), 1, nil
	case 'L':
		end := strings.IndexByte(s, ';')
		if end < 2 {
			return "", 0, fmt.Errorf("unterminated class type in %q", s)
		}
		return FieldType(s[:end+1]), end + 1, nil
	case '[':
		_, n, err := parseFieldType(s[1:])
		if err != nil {
			return "", 0, err
		}
		return FieldType(s[:n+1]), n + 1, nil
	default:
		return "", 0, fmt.Errorf("unknown type character %q", s[0])
	}
}
