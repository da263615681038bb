package classfile

import (
	"reflect"
	"testing"
)

func TestParseMethodDescriptor(t *testing.T) {
	tests := []struct {
		desc     string
		params   []FieldType
		ret      FieldType
		argSlots int
	}{
		{"()V", nil, "V", 0},
		{"(II)I", []FieldType{"I", "I"}, "I", 2},
		{"(JD)J", []FieldType{"J", "D"}, "J", 4},
		{"([Ljava/lang/String;)V", []FieldType{"[Ljava/lang/String;"}, "V", 1},
		{"(Ljava/lang/Object;[[IZ)Ljava/lang/String;", []FieldType{"Ljava/lang/Object;", "[[I", "Z"}, "Ljava/lang/String;", 3},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			md, err := ParseMethodDescriptor(tt.desc)
			if err != nil {
				t.Fatalf("ParseMethodDescriptor: %v", err)
			}
			if !reflect.DeepEqual(md.Params, tt.params) {
				t.Errorf("params: got %v, want %v", md.Params, tt.params)
			}
			if md.Return != tt.ret {
				t.Errorf("return: got %q, want %q", md.Return, tt.ret)
			}
			if md.ArgSlots() != tt.argSlots {
				t.Errorf("arg slots: got %d, want %d", md.ArgSlots(), tt.argSlots)
			}
		})
	}
}

func TestParseMethodDescriptorErrors(t *testing.T) {
	for _, desc := range []string{"", "V", "(I", "(X)V", "(Ljava/lang/String)V", "()", "()II"} {
		if _, err := ParseMethodDescriptor(desc); err == nil {
			t.Errorf("%q: expected error", desc)
		}
	}
}

func TestFieldType(t *testing.T) {
	ft, err := ParseFieldType("Ljava/lang/String;")
	if err != nil {
		t.Fatal(err)
	}
	if !ft.IsReference() || ft.ClassName() != "java/lang/String" || ft.Slots() != 1 {
		t.Errorf("got ref=%v class=%q slots=%d", ft.IsReference(), ft.ClassName(), ft.Slots())
	}
	if FieldType("D").Slots() != 2 || FieldType("I").IsReference() {
		t.Error("primitive type classification wrong")
	}
	if _, err := ParseFieldType("II"); err == nil {
		t.Error("expected trailing data error")
	}
}
