package native

import (
	"bytes"
	"errors"
	"math"
	"testing"
)

func TestHashMap(t *testing.T) {
	t.Run("put and get", func(t *testing.T) {
		hm := NewHashMap[string, string]()
		hm.Put("key1", "value1")

		got, ok := hm.Get("key1")
		if !ok || got != "value1" {
			t.Errorf("Get(key1): got %v, %v, want %q", got, ok, "value1")
		}
	})

	t.Run("get missing key", func(t *testing.T) {
		hm := NewHashMap[string, string]()
		if got, ok := hm.Get("nonexistent"); ok {
			t.Errorf("Get(nonexistent): got %v, want missing", got)
		}
	})

	t.Run("overwrite value returns old", func(t *testing.T) {
		hm := NewHashMap[string, string]()
		hm.Put("key", "old")
		old, ok := hm.Put("key", "new")
		if !ok || old != "old" {
			t.Errorf("Put(key) old: got %v, %v", old, ok)
		}
		if got, _ := hm.Get("key"); got != "new" {
			t.Errorf("Get(key) after overwrite: got %v, want %q", got, "new")
		}
		if hm.Len() != 1 {
			t.Errorf("Len: got %d, want 1", hm.Len())
		}
	})

	t.Run("insertion order survives removal", func(t *testing.T) {
		hm := NewHashMap[int32, int32]()
		for i := int32(0); i < 4; i++ {
			hm.Put(i, i*i)
		}
		if v, ok := hm.Remove(1); !ok || v != 1 {
			t.Errorf("Remove(1): got %v, %v", v, ok)
		}
		if _, ok := hm.Remove(1); ok {
			t.Error("second Remove(1) found a value")
		}
		keys := hm.Keys()
		want := []int32{0, 2, 3}
		if len(keys) != len(want) {
			t.Fatalf("Keys: got %v, want %v", keys, want)
		}
		for i := range want {
			if keys[i] != want[i] {
				t.Errorf("Keys[%d]: got %d, want %d", i, keys[i], want[i])
			}
		}
		if hm.ContainsKey(1) || !hm.ContainsKey(3) {
			t.Error("ContainsKey mismatch")
		}
	})
}

func TestInteger(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int32
		err   bool
	}{
		{"positive", "42", 42, false},
		{"negative", "-100", -100, false},
		{"plus sign", "+7", 7, false},
		{"max", "2147483647", math.MaxInt32, false},
		{"min", "-2147483648", math.MinInt32, false},
		{"overflow", "2147483648", 0, true},
		{"empty", "", 0, true},
		{"sign only", "-", 0, true},
		{"space", " 1", 0, true},
		{"letters", "12a", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseInt(tt.input, 10)
			if tt.err {
				var nfe *NumberFormatError
				if !errors.As(err, &nfe) {
					t.Fatalf("ParseInt(%q): got err %v, want NumberFormatError", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseInt(%q): %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseInt(%q): got %d, want %d", tt.input, got, tt.want)
			}
		})
	}

	t.Run("cache bounds", func(t *testing.T) {
		if !IntegerCached(-128) || !IntegerCached(127) || IntegerCached(128) || IntegerCached(-129) {
			t.Error("cache bounds wrong")
		}
	})

	t.Run("message", func(t *testing.T) {
		_, err := ParseInt("x", 10)
		if err.Error() != `For input string: "x"` {
			t.Errorf("got %q", err.Error())
		}
	})
}

func TestFormatDouble(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{1, "1.0"},
		{-17, "-17.0"},
		{0.1, "0.1"},
		{3.14, "3.14"},
		{1e7, "1.0E7"},
		{1.5e10, "1.5E10"},
		{1e-3, "0.001"},
		{1e-4, "1.0E-4"},
		{0, "0.0"},
		{math.Copysign(0, -1), "-0.0"},
		{math.NaN(), "NaN"},
		{math.Inf(1), "Infinity"},
		{math.Inf(-1), "-Infinity"},
	}
	for _, tt := range tests {
		if got := FormatDouble(tt.in); got != tt.want {
			t.Errorf("FormatDouble(%v): got %q, want %q", tt.in, got, tt.want)
		}
	}

	if got := FormatFloat(0.1); got != "0.1" {
		t.Errorf("FormatFloat(0.1): got %q", got)
	}
	if got := FormatFloat(17); got != "17.0" {
		t.Errorf("FormatFloat(17): got %q", got)
	}
}

func TestPrintStream(t *testing.T) {
	var buf bytes.Buffer
	ps := NewPrintStream(&buf)
	ps.Print("a")
	ps.Println("b")
	ps.Println("")
	if got := buf.String(); got != "ab\n\n" {
		t.Errorf("got %q", got)
	}
}

func TestClasses(t *testing.T) {
	if !IsThrowable("java/lang/ArrayIndexOutOfBoundsException") {
		t.Error("AIOOBE should be throwable")
	}
	if IsThrowable("java/lang/String") || IsThrowable("com/example/Foo") {
		t.Error("non-throwables reported throwable")
	}
	if super, ok := SuperOf("java/lang/Object"); !ok || super != "" {
		t.Errorf("SuperOf(Object): got %q, %v", super, ok)
	}
	if _, ok := SuperOf("com/example/Foo"); ok {
		t.Error("unknown class has a super")
	}
}

func TestStrings(t *testing.T) {
	// "hello".hashCode() == 99162322
	if got := StringHashCode("hello"); got != 99162322 {
		t.Errorf("StringHashCode(hello): got %d", got)
	}
	if got := StringHashCode(""); got != 0 {
		t.Errorf("StringHashCode(\"\"): got %d", got)
	}
	// U+1F600 is two UTF-16 units
	s := "a\U0001F600"
	if got := StringLength(s); got != 3 {
		t.Errorf("StringLength: got %d, want 3", got)
	}
	if c, ok := CharAt(s, 1); !ok || c != 0xD83D {
		t.Errorf("CharAt(1): got %#x, %v", c, ok)
	}
	if _, ok := CharAt(s, 3); ok {
		t.Error("CharAt(3) should be out of range")
	}
	if got := JavaName("java/lang/Object"); got != "java.lang.Object" {
		t.Errorf("JavaName: got %q", got)
	}
}
