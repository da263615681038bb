package native

import "unicode/utf16"

// builtin lists the classes the VM implements itself, each with its
// superclass. java/lang/Object is the root.
var builtin = map[string]string{
	"java/lang/Object":           "",
	"java/lang/String":           "java/lang/Object",
	"java/lang/StringBuilder":    "java/lang/Object",
	"java/lang/Number":           "java/lang/Object",
	"java/lang/Integer":          "java/lang/Number",
	"java/lang/System":           "java/lang/Object",
	"java/lang/Math":             "java/lang/Object",
	"java/lang/Class":            "java/lang/Object",
	"java/io/OutputStream":       "java/lang/Object",
	"java/io/FilterOutputStream": "java/io/OutputStream",
	"java/io/PrintStream":        "java/io/FilterOutputStream",
	"java/util/AbstractMap":      "java/lang/Object",
	"java/util/HashMap":          "java/util/AbstractMap",

	"java/lang/Throwable":                       "java/lang/Object",
	"java/lang/Exception":                       "java/lang/Throwable",
	"java/lang/RuntimeException":                "java/lang/Exception",
	"java/lang/ArithmeticException":             "java/lang/RuntimeException",
	"java/lang/NullPointerException":            "java/lang/RuntimeException",
	"java/lang/ClassCastException":              "java/lang/RuntimeException",
	"java/lang/NegativeArraySizeException":      "java/lang/RuntimeException",
	"java/lang/ArrayStoreException":             "java/lang/RuntimeException",
	"java/lang/IllegalArgumentException":        "java/lang/RuntimeException",
	"java/lang/NumberFormatException":           "java/lang/IllegalArgumentException",
	"java/lang/IllegalStateException":           "java/lang/RuntimeException",
	"java/lang/UnsupportedOperationException":   "java/lang/RuntimeException",
	"java/lang/IndexOutOfBoundsException":       "java/lang/RuntimeException",
	"java/lang/ArrayIndexOutOfBoundsException":  "java/lang/IndexOutOfBoundsException",
	"java/lang/StringIndexOutOfBoundsException": "java/lang/IndexOutOfBoundsException",
	"java/lang/Error":                           "java/lang/Throwable",
	"java/lang/LinkageError":                    "java/lang/Error",
	"java/lang/ExceptionInInitializerError":     "java/lang/LinkageError",
	"java/lang/NoClassDefFoundError":            "java/lang/LinkageError",
	"java/lang/IncompatibleClassChangeError":    "java/lang/LinkageError",
	"java/lang/InstantiationError":              "java/lang/IncompatibleClassChangeError",
	"java/lang/AbstractMethodError":             "java/lang/IncompatibleClassChangeError",
	"java/lang/NoSuchFieldError":                "java/lang/IncompatibleClassChangeError",
	"java/lang/NoSuchMethodError":               "java/lang/IncompatibleClassChangeError",
	"java/lang/VirtualMachineError":             "java/lang/Error",
	"java/lang/StackOverflowError":              "java/lang/VirtualMachineError",

	// Interfaces of the classes above.
	"java/io/Serializable":   "java/lang/Object",
	"java/io/Closeable":      "java/lang/Object",
	"java/io/Flushable":      "java/lang/Object",
	"java/lang/Cloneable":    "java/lang/Object",
	"java/lang/Comparable":   "java/lang/Object",
	"java/lang/CharSequence": "java/lang/Object",
	"java/lang/Appendable":   "java/lang/Object",
	"java/util/Map":          "java/lang/Object",
}

var builtinInterfaces = map[string][]string{
	"java/lang/String":        {"java/io/Serializable", "java/lang/Comparable", "java/lang/CharSequence"},
	"java/lang/StringBuilder": {"java/io/Serializable", "java/lang/CharSequence", "java/lang/Appendable"},
	"java/lang/Integer":       {"java/lang/Comparable"},
	"java/lang/Number":        {"java/io/Serializable"},
	"java/lang/Throwable":     {"java/io/Serializable"},
	"java/util/HashMap":       {"java/util/Map", "java/lang/Cloneable", "java/io/Serializable"},
	"java/util/AbstractMap":   {"java/util/Map"},
	"java/io/OutputStream":    {"java/io/Closeable", "java/io/Flushable"},
}

// IsBuiltin reports whether the VM provides name itself.
func IsBuiltin(name string) bool {
	_, ok := builtin[name]
	return ok
}

// SuperOf returns the superclass of a built-in class. The second result is
// false for unknown classes; java/lang/Object has super "".
func SuperOf(name string) (string, bool) {
	super, ok := builtin[name]
	return super, ok
}

// InterfacesOf returns the direct superinterfaces of a built-in class.
func InterfacesOf(name string) []string {
	return builtinInterfaces[name]
}

// IsThrowable reports whether a built-in class extends java/lang/Throwable.
func IsThrowable(name string) bool {
	for {
		if name == "java/lang/Throwable" {
			return true
		}
		super, ok := builtin[name]
		if !ok || super == "" {
			return false
		}
		name = super
	}
}

// StringLength returns the number of UTF-16 code units in s.
func StringLength(s string) int {
	n := 0
	for _, r := range s {
		if r >= 0x10000 {
			n += 2
		} else {
			n++
		}
	}
	return n
}

// CharAt returns the UTF-16 code unit at index i.
func CharAt(s string, i int) (uint16, bool) {
	units := utf16.Encode([]rune(s))
	if i < 0 || i >= len(units) {
		return 0, false
	}
	return units[i], true
}

// DecodeUTF16 converts UTF-16 code units to a host string.
func DecodeUTF16(units []uint16) string {
	return string(utf16.Decode(units))
}

// StringHashCode computes String.hashCode: s[0]*31^(n-1) + ... + s[n-1]
// over UTF-16 code units, with int overflow.
func StringHashCode(s string) int32 {
	var h int32
	for _, u := range utf16.Encode([]rune(s)) {
		h = 31*h + int32(u)
	}
	return h
}

// JavaName converts an internal name to its binary form: java/lang/Object
// becomes java.lang.Object.
func JavaName(internal string) string {
	b := []byte(internal)
	for i, c := range b {
		if c == '/' {
			b[i] = '.'
		}
	}
	return string(b)
}
