package native

import (
	"fmt"
	"math"
	"strconv"
)

// Bounds of the Integer.valueOf cache. Boxing a value in this range always
// yields the same object.
const (
	IntegerCacheLow  = -128
	IntegerCacheHigh = 127
)

// IntegerCached reports whether valueOf(v) must return a shared instance.
func IntegerCached(v int32) bool {
	return v >= IntegerCacheLow && v <= IntegerCacheHigh
}

// NumberFormatError is the host form of java.lang.NumberFormatException.
type NumberFormatError struct {
	Input string
}

func (e *NumberFormatError) Error() string {
	return fmt.Sprintf("For input string: \"%s\"", e.Input)
}

// ParseInt parses s the way Integer.parseInt(s, radix) does: an optional
// sign followed by at least one digit, with no surrounding whitespace.
func ParseInt(s string, radix int) (int32, error) {
	if radix < 2 || radix > 36 {
		return 0, fmt.Errorf("radix %d out of range", radix)
	}
	digits := s
	if len(digits) > 0 && (digits[0] == '-' || digits[0] == '+') {
		digits = digits[1:]
	}
	if digits == "" {
		return 0, &NumberFormatError{Input: s}
	}
	for _, c := range digits {
		if c > 0x7f {
			return 0, &NumberFormatError{Input: s}
		}
	}
	v, err := strconv.ParseInt(s, radix, 64)
	if err != nil || v < math.MinInt32 || v > math.MaxInt32 {
		return 0, &NumberFormatError{Input: s}
	}
	return int32(v), nil
}

// FormatInt formats v in decimal.
func FormatInt(v int32) string {
	return strconv.FormatInt(int64(v), 10)
}
