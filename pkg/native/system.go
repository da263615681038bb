// Package native holds the host-side pieces of the bootstrap classes the VM
// provides without a class path: java.io.PrintStream output, Java number
// formatting, boxed Integer rules, java.util.HashMap storage and the
// built-in class hierarchy.
package native

import (
	"io"
	"math"
	"strconv"
	"strings"
	"sync"
)

// PrintStream represents a java.io.PrintStream. It is shared by every
// thread that reads System.out, so writes are serialized.
type PrintStream struct {
	mu     sync.Mutex
	Writer io.Writer
}

// NewPrintStream wraps w.
func NewPrintStream(w io.Writer) *PrintStream {
	return &PrintStream{Writer: w}
}

// Print writes s.
func (ps *PrintStream) Print(s string) error {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	_, err := io.WriteString(ps.Writer, s)
	return err
}

// Println writes s followed by a newline.
func (ps *PrintStream) Println(s string) error {
	return ps.Print(s + "\n")
}

// FormatDouble formats d the way Double.toString does.
func FormatDouble(d float64) string {
	return formatJavaFloat(d, 64)
}

// FormatFloat formats f the way Float.toString does.
func FormatFloat(f float32) string {
	return formatJavaFloat(float64(f), 32)
}

func formatJavaFloat(d float64, bitSize int) string {
	switch {
	case math.IsNaN(d):
		return "NaN"
	case math.IsInf(d, 1):
		return "Infinity"
	case math.IsInf(d, -1):
		return "-Infinity"
	case d == 0:
		if math.Signbit(d) {
			return "-0.0"
		}
		return "0.0"
	}

	abs := math.Abs(d)
	if abs >= 1e-3 && abs < 1e7 {
		s := strconv.FormatFloat(d, 'f', -1, bitSize)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s
	}

	// Computerized scientific notation: 1.0E10, 1.234E-5
	s := strconv.FormatFloat(d, 'E', -1, bitSize)
	mant, exp, _ := strings.Cut(s, "E")
	if !strings.Contains(mant, ".") {
		mant += ".0"
	}
	n, _ := strconv.Atoi(exp)
	return mant + "E" + strconv.Itoa(n)
}

// FormatChar converts a UTF-16 code unit to a Go string. Lone surrogates
// become U+FFFD.
func FormatChar(c uint16) string {
	return string(rune(c))
}

// FormatBoolean formats b as "true" or "false".
func FormatBoolean(b bool) string {
	return strconv.FormatBool(b)
}
