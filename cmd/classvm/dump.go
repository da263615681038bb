package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/urfave/cli.v1"

	"github.com/daimatz/classvm/pkg/classfile"
)

var (
	formatFlag = cli.StringFlag{
		Name:  "format",
		Value: "text",
		Usage: "text or cbor",
	}

	dumpCommand = cli.Command{
		Action:    dump,
		Name:      "dump",
		Usage:     "Print the decoded structure of a class file",
		ArgsUsage: "<file.class>",
		Flags:     []cli.Flag{formatFlag},
		Description: `
The dump command decodes a class file and prints its version, constant
pool, fields and methods. With --format cbor the same tree is written
to stdout as canonical CBOR.`,
	}
)

// canonical CBOR so equal class files dump to equal bytes
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	cborEncMode = em
}

type classSummary struct {
	Name        string          `cbor:"name"`
	Super       string          `cbor:"super,omitempty"`
	Major       uint16          `cbor:"major"`
	Minor       uint16          `cbor:"minor"`
	AccessFlags uint16          `cbor:"access"`
	Interfaces  []string        `cbor:"interfaces,omitempty"`
	Pool        []poolEntry     `cbor:"pool"`
	Fields      []memberSummary `cbor:"fields,omitempty"`
	Methods     []memberSummary `cbor:"methods,omitempty"`
	Attributes  []string        `cbor:"attributes,omitempty"`
}

type poolEntry struct {
	Index uint16 `cbor:"index"`
	Tag   string `cbor:"tag"`
	Value string `cbor:"value"`
}

type memberSummary struct {
	Name        string   `cbor:"name"`
	Descriptor  string   `cbor:"descriptor"`
	AccessFlags uint16   `cbor:"access"`
	Attributes  []string `cbor:"attributes,omitempty"`

	// Methods with a body only.
	CodeLength int    `cbor:"code_length,omitempty"`
	MaxStack   uint16 `cbor:"max_stack,omitempty"`
	MaxLocals  uint16 `cbor:"max_locals,omitempty"`
}

func dump(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return errors.New("usage: classvm dump [--format text|cbor] <file.class>")
	}
	cf, err := classfile.ParseFile(ctx.Args().First())
	if err != nil {
		return err
	}
	s, err := summarize(cf)
	if err != nil {
		return err
	}

	switch format := ctx.String(formatFlag.Name); format {
	case "text":
		return writeText(os.Stdout, s)
	case "cbor":
		data, err := cborEncMode.Marshal(s)
		if err != nil {
			return fmt.Errorf("encoding %s: %w", s.Name, err)
		}
		_, err = os.Stdout.Write(data)
		return err
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func summarize(cf *classfile.ClassFile) (*classSummary, error) {
	name, err := cf.ClassName()
	if err != nil {
		return nil, err
	}
	pool := cf.ConstantPool
	s := &classSummary{
		Name:        name,
		Super:       cf.SuperClassName(),
		Major:       cf.MajorVersion,
		Minor:       cf.MinorVersion,
		AccessFlags: uint16(cf.AccessFlags),
		Interfaces:  cf.InterfaceNames(),
		Attributes:  attributeNames(cf.Attributes),
	}
	pool.Entries(func(index uint16, entry classfile.ConstantPoolInfo) bool {
		s.Pool = append(s.Pool, poolEntry{Index: index, Tag: entry.Tag().String(), Value: describe(pool, index, entry)})
		return true
	})
	for i := range cf.Fields {
		f := &cf.Fields[i]
		s.Fields = append(s.Fields, memberSummary{
			Name:        f.Name(pool),
			Descriptor:  f.Descriptor(pool),
			AccessFlags: uint16(f.AccessFlags),
			Attributes:  attributeNames(f.Attributes),
		})
	}
	for i := range cf.Methods {
		m := &cf.Methods[i]
		ms := memberSummary{
			Name:        m.Name(pool),
			Descriptor:  m.Descriptor(pool),
			AccessFlags: uint16(m.AccessFlags),
			Attributes:  attributeNames(m.Attributes),
		}
		if code := m.Code(); code != nil {
			ms.CodeLength = len(code.Code)
			ms.MaxStack = code.MaxStack
			ms.MaxLocals = code.MaxLocals
		}
		s.Methods = append(s.Methods, ms)
	}
	return s, nil
}

func attributeNames(as classfile.Attributes) []string {
	var names []string
	for _, a := range as {
		names = append(names, a.AttributeName())
	}
	return names
}

// describe renders a pool entry the way javap's verbose listing does,
// with references resolved.
func describe(pool *classfile.ConstantPool, index uint16, entry classfile.ConstantPoolInfo) string {
	var (
		s   string
		err error
	)
	switch c := entry.(type) {
	case *classfile.ConstantUtf8:
		return c.String()
	case *classfile.ConstantInteger:
		return strconv.FormatInt(int64(c.Value), 10)
	case *classfile.ConstantFloat:
		return strconv.FormatFloat(float64(c.Value), 'g', -1, 32) + "f"
	case *classfile.ConstantLong:
		return strconv.FormatInt(c.Value, 10) + "l"
	case *classfile.ConstantDouble:
		return strconv.FormatFloat(c.Value, 'g', -1, 64) + "d"
	case *classfile.ConstantClass:
		s, err = pool.ClassName(index)
	case *classfile.ConstantString:
		s, err = pool.StringLiteral(index)
	case *classfile.ConstantFieldref:
		var ref *classfile.MemberRef
		if ref, err = pool.ResolveFieldref(index); err == nil {
			s = ref.String()
		}
	case *classfile.ConstantMethodref, *classfile.ConstantInterfaceMethodref:
		var ref *classfile.MemberRef
		if ref, err = pool.ResolveMethodref(index); err == nil {
			s = ref.String()
		}
	case *classfile.ConstantNameAndType:
		var name, desc string
		if name, desc, err = pool.NameAndType(index); err == nil {
			s = name + ":" + desc
		}
	case *classfile.ConstantMethodHandle:
		return fmt.Sprintf("kind %d #%d", c.ReferenceKind, c.ReferenceIndex)
	case *classfile.ConstantMethodType:
		s, err = pool.Utf8(c.DescriptorIndex)
	case *classfile.ConstantDynamic:
		return fmt.Sprintf("#%d:#%d", c.BootstrapMethodAttrIndex, c.NameAndTypeIndex)
	case *classfile.ConstantInvokeDynamic:
		return fmt.Sprintf("#%d:#%d", c.BootstrapMethodAttrIndex, c.NameAndTypeIndex)
	case *classfile.ConstantModule:
		s, err = pool.Utf8(c.NameIndex)
	case *classfile.ConstantPackage:
		s, err = pool.Utf8(c.NameIndex)
	}
	if err != nil {
		return "<" + err.Error() + ">"
	}
	return s
}

func writeText(w io.Writer, s *classSummary) error {
	p := &printer{w: w}
	p.printf("class %s\n", s.Name)
	if s.Super != "" {
		p.printf("  extends %s\n", s.Super)
	}
	for _, i := range s.Interfaces {
		p.printf("  implements %s\n", i)
	}
	p.printf("  version %d.%d, flags 0x%04x\n", s.Major, s.Minor, s.AccessFlags)

	p.printf("constant pool (%d entries):\n", len(s.Pool))
	for _, e := range s.Pool {
		p.printf("  #%-4d %-18s %s\n", e.Index, e.Tag, e.Value)
	}

	p.printf("fields (%d):\n", len(s.Fields))
	for _, f := range s.Fields {
		p.printf("  %s %s flags 0x%04x %v\n", f.Name, f.Descriptor, f.AccessFlags, f.Attributes)
	}
	p.printf("methods (%d):\n", len(s.Methods))
	for _, m := range s.Methods {
		p.printf("  %s%s flags 0x%04x %v\n", m.Name, m.Descriptor, m.AccessFlags, m.Attributes)
		if m.CodeLength > 0 {
			p.printf("    code %d bytes, max_stack %d, max_locals %d\n", m.CodeLength, m.MaxStack, m.MaxLocals)
		}
	}
	if len(s.Attributes) > 0 {
		p.printf("attributes %v\n", s.Attributes)
	}
	return p.err
}

// printer keeps the first write error.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}
