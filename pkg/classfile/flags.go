package classfile

// Access flags are stored as one uint16 newtype per record kind. Bits that are
// not defined for a kind are dropped when the flags are read from a class file.

// ClassAccessFlags are the access_flags of a ClassFile.
type ClassAccessFlags uint16

const (
	ClassPublic     ClassAccessFlags = 0x0001
	ClassFinal      ClassAccessFlags = 0x0010
	ClassSuper      ClassAccessFlags = 0x0020
	ClassInterface  ClassAccessFlags = 0x0200
	ClassAbstract   ClassAccessFlags = 0x0400
	ClassSynthetic  ClassAccessFlags = 0x1000
	ClassAnnotation ClassAccessFlags = 0x2000
	ClassEnum       ClassAccessFlags = 0x4000
	ClassModule     ClassAccessFlags = 0x8000

	classAccessMask = ClassPublic | ClassFinal | ClassSuper | ClassInterface | ClassAbstract |
		ClassSynthetic | ClassAnnotation | ClassEnum | ClassModule
)

// NewClassAccessFlags truncates raw to the bits defined for classes.
func NewClassAccessFlags(raw uint16) ClassAccessFlags {
	return ClassAccessFlags(raw) & classAccessMask
}

func (f ClassAccessFlags) Has(mask ClassAccessFlags) bool { return f&mask == mask }
func (f ClassAccessFlags) IsPublic() bool                 { return f.Has(ClassPublic) }
func (f ClassAccessFlags) IsFinal() bool                  { return f.Has(ClassFinal) }
func (f ClassAccessFlags) IsSuper() bool                  { return f.Has(ClassSuper) }
func (f ClassAccessFlags) IsInterface() bool              { return f.Has(ClassInterface) }
func (f ClassAccessFlags) IsAbstract() bool               { return f.Has(ClassAbstract) }
func (f ClassAccessFlags) IsSynthetic() bool              { return f.Has(ClassSynthetic) }
func (f ClassAccessFlags) IsAnnotation() bool             { return f.Has(ClassAnnotation) }
func (f ClassAccessFlags) IsEnum() bool                   { return f.Has(ClassEnum) }
func (f ClassAccessFlags) IsModule() bool                 { return f.Has(ClassModule) }

// FieldAccessFlags are the access_flags of a FieldInfo.
type FieldAccessFlags uint16

const (
	FieldPublic    FieldAccessFlags = 0x0001
	FieldPrivate   FieldAccessFlags = 0x0002
	FieldProtected FieldAccessFlags = 0x0004
	FieldStatic    FieldAccessFlags = 0x0008
	FieldFinal     FieldAccessFlags = 0x0010
	FieldVolatile  FieldAccessFlags = 0x0040
	FieldTransient FieldAccessFlags = 0x0080
	FieldSynthetic FieldAccessFlags = 0x1000
	FieldEnum      FieldAccessFlags = 0x4000

	fieldAccessMask = FieldPublic | FieldPrivate | FieldProtected | FieldStatic | FieldFinal |
		FieldVolatile | FieldTransient | FieldSynthetic | FieldEnum
)

// NewFieldAccessFlags truncates raw to the bits defined for fields.
func NewFieldAccessFlags(raw uint16) FieldAccessFlags {
	return FieldAccessFlags(raw) & fieldAccessMask
}

func (f FieldAccessFlags) Has(mask FieldAccessFlags) bool { return f&mask == mask }
func (f FieldAccessFlags) IsPublic() bool                 { return f.Has(FieldPublic) }
func (f FieldAccessFlags) IsPrivate() bool                { return f.Has(FieldPrivate) }
func (f FieldAccessFlags) IsProtected() bool              { return f.Has(FieldProtected) }
func (f FieldAccessFlags) IsStatic() bool                 { return f.Has(FieldStatic) }
func (f FieldAccessFlags) IsFinal() bool                  { return f.Has(FieldFinal) }
func (f FieldAccessFlags) IsVolatile() bool               { return f.Has(FieldVolatile) }
func (f FieldAccessFlags) IsTransient() bool              { return f.Has(FieldTransient) }
func (f FieldAccessFlags) IsSynthetic() bool              { return f.Has(FieldSynthetic) }
func (f FieldAccessFlags) IsEnum() bool                   { return f.Has(FieldEnum) }

// MethodAccessFlags are the access_flags of a MethodInfo.
type MethodAccessFlags uint16

const (
	MethodPublic       MethodAccessFlags = 0x0001
	MethodPrivate      MethodAccessFlags = 0x0002
	MethodProtected    MethodAccessFlags = 0x0004
	MethodStatic       MethodAccessFlags = 0x0008
	MethodFinal        MethodAccessFlags = 0x0010
	MethodSynchronized MethodAccessFlags = 0x0020
	MethodBridge       MethodAccessFlags = 0x0040
	MethodVarargs      MethodAccessFlags = 0x0080
	MethodNative       MethodAccessFlags = 0x0100
	MethodAbstract     MethodAccessFlags = 0x0400
	MethodStrict       MethodAccessFlags = 0x0800
	MethodSynthetic    MethodAccessFlags = 0x1000

	methodAccessMask = MethodPublic | MethodPrivate | MethodProtected | MethodStatic | MethodFinal |
		MethodSynchronized | MethodBridge | MethodVarargs | MethodNative | MethodAbstract |
		MethodStrict | MethodSynthetic
)

// NewMethodAccessFlags truncates raw to the bits defined for methods.
func NewMethodAccessFlags(raw uint16) MethodAccessFlags {
	return MethodAccessFlags(raw) & methodAccessMask
}

func (f MethodAccessFlags) Has(mask MethodAccessFlags) bool { return f&mask == mask }
func (f MethodAccessFlags) IsPublic() bool                  { return f.Has(MethodPublic) }
func (f MethodAccessFlags) IsPrivate() bool                 { return f.Has(MethodPrivate) }
func (f MethodAccessFlags) IsProtected() bool               { return f.Has(MethodProtected) }
func (f MethodAccessFlags) IsStatic() bool                  { return f.Has(MethodStatic) }
func (f MethodAccessFlags) IsFinal() bool                   { return f.Has(MethodFinal) }
func (f MethodAccessFlags) IsSynchronized() bool            { return f.Has(MethodSynchronized) }
func (f MethodAccessFlags) IsBridge() bool                  { return f.Has(MethodBridge) }
func (f MethodAccessFlags) IsVarargs() bool                 { return f.Has(MethodVarargs) }
func (f MethodAccessFlags) IsNative() bool                  { return f.Has(MethodNative) }
func (f MethodAccessFlags) IsAbstract() bool                { return f.Has(MethodAbstract) }
func (f MethodAccessFlags) IsStrict() bool                  { return f.Has(MethodStrict) }
func (f MethodAccessFlags) IsSynthetic() bool               { return f.Has(MethodSynthetic) }

// InnerClassAccessFlags are the inner_class_access_flags of an InnerClasses entry.
type InnerClassAccessFlags uint16

const (
	InnerClassPublic     InnerClassAccessFlags = 0x0001
	InnerClassPrivate    InnerClassAccessFlags = 0x0002
	InnerClassProtected  InnerClassAccessFlags = 0x0004
	InnerClassStatic     InnerClassAccessFlags = 0x0008
	InnerClassFinal      InnerClassAccessFlags = 0x0010
	InnerClassInterface  InnerClassAccessFlags = 0x0200
	InnerClassAbstract   InnerClassAccessFlags = 0x0400
	InnerClassSynthetic  InnerClassAccessFlags = 0x1000
	InnerClassAnnotation InnerClassAccessFlags = 0x2000
	InnerClassEnum       InnerClassAccessFlags = 0x4000

	innerClassAccessMask = InnerClassPublic | InnerClassPrivate | InnerClassProtected |
		InnerClassStatic | InnerClassFinal | InnerClassInterface | InnerClassAbstract |
		InnerClassSynthetic | InnerClassAnnotation | InnerClassEnum
)

// NewInnerClassAccessFlags truncates raw to the bits defined for inner classes.
func NewInnerClassAccessFlags(raw uint16) InnerClassAccessFlags {
	return InnerClassAccessFlags(raw) & innerClassAccessMask
}

func (f InnerClassAccessFlags) Has(mask InnerClassAccessFlags) bool { return f&mask == mask }
func (f InnerClassAccessFlags) IsPublic() bool                      { return f.Has(InnerClassPublic) }
func (f InnerClassAccessFlags) IsPrivate() bool                     { return f.Has(InnerClassPrivate) }
func (f InnerClassAccessFlags) IsProtected() bool                   { return f.Has(InnerClassProtected) }
func (f InnerClassAccessFlags) IsStatic() bool                      { return f.Has(InnerClassStatic) }
func (f InnerClassAccessFlags) IsFinal() bool                       { return f.Has(InnerClassFinal) }
func (f InnerClassAccessFlags) IsInterface() bool                   { return f.Has(InnerClassInterface) }
func (f InnerClassAccessFlags) IsAbstract() bool                    { return f.Has(InnerClassAbstract) }
func (f InnerClassAccessFlags) IsSynthetic() bool                   { return f.Has(InnerClassSynthetic) }
func (f InnerClassAccessFlags) IsAnnotation() bool                  { return f.Has(InnerClassAnnotation) }
func (f InnerClassAccessFlags) IsEnum() bool                        { return f.Has(InnerClassEnum) }

// MethodParameterAccessFlags are the access_flags of a MethodParameters entry.
type MethodParameterAccessFlags uint16

const (
	ParameterFinal     MethodParameterAccessFlags = 0x0010
	ParameterSynthetic MethodParameterAccessFlags = 0x1000
	ParameterMandated  MethodParameterAccessFlags = 0x8000

	parameterAccessMask = ParameterFinal | ParameterSynthetic | ParameterMandated
)

// NewMethodParameterAccessFlags truncates raw to the bits defined for parameters.
func NewMethodParameterAccessFlags(raw uint16) MethodParameterAccessFlags {
	return MethodParameterAccessFlags(raw) & parameterAccessMask
}

func (f MethodParameterAccessFlags) Has(mask MethodParameterAccessFlags) bool {
	return f&mask == mask
}
func (f MethodParameterAccessFlags) IsFinal() bool     { return f.Has(ParameterFinal) }
func (f MethodParameterAccessFlags) IsSynthetic() bool { return f.Has(ParameterSynthetic) }
func (f MethodParameterAccessFlags) IsMandated() bool  { return f.Has(ParameterMandated) }

// ModuleFlags are the module_flags of a Module attribute.
type ModuleFlags uint16

const (
	ModuleOpen      ModuleFlags = 0x0020
	ModuleSynthetic ModuleFlags = 0x1000
	ModuleMandated  ModuleFlags = 0x8000

	moduleFlagsMask = ModuleOpen | ModuleSynthetic | ModuleMandated
)

// NewModuleFlags truncates raw to the bits defined for modules.
func NewModuleFlags(raw uint16) ModuleFlags {
	return ModuleFlags(raw) & moduleFlagsMask
}

func (f ModuleFlags) Has(mask ModuleFlags) bool { return f&mask == mask }
func (f ModuleFlags) IsOpen() bool              { return f.Has(ModuleOpen) }
func (f ModuleFlags) IsSynthetic() bool         { return f.Has(ModuleSynthetic) }
func (f ModuleFlags) IsMandated() bool          { return f.Has(ModuleMandated) }

// RequiresFlags are the requires_flags of a Module requires entry.
type RequiresFlags uint16

const (
	RequiresTransitive  RequiresFlags = 0x0020
	RequiresStaticPhase RequiresFlags = 0x0040
	RequiresSynthetic   RequiresFlags = 0x1000
	RequiresMandated    RequiresFlags = 0x8000

	requiresFlagsMask = RequiresTransitive | RequiresStaticPhase | RequiresSynthetic | RequiresMandated
)

// NewRequiresFlags truncates raw to the bits defined for requires entries.
func NewRequiresFlags(raw uint16) RequiresFlags {
	return RequiresFlags(raw) & requiresFlagsMask
}

func (f RequiresFlags) Has(mask RequiresFlags) bool { return f&mask == mask }
func (f RequiresFlags) IsTransitive() bool          { return f.Has(RequiresTransitive) }
func (f RequiresFlags) IsStaticPhase() bool         { return f.Has(RequiresStaticPhase) }
func (f RequiresFlags) IsSynthetic() bool           { return f.Has(RequiresSynthetic) }
func (f RequiresFlags) IsMandated() bool            { return f.Has(RequiresMandated) }

// ExportsFlags are the exports_flags of a Module exports entry.
type ExportsFlags uint16

const (
	ExportsSynthetic ExportsFlags = 0x1000
	ExportsMandated  ExportsFlags = 0x8000
)

// NewExportsFlags truncates raw to the bits defined for exports entries.
func NewExportsFlags(raw uint16) ExportsFlags {
	return ExportsFlags(raw) & (ExportsSynthetic | ExportsMandated)
}

func (f ExportsFlags) Has(mask ExportsFlags) bool { return f&mask == mask }
func (f ExportsFlags) IsSynthetic() bool          { return f.Has(ExportsSynthetic) }
func (f ExportsFlags) IsMandated() bool           { return f.Has(ExportsMandated) }

// OpensFlags are the opens_flags of a Module opens entry.
type OpensFlags uint16

const (
	OpensSynthetic OpensFlags = 0x1000
	OpensMandated  OpensFlags = 0x8000
)

// NewOpensFlags truncates raw to the bits defined for opens entries.
func NewOpensFlags(raw uint16) OpensFlags {
	return OpensFlags(raw) & (OpensSynthetic | OpensMandated)
}

func (f OpensFlags) Has(mask OpensFlags) bool { return f&mask == mask }
func (f OpensFlags) IsSynthetic() bool        { return f.Has(OpensSynthetic) }
func (f OpensFlags) IsMandated() bool         { return f.Has(OpensMandated) }
