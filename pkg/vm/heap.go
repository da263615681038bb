package vm

// Heap stores objects and arrays addressed by Ref. Ref 0 is null and is
// never allocated. Nothing is reclaimed.
//
// Heap is not synchronized; the VM guards it with its RWMutex.
type Heap struct {
	entries  []any
	interned map[string]Ref
}

// NewHeap creates an empty heap.
func NewHeap() *Heap {
	return &Heap{
		entries:  []any{nil},
		interned: make(map[string]Ref),
	}
}

// Alloc stores an *Object or *Array and returns its reference.
func (h *Heap) Alloc(v any) Ref {
	h.entries = append(h.entries, v)
	return Ref(len(h.entries) - 1)
}

// Get returns the entry for r, or nil for null and dangling references.
func (h *Heap) Get(r Ref) any {
	if r == 0 || int(r) >= len(h.entries) {
		return nil
	}
	return h.entries[r]
}

// Object returns the object at r.
func (h *Heap) Object(r Ref) (*Object, bool) {
	o, ok := h.Get(r).(*Object)
	return o, ok
}

// Array returns the array at r.
func (h *Heap) Array(r Ref) (*Array, bool) {
	a, ok := h.Get(r).(*Array)
	return a, ok
}

// Len returns the number of allocated entries.
func (h *Heap) Len() int { return len(h.entries) - 1 }

// NewObject allocates an instance of className with no fields set.
func (h *Heap) NewObject(className string, native any) Ref {
	return h.Alloc(&Object{ClassName: className, Fields: make(map[string]Value), Native: native})
}

// NewArray allocates an array of n default elements.
func (h *Heap) NewArray(typ string, n int) Ref {
	elems := make([]Value, n)
	zero := elementZero(typ)
	for i := range elems {
		elems[i] = zero
	}
	return h.Alloc(&Array{Type: typ, Elements: elems})
}

// NewString allocates a java/lang/String holding s.
func (h *Heap) NewString(s string) Ref {
	return h.NewObject("java/lang/String", s)
}

// Intern returns the canonical String for s, allocating it on first use.
func (h *Heap) Intern(s string) Ref {
	if r, ok := h.interned[s]; ok {
		return r
	}
	r := h.NewString(s)
	h.interned[s] = r
	return r
}

// String returns the contents of the java/lang/String at r.
func (h *Heap) String(r Ref) (string, bool) {
	o, ok := h.Object(r)
	if !ok || o.ClassName != "java/lang/String" {
		return "", false
	}
	s, ok := o.Native.(string)
	return s, ok
}

// ClassOf returns the runtime class name of r, or "" for null.
func (h *Heap) ClassOf(r Ref) string {
	switch v := h.Get(r).(type) {
	case *Object:
		return v.ClassName
	case *Array:
		return v.ClassName()
	}
	return ""
}
