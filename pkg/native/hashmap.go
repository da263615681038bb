package native

// HashMap is the storage behind a java.util.HashMap. Keys are host values
// that already encode Java equality (string contents, boxed ints, object
// identity). Iteration follows insertion order.
type HashMap[K comparable, V any] struct {
	data map[K]V
	keys []K
}

// NewHashMap creates an empty map.
func NewHashMap[K comparable, V any]() *HashMap[K, V] {
	return &HashMap[K, V]{data: make(map[K]V)}
}

// Get returns the value for key.
func (m *HashMap[K, V]) Get(key K) (V, bool) {
	v, ok := m.data[key]
	return v, ok
}

// Put stores a key-value pair and returns the previous value, if any.
func (m *HashMap[K, V]) Put(key K, value V) (V, bool) {
	old, ok := m.data[key]
	if !ok {
		m.keys = append(m.keys, key)
	}
	m.data[key] = value
	return old, ok
}

// ContainsKey reports whether key is present.
func (m *HashMap[K, V]) ContainsKey(key K) bool {
	_, ok := m.data[key]
	return ok
}

// Remove deletes key and returns its value, if any.
func (m *HashMap[K, V]) Remove(key K) (V, bool) {
	old, ok := m.data[key]
	if !ok {
		return old, false
	}
	delete(m.data, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
	return old, true
}

// Len returns the number of entries.
func (m *HashMap[K, V]) Len() int { return len(m.data) }

// Keys returns the keys in insertion order.
func (m *HashMap[K, V]) Keys() []K {
	out := make([]K, len(m.keys))
	copy(out, m.keys)
	return out
}
