package model

// FlatRecord is one flattened package entry. Keys keep document traversal
// order; setting an existing key replaces its value but not its position.
type FlatRecord struct {
	keys   []string
	values map[string]Scalar
}

func NewFlatRecord() *FlatRecord {
	return &FlatRecord{values: make(map[string]Scalar)}
}

func (r *FlatRecord) Set(key string, value Scalar) {
	if _, exists := r.values[key]; !exists {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

func (r *FlatRecord) Get(key string) (Scalar, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Keys returns a copy of the keys in insertion order.
func (r *FlatRecord) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

func (r *FlatRecord) Len() int {
	return len(r.keys)
}
