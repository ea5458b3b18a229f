package placeholder

import (
	"encoding/json"
	"maps"
	"slices"
)

// Values is a string mapping that remembers the order in which keys were first set.
// The zero value is ready to use.
type Values struct {
	keys []string
	m    map[string]string
}

// NewValues builds Values from alternating key, value pairs.
func NewValues(pairs ...string) *Values {
	v := &Values{}
	for i := 0; i+1 < len(pairs); i += 2 {
		v.Set(pairs[i], pairs[i+1])
	}
	return v
}

// Set stores value under key. An existing key keeps its original position.
func (v *Values) Set(key, value string) {
	if v.m == nil {
		v.m = make(map[string]string)
	}
	if _, ok := v.m[key]; !ok {
		v.keys = append(v.keys, key)
	}
	v.m[key] = value
}

// Get returns the value stored under key.
func (v *Values) Get(key string) (string, bool) {
	if v == nil || v.m == nil {
		return "", false
	}
	value, ok := v.m[key]
	return value, ok
}

// Has reports whether key is set.
func (v *Values) Has(key string) bool {
	_, ok := v.Get(key)
	return ok
}

// Len returns the number of keys.
func (v *Values) Len() int {
	if v == nil {
		return 0
	}
	return len(v.keys)
}

// Keys returns the keys in insertion order.
func (v *Values) Keys() []string {
	if v == nil {
		return nil
	}
	return slices.Clone(v.keys)
}

// Map returns an unordered copy.
func (v *Values) Map() map[string]string {
	out := make(map[string]string, v.Len())
	if v != nil {
		maps.Copy(out, v.m)
	}
	return out
}

// Clone returns an independent copy.
func (v *Values) Clone() *Values {
	c := &Values{}
	for _, k := range v.Keys() {
		c.Set(k, v.m[k])
	}
	return c
}

// Lookup returns a LookupFunc reading from v.
func (v *Values) Lookup() LookupFunc {
	return v.Get
}

// MarshalJSON encodes v as a JSON object with keys in insertion order.
func (v *Values) MarshalJSON() ([]byte, error) {
	buf := []byte{'{'}
	for i, k := range v.Keys() {
		if i > 0 {
			buf = append(buf, ',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(v.m[k])
		if err != nil {
			return nil, err
		}
		buf = append(buf, key...)
		buf = append(buf, ':')
		buf = append(buf, val...)
	}
	return append(buf, '}'), nil
}
