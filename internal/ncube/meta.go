package ncube

import (
	"encoding/json"
	"strings"
)

// MetaProperties is an insertion-ordered map with case-insensitive keys. The first
// spelling of a key is kept for display.
type MetaProperties struct {
	keys   []string
	values map[string]any
}

// NewMetaProperties returns an empty property map.
func NewMetaProperties() *MetaProperties {
	return &MetaProperties{values: make(map[string]any)}
}

// Set adds or replaces a property.
func (m *MetaProperties) Set(key string, value any) {
	lower := strings.ToLower(key)
	if _, ok := m.values[lower]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[lower] = value
}

// Get returns the property value.
func (m *MetaProperties) Get(key string) (any, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m.values[strings.ToLower(key)]
	return v, ok
}

// GetString returns a string property or "".
func (m *MetaProperties) GetString(key string) string {
	v, ok := m.Get(key)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// Remove deletes a property, reporting whether it existed.
func (m *MetaProperties) Remove(key string) bool {
	lower := strings.ToLower(key)
	if _, ok := m.values[lower]; !ok {
		return false
	}
	delete(m.values, lower)
	for i, k := range m.keys {
		if strings.ToLower(k) == lower {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
	return true
}

// Keys returns the display keys in insertion order.
func (m *MetaProperties) Keys() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len returns the number of properties.
func (m *MetaProperties) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Clone returns an independent copy.
func (m *MetaProperties) Clone() *MetaProperties {
	out := NewMetaProperties()
	if m == nil {
		return out
	}
	for _, k := range m.keys {
		out.Set(k, m.values[strings.ToLower(k)])
	}
	return out
}

type metaEntry struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// MarshalJSON keeps insertion order by encoding as a list.
func (m *MetaProperties) MarshalJSON() ([]byte, error) {
	entries := make([]metaEntry, 0, m.Len())
	for _, k := range m.Keys() {
		v, _ := m.Get(k)
		entries = append(entries, metaEntry{Key: k, Value: v})
	}
	return json.Marshal(entries)
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *MetaProperties) UnmarshalJSON(data []byte) error {
	var entries []metaEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	*m = *NewMetaProperties()
	for _, e := range entries {
		m.Set(e.Key, e.Value)
	}
	return nil
}
