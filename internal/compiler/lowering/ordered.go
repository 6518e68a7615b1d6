package lowering

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// OrderedMap is a JSON object whose keys marshal in insertion order
// instead of encoding/json's alphabetical map ordering. The simple
// lowering (spec section 4.6) flattens attributes directly into object
// keys named after source identifiers, so a bare Go map would silently
// reorder every attribute/service/block alphabetically on marshal; this
// type is the object-shaped counterpart to the ordered entry arrays Full
// already uses for the same reason.
type OrderedMap struct {
	keys   []string
	values map[string]interface{}
}

// NewOrderedMap returns an empty OrderedMap.
func NewOrderedMap() *OrderedMap {
	return &OrderedMap{values: make(map[string]interface{})}
}

// Set inserts or updates key, appending it to the key order only on
// first insertion so repeated sets don't move a key.
func (m *OrderedMap) Set(key string, value interface{}) *OrderedMap {
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
	return m
}

// Get returns the value stored under key, if any.
func (m *OrderedMap) Get(key string) (interface{}, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (m *OrderedMap) Keys() []string {
	return m.keys
}

// Len returns the number of keys held.
func (m *OrderedMap) Len() int {
	return len(m.keys)
}

// MarshalJSON writes the object with keys in insertion order.
func (m *OrderedMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON parses a JSON object while preserving source key order,
// recursing into nested objects and arrays, so a round trip through the
// lowering cache's Redis tier doesn't lose ordering that MarshalJSON
// wrote.
func (m *OrderedMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	delim, ok := tok.(json.Delim)
	if !ok || delim != '{' {
		return fmt.Errorf("ordered map: expected object, got %v", tok)
	}

	m.keys = nil
	m.values = make(map[string]interface{})
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("ordered map: expected string key, got %v", keyTok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		value, err := decodeOrderedValue(raw)
		if err != nil {
			return err
		}
		m.Set(key, value)
	}
	_, err = dec.Token() // consume closing '}'
	return err
}

func decodeOrderedValue(raw json.RawMessage) (interface{}, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, nil
	}
	switch trimmed[0] {
	case '{':
		nested := NewOrderedMap()
		if err := nested.UnmarshalJSON(trimmed); err != nil {
			return nil, err
		}
		return nested, nil
	case '[':
		var rawItems []json.RawMessage
		if err := json.Unmarshal(trimmed, &rawItems); err != nil {
			return nil, err
		}
		items := make([]interface{}, len(rawItems))
		for i, it := range rawItems {
			v, err := decodeOrderedValue(it)
			if err != nil {
				return nil, err
			}
			items[i] = v
		}
		return items, nil
	default:
		var v interface{}
		if err := json.Unmarshal(trimmed, &v); err != nil {
			return nil, err
		}
		return v, nil
	}
}
