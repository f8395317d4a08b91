package query

import (
	"encoding/json"
	"fmt"
)

// -------------------------------------------------------------------
// Doc – insertion-ordered nested map. The compiled request body is a
// tree of Docs so that the same builder state always marshals to the
// same bytes (Go maps randomize iteration; Elasticsearch does not care
// about key order but our tests, logs and caches do).
// -------------------------------------------------------------------

type Doc struct {
	keys []string
	vals map[string]any
}

// NewDoc returns an empty ordered document.
func NewDoc() *Doc {
	return &Doc{vals: make(map[string]any)}
}

// Set stores v under k. Re-setting an existing key overwrites the value
// but keeps the key's original position.
func (d *Doc) Set(k string, v any) *Doc {
	if _, ok := d.vals[k]; !ok {
		d.keys = append(d.keys, k)
	}
	d.vals[k] = v
	return d
}

// Get returns the value stored under k.
func (d *Doc) Get(k string) (any, bool) {
	v, ok := d.vals[k]
	return v, ok
}

// Len reports the number of keys.
func (d *Doc) Len() int { return len(d.keys) }

// Keys returns the keys in insertion order. The slice is a copy.
func (d *Doc) Keys() []string {
	out := make([]string, len(d.keys))
	copy(out, d.keys)
	return out
}

// MarshalJSON writes the document with keys in insertion order.
// Values may be scalars, *Doc, []any, or anything encoding/json accepts.
func (d *Doc) MarshalJSON() ([]byte, error) {
	buf := make([]byte, 0, 64)
	buf = append(buf, '{')
	for i, k := range d.keys {
		if i > 0 {
			buf = append(buf, ',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf = append(buf, kb...)
		buf = append(buf, ':')
		vb, err := json.Marshal(d.vals[k])
		if err != nil {
			return nil, fmt.Errorf("query: marshal key %q: %w", k, err)
		}
		buf = append(buf, vb...)
	}
	buf = append(buf, '}')
	return buf, nil
}
