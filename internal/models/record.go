package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotObject is returned when a record is decoded from JSON that is not an object.
var ErrNotObject = errors.New("record: json value is not an object")

// Record is a schema-less row: field names mapped to display primitives.
// Unlike a Go map it remembers the order its keys were first seen in.
type Record struct {
	keys   []string
	values map[string]any
}

// NewRecord creates an empty record.
func NewRecord() *Record {
	return &Record{values: make(map[string]any)}
}

// Set stores value under key. A new key is appended to the key order; an
// existing key keeps its position and takes the new value.
func (r *Record) Set(key string, value any) *Record {
	if r.values == nil {
		r.values = make(map[string]any)
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
	return r
}

// Get returns the value stored under key and whether the key exists.
func (r Record) Get(key string) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Keys returns the field names in order.
func (r Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of fields.
func (r Record) Len() int {
	return len(r.keys)
}

// Fields returns key/value pairs in key order.
func (r Record) Fields() []Field {
	out := make([]Field, 0, len(r.keys))
	for _, k := range r.keys {
		out = append(out, Field{Key: k, Value: r.values[k]})
	}
	return out
}

// Field is a single key/value pair of a Record.
type Field struct {
	Key   string
	Value any
}

// UnmarshalJSON decodes a JSON object keeping the source key order.
// Numbers are kept as json.Number so they display exactly as sent.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("read record: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return ErrNotObject
	}

	rec := Record{values: make(map[string]any)}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("read record key: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("read record key: unexpected token %v", keyTok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("read record value %q: %w", key, err)
		}
		value, err := decodeValue(raw)
		if err != nil {
			return fmt.Errorf("read record value %q: %w", key, err)
		}
		rec.Set(key, value)
	}

	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("read record end: %w", err)
	}

	*r = rec
	return nil
}

// MarshalJSON encodes the record as a JSON object in key order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, fmt.Errorf("marshal %q: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// decodeValue turns a raw JSON value into a display primitive. Objects and
// arrays are not display primitives; they are kept as compact JSON text.
func decodeValue(raw json.RawMessage) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, nil
	}
	switch trimmed[0] {
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, trimmed); err != nil {
			return nil, err
		}
		return json.RawMessage(buf.Bytes()), nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// RecordCollection is an ordered list of records that are expected, but not
// checked, to share the same keys in the same order.
type RecordCollection []Record

// LeaderboardCategory groups the ranked records of one leader category,
// e.g. home run leaders.
type LeaderboardCategory struct {
	Category string           `json:"category"`
	Rankings RecordCollection `json:"rankings"`
}
