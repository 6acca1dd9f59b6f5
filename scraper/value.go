package scraper

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Kind enumerates the JSON value kinds.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// Member is one key/value pair of a JSON object.
type Member struct {
	Key   string
	Value *Value
}

// Value is a decoded JSON node. Objects keep their members in document
// order; the listing walk depends on that order and encoding/json maps do
// not preserve it.
type Value struct {
	Kind    Kind
	Bool    bool
	Number  string
	Str     string
	Array   []*Value
	Members []Member
}

// Field returns the first member with the given key.
func (v *Value) Field(key string) (*Value, bool) {
	if v == nil || v.Kind != KindObject {
		return nil, false
	}
	for _, m := range v.Members {
		if m.Key == key {
			return m.Value, true
		}
	}
	return nil, false
}

// DecodeValue parses raw JSON into a Value tree, preserving object member
// order via the decoder's token stream.
func DecodeValue(data string) (*Value, error) {
	dec := json.NewDecoder(strings.NewReader(data))
	dec.UseNumber()
	return decodeValue(dec)
}

func decodeValue(dec *json.Decoder) (*Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decode json value: %w", err)
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := &Value{Kind: KindObject}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, fmt.Errorf("decode object key: %w", err)
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("unexpected object key token %v", keyTok)
				}
				val, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				obj.Members = append(obj.Members, Member{Key: key, Value: val})
			}
			if _, err := dec.Token(); err != nil {
				return nil, fmt.Errorf("decode object end: %w", err)
			}
			return obj, nil
		case '[':
			arr := &Value{Kind: KindArray}
			for dec.More() {
				val, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				arr.Array = append(arr.Array, val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, fmt.Errorf("decode array end: %w", err)
			}
			return arr, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %v", t)
	case string:
		return &Value{Kind: KindString, Str: t}, nil
	case json.Number:
		return &Value{Kind: KindNumber, Number: t.String()}, nil
	case bool:
		return &Value{Kind: KindBool, Bool: t}, nil
	case nil:
		return &Value{Kind: KindNull}, nil
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}
