package flatten

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/saltyster/sbom-to-csv/internal/model"
)

// Node is a decoded JSON value: *Mapping, Sequence or Scalar.
type Node interface {
	isNode()
}

// Mapping is a JSON object with its keys in document order.
type Mapping struct {
	Entries []Entry
}

type Entry struct {
	Key   string
	Value Node
}

type Sequence []Node

type Scalar struct {
	Value model.Scalar
}

func (*Mapping) isNode() {}
func (Sequence) isNode() {}
func (Scalar) isNode()   {}

func (m *Mapping) Get(key string) (Node, bool) {
	for _, e := range m.Entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// Decode reads one JSON document keeping object key order. Number literals
// are kept verbatim. A repeated key replaces the earlier value in place.
func Decode(r io.Reader) (Node, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	node, err := decodeValue(dec)
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("%w: invalid JSON: %v", model.ErrDocumentStructure, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: unexpected data after JSON document", model.ErrDocumentStructure)
	}
	return node, nil
}

func decodeValue(dec *json.Decoder) (Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeMapping(dec)
		case '[':
			return decodeSequence(dec)
		}
		return nil, fmt.Errorf("unexpected delimiter %q", t)
	case string:
		return Scalar{Value: model.String(t)}, nil
	case json.Number:
		return Scalar{Value: model.Number(t.String())}, nil
	case bool:
		return Scalar{Value: model.Bool(t)}, nil
	case nil:
		return Scalar{Value: model.Null()}, nil
	default:
		return nil, fmt.Errorf("unexpected token %v", tok)
	}
}

func decodeMapping(dec *json.Decoder) (*Mapping, error) {
	m := &Mapping{}
	index := make(map[string]int)

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("object key is %T, not a string", tok)
		}
		value, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		if i, seen := index[key]; seen {
			m.Entries[i].Value = value
			continue
		}
		index[key] = len(m.Entries)
		m.Entries = append(m.Entries, Entry{Key: key, Value: value})
	}

	// closing '}'
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return m, nil
}

func decodeSequence(dec *json.Decoder) (Sequence, error) {
	seq := Sequence{}
	for dec.More() {
		value, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		seq = append(seq, value)
	}

	// closing ']'
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return seq, nil
}
