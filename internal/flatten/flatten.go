// Package flatten turns nested SBOM JSON into single-level records keyed by
// separator-joined paths.
package flatten

import (
	"fmt"
	"os"
	"strconv"

	"github.com/saltyster/sbom-to-csv/internal/model"
)

// Flatten collapses a mapping into one record.
//
// Nested mappings extend the path with their key. Scalars inside an array get
// the array path plus their index. Mappings inside an array are flattened from
// an empty path, so a single externalRefs object yields a stable
// "referenceLocator" key rather than "externalRefs,0,referenceLocator". When
// several array elements share keys, the last element wins.
func Flatten(m *Mapping, prefix, sep string) *model.FlatRecord {
	rec := model.NewFlatRecord()
	flattenMapping(rec, m, prefix, sep)
	return rec
}

func flattenMapping(rec *model.FlatRecord, m *Mapping, prefix, sep string) {
	for _, e := range m.Entries {
		key := e.Key
		if prefix != "" {
			key = prefix + sep + e.Key
		}

		switch v := e.Value.(type) {
		case *Mapping:
			flattenMapping(rec, v, key, sep)
		case Sequence:
			flattenSequence(rec, v, key, sep)
		case Scalar:
			rec.Set(key, v.Value)
		}
	}
}

func flattenSequence(rec *model.FlatRecord, seq Sequence, key, sep string) {
	for i, elem := range seq {
		indexed := key + sep + strconv.Itoa(i)

		switch v := elem.(type) {
		case *Mapping:
			flattenMapping(rec, v, "", sep)
		case Sequence:
			flattenSequence(rec, v, indexed, sep)
		case Scalar:
			rec.Set(indexed, v.Value)
		}
	}
}

// Records selects the entry list under rootKey and flattens each entry.
// An empty rootKey means the document itself is the list.
func Records(doc Node, rootKey, sep string) ([]*model.FlatRecord, error) {
	root := doc
	if rootKey != "" {
		m, ok := doc.(*Mapping)
		if !ok {
			return nil, fmt.Errorf("%w: document is not an object, cannot select %q", model.ErrDocumentStructure, rootKey)
		}
		v, ok := m.Get(rootKey)
		if !ok {
			return nil, fmt.Errorf("%w: root key %q not found", model.ErrDocumentStructure, rootKey)
		}
		root = v
	}

	seq, ok := root.(Sequence)
	if !ok {
		return nil, fmt.Errorf("%w: root %q is not an array", model.ErrDocumentStructure, rootKey)
	}

	records := make([]*model.FlatRecord, 0, len(seq))
	for i, entry := range seq {
		m, ok := entry.(*Mapping)
		if !ok {
			return nil, fmt.Errorf("%w: entry %d under %q is not an object", model.ErrDocumentStructure, i, rootKey)
		}
		records = append(records, Flatten(m, "", sep))
	}
	return records, nil
}

// FlattenFile decodes the JSON file at path and flattens the entries under rootKey.
func FlattenFile(path, rootKey, sep string) ([]*model.FlatRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SBOM: %w", err)
	}
	defer f.Close()

	doc, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return Records(doc, rootKey, sep)
}
