package model

import (
	"errors"
	"fmt"
)

var (
	ErrDocumentStructure   = errors.New("document structure error")
	ErrMalformedSupplement = errors.New("malformed supplement")
	ErrKeyMissing          = errors.New("key missing")
	ErrUsage               = errors.New("usage error")
)

// KeyMissingError reports a mandatory key absent from an SBOM package entry
// or from a matched supplement row.
type KeyMissingError struct {
	Source  string // "sbom" or "supplement"
	Key     string
	Package string
}

func (e *KeyMissingError) Error() string {
	if e.Package == "" {
		return fmt.Sprintf("%s: %q missing from %s", ErrKeyMissing, e.Key, e.Source)
	}
	return fmt.Sprintf("%s: %q missing from %s entry for package %q", ErrKeyMissing, e.Key, e.Source, e.Package)
}

func (e *KeyMissingError) Is(target error) bool {
	return target == ErrKeyMissing
}
