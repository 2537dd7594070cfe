package aggregate

import (
	"sort"

	"github.com/package-url/packageurl-go"

	"github.com/saltyster/sbom-to-csv/internal/model"
)

// Columns returns the union of keys across records in first-seen order.
// Records have sparse schemas, so this is the column set for a flat dump.
func Columns(records []*model.FlatRecord) []string {
	seen := make(map[string]struct{})
	var columns []string

	for _, r := range records {
		for _, k := range r.Keys() {
			if _, exists := seen[k]; exists {
				continue
			}
			seen[k] = struct{}{}
			columns = append(columns, k)
		}
	}
	return columns
}

type Ecosystem struct {
	Type  string `json:"type" yaml:"type"`
	Count int    `json:"count" yaml:"count"`
}

type InvalidPurl struct {
	Package string `json:"package" yaml:"package"`
	Purl    string `json:"purl" yaml:"purl"`
	Reason  string `json:"reason" yaml:"reason"`
}

type Summary struct {
	Ecosystems   []Ecosystem   `json:"ecosystems" yaml:"ecosystems"`
	MissingPurl  int           `json:"missing_purl" yaml:"missing_purl"`
	InvalidPurls []InvalidPurl `json:"invalid_purls" yaml:"invalid_purls"`
}

// Summarize counts inventory rows per purl type. Cells are never modified;
// unparsable purls are only listed.
func Summarize(records []model.OutputRecord) Summary {
	var s Summary
	counts := make(map[string]int)

	for _, r := range records {
		raw := r.Get(model.Purl)
		if raw == "" {
			s.MissingPurl++
			continue
		}
		p, err := packageurl.FromString(raw)
		if err != nil {
			s.InvalidPurls = append(s.InvalidPurls, InvalidPurl{
				Package: r.Get(model.PackageName),
				Purl:    raw,
				Reason:  err.Error(),
			})
			continue
		}
		counts[p.Type]++
	}

	s.Ecosystems = make([]Ecosystem, 0, len(counts))
	for t, c := range counts {
		s.Ecosystems = append(s.Ecosystems, Ecosystem{Type: t, Count: c})
	}

	sort.Slice(s.Ecosystems, func(i, j int) bool {
		ei, ej := s.Ecosystems[i], s.Ecosystems[j]

		// Count DESC
		if ei.Count != ej.Count {
			return ei.Count > ej.Count
		}

		// Type ASC
		return ei.Type < ej.Type
	})

	return s
}
