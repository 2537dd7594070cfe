package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saltyster/sbom-to-csv/internal/model"
)

func flat(pairs ...string) *model.FlatRecord {
	r := model.NewFlatRecord()
	for i := 0; i+1 < len(pairs); i += 2 {
		r.Set(pairs[i], model.String(pairs[i+1]))
	}
	return r
}

func TestColumns(t *testing.T) {
	records := []*model.FlatRecord{
		flat("name", "a", "SPDXID", "1"),
		flat("name", "b", "versionInfo", "2.0", "SPDXID", "2"),
		flat("referenceLocator", "pkg:npm/c@1"),
	}

	assert.Equal(t, []string{"name", "SPDXID", "versionInfo", "referenceLocator"}, Columns(records))
	assert.Empty(t, Columns(nil))
}

func inventoryRow(name, purl string) model.OutputRecord {
	var r model.OutputRecord
	r.Set(model.PackageName, name)
	r.Set(model.Purl, purl)
	return r
}

func TestSummarize(t *testing.T) {
	records := []model.OutputRecord{
		inventoryRow("lodash", "pkg:npm/lodash@4.17.21"),
		inventoryRow("requests", "pkg:pypi/requests@2.31.0"),
		inventoryRow("express", "pkg:npm/express@4.18.2"),
		inventoryRow("cobra", "pkg:golang/github.com/spf13/cobra@v1.7.0"),
		inventoryRow("mystery", ""),
		inventoryRow("broken", "not-a-purl"),
	}

	s := Summarize(records)

	require.Len(t, s.Ecosystems, 3)
	assert.Equal(t, Ecosystem{Type: "npm", Count: 2}, s.Ecosystems[0])
	// Ties are ordered by type.
	assert.Equal(t, "golang", s.Ecosystems[1].Type)
	assert.Equal(t, "pypi", s.Ecosystems[2].Type)

	assert.Equal(t, 1, s.MissingPurl)
	require.Len(t, s.InvalidPurls, 1)
	assert.Equal(t, "broken", s.InvalidPurls[0].Package)
	assert.Equal(t, "not-a-purl", s.InvalidPurls[0].Purl)
	assert.NotEmpty(t, s.InvalidPurls[0].Reason)
}
