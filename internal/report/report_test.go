package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/saltyster/sbom-to-csv/internal/aggregate"
	"github.com/saltyster/sbom-to-csv/internal/merge"
	"github.com/saltyster/sbom-to-csv/internal/model"
)

func writeInventory(t *testing.T, path string, records []model.OutputRecord) {
	t.Helper()
	out, err := InventoryOutput(path, records)
	require.NoError(t, err)
	require.NoError(t, Commit(out))
}

func writeSummary(t *testing.T, path string, rep Report) {
	t.Helper()
	out, err := SummaryOutput(path, rep)
	require.NoError(t, err)
	require.NoError(t, Commit(out))
}

func TestInventoryOutput(t *testing.T) {
	var rec model.OutputRecord
	rec.Set(model.PackageName, "lodash")
	rec.Set(model.SPDXID, "SPDXRef-1")
	rec.Set(model.PackageCopyrightText, "Copyright (c), \"OpenJS\"")

	path := filepath.Join(t.TempDir(), "out", "inventory.csv")
	writeInventory(t, path, []model.OutputRecord{rec})

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Join(model.Header(), ","), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], `lodash,SPDXRef-1,`))
	assert.Contains(t, lines[1], `"Copyright (c), ""OpenJS"""`)

	// No temp files left next to the output.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestInventoryOutput_EmptyHasHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.csv")
	writeInventory(t, path, nil)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, strings.Join(model.Header(), ",")+"\n", string(data))
}

func TestWriteFlat(t *testing.T) {
	a := model.NewFlatRecord()
	a.Set("name", model.String("a"))
	a.Set("filesAnalyzed", model.Bool(false))
	b := model.NewFlatRecord()
	b.Set("name", model.String("b"))
	b.Set("versionInfo", model.Number("2"))

	path := filepath.Join(t.TempDir(), "flat.csv")
	require.NoError(t, WriteFlat(path, []*model.FlatRecord{a, b}, []string{"name", "filesAnalyzed", "versionInfo"}, model.BoolStylePython))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "name,filesAnalyzed,versionInfo\na,False,\nb,,2\n", string(data))
}

func sampleReport() Report {
	return Report{
		Meta: ReportMeta{
			SBOMPath:       "sbom.json",
			SupplementPath: "supplement.csv",
			OutputPath:     "out.csv",
			Timestamp:      "2026-01-02T03:04:05Z",
			RootKey:        "packages",
		},
		Stats: merge.Stats{Packages: 3, DualSource: 1, SbomOnly: 2, UnusedRows: []string{"left-pad"}},
		Summary: aggregate.Summary{
			Ecosystems:   []aggregate.Ecosystem{{Type: "npm", Count: 2}},
			InvalidPurls: []aggregate.InvalidPurl{{Package: "x", Purl: "bad", Reason: "scheme | missing"}},
		},
	}
}

func TestSummaryOutput_Formats(t *testing.T) {
	dir := t.TempDir()
	rep := sampleReport()

	jsonPath := filepath.Join(dir, "summary.json")
	writeSummary(t, jsonPath, rep)
	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	var fromJSON Report
	require.NoError(t, json.Unmarshal(data, &fromJSON))
	assert.Equal(t, 3, fromJSON.Stats.Packages)
	assert.Equal(t, "packages", fromJSON.Meta.RootKey)

	yamlPath := filepath.Join(dir, "summary.yml")
	writeSummary(t, yamlPath, rep)
	data, err = os.ReadFile(yamlPath)
	require.NoError(t, err)
	var fromYAML Report
	require.NoError(t, yaml.Unmarshal(data, &fromYAML))
	assert.Equal(t, []string{"left-pad"}, fromYAML.Stats.UnusedRows)

	mdPath := filepath.Join(dir, "summary.md")
	writeSummary(t, mdPath, rep)
	data, err = os.ReadFile(mdPath)
	require.NoError(t, err)
	md := string(data)
	assert.Contains(t, md, "| SBOM only | 2 |")
	assert.Contains(t, md, "| npm | 2 |")
	assert.Contains(t, md, `scheme \| missing`)
	assert.Contains(t, md, "- left-pad")
}

func TestCommit_NothingRenamedOnFailure(t *testing.T) {
	dir := t.TempDir()
	inventory := filepath.Join(dir, "inventory.csv")
	require.NoError(t, os.WriteFile(inventory, []byte("previous\n"), 0644))

	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	err := Commit(
		Output{Path: inventory, Data: []byte("new\n")},
		Output{Path: filepath.Join(blocker, "summary.md"), Data: []byte("# summary\n")},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "summary.md")

	data, err := os.ReadFile(inventory)
	require.NoError(t, err)
	assert.Equal(t, "previous\n", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "staged temp files must be removed")
}

func TestCommit_WritesAll(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.csv")
	b := filepath.Join(dir, "sub", "b.md")

	require.NoError(t, Commit(Output{Path: a, Data: []byte("a")}, Output{Path: b, Data: []byte("b")}))

	data, err := os.ReadFile(a)
	require.NoError(t, err)
	assert.Equal(t, "a", string(data))
	data, err = os.ReadFile(b)
	require.NoError(t, err)
	assert.Equal(t, "b", string(data))
}

func TestGenerateMarkdown_EscapesPipes(t *testing.T) {
	rep := sampleReport()
	rep.Summary.InvalidPurls = []aggregate.InvalidPurl{{Package: "a|b", Purl: "pkg|x", Reason: "bad"}}
	rep.Stats.UnusedRows = []string{"left|pad"}

	md := generateMarkdown(rep)
	assert.Contains(t, md, `| a\|b | pkg\|x | bad |`)
	assert.Contains(t, md, `- left\|pad`)
	assert.NotContains(t, md, "a|b")
}
