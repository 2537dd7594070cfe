package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/saltyster/sbom-to-csv/internal/aggregate"
	"github.com/saltyster/sbom-to-csv/internal/merge"
	"github.com/saltyster/sbom-to-csv/internal/model"
)

type ReportMeta struct {
	SBOMPath       string `json:"sbom_path" yaml:"sbom_path"`
	SupplementPath string `json:"supplement_path" yaml:"supplement_path"`
	OutputPath     string `json:"output_path" yaml:"output_path"`
	Timestamp      string `json:"timestamp" yaml:"timestamp"`
	RootKey        string `json:"root_key" yaml:"root_key"`
}

type Report struct {
	Meta    ReportMeta        `json:"meta" yaml:"meta"`
	Stats   merge.Stats       `json:"stats" yaml:"stats"`
	Summary aggregate.Summary `json:"summary" yaml:"summary"`
}

// Output is the encoded content of one file a run produces.
type Output struct {
	Path string
	Data []byte
}

// InventoryOutput encodes the 22-column inventory CSV.
func InventoryOutput(path string, records []model.OutputRecord) (Output, error) {
	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, model.Header())
	for _, r := range records {
		rows = append(rows, r.Values())
	}
	return csvOutput(path, rows)
}

// SummaryOutput encodes the run summary. The format follows the extension:
// .json, .yaml/.yml, anything else Markdown.
func SummaryOutput(path string, rep Report) (Output, error) {
	var (
		data []byte
		err  error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		data, err = json.MarshalIndent(rep, "", "  ")
	case ".yaml", ".yml":
		data, err = yaml.Marshal(rep)
	default:
		data = []byte(generateMarkdown(rep))
	}
	if err != nil {
		return Output{}, fmt.Errorf("failed to encode summary: %w", err)
	}
	return Output{Path: path, Data: data}, nil
}

// WriteFlat writes flattened records under the given columns, leaving cells
// blank where a record has no such key.
func WriteFlat(path string, records []*model.FlatRecord, columns []string, style model.BoolStyle) error {
	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, columns)
	for _, r := range records {
		row := make([]string, len(columns))
		for i, c := range columns {
			if v, ok := r.Get(c); ok {
				row[i] = v.Text(style)
			}
		}
		rows = append(rows, row)
	}
	out, err := csvOutput(path, rows)
	if err != nil {
		return err
	}
	return Commit(out)
}

func csvOutput(path string, rows [][]string) (Output, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return Output{}, fmt.Errorf("failed to encode CSV: %w", err)
	}
	return Output{Path: path, Data: buf.Bytes()}, nil
}

// Commit writes every output to a temp file next to its destination and
// renames them, in order, only once all of them were written. If any write
// fails no destination is touched.
func Commit(outputs ...Output) error {
	staged := make([]stagedFile, 0, len(outputs))
	discard := func() {
		for _, s := range staged {
			os.Remove(s.tmp)
		}
	}

	for _, out := range outputs {
		s, err := stage(out)
		if err != nil {
			discard()
			return fmt.Errorf("failed to write %s: %w", out.Path, err)
		}
		staged = append(staged, s)
	}

	for i, s := range staged {
		if err := os.Rename(s.tmp, s.path); err != nil {
			staged = staged[i:]
			discard()
			return fmt.Errorf("failed to write %s: %w", s.path, err)
		}
	}
	return nil
}

type stagedFile struct {
	tmp  string
	path string
}

func stage(out Output) (stagedFile, error) {
	dir := filepath.Dir(out.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return stagedFile{}, err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(out.Path)+".*.tmp")
	if err != nil {
		return stagedFile{}, err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(out.Data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return stagedFile{}, err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return stagedFile{}, err
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return stagedFile{}, err
	}
	return stagedFile{tmp: tmpName, path: out.Path}, nil
}

func generateMarkdown(rep Report) string {
	var sb strings.Builder
	meta := rep.Meta

	sb.WriteString("# Component Inventory Summary\n\n")
	fmt.Fprintf(&sb, "**SBOM:** `%s`\n", meta.SBOMPath)
	fmt.Fprintf(&sb, "**Supplement:** `%s`\n", meta.SupplementPath)
	fmt.Fprintf(&sb, "**Output:** `%s`\n", meta.OutputPath)
	fmt.Fprintf(&sb, "**Timestamp:** %s\n\n", meta.Timestamp)

	sb.WriteString("## Records\n\n")
	sb.WriteString("| Source | Count |\n")
	sb.WriteString("| :--- | :--- |\n")
	fmt.Fprintf(&sb, "| SBOM + supplement | %d |\n", rep.Stats.DualSource)
	fmt.Fprintf(&sb, "| SBOM only | %d |\n", rep.Stats.SbomOnly)
	fmt.Fprintf(&sb, "| Total | %d |\n", rep.Stats.Packages)
	sb.WriteString("\n")

	sb.WriteString("## Ecosystems\n\n")
	if len(rep.Summary.Ecosystems) == 0 {
		sb.WriteString("_No package URLs._\n")
	} else {
		sb.WriteString("| Type | Count |\n")
		sb.WriteString("|---|---|\n")
		for _, e := range rep.Summary.Ecosystems {
			fmt.Fprintf(&sb, "| %s | %d |\n", escapeCell(e.Type), e.Count)
		}
	}
	if rep.Summary.MissingPurl > 0 {
		fmt.Fprintf(&sb, "\n*%d package(s) without purl*\n", rep.Summary.MissingPurl)
	}

	if len(rep.Summary.InvalidPurls) > 0 {
		fmt.Fprintf(&sb, "\n## Invalid Package URLs (%d)\n\n", len(rep.Summary.InvalidPurls))
		sb.WriteString("| Package | purl | Reason |\n")
		sb.WriteString("|---|---|---|\n")
		for _, p := range rep.Summary.InvalidPurls {
			fmt.Fprintf(&sb, "| %s | %s | %s |\n", escapeCell(p.Package), escapeCell(p.Purl), escapeCell(p.Reason))
		}
	}

	if len(rep.Stats.UnusedRows) > 0 {
		fmt.Fprintf(&sb, "\n## Unused Supplement Rows (%d)\n\n", len(rep.Stats.UnusedRows))
		sb.WriteString("> [!NOTE]\n")
		sb.WriteString("> These supplement rows did not match any package in the SBOM.\n\n")
		for _, name := range rep.Stats.UnusedRows {
			fmt.Fprintf(&sb, "- %s\n", escapeCell(name))
		}
	}

	return sb.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
