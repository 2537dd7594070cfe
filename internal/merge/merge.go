// Package merge builds inventory rows from flattened SBOM packages and the
// supplement table.
package merge

import (
	"fmt"

	"github.com/saltyster/sbom-to-csv/internal/model"
)

// SBOM keys after flattening.
const (
	keyName             = "name"
	keySPDXID           = "SPDXID"
	keyVersionInfo      = "versionInfo"
	keyDownloadLocation = "downloadLocation"
	keyFilesAnalyzed    = "filesAnalyzed"
	keyLicenseConcluded = "licenseConcluded"
	// Absent from SPDX exports, so the supplement column supplies the value.
	keyLicenseDeclared  = "PackageLicenseDeclared"
	keyCopyrightText    = "copyrightText"
	keyReferenceLocator = "referenceLocator"
)

const (
	sourceSBOM       = "sbom"
	sourceSupplement = "supplement"
)

// Fields the SBOM may provide; in dual-source mode the supplement column of
// the same name is the fallback.
var sbomFallbacks = []struct {
	field model.Field
	key   string
}{
	{model.PackageVersion, keyVersionInfo},
	{model.PackageDownloadLocation, keyDownloadLocation},
	{model.FilesAnalyzed, keyFilesAnalyzed},
	{model.PackageLicenseConcluded, keyLicenseConcluded},
	{model.PackageLicenseDeclared, keyLicenseDeclared},
	{model.PackageCopyrightText, keyCopyrightText},
	{model.Purl, keyReferenceLocator},
}

// Fields only the supplement file can provide.
var supplementOnly = []model.Field{
	model.PackageFileName,
	model.PackageSupplier,
	model.PackageHomePage,
	model.PackageLicenseComments,
	model.PackageComment,
	model.Cpe23Type,
	model.Advisory,
	model.URL,
	model.LicenseID,
	model.ExtractedText,
	model.LicenseName,
	model.LicenseComment,
	model.Relationship,
}

type Options struct {
	BoolStyle model.BoolStyle
}

// Stats describes how the records were built.
type Stats struct {
	Packages   int      `json:"packages" yaml:"packages"`
	DualSource int      `json:"dual_source" yaml:"dual_source"`
	SbomOnly   int      `json:"sbom_only" yaml:"sbom_only"`
	UnusedRows []string `json:"unused_supplement_rows" yaml:"unused_supplement_rows"`
}

// BuildOutputRecords produces exactly one inventory row per package, in
// package order. A package is matched to the first supplement row whose
// PackageName equals its name; a matched row with no values at all counts as
// no match.
func BuildOutputRecords(pkgs []*model.FlatRecord, table *model.SupplementTable, opts Options) ([]model.OutputRecord, Stats, error) {
	if table == nil {
		table = &model.SupplementTable{}
	}
	if len(table.Rows) > 0 && !table.HasColumn(model.PackageName.String()) {
		return nil, Stats{}, &model.KeyMissingError{Source: sourceSupplement, Key: model.PackageName.String()}
	}

	stats := Stats{Packages: len(pkgs)}
	used := make([]bool, len(table.Rows))
	records := make([]model.OutputRecord, 0, len(pkgs))

	for i, pkg := range pkgs {
		name, ok := pkg.Get(keyName)
		if !ok {
			return nil, Stats{}, fmt.Errorf("package %d: %w", i, &model.KeyMissingError{Source: sourceSBOM, Key: keyName})
		}

		var (
			rec model.OutputRecord
			err error
		)
		pos, found := match(table, name)
		if found {
			used[pos] = true
		}
		if found && table.Rows[pos].HasValue() {
			rec, err = buildDualSource(pkg, table.Rows[pos], opts.BoolStyle)
			stats.DualSource++
		} else {
			rec, err = buildSbomOnly(pkg, opts.BoolStyle)
			stats.SbomOnly++
		}
		if err != nil {
			return nil, Stats{}, fmt.Errorf("package %d: %w", i, err)
		}
		records = append(records, rec)
	}

	for i, row := range table.Rows {
		if !used[i] {
			name, _ := row.Get(model.PackageName.String())
			stats.UnusedRows = append(stats.UnusedRows, name)
		}
	}

	return records, stats, nil
}

// match returns the position of the first row whose PackageName equals name.
// Names compare exactly: no trimming, no case folding, and a non-string name
// never equals a CSV cell.
func match(table *model.SupplementTable, name model.Scalar) (int, bool) {
	if name.Kind != model.KindString {
		return -1, false
	}
	for i, row := range table.Rows {
		if v, _ := row.Get(model.PackageName.String()); v == name.Raw {
			return i, true
		}
	}
	return -1, false
}

func buildDualSource(pkg *model.FlatRecord, row model.SupplementRow, style model.BoolStyle) (model.OutputRecord, error) {
	var rec model.OutputRecord
	if err := setIdentity(&rec, pkg, style); err != nil {
		return rec, err
	}
	pkgName := rec.Get(model.PackageName)

	for _, fb := range sbomFallbacks {
		if v, ok := pkg.Get(fb.key); model.IsPresentAndTruthy(v, ok) {
			rec.Set(fb.field, v.Text(style))
			continue
		}
		value, err := requireColumn(row, fb.field, pkgName)
		if err != nil {
			return rec, err
		}
		rec.Set(fb.field, value)
	}

	for _, field := range supplementOnly {
		value, err := requireColumn(row, field, pkgName)
		if err != nil {
			return rec, err
		}
		rec.Set(field, value)
	}

	return rec, nil
}

// buildSbomOnly leaves every field without an SBOM value empty. Download
// location, filesAnalyzed and the reference locator are mandatory here.
func buildSbomOnly(pkg *model.FlatRecord, style model.BoolStyle) (model.OutputRecord, error) {
	var rec model.OutputRecord
	if err := setIdentity(&rec, pkg, style); err != nil {
		return rec, err
	}
	pkgName := rec.Get(model.PackageName)

	if v, ok := pkg.Get(keyVersionInfo); model.IsPresentAndTruthy(v, ok) {
		rec.Set(model.PackageVersion, v.Text(style))
	}

	for _, req := range []struct {
		field model.Field
		key   string
	}{
		{model.PackageDownloadLocation, keyDownloadLocation},
		{model.FilesAnalyzed, keyFilesAnalyzed},
		{model.Purl, keyReferenceLocator},
	} {
		v, err := requireKey(pkg, req.key, pkgName)
		if err != nil {
			return rec, err
		}
		rec.Set(req.field, v.Text(style))
	}

	// No independent declared-license source without a supplement row.
	if v, ok := pkg.Get(keyLicenseConcluded); model.IsPresentAndTruthy(v, ok) {
		rec.Set(model.PackageLicenseConcluded, v.Text(style))
		rec.Set(model.PackageLicenseDeclared, v.Text(style))
	}

	if v, ok := pkg.Get(keyCopyrightText); model.IsPresentAndTruthy(v, ok) {
		rec.Set(model.PackageCopyrightText, v.Text(style))
	}

	return rec, nil
}

func setIdentity(rec *model.OutputRecord, pkg *model.FlatRecord, style model.BoolStyle) error {
	name, err := requireKey(pkg, keyName, "")
	if err != nil {
		return err
	}
	rec.Set(model.PackageName, name.Text(style))

	id, err := requireKey(pkg, keySPDXID, name.Raw)
	if err != nil {
		return err
	}
	rec.Set(model.SPDXID, id.Text(style))
	return nil
}

func requireKey(pkg *model.FlatRecord, key, pkgName string) (model.Scalar, error) {
	v, ok := pkg.Get(key)
	if !ok {
		return model.Scalar{}, &model.KeyMissingError{Source: sourceSBOM, Key: key, Package: pkgName}
	}
	return v, nil
}

func requireColumn(row model.SupplementRow, field model.Field, pkgName string) (string, error) {
	v, ok := row.Get(field.String())
	if !ok {
		return "", &model.KeyMissingError{Source: sourceSupplement, Key: field.String(), Package: pkgName}
	}
	return v, nil
}
