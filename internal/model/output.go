package model

// Field is a column of the component inventory, in report order.
type Field int

const (
	PackageName Field = iota
	SPDXID
	PackageVersion
	PackageFileName
	PackageSupplier
	PackageDownloadLocation
	FilesAnalyzed
	PackageHomePage
	PackageLicenseConcluded
	PackageLicenseDeclared
	PackageLicenseComments
	PackageCopyrightText
	PackageComment
	Cpe23Type
	Purl
	Advisory
	URL
	LicenseID
	ExtractedText
	LicenseName
	LicenseComment
	Relationship

	FieldCount = int(Relationship) + 1
)

var fieldNames = [FieldCount]string{
	"PackageName",
	"SPDXID",
	"PackageVersion",
	"PackageFileName",
	"PackageSupplier",
	"PackageDownloadLocation",
	"FilesAnalyzed",
	"PackageHomePage",
	"PackageLicenseConcluded",
	"PackageLicenseDeclared",
	"PackageLicenseComments",
	"PackageCopyrightText",
	"PackageComment",
	"cpe23Type",
	"purl",
	"advisory",
	"url",
	"LicenseID",
	"ExtractedText",
	"LicenseName",
	"LicenseComment",
	"Relationship",
}

// String returns the column name used in CSV headers and supplement files.
func (f Field) String() string {
	if f < 0 || int(f) >= FieldCount {
		return "Field(?)"
	}
	return fieldNames[f]
}

// Header returns the 22 column names in report order.
func Header() []string {
	out := make([]string, FieldCount)
	copy(out, fieldNames[:])
	return out
}

// OutputRecord is one inventory row. It always carries every field.
type OutputRecord [FieldCount]string

func (r *OutputRecord) Set(f Field, value string) {
	r[f] = value
}

func (r OutputRecord) Get(f Field) string {
	return r[f]
}

// Values returns the cells in header order.
func (r OutputRecord) Values() []string {
	out := make([]string, FieldCount)
	copy(out, r[:])
	return out
}
