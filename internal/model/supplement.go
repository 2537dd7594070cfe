package model

// SupplementRow is one data row of the supplement file. Every header column
// has a value; empty cells are "".
type SupplementRow struct {
	Index  int
	values map[string]string
}

func NewSupplementRow(index int, values map[string]string) SupplementRow {
	return SupplementRow{Index: index, values: values}
}

func (r SupplementRow) Get(column string) (string, bool) {
	v, ok := r.values[column]
	return v, ok
}

// HasValue reports whether at least one cell is non-empty.
func (r SupplementRow) HasValue() bool {
	for _, v := range r.values {
		if v != "" {
			return true
		}
	}
	return false
}

// SupplementTable holds the rows of the supplement file in file order.
type SupplementTable struct {
	Header []string
	Rows   []SupplementRow
}

func (t *SupplementTable) HasColumn(column string) bool {
	for _, h := range t.Header {
		if h == column {
			return true
		}
	}
	return false
}
