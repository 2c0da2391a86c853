package port

import "context"

// Row is one record of a sheet keyed by header name. Missing cells read as "".
type Row map[string]string

// TabularStore is a spreadsheet-like store of named sheets. Row indexes are
// 0-based positions among data rows (the header row is not counted).
type TabularStore interface {
	ReadAll(ctx context.Context, sheet string) ([]Row, error)
	Append(ctx context.Context, sheet string, headers []string, row Row) error
	UpdateRow(ctx context.Context, sheet string, index int, headers []string, row Row) error

	// EnsureSchema creates missing sheets with their header rows and seeds
	// reference data into sheets it had to create.
	EnsureSchema(ctx context.Context) error
}
