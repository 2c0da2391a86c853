// Package memory provides an in-process TabularStore used by tests and the
// "memory" store driver.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/garyjia/surat-menyurat/internal/application/port"
	"github.com/garyjia/surat-menyurat/internal/infrastructure/persistence/schema"
)

// Store keeps each sheet as a grid whose first row holds the headers.
// Cells are positional, like the spreadsheet it stands in for.
type Store struct {
	mu     sync.RWMutex
	sheets map[string][][]string
}

func NewStore() *Store {
	return &Store{sheets: make(map[string][][]string)}
}

func (s *Store) ReadAll(ctx context.Context, sheet string) ([]port.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return schema.ToRows(s.sheets[sheet]), nil
}

// Append adds a row, creating the sheet with headers when it does not exist.
// Cells follow the sheet's own header row.
func (s *Store) Append(ctx context.Context, sheet string, headers []string, row port.Row) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.sheets[sheet]) == 0 {
		s.sheets[sheet] = [][]string{append([]string(nil), headers...)}
	}
	layout := schema.Layout(s.sheets[sheet][0], headers)
	s.sheets[sheet] = append(s.sheets[sheet], schema.Values(layout, row))
	return nil
}

func (s *Store) UpdateRow(ctx context.Context, sheet string, index int, headers []string, row port.Row) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	grid := s.sheets[sheet]
	if len(grid) == 0 {
		return fmt.Errorf("sheet %q does not exist", sheet)
	}
	if index < 0 {
		return fmt.Errorf("row index %d out of range", index)
	}
	for len(grid) <= index+1 {
		grid = append(grid, nil)
	}
	grid[index+1] = schema.Values(schema.Layout(grid[0], headers), row)
	s.sheets[sheet] = grid
	return nil
}

// EnsureSchema creates missing sheets and seeds the reference data, and
// appends any header a pre-existing sheet lacks.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sheet := range schema.Sheets {
		headers := schema.Headers(sheet)
		grid := s.sheets[sheet]
		if len(grid) == 0 {
			grid = [][]string{append([]string(nil), headers...)}
			for _, seed := range schema.SeedValues(sheet) {
				grid = append(grid, append([]string(nil), seed...))
			}
			s.sheets[sheet] = grid
			continue
		}
		if missing := schema.MissingHeaders(grid[0], headers); len(missing) > 0 {
			grid[0] = append(grid[0], missing...)
		}
	}
	return nil
}

// Load replaces a sheet with raw values, header row first. Tests use it to
// stage legacy layouts.
func (s *Store) Load(sheet string, values [][]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	grid := make([][]string, len(values))
	for i, v := range values {
		grid[i] = append([]string(nil), v...)
	}
	s.sheets[sheet] = grid
}

// Raw returns a copy of the sheet grid including the header row.
func (s *Store) Raw(sheet string) [][]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	grid := s.sheets[sheet]
	out := make([][]string, len(grid))
	for i, v := range grid {
		out[i] = append([]string(nil), v...)
	}
	return out
}
