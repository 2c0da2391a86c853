package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"

	"go.uber.org/zap"

	"github.com/garyjia/surat-menyurat/internal/application/port"
	"github.com/garyjia/surat-menyurat/internal/infrastructure/persistence/schema"
	"github.com/garyjia/surat-menyurat/pkg/database"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Store is a TabularStore backed by a local SQLite file. Each sheet keeps
// its header row in `sheets` and positional cells in `sheet_rows`.
type Store struct {
	db     *DB
	logger *zap.Logger
}

// Open connects to the database at path and applies the store migrations.
func Open(ctx context.Context, path string, logger *zap.Logger) (*Store, *database.DB, error) {
	conn, err := database.New(database.Config{Path: path, MaxOpenConns: 1}, logger)
	if err != nil {
		return nil, nil, err
	}

	sub, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	if err := database.NewMigrator(conn, logger).RunMigrations(ctx, sub); err != nil {
		_ = conn.Close()
		return nil, nil, err
	}

	return NewStore(NewDB(conn.DB, logger), logger), conn, nil
}

// NewStore creates a store over db. Open also runs the migrations.
func NewStore(db *DB, logger *zap.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// headers loads the stored header row; ok is false for an unknown sheet
func (s *Store) headers(ctx context.Context, sheet string) ([]string, bool, error) {
	var raw string
	err := s.db.getExecutor(ctx).QueryRowContext(ctx,
		"SELECT headers FROM sheets WHERE name = ?", sheet).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read headers of %s: %w", sheet, err)
	}

	var headers []string
	if err := json.Unmarshal([]byte(raw), &headers); err != nil {
		return nil, false, fmt.Errorf("decode headers of %s: %w", sheet, err)
	}
	return headers, true, nil
}

// saveHeaders creates or replaces the header row of sheet
func (s *Store) saveHeaders(ctx context.Context, sheet string, headers []string) error {
	raw, err := json.Marshal(headers)
	if err != nil {
		return err
	}
	_, err = s.db.getExecutor(ctx).ExecContext(ctx, `
		INSERT INTO sheets (name, headers) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET headers = excluded.headers`,
		sheet, string(raw))
	if err != nil {
		return fmt.Errorf("save headers of %s: %w", sheet, err)
	}
	return nil
}

// ReadAll returns the data rows of sheet keyed by its header row
func (s *Store) ReadAll(ctx context.Context, sheet string) ([]port.Row, error) {
	headers, ok, err := s.headers(ctx, sheet)
	if err != nil || !ok {
		return []port.Row{}, err
	}

	rows, err := s.db.getExecutor(ctx).QueryContext(ctx,
		"SELECT row_index, cells FROM sheet_rows WHERE sheet = ? ORDER BY row_index", sheet)
	if err != nil {
		return nil, fmt.Errorf("read rows of %s: %w", sheet, err)
	}
	defer rows.Close()

	grid := [][]string{headers}
	for rows.Next() {
		var (
			index int
			raw   string
		)
		if err := rows.Scan(&index, &raw); err != nil {
			return nil, err
		}
		var cells []string
		if err := json.Unmarshal([]byte(raw), &cells); err != nil {
			s.logger.Error("Skipping undecodable row", zap.String("sheet", sheet), zap.Int("index", index), zap.Error(err))
			cells = nil
		}
		// gaps left by UpdateRow past the end read as blank rows
		for len(grid) < index+1 {
			grid = append(grid, nil)
		}
		grid = append(grid, cells)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return schema.ToRows(grid), nil
}

// Append writes row after the last data row, creating the sheet when needed.
// Cells follow the stored header row.
func (s *Store) Append(ctx context.Context, sheet string, headers []string, row port.Row) error {
	return s.db.WithTransaction(ctx, func(ctx context.Context) error {
		have, ok, err := s.headers(ctx, sheet)
		if err != nil {
			return err
		}
		if !ok {
			if err := s.saveHeaders(ctx, sheet, headers); err != nil {
				return err
			}
			have = headers
		}

		var next int
		if err := s.db.getExecutor(ctx).QueryRowContext(ctx,
			"SELECT COALESCE(MAX(row_index), -1) + 1 FROM sheet_rows WHERE sheet = ?", sheet).Scan(&next); err != nil {
			return fmt.Errorf("next row of %s: %w", sheet, err)
		}
		return s.putRow(ctx, sheet, next, schema.Values(schema.Layout(have, headers), row))
	})
}

// UpdateRow overwrites the data row at index
func (s *Store) UpdateRow(ctx context.Context, sheet string, index int, headers []string, row port.Row) error {
	if index < 0 {
		return fmt.Errorf("row index %d out of range", index)
	}
	return s.db.WithTransaction(ctx, func(ctx context.Context) error {
		have, ok, err := s.headers(ctx, sheet)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("sheet %q does not exist", sheet)
		}
		return s.putRow(ctx, sheet, index, schema.Values(schema.Layout(have, headers), row))
	})
}

// putRow upserts the cells of one row
func (s *Store) putRow(ctx context.Context, sheet string, index int, cells []string) error {
	raw, err := json.Marshal(cells)
	if err != nil {
		return err
	}
	_, err = s.db.getExecutor(ctx).ExecContext(ctx, `
		INSERT INTO sheet_rows (sheet, row_index, cells) VALUES (?, ?, ?)
		ON CONFLICT(sheet, row_index) DO UPDATE SET cells = excluded.cells, updated_at = CURRENT_TIMESTAMP`,
		sheet, index, string(raw))
	if err != nil {
		return fmt.Errorf("write row %d of %s: %w", index, sheet, err)
	}
	return nil
}

// EnsureSchema creates missing sheets with seed rows and extends the header
// rows of existing ones
func (s *Store) EnsureSchema(ctx context.Context) error {
	return s.db.WithTransaction(ctx, func(ctx context.Context) error {
		for _, sheet := range schema.Sheets {
			want := schema.Headers(sheet)
			have, ok, err := s.headers(ctx, sheet)
			if err != nil {
				return err
			}

			if ok {
				if missing := schema.MissingHeaders(have, want); len(missing) > 0 {
					s.logger.Info("Extending sheet headers", zap.String("sheet", sheet), zap.Strings("added", missing))
					if err := s.saveHeaders(ctx, sheet, append(have, missing...)); err != nil {
						return err
					}
				}
				continue
			}

			s.logger.Info("Creating sheet", zap.String("sheet", sheet))
			if err := s.saveHeaders(ctx, sheet, want); err != nil {
				return err
			}
			for _, seed := range schema.SeedRows(sheet) {
				if err := s.Append(ctx, sheet, want, seed); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// Verify interface compliance
var _ port.TabularStore = (*Store)(nil)
