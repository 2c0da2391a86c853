package sheets

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/surat-menyurat/internal/application/port"
	"github.com/garyjia/surat-menyurat/internal/domain/apperr"
	"github.com/garyjia/surat-menyurat/internal/infrastructure/persistence/schema"
)

const metaKey = "meta"

// Config configures the spreadsheet store
type Config struct {
	SpreadsheetID   string
	CredentialsJSON []byte
	Concurrency     int
	MetadataTTL     time.Duration
	ReadTTL         time.Duration
	Backoff         Backoff
}

// DefaultConfig returns the quota-friendly defaults without credentials.
func DefaultConfig() Config {
	return Config{
		Concurrency: 2,
		MetadataTTL: 10 * time.Minute,
		ReadTTL:     45 * time.Second,
		Backoff:     DefaultBackoff(),
	}
}

// Store is a port.TabularStore over one spreadsheet. Every call goes
// through the concurrency gate and the retry policy. Sheet titles, header
// rows and whole-sheet reads are cached.
type Store struct {
	api     api
	gate    *limiter
	backoff Backoff
	meta    *gridCache
	layouts *gridCache
	reads   *gridCache
	logger  *zap.Logger
}

// New connects to the spreadsheet. Missing credentials or spreadsheet id
// yield apperr.ErrStoreUnavailable.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (*Store, error) {
	if cfg.SpreadsheetID == "" || len(cfg.CredentialsJSON) == 0 {
		return nil, fmt.Errorf("spreadsheet not configured: %w", apperr.ErrStoreUnavailable)
	}

	client, err := newGoogleAPI(ctx, cfg.SpreadsheetID, cfg.CredentialsJSON)
	if err != nil {
		return nil, err
	}
	logger.Info("Sheets store ready", zap.String("spreadsheet_id", cfg.SpreadsheetID))
	return newStore(client, cfg, logger), nil
}

func newStore(client api, cfg Config, logger *zap.Logger) *Store {
	return &Store{
		api:     client,
		gate:    newLimiter(cfg.Concurrency),
		backoff: cfg.Backoff,
		meta:    newGridCache(cfg.MetadataTTL),
		layouts: newGridCache(cfg.MetadataTTL),
		reads:   newGridCache(cfg.ReadTTL),
		logger:  logger,
	}
}

func (s *Store) call(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	return s.gate.Do(ctx, func(ctx context.Context) error {
		return s.backoff.Do(ctx, s.logger, op, fn)
	})
}

func sheetRange(sheet string) string {
	return fmt.Sprintf("'%s'!A:AZ", sheet)
}

func headerRange(sheet string) string {
	return fmt.Sprintf("'%s'!1:1", sheet)
}

func rowRange(sheet string, index int) string {
	// +2: one for the header row, one for 1-based numbering
	return fmt.Sprintf("'%s'!A%d:AZ%d", sheet, index+2, index+2)
}

func (s *Store) ReadAll(ctx context.Context, sheet string) ([]port.Row, error) {
	if grid, ok := s.reads.get(sheet); ok {
		return schema.ToRows(grid), nil
	}

	var values [][][]interface{}
	err := s.call(ctx, "read "+sheet, func(ctx context.Context) error {
		var err error
		values, err = s.api.batchGet(ctx, []string{sheetRange(sheet)})
		return err
	})
	if err != nil {
		return nil, err
	}

	var grid [][]string
	if len(values) > 0 {
		grid = toStrings(values[0])
	}
	s.reads.set(sheet, grid)
	if len(grid) > 0 {
		s.layouts.set(sheet, grid[:1])
	}
	return schema.ToRows(grid), nil
}

// layout returns the column order of the sheet as it exists, read from its
// header row, extended by any of headers it lacks.
func (s *Store) layout(ctx context.Context, sheet string, headers []string) ([]string, error) {
	if cached, ok := s.layouts.get(sheet); ok && len(cached) > 0 {
		return schema.Layout(cached[0], headers), nil
	}

	var values [][][]interface{}
	err := s.call(ctx, "read header "+sheet, func(ctx context.Context) error {
		var err error
		values, err = s.api.batchGet(ctx, []string{headerRange(sheet)})
		return err
	})
	if err != nil {
		return nil, err
	}

	var current []string
	if len(values) > 0 && len(values[0]) > 0 {
		current = toStrings(values[0])[0]
		s.layouts.set(sheet, [][]string{current})
	}
	return schema.Layout(current, headers), nil
}

func (s *Store) Append(ctx context.Context, sheet string, headers []string, row port.Row) error {
	layout, err := s.layout(ctx, sheet, headers)
	if err != nil {
		return err
	}
	values := [][]interface{}{toInterfaces(schema.Values(layout, row))}
	return s.call(ctx, "append "+sheet, func(ctx context.Context) error {
		return s.api.append(ctx, sheetRange(sheet), values)
	})
}

func (s *Store) UpdateRow(ctx context.Context, sheet string, index int, headers []string, row port.Row) error {
	if index < 0 {
		return fmt.Errorf("row index %d out of range", index)
	}
	layout, err := s.layout(ctx, sheet, headers)
	if err != nil {
		return err
	}
	values := [][]interface{}{toInterfaces(schema.Values(layout, row))}
	return s.call(ctx, "update "+sheet, func(ctx context.Context) error {
		return s.api.update(ctx, rowRange(sheet, index), values)
	})
}

func (s *Store) titles(ctx context.Context) ([]string, error) {
	if cached, ok := s.meta.get(metaKey); ok && len(cached) > 0 {
		return cached[0], nil
	}

	var titles []string
	err := s.call(ctx, "metadata", func(ctx context.Context) error {
		var err error
		titles, err = s.api.sheetTitles(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.meta.set(metaKey, [][]string{titles})
	return titles, nil
}

// EnsureSchema creates missing sheets with headers and seed rows, then
// appends any header that existing sheets lack.
func (s *Store) EnsureSchema(ctx context.Context) error {
	existing, err := s.titles(ctx)
	if err != nil {
		return err
	}

	have := make(map[string]bool, len(existing))
	for _, t := range existing {
		have[t] = true
	}

	var missing, present []string
	for _, sheet := range schema.Sheets {
		if have[sheet] {
			present = append(present, sheet)
		} else {
			missing = append(missing, sheet)
		}
	}

	if len(missing) > 0 {
		if err := s.createSheets(ctx, missing); err != nil {
			return err
		}
		s.meta.set(metaKey, [][]string{append(append([]string(nil), existing...), missing...)})
	}

	return s.patchHeaders(ctx, present)
}

func (s *Store) createSheets(ctx context.Context, sheets []string) error {
	s.logger.Info("Creating sheets", zap.Strings("sheets", sheets))

	if err := s.call(ctx, "add sheets", func(ctx context.Context) error {
		return s.api.addSheets(ctx, sheets)
	}); err != nil {
		return err
	}

	for _, sheet := range sheets {
		s.layouts.set(sheet, [][]string{schema.Headers(sheet)})
		values := [][]interface{}{toInterfaces(schema.Headers(sheet))}
		for _, seed := range schema.SeedValues(sheet) {
			values = append(values, toInterfaces(seed))
		}
		rng := fmt.Sprintf("'%s'!A1", sheet)
		if err := s.call(ctx, "init "+sheet, func(ctx context.Context) error {
			return s.api.update(ctx, rng, values)
		}); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) patchHeaders(ctx context.Context, sheets []string) error {
	if len(sheets) == 0 {
		return nil
	}

	ranges := make([]string, len(sheets))
	for i, sheet := range sheets {
		ranges[i] = headerRange(sheet)
	}

	var headerRows [][][]interface{}
	if err := s.call(ctx, "read headers", func(ctx context.Context) error {
		var err error
		headerRows, err = s.api.batchGet(ctx, ranges)
		return err
	}); err != nil {
		return err
	}

	for i, sheet := range sheets {
		var current []string
		if i < len(headerRows) && len(headerRows[i]) > 0 {
			current = toStrings(headerRows[i])[0]
		}
		missing := schema.MissingHeaders(current, schema.Headers(sheet))
		patched := schema.Layout(current, schema.Headers(sheet))
		s.layouts.set(sheet, [][]string{patched})
		if len(missing) == 0 {
			continue
		}

		s.logger.Info("Extending sheet headers", zap.String("sheet", sheet), zap.Strings("added", missing))
		values := [][]interface{}{toInterfaces(patched)}
		rng := fmt.Sprintf("'%s'!A1", sheet)
		if err := s.call(ctx, "patch "+sheet, func(ctx context.Context) error {
			return s.api.update(ctx, rng, values)
		}); err != nil {
			return err
		}
	}
	return nil
}

func toStrings(values [][]interface{}) [][]string {
	out := make([][]string, len(values))
	for i, row := range values {
		out[i] = make([]string, len(row))
		for j, cell := range row {
			if s, ok := cell.(string); ok {
				out[i][j] = s
			} else if cell != nil {
				out[i][j] = fmt.Sprint(cell)
			}
		}
	}
	return out
}

func toInterfaces(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
