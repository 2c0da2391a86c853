package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/garyjia/surat-menyurat/internal/application/port"
	"github.com/garyjia/surat-menyurat/internal/domain/entity"
	"github.com/garyjia/surat-menyurat/internal/infrastructure/persistence/schema"
	"go.uber.org/zap"
)

// appendWithID assigns the next numeric id when *id is empty, then appends.
func appendWithID(ctx context.Context, store port.TabularStore, sheet string, id *string, build func() port.Row) error {
	if *id == "" {
		rows, err := store.ReadAll(ctx, sheet)
		if err != nil {
			return err
		}
		*id = nextNumericID(rows)
	}
	return store.Append(ctx, sheet, schema.Headers(sheet), build())
}

// AwardeeRepository implements port.AwardeeRepository
type AwardeeRepository struct {
	store  port.TabularStore
	logger *zap.Logger
}

// NewAwardeeRepository creates a new awardee repository
func NewAwardeeRepository(store port.TabularStore, logger *zap.Logger) port.AwardeeRepository {
	return &AwardeeRepository{store: store, logger: logger}
}

func (r *AwardeeRepository) List(ctx context.Context) ([]*entity.Awardee, error) {
	rows, err := r.store.ReadAll(ctx, schema.SheetAwardees)
	if err != nil {
		r.logger.Error("Failed to read awardees", zap.Error(err))
		return nil, fmt.Errorf("failed to read awardees: %w", err)
	}
	thisYear := strconv.Itoa(time.Now().Year())
	out := make([]*entity.Awardee, 0, len(rows))
	for _, row := range rows {
		if row["id"] == "" {
			continue
		}
		year := strings.TrimSpace(row["year"])
		if _, err := strconv.Atoi(year); err != nil {
			year = thisYear
		}
		out = append(out, &entity.Awardee{
			ID:         row["id"],
			Name:       row["name"],
			University: row["university"],
			Major:      row["major"],
			Year:       year,
			Status:     orDefault(row["status"], entity.AwardeeStatusDefault),
		})
	}
	return out, nil
}

func (r *AwardeeRepository) Create(ctx context.Context, a *entity.Awardee) error {
	a.Status = orDefault(a.Status, entity.AwardeeStatusDefault)
	err := appendWithID(ctx, r.store, schema.SheetAwardees, &a.ID, func() port.Row {
		return port.Row{
			"id":         a.ID,
			"name":       a.Name,
			"university": a.University,
			"major":      a.Major,
			"year":       a.Year,
			"status":     a.Status,
		}
	})
	if err != nil {
		r.logger.Error("Failed to create awardee", zap.Error(err))
		return fmt.Errorf("failed to create awardee: %w", err)
	}
	return nil
}

// ProgramRepository implements port.ProgramRepository
type ProgramRepository struct {
	store  port.TabularStore
	logger *zap.Logger
}

// NewProgramRepository creates a new program repository
func NewProgramRepository(store port.TabularStore, logger *zap.Logger) port.ProgramRepository {
	return &ProgramRepository{store: store, logger: logger}
}

func clampProgress(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

func (r *ProgramRepository) List(ctx context.Context) ([]*entity.Program, error) {
	rows, err := r.store.ReadAll(ctx, schema.SheetPrograms)
	if err != nil {
		r.logger.Error("Failed to read programs", zap.Error(err))
		return nil, fmt.Errorf("failed to read programs: %w", err)
	}
	out := make([]*entity.Program, 0, len(rows))
	for _, row := range rows {
		if row["id"] == "" {
			continue
		}
		out = append(out, &entity.Program{
			ID:         row["id"],
			Name:       row["name"],
			Department: row["department"],
			Status:     orDefault(row["status"], entity.ProgramStatusDefault),
			Progress:   clampProgress(parseInt(row["progress"], 0)),
			StartDate:  row["startDate"],
			EndDate:    row["endDate"],
			PIC:        row["pic"],
		})
	}
	return out, nil
}

func (r *ProgramRepository) Create(ctx context.Context, p *entity.Program) error {
	p.Status = orDefault(p.Status, entity.ProgramStatusDefault)
	p.Progress = clampProgress(p.Progress)
	err := appendWithID(ctx, r.store, schema.SheetPrograms, &p.ID, func() port.Row {
		return port.Row{
			"id":         p.ID,
			"name":       p.Name,
			"department": p.Department,
			"status":     p.Status,
			"progress":   strconv.Itoa(p.Progress),
			"startDate":  p.StartDate,
			"endDate":    p.EndDate,
			"pic":        p.PIC,
		}
	})
	if err != nil {
		r.logger.Error("Failed to create program", zap.Error(err))
		return fmt.Errorf("failed to create program: %w", err)
	}
	return nil
}

// TransactionRepository implements port.TransactionRepository
type TransactionRepository struct {
	store  port.TabularStore
	logger *zap.Logger
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(store port.TabularStore, logger *zap.Logger) port.TransactionRepository {
	return &TransactionRepository{store: store, logger: logger}
}

func (r *TransactionRepository) List(ctx context.Context) ([]*entity.Transaction, error) {
	rows, err := r.store.ReadAll(ctx, schema.SheetTransactions)
	if err != nil {
		r.logger.Error("Failed to read transactions", zap.Error(err))
		return nil, fmt.Errorf("failed to read transactions: %w", err)
	}
	out := make([]*entity.Transaction, 0, len(rows))
	for _, row := range rows {
		if row["id"] == "" {
			continue
		}
		amount, err := strconv.ParseFloat(strings.TrimSpace(row["amount"]), 64)
		if err != nil {
			amount = 0
		}
		out = append(out, &entity.Transaction{
			ID:          row["id"],
			Description: row["description"],
			Amount:      amount,
			Date:        row["date"],
			Category:    row["category"],
		})
	}
	return out, nil
}

func (r *TransactionRepository) Create(ctx context.Context, t *entity.Transaction) error {
	err := appendWithID(ctx, r.store, schema.SheetTransactions, &t.ID, func() port.Row {
		return port.Row{
			"id":          t.ID,
			"description": t.Description,
			"amount":      strconv.FormatFloat(t.Amount, 'f', -1, 64),
			"date":        t.Date,
			"category":    t.Category,
		}
	})
	if err != nil {
		r.logger.Error("Failed to create transaction", zap.Error(err))
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// TemplateRepository implements port.TemplateRepository
type TemplateRepository struct {
	store  port.TabularStore
	logger *zap.Logger
}

// NewTemplateRepository creates a new template repository
func NewTemplateRepository(store port.TabularStore, logger *zap.Logger) port.TemplateRepository {
	return &TemplateRepository{store: store, logger: logger}
}

func (r *TemplateRepository) List(ctx context.Context) ([]*entity.Template, error) {
	rows, err := r.store.ReadAll(ctx, schema.SheetTemplates)
	if err != nil {
		r.logger.Error("Failed to read templates", zap.Error(err))
		return nil, fmt.Errorf("failed to read templates: %w", err)
	}
	out := make([]*entity.Template, 0, len(rows))
	for _, row := range rows {
		if row["id"] == "" {
			continue
		}
		out = append(out, &entity.Template{
			ID:              row["id"],
			Name:            row["name"],
			Kind:            orDefault(row["kind"], "surat"),
			SubjectTemplate: row["subjectTemplate"],
			ContentTemplate: row["contentTemplate"],
			Category:        row["category"],
			Description:     row["description"],
		})
	}
	return out, nil
}

// LetterReadRepository implements port.LetterReadRepository
type LetterReadRepository struct {
	store  port.TabularStore
	logger *zap.Logger
}

// NewLetterReadRepository creates a new read-mark repository
func NewLetterReadRepository(store port.TabularStore, logger *zap.Logger) port.LetterReadRepository {
	return &LetterReadRepository{store: store, logger: logger}
}

func (r *LetterReadRepository) ListByUser(ctx context.Context, userID string) ([]*entity.LetterRead, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return []*entity.LetterRead{}, nil
	}
	rows, err := r.store.ReadAll(ctx, schema.SheetLetterReads)
	if err != nil {
		return nil, fmt.Errorf("failed to read letter reads: %w", err)
	}
	out := []*entity.LetterRead{}
	for _, row := range rows {
		letterID := strings.TrimSpace(row["letterId"])
		if strings.TrimSpace(row["userId"]) != userID || letterID == "" {
			continue
		}
		out = append(out, &entity.LetterRead{UserID: userID, LetterID: letterID, ReadAt: row["readAt"]})
	}
	return out, nil
}

func (r *LetterReadRepository) Create(ctx context.Context, read *entity.LetterRead) error {
	row := port.Row{
		"userId":   strings.TrimSpace(read.UserID),
		"letterId": strings.TrimSpace(read.LetterID),
		"readAt":   read.ReadAt,
	}
	if err := r.store.Append(ctx, schema.SheetLetterReads, schema.LetterReadHeaders, row); err != nil {
		r.logger.Error("Failed to record letter read", zap.String("letter_id", read.LetterID), zap.Error(err))
		return fmt.Errorf("failed to record letter read: %w", err)
	}
	return nil
}
