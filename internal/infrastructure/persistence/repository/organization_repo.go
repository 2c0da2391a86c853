package repository

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/garyjia/surat-menyurat/internal/application/port"
	"github.com/garyjia/surat-menyurat/internal/domain/apperr"
	"github.com/garyjia/surat-menyurat/internal/domain/entity"
	"github.com/garyjia/surat-menyurat/internal/infrastructure/persistence/schema"
	"go.uber.org/zap"
)

// PeriodRepository implements port.PeriodRepository
type PeriodRepository struct {
	store  port.TabularStore
	logger *zap.Logger
}

// NewPeriodRepository creates a new period repository
func NewPeriodRepository(store port.TabularStore, logger *zap.Logger) port.PeriodRepository {
	return &PeriodRepository{store: store, logger: logger}
}

func (r *PeriodRepository) List(ctx context.Context) ([]*entity.Period, error) {
	rows, err := r.store.ReadAll(ctx, schema.SheetPeriods)
	if err != nil {
		r.logger.Error("Failed to read periods", zap.Error(err))
		return nil, fmt.Errorf("failed to read periods: %w", err)
	}
	periods := make([]*entity.Period, 0, len(rows))
	for _, row := range rows {
		if row["id"] == "" {
			continue
		}
		periods = append(periods, &entity.Period{
			ID:        row["id"],
			Name:      row["name"],
			StartDate: row["startDate"],
			EndDate:   row["endDate"],
			IsActive:  strings.EqualFold(strings.TrimSpace(row["isActive"]), "true"),
		})
	}
	return periods, nil
}

func (r *PeriodRepository) GetByID(ctx context.Context, id string) (*entity.Period, error) {
	periods, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range periods {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, nil
}

func (r *PeriodRepository) Create(ctx context.Context, period *entity.Period) error {
	if err := r.store.Append(ctx, schema.SheetPeriods, schema.PeriodHeaders, periodToRow(period)); err != nil {
		r.logger.Error("Failed to create period", zap.String("period_id", period.ID), zap.Error(err))
		return fmt.Errorf("failed to create period: %w", err)
	}
	return nil
}

func (r *PeriodRepository) Update(ctx context.Context, period *entity.Period) error {
	rows, err := r.store.ReadAll(ctx, schema.SheetPeriods)
	if err != nil {
		return fmt.Errorf("failed to read periods: %w", err)
	}
	index := findRowIndex(rows, period.ID)
	if index < 0 {
		return apperr.NotFoundf("Periode tidak ditemukan")
	}
	if err := r.store.UpdateRow(ctx, schema.SheetPeriods, index, schema.PeriodHeaders, periodToRow(period)); err != nil {
		r.logger.Error("Failed to update period", zap.String("period_id", period.ID), zap.Error(err))
		return fmt.Errorf("failed to update period: %w", err)
	}
	return nil
}

func periodToRow(p *entity.Period) port.Row {
	return port.Row{
		"id":        p.ID,
		"name":      p.Name,
		"startDate": p.StartDate,
		"endDate":   p.EndDate,
		"isActive":  strconv.FormatBool(p.IsActive),
	}
}

// DepartmentRepository implements port.DepartmentRepository
type DepartmentRepository struct {
	store  port.TabularStore
	logger *zap.Logger
}

// NewDepartmentRepository creates a new department repository
func NewDepartmentRepository(store port.TabularStore, logger *zap.Logger) port.DepartmentRepository {
	return &DepartmentRepository{store: store, logger: logger}
}

// List returns departments ordered by SortOrder
func (r *DepartmentRepository) List(ctx context.Context) ([]*entity.Department, error) {
	rows, err := r.store.ReadAll(ctx, schema.SheetDepartments)
	if err != nil {
		r.logger.Error("Failed to read departments", zap.Error(err))
		return nil, fmt.Errorf("failed to read departments: %w", err)
	}
	depts := make([]*entity.Department, 0, len(rows))
	for _, row := range rows {
		if row["id"] == "" {
			continue
		}
		depts = append(depts, &entity.Department{
			ID:        row["id"],
			Name:      row["name"],
			PeriodID:  row["periodId"],
			SortOrder: parseInt(row["sortOrder"], 0),
		})
	}
	sort.SliceStable(depts, func(i, j int) bool {
		return depts[i].SortOrder < depts[j].SortOrder
	})
	return depts, nil
}

func (r *DepartmentRepository) GetByID(ctx context.Context, id string) (*entity.Department, error) {
	depts, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, d := range depts {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, nil
}

func (r *DepartmentRepository) Create(ctx context.Context, dept *entity.Department) error {
	if err := r.store.Append(ctx, schema.SheetDepartments, schema.DepartmentHeaders, departmentToRow(dept)); err != nil {
		r.logger.Error("Failed to create department", zap.String("department_id", dept.ID), zap.Error(err))
		return fmt.Errorf("failed to create department: %w", err)
	}
	return nil
}

func (r *DepartmentRepository) Update(ctx context.Context, dept *entity.Department) error {
	return r.writeRow(ctx, dept.ID, departmentToRow(dept))
}

// Delete blanks the department row; the sheet keeps its position.
func (r *DepartmentRepository) Delete(ctx context.Context, id string) error {
	return r.writeRow(ctx, id, port.Row{"sortOrder": "0"})
}

func (r *DepartmentRepository) writeRow(ctx context.Context, id string, row port.Row) error {
	rows, err := r.store.ReadAll(ctx, schema.SheetDepartments)
	if err != nil {
		return fmt.Errorf("failed to read departments: %w", err)
	}
	index := findRowIndex(rows, id)
	if index < 0 {
		return apperr.NotFoundf("Departemen tidak ditemukan")
	}
	if err := r.store.UpdateRow(ctx, schema.SheetDepartments, index, schema.DepartmentHeaders, row); err != nil {
		r.logger.Error("Failed to write department", zap.String("department_id", id), zap.Error(err))
		return fmt.Errorf("failed to write department: %w", err)
	}
	return nil
}

func departmentToRow(d *entity.Department) port.Row {
	return port.Row{
		"id":        d.ID,
		"name":      d.Name,
		"periodId":  d.PeriodID,
		"sortOrder": strconv.Itoa(d.SortOrder),
	}
}
