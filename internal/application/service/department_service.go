package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/garyjia/surat-menyurat/internal/application/port"
	"github.com/garyjia/surat-menyurat/internal/domain/apperr"
	"github.com/garyjia/surat-menyurat/internal/domain/entity"
)

type DepartmentInput struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	PeriodID  string `json:"periodId"`
	SortOrder int    `json:"sortOrder"`
}

type DepartmentPatch struct {
	Name      *string `json:"name"`
	PeriodID  *string `json:"periodId"`
	SortOrder *int    `json:"sortOrder"`
}

// DepartmentService manages departments scoped to a period
type DepartmentService interface {
	// List returns departments of periodID, or of the active period when
	// periodID is empty.
	List(ctx context.Context, periodID string) ([]*entity.Department, error)
	Create(ctx context.Context, input DepartmentInput) (*entity.Department, error)
	Update(ctx context.Context, id string, patch DepartmentPatch) (*entity.Department, error)
	Delete(ctx context.Context, id string) error
}

type departmentServiceImpl struct {
	repo    port.DepartmentRepository
	periods PeriodService
	logger  Logger
	now     func() time.Time
}

// NewDepartmentService creates a new DepartmentService
func NewDepartmentService(repo port.DepartmentRepository, periods PeriodService, logger Logger) DepartmentService {
	return &departmentServiceImpl{repo: repo, periods: periods, logger: logger, now: time.Now}
}

func (s *departmentServiceImpl) List(ctx context.Context, periodID string) ([]*entity.Department, error) {
	if periodID == "" {
		active, err := s.periods.Active(ctx)
		if err != nil {
			return nil, err
		}
		if active == nil {
			return []*entity.Department{}, nil
		}
		periodID = active.ID
	}
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*entity.Department, 0, len(all))
	for _, d := range all {
		if d.PeriodID == periodID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *departmentServiceImpl) Create(ctx context.Context, input DepartmentInput) (*entity.Department, error) {
	d := &entity.Department{
		ID:        strings.TrimSpace(input.ID),
		Name:      orPlaceholder(input.Name, entity.DepartmentNameDefault),
		PeriodID:  input.PeriodID,
		SortOrder: input.SortOrder,
	}
	if d.ID == "" {
		d.ID = fmt.Sprintf("D%d", s.now().UnixMilli())
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *departmentServiceImpl) Update(ctx context.Context, id string, patch DepartmentPatch) (*entity.Department, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, apperr.NotFoundf("Departemen tidak ditemukan")
	}
	assign(&d.Name, patch.Name)
	assign(&d.PeriodID, patch.PeriodID)
	if patch.SortOrder != nil {
		d.SortOrder = *patch.SortOrder
	}
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *departmentServiceImpl) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Department deleted", "department_id", id)
	return nil
}
