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

// PeriodInput is the payload for creating a period
type PeriodInput struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	IsActive  bool   `json:"isActive"`
}

// PeriodPatch carries the updatable period fields; nil leaves a field alone
type PeriodPatch struct {
	Name      *string `json:"name"`
	StartDate *string `json:"startDate"`
	EndDate   *string `json:"endDate"`
	IsActive  *bool   `json:"isActive"`
}

// PeriodService manages terms of office. At most one period is active.
type PeriodService interface {
	List(ctx context.Context) ([]*entity.Period, error)
	// Active returns the flagged period, else the first one, else nil.
	Active(ctx context.Context) (*entity.Period, error)
	Create(ctx context.Context, input PeriodInput) (*entity.Period, error)
	Update(ctx context.Context, id string, patch PeriodPatch) (*entity.Period, error)
}

type periodServiceImpl struct {
	repo   port.PeriodRepository
	logger Logger
	now    func() time.Time
}

// NewPeriodService creates a new PeriodService
func NewPeriodService(repo port.PeriodRepository, logger Logger) PeriodService {
	return &periodServiceImpl{repo: repo, logger: logger, now: time.Now}
}

func (s *periodServiceImpl) List(ctx context.Context) ([]*entity.Period, error) {
	return s.repo.List(ctx)
}

func (s *periodServiceImpl) Active(ctx context.Context) (*entity.Period, error) {
	periods, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range periods {
		if p.IsActive {
			return p, nil
		}
	}
	if len(periods) > 0 {
		return periods[0], nil
	}
	return nil, nil
}

func (s *periodServiceImpl) Create(ctx context.Context, input PeriodInput) (*entity.Period, error) {
	p := &entity.Period{
		ID:        strings.TrimSpace(input.ID),
		Name:      strings.TrimSpace(input.Name),
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
		IsActive:  input.IsActive,
	}
	if p.ID == "" {
		p.ID = fmt.Sprintf("P%d", s.now().UnixMilli())
	}
	if p.Name == "" {
		p.Name = "Periode Baru"
	}
	if p.IsActive {
		if err := s.deactivateOthers(ctx, ""); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("Period created", "period_id", p.ID, "active", p.IsActive)
	return p, nil
}

func (s *periodServiceImpl) Update(ctx context.Context, id string, patch PeriodPatch) (*entity.Period, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.NotFoundf("Periode tidak ditemukan")
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.StartDate != nil {
		p.StartDate = *patch.StartDate
	}
	if patch.EndDate != nil {
		p.EndDate = *patch.EndDate
	}
	if patch.IsActive != nil {
		p.IsActive = *patch.IsActive
	}
	if p.IsActive {
		if err := s.deactivateOthers(ctx, p.ID); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// deactivateOthers clears the active flag on every period except keepID.
func (s *periodServiceImpl) deactivateOthers(ctx context.Context, keepID string) error {
	periods, err := s.repo.List(ctx)
	if err != nil {
		return err
	}
	for _, other := range periods {
		if other.ID == keepID || !other.IsActive {
			continue
		}
		other.IsActive = false
		if err := s.repo.Update(ctx, other); err != nil {
			return fmt.Errorf("failed to deactivate period %s: %w", other.ID, err)
		}
	}
	return nil
}
