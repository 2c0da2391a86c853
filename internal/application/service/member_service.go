package service

import (
	"context"
	"strings"

	"github.com/garyjia/surat-menyurat/internal/application/port"
	"github.com/garyjia/surat-menyurat/internal/domain/apperr"
	"github.com/garyjia/surat-menyurat/internal/domain/entity"
)

// PeriodCurrent selects the active period's members in MemberService.List.
const PeriodCurrent = "current"

// MemberInput is the payload for creating a member
type MemberInput struct {
	UserID     string `json:"userId"`
	PeriodID   string `json:"periodId"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	Department string `json:"department"`
	Email      string `json:"email"`
	Status     string `json:"status"`
}

// MemberPatch carries the updatable member fields
type MemberPatch struct {
	UserID     *string `json:"userId"`
	PeriodID   *string `json:"periodId"`
	Name       *string `json:"name"`
	Role       *string `json:"role"`
	Department *string `json:"department"`
	Email      *string `json:"email"`
	Status     *string `json:"status"`
}

// MemberService manages period members and answers the member lookups the
// workflow relies on.
type MemberService interface {
	port.MemberDirectory

	// List filters by period id; "" returns all, PeriodCurrent the active period.
	List(ctx context.Context, periodID string) ([]*entity.Member, error)
	Create(ctx context.Context, input MemberInput) (*entity.Member, error)
	Update(ctx context.Context, id string, patch MemberPatch) (*entity.Member, error)
}

type memberServiceImpl struct {
	members port.MemberRepository
	users   port.UserRepository
	periods PeriodService
	logger  Logger
}

// NewMemberService creates a new MemberService
func NewMemberService(members port.MemberRepository, users port.UserRepository, periods PeriodService, logger Logger) MemberService {
	return &memberServiceImpl{
		members: members,
		users:   users,
		periods: periods,
		logger:  logger,
	}
}

func (s *memberServiceImpl) AllMembers(ctx context.Context) ([]*entity.Member, error) {
	return s.members.List(ctx)
}

// CurrentPeriodMembers returns the active period's members, or every member
// when no period exists.
func (s *memberServiceImpl) CurrentPeriodMembers(ctx context.Context) ([]*entity.Member, error) {
	active, err := s.periods.Active(ctx)
	if err != nil {
		return nil, err
	}
	if active == nil {
		return s.members.List(ctx)
	}
	return s.byPeriod(ctx, active.ID)
}

func (s *memberServiceImpl) List(ctx context.Context, periodID string) ([]*entity.Member, error) {
	switch periodID {
	case "":
		return s.members.List(ctx)
	case PeriodCurrent:
		return s.CurrentPeriodMembers(ctx)
	default:
		return s.byPeriod(ctx, periodID)
	}
}

func (s *memberServiceImpl) byPeriod(ctx context.Context, periodID string) ([]*entity.Member, error) {
	all, err := s.members.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*entity.Member, 0, len(all))
	for _, m := range all {
		if m.PeriodID == periodID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *memberServiceImpl) Create(ctx context.Context, input MemberInput) (*entity.Member, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperr.Validationf("Name is required")
	}
	userID := strings.TrimSpace(input.UserID)
	if err := s.checkLinkable(ctx, userID); err != nil {
		return nil, err
	}

	periodID := strings.TrimSpace(input.PeriodID)
	if periodID == "" {
		active, err := s.periods.Active(ctx)
		if err != nil {
			return nil, err
		}
		if active != nil {
			periodID = active.ID
		}
	}

	m := &entity.Member{
		UserID:     userID,
		PeriodID:   periodID,
		Name:       name,
		Role:       orPlaceholder(input.Role, entity.MemberRoleDefault),
		Department: orPlaceholder(input.Department, entity.PlaceholderValue),
		Email:      orPlaceholder(input.Email, entity.PlaceholderValue),
		Status:     orPlaceholder(input.Status, entity.MemberStatusActive),
	}
	if err := s.members.Create(ctx, m); err != nil {
		return nil, err
	}
	s.logger.Info("Member created", "member_id", m.ID, "period_id", m.PeriodID, "user_id", m.UserID)
	return m, nil
}

func (s *memberServiceImpl) Update(ctx context.Context, id string, patch MemberPatch) (*entity.Member, error) {
	m, err := s.members.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, apperr.NotFoundf("Anggota tidak ditemukan")
	}
	if patch.UserID != nil {
		uid := strings.TrimSpace(*patch.UserID)
		if uid != m.LinkedUserID() {
			if err := s.checkLinkable(ctx, uid); err != nil {
				return nil, err
			}
		}
		m.UserID = uid
	}
	assign(&m.PeriodID, patch.PeriodID)
	assign(&m.Name, patch.Name)
	assign(&m.Role, patch.Role)
	assign(&m.Department, patch.Department)
	assign(&m.Email, patch.Email)
	assign(&m.Status, patch.Status)

	if err := s.members.Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// checkLinkable verifies a member may be linked to userID. Empty is allowed.
func (s *memberServiceImpl) checkLinkable(ctx context.Context, userID string) error {
	if userID == "" {
		return nil
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return apperr.Validationf("User not found")
	}
	if !user.IsActive() {
		return apperr.Validationf("Hanya pengguna yang sudah disetujui (aktif) yang dapat ditugaskan sebagai anggota.")
	}
	return nil
}

func assign(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func orPlaceholder(v, fallback string) string {
	if v = strings.TrimSpace(v); v == "" {
		return fallback
	}
	return v
}
