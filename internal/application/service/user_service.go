package service

import (
	"context"
	"time"

	"github.com/garyjia/surat-menyurat/internal/application/port"
	"github.com/garyjia/surat-menyurat/internal/domain/apperr"
	"github.com/garyjia/surat-menyurat/internal/domain/entity"
)

// UserPatch is the admin-editable subset of a user
type UserPatch struct {
	Name         *string `json:"name"`
	Role         *string `json:"role"`
	Status       *string `json:"status"`
	ApprovedAt   *string `json:"approvedAt"`
	ApprovedByID *string `json:"approvedById"`
}

// UserService manages accounts after registration
type UserService interface {
	List(ctx context.Context) ([]*entity.User, error)
	Get(ctx context.Context, id string) (*entity.User, error)
	// UpdateProfile lets a user change their own display name only.
	UpdateProfile(ctx context.Context, id, name string) (*entity.User, error)
	// AdminUpdate edits role/status. Activating an account stamps the approval.
	AdminUpdate(ctx context.Context, admin entity.Actor, id string, patch UserPatch) (*entity.User, error)
}

type userServiceImpl struct {
	repo   port.UserRepository
	logger Logger
	now    func() time.Time
}

// NewUserService creates a new UserService
func NewUserService(repo port.UserRepository, logger Logger) UserService {
	return &userServiceImpl{repo: repo, logger: logger, now: time.Now}
}

func (s *userServiceImpl) List(ctx context.Context) ([]*entity.User, error) {
	return s.repo.List(ctx)
}

func (s *userServiceImpl) Get(ctx context.Context, id string) (*entity.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperr.NotFoundf("User not found")
	}
	return u, nil
}

func (s *userServiceImpl) UpdateProfile(ctx context.Context, id, name string) (*entity.User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	u.Name = name
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *userServiceImpl) AdminUpdate(ctx context.Context, admin entity.Actor, id string, patch UserPatch) (*entity.User, error) {
	if !admin.IsAdmin() {
		return nil, apperr.Forbiddenf("Admin only")
	}
	if patch.Role != nil && !entity.IsValidRole(*patch.Role) {
		return nil, apperr.Validationf("Role tidak valid: %s", *patch.Role)
	}
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	assign(&u.Name, patch.Name)
	assign(&u.Role, patch.Role)
	assign(&u.Status, patch.Status)
	assign(&u.ApprovedAt, patch.ApprovedAt)
	assign(&u.ApprovedByID, patch.ApprovedByID)
	if patch.Status != nil && *patch.Status == entity.UserStatusActive {
		if patch.ApprovedAt == nil || *patch.ApprovedAt == "" {
			u.ApprovedAt = s.now().UTC().Format(time.RFC3339)
		}
		if patch.ApprovedByID == nil || *patch.ApprovedByID == "" {
			u.ApprovedByID = admin.ID
		}
	}

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	s.logger.Info("User updated by admin", "user_id", u.ID, "status", u.Status, "role", u.Role, "admin_id", admin.ID)
	return u, nil
}
