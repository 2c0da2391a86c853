package repository

import (
	"context"
	"fmt"

	"github.com/garyjia/surat-menyurat/internal/application/port"
	"github.com/garyjia/surat-menyurat/internal/domain/apperr"
	"github.com/garyjia/surat-menyurat/internal/domain/entity"
	"github.com/garyjia/surat-menyurat/internal/infrastructure/persistence/schema"
	"go.uber.org/zap"
)

// UserRepository implements port.UserRepository
type UserRepository struct {
	store  port.TabularStore
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(store port.TabularStore, logger *zap.Logger) port.UserRepository {
	return &UserRepository{
		store:  store,
		logger: logger,
	}
}

func (r *UserRepository) List(ctx context.Context) ([]*entity.User, error) {
	rows, err := r.store.ReadAll(ctx, schema.SheetUsers)
	if err != nil {
		r.logger.Error("Failed to read users", zap.Error(err))
		return nil, fmt.Errorf("failed to read users: %w", err)
	}
	users := make([]*entity.User, 0, len(rows))
	for _, row := range rows {
		if row["id"] == "" {
			continue
		}
		users = append(users, rowToUser(row))
	}
	return users, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	if id == "" {
		return nil, nil
	}
	users, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

// GetByEmail matches case-insensitively and includes the password hash
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	email = entity.NormalizeEmail(email)
	if email == "" {
		return nil, nil
	}
	users, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if entity.NormalizeEmail(u.Email) == email {
			return u, nil
		}
	}
	return nil, nil
}

func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	if user.Role == "" {
		user.Role = entity.RoleViewer
	}
	if user.Status == "" {
		user.Status = entity.UserStatusPending
	}
	if err := r.store.Append(ctx, schema.SheetUsers, schema.UserHeaders, userToRow(user)); err != nil {
		r.logger.Error("Failed to create user", zap.String("user_id", user.ID), zap.Error(err))
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// Update rewrites the user row. An empty PasswordHash keeps the stored one.
func (r *UserRepository) Update(ctx context.Context, user *entity.User) error {
	rows, err := r.store.ReadAll(ctx, schema.SheetUsers)
	if err != nil {
		return fmt.Errorf("failed to read users: %w", err)
	}
	index := findRowIndex(rows, user.ID)
	if index < 0 {
		return apperr.NotFoundf("Pengguna tidak ditemukan")
	}
	row := userToRow(user)
	if row["passwordHash"] == "" {
		row["passwordHash"] = rows[index]["passwordHash"]
	}
	if err := r.store.UpdateRow(ctx, schema.SheetUsers, index, schema.UserHeaders, row); err != nil {
		r.logger.Error("Failed to update user", zap.String("user_id", user.ID), zap.Error(err))
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

func rowToUser(row port.Row) *entity.User {
	return &entity.User{
		ID:           row["id"],
		Name:         row["name"],
		Email:        row["email"],
		Role:         orDefault(row["role"], entity.RoleViewer),
		Status:       orDefault(row["status"], entity.UserStatusActive),
		ApprovedAt:   row["approvedAt"],
		ApprovedByID: row["approvedById"],
		PasswordHash: row["passwordHash"],
	}
}

func userToRow(u *entity.User) port.Row {
	return port.Row{
		"id":           u.ID,
		"name":         u.Name,
		"email":        u.Email,
		"role":         u.Role,
		"passwordHash": u.PasswordHash,
		"status":       u.Status,
		"approvedAt":   u.ApprovedAt,
		"approvedById": u.ApprovedByID,
	}
}
