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

// MemberRepository implements port.MemberRepository
type MemberRepository struct {
	store  port.TabularStore
	logger *zap.Logger
}

// NewMemberRepository creates a new member repository
func NewMemberRepository(store port.TabularStore, logger *zap.Logger) port.MemberRepository {
	return &MemberRepository{
		store:  store,
		logger: logger,
	}
}

func (r *MemberRepository) List(ctx context.Context) ([]*entity.Member, error) {
	rows, err := r.store.ReadAll(ctx, schema.SheetMembers)
	if err != nil {
		r.logger.Error("Failed to read members", zap.Error(err))
		return nil, fmt.Errorf("failed to read members: %w", err)
	}
	members := make([]*entity.Member, 0, len(rows))
	for _, row := range rows {
		if row["id"] == "" {
			continue
		}
		members = append(members, rowToMember(row))
	}
	return members, nil
}

func (r *MemberRepository) GetByID(ctx context.Context, id string) (*entity.Member, error) {
	members, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, nil
}

// Create appends the member, assigning the next numeric id when ID is empty
func (r *MemberRepository) Create(ctx context.Context, member *entity.Member) error {
	if member.ID == "" {
		rows, err := r.store.ReadAll(ctx, schema.SheetMembers)
		if err != nil {
			return fmt.Errorf("failed to read members: %w", err)
		}
		member.ID = nextNumericID(rows)
	}
	if member.Status == "" {
		member.Status = entity.MemberStatusActive
	}
	if err := r.store.Append(ctx, schema.SheetMembers, schema.MemberHeaders, memberToRow(member)); err != nil {
		r.logger.Error("Failed to create member", zap.String("member_id", member.ID), zap.Error(err))
		return fmt.Errorf("failed to create member: %w", err)
	}
	return nil
}

func (r *MemberRepository) Update(ctx context.Context, member *entity.Member) error {
	rows, err := r.store.ReadAll(ctx, schema.SheetMembers)
	if err != nil {
		return fmt.Errorf("failed to read members: %w", err)
	}
	index := findRowIndex(rows, member.ID)
	if index < 0 {
		return apperr.NotFoundf("Anggota tidak ditemukan")
	}
	if err := r.store.UpdateRow(ctx, schema.SheetMembers, index, schema.MemberHeaders, memberToRow(member)); err != nil {
		r.logger.Error("Failed to update member", zap.String("member_id", member.ID), zap.Error(err))
		return fmt.Errorf("failed to update member: %w", err)
	}
	return nil
}

func rowToMember(row port.Row) *entity.Member {
	return &entity.Member{
		ID:         row["id"],
		UserID:     row["userId"],
		PeriodID:   row["periodId"],
		Name:       row["name"],
		Role:       row["role"],
		Department: row["department"],
		Email:      row["email"],
		Status:     orDefault(row["status"], entity.MemberStatusActive),
	}
}

func memberToRow(m *entity.Member) port.Row {
	return port.Row{
		"id":         m.ID,
		"userId":     m.UserID,
		"periodId":   m.PeriodID,
		"name":       m.Name,
		"role":       m.Role,
		"department": m.Department,
		"email":      m.Email,
		"status":     m.Status,
	}
}
