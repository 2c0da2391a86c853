package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/surat-menyurat/internal/application/port"
	"github.com/garyjia/surat-menyurat/internal/domain/entity"
	"github.com/garyjia/surat-menyurat/internal/infrastructure/persistence/memory"
	"github.com/garyjia/surat-menyurat/internal/infrastructure/persistence/schema"
)

type fixture struct {
	store   *memory.Store
	users   port.UserRepository
	members port.MemberRepository
	letters port.LetterRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.EnsureSchema(ctx))

	logger := zap.NewNop()
	f := &fixture{store: store}
	f.users = NewUserRepository(store, logger)
	f.members = NewMemberRepository(store, logger)
	f.letters = NewLetterRepository(store, f.users, f.members, logger)

	for _, u := range []*entity.User{
		{ID: "u1", Name: "Sari", Email: "sari@example.org", Role: entity.RoleCreator, Status: entity.UserStatusActive},
		{ID: "u2", Name: "Budi", Email: "budi@example.org", Role: entity.RoleApprover, Status: entity.UserStatusActive},
	} {
		require.NoError(t, f.users.Create(ctx, u))
	}
	require.NoError(t, f.members.Create(ctx, &entity.Member{UserID: "u2", PeriodID: "p1", Name: "Budi", Role: "Ketua"}))
	require.NoError(t, f.members.Create(ctx, &entity.Member{PeriodID: "p1", Name: "Rina", Role: "Sekretaris"}))
	return f
}

func TestLetterRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	created := time.Date(2025, 3, 1, 8, 30, 0, 0, time.UTC)
	lh := 1.5
	letter := &entity.Letter{
		ID:             "L1",
		Type:           entity.LetterTypeProposal,
		Subject:        "Proposal Bakti Sosial",
		Content:        "Isi",
		Status:         entity.LetterStatusPendingApproval,
		Priority:       entity.PriorityHigh,
		Classification: entity.ClassificationPublic,
		From:           "Ketua – Budi",
		To:             "Rektor",
		CC:             []string{"2"},
		ForwardedTo:    []entity.UserRef{{ID: "u2", Name: "stale"}},
		CreatedBy:      entity.UserRef{ID: "u1"},
		CreatedAt:      created,
		UpdatedAt:      created,
		ApprovalSteps: []entity.ApprovalStep{
			{ID: "s1", ApproverID: "u2", Order: 1, Status: entity.StepStatusPending},
		},
		StatusHistory: []entity.StatusHistoryEntry{
			{ID: "h1", Status: entity.LetterStatusPendingApproval, Action: entity.HistoryActionSubmit, ChangedBy: entity.UserRef{ID: "u1"}, ChangedAt: created},
		},
		LineHeight: &lh,
	}
	require.NoError(t, f.letters.Create(ctx, letter))

	got, err := f.letters.GetByID(ctx, "L1")
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, "Proposal Bakti Sosial", got.Subject)
	assert.Equal(t, entity.PriorityHigh, got.Priority)
	assert.True(t, created.Equal(got.CreatedAt))
	assert.Equal(t, "Sari", got.CreatedBy.Name)

	require.Len(t, got.ApprovalSteps, 1)
	assert.Equal(t, "u2", got.ApprovalSteps[0].ApproverID)
	require.NotNil(t, got.ApprovalSteps[0].Approver)
	assert.Equal(t, "Budi", got.ApprovalSteps[0].Approver.Name)

	require.Len(t, got.StatusHistory, 1)
	assert.Equal(t, "Sari", got.StatusHistory[0].ChangedBy.Name)

	require.Len(t, got.ForwardedTo, 1)
	assert.Equal(t, "Budi", got.ForwardedTo[0].Name)
	assert.Equal(t, []string{"Rina"}, got.CCDisplay)

	require.NotNil(t, got.LineHeight)
	assert.Equal(t, 1.5, *got.LineHeight)
	assert.Nil(t, got.FontSize)
}

func TestLetterRepository_HydrationDefaults(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.store.Append(ctx, schema.SheetLetters, schema.LetterHeaders, port.Row{
		"id":            "L9",
		"createdBy":     "u1",
		"approvalSteps": "{not json",
		"cc":            "",
	}))

	got, err := f.letters.GetByID(ctx, "L9")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, entity.LetterTypeSuratKeluar, got.Type)
	assert.Equal(t, entity.LetterStatusDraft, got.Status)
	assert.Equal(t, entity.PriorityNormal, got.Priority)
	assert.Equal(t, entity.ClassificationInternal, got.Classification)
	assert.Equal(t, entity.ContentJustifyDefault, got.ContentJustification)
	assert.Empty(t, got.ApprovalSteps)
	assert.Empty(t, got.CC)
}

func TestLetterRepository_SkipsUnknownCreator(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.store.Append(ctx, schema.SheetLetters, schema.LetterHeaders, port.Row{"id": "ghost", "createdBy": "nobody"}))
	require.NoError(t, f.store.Append(ctx, schema.SheetLetters, schema.LetterHeaders, port.Row{"id": "mine", "createdBy": entity.AdminAccountID}))

	letters, err := f.letters.List(ctx)
	require.NoError(t, err)
	require.Len(t, letters, 1)
	assert.Equal(t, "mine", letters[0].ID)
	assert.Equal(t, entity.RoleAdmin, letters[0].CreatedBy.Role)
}

func TestLetterRepository_LegacyMemberApprover(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	// member "1" is linked to user u2
	require.NoError(t, f.store.Append(ctx, schema.SheetLetters, schema.LetterHeaders, port.Row{
		"id":            "L2",
		"createdBy":     "u1",
		"approvalSteps": `[{"approverId":"1","order":1,"status":"pending"}]`,
	}))

	got, err := f.letters.GetByID(ctx, "L2")
	require.NoError(t, err)
	require.Len(t, got.ApprovalSteps, 1)
	assert.Equal(t, "u2", got.ApprovalSteps[0].ApproverID)
}

func TestLetterRepository_UpdateInPlace(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for _, id := range []string{"A", "B"} {
		require.NoError(t, f.letters.Create(ctx, &entity.Letter{ID: id, Subject: id, CreatedBy: entity.UserRef{ID: "u1"}}))
	}
	b, err := f.letters.GetByID(ctx, "B")
	require.NoError(t, err)
	b.Subject = "B2"
	require.NoError(t, f.letters.Update(ctx, b))

	letters, err := f.letters.List(ctx)
	require.NoError(t, err)
	require.Len(t, letters, 2)
	assert.Equal(t, "A", letters[0].Subject)
	assert.Equal(t, "B2", letters[1].Subject)

	missing := &entity.Letter{ID: "nope", CreatedBy: entity.UserRef{ID: "u1"}}
	assert.Error(t, f.letters.Update(ctx, missing))
}
