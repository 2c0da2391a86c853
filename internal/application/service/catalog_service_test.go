package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/surat-menyurat/internal/domain/apperr"
	"github.com/garyjia/surat-menyurat/internal/domain/entity"
)

type mockAwardeeRepo struct{ items []*entity.Awardee }

func (m *mockAwardeeRepo) List(ctx context.Context) ([]*entity.Awardee, error) { return m.items, nil }
func (m *mockAwardeeRepo) Create(ctx context.Context, a *entity.Awardee) error {
	m.items = append(m.items, a)
	return nil
}

type mockProgramRepo struct{ items []*entity.Program }

func (m *mockProgramRepo) List(ctx context.Context) ([]*entity.Program, error) { return m.items, nil }
func (m *mockProgramRepo) Create(ctx context.Context, p *entity.Program) error {
	m.items = append(m.items, p)
	return nil
}

type mockTransactionRepo struct {
	items     []*entity.Transaction
	createErr error
}

func (m *mockTransactionRepo) List(ctx context.Context) ([]*entity.Transaction, error) {
	return m.items, nil
}
func (m *mockTransactionRepo) Create(ctx context.Context, tx *entity.Transaction) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.items = append(m.items, tx)
	return nil
}

type mockTemplateRepo struct{ items []*entity.Template }

func (m *mockTemplateRepo) List(ctx context.Context) ([]*entity.Template, error) { return m.items, nil }

func newCatalogForTest() (*catalogServiceImpl, *mockAwardeeRepo, *mockProgramRepo, *mockTransactionRepo) {
	awardees := &mockAwardeeRepo{}
	programs := &mockProgramRepo{}
	txs := &mockTransactionRepo{}
	svc := NewCatalogService(awardees, programs, txs, &mockTemplateRepo{
		items: []*entity.Template{{ID: "t1", Name: "Permohonan Resmi"}},
	}).(*catalogServiceImpl)
	svc.now = func() time.Time { return time.Date(2025, 3, 9, 10, 0, 0, 0, time.UTC) }
	return svc, awardees, programs, txs
}

func TestCatalogService_CreateAwardee(t *testing.T) {
	svc, repo, _, _ := newCatalogForTest()
	ctx := context.Background()

	a, err := svc.CreateAwardee(ctx, AwardeeInput{Name: " Nadia ", Year: "tahun ini"})
	require.NoError(t, err)
	assert.Equal(t, "Nadia", a.Name)
	assert.Equal(t, "2025", a.Year)
	assert.Equal(t, entity.PlaceholderValue, a.University)
	assert.Equal(t, entity.AwardeeStatusDefault, a.Status)
	assert.Len(t, repo.items, 1)

	_, err = svc.CreateAwardee(ctx, AwardeeInput{Name: "  "})
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestCatalogService_CreateProgram(t *testing.T) {
	svc, repo, _, _ := newCatalogForTest()

	p, err := svc.CreateProgram(context.Background(), ProgramInput{Name: "Bakti Sosial", Department: "Divisi Sosial", Progress: 40})
	require.NoError(t, err)
	assert.Equal(t, entity.ProgramStatusDefault, p.Status)
	assert.Equal(t, 40, p.Progress)
	assert.Equal(t, entity.PlaceholderValue, p.PIC)

	programs, err := svc.Programs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, repo.items, programs)
}

func TestCatalogService_CreateTransaction(t *testing.T) {
	svc, _, _, repo := newCatalogForTest()
	ctx := context.Background()

	tx, err := svc.CreateTransaction(ctx, TransactionInput{Description: "Konsumsi rapat", Amount: 150000})
	require.NoError(t, err)
	assert.Equal(t, "9 Mar 2025", tx.Date)
	assert.Equal(t, entity.PlaceholderValue, tx.Category)

	_, err = svc.CreateTransaction(ctx, TransactionInput{})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	repo.createErr = apperr.ErrStoreUnavailable
	_, err = svc.CreateTransaction(ctx, TransactionInput{Description: "Sewa aula"})
	assert.True(t, apperr.IsStoreDown(err))
}

func TestCatalogService_Templates(t *testing.T) {
	svc, _, _, _ := newCatalogForTest()

	templates, err := svc.Templates(context.Background())
	require.NoError(t, err)
	require.Len(t, templates, 1)
	assert.Equal(t, "t1", templates[0].ID)
}
