package sheets

import (
	"context"

	"github.com/garyjia/surat-menyurat/internal/application/port"
	"github.com/garyjia/surat-menyurat/internal/domain/apperr"
)

// Unavailable returns a store that fails every call with
// apperr.ErrStoreUnavailable. The server still starts so health checks and
// degraded list endpoints keep answering.
func Unavailable() port.TabularStore {
	return unavailableStore{}
}

type unavailableStore struct{}

func notConfigured() error {
	return &apperr.Error{Kind: apperr.ErrStoreUnavailable, Message: "Spreadsheet belum dikonfigurasi"}
}

func (unavailableStore) ReadAll(ctx context.Context, sheet string) ([]port.Row, error) {
	return nil, notConfigured()
}

func (unavailableStore) Append(ctx context.Context, sheet string, headers []string, row port.Row) error {
	return notConfigured()
}

func (unavailableStore) UpdateRow(ctx context.Context, sheet string, index int, headers []string, row port.Row) error {
	return notConfigured()
}

func (unavailableStore) EnsureSchema(ctx context.Context) error {
	return notConfigured()
}
