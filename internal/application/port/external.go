package port

import (
	"context"

	"github.com/garyjia/surat-menyurat/internal/domain/entity"
)

// ArchiveWriter renders letters into a downloadable workbook
type ArchiveWriter interface {
	WriteLetters(letters []*entity.Letter) ([]byte, error)
	ContentType() string
}

// PasswordHasher hashes and verifies account passwords
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}

// ExternalIdentity is the verified part of a third-party ID token
type ExternalIdentity struct {
	Subject       string
	Email         string
	Name          string
	EmailVerified bool
}

// IDTokenVerifier validates ID tokens issued by an external identity provider
type IDTokenVerifier interface {
	Verify(ctx context.Context, token string) (*ExternalIdentity, error)
}
