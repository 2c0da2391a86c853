package port

import (
	"context"

	"github.com/garyjia/surat-menyurat/internal/domain/entity"
)

// LetterRepository persists letters. List skips rows whose creator no longer resolves.
type LetterRepository interface {
	List(ctx context.Context) ([]*entity.Letter, error)
	GetByID(ctx context.Context, id string) (*entity.Letter, error)
	Create(ctx context.Context, letter *entity.Letter) error
	Update(ctx context.Context, letter *entity.Letter) error
}

// UserRepository persists login accounts
type UserRepository interface {
	List(ctx context.Context) ([]*entity.User, error)
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Create(ctx context.Context, user *entity.User) error
	Update(ctx context.Context, user *entity.User) error
}

// MemberRepository persists period members
type MemberRepository interface {
	List(ctx context.Context) ([]*entity.Member, error)
	GetByID(ctx context.Context, id string) (*entity.Member, error)
	Create(ctx context.Context, member *entity.Member) error
	Update(ctx context.Context, member *entity.Member) error
}

type PeriodRepository interface {
	List(ctx context.Context) ([]*entity.Period, error)
	GetByID(ctx context.Context, id string) (*entity.Period, error)
	Create(ctx context.Context, period *entity.Period) error
	Update(ctx context.Context, period *entity.Period) error
}

// DepartmentRepository persists departments. Delete blanks the row in place.
type DepartmentRepository interface {
	List(ctx context.Context) ([]*entity.Department, error)
	GetByID(ctx context.Context, id string) (*entity.Department, error)
	Create(ctx context.Context, dept *entity.Department) error
	Update(ctx context.Context, dept *entity.Department) error
	Delete(ctx context.Context, id string) error
}

// LetterReadRepository stores append-only read marks
type LetterReadRepository interface {
	ListByUser(ctx context.Context, userID string) ([]*entity.LetterRead, error)
	Create(ctx context.Context, read *entity.LetterRead) error
}

type AwardeeRepository interface {
	List(ctx context.Context) ([]*entity.Awardee, error)
	Create(ctx context.Context, awardee *entity.Awardee) error
}

type ProgramRepository interface {
	List(ctx context.Context) ([]*entity.Program, error)
	Create(ctx context.Context, program *entity.Program) error
}

type TransactionRepository interface {
	List(ctx context.Context) ([]*entity.Transaction, error)
	Create(ctx context.Context, tx *entity.Transaction) error
}

type TemplateRepository interface {
	List(ctx context.Context) ([]*entity.Template, error)
}

// MemberDirectory answers the member lookups the workflow and visibility
// rules depend on.
type MemberDirectory interface {
	AllMembers(ctx context.Context) ([]*entity.Member, error)
	CurrentPeriodMembers(ctx context.Context) ([]*entity.Member, error)
}
