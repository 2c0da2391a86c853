package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/garyjia/surat-menyurat/internal/domain/entity"
)

type logEntry struct {
	level string
	msg   string
}

type mockLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, logEntry{level: "info", msg: msg})
}

func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, logEntry{level: "error", msg: msg})
}

type mockLetterRepo struct {
	letters []*entity.Letter
	listErr error
	updated int
}

func (m *mockLetterRepo) List(ctx context.Context) ([]*entity.Letter, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.letters, nil
}

func (m *mockLetterRepo) GetByID(ctx context.Context, id string) (*entity.Letter, error) {
	for _, l := range m.letters {
		if l.ID == id {
			return l, nil
		}
	}
	return nil, nil
}

func (m *mockLetterRepo) Create(ctx context.Context, letter *entity.Letter) error {
	m.letters = append(m.letters, letter)
	return nil
}

func (m *mockLetterRepo) Update(ctx context.Context, letter *entity.Letter) error {
	for i, l := range m.letters {
		if l.ID == letter.ID {
			m.letters[i] = letter
			m.updated++
			return nil
		}
	}
	return errors.New("not found")
}

type mockReadRepo struct {
	reads   []*entity.LetterRead
	listErr error
}

func (m *mockReadRepo) ListByUser(ctx context.Context, userID string) ([]*entity.LetterRead, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []*entity.LetterRead
	for _, r := range m.reads {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockReadRepo) Create(ctx context.Context, read *entity.LetterRead) error {
	m.reads = append(m.reads, read)
	return nil
}

type mockDirectory struct {
	members []*entity.Member
	err     error
}

func (m *mockDirectory) AllMembers(ctx context.Context) ([]*entity.Member, error) {
	return m.members, m.err
}

func (m *mockDirectory) CurrentPeriodMembers(ctx context.Context) ([]*entity.Member, error) {
	return m.members, m.err
}

type mockUserRepo struct {
	users []*entity.User
}

func (m *mockUserRepo) List(ctx context.Context) ([]*entity.User, error) {
	return m.users, nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	for _, u := range m.users {
		if entity.NormalizeEmail(u.Email) == entity.NormalizeEmail(email) {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *entity.User) error {
	m.users = append(m.users, user)
	return nil
}

func (m *mockUserRepo) Update(ctx context.Context, user *entity.User) error {
	for i, u := range m.users {
		if u.ID == user.ID {
			m.users[i] = user
			return nil
		}
	}
	return errors.New("not found")
}

type mockPeriodRepo struct {
	periods []*entity.Period
}

func (m *mockPeriodRepo) List(ctx context.Context) ([]*entity.Period, error) {
	out := make([]*entity.Period, len(m.periods))
	for i, p := range m.periods {
		c := *p
		out[i] = &c
	}
	return out, nil
}

func (m *mockPeriodRepo) GetByID(ctx context.Context, id string) (*entity.Period, error) {
	for _, p := range m.periods {
		if p.ID == id {
			c := *p
			return &c, nil
		}
	}
	return nil, nil
}

func (m *mockPeriodRepo) Create(ctx context.Context, period *entity.Period) error {
	c := *period
	m.periods = append(m.periods, &c)
	return nil
}

func (m *mockPeriodRepo) Update(ctx context.Context, period *entity.Period) error {
	for i, p := range m.periods {
		if p.ID == period.ID {
			c := *period
			m.periods[i] = &c
			return nil
		}
	}
	return fmt.Errorf("period %s not found", period.ID)
}

type mockMemberRepo struct {
	members []*entity.Member
}

func (m *mockMemberRepo) List(ctx context.Context) ([]*entity.Member, error) {
	return m.members, nil
}

func (m *mockMemberRepo) GetByID(ctx context.Context, id string) (*entity.Member, error) {
	for _, mem := range m.members {
		if mem.ID == id {
			c := *mem
			return &c, nil
		}
	}
	return nil, nil
}

func (m *mockMemberRepo) Create(ctx context.Context, member *entity.Member) error {
	if member.ID == "" {
		member.ID = fmt.Sprintf("%d", len(m.members)+1)
	}
	m.members = append(m.members, member)
	return nil
}

func (m *mockMemberRepo) Update(ctx context.Context, member *entity.Member) error {
	for i, mem := range m.members {
		if mem.ID == member.ID {
			m.members[i] = member
			return nil
		}
	}
	return errors.New("not found")
}

// plainHasher stores passwords with a fixed prefix so tests stay fast.
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "h:" + password, nil }

func (plainHasher) Compare(hash, password string) bool { return hash == "h:"+password }

type mockArchiveWriter struct {
	got []*entity.Letter
	err error
}

func (m *mockArchiveWriter) WriteLetters(letters []*entity.Letter) ([]byte, error) {
	m.got = letters
	if m.err != nil {
		return nil, m.err
	}
	return []byte("xlsx"), nil
}

func (m *mockArchiveWriter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}
