package service

import (
	"context"
	"strings"
	"time"

	"github.com/garyjia/surat-menyurat/internal/application/port"
	"github.com/garyjia/surat-menyurat/internal/domain/apperr"
	"github.com/garyjia/surat-menyurat/internal/domain/entity"
)

// LetterService serves read access to letters, filtered per actor
type LetterService interface {
	ListVisible(ctx context.Context, actor entity.Actor) ([]*entity.Letter, error)
	// GetIfVisible answers NotFound both for unknown ids and for letters the
	// actor may not read.
	GetIfVisible(ctx context.Context, actor entity.Actor, id string) (*entity.Letter, error)
	// MarkRead records that actor opened the letter. Repeated calls are no-ops.
	MarkRead(ctx context.Context, actor entity.Actor, letterID string) error
}

type letterServiceImpl struct {
	letters   port.LetterRepository
	reads     port.LetterReadRepository
	directory port.MemberDirectory
	logger    Logger
	now       func() time.Time
}

// NewLetterService creates a new LetterService
func NewLetterService(
	letters port.LetterRepository,
	reads port.LetterReadRepository,
	directory port.MemberDirectory,
	logger Logger,
) LetterService {
	return &letterServiceImpl{
		letters:   letters,
		reads:     reads,
		directory: directory,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *letterServiceImpl) ListVisible(ctx context.Context, actor entity.Actor) ([]*entity.Letter, error) {
	letters, err := s.letters.List(ctx)
	if err != nil {
		return nil, err
	}
	if actor.IsAdmin() {
		return letters, nil
	}
	return FilterVisible(letters, actor, currentMembers(ctx, s.directory, s.logger)), nil
}

func (s *letterServiceImpl) GetIfVisible(ctx context.Context, actor entity.Actor, id string) (*entity.Letter, error) {
	letter, err := s.letters.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if letter == nil {
		return nil, apperr.NotFoundf("Letter not found")
	}
	if actor.IsAdmin() {
		return letter, nil
	}
	if !IsLetterVisible(letter, actor.ID, actor.Role, currentMembers(ctx, s.directory, s.logger)) {
		return nil, apperr.NotFoundf("Letter not found")
	}
	return letter, nil
}

func (s *letterServiceImpl) MarkRead(ctx context.Context, actor entity.Actor, letterID string) error {
	userID := strings.TrimSpace(actor.ID)
	letterID = strings.TrimSpace(letterID)
	if userID == "" {
		return apperr.Unauthenticatedf("Authorization required")
	}
	if letterID == "" {
		return apperr.Validationf("Letter id is required")
	}

	existing, err := s.reads.ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	for _, r := range existing {
		if r.LetterID == letterID {
			return nil
		}
	}
	return s.reads.Create(ctx, &entity.LetterRead{
		UserID:   userID,
		LetterID: letterID,
		ReadAt:   s.now().UTC().Format(time.RFC3339Nano),
	})
}

// currentMembers loads the active period roster. A failed lookup yields no
// members, which leaves only the creator rule in effect.
func currentMembers(ctx context.Context, directory port.MemberDirectory, logger Logger) []*entity.Member {
	members, err := directory.CurrentPeriodMembers(ctx)
	if err != nil {
		logger.Error("Failed to load period members", "error", err)
		return nil
	}
	return members
}
