package service

import (
	"context"
	"sort"

	"github.com/garyjia/surat-menyurat/internal/application/port"
	"github.com/garyjia/surat-menyurat/internal/domain/entity"
)

// DashboardStats are inbox-style badge counts over the letters the actor
// has not opened yet.
type DashboardStats struct {
	Outbox             int `json:"outbox"`
	Drafts             int `json:"drafts"`
	PendingApproval    int `json:"pendingApproval"`
	AwaitingMyApproval int `json:"awaitingMyApproval"`
}

// Notifications lists the actor's own letters that came back or went through.
type Notifications struct {
	ReturnedForRevision []*entity.Letter `json:"returnedForRevision"`
	Approved            []*entity.Letter `json:"approved"`
}

// DashboardService aggregates per-actor counts and notification lists
type DashboardService interface {
	Stats(ctx context.Context, actor entity.Actor) (*DashboardStats, error)
	Notifications(ctx context.Context, actor entity.Actor) (*Notifications, error)
}

type dashboardServiceImpl struct {
	letters   port.LetterRepository
	reads     port.LetterReadRepository
	directory port.MemberDirectory
	logger    Logger
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(
	letters port.LetterRepository,
	reads port.LetterReadRepository,
	directory port.MemberDirectory,
	logger Logger,
) DashboardService {
	return &dashboardServiceImpl{
		letters:   letters,
		reads:     reads,
		directory: directory,
		logger:    logger,
	}
}

func (s *dashboardServiceImpl) Stats(ctx context.Context, actor entity.Actor) (*DashboardStats, error) {
	letters, err := s.letters.List(ctx)
	if err != nil {
		return nil, err
	}
	read := s.readSet(ctx, actor.ID)
	members := currentMembers(ctx, s.directory, s.logger)

	return ComputeStats(letters, actor.ID, read, members), nil
}

// ComputeStats derives the dashboard counts from the full letter collection.
// Letters in read are excluded from every count.
func ComputeStats(letters []*entity.Letter, actorID string, read map[string]bool, members []*entity.Member) *DashboardStats {
	stats := &DashboardStats{}
	for _, l := range letters {
		if read[l.ID] {
			continue
		}
		switch l.Status {
		case entity.LetterStatusDraft:
			stats.Drafts++
		case entity.LetterStatusPendingApproval:
			stats.PendingApproval++
			if actorID != "" && l.PendingApproverID() == actorID {
				stats.AwaitingMyApproval++
			}
		case entity.LetterStatusApproved, entity.LetterStatusSent:
			if IsSenderOfRecord(l, actorID, members) || IsCCRecipient(l, actorID, members) {
				stats.Outbox++
			}
		}
	}
	return stats
}

func (s *dashboardServiceImpl) Notifications(ctx context.Context, actor entity.Actor) (*Notifications, error) {
	out := &Notifications{
		ReturnedForRevision: []*entity.Letter{},
		Approved:            []*entity.Letter{},
	}
	if actor.ID == "" {
		return out, nil
	}
	letters, err := s.letters.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, l := range letters {
		if l.CreatedBy.ID != actor.ID {
			continue
		}
		switch l.Status {
		case entity.LetterStatusRevision:
			out.ReturnedForRevision = append(out.ReturnedForRevision, l)
		case entity.LetterStatusApproved:
			out.Approved = append(out.Approved, l)
		}
	}
	out.ReturnedForRevision = latest(out.ReturnedForRevision, entity.NotificationListLimit)
	out.Approved = latest(out.Approved, entity.NotificationListLimit)
	return out, nil
}

// latest sorts by UpdatedAt descending and keeps at most n.
func latest(letters []*entity.Letter, n int) []*entity.Letter {
	sort.SliceStable(letters, func(i, j int) bool {
		return letters[i].UpdatedAt.After(letters[j].UpdatedAt)
	})
	if len(letters) > n {
		letters = letters[:n]
	}
	return letters
}

// readSet returns the ids the user has opened. Read-mark failures degrade to
// "nothing read" so the dashboard still renders.
func (s *dashboardServiceImpl) readSet(ctx context.Context, userID string) map[string]bool {
	set := map[string]bool{}
	if userID == "" {
		return set
	}
	reads, err := s.reads.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to load read marks", "user_id", userID, "error", err)
		return set
	}
	for _, r := range reads {
		set[r.LetterID] = true
	}
	return set
}
