package service

import (
	"strings"

	"github.com/garyjia/surat-menyurat/internal/domain/entity"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// IsLetterVisible decides whether the actor may read letter. Admins see
// everything; everyone else needs to be the creator, the sender of record
// among periodMembers, or a cc'd member. forwardedTo grants nothing.
func IsLetterVisible(letter *entity.Letter, actorID, actorRole string, periodMembers []*entity.Member) bool {
	if actorRole == entity.RoleAdmin {
		return true
	}
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return false
	}
	if strings.TrimSpace(letter.CreatedBy.ID) == actorID {
		return true
	}
	return IsSenderOfRecord(letter, actorID, periodMembers) || IsCCRecipient(letter, actorID, periodMembers)
}

// IsSenderOfRecord reports whether actorID is the linked user of the member
// whose sender label equals letter.From.
func IsSenderOfRecord(letter *entity.Letter, actorID string, members []*entity.Member) bool {
	if actorID == "" || letter.From == "" {
		return false
	}
	for _, m := range members {
		if m.SenderLabel() == letter.From && m.LinkedUserID() == actorID {
			return true
		}
	}
	return false
}

// IsCCRecipient reports whether a member linked to actorID is in letter.CC.
func IsCCRecipient(letter *entity.Letter, actorID string, members []*entity.Member) bool {
	if actorID == "" || len(letter.CC) == 0 {
		return false
	}
	for _, m := range members {
		if m.LinkedUserID() == actorID && letter.InCC(m.ID) {
			return true
		}
	}
	return false
}

// FilterVisible keeps the letters actor may read, preserving order.
func FilterVisible(letters []*entity.Letter, actor entity.Actor, periodMembers []*entity.Member) []*entity.Letter {
	if actor.IsAdmin() {
		return letters
	}
	out := make([]*entity.Letter, 0, len(letters))
	for _, l := range letters {
		if IsLetterVisible(l, actor.ID, actor.Role, periodMembers) {
			out = append(out, l)
		}
	}
	return out
}
