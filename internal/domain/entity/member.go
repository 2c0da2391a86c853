package entity

import "strings"

// Member is a participant of an organizational period, optionally linked
// to a User.
type Member struct {
	ID         string `json:"id"`
	UserID     string `json:"userId,omitempty"`
	PeriodID   string `json:"periodId,omitempty"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	Department string `json:"department"`
	Email      string `json:"email"`
	Status     string `json:"status"`
}

// SenderLabel is the "{role} – {name}" text letters carry in their from field.
func (m *Member) SenderLabel() string {
	return m.Role + " – " + m.Name
}

// LinkedUserID returns the trimmed user link, "" when unlinked.
func (m *Member) LinkedUserID() string {
	return strings.TrimSpace(m.UserID)
}

// IsActive treats a blank status as active, matching how rows are created.
// Legacy sheets may carry the English spelling.
func (m *Member) IsActive() bool {
	switch strings.ToLower(strings.TrimSpace(m.Status)) {
	case "", strings.ToLower(MemberStatusActive), "active":
		return true
	}
	return false
}
