package entity

import "time"

// StatusHistoryEntry is an append-only audit record of a letter transition.
type StatusHistoryEntry struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	Action    string    `json:"action,omitempty"`
	ChangedBy UserRef   `json:"changedBy"`
	ChangedAt time.Time `json:"changedAt"`
	Comment   string    `json:"comment,omitempty"`
}
