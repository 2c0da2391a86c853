package entity

import "time"

// ApprovalStep is one ordered slot of an approval chain. ApproverID always
// holds a user id; Approver is resolved on read and never persisted.
type ApprovalStep struct {
	ID         string     `json:"id,omitempty"`
	ApproverID string     `json:"approverId"`
	Approver   *UserRef   `json:"approver,omitempty"`
	Order      int        `json:"order"`
	Status     string     `json:"status,omitempty"`
	Comment    string     `json:"comment,omitempty"`
	DecidedAt  *time.Time `json:"decidedAt,omitempty"`
}

func (s ApprovalStep) clone() ApprovalStep {
	c := s
	if s.Approver != nil {
		ref := *s.Approver
		c.Approver = &ref
	}
	c.DecidedAt = cloneTime(s.DecidedAt)
	return c
}
