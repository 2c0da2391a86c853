package entity

import "time"

// Letter is a drafted, approved, or archived piece of correspondence.
// Workflow fields (Status, ApprovalSteps, StatusHistory, ReferenceNumber)
// are only mutated by the approval engine.
type Letter struct {
	ID              string `json:"id"`
	ReferenceNumber string `json:"referenceNumber"`
	Type            string `json:"type"`
	Subject         string `json:"subject"`
	Content         string `json:"content"`
	Status          string `json:"status"`
	Priority        string `json:"priority"`
	Classification  string `json:"classification"`

	From           string    `json:"from"`
	To             string    `json:"to"`
	FromDepartment string    `json:"fromDepartment,omitempty"`
	CC             []string  `json:"cc"`
	CCDisplay      []string  `json:"ccDisplay,omitempty"`
	ForwardedTo    []UserRef `json:"forwardedTo"`

	CreatedBy  UserRef    `json:"createdBy"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
	SentAt     *time.Time `json:"sentAt,omitempty"`
	ReceivedAt *time.Time `json:"receivedAt,omitempty"`
	DueDate    string     `json:"dueDate,omitempty"`

	EventDate       string `json:"eventDate,omitempty"`
	EventWaktu      string `json:"eventWaktu,omitempty"`
	EventLocation   string `json:"eventLocation,omitempty"`
	EventAcara      string `json:"eventAcara,omitempty"`
	DispositionNote string `json:"dispositionNote,omitempty"`

	Attachments   []Attachment         `json:"attachments"`
	ApprovalSteps []ApprovalStep       `json:"approvalSteps"`
	StatusHistory []StatusHistoryEntry `json:"statusHistory"`
	Signatures    []Signature          `json:"signatures"`

	ContentJustification string   `json:"contentJustification,omitempty"`
	LineHeight           *float64 `json:"lineHeight,omitempty"`
	LetterSpacing        string   `json:"letterSpacing,omitempty"`
	FontFamily           string   `json:"fontFamily,omitempty"`
	FontSize             *float64 `json:"fontSize,omitempty"`
}

// PendingStepIndex returns the index of the step awaiting a decision, or -1.
func (l *Letter) PendingStepIndex() int {
	for i := range l.ApprovalSteps {
		if l.ApprovalSteps[i].Status == StepStatusPending {
			return i
		}
	}
	return -1
}

// PendingApproverID returns the approver of the pending step, or "".
func (l *Letter) PendingApproverID() string {
	if i := l.PendingStepIndex(); i >= 0 {
		return l.ApprovalSteps[i].ApproverID
	}
	return ""
}

// HasSignatureBy reports whether userID already signed the letter.
func (l *Letter) HasSignatureBy(userID string) bool {
	for _, s := range l.Signatures {
		if s.SignedBy.ID == userID {
			return true
		}
	}
	return false
}

// IsForwardedTo reports whether userID is already among the forward recipients.
func (l *Letter) IsForwardedTo(userID string) bool {
	for _, ref := range l.ForwardedTo {
		if ref.ID == userID {
			return true
		}
	}
	return false
}

// InCC reports whether memberID appears in the cc list.
func (l *Letter) InCC(memberID string) bool {
	for _, id := range l.CC {
		if id == memberID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so a transition can be abandoned without
// touching the caller's value.
func (l *Letter) Clone() *Letter {
	c := *l
	c.CC = append([]string(nil), l.CC...)
	c.CCDisplay = append([]string(nil), l.CCDisplay...)
	c.ForwardedTo = append([]UserRef(nil), l.ForwardedTo...)
	c.Attachments = append([]Attachment(nil), l.Attachments...)
	c.Signatures = append([]Signature(nil), l.Signatures...)
	c.StatusHistory = append([]StatusHistoryEntry(nil), l.StatusHistory...)
	c.ApprovalSteps = make([]ApprovalStep, len(l.ApprovalSteps))
	for i, step := range l.ApprovalSteps {
		c.ApprovalSteps[i] = step.clone()
	}
	c.SentAt = cloneTime(l.SentAt)
	c.ReceivedAt = cloneTime(l.ReceivedAt)
	c.LineHeight = cloneFloat(l.LineHeight)
	c.FontSize = cloneFloat(l.FontSize)
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
