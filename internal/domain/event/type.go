package event

// Type identifies a letter lifecycle event
type Type string

const (
	TypeLetterCreated      Type = "letter.created"
	TypeLetterSubmitted    Type = "letter.submitted"
	TypeLetterStepApproved Type = "letter.step_approved"
	TypeLetterApproved     Type = "letter.approved"
	TypeLetterReturned     Type = "letter.returned"
	TypeLetterRejected     Type = "letter.rejected"
	TypeLetterSigned       Type = "letter.signed"
	TypeLetterSent         Type = "letter.sent"
	TypeLetterForwarded    Type = "letter.forwarded"
	TypeLetterArchived     Type = "letter.archived"
)

func (t Type) String() string {
	return string(t)
}

// IsValid checks if the event type is one of the defined constants
func (t Type) IsValid() bool {
	switch t {
	case TypeLetterCreated,
		TypeLetterSubmitted,
		TypeLetterStepApproved,
		TypeLetterApproved,
		TypeLetterReturned,
		TypeLetterRejected,
		TypeLetterSigned,
		TypeLetterSent,
		TypeLetterForwarded,
		TypeLetterArchived:
		return true
	default:
		return false
	}
}
