package workflow

// State is a letter status as seen by the approval state machine.
// Values match the status strings persisted in the letters sheet.
type State string

const (
	StateDraft           State = "draft"
	StatePendingApproval State = "pending_approval"
	StateApproved        State = "approved"
	StateRevision        State = "revision"
	StateRejected        State = "rejected"
	StateSent            State = "sent"
	StateReceived        State = "received"
	StateForwarded       State = "forwarded"
	StateArchived        State = "archived"
)

var validStates = map[State]bool{
	StateDraft:           true,
	StatePendingApproval: true,
	StateApproved:        true,
	StateRevision:        true,
	StateRejected:        true,
	StateSent:            true,
	StateReceived:        true,
	StateForwarded:       true,
	StateArchived:        true,
}

var terminalStates = map[State]bool{
	StateRejected: true,
	StateArchived: true,
}

// IsTerminal reports whether no further transition leaves this state.
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

func (s State) String() string {
	return string(s)
}

// IsValid reports whether s is a known letter status.
func (s State) IsValid() bool {
	return validStates[s]
}
