package workflow

// Trigger is a letter action that may move the machine between states.
type Trigger string

const (
	TriggerSubmit  Trigger = "SUBMIT"
	TriggerEdit    Trigger = "EDIT"
	TriggerAdvance Trigger = "ADVANCE"
	TriggerApprove Trigger = "APPROVE"
	TriggerReturn  Trigger = "RETURN"
	TriggerReject  Trigger = "REJECT"
	TriggerSign    Trigger = "SIGN"
	TriggerSend    Trigger = "SEND"
	TriggerForward Trigger = "FORWARD"
	TriggerArchive Trigger = "ARCHIVE"
)

func (t Trigger) String() string {
	return string(t)
}
