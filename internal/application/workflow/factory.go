package workflow

import (
	"context"

	"github.com/garyjia/surat-menyurat/internal/domain/entity"
	domainwf "github.com/garyjia/surat-menyurat/internal/domain/workflow"
)

// BuildLetterStateMachine creates a state machine positioned at the letter's
// status. Guards read the letter at fire time.
func BuildLetterStateMachine(letter *entity.Letter) domainwf.StateMachine {
	builder := domainwf.NewBuilder()

	hasSignature := func(context.Context) bool {
		return len(letter.Signatures) > 0
	}

	// DRAFT and REVISION are editable and submittable
	for _, s := range []domainwf.State{domainwf.StateDraft, domainwf.StateRevision} {
		builder.Configure(s).
			Permit(domainwf.TriggerSubmit, domainwf.StatePendingApproval).
			PermitReentry(domainwf.TriggerEdit)
	}

	// PENDING_APPROVAL walks the chain one step at a time
	builder.Configure(domainwf.StatePendingApproval).
		PermitReentry(domainwf.TriggerAdvance).
		Permit(domainwf.TriggerApprove, domainwf.StateApproved).
		Permit(domainwf.TriggerReturn, domainwf.StateRevision).
		Permit(domainwf.TriggerReject, domainwf.StateRejected).
		PermitReentry(domainwf.TriggerForward)

	// APPROVED collects signatures before it can be sent
	builder.Configure(domainwf.StateApproved).
		PermitReentry(domainwf.TriggerSign).
		PermitIf(domainwf.TriggerSend, domainwf.StateSent, hasSignature).
		Permit(domainwf.TriggerArchive, domainwf.StateArchived).
		PermitReentry(domainwf.TriggerForward)

	builder.Configure(domainwf.StateSent).
		Permit(domainwf.TriggerArchive, domainwf.StateArchived).
		PermitReentry(domainwf.TriggerForward)

	// REJECTED and ARCHIVED are terminal - no outgoing transitions

	return builder.Build(domainwf.State(letter.Status))
}
