package workflow

import (
	"context"
	"time"

	"github.com/garyjia/surat-menyurat/internal/domain/entity"
	domainwf "github.com/garyjia/surat-menyurat/internal/domain/workflow"
)

// WorkflowEngine drives a letter through drafting, sequential approval,
// signing, sending and archival. Every operation loads the letter, applies
// the transition to a copy and persists it only when the transition succeeds.
type WorkflowEngine interface {
	// CreateLetter stores a new draft. With input.Submit set the letter is
	// validated and submitted in the same call; nothing is stored on failure.
	CreateLetter(ctx context.Context, actor entity.Actor, input LetterInput) (*entity.Letter, error)

	// UpdateDraft edits a draft or a letter returned for revision (creator only).
	UpdateDraft(ctx context.Context, actor entity.Actor, req TransitionRequest, input LetterInput) (*entity.Letter, error)

	SubmitLetter(ctx context.Context, actor entity.Actor, req SubmitRequest) (*entity.Letter, error)

	// ApproveStep approves the pending step; the last approval issues the
	// reference number.
	ApproveStep(ctx context.Context, actor entity.Actor, req DecisionRequest) (*entity.Letter, error)

	ReturnForRevision(ctx context.Context, actor entity.Actor, req DecisionRequest) (*entity.Letter, error)

	// CancelLetter rejects the letter outright at the pending step.
	CancelLetter(ctx context.Context, actor entity.Actor, req DecisionRequest) (*entity.Letter, error)

	SignLetter(ctx context.Context, actor entity.Actor, req SignRequest) (*entity.Letter, error)
	SendLetter(ctx context.Context, actor entity.Actor, req TransitionRequest) (*entity.Letter, error)
	ForwardLetter(ctx context.Context, actor entity.Actor, req ForwardRequest) (*entity.Letter, error)
	ArchiveLetter(ctx context.Context, actor entity.Actor, req TransitionRequest) (*entity.Letter, error)

	// PermittedActions lists the triggers actor may fire on the letter in
	// its current state, sorted.
	PermittedActions(ctx context.Context, actor entity.Actor, letterID string) ([]domainwf.Trigger, error)
}

// LetterInput carries the editable content of a letter
type LetterInput struct {
	Type            string              `json:"type"`
	Subject         string              `json:"subject"`
	Content         string              `json:"content"`
	Priority        string              `json:"priority"`
	Classification  string              `json:"classification"`
	From            string              `json:"from"`
	To              string              `json:"to"`
	FromDepartment  string              `json:"fromDepartment"`
	CC              []string            `json:"cc"`
	DueDate         string              `json:"dueDate"`
	EventDate       string              `json:"eventDate"`
	EventWaktu      string              `json:"eventWaktu"`
	EventLocation   string              `json:"eventLocation"`
	EventAcara      string              `json:"eventAcara"`
	DispositionNote string              `json:"dispositionNote"`
	Attachments     []entity.Attachment `json:"attachments"`

	ContentJustification string   `json:"contentJustification"`
	LineHeight           *float64 `json:"lineHeight"`
	LetterSpacing        string   `json:"letterSpacing"`
	FontFamily           string   `json:"fontFamily"`
	FontSize             *float64 `json:"fontSize"`

	// ApproverIDs lists member or user ids in approval order.
	ApproverIDs []string `json:"approverIds"`
	Submit      bool     `json:"submit"`
}

// TransitionRequest identifies the letter to act on. When ExpectedUpdatedAt
// is set the transition fails with a conflict if the letter changed since.
type TransitionRequest struct {
	LetterID          string     `json:"-"`
	ExpectedUpdatedAt *time.Time `json:"expectedUpdatedAt,omitempty"`
}

// SubmitRequest submits with ApproverIDs, or with the draft's saved chain
// when empty.
type SubmitRequest struct {
	TransitionRequest
	ApproverIDs []string `json:"approverIds"`
}

type DecisionRequest struct {
	TransitionRequest
	Comment string `json:"comment"`
}

type SignRequest struct {
	TransitionRequest
	SignatureDataURL string `json:"signatureDataUrl"`
}

type ForwardRequest struct {
	TransitionRequest
	UserIDs []string `json:"userIds"`
}
