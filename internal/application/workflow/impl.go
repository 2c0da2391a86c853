package workflow

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/garyjia/surat-menyurat/internal/application/dispatcher"
	"github.com/garyjia/surat-menyurat/internal/application/port"
	"github.com/garyjia/surat-menyurat/internal/application/service"
	"github.com/garyjia/surat-menyurat/internal/domain/apperr"
	"github.com/garyjia/surat-menyurat/internal/domain/entity"
	"github.com/garyjia/surat-menyurat/internal/domain/event"
	domainwf "github.com/garyjia/surat-menyurat/internal/domain/workflow"
	"github.com/garyjia/surat-menyurat/pkg/utils"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

// engineImpl is the concrete implementation of WorkflowEngine
type engineImpl struct {
	letters    port.LetterRepository
	users      port.UserRepository
	directory  port.MemberDirectory
	dispatcher dispatcher.Dispatcher
	logger     Logger
	now        func() time.Time
	newID      func() string
}

// EngineOption configures the workflow engine
type EngineOption func(*engineImpl)

// WithDispatcher sets the event dispatcher for emitting events
func WithDispatcher(d dispatcher.Dispatcher) EngineOption {
	return func(e *engineImpl) {
		e.dispatcher = d
	}
}

func WithLogger(l Logger) EngineOption {
	return func(e *engineImpl) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithClock overrides the time source used for timestamps and letter ids
func WithClock(now func() time.Time) EngineOption {
	return func(e *engineImpl) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine creates a new workflow engine
func NewEngine(
	letters port.LetterRepository,
	users port.UserRepository,
	directory port.MemberDirectory,
	opts ...EngineOption,
) WorkflowEngine {
	e := &engineImpl{
		letters:   letters,
		users:     users,
		directory: directory,
		logger:    nopLogger{},
		now:       time.Now,
		newID:     uuid.NewString,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// mutation applies one transition to a cloned letter and returns the
// event to publish once the letter is persisted.
type mutation func(letter *entity.Letter, machine domainwf.StateMachine, now time.Time) (*event.Event, error)

func (e *engineImpl) transition(ctx context.Context, actor entity.Actor, req TransitionRequest, apply mutation) (*entity.Letter, error) {
	if strings.TrimSpace(actor.ID) == "" {
		return nil, apperr.Unauthenticatedf("Unauthorized")
	}
	if strings.TrimSpace(req.LetterID) == "" {
		return nil, apperr.Validationf("Letter ID wajib diisi")
	}

	current, err := e.letters.GetByID(ctx, req.LetterID)
	if err != nil {
		return nil, fmt.Errorf("failed to load letter %s: %w", req.LetterID, err)
	}
	if current == nil || !e.canReach(ctx, current, actor) {
		return nil, apperr.NotFoundf("Letter not found")
	}
	if req.ExpectedUpdatedAt != nil && !current.UpdatedAt.Equal(*req.ExpectedUpdatedAt) {
		return nil, apperr.Conflictf("Surat telah diubah oleh pengguna lain. Muat ulang dan coba lagi.")
	}
	if !domainwf.State(current.Status).IsValid() {
		return nil, apperr.Validationf("Status surat tidak dikenal: %s", current.Status)
	}

	letter := current.Clone()
	machine := BuildLetterStateMachine(letter)
	now := e.now().UTC()

	evt, err := apply(letter, machine, now)
	if err != nil {
		return nil, err
	}

	letter.Status = string(machine.State())
	letter.UpdatedAt = now
	if err := e.letters.Update(ctx, letter); err != nil {
		e.logger.Error("Failed to persist letter transition", "letter_id", letter.ID, "error", err)
		return nil, fmt.Errorf("failed to update letter: %w", err)
	}

	e.emit(ctx, evt)
	return letter, nil
}

func (e *engineImpl) CreateLetter(ctx context.Context, actor entity.Actor, input LetterInput) (*entity.Letter, error) {
	if strings.TrimSpace(actor.ID) == "" {
		return nil, apperr.Unauthenticatedf("Unauthorized")
	}

	now := e.now().UTC()
	letter := &entity.Letter{
		ID:                   "L" + strconv.FormatInt(now.UnixMilli(), 10),
		Type:                 entity.LetterTypeSuratKeluar,
		Status:               entity.LetterStatusDraft,
		Priority:             entity.PriorityNormal,
		Classification:       entity.ClassificationInternal,
		ContentJustification: entity.ContentJustifyDefault,
		CreatedBy:            actor.Ref(),
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := applyInput(letter, input); err != nil {
		return nil, err
	}

	events := []*event.Event{
		event.NewEvent(event.TypeLetterCreated, letter.ID, actor.ID, map[string]interface{}{
			"subject": letter.Subject,
		}),
	}

	if input.Submit {
		machine := BuildLetterStateMachine(letter)
		evt, err := e.submit(ctx, actor, letter, machine, input.ApproverIDs, now)
		if err != nil {
			return nil, err
		}
		letter.Status = string(machine.State())
		events = append(events, evt)
	} else if len(input.ApproverIDs) > 0 {
		letter.ApprovalSteps = e.draftSteps(ctx, input.ApproverIDs)
	}

	if err := e.letters.Create(ctx, letter); err != nil {
		e.logger.Error("Failed to create letter", "letter_id", letter.ID, "error", err)
		return nil, fmt.Errorf("failed to create letter: %w", err)
	}

	e.logger.Info("Letter created", "letter_id", letter.ID, "status", letter.Status, "actor_id", actor.ID)
	for _, evt := range events {
		e.emit(ctx, evt)
	}
	return letter, nil
}

func (e *engineImpl) UpdateDraft(ctx context.Context, actor entity.Actor, req TransitionRequest, input LetterInput) (*entity.Letter, error) {
	return e.transition(ctx, actor, req, func(letter *entity.Letter, machine domainwf.StateMachine, _ time.Time) (*event.Event, error) {
		if letter.CreatedBy.ID != actor.ID {
			return nil, apperr.Forbiddenf("Hanya pembuat surat yang dapat mengubah draf")
		}
		if err := fire(ctx, machine, domainwf.TriggerEdit); err != nil {
			return nil, err
		}
		if err := applyInput(letter, input); err != nil {
			return nil, err
		}
		if input.ApproverIDs != nil {
			letter.ApprovalSteps = e.draftSteps(ctx, input.ApproverIDs)
		}
		return nil, nil
	})
}

func (e *engineImpl) SubmitLetter(ctx context.Context, actor entity.Actor, req SubmitRequest) (*entity.Letter, error) {
	return e.transition(ctx, actor, req.TransitionRequest, func(letter *entity.Letter, machine domainwf.StateMachine, now time.Time) (*event.Event, error) {
		if letter.CreatedBy.ID != actor.ID && !actor.IsAdmin() {
			return nil, apperr.Forbiddenf("Hanya pembuat surat yang dapat mengajukan surat")
		}
		approvers := req.ApproverIDs
		if len(approvers) == 0 {
			for _, step := range letter.ApprovalSteps {
				approvers = append(approvers, step.ApproverID)
			}
		}
		return e.submit(ctx, actor, letter, machine, approvers, now)
	})
}

// submit validates the letter and approver chain, then rebuilds the steps
// with the first one pending.
func (e *engineImpl) submit(ctx context.Context, actor entity.Actor, letter *entity.Letter, machine domainwf.StateMachine, approverIDs []string, now time.Time) (*event.Event, error) {
	if !machine.CanFire(domainwf.TriggerSubmit) {
		return nil, invalidAction(machine, domainwf.TriggerSubmit)
	}

	resolved, err := e.validateSubmission(ctx, letter, approverIDs)
	if err != nil {
		return nil, err
	}

	steps := make([]entity.ApprovalStep, len(resolved))
	for i, ref := range resolved {
		approver := ref
		steps[i] = entity.ApprovalStep{
			ID:         e.newID(),
			ApproverID: ref.ID,
			Approver:   &approver,
			Order:      i + 1,
		}
	}
	steps[0].Status = entity.StepStatusPending
	letter.ApprovalSteps = steps

	if err := fire(ctx, machine, domainwf.TriggerSubmit); err != nil {
		return nil, err
	}
	e.appendHistory(letter, actor, entity.LetterStatusPendingApproval, entity.HistoryActionSubmit, "", now)

	return event.NewEvent(event.TypeLetterSubmitted, letter.ID, actor.ID, map[string]interface{}{
		"approverId": steps[0].ApproverID,
		"steps":      len(steps),
	}), nil
}

func (e *engineImpl) ApproveStep(ctx context.Context, actor entity.Actor, req DecisionRequest) (*entity.Letter, error) {
	return e.transition(ctx, actor, req.TransitionRequest, func(letter *entity.Letter, machine domainwf.StateMachine, now time.Time) (*event.Event, error) {
		idx, err := pendingStepFor(letter, machine, actor, domainwf.TriggerApprove)
		if err != nil {
			return nil, err
		}
		decide(&letter.ApprovalSteps[idx], entity.StepStatusApproved, req.Comment, now)

		if idx < len(letter.ApprovalSteps)-1 {
			letter.ApprovalSteps[idx+1].Status = entity.StepStatusPending
			if err := fire(ctx, machine, domainwf.TriggerAdvance); err != nil {
				return nil, err
			}
			e.appendHistory(letter, actor, entity.LetterStatusPendingApproval, entity.HistoryActionAdvance, req.Comment, now)
			return event.NewEvent(event.TypeLetterStepApproved, letter.ID, actor.ID, map[string]interface{}{
				"order":          letter.ApprovalSteps[idx].Order,
				"nextApproverId": letter.ApprovalSteps[idx+1].ApproverID,
			}), nil
		}

		if err := fire(ctx, machine, domainwf.TriggerApprove); err != nil {
			return nil, err
		}
		if letter.ReferenceNumber == "" {
			letter.ReferenceNumber = ReferenceNumber(letter.Type, now)
		}
		e.appendHistory(letter, actor, entity.LetterStatusApproved, entity.HistoryActionApprove, req.Comment, now)
		return event.NewEvent(event.TypeLetterApproved, letter.ID, actor.ID, map[string]interface{}{
			"referenceNumber": letter.ReferenceNumber,
			"subject":         letter.Subject,
			"cc":              append([]string(nil), letter.CC...),
		}), nil
	})
}

func (e *engineImpl) ReturnForRevision(ctx context.Context, actor entity.Actor, req DecisionRequest) (*entity.Letter, error) {
	return e.reject(ctx, actor, req, domainwf.TriggerReturn, entity.HistoryActionReturn, event.TypeLetterReturned)
}

func (e *engineImpl) CancelLetter(ctx context.Context, actor entity.Actor, req DecisionRequest) (*entity.Letter, error) {
	return e.reject(ctx, actor, req, domainwf.TriggerReject, entity.HistoryActionReject, event.TypeLetterRejected)
}

// reject closes the pending step as rejected and moves the letter to
// revision or rejected depending on the trigger.
func (e *engineImpl) reject(ctx context.Context, actor entity.Actor, req DecisionRequest, trigger domainwf.Trigger, action string, evtType event.Type) (*entity.Letter, error) {
	return e.transition(ctx, actor, req.TransitionRequest, func(letter *entity.Letter, machine domainwf.StateMachine, now time.Time) (*event.Event, error) {
		idx, err := pendingStepFor(letter, machine, actor, trigger)
		if err != nil {
			return nil, err
		}
		decide(&letter.ApprovalSteps[idx], entity.StepStatusRejected, req.Comment, now)
		if err := fire(ctx, machine, trigger); err != nil {
			return nil, err
		}
		e.appendHistory(letter, actor, string(machine.State()), action, req.Comment, now)
		return event.NewEvent(evtType, letter.ID, actor.ID, map[string]interface{}{
			"comment":   req.Comment,
			"creatorId": letter.CreatedBy.ID,
		}), nil
	})
}

func (e *engineImpl) SignLetter(ctx context.Context, actor entity.Actor, req SignRequest) (*entity.Letter, error) {
	return e.transition(ctx, actor, req.TransitionRequest, func(letter *entity.Letter, machine domainwf.StateMachine, now time.Time) (*event.Event, error) {
		if !machine.CanFire(domainwf.TriggerSign) {
			return nil, invalidAction(machine, domainwf.TriggerSign)
		}
		if strings.TrimSpace(req.SignatureDataURL) == "" {
			return nil, apperr.Validationf("Tanda tangan wajib diisi")
		}
		if err := utils.ValidateImageDataURL(req.SignatureDataURL); err != nil {
			return nil, apperr.Validationf("Format tanda tangan tidak valid")
		}
		if letter.HasSignatureBy(actor.ID) {
			return nil, apperr.Validationf("Anda sudah menandatangani surat ini")
		}
		if err := fire(ctx, machine, domainwf.TriggerSign); err != nil {
			return nil, err
		}
		letter.Signatures = append(letter.Signatures, entity.Signature{
			ID:               e.newID(),
			SignedBy:         actor.Ref(),
			SignatureDataURL: req.SignatureDataURL,
			SignedAt:         now,
		})
		return event.NewEvent(event.TypeLetterSigned, letter.ID, actor.ID, map[string]interface{}{
			"signatures": len(letter.Signatures),
		}), nil
	})
}

func (e *engineImpl) SendLetter(ctx context.Context, actor entity.Actor, req TransitionRequest) (*entity.Letter, error) {
	return e.transition(ctx, actor, req, func(letter *entity.Letter, machine domainwf.StateMachine, now time.Time) (*event.Event, error) {
		if !machine.CanFire(domainwf.TriggerSend) {
			return nil, invalidAction(machine, domainwf.TriggerSend)
		}
		if !actor.IsAdmin() && letter.CreatedBy.ID != actor.ID &&
			!service.IsSenderOfRecord(letter, actor.ID, e.currentMembers(ctx)) {
			return nil, apperr.Forbiddenf("Hanya pembuat atau pengirim surat yang dapat mengirim")
		}
		if err := fire(ctx, machine, domainwf.TriggerSend); err != nil {
			return nil, err
		}
		sentAt := now
		letter.SentAt = &sentAt
		e.appendHistory(letter, actor, entity.LetterStatusSent, entity.HistoryActionSend, "", now)
		return event.NewEvent(event.TypeLetterSent, letter.ID, actor.ID, map[string]interface{}{
			"referenceNumber": letter.ReferenceNumber,
			"to":              letter.To,
		}), nil
	})
}

func (e *engineImpl) ForwardLetter(ctx context.Context, actor entity.Actor, req ForwardRequest) (*entity.Letter, error) {
	return e.transition(ctx, actor, req.TransitionRequest, func(letter *entity.Letter, machine domainwf.StateMachine, _ time.Time) (*event.Event, error) {
		if !service.IsLetterVisible(letter, actor.ID, actor.Role, e.currentMembers(ctx)) {
			return nil, apperr.NotFoundf("Letter not found")
		}
		if !machine.CanFire(domainwf.TriggerForward) {
			return nil, invalidAction(machine, domainwf.TriggerForward)
		}
		if len(req.UserIDs) == 0 {
			return nil, apperr.Validationf("Pilih minimal satu penerima")
		}

		var added []string
		for _, raw := range req.UserIDs {
			id := strings.TrimSpace(raw)
			if id == "" || letter.IsForwardedTo(id) {
				continue
			}
			user, err := e.users.GetByID(ctx, id)
			if err != nil {
				return nil, fmt.Errorf("failed to look up user %s: %w", id, err)
			}
			if user == nil {
				return nil, apperr.Validationf("Penerima tidak ditemukan: %s", id)
			}
			letter.ForwardedTo = append(letter.ForwardedTo, user.Ref())
			added = append(added, id)
		}

		if err := fire(ctx, machine, domainwf.TriggerForward); err != nil {
			return nil, err
		}
		return event.NewEvent(event.TypeLetterForwarded, letter.ID, actor.ID, map[string]interface{}{
			"userIds": added,
		}), nil
	})
}

func (e *engineImpl) ArchiveLetter(ctx context.Context, actor entity.Actor, req TransitionRequest) (*entity.Letter, error) {
	return e.transition(ctx, actor, req, func(letter *entity.Letter, machine domainwf.StateMachine, now time.Time) (*event.Event, error) {
		if !machine.CanFire(domainwf.TriggerArchive) {
			return nil, invalidAction(machine, domainwf.TriggerArchive)
		}
		if !actor.IsAdmin() && letter.CreatedBy.ID != actor.ID {
			return nil, apperr.Forbiddenf("Hanya pembuat surat atau admin yang dapat mengarsipkan")
		}
		if err := fire(ctx, machine, domainwf.TriggerArchive); err != nil {
			return nil, err
		}
		e.appendHistory(letter, actor, entity.LetterStatusArchived, entity.HistoryActionArchive, "", now)
		return event.NewEvent(event.TypeLetterArchived, letter.ID, actor.ID, nil), nil
	})
}

func (e *engineImpl) PermittedActions(ctx context.Context, actor entity.Actor, letterID string) ([]domainwf.Trigger, error) {
	if strings.TrimSpace(actor.ID) == "" {
		return nil, apperr.Unauthenticatedf("Unauthorized")
	}
	letter, err := e.letters.GetByID(ctx, letterID)
	if err != nil {
		return nil, fmt.Errorf("failed to load letter %s: %w", letterID, err)
	}
	if letter == nil || !e.canReach(ctx, letter, actor) {
		return nil, apperr.NotFoundf("Letter not found")
	}

	members := e.currentMembers(ctx)
	isCreator := letter.CreatedBy.ID == actor.ID
	isPendingApprover := letter.PendingApproverID() == actor.ID

	permitted := make([]domainwf.Trigger, 0, 4)
	for _, trigger := range BuildLetterStateMachine(letter).PermittedTriggers() {
		var ok bool
		switch trigger {
		case domainwf.TriggerEdit:
			ok = isCreator
		case domainwf.TriggerSubmit:
			ok = isCreator || actor.IsAdmin()
		case domainwf.TriggerApprove, domainwf.TriggerReturn, domainwf.TriggerReject:
			ok = isPendingApprover
		case domainwf.TriggerSign:
			ok = !letter.HasSignatureBy(actor.ID)
		case domainwf.TriggerSend:
			ok = len(letter.Signatures) > 0 &&
				(isCreator || actor.IsAdmin() || service.IsSenderOfRecord(letter, actor.ID, members))
		case domainwf.TriggerForward:
			ok = service.IsLetterVisible(letter, actor.ID, actor.Role, members)
		case domainwf.TriggerArchive:
			ok = isCreator || actor.IsAdmin()
		}
		if ok {
			permitted = append(permitted, trigger)
		}
	}
	return permitted, nil
}

// canReach reports whether actor may act on letter at all: it must be
// visible to them or they must hold a step in its approval chain. Letters
// outside that read as not found.
func (e *engineImpl) canReach(ctx context.Context, letter *entity.Letter, actor entity.Actor) bool {
	for _, step := range letter.ApprovalSteps {
		if step.ApproverID == actor.ID {
			return true
		}
	}
	return service.IsLetterVisible(letter, actor.ID, actor.Role, e.currentMembers(ctx))
}

func (e *engineImpl) appendHistory(letter *entity.Letter, actor entity.Actor, status, action, comment string, now time.Time) {
	letter.StatusHistory = append(letter.StatusHistory, entity.StatusHistoryEntry{
		ID:        e.newID(),
		Status:    status,
		Action:    action,
		ChangedBy: actor.Ref(),
		ChangedAt: now,
		Comment:   comment,
	})
}

func (e *engineImpl) currentMembers(ctx context.Context) []*entity.Member {
	members, err := e.directory.CurrentPeriodMembers(ctx)
	if err != nil {
		e.logger.Error("Failed to load current period members", "error", err)
		return nil
	}
	return members
}

// emit publishes evt without blocking the caller
func (e *engineImpl) emit(ctx context.Context, evt *event.Event) {
	if e.dispatcher == nil || evt == nil {
		return
	}
	e.dispatcher.DispatchAsync(ctx, evt)
}

// pendingStepFor returns the pending step index when actor is its approver.
func pendingStepFor(letter *entity.Letter, machine domainwf.StateMachine, actor entity.Actor, trigger domainwf.Trigger) (int, error) {
	if !machine.CanFire(trigger) {
		return -1, invalidAction(machine, trigger)
	}
	idx := letter.PendingStepIndex()
	if idx < 0 {
		return -1, apperr.Conflictf("Surat tidak memiliki langkah persetujuan yang menunggu")
	}
	if letter.ApprovalSteps[idx].ApproverID != actor.ID {
		return -1, apperr.Forbiddenf("Anda bukan penyetuju pada langkah ini")
	}
	return idx, nil
}

func decide(step *entity.ApprovalStep, status, comment string, now time.Time) {
	decidedAt := now
	step.Status = status
	step.Comment = comment
	step.DecidedAt = &decidedAt
}

// fire maps state machine failures onto validation errors
func fire(ctx context.Context, machine domainwf.StateMachine, trigger domainwf.Trigger) error {
	err := machine.Fire(ctx, trigger)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domainwf.ErrGuardFailed) && trigger == domainwf.TriggerSend:
		return apperr.Validationf("Surat harus ditandatangani sebelum dikirim")
	case errors.Is(err, domainwf.ErrGuardFailed), errors.Is(err, domainwf.ErrInvalidTransition):
		return invalidAction(machine, trigger)
	default:
		return err
	}
}

func invalidAction(machine domainwf.StateMachine, trigger domainwf.Trigger) error {
	return apperr.Validationf("Aksi %s tidak diizinkan untuk surat berstatus %s", trigger, machine.State())
}
