package workflow

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/garyjia/surat-menyurat/internal/domain/apperr"
	"github.com/garyjia/surat-menyurat/internal/domain/entity"
)

// ReferenceNumber formats "{TYPE2}/{YEAR}/{SUFFIX4}" where the suffix is the
// tail of the base-36 millisecond timestamp.
func ReferenceNumber(letterType string, now time.Time) string {
	prefix := strings.ToUpper(letterType)
	if len(prefix) > 2 {
		prefix = prefix[:2]
	}
	for len(prefix) < 2 {
		prefix += "X"
	}

	stamp := strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36))
	if len(stamp) > 4 {
		stamp = stamp[len(stamp)-4:]
	}
	return fmt.Sprintf("%s/%d/%s", prefix, now.Year(), stamp)
}

func applyInput(letter *entity.Letter, in LetterInput) error {
	if in.Type != "" {
		if !entity.IsValidLetterType(in.Type) {
			return apperr.Validationf("Jenis surat tidak valid: %s", in.Type)
		}
		letter.Type = in.Type
	}
	if in.Priority != "" {
		if !entity.IsValidPriority(in.Priority) {
			return apperr.Validationf("Prioritas tidak valid: %s", in.Priority)
		}
		letter.Priority = in.Priority
	}
	if in.Classification != "" {
		if !entity.IsValidClassification(in.Classification) {
			return apperr.Validationf("Klasifikasi tidak valid: %s", in.Classification)
		}
		letter.Classification = in.Classification
	}

	letter.Subject = strings.TrimSpace(in.Subject)
	letter.Content = in.Content
	letter.From = strings.TrimSpace(in.From)
	letter.To = strings.TrimSpace(in.To)
	letter.FromDepartment = in.FromDepartment
	letter.CC = append([]string(nil), in.CC...)
	letter.DueDate = in.DueDate
	letter.EventDate = in.EventDate
	letter.EventWaktu = in.EventWaktu
	letter.EventLocation = in.EventLocation
	letter.EventAcara = in.EventAcara
	letter.DispositionNote = in.DispositionNote
	letter.Attachments = append([]entity.Attachment(nil), in.Attachments...)

	if in.ContentJustification != "" {
		letter.ContentJustification = in.ContentJustification
	}
	letter.LineHeight = in.LineHeight
	letter.LetterSpacing = in.LetterSpacing
	letter.FontFamily = in.FontFamily
	letter.FontSize = in.FontSize
	return nil
}

// validateSubmission checks content and the approver chain and returns the
// resolved approvers in order.
func (e *engineImpl) validateSubmission(ctx context.Context, letter *entity.Letter, approverIDs []string) ([]entity.UserRef, error) {
	if letter.Subject == "" || letter.To == "" || strings.TrimSpace(letter.Content) == "" {
		return nil, apperr.Validationf("Perihal, tujuan, dan isi surat wajib diisi")
	}

	raw := make([]string, 0, len(approverIDs))
	for _, id := range approverIDs {
		if id = strings.TrimSpace(id); id != "" {
			raw = append(raw, id)
		}
	}
	if len(raw) == 0 {
		return nil, apperr.Validationf("Minimal satu penyetuju harus dipilih")
	}

	members, err := e.directory.AllMembers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load members: %w", err)
	}
	byID := make(map[string]*entity.Member, len(members))
	for _, m := range members {
		byID[m.ID] = m
	}

	resolved := make([]entity.UserRef, len(raw))
	for i, id := range raw {
		ref, err := e.resolveApprover(ctx, id, byID)
		if err != nil {
			return nil, err
		}
		resolved[i] = ref
	}

	if err := e.checkSenderIsLast(ctx, letter, raw[len(raw)-1], resolved[len(resolved)-1].ID); err != nil {
		return nil, err
	}
	return resolved, nil
}

// resolveApprover maps a member id to its linked user, or accepts a user id
// directly. A member must be active and linked; the user must exist and be
// active.
func (e *engineImpl) resolveApprover(ctx context.Context, id string, members map[string]*entity.Member) (entity.UserRef, error) {
	userID := id
	if m, ok := members[id]; ok {
		if !m.IsActive() {
			return entity.UserRef{}, apperr.Validationf("Anggota %s tidak aktif", m.Name)
		}
		if m.LinkedUserID() == "" {
			return entity.UserRef{}, apperr.Validationf("Anggota %s belum terhubung ke akun pengguna", m.Name)
		}
		userID = m.LinkedUserID()
	}

	user, err := e.users.GetByID(ctx, userID)
	if err != nil {
		return entity.UserRef{}, fmt.Errorf("failed to look up approver %s: %w", userID, err)
	}
	if user == nil {
		return entity.UserRef{}, apperr.Validationf("Penyetuju tidak valid: %s", id)
	}
	if !user.IsActive() {
		return entity.UserRef{}, apperr.Validationf("Penyetuju %s belum aktif", user.Name)
	}
	return user.Ref(), nil
}

// checkSenderIsLast requires the member named in letter.From, when it is a
// current-period member, to be the final approver.
func (e *engineImpl) checkSenderIsLast(ctx context.Context, letter *entity.Letter, lastRaw, lastUserID string) error {
	if letter.From == "" {
		return nil
	}
	members, err := e.directory.CurrentPeriodMembers(ctx)
	if err != nil {
		return fmt.Errorf("failed to load current period members: %w", err)
	}
	for _, m := range members {
		if m.SenderLabel() != letter.From {
			continue
		}
		if lastRaw == m.ID || (m.LinkedUserID() != "" && lastUserID == m.LinkedUserID()) {
			return nil
		}
		return apperr.Validationf("approver order invalid: %s harus menjadi penyetuju terakhir", m.Name)
	}
	return nil
}

// draftSteps keeps the resolvable approvers of an unsubmitted chain. Steps
// stay without status until submission.
func (e *engineImpl) draftSteps(ctx context.Context, approverIDs []string) []entity.ApprovalStep {
	members, err := e.directory.AllMembers(ctx)
	if err != nil {
		e.logger.Error("Failed to load members for draft approvers", "error", err)
	}
	byID := make(map[string]*entity.Member, len(members))
	for _, m := range members {
		byID[m.ID] = m
	}

	steps := make([]entity.ApprovalStep, 0, len(approverIDs))
	for _, raw := range approverIDs {
		id := strings.TrimSpace(raw)
		if id == "" {
			continue
		}
		ref, err := e.resolveApprover(ctx, id, byID)
		if err != nil {
			e.logger.Info("Dropping unresolvable draft approver", "approver_id", id, "error", err)
			continue
		}
		approver := ref
		steps = append(steps, entity.ApprovalStep{
			ID:         e.newID(),
			ApproverID: ref.ID,
			Approver:   &approver,
			Order:      len(steps) + 1,
		})
	}
	return steps
}
