package repository

import (
	"context"
	"fmt"

	"github.com/garyjia/surat-menyurat/internal/application/port"
	"github.com/garyjia/surat-menyurat/internal/domain/apperr"
	"github.com/garyjia/surat-menyurat/internal/domain/entity"
	"github.com/garyjia/surat-menyurat/internal/infrastructure/persistence/schema"
	"go.uber.org/zap"
)

// adminRef stands in for the configured admin account, which has no row
// in the Users sheet.
var adminRef = entity.UserRef{ID: entity.AdminAccountID, Name: "Admin", Role: entity.RoleAdmin}

// LetterRepository implements port.LetterRepository over the Letters sheet
type LetterRepository struct {
	store   port.TabularStore
	users   port.UserRepository
	members port.MemberRepository
	logger  *zap.Logger
}

// NewLetterRepository creates a new letter repository
func NewLetterRepository(store port.TabularStore, users port.UserRepository, members port.MemberRepository, logger *zap.Logger) port.LetterRepository {
	return &LetterRepository{
		store:   store,
		users:   users,
		members: members,
		logger:  logger,
	}
}

// lookup holds the reference data needed to hydrate letter rows.
type lookup struct {
	users   map[string]entity.UserRef
	members map[string]*entity.Member
}

func (lk *lookup) user(id string) (entity.UserRef, bool) {
	if ref, ok := lk.users[id]; ok {
		return ref, true
	}
	if id == entity.AdminAccountID {
		return adminRef, true
	}
	return entity.UserRef{}, false
}

// approver resolves a step approver. Legacy rows may still carry a member
// id; those map to the linked user when there is one.
func (lk *lookup) approver(id string) (string, *entity.UserRef) {
	if ref, ok := lk.user(id); ok {
		return id, &ref
	}
	if m, ok := lk.members[id]; ok {
		if uid := m.LinkedUserID(); uid != "" {
			if ref, ok := lk.user(uid); ok {
				return uid, &ref
			}
		}
		return id, &entity.UserRef{ID: id, Name: m.Name, Email: m.Email, Role: m.Role}
	}
	return id, nil
}

func (r *LetterRepository) loadLookup(ctx context.Context) (*lookup, error) {
	users, err := r.users.List(ctx)
	if err != nil {
		return nil, err
	}
	lk := &lookup{
		users:   make(map[string]entity.UserRef, len(users)),
		members: map[string]*entity.Member{},
	}
	for _, u := range users {
		lk.users[u.ID] = u.Ref()
	}

	members, err := r.members.List(ctx)
	if err != nil {
		r.logger.Warn("Member lookup failed, cc names and legacy approvers unresolved", zap.Error(err))
		return lk, nil
	}
	for _, m := range members {
		lk.members[m.ID] = m
	}
	return lk, nil
}

// List returns every letter whose creator still resolves
func (r *LetterRepository) List(ctx context.Context) ([]*entity.Letter, error) {
	rows, err := r.store.ReadAll(ctx, schema.SheetLetters)
	if err != nil {
		r.logger.Error("Failed to read letters", zap.Error(err))
		return nil, fmt.Errorf("failed to read letters: %w", err)
	}
	lk, err := r.loadLookup(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}

	letters := make([]*entity.Letter, 0, len(rows))
	for _, row := range rows {
		if row["id"] == "" {
			continue
		}
		letter, ok := rowToLetter(row, lk)
		if !ok {
			r.logger.Debug("Skipping letter with unknown creator",
				zap.String("letter_id", row["id"]),
				zap.String("created_by", row["createdBy"]))
			continue
		}
		letters = append(letters, letter)
	}
	return letters, nil
}

// GetByID returns nil when no visible row carries id
func (r *LetterRepository) GetByID(ctx context.Context, id string) (*entity.Letter, error) {
	letters, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, l := range letters {
		if l.ID == id {
			return l, nil
		}
	}
	return nil, nil
}

// Create appends a new letter row
func (r *LetterRepository) Create(ctx context.Context, letter *entity.Letter) error {
	if err := r.store.Append(ctx, schema.SheetLetters, schema.LetterHeaders, letterToRow(letter)); err != nil {
		r.logger.Error("Failed to create letter", zap.String("letter_id", letter.ID), zap.Error(err))
		return fmt.Errorf("failed to create letter: %w", err)
	}
	return nil
}

// Update rewrites the row holding letter.ID in place
func (r *LetterRepository) Update(ctx context.Context, letter *entity.Letter) error {
	rows, err := r.store.ReadAll(ctx, schema.SheetLetters)
	if err != nil {
		return fmt.Errorf("failed to read letters: %w", err)
	}
	index := findRowIndex(rows, letter.ID)
	if index < 0 {
		return apperr.NotFoundf("Surat tidak ditemukan")
	}
	if err := r.store.UpdateRow(ctx, schema.SheetLetters, index, schema.LetterHeaders, letterToRow(letter)); err != nil {
		r.logger.Error("Failed to update letter", zap.String("letter_id", letter.ID), zap.Error(err))
		return fmt.Errorf("failed to update letter: %w", err)
	}
	return nil
}

func rowToLetter(row port.Row, lk *lookup) (*entity.Letter, bool) {
	creator, ok := lk.user(row["createdBy"])
	if !ok {
		return nil, false
	}

	l := &entity.Letter{
		ID:                   row["id"],
		ReferenceNumber:      row["referenceNumber"],
		Type:                 orDefault(row["type"], entity.LetterTypeSuratKeluar),
		Subject:              row["subject"],
		Content:              row["content"],
		Status:               orDefault(row["status"], entity.LetterStatusDraft),
		Priority:             orDefault(row["priority"], entity.PriorityNormal),
		Classification:       orDefault(row["classification"], entity.ClassificationInternal),
		From:                 row["from"],
		To:                   row["to"],
		FromDepartment:       row["fromDepartment"],
		CreatedBy:            creator,
		CreatedAt:            parseTime(row["createdAt"]),
		UpdatedAt:            parseTime(row["updatedAt"]),
		SentAt:               parseTimePtr(row["sentAt"]),
		ReceivedAt:           parseTimePtr(row["receivedAt"]),
		DueDate:              row["dueDate"],
		EventDate:            row["eventDate"],
		EventWaktu:           row["eventWaktu"],
		EventLocation:        row["eventLocation"],
		EventAcara:           row["eventAcara"],
		DispositionNote:      row["dispositionNote"],
		Attachments:          decodeList[entity.Attachment](row["attachments"]),
		StatusHistory:        decodeList[entity.StatusHistoryEntry](row["statusHistory"]),
		Signatures:           decodeList[entity.Signature](row["signatures"]),
		CC:                   decodeList[string](row["cc"]),
		ContentJustification: orDefault(row["contentJustification"], entity.ContentJustifyDefault),
		LineHeight:           parseFloatPtr(row["lineHeight"]),
		LetterSpacing:        row["letterSpacing"],
		FontFamily:           row["fontFamily"],
		FontSize:             parseFloatPtr(row["fontSize"]),
	}
	if l.UpdatedAt.IsZero() {
		l.UpdatedAt = l.CreatedAt
	}

	// Steps with an unresolvable approver are kept so the pending pointer
	// never shifts; they simply carry no Approver ref.
	l.ApprovalSteps = decodeList[entity.ApprovalStep](row["approvalSteps"])
	for i := range l.ApprovalSteps {
		s := &l.ApprovalSteps[i]
		s.ApproverID, s.Approver = lk.approver(s.ApproverID)
	}

	for i := range l.StatusHistory {
		if ref, ok := lk.user(l.StatusHistory[i].ChangedBy.ID); ok {
			l.StatusHistory[i].ChangedBy = ref
		}
	}

	l.ForwardedTo = []entity.UserRef{}
	for _, id := range decodeList[string](row["forwardedTo"]) {
		if ref, ok := lk.user(id); ok {
			l.ForwardedTo = append(l.ForwardedTo, ref)
		}
	}

	l.CCDisplay = make([]string, 0, len(l.CC))
	for _, id := range l.CC {
		if m, ok := lk.members[id]; ok && m.Name != "" {
			l.CCDisplay = append(l.CCDisplay, m.Name)
		} else if ref, ok := lk.users[id]; ok && ref.Name != "" {
			l.CCDisplay = append(l.CCDisplay, ref.Name)
		}
	}
	return l, true
}

func letterToRow(l *entity.Letter) port.Row {
	steps := make([]entity.ApprovalStep, len(l.ApprovalSteps))
	for i, s := range l.ApprovalSteps {
		s.Approver = nil
		steps[i] = s
	}
	forwarded := make([]string, 0, len(l.ForwardedTo))
	for _, ref := range l.ForwardedTo {
		if ref.ID != "" {
			forwarded = append(forwarded, ref.ID)
		}
	}

	return port.Row{
		"id":                   l.ID,
		"referenceNumber":      l.ReferenceNumber,
		"type":                 l.Type,
		"subject":              l.Subject,
		"content":              l.Content,
		"status":               l.Status,
		"priority":             l.Priority,
		"classification":       l.Classification,
		"from":                 l.From,
		"to":                   l.To,
		"createdAt":            formatTime(l.CreatedAt),
		"updatedAt":            formatTime(l.UpdatedAt),
		"createdBy":            l.CreatedBy.ID,
		"sentAt":               formatTimePtr(l.SentAt),
		"receivedAt":           formatTimePtr(l.ReceivedAt),
		"dueDate":              l.DueDate,
		"eventDate":            l.EventDate,
		"eventWaktu":           l.EventWaktu,
		"eventLocation":        l.EventLocation,
		"eventAcara":           l.EventAcara,
		"dispositionNote":      l.DispositionNote,
		"attachments":          encodeList(l.Attachments),
		"approvalSteps":        encodeList(steps),
		"statusHistory":        encodeList(l.StatusHistory),
		"cc":                   encodeList(l.CC),
		"signatures":           encodeList(l.Signatures),
		"forwardedTo":          encodeList(forwarded),
		"fromDepartment":       l.FromDepartment,
		"contentJustification": orDefault(l.ContentJustification, entity.ContentJustifyDefault),
		"lineHeight":           formatFloatPtr(l.LineHeight),
		"letterSpacing":        l.LetterSpacing,
		"fontFamily":           l.FontFamily,
		"fontSize":             formatFloatPtr(l.FontSize),
	}
}
