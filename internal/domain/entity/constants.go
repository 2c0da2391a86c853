package entity

// Letter status constants
const (
	LetterStatusDraft           = "draft"
	LetterStatusPendingApproval = "pending_approval"
	LetterStatusApproved        = "approved"
	LetterStatusRevision        = "revision"
	LetterStatusRejected        = "rejected"
	LetterStatusSent            = "sent"
	LetterStatusReceived        = "received"
	LetterStatusForwarded       = "forwarded"
	LetterStatusArchived        = "archived"
)

// Letter type constants
const (
	LetterTypeSuratKeluar    = "surat_keluar"
	LetterTypeSuratKeputusan = "surat_keputusan"
	LetterTypeProposal       = "proposal"
)

const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

const (
	ClassificationPublic       = "public"
	ClassificationInternal     = "internal"
	ClassificationConfidential = "confidential"
	ClassificationSecret       = "secret"
)

// Approval step status constants. An empty status means the step has not been reached.
const (
	StepStatusPending  = "pending"
	StepStatusApproved = "approved"
	StepStatusRejected = "rejected"
)

// Status history actions
const (
	HistoryActionSubmit  = "submit"
	HistoryActionAdvance = "advance"
	HistoryActionApprove = "approve"
	HistoryActionReturn  = "return"
	HistoryActionReject  = "reject"
	HistoryActionSend    = "send"
	HistoryActionArchive = "archive"
)

// User roles
const (
	RoleAdmin    = "admin"
	RoleCreator  = "creator"
	RoleApprover = "approver"
	RoleViewer   = "viewer"
)

// User account status
const (
	UserStatusPending  = "pending"
	UserStatusActive   = "active"
	UserStatusRejected = "rejected"
)

// Defaults applied when org-structure rows are created without a value
const (
	MemberStatusActive    = "Aktif"
	MemberRoleDefault     = "Anggota"
	AwardeeStatusDefault  = "Aktif"
	ProgramStatusDefault  = "Berjalan"
	DepartmentNameDefault = "Departemen Baru"
	ContentJustifyDefault = "left"
	PlaceholderValue      = "-"
	NotificationListLimit = 20
	AdminAccountID        = "admin"
)

var validLetterTypes = map[string]bool{
	LetterTypeSuratKeluar:    true,
	LetterTypeSuratKeputusan: true,
	LetterTypeProposal:       true,
}

var validPriorities = map[string]bool{
	PriorityLow: true, PriorityNormal: true, PriorityHigh: true, PriorityUrgent: true,
}

var validClassifications = map[string]bool{
	ClassificationPublic: true, ClassificationInternal: true,
	ClassificationConfidential: true, ClassificationSecret: true,
}

var validRoles = map[string]bool{
	RoleAdmin: true, RoleCreator: true, RoleApprover: true, RoleViewer: true,
}

// IsValidLetterType reports whether t is one of the supported letter types.
func IsValidLetterType(t string) bool { return validLetterTypes[t] }

func IsValidPriority(p string) bool { return validPriorities[p] }

func IsValidClassification(c string) bool { return validClassifications[c] }

func IsValidRole(r string) bool { return validRoles[r] }
