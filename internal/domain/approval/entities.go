package approval

import (
	"errors"
	"time"

	"github.com/bp4sp4/NMS-System-sub001/internal/domain/template"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrNotFound           = errors.New("document not found")
	ErrInvalidTransition  = errors.New("invalid document transition")
	ErrForbidden          = errors.New("actor not allowed to act on document")
	ErrNoEligibleApprover = errors.New("no eligible approver for required step")
	ErrInvalidDelegate    = errors.New("delegate target not eligible for step")
)

// SystemActor is recorded as the approver on auto-approval and escalation
// history rows.
const SystemActor = "system"

type Status string

const (
	StatusDraft     Status = "draft"
	StatusSubmitted Status = "submitted"
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether no further transition is allowed from s.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusCancelled
}

// InFlight reports whether the document is waiting on an approver.
func (s Status) InFlight() bool {
	return s == StatusSubmitted || s == StatusPending
}

type Action string

const (
	ActionApprove  Action = "approve"
	ActionReject   Action = "reject"
	ActionReturn   Action = "return"
	ActionDelegate Action = "delegate"
	ActionCancel   Action = "cancel"
	ActionEscalate Action = "escalate"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// EffectiveStep is one resolved entry of a document's step snapshot: the
// subset of the template flow that actually applies to this document, with
// the eligible approver set frozen at submission time.
type EffectiveStep struct {
	Order        int                   `json:"order"`
	ApproverType template.ApproverType `json:"approver_type"`
	AutoApproval bool                  `json:"auto_approval"`
	Approvers    []string              `json:"approvers,omitempty"`
}

// Eligible reports whether userID may act on this step.
func (s EffectiveStep) Eligible(userID string) bool {
	for _, a := range s.Approvers {
		if a == userID {
			return true
		}
	}
	return false
}

type Attachment struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Table: approval_documents
type ApprovalDocument struct {
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	// Public identifier (32-char lowercase hex)
	DocumentID  string            `gorm:"column:document_id;type:char(32);not null;uniqueIndex:ux_documents_document_id_active" json:"document_id"`
	TemplateID  string            `gorm:"column:template_id;type:char(32);not null;index" json:"template_id"`
	Title       string            `gorm:"column:title;size:200;not null" json:"title"`
	FormData    datatypes.JSONMap `gorm:"column:form_data;type:json" json:"form_data"`
	ApplicantID string            `gorm:"column:applicant_id;type:char(32);not null;index:idx_documents_applicant" json:"applicant_id"`
	Department  string            `gorm:"column:department;size:50" json:"department"`
	// Non-null only while the document waits on an approver.
	CurrentApproverID *string  `gorm:"column:current_approver_id;type:char(32);index:idx_documents_current_approver" json:"current_approver_id"`
	CurrentStepOrder  *int     `gorm:"column:current_step_order" json:"current_step_order"`
	Status            Status   `gorm:"column:status;type:varchar(20);default:'draft';index" json:"status"`
	Priority          Priority `gorm:"column:priority;type:varchar(20);default:'normal'" json:"priority"`

	Attachments datatypes.JSONSlice[Attachment] `gorm:"column:attachments;type:json" json:"attachments"`

	// Policy snapshot copied from the template at submission; immutable once
	// status leaves draft.
	Flow datatypes.JSONType[template.ApprovalFlow] `gorm:"column:approval_flow;type:json" json:"approval_flow"`
	// Resolved effective steps; drive routing without re-evaluation.
	Steps datatypes.JSONSlice[EffectiveStep] `gorm:"column:steps;type:json" json:"steps"`

	// Escalation clock for the current step; reset on every advance.
	StepStartedAt *time.Time `gorm:"column:step_started_at" json:"step_started_at"`
	Escalated     bool       `gorm:"column:escalated;default:false" json:"escalated"`

	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index" json:"-"`
}

func (ApprovalDocument) TableName() string { return "approval_documents" }

// CurrentStep returns the effective step matching CurrentStepOrder.
func (d *ApprovalDocument) CurrentStep() (EffectiveStep, bool) {
	if d.CurrentStepOrder == nil {
		return EffectiveStep{}, false
	}
	for _, s := range d.Steps {
		if s.Order == *d.CurrentStepOrder {
			return s, true
		}
	}
	return EffectiveStep{}, false
}

// NextStep returns the first effective step after the given order.
func (d *ApprovalDocument) NextStep(after int) (EffectiveStep, bool) {
	for _, s := range d.Steps {
		if s.Order > after {
			return s, true
		}
	}
	return EffectiveStep{}, false
}

// Table: approval_histories (append-only; one row per transition)
type History struct {
	ID         uint64 `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	DocumentID string `gorm:"column:document_id;type:char(32);not null;index" json:"document_id"`
	ApproverID string `gorm:"column:approver_id;type:char(32);not null" json:"approver_id"`
	Action     Action `gorm:"column:action;type:varchar(20);not null" json:"action"`
	Comment    string `gorm:"column:comment;type:text" json:"comment"`
	StepOrder  int    `gorm:"column:step_order" json:"step_order"`
	// Document status after the transition; the latest row must always
	// match the document's current status.
	ResultStatus Status    `gorm:"column:result_status;type:varchar(20);not null" json:"result_status"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (History) TableName() string { return "approval_histories" }
