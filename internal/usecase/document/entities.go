package document

import (
	"time"

	"github.com/bp4sp4/NMS-System-sub001/internal/domain/approval"
	"github.com/bp4sp4/NMS-System-sub001/internal/domain/template"
)

type CreateDraftInput struct {
	TemplateID  string
	ApplicantID string
	Department  string
	Title       string
	Priority    string
	FormData    map[string]any
	Attachments []approval.Attachment
}

type UpdateDraftInput struct {
	DocumentID  string
	ActorID     string
	Title       string
	Priority    string
	FormData    map[string]any
	Attachments []approval.Attachment
}

type ActInput struct {
	DocumentID string
	ActorID    string
	Action     approval.Action
	Comment    string
	DelegateTo string
}

type HistoryDTO struct {
	ApproverID   string    `json:"approver_id"`
	Action       string    `json:"action"`
	Comment      string    `json:"comment,omitempty"`
	StepOrder    int       `json:"step_order"`
	ResultStatus string    `json:"result_status"`
	CreatedAt    time.Time `json:"created_at"`
}

type DocumentDTO struct {
	DocumentID        string                   `json:"document_id"`
	TemplateID        string                   `json:"template_id"`
	Title             string                   `json:"title"`
	FormData          map[string]any           `json:"form_data"`
	ApplicantID       string                   `json:"applicant_id"`
	Department        string                   `json:"department"`
	CurrentApproverID *string                  `json:"current_approver_id"`
	CurrentStepOrder  *int                     `json:"current_step_order"`
	Status            string                   `json:"status"`
	Priority          string                   `json:"priority"`
	Attachments       []approval.Attachment    `json:"attachments,omitempty"`
	Flow              template.ApprovalFlow    `json:"approval_flow"`
	Steps             []approval.EffectiveStep `json:"steps,omitempty"`
	Escalated         bool                     `json:"escalated"`
	CreatedAt         time.Time                `json:"created_at"`
	UpdatedAt         time.Time                `json:"updated_at"`
	History           []HistoryDTO             `json:"history,omitempty"`
}

func toDTO(d *approval.ApprovalDocument, hist []approval.History) *DocumentDTO {
	dto := &DocumentDTO{
		DocumentID:        d.DocumentID,
		TemplateID:        d.TemplateID,
		Title:             d.Title,
		FormData:          d.FormData,
		ApplicantID:       d.ApplicantID,
		Department:        d.Department,
		CurrentApproverID: d.CurrentApproverID,
		CurrentStepOrder:  d.CurrentStepOrder,
		Status:            string(d.Status),
		Priority:          string(d.Priority),
		Attachments:       d.Attachments,
		Flow:              d.Flow.Data(),
		Steps:             d.Steps,
		Escalated:         d.Escalated,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
	for _, h := range hist {
		dto.History = append(dto.History, HistoryDTO{
			ApproverID:   h.ApproverID,
			Action:       string(h.Action),
			Comment:      h.Comment,
			StepOrder:    h.StepOrder,
			ResultStatus: string(h.ResultStatus),
			CreatedAt:    h.CreatedAt,
		})
	}
	return dto
}
