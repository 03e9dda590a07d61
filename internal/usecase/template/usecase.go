package template

import (
	"context"
	"fmt"
	"time"

	domain "github.com/bp4sp4/NMS-System-sub001/internal/domain/template"
	"github.com/bp4sp4/NMS-System-sub001/pkg/id"

	"gorm.io/datatypes"
)

type Usecase struct{ repo domain.Repository }

func NewUsecase(r domain.Repository) *Usecase { return &Usecase{repo: r} }

type SaveTemplateInput struct {
	Name                string
	Category            string
	Description         string
	Fields              []domain.Field
	Flow                domain.ApprovalFlow
	RequiredAttachments []string
	SortOrder           int
}

type TemplateDTO struct {
	TemplateID          string              `json:"template_id"`
	Name                string              `json:"name"`
	Category            string              `json:"category"`
	Description         string              `json:"description"`
	Fields              []domain.Field      `json:"fields"`
	Flow                domain.ApprovalFlow `json:"approval_flow"`
	RequiredAttachments []string            `json:"required_attachments,omitempty"`
	Active              bool                `json:"active"`
	SortOrder           int                 `json:"sort_order"`
	CreatedAt           time.Time           `json:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at"`
}

// Create validates the schema and flow before anything is stored. Duplicate
// step orders and bad amount-field references are rejected here, at save
// time, so the evaluator never sees them.
func (u *Usecase) Create(ctx context.Context, in SaveTemplateInput) (*TemplateDTO, error) {
	if err := validate(in); err != nil {
		return nil, err
	}
	t := &domain.FormTemplate{
		TemplateID:          id.NewID32(),
		Name:                in.Name,
		Category:            in.Category,
		Description:         in.Description,
		Fields:              in.Fields,
		Flow:                datatypes.NewJSONType(in.Flow),
		RequiredAttachments: in.RequiredAttachments,
		Active:              true,
		SortOrder:           in.SortOrder,
	}
	if err := u.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	return toDTO(t), nil
}

// Update replaces the template definition. In-flight documents are
// unaffected: they route on the snapshot taken at their submission.
func (u *Usecase) Update(ctx context.Context, templateID string, in SaveTemplateInput) (*TemplateDTO, error) {
	if err := validate(in); err != nil {
		return nil, err
	}
	t, err := u.repo.GetByTemplateID(ctx, templateID)
	if err != nil {
		return nil, err
	}
	t.Name = in.Name
	t.Category = in.Category
	t.Description = in.Description
	t.Fields = in.Fields
	t.Flow = datatypes.NewJSONType(in.Flow)
	t.RequiredAttachments = in.RequiredAttachments
	t.SortOrder = in.SortOrder
	if err := u.repo.Save(ctx, t); err != nil {
		return nil, err
	}
	return toDTO(t), nil
}

// Deactivate hides the template from new drafts without touching documents
// that already reference it.
func (u *Usecase) Deactivate(ctx context.Context, templateID string) error {
	t, err := u.repo.GetByTemplateID(ctx, templateID)
	if err != nil {
		return err
	}
	t.Active = false
	return u.repo.Save(ctx, t)
}

func (u *Usecase) Get(ctx context.Context, templateID string) (*TemplateDTO, error) {
	t, err := u.repo.GetByTemplateID(ctx, templateID)
	if err != nil {
		return nil, err
	}
	return toDTO(t), nil
}

func (u *Usecase) List(ctx context.Context, activeOnly bool) ([]TemplateDTO, error) {
	ts, err := u.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	out := make([]TemplateDTO, 0, len(ts))
	for i := range ts {
		out = append(out, *toDTO(&ts[i]))
	}
	return out, nil
}

func validate(in SaveTemplateInput) error {
	if in.Name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrInvalidSchema)
	}
	if err := domain.ValidateFields(in.Fields); err != nil {
		return err
	}
	return in.Flow.Validate(in.Fields)
}

func toDTO(t *domain.FormTemplate) *TemplateDTO {
	return &TemplateDTO{
		TemplateID:          t.TemplateID,
		Name:                t.Name,
		Category:            t.Category,
		Description:         t.Description,
		Fields:              t.Fields,
		Flow:                t.Flow.Data(),
		RequiredAttachments: t.RequiredAttachments,
		Active:              t.Active,
		SortOrder:           t.SortOrder,
		CreatedAt:           t.CreatedAt,
		UpdatedAt:           t.UpdatedAt,
	}
}
