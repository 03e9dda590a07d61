package template

import "context"

type Repository interface {
	Create(ctx context.Context, t *FormTemplate) error

	// Get by public template_id
	GetByTemplateID(ctx context.Context, templateID string) (*FormTemplate, error)

	// List returns templates ordered by sort_order; activeOnly hides
	// deactivated ones.
	List(ctx context.Context, activeOnly bool) ([]FormTemplate, error)

	Save(ctx context.Context, t *FormTemplate) error
}
