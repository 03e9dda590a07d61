package templatemock

import (
	"context"

	domain "github.com/bp4sp4/NMS-System-sub001/internal/domain/template"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Only methods you need are included; add more as tests require.
type Repo struct {
	CreateFn          func(ctx context.Context, t *domain.FormTemplate) error
	GetByTemplateIDFn func(ctx context.Context, templateID string) (*domain.FormTemplate, error)
	ListFn            func(ctx context.Context, activeOnly bool) ([]domain.FormTemplate, error)
	SaveFn            func(ctx context.Context, t *domain.FormTemplate) error
}

func (m *Repo) Create(ctx context.Context, t *domain.FormTemplate) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, t)
	}
	return nil
}

func (m *Repo) GetByTemplateID(ctx context.Context, templateID string) (*domain.FormTemplate, error) {
	if m.GetByTemplateIDFn != nil {
		return m.GetByTemplateIDFn(ctx, templateID)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) List(ctx context.Context, activeOnly bool) ([]domain.FormTemplate, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, activeOnly)
	}
	return nil, nil
}

func (m *Repo) Save(ctx context.Context, t *domain.FormTemplate) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, t)
	}
	return nil
}
