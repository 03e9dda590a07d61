package mysql

import (
	"context"
	"errors"

	templateDomain "github.com/bp4sp4/NMS-System-sub001/internal/domain/template"

	"gorm.io/gorm"
)

type TemplateRepository struct{ db *gorm.DB }

func NewTemplateRepository(db *gorm.DB) *TemplateRepository { return &TemplateRepository{db: db} }

func (r *TemplateRepository) Create(ctx context.Context, t *templateDomain.FormTemplate) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *TemplateRepository) GetByTemplateID(ctx context.Context, templateID string) (*templateDomain.FormTemplate, error) {
	var out templateDomain.FormTemplate
	res := r.db.WithContext(ctx).Where("template_id = ?", templateID).First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, templateDomain.ErrNotFound
	}
	if res.Error != nil {
		return nil, res.Error
	}
	return &out, nil
}

func (r *TemplateRepository) List(ctx context.Context, activeOnly bool) ([]templateDomain.FormTemplate, error) {
	q := r.db.WithContext(ctx).Order("sort_order ASC, id ASC")
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	var out []templateDomain.FormTemplate
	res := q.Find(&out)
	return out, res.Error
}

func (r *TemplateRepository) Save(ctx context.Context, t *templateDomain.FormTemplate) error {
	return r.db.WithContext(ctx).Save(t).Error
}
