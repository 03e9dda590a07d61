package mysql

import (
	"context"

	"github.com/bp4sp4/NMS-System-sub001/internal/domain/approval"
	"github.com/bp4sp4/NMS-System-sub001/internal/domain/uow"

	"gorm.io/gorm"
)

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := uow.Repos{
			Templates: &TemplateRepository{db: tx},
			Documents: &DocumentRepository{db: tx},
		}
		return fn(r)
	})
}

func (u *GormUoW) WithinDocumentTx(ctx context.Context, documentID string, fn func(r uow.Repos, d *approval.ApprovalDocument) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := uow.Repos{
			Templates: &TemplateRepository{db: tx},
			Documents: &DocumentRepository{db: tx},
		}
		// lock the document row up-front so transitions on it serialize
		d, err := r.Documents.GetByDocumentIDForUpdate(ctx, documentID)
		if err != nil {
			return err
		}
		return fn(r, d)
	})
}
