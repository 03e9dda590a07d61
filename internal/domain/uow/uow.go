package uow

import (
	"context"

	"github.com/bp4sp4/NMS-System-sub001/internal/domain/approval"
	"github.com/bp4sp4/NMS-System-sub001/internal/domain/template"
)

type Repos struct {
	Templates template.Repository
	Documents approval.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// convenience: lock the document row first, then pass it in. All
	// lifecycle transitions run through this so actions on the same
	// document serialize.
	WithinDocumentTx(ctx context.Context, documentID string, fn func(r Repos, d *approval.ApprovalDocument) error) error
}
