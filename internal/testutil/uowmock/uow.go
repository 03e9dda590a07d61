package uowmock

import (
	"context"
	"errors"

	"github.com/bp4sp4/NMS-System-sub001/internal/domain/approval"
	"github.com/bp4sp4/NMS-System-sub001/internal/domain/uow"
)

// Ensure compile-time compliance
var _ uow.UnitOfWork = (*UoW)(nil)

var errUnimplemented = errors.New("uowmock: method not implemented")

// UoW is a function-backed mock that satisfies uow.UnitOfWork.
// Fill in the function fields you need in a test; unfilled ones return errUnimplemented.
type UoW struct {
	WithinTxFn         func(ctx context.Context, fn func(r uow.Repos) error) error
	WithinDocumentTxFn func(ctx context.Context, documentID string, fn func(r uow.Repos, d *approval.ApprovalDocument) error) error
}

func New() *UoW { return &UoW{} }

// Passthrough builds a UoW that runs callbacks directly against the given
// repos, fetching the locked document through the document repo's plain
// getter. Covers the common "no real transaction" test setup.
func Passthrough(r uow.Repos) *UoW {
	return &UoW{
		WithinTxFn: func(ctx context.Context, fn func(uow.Repos) error) error {
			return fn(r)
		},
		WithinDocumentTxFn: func(ctx context.Context, documentID string, fn func(uow.Repos, *approval.ApprovalDocument) error) error {
			d, err := r.Documents.GetByDocumentID(ctx, documentID)
			if err != nil {
				return err
			}
			return fn(r, d)
		},
	}
}

func (m *UoW) Reset() { *m = UoW{} }

// Methods implementing UnitOfWork
func (m *UoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	if m.WithinTxFn != nil {
		return m.WithinTxFn(ctx, fn)
	}
	return errUnimplemented
}

func (m *UoW) WithinDocumentTx(ctx context.Context, documentID string, fn func(r uow.Repos, d *approval.ApprovalDocument) error) error {
	if m.WithinDocumentTxFn != nil {
		return m.WithinDocumentTxFn(ctx, documentID, fn)
	}
	return errUnimplemented
}
