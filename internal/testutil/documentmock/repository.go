package documentmock

import (
	"context"
	"time"

	domain "github.com/bp4sp4/NMS-System-sub001/internal/domain/approval"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Fill in the function fields a test needs; unfilled ones default to
// benign no-ops (writes) or ErrNotFound (reads).
type Repo struct {
	CreateFn                   func(ctx context.Context, d *domain.ApprovalDocument) error
	GetByDocumentIDFn          func(ctx context.Context, documentID string) (*domain.ApprovalDocument, error)
	GetByDocumentIDForUpdateFn func(ctx context.Context, documentID string) (*domain.ApprovalDocument, error)
	SaveFn                     func(ctx context.Context, d *domain.ApprovalDocument) error
	SaveIfStatusFn             func(ctx context.Context, d *domain.ApprovalDocument, expected domain.Status) error
	ListByApplicantFn          func(ctx context.Context, applicantID string) ([]domain.ApprovalDocument, error)
	ListPendingForApproverFn   func(ctx context.Context, approverID string) ([]domain.ApprovalDocument, error)
	ListPendingStartedBeforeFn func(ctx context.Context, cutoff time.Time) ([]domain.ApprovalDocument, error)
	AppendHistoryFn            func(ctx context.Context, h *domain.History) error
	ListHistoryFn              func(ctx context.Context, documentID string) ([]domain.History, error)
}

func (m *Repo) Create(ctx context.Context, d *domain.ApprovalDocument) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, d)
	}
	return nil
}

func (m *Repo) GetByDocumentID(ctx context.Context, documentID string) (*domain.ApprovalDocument, error) {
	if m.GetByDocumentIDFn != nil {
		return m.GetByDocumentIDFn(ctx, documentID)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) GetByDocumentIDForUpdate(ctx context.Context, documentID string) (*domain.ApprovalDocument, error) {
	if m.GetByDocumentIDForUpdateFn != nil {
		return m.GetByDocumentIDForUpdateFn(ctx, documentID)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) Save(ctx context.Context, d *domain.ApprovalDocument) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, d)
	}
	return nil
}

func (m *Repo) SaveIfStatus(ctx context.Context, d *domain.ApprovalDocument, expected domain.Status) error {
	if m.SaveIfStatusFn != nil {
		return m.SaveIfStatusFn(ctx, d, expected)
	}
	return nil
}

func (m *Repo) ListByApplicant(ctx context.Context, applicantID string) ([]domain.ApprovalDocument, error) {
	if m.ListByApplicantFn != nil {
		return m.ListByApplicantFn(ctx, applicantID)
	}
	return nil, nil
}

func (m *Repo) ListPendingForApprover(ctx context.Context, approverID string) ([]domain.ApprovalDocument, error) {
	if m.ListPendingForApproverFn != nil {
		return m.ListPendingForApproverFn(ctx, approverID)
	}
	return nil, nil
}

func (m *Repo) ListPendingStartedBefore(ctx context.Context, cutoff time.Time) ([]domain.ApprovalDocument, error) {
	if m.ListPendingStartedBeforeFn != nil {
		return m.ListPendingStartedBeforeFn(ctx, cutoff)
	}
	return nil, nil
}

func (m *Repo) AppendHistory(ctx context.Context, h *domain.History) error {
	if m.AppendHistoryFn != nil {
		return m.AppendHistoryFn(ctx, h)
	}
	return nil
}

func (m *Repo) ListHistory(ctx context.Context, documentID string) ([]domain.History, error) {
	if m.ListHistoryFn != nil {
		return m.ListHistoryFn(ctx, documentID)
	}
	return nil, nil
}
