package approval

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, d *ApprovalDocument) error

	// Get by public document_id
	GetByDocumentID(ctx context.Context, documentID string) (*ApprovalDocument, error)

	// Locking read used inside a transaction (SELECT ... FOR UPDATE).
	GetByDocumentIDForUpdate(ctx context.Context, documentID string) (*ApprovalDocument, error)

	Save(ctx context.Context, d *ApprovalDocument) error

	// SaveIfStatus persists d only if the stored row still has the expected
	// status. Returns ErrInvalidTransition when the guard fails, which is how
	// a losing racer learns it lost.
	SaveIfStatus(ctx context.Context, d *ApprovalDocument, expected Status) error

	ListByApplicant(ctx context.Context, applicantID string) ([]ApprovalDocument, error)

	// ListPendingForApprover returns the approver's inbox.
	ListPendingForApprover(ctx context.Context, approverID string) ([]ApprovalDocument, error)

	// ListPendingStartedBefore returns pending documents whose current step
	// started before the cutoff and that are not yet escalated. Feeds the
	// escalation scan.
	ListPendingStartedBefore(ctx context.Context, cutoff time.Time) ([]ApprovalDocument, error)

	AppendHistory(ctx context.Context, h *History) error

	// ListHistory returns the document's history ordered by created_at, id.
	ListHistory(ctx context.Context, documentID string) ([]History, error)
}
