package mysql

import (
	"context"
	"errors"
	"time"

	approvalDomain "github.com/bp4sp4/NMS-System-sub001/internal/domain/approval"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DocumentRepository struct{ db *gorm.DB }

func NewDocumentRepository(db *gorm.DB) *DocumentRepository { return &DocumentRepository{db: db} }

func (r *DocumentRepository) Create(ctx context.Context, d *approvalDomain.ApprovalDocument) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *DocumentRepository) GetByDocumentID(ctx context.Context, documentID string) (*approvalDomain.ApprovalDocument, error) {
	var out approvalDomain.ApprovalDocument
	res := r.db.WithContext(ctx).Where("document_id = ?", documentID).First(&out)
	return &out, mapNotFound(res.Error)
}

func (r *DocumentRepository) GetByDocumentIDForUpdate(ctx context.Context, documentID string) (*approvalDomain.ApprovalDocument, error) {
	var out approvalDomain.ApprovalDocument
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("document_id = ?", documentID).
		First(&out)
	return &out, mapNotFound(res.Error)
}

func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return approvalDomain.ErrNotFound
	}
	return err
}

func (r *DocumentRepository) Save(ctx context.Context, d *approvalDomain.ApprovalDocument) error {
	return r.db.WithContext(ctx).Save(d).Error
}

// SaveIfStatus is the optimistic guard: the full update is conditioned on the
// stored status being unchanged, so a transition that lost a race affects
// zero rows and surfaces as ErrInvalidTransition instead of clobbering.
func (r *DocumentRepository) SaveIfStatus(ctx context.Context, d *approvalDomain.ApprovalDocument, expected approvalDomain.Status) error {
	res := r.db.WithContext(ctx).
		Model(&approvalDomain.ApprovalDocument{}).
		Where("id = ? AND status = ?", d.ID, expected).
		Select("*").Omit("id", "created_at", "deleted_at").
		Updates(d)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return approvalDomain.ErrInvalidTransition
	}
	return nil
}

func (r *DocumentRepository) ListByApplicant(ctx context.Context, applicantID string) ([]approvalDomain.ApprovalDocument, error) {
	var out []approvalDomain.ApprovalDocument
	res := r.db.WithContext(ctx).
		Where("applicant_id = ?", applicantID).
		Order("created_at DESC, id DESC").
		Find(&out)
	return out, res.Error
}

func (r *DocumentRepository) ListPendingForApprover(ctx context.Context, approverID string) ([]approvalDomain.ApprovalDocument, error) {
	var out []approvalDomain.ApprovalDocument
	res := r.db.WithContext(ctx).
		Where("status = ? AND current_approver_id = ?", approvalDomain.StatusPending, approverID).
		Order("created_at ASC, id ASC").
		Find(&out)
	return out, res.Error
}

func (r *DocumentRepository) ListPendingStartedBefore(ctx context.Context, cutoff time.Time) ([]approvalDomain.ApprovalDocument, error) {
	var out []approvalDomain.ApprovalDocument
	res := r.db.WithContext(ctx).
		Where("status = ? AND escalated = ? AND step_started_at IS NOT NULL AND step_started_at < ?",
			approvalDomain.StatusPending, false, cutoff).
		Order("step_started_at ASC").
		Find(&out)
	return out, res.Error
}

func (r *DocumentRepository) AppendHistory(ctx context.Context, h *approvalDomain.History) error {
	return r.db.WithContext(ctx).Create(h).Error
}

func (r *DocumentRepository) ListHistory(ctx context.Context, documentID string) ([]approvalDomain.History, error) {
	var out []approvalDomain.History
	res := r.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("created_at ASC, id ASC").
		Find(&out)
	return out, res.Error
}
