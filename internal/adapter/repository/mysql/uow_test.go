package mysql

import (
	"context"
	"errors"
	"testing"

	approvalDomain "github.com/bp4sp4/NMS-System-sub001/internal/domain/approval"
	"github.com/bp4sp4/NMS-System-sub001/internal/domain/uow"
)

func TestGormUoW_WithinTx_Commit(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	guow := NewGormUoW(db)
	tplRepo := NewTemplateRepository(db)
	docRepo := NewDocumentRepository(db)

	err := guow.WithinTx(ctx, func(r uow.Repos) error {
		if err := r.Templates.Create(ctx, makeTemplate("11111111111111111111111111111111", "expense", 1)); err != nil {
			return err
		}
		return r.Documents.Create(ctx, makeDocument("d1d1d1d1d1d1d1d1d1d1d1d1d1d1d1d1", "app-1", approvalDomain.StatusDraft))
	})
	if err != nil {
		t.Fatalf("WithinTx commit err: %v", err)
	}

	if _, err := tplRepo.GetByTemplateID(ctx, "11111111111111111111111111111111"); err != nil {
		t.Fatalf("template not visible after commit: %v", err)
	}
	if _, err := docRepo.GetByDocumentID(ctx, "d1d1d1d1d1d1d1d1d1d1d1d1d1d1d1d1"); err != nil {
		t.Fatalf("document not visible after commit: %v", err)
	}
}

func TestGormUoW_WithinTx_Rollback(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	guow := NewGormUoW(db)
	docRepo := NewDocumentRepository(db)

	sentinel := errors.New("boom")
	_ = guow.WithinTx(ctx, func(r uow.Repos) error {
		if err := r.Documents.Create(ctx, makeDocument("d2d2d2d2d2d2d2d2d2d2d2d2d2d2d2d2", "app-1", approvalDomain.StatusDraft)); err != nil {
			return err
		}
		return sentinel // force rollback
	})

	if _, err := docRepo.GetByDocumentID(ctx, "d2d2d2d2d2d2d2d2d2d2d2d2d2d2d2d2"); !errors.Is(err, approvalDomain.ErrNotFound) {
		t.Fatalf("expected document absent after rollback, got %v", err)
	}
}

func TestGormUoW_WithinDocumentTx_Commit(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	guow := NewGormUoW(db)
	docRepo := NewDocumentRepository(db)

	seed := makeDocument("d3d3d3d3d3d3d3d3d3d3d3d3d3d3d3d3", "app-1", approvalDomain.StatusDraft)
	if err := docRepo.Create(ctx, seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	err := guow.WithinDocumentTx(ctx, seed.DocumentID, func(r uow.Repos, d *approvalDomain.ApprovalDocument) error {
		if d == nil || d.DocumentID != seed.DocumentID || d.Status != approvalDomain.StatusDraft {
			t.Fatalf("unexpected document passed to fn: %+v", d)
		}
		d.Status = approvalDomain.StatusCancelled
		if err := r.Documents.SaveIfStatus(ctx, d, approvalDomain.StatusDraft); err != nil {
			return err
		}
		return r.Documents.AppendHistory(ctx, &approvalDomain.History{
			DocumentID:   d.DocumentID,
			ApproverID:   d.ApplicantID,
			Action:       approvalDomain.ActionCancel,
			ResultStatus: approvalDomain.StatusCancelled,
		})
	})
	if err != nil {
		t.Fatalf("WithinDocumentTx commit err: %v", err)
	}

	got, err := docRepo.GetByDocumentID(ctx, seed.DocumentID)
	if err != nil {
		t.Fatalf("GetByDocumentID: %v", err)
	}
	if got.Status != approvalDomain.StatusCancelled {
		t.Fatalf("status not updated, got %s", got.Status)
	}
	hist, err := docRepo.ListHistory(ctx, seed.DocumentID)
	if err != nil {
		t.Fatalf("ListHistory: %v", err)
	}
	if len(hist) != 1 {
		t.Fatalf("history not visible after commit: %+v", hist)
	}
}

func TestGormUoW_WithinDocumentTx_Rollback(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	guow := NewGormUoW(db)
	docRepo := NewDocumentRepository(db)

	seed := makeDocument("d4d4d4d4d4d4d4d4d4d4d4d4d4d4d4d4", "app-1", approvalDomain.StatusDraft)
	if err := docRepo.Create(ctx, seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	sentinel := errors.New("stop")
	_ = guow.WithinDocumentTx(ctx, seed.DocumentID, func(r uow.Repos, d *approvalDomain.ApprovalDocument) error {
		d.Status = approvalDomain.StatusCancelled
		if err := r.Documents.SaveIfStatus(ctx, d, approvalDomain.StatusDraft); err != nil {
			return err
		}
		if err := r.Documents.AppendHistory(ctx, &approvalDomain.History{
			DocumentID: d.DocumentID, ApproverID: "x",
			Action: approvalDomain.ActionCancel, ResultStatus: approvalDomain.StatusCancelled,
		}); err != nil {
			return err
		}
		return sentinel // force rollback
	})

	got, err := docRepo.GetByDocumentID(ctx, seed.DocumentID)
	if err != nil {
		t.Fatalf("post-rollback GetByDocumentID: %v", err)
	}
	if got.Status != approvalDomain.StatusDraft {
		t.Fatalf("expected draft after rollback, got %s", got.Status)
	}
	hist, err := docRepo.ListHistory(ctx, seed.DocumentID)
	if err != nil {
		t.Fatalf("ListHistory: %v", err)
	}
	if len(hist) != 0 {
		t.Fatalf("expected no history after rollback, got %+v", hist)
	}
}

func TestGormUoW_WithinDocumentTx_NotFound(t *testing.T) {
	db := openTestDB(t)

	guow := NewGormUoW(db)

	err := guow.WithinDocumentTx(context.Background(), "00000000000000000000000000000000",
		func(uow.Repos, *approvalDomain.ApprovalDocument) error {
			t.Fatalf("callback should not run when the document is missing")
			return nil
		})
	if !errors.Is(err, approvalDomain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
