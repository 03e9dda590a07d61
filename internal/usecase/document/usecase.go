package document

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bp4sp4/NMS-System-sub001/internal/domain/approval"
	"github.com/bp4sp4/NMS-System-sub001/internal/domain/directory"
	"github.com/bp4sp4/NMS-System-sub001/internal/domain/notify"
	"github.com/bp4sp4/NMS-System-sub001/internal/domain/template"
	"github.com/bp4sp4/NMS-System-sub001/internal/domain/uow"
	"github.com/bp4sp4/NMS-System-sub001/internal/flow"
	"github.com/bp4sp4/NMS-System-sub001/pkg/id"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"
)

var priorities = map[approval.Priority]bool{
	approval.PriorityLow: true, approval.PriorityNormal: true,
	approval.PriorityHigh: true, approval.PriorityUrgent: true,
}

// Usecase is the document lifecycle manager. Every transition runs inside a
// per-document transaction (row lock + status guard), appends its history
// rows in the same transaction, and dispatches notifications only after the
// transaction commits.
type Usecase struct {
	templates template.Repository
	documents approval.Repository
	uow       uow.UnitOfWork
	dir       directory.Directory
	eval      *flow.Evaluator
	notifier  notify.Notifier
	log       zerolog.Logger
}

func NewUsecase(
	templates template.Repository,
	documents approval.Repository,
	tx uow.UnitOfWork,
	dir directory.Directory,
	eval *flow.Evaluator,
	notifier notify.Notifier,
	log zerolog.Logger,
) *Usecase {
	return &Usecase{
		templates: templates,
		documents: documents,
		uow:       tx,
		dir:       dir,
		eval:      eval,
		notifier:  notifier,
		log:       log,
	}
}

// CreateDraft validates the form data against the template schema and stores
// a new draft. No flow evaluation happens yet; the snapshot is taken at
// submission time.
func (u *Usecase) CreateDraft(ctx context.Context, in CreateDraftInput) (*DocumentDTO, error) {
	if in.ApplicantID == "" || in.Title == "" {
		return nil, fmt.Errorf("%w: applicant_id and title are required", template.ErrFormData)
	}
	tpl, err := u.templates.GetByTemplateID(ctx, in.TemplateID)
	if err != nil {
		return nil, err
	}
	if !tpl.Active {
		return nil, fmt.Errorf("%w: template %s is inactive", template.ErrNotFound, in.TemplateID)
	}
	if err := template.ValidateFormData(tpl.Fields, in.FormData); err != nil {
		return nil, err
	}
	prio := approval.Priority(in.Priority)
	if in.Priority == "" {
		prio = approval.PriorityNormal
	} else if !priorities[prio] {
		return nil, fmt.Errorf("%w: unknown priority %q", template.ErrFormData, in.Priority)
	}

	d := &approval.ApprovalDocument{
		DocumentID:  id.NewID32(),
		TemplateID:  tpl.TemplateID,
		Title:       in.Title,
		FormData:    datatypes.JSONMap(in.FormData),
		ApplicantID: in.ApplicantID,
		Department:  in.Department,
		Status:      approval.StatusDraft,
		Priority:    prio,
		Attachments: in.Attachments,
	}
	if err := u.documents.Create(ctx, d); err != nil {
		return nil, err
	}
	return toDTO(d, nil), nil
}

// UpdateDraft lets the applicant rework a draft (including one returned by
// an approver) before re-submitting it.
func (u *Usecase) UpdateDraft(ctx context.Context, in UpdateDraftInput) (*DocumentDTO, error) {
	var dto *DocumentDTO
	err := u.uow.WithinDocumentTx(ctx, in.DocumentID, func(r uow.Repos, d *approval.ApprovalDocument) error {
		if d.Status != approval.StatusDraft {
			return approval.ErrInvalidTransition
		}
		if d.ApplicantID != in.ActorID {
			return approval.ErrForbidden
		}
		tpl, err := r.Templates.GetByTemplateID(ctx, d.TemplateID)
		if err != nil {
			return err
		}
		if err := template.ValidateFormData(tpl.Fields, in.FormData); err != nil {
			return err
		}
		if in.Title != "" {
			d.Title = in.Title
		}
		if in.Priority != "" {
			prio := approval.Priority(in.Priority)
			if !priorities[prio] {
				return fmt.Errorf("%w: unknown priority %q", template.ErrFormData, in.Priority)
			}
			d.Priority = prio
		}
		d.FormData = datatypes.JSONMap(in.FormData)
		if in.Attachments != nil {
			d.Attachments = in.Attachments
		}
		if err := r.Documents.Save(ctx, d); err != nil {
			return err
		}
		dto = toDTO(d, nil)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// Submit snapshots the template flow onto the draft, resolves the effective
// steps and advances to the first human step (recording every auto-approved
// step on the way). With nothing left to approve the document lands straight
// on approved. Evaluation failure leaves the draft untouched.
func (u *Usecase) Submit(ctx context.Context, documentID, actorID string) (*DocumentDTO, error) {
	var dto *DocumentDTO
	var evts []notify.Notification

	err := u.uow.WithinDocumentTx(ctx, documentID, func(r uow.Repos, d *approval.ApprovalDocument) error {
		if d.Status != approval.StatusDraft {
			return approval.ErrInvalidTransition
		}
		if d.ApplicantID != actorID {
			return approval.ErrForbidden
		}
		tpl, err := r.Templates.GetByTemplateID(ctx, d.TemplateID)
		if err != nil {
			return err
		}
		if err := template.ValidateFormData(tpl.Fields, d.FormData); err != nil {
			return err
		}
		if err := checkAttachments(tpl.RequiredAttachments, d.Attachments); err != nil {
			return err
		}

		fl := tpl.Flow.Data()
		steps, err := u.eval.Resolve(ctx, fl, d.FormData, d.Department, u.dir)
		if err != nil {
			return err
		}

		d.Flow = datatypes.NewJSONType(fl)
		d.Steps = steps
		d.Status = approval.StatusSubmitted

		now := time.Now().UTC()
		rows := u.advance(d, 0, now)
		evts = transitionEvents(d)

		if err := r.Documents.SaveIfStatus(ctx, d, approval.StatusDraft); err != nil {
			return err
		}
		for i := range rows {
			if err := r.Documents.AppendHistory(ctx, &rows[i]); err != nil {
				return err
			}
		}
		dto = toDTO(d, nil)
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.dispatch(evts)
	return dto, nil
}

// Act executes one approve/reject/return/delegate transition on behalf of
// actorID. Exactly one history row is appended for the action itself, plus
// one per auto-approved step consumed while advancing.
func (u *Usecase) Act(ctx context.Context, in ActInput) (*DocumentDTO, error) {
	switch in.Action {
	case approval.ActionApprove, approval.ActionReject, approval.ActionReturn, approval.ActionDelegate:
	default:
		return nil, fmt.Errorf("%w: action %q", approval.ErrInvalidTransition, in.Action)
	}

	var dto *DocumentDTO
	var evts []notify.Notification

	err := u.uow.WithinDocumentTx(ctx, in.DocumentID, func(r uow.Repos, d *approval.ApprovalDocument) error {
		prev := d.Status
		if !prev.InFlight() {
			return approval.ErrInvalidTransition
		}
		step, ok := d.CurrentStep()
		if !ok {
			return approval.ErrInvalidTransition
		}
		if !u.mayAct(d, step, in.ActorID) {
			return approval.ErrForbidden
		}

		now := time.Now().UTC()
		actRow := approval.History{
			DocumentID: d.DocumentID,
			ApproverID: in.ActorID,
			Action:     in.Action,
			Comment:    in.Comment,
			StepOrder:  step.Order,
		}
		rows := []approval.History{}

		switch in.Action {
		case approval.ActionApprove:
			autoRows := u.advance(d, step.Order, now)
			actRow.ResultStatus = approval.StatusPending
			if len(autoRows) == 0 && d.Status == approval.StatusApproved {
				actRow.ResultStatus = approval.StatusApproved
			}
			rows = append(rows, actRow)
			rows = append(rows, autoRows...)

		case approval.ActionReject:
			d.Status = approval.StatusRejected
			clearRouting(d)
			actRow.ResultStatus = approval.StatusRejected
			rows = append(rows, actRow)

		case approval.ActionReturn:
			d.Status = approval.StatusDraft
			clearRouting(d)
			actRow.ResultStatus = approval.StatusDraft
			rows = append(rows, actRow)

		case approval.ActionDelegate:
			if in.DelegateTo == "" || in.DelegateTo == in.ActorID {
				return approval.ErrInvalidDelegate
			}
			eligible, err := u.dir.ResolveApprovers(ctx, step.ApproverType, d.Department)
			if err != nil {
				return fmt.Errorf("resolve delegate eligibility: %w", err)
			}
			if !containsUser(eligible, in.DelegateTo) {
				return approval.ErrInvalidDelegate
			}
			delegateStep(d, step.Order, in.ActorID, in.DelegateTo)
			d.CurrentApproverID = &in.DelegateTo
			d.StepStartedAt = &now
			d.Escalated = false
			actRow.ResultStatus = d.Status
			rows = append(rows, actRow)
		}

		evts = actionEvents(d, in, step)

		if err := r.Documents.SaveIfStatus(ctx, d, prev); err != nil {
			return err
		}
		for i := range rows {
			if err := r.Documents.AppendHistory(ctx, &rows[i]); err != nil {
				return err
			}
		}
		dto = toDTO(d, nil)
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.dispatch(evts)
	return dto, nil
}

// Cancel is the applicant pulling the document from any non-terminal status.
func (u *Usecase) Cancel(ctx context.Context, documentID, actorID string) (*DocumentDTO, error) {
	var dto *DocumentDTO
	var evts []notify.Notification

	err := u.uow.WithinDocumentTx(ctx, documentID, func(r uow.Repos, d *approval.ApprovalDocument) error {
		prev := d.Status
		if prev.Terminal() {
			return approval.ErrInvalidTransition
		}
		if d.ApplicantID != actorID {
			return approval.ErrForbidden
		}
		if d.CurrentApproverID != nil {
			evts = append(evts, notify.Notification{
				UserID: *d.CurrentApproverID, DocumentID: d.DocumentID,
				Event: notify.EventCancelled, Title: d.Title,
			})
		}
		stepOrder := 0
		if d.CurrentStepOrder != nil {
			stepOrder = *d.CurrentStepOrder
		}
		d.Status = approval.StatusCancelled
		clearRouting(d)

		if err := r.Documents.SaveIfStatus(ctx, d, prev); err != nil {
			return err
		}
		if err := r.Documents.AppendHistory(ctx, &approval.History{
			DocumentID:   d.DocumentID,
			ApproverID:   actorID,
			Action:       approval.ActionCancel,
			StepOrder:    stepOrder,
			ResultStatus: approval.StatusCancelled,
		}); err != nil {
			return err
		}
		dto = toDTO(d, nil)
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.dispatch(evts)
	return dto, nil
}

// CheckEscalation flags and notifies a document stuck on one step past the
// flow's escalation window. Notify-and-flag only: routing is unchanged. A
// scan that raced a user transition finds the precondition gone and simply
// reports nothing to do.
func (u *Usecase) CheckEscalation(ctx context.Context, documentID string, now time.Time) error {
	var evts []notify.Notification

	err := u.uow.WithinDocumentTx(ctx, documentID, func(r uow.Repos, d *approval.ApprovalDocument) error {
		if d.Status != approval.StatusPending || d.Escalated || d.StepStartedAt == nil {
			return nil
		}
		fl := d.Flow.Data()
		if fl.EscalationDays == nil {
			return nil
		}
		deadline := d.StepStartedAt.Add(time.Duration(*fl.EscalationDays) * 24 * time.Hour)
		if now.Before(deadline) {
			return nil
		}

		step, _ := d.CurrentStep()
		d.Escalated = true
		if err := r.Documents.SaveIfStatus(ctx, d, approval.StatusPending); err != nil {
			return err
		}
		if err := r.Documents.AppendHistory(ctx, &approval.History{
			DocumentID:   d.DocumentID,
			ApproverID:   approval.SystemActor,
			Action:       approval.ActionEscalate,
			StepOrder:    step.Order,
			ResultStatus: approval.StatusPending,
		}); err != nil {
			return err
		}
		for _, a := range step.Approvers {
			evts = append(evts, notify.Notification{
				UserID: a, DocumentID: d.DocumentID,
				Event: notify.EventEscalated, Title: d.Title,
			})
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, approval.ErrInvalidTransition) {
			// Lost a race against a user transition; nothing left to escalate.
			return nil
		}
		return err
	}
	u.dispatch(evts)
	return nil
}

// Get returns the document with its resolved snapshot and full history.
func (u *Usecase) Get(ctx context.Context, documentID string) (*DocumentDTO, error) {
	d, err := u.documents.GetByDocumentID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	hist, err := u.documents.ListHistory(ctx, documentID)
	if err != nil {
		return nil, err
	}
	return toDTO(d, hist), nil
}

func (u *Usecase) ListByApplicant(ctx context.Context, applicantID string) ([]DocumentDTO, error) {
	docs, err := u.documents.ListByApplicant(ctx, applicantID)
	if err != nil {
		return nil, err
	}
	return toDTOs(docs), nil
}

// Inbox returns the documents currently waiting on the given approver.
func (u *Usecase) Inbox(ctx context.Context, approverID string) ([]DocumentDTO, error) {
	docs, err := u.documents.ListPendingForApprover(ctx, approverID)
	if err != nil {
		return nil, err
	}
	return toDTOs(docs), nil
}

// advance moves the document past every auto-approved step after `after`,
// recording one system-attributed history row per consumed step, and parks
// on the next human step or on approved. Returned rows carry the status the
// document held right after each consumed step.
func (u *Usecase) advance(d *approval.ApprovalDocument, after int, now time.Time) []approval.History {
	var rows []approval.History
	for {
		next, ok := d.NextStep(after)
		if !ok {
			d.Status = approval.StatusApproved
			clearRouting(d)
			if len(rows) > 0 {
				rows[len(rows)-1].ResultStatus = approval.StatusApproved
			}
			return rows
		}
		if next.AutoApproval {
			rows = append(rows, approval.History{
				DocumentID:   d.DocumentID,
				ApproverID:   approval.SystemActor,
				Action:       approval.ActionApprove,
				Comment:      "auto-approved",
				StepOrder:    next.Order,
				ResultStatus: approval.StatusPending,
			})
			after = next.Order
			continue
		}
		d.Status = approval.StatusPending
		d.CurrentStepOrder = &next.Order
		d.CurrentApproverID = &next.Approvers[0]
		d.StepStartedAt = &now
		d.Escalated = false
		return rows
	}
}

// mayAct enforces the actor rule: the assigned approver, or under parallel
// approval any member of the current step's eligible set.
func (u *Usecase) mayAct(d *approval.ApprovalDocument, step approval.EffectiveStep, actorID string) bool {
	if d.CurrentApproverID != nil && *d.CurrentApproverID == actorID {
		return true
	}
	return d.Flow.Data().ParallelApproval && step.Eligible(actorID)
}

func (u *Usecase) dispatch(evts []notify.Notification) {
	if u.notifier == nil || len(evts) == 0 {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		for _, n := range evts {
			if err := u.notifier.Notify(ctx, n); err != nil {
				u.log.Warn().Err(err).
					Str("document_id", n.DocumentID).
					Str("user_id", n.UserID).
					Str("event", string(n.Event)).
					Msg("notification delivery failed")
			}
		}
	}()
}

func clearRouting(d *approval.ApprovalDocument) {
	d.CurrentApproverID = nil
	d.CurrentStepOrder = nil
	d.StepStartedAt = nil
	d.Escalated = false
}

func delegateStep(d *approval.ApprovalDocument, order int, from, to string) {
	for i := range d.Steps {
		if d.Steps[i].Order != order {
			continue
		}
		replaced := false
		for j, a := range d.Steps[i].Approvers {
			if a == from {
				d.Steps[i].Approvers[j] = to
				replaced = true
			}
		}
		if !replaced {
			d.Steps[i].Approvers = append(d.Steps[i].Approvers, to)
		}
	}
}

func checkAttachments(required []string, attachments []approval.Attachment) error {
	for _, kind := range required {
		found := false
		for _, a := range attachments {
			if a.Kind == kind {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: missing required attachment kind %q", template.ErrFormData, kind)
		}
	}
	return nil
}

func containsUser(users []string, id string) bool {
	for _, u := range users {
		if u == id {
			return true
		}
	}
	return false
}

// transitionEvents computes who to alert after a submit settled the document.
func transitionEvents(d *approval.ApprovalDocument) []notify.Notification {
	if d.Status == approval.StatusApproved {
		return []notify.Notification{{
			UserID: d.ApplicantID, DocumentID: d.DocumentID,
			Event: notify.EventApproved, Title: d.Title,
		}}
	}
	step, ok := d.CurrentStep()
	if !ok {
		return nil
	}
	evts := make([]notify.Notification, 0, len(step.Approvers))
	for _, a := range step.Approvers {
		evts = append(evts, notify.Notification{
			UserID: a, DocumentID: d.DocumentID,
			Event: notify.EventApprovalRequested, Title: d.Title,
		})
	}
	return evts
}

func actionEvents(d *approval.ApprovalDocument, in ActInput, acted approval.EffectiveStep) []notify.Notification {
	switch in.Action {
	case approval.ActionApprove:
		if d.Status == approval.StatusApproved {
			return []notify.Notification{{
				UserID: d.ApplicantID, DocumentID: d.DocumentID,
				Event: notify.EventApproved, Title: d.Title,
			}}
		}
		return transitionEvents(d)
	case approval.ActionReject:
		return []notify.Notification{{
			UserID: d.ApplicantID, DocumentID: d.DocumentID,
			Event: notify.EventRejected, Title: d.Title,
		}}
	case approval.ActionReturn:
		return []notify.Notification{{
			UserID: d.ApplicantID, DocumentID: d.DocumentID,
			Event: notify.EventReturned, Title: d.Title,
		}}
	case approval.ActionDelegate:
		return []notify.Notification{{
			UserID: in.DelegateTo, DocumentID: d.DocumentID,
			Event: notify.EventDelegated, Title: d.Title,
		}}
	}
	return nil
}

func toDTOs(docs []approval.ApprovalDocument) []DocumentDTO {
	out := make([]DocumentDTO, 0, len(docs))
	for i := range docs {
		out = append(out, *toDTO(&docs[i], nil))
	}
	return out
}
