package notify

import "context"

type EventKind string

const (
	EventApprovalRequested EventKind = "approval_requested"
	EventApproved          EventKind = "approved"
	EventRejected          EventKind = "rejected"
	EventReturned          EventKind = "returned"
	EventDelegated         EventKind = "delegated"
	EventCancelled         EventKind = "cancelled"
	EventEscalated         EventKind = "escalated"
)

// Notification is one outbound alert about a document transition.
type Notification struct {
	UserID     string
	DocumentID string
	Event      EventKind
	Title      string
}

// Notifier delivers notifications best-effort. Callers must treat failures
// as log-only; delivery never blocks or rolls back a transition.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}
