package notifymock

import (
	"context"
	"sync"

	"github.com/bp4sp4/NMS-System-sub001/internal/domain/notify"
)

var _ notify.Notifier = (*Notifier)(nil)

// Notifier records every notification it receives. Safe for concurrent
// use since dispatch happens on a background goroutine.
type Notifier struct {
	mu       sync.Mutex
	NotifyFn func(ctx context.Context, n notify.Notification) error
	got      []notify.Notification
}

func (m *Notifier) Notify(ctx context.Context, n notify.Notification) error {
	m.mu.Lock()
	m.got = append(m.got, n)
	m.mu.Unlock()
	if m.NotifyFn != nil {
		return m.NotifyFn(ctx, n)
	}
	return nil
}

// Sent returns a copy of everything recorded so far.
func (m *Notifier) Sent() []notify.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]notify.Notification, len(m.got))
	copy(out, m.got)
	return out
}
