package notifier

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bp4sp4/NMS-System-sub001/internal/domain/notify"

	"github.com/rs/zerolog"
)

// Channel delivers one notification over a concrete transport.
type Channel interface {
	Name() string
	Send(ctx context.Context, n notify.Notification) error
}

// ContactLookup resolves a user id to the phone number a channel sends to.
// Returning an empty phone means "no contact on file"; the channel skips.
type ContactLookup func(ctx context.Context, userID string) (string, error)

// Manager fans a notification out to every registered channel. Channels can
// be added while the service runs (config reload), hence the lock.
type Manager struct {
	mu       sync.RWMutex
	channels []Channel
	enabled  bool
	log      zerolog.Logger
}

func NewManager(log zerolog.Logger) *Manager {
	return &Manager{enabled: true, log: log.With().Str("component", "notifier").Logger()}
}

func (m *Manager) AddChannel(c Channel) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.channels = append(m.channels, c)
}

func (m *Manager) SetEnabled(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = enabled
}

func (m *Manager) ChannelCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.channels)
}

// Notify sends n over every channel and joins the per-channel failures.
// A failed channel never stops the others.
func (m *Manager) Notify(ctx context.Context, n notify.Notification) error {
	m.mu.RLock()
	enabled := m.enabled
	channels := make([]Channel, len(m.channels))
	copy(channels, m.channels)
	m.mu.RUnlock()

	if !enabled || len(channels) == 0 {
		m.log.Debug().
			Str("document_id", n.DocumentID).
			Str("event", string(n.Event)).
			Msg("notification dropped, no channels")
		return nil
	}

	var errs []error
	for _, ch := range channels {
		if err := ch.Send(ctx, n); err != nil {
			m.log.Warn().Err(err).
				Str("channel", ch.Name()).
				Str("user_id", n.UserID).
				Str("document_id", n.DocumentID).
				Msg("notification send failed")
			errs = append(errs, fmt.Errorf("%s: %w", ch.Name(), err))
			continue
		}
		m.log.Info().
			Str("channel", ch.Name()).
			Str("user_id", n.UserID).
			Str("document_id", n.DocumentID).
			Str("event", string(n.Event)).
			Msg("notification sent")
	}
	return errors.Join(errs...)
}

// messageBody renders the short text every channel shares.
func messageBody(n notify.Notification) string {
	return fmt.Sprintf("[%s] %s (document %s)", n.Event, n.Title, n.DocumentID)
}
