package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

// Event subjects
const (
	RequestCreated  = "access.request.created"
	RequestApproved = "access.request.approved"
	RequestRejected = "access.request.rejected"
	AccessRevoked   = "access.revoked"
	HistoryEntry    = "history.entry"
	HistoryExit     = "history.exit"
)

// AccessEvent is the payload of every workflow event.
type AccessEvent struct {
	CompanyID  string    `json:"company_id"`
	RequestID  string    `json:"request_id,omitempty"`
	EntryID    string    `json:"entry_id,omitempty"`
	UserID     string    `json:"user_id"`
	DoorID     string    `json:"door_id"`
	ActorID    string    `json:"actor_id"`
	Status     string    `json:"status,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

type NATSEventBus struct {
	conn *nats.Conn
}

func NewNATSEventBus(url string) (*NATSEventBus, error) {
	conn, err := nats.Connect(url, nats.Name("securepass-backend"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSEventBus{conn: conn}, nil
}

func (n *NATSEventBus) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	slog.DebugContext(ctx, "Publishing event", "subject", subject, "data", string(payload))

	return n.conn.Publish(subject, payload)
}

func (n *NATSEventBus) Close() error {
	return n.conn.Drain()
}

// Fanout delivers each event to every publisher and joins their errors.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, subject string, data interface{}) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, subject, data); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f Fanout) Close() error {
	var errs []error
	for _, p := range f {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type Message struct {
	Subject string
	Data    interface{}
}

// MemoryBus records published events. Used when NATS is not configured and in tests.
type MemoryBus struct {
	mu     sync.Mutex
	events []Message
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{}
}

func (m *MemoryBus) Publish(_ context.Context, subject string, data interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, Message{Subject: subject, Data: data})
	return nil
}

func (m *MemoryBus) Close() error {
	return nil
}

// Events returns a copy of everything published so far.
func (m *MemoryBus) Events() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Message, len(m.events))
	copy(out, m.events)
	return out
}

// Subjects lists the subjects published so far, in order.
func (m *MemoryBus) Subjects() []string {
	evs := m.Events()
	out := make([]string, len(evs))
	for i, e := range evs {
		out[i] = e.Subject
	}
	return out
}

// Notify publishes and logs failures instead of returning them. Workflow
// state is already committed when events go out.
func Notify(ctx context.Context, p Publisher, subject string, event AccessEvent) {
	if p == nil {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	if err := p.Publish(ctx, subject, event); err != nil {
		slog.Error("Failed to publish event", "subject", subject, "error", err)
	}
}
