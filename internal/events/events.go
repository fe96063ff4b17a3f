// Package events publishes domain events for downstream consumers
// (notifications, search alerts). Publishing is best effort.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

const (
	SubjectInquiryCreated          = "inquiry.created"
	SubjectInquiryResponded        = "inquiry.responded"
	SubjectTransactionOpened       = "transaction.opened"
	SubjectTransactionAdvanced     = "transaction.phase_advanced"
	SubjectTransactionCancelled    = "transaction.cancelled"
	SubjectTransactionTaskComplete = "transaction.task_completed"
	SubjectListingReviewed         = "listing.reviewed"
	SubjectSearchMatched           = "search.matched"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, payload any) error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, string, any) error { return nil }

// NATSPublisher publishes JSON-encoded events to "<prefix>.<subject>".
type NATSPublisher struct {
	conn   *nats.Conn
	prefix string
}

func NewNATSPublisher(url, prefix, appName string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url,
		nats.Name(appName+" publisher"),
		nats.Timeout(10*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			slog.Warn("nats disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("nats reconnected", "url", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(*nats.Conn) {
			slog.Info("nats connection closed")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to nats at %s: %w", url, err)
	}

	return &NATSPublisher{conn: conn, prefix: prefix}, nil
}

func (p *NATSPublisher) Subject(subject string) string {
	if p.prefix == "" {
		return subject
	}

	return p.prefix + "." + subject
}

func (p *NATSPublisher) Publish(_ context.Context, subject string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling %s event: %w", subject, err)
	}

	if err := p.conn.Publish(p.Subject(subject), data); err != nil {
		return fmt.Errorf("publishing %s event: %w", subject, err)
	}

	return nil
}

// Close drains pending messages before closing the connection.
func (p *NATSPublisher) Close() {
	if p.conn == nil || p.conn.IsClosed() {
		return
	}

	if err := p.conn.Drain(); err != nil {
		slog.Error("failed to drain nats connection", "error", err)
		p.conn.Close()
	}
}

// Emit publishes and logs failures; callers never fail a request because an
// event could not be delivered.
func Emit(ctx context.Context, p Publisher, subject string, payload any) {
	if p == nil {
		return
	}

	if err := p.Publish(ctx, subject, payload); err != nil {
		slog.Warn("failed to publish event", "subject", subject, "error", err)
	}
}
