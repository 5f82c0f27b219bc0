package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	ferrors "github.com/devscast/siteconf/internal/foundation/errors"
	"github.com/devscast/siteconf/internal/logfields"
)

// Publisher delivers broken-link events.
type Publisher interface {
	PublishBrokenLink(ctx context.Context, event *BrokenLinkEvent) error
	Close() error
}

// NoopPublisher discards every event (default when no event bus is configured).
type NoopPublisher struct{}

func (NoopPublisher) PublishBrokenLink(context.Context, *BrokenLinkEvent) error { return nil }
func (NoopPublisher) Close() error                                              { return nil }

// natsConn is the subset of *nats.Conn the publisher uses.
type natsConn interface {
	Publish(subj string, data []byte) error
	FlushWithContext(ctx context.Context) error
	Close()
}

// NATSPublisher publishes events as JSON on a NATS subject.
type NATSPublisher struct {
	conn    natsConn
	subject string
	logger  *slog.Logger
}

// NATSOption configures a NATSPublisher.
type NATSOption func(*NATSPublisher)

// WithSubject overrides DefaultSubject.
func WithSubject(subject string) NATSOption {
	return func(p *NATSPublisher) {
		if subject != "" {
			p.subject = subject
		}
	}
}

// WithLogger sets the publisher's logger.
func WithLogger(logger *slog.Logger) NATSOption {
	return func(p *NATSPublisher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewNATSPublisher connects to the NATS server at url.
func NewNATSPublisher(url string, opts ...NATSOption) (*NATSPublisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("siteconf"),
		nats.Timeout(5*time.Second),
	)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryNetwork, "failed to connect to NATS").
			WithContext("url", url).
			Build()
	}
	p := newNATSPublisher(conn, opts...)
	p.logger.Info("NATS publisher initialized", logfields.URL(url), logfields.Subject(p.subject))
	return p, nil
}

func newNATSPublisher(conn natsConn, opts ...NATSOption) *NATSPublisher {
	p := &NATSPublisher{conn: conn, subject: DefaultSubject, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// PublishBrokenLink publishes event and waits for the server to acknowledge the flush.
func (p *NATSPublisher) PublishBrokenLink(ctx context.Context, event *BrokenLinkEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	data, err := json.Marshal(event)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryInternal, "failed to marshal event").Build()
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryNetwork, "failed to publish event").
			WithContext("subject", p.subject).
			Build()
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := p.conn.FlushWithContext(ctx); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryNetwork, "failed to flush event").
			WithContext("subject", p.subject).
			Build()
	}

	p.logger.Debug("Published broken link event",
		logfields.Link(event.Target),
		logfields.File(event.Source),
		logfields.Locale(event.Locale))
	return nil
}

// Subject returns the subject events are published on.
func (p *NATSPublisher) Subject() string { return p.subject }

// Close closes the NATS connection.
func (p *NATSPublisher) Close() error {
	if p.conn != nil {
		p.conn.Close()
	}
	return nil
}
