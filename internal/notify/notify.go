// Package notify publishes finished build reports to NATS.
package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/retry"
)

// BuildIDHeader carries the build id on every published message.
const BuildIDHeader = "Build-Id"

const (
	connectTimeout = 5 * time.Second
	flushTimeout   = 5 * time.Second
)

// Publisher sends build events.
type Publisher interface {
	Publish(ctx context.Context, buildID string, report []byte) error
	Close()
}

// New returns a NATS publisher when events.nats_url is set and a no-op
// publisher otherwise.
func New(cfg *config.EventsConfig) (Publisher, error) {
	if cfg == nil || cfg.NATSURL == "" {
		return Noop{}, nil
	}
	conn, err := nats.Connect(cfg.NATSURL,
		nats.Name("sitebuilder"),
		nats.Timeout(connectTimeout),
	)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryRuntime, "failed to connect to NATS").
			WithContext("url", cfg.NATSURL).Build()
	}
	slog.Info("NATS publisher initialized", logfields.URL(cfg.NATSURL), slog.String("subject", cfg.Subject))
	r := cfg.Retry
	return &NATSPublisher{
		conn:    conn,
		subject: cfg.Subject,
		retry:   retry.NewPolicy(retry.Mode(r.Mode), r.Initial, r.Max, r.MaxRetries),
	}, nil
}

// NATSPublisher publishes one message per build on a fixed subject.
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
	retry   retry.Policy
}

// Publish sends the JSON report with the build id as a header and waits for
// the server to acknowledge the flush. Failed attempts are retried.
func (p *NATSPublisher) Publish(ctx context.Context, buildID string, report []byte) error {
	msg := nats.NewMsg(p.subject)
	msg.Header.Set(BuildIDHeader, buildID)
	msg.Data = report

	err := p.retry.Do(ctx, func() error { return p.publishOnce(ctx, msg) })
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryRuntime, "failed to publish build event").
			WithContext("subject", p.subject).
			WithContext("build_id", buildID).Build()
	}
	slog.Debug("Published build event", logfields.BuildID(buildID), slog.String("subject", p.subject))
	return nil
}

func (p *NATSPublisher) publishOnce(ctx context.Context, msg *nats.Msg) error {
	if err := p.conn.PublishMsg(msg); err != nil {
		return err
	}
	flushCtx, cancel := context.WithTimeout(ctx, flushTimeout)
	defer cancel()
	return p.conn.FlushWithContext(flushCtx)
}

// Close drains pending messages and closes the connection.
func (p *NATSPublisher) Close() {
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
	}
}

// Noop discards events.
type Noop struct{}

func (Noop) Publish(context.Context, string, []byte) error { return nil }
func (Noop) Close()                                        {}
