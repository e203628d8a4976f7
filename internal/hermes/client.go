package hermes

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// drainTimeout bounds how long Close waits for pending messages to flush.
const drainTimeout = 10 * time.Second

// Client publishes review events and delivers inbound documents over NATS.
type Client struct {
	conn   *nats.Conn
	closed chan struct{}
	logger *slog.Logger
}

func NewClient(ctx context.Context, url, token string, logger *slog.Logger) (*Client, error) {
	closed := make(chan struct{})
	opts := []nats.Option{
		nats.Name("scribe"),
		nats.DrainTimeout(drainTimeout),
		nats.ClosedHandler(func(_ *nats.Conn) {
			close(closed)
		}),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("nats reconnected")
		}),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	return &Client{conn: nc, closed: closed, logger: logger}, nil
}

// Publish marshals data as JSON and publishes it on subject.
func (c *Client) Publish(subject string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	if err := c.conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

// Subscribe delivers every message on subject to handler.
func (c *Client) Subscribe(subject string, handler func(subject string, data []byte)) error {
	_, err := c.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(msg.Subject, msg.Data)
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", subject, err)
	}
	c.logger.Info("subscribed", "subject", subject)
	return nil
}

// Connected reports whether the underlying connection is up.
func (c *Client) Connected() bool {
	return c.conn.IsConnected()
}

// Close drains subscriptions and pending publishes, and returns once the
// connection is closed or the drain timed out.
func (c *Client) Close() {
	if err := c.conn.Drain(); err != nil {
		c.logger.Warn("nats drain failed", "error", err)
		c.conn.Close()
		return
	}
	if !waitClosed(c.closed, drainTimeout+time.Second) {
		c.logger.Warn("nats drain timed out, closing")
		c.conn.Close()
	}
}

func waitClosed(closed <-chan struct{}, timeout time.Duration) bool {
	select {
	case <-closed:
		return true
	case <-time.After(timeout):
		return false
	}
}
