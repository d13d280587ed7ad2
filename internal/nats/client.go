// Package nats publishes dashboard events to a JetStream stream.
package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/blockedby/npb-dashboard/internal/logger"
)

// StreamName is the stream holding dashboard events.
const StreamName = "DASHBOARD"

// StreamSubjects are the subjects captured by StreamName.
var StreamSubjects = []string{"dashboard.>"}

// DefaultRetention bounds how long events stay in the stream.
const DefaultRetention = 24 * time.Hour

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for connection state changes.
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithRetention sets the max age of stream messages.
func WithRetention(d time.Duration) Option {
	return func(c *Client) { c.retention = d }
}

// Client is a JetStream publisher bound to the dashboard stream.
type Client struct {
	conn      *nats.Conn
	js        jetstream.JetStream
	log       *logger.Logger
	retention time.Duration
}

// New connects to natsURL and makes sure the dashboard stream exists.
func New(ctx context.Context, natsURL string, opts ...Option) (*Client, error) {
	c := &Client{
		log:       logger.Get().Component("nats"),
		retention: DefaultRetention,
	}
	for _, opt := range opts {
		opt(c)
	}

	conn, err := nats.Connect(natsURL, c.connectOptions()...)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	c.conn = conn

	c.js, err = jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("create jetstream context: %w", err)
	}

	if err := c.ensureStream(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return c, nil
}

func (c *Client) connectOptions() []nats.Option {
	return []nats.Option{
		nats.Name("npb-dashboard"),
		nats.Timeout(5 * time.Second),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			c.log.Warn().Err(err).Msg("nats disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			c.log.Info().Str("url", nc.ConnectedUrl()).Msg("nats reconnected")
		}),
	}
}

func (c *Client) streamConfig() jetstream.StreamConfig {
	return jetstream.StreamConfig{
		Name:       StreamName,
		Subjects:   StreamSubjects,
		MaxAge:     c.retention,
		Duplicates: time.Minute,
	}
}

func (c *Client) ensureStream(ctx context.Context) error {
	if _, err := c.js.CreateOrUpdateStream(ctx, c.streamConfig()); err != nil {
		return fmt.Errorf("create stream %s: %w", StreamName, err)
	}
	return nil
}

// Publish sends data as JSON. A non-empty msgID lets JetStream drop
// duplicates published within the stream's duplicate window.
func (c *Client) Publish(ctx context.Context, subject, msgID string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	var opts []jetstream.PublishOpt
	if msgID != "" {
		opts = append(opts, jetstream.WithMsgID(msgID))
	}
	if _, err := c.js.Publish(ctx, subject, payload, opts...); err != nil {
		return fmt.Errorf("publish to %s: %w", subject, err)
	}
	return nil
}

// Connected reports whether the connection is currently up.
func (c *Client) Connected() bool {
	return c.conn != nil && c.conn.IsConnected()
}

// Close drains pending publishes and closes the connection.
func (c *Client) Close() {
	if err := c.conn.Drain(); err != nil {
		c.conn.Close()
	}
}
