// Package feed delivers simulation snapshots to a trafficview.Viewer over a
// websocket.
//
// Each text frame carries either a snapshot object in the wire format
// understood by trafficview.DecodeSnapshot, or a control message
// {"type":"reset"} that clears all vehicles and lights.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/phanxgames/trafficview"
)

// SessionHeader carries the client's session id on the websocket handshake.
const SessionHeader = "X-Trafficview-Session"

// ErrClosed is returned when the server closes the connection normally.
var ErrClosed = errors.New("feed closed by server")

// DefaultReconnectDelay is the pause between connection attempts.
const DefaultReconnectDelay = 2 * time.Second

// Target receives decoded messages. *trafficview.Viewer implements it; both
// methods are safe to call from the feed goroutine.
type Target interface {
	Enqueue(s *trafficview.Snapshot)
	EnqueueReset()
}

// control is the envelope of non-snapshot messages.
type control struct {
	Type string `json:"type"`
}

const controlReset = "reset"

// Client reads snapshots from a websocket URL and hands them to a Target.
type Client struct {
	url     string
	target  Target
	session uuid.UUID
	dialer  *websocket.Dialer
	log     logrus.FieldLogger

	// ReconnectDelay is the pause between connection attempts. Zero or
	// negative disables reconnecting: Run returns after the first session.
	ReconnectDelay time.Duration
}

// NewClient creates a client for url with a fresh session id.
func NewClient(url string, target Target, log logrus.FieldLogger) *Client {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Client{
		url:            url,
		target:         target,
		session:        uuid.New(),
		dialer:         websocket.DefaultDialer,
		log:            log,
		ReconnectDelay: DefaultReconnectDelay,
	}
}

// Session returns the id sent in SessionHeader.
func (c *Client) Session() uuid.UUID { return c.session }

// Run connects and forwards messages until ctx is cancelled. Lost
// connections are retried after ReconnectDelay. Returns ctx.Err() on
// cancellation, or the session error when reconnecting is disabled.
func (c *Client) Run(ctx context.Context) error {
	log := c.log.WithFields(logrus.Fields{"url": c.url, "session": c.session})
	for {
		err := c.runOnce(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if c.ReconnectDelay <= 0 {
			return err
		}
		log.WithError(err).WithField("retry_in", c.ReconnectDelay).Warn("feed disconnected")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.ReconnectDelay):
		}
	}
}

// runOnce dials and reads until the connection fails or ctx is done.
func (c *Client) runOnce(ctx context.Context) error {
	header := http.Header{}
	header.Set(SessionHeader, c.session.String())
	conn, resp, err := c.dialer.DialContext(ctx, c.url, header)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("dial %s: %s: %w", c.url, resp.Status, err)
		}
		return fmt.Errorf("dial %s: %w", c.url, err)
	}
	c.log.WithFields(logrus.Fields{"url": c.url, "session": c.session}).Info("feed connected")

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			conn.Close()
		case <-done:
			conn.Close()
		}
	}()

	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return ErrClosed
			}
			return fmt.Errorf("read: %w", err)
		}
		if kind != websocket.TextMessage {
			continue
		}
		if err := c.dispatch(data); err != nil {
			c.log.WithError(err).Warn("feed message dropped")
		}
	}
}

// dispatch decodes one message and forwards it.
func (c *Client) dispatch(data []byte) error {
	var ctl control
	if err := json.Unmarshal(data, &ctl); err != nil {
		return fmt.Errorf("decode message: %w", err)
	}
	switch ctl.Type {
	case "":
	case controlReset:
		c.target.EnqueueReset()
		return nil
	default:
		return fmt.Errorf("decode message: %w", &UnknownTypeError{Type: ctl.Type})
	}
	s, err := trafficview.DecodeSnapshot(data)
	if err != nil {
		return err
	}
	c.target.Enqueue(s)
	return nil
}

// UnknownTypeError reports a control message with an unrecognised type.
type UnknownTypeError struct {
	Type string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown message type %q", e.Type)
}

// IsUnknownType reports whether err is or wraps an UnknownTypeError.
func IsUnknownType(err error) bool {
	var u *UnknownTypeError
	return errors.As(err, &u)
}
