package bus

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocketSink bridges messages to a robot over a websocket. Each message
// is written as one JSON object {"topic": ..., "msg": ...}.
type WebSocketSink struct {
	url          *url.URL
	dialer       *websocket.Dialer
	redial       time.Duration
	writeTimeout time.Duration
	now          func() time.Time

	conn     *websocket.Conn
	lastDial time.Time
	dialErr  error
}

// NewWebSocketSink returns a sink for rawURL. Nothing is dialed until the
// first message.
func NewWebSocketSink(rawURL string) (*WebSocketSink, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse websocket url: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return nil, fmt.Errorf("websocket url %q: scheme must be ws or wss", rawURL)
	}
	return &WebSocketSink{
		url:          u,
		dialer:       &websocket.Dialer{HandshakeTimeout: 2 * time.Second},
		redial:       time.Second,
		writeTimeout: 500 * time.Millisecond,
		now:          time.Now,
	}, nil
}

func (s *WebSocketSink) Name() string { return "websocket" }

func (s *WebSocketSink) Handle(ctx context.Context, m Message) error {
	if s.conn == nil {
		if err := s.dial(ctx); err != nil {
			return err
		}
	}

	s.conn.SetWriteDeadline(s.now().Add(s.writeTimeout))
	if err := s.conn.WriteJSON(m); err != nil {
		s.conn.Close()
		s.conn = nil
		return fmt.Errorf("write %s: %w", m.Topic, err)
	}
	return nil
}

func (s *WebSocketSink) dial(ctx context.Context) error {
	// Messages are dropped between attempts; the last dial error is
	// repeated so callers see a stable failure.
	if s.dialErr != nil && s.now().Sub(s.lastDial) < s.redial {
		return s.dialErr
	}
	s.lastDial = s.now()

	conn, _, err := s.dialer.DialContext(ctx, s.url.String(), http.Header{
		"Origin": []string{"http://" + s.url.Host},
	})
	if err != nil {
		s.dialErr = fmt.Errorf("dial %s: %w", s.url, err)
		return s.dialErr
	}
	s.conn = conn
	s.dialErr = nil
	return nil
}

// Close sends a close frame and closes the connection.
func (s *WebSocketSink) Close() error {
	if s.conn == nil {
		return nil
	}
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "teleop stopped")
	s.conn.WriteControl(websocket.CloseMessage, msg, s.now().Add(s.writeTimeout))
	err := s.conn.Close()
	s.conn = nil
	return err
}
