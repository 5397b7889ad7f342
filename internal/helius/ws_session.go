package helius

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// SessionConfig configures an account subscription session.
type SessionConfig struct {
	// PingInterval is the interval for protocol-level ping frames.
	PingInterval time.Duration
	// ReadTimeout is the idle deadline; pongs extend it.
	ReadTimeout time.Duration
	// WriteTimeout is the deadline for writing frames.
	WriteTimeout time.Duration
	// HandshakeTimeout is the dial timeout.
	HandshakeTimeout time.Duration
	// SubscribeTimeout bounds the wait for subscription confirmation.
	SubscribeTimeout time.Duration
}

// DefaultSessionConfig returns default session configuration.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		PingInterval:     30 * time.Second,
		ReadTimeout:      90 * time.Second,
		WriteTimeout:     10 * time.Second,
		HandshakeTimeout: 10 * time.Second,
		SubscribeTimeout: 30 * time.Second,
	}
}

// AccountSession is a single WebSocket connection carrying exactly one
// accountSubscribe subscription. It does not reconnect; when the transport
// fails the notification channel closes and the owner decides what to do.
type AccountSession struct {
	conn   *websocket.Conn
	config SessionConfig
	logger *slog.Logger

	subID  int64
	notifs chan AccountNotification

	writeMu sync.Mutex

	closed  atomic.Bool
	err     atomic.Value // transport error that ended the stream
	done    chan struct{}
	readWG  sync.WaitGroup
}

// DialAccount opens a WebSocket connection to endpoint, subscribes to
// account changes for wallet, and returns the live session. Exactly one
// subscription request is sent per connection.
func DialAccount(ctx context.Context, endpoint, wallet string, config *SessionConfig, logger *slog.Logger) (*AccountSession, error) {
	cfg := DefaultSessionConfig()
	if config != nil {
		cfg = *config
	}
	if logger == nil {
		logger = slog.Default()
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: cfg.HandshakeTimeout,
	}

	conn, _, err := dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("websocket dial: %w", err)
	}

	s := &AccountSession{
		conn:   conn,
		config: cfg,
		logger: logger,
		notifs: make(chan AccountNotification, 64),
		done:   make(chan struct{}),
	}

	if err := s.subscribe(ctx, wallet); err != nil {
		conn.Close()
		return nil, err
	}

	conn.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))
	})

	s.readWG.Add(1)
	go s.readLoop()
	go s.pingLoop()

	return s, nil
}

// subscribe sends the accountSubscribe request and waits for confirmation.
// Notification frames cannot arrive before the confirmation because the
// subscription does not exist server-side until then.
func (s *AccountSession) subscribe(ctx context.Context, wallet string) error {
	req := wsRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "accountSubscribe",
		Params: []any{
			wallet,
			map[string]string{
				"encoding":   "jsonParsed",
				"commitment": "confirmed",
			},
		},
	}

	s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	if err := s.conn.WriteJSON(req); err != nil {
		return fmt.Errorf("write subscribe: %w", err)
	}

	deadline := time.Now().Add(s.config.SubscribeTimeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	s.conn.SetReadDeadline(deadline)

	for {
		_, message, err := s.conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read subscribe response: %w", err)
		}

		var resp wsSubscribeResponse
		if err := json.Unmarshal(message, &resp); err == nil && resp.ID == req.ID {
			if resp.Error != nil {
				return fmt.Errorf("subscribe rejected: %w", resp.Error)
			}
			if resp.Result == 0 {
				return fmt.Errorf("subscribe rejected: empty subscription id")
			}
			s.subID = resp.Result
			return nil
		}

		// Not our confirmation; skip and keep waiting
		s.logger.Debug("ignoring frame before subscription confirmation")
	}
}

// Notifications returns the notification channel. It closes on transport
// failure or Close.
func (s *AccountSession) Notifications() <-chan AccountNotification {
	return s.notifs
}

// Err returns the transport error that ended the stream, or nil after a
// clean Close.
func (s *AccountSession) Err() error {
	if v := s.err.Load(); v != nil {
		return v.(error)
	}
	return nil
}

// Close closes the session. Safe to call more than once.
func (s *AccountSession) Close() error {
	if s.closed.Swap(true) {
		return nil
	}

	close(s.done)

	s.writeMu.Lock()
	s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	s.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	s.writeMu.Unlock()

	s.conn.Close()
	s.readWG.Wait()
	return nil
}

// readLoop reads frames until the transport fails, dispatching account
// notifications and skipping anything malformed.
func (s *AccountSession) readLoop() {
	defer s.readWG.Done()
	defer close(s.notifs)

	for {
		_, message, err := s.conn.ReadMessage()
		if err != nil {
			if !s.closed.Load() {
				s.err.Store(err)
				s.logger.Warn("websocket read failed", "error", err)
			}
			return
		}

		s.handleMessage(message)
	}
}

// handleMessage processes one inbound frame. Malformed or unexpected frames
// are logged and ignored; they never end the session.
func (s *AccountSession) handleMessage(message []byte) {
	var notif wsNotification
	if err := json.Unmarshal(message, &notif); err != nil {
		s.logger.Debug("malformed websocket frame", "error", err)
		return
	}

	if notif.Method != "accountNotification" || notif.Params == nil {
		return
	}
	if notif.Params.Subscription != s.subID {
		return
	}

	n := AccountNotification{
		Lamports: notif.Params.Result.Value.Lamports,
	}
	if notif.Params.Result.Context != nil {
		n.Slot = notif.Params.Result.Context.Slot
	}

	select {
	case s.notifs <- n:
	case <-s.done:
	}
}

// pingLoop sends periodic ping frames. A failed ping is logged but is not
// itself fatal; a dead connection surfaces through the read loop.
func (s *AccountSession) pingLoop() {
	ticker := time.NewTicker(s.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.writeMu.Lock()
			s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
			err := s.conn.WriteMessage(websocket.PingMessage, nil)
			s.writeMu.Unlock()
			if err != nil && !s.closed.Load() {
				s.logger.Warn("heartbeat ping failed", "error", err)
			}
		}
	}
}

// WebSocket message types

type wsRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params,omitempty"`
}

type wsSubscribeResponse struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      uint64    `json:"id"`
	Result  int64     `json:"result"` // subscription ID
	Error   *RPCError `json:"error,omitempty"`
}

type wsNotification struct {
	JSONRPC string                `json:"jsonrpc"`
	Method  string                `json:"method"`
	Params  *wsNotificationParams `json:"params"`
}

type wsNotificationParams struct {
	Subscription int64                `json:"subscription"`
	Result       wsNotificationResult `json:"result"`
}

type wsNotificationResult struct {
	Context *wsContext     `json:"context"`
	Value   wsAccountValue `json:"value"`
}

type wsContext struct {
	Slot int64 `json:"slot"`
}

type wsAccountValue struct {
	Lamports uint64          `json:"lamports"`
	Owner    string          `json:"owner"`
	Data     json.RawMessage `json:"data"`
}

var _ AccountStream = (*AccountSession)(nil)
