package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/olivoil/botdeck/internal/logging"
)

const (
	pushHandshakeTimeout = 10 * time.Second
	pushWriteTimeout     = 5 * time.Second
	pushMinBackoff       = time.Second
	pushMaxBackoff       = 30 * time.Second
)

// envelope is the JSON frame exchanged on the push channel.
type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Channel is the push channel to the bot server. Emits are queued and written
// by a single writer in call order, so a leave is always on the wire before
// the join that follows it. After a reconnect the channel re-joins the last
// joined room.
type Channel struct {
	url    string
	header http.Header
	dialer *websocket.Dialer
	sender Sender
	logger *slog.Logger

	mu     sync.Mutex
	room   string
	queue  []envelope
	wake   chan struct{}
	conn   *websocket.Conn
	cancel context.CancelFunc
	done   chan struct{}
}

// PushURL derives the websocket URL of the push channel from the HTTP base URL.
func PushURL(base, clientID string) string {
	u, err := url.Parse(base)
	if err != nil || u.Host == "" {
		return ""
	}
	switch strings.ToLower(u.Scheme) {
	case "https", "wss":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"
	q := u.Query()
	q.Set("client", clientID)
	u.RawQuery = q.Encode()
	return u.String()
}

// NewChannel creates a push channel. Call Start to connect.
func NewChannel(cfg Config, clientID string, sender Sender, logger *slog.Logger) *Channel {
	if logger == nil {
		logger = logging.Discard()
	}
	header := http.Header{}
	if tok := strings.TrimSpace(cfg.Server.Token); tok != "" {
		header.Set("Authorization", "Bearer "+tok)
	}
	return &Channel{
		url:    PushURL(cfg.Server.URL, clientID),
		header: header,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: pushHandshakeTimeout,
		},
		sender: sender,
		logger: logger.With("component", "push"),
		wake:   make(chan struct{}, 1),
	}
}

// Start connects in the background and keeps reconnecting until Close.
func (c *Channel) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.cancel = cancel
	c.done = make(chan struct{})
	done := c.done
	c.mu.Unlock()
	go func() {
		defer close(done)
		c.run(ctx)
	}()
}

// Emit queues an event. It never blocks on the network.
func (c *Channel) Emit(event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		c.logger.Error("marshal push event", "event", event, "error", err)
		return
	}

	c.mu.Lock()
	if room, ok := payload.(RoomMsg); ok {
		switch event {
		case EventJoin:
			c.room = room.Profile
		case EventLeave:
			if c.room == room.Profile {
				c.room = ""
			}
		}
	}
	c.queue = append(c.queue, envelope{Event: event, Data: data})
	c.mu.Unlock()

	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// Room returns the room currently joined (or queued to be joined).
func (c *Channel) Room() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.room
}

// Close disconnects and stops reconnecting.
func (c *Channel) Close() error {
	c.mu.Lock()
	cancel, done, conn := c.cancel, c.done, c.conn
	c.mu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()
	if conn != nil {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		_ = conn.Close()
	}
	<-done
	return nil
}

func (c *Channel) run(ctx context.Context) {
	backoff := pushMinBackoff
	known, up := false, false
	notify := func(connected bool, err error) {
		if known && connected == up {
			return
		}
		known, up = true, connected
		c.sender.Send(ConnectionEvent{Connected: connected, Err: err})
	}

	for ctx.Err() == nil {
		conn, _, err := c.dialer.DialContext(ctx, c.url, c.header)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Warn("push channel dial failed", "url", c.url, "error", err, "retry_in", backoff)
			notify(false, err)
			if !sleepCtx(ctx, backoff) {
				return
			}
			backoff = min(backoff*2, pushMaxBackoff)
			continue
		}

		backoff = pushMinBackoff
		c.attach(conn)
		c.logger.Info("push channel connected", "url", c.url)
		notify(true, nil)

		connCtx, stop := context.WithCancel(ctx)
		writerDone := make(chan struct{})
		go func() {
			defer close(writerDone)
			c.writeLoop(connCtx, conn)
		}()
		err = c.readLoop(conn)
		stop()
		<-writerDone
		c.detach(conn)
		_ = conn.Close()

		if ctx.Err() != nil {
			return
		}
		c.logger.Warn("push channel disconnected", "error", err)
		notify(false, err)
		if !sleepCtx(ctx, backoff) {
			return
		}
	}
}

// attach installs conn and replaces the queue with a join for the current
// room: the server forgets rooms when the socket drops.
func (c *Channel) attach(conn *websocket.Conn) {
	c.mu.Lock()
	c.conn = conn
	c.queue = c.queue[:0]
	if c.room != "" {
		data, _ := json.Marshal(RoomMsg{Profile: c.room})
		c.queue = append(c.queue, envelope{Event: EventJoin, Data: data})
	}
	c.mu.Unlock()
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

func (c *Channel) detach(conn *websocket.Conn) {
	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
	}
	c.mu.Unlock()
}

func (c *Channel) writeLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		c.mu.Lock()
		pending := c.queue
		c.queue = nil
		c.mu.Unlock()

		for i, env := range pending {
			_ = conn.SetWriteDeadline(time.Now().Add(pushWriteTimeout))
			if err := conn.WriteJSON(env); err != nil {
				c.logger.Warn("push channel write failed", "event", env.Event, "error", err)
				// Put the unsent tail back in front of anything queued meanwhile.
				c.mu.Lock()
				c.queue = append(append([]envelope(nil), pending[i:]...), c.queue...)
				c.mu.Unlock()
				_ = conn.Close()
				return
			}
			c.logger.Debug("push event sent", "event", env.Event, "data", string(env.Data))
		}

		select {
		case <-ctx.Done():
			return
		case <-c.wake:
		}
	}
}

func (c *Channel) readLoop(conn *websocket.Conn) error {
	for {
		var env envelope
		if err := conn.ReadJSON(&env); err != nil {
			if isNormalClose(err) {
				return nil
			}
			return err
		}
		c.dispatch(env)
	}
}

func (c *Channel) dispatch(env envelope) {
	switch env.Event {
	case EventBotLog:
		var ev LogEvent
		if err := json.Unmarshal(env.Data, &ev); err != nil {
			c.logger.Warn("decode push event", "event", env.Event, "error", err)
			return
		}
		c.sender.Send(ev)
	case EventBotFinished:
		var ev FinishedEvent
		if err := json.Unmarshal(env.Data, &ev); err != nil {
			c.logger.Warn("decode push event", "event", env.Event, "error", err)
			return
		}
		c.sender.Send(ev)
	default:
		c.logger.Debug("ignoring push event", "event", env.Event)
	}
}

func isNormalClose(err error) bool {
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		return true
	}
	return errors.Is(err, io.EOF)
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
