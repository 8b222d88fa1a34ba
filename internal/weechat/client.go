package weechat

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/weepush/weepush/internal/logging"
	"github.com/weepush/weepush/internal/metrics"
	"github.com/weepush/weepush/internal/relay"
)

// Handler receives every printed line, one at a time.
type Handler interface {
	Handle(relay.ChatEvent) relay.Status
}

// Options configure a Client.
type Options struct {
	URL          string
	Password     string
	InsecureTLS  bool
	PingInterval time.Duration
	MinVersion   string
	// OnSynced runs after each successful sync
	OnSynced func()
}

// reconnect backoff bounds; tests shorten them
var (
	reconnectBase = time.Second
	reconnectMax  = 30 * time.Second
)

// Client keeps a synced session with the WeeChat api relay.
type Client struct {
	opts    Options
	handler Handler
	buffers *Buffers
	dialer  *websocket.Dialer

	writeMu sync.Mutex
	conn    *websocket.Conn
}

// NewClient prepares a client. buffers may be shared with the dispatcher as
// its away source; nil allocates a fresh mirror.
func NewClient(opts Options, buffers *Buffers, handler Handler) *Client {
	if buffers == nil {
		buffers = NewBuffers()
	}
	if opts.PingInterval <= 0 {
		opts.PingInterval = 60 * time.Second
	}
	dialer := *websocket.DefaultDialer
	if opts.InsecureTLS {
		dialer.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in for self-signed relays
	}
	return &Client{opts: opts, handler: handler, buffers: buffers, dialer: &dialer}
}

// Buffers exposes the buffer mirror.
func (c *Client) Buffers() *Buffers { return c.buffers }

// Run keeps a session alive until ctx is done, reconnecting with exponential
// backoff. Authentication and version errors are returned immediately.
func (c *Client) Run(ctx context.Context) error {
	backoff := reconnectBase
	for {
		started := time.Now()
		err := c.session(ctx)
		metrics.SetRelayConnected(false)
		if ctx.Err() != nil {
			return nil
		}
		if errors.Is(err, ErrAuth) || errors.Is(err, ErrUnsupportedVersion) {
			return err
		}
		// a session that lived a while earns a fresh backoff
		if time.Since(started) > reconnectMax {
			backoff = reconnectBase
		}
		logging.Get().Warn().Err(err).Dur("retry_in", backoff).Msg("relay session ended")
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		if backoff < reconnectMax {
			backoff *= 2
			if backoff > reconnectMax {
				backoff = reconnectMax
			}
		}
	}
}

func (c *Client) session(ctx context.Context) error {
	conn, err := c.dial(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	c.writeMu.Lock()
	c.conn = conn
	c.writeMu.Unlock()

	// unblock ReadMessage on shutdown
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	if err := c.handshake(); err != nil {
		return err
	}
	metrics.SetRelayConnected(true)
	logging.Get().Info().Str("url", c.opts.URL).Int("buffers", c.buffers.Len()).Msg("relay synced")
	if c.opts.OnSynced != nil {
		c.opts.OnSynced()
	}

	pingCtx, cancelPing := context.WithCancel(ctx)
	defer cancelPing()
	go c.pingLoop(pingCtx)

	return c.readLoop()
}

func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	header := http.Header{}
	if c.opts.Password != "" {
		cred := base64.StdEncoding.EncodeToString([]byte("plain:" + c.opts.Password))
		header.Set("Authorization", "Basic "+cred)
	}
	conn, resp, err := c.dialer.DialContext(ctx, c.opts.URL, header)
	if err != nil {
		if resp != nil && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
			return nil, fmt.Errorf("%w (status %d)", ErrAuth, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial %s: %w", c.opts.URL, err)
	}
	return conn, nil
}

// handshake checks the version, seeds the buffer mirror and starts the sync.
func (c *Client) handshake() error {
	msg, err := c.roundTrip(Request{Request: "GET /api/version", RequestID: "version"})
	if err != nil {
		return err
	}
	var v Version
	if err := json.Unmarshal(msg.Body, &v); err != nil {
		return fmt.Errorf("decode version: %w", err)
	}
	if err := CheckVersion(v, c.opts.MinVersion); err != nil {
		return err
	}
	logging.Get().Info().Str("weechat", v.WeeChat).Str("api", v.RelayAPIVersion).Msg("connected to weechat relay")

	msg, err = c.roundTrip(Request{Request: "GET /api/buffers", RequestID: "buffers"})
	if err != nil {
		return err
	}
	var list []Buffer
	if err := json.Unmarshal(msg.Body, &list); err != nil {
		return fmt.Errorf("decode buffers: %w", err)
	}
	c.buffers.Reset(list)

	_, err = c.roundTrip(Request{
		Request:   "POST /api/sync",
		RequestID: "sync",
		Body:      SyncOptions{Sync: true, Nicks: false, Colors: "strip"},
	})
	return err
}

// roundTrip sends req and waits for its response. It is only used before sync,
// when the server pushes no events.
func (c *Client) roundTrip(req Request) (*Message, error) {
	if err := c.write(req); err != nil {
		return nil, err
	}
	for {
		msg, err := c.read()
		if err != nil {
			return nil, err
		}
		if msg.IsEvent() || msg.RequestID != req.RequestID {
			continue
		}
		if err := msg.Err(); err != nil {
			return nil, err
		}
		return msg, nil
	}
}

func (c *Client) write(req Request) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.conn == nil {
		return errors.New("weechat relay: not connected")
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return c.conn.WriteJSON(req)
}

func (c *Client) read() (*Message, error) {
	_ = c.conn.SetReadDeadline(time.Now().Add(2*c.opts.PingInterval + 10*time.Second))
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}
	return &msg, nil
}

func (c *Client) readLoop() error {
	for {
		msg, err := c.read()
		if err != nil {
			return err
		}
		if !msg.IsEvent() {
			if err := msg.Err(); err != nil {
				logging.Get().Warn().Err(err).Msg("relay request failed")
			}
			continue
		}
		c.handleEvent(msg)
	}
}

// handleEvent applies buffer updates to the mirror and passes printed lines
// to the handler on the calling goroutine.
func (c *Client) handleEvent(msg *Message) {
	switch {
	case msg.EventName == EventLineAdded:
		var line Line
		if err := json.Unmarshal(msg.Body, &line); err != nil {
			logging.Get().Warn().Err(err).Msg("bad line event")
			return
		}
		buf, ok := c.buffers.Get(msg.BufferID)
		if !ok {
			logging.Get().Debug().Int64("buffer_id", msg.BufferID).Msg("line for unknown buffer")
			return
		}
		c.handler.Handle(ChatEvent(buf, line))
	case msg.EventName == EventBufferClosed:
		c.buffers.Remove(msg.BufferID)
	case bufferUpdateEvents[msg.EventName]:
		var buf Buffer
		if err := json.Unmarshal(msg.Body, &buf); err != nil {
			logging.Get().Warn().Err(err).Str("event", msg.EventName).Msg("bad buffer event")
			return
		}
		if buf.ID == 0 {
			buf.ID = msg.BufferID
		}
		c.buffers.Put(buf)
	}
}

func (c *Client) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(c.opts.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.write(Request{Request: "POST /api/ping", RequestID: "ping"}); err != nil {
				logging.Get().Debug().Err(err).Msg("relay ping failed")
				return
			}
		}
	}
}
