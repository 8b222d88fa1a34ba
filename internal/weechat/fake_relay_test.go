package weechat

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/weepush/weepush/internal/relay"
)

// fakeRelay answers the handshake like a WeeChat api relay and pushes the
// configured events right after sync.
type fakeRelay struct {
	t        *testing.T
	version  string
	password string
	buffers  []Buffer
	events   []Message
	// closeAfterSync drops the connection once the events were pushed
	closeAfterSync bool

	mu       sync.Mutex
	requests []Request
}

var upgrader = websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}

func (f *fakeRelay) start() *httptest.Server {
	srv := httptest.NewServer(f)
	f.t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/api"
}

func rawJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}

func (f *fakeRelay) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if f.password != "" {
		want := "Basic " + base64.StdEncoding.EncodeToString([]byte("plain:"+f.password))
		if r.Header.Get("Authorization") != want {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	for {
		var req Request
		if err := conn.ReadJSON(&req); err != nil {
			return
		}
		f.mu.Lock()
		f.requests = append(f.requests, req)
		f.mu.Unlock()

		resp := Message{Code: 200, Message: "OK", Request: req.Request, RequestID: req.RequestID}
		switch req.Request {
		case "GET /api/version":
			resp.BodyType = "version"
			resp.Body = rawJSON(f.t, Version{WeeChat: f.version, RelayAPIVersion: "0.1.0"})
		case "GET /api/buffers":
			resp.BodyType = "buffer"
			resp.Body = rawJSON(f.t, f.buffers)
		case "POST /api/sync":
			resp.Code, resp.Message = 204, "No Content"
		case "POST /api/ping":
			resp.BodyType = "ping"
		default:
			resp.Code, resp.Message = 404, "Not Found"
		}
		if err := conn.WriteJSON(resp); err != nil {
			return
		}
		if req.Request == "POST /api/sync" {
			for _, ev := range f.events {
				if err := conn.WriteJSON(ev); err != nil {
					return
				}
			}
			if f.closeAfterSync {
				return
			}
		}
	}
}

func (f *fakeRelay) requestNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, r := range f.requests {
		out = append(out, r.Request)
	}
	return out
}

// recorder is a Handler that forwards events to a channel.
type recorder struct{ ch chan relay.ChatEvent }

func newRecorder() *recorder { return &recorder{ch: make(chan relay.ChatEvent, 16)} }

func (r *recorder) Handle(ev relay.ChatEvent) relay.Status {
	r.ch <- ev
	return relay.StatusOK
}

const (
	serverBufID  int64 = 1709932823238637
	privateBufID int64 = 1709932823238700
	channelBufID int64 = 1709932823238800
)

func testBuffers() []Buffer {
	return []Buffer{
		{ID: 1, Name: "core.weechat", ShortName: "weechat", LocalVariables: map[string]string{"plugin": "core", "name": "weechat"}},
		{ID: serverBufID, Name: "irc.server.libera", ShortName: "libera", LocalVariables: map[string]string{
			"plugin": "irc", "type": "server", "server": "libera", "nick": "bob",
		}},
		{ID: privateBufID, Name: "irc.libera.alice", ShortName: "alice", LocalVariables: map[string]string{
			"plugin": "irc", "type": "private", "server": "libera", "channel": "alice", "nick": "bob",
		}},
		{ID: channelBufID, Name: "irc.libera.#ops", ShortName: "", LocalVariables: map[string]string{
			"plugin": "irc", "type": "channel", "server": "libera", "channel": "#ops", "nick": "bob",
		}},
	}
}
