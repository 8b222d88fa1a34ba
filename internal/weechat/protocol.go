// Package weechat attaches to a running WeeChat through its "api" relay and
// feeds printed lines to a relay.Handler.
package weechat

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrAuth is returned when the relay rejects the password.
	ErrAuth = errors.New("weechat relay: authentication failed")
	// ErrUnsupportedVersion is returned when WeeChat is too old for the api relay.
	ErrUnsupportedVersion = errors.New("weechat relay: unsupported version")
)

// Request is one client frame.
type Request struct {
	Request   string `json:"request"`
	RequestID string `json:"request_id,omitempty"`
	Body      any    `json:"body,omitempty"`
}

// Message is a server frame: either the response to a Request or, when
// EventName is set, an unsolicited event after sync.
type Message struct {
	Code      int             `json:"code"`
	Message   string          `json:"message"`
	Request   string          `json:"request,omitempty"`
	RequestID string          `json:"request_id,omitempty"`
	EventName string          `json:"event_name,omitempty"`
	BufferID  int64           `json:"buffer_id,omitempty"`
	BodyType  string          `json:"body_type,omitempty"`
	Body      json.RawMessage `json:"body,omitempty"`
}

// IsEvent reports whether m was pushed by the server rather than requested.
func (m *Message) IsEvent() bool { return m.EventName != "" }

// Err converts an error status into an error.
func (m *Message) Err() error {
	if m.Code >= 400 {
		return fmt.Errorf("weechat relay: %s: %d %s", m.Request, m.Code, m.Message)
	}
	return nil
}

// Version is the body of GET /api/version.
type Version struct {
	WeeChat         string `json:"weechat_version"`
	WeeChatGit      string `json:"weechat_version_git"`
	RelayAPIVersion string `json:"relay_api_version"`
}

// Buffer is the subset of a buffer object weepush cares about.
type Buffer struct {
	ID             int64             `json:"id"`
	Name           string            `json:"name"`
	ShortName      string            `json:"short_name"`
	Number         int               `json:"number"`
	Type           string            `json:"type"`
	Title          string            `json:"title"`
	LocalVariables map[string]string `json:"local_variables"`
}

// LocalVar returns the named local variable or "".
func (b Buffer) LocalVar(name string) string {
	return b.LocalVariables[name]
}

// Line is the body of a buffer_line_added event.
type Line struct {
	ID          int64    `json:"id"`
	Y           int      `json:"y"`
	Date        string   `json:"date"`
	DatePrinted string   `json:"date_printed"`
	Displayed   bool     `json:"displayed"`
	Highlight   bool     `json:"highlight"`
	NotifyLevel int      `json:"notify_level"`
	Prefix      string   `json:"prefix"`
	Message     string   `json:"message"`
	Tags        []string `json:"tags"`
}

// SyncOptions is the body of POST /api/sync.
type SyncOptions struct {
	Sync   bool   `json:"sync"`
	Nicks  bool   `json:"nicks"`
	Colors string `json:"colors"`
}

// Event names handled by the client.
const (
	EventLineAdded       = "buffer_line_added"
	EventBufferOpened    = "buffer_opened"
	EventBufferClosed    = "buffer_closed"
	EventBufferRenamed   = "buffer_renamed"
	EventLocalvarAdded   = "buffer_localvar_added"
	EventLocalvarChanged = "buffer_localvar_changed"
	EventLocalvarRemoved = "buffer_localvar_removed"
	EventTitleChanged    = "buffer_title_changed"
	EventTypeChanged     = "buffer_type_changed"
)

// bufferUpdateEvents carry a full buffer object that replaces the cached one.
var bufferUpdateEvents = map[string]bool{
	EventBufferOpened:    true,
	EventBufferRenamed:   true,
	EventLocalvarAdded:   true,
	EventLocalvarChanged: true,
	EventLocalvarRemoved: true,
	EventTitleChanged:    true,
	EventTypeChanged:     true,
}
