// Package relay decides which chat events deserve a push notification and
// hands the qualifying ones to a notifier while the user is away.
package relay

// BufferKind is the value of a buffer's "type" local variable.
type BufferKind string

const (
	BufferPrivate BufferKind = "private"
	BufferChannel BufferKind = "channel"
	BufferServer  BufferKind = "server"
)

// ChatEvent is a single printed line as seen by the host, together with the
// buffer properties the filter needs.
type ChatEvent struct {
	BufferID        int64
	BufferName      string
	BufferShortName string
	BufferKind      BufferKind
	Sender          string
	OwnNick         string
	Body            string
	Hilight         bool
	Displayed       bool
	Tags            []string
}

// NotificationRequest is what the filter extracts from a qualifying event.
type NotificationRequest struct {
	ContextLabel string
	Sender       string
	Body         string
}

// Status is returned to the host after an event was handled.
type Status int

const (
	StatusOK Status = iota
	StatusError
)

func (s Status) String() string {
	if s == StatusOK {
		return "ok"
	}
	return "error"
}

// Credentials identify the Pushover application and the receiving user.
type Credentials struct {
	UserKey  string
	APIToken string
}

// Complete reports whether both values are set.
func (c Credentials) Complete() bool {
	return c.UserKey != "" && c.APIToken != ""
}

// SettingsSource provides the current credentials and title prefix. It is
// consulted on every dispatch so that edited settings apply without restart.
type SettingsSource interface {
	Credentials() Credentials
	TitlePrefix() string
}

// StaticSettings is a fixed SettingsSource.
type StaticSettings struct {
	Creds  Credentials
	Prefix string
}

func (s StaticSettings) Credentials() Credentials { return s.Creds }
func (s StaticSettings) TitlePrefix() string      { return s.Prefix }
