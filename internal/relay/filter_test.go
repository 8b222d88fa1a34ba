package relay

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name    string
		ev      ChatEvent
		want    NotificationRequest
		qualify bool
	}{
		{
			name:    "private message from someone else",
			ev:      ChatEvent{BufferKind: BufferPrivate, BufferShortName: "alice", Sender: "alice", OwnNick: "bob", Body: "hi"},
			want:    NotificationRequest{ContextLabel: "alice", Sender: "alice", Body: "hi"},
			qualify: true,
		},
		{
			name:    "private label is the sender, not the buffer",
			ev:      ChatEvent{BufferKind: BufferPrivate, BufferShortName: "query", BufferName: "irc.libera.alice", Sender: "alice", OwnNick: "bob", Body: "hi"},
			want:    NotificationRequest{ContextLabel: "alice", Sender: "alice", Body: "hi"},
			qualify: true,
		},
		{
			name:    "hilight uses short name",
			ev:      ChatEvent{BufferKind: BufferChannel, Hilight: true, BufferShortName: "devs", BufferName: "irc.libera.#devs", Sender: "carol", Body: "bob: look"},
			want:    NotificationRequest{ContextLabel: "devs", Sender: "carol", Body: "bob: look"},
			qualify: true,
		},
		{
			name:    "hilight falls back to full name",
			ev:      ChatEvent{BufferKind: BufferChannel, Hilight: true, BufferName: "#general", Sender: "carol", Body: "bob?"},
			want:    NotificationRequest{ContextLabel: "#general", Sender: "carol", Body: "bob?"},
			qualify: true,
		},
		{
			name: "plain channel message",
			ev:   ChatEvent{BufferKind: BufferChannel, BufferShortName: "#ops", Sender: "carol", OwnNick: "bob", Body: "deploying"},
		},
		{
			name: "own private message",
			ev:   ChatEvent{BufferKind: BufferPrivate, Sender: "bob", OwnNick: "bob", Body: "hello?"},
		},
		{
			name:    "own private message that is hilighted",
			ev:      ChatEvent{BufferKind: BufferPrivate, BufferShortName: "alice", Sender: "bob", OwnNick: "bob", Hilight: true, Body: "bob"},
			want:    NotificationRequest{ContextLabel: "alice", Sender: "bob", Body: "bob"},
			qualify: true,
		},
		{
			name: "server buffer without hilight",
			ev:   ChatEvent{BufferKind: BufferServer, BufferShortName: "libera", Sender: "--", Body: "You have been marked as being away"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Evaluate(tt.ev)
			assert.Equal(t, tt.qualify, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateNonPrivateWithoutHilightNeverQualifies(t *testing.T) {
	for _, kind := range []BufferKind{BufferChannel, BufferServer, "", "formatted"} {
		for _, sender := range []string{"alice", "bob", ""} {
			_, ok := Evaluate(ChatEvent{BufferKind: kind, Sender: sender, OwnNick: "bob", BufferShortName: "x"})
			assert.False(t, ok, "kind=%q sender=%q", kind, sender)
		}
	}
}

func TestAnyAway(t *testing.T) {
	tests := []struct {
		name    string
		servers []ServerState
		want    bool
	}{
		{"no servers", nil, false},
		{"connected and away", []ServerState{{Name: "a", Connected: true, Away: true}}, true},
		{"away but disconnected", []ServerState{{Name: "a", Connected: false, Away: true}}, false},
		{"present everywhere", []ServerState{{Name: "a", Connected: true}, {Name: "b", Connected: true}}, false},
		{"away on one, present on another", []ServerState{{Name: "a", Connected: true}, {Name: "b", Connected: true, Away: true}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AnyAway(tt.servers))
		})
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "weechat: #ops", FormatTitle("weechat", "#ops"))
	assert.Equal(t, "weechat: #ops", FormatTitle("", "#ops"))
	assert.Equal(t, "irc: alice", FormatTitle("irc", "alice"))
	assert.Equal(t, "<carol> ping", FormatMessage("carol", "ping"))
}
