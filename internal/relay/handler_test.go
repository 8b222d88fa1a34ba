package relay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerEndToEnd(t *testing.T) {
	tests := []struct {
		name    string
		ev      ChatEvent
		title   string
		message string
	}{
		{
			name:    "private message",
			ev:      ChatEvent{BufferKind: BufferPrivate, BufferShortName: "alice", Sender: "alice", OwnNick: "bob", Body: "hi"},
			title:   "weechat: alice",
			message: "<alice> hi",
		},
		{
			name:    "hilight without short name",
			ev:      ChatEvent{BufferKind: BufferChannel, Hilight: true, BufferName: "#ops", Sender: "carol", OwnNick: "bob", Body: "ping"},
			title:   "weechat: #ops",
			message: "<carol> ping",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := &fakeTransport{}
			d := newTestDispatcher(awayOnLibera, validCreds, tr)
			h := NewHandler(d)

			assert.Equal(t, StatusOK, h.Handle(tt.ev))
			wait(t, d)

			got := tr.captured()
			require.Len(t, got, 1)
			assert.Equal(t, tt.title, got[0].title)
			assert.Equal(t, tt.message, got[0].message)
		})
	}
}

func TestHandlerAlwaysReportsOK(t *testing.T) {
	events := []ChatEvent{
		{BufferKind: BufferChannel, Sender: "carol", Body: "not for you"},
		{BufferKind: BufferPrivate, Sender: "bob", OwnNick: "bob", Body: "self"},
		{BufferKind: BufferPrivate, Sender: "alice", OwnNick: "bob", Body: "while present"},
	}
	tr := &fakeTransport{}
	d := newTestDispatcher(presentOnly, validCreds, tr)
	h := NewHandler(d)
	for _, ev := range events {
		assert.Equal(t, StatusOK, h.Handle(ev))
	}
	wait(t, d)
	assert.Empty(t, tr.captured())

	// missing credentials still report OK
	d2 := newTestDispatcher(awayOnLibera, StaticSettings{}, tr)
	assert.Equal(t, StatusOK, NewHandler(d2).Handle(events[2]))
	wait(t, d2)
	assert.Empty(t, tr.captured())
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "ok", StatusOK.String())
	assert.Equal(t, "error", StatusError.String())
}
