package weechat

import (
	"sort"
	"sync"

	"github.com/weepush/weepush/internal/relay"
)

// Buffers mirrors the buffer list of the remote WeeChat. It is written by the
// session's read loop and read by the dispatcher and status endpoints.
type Buffers struct {
	mu   sync.RWMutex
	byID map[int64]Buffer
}

func NewBuffers() *Buffers {
	return &Buffers{byID: make(map[int64]Buffer)}
}

// Reset replaces the whole mirror.
func (b *Buffers) Reset(list []Buffer) {
	m := make(map[int64]Buffer, len(list))
	for _, buf := range list {
		m[buf.ID] = buf
	}
	b.mu.Lock()
	b.byID = m
	b.mu.Unlock()
}

func (b *Buffers) Put(buf Buffer) {
	b.mu.Lock()
	b.byID[buf.ID] = buf
	b.mu.Unlock()
}

func (b *Buffers) Remove(id int64) {
	b.mu.Lock()
	delete(b.byID, id)
	b.mu.Unlock()
}

func (b *Buffers) Get(id int64) (Buffer, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	buf, ok := b.byID[id]
	return buf, ok
}

func (b *Buffers) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.byID)
}

// Servers implements relay.AwaySource. Each irc server buffer is one server:
// irc sets the "nick" local variable once registered and "away" while away.
func (b *Buffers) Servers() []relay.ServerState {
	b.mu.RLock()
	var out []relay.ServerState
	for _, buf := range b.byID {
		if buf.LocalVar("type") != string(relay.BufferServer) {
			continue
		}
		name := buf.LocalVar("server")
		if name == "" {
			name = buf.ShortName
		}
		out = append(out, relay.ServerState{
			Name:      name,
			Connected: buf.LocalVar("nick") != "",
			Away:      buf.LocalVar("away") != "",
		})
	}
	b.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ChatEvent combines a printed line with the properties of its buffer.
func ChatEvent(buf Buffer, line Line) relay.ChatEvent {
	return relay.ChatEvent{
		BufferID:        buf.ID,
		BufferName:      buf.Name,
		BufferShortName: buf.ShortName,
		BufferKind:      relay.BufferKind(buf.LocalVar("type")),
		Sender:          line.Prefix,
		OwnNick:         buf.LocalVar("nick"),
		Body:            line.Message,
		Hilight:         line.Highlight,
		Displayed:       line.Displayed,
		Tags:            line.Tags,
	}
}
