package relay

// ServerState is the presence of the local user on one IRC server.
type ServerState struct {
	Name      string
	Connected bool
	Away      bool
}

// AwaySource lists the known servers. Implementations must return a fresh
// view on every call.
type AwaySource interface {
	Servers() []ServerState
}

// AwaySourceFunc adapts a function to AwaySource.
type AwaySourceFunc func() []ServerState

func (f AwaySourceFunc) Servers() []ServerState { return f() }

// AnyAway reports whether at least one connected server has the user away.
// Being present on another server does not cancel it.
func AnyAway(servers []ServerState) bool {
	for _, s := range servers {
		if !s.Connected {
			continue
		}
		if s.Away {
			return true
		}
	}
	return false
}
