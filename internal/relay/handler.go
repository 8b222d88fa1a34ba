package relay

import (
	"time"

	"github.com/weepush/weepush/internal/logging"
	"github.com/weepush/weepush/internal/metrics"
)

// Handler is the callback the host invokes for every printed line.
type Handler struct {
	dispatcher *Dispatcher
	now        func() time.Time
}

func NewHandler(d *Dispatcher) *Handler {
	return &Handler{dispatcher: d, now: time.Now}
}

// Handle classifies ev and dispatches it when it qualifies. The result is
// always StatusOK: a missed notification is not the host's problem.
func (h *Handler) Handle(ev ChatEvent) Status {
	metrics.IncEvent()
	metrics.SetLastEvent(h.now())

	req, reason := classify(ev)
	if reason == ReasonNone {
		return StatusOK
	}
	metrics.IncQualified(string(reason))
	logging.Get().Debug().
		Str("reason", string(reason)).
		Str("context", req.ContextLabel).
		Str("sender", req.Sender).
		Msg("event qualifies for notification")
	h.dispatcher.Dispatch(req)
	return StatusOK
}
