package relay

// Reason labels why an event qualified.
type Reason string

const (
	ReasonNone    Reason = ""
	ReasonPrivate Reason = "private"
	ReasonHilight Reason = "hilight"
)

// Evaluate returns the notification request for ev, or false when the event
// is neither a private message from someone else nor a hilight.
func Evaluate(ev ChatEvent) (NotificationRequest, bool) {
	req, reason := classify(ev)
	return req, reason != ReasonNone
}

func classify(ev ChatEvent) (NotificationRequest, Reason) {
	if ev.BufferKind == BufferPrivate && ev.Sender != ev.OwnNick {
		return NotificationRequest{ContextLabel: ev.Sender, Sender: ev.Sender, Body: ev.Body}, ReasonPrivate
	}
	if ev.Hilight {
		label := ev.BufferShortName
		if label == "" {
			label = ev.BufferName
		}
		return NotificationRequest{ContextLabel: label, Sender: ev.Sender, Body: ev.Body}, ReasonHilight
	}
	return NotificationRequest{}, ReasonNone
}
