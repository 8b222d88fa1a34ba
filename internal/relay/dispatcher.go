package relay

import (
	"context"
	"fmt"

	"github.com/weepush/weepush/internal/logging"
	"github.com/weepush/weepush/internal/metrics"
	"github.com/weepush/weepush/internal/notify"
)

// DefaultTitlePrefix names the host application in notification titles.
const DefaultTitlePrefix = "weechat"

// NotifierFactory builds a notifier for the given credentials.
type NotifierFactory func(Credentials) notify.Service

// PushoverFactory is the production NotifierFactory.
func PushoverFactory(c Credentials) notify.Service {
	return &notify.Pushover{UserKey: c.UserKey, APIToken: c.APIToken}
}

// Dispatcher gates qualifying requests on away state and credentials and
// fires the notification without waiting for it.
type Dispatcher struct {
	away     AwaySource
	settings SettingsSource
	factory  NotifierFactory
	sender   *notify.Async
}

// NewDispatcher wires a dispatcher. A nil factory selects Pushover.
func NewDispatcher(away AwaySource, settings SettingsSource, factory NotifierFactory, sender *notify.Async) *Dispatcher {
	if factory == nil {
		factory = PushoverFactory
	}
	if sender == nil {
		sender = notify.NewAsync(notify.DefaultSendTimeout, 0)
	}
	return &Dispatcher{away: away, settings: settings, factory: factory, sender: sender}
}

// Dispatch sends req when the user is away somewhere and credentials are
// configured. Unmet preconditions are silent no-ops.
func (d *Dispatcher) Dispatch(req NotificationRequest) {
	if !AnyAway(d.away.Servers()) {
		metrics.IncSkipped(metrics.SkipNotAway)
		logging.Get().Debug().Str("context", req.ContextLabel).Msg("not away on any connected server; skipping")
		return
	}
	creds := d.settings.Credentials()
	if !creds.Complete() {
		metrics.IncSkipped(metrics.SkipNoCredentials)
		logging.Get().Debug().Str("context", req.ContextLabel).Msg("pushover credentials not set; skipping")
		return
	}
	title, message := FormatTitle(d.settings.TitlePrefix(), req.ContextLabel), FormatMessage(req.Sender, req.Body)
	if !d.sender.Go(d.factory(creds), title, message) {
		metrics.IncSkipped(metrics.SkipRateLimited)
		logging.Get().Warn().Str("context", req.ContextLabel).Msg("notification dropped by rate limit")
	}
}

// Wait blocks until in-flight sends finish or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error {
	return d.sender.Wait(ctx)
}

// FormatTitle renders "<prefix>: <label>".
func FormatTitle(prefix, label string) string {
	if prefix == "" {
		prefix = DefaultTitlePrefix
	}
	return fmt.Sprintf("%s: %s", prefix, label)
}

// FormatMessage renders "<sender> body".
func FormatMessage(sender, body string) string {
	return fmt.Sprintf("<%s> %s", sender, body)
}
