package notify

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/weepush/weepush/internal/logging"
	"github.com/weepush/weepush/internal/metrics"
)

// DefaultSendTimeout bounds a single background send.
var DefaultSendTimeout = 10 * time.Second

// Async fires sends on their own goroutines. Failures are logged and
// counted, never retried.
type Async struct {
	timeout time.Duration
	// limiter is nil when sends are unlimited
	limiter *rate.Limiter
	wg      sync.WaitGroup
}

// NewAsync returns a sender. perMinute <= 0 disables rate limiting.
func NewAsync(timeout time.Duration, perMinute int) *Async {
	if timeout <= 0 {
		timeout = DefaultSendTimeout
	}
	a := &Async{timeout: timeout}
	if perMinute > 0 {
		a.limiter = rate.NewLimiter(rate.Limit(float64(perMinute)/60), perMinute)
	}
	return a
}

// Go starts sending in the background and returns immediately. It returns
// false when the rate limit dropped the message.
func (a *Async) Go(svc Service, title, message string) bool {
	if a.limiter != nil && !a.limiter.Allow() {
		return false
	}
	name := svc.Name()
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()
		if err := svc.Send(ctx, title, message); err != nil {
			metrics.IncNotificationFailed()
			logging.Get().Warn().Err(err).Str("service", name).Msg("notification send failed")
			return
		}
		metrics.IncNotificationSent()
		logging.Get().Debug().Str("service", name).Msg("notification sent")
	}()
	return true
}

// Wait waits for pending notification sends to complete or until the provided
// context is cancelled.
func (a *Async) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
