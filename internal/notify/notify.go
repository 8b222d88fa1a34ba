// Package notify provides the push notification backend and the background
// sender used by weepush.
package notify

import "context"

// Service is the interface all notifiers must implement
type Service interface {
	Send(ctx context.Context, title, message string) error
	Name() string
}
