package usecase

import "context"

// Notifier delivers fire-and-forget messages to end users. Delivery
// failures must never fail the business operation that triggered them.
// Alert targets the operator channel instead of a user.
type Notifier interface {
	Notify(ctx context.Context, userID, title, message string) error
	Broadcast(ctx context.Context, title, message string) error
	Alert(ctx context.Context, title, message string) error
}

// NopNotifier drops every message. Used in tests and when no delivery
// channel is configured.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, string, string, string) error { return nil }
func (NopNotifier) Broadcast(context.Context, string, string) error      { return nil }
func (NopNotifier) Alert(context.Context, string, string) error          { return nil }
