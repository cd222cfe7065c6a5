package notifier

import "context"

// Notifier delivers account emails. SendChallenge failures must be surfaced
// to the caller (the user cannot proceed without the code); SendWelcome is
// best-effort.
type Notifier interface {
	SendChallenge(ctx context.Context, addr, code, displayName string) error
	SendWelcome(ctx context.Context, addr, displayName, role string) error
}
