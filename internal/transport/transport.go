// Package transport models the outbound message relay. The store
// attempts a best-effort send after every locally appended chat
// message; a failing relay never rolls back or blocks the local append.
package transport

import "context"

// Transport relays chat content to an external messaging network.
type Transport interface {
	// Send publishes content on a topic. Implementations should return
	// promptly; callers treat any error as a degraded, local-only send.
	Send(ctx context.Context, topic, content string) error
}

// Nop is a Transport that drops everything. Used when no relay is
// configured and in tests.
type Nop struct{}

// Send implements Transport.
func (Nop) Send(ctx context.Context, topic, content string) error { return nil }
