// Package events publishes catalog change notifications to a message
// broker. The marketplace only emits; nothing in this process consumes.
package events

import "context"

// Backend defines the broker-agnostic publish operations used by the app.
type Backend interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
	Close() error
}

// Publisher wraps a backend with a stable API.
type Publisher struct {
	backend Backend
}

// NewPublisher constructs a Publisher for the provided backend.
func NewPublisher(backend Backend) *Publisher {
	return &Publisher{backend: backend}
}

// Publish sends a message to the named channel and returns its broker id.
func (p *Publisher) Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	return p.backend.Publish(ctx, channel, data, attrs)
}

// Close closes the underlying backend.
func (p *Publisher) Close() error {
	return p.backend.Close()
}
