package taskqueue

import "context"

// Delivery is one received task. Handlers must call exactly one of Ack or
// Nack; a Nack puts the message back for redelivery, so processing is
// at-least-once and handlers have to be idempotent.
type Delivery struct {
	Payload []byte
	Ack     func()
	Nack    func()
}

// Queue is a named-topic task bus. Publish is fire-and-forget: it returns
// once the message is handed to the broker, not when it is processed.
type Queue interface {
	Publish(ctx context.Context, topic string, payload []byte) error

	// Subscribe starts consuming a topic. The returned channel stays open
	// until the context is cancelled or the backend shuts down.
	Subscribe(ctx context.Context, topic string) (<-chan Delivery, error)

	Close() error
}
