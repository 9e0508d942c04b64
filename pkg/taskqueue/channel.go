package taskqueue

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// ChannelQueue is the in-process backend, built on watermill's gochannel
// pub/sub. Messages do not survive a restart; it exists for development and
// single-binary deployments where the worker runs next to the API.
type ChannelQueue struct {
	pubSub *gochannel.GoChannel
}

var _ Queue = &ChannelQueue{}

func NewChannelQueue(logger watermill.LoggerAdapter) *ChannelQueue {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	return &ChannelQueue{
		pubSub: gochannel.NewGoChannel(gochannel.Config{
			// Keep published messages until a subscriber attaches, so tasks
			// enqueued during startup are not lost.
			Persistent: true,
		}, logger),
	}
}

func (q *ChannelQueue) Publish(_ context.Context, topic string, payload []byte) error {
	msg := message.NewMessage(watermill.NewUUID(), payload)
	return q.pubSub.Publish(topic, msg)
}

func (q *ChannelQueue) Subscribe(ctx context.Context, topic string) (<-chan Delivery, error) {
	messages, err := q.pubSub.Subscribe(ctx, topic)
	if err != nil {
		return nil, err
	}

	out := make(chan Delivery)
	go func() {
		defer close(out)
		for msg := range messages {
			m := msg
			delivery := Delivery{
				Payload: m.Payload,
				Ack:     func() { m.Ack() },
				Nack:    func() { m.Nack() },
			}
			select {
			case out <- delivery:
			case <-ctx.Done():
				m.Nack()
				return
			}
		}
	}()
	return out, nil
}

func (q *ChannelQueue) Close() error {
	return q.pubSub.Close()
}
