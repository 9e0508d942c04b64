package taskqueue

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const tasksStream = "TASKS"

// NatsQueue is the durable backend, built on NATS JetStream. One stream holds
// every task subject; each topic gets a durable work-queue consumer so tasks
// survive worker restarts.
type NatsQueue struct {
	nc *nats.Conn
	js jetstream.JetStream
}

var _ Queue = &NatsQueue{}

func NewNatsQueue(url string) (*NatsQueue, error) {
	nc, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      tasksStream,
		Subjects:  []string{"tasks.>"},
		Storage:   jetstream.FileStorage,
		Retention: jetstream.WorkQueuePolicy,
	})
	if err != nil {
		log.Printf("Warn: Failed to ensure stream %q: %v", tasksStream, err)
		// Don't fail hard here, maybe it already exists or NATS isn't ready
	}

	return &NatsQueue{nc: nc, js: js}, nil
}

func (q *NatsQueue) Publish(ctx context.Context, topic string, payload []byte) error {
	if _, err := q.js.Publish(ctx, subjectFor(topic), payload); err != nil {
		return fmt.Errorf("failed to publish task to %s: %w", topic, err)
	}
	return nil
}

func (q *NatsQueue) Subscribe(ctx context.Context, topic string) (<-chan Delivery, error) {
	consumer, err := q.js.CreateOrUpdateConsumer(ctx, tasksStream, jetstream.ConsumerConfig{
		Durable:       durableFor(topic),
		FilterSubject: subjectFor(topic),
		AckPolicy:     jetstream.AckExplicitPolicy,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer for %s: %w", topic, err)
	}

	out := make(chan Delivery)
	cc, err := consumer.Consume(func(msg jetstream.Msg) {
		delivery := Delivery{
			Payload: msg.Data(),
			Ack:     func() { _ = msg.Ack() },
			Nack:    func() { _ = msg.Nak() },
		}
		select {
		case out <- delivery:
		case <-ctx.Done():
			_ = msg.Nak()
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start consuming %s: %w", topic, err)
	}

	go func() {
		<-ctx.Done()
		cc.Stop()
	}()

	log.Printf("Subscribed to %s with durable %s", subjectFor(topic), durableFor(topic))
	return out, nil
}

func (q *NatsQueue) Close() error {
	if q.nc != nil {
		q.nc.Close()
	}
	return nil
}

func subjectFor(topic string) string {
	return "tasks." + topic
}

func durableFor(topic string) string {
	return "worker_" + topic
}
