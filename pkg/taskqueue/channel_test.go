package taskqueue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelQueueRoundTrip(t *testing.T) {
	q := NewChannelQueue(nil)
	defer q.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deliveries, err := q.Subscribe(ctx, "INGEST_CONTENT")
	require.NoError(t, err)

	err = q.Publish(ctx, "INGEST_CONTENT", []byte(`{"session_id":"abc"}`))
	require.NoError(t, err)

	select {
	case d := <-deliveries:
		assert.JSONEq(t, `{"session_id":"abc"}`, string(d.Payload))
		d.Ack()
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for delivery")
	}
}

func TestChannelQueueNackRedelivers(t *testing.T) {
	q := NewChannelQueue(nil)
	defer q.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deliveries, err := q.Subscribe(ctx, "GENERATE_FAQ")
	require.NoError(t, err)

	err = q.Publish(ctx, "GENERATE_FAQ", []byte(`{"session_id":"retry-me"}`))
	require.NoError(t, err)

	select {
	case d := <-deliveries:
		d.Nack()
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for first delivery")
	}

	select {
	case d := <-deliveries:
		assert.JSONEq(t, `{"session_id":"retry-me"}`, string(d.Payload))
		d.Ack()
	case <-time.After(2 * time.Second):
		t.Fatal("nacked message was not redelivered")
	}
}

func TestChannelQueuePublishBeforeSubscribe(t *testing.T) {
	q := NewChannelQueue(nil)
	defer q.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err := q.Publish(ctx, "INGEST_CONTENT", []byte(`{"session_id":"early"}`))
	require.NoError(t, err)

	deliveries, err := q.Subscribe(ctx, "INGEST_CONTENT")
	require.NoError(t, err)

	select {
	case d := <-deliveries:
		assert.JSONEq(t, `{"session_id":"early"}`, string(d.Payload))
		d.Ack()
	case <-time.After(2 * time.Second):
		t.Fatal("persistent message was not delivered to late subscriber")
	}
}
