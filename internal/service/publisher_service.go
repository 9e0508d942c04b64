package service

import (
	"context"

	"github.com/Ntrakiyski/rag-chat-api/internal/pkg/logger"
	"github.com/Ntrakiyski/rag-chat-api/pkg/taskqueue"
)

// IPublisherService hands a task payload to the queue for one fixed topic.
// Each background task kind gets its own publisher instance.
type IPublisherService interface {
	Publish(ctx context.Context, payload []byte) error
}

type publisherService struct {
	topic string
	queue taskqueue.Queue
	log   logger.ILogger
}

func NewPublisherService(topic string, queue taskqueue.Queue, log logger.ILogger) IPublisherService {
	return &publisherService{
		topic: topic,
		queue: queue,
		log:   log,
	}
}

func (s *publisherService) Publish(ctx context.Context, payload []byte) error {
	if err := s.queue.Publish(ctx, s.topic, payload); err != nil {
		s.log.Error("PublisherService", "Failed to publish task", map[string]interface{}{
			"topic": s.topic,
			"error": err.Error(),
		})
		return err
	}
	s.log.Debug("PublisherService", "Task published", map[string]interface{}{"topic": s.topic})
	return nil
}
