package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/Ntrakiyski/rag-chat-api/internal/config"
	"github.com/Ntrakiyski/rag-chat-api/internal/dto"
	"github.com/Ntrakiyski/rag-chat-api/internal/flow"
	"github.com/Ntrakiyski/rag-chat-api/internal/pkg/logger"
	"github.com/Ntrakiyski/rag-chat-api/internal/session"
	"github.com/Ntrakiyski/rag-chat-api/pkg/taskqueue"
)

// IWorkerService consumes ingestion and FAQ tasks from the queue and drives
// the corresponding flows. Deliveries are at-least-once, so every handler
// here must tolerate running twice for the same session.
type IWorkerService interface {
	Start(ctx context.Context) error
}

type workerService struct {
	queue         taskqueue.Queue
	sessions      session.Store
	engine        *flow.Engine
	ingestionFlow *flow.Flow
	faqFlow       *flow.Flow
	ingestTopic   string
	faqTopic      string
	faqRetry      RetryPolicy
	log           logger.ILogger
}

func NewWorkerService(
	cfg *config.Config,
	queue taskqueue.Queue,
	sessions session.Store,
	engine *flow.Engine,
	ingestionFlow *flow.Flow,
	faqFlow *flow.Flow,
	log logger.ILogger,
) IWorkerService {
	return &workerService{
		queue:         queue,
		sessions:      sessions,
		engine:        engine,
		ingestionFlow: ingestionFlow,
		faqFlow:       faqFlow,
		ingestTopic:   cfg.Tasks.IngestTopic,
		faqTopic:      cfg.Tasks.FaqTopic,
		faqRetry: RetryPolicy{
			MaxAttempts: cfg.Tasks.FaqMaxAttempts,
			Delay:       cfg.Tasks.FaqRetryDelay,
		},
		log: log,
	}
}

// Start subscribes to both task topics and consumes each on its own
// goroutine. It returns once the subscriptions are established; consumption
// stops when the context is cancelled.
func (s *workerService) Start(ctx context.Context) error {
	ingest, err := s.queue.Subscribe(ctx, s.ingestTopic)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", s.ingestTopic, err)
	}
	faq, err := s.queue.Subscribe(ctx, s.faqTopic)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", s.faqTopic, err)
	}

	go s.consume(ctx, ingest, s.handleIngestionTask)
	go s.consume(ctx, faq, s.handleFaqTask)

	s.log.Info("WorkerService", "Worker started", map[string]interface{}{
		"ingest_topic": s.ingestTopic,
		"faq_topic":    s.faqTopic,
	})
	return nil
}

func (s *workerService) consume(ctx context.Context, deliveries <-chan taskqueue.Delivery, handle func(context.Context, taskqueue.Delivery)) {
	for d := range deliveries {
		handle(ctx, d)
	}
}

// handleIngestionTask runs the ingestion flow for one queued submission. PDF
// bytes arrive base64-encoded and are written to a scratch file for the
// extractor; the session keeps the original filename as its input value so
// namespaces never derive from a scratch path.
func (s *workerService) handleIngestionTask(ctx context.Context, d taskqueue.Delivery) {
	defer d.Ack()

	var msg dto.IngestionTaskMessage
	if err := json.Unmarshal(d.Payload, &msg); err != nil {
		s.log.Error("WorkerService", "Discarding malformed ingestion task", map[string]interface{}{"error": err.Error()})
		return
	}

	s.log.Info("WorkerService", "Ingestion task received", map[string]interface{}{
		"session_id": msg.UserSessionId,
		"input_type": msg.InputType,
	})

	fc := &flow.Context{
		SessionID:  msg.UserSessionId,
		InputType:  msg.InputType,
		InputValue: msg.InputValue,
	}

	if msg.PdfFileContentB64 != "" {
		scratch, err := s.writeScratchPdf(msg.PdfFileContentB64)
		if err != nil {
			s.failSession(ctx, msg.UserSessionId, err)
			return
		}
		defer os.Remove(scratch)
		fc.OriginalFilename = msg.InputValue
		fc.InputValue = scratch
	}

	if err := s.engine.Run(ctx, s.ingestionFlow, fc); err != nil {
		s.log.Error("WorkerService", "Ingestion flow failed", map[string]interface{}{
			"session_id": msg.UserSessionId,
			"error":      err.Error(),
		})
		s.failSession(ctx, msg.UserSessionId, err)
	}
}

// handleFaqTask runs the FAQ flow with retries. Generation failures are
// retried whole; business rejections inside the flow (no processed content)
// end the run without an error and are not retried.
func (s *workerService) handleFaqTask(ctx context.Context, d taskqueue.Delivery) {
	var msg dto.FaqTaskMessage
	if err := json.Unmarshal(d.Payload, &msg); err != nil {
		s.log.Error("WorkerService", "Discarding malformed FAQ task", map[string]interface{}{"error": err.Error()})
		d.Ack()
		return
	}

	rec, err := s.sessions.Get(ctx, msg.UserSessionId)
	if errors.Is(err, session.ErrNotFound) {
		s.log.Warn("WorkerService", "FAQ task for unknown session", map[string]interface{}{"session_id": msg.UserSessionId})
		d.Ack()
		return
	}
	if err != nil {
		// Store outage. Leave the task on the queue and try again later.
		s.log.Error("WorkerService", "Failed to load session for FAQ task", map[string]interface{}{
			"session_id": msg.UserSessionId,
			"error":      err.Error(),
		})
		d.Nack()
		return
	}

	if !rec.ContextIsReady {
		s.failSessionMessage(ctx, msg.UserSessionId, "Content not ready for FAQ generation.")
		d.Ack()
		return
	}

	err = s.faqRetry.Do(ctx, func() error {
		fc := &flow.Context{
			SessionID:        rec.UserSessionId,
			InputType:        rec.InputType,
			InputValue:       rec.InputValue,
			ProcessedContent: rec.ProcessedContent,
		}
		return s.engine.Run(ctx, s.faqFlow, fc)
	})
	if err != nil {
		s.log.Error("WorkerService", "FAQ flow failed after retries", map[string]interface{}{
			"session_id": msg.UserSessionId,
			"error":      err.Error(),
		})
		s.failSession(ctx, msg.UserSessionId, err)
	}
	d.Ack()
}

func (s *workerService) writeScratchPdf(contentB64 string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(contentB64)
	if err != nil {
		return "", fmt.Errorf("decode pdf content: %w", err)
	}
	tmp, err := os.CreateTemp("", "ingest-*.pdf")
	if err != nil {
		return "", fmt.Errorf("create scratch file: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write scratch file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("close scratch file: %w", err)
	}
	return tmp.Name(), nil
}

func (s *workerService) failSession(ctx context.Context, sessionId string, cause error) {
	s.failSessionMessage(ctx, sessionId, cause.Error())
}

func (s *workerService) failSessionMessage(ctx context.Context, sessionId, message string) {
	if _, err := s.sessions.Update(ctx, sessionId, func(r *session.Record) {
		r.SetStatus(session.StatusError, message)
	}); err != nil {
		s.log.Error("WorkerService", "Failed to mark session errored", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
	}
}
