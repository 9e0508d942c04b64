package service

import (
	"context"
	"encoding/base64"
	"encoding/json"

	"github.com/Ntrakiyski/rag-chat-api/internal/dto"
	"github.com/Ntrakiyski/rag-chat-api/internal/pkg/logger"
	"github.com/Ntrakiyski/rag-chat-api/internal/session"
)

// IIngestionService accepts content for background processing and reports
// session progress. Submit only creates the session and enqueues a task; the
// crawl, extraction and embedding work all happen on the worker.
type IIngestionService interface {
	Submit(ctx context.Context, inputType, inputValue string, pdfContent []byte) (*dto.IngestResponse, error)
	Status(ctx context.Context, sessionId string) (*dto.StatusResponse, error)
}

type ingestionService struct {
	sessions  session.Store
	publisher IPublisherService
	log       logger.ILogger
}

func NewIngestionService(sessions session.Store, publisher IPublisherService, log logger.ILogger) IIngestionService {
	return &ingestionService{
		sessions:  sessions,
		publisher: publisher,
		log:       log,
	}
}

func (s *ingestionService) Submit(ctx context.Context, inputType, inputValue string, pdfContent []byte) (*dto.IngestResponse, error) {
	rec, err := s.sessions.Create(ctx, inputType, inputValue)
	if err != nil {
		s.log.Error("IngestionService", "Failed to create session", map[string]interface{}{"error": err.Error()})
		return nil, err
	}

	task := dto.IngestionTaskMessage{
		UserSessionId: rec.UserSessionId,
		InputType:     inputType,
		InputValue:    inputValue,
	}
	if len(pdfContent) > 0 {
		task.PdfFileContentB64 = base64.StdEncoding.EncodeToString(pdfContent)
	}

	payload, err := json.Marshal(task)
	if err != nil {
		return nil, err
	}
	if err := s.publisher.Publish(ctx, payload); err != nil {
		return nil, err
	}

	s.log.Info("IngestionService", "Ingestion task queued", map[string]interface{}{
		"session_id": rec.UserSessionId,
		"input_type": inputType,
	})

	return &dto.IngestResponse{
		SessionId: rec.UserSessionId,
		Status:    string(rec.Status),
		Message:   "Content ingestion started. Check status endpoint for progress.",
	}, nil
}

func (s *ingestionService) Status(ctx context.Context, sessionId string) (*dto.StatusResponse, error) {
	rec, err := s.sessions.Get(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	return &dto.StatusResponse{
		SessionId: rec.UserSessionId,
		Status:    string(rec.Status),
		Message:   rec.Message,
	}, nil
}
