package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/Ntrakiyski/rag-chat-api/internal/dto"
	"github.com/Ntrakiyski/rag-chat-api/internal/pkg/logger"
	"github.com/Ntrakiyski/rag-chat-api/internal/session"
)

// ErrContentNotReady rejects FAQ generation for sessions whose content has
// not finished indexing.
var ErrContentNotReady = errors.New("content is not ready")

type IFaqService interface {
	RequestGeneration(ctx context.Context, sessionId string) (*dto.FaqGenerationResponse, error)
}

type faqService struct {
	sessions  session.Store
	publisher IPublisherService
	log       logger.ILogger
}

func NewFaqService(sessions session.Store, publisher IPublisherService, log logger.ILogger) IFaqService {
	return &faqService{
		sessions:  sessions,
		publisher: publisher,
		log:       log,
	}
}

// RequestGeneration marks the session as generating FAQs and enqueues the
// task. The session is left untouched when the request is rejected.
func (s *faqService) RequestGeneration(ctx context.Context, sessionId string) (*dto.FaqGenerationResponse, error) {
	rec, err := s.sessions.Get(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	if !rec.ContextIsReady || rec.Status == session.StatusProcessing {
		return nil, ErrContentNotReady
	}

	if _, err := s.sessions.Update(ctx, sessionId, func(r *session.Record) {
		r.SetStatus(session.StatusFaqProcessing, "FAQ generation in progress.")
	}); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(dto.FaqTaskMessage{UserSessionId: sessionId})
	if err != nil {
		return nil, err
	}
	if err := s.publisher.Publish(ctx, payload); err != nil {
		return nil, err
	}

	s.log.Info("FaqService", "FAQ generation task queued", map[string]interface{}{"session_id": sessionId})

	return &dto.FaqGenerationResponse{
		SessionId: sessionId,
		Status:    string(session.StatusFaqProcessing),
		Message:   "FAQ generation has started.",
	}, nil
}
