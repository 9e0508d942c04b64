package service

import (
	"context"

	"github.com/Ntrakiyski/rag-chat-api/internal/dto"
	"github.com/Ntrakiyski/rag-chat-api/internal/pkg/logger"
	"github.com/Ntrakiyski/rag-chat-api/internal/session"
)

type ISessionService interface {
	Get(ctx context.Context, sessionId string) (*session.Record, error)
	Update(ctx context.Context, sessionId string, req *dto.UpdateSessionRequest) (*session.Record, error)
}

type sessionService struct {
	sessions session.Store
	log      logger.ILogger
}

func NewSessionService(sessions session.Store, log logger.ILogger) ISessionService {
	return &sessionService{
		sessions: sessions,
		log:      log,
	}
}

func (s *sessionService) Get(ctx context.Context, sessionId string) (*session.Record, error) {
	return s.sessions.Get(ctx, sessionId)
}

// Update merges the fields present in the request into the stored record and
// returns the result. Absent fields are left untouched.
func (s *sessionService) Update(ctx context.Context, sessionId string, req *dto.UpdateSessionRequest) (*session.Record, error) {
	rec, err := s.sessions.Update(ctx, sessionId, func(r *session.Record) {
		if req.InputType != nil {
			r.InputType = *req.InputType
		}
		if req.InputValue != nil {
			r.InputValue = *req.InputValue
		}
		if req.ProcessedContent != nil {
			r.ProcessedContent = *req.ProcessedContent
		}
		if req.GeneratedFaqs != nil {
			r.GeneratedFaqs = *req.GeneratedFaqs
		}
		if req.ChatHistory != nil {
			r.ChatHistory = *req.ChatHistory
		}
		if req.ContextIsReady != nil {
			r.ContextIsReady = *req.ContextIsReady
		}
		if req.ActiveNamespaces != nil {
			r.ActiveNamespaces = *req.ActiveNamespaces
		}
		if req.Status != nil {
			r.Status = *req.Status
		}
		if req.Message != nil {
			r.Message = *req.Message
		}
	})
	if err != nil {
		return nil, err
	}
	s.log.Debug("SessionService", "Session updated", map[string]interface{}{"session_id": sessionId})
	return rec, nil
}
