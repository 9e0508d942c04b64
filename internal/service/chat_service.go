package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Ntrakiyski/rag-chat-api/internal/dto"
	"github.com/Ntrakiyski/rag-chat-api/internal/pkg/logger"
	"github.com/Ntrakiyski/rag-chat-api/internal/rag"
	"github.com/Ntrakiyski/rag-chat-api/internal/session"
	"github.com/Ntrakiyski/rag-chat-api/pkg/llm"
)

type IChatService interface {
	Chat(ctx context.Context, sessionId string, req *dto.ChatRequest) (*dto.ChatResponse, error)
}

// IAnswerPipeline is what the chat service needs from the retrieval
// pipeline. Satisfied by rag.Pipeline.
type IAnswerPipeline interface {
	Answer(ctx context.Context, rec *session.Record, question, model string) (*rag.Answer, error)
}

type chatService struct {
	sessions session.Store
	pipeline IAnswerPipeline
	log      logger.ILogger
}

func NewChatService(sessions session.Store, pipeline IAnswerPipeline, log logger.ILogger) IChatService {
	return &chatService{
		sessions: sessions,
		pipeline: pipeline,
		log:      log,
	}
}

// Chat answers one question within a session. The user turn is persisted
// before the pipeline runs, so even a failed answer leaves the question in
// the history. An unknown model override is answered with a hint instead of
// an error; any other pipeline failure marks the session errored.
func (s *chatService) Chat(ctx context.Context, sessionId string, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	rec, err := s.sessions.Update(ctx, sessionId, func(r *session.Record) {
		r.AppendTurn(session.RoleUser, req.Question, nil)
	})
	if err != nil {
		return nil, err
	}

	answer, err := s.pipeline.Answer(ctx, rec, req.Question, req.Model)
	if err != nil {
		if errors.Is(err, llm.ErrInvalidModel) {
			return s.answerInvalidModel(ctx, sessionId, req.Model)
		}
		s.log.Error("ChatService", "Pipeline failed", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
		if _, uerr := s.sessions.Update(ctx, sessionId, func(r *session.Record) {
			r.SetStatus(session.StatusError, fmt.Sprintf("Error calling LLM: %v", err))
		}); uerr != nil {
			s.log.Error("ChatService", "Failed to record pipeline error", map[string]interface{}{
				"session_id": sessionId,
				"error":      uerr.Error(),
			})
		}
		return nil, err
	}

	resources := answer.Resources
	if resources == nil {
		resources = []session.Resource{}
	}

	if _, err := s.sessions.Update(ctx, sessionId, func(r *session.Record) {
		if answer.Text != "" {
			r.AppendTurn(session.RoleAssistant, answer.Text, resources)
		}
		// Back to ready without clobbering the last ingestion message.
		r.Status = session.StatusReady
	}); err != nil {
		return nil, err
	}

	return &dto.ChatResponse{Answer: answer.Text, Resources: resources}, nil
}

// answerInvalidModel turns a bad model override into a regular answer so the
// caller can correct the model name and continue the conversation.
func (s *chatService) answerInvalidModel(ctx context.Context, sessionId, model string) (*dto.ChatResponse, error) {
	hint := fmt.Sprintf("Invalid model specified: %s. Please check the model name. Available models can be found at https://openrouter.ai/models", model)

	if _, err := s.sessions.Update(ctx, sessionId, func(r *session.Record) {
		r.AppendTurn(session.RoleAssistant, hint, nil)
		r.Status = session.StatusReady
	}); err != nil {
		return nil, err
	}

	return &dto.ChatResponse{Answer: hint, Resources: []session.Resource{}}, nil
}
