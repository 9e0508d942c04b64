package dto

import "github.com/Ntrakiyski/rag-chat-api/internal/session"

type ChatRequest struct {
	Question string `json:"question" validate:"required"`
	Model    string `json:"model"`
}

type ChatResponse struct {
	Answer    string             `json:"answer"`
	Resources []session.Resource `json:"resources"`
}
