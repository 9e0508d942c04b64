package dto

import "github.com/Ntrakiyski/rag-chat-api/internal/session"

// UpdateSessionRequest carries a partial session update. Only the fields
// present in the request body are applied; pointers distinguish "absent"
// from zero values.
type UpdateSessionRequest struct {
	InputType        *string             `json:"input_type"`
	InputValue       *string             `json:"input_value"`
	ProcessedContent *string             `json:"processed_content"`
	GeneratedFaqs    *[]session.FAQ      `json:"generated_faqs"`
	ChatHistory      *[]session.ChatTurn `json:"chat_history"`
	ContextIsReady   *bool               `json:"context_is_ready"`
	ActiveNamespaces *[]string           `json:"active_namespaces"`
	Status           *session.Status     `json:"status"`
	Message          *string             `json:"message"`
}
