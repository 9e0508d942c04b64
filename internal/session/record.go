package session

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a chat session. Transitions are driven by
// the ingestion and FAQ flows plus the chat entrypoint; anything that fails
// lands on StatusError with the cause in Message.
type Status string

const (
	StatusProcessing    Status = "processing"
	StatusFaqProcessing Status = "faq_processing"
	StatusReady         Status = "ready"
	StatusError         Status = "error"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Resource points at where an answer came from: a vector namespace for
// indexed content, or "web_search" for the web fallback.
type Resource struct {
	Source      string `json:"source"`
	TextSnippet string `json:"text_snippet"`
}

type ChatTurn struct {
	Role      string     `json:"role"`
	Content   string     `json:"content"`
	Timestamp time.Time  `json:"timestamp"`
	Resources []Resource `json:"resources,omitempty"`
}

type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Record is the full state of one chat session. It is persisted as a single
// JSON document and always written whole: read, mutate, put.
type Record struct {
	UserSessionId    string     `json:"user_session_id"`
	InputType        string     `json:"input_type,omitempty"`
	InputValue       string     `json:"input_value,omitempty"`
	ProcessedContent string     `json:"processed_content,omitempty"`
	GeneratedFaqs    []FAQ      `json:"generated_faqs"`
	ChatHistory      []ChatTurn `json:"chat_history"`
	ContextIsReady   bool       `json:"context_is_ready"`
	ActiveNamespaces []string   `json:"active_namespaces"`
	Status           Status     `json:"status"`
	Message          string     `json:"message"`
}

func NewRecord(inputType, inputValue string) *Record {
	return &Record{
		UserSessionId:    uuid.NewString(),
		InputType:        inputType,
		InputValue:       inputValue,
		GeneratedFaqs:    []FAQ{},
		ChatHistory:      []ChatTurn{},
		ActiveNamespaces: []string{},
		Status:           StatusProcessing,
		Message:          "Session initialized.",
	}
}

func (r *Record) SetStatus(status Status, message string) {
	r.Status = status
	r.Message = message
}

// AppendTurn adds one entry to the chat history. resources may be nil for
// user turns and for answers that cite nothing.
func (r *Record) AppendTurn(role, content string, resources []Resource) {
	r.ChatHistory = append(r.ChatHistory, ChatTurn{
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
		Resources: resources,
	})
}

// AddNamespace registers a vector namespace for this session. The list is
// append-only and deduplicated; nothing ever removes an entry.
func (r *Record) AddNamespace(name string) {
	for _, existing := range r.ActiveNamespaces {
		if existing == name {
			return
		}
	}
	r.ActiveNamespaces = append(r.ActiveNamespaces, name)
}
