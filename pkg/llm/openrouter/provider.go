package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Ntrakiyski/rag-chat-api/pkg/llm"
)

const (
	defaultBaseURL = "https://openrouter.ai/api/v1"

	// Returned instead of an empty string when the model produces no content.
	noContentFallback = "I'm sorry, I couldn't generate a response at this time."

	modelCacheTTL = 5 * time.Minute
)

type OpenRouterProvider struct {
	BaseURL   string
	APIKey    string
	ModelName string
	Client    *http.Client

	mu            sync.Mutex
	knownModels   map[string]struct{}
	modelsFetched time.Time
}

// Ensure OpenRouterProvider implements LLMProvider
var _ llm.LLMProvider = &OpenRouterProvider{}

func NewOpenRouterProvider(apiKey, modelName string) *OpenRouterProvider {
	return &OpenRouterProvider{
		BaseURL:   defaultBaseURL,
		APIKey:    apiKey,
		ModelName: modelName,
		Client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// --- Request/Response structs (Internal to this package) ---

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

type modelsResponse struct {
	Data []struct {
		Id string `json:"id"`
	} `json:"data"`
}

// --- Interface Implementation ---

func (p *OpenRouterProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	options := &llm.Options{}
	for _, opt := range opts {
		opt(options)
	}

	model := p.ModelName
	if options.Model != "" {
		model = options.Model
		// Only overrides are checked against the model catalog; the
		// configured default is trusted.
		if err := p.validateModel(ctx, model); err != nil {
			return "", err
		}
	}

	messages := make([]chatMessage, len(history))
	for i, msg := range history {
		role := msg.Role
		if role == "model" {
			role = "assistant"
		}
		messages[i] = chatMessage{Role: role, Content: msg.Content}
	}

	reqBody := chatRequest{
		Model:       model,
		Messages:    messages,
		Temperature: options.Temperature,
		MaxTokens:   options.MaxTokens,
	}
	if options.JSONResponse {
		reqBody.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.APIKey)

	resp, err := p.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call openrouter: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if isUnknownModelError(resp.StatusCode, bodyBytes) {
			return "", fmt.Errorf("%w: %s", llm.ErrInvalidModel, model)
		}
		return "", fmt.Errorf("openrouter error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(bodyBytes, &chatResp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if chatResp.Error != nil {
		if strings.Contains(chatResp.Error.Message, "not found") {
			return "", fmt.Errorf("%w: %s", llm.ErrInvalidModel, model)
		}
		return "", fmt.Errorf("openrouter error: %s", chatResp.Error.Message)
	}

	if len(chatResp.Choices) == 0 || chatResp.Choices[0].Message.Content == "" {
		return noContentFallback, nil
	}
	return chatResp.Choices[0].Message.Content, nil
}

func (p *OpenRouterProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	// Reuse Chat for simplicity as most new LLMs are chat-optimized
	return p.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

// validateModel checks the override against the provider's model list. The
// list is cached briefly so chat traffic does not hammer the catalog endpoint.
func (p *OpenRouterProvider) validateModel(ctx context.Context, model string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.knownModels == nil || time.Since(p.modelsFetched) > modelCacheTTL {
		models, err := p.fetchModels(ctx)
		if err != nil {
			return fmt.Errorf("list models: %w", err)
		}
		p.knownModels = models
		p.modelsFetched = time.Now()
	}

	if _, ok := p.knownModels[model]; !ok {
		return fmt.Errorf("%w: %s", llm.ErrInvalidModel, model)
	}
	return nil
}

func (p *OpenRouterProvider) fetchModels(ctx context.Context) (map[string]struct{}, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.BaseURL+"/models", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.APIKey)

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call openrouter: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openrouter error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var modelsResp modelsResponse
	if err := json.Unmarshal(bodyBytes, &modelsResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	models := make(map[string]struct{}, len(modelsResp.Data))
	for _, m := range modelsResp.Data {
		models[m.Id] = struct{}{}
	}
	return models, nil
}

func isUnknownModelError(status int, body []byte) bool {
	if status != http.StatusBadRequest && status != http.StatusNotFound {
		return false
	}
	text := strings.ToLower(string(body))
	return strings.Contains(text, "not a valid model") || strings.Contains(text, "no endpoints found") || strings.Contains(text, "not found")
}
