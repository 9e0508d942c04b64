package main

import (
	"fmt"

	"github.com/Ntrakiyski/rag-chat-api/internal/config"
)

// Prints the effective configuration after env resolution. Handy when a
// deployment hits the wrong backend and nobody knows which variable won.
func main() {
	fmt.Println("=== Effective Configuration ===")

	cfg := config.Load()

	fmt.Println("\n[App]")
	fmt.Printf("  Port:               %s\n", cfg.App.Port)
	fmt.Printf("  Environment:        %s\n", cfg.App.Environment)
	fmt.Printf("  LogFilePath:        %s\n", cfg.App.LogFilePath)
	fmt.Printf("  TaskLogFilePath:    %s\n", cfg.App.TaskLogFilePath)
	fmt.Printf("  CorsAllowedOrigins: %s\n", cfg.App.CorsAllowedOrigins)

	fmt.Println("\n[Session]")
	fmt.Printf("  Backend:  %s\n", cfg.Session.Backend)
	fmt.Printf("  RedisURL: %s\n", cfg.Session.RedisURL)
	fmt.Printf("  TTL:      %s\n", cfg.Session.TTL)

	fmt.Println("\n[Vector]")
	fmt.Printf("  Backend:     %s\n", cfg.Vector.Backend)
	fmt.Printf("  QdrantURL:   %s\n", cfg.Vector.QdrantURL)
	fmt.Printf("  PostgresDSN: %s\n", mask(cfg.Vector.PostgresDSN))
	fmt.Printf("  Dimension:   %d\n", cfg.Vector.Dimension)
	fmt.Printf("  Timeout:     %s\n", cfg.Vector.Timeout)

	fmt.Println("\n[Tasks]")
	fmt.Printf("  Backend:        %s\n", cfg.Tasks.Backend)
	fmt.Printf("  NatsURL:        %s\n", cfg.Tasks.NatsURL)
	fmt.Printf("  IngestTopic:    %s\n", cfg.Tasks.IngestTopic)
	fmt.Printf("  FaqTopic:       %s\n", cfg.Tasks.FaqTopic)
	fmt.Printf("  FaqMaxAttempts: %d\n", cfg.Tasks.FaqMaxAttempts)
	fmt.Printf("  FaqRetryDelay:  %s\n", cfg.Tasks.FaqRetryDelay)

	fmt.Println("\n[AI]")
	fmt.Printf("  LLMModel:          %s\n", cfg.Ai.LLMModel)
	fmt.Printf("  WebSearchModel:    %s\n", cfg.Ai.WebSearchModel)
	fmt.Printf("  EmbeddingProvider: %s\n", cfg.Ai.EmbeddingProvider)
	fmt.Printf("  EmbeddingModel:    %s\n", cfg.Ai.EmbeddingModel)
	fmt.Printf("  ChunkSize:         %d\n", cfg.Ai.ChunkSize)
	fmt.Printf("  ChunkOverlap:      %d\n", cfg.Ai.ChunkOverlap)
	fmt.Printf("  TopKPerNamespace:  %d\n", cfg.Ai.TopKPerNamespace)
	fmt.Printf("  NumFAQs:           %d\n", cfg.Ai.NumFAQs)
	fmt.Printf("  MaxCrawlPages:     %d\n", cfg.Ai.MaxCrawlPages)

	fmt.Println("\n[Keys]")
	fmt.Printf("  OpenRouter: %s\n", mask(cfg.Keys.OpenRouter))
	fmt.Printf("  OpenAI:     %s\n", mask(cfg.Keys.OpenAI))
	fmt.Printf("  Jina:       %s\n", mask(cfg.Keys.Jina))
	fmt.Printf("  Firecrawl:  %s\n", mask(cfg.Keys.Firecrawl))
	fmt.Printf("  LlamaCloud: %s\n", mask(cfg.Keys.LlamaCloud))
}

func mask(secret string) string {
	if secret == "" {
		return "(not set)"
	}
	if len(secret) <= 8 {
		return "********"
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}
