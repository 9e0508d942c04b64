package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App     AppConfig
	Session SessionConfig
	Vector  VectorConfig
	Tasks   TasksConfig
	Keys    APIKeys
	Ai      AIConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	TaskLogFilePath    string
	CorsAllowedOrigins string
}

type SessionConfig struct {
	Backend  string // "redis" or "memory"
	RedisURL string
	TTL      time.Duration
}

type VectorConfig struct {
	Backend      string // "qdrant" or "pgvector"
	QdrantURL    string
	QdrantAPIKey string
	PostgresDSN  string
	Dimension    int
	Timeout      time.Duration
}

type TasksConfig struct {
	Backend        string // "channel" or "nats"
	NatsURL        string
	IngestTopic    string
	FaqTopic       string
	FaqMaxAttempts int
	FaqRetryDelay  time.Duration
}

type APIKeys struct {
	OpenRouter string
	OpenAI     string
	Jina       string
	Firecrawl  string
	LlamaCloud string
}

type AIConfig struct {
	LLMModel          string // chat completions, e.g. "openai/gpt-4o-mini"
	WebSearchModel    string // online model used for web search fallback
	EmbeddingProvider string // "openai" or "jina"
	EmbeddingModel    string
	ChunkSize         int
	ChunkOverlap      int
	TopKPerNamespace  int
	NumFAQs           int
	MaxCrawlPages     int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:8000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			TaskLogFilePath:    getEnv("TASK_LOG_FILE_PATH", "logs/tasks.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://127.0.0.1:3000"),
		},
		Session: SessionConfig{
			Backend:  getEnv("SESSION_BACKEND", "redis"),
			RedisURL: getEnv("SESSION_DB_URL", "redis://localhost:6379/0"),
			TTL:      time.Duration(getEnvAsInt("SESSION_TTL_HOURS", 24)) * time.Hour,
		},
		Vector: VectorConfig{
			Backend:      getEnv("VECTOR_BACKEND", "qdrant"),
			QdrantURL:    getEnv("QDRANT_HOST", "http://localhost:6333"),
			QdrantAPIKey: getEnv("QDRANT_API_KEY", ""),
			PostgresDSN:  getEnv("VECTOR_DB_CONNECTION_STRING", ""),
			Dimension:    getEnvAsInt("EMBEDDING_MODEL_DIMENSION", 1536),
			Timeout:      time.Duration(getEnvAsInt("VECTOR_TIMEOUT_SECONDS", 60)) * time.Second,
		},
		Tasks: TasksConfig{
			Backend:        getEnv("TASK_BACKEND", "channel"),
			NatsURL:        getEnv("NATS_URL", "nats://localhost:4222"),
			IngestTopic:    getEnv("INGEST_CONTENT_TOPIC_NAME", "INGEST_CONTENT"),
			FaqTopic:       getEnv("GENERATE_FAQ_TOPIC_NAME", "GENERATE_FAQ"),
			FaqMaxAttempts: getEnvAsInt("FAQ_MAX_ATTEMPTS", 3),
			FaqRetryDelay:  time.Duration(getEnvAsInt("FAQ_RETRY_DELAY_SECONDS", 60)) * time.Second,
		},
		Keys: APIKeys{
			OpenRouter: getEnv("OPENROUTER_API_KEY", ""),
			OpenAI:     getEnv("OPENAI_API_KEY", ""),
			Jina:       getEnv("JINA_API_KEY", ""),
			Firecrawl:  getEnv("FIRECRAWL_API_KEY", ""),
			LlamaCloud: getEnv("LLAMA_CLOUD_API_KEY", ""),
		},
		Ai: AIConfig{
			LLMModel:          getEnv("OPENROUTER_MODEL", "openai/gpt-4o-mini"),
			WebSearchModel:    getEnv("WEB_SEARCH_MODEL_DEFAULT", "perplexity/sonar-reasoning-pro"),
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "openai"),
			EmbeddingModel:    getEnv("EMBEDDING_MODEL_DEFAULT", "text-embedding-3-small"),
			ChunkSize:         getEnvAsInt("CHUNK_SIZE", 600),
			ChunkOverlap:      getEnvAsInt("CHUNK_OVERLAP", 128),
			TopKPerNamespace:  getEnvAsInt("RETRIEVAL_TOP_K", 3),
			NumFAQs:           getEnvAsInt("NUM_FAQS_TO_GENERATE", 5),
			MaxCrawlPages:     getEnvAsInt("MAX_CRAWL_PAGES", 1),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}
