package bootstrap

import (
	"log"

	"github.com/Ntrakiyski/rag-chat-api/internal/config"
	"github.com/Ntrakiyski/rag-chat-api/internal/controller"
	"github.com/Ntrakiyski/rag-chat-api/internal/flow"
	"github.com/Ntrakiyski/rag-chat-api/internal/pkg/logger"
	"github.com/Ntrakiyski/rag-chat-api/internal/rag"
	"github.com/Ntrakiyski/rag-chat-api/internal/service"
	"github.com/Ntrakiyski/rag-chat-api/internal/session"
	"github.com/Ntrakiyski/rag-chat-api/pkg/content"
	"github.com/Ntrakiyski/rag-chat-api/pkg/database"
	"github.com/Ntrakiyski/rag-chat-api/pkg/embedding"
	"github.com/Ntrakiyski/rag-chat-api/pkg/embedding/jina"
	"github.com/Ntrakiyski/rag-chat-api/pkg/embedding/openai"
	"github.com/Ntrakiyski/rag-chat-api/pkg/llm/openrouter"
	"github.com/Ntrakiyski/rag-chat-api/pkg/taskqueue"
	"github.com/Ntrakiyski/rag-chat-api/pkg/vectorindex"
	"github.com/Ntrakiyski/rag-chat-api/pkg/vectorindex/postgres"
	"github.com/Ntrakiyski/rag-chat-api/pkg/vectorindex/qdrant"
	"github.com/Ntrakiyski/rag-chat-api/pkg/websearch"

	"github.com/ThreeDotsLabs/watermill"
)

type Container struct {
	// Controllers
	IngestController  controller.IIngestController
	ChatController    controller.IChatController
	FaqController     controller.IFaqController
	SessionController controller.ISessionController

	// Background Services (Exposed for main.go to run)
	WorkerService service.IWorkerService
}

func NewContainer(cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	taskLogger := logger.NewIsolatedLogger(cfg.App.TaskLogFilePath)

	// 2. Session Store
	var sessions session.Store
	if cfg.Session.Backend == "memory" {
		sessions = session.NewMemoryStore(cfg.Session.TTL)
		log.Printf("[INFO] Using Session Store: MEMORY")
	} else {
		redisStore, err := session.NewRedisStore(cfg.Session.RedisURL, cfg.Session.TTL)
		if err != nil {
			log.Fatalf("[FATAL] Failed to connect to Redis session store: %v", err)
		}
		sessions = redisStore
		log.Printf("[INFO] Using Session Store: REDIS")
	}

	// 3. Vector Index
	var index vectorindex.Index
	if cfg.Vector.Backend == "postgres" || cfg.Vector.Backend == "pgvector" {
		gormDB, err := database.NewGormDBFromDSN(cfg.Vector.PostgresDSN)
		if err != nil {
			log.Fatalf("[FATAL] Failed to connect to Postgres vector store: %v", err)
		}
		pgIndex, err := postgres.NewPgIndex(gormDB)
		if err != nil {
			log.Fatalf("[FATAL] Failed to initialize pgvector index: %v", err)
		}
		index = pgIndex
		log.Printf("[INFO] Using Vector Index: POSTGRES (pgvector)")
	} else {
		index = qdrant.NewQdrantIndex(cfg.Vector.QdrantURL, cfg.Vector.QdrantAPIKey, cfg.Vector.Timeout)
		log.Printf("[INFO] Using Vector Index: QDRANT (%s)", cfg.Vector.QdrantURL)
	}

	// 4. AI Providers
	var embedder embedding.Provider
	if cfg.Ai.EmbeddingProvider == "jina" {
		embedder = jina.NewJinaProvider(cfg.Keys.Jina)
		log.Printf("[INFO] Using Embedding Provider: JINA AI")
	} else {
		embedder = openai.NewOpenAIProvider(cfg.Keys.OpenAI, cfg.Ai.EmbeddingModel)
		log.Printf("[INFO] Using Embedding Provider: OPENAI (%s)", cfg.Ai.EmbeddingModel)
	}

	chatLLM := openrouter.NewOpenRouterProvider(cfg.Keys.OpenRouter, cfg.Ai.LLMModel)
	log.Printf("[INFO] Using LLM: OPENROUTER (%s)", cfg.Ai.LLMModel)

	// Web search runs through an online model on the same gateway.
	searchLLM := openrouter.NewOpenRouterProvider(cfg.Keys.OpenRouter, cfg.Ai.WebSearchModel)
	searcher := websearch.NewLLMSearcher(searchLLM)

	crawler := content.NewFirecrawlCrawler(cfg.Keys.Firecrawl)
	extractor := content.NewLlamaParseExtractor(cfg.Keys.LlamaCloud)

	// 5. Task Queue
	var queue taskqueue.Queue
	if cfg.Tasks.Backend == "nats" {
		natsQueue, err := taskqueue.NewNatsQueue(cfg.Tasks.NatsURL)
		if err != nil {
			log.Fatalf("[FATAL] Failed to connect to NATS: %v", err)
		}
		queue = natsQueue
		log.Printf("[INFO] Using Task Queue: NATS (%s)", cfg.Tasks.NatsURL)
	} else {
		queue = taskqueue.NewChannelQueue(watermill.NewStdLogger(false, false))
		log.Printf("[INFO] Using Task Queue: IN-PROCESS CHANNEL")
	}

	// 6. RAG Components
	chunker := rag.NewChunker(cfg.Ai.ChunkSize, cfg.Ai.ChunkOverlap)
	indexer := rag.NewIndexer(sessions, index, embedder, chunker, cfg.Vector.Dimension, taskLogger)
	pipeline := rag.NewPipeline(index, embedder, chatLLM, searcher, cfg.Ai.TopKPerNamespace, sysLogger)
	faqGenerator := rag.NewFaqGenerator(chatLLM, embedder, indexer, cfg.Ai.NumFAQs, taskLogger)

	// 7. Flows
	inputNode := flow.NewInputNode(sessions, taskLogger)
	contentNode := flow.NewContentNode(sessions, crawler, extractor, indexer, cfg.Ai.MaxCrawlPages, taskLogger)
	faqNode := flow.NewFaqNode(sessions, faqGenerator, taskLogger)
	endNode := flow.NewEndNode(taskLogger)

	engine := flow.NewEngine(taskLogger)
	ingestionFlow := flow.NewIngestionFlow(inputNode, contentNode, endNode)
	faqFlow := flow.NewFaqFlow(faqNode, endNode)

	// 8. Services
	ingestPublisher := service.NewPublisherService(cfg.Tasks.IngestTopic, queue, sysLogger)
	faqPublisher := service.NewPublisherService(cfg.Tasks.FaqTopic, queue, sysLogger)

	ingestionService := service.NewIngestionService(sessions, ingestPublisher, sysLogger)
	chatService := service.NewChatService(sessions, pipeline, sysLogger)
	faqService := service.NewFaqService(sessions, faqPublisher, sysLogger)
	sessionService := service.NewSessionService(sessions, sysLogger)

	workerService := service.NewWorkerService(cfg, queue, sessions, engine, ingestionFlow, faqFlow, taskLogger)

	// 9. Controllers
	return &Container{
		IngestController:  controller.NewIngestController(ingestionService),
		ChatController:    controller.NewChatController(chatService),
		FaqController:     controller.NewFaqController(faqService),
		SessionController: controller.NewSessionController(sessionService),

		WorkerService: workerService,
	}
}
