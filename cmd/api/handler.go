package api

import (
	"log"

	enrichDelivery "inbox-organizer-backend/internal/enrichment/delivery"
	enrichRepo "inbox-organizer-backend/internal/enrichment/repository"
	enrichUsecasePkg "inbox-organizer-backend/internal/enrichment/usecase"
	ingestUsecasePkg "inbox-organizer-backend/internal/ingest/usecase"
	"inbox-organizer-backend/pkg/ai"
	"inbox-organizer-backend/pkg/config"
	"inbox-organizer-backend/pkg/gemini"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	config       *config.Config
	inboxHandler *enrichDelivery.InboxHandler
	enrichWorker *enrichUsecasePkg.EnrichWorkerService
}

func NewHandler(ingestUc ingestUsecasePkg.IngestUsecase, enrichmentRepo enrichRepo.EnrichmentRepository, cfg *config.Config) *Handler {
	// Initialize runtime config for settings API
	InitRuntimeConfig(cfg.OllamaBaseURL, cfg.OllamaModel)

	aiService := buildAIService(cfg)

	enrichWorker := enrichUsecasePkg.NewEnrichWorkerService(enrichmentRepo, ingestUc, cfg.EnrichWorkers)
	if aiService != nil {
		enrichWorker.SetAIService(aiService)
	}
	enrichWorker.Start()

	inboxHandler := enrichDelivery.NewInboxHandler(ingestUc, enrichmentRepo, enrichWorker)

	return &Handler{
		config:       cfg,
		inboxHandler: inboxHandler,
		enrichWorker: enrichWorker,
	}
}

// buildAIService assembles the enrichment provider from config. Ollama
// settings are read through the runtime getters so the settings API can
// repoint a running server.
func buildAIService(cfg *config.Config) ai.EnrichmentService {
	ollama := ai.NewOllamaServiceWithGetters(GetRuntimeOllamaBaseURL, GetRuntimeOllamaModel)

	switch ai.ProviderType(cfg.AIProvider) {
	case ai.ProviderGemini:
		if cfg.GeminiApiKey == "" {
			log.Println("[AI] GEMINI_API_KEY not set, enrichment disabled")
			return nil
		}
		log.Println("[AI] Using Gemini provider")
		return gemini.NewGeminiService(cfg.GeminiApiKey)
	case ai.ProviderOllama:
		log.Println("[AI] Using Ollama provider")
		return ollama
	default:
		if cfg.GeminiApiKey == "" {
			log.Println("[AI] No Gemini key configured, using Ollama only")
			return ollama
		}
		log.Println("[AI] Using Gemini with Ollama fallback")
		return ai.NewFallbackService(gemini.NewGeminiService(cfg.GeminiApiKey), ollama)
	}
}

// EnrichWorker exposes the worker for graceful shutdown.
func (h *Handler) EnrichWorker() *enrichUsecasePkg.EnrichWorkerService {
	return h.enrichWorker
}

func (h *Handler) Start(addr string) error {
	r := gin.Default()
	gin.SetMode(gin.ReleaseMode)

	// CORS middleware
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	SetupRoutes(r, h.inboxHandler)

	return r.Run(addr)
}
