package main

import (
	"log"

	api "inbox-organizer-backend/cmd/api"
	enrichdomain "inbox-organizer-backend/internal/enrichment/domain"
	enrichRepo "inbox-organizer-backend/internal/enrichment/repository"
	ingestdomain "inbox-organizer-backend/internal/ingest/domain"
	ingestUsecase "inbox-organizer-backend/internal/ingest/usecase"
	"inbox-organizer-backend/pkg/config"
	"inbox-organizer-backend/pkg/database"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(&enrichdomain.Enrichment{}); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize repositories (dependency injection)
	enrichmentRepo := enrichRepo.NewEnrichmentRepository(db)

	// Initialize ingest usecase with explicit options
	opts := ingestdomain.Options{
		SourcePath:       cfg.CSVPath,
		MaxSubjectLen:    cfg.MaxSubjectLen,
		MaxBodyLen:       cfg.MaxBodyLen,
		TimestampDefault: cfg.TimestampDefault,
	}
	ingestUc := ingestUsecase.NewIngestUsecase(opts)

	// Initial ingest pass. A missing source is not fatal: the inbox can
	// be loaded later through POST /api/inbox/reload.
	if summary, err := ingestUc.Reload(); err != nil {
		log.Printf("[WARN] Initial ingest failed: %v", err)
	} else {
		log.Printf("Ingested %d emails (%d rejected)", summary.Accepted, summary.Rejected)
	}

	// Initialize HTTP handler (wires AI provider and enrichment workers)
	handler := api.NewHandler(ingestUc, enrichmentRepo, cfg)

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := handler.Start(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
