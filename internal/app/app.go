package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/studymind-ai/docworker/internal/config"
	"github.com/studymind-ai/docworker/internal/core"
	db "github.com/studymind-ai/docworker/internal/core/database"
	"github.com/studymind-ai/docworker/internal/core/ingestion_engine"
	"github.com/studymind-ai/docworker/internal/core/llm"
	objectclient "github.com/studymind-ai/docworker/internal/core/object-client"
)

type App struct {
	DBClient core.DbClient
	Embedder *llm.GeminiEmbedder
	Server   *Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	startCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	dbClient, err := db.NewDatabaseClient(startCtx, cfg)
	if err != nil {
		return nil, err
	}
	log.Println("Database initialized and ready.")

	objClient, err := objectclient.NewS3Client(startCtx, cfg)
	if err != nil {
		return nil, err
	}
	log.Println("Object client initialized and ready.")

	embedder, err := llm.NewGeminiEmbedder(startCtx, cfg.AIAPIKey, cfg.EmbedModel, cfg.EmbedDim)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the embedder, %w", err)
	}

	extractor := ingestion_engine.NewDocconvExtractor()

	ingCfg := &ingestion_engine.IngestConfig{
		ChunkSize:    cfg.ChunkSize,
		ChunkOverlap: cfg.ChunkOverlap,
		EmbedWorkers: cfg.EmbedWorkers,
	}

	ingestor := ingestion_engine.NewDocumentIngestor(dbClient, objClient, embedder, extractor, cfg.BucketName, ingCfg)

	server := NewServer(cfg, dbClient, ingestor)

	return &App{DBClient: dbClient, Embedder: embedder, Server: server}, nil
}

func (a *App) Close() {
	if a.Embedder != nil {
		_ = a.Embedder.Close()
	}
	if a.DBClient != nil {
		_ = a.DBClient.Close()
	}
}
