package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/config"
	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/core"
	db "github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/core/database"
	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/core/ingestion_engine"
	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/core/llm"
	objectclient "github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/core/object-client"
	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/core/ocr"
	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/core/retrieval"
	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/models"
	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/services"
)

// App holds every long-lived component built from the configuration.
type App struct {
	Config    *config.Config
	DBClient  *db.DatabaseClient
	Objects   *objectclient.S3Client
	Ingestor  *ingestion_engine.DocumentIngestor
	Ingest    *services.IngestService
	Documents *services.DocumentService
	Search    *retrieval.Engine
	Log       *slog.Logger

	closers []func() error
}

func NewApp(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	a := &App{Config: cfg, Log: log}

	dbClient, err := db.NewDatabaseClient(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	a.DBClient = dbClient
	a.closers = append(a.closers, dbClient.Close)
	log.Info("database initialized and ready")

	var objects core.ObjectClient
	if s3Client, err := objectclient.NewS3Client(appCtx, cfg); err != nil {
		log.Warn("object storage disabled", "error", err)
	} else {
		a.Objects, objects = s3Client, s3Client
		log.Info("object client initialized", "bucket", s3Client.Bucket())
	}

	var sidecar *llm.SidecarClient
	if cfg.SidecarURL != "" {
		sidecar = llm.NewSidecarClient(cfg.SidecarURL, cfg.EmbedRPS, nil).WithDimension(cfg.FullDim)
		if err := sidecar.Health(appCtx); err != nil {
			log.Warn("sidecar health check failed", "url", cfg.SidecarURL, "error", err)
		}
	}

	var embedder core.EmbeddingProvider
	switch cfg.EmbedProvider {
	case "sidecar":
		embedder = sidecar
	case "gemini":
		gemini, err := llm.NewGeminiEmbedder(appCtx, cfg.AIAPIKey, cfg.EmbedModel)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("couldn't initialize the embedder, %w", err)
		}
		a.closers = append(a.closers, gemini.Close)
		embedder = gemini
	default:
		a.Close()
		return nil, fmt.Errorf("unknown EMBED_PROVIDER %q", cfg.EmbedProvider)
	}

	var vision *llm.GeminiVision
	if cfg.AIAPIKey != "" {
		vision, err = llm.NewGeminiVision(appCtx, cfg.AIAPIKey, cfg.VisionModel)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("couldn't initialize the vision model, %w", err)
		}
		a.closers = append(a.closers, vision.Close)
	}

	renderer := ocr.NewPdftoppmRenderer(cfg.PdftoppmBin)
	registry := ocr.Registry{}.
		Register(models.ProviderNative, ocr.NewNativeAdapter(false)).
		Register(models.ProviderTesseract, ocr.NewTesseractAdapter(cfg.TesseractBin, renderer))
	if cfg.AzureEndpoint != "" {
		azure, err := ocr.NewAzureAdapter(ocr.AzureConfig{
			Endpoint:     cfg.AzureEndpoint,
			Key:          cfg.AzureKey,
			PollInterval: cfg.AzurePollInterval,
			Timeout:      cfg.AzureTimeout,
		}, &http.Client{Timeout: time.Minute})
		if err != nil {
			a.Close()
			return nil, err
		}
		registry.Register(models.ProviderAzure, azure)
	}

	var (
		classifier core.VisionClassifier
		describer  core.VisionDescriber
	)
	if vision != nil {
		classifier, describer = vision, vision
		registry.Register(models.ProviderGemini, ocr.NewGeminiAdapter(vision))
	}
	log.Info("normalization adapters registered", "providers", registry.Providers())

	chunker, err := ingestion_engine.NewChunker(ingestion_engine.ChunkerConfig{
		ParentTokens:      cfg.ParentTokens,
		ChildTokens:       cfg.ChildTokens,
		ChildOverlap:      cfg.ChildOverlap,
		IncludePageHeader: cfg.IncludePageHeader,
		Strategy:          ingestion_engine.Strategy(cfg.ChunkStrategy),
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	vectorizer := ingestion_engine.NewVectorizer(embedder, ingestion_engine.VectorizerConfig{
		BatchSize:         cfg.EmbedBatchSize,
		MaxConcurrency:    cfg.EmbedConcurrency,
		RequestsPerSecond: cfg.EmbedRPS,
		FullDim:           cfg.FullDim,
		ShortDim:          cfg.ShortDim,
	}, ingestion_engine.Strategy(cfg.ChunkStrategy), log.With("component", "vectorizer"))
	enricher := ingestion_engine.NewEnricher(renderer, describer, ingestion_engine.EnrichmentConfig{
		Enabled:             cfg.EnrichEnabled,
		MaxPages:            cfg.EnrichMaxPages,
		ConfidenceThreshold: cfg.EnrichThreshold,
	}, log.With("component", "enrichment"))

	deps := ingestion_engine.Deps{
		Store:       dbClient,
		Fetcher:     objectclient.NewFetcher(objects, nil),
		Router:      ocr.NewRouter(classifier, renderer, ocr.RouterConfig{NativeMinCharsPerPage: cfg.NativeMinCharsPerPage}, log.With("component", "router")),
		Normalizers: registry,
		Enricher:    enricher,
		Chunker:     chunker,
		Vectorizer:  vectorizer,
		Logger:      log.With("component", "ingestor"),
	}
	if sidecar != nil {
		deps.Entities = sidecar
	}
	a.Ingestor, err = ingestion_engine.NewDocumentIngestor(deps, cfg.QueueSize)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Ingest = services.NewIngestService(dbClient, a.Ingestor, log.With("component", "ingest"))
	if objects != nil {
		a.Documents = services.NewDocumentService(objects, cfg.BucketName, a.Ingest)
	}

	var reranker core.Reranker
	if cfg.RerankEnabled && sidecar != nil {
		reranker = sidecar
	}
	a.Search = retrieval.NewEngine(dbClient, embedder, reranker, retrieval.Options{
		FullDim:             cfg.FullDim,
		ShortDim:            cfg.ShortDim,
		CandidateMultiplier: cfg.CandidateMultiplier,
		DefaultTopK:         cfg.DefaultTopK,
		Weights:             retrieval.Weights{BM25: cfg.BM25Weight, Vector: cfg.VectorWeight},
		MinSimilarity:       cfg.MinSimilarity,
		Rerank:              reranker != nil,
	}, log.With("component", "retrieval"))

	return a, nil
}

// Close releases clients in reverse order of creation.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.Log.Warn("close failed", "error", err)
		}
	}
	a.closers = nil
}
