package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/SohamB4746Y/ja-assure-rag/internal/config"
	"github.com/SohamB4746Y/ja-assure-rag/internal/core/usecase"
	"github.com/SohamB4746Y/ja-assure-rag/internal/infrastructure/ingest/excel"
	"github.com/SohamB4746Y/ja-assure-rag/internal/infrastructure/llm/ollama"
	"github.com/SohamB4746Y/ja-assure-rag/internal/infrastructure/qa"
	"github.com/SohamB4746Y/ja-assure-rag/internal/infrastructure/queue/nats"
	"github.com/SohamB4746Y/ja-assure-rag/internal/infrastructure/repository/postgres"
	"github.com/SohamB4746Y/ja-assure-rag/internal/infrastructure/resilience"
	"github.com/SohamB4746Y/ja-assure-rag/internal/infrastructure/vector/qdrant"
)

type App struct {
	Config config.Config

	Queue   *nats.Queue
	Engine  *usecase.ResolveEngine
	Rebuild *usecase.RebuildUseCase

	loader *excel.Loader

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	turns := postgres.NewTurnRepository(db)
	if err := turns.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	ollamaClient := ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, cfg.OllamaEmbedModel)
	ollamaClient.SetResilienceExecutor(executor)
	embedder := ollama.NewEmbedder(ollamaClient)
	generator := ollama.NewGenerator(ollamaClient)
	extractor := ollama.NewIntentExtractor(ollamaClient)

	vectorDB := qdrant.New(cfg.QdrantURL, cfg.QdrantCollection)
	loader := excel.NewLoader(cfg.ExcelPath, cfg.ExcelSheet)

	entries, err := qa.LoadEntries(cfg.PredefinedQAPath)
	if err != nil {
		// A missing curated table only disables the first strategy; anything
		// else is a broken deployment.
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load predefined qa: %w", err)
		}
		slog.Warn("predefined_qa_missing", "path", cfg.PredefinedQAPath)
		entries = nil
	}

	formatter := usecase.NewFormatter()
	llmTimeout := time.Duration(cfg.LLMTimeoutSeconds) * time.Second
	retrieveTimeout := time.Duration(cfg.RetrieveTimeoutSeconds) * time.Second

	engine := usecase.NewResolveEngine(
		usecase.NewPredefinedMatcher(entries),
		usecase.NewAnalyticalResolver(formatter),
		usecase.NewStructuredLookup(formatter),
		usecase.NewIntentParser(extractor, cfg.HistoryWindow),
		usecase.NewIntentExecutor(formatter),
		usecase.NewSemanticRetriever(
			embedder,
			vectorDB,
			generator,
			formatter,
			cfg.SemanticScoreThreshold,
			cfg.SemanticTopK,
			retrieveTimeout,
			llmTimeout,
		),
		formatter,
		turns,
		cfg.HistoryWindow,
		llmTimeout,
	)

	rebuild := usecase.NewRebuildUseCase(loader, embedder, vectorDB)

	return &App{
		Config:  cfg,
		Queue:   queue,
		Engine:  engine,
		Rebuild: rebuild,
		loader:  loader,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

// LoadSnapshot reads the corpus and installs it on the engine. The api calls
// this once at startup; a load failure there is fatal because every strategy
// depends on the snapshot.
func (a *App) LoadSnapshot(ctx context.Context) error {
	snap, err := a.loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("load corpus: %w", err)
	}
	a.Engine.SetSnapshot(snap)
	slog.Info("corpus_loaded",
		"records", len(snap.Records),
		"blocks", len(snap.Blocks),
		"sections", len(snap.Schemas),
	)
	return nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
