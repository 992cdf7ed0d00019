package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/yourusername/dermora-assistant/config"
	"github.com/yourusername/dermora-assistant/internal/domain/entity"
	"github.com/yourusername/dermora-assistant/internal/domain/repository"
	"github.com/yourusername/dermora-assistant/internal/infrastructure/gemini"
	"github.com/yourusername/dermora-assistant/internal/infrastructure/knowledge"
	"github.com/yourusername/dermora-assistant/internal/infrastructure/metrics"
	"github.com/yourusername/dermora-assistant/internal/infrastructure/parser"
	"github.com/yourusername/dermora-assistant/internal/infrastructure/storage"
	"github.com/yourusername/dermora-assistant/internal/usecase"
)

// app every use case plus the cleanups of what backs them
type app struct {
	chat        usecase.ChatUseCase
	quiz        usecase.QuizUseCase
	routine     usecase.RoutineUseCase
	leaderboard usecase.LeaderboardUseCase
	resolver    *usecase.Resolver
	metrics     *metrics.Recorder

	logger  *zap.Logger
	closers []func() error
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("cleanup failed", zap.Error(err))
		}
	}
}

func buildApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	a := &app{logger: logger}

	ai := buildAI(cfg, logger)
	if closer, ok := ai.(interface{ Close() error }); ok {
		a.closers = append(a.closers, closer.Close)
	}
	if cfg.GeminiAPIKey == "" {
		logger.Warn("GEMINI_API_KEY is not set; questions without a canned reply will get a configuration notice")
	}

	rules, err := loadRules(ctx, cfg, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	chatRepo, err := buildChatStore(cfg, a)
	if err != nil {
		a.Close()
		return nil, err
	}
	sessions := storage.NewMemorySessionRepository()

	a.metrics = metrics.NewRecorder()
	a.resolver = usecase.NewResolver(ai, rules, logger)
	a.resolver.SetObserver(a.metrics)
	if err := attachKnowledge(ctx, cfg, ai, a, logger); err != nil {
		a.Close()
		return nil, err
	}
	a.chat = usecase.NewChatUseCase(a.resolver, chatRepo, sessions, logger, cfg.GeminiTimeout)
	a.quiz = usecase.NewQuizUseCase(sessions)
	a.routine = usecase.NewRoutineUseCase(sessions)
	a.leaderboard = usecase.NewLeaderboardUseCase(storage.NewMemoryLeaderboardRepository(storage.SeedLeaderboard()))
	return a, nil
}

func geminiConfig(cfg *config.Config) gemini.Config {
	gcfg := gemini.DefaultConfig(cfg.GeminiAPIKey)
	gcfg.Model = cfg.GeminiModel
	gcfg.EmbeddingModel = cfg.GeminiEmbeddingModel
	gcfg.BaseURL = cfg.GeminiBaseURL
	gcfg.Timeout = cfg.GeminiTimeout
	return gcfg
}

func buildAI(cfg *config.Config, logger *zap.Logger) repository.AIRepository {
	if cfg.GeminiBackend == config.BackendSDK {
		return gemini.NewSDKClient(geminiConfig(cfg), logger)
	}
	return gemini.NewClient(geminiConfig(cfg), logger)
}

// attachKnowledge indexes KNOWLEDGE_FILE and grounds remote prompts in it.
// Embeddings always go through the SDK; the SDK answer backend is reused.
func attachKnowledge(ctx context.Context, cfg *config.Config, ai repository.AIRepository, a *app, logger *zap.Logger) error {
	if cfg.KnowledgeFile == "" {
		return nil
	}
	if cfg.GeminiAPIKey == "" {
		logger.Warn("KNOWLEDGE_FILE ignored: GEMINI_API_KEY is not set")
		return nil
	}

	embedder, ok := ai.(repository.Embedder)
	if !ok {
		sdk := gemini.NewSDKClient(geminiConfig(cfg), logger)
		a.closers = append(a.closers, sdk.Close)
		embedder = sdk
	}

	ix, err := knowledge.LoadFile(ctx, cfg.KnowledgeFile, embedder, logger)
	if err != nil {
		return fmt.Errorf("failed to index knowledge guide: %w", err)
	}
	a.resolver.SetKnowledge(ix)
	logger.Info("knowledge guide loaded", zap.String("file", cfg.KnowledgeFile), zap.Int("chunks", ix.Len()))
	return nil
}

func loadRules(ctx context.Context, cfg *config.Config, logger *zap.Logger) ([]entity.KeywordRule, error) {
	if cfg.RulesFile == "" {
		return entity.DefaultKeywordRules(), nil
	}

	rules, err := parser.NewRulesParser(logger).LoadRules(ctx, cfg.RulesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load keyword rules: %w", err)
	}
	logger.Info("keyword rules loaded", zap.String("file", cfg.RulesFile), zap.Int("count", len(rules)))
	return rules, nil
}

func buildChatStore(cfg *config.Config, a *app) (repository.ChatRepository, error) {
	if cfg.ChatStore != config.StoreSQLite {
		return storage.NewMemoryChatRepository(cfg.MaxHistory), nil
	}

	repo, err := storage.NewSQLiteChatRepository(cfg.ChatDBPath, cfg.MaxHistory)
	if err != nil {
		return nil, fmt.Errorf("failed to open chat store: %w", err)
	}
	a.closers = append(a.closers, repo.Close)
	return repo, nil
}
