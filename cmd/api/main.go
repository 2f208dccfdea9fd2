package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"creator-growth/internal/config"
	"creator-growth/internal/db"
	"creator-growth/internal/email"
	apihttp "creator-growth/internal/http"
	"creator-growth/internal/llm"
	"creator-growth/internal/pdf"
	"creator-growth/internal/repository"
	"creator-growth/internal/service"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	repos, closeRepos := openRepositories(ctx, cfg, logger)
	defer closeRepos()
	logger.Info("persistence ready", zap.String("backend", repos.Backend))

	providers := llm.ProvidersFromConfig(ctx, cfg, logger)
	if len(providers) == 0 {
		logger.Warn("no llm provider configured; /analyze will answer 503")
	}

	emailSender := email.NewDisabledSender("email sender not configured")
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS)
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			emailSender = sender
		}
	}

	reportStore := service.NewMemoryReportStore()
	limiter := service.NewMemoryRateLimiter(cfg.AnalyzeRateWindow, cfg.AnalyzeRateLimit)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			reportStore = service.NewRedisReportStore(redisClient)
			limiter = service.NewRedisRateLimiter(redisClient, cfg.AnalyzeRateWindow, cfg.AnalyzeRateLimit)
		}
		cancel()
	}
	if cfg.ReportSigningSecret == "dev-report-secret" {
		logger.Warn("report signing secret is the development default")
	}

	tokens := service.NewReportTokenService(cfg.ReportSigningSecret, cfg.ReportTTL)
	reports := service.NewReportService(reportStore, tokens, repos.Downloads, cfg.PublicBaseURL, logger)
	analysisSvc := service.NewAnalysisService(service.AnalysisDeps{
		Providers:    providers,
		Research:     service.NewResearchService(providers, cfg.ResearchTimeout, logger),
		Personalizer: service.NewPersonalizer(nil, nil),
		Narrative:    service.NewNarrativeWriter(providers, cfg.ResearchTimeout, logger),
		Renderer:     pdf.NewRenderer("Fame Score"),
		Reports:      reports,
		Quizzes:      repos.Quizzes,
		Email:        emailSender,
		Limiter:      limiter,
		Logger:       logger,
	})
	recordsSvc := service.NewRecordsService(repos, logger)

	analysisHandler := apihttp.NewAnalysisHandler(logger, analysisSvc, reports)
	recordsHandler := apihttp.NewRecordsHandler(logger, recordsSvc)
	router := apihttp.NewRouter(logger, analysisHandler, recordsHandler, cfg.AdminKeyHash)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("server shutdown", zap.Error(err))
		}
	}()

	logger.Info("starting server", zap.String("port", cfg.HTTPPort), zap.Int("llm_providers", len(providers)))

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server error", zap.Error(err))
	}
	analysisSvc.Wait()
}

// openRepositories elige Postgres, SQLite o memoria según la configuración.
func openRepositories(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.Set, func()) {
	switch {
	case cfg.DatabaseURL != "":
		pool, err := db.NewPool(ctx, cfg)
		if err != nil {
			logger.Fatal("db connect", zap.Error(err))
		}
		if err := db.Ping(ctx, pool); err != nil {
			logger.Fatal("db ping", zap.Error(err))
		}
		if err := db.EnsurePgSchema(ctx, pool); err != nil {
			logger.Fatal("db schema", zap.Error(err))
		}
		return repository.NewPgSet(pool), pool.Close
	case cfg.SQLitePath != "":
		sqlDB, err := db.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			logger.Fatal("sqlite open", zap.Error(err))
		}
		return repository.NewSQLiteSet(sqlDB), func() { _ = sqlDB.Close() }
	default:
		logger.Warn("no database configured; records are kept in memory")
		return repository.NewMemorySet(), func() {}
	}
}
