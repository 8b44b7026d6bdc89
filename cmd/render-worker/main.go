package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aescanero/dago-node-render/internal/config"
	"github.com/aescanero/dago-node-render/internal/eval/cel"
	"github.com/aescanero/dago-node-render/internal/eval/template"
	"github.com/aescanero/dago-node-render/internal/processors"
	"github.com/aescanero/dago-node-render/internal/render"
	"github.com/aescanero/dago-node-render/internal/worker"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Version is set at build time
	Version = "dev"
	// BuildTime is set at build time
	BuildTime = "unknown"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := initLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting render worker",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("worker_id", cfg.WorkerID),
	)

	// Log configuration (without sensitive data)
	logger.Info("configuration loaded", zap.String("config", cfg.String()))

	// Load templates
	engine := template.NewEngine(logger)
	if err := loadTemplates(engine, cfg, logger); err != nil {
		logger.Fatal("failed to load templates",
			zap.String("dir", cfg.TemplateDir),
			zap.Error(err),
		)
	}

	// Build the post-processor chain
	postProcessors, err := initPostProcessors(cfg, engine, logger)
	if err != nil {
		logger.Fatal("failed to build post-processors", zap.Error(err))
	}
	logger.Info("post-processors configured", zap.Int("count", len(postProcessors)))

	adapter := render.New(render.Options{
		Engine:         engine,
		Logger:         logger,
		PostProcessors: postProcessors,
	})

	// Initialize Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	// Test Redis connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	logger.Info("connected to redis", zap.String("addr", cfg.RedisAddr))

	// Initialize worker
	w := worker.NewWorker(cfg, redisClient, adapter, engine, logger)

	// Start worker
	if err := w.Start(); err != nil {
		logger.Fatal("failed to start worker", zap.Error(err))
	}

	// Start health server
	healthServer := worker.NewHealthServer(cfg.HealthPort, redisClient, engine, logger)
	if err := healthServer.Start(); err != nil {
		logger.Fatal("failed to start health server", zap.Error(err))
	}

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	logger.Info("render worker running, press Ctrl+C to stop")
	<-sigChan

	logger.Info("shutdown signal received, stopping worker")

	// Stop health server
	if err := healthServer.Stop(); err != nil {
		logger.Error("failed to stop health server", zap.Error(err))
	}

	// Stop worker
	if err := w.Stop(); err != nil {
		logger.Error("failed to stop worker", zap.Error(err))
	}

	// Close Redis connection
	if err := redisClient.Close(); err != nil {
		logger.Error("failed to close redis connection", zap.Error(err))
	}

	logger.Info("worker stopped gracefully")
}

// initLogger initializes the logger
func initLogger(level string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return config.Build()
}

// loadTemplates registers the templates under TEMPLATE_DIR. An unset or
// missing directory leaves the engine empty; inline sources still render.
func loadTemplates(engine *template.Engine, cfg *config.Config, logger *zap.Logger) error {
	if cfg.TemplateDir == "" {
		logger.Info("no template directory configured, serving inline sources only")
		return nil
	}

	err := engine.LoadDir(cfg.TemplateDir, cfg.TemplateExt)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Warn("template directory not found, serving inline sources only",
			zap.String("dir", cfg.TemplateDir),
		)
		return nil
	}
	return err
}

// initPostProcessors builds the chain from PIPELINE_FILE, falling back to
// the POST_PROCESSORS list
func initPostProcessors(cfg *config.Config, engine *template.Engine, logger *zap.Logger) ([]render.Processor, error) {
	specs := processors.FromNames(cfg.PostProcessors)
	if cfg.PipelineFile != "" {
		pipeline, err := processors.LoadPipeline(cfg.PipelineFile)
		if err != nil {
			return nil, err
		}
		specs = pipeline.PostProcessors
	}

	return processors.Build(specs, processors.Deps{
		Engine:    engine,
		Evaluator: cel.NewEvaluator(),
		Logger:    logger,
	})
}
