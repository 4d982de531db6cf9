package main

import (
	"context"
	"log"

	httpadapter "resume-studio/internal/adapter/http"
	"resume-studio/internal/config"
	"resume-studio/internal/engine"
	"resume-studio/internal/registry"
	"resume-studio/internal/render"
	"resume-studio/internal/store"
	"resume-studio/pkg/ai"
	infra "resume-studio/pkg/infrastructure"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	// infra setup; the service degrades gracefully without a database
	pool, err := infra.NewTemplatesPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Warn("templates DB not available, running memory-only", zap.Error(err))
		pool = nil
	}

	templateStore := store.NewTemplateStore(ctx, pool, logger)
	executor := engine.NewExecutor(logger)
	reg := registry.New(templateStore, executor, logger)
	host := render.NewHost(reg, logger)
	pdfRenderer := infra.NewChromedpRenderer(cfg.ChromePath)
	aiClient := ai.NewClient(cfg.AIBaseURL, logger)

	app := fiber.New()
	h := httpadapter.NewHandler(host, reg, templateStore, aiClient, pdfRenderer, logger)
	h.Register(app)

	logger.Info("listening", zap.String("port", cfg.Port))
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}
