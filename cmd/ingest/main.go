package main

import (
	"context"
	"os/signal"
	"syscall"

	"anekdot-bot/internal/adapters/source"
	"anekdot-bot/internal/infra/config"
	applog "anekdot-bot/internal/infra/log"
	"anekdot-bot/internal/infra/storage"
	"anekdot-bot/internal/usecase/ingest"
	"anekdot-bot/internal/usecase/jokes"
)

// Разовый обход источников: удобно наполнять базу до запуска бота
// или проверять новый источник руками.
func main() {
	cfg := config.Load()
	logger := applog.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	docs := storage.NewDocuments(logger)
	jokeStore := jokes.NewStore(docs, cfg.Storage.JokesFile, logger)
	jokeStore.Load()

	fetcher := source.NewHTTPFetcher(cfg.Ingest.RequestTimeout)
	extractor := source.NewHTMLExtractor()
	svc := ingest.NewService(jokeStore, fetcher, extractor, cfg.Ingest.Sources, cfg.Ingest.PagesPerSource, cfg.Ingest.RequestTimeout, logger)

	added, err := svc.Run(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("обход прерван")
	}
	logger.Info().Int("new", len(added)).Int("total", jokeStore.Len()).Msg("обход завершён")
}
