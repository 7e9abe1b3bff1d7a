package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"anekdot-bot/internal/domain"
	"anekdot-bot/internal/infra/metrics"
)

// Service обходит источники и пополняет базу анекдотов.
// Обход деградирует мягко: сбой страницы или целого источника
// логируется и пропускается, прогон не прерывается.
type Service struct {
	store     domain.JokeStore
	fetcher   domain.Fetcher
	extractor domain.Extractor
	sources   []string
	pages     int
	timeout   time.Duration
	log       zerolog.Logger
}

// NewService создаёт сервис пополнения.
func NewService(store domain.JokeStore, fetcher domain.Fetcher, extractor domain.Extractor, sources []string, pagesPerSource int, requestTimeout time.Duration, logger zerolog.Logger) *Service {
	if pagesPerSource <= 0 {
		pagesPerSource = 5
	}
	if requestTimeout <= 0 {
		requestTimeout = 20 * time.Second
	}
	return &Service{
		store:     store,
		fetcher:   fetcher,
		extractor: extractor,
		sources:   sources,
		pages:     pagesPerSource,
		timeout:   requestTimeout,
		log:       logger,
	}
}

// Run выполняет один прогон по всем источникам и возвращает тексты
// новых анекдотов. Ошибкой завершается только отмена контекста.
func (s *Service) Run(ctx context.Context) ([]string, error) {
	runLog := s.log.With().Str("run_id", uuid.NewString()).Logger()
	var added []string
	for _, src := range s.sources {
		for page := 1; page <= s.pages; page++ {
			if err := ctx.Err(); err != nil {
				return added, err
			}
			pageURL := fmt.Sprintf("%s?page=%d", src, page)
			reqCtx, cancel := context.WithTimeout(ctx, s.timeout)
			rawHTML, err := s.fetcher.FetchPage(reqCtx, pageURL)
			cancel()
			if err != nil {
				metrics.IngestErrors.Inc()
				runLog.Error().Err(err).Str("url", pageURL).Msg("не удалось получить страницу источника")
				continue
			}
			for _, raw := range s.extractor.Extract(rawHTML) {
				id, isNew := s.store.Upsert(raw)
				if !isNew {
					continue
				}
				metrics.JokesIngested.Inc()
				if joke, ok := s.store.Get(id); ok {
					added = append(added, joke.Text)
				}
			}
		}
	}
	runLog.Info().Int("new", len(added)).Msg("пополнение базы завершено")
	return added, nil
}
