package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	chi "github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"anekdot-bot/internal/adapters/bot"
	"anekdot-bot/internal/adapters/source"
	"anekdot-bot/internal/domain"
	"anekdot-bot/internal/infra/cache"
	"anekdot-bot/internal/infra/config"
	applog "anekdot-bot/internal/infra/log"
	"anekdot-bot/internal/infra/metrics"
	"anekdot-bot/internal/infra/storage"
	"anekdot-bot/internal/usecase/ingest"
	"anekdot-bot/internal/usecase/jokes"
	"anekdot-bot/internal/usecase/ledger"
	"anekdot-bot/internal/usecase/pick"
	"anekdot-bot/internal/usecase/reminder"
)

func main() {
	cfg := config.Load()
	logger := applog.NewLogger(cfg.AppEnv)

	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.StartServer(ctx, logger.With().Str("component", "metrics").Logger(), cfg.MetricsAddr)

	docs := storage.NewDocuments(logger)
	jokeStore := jokes.NewStore(docs, cfg.Storage.JokesFile, logger)
	jokeStore.Load()
	userLedger := ledger.NewService(docs, cfg.Storage.UsersFile, logger)
	userLedger.Load()

	fetcher := source.NewHTTPFetcher(cfg.Ingest.RequestTimeout)
	extractor := source.NewHTMLExtractor()
	ingestService := ingest.NewService(jokeStore, fetcher, extractor, cfg.Ingest.Sources, cfg.Ingest.PagesPerSource, cfg.Ingest.RequestTimeout, logger.With().Str("component", "ingest").Logger())
	picker := pick.NewService(jokeStore, userLedger, ingestService, logger)

	if cfg.Telegram.Token == "" {
		logger.Fatal().Msg("не указан токен Telegram (TG_BOT_TOKEN)")
	}
	botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		logger.Fatal().Err(err).Msg("не удалось создать бота")
	}

	sender := bot.NewSender(botAPI, logger)
	reminders := reminder.NewScheduler(sender, logger.With().Str("component", "reminder").Logger(), cfg.Reminders.FirstDelay, cfg.Reminders.SecondDelay)
	h := bot.NewHandler(sender, botAPI, logger, jokeStore, userLedger, picker, reminders, cfg.Promo.Channel)

	if err := h.RegisterCommands(); err != nil {
		logger.Error().Err(err).Msg("не удалось опубликовать меню команд")
	}

	if cfg.Telegram.WebhookURL != "" {
		wh, err := tgbotapi.NewWebhook(cfg.Telegram.WebhookURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("некорректный адрес вебхука")
		}
		if _, err := botAPI.Request(wh); err != nil {
			logger.Fatal().Err(err).Msg("не удалось зарегистрировать вебхук")
		}
		logger.Info().Str("url", cfg.Telegram.WebhookURL).Msg("вебхук зарегистрирован")
	}

	var ingestLock domain.Cache
	if cfg.RedisAddr != "" {
		ingestLock = cache.NewRedis(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}))
	}
	go runIngestLoop(ctx, cfg, logger, ingestService, ingestLock)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Post("/bot/webhook", func(w http.ResponseWriter, r *http.Request) {
		var update tgbotapi.Update
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.HandleUpdate(r.Context(), update)
		w.WriteHeader(http.StatusOK)
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Port), Handler: r}
	go func() {
		logger.Info().Int("port", cfg.Port).Msg("бот-гейтвей запущен")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("HTTP сервер остановлен")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("остановка бота")
	reminders.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

// runIngestLoop гоняет плановое пополнение базы. При настроенном Redis
// замок Once не даёт перезапускам процесса устраивать лишние обходы.
func runIngestLoop(ctx context.Context, cfg config.AppConfig, logger zerolog.Logger, svc *ingest.Service, lock domain.Cache) {
	run := func() {
		job := func() error {
			_, err := svc.Run(ctx)
			return err
		}
		var err error
		if lock != nil {
			err = lock.Once("ingest:scheduled", cfg.Ingest.Interval, job)
		} else {
			err = job()
		}
		if err != nil && ctx.Err() == nil {
			logger.Error().Err(err).Msg("плановое пополнение завершилось с ошибкой")
		}
	}

	run()
	ticker := time.NewTicker(cfg.Ingest.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			run()
		}
	}
}

var _ domain.JokeStore = (*jokes.Store)(nil)
var _ domain.UserLedger = (*ledger.Service)(nil)
var _ domain.Refiller = (*ingest.Service)(nil)
var _ domain.Fetcher = (*source.HTTPFetcher)(nil)
var _ domain.Extractor = (*source.HTMLExtractor)(nil)
var _ domain.Notifier = (*bot.Sender)(nil)
var _ domain.ReminderScheduler = (*reminder.Scheduler)(nil)
var _ domain.Cache = (*cache.RedisCache)(nil)
