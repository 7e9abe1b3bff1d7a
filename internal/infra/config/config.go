package config

import (
	"log"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// AppConfig описывает конфигурацию сервисов.
type AppConfig struct {
	AppEnv string `envconfig:"APP_ENV" default:"dev"`
	Port   int    `envconfig:"PORT" default:"8080"`

	MetricsAddr string `envconfig:"METRICS_ADDR" default:":9090"`

	Telegram struct {
		Token      string `envconfig:"TG_BOT_TOKEN"`
		WebhookURL string `envconfig:"TG_WEBHOOK_URL"`
	} `envconfig:""`

	Storage struct {
		JokesFile string `envconfig:"JOKES_FILE" default:"jokes.json"`
		UsersFile string `envconfig:"USER_DATA_FILE" default:"user_data.json"`
	} `envconfig:""`

	Ingest struct {
		Sources        []string      `envconfig:"INGEST_SOURCES" default:"https://www.anekdot.ru/last/anekdot/,https://www.anekdot.ru/random/anekdot/,https://www.anekdot.ru/last/top25/,https://www.anekdot.ru/today/anekdot/"`
		PagesPerSource int           `envconfig:"INGEST_PAGES_PER_SOURCE" default:"5"`
		Interval       time.Duration `envconfig:"INGEST_INTERVAL" default:"24h"`
		RequestTimeout time.Duration `envconfig:"INGEST_REQUEST_TIMEOUT" default:"20s"`
	} `envconfig:""`

	Reminders struct {
		FirstDelay  time.Duration `envconfig:"REMINDER_FIRST_DELAY" default:"47h"`
		SecondDelay time.Duration `envconfig:"REMINDER_SECOND_DELAY" default:"49h30m"`
	} `envconfig:""`

	Promo struct {
		Channel string `envconfig:"PROMO_CHANNEL" default:"@your_channel"`
	} `envconfig:""`

	RedisAddr string `envconfig:"REDIS_ADDR"`
}

// Load загружает конфиг из окружения.
func Load() AppConfig {
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("не удалось загрузить конфиг: %v", err)
	}
	return cfg
}
