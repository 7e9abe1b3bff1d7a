package domain

import (
	"context"
	"time"
)

// JokeStore управляет базой анекдотов.
type JokeStore interface {
	// Upsert нормализует текст и добавляет анекдот, если его ещё нет.
	// Для пустого после нормализации текста возвращает ("", false).
	Upsert(rawText string) (id string, isNew bool)
	// Rate изменяет рейтинг. Неизвестный id молча игнорируется.
	Rate(id string, delta int)
	Get(id string) (Joke, bool)
	All() map[string]Joke
	Len() int
}

// UserLedger управляет состоянием пользователей.
type UserLedger interface {
	RecordInteraction(userID int64)
	RecordDelivered(userID int64, jokeID string)
	// ShouldInsertPromotion оценивается по размеру истории до записи
	// текущей доставки.
	ShouldInsertPromotion(userID int64) bool
	SeenSet(userID int64) map[string]struct{}
}

// Refiller запускает внеплановое пополнение базы анекдотов.
type Refiller interface {
	Run(ctx context.Context) ([]string, error)
}

// Fetcher загружает страницу источника.
type Fetcher interface {
	FetchPage(ctx context.Context, url string) (string, error)
}

// Extractor выделяет тексты-кандидаты из HTML страницы.
type Extractor interface {
	Extract(rawHTML string) []string
}

// Notifier доставляет текст пользователю. Кнопки опциональны.
type Notifier interface {
	Deliver(userID int64, text string, choices []Choice) error
}

// ReminderScheduler ведёт цепочку отложенных напоминаний пользователя.
type ReminderScheduler interface {
	Reschedule(userID int64)
	Cancel(userID int64)
}

// Cache используется для простых TTL-замков.
type Cache interface {
	Once(key string, ttl time.Duration, fn func() error) error
}
