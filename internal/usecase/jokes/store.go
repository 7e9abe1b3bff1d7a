package jokes

import (
	"crypto/md5"
	"encoding/hex"
	"regexp"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"anekdot-bot/internal/domain"
	"anekdot-bot/internal/infra/storage"
)

var markupPattern = regexp.MustCompile(`(?s)<.*?>`)

// Normalize очищает текст анекдота от разметки и лишних пробелов.
// HTML-сущности сознательно не раскрываются: отпечатки должны
// совпадать с id в уже накопленных базах.
func Normalize(raw string) string {
	text := markupPattern.ReplaceAllString(raw, "")
	return strings.TrimSpace(text)
}

// Fingerprint возвращает стабильный id нормализованного текста.
// md5 сохранён ради совместимости с уже накопленными базами.
func Fingerprint(normalized string) string {
	sum := md5.Sum([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// Store — база анекдотов с дедупликацией по отпечатку текста.
// Каждая мутация вместе со своей записью на диск атомарна
// относительно других вызовов.
type Store struct {
	mu    sync.Mutex
	jokes map[string]domain.Joke
	docs  *storage.Documents
	path  string
	log   zerolog.Logger
}

// NewStore создаёт пустую базу поверх указанного документа.
func NewStore(docs *storage.Documents, path string, logger zerolog.Logger) *Store {
	return &Store{
		jokes: make(map[string]domain.Joke),
		docs:  docs,
		path:  path,
		log:   logger,
	}
}

// Load читает базу с диска. Отсутствие или порча файла — пустая база.
func (s *Store) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()
	loaded := make(map[string]domain.Joke)
	s.docs.Load(s.path, &loaded)
	s.jokes = loaded
	s.log.Info().Int("jokes", len(loaded)).Msg("база анекдотов загружена")
}

// Upsert добавляет анекдот, если его ещё нет. Повторная загрузка того
// же текста возвращает тот же id без изменений в базе.
func (s *Store) Upsert(rawText string) (string, bool) {
	text := Normalize(rawText)
	if text == "" {
		return "", false
	}
	id := Fingerprint(text)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jokes[id]; ok {
		return id, false
	}
	s.jokes[id] = domain.Joke{Text: text}
	s.persistLocked()
	return id, true
}

// Rate прибавляет delta к рейтингу. Неизвестный id — no-op.
func (s *Store) Rate(id string, delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	joke, ok := s.jokes[id]
	if !ok {
		return
	}
	joke.Rating += delta
	s.jokes[id] = joke
	s.persistLocked()
}

// Get возвращает анекдот по id.
func (s *Store) Get(id string) (domain.Joke, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	joke, ok := s.jokes[id]
	return joke, ok
}

// All возвращает копию базы.
func (s *Store) All() map[string]domain.Joke {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]domain.Joke, len(s.jokes))
	for id, joke := range s.jokes {
		out[id] = joke
	}
	return out
}

// Len возвращает размер базы.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jokes)
}

func (s *Store) persistLocked() {
	if err := s.docs.Save(s.path, s.jokes); err != nil {
		s.log.Error().Err(err).Str("path", s.path).Msg("не удалось сохранить базу анекдотов")
	}
}
