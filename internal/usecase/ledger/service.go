package ledger

import (
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"anekdot-bot/internal/domain"
	"anekdot-bot/internal/infra/storage"
)

// promoEvery задаёт шаг вставки промо-сообщения.
const promoEvery = 5

// Service — журнал состояния пользователей: просмотренные анекдоты,
// смещение для промо и время последнего взаимодействия.
type Service struct {
	mu    sync.Mutex
	users map[string]domain.UserRecord
	docs  *storage.Documents
	path  string
	log   zerolog.Logger
}

// NewService создаёт журнал поверх указанного документа.
func NewService(docs *storage.Documents, path string, logger zerolog.Logger) *Service {
	return &Service{
		users: make(map[string]domain.UserRecord),
		docs:  docs,
		path:  path,
		log:   logger,
	}
}

// Load читает журнал с диска. Отсутствие или порча файла — пустой журнал.
func (s *Service) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()
	loaded := make(map[string]domain.UserRecord)
	s.docs.Load(s.path, &loaded)
	s.users = loaded
	s.log.Info().Int("users", len(loaded)).Msg("журнал пользователей загружен")
}

// RecordInteraction создаёт запись пользователя при первом обращении
// или обновляет время последнего взаимодействия.
func (s *Service) RecordInteraction(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := userKey(userID)
	rec, ok := s.users[key]
	if !ok {
		rec = newRecord()
	}
	rec.LastInteraction = time.Now().UTC()
	s.users[key] = rec
	s.persistLocked()
}

// RecordDelivered идемпотентно отмечает анекдот просмотренным.
// Повторная отметка не трогает диск.
func (s *Service) RecordDelivered(userID int64, jokeID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := userKey(userID)
	rec, ok := s.users[key]
	if !ok {
		rec = newRecord()
		rec.LastInteraction = time.Now().UTC()
	}
	if rec.HasSeen(jokeID) {
		return
	}
	rec.SeenJokes = append(rec.SeenJokes, jokeID)
	s.users[key] = rec
	s.persistLocked()
}

// ShouldInsertPromotion сообщает, пора ли вставить промо. Размер истории
// берётся до записи текущей доставки: так каждый пользователь получает
// промо ровно на каждом пятом анекдоте со своим личным сдвигом.
func (s *Service) ShouldInsertPromotion(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.users[userKey(userID)]
	return (len(rec.SeenJokes)+rec.AdOffset)%promoEvery == 0
}

// SeenSet возвращает множество просмотренных id.
func (s *Service) SeenSet(userID int64) map[string]struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.users[userKey(userID)]
	seen := make(map[string]struct{}, len(rec.SeenJokes))
	for _, id := range rec.SeenJokes {
		seen[id] = struct{}{}
	}
	return seen
}

// Record возвращает копию записи пользователя.
func (s *Service) Record(userID int64) (domain.UserRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.users[userKey(userID)]
	return rec, ok
}

func newRecord() domain.UserRecord {
	return domain.UserRecord{
		SeenJokes: []string{},
		AdOffset:  rand.Intn(promoEvery),
	}
}

func userKey(userID int64) string {
	return strconv.FormatInt(userID, 10)
}

func (s *Service) persistLocked() {
	if err := s.docs.Save(s.path, s.users); err != nil {
		s.log.Error().Err(err).Str("path", s.path).Msg("не удалось сохранить журнал пользователей")
	}
}
