package pick

import (
	"context"
	"errors"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"anekdot-bot/internal/domain"
)

// ErrExhausted возвращается, когда непросмотренных анекдотов нет даже
// после пополнения базы.
var ErrExhausted = errors.New("нет непросмотренных анекдотов")

type candidate struct {
	id   string
	joke domain.Joke
}

// Service выбирает следующий анекдот для пользователя. Журнал
// пользователя сервис не трогает: отметка «просмотрено» — дело
// вызывающего и только после успешной доставки.
type Service struct {
	store  domain.JokeStore
	ledger domain.UserLedger
	refill domain.Refiller
	log    zerolog.Logger

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewService создаёт селектор.
func NewService(store domain.JokeStore, ledger domain.UserLedger, refill domain.Refiller, logger zerolog.Logger) *Service {
	return &Service{
		store:  store,
		ledger: ledger,
		refill: refill,
		log:    logger,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SelectNovel выбирает случайный непросмотренный анекдот. Если таких
// нет, синхронно пополняет базу и пробует ещё раз.
func (s *Service) SelectNovel(ctx context.Context, userID int64) (string, domain.Joke, error) {
	unseen := s.unseen(userID)
	if len(unseen) == 0 {
		s.refillBase(ctx, userID)
		if unseen = s.unseen(userID); len(unseen) == 0 {
			return "", domain.Joke{}, ErrExhausted
		}
	}
	picked := unseen[s.intn(len(unseen))]
	return picked.id, picked.joke, nil
}

// SelectBest выбирает непросмотренный анекдот с максимальным рейтингом.
// Равные рейтинги разрешаются в пользу наименьшего id, чтобы выбор
// был воспроизводимым.
func (s *Service) SelectBest(ctx context.Context, userID int64) (string, domain.Joke, error) {
	unseen := s.unseen(userID)
	if len(unseen) == 0 {
		s.refillBase(ctx, userID)
		if unseen = s.unseen(userID); len(unseen) == 0 {
			return "", domain.Joke{}, ErrExhausted
		}
	}
	best := unseen[0]
	for _, c := range unseen[1:] {
		if c.joke.Rating > best.joke.Rating {
			best = c
		}
	}
	return best.id, best.joke, nil
}

// unseen возвращает кандидатов, отсортированных по id.
func (s *Service) unseen(userID int64) []candidate {
	seen := s.ledger.SeenSet(userID)
	all := s.store.All()
	out := make([]candidate, 0, len(all))
	for id, joke := range all {
		if _, ok := seen[id]; ok {
			continue
		}
		out = append(out, candidate{id: id, joke: joke})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

func (s *Service) refillBase(ctx context.Context, userID int64) {
	added, err := s.refill.Run(ctx)
	if err != nil {
		s.log.Error().Err(err).Int64("user", userID).Msg("не удалось пополнить базу по запросу")
		return
	}
	s.log.Info().Int64("user", userID).Int("new", len(added)).Msg("база пополнена по исчерпанию")
}

func (s *Service) intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.Intn(n)
}
