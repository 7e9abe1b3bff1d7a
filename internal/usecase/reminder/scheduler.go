package reminder

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"anekdot-bot/internal/domain"
	"anekdot-bot/internal/infra/metrics"
)

// Тексты напоминаний.
const (
	FirstReminderText  = "Эй, чего скучаешь?"
	SecondReminderText = "Я соскучился 🥺"
)

type stage int

const (
	stageFirst stage = iota + 1
	stageSecond
)

// chain — живая цепочка напоминаний одного пользователя.
// Сравнение указателей отсекает таймеры, пережившие Reschedule.
type chain struct {
	timer *time.Timer
	stage stage
}

// Scheduler ведёт для каждого пользователя цепочку из двух отложенных
// напоминаний. Любое взаимодействие пользователя перезапускает цепочку
// с нуля; вторая задержка отсчитывается от срабатывания первой стадии.
type Scheduler struct {
	notifier    domain.Notifier
	log         zerolog.Logger
	firstDelay  time.Duration
	secondDelay time.Duration

	mu      sync.Mutex
	chains  map[int64]*chain
	stopped bool
}

// NewScheduler создаёт планировщик напоминаний.
func NewScheduler(notifier domain.Notifier, logger zerolog.Logger, firstDelay, secondDelay time.Duration) *Scheduler {
	return &Scheduler{
		notifier:    notifier,
		log:         logger,
		firstDelay:  firstDelay,
		secondDelay: secondDelay,
		chains:      make(map[int64]*chain),
	}
}

// Reschedule отменяет текущую цепочку пользователя, в какой бы стадии
// она ни была, и запускает новую с первой стадии.
func (s *Scheduler) Reschedule(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.cancelLocked(userID)
	c := &chain{stage: stageFirst}
	c.timer = time.AfterFunc(s.firstDelay, func() { s.fireFirst(userID, c) })
	s.chains[userID] = c
}

// Cancel снимает цепочку пользователя. Отмена несуществующей или уже
// отработавшей цепочки — no-op.
func (s *Scheduler) Cancel(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked(userID)
}

// Stop снимает все цепочки. Используется при остановке процесса.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	for userID, c := range s.chains {
		c.timer.Stop()
		delete(s.chains, userID)
	}
}

func (s *Scheduler) cancelLocked(userID int64) {
	if c, ok := s.chains[userID]; ok {
		c.timer.Stop()
		delete(s.chains, userID)
	}
}

func (s *Scheduler) fireFirst(userID int64, c *chain) {
	s.mu.Lock()
	if s.chains[userID] != c || s.stopped {
		s.mu.Unlock()
		return
	}
	c.stage = stageSecond
	c.timer = time.AfterFunc(s.secondDelay, func() { s.fireSecond(userID, c) })
	s.mu.Unlock()

	metrics.RemindersSent.WithLabelValues("first").Inc()
	if err := s.notifier.Deliver(userID, FirstReminderText, nil); err != nil {
		s.log.Error().Err(err).Int64("user", userID).Msg("не удалось отправить первое напоминание")
	}
}

func (s *Scheduler) fireSecond(userID int64, c *chain) {
	s.mu.Lock()
	if s.chains[userID] != c || s.stopped {
		s.mu.Unlock()
		return
	}
	delete(s.chains, userID)
	s.mu.Unlock()

	metrics.RemindersSent.WithLabelValues("second").Inc()
	if err := s.notifier.Deliver(userID, SecondReminderText, nil); err != nil {
		s.log.Error().Err(err).Int64("user", userID).Msg("не удалось отправить второе напоминание")
	}
}

// pendingStage возвращает стадию живой цепочки пользователя (0 — нет).
func (s *Scheduler) pendingStage(userID int64) stage {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.chains[userID]; ok {
		return c.stage
	}
	return 0
}
