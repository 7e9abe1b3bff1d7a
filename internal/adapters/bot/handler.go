package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"anekdot-bot/internal/adapters/telegram"
	"anekdot-bot/internal/domain"
	"anekdot-bot/internal/infra/metrics"
	"anekdot-bot/internal/usecase/pick"
)

// Надписи кнопок основного меню.
const (
	newJokeButton  = "Новый анекдот"
	bestJokeButton = "Лучший анекдот"
)

const (
	policyNovel = "novel"
	policyBest  = "best"
)

const unavailableText = "Извините, анекдоты временно недоступны. Попробуйте позже."

// telegramAPI — служебные вызовы Bot API, не связанные с доставкой
// анекдотов: ответы на callback, меню команд, короткие реплики.
type telegramAPI interface {
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Handler обслуживает апдейты бота.
type Handler struct {
	notifier     domain.Notifier
	api          telegramAPI
	log          zerolog.Logger
	store        domain.JokeStore
	ledger       domain.UserLedger
	picker       *pick.Service
	reminders    domain.ReminderScheduler
	promoChannel string
}

// NewHandler создаёт обработчик.
func NewHandler(notifier domain.Notifier, api telegramAPI, logger zerolog.Logger, store domain.JokeStore, ledger domain.UserLedger, picker *pick.Service, reminders domain.ReminderScheduler, promoChannel string) *Handler {
	return &Handler{
		notifier:     notifier,
		api:          api,
		log:          logger,
		store:        store,
		ledger:       ledger,
		picker:       picker,
		reminders:    reminders,
		promoChannel: promoChannel,
	}
}

// HandleUpdate обрабатывает входящий апдейт.
func (h *Handler) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.Message != nil {
		h.handleMessage(ctx, upd.Message)
	} else if upd.CallbackQuery != nil {
		h.handleCallback(ctx, upd.CallbackQuery)
	}
}

func (h *Handler) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		h.reply(msg.Chat.ID, "Не удалось определить пользователя", nil)
		return
	}
	userID := msg.From.ID
	h.touch(userID)

	text := strings.TrimSpace(msg.Text)
	switch {
	case strings.HasPrefix(text, "/start"), strings.HasPrefix(text, "/help"):
		h.reply(msg.Chat.ID, buildGreeting(msg.From.FirstName), mainKeyboard())
	case strings.HasPrefix(text, "/newjoke"), text == newJokeButton:
		h.sendJoke(ctx, msg.Chat.ID, userID, policyNovel)
	case strings.HasPrefix(text, "/bestjoke"), text == bestJokeButton:
		h.sendJoke(ctx, msg.Chat.ID, userID, policyBest)
	default:
		h.reply(msg.Chat.ID, "Извините, я не понимаю эту команду. Пожалуйста, используйте меню или команды /newjoke и /bestjoke.", nil)
	}
}

// sendJoke выбирает анекдот, доставляет его с кнопками голосования и
// лишь после успешной отправки отмечает просмотр: сбой доставки не
// должен «сжечь» анекдот для пользователя.
func (h *Handler) sendJoke(ctx context.Context, chatID, userID int64, policy string) {
	var (
		id   string
		joke domain.Joke
		err  error
	)
	if policy == policyBest {
		id, joke, err = h.picker.SelectBest(ctx, userID)
	} else {
		id, joke, err = h.picker.SelectNovel(ctx, userID)
	}
	if err != nil {
		if !errors.Is(err, pick.ErrExhausted) {
			h.log.Error().Err(err).Int64("user", userID).Msg("не удалось выбрать анекдот")
		}
		h.reply(chatID, unavailableText, nil)
		return
	}

	// Промо оценивается по истории до записи текущей доставки.
	text := joke.Text
	if h.ledger.ShouldInsertPromotion(userID) {
		text = withPromo(text, h.promoChannel)
	}

	choices := []domain.Choice{
		{Label: "😂", Action: telegram.LikeAction(id)},
		{Label: "😒", Action: telegram.DislikeAction(id)},
	}
	if err := h.notifier.Deliver(chatID, text, choices); err != nil {
		h.log.Error().Err(err).Int64("user", userID).Msg("не удалось доставить анекдот")
		return
	}
	h.ledger.RecordDelivered(userID, id)
	metrics.JokesServed.WithLabelValues(policy).Inc()
}

func (h *Handler) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	userID := cb.From.ID
	h.touch(userID)

	var answer string
	if jokeID, delta, ok := telegram.ParseVote(cb.Data); ok {
		h.store.Rate(jokeID, delta)
		if delta > 0 {
			metrics.VotesTotal.WithLabelValues("like").Inc()
			answer = "Спасибо за ваш лайк! 👍"
		} else {
			metrics.VotesTotal.WithLabelValues("dislike").Inc()
			answer = "Спасибо за ваш отзыв! 🤔"
		}
	}

	start := time.Now()
	_, err := h.api.Request(tgbotapi.NewCallback(cb.ID, answer))
	metrics.ObserveNetworkRequest("telegram_bot", "answer_callback", strconv.FormatInt(userID, 10), start, err)
	if err != nil {
		h.log.Error().Err(err).Msg("не удалось ответить на callback")
	}
}

// touch фиксирует активность: обновляет журнал и перезапускает цепочку
// напоминаний. Выполняется на любом событии от пользователя.
func (h *Handler) touch(userID int64) {
	h.ledger.RecordInteraction(userID)
	h.reminders.Reschedule(userID)
}

// RegisterCommands публикует меню команд бота.
func (h *Handler) RegisterCommands() error {
	commands := tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: "start", Description: "Начать взаимодействие с ботом"},
		tgbotapi.BotCommand{Command: "help", Description: "Получить помощь"},
		tgbotapi.BotCommand{Command: "newjoke", Description: "Получить новый анекдот"},
		tgbotapi.BotCommand{Command: "bestjoke", Description: "Получить лучший анекдот"},
	)
	if _, err := h.api.Request(commands); err != nil {
		return fmt.Errorf("регистрация команд: %w", err)
	}
	return nil
}

// reply шлёт короткий служебный текст; длинные сообщения здесь не ходят.
func (h *Handler) reply(chatID int64, text string, markup interface{}) {
	msg := tgbotapi.NewMessage(chatID, text)
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	start := time.Now()
	_, err := h.api.Request(msg)
	metrics.ObserveNetworkRequest("telegram_bot", "send_message", strconv.FormatInt(chatID, 10), start, err)
	if err != nil {
		metrics.BotSendErrors.Inc()
		h.log.Error().Err(err).Msg("не удалось отправить сообщение")
	}
}

func buildGreeting(firstName string) string {
	return fmt.Sprintf("Привет, %s! 😊\n\nЯ бот, который рассказывает анекдоты. Хочешь посмеяться или узнать лучший анекдот? Выбери опцию ниже:", firstName)
}

// withPromo дописывает к анекдоту приглашение в канал.
func withPromo(text, channel string) string {
	return fmt.Sprintf("%s\n\nПодписывайтесь на наш канал %s", text, channel)
}

func mainKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(newJokeButton),
			tgbotapi.NewKeyboardButton(bestJokeButton),
		),
	)
}
