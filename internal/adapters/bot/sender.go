package bot

import (
	"fmt"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"anekdot-bot/internal/adapters/telegram"
	"anekdot-bot/internal/domain"
	"anekdot-bot/internal/infra/metrics"
)

// Sender доставляет тексты через Bot API. В личных чатах chat id
// совпадает с id пользователя, поэтому Deliver работает по userID.
type Sender struct {
	bot *tgbotapi.BotAPI
	log zerolog.Logger
}

// NewSender создаёт отправителя.
func NewSender(botAPI *tgbotapi.BotAPI, logger zerolog.Logger) *Sender {
	return &Sender{bot: botAPI, log: logger}
}

// Deliver реализует domain.Notifier. Кнопки выбора собираются в одну
// инлайн-строку и прикрепляются к последней части сообщения.
func (s *Sender) Deliver(userID int64, text string, choices []domain.Choice) error {
	var markup interface{}
	if len(choices) > 0 {
		row := make([]tgbotapi.InlineKeyboardButton, 0, len(choices))
		for _, choice := range choices {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(choice.Label, choice.Action))
		}
		markup = tgbotapi.NewInlineKeyboardMarkup(row)
	}
	return s.send(userID, text, markup)
}

// send отправляет текст по частям; markup уходит с последней частью.
func (s *Sender) send(chatID int64, text string, markup interface{}) error {
	parts := telegram.SplitMessage(text)
	for i, part := range parts {
		msg := tgbotapi.NewMessage(chatID, part)
		if i == len(parts)-1 && markup != nil {
			msg.ReplyMarkup = markup
		}
		start := time.Now()
		_, err := s.bot.Send(msg)
		metrics.ObserveNetworkRequest("telegram_bot", "send_message", strconv.FormatInt(chatID, 10), start, err)
		if err != nil {
			metrics.BotSendErrors.Inc()
			return fmt.Errorf("отправка сообщения: %w", err)
		}
	}
	return nil
}
