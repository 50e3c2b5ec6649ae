package notify

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/yungbote/ainews-backend/internal/platform/logger"
)

// telegramMaxLen is the Bot API limit on message text.
const telegramMaxLen = 4096

type telegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Telegram struct {
	api    telegramSender
	chatID int64
	log    *logger.Logger
}

// NewTelegram connects to the Bot API. NewBotAPI validates the token with getMe.
func NewTelegram(log *logger.Logger, token string, chatID int64) (*Telegram, error) {
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("missing TELEGRAM_BOT_TOKEN")
	}
	if chatID == 0 {
		return nil, fmt.Errorf("missing TELEGRAM_CHAT_ID")
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}
	return newTelegram(log, api, chatID), nil
}

func newTelegram(log *logger.Logger, api telegramSender, chatID int64) *Telegram {
	return &Telegram{api: api, chatID: chatID, log: log.With("notifier", "telegram", "chat_id", chatID)}
}

func (t *Telegram) Name() string { return "telegram" }

func (t *Telegram) Notify(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	text := msg.Subject
	if msg.Body != "" {
		text += "\n\n" + msg.Body
	}
	if r := []rune(text); len(r) > telegramMaxLen {
		text = string(r[:telegramMaxLen-3]) + "..."
	}
	out := tgbotapi.NewMessage(t.chatID, text)
	out.DisableWebPagePreview = true
	if _, err := t.api.Send(out); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	t.log.Debug("Telegram notification sent", "kind", string(msg.Kind))
	return nil
}
