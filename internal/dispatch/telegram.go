package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/go-telegram/bot"
	"golang.org/x/time/rate"

	"ranch-alerting-service/internal/logging"
	"ranch-alerting-service/internal/models"
	"ranch-alerting-service/internal/utils"
)

// TelegramSender pushes critical notifications to a Telegram chat.
type TelegramSender struct {
	token   string
	chatID  int64
	limiter *rate.Limiter
	logger  *logging.Logger
}

// NewTelegramSender builds a sender with a per-second rate limit.
func NewTelegramSender(token string, chatID int64, ratePerSecond int, logger *logging.Logger) *TelegramSender {
	return &TelegramSender{
		token:   token,
		chatID:  chatID,
		limiter: rate.NewLimiter(rate.Limit(float64(ratePerSecond)), ratePerSecond),
		logger:  logger,
	}
}

// Send pushes one notification, retrying transient failures.
func (t *TelegramSender) Send(ctx context.Context, n models.Notification) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("telegram rate limit exceeded: %w", err)
	}

	text := fmt.Sprintf("*%s*\n%s\n\n*Priority:* %s\n*Category:* %s",
		n.Title, n.Message, n.Priority, n.Category)
	if n.SubjectID != "" {
		text += fmt.Sprintf("\n*Subject:* %s", n.SubjectID)
	}

	return utils.Retry(t.logger, 3, time.Second, func() error {
		b, err := bot.New(t.token)
		if err != nil {
			return fmt.Errorf("failed to initialize Telegram bot: %w", err)
		}
		params := &bot.SendMessageParams{
			ChatID:    t.chatID,
			Text:      text,
			ParseMode: "Markdown",
		}
		if _, err := b.SendMessage(ctx, params); err != nil {
			return fmt.Errorf("failed to send Telegram message to chat %d: %w", t.chatID, err)
		}
		return nil
	})
}
