package notify

import (
	"fmt"
	"time"

	"glowup/internal/config"
	"glowup/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// TelegramNotifier pushes booking events to the configured admin chats.
// Delivery is fire-and-forget; failures are retried with backoff, then
// logged. A send never blocks the booking flow.
type TelegramNotifier struct {
	bot     *tgbotapi.BotAPI
	chatIDs []int64
	retry   RetryPolicy
	logger  *zerolog.Logger
}

// NewTelegram builds the notifier, or returns nil when no bot token is
// configured (the caller should fall back to a noop notifier).
func NewTelegram(cfg config.TelegramConfig, logger *zerolog.Logger) (*TelegramNotifier, error) {
	if cfg.BotToken == "" {
		return nil, nil
	}

	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("init telegram bot: %w", err)
	}
	bot.Debug = cfg.Debug

	logger.Info().Str("bot", bot.Self.UserName).Int("chats", len(cfg.ChatIDs)).Msg("telegram notifier enabled")
	return &TelegramNotifier{bot: bot, chatIDs: cfg.ChatIDs, retry: DefaultRetryPolicy, logger: logger}, nil
}

func (n *TelegramNotifier) BookingCreated(b *models.Booking) {
	text := fmt.Sprintf(
		"New booking request\nCustomer: %s (%s)\nDate: %s %s\nService: %s",
		b.CustomerName, b.CustomerPhone, b.Date, b.Time, b.ServiceID,
	)
	if b.Notes != "" {
		text += "\nNotes: " + b.Notes
	}
	n.broadcast(text)
}

func (n *TelegramNotifier) StatusChanged(id, status string) {
	n.broadcast(fmt.Sprintf("Booking %s is now %s", id, status))
}

func (n *TelegramNotifier) broadcast(text string) {
	go func() {
		for _, chatID := range n.chatIDs {
			n.send(chatID, text)
		}
	}()
}

func (n *TelegramNotifier) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)

	var err error
	for attempt := 1; ; attempt++ {
		if _, err = n.bot.Send(msg); err == nil {
			return
		}
		if attempt > n.retry.MaxRetries {
			break
		}
		time.Sleep(n.retry.NextDelay(attempt))
	}
	n.logger.Warn().Err(err).Int64("chat_id", chatID).Msg("telegram send failed")
}
