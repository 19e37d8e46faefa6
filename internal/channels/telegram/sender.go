package telegram

import (
	"context"
	"fmt"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
)

// SecretHeader carries the webhook shared secret set via setWebhook.
const SecretHeader = "X-Telegram-Bot-Api-Secret-Token"

// Sender delivers replies over the Bot API.
type Sender interface {
	SendText(ctx context.Context, chatID int64, text string) error
}

type BotSender struct {
	bot *telego.Bot
}

func NewBotSender(token string) (*BotSender, error) {
	bot, err := telego.NewBot(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &BotSender{bot: bot}, nil
}

func (s *BotSender) SendText(ctx context.Context, chatID int64, text string) error {
	_, err := s.bot.SendMessage(ctx, tu.Message(tu.ID(chatID), text))
	return err
}
