// internal/infra/telegram/alerter.go
package telegram

import (
	"context"
	"fmt"
	"time"

	"gopkg.in/telebot.v3"
)

// NewBot creates a long-polling bot. Offline skips the getMe round trip, used by tests.
func NewBot(token string, offline bool, onError func(error, telebot.Context)) (*telebot.Bot, error) {
	b, err := telebot.NewBot(telebot.Settings{
		Token:   token,
		Poller:  &telebot.LongPoller{Timeout: 10 * time.Second},
		Offline: offline,
		OnError: onError,
	})
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return b, nil
}

// Alerter implements notification.Alerter by messaging the admin chat.
// A nil *Alerter is valid and drops every alert.
type Alerter struct {
	bot    *telebot.Bot
	chatID int64
}

// NewAlerter returns nil when alerts are not configured.
func NewAlerter(b *telebot.Bot, adminChatID int64) *Alerter {
	if b == nil || adminChatID == 0 {
		return nil
	}
	return &Alerter{bot: b, chatID: adminChatID}
}

func (a *Alerter) Alert(ctx context.Context, text string) error {
	if a == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := a.bot.Send(&telebot.User{ID: a.chatID}, text)
	return err
}
