// Package notify pushes operational messages to the administrators' Telegram chat.
package notify

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	tele "gopkg.in/telebot.v3"

	"ridebook/config"
	"ridebook/pkg/logger"
	"ridebook/pkg/models"
)

type PendingLister interface {
	ListRequests(ctx context.Context, status models.ContactStatus) ([]*models.ContactRequest, error)
}

// clientTimeout bounds every Telegram API call. It must exceed the long-poll timeout.
const clientTimeout = 15 * time.Second

type Bot struct {
	bot     *tele.Bot
	chatID  int64
	log     logger.ILogger
	pending sync.WaitGroup
}

func New(cfg config.Config, log logger.ILogger) (*Bot, error) {
	return newBot(tele.Settings{
		Token:  cfg.AdminBotToken,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
		Client: &http.Client{Timeout: clientTimeout},
	}, cfg.AdminChatID, log)
}

func newBot(pref tele.Settings, chatID int64, log logger.ILogger) (*Bot, error) {
	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, err
	}
	return &Bot{bot: b, chatID: chatID, log: log}, nil
}

// HandlePending answers /pending in the admin chat with the open contact requests.
func (b *Bot) HandlePending(lister PendingLister) {
	b.bot.Handle("/pending", func(c tele.Context) error {
		if c.Chat() == nil || c.Chat().ID != b.chatID {
			return nil
		}
		list, err := lister.ListRequests(context.Background(), models.ContactPending)
		if err != nil {
			b.log.Error("failed to list pending requests for bot", logger.Error(err))
			return c.Send("Could not load pending requests.")
		}
		return c.Send(FormatPending(list))
	})
}

func (b *Bot) Start() {
	b.log.Info("admin bot started")
	b.bot.Start()
}

// Stop waits for in-flight notifications and stops polling.
func (b *Bot) Stop() {
	b.pending.Wait()
	b.bot.Stop()
}

// Notify sends text to the admin chat in the background so request handlers never
// wait on Telegram. A cancelled ctx skips the send.
func (b *Bot) Notify(ctx context.Context, text string) {
	if b.chatID == 0 || ctx.Err() != nil {
		return
	}

	b.pending.Add(1)
	go func() {
		defer b.pending.Done()
		if _, err := b.bot.Send(tele.ChatID(b.chatID), text); err != nil {
			b.log.Warning("telegram notification failed", logger.Error(err))
		}
	}()
}

func FormatPending(list []*models.ContactRequest) string {
	if len(list) == 0 {
		return "No pending contact requests."
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Pending contact requests: %d\n", len(list))
	for _, r := range list {
		fmt.Fprintf(&sb, "\n• %s <%s> as %s (%s)", r.Name, r.Email, r.RequestedRole, r.CreatedAt.Format("2006-01-02"))
	}
	return sb.String()
}

// Nop is used when no bot token is configured.
type Nop struct{}

func (Nop) Notify(context.Context, string) {}
