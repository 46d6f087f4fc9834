package notifier

import (
	"context"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
	tb "gopkg.in/tucnak/telebot.v2"
)

// CommandHandler is called when a user command is received.
type CommandHandler func(command string) string

// StartPolling begins long-polling for Telegram commands. Blocks until ctx is cancelled.
// Messages from chats other than the configured one are ignored.
func (t *TelegramNotifier) StartPolling(ctx context.Context, handler CommandHandler) {
	t.Bot.Handle(tb.OnText, func(m *tb.Message) {
		t.handleMessage(m, handler)
	})

	done := make(chan struct{})
	go func() {
		t.Bot.Start()
		close(done)
	}()

	<-ctx.Done()
	t.Bot.Stop()
	<-done
	log.Info("telegram polling stopped")
}

func (t *TelegramNotifier) handleMessage(m *tb.Message, handler CommandHandler) {
	if m == nil || m.Chat == nil {
		return
	}
	if !t.authorized(m.Chat) {
		log.WithField("chat", m.Chat.ID).Warn("ignoring message from unknown chat")
		return
	}
	text := strings.TrimSpace(m.Text)
	if text == "" {
		return
	}
	log.Infof("received command: %s", text)
	reply := handler(text)
	if reply == "" {
		return
	}
	if _, err := t.send(m.Chat, reply); err != nil {
		log.Errorf("send reply: %v", err)
	}
}

func (t *TelegramNotifier) authorized(c *tb.Chat) bool {
	if strconv.FormatInt(c.ID, 10) == t.ChatID {
		return true
	}
	return c.Username != "" && strings.EqualFold("@"+c.Username, t.ChatID)
}
