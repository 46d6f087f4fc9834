package notifier

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"
	tb "gopkg.in/tucnak/telebot.v2"

	"DrawdownSentinel/internal/model"
)

// MaxMessageLen is Telegram's per-message text limit.
const MaxMessageLen = 4096

// sender is the subset of *tb.Bot used for outbound messages.
type sender interface {
	Send(to tb.Recipient, what interface{}, options ...interface{}) (*tb.Message, error)
}

// TelegramNotifier sends messages via the Telegram Bot API.
type TelegramNotifier struct {
	Bot    *tb.Bot
	ChatID string

	sender sender
	chat   tb.Recipient
}

// NewTelegramNotifier creates a notifier with optional proxy support.
// chatID is either a numeric chat id or an @channel username.
func NewTelegramNotifier(botToken, chatID, proxyURL string) (*TelegramNotifier, error) {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	bot, err := tb.NewBot(tb.Settings{
		Token:     botToken,
		Poller:    &tb.LongPoller{Timeout: 30 * time.Second},
		ParseMode: tb.ModeHTML,
		Client: &http.Client{
			Timeout:   40 * time.Second,
			Transport: transport,
		},
		Reporter: func(err error) { log.Warnf("telegram: %v", err) },
	})
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	chat, err := resolveChat(bot, chatID)
	if err != nil {
		return nil, err
	}
	return &TelegramNotifier{Bot: bot, ChatID: chatID, sender: bot, chat: chat}, nil
}

func resolveChat(bot *tb.Bot, chatID string) (tb.Recipient, error) {
	if id, err := strconv.ParseInt(chatID, 10, 64); err == nil {
		return tb.ChatID(id), nil
	}
	chat, err := bot.ChatByID(chatID)
	if err != nil {
		return nil, fmt.Errorf("resolve chat %q: %w", chatID, err)
	}
	return chat, nil
}

// Send sends a message to the configured chat.
func (t *TelegramNotifier) Send(text string) error {
	_, err := t.send(t.chat, text)
	return err
}

// Deliver formats and sends the daily report. Reports longer than one
// Telegram message are split on line boundaries; MessageID is that of the
// first part.
func (t *TelegramNotifier) Deliver(_ context.Context, rep *model.DailyReport) model.DeliveryResult {
	first, err := t.send(t.chat, FormatDailyReport(rep))
	if err != nil {
		return model.DeliveryResult{OK: false, MessageID: first, Error: err.Error()}
	}
	return model.DeliveryResult{OK: true, MessageID: first}
}

func (t *TelegramNotifier) send(to tb.Recipient, text string) (string, error) {
	var first string
	for i, part := range SplitMessage(text, MaxMessageLen) {
		msg, err := t.sender.Send(to, part, &tb.SendOptions{
			ParseMode:             tb.ModeHTML,
			DisableWebPagePreview: true,
		})
		if err != nil {
			return first, fmt.Errorf("telegram send (part %d): %w", i+1, err)
		}
		if i == 0 && msg != nil {
			first = strconv.Itoa(msg.ID)
		}
	}
	return first, nil
}

// SendWithRetry sends a message with exponential backoff retry.
func (t *TelegramNotifier) SendWithRetry(ctx context.Context, text string, maxRetries int) error {
	var lastErr error
	for i := 0; i <= maxRetries; i++ {
		if err := t.Send(text); err != nil {
			lastErr = err
			backoff := time.Duration(1<<uint(i)) * time.Second
			log.Warnf("telegram send failed (attempt %d/%d): %v, retrying in %v", i+1, maxRetries+1, err, backoff)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
				continue
			}
		}
		return nil
	}
	return fmt.Errorf("all %d retries exhausted: %w", maxRetries+1, lastErr)
}

// SplitMessage breaks text into chunks of at most limit bytes, preferring
// newline boundaries. Overlong lines are cut on rune boundaries.
func SplitMessage(text string, limit int) []string {
	if len(text) <= limit {
		return []string{text}
	}
	var parts []string
	var b strings.Builder
	for _, line := range strings.SplitAfter(text, "\n") {
		for len(line) > limit {
			if b.Len() > 0 {
				parts = append(parts, b.String())
				b.Reset()
			}
			cut := limit
			for cut > 0 && !utf8.RuneStart(line[cut]) {
				cut--
			}
			if cut == 0 {
				cut = limit
			}
			parts = append(parts, line[:cut])
			line = line[cut:]
		}
		if b.Len()+len(line) > limit {
			parts = append(parts, b.String())
			b.Reset()
		}
		b.WriteString(line)
	}
	if b.Len() > 0 {
		parts = append(parts, b.String())
	}
	return parts
}
