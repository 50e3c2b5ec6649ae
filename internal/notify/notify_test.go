package notify

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/ainews-backend/internal/platform/logger"
	"github.com/yungbote/ainews-backend/internal/platform/sendgrid"
)

type recorder struct {
	name string
	err  error
	got  []Message
}

func (r *recorder) Name() string { return r.name }

func (r *recorder) Notify(ctx context.Context, msg Message) error {
	r.got = append(r.got, msg)
	return r.err
}

func TestMultiContinuesPastFailures(t *testing.T) {
	bad := &recorder{name: "bad", err: errors.New("down")}
	good := &recorder{name: "good"}
	m := NewMulti(logger.Nop(), bad, nil, good)

	err := m.Notify(context.Background(), Message{Kind: KindReportReady, Subject: "ready"})
	if err == nil || !strings.Contains(err.Error(), "bad: down") {
		t.Fatalf("error: got=%v", err)
	}
	if len(good.got) != 1 {
		t.Fatalf("second notifier must still receive the message")
	}
	if names := m.Names(); len(names) != 2 {
		t.Fatalf("nil notifiers must be dropped, got=%v", names)
	}
}

type fakeBot struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if mc, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, mc)
	}
	return tgbotapi.Message{MessageID: 1}, f.err
}

func TestTelegramNotify(t *testing.T) {
	bot := &fakeBot{}
	tg := newTelegram(logger.Nop(), bot, 42)
	if err := tg.Notify(context.Background(), Message{Subject: "Report ready", Body: "reports/ai_news_20260114.md"}); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if len(bot.sent) != 1 || bot.sent[0].ChatID != 42 {
		t.Fatalf("sent: got=%+v", bot.sent)
	}
	if bot.sent[0].Text != "Report ready\n\nreports/ai_news_20260114.md" {
		t.Fatalf("text: got=%q", bot.sent[0].Text)
	}
}

func TestTelegramTruncates(t *testing.T) {
	bot := &fakeBot{}
	tg := newTelegram(logger.Nop(), bot, 1)
	if err := tg.Notify(context.Background(), Message{Subject: strings.Repeat("あ", 5000)}); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if n := len([]rune(bot.sent[0].Text)); n != telegramMaxLen {
		t.Fatalf("length: want=%d got=%d", telegramMaxLen, n)
	}
}

func TestNewTelegramValidates(t *testing.T) {
	if _, err := NewTelegram(logger.Nop(), "", 1); err == nil {
		t.Fatalf("expected error without token")
	}
	if _, err := NewTelegram(logger.Nop(), "123:abc", 0); err == nil {
		t.Fatalf("expected error without chat id")
	}
}

type fakePublisher struct {
	channel string
	payload []byte
}

func (f *fakePublisher) Publish(ctx context.Context, channel string, message interface{}) *goredis.IntCmd {
	f.channel = channel
	f.payload, _ = message.([]byte)
	return goredis.NewIntResult(1, nil)
}

func TestRedisPublishesJSON(t *testing.T) {
	pub := &fakePublisher{}
	r := newRedis(logger.Nop(), pub, "")
	if err := r.Notify(context.Background(), Message{Kind: KindAwaitingCollection, RunID: "r1", Subject: "collect"}); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if pub.channel != DefaultRedisChannel {
		t.Fatalf("channel: want=%q got=%q", DefaultRedisChannel, pub.channel)
	}
	var got Message
	if err := json.Unmarshal(pub.payload, &got); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if got.Kind != KindAwaitingCollection || got.RunID != "r1" {
		t.Fatalf("payload: got=%+v", got)
	}
}

type fakeMail struct{ req sendgrid.SendEmailRequest }

func (f *fakeMail) Send(ctx context.Context, req sendgrid.SendEmailRequest) (*sendgrid.SendEmailResult, error) {
	f.req = req
	return &sendgrid.SendEmailResult{StatusCode: 202}, nil
}

func TestEmailNotify(t *testing.T) {
	mail := &fakeMail{}
	e, err := NewEmail(mail, []string{" ops@example.com ", ""})
	if err != nil {
		t.Fatalf("NewEmail: %v", err)
	}
	if err := e.Notify(context.Background(), Message{Kind: KindReportReady, Subject: "ready"}); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if len(mail.req.To) != 1 || mail.req.To[0].Email != "ops@example.com" {
		t.Fatalf("to: got=%+v", mail.req.To)
	}
	if mail.req.Text != "ready" {
		t.Fatalf("empty body must fall back to subject, got=%q", mail.req.Text)
	}
	if _, err := NewEmail(mail, nil); err == nil {
		t.Fatalf("expected error without recipients")
	}
}
