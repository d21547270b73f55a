package notify

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"gopkg.in/telebot.v3"

	"github.com/hireflow/interviewd/internal/interviews"
	"github.com/hireflow/interviewd/pkg/errors"
	"github.com/hireflow/interviewd/pkg/logger"
)

type TelegramConfig struct {
	Token        string        `yaml:"token"`
	PollInterval time.Duration `yaml:"poll_interval"`

	// Chats maps participant identities to telegram chat ids.
	Chats map[int64]int64 `yaml:"chats"`
}

func NewTelegram(cfg TelegramConfig, log logger.Logger) (*telegramSender, error) {
	bot, err := telebot.NewBot(telebot.Settings{
		Token:  cfg.Token,
		Poller: &telebot.LongPoller{Timeout: cfg.PollInterval},
	})
	if err != nil {
		return nil, errors.WrapFail(err, "init telegram bot")
	}

	return &telegramSender{
		bot: bot,
		dir: StaticDirectory(cfg.Chats),
		log: log.With("telegram_sender"),
	}, nil
}

type telegramSender struct {
	bot *telebot.Bot
	dir Directory
	log logger.Logger
}

type chat int64

func (c chat) Recipient() string {
	return strconv.FormatInt(int64(c), 10)
}

// Send notifies both participants. A participant missing from the directory
// is skipped with a warning; one failed delivery fails the whole reminder so
// it is retried on the next tick.
func (t *telegramSender) Send(_ context.Context, i interviews.Interview) error {
	msg := fmt.Sprintf(
		"Interview reminder: %s round %s on %s (%d min), status %s.",
		i.Type, i.Round, i.ScheduledAt.Format(time.RFC1123), i.DurationMinutes, i.Status,
	)

	for _, participant := range []int64{i.InterviewerID, i.CandidateID} {
		chatID, ok := t.dir.ChatID(participant)
		if !ok {
			t.log.Warnf("participant %d has no telegram chat", participant)
			continue
		}

		_, err := t.bot.Send(chat(chatID), msg, &telebot.SendOptions{ParseMode: telebot.ModeDefault})
		if err != nil {
			return errors.WrapFailf(err, " notify participant %d", participant)
		}
	}

	return nil
}
