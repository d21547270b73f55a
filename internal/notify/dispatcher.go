package notify

import (
	"context"
	"time"

	"github.com/hireflow/interviewd/internal/interviews"
	"github.com/hireflow/interviewd/pkg/errors"
	"github.com/hireflow/interviewd/pkg/logger"
)

type DispatcherConfig struct {
	// LeadTime is how far ahead of the scheduled time reminders go out.
	LeadTime time.Duration `yaml:"lead_time"`
	// CronSpec drives the periodic scan, robfig/cron syntax.
	CronSpec string `yaml:"cron_spec"`
}

func (c DispatcherConfig) WithDefaults() DispatcherConfig {
	if c.LeadTime <= 0 {
		c.LeadTime = 24 * time.Hour
	}
	if c.CronSpec == "" {
		c.CronSpec = "@every 5m"
	}
	return c
}

// Dispatcher connects the reminder trigger to the notification sender:
// scan due interviews, deliver, mark delivered. Safe to run concurrently
// with itself; marking is idempotent and delivery is at-least-once.
func NewDispatcher(engine interviews.API, sender Sender, cfg DispatcherConfig, log logger.Logger) *Dispatcher {
	return &Dispatcher{
		engine: engine,
		sender: sender,
		cfg:    cfg.WithDefaults(),
		log:    log.With("reminder_dispatcher"),
	}
}

type Dispatcher struct {
	engine interviews.API
	sender Sender
	cfg    DispatcherConfig
	log    logger.Logger
}

// Dispatch runs one scan-send-mark cycle. Failed deliveries stay unmarked
// and are retried on the next cycle.
func (d *Dispatcher) Dispatch(ctx context.Context) error {
	due, err := d.engine.DueForReminder(ctx, d.cfg.LeadTime)
	if err != nil {
		return errors.WrapFail(err, "scan due reminders")
	}
	if len(due) == 0 {
		return nil
	}

	sent := make([]string, 0, len(due))
	for _, i := range due {
		err := d.sender.Send(ctx, i)
		if err != nil {
			d.log.Warn(errors.WrapFailf(err, " send reminder for interview %s", i.ID))
			continue
		}
		sent = append(sent, i.ID)
	}

	if len(sent) == 0 {
		return nil
	}

	err = d.engine.MarkReminded(ctx, sent)
	if err != nil {
		return errors.WrapFail(err, "mark reminders sent")
	}

	d.log.Infof("dispatched %d of %d due reminders", len(sent), len(due))
	return nil
}
