package main

import (
	"context"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	"github.com/hireflow/interviewd/internal/api"
	"github.com/hireflow/interviewd/internal/interviews"
	"github.com/hireflow/interviewd/internal/locker"
	"github.com/hireflow/interviewd/internal/notify"
	"github.com/hireflow/interviewd/internal/repo"
	"github.com/hireflow/interviewd/pkg/errors"
	"github.com/hireflow/interviewd/pkg/logger"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		stdlog.Panic(errors.WrapFail(err, "load config"))
	}

	log, err := logger.New(cfg.Environment)
	if err != nil {
		stdlog.Panic(errors.WrapFail(err, "init logger"))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGABRT)
	defer cancel()

	storage, err := newStorage(ctx, cfg, log)
	if err != nil {
		log.Panic(errors.WrapFail(err, "init storage"))
	}

	locks, err := newLocker(ctx, cfg, log)
	if err != nil {
		log.Panic(errors.WrapFail(err, "init locker"))
	}

	engine := interviews.New(log, storage, locks, cfg.Engine)

	server := api.NewServer(cfg.API, log, engine)

	jobs, err := startReminders(ctx, cfg, engine, log)
	if err != nil {
		log.Panic(errors.WrapFail(err, "start reminder jobs"))
	}

	context.AfterFunc(ctx, func() {
		stdlog.Println("Graceful shutdown...")

		if jobs != nil {
			<-jobs.Stop().Done()
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.API.HTTP.WriteTimeout)
		defer shutdownCancel()

		err := server.Shutdown(shutdownCtx)
		if err != nil {
			log.Error(errors.WrapFail(err, "shutdown server"))
		}
	})

	stdlog.Println("Serving on", cfg.API.HTTP.Addr)
	err = server.Serve(ctx)
	if err != nil {
		log.Error(errors.WrapFail(err, "serve http"))
	}
	stdlog.Println("Shutdown complete")
}

func newStorage(ctx context.Context, cfg *Config, log logger.Logger) (interviews.Repo, error) {
	switch cfg.Storage.Driver {
	case repo.DriverMongo:
		return repo.NewMongo(ctx, cfg.Storage.Mongo, log)
	case repo.DriverMemory, "":
		mem := repo.NewMemory(cfg.Storage.Memory, log)
		go mem.Run(ctx)
		return mem, nil
	}
	return nil, errors.Failf(" use unknown storage driver %q", cfg.Storage.Driver)
}

func newLocker(ctx context.Context, cfg *Config, log logger.Logger) (locker.Locker, error) {
	switch cfg.Locks.Driver {
	case "redis":
		return locker.NewRedis(ctx, cfg.Locks.Redis, log)
	case "local", "":
		return locker.NewLocal(), nil
	}
	return nil, errors.Failf(" use unknown locks driver %q", cfg.Locks.Driver)
}

// startReminders wires the reminder dispatcher onto a cron schedule. Without
// a telegram token the dispatcher is not started at all.
func startReminders(ctx context.Context, cfg *Config, engine interviews.API, log logger.Logger) (*cron.Cron, error) {
	if cfg.Telegram.Token == "" {
		log.Infof("no telegram token configured, reminders disabled")
		return nil, nil
	}

	sender, err := notify.NewTelegram(cfg.Telegram, log)
	if err != nil {
		return nil, errors.WrapFail(err, "init telegram sender")
	}

	dispatcher := notify.NewDispatcher(engine, sender, cfg.Reminders, log)

	jobs := cron.New()
	_, err = jobs.AddFunc(cfg.Reminders.WithDefaults().CronSpec, func() {
		err := dispatcher.Dispatch(ctx)
		if err != nil {
			log.Warn(errors.WrapFail(err, "dispatch reminders"))
		}
	})
	if err != nil {
		return nil, errors.WrapFail(err, "schedule reminder job")
	}

	jobs.Start()
	return jobs, nil
}
