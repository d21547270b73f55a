package api

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hireflow/interviewd/internal/interviews"
	"github.com/hireflow/interviewd/pkg/errors"
	"github.com/hireflow/interviewd/pkg/logger"
)

func NewServer(cfg Config, log logger.Logger, engine interviews.API) Server {
	serveLog := log.With("api_http_server")

	fiberCfg := fiber.Config{
		ReadTimeout:             cfg.HTTP.ReadTimeout,
		WriteTimeout:            cfg.HTTP.WriteTimeout,
		IdleTimeout:             cfg.HTTP.IdleTimeout,
		DisableStartupMessage:   true,
		EnableTrustedProxyCheck: true,
		ProxyHeader:             cfg.Proxy.Header,
		TrustedProxies:          cfg.Proxy.Trusted,
		RequestMethods:          []string{fiber.MethodGet, fiber.MethodHead, fiber.MethodPost},
	}

	fiberCfg.ErrorHandler = func(c *fiber.Ctx, err error) error {
		serveLog.Warn(errors.WrapFail(err, "handle http request"))
		return c.Status(http.StatusInternalServerError).Send(nil)
	}

	s := &server{
		engine: engine,
		http:   fiber.New(fiberCfg),
		addr:   cfg.HTTP.Addr,
		log:    serveLog,
	}

	s.setupRoutes()

	return s
}

type server struct {
	engine interviews.API
	http   *fiber.App
	addr   string
	log    logger.Logger
}

func (s *server) Serve(ctx context.Context) error {
	errCh := make(chan error)
	go func() { errCh <- s.http.Listen(s.addr) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return errors.Error("serve context done")
	}
}

func (s *server) Shutdown(ctx context.Context) error {
	var errs []error

	err := s.engine.Close(ctx)
	if err != nil {
		errs = append(errs, errors.WrapFail(err, "close engine"))
	}

	err = s.http.ShutdownWithContext(ctx)
	if err != nil {
		errs = append(errs, errors.WrapFail(err, "shutdown http server"))
	}

	return errors.Collapse(errs)
}

func (s *server) setupRoutes() {
	s.http.Use(observeRequests)

	s.http.Post("/interviews", s.handleSchedule)
	s.http.Get("/interviews/:id", s.handleGet)
	s.http.Post("/interviews/:id/confirm", s.handleConfirm)
	s.http.Post("/interviews/:id/start", s.handleStart)
	s.http.Post("/interviews/:id/complete", s.handleComplete)
	s.http.Post("/interviews/:id/cancel", s.handleCancel)
	s.http.Post("/interviews/:id/no-show", s.handleNoShow)
	s.http.Post("/interviews/:id/reschedule", s.handleReschedule)
	s.http.Post("/interviews/:id/evaluation", s.handleEvaluate)
	s.http.Get("/interviews/:id/can-proceed", s.handleCanProceed)
	s.http.Post("/interviews/:id/next-round", s.handleNextRound)

	s.http.Get("/conflicts", s.handleConflicts)
	s.http.Get("/suggestions", s.handleSuggestions)
	s.http.Get("/flow", s.handleFlow)

	s.http.Get("/reminders/due", s.handleDueReminders)
	s.http.Post("/reminders/sent", s.handleMarkReminded)

	s.http.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
}

// Test exposes the fiber app's test entry point for handler tests.
func (s *server) Test(req *http.Request) (*http.Response, error) {
	return s.http.Test(req)
}
