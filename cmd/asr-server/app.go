package main

import (
	"context"
	"fmt"

	"github.com/kbukum/asr-server/auth"
	"github.com/kbukum/asr-server/bootstrap"
	"github.com/kbukum/asr-server/logger"
	"github.com/kbukum/asr-server/observability"
	"github.com/kbukum/asr-server/provider"
	"github.com/kbukum/asr-server/server"
	"github.com/kbukum/asr-server/server/endpoint"
	"github.com/kbukum/asr-server/server/middleware"
	"github.com/kbukum/asr-server/storage"
	_ "github.com/kbukum/asr-server/storage/local"
	"github.com/kbukum/asr-server/transcribe"
	"github.com/kbukum/asr-server/transcription"
	"github.com/kbukum/asr-server/transcription/whisper"
	"github.com/kbukum/asr-server/transcription/whispercpp"
)

// service holds the components shared by the serve and transcribe commands.
type service struct {
	app     *bootstrap.App[*AppConfig]
	obs     *observability.Component
	storage *storage.Component
	engine  *transcription.Engine
}

// engineRegistry returns the factories for every supported engine.
func engineRegistry() *provider.Registry[transcription.Provider] {
	reg := transcription.NewRegistry()
	reg.RegisterFactory(whisper.ProviderName, whisper.Factory())
	reg.RegisterFactory(whispercpp.ProviderName, whispercpp.Factory())
	return reg
}

// newService registers observability, scratch storage and the engine, in
// that order, so the engine can record metrics and every request finds its
// scratch directory ready.
func newService(cfg *AppConfig, opts ...bootstrap.Option) (*service, error) {
	app, err := bootstrap.NewApp(cfg, opts...)
	if err != nil {
		return nil, err
	}

	s := &service{app: app}
	s.obs = observability.NewComponent(cfg.Observability, app.Logger)
	s.storage = storage.NewComponent(cfg.Storage, app.Logger)
	s.engine = transcription.NewEngine(cfg.Transcription, engineRegistry(), app.Logger,
		transcription.WithMetricsSource(s.obs),
		transcription.WithServiceName(cfg.Name),
	)

	if err := app.RegisterComponent(s.obs); err != nil {
		return nil, err
	}
	if err := app.RegisterComponent(s.storage); err != nil {
		return nil, err
	}
	if err := app.RegisterComponent(s.engine); err != nil {
		return nil, err
	}

	// In-flight uploads are younger than sweep_age, so this only drops
	// leftovers that outlived a crashed or killed request.
	app.OnStop(func(ctx context.Context) error {
		st := s.storage.Storage()
		if st == nil || cfg.Storage.SweepAge <= 0 {
			return nil
		}
		removed, err := storage.Sweep(ctx, st, cfg.Storage.SweepAge)
		if err != nil {
			return fmt.Errorf("scratch sweep: %w", err)
		}
		if removed > 0 {
			app.Logger.Info("removed stale scratch files on shutdown", logger.Fields("count", removed))
		}
		return nil
	})
	return s, nil
}

// transcriber builds the request flow on the started storage and engine.
func (s *service) transcriber() *transcribe.Service {
	return transcribe.NewService(s.storage.Storage(), s.engine, s.app.Logger)
}

// withHTTPServer mounts the API once the infrastructure is up, then
// registers and starts the HTTP server component.
func (s *service) withHTTPServer() {
	s.app.OnStart(func(context.Context) error {
		if !s.app.Cfg.Auth.Enabled {
			s.app.Logger.Warn("Authentication disabled, the API is open to any caller")
		}
		return nil
	})

	s.app.OnConfigure(func(ctx context.Context, app *bootstrap.App[*AppConfig]) error {
		cfg := app.Cfg

		validator, err := auth.NewTokenValidator(&cfg.Auth)
		if err != nil {
			return fmt.Errorf("auth: %w", err)
		}

		srv, err := server.New(cfg.Server, app.Logger)
		if err != nil {
			return err
		}
		mountAPI(srv, cfg, validator, s.transcriber(), app.Components.HealthAll, s.obs)

		app.OnReady(func(context.Context) error {
			app.Logger.Info("Accepting transcriptions", logger.Fields("addr", srv.Addr(), "route", transcribe.Route))
			return nil
		})

		if err := app.RegisterComponent(server.NewComponent(srv)); err != nil {
			return err
		}
		return app.Components.StartAll(ctx)
	})
}

// mountAPI installs the middleware stack and every route. Authentication
// guards the whole router except cfg.Auth.SkipPaths.
func mountAPI(srv *server.Server, cfg *AppConfig, validator auth.TokenValidator, svc *transcribe.Service,
	checker endpoint.HealthChecker, metrics middleware.MetricsSource) {
	srv.ApplyDefaults(cfg.Name, checker, metrics,
		middleware.Auth(middleware.AuthConfig{Validator: validator, SkipPaths: cfg.Auth.SkipPaths}))
	transcribe.NewHandler(svc).Register(srv.GinEngine(), middleware.RateLimit(cfg.Server.RateLimit))
}
