package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/rs/zerolog"

	"healtogether/cmd/internal/config"
	cognitoclient "healtogether/cmd/internal/integration/aws/cognito"
	"healtogether/cmd/internal/middleware"
	"healtogether/cmd/internal/routes"
	"healtogether/cmd/internal/service"
	"healtogether/cmd/internal/utils"
	"healtogether/cmd/internal/utils/validators"
)

func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if !cfg.IsProduction() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return logger.Level(level)
}

// gommonLevel keeps service logs at the same threshold as the access log.
func gommonLevel(level string) log.Lvl {
	switch level {
	case "debug":
		return log.DEBUG
	case "warn":
		return log.WARN
	case "error":
		return log.ERROR
	default:
		return log.INFO
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runMigrate(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	st, err := openStores(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer st.Close(context.WithoutCancel(ctx))

	logger.Info().Str("driver", cfg.DBDriver).Msg("storage schema is up to date")
	return nil
}

func runServer(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	log.SetLevel(gommonLevel(cfg.LogLevel))

	// Storage
	st, err := openStores(ctx, cfg, true)
	if err != nil {
		logger.Error().Err(err).Msg("failed to open storage")
		return err
	}
	defer st.Close(context.WithoutCancel(ctx))
	logger.Info().Str("driver", cfg.DBDriver).Msg("connected to storage")

	// Cognito client
	var cogClient cognitoclient.CognitoInterface
	if cfg.UsesCognito() {
		client, err := cognitoclient.InitCognitoClient(ctx, cognitoclient.Options{
			Region:     cfg.CognitoRegion,
			ClientID:   cfg.CognitoClientID,
			UserPoolID: cfg.CognitoUserPoolID,
		})
		if err != nil {
			logger.Error().Err(err).Msg("failed to initialize cognito client")
			return err
		}
		cogClient = client
	}

	validate := validators.New()
	tokens := utils.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL())

	// Getting services
	userService := service.NewUserService(st.Users, validate, tokens, cogClient)
	apptService := service.NewAppointmentService(st.Appts, st.Users, validate, cfg.BookingWindowDays)
	intakeService := service.NewIntakeService(st.Intakes, st.Appts, validate)
	requestService := service.NewRequestService(st.Caretakers, st.Visits, st.Users, validate)

	// Getting routes
	handlers := &routes.Handlers{
		Users:        routes.NewUserDefault(userService),
		Appointments: routes.NewAppointmentDefault(apptService),
		Intakes:      routes.NewIntakeDefault(intakeService),
		Requests:     routes.NewRequestDefault(requestService),
		Health:       routes.NewHealthDefault(st.Ping, cfg.DBDriver),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType, echo.HeaderXRequestID},
	}))
	e.Use(echomw.BodyLimit("1M"))

	handlers.Register(e, middleware.Auth(tokens))

	e.Server.ReadTimeout = 15 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.IdleTimeout = 60 * time.Second

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("auth", cfg.AuthProvider).Msg("starting server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
