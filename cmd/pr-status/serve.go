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
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/untibullet/pr-status-sync/internal/handlers"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve stored reports over HTTP and trigger runs on demand",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		defer a.logger.Sync()

		logger := a.logger
		logger.Info("starting PR status service",
			zap.String("server_address", a.cfg.Server.GetAddress()),
			zap.String("reports_dir", a.reports.Dir()))

		// Инициализация обработчиков
		handler := handlers.New(a.reports, a.auditor, a.repos, logger)

		// Настройка Echo сервера
		e := echo.New()
		e.HideBanner = true
		e.HidePort = true

		// Middleware
		e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
			LogURI:    true,
			LogStatus: true,
			LogError:  true,
			LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
				if v.Error == nil {
					logger.Info("request",
						zap.String("method", c.Request().Method),
						zap.String("uri", v.URI),
						zap.Int("status", v.Status),
					)
				} else {
					logger.Error("request error",
						zap.String("method", c.Request().Method),
						zap.String("uri", v.URI),
						zap.Int("status", v.Status),
						zap.Error(v.Error),
					)
				}
				return nil
			},
		}))
		e.Use(middleware.Recover())

		// Регистрация роутов
		handler.RegisterRoutes(e)

		// Graceful shutdown
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			addr := a.cfg.Server.GetAddress()
			logger.Info("server listening", zap.String("address", addr))
			if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Fatal("server start failed", zap.Error(err))
			}
		}()

		<-ctx.Done()
		logger.Info("shutting down server gracefully")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := e.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", zap.Error(err))
		}

		logger.Info("server stopped")
		return nil
	},
}
