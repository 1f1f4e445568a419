package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/cyberguard/awareness-service/internal/handlers"
	"github.com/cyberguard/awareness-service/internal/utils"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer(cmd)
	},
}

func runServer(cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	cmd.SetContext(ctx)

	return withApp(cmd, appOptions{}, func(ctx context.Context, a *app) error {
		if a.cfg.IsProduction() {
			gin.SetMode(gin.ReleaseMode)
		}

		router := gin.New()
		router.Use(utils.RequestID(), utils.LoggerMiddleware(a.logger), gin.Recovery())
		if origins := a.cfg.AllowedOrigins(); len(origins) > 0 {
			router.Use(cors.New(cors.Config{
				AllowOrigins:     origins,
				AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
				AllowHeaders:     []string{"Content-Type", "Authorization", handlers.ClientHeader, utils.RequestIDHeader},
				ExposeHeaders:    []string{"Content-Length", "Content-Disposition", utils.RequestIDHeader},
				AllowCredentials: true,
				MaxAge:           12 * time.Hour,
			}))
		}

		handlers.NewHandlerManager(a.services, a.logger, handlers.RouterOptions{
			RequireLogin:  a.cfg.RequireLogin,
			SecureCookies: a.cfg.IsProduction(),
		}).SetupRoutes(router)

		srv := &http.Server{
			Addr:              ":" + a.cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			a.logger.Info("Starting server",
				"port", a.cfg.Port,
				"environment", a.cfg.Environment,
				"store", a.cfg.StoreBackend,
				"accounts", a.services.Auth() != nil)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		a.logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
}
