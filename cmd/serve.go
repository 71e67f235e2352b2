package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chiri-lab/atlas-cli/internal/api"
	"github.com/chiri-lab/atlas-cli/internal/choropleth"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the classification and analysis API",
	Long:  "Loads the project point dataset and the usage taxonomy, then serves the choropleth classification, polygon analysis, and saved-area endpoints over HTTP until interrupted.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		points, err := loadPoints(cfg.Data)
		if err != nil {
			return err
		}
		rules, err := loadRules(cfg.Data)
		if err != nil {
			return err
		}

		classify := func(year, month, field string) (any, error) {
			return runClassification(year, month, choropleth.Indicator(field))
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           api.NewServer(s, points, rules, classify).Router(cfg.Server.AllowedOrigins),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			zap.L().Info("serve: listening", zap.Int("port", cfg.Server.Port), zap.Int("points", len(points)))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		zap.L().Info("serve: shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
