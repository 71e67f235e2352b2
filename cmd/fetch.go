package main

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chiri-lab/atlas-cli/internal/fetcher"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the statistic and boundary archives",
	Long:  "Downloads the configured statistic and boundary dataset URLs into the data directory, extracting ZIP archives in place.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		urls := make([]string, 0, 2)
		if cfg.Fetch.StatsURL != "" {
			urls = append(urls, cfg.Fetch.StatsURL)
		}
		if cfg.Fetch.BoundaryURL != "" {
			urls = append(urls, cfg.Fetch.BoundaryURL)
		}
		if len(urls) == 0 {
			return eris.New("cmd: neither fetch.stats_url nor fetch.boundary_url is set")
		}

		f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
			UserAgent:  cfg.Fetch.UserAgent,
			Timeout:    time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
			MaxRetries: cfg.Fetch.MaxRetries,
			RatePerSec: cfg.Fetch.RatePerSec,
		})

		for _, url := range urls {
			path, err := f.Download(ctx, url, cfg.Fetch.DestDir)
			if err != nil {
				return err
			}

			if !strings.EqualFold(filepath.Ext(path), ".zip") {
				continue
			}
			extracted, err := fetcher.ExtractZIP(path, cfg.Fetch.DestDir)
			if err != nil {
				return err
			}
			zap.L().Info("fetch: extracted archive",
				zap.String("archive", path),
				zap.Int("files", len(extracted)),
			)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}
