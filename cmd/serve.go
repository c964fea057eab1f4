package cmd

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/basinlabs/baseswap/amm"
	"github.com/basinlabs/baseswap/api"
	"github.com/basinlabs/baseswap/auth"
	"github.com/basinlabs/baseswap/config"
	"github.com/basinlabs/baseswap/history"
	"github.com/basinlabs/baseswap/ledger"
	"github.com/basinlabs/baseswap/oracle"
	"github.com/basinlabs/baseswap/utils"
	"github.com/basinlabs/baseswap/utils/metrics"
	"github.com/basinlabs/baseswap/utils/monitor"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the exchange API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := utils.GetLogger()

		if err := config.LoadEnv(); err != nil {
			log.Debug("No .env file loaded", zap.Error(err))
		}

		cfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			return err
		}

		metrics.Initialize(&metrics.MetricsConfig{}, log)

		if cfg.PrometheusEnabled {
			mon, err := monitor.NewRuntimeMonitor(cmd.Context(), log, nil)
			if err != nil {
				return err
			}
			defer mon.Cleanup()
		}

		l := ledger.NewMemoryLedger()
		engine, err := amm.NewEngine(amm.EngineConfig{
			Ledger:  l,
			Account: cfg.EngineAccountAddress(),
			Base:    cfg.BaseAssetAddress(),
			Logger:  log,
			Metrics: metrics.NewEngineMetrics("baseswap"),
		})
		if err != nil {
			return err
		}

		oracleMetrics := metrics.NewOracleMetrics("baseswap")
		adapter, err := oracle.NewAdapter(oracle.AdapterConfig{
			Authority: auth.NewStaticOwners(cfg.OwnerAddresses()...),
			Logger:    log,
			Metrics:   oracleMetrics,
		})
		if err != nil {
			return err
		}

		// Bind the base feed when a provider is configured. Per-asset
		// feeds are bound by owners at runtime.
		if cfg.PriceFeed.BaseURL != "" {
			feed, err := oracle.NewHTTPFeed(oracle.HTTPFeedConfig{
				BaseURL:           cfg.PriceFeed.BaseURL,
				RequestsPerSecond: cfg.PriceFeed.RateLimit.RequestsPerSecond,
				Burst:             cfg.PriceFeed.RateLimit.BurstSize,
				CacheSize:         cfg.PriceFeed.CacheSize,
				MaxQuoteAge:       cfg.PriceFeed.MaxQuoteAge,
				Timeout:           cfg.PriceFeed.Timeout,
			}, log, oracleMetrics)
			if err != nil {
				return err
			}
			if err := adapter.UpdateBasePriceFeed(cfg.OwnerAddresses()[0], feed); err != nil {
				return err
			}
		}

		var store *history.Store
		if cfg.HistoryDSN != "" {
			store, err = history.Open(cfg.HistoryDSN)
			if err != nil {
				return err
			}
		}

		server, err := api.NewServer(api.ServerConfig{
			Engine:  engine,
			Oracle:  adapter,
			History: store,
			Logger:  log,
		})
		if err != nil {
			return err
		}

		httpServer := &http.Server{
			Addr:        cfg.ListenAddr,
			Handler:     server.Router(),
			ReadTimeout: cfg.ReadTimeout,
			IdleTimeout: cfg.IdleTimeout,
		}

		errChan := make(chan error, 1)
		go func() {
			log.Info("API server listening", zap.String("addr", cfg.ListenAddr))
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()

		select {
		case err := <-errChan:
			return err
		case <-cmd.Context().Done():
		}

		log.Info("Shutting down gracefully...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
