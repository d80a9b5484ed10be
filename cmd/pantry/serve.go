// Copyright 2025 OpenPlate Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/openplate/pantry"
	"github.com/openplate/pantry/internal/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

func serveRun(_ *cobra.Command, _ []string, cfg *config.Config) {
	logger := commonRun()

	sweepInterval, err := time.ParseDuration(cfg.SweepInterval)
	if err != nil {
		slog.Error(fmt.Sprintf("invalid sweep interval: %s", err))
		os.Exit(1)
	}

	p, err := pantry.New(
		pantry.NewConfig(
			pantry.WithLogger(logger),
			pantry.WithDatabasePath(cfg.DatabasePath),
			pantry.WithBlobPlugin(cfg.BlobPlugin),
			pantry.WithMetadataPlugin(cfg.MetadataPlugin),
			pantry.WithRequiredApprovals(cfg.RequiredApprovals),
			pantry.WithSweepInterval(sweepInterval),
			pantry.WithTracing(cfg.TracingEnabled),
			pantry.WithTracingStdout(cfg.TracingStdout),
			// Enable metrics with default prometheus registry
			pantry.WithPrometheusRegistry(prometheus.DefaultRegisterer),
		),
	)
	if err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}

	// Metrics listener
	http.Handle("/metrics", promhttp.Handler())
	logger.Info(
		fmt.Sprintf(
			"serving prometheus metrics on 127.0.0.1:%d",
			cfg.MetricsPort,
		),
		"component", programName,
	)
	metricsServer := &http.Server{
		Addr:              fmt.Sprintf("127.0.0.1:%d", cfg.MetricsPort),
		ReadHeaderTimeout: 60 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil &&
			err != http.ErrServerClosed {
			logger.Error(
				fmt.Sprintf("failed to start metrics listener: %s", err),
				"component", programName,
			)
			os.Exit(1)
		}
	}()

	// Wait for interrupt/termination signal
	signalCtx, signalCtxStop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer signalCtxStop()

	if err := p.Run(signalCtx); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(),
		5*time.Second,
	)
	defer shutdownCancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error(
			fmt.Sprintf("metrics listener shutdown: %s", err),
			"component", programName,
		)
	}
}

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the approval workflow service with a periodic pending sweep",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := config.FromContext(cmd.Context())
			if cfg == nil {
				slog.Error("no config found in context")
				os.Exit(1)
			}
			serveRun(cmd, args, cfg)
		},
	}
}
