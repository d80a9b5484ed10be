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
	"log/slog"
	"os"

	"github.com/openplate/pantry"
	"github.com/openplate/pantry/internal/config"

	"github.com/spf13/cobra"
)

func sweepRun(_ *cobra.Command, _ []string, cfg *config.Config) {
	logger := commonRun()

	p, err := pantry.New(
		pantry.NewConfig(
			pantry.WithLogger(logger),
			pantry.WithDatabasePath(cfg.DatabasePath),
			pantry.WithBlobPlugin(cfg.BlobPlugin),
			pantry.WithMetadataPlugin(cfg.MetadataPlugin),
			pantry.WithRequiredApprovals(cfg.RequiredApprovals),
		),
	)
	if err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
	defer p.Stop() //nolint:errcheck

	committed, err := p.Sweep(context.Background())
	if err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
	logger.Info(
		"sweep complete",
		"component", programName,
		"committed", committed,
	)
}

func sweepCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Commit pending proposals that already meet their approval threshold",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := config.FromContext(cmd.Context())
			if cfg == nil {
				slog.Error("no config found in context")
				os.Exit(1)
			}
			sweepRun(cmd, args, cfg)
		},
	}
}
