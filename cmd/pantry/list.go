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
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/openplate/pantry"
	"github.com/openplate/pantry/internal/config"

	"github.com/spf13/cobra"
)

var listFlags = struct {
	kind string
}{}

func listRun(_ *cobra.Command, _ []string, cfg *config.Config) {
	logger := commonRun()

	p, err := pantry.New(
		pantry.NewConfig(
			pantry.WithLogger(logger),
			pantry.WithDatabasePath(cfg.DatabasePath),
			pantry.WithBlobPlugin(cfg.BlobPlugin),
			pantry.WithMetadataPlugin(cfg.MetadataPlugin),
		),
	)
	if err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
	defer p.Stop() //nolint:errcheck

	pending, err := p.ListPending(listFlags.kind, 0, 0)
	if err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(
		w,
		"ID\tPUBLIC ID\tKIND\tPROPOSER\tAPPROVALS\tCREATED",
	)
	for _, entry := range pending {
		fmt.Fprintf(
			w,
			"%d\t%s\t%s\t%s\t%d/%d\t%s\n",
			entry.Proposal.ID,
			entry.Proposal.PublicID,
			entry.Proposal.Kind,
			entry.Proposal.ProposerID,
			entry.ApprovalCount,
			entry.Proposal.RequiredApprovals,
			entry.Proposal.CreatedAt.Format("2006-01-02 15:04:05"),
		)
	}
	w.Flush() //nolint:errcheck
}

func listCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List pending proposals with their approval tallies",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := config.FromContext(cmd.Context())
			if cfg == nil {
				slog.Error("no config found in context")
				os.Exit(1)
			}
			listRun(cmd, args, cfg)
		},
	}
	cmd.Flags().
		StringVar(&listFlags.kind, "kind", "", "filter by proposal kind (create, update, delete)")
	return cmd
}
