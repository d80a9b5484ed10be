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

package workflow

import (
	"context"
	"errors"
	"time"

	"github.com/openplate/pantry/quorum"
)

const sweepBatchSize = 100

// Sweep commits any pending proposal whose recorded approval count
// already meets its threshold. This catches proposals stranded by a
// crash between the ledger write and the commit. Returns the number of
// proposals committed.
func (w *Workflow) Sweep(ctx context.Context) (int, error) {
	var committed int
	var afterId uint
	for {
		if err := ctx.Err(); err != nil {
			return committed, err
		}
		proposals, err := w.db.GetPendingProposals(
			"",
			afterId,
			sweepBatchSize,
			nil,
		)
		if err != nil {
			return committed, err
		}
		if len(proposals) == 0 {
			return committed, nil
		}
		for _, proposal := range proposals {
			if err := ctx.Err(); err != nil {
				return committed, err
			}
			afterId = proposal.ID
			count, err := w.db.GetApprovalCount(proposal.ID, nil)
			if err != nil {
				return committed, err
			}
			if !quorum.Reached(count, proposal.RequiredApprovals) {
				continue
			}
			err = w.commitProposal(proposal.ID)
			if err != nil {
				if errors.Is(err, errAlreadyCommitted) ||
					errors.Is(err, ErrProposalClosed) {
					// Resolved by someone else since we listed it
					continue
				}
				return committed, err
			}
			committed++
			w.metrics.sweepCommits.Inc()
		}
	}
}

// RunSweeper runs Sweep on the given interval until the context is
// cancelled
func (w *Workflow) RunSweeper(
	ctx context.Context,
	interval time.Duration,
) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			committed, err := w.Sweep(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				w.logger.Error(
					"pending sweep failed",
					"component", "workflow",
					"error", err,
				)
				continue
			}
			if committed > 0 {
				w.logger.Info(
					"pending sweep committed proposals",
					"component", "workflow",
					"count", committed,
				)
			}
		}
	}
}
