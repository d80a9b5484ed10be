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
	"time"

	"github.com/openplate/pantry/database/models"
	"github.com/openplate/pantry/event"
)

// SupersedeProposal closes a pending proposal without applying it.
// Returns models.ErrInvalidTransition if the proposal already left the
// pending state. The per-proposal lock keeps this from racing an
// in-flight commit.
func (w *Workflow) SupersedeProposal(proposalId uint) error {
	unlock := w.locks.Lock(proposalId)
	defer unlock()
	proposal, err := w.db.GetProposal(proposalId, nil)
	if err != nil {
		return err
	}
	if proposal.Status == models.ProposalStatusSuperseded {
		// Repeat call; the metric and event already fired
		return nil
	}
	if err := w.db.MarkProposalSuperseded(proposalId, nil); err != nil {
		return err
	}
	w.metrics.proposalsSuperseded.Inc()
	w.logger.Info(
		"proposal superseded",
		"component", "workflow",
		"proposal_id", proposalId,
	)
	w.publishEvent(
		event.ProposalSupersededEventType,
		event.ProposalSupersededEvent{
			ProposalId: uint64(proposalId),
			PublicId:   proposal.PublicID,
			Timestamp:  time.Now(),
		},
	)
	return nil
}

// ArchiveProposal removes a proposal, its approvals, and its payload
// document. Administrative cleanup only; lifecycle transitions never
// destroy records.
func (w *Workflow) ArchiveProposal(proposalId uint) error {
	unlock := w.locks.Lock(proposalId)
	defer unlock()
	if err := w.db.ArchiveProposal(proposalId, nil); err != nil {
		return err
	}
	w.logger.Info(
		"proposal archived",
		"component", "workflow",
		"proposal_id", proposalId,
	)
	return nil
}
