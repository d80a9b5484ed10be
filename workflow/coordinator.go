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
	"errors"
	"time"

	"github.com/openplate/pantry/database/models"
	"github.com/openplate/pantry/event"
	"github.com/openplate/pantry/quorum"
)

// ApprovalResult reports the proposal state after an approval call.
// Recorded is false when the approver had already voted, which is an
// idempotent no-op rather than an error.
type ApprovalResult struct {
	Status            string
	CurrentCount      int
	RequiredApprovals int
	Recorded          bool
}

// Approve records a supervisor's vote on a pending proposal and commits
// the proposal once its quorum threshold is crossed. Duplicate votes
// from the same approver are idempotent no-ops. Approvals on a proposal
// that already left the pending state return the final state along with
// ErrProposalClosed; callers should present that as "already finalized"
// rather than as a failure.
//
// The duplicate-vote guard is the store's unique constraint on the
// (proposal, approver) pair. The pending check and the ledger insert
// hold the proposal's lock so a vote can never land after a concurrent
// commit closes the proposal; approvals on distinct proposals never
// contend.
func (w *Workflow) Approve(
	proposalId uint,
	approverId string,
) (*ApprovalResult, error) {
	// Released before the commit attempt below, which re-acquires it
	unlock := w.locks.Lock(proposalId)
	proposal, err := w.db.GetProposal(proposalId, nil)
	if err != nil {
		unlock()
		return nil, err
	}
	if proposal.Status != models.ProposalStatusPending {
		defer unlock()
		count, err := w.db.GetApprovalCount(proposalId, nil)
		if err != nil {
			return nil, err
		}
		return &ApprovalResult{
			Status:            proposal.Status,
			CurrentCount:      count,
			RequiredApprovals: proposal.RequiredApprovals,
		}, ErrProposalClosed
	}
	recorded, count, err := w.db.AddApproval(proposalId, approverId, nil)
	unlock()
	if err != nil {
		return nil, err
	}
	ret := &ApprovalResult{
		Status:            proposal.Status,
		CurrentCount:      count,
		RequiredApprovals: proposal.RequiredApprovals,
		Recorded:          recorded,
	}
	if !recorded {
		// Approver already voted
		w.metrics.approvalsDuplicate.Inc()
		return ret, nil
	}
	w.metrics.approvalsRecorded.Inc()
	w.logger.Info(
		"approval recorded",
		"component", "workflow",
		"proposal_id", proposalId,
		"approver", approverId,
		"count", count,
		"required", proposal.RequiredApprovals,
	)
	w.publishEvent(
		event.ApprovalRecordedEventType,
		event.ApprovalRecordedEvent{
			ProposalId:        uint64(proposalId),
			ApproverId:        approverId,
			ApprovalCount:     count,
			RequiredApprovals: proposal.RequiredApprovals,
			Timestamp:         time.Now(),
		},
	)
	if quorum.Reached(count, proposal.RequiredApprovals) {
		err := w.commitProposal(proposalId)
		switch {
		case err == nil, errors.Is(err, errAlreadyCommitted):
			// A concurrent caller winning the commit race is still
			// success from this approver's point of view
			ret.Status = models.ProposalStatusCommitted
		case errors.Is(err, ErrProposalClosed):
			// Superseded out from under us between the vote and the
			// commit attempt
			ret.Status = models.ProposalStatusSuperseded
		default:
			return nil, err
		}
	}
	return ret, nil
}
