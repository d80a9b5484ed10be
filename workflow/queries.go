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
	"encoding/json"

	"github.com/openplate/pantry/database"
	"github.com/openplate/pantry/database/models"
)

// ProposalDetail is a proposal annotated with its current approval
// tally and decoded payload, suitable for rendering a change's detail
// view.
type ProposalDetail struct {
	Proposal      models.Proposal
	Payload       *models.FoodPayload
	ApprovalCount int
	Approvers     []string
}

// PendingProposal is a pending queue entry annotated with its current
// approval tally.
type PendingProposal struct {
	Proposal      models.Proposal
	ApprovalCount int
}

// GetProposal returns a proposal with its payload document, approval
// count, and approver list
func (w *Workflow) GetProposal(proposalId uint) (*ProposalDetail, error) {
	txn := w.db.Transaction(false)
	defer txn.Release()
	proposal, err := w.db.GetProposal(proposalId, txn)
	if err != nil {
		return nil, err
	}
	return w.proposalDetail(proposal, txn)
}

// GetProposalByPublicId returns a proposal by its public UUID
func (w *Workflow) GetProposalByPublicId(
	publicId string,
) (*ProposalDetail, error) {
	txn := w.db.Transaction(false)
	defer txn.Release()
	proposal, err := w.db.GetProposalByPublicId(publicId, txn)
	if err != nil {
		return nil, err
	}
	return w.proposalDetail(proposal, txn)
}

func (w *Workflow) proposalDetail(
	proposal *models.Proposal,
	txn *database.Txn,
) (*ProposalDetail, error) {
	ret := &ProposalDetail{
		Proposal: *proposal,
	}
	raw, err := w.db.ProposalPayload(proposal.ID, txn)
	if err != nil {
		return nil, err
	}
	if raw != nil {
		var payload models.FoodPayload
		if err := json.Unmarshal(raw, &payload); err != nil {
			return nil, err
		}
		ret.Payload = &payload
	}
	approvals, err := w.db.GetApprovals(proposal.ID, txn)
	if err != nil {
		return nil, err
	}
	ret.ApprovalCount = len(approvals)
	for _, approval := range approvals {
		ret.Approvers = append(ret.Approvers, approval.ApproverID)
	}
	return ret, nil
}

// ListPending returns currently pending proposals in ascending ID
// order, optionally filtered by kind, each annotated with its approval
// count. Paging restarts from afterId; limit <= 0 returns everything.
func (w *Workflow) ListPending(
	kind string,
	afterId uint,
	limit int,
) ([]PendingProposal, error) {
	txn := w.db.Transaction(false)
	defer txn.Release()
	proposals, err := w.db.GetPendingProposals(kind, afterId, limit, txn)
	if err != nil {
		return nil, err
	}
	ret := make([]PendingProposal, 0, len(proposals))
	for _, proposal := range proposals {
		count, err := w.db.GetApprovalCount(proposal.ID, txn)
		if err != nil {
			return nil, err
		}
		ret = append(ret, PendingProposal{
			Proposal:      proposal,
			ApprovalCount: count,
		})
	}
	return ret, nil
}
