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

package database

import (
	"time"

	"github.com/openplate/pantry/database/models"
)

// AddApproval records an approver's vote on a proposal. Returns whether
// the vote was newly recorded and the resulting distinct-approver count.
// A duplicate vote is a no-op that reports recorded=false with the
// unchanged count. Insert and count happen in the same transaction so
// the returned count is consistent with the write.
func (d *Database) AddApproval(
	proposalId uint,
	approverId string,
	txn *Txn,
) (bool, int, error) {
	if txn == nil {
		txn = d.Transaction(true)
		defer txn.Release()
		recorded, count, err := d.AddApproval(proposalId, approverId, txn)
		if err != nil {
			return false, 0, err
		}
		return recorded, count, txn.Commit()
	}
	approval := &models.Approval{
		ProposalID: proposalId,
		ApproverID: approverId,
		ApprovedAt: time.Now(),
	}
	recorded, err := d.metadata.AddApproval(approval, txn.Metadata())
	if err != nil {
		return false, 0, storeError(err)
	}
	count, err := d.metadata.GetApprovalCount(proposalId, txn.Metadata())
	if err != nil {
		return false, 0, storeError(err)
	}
	return recorded, count, nil
}

// GetApprovalCount returns the distinct-approver count for a proposal
func (d *Database) GetApprovalCount(
	proposalId uint,
	txn *Txn,
) (int, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Commit() //nolint:errcheck
	}
	count, err := d.metadata.GetApprovalCount(proposalId, txn.Metadata())
	return count, storeError(err)
}

// HasApproved returns true if the given approver has voted on the given
// proposal
func (d *Database) HasApproved(
	proposalId uint,
	approverId string,
	txn *Txn,
) (bool, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Commit() //nolint:errcheck
	}
	has, err := d.metadata.HasApproval(proposalId, approverId, txn.Metadata())
	return has, storeError(err)
}

// GetApprovals returns all recorded approvals for a proposal
func (d *Database) GetApprovals(
	proposalId uint,
	txn *Txn,
) ([]models.Approval, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Commit() //nolint:errcheck
	}
	ret, err := d.metadata.GetApprovals(proposalId, txn.Metadata())
	return ret, storeError(err)
}
