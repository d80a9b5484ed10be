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

package sqlite

import (
	"fmt"

	"github.com/openplate/pantry/database/models"
	"github.com/openplate/pantry/database/types"
	"gorm.io/gorm/clause"
)

// AddApproval records a supervisor's vote. The insert rides on the
// composite unique index over (proposal_id, approver_id): a duplicate
// vote hits the ON CONFLICT DO NOTHING clause and reports zero rows
// affected, which we surface as recorded=false. Concurrent inserts for
// distinct approvers do not contend.
func (d *MetadataStoreSqlite) AddApproval(
	approval *models.Approval,
	txn types.Txn,
) (bool, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return false, err
	}
	onConflict := clause.OnConflict{
		Columns: []clause.Column{
			{Name: "proposal_id"},
			{Name: "approver_id"},
		},
		DoNothing: true,
	}
	result := db.Clauses(onConflict).Create(approval)
	if result.Error != nil {
		return false, fmt.Errorf("AddApproval: insert: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// GetApprovalCount returns the number of distinct approvers recorded for
// a proposal. The unique index guarantees one row per approver, so a
// plain COUNT never double counts.
func (d *MetadataStoreSqlite) GetApprovalCount(
	proposalId uint,
	txn types.Txn,
) (int, error) {
	var count int64
	db, err := d.resolveDB(txn)
	if err != nil {
		return 0, err
	}
	result := db.Model(&models.Approval{}).
		Where("proposal_id = ?", proposalId).
		Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf(
			"GetApprovalCount: query: %w",
			result.Error,
		)
	}
	return int(count), nil
}

// HasApproval returns true if the given approver has already voted on
// the given proposal.
func (d *MetadataStoreSqlite) HasApproval(
	proposalId uint,
	approverId string,
	txn types.Txn,
) (bool, error) {
	var count int64
	db, err := d.resolveDB(txn)
	if err != nil {
		return false, err
	}
	result := db.Model(&models.Approval{}).
		Where(
			"proposal_id = ? AND approver_id = ?",
			proposalId,
			approverId,
		).
		Count(&count)
	if result.Error != nil {
		return false, fmt.Errorf("HasApproval: query: %w", result.Error)
	}
	return count > 0, nil
}

// GetApprovals retrieves all recorded approvals for a proposal in the
// order they were cast.
func (d *MetadataStoreSqlite) GetApprovals(
	proposalId uint,
	txn types.Txn,
) ([]models.Approval, error) {
	var ret []models.Approval
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	result := db.Where("proposal_id = ?", proposalId).
		Order("id").
		Find(&ret)
	if result.Error != nil {
		return nil, fmt.Errorf("GetApprovals: query: %w", result.Error)
	}
	return ret, nil
}

// DeleteApprovals removes all approvals for a proposal. Used only
// alongside the parent proposal's archival.
func (d *MetadataStoreSqlite) DeleteApprovals(
	proposalId uint,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	result := db.Where("proposal_id = ?", proposalId).
		Delete(&models.Approval{})
	if result.Error != nil {
		return fmt.Errorf("DeleteApprovals: delete: %w", result.Error)
	}
	return nil
}
