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
	"errors"
	"fmt"
	"time"

	"github.com/openplate/pantry/database/models"
	"github.com/openplate/pantry/database/types"
	"gorm.io/gorm"
)

// NewProposal inserts a new change proposal.
func (d *MetadataStoreSqlite) NewProposal(
	proposal *models.Proposal,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	if result := db.Create(proposal); result.Error != nil {
		return fmt.Errorf("NewProposal: insert: %w", result.Error)
	}
	return nil
}

// GetProposal retrieves a proposal by ID, or nil if not found.
func (d *MetadataStoreSqlite) GetProposal(
	proposalId uint,
	txn types.Txn,
) (*models.Proposal, error) {
	var ret models.Proposal
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	result := db.Where("id = ?", proposalId).First(&ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("GetProposal: query: %w", result.Error)
	}
	return &ret, nil
}

// GetProposalByPublicId retrieves a proposal by its public UUID, or nil
// if not found.
func (d *MetadataStoreSqlite) GetProposalByPublicId(
	publicId string,
	txn types.Txn,
) (*models.Proposal, error) {
	var ret models.Proposal
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	result := db.Where("public_id = ?", publicId).First(&ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf(
			"GetProposalByPublicId: query: %w",
			result.Error,
		)
	}
	return &ret, nil
}

// GetPendingProposals retrieves pending proposals in ascending ID order,
// optionally filtered by kind. Paging is restartable: pass the last seen
// ID as afterId to resume.
func (d *MetadataStoreSqlite) GetPendingProposals(
	kind string,
	afterId uint,
	limit int,
	txn types.Txn,
) ([]models.Proposal, error) {
	var ret []models.Proposal
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	query := db.Where(
		"status = ? AND id > ?",
		models.ProposalStatusPending,
		afterId,
	)
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}
	query = query.Order("id")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if result := query.Find(&ret); result.Error != nil {
		return nil, fmt.Errorf(
			"GetPendingProposals: query: %w",
			result.Error,
		)
	}
	return ret, nil
}

// GetPendingProposalByTarget retrieves a pending proposal of the given
// kind for the given target food, or nil if none exists. Used to guard
// against duplicate removal proposals for the same entry.
func (d *MetadataStoreSqlite) GetPendingProposalByTarget(
	kind string,
	targetFoodId uint,
	txn types.Txn,
) (*models.Proposal, error) {
	var ret models.Proposal
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	result := db.Where(
		"kind = ? AND status = ? AND target_food_id = ?",
		kind,
		models.ProposalStatusPending,
		targetFoodId,
	).First(&ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf(
			"GetPendingProposalByTarget: query: %w",
			result.Error,
		)
	}
	return &ret, nil
}

// SetProposalStatus performs a guarded status transition. The UPDATE is
// conditional on the current status, so concurrent callers race safely:
// exactly one observes a transition, the rest see zero rows affected and
// get false back.
func (d *MetadataStoreSqlite) SetProposalStatus(
	proposalId uint,
	fromStatus string,
	toStatus string,
	at time.Time,
	txn types.Txn,
) (bool, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return false, err
	}
	updates := map[string]any{
		"status": toStatus,
	}
	switch toStatus {
	case models.ProposalStatusCommitted:
		updates["committed_at"] = at
	case models.ProposalStatusSuperseded:
		updates["superseded_at"] = at
	}
	result := db.Model(&models.Proposal{}).
		Where("id = ? AND status = ?", proposalId, fromStatus).
		Updates(updates)
	if result.Error != nil {
		return false, fmt.Errorf(
			"SetProposalStatus: update: %w",
			result.Error,
		)
	}
	return result.RowsAffected > 0, nil
}

// DeleteProposal removes a proposal row. Used only by administrative
// archival; lifecycle transitions never delete.
func (d *MetadataStoreSqlite) DeleteProposal(
	proposalId uint,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	result := db.Where("id = ?", proposalId).
		Delete(&models.Proposal{})
	if result.Error != nil {
		return fmt.Errorf("DeleteProposal: delete: %w", result.Error)
	}
	return nil
}
