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
	"errors"
	"fmt"
	"time"

	"github.com/openplate/pantry/database/models"
	"github.com/openplate/pantry/database/types"
)

// NewProposal stores a new change proposal and its payload document.
// The proposal row goes to the metadata store and the payload JSON to
// the blob store, keyed by the assigned proposal ID, in the same
// transaction.
func (d *Database) NewProposal(
	proposal *models.Proposal,
	payload []byte,
	txn *Txn,
) error {
	if txn == nil {
		txn = d.Transaction(true)
		defer txn.Release()
		if err := d.NewProposal(proposal, payload, txn); err != nil {
			return err
		}
		return txn.Commit()
	}
	if err := d.metadata.NewProposal(proposal, txn.Metadata()); err != nil {
		return storeError(err)
	}
	if len(payload) > 0 {
		key := types.ProposalPayloadBlobKey(uint64(proposal.ID))
		if err := d.blob.Set(txn.Blob(), key, payload); err != nil {
			return fmt.Errorf("store proposal payload: %w", storeError(err))
		}
	}
	return nil
}

// ProposalPayload returns the payload document for a proposal, or nil
// when the proposal carries no payload (delete proposals).
func (d *Database) ProposalPayload(
	proposalId uint,
	txn *Txn,
) ([]byte, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	key := types.ProposalPayloadBlobKey(uint64(proposalId))
	ret, err := d.blob.Get(txn.Blob(), key)
	if err != nil {
		if errors.Is(err, types.ErrBlobKeyNotFound) {
			return nil, nil
		}
		return nil, storeError(err)
	}
	return ret, nil
}

// GetProposal returns a proposal by its numeric ID
func (d *Database) GetProposal(
	proposalId uint,
	txn *Txn,
) (*models.Proposal, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Commit() //nolint:errcheck
	}
	ret, err := d.metadata.GetProposal(proposalId, txn.Metadata())
	if err != nil {
		return nil, storeError(err)
	}
	if ret == nil {
		return nil, models.ErrProposalNotFound
	}
	return ret, nil
}

// GetProposalByPublicId returns a proposal by its public UUID
func (d *Database) GetProposalByPublicId(
	publicId string,
	txn *Txn,
) (*models.Proposal, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Commit() //nolint:errcheck
	}
	ret, err := d.metadata.GetProposalByPublicId(publicId, txn.Metadata())
	if err != nil {
		return nil, storeError(err)
	}
	if ret == nil {
		return nil, models.ErrProposalNotFound
	}
	return ret, nil
}

// GetPendingProposals returns pending proposals in ascending ID order,
// optionally filtered by kind
func (d *Database) GetPendingProposals(
	kind string,
	afterId uint,
	limit int,
	txn *Txn,
) ([]models.Proposal, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Commit() //nolint:errcheck
	}
	ret, err := d.metadata.GetPendingProposals(
		kind,
		afterId,
		limit,
		txn.Metadata(),
	)
	return ret, storeError(err)
}

// GetPendingProposalByTarget returns the pending proposal of the given
// kind targeting the given food entry, or nil if none exists
func (d *Database) GetPendingProposalByTarget(
	kind string,
	targetFoodId uint,
	txn *Txn,
) (*models.Proposal, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Commit() //nolint:errcheck
	}
	ret, err := d.metadata.GetPendingProposalByTarget(
		kind,
		targetFoodId,
		txn.Metadata(),
	)
	return ret, storeError(err)
}

// MarkProposalCommitted transitions a proposal from pending to
// committed. Returns models.ErrInvalidTransition if the proposal is not
// currently pending; the transition is idempotent at the storage level,
// so concurrent callers race safely and exactly one wins.
func (d *Database) MarkProposalCommitted(
	proposalId uint,
	txn *Txn,
) error {
	return d.setProposalStatus(
		proposalId,
		models.ProposalStatusCommitted,
		txn,
	)
}

// MarkProposalSuperseded transitions a proposal from pending to
// superseded. Returns models.ErrInvalidTransition if the proposal is
// not currently pending.
func (d *Database) MarkProposalSuperseded(
	proposalId uint,
	txn *Txn,
) error {
	return d.setProposalStatus(
		proposalId,
		models.ProposalStatusSuperseded,
		txn,
	)
}

func (d *Database) setProposalStatus(
	proposalId uint,
	toStatus string,
	txn *Txn,
) error {
	if txn == nil {
		txn = d.Transaction(true)
		defer txn.Release()
		if err := d.setProposalStatus(proposalId, toStatus, txn); err != nil {
			return err
		}
		return txn.Commit()
	}
	ok, err := d.metadata.SetProposalStatus(
		proposalId,
		models.ProposalStatusPending,
		toStatus,
		time.Now(),
		txn.Metadata(),
	)
	if err != nil {
		return storeError(err)
	}
	if !ok {
		// Either the proposal does not exist or it already left pending
		proposal, err := d.metadata.GetProposal(proposalId, txn.Metadata())
		if err != nil {
			return storeError(err)
		}
		if proposal == nil {
			return models.ErrProposalNotFound
		}
		if proposal.Status == toStatus {
			// Lost a benign race against an identical transition
			return nil
		}
		return models.ErrInvalidTransition
	}
	return nil
}

// ArchiveProposal removes a proposal, its approvals, and its payload
// document. This is administrative cleanup only; lifecycle transitions
// never destroy records.
func (d *Database) ArchiveProposal(
	proposalId uint,
	txn *Txn,
) error {
	if txn == nil {
		txn = d.Transaction(true)
		defer txn.Release()
		if err := d.ArchiveProposal(proposalId, txn); err != nil {
			return err
		}
		return txn.Commit()
	}
	if err := d.metadata.DeleteApprovals(proposalId, txn.Metadata()); err != nil {
		return storeError(err)
	}
	if err := d.metadata.DeleteProposal(proposalId, txn.Metadata()); err != nil {
		return storeError(err)
	}
	key := types.ProposalPayloadBlobKey(uint64(proposalId))
	if err := d.blob.Delete(txn.Blob(), key); err != nil {
		return fmt.Errorf("delete proposal payload: %w", storeError(err))
	}
	return nil
}
