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
	"errors"
	"fmt"
	"time"

	"github.com/openplate/pantry/database"
	"github.com/openplate/pantry/database/models"
	"github.com/openplate/pantry/event"
)

// errAlreadyCommitted marks the benign race where a concurrent caller
// performed the commit first. It never escapes to approvers.
var errAlreadyCommitted = errors.New("proposal already committed")

// commitProposal applies a proposal's payload to the canonical food
// table and transitions the proposal to committed. The whole sequence
// runs under the per-proposal lock and inside a single transaction:
// the proposal is re-read and verified still pending immediately
// before applying, so the apply and the state transition happen at
// most once per proposal. A crash mid-operation leaves the proposal
// pending and the canonical row untouched.
func (w *Workflow) commitProposal(proposalId uint) error {
	unlock := w.locks.Lock(proposalId)
	defer unlock()

	txn := w.db.Transaction(true)
	defer txn.Release()

	proposal, err := w.db.GetProposal(proposalId, txn)
	if err != nil {
		return err
	}
	switch proposal.Status {
	case models.ProposalStatusPending:
		// Still ours to commit
	case models.ProposalStatusCommitted:
		return errAlreadyCommitted
	default:
		return ErrProposalClosed
	}

	var foodId uint
	var revision uint64
	var superseded []*models.Proposal
	switch proposal.Kind {
	case models.ProposalKindCreate:
		food, err := w.applyCreate(proposal, txn)
		if err != nil {
			return err
		}
		foodId = food.ID
		revision = food.Revision
	case models.ProposalKindUpdate:
		food, err := w.applyUpdate(proposal, txn)
		if err != nil {
			return err
		}
		foodId = food.ID
		revision = food.Revision
	case models.ProposalKindDelete:
		foodId = *proposal.TargetFoodID
		if err := w.db.TombstoneFood(foodId, time.Now(), txn); err != nil {
			return err
		}
		// Nothing else targeting this entry can ever commit
		superseded, err = w.supersedeTargeting(proposal, txn)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown proposal kind %q", proposal.Kind)
	}
	if err := w.db.MarkProposalCommitted(proposalId, txn); err != nil {
		return err
	}
	if err := txn.Commit(); err != nil {
		return err
	}

	w.metrics.proposalsCommitted.WithLabelValues(proposal.Kind).Inc()
	w.logger.Info(
		"proposal committed",
		"component", "workflow",
		"proposal_id", proposalId,
		"kind", proposal.Kind,
		"food_id", foodId,
		"revision", revision,
	)
	w.publishEvent(
		event.ProposalCommittedEventType,
		event.ProposalCommittedEvent{
			ProposalId: uint64(proposalId),
			PublicId:   proposal.PublicID,
			Kind:       proposal.Kind,
			FoodId:     foodId,
			Revision:   revision,
			Timestamp:  time.Now(),
		},
	)
	for _, loser := range superseded {
		w.metrics.proposalsSuperseded.Inc()
		w.publishEvent(
			event.ProposalSupersededEventType,
			event.ProposalSupersededEvent{
				ProposalId:   uint64(loser.ID),
				PublicId:     loser.PublicID,
				SupersededBy: uint64(proposalId),
				Timestamp:    time.Now(),
			},
		)
	}
	return nil
}

func (w *Workflow) applyCreate(
	proposal *models.Proposal,
	txn *database.Txn,
) (*models.Food, error) {
	payload, err := w.proposalFoodPayload(proposal.ID, txn)
	if err != nil {
		return nil, err
	}
	food := &models.Food{
		Revision:   1,
		ProposalID: proposal.ID,
	}
	if err := applyPayload(food, payload); err != nil {
		return nil, err
	}
	if err := w.db.NewFood(food, txn); err != nil {
		return nil, err
	}
	return food, nil
}

func (w *Workflow) applyUpdate(
	proposal *models.Proposal,
	txn *database.Txn,
) (*models.Food, error) {
	payload, err := w.proposalFoodPayload(proposal.ID, txn)
	if err != nil {
		return nil, err
	}
	food, err := w.db.GetFood(*proposal.TargetFoodID, false, txn)
	if err != nil {
		return nil, err
	}
	if err := applyPayload(food, payload); err != nil {
		return nil, err
	}
	food.Revision++
	if err := w.db.UpdateFood(food, txn); err != nil {
		return nil, err
	}
	return food, nil
}

// supersedeTargeting closes any other pending proposal aimed at the
// same target, in the same transaction as the winning commit
func (w *Workflow) supersedeTargeting(
	winner *models.Proposal,
	txn *database.Txn,
) ([]*models.Proposal, error) {
	var ret []*models.Proposal
	for _, kind := range []string{
		models.ProposalKindUpdate,
		models.ProposalKindDelete,
	} {
		for {
			loser, err := w.db.GetPendingProposalByTarget(
				kind,
				*winner.TargetFoodID,
				txn,
			)
			if err != nil {
				return nil, err
			}
			if loser == nil {
				break
			}
			if loser.ID == winner.ID {
				// The winner is transitioned separately
				break
			}
			if err := w.db.MarkProposalSuperseded(loser.ID, txn); err != nil {
				return nil, err
			}
			ret = append(ret, loser)
		}
	}
	return ret, nil
}

func (w *Workflow) proposalFoodPayload(
	proposalId uint,
	txn *database.Txn,
) (*models.FoodPayload, error) {
	raw, err := w.db.ProposalPayload(proposalId, txn)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, fmt.Errorf(
			"proposal %d has no payload document",
			proposalId,
		)
	}
	var payload models.FoodPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode proposal payload: %w", err)
	}
	return &payload, nil
}

func applyPayload(food *models.Food, payload *models.FoodPayload) error {
	ingredients, err := json.Marshal(payload.Ingredients)
	if err != nil {
		return fmt.Errorf("encode ingredients: %w", err)
	}
	food.Name = payload.Name
	food.Restaurant = payload.Restaurant
	food.ServingSize = payload.ServingSize
	food.MacroTable = []byte(payload.MacroTable)
	food.Ingredients = ingredients
	food.HazardLevel = models.HazardLevelFromIngredients(payload.Ingredients)
	food.IsOrganic = payload.IsOrganic
	food.IsGlutenFree = payload.IsGlutenFree
	food.IsAlcoholFree = payload.IsAlcoholFree
	food.IsLactoseFree = payload.IsLactoseFree
	return nil
}
