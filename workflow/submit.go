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

	"github.com/openplate/pantry/database/models"
	"github.com/openplate/pantry/event"

	"github.com/google/uuid"
)

// SubmitRequest describes a new change proposal. TargetFoodId is zero
// for create proposals and required for update and delete proposals.
// Payload carries the proposed full replacement state for create and
// update proposals and must be nil for delete proposals.
type SubmitRequest struct {
	Kind              string
	TargetFoodId      uint
	Payload           *models.FoodPayload
	Reason            string
	ProposerId        string
	RequiredApprovals int
	// SelfApprove records the proposer's own approval at submission
	// time. Whether a proposer may approve their own proposal is a
	// policy decision left to the caller.
	SelfApprove bool
}

// SubmitProposal validates a change request and stores it as a pending
// proposal. The quorum threshold is captured on the proposal so later
// configuration changes cannot alter in-flight proposals.
func (w *Workflow) SubmitProposal(
	req SubmitRequest,
) (*models.Proposal, error) {
	if err := w.validateSubmit(req); err != nil {
		return nil, err
	}
	var payload []byte
	if req.Payload != nil {
		var err error
		payload, err = json.Marshal(req.Payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
		}
	}
	proposal := &models.Proposal{
		PublicID:          uuid.NewString(),
		Kind:              req.Kind,
		Status:            models.ProposalStatusPending,
		Reason:            req.Reason,
		ProposerID:        req.ProposerId,
		RequiredApprovals: req.RequiredApprovals,
	}
	if req.TargetFoodId > 0 {
		targetId := req.TargetFoodId
		proposal.TargetFoodID = &targetId
	}
	if err := w.db.NewProposal(proposal, payload, nil); err != nil {
		return nil, err
	}
	w.metrics.proposalsSubmitted.WithLabelValues(req.Kind).Inc()
	w.logger.Info(
		"proposal submitted",
		"component", "workflow",
		"proposal_id", proposal.ID,
		"public_id", proposal.PublicID,
		"kind", proposal.Kind,
		"proposer", proposal.ProposerID,
	)
	w.publishEvent(
		event.ProposalSubmittedEventType,
		event.ProposalSubmittedEvent{
			ProposalId:        uint64(proposal.ID),
			PublicId:          proposal.PublicID,
			Kind:              proposal.Kind,
			ProposerId:        proposal.ProposerID,
			RequiredApprovals: proposal.RequiredApprovals,
			Timestamp:         proposal.CreatedAt,
		},
	)
	if req.SelfApprove {
		if _, err := w.Approve(proposal.ID, req.ProposerId); err != nil {
			return nil, err
		}
	}
	return proposal, nil
}

func (w *Workflow) validateSubmit(req SubmitRequest) error {
	if !models.ValidProposalKind(req.Kind) {
		return fmt.Errorf(
			"%w: unknown proposal kind %q",
			ErrInvalidPayload,
			req.Kind,
		)
	}
	if req.RequiredApprovals < 1 {
		return fmt.Errorf(
			"%w: required approvals must be at least 1",
			ErrInvalidPayload,
		)
	}
	if req.ProposerId == "" {
		return fmt.Errorf("%w: missing proposer", ErrInvalidPayload)
	}
	switch req.Kind {
	case models.ProposalKindCreate:
		if req.TargetFoodId != 0 {
			return fmt.Errorf(
				"%w: create proposal must not name a target",
				ErrInvalidPayload,
			)
		}
		return w.validatePayload(req.Payload)
	case models.ProposalKindUpdate:
		if err := w.validateTarget(req.TargetFoodId); err != nil {
			return err
		}
		return w.validatePayload(req.Payload)
	case models.ProposalKindDelete:
		if err := w.validateTarget(req.TargetFoodId); err != nil {
			return err
		}
		if req.Payload != nil {
			return fmt.Errorf(
				"%w: delete proposal must not carry a payload",
				ErrInvalidPayload,
			)
		}
		// A target can only have one delete proposal in flight
		existing, err := w.db.GetPendingProposalByTarget(
			models.ProposalKindDelete,
			req.TargetFoodId,
			nil,
		)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf(
				"%w: pending delete proposal %d",
				ErrDuplicateProposal,
				existing.ID,
			)
		}
	}
	return nil
}

func (w *Workflow) validatePayload(payload *models.FoodPayload) error {
	if payload == nil {
		return fmt.Errorf("%w: missing payload", ErrInvalidPayload)
	}
	if payload.Name == "" {
		return fmt.Errorf("%w: missing food name", ErrInvalidPayload)
	}
	if len(payload.MacroTable) > 0 && !json.Valid(payload.MacroTable) {
		return fmt.Errorf("%w: macro table is not valid JSON", ErrInvalidPayload)
	}
	for _, ingredient := range payload.Ingredients {
		if ingredient.Name == "" {
			return fmt.Errorf(
				"%w: ingredient with empty name",
				ErrInvalidPayload,
			)
		}
		if ingredient.HazardLevel > models.HazardLevelHigh {
			return fmt.Errorf(
				"%w: ingredient hazard level %d out of range",
				ErrInvalidPayload,
				ingredient.HazardLevel,
			)
		}
	}
	return nil
}

func (w *Workflow) validateTarget(targetFoodId uint) error {
	if targetFoodId == 0 {
		return fmt.Errorf("%w: missing target", ErrInvalidPayload)
	}
	_, err := w.db.GetFood(targetFoodId, false, nil)
	if err != nil {
		if errors.Is(err, models.ErrFoodNotFound) {
			return fmt.Errorf(
				"%w: target food %d not found",
				ErrInvalidPayload,
				targetFoodId,
			)
		}
		return err
	}
	return nil
}
