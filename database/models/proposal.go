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

package models

import (
	"errors"
	"time"
)

var ErrProposalNotFound = errors.New("proposal not found")

// ErrInvalidTransition is returned when a lifecycle transition is
// attempted on a proposal that is not in the expected current state
var ErrInvalidTransition = errors.New("invalid proposal status transition")

// ProposalKind constants represent the kind of change being proposed.
const (
	ProposalKindCreate = "create"
	ProposalKindUpdate = "update"
	ProposalKindDelete = "delete"
)

// ProposalStatus constants represent the lifecycle state of a proposal.
// Valid transitions are pending -> committed and pending -> superseded;
// committed and superseded are terminal.
const (
	ProposalStatusPending    = "pending"
	ProposalStatusCommitted  = "committed"
	ProposalStatusSuperseded = "superseded"
)

// ValidProposalKind returns true if the given kind is a known proposal kind
func ValidProposalKind(kind string) bool {
	switch kind {
	case ProposalKindCreate, ProposalKindUpdate, ProposalKindDelete:
		return true
	default:
		return false
	}
}

// Proposal represents a supervised change request against the food
// catalog. The quorum threshold is captured at creation time so later
// configuration changes cannot retroactively alter in-flight proposals.
// The payload document lives in the blob store, keyed by proposal ID.
type Proposal struct {
	ID                uint   `gorm:"primarykey"`
	PublicID          string `gorm:"size:36;uniqueIndex;not null"`
	Kind              string `gorm:"size:16;index:idx_proposal_kind_status,priority:1;not null"`
	Status            string `gorm:"size:16;index:idx_proposal_kind_status,priority:2;not null"`
	TargetFoodID      *uint  `gorm:"index"` // nil for create proposals
	Reason            string `gorm:"size:1024"`
	ProposerID        string `gorm:"size:64;index;not null"`
	RequiredApprovals int    `gorm:"not null"`
	CreatedAt         time.Time
	CommittedAt       *time.Time
	SupersededAt      *time.Time
}

// TableName returns the table name
func (Proposal) TableName() string {
	return "proposal"
}
