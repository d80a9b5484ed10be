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

package metadata

import (
	"log/slog"
	"time"

	"github.com/openplate/pantry/database/models"
	"github.com/openplate/pantry/database/plugin/metadata/sqlite"
	"github.com/openplate/pantry/database/types"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

type MetadataStore interface {
	// Database
	Close() error
	DB() *gorm.DB
	GetCommitTimestamp() (int64, error)
	SetCommitTimestamp(int64, types.Txn) error
	Transaction() types.Txn

	// Proposals
	NewProposal(*models.Proposal, types.Txn) error
	GetProposal(
		uint, // proposalId
		types.Txn,
	) (*models.Proposal, error)
	GetProposalByPublicId(
		string, // publicId
		types.Txn,
	) (*models.Proposal, error)
	GetPendingProposals(
		string, // kind, empty for all
		uint, // afterId
		int, // limit, <=0 for no limit
		types.Txn,
	) ([]models.Proposal, error)
	GetPendingProposalByTarget(
		string, // kind
		uint, // targetFoodId
		types.Txn,
	) (*models.Proposal, error)
	SetProposalStatus(
		uint, // proposalId
		string, // fromStatus
		string, // toStatus
		time.Time,
		types.Txn,
	) (bool, error)
	DeleteProposal(
		uint, // proposalId
		types.Txn,
	) error

	// Approvals
	AddApproval(*models.Approval, types.Txn) (bool, error)
	GetApprovalCount(
		uint, // proposalId
		types.Txn,
	) (int, error)
	HasApproval(
		uint, // proposalId
		string, // approverId
		types.Txn,
	) (bool, error)
	GetApprovals(
		uint, // proposalId
		types.Txn,
	) ([]models.Approval, error)
	DeleteApprovals(
		uint, // proposalId
		types.Txn,
	) error

	// Foods
	NewFood(*models.Food, types.Txn) error
	GetFood(
		uint, // foodId
		bool, // includeDeleted
		types.Txn,
	) (*models.Food, error)
	GetFoodByName(
		string, // name
		types.Txn,
	) (*models.Food, error)
	UpdateFood(*models.Food, types.Txn) error
	TombstoneFood(
		uint, // foodId
		time.Time,
		types.Txn,
	) error
}

// For now, this always returns a sqlite plugin
func New(
	pluginName, dataDir string,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
) (MetadataStore, error) {
	return sqlite.New(dataDir, logger, promRegistry)
}
