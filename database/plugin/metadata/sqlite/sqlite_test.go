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

package sqlite_test

import (
	"testing"
	"time"

	"github.com/openplate/pantry/database"
	"github.com/openplate/pantry/database/models"
	"github.com/openplate/pantry/database/plugin/metadata/sqlite"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *sqlite.MetadataStoreSqlite {
	t.Helper()
	db, err := database.New(&database.Config{
		DataDir: t.TempDir(),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close() //nolint:errcheck
	})
	return db.Metadata().(*sqlite.MetadataStoreSqlite)
}

func newTestProposal(publicId string) *models.Proposal {
	return &models.Proposal{
		PublicID:          publicId,
		Kind:              models.ProposalKindCreate,
		Status:            models.ProposalStatusPending,
		ProposerID:        "proposer",
		RequiredApprovals: 2,
	}
}

func TestProposalRoundTrip(t *testing.T) {
	store := setupTestStore(t)

	proposal := newTestProposal("11111111-1111-1111-1111-111111111111")
	require.NoError(t, store.NewProposal(proposal, nil))
	require.NotZero(t, proposal.ID)

	byId, err := store.GetProposal(proposal.ID, nil)
	require.NoError(t, err)
	require.NotNil(t, byId)
	assert.Equal(t, proposal.PublicID, byId.PublicID)
	assert.Equal(t, models.ProposalStatusPending, byId.Status)

	byPublicId, err := store.GetProposalByPublicId(proposal.PublicID, nil)
	require.NoError(t, err)
	require.NotNil(t, byPublicId)
	assert.Equal(t, proposal.ID, byPublicId.ID)

	// Unknown IDs return nil without error
	missing, err := store.GetProposal(99999, nil)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestGetPendingProposals(t *testing.T) {
	store := setupTestStore(t)

	targetId := uint(7)
	proposals := []*models.Proposal{
		newTestProposal("11111111-1111-1111-1111-111111111111"),
		{
			PublicID:          "22222222-2222-2222-2222-222222222222",
			Kind:              models.ProposalKindUpdate,
			Status:            models.ProposalStatusPending,
			TargetFoodID:      &targetId,
			ProposerID:        "proposer",
			RequiredApprovals: 2,
		},
		{
			PublicID:          "33333333-3333-3333-3333-333333333333",
			Kind:              models.ProposalKindDelete,
			Status:            models.ProposalStatusPending,
			TargetFoodID:      &targetId,
			ProposerID:        "proposer",
			RequiredApprovals: 2,
		},
	}
	for _, proposal := range proposals {
		require.NoError(t, store.NewProposal(proposal, nil))
	}

	// All pending, ascending ID order
	pending, err := store.GetPendingProposals("", 0, 0, nil)
	require.NoError(t, err)
	require.Len(t, pending, 3)
	assert.Equal(t, proposals[0].ID, pending[0].ID)
	assert.Equal(t, proposals[2].ID, pending[2].ID)

	// Kind filter
	updates, err := store.GetPendingProposals(
		models.ProposalKindUpdate,
		0,
		0,
		nil,
	)
	require.NoError(t, err)
	require.Len(t, updates, 1)
	assert.Equal(t, proposals[1].ID, updates[0].ID)

	// Paging
	page, err := store.GetPendingProposals("", proposals[0].ID, 1, nil)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, proposals[1].ID, page[0].ID)

	// Target lookup
	byTarget, err := store.GetPendingProposalByTarget(
		models.ProposalKindDelete,
		targetId,
		nil,
	)
	require.NoError(t, err)
	require.NotNil(t, byTarget)
	assert.Equal(t, proposals[2].ID, byTarget.ID)

	// Committed proposals drop out of the pending set
	ok, err := store.SetProposalStatus(
		proposals[0].ID,
		models.ProposalStatusPending,
		models.ProposalStatusCommitted,
		time.Now(),
		nil,
	)
	require.NoError(t, err)
	require.True(t, ok)
	pending, err = store.GetPendingProposals("", 0, 0, nil)
	require.NoError(t, err)
	require.Len(t, pending, 2)
}

func TestSetProposalStatusConditional(t *testing.T) {
	store := setupTestStore(t)

	proposal := newTestProposal("11111111-1111-1111-1111-111111111111")
	require.NoError(t, store.NewProposal(proposal, nil))

	committedAt := time.Now()
	ok, err := store.SetProposalStatus(
		proposal.ID,
		models.ProposalStatusPending,
		models.ProposalStatusCommitted,
		committedAt,
		nil,
	)
	require.NoError(t, err)
	assert.True(t, ok)

	// Second attempt matches zero rows
	ok, err = store.SetProposalStatus(
		proposal.ID,
		models.ProposalStatusPending,
		models.ProposalStatusCommitted,
		time.Now(),
		nil,
	)
	require.NoError(t, err)
	assert.False(t, ok)

	updated, err := store.GetProposal(proposal.ID, nil)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, models.ProposalStatusCommitted, updated.Status)
	require.NotNil(t, updated.CommittedAt)
	assert.WithinDuration(t, committedAt, *updated.CommittedAt, time.Second)
}

func TestAddApprovalUniquePair(t *testing.T) {
	store := setupTestStore(t)

	proposal := newTestProposal("11111111-1111-1111-1111-111111111111")
	require.NoError(t, store.NewProposal(proposal, nil))

	recorded, err := store.AddApproval(&models.Approval{
		ProposalID: proposal.ID,
		ApproverID: "u1",
		ApprovedAt: time.Now(),
	}, nil)
	require.NoError(t, err)
	assert.True(t, recorded)

	// Same pair inserts nothing
	recorded, err = store.AddApproval(&models.Approval{
		ProposalID: proposal.ID,
		ApproverID: "u1",
		ApprovedAt: time.Now(),
	}, nil)
	require.NoError(t, err)
	assert.False(t, recorded)

	// Distinct approver inserts
	recorded, err = store.AddApproval(&models.Approval{
		ProposalID: proposal.ID,
		ApproverID: "u2",
		ApprovedAt: time.Now(),
	}, nil)
	require.NoError(t, err)
	assert.True(t, recorded)

	count, err := store.GetApprovalCount(proposal.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	has, err := store.HasApproval(proposal.ID, "u1", nil)
	require.NoError(t, err)
	assert.True(t, has)
	has, err = store.HasApproval(proposal.ID, "u3", nil)
	require.NoError(t, err)
	assert.False(t, has)

	approvals, err := store.GetApprovals(proposal.ID, nil)
	require.NoError(t, err)
	require.Len(t, approvals, 2)

	require.NoError(t, store.DeleteApprovals(proposal.ID, nil))
	count, err = store.GetApprovalCount(proposal.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestFoodLifecycle(t *testing.T) {
	store := setupTestStore(t)

	food := &models.Food{
		Name:        "miso soup",
		Restaurant:  "Test Kitchen",
		ServingSize: 300,
		Revision:    1,
	}
	require.NoError(t, store.NewFood(food, nil))
	require.NotZero(t, food.ID)

	byName, err := store.GetFoodByName("miso soup", nil)
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, food.ID, byName.ID)

	food.ServingSize = 350
	food.Revision++
	require.NoError(t, store.UpdateFood(food, nil))
	updated, err := store.GetFood(food.ID, false, nil)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, uint(350), updated.ServingSize)
	assert.Equal(t, uint64(2), updated.Revision)

	require.NoError(t, store.TombstoneFood(food.ID, time.Now(), nil))
	gone, err := store.GetFood(food.ID, false, nil)
	require.NoError(t, err)
	assert.Nil(t, gone)
	withDeleted, err := store.GetFood(food.ID, true, nil)
	require.NoError(t, err)
	require.NotNil(t, withDeleted)
	assert.NotNil(t, withDeleted.DeletedAt)

	// Tombstoned names no longer resolve
	byName, err = store.GetFoodByName("miso soup", nil)
	require.NoError(t, err)
	assert.Nil(t, byName)
}

func TestCommitTimestamp(t *testing.T) {
	store := setupTestStore(t)

	// Unset timestamp reads as zero
	ts, err := store.GetCommitTimestamp()
	require.NoError(t, err)
	assert.Equal(t, int64(0), ts)

	require.NoError(t, store.SetCommitTimestamp(12345, nil))
	ts, err = store.GetCommitTimestamp()
	require.NoError(t, err)
	assert.Equal(t, int64(12345), ts)

	// Upsert replaces
	require.NoError(t, store.SetCommitTimestamp(67890, nil))
	ts, err = store.GetCommitTimestamp()
	require.NoError(t, err)
	assert.Equal(t, int64(67890), ts)
}
