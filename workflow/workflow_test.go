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

package workflow_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/openplate/pantry/database"
	"github.com/openplate/pantry/database/models"
	"github.com/openplate/pantry/database/types"
	"github.com/openplate/pantry/event"
	"github.com/openplate/pantry/workflow"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTest(t *testing.T) (*database.Database, *workflow.Workflow) {
	t.Helper()
	db, err := database.New(&database.Config{DataDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close() //nolint:errcheck
	})
	w, err := workflow.New(workflow.Config{Database: db})
	require.NoError(t, err)
	return db, w
}

func testPayload(name string) *models.FoodPayload {
	return &models.FoodPayload{
		Name:        name,
		Restaurant:  "Test Kitchen",
		ServingSize: 250,
		MacroTable:  json.RawMessage(`{"protein":12,"carbs":40,"fat":9}`),
		Ingredients: []models.Ingredient{
			{Name: "flour", HazardLevel: models.HazardLevelSafe},
			{Name: "peanuts", HazardLevel: models.HazardLevelModerate},
		},
		IsGlutenFree: false,
		IsOrganic:    true,
	}
}

func seedFood(t *testing.T, db *database.Database, name string) *models.Food {
	t.Helper()
	food := &models.Food{
		Name:        name,
		Restaurant:  "Test Kitchen",
		ServingSize: 250,
		Revision:    1,
	}
	require.NoError(t, db.NewFood(food, nil))
	require.NotZero(t, food.ID)
	return food
}

func TestSubmitValidation(t *testing.T) {
	db, w := setupTest(t)
	food := seedFood(t, db, "seed-validation")

	testDefs := []struct {
		name    string
		req     workflow.SubmitRequest
		wantErr error
	}{
		{
			name: "unknown kind",
			req: workflow.SubmitRequest{
				Kind:              "rename",
				Payload:           testPayload("x"),
				ProposerId:        "u1",
				RequiredApprovals: 2,
			},
			wantErr: workflow.ErrInvalidPayload,
		},
		{
			name: "create with target",
			req: workflow.SubmitRequest{
				Kind:              models.ProposalKindCreate,
				TargetFoodId:      food.ID,
				Payload:           testPayload("x"),
				ProposerId:        "u1",
				RequiredApprovals: 2,
			},
			wantErr: workflow.ErrInvalidPayload,
		},
		{
			name: "create without payload",
			req: workflow.SubmitRequest{
				Kind:              models.ProposalKindCreate,
				ProposerId:        "u1",
				RequiredApprovals: 2,
			},
			wantErr: workflow.ErrInvalidPayload,
		},
		{
			name: "update without target",
			req: workflow.SubmitRequest{
				Kind:              models.ProposalKindUpdate,
				Payload:           testPayload("x"),
				ProposerId:        "u1",
				RequiredApprovals: 2,
			},
			wantErr: workflow.ErrInvalidPayload,
		},
		{
			name: "update with missing target",
			req: workflow.SubmitRequest{
				Kind:              models.ProposalKindUpdate,
				TargetFoodId:      99999,
				Payload:           testPayload("x"),
				ProposerId:        "u1",
				RequiredApprovals: 2,
			},
			wantErr: workflow.ErrInvalidPayload,
		},
		{
			name: "delete with payload",
			req: workflow.SubmitRequest{
				Kind:              models.ProposalKindDelete,
				TargetFoodId:      food.ID,
				Payload:           testPayload("x"),
				ProposerId:        "u1",
				RequiredApprovals: 2,
			},
			wantErr: workflow.ErrInvalidPayload,
		},
		{
			name: "zero required approvals",
			req: workflow.SubmitRequest{
				Kind:              models.ProposalKindCreate,
				Payload:           testPayload("x"),
				ProposerId:        "u1",
				RequiredApprovals: 0,
			},
			wantErr: workflow.ErrInvalidPayload,
		},
		{
			name: "missing proposer",
			req: workflow.SubmitRequest{
				Kind:              models.ProposalKindCreate,
				Payload:           testPayload("x"),
				RequiredApprovals: 2,
			},
			wantErr: workflow.ErrInvalidPayload,
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			_, err := w.SubmitProposal(testDef.req)
			require.ErrorIs(t, err, testDef.wantErr)
		})
	}
}

func TestCreateProposalQuorum(t *testing.T) {
	db, w := setupTest(t)
	proposal, err := w.SubmitProposal(workflow.SubmitRequest{
		Kind:              models.ProposalKindCreate,
		Payload:           testPayload("quinoa bowl"),
		Reason:            "new menu item",
		ProposerId:        "proposer",
		RequiredApprovals: 3,
	})
	require.NoError(t, err)
	require.NotZero(t, proposal.ID)
	require.NotEmpty(t, proposal.PublicID)

	for i, approver := range []string{"u1", "u2"} {
		result, err := w.Approve(proposal.ID, approver)
		require.NoError(t, err)
		assert.True(t, result.Recorded)
		assert.Equal(t, i+1, result.CurrentCount)
		assert.Equal(t, models.ProposalStatusPending, result.Status)
	}

	// Third distinct vote crosses the threshold
	result, err := w.Approve(proposal.ID, "u3")
	require.NoError(t, err)
	assert.True(t, result.Recorded)
	assert.Equal(t, 3, result.CurrentCount)
	assert.Equal(t, models.ProposalStatusCommitted, result.Status)

	food, err := db.GetFoodByName("quinoa bowl", nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), food.Revision)
	assert.Equal(t, proposal.ID, food.ProposalID)
	assert.Equal(t, "Test Kitchen", food.Restaurant)
	assert.Equal(
		t,
		uint8(models.HazardLevelModerate),
		food.HazardLevel,
	)

	detail, err := w.GetProposal(proposal.ID)
	require.NoError(t, err)
	assert.Equal(
		t,
		models.ProposalStatusCommitted,
		detail.Proposal.Status,
	)
	assert.NotNil(t, detail.Proposal.CommittedAt)
	assert.ElementsMatch(t, []string{"u1", "u2", "u3"}, detail.Approvers)
}

func TestDuplicateApprovalIdempotent(t *testing.T) {
	_, w := setupTest(t)
	proposal, err := w.SubmitProposal(workflow.SubmitRequest{
		Kind:              models.ProposalKindCreate,
		Payload:           testPayload("lentil soup"),
		ProposerId:        "proposer",
		RequiredApprovals: 3,
	})
	require.NoError(t, err)

	first, err := w.Approve(proposal.ID, "u1")
	require.NoError(t, err)
	assert.True(t, first.Recorded)
	assert.Equal(t, 1, first.CurrentCount)

	// Repeat votes never advance the count or the status
	for range 3 {
		repeat, err := w.Approve(proposal.ID, "u1")
		require.NoError(t, err)
		assert.False(t, repeat.Recorded)
		assert.Equal(t, 1, repeat.CurrentCount)
		assert.Equal(t, models.ProposalStatusPending, repeat.Status)
	}
}

func TestDeleteProposalQuorum(t *testing.T) {
	db, w := setupTest(t)
	food := seedFood(t, db, "retired dish")

	proposal, err := w.SubmitProposal(workflow.SubmitRequest{
		Kind:              models.ProposalKindDelete,
		TargetFoodId:      food.ID,
		Reason:            "off the menu",
		ProposerId:        "proposer",
		RequiredApprovals: 2,
	})
	require.NoError(t, err)

	_, err = w.Approve(proposal.ID, "u1")
	require.NoError(t, err)
	result, err := w.Approve(proposal.ID, "u2")
	require.NoError(t, err)
	assert.Equal(t, models.ProposalStatusCommitted, result.Status)

	// Entry is tombstoned, not physically removed
	_, err = db.GetFood(food.ID, false, nil)
	require.ErrorIs(t, err, models.ErrFoodNotFound)
	deleted, err := db.GetFood(food.ID, true, nil)
	require.NoError(t, err)
	assert.NotNil(t, deleted.DeletedAt)

	// Late approvals surface the final state, never a hard failure
	late, err := w.Approve(proposal.ID, "u3")
	require.ErrorIs(t, err, workflow.ErrProposalClosed)
	assert.Equal(t, models.ProposalStatusCommitted, late.Status)
	assert.Equal(t, 2, late.CurrentCount)
}

func TestDuplicateDeleteProposalRejected(t *testing.T) {
	db, w := setupTest(t)
	food := seedFood(t, db, "contested dish")

	_, err := w.SubmitProposal(workflow.SubmitRequest{
		Kind:              models.ProposalKindDelete,
		TargetFoodId:      food.ID,
		ProposerId:        "u1",
		RequiredApprovals: 2,
	})
	require.NoError(t, err)

	_, err = w.SubmitProposal(workflow.SubmitRequest{
		Kind:              models.ProposalKindDelete,
		TargetFoodId:      food.ID,
		ProposerId:        "u2",
		RequiredApprovals: 2,
	})
	require.ErrorIs(t, err, workflow.ErrDuplicateProposal)
}

func TestUpdateRevisionAndHazard(t *testing.T) {
	db, w := setupTest(t)
	food := seedFood(t, db, "house salad")

	payload := testPayload("house salad")
	payload.Ingredients = append(payload.Ingredients, models.Ingredient{
		Name:        "raw egg",
		HazardLevel: models.HazardLevelHigh,
	})
	proposal, err := w.SubmitProposal(workflow.SubmitRequest{
		Kind:              models.ProposalKindUpdate,
		TargetFoodId:      food.ID,
		Payload:           payload,
		ProposerId:        "proposer",
		RequiredApprovals: 1,
	})
	require.NoError(t, err)
	result, err := w.Approve(proposal.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.ProposalStatusCommitted, result.Status)

	updated, err := db.GetFood(food.ID, false, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), updated.Revision)
	assert.Equal(t, uint8(models.HazardLevelHigh), updated.HazardLevel)
	assert.True(t, updated.IsOrganic)
}

func TestConcurrentApprovalsCommitOnce(t *testing.T) {
	db, w := setupTest(t)
	food := seedFood(t, db, "contended dish")

	const requiredApprovals = 3
	proposal, err := w.SubmitProposal(workflow.SubmitRequest{
		Kind:              models.ProposalKindUpdate,
		TargetFoodId:      food.ID,
		Payload:           testPayload("contended dish"),
		ProposerId:        "proposer",
		RequiredApprovals: requiredApprovals,
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	errCh := make(chan error, requiredApprovals)
	for i := range requiredApprovals {
		wg.Add(1)
		go func(approver string) {
			defer wg.Done()
			_, err := w.Approve(proposal.ID, approver)
			errCh <- err
		}(fmt.Sprintf("u%d", i+1))
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		require.NoError(t, err)
	}

	detail, err := w.GetProposal(proposal.ID)
	require.NoError(t, err)
	assert.Equal(
		t,
		models.ProposalStatusCommitted,
		detail.Proposal.Status,
	)
	assert.Equal(t, requiredApprovals, detail.ApprovalCount)

	// The canonical entity was mutated exactly once
	updated, err := db.GetFood(food.ID, false, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), updated.Revision)
}

func TestIndependentProposalsNoCrossContamination(t *testing.T) {
	db, w := setupTest(t)
	food1 := seedFood(t, db, "dish one")
	food2 := seedFood(t, db, "dish two")

	submit := func(foodId uint, name string) *models.Proposal {
		proposal, err := w.SubmitProposal(workflow.SubmitRequest{
			Kind:              models.ProposalKindUpdate,
			TargetFoodId:      foodId,
			Payload:           testPayload(name),
			ProposerId:        "proposer",
			RequiredApprovals: 2,
		})
		require.NoError(t, err)
		return proposal
	}
	proposal1 := submit(food1.ID, "dish one")
	proposal2 := submit(food2.ID, "dish two")

	// Overlapping approver sets vote on both proposals concurrently
	var wg sync.WaitGroup
	errCh := make(chan error, 4)
	for _, approver := range []string{"u1", "u2"} {
		for _, proposalId := range []uint{proposal1.ID, proposal2.ID} {
			wg.Add(1)
			go func(proposalId uint, approver string) {
				defer wg.Done()
				_, err := w.Approve(proposalId, approver)
				errCh <- err
			}(proposalId, approver)
		}
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		require.NoError(t, err)
	}

	for _, proposalId := range []uint{proposal1.ID, proposal2.ID} {
		detail, err := w.GetProposal(proposalId)
		require.NoError(t, err)
		assert.Equal(
			t,
			models.ProposalStatusCommitted,
			detail.Proposal.Status,
		)
		assert.Equal(t, 2, detail.ApprovalCount)
		assert.ElementsMatch(t, []string{"u1", "u2"}, detail.Approvers)
	}
	for _, foodId := range []uint{food1.ID, food2.ID} {
		updated, err := db.GetFood(foodId, false, nil)
		require.NoError(t, err)
		assert.Equal(t, uint64(2), updated.Revision)
	}
}

func TestSelfApproveAtSubmission(t *testing.T) {
	db, w := setupTest(t)
	proposal, err := w.SubmitProposal(workflow.SubmitRequest{
		Kind:              models.ProposalKindCreate,
		Payload:           testPayload("instant special"),
		ProposerId:        "supervisor",
		RequiredApprovals: 1,
		SelfApprove:       true,
	})
	require.NoError(t, err)

	detail, err := w.GetProposal(proposal.ID)
	require.NoError(t, err)
	assert.Equal(
		t,
		models.ProposalStatusCommitted,
		detail.Proposal.Status,
	)
	assert.Equal(t, []string{"supervisor"}, detail.Approvers)

	_, err = db.GetFoodByName("instant special", nil)
	require.NoError(t, err)
}

func TestSupersededProposalRejectsApprovals(t *testing.T) {
	_, w := setupTest(t)
	proposal, err := w.SubmitProposal(workflow.SubmitRequest{
		Kind:              models.ProposalKindCreate,
		Payload:           testPayload("abandoned dish"),
		ProposerId:        "proposer",
		RequiredApprovals: 2,
	})
	require.NoError(t, err)
	require.NoError(t, w.SupersedeProposal(proposal.ID))

	result, err := w.Approve(proposal.ID, "u1")
	require.ErrorIs(t, err, workflow.ErrProposalClosed)
	assert.Equal(t, models.ProposalStatusSuperseded, result.Status)
	assert.Equal(t, 0, result.CurrentCount)
}

func TestDeleteCommitSupersedesCompetingUpdates(t *testing.T) {
	db, w := setupTest(t)
	food := seedFood(t, db, "doomed dish")

	update, err := w.SubmitProposal(workflow.SubmitRequest{
		Kind:              models.ProposalKindUpdate,
		TargetFoodId:      food.ID,
		Payload:           testPayload("doomed dish"),
		ProposerId:        "proposer",
		RequiredApprovals: 3,
	})
	require.NoError(t, err)
	del, err := w.SubmitProposal(workflow.SubmitRequest{
		Kind:              models.ProposalKindDelete,
		TargetFoodId:      food.ID,
		ProposerId:        "proposer",
		RequiredApprovals: 1,
	})
	require.NoError(t, err)

	_, err = w.Approve(del.ID, "u1")
	require.NoError(t, err)

	detail, err := w.GetProposal(update.ID)
	require.NoError(t, err)
	assert.Equal(
		t,
		models.ProposalStatusSuperseded,
		detail.Proposal.Status,
	)
	assert.NotNil(t, detail.Proposal.SupersededAt)
}

func TestSweepCommitsStrandedProposal(t *testing.T) {
	db, w := setupTest(t)
	proposal, err := w.SubmitProposal(workflow.SubmitRequest{
		Kind:              models.ProposalKindCreate,
		Payload:           testPayload("stranded dish"),
		ProposerId:        "proposer",
		RequiredApprovals: 1,
	})
	require.NoError(t, err)

	// Simulate a crash between the ledger write and the commit by
	// recording the vote directly against the store
	recorded, count, err := db.AddApproval(proposal.ID, "u1", nil)
	require.NoError(t, err)
	require.True(t, recorded)
	require.Equal(t, 1, count)
	detail, err := w.GetProposal(proposal.ID)
	require.NoError(t, err)
	require.Equal(t, models.ProposalStatusPending, detail.Proposal.Status)

	committed, err := w.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, committed)

	detail, err = w.GetProposal(proposal.ID)
	require.NoError(t, err)
	assert.Equal(
		t,
		models.ProposalStatusCommitted,
		detail.Proposal.Status,
	)
	_, err = db.GetFoodByName("stranded dish", nil)
	require.NoError(t, err)

	// A second sweep finds nothing to do
	committed, err = w.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, committed)
}

func TestArchiveProposal(t *testing.T) {
	_, w := setupTest(t)
	proposal, err := w.SubmitProposal(workflow.SubmitRequest{
		Kind:              models.ProposalKindCreate,
		Payload:           testPayload("archived dish"),
		ProposerId:        "proposer",
		RequiredApprovals: 2,
	})
	require.NoError(t, err)
	_, err = w.Approve(proposal.ID, "u1")
	require.NoError(t, err)

	require.NoError(t, w.ArchiveProposal(proposal.ID))
	_, err = w.GetProposal(proposal.ID)
	require.ErrorIs(t, err, models.ErrProposalNotFound)
}

func TestListPending(t *testing.T) {
	db, w := setupTest(t)
	food := seedFood(t, db, "listed dish")

	create, err := w.SubmitProposal(workflow.SubmitRequest{
		Kind:              models.ProposalKindCreate,
		Payload:           testPayload("brand new dish"),
		ProposerId:        "proposer",
		RequiredApprovals: 2,
	})
	require.NoError(t, err)
	update, err := w.SubmitProposal(workflow.SubmitRequest{
		Kind:              models.ProposalKindUpdate,
		TargetFoodId:      food.ID,
		Payload:           testPayload("listed dish"),
		ProposerId:        "proposer",
		RequiredApprovals: 2,
	})
	require.NoError(t, err)
	_, err = w.Approve(update.ID, "u1")
	require.NoError(t, err)

	pending, err := w.ListPending("", 0, 0)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, create.ID, pending[0].Proposal.ID)
	assert.Equal(t, 0, pending[0].ApprovalCount)
	assert.Equal(t, update.ID, pending[1].Proposal.ID)
	assert.Equal(t, 1, pending[1].ApprovalCount)

	// Kind filter
	updates, err := w.ListPending(models.ProposalKindUpdate, 0, 0)
	require.NoError(t, err)
	require.Len(t, updates, 1)
	assert.Equal(t, update.ID, updates[0].Proposal.ID)

	// Restartable paging by ascending ID
	page, err := w.ListPending("", create.ID, 10)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, update.ID, page[0].Proposal.ID)
}

func TestRetriedApprovalsUnderContention(t *testing.T) {
	db, w := setupTest(t)
	food := seedFood(t, db, "retried dish")

	const requiredApprovals = 5
	const approvers = 12
	const attempts = 3
	proposal, err := w.SubmitProposal(workflow.SubmitRequest{
		Kind:              models.ProposalKindUpdate,
		TargetFoodId:      food.ID,
		Payload:           testPayload("retried dish"),
		ProposerId:        "proposer",
		RequiredApprovals: requiredApprovals,
	})
	require.NoError(t, err)

	// Every approver retries its vote a few times while the threshold
	// crossing commits the proposal underneath them. Late and duplicate
	// callers must observe the benign closed result, never a raw
	// storage error.
	var wg sync.WaitGroup
	errCh := make(chan error, approvers*attempts)
	for i := range approvers {
		wg.Add(1)
		go func(approver string) {
			defer wg.Done()
			for range attempts {
				_, err := w.Approve(proposal.ID, approver)
				errCh <- err
			}
		}(fmt.Sprintf("u%d", i+1))
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			require.ErrorIs(t, err, workflow.ErrProposalClosed)
		}
	}

	detail, err := w.GetProposal(proposal.ID)
	require.NoError(t, err)
	assert.Equal(
		t,
		models.ProposalStatusCommitted,
		detail.Proposal.Status,
	)

	// The canonical entity was mutated exactly once
	updated, err := db.GetFood(food.ID, false, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), updated.Revision)
}

func TestClosedProposalAcceptsNoLedgerRows(t *testing.T) {
	db, w := setupTest(t)
	food := seedFood(t, db, "closed dish")

	proposal, err := w.SubmitProposal(workflow.SubmitRequest{
		Kind:              models.ProposalKindUpdate,
		TargetFoodId:      food.ID,
		Payload:           testPayload("closed dish"),
		ProposerId:        "proposer",
		RequiredApprovals: 2,
	})
	require.NoError(t, err)
	for _, approver := range []string{"u1", "u2"} {
		_, err := w.Approve(proposal.ID, approver)
		require.NoError(t, err)
	}

	// Committed; a late vote must not land in the ledger
	_, err = w.Approve(proposal.ID, "u3")
	require.ErrorIs(t, err, workflow.ErrProposalClosed)

	count, err := db.GetApprovalCount(proposal.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	has, err := db.HasApproved(proposal.ID, "u3", nil)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestSupersedeProposalRepeatEmitsOneEvent(t *testing.T) {
	db, err := database.New(&database.Config{DataDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close() //nolint:errcheck
	})
	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()
	w, err := workflow.New(workflow.Config{Database: db, EventBus: eb})
	require.NoError(t, err)

	proposal, err := w.SubmitProposal(workflow.SubmitRequest{
		Kind:              models.ProposalKindCreate,
		Payload:           testPayload("short-lived dish"),
		ProposerId:        "proposer",
		RequiredApprovals: 2,
	})
	require.NoError(t, err)

	_, subCh := eb.Subscribe(event.ProposalSupersededEventType)

	require.NoError(t, w.SupersedeProposal(proposal.ID))
	// Repeat call is a no-op and must not re-publish
	require.NoError(t, w.SupersedeProposal(proposal.ID))

	select {
	case evt := <-subCh:
		data, ok := evt.Data.(event.ProposalSupersededEvent)
		require.True(t, ok)
		assert.Equal(t, uint64(proposal.ID), data.ProposalId)
	case <-time.After(1 * time.Second):
		t.Fatalf("timeout waiting for superseded event")
	}
	select {
	case evt := <-subCh:
		t.Fatalf("unexpected second superseded event: %#v", evt)
	case <-time.After(100 * time.Millisecond):
	}

	// Still superseded, still nil error on repeats
	detail, err := w.GetProposal(proposal.ID)
	require.NoError(t, err)
	assert.Equal(
		t,
		models.ProposalStatusSuperseded,
		detail.Proposal.Status,
	)
}

func TestClosedDatabaseClassifiedUnavailable(t *testing.T) {
	db, err := database.New(&database.Config{DataDir: t.TempDir()})
	require.NoError(t, err)
	w, err := workflow.New(workflow.Config{Database: db})
	require.NoError(t, err)
	food := seedFood(t, db, "orphaned dish")
	proposal, err := w.SubmitProposal(workflow.SubmitRequest{
		Kind:              models.ProposalKindUpdate,
		TargetFoodId:      food.ID,
		Payload:           testPayload("orphaned dish"),
		ProposerId:        "proposer",
		RequiredApprovals: 2,
	})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = w.Approve(proposal.ID, "u1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrStoreUnavailable))
}
