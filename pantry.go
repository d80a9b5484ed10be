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

// Package pantry ties together the food catalog's storage, event bus,
// and change-approval workflow behind a single service facade.
package pantry

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/openplate/pantry/database"
	"github.com/openplate/pantry/database/models"
	"github.com/openplate/pantry/event"
	"github.com/openplate/pantry/quorum"
	"github.com/openplate/pantry/workflow"
)

type Pantry struct {
	config        Config
	db            *database.Database
	eventBus      *event.EventBus
	workflow      *workflow.Workflow
	shutdownFuncs []func(context.Context) error
	done          chan struct{}
	shutdownOnce  sync.Once
}

func New(cfg Config) (*Pantry, error) {
	p := &Pantry{
		config:   cfg,
		eventBus: event.NewEventBus(cfg.promRegistry, cfg.logger),
		done:     make(chan struct{}),
	}
	db, err := database.New(&database.Config{
		DataDir:        cfg.dataDir,
		Logger:         cfg.logger,
		PromRegistry:   cfg.promRegistry,
		BlobPlugin:     cfg.blobPlugin,
		MetadataPlugin: cfg.metadataPlugin,
	})
	if err != nil {
		var dbErr database.CommitTimestampError
		if !errors.As(err, &dbErr) {
			if db != nil {
				db.Close() //nolint:errcheck
			}
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		cfg.logger.Warn(
			"commit timestamp mismatch between stores",
			"error", err,
		)
	}
	p.db = db
	wf, err := workflow.New(workflow.Config{
		Logger:       cfg.logger,
		Database:     db,
		EventBus:     p.eventBus,
		PromRegistry: cfg.promRegistry,
	})
	if err != nil {
		p.db.Close() //nolint:errcheck
		return nil, err
	}
	p.workflow = wf
	return p, nil
}

// Run starts the periodic pending sweep and blocks until the given
// context is cancelled or Stop is called
func (p *Pantry) Run(ctx context.Context) error {
	if p.config.tracing {
		if err := p.setupTracing(); err != nil {
			return err
		}
	}
	sweepCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go p.workflow.RunSweeper(sweepCtx, p.config.sweepInterval)
	select {
	case <-ctx.Done():
		return p.Stop()
	case <-p.done:
		return nil
	}
}

// Stop shuts down the event bus, the database, and any tracing
// resources. Safe to call multiple times.
func (p *Pantry) Stop() error {
	var err error
	p.shutdownOnce.Do(func() {
		err = p.shutdown()
		close(p.done)
	})
	return err
}

func (p *Pantry) shutdown() error {
	var err error
	p.eventBus.Stop()
	if p.db != nil {
		if dbErr := p.db.Close(); dbErr != nil {
			err = errors.Join(err, fmt.Errorf("database close: %w", dbErr))
		}
	}
	ctx := context.Background()
	for _, fn := range p.shutdownFuncs {
		if fnErr := fn(ctx); fnErr != nil {
			err = errors.Join(err, fmt.Errorf("shutdown function: %w", fnErr))
		}
	}
	p.shutdownFuncs = nil
	return err
}

// Database returns the underlying database instance
func (p *Pantry) Database() *database.Database {
	return p.db
}

// EventBus returns the event bus for subscribing to workflow events
func (p *Pantry) EventBus() *event.EventBus {
	return p.eventBus
}

// SubmitProposal submits a change proposal. A zero RequiredApprovals
// falls back to the configured default threshold.
func (p *Pantry) SubmitProposal(
	req workflow.SubmitRequest,
) (*models.Proposal, error) {
	if req.RequiredApprovals == 0 {
		req.RequiredApprovals = p.defaultRequiredApprovals()
	}
	return p.workflow.SubmitProposal(req)
}

// Approve records a supervisor's vote on a pending proposal
func (p *Pantry) Approve(
	proposalId uint,
	approverId string,
) (*workflow.ApprovalResult, error) {
	return p.workflow.Approve(proposalId, approverId)
}

// GetProposal returns a proposal with payload and approval details
func (p *Pantry) GetProposal(
	proposalId uint,
) (*workflow.ProposalDetail, error) {
	return p.workflow.GetProposal(proposalId)
}

// GetProposalByPublicId returns a proposal by its public UUID
func (p *Pantry) GetProposalByPublicId(
	publicId string,
) (*workflow.ProposalDetail, error) {
	return p.workflow.GetProposalByPublicId(publicId)
}

// ListPending returns currently pending proposals, optionally filtered
// by kind
func (p *Pantry) ListPending(
	kind string,
	afterId uint,
	limit int,
) ([]workflow.PendingProposal, error) {
	return p.workflow.ListPending(kind, afterId, limit)
}

// SupersedeProposal closes a pending proposal without applying it
func (p *Pantry) SupersedeProposal(proposalId uint) error {
	return p.workflow.SupersedeProposal(proposalId)
}

// ArchiveProposal removes a proposal and its approvals entirely
func (p *Pantry) ArchiveProposal(proposalId uint) error {
	return p.workflow.ArchiveProposal(proposalId)
}

// Sweep commits any pending proposal whose approvals already meet its
// threshold
func (p *Pantry) Sweep(ctx context.Context) (int, error) {
	return p.workflow.Sweep(ctx)
}

func (p *Pantry) defaultRequiredApprovals() int {
	if p.config.requiredApprovals > 0 {
		return p.config.requiredApprovals
	}
	return quorum.DefaultRequiredApprovals
}
