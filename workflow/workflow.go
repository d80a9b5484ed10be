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

// Package workflow implements the supervised change-approval workflow
// over the food catalog: proposals are submitted, collect approvals
// from distinct supervisors, and are committed to the canonical store
// exactly once when their quorum threshold is crossed.
package workflow

import (
	"errors"
	"io"
	"log/slog"

	"github.com/openplate/pantry/database"
	"github.com/openplate/pantry/event"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// ErrInvalidPayload is returned when proposal submission arguments
	// are inconsistent with the proposal kind
	ErrInvalidPayload = errors.New("invalid proposal payload")

	// ErrDuplicateProposal is returned when a pending delete proposal
	// already exists for the same target
	ErrDuplicateProposal = errors.New("duplicate pending proposal for target")

	// ErrProposalClosed is returned when an approval is attempted on a
	// proposal that has already left the pending state. Callers should
	// treat this as "already finalized", not as a hard failure.
	ErrProposalClosed = errors.New("proposal is no longer pending")
)

type Config struct {
	Logger       *slog.Logger
	Database     *database.Database
	EventBus     *event.EventBus
	PromRegistry prometheus.Registerer
}

type Workflow struct {
	config   Config
	db       *database.Database
	eventBus *event.EventBus
	logger   *slog.Logger
	locks    *proposalLocks
	metrics  workflowMetrics
}

func New(config Config) (*Workflow, error) {
	if config.Database == nil {
		return nil, errors.New("no database provided")
	}
	w := &Workflow{
		config:   config,
		db:       config.Database,
		eventBus: config.EventBus,
		locks:    newProposalLocks(),
	}
	if config.Logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		w.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	} else {
		w.logger = config.Logger
	}
	w.initMetrics(config.PromRegistry)
	return w, nil
}

func (w *Workflow) publishEvent(eventType event.EventType, data any) {
	if w.eventBus == nil {
		return
	}
	w.eventBus.PublishAsync(eventType, event.NewEvent(eventType, data))
}
