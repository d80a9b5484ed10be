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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type workflowMetrics struct {
	proposalsSubmitted  *prometheus.CounterVec
	approvalsRecorded   prometheus.Counter
	approvalsDuplicate  prometheus.Counter
	proposalsCommitted  *prometheus.CounterVec
	proposalsSuperseded prometheus.Counter
	sweepCommits        prometheus.Counter
}

func (w *Workflow) initMetrics(promRegistry prometheus.Registerer) {
	promautoFactory := promauto.With(promRegistry)
	w.metrics.proposalsSubmitted = promautoFactory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pantry_proposals_submitted_total",
			Help: "total change proposals submitted by kind",
		},
		[]string{"kind"},
	)
	w.metrics.approvalsRecorded = promautoFactory.NewCounter(
		prometheus.CounterOpts{
			Name: "pantry_approvals_recorded_total",
			Help: "total distinct approvals recorded",
		},
	)
	w.metrics.approvalsDuplicate = promautoFactory.NewCounter(
		prometheus.CounterOpts{
			Name: "pantry_approvals_duplicate_total",
			Help: "total duplicate approval attempts ignored",
		},
	)
	w.metrics.proposalsCommitted = promautoFactory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pantry_proposals_committed_total",
			Help: "total proposals committed by kind",
		},
		[]string{"kind"},
	)
	w.metrics.proposalsSuperseded = promautoFactory.NewCounter(
		prometheus.CounterOpts{
			Name: "pantry_proposals_superseded_total",
			Help: "total proposals superseded",
		},
	)
	w.metrics.sweepCommits = promautoFactory.NewCounter(
		prometheus.CounterOpts{
			Name: "pantry_sweep_commits_total",
			Help: "total proposals committed by the pending sweep",
		},
	)
}
