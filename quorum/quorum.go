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

// Package quorum decides when a proposal has collected enough distinct
// approvals to be committed.
package quorum

import "fmt"

// DefaultRequiredApprovals is used when a proposal is created without an
// explicit approval threshold.
const DefaultRequiredApprovals = 2

// Result describes the outcome of evaluating a proposal's approval tally
// against its threshold.
type Result struct {
	Reached  bool
	Count    int
	Required int
}

// Remaining returns the number of additional approvals still needed, or
// zero once quorum is reached.
func (r Result) Remaining() int {
	if r.Count >= r.Required {
		return 0
	}
	return r.Required - r.Count
}

func (r Result) String() string {
	return fmt.Sprintf(
		"approvals %d/%d",
		r.Count,
		r.Required,
	)
}

// Evaluate compares the number of distinct recorded approvals against the
// threshold captured when the proposal was created. A non-positive
// threshold falls back to the default rather than committing on zero
// approvals.
func Evaluate(count int, required int) Result {
	if required <= 0 {
		required = DefaultRequiredApprovals
	}
	return Result{
		Reached:  count >= required,
		Count:    count,
		Required: required,
	}
}

// Reached reports whether count approvals satisfy the required threshold.
func Reached(count int, required int) bool {
	return Evaluate(count, required).Reached
}
