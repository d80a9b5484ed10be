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

package quorum

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluate(t *testing.T) {
	testDefs := []struct {
		name        string
		count       int
		required    int
		wantReached bool
		wantRemain  int
	}{
		{
			name:        "below threshold",
			count:       1,
			required:    3,
			wantReached: false,
			wantRemain:  2,
		},
		{
			name:        "exactly at threshold",
			count:       3,
			required:    3,
			wantReached: true,
			wantRemain:  0,
		},
		{
			name:        "above threshold",
			count:       5,
			required:    3,
			wantReached: true,
			wantRemain:  0,
		},
		{
			name:        "no approvals yet",
			count:       0,
			required:    1,
			wantReached: false,
			wantRemain:  1,
		},
		{
			name:        "zero threshold falls back to default",
			count:       0,
			required:    0,
			wantReached: false,
			wantRemain:  DefaultRequiredApprovals,
		},
		{
			name:        "negative threshold falls back to default",
			count:       DefaultRequiredApprovals,
			required:    -1,
			wantReached: true,
			wantRemain:  0,
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			result := Evaluate(testDef.count, testDef.required)
			assert.Equal(t, testDef.wantReached, result.Reached)
			assert.Equal(t, testDef.wantRemain, result.Remaining())
			assert.Equal(
				t,
				testDef.wantReached,
				Reached(testDef.count, testDef.required),
			)
		})
	}
}

func TestResultString(t *testing.T) {
	result := Evaluate(2, 3)
	assert.Equal(t, "approvals 2/3", result.String())
}
