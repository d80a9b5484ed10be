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

import "time"

// Approval records a single supervisor's vote on a proposal. The
// composite unique index on (proposal_id, approver_id) is what makes
// duplicate votes physically impossible regardless of retries or
// concurrent submission.
type Approval struct {
	ID         uint      `gorm:"primarykey"`
	ProposalID uint      `gorm:"index:idx_approval_proposal;uniqueIndex:idx_approval_unique,priority:1;not null"`
	ApproverID string    `gorm:"size:64;uniqueIndex:idx_approval_unique,priority:2;not null"`
	ApprovedAt time.Time `gorm:"not null"`
}

// TableName returns the table name
func (Approval) TableName() string {
	return "approval"
}
