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

package event

import "time"

// ProposalSubmittedEventType is the event type for newly submitted proposals
const ProposalSubmittedEventType = EventType("proposal.submitted")

// ProposalSubmittedEvent is emitted when a change proposal enters the
// pending queue.
type ProposalSubmittedEvent struct {
	// ProposalId is the internal ID of the proposal
	ProposalId uint64
	// PublicId is the external UUID of the proposal
	PublicId string
	// Kind is the proposal kind (create, update, delete)
	Kind string
	// ProposerId identifies who submitted the proposal
	ProposerId string
	// RequiredApprovals is the quorum threshold captured at submission
	RequiredApprovals int
	// Timestamp is when the proposal was recorded
	Timestamp time.Time
}

// ApprovalRecordedEventType is the event type for newly recorded approvals
const ApprovalRecordedEventType = EventType("approval.recorded")

// ApprovalRecordedEvent is emitted when a distinct approval is recorded
// against a pending proposal. Duplicate approvals do not generate events.
type ApprovalRecordedEvent struct {
	// ProposalId is the internal ID of the approved proposal
	ProposalId uint64
	// ApproverId identifies who recorded the approval
	ApproverId string
	// ApprovalCount is the distinct approval tally after this approval
	ApprovalCount int
	// RequiredApprovals is the quorum threshold for the proposal
	RequiredApprovals int
	// Timestamp is when the approval was recorded
	Timestamp time.Time
}

// ProposalCommittedEventType is the event type for committed proposals
const ProposalCommittedEventType = EventType("proposal.committed")

// ProposalCommittedEvent is emitted after a proposal reaches quorum and
// its change has been applied to the catalog. Exactly one such event is
// emitted per proposal.
type ProposalCommittedEvent struct {
	// ProposalId is the internal ID of the committed proposal
	ProposalId uint64
	// PublicId is the external UUID of the proposal
	PublicId string
	// Kind is the proposal kind (create, update, delete)
	Kind string
	// FoodId is the catalog entry the commit touched
	FoodId uint
	// Revision is the catalog entry's revision after the commit
	Revision uint64
	// Timestamp is when the commit happened
	Timestamp time.Time
}

// ProposalSupersededEventType is the event type for superseded proposals
const ProposalSupersededEventType = EventType("proposal.superseded")

// ProposalSupersededEvent is emitted when a pending proposal is closed
// without being applied, normally because a competing proposal for the
// same target committed first.
type ProposalSupersededEvent struct {
	// ProposalId is the internal ID of the superseded proposal
	ProposalId uint64
	// PublicId is the external UUID of the proposal
	PublicId string
	// SupersededBy is the internal ID of the winning proposal, if known
	SupersededBy uint64
	// Timestamp is when the proposal was closed
	Timestamp time.Time
}
