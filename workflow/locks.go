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

import "sync"

// proposalLocks provides a mutex per proposal ID so the quorum check
// and commit serialize per proposal while different proposals proceed
// independently. Entries are reference counted and removed once the
// last holder releases, so the table does not grow with the total
// number of proposals ever seen.
type proposalLocks struct {
	mu    sync.Mutex
	locks map[uint]*proposalLock
}

type proposalLock struct {
	mu   sync.Mutex
	refs int
}

func newProposalLocks() *proposalLocks {
	return &proposalLocks{
		locks: make(map[uint]*proposalLock),
	}
}

// Lock acquires the mutex for the given proposal ID and returns the
// corresponding unlock function
func (p *proposalLocks) Lock(proposalId uint) func() {
	p.mu.Lock()
	lock, ok := p.locks[proposalId]
	if !ok {
		lock = &proposalLock{}
		p.locks[proposalId] = lock
	}
	lock.refs++
	p.mu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()
		p.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(p.locks, proposalId)
		}
		p.mu.Unlock()
	}
}
