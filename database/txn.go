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

package database

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/openplate/pantry/database/types"
)

// Txn coordinates a metadata transaction with an optional payload-store
// transaction. Most operations touch only the metadata store (approvals,
// status transitions, food rows); the payload-store transaction is
// opened lazily the first time a payload document is read or written,
// so metadata-only work never opens one.
type Txn struct {
	db          *Database
	metadataTxn types.Txn
	blobTxn     types.Txn
	lock        sync.Mutex
	finished    bool
	readWrite   bool
}

func NewTxn(db *Database, readWrite bool) *Txn {
	return &Txn{
		db:          db,
		metadataTxn: db.Metadata().Transaction(),
		readWrite:   readWrite,
	}
}

// Metadata returns the metadata transaction handle
func (t *Txn) Metadata() types.Txn {
	return t.metadataTxn
}

// Blob returns the payload-store transaction handle, opening it on
// first use
func (t *Txn) Blob() types.Txn {
	t.lock.Lock()
	defer t.lock.Unlock()
	if t.blobTxn == nil && !t.finished {
		t.blobTxn = t.db.Blob().NewTransaction(t.readWrite)
	}
	return t.blobTxn
}

// Commit applies the transaction. When a payload operation rode along,
// both stores are stamped with the same commit timestamp and the
// payload store commits first: a crash between the two commits leaves
// the payload store ahead, which the startup consistency check reports
// instead of silently serving a payload with no proposal row.
func (t *Txn) Commit() error {
	t.lock.Lock()
	defer t.lock.Unlock()
	if t.finished {
		return nil
	}
	// Read-only transactions just release their snapshots
	if !t.readWrite {
		return t.rollback()
	}
	payloadCommitted := false
	if t.blobTxn != nil {
		timestamp := time.Now().UnixMilli()
		if err := t.db.stampCommit(t, timestamp); err != nil {
			if err2 := t.rollback(); err2 != nil {
				err = errors.Join(err, err2)
			}
			return fmt.Errorf("stamp commit timestamp: %w", err)
		}
		if err := t.blobTxn.Commit(); err != nil {
			// A failed badger commit discards the badger txn itself;
			// only the metadata txn is left to roll back
			t.blobTxn = nil
			if err2 := t.rollback(); err2 != nil {
				err = errors.Join(err, err2)
			}
			return fmt.Errorf("payload store commit: %w", err)
		}
		payloadCommitted = true
	}
	if err := t.metadataTxn.Commit(); err != nil {
		if payloadCommitted {
			t.db.logger.Error(
				"partial commit: payload store committed, metadata failed",
				"error", err,
			)
		}
		_ = t.metadataTxn.Rollback()
		t.finished = true
		return fmt.Errorf("metadata commit: %w", err)
	}
	t.finished = true
	return nil
}

func (t *Txn) Rollback() error {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.rollback()
}

func (t *Txn) rollback() error {
	if t.finished {
		return nil
	}
	var errs []error
	if t.blobTxn != nil {
		if err := t.blobTxn.Rollback(); err != nil {
			errs = append(errs, fmt.Errorf("payload store rollback: %w", err))
		}
	}
	if err := t.metadataTxn.Rollback(); err != nil {
		errs = append(errs, fmt.Errorf("metadata rollback: %w", err))
	}
	t.finished = true
	return errors.Join(errs...)
}

// Release rolls the transaction back if it has not committed. Safe for
// deferred calls; errors are logged, not returned.
func (t *Txn) Release() {
	if err := t.Rollback(); err != nil {
		t.db.logger.Debug(
			"transaction release failed",
			"error", err,
			"read_write", t.readWrite,
		)
	}
}
