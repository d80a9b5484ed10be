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
	"fmt"
)

// CommitTimestampError reports that the payload store and the metadata
// store did not last commit together, typically after a crash between
// the two commit phases of a payload-bearing transaction.
type CommitTimestampError struct {
	MetadataTimestamp int64
	BlobTimestamp     int64
}

func (e CommitTimestampError) Error() string {
	return fmt.Sprintf(
		"commit timestamp mismatch: %d (metadata) != %d (payload store)",
		e.MetadataTimestamp,
		e.BlobTimestamp,
	)
}

// checkStoreConsistency verifies on startup that the two stores last
// committed together. Payload-bearing transactions stamp both stores
// with one timestamp and commit the payload store first, so a crash
// between the two commits leaves the payload store ahead; that
// divergence surfaces here as a CommitTimestampError.
func (d *Database) checkStoreConsistency() error {
	blobTimestamp, err := d.blob.GetCommitTimestamp()
	if err != nil {
		return fmt.Errorf("read payload store commit timestamp: %w", err)
	}
	if blobTimestamp == 0 {
		// No payload document has ever committed
		return nil
	}
	metadataTimestamp, err := d.metadata.GetCommitTimestamp()
	if err != nil {
		return fmt.Errorf("read metadata commit timestamp: %w", err)
	}
	if metadataTimestamp != blobTimestamp {
		return CommitTimestampError{
			MetadataTimestamp: metadataTimestamp,
			BlobTimestamp:     blobTimestamp,
		}
	}
	return nil
}

// stampCommit writes the same commit timestamp into both stores inside
// the given transaction. Only called for transactions that touched the
// payload store; metadata-only commits leave both timestamps untouched
// and therefore equal.
func (d *Database) stampCommit(txn *Txn, timestamp int64) error {
	if err := d.metadata.SetCommitTimestamp(timestamp, txn.metadataTxn); err != nil {
		return fmt.Errorf("metadata timestamp: %w", err)
	}
	if err := d.blob.SetCommitTimestamp(timestamp, txn.blobTxn); err != nil {
		return fmt.Errorf("payload store timestamp: %w", err)
	}
	return nil
}
