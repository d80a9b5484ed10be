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

package badger

import (
	"io"
	"log/slog"
	"testing"

	"github.com/openplate/pantry/database/types"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptions(t *testing.T) {
	b := &BlobStoreBadger{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	registry := prometheus.NewRegistry()

	WithDataDir("/tmp/test")(b)
	WithBlockCacheSize(123456789)(b)
	WithIndexCacheSize(987654321)(b)
	WithLogger(logger)(b)
	WithPromRegistry(registry)(b)
	WithGc(true)(b)

	assert.Equal(t, "/tmp/test", b.dataDir)
	assert.Equal(t, uint64(123456789), b.blockCacheSize)
	assert.Equal(t, uint64(987654321), b.indexCacheSize)
	assert.Equal(t, logger, b.logger)
	assert.Equal(t, prometheus.Registerer(registry), b.promRegistry)
	assert.True(t, b.gcEnabled)

	WithGc(false)(b)
	assert.False(t, b.gcEnabled)
}

func TestBlobRoundTrip(t *testing.T) {
	store, err := New(WithDataDir(t.TempDir()))
	require.NoError(t, err)
	defer store.Close() //nolint:errcheck

	key := types.ProposalPayloadBlobKey(42)
	val := []byte(`{"name":"lentil soup"}`)

	txn := store.NewTransaction(true)
	require.NoError(t, store.Set(txn, key, val))
	require.NoError(t, txn.Commit())

	txn = store.NewTransaction(false)
	got, err := store.Get(txn, key)
	require.NoError(t, err)
	assert.Equal(t, val, got)
	require.NoError(t, txn.Rollback())
}

func TestBlobKeyNotFound(t *testing.T) {
	store, err := New(WithDataDir(t.TempDir()))
	require.NoError(t, err)
	defer store.Close() //nolint:errcheck

	txn := store.NewTransaction(false)
	defer txn.Rollback() //nolint:errcheck
	_, err = store.Get(txn, types.ProposalPayloadBlobKey(999))
	assert.ErrorIs(t, err, types.ErrBlobKeyNotFound)
}

func TestBlobDelete(t *testing.T) {
	store, err := New(WithDataDir(t.TempDir()))
	require.NoError(t, err)
	defer store.Close() //nolint:errcheck

	key := types.ProposalPayloadBlobKey(7)

	txn := store.NewTransaction(true)
	require.NoError(t, store.Set(txn, key, []byte("doc")))
	require.NoError(t, txn.Commit())

	txn = store.NewTransaction(true)
	require.NoError(t, store.Delete(txn, key))
	require.NoError(t, txn.Commit())

	txn = store.NewTransaction(false)
	defer txn.Rollback() //nolint:errcheck
	_, err = store.Get(txn, key)
	assert.ErrorIs(t, err, types.ErrBlobKeyNotFound)
}

func TestCommitTimestampRoundTrip(t *testing.T) {
	store, err := New(WithDataDir(t.TempDir()))
	require.NoError(t, err)
	defer store.Close() //nolint:errcheck

	ts, err := store.GetCommitTimestamp()
	require.NoError(t, err)
	assert.Equal(t, int64(0), ts)

	txn := store.NewTransaction(true)
	require.NoError(t, store.SetCommitTimestamp(424242, txn))
	require.NoError(t, txn.Commit())

	ts, err = store.GetCommitTimestamp()
	require.NoError(t, err)
	assert.Equal(t, int64(424242), ts)
}
