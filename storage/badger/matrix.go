// Copyright 2025 Ansvar Systems
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
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/ansvar-systems/automcp/core"
	"github.com/ansvar-systems/automcp/storage"
)

// DefaultMatrixTTL bounds how long a rendered matrix is kept. Keys already
// include the generation date, so this only reclaims space.
const DefaultMatrixTTL = 48 * time.Hour

// MatrixCache implements storage.MatrixCache for BadgerDB.
type MatrixCache struct {
	backend *Backend
	ttl     time.Duration
	owned   bool
}

var _ storage.MatrixCache = (*MatrixCache)(nil)

// NewMatrixCache creates a MatrixCache on an existing backend.
// A ttl of zero uses DefaultMatrixTTL.
func NewMatrixCache(backend *Backend, ttl time.Duration) *MatrixCache {
	if ttl <= 0 {
		ttl = DefaultMatrixTTL
	}
	return &MatrixCache{backend: backend, ttl: ttl}
}

// OpenMatrixCache opens a backend at path and returns a cache that owns it.
func OpenMatrixCache(path string, ttl time.Duration) (storage.MatrixCache, error) {
	backend, err := OpenBackend(path, false)
	if err != nil {
		return nil, err
	}
	c := NewMatrixCache(backend, ttl)
	c.owned = true
	return c, nil
}

// Close closes the backend when the cache owns it.
func (c *MatrixCache) Close() error {
	if c.owned {
		return c.backend.Close()
	}
	return nil
}

// GetMatrix retrieves a cached matrix.
// Returns nil, nil if no entry exists.
func (c *MatrixCache) GetMatrix(ctx context.Context, key core.ID) (*core.MatrixResult, error) {
	if c.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	var result *core.MatrixResult
	err := c.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeMatrixKey(key))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var unmarshalErr error
			result, unmarshalErr = storage.UnmarshalMatrixResult(val)
			return unmarshalErr
		})
	}, false)
	return result, err
}

// PutMatrix stores a matrix under key with the cache TTL.
func (c *MatrixCache) PutMatrix(ctx context.Context, key core.ID, result *core.MatrixResult) error {
	if c.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	return c.backend.WithTx(func(tx *badger.Txn) error {
		entry := badger.NewEntry(makeMatrixKey(key), storage.MarshalMatrixResult(result)).WithTTL(c.ttl)
		if err := tx.SetEntry(entry); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Purge removes every cached matrix and returns how many were removed.
func (c *MatrixCache) Purge(ctx context.Context) (int, error) {
	if c.backend.IsClosed() {
		return 0, storage.ErrStorageClosed
	}
	purged := 0
	err := c.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(matrixPrefix)
		it := tx.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			if _, err := parseMatrixKey(it.Item().Key()); err != nil {
				return err
			}
			purged++
		}
		return nil
	}, false)
	if err != nil {
		return 0, err
	}
	if err := c.backend.DropPrefix([]byte(matrixPrefix)); err != nil {
		return 0, err
	}
	c.backend.logger.Debug("matrix cache purged", "entries", purged)
	return purged, nil
}
