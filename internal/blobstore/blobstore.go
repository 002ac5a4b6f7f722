// Package blobstore is the badger-backed, content-addressed offload store
// large builtins.bytes leaves spill into during serialize, so the IR tree
// inspect prints (and the rest of the wire payload) stays proportional to
// the object graph's shape rather than its biggest blob.
package blobstore

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	badgerdb "github.com/dgraph-io/badger/v4"
)

// Store is a dispatcher.BlobStore backed by a single badger database.
// Keys are the hex SHA-256 digest of the stored bytes, so Put is
// idempotent: offloading the same blob twice reuses the same key and
// skips the write.
type Store struct {
	db *badgerdb.DB
}

// Open opens (creating if necessary) a badger database at path for blob
// offload storage.
func Open(path string) (*Store, error) {
	opts := badgerdb.DefaultOptions(path).WithLogger(nil)
	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open blob store at %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying badger database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put stores data under its content hash, returning the hex-encoded key a
// later Get call resolves back to the same bytes. Writing an
// already-present key is a no-op beyond the existence check.
func (s *Store) Put(data []byte) (string, error) {
	sum := sha256.Sum256(data)
	key := hex.EncodeToString(sum[:])

	err := s.db.Update(func(txn *badgerdb.Txn) error {
		if _, err := txn.Get([]byte(key)); err == nil {
			return nil
		} else if err != badgerdb.ErrKeyNotFound {
			return err
		}
		return txn.Set([]byte(key), data)
	})
	if err != nil {
		return "", fmt.Errorf("blob store put: %w", err)
	}
	return key, nil
}

// Get fetches the bytes previously stored under key.
func (s *Store) Get(key string) ([]byte, error) {
	var out []byte
	err := s.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			out = make([]byte, len(val))
			copy(out, val)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("blob store get %s: %w", key, err)
	}
	return out, nil
}

// Count returns the number of distinct blobs currently held, for
// pkg/metrics.BlobMetrics.RecordBlobCount.
func (s *Store) Count() (int, error) {
	count := 0
	err := s.db.View(func(txn *badgerdb.Txn) error {
		iterOpts := badgerdb.DefaultIteratorOptions
		iterOpts.PrefetchValues = false
		it := txn.NewIterator(iterOpts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("blob store count: %w", err)
	}
	return count, nil
}
