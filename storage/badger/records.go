// Copyright 2025 Poiesic Systems
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
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/pocketgenie/core"
	"github.com/poiesic/pocketgenie/storage"
	"github.com/poiesic/pocketgenie/vector"
)

// recordMeta points at the bookkeeping fields of a stored record.
type recordMeta struct {
	id        *string
	revision  *uint64
	createdAt *time.Time
	updatedAt *time.Time
	vector    []float32
}

// recordStore holds the transaction logic shared by the task and note
// repositories. Each record lives under prefix+id; a second key under
// createdPrefix orders records by creation time.
type recordStore[T any] struct {
	backend       *Backend
	prefix        string
	createdPrefix string
	marshal       func(T) []byte
	unmarshal     func([]byte) (T, error)
	meta          func(T) recordMeta
}

func (s *recordStore[T]) read(tx *badger.Txn, id string) (T, bool, error) {
	var zero T
	item, err := tx.Get(makeRecordKey(s.prefix, id))
	if err == badger.ErrKeyNotFound {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, err
	}
	var rec T
	err = item.Value(func(val []byte) error {
		rec, err = s.unmarshal(val)
		return err
	})
	if err != nil {
		return zero, false, err
	}
	return rec, true, nil
}

func (s *recordStore[T]) write(tx *badger.Txn, rec T) error {
	m := s.meta(rec)
	if err := tx.Set(makeRecordKey(s.prefix, *m.id), s.marshal(rec)); err != nil {
		return err
	}
	return tx.Set(makeCreatedKey(s.createdPrefix, *m.createdAt, *m.id), []byte(*m.id))
}

func checkVector(id string, v []float32) error {
	if err := vector.Validate(v); err != nil {
		return fmt.Errorf("%w: record %s: %w", storage.ErrInvalidVector, id, err)
	}
	return nil
}

func (s *recordStore[T]) add(ctx context.Context, recs []T) ([]T, error) {
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		now := core.StoredTime(time.Now())
		for _, rec := range recs {
			m := s.meta(rec)
			if *m.id == "" {
				*m.id = core.NewID()
			}
			if err := checkVector(*m.id, m.vector); err != nil {
				return err
			}
			_, exists, err := s.read(tx, *m.id)
			if err != nil {
				return err
			}
			if exists {
				return fmt.Errorf("%w: %s", storage.ErrDuplicateKey, *m.id)
			}
			*m.createdAt = now
			*m.updatedAt = now
			*m.revision = 1
			if err := s.write(tx, rec); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	return recs, nil
}

func (s *recordStore[T]) update(ctx context.Context, recs []T) ([]T, error) {
	// Bookkeeping is stamped on recs before the commit; put it back if the
	// transaction fails so callers can retry with what they passed in.
	type saved struct {
		revision           uint64
		createdAt, updated time.Time
	}
	before := make([]saved, len(recs))
	for i, rec := range recs {
		m := s.meta(rec)
		before[i] = saved{*m.revision, *m.createdAt, *m.updatedAt}
	}

	err := s.backend.WithTx(func(tx *badger.Txn) error {
		now := core.StoredTime(time.Now())
		for _, rec := range recs {
			m := s.meta(rec)
			if err := checkVector(*m.id, m.vector); err != nil {
				return err
			}
			old, exists, err := s.read(tx, *m.id)
			if err != nil {
				return err
			}
			if !exists {
				return fmt.Errorf("%w: %s", storage.ErrNotFound, *m.id)
			}
			oldMeta := s.meta(old)
			if *oldMeta.revision != *m.revision {
				return fmt.Errorf("%w: %s at revision %d, stored %d",
					storage.ErrConflict, *m.id, *m.revision, *oldMeta.revision)
			}
			*m.createdAt = *oldMeta.createdAt
			*m.updatedAt = now
			*m.revision++
			if err := s.write(tx, rec); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		for i, rec := range recs {
			m := s.meta(rec)
			*m.revision, *m.createdAt, *m.updatedAt = before[i].revision, before[i].createdAt, before[i].updated
		}
		return nil, err
	}
	return recs, nil
}

func (s *recordStore[T]) delete(ctx context.Context, ids []string) error {
	return s.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			old, exists, err := s.read(tx, id)
			if err != nil {
				return err
			}
			if !exists {
				return fmt.Errorf("%w: %s", storage.ErrNotFound, id)
			}
			m := s.meta(old)
			if err := tx.Delete(makeCreatedKey(s.createdPrefix, *m.createdAt, id)); err != nil {
				return err
			}
			if err := tx.Delete(makeRecordKey(s.prefix, id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

func (s *recordStore[T]) get(ctx context.Context, id string) (T, error) {
	var result T
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		rec, exists, err := s.read(tx, id)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: %s", storage.ErrNotFound, id)
		}
		result = rec
		return nil
	}, false)
	return result, err
}

func (s *recordStore[T]) getMany(ctx context.Context, ids []string) ([]T, error) {
	var result []T
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			rec, exists, err := s.read(tx, id)
			if err != nil {
				return err
			}
			if exists {
				result = append(result, rec)
			}
		}
		return nil
	}, false)
	return result, err
}

// forEach walks the creation index inside one read transaction, so fn sees
// a consistent snapshot.
func (s *recordStore[T]) forEach(ctx context.Context, fn func(T) error) error {
	return s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(s.createdPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var id string
			if err := iter.Item().Value(func(val []byte) error {
				id = string(val)
				return nil
			}); err != nil {
				return err
			}
			rec, exists, err := s.read(tx, id)
			if err != nil {
				return err
			}
			if !exists {
				continue
			}
			if err := fn(rec); err != nil {
				return err
			}
		}
		return nil
	}, false)
}

// list applies match, then skip and limit, in creation order.
func (s *recordStore[T]) list(ctx context.Context, match func(T) bool, skip, limit int) ([]T, error) {
	var results []T
	skipped := 0
	err := s.forEach(ctx, func(rec T) error {
		if !match(rec) {
			return nil
		}
		if skipped < skip {
			skipped++
			return nil
		}
		if limit > 0 && len(results) >= limit {
			return errStopIteration
		}
		results = append(results, rec)
		return nil
	})
	if err != nil && err != errStopIteration {
		return nil, err
	}
	return results, nil
}

func (s *recordStore[T]) count(ctx context.Context) (int, error) {
	count := 0
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(s.createdPrefix)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()
		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}
