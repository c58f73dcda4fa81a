package shared

import (
	"bytes"
	"context"
	"encoding/binary"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	valuesBucket = []byte("values")
	locksBucket  = []byte("locks")
)

// BoltStore implements Store and Locker on a bbolt database file.
//
// Records are laid out as 8 bytes of big-endian expiry (unix nanoseconds,
// 0 for none) followed by the payload: the value for entries, the owner
// token for locks.
type BoltStore struct {
	db  *bolt.DB
	now func() time.Time
}

// OpenBolt initializes or opens a BoltStore at path.
func OpenBolt(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{valuesBucket, locksBucket} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &BoltStore{db: db, now: time.Now}, nil
}

// Close closes the underlying database.
func (s *BoltStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *BoltStore) encode(payload []byte, ttl time.Duration) []byte {
	expiresAt := int64(0)
	if ttl > 0 {
		expiresAt = s.now().Add(ttl).UnixNano()
	}
	buf := make([]byte, 8+len(payload))
	binary.BigEndian.PutUint64(buf[:8], uint64(expiresAt))
	copy(buf[8:], payload)
	return buf
}

// decode returns the payload of rec, or false if rec is malformed or expired.
func (s *BoltStore) decode(rec []byte) ([]byte, bool) {
	if len(rec) < 8 {
		return nil, false
	}
	expiresAt := int64(binary.BigEndian.Uint64(rec[:8]))
	if expiresAt > 0 && s.now().UnixNano() >= expiresAt {
		return nil, false
	}
	return rec[8:], true
}

// Get returns the value stored under key if present and not expired.
func (s *BoltStore) Get(_ context.Context, key string) ([]byte, error) {
	var out []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		payload, ok := s.decode(tx.Bucket(valuesBucket).Get([]byte(key)))
		if !ok {
			return ErrNotFound
		}
		out = append([]byte(nil), payload...)
		return nil
	})
	return out, err
}

// Set stores value under key with an expiry of now+ttl.
func (s *BoltStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	rec := s.encode(value, ttl)
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(valuesBucket).Put([]byte(key), rec)
	})
}

// Delete removes key.
func (s *BoltStore) Delete(_ context.Context, key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(valuesBucket).Delete([]byte(key))
	})
}

// DeletePrefix removes every value whose key starts with prefix.
func (s *BoltStore) DeletePrefix(_ context.Context, prefix string) error {
	p := []byte(prefix)
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(valuesBucket)
		var keys [][]byte
		c := b.Cursor()
		for k, _ := c.Seek(p); k != nil && bytes.HasPrefix(k, p); k, _ = c.Next() {
			keys = append(keys, append([]byte(nil), k...))
		}
		for _, k := range keys {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

// TakeLock takes key for token unless another token holds an unexpired lock.
func (s *BoltStore) TakeLock(_ context.Context, key, token string, expiry time.Duration) (bool, error) {
	taken := false
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(locksBucket)
		if _, held := s.decode(b.Get([]byte(key))); held {
			return nil
		}
		taken = true
		return b.Put([]byte(key), s.encode([]byte(token), expiry))
	})
	if err != nil {
		return false, err
	}
	return taken, nil
}

// ReleaseLock releases key if token holds it.
func (s *BoltStore) ReleaseLock(_ context.Context, key, token string) (bool, error) {
	released := false
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(locksBucket)
		owner, held := s.decode(b.Get([]byte(key)))
		if !held || string(owner) != token {
			return nil
		}
		released = true
		return b.Delete([]byte(key))
	})
	if err != nil {
		return false, err
	}
	return released, nil
}
