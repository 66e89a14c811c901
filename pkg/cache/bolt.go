package cache

import (
	"context"
	"encoding/json"
	"time"

	"go.etcd.io/bbolt"
)

var boltBucket = []byte("meshskel")

// BoltCache stores entries in a single bbolt database file. Only one process
// may hold the file open at a time.
type BoltCache struct {
	db *bbolt.DB
}

// NewBoltCache opens or creates the database at path.
func NewBoltCache(path string) (*BoltCache, error) {
	db, err := bbolt.Open(path, 0o644, &bbolt.Options{
		Timeout:      5 * time.Second,
		NoGrowSync:   bbolt.DefaultOptions.NoGrowSync,
		FreelistType: bbolt.DefaultOptions.FreelistType,
	})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(boltBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &BoltCache{db: db}, nil
}

// Get retrieves a value. Expired entries are reported as misses and removed.
func (c *BoltCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var (
		e     entry
		found bool
	)
	err := c.db.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket(boltBucket).Get([]byte(key))
		if raw == nil {
			return nil
		}
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil
		}
		found = true
		return nil
	})
	if err != nil || !found {
		return nil, false, err
	}
	if e.expired() {
		return nil, false, c.Delete(ctx, key)
	}
	return e.Data, true, nil
}

// Set stores a value.
func (c *BoltCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	raw, err := json.Marshal(newEntry(data, ttl))
	if err != nil {
		return err
	}
	return c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(boltBucket).Put([]byte(key), raw)
	})
}

// Delete removes key.
func (c *BoltCache) Delete(ctx context.Context, key string) error {
	return c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(boltBucket).Delete([]byte(key))
	})
}

// Clear drops and recreates the bucket.
func (c *BoltCache) Clear(ctx context.Context) error {
	return c.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(boltBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucket(boltBucket)
		return err
	})
}

// Close closes the database file.
func (c *BoltCache) Close() error {
	return c.db.Close()
}

var (
	_ Cache   = (*BoltCache)(nil)
	_ Clearer = (*BoltCache)(nil)
)
