package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cicd-lab/vercel-render/internal/domain"
	bolt "go.etcd.io/bbolt"
)

const (
	itemBucket = "items"
	keyBytes   = 8
)

// boltStore implements a Store backed by BoltDB. Keys are big-endian ids so
// cursor order is id order.
type boltStore struct {
	db *bolt.DB
}

// openBolt initializes a BoltDB-backed Store.
func openBolt(path string) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(itemBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	return &boltStore{db: db}, nil
}

// Close closes the BoltDB store.
func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// List returns every item ordered by id.
func (b *boltStore) List() ([]domain.Item, error) {
	items := []domain.Item{}
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket, err := itemsBucket(tx)
		if err != nil {
			return err
		}
		return bucket.ForEach(func(_, v []byte) error {
			var item domain.Item
			if err := json.Unmarshal(v, &item); err != nil {
				return fmt.Errorf("decode item: %w", err)
			}
			items = append(items, item)
			return nil
		})
	})
	return items, err
}

// Get returns the item with id or ErrNotFound.
func (b *boltStore) Get(id int64) (domain.Item, error) {
	var item domain.Item
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket, err := itemsBucket(tx)
		if err != nil {
			return err
		}
		item, err = getItem(bucket, id)
		return err
	})
	return item, err
}

// Create stores a new item under the next bucket sequence.
func (b *boltStore) Create(req domain.ItemCreateRequest) (domain.Item, error) {
	var item domain.Item
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket, err := itemsBucket(tx)
		if err != nil {
			return err
		}
		seq, err := bucket.NextSequence()
		if err != nil {
			return fmt.Errorf("next sequence: %w", err)
		}
		item = domain.Item{ID: int64(seq), Name: req.Name, Status: req.Status}
		return putItem(bucket, item)
	})
	return item, err
}

// Update applies the set fields of req to the stored item.
func (b *boltStore) Update(id int64, req domain.ItemUpdateRequest) (domain.Item, error) {
	var item domain.Item
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket, err := itemsBucket(tx)
		if err != nil {
			return err
		}
		current, err := getItem(bucket, id)
		if err != nil {
			return err
		}
		item = req.Apply(current)
		return putItem(bucket, item)
	})
	return item, err
}

// Delete removes the item or returns ErrNotFound.
func (b *boltStore) Delete(id int64) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket, err := itemsBucket(tx)
		if err != nil {
			return err
		}
		key := encodeKey(id)
		if bucket.Get(key) == nil {
			return ErrNotFound
		}
		return bucket.Delete(key)
	})
}

// Count returns the number of stored items.
func (b *boltStore) Count() (int, error) {
	var n int
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket, err := itemsBucket(tx)
		if err != nil {
			return err
		}
		n = bucket.Stats().KeyN
		return nil
	})
	return n, err
}

func itemsBucket(tx *bolt.Tx) (*bolt.Bucket, error) {
	bucket := tx.Bucket([]byte(itemBucket))
	if bucket == nil {
		return nil, fmt.Errorf("item bucket missing")
	}
	return bucket, nil
}

func getItem(bucket *bolt.Bucket, id int64) (domain.Item, error) {
	if id <= 0 {
		return domain.Item{}, ErrNotFound
	}
	raw := bucket.Get(encodeKey(id))
	if raw == nil {
		return domain.Item{}, ErrNotFound
	}
	var item domain.Item
	if err := json.Unmarshal(raw, &item); err != nil {
		return domain.Item{}, fmt.Errorf("decode item %d: %w", id, err)
	}
	return item, nil
}

func putItem(bucket *bolt.Bucket, item domain.Item) error {
	raw, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encode item %d: %w", item.ID, err)
	}
	return bucket.Put(encodeKey(item.ID), raw)
}

func encodeKey(id int64) []byte {
	buf := make([]byte, keyBytes)
	binary.BigEndian.PutUint64(buf, uint64(id))
	return buf
}
