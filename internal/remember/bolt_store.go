package remember

import (
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

var (
	bucketName = []byte("remember")
	keyEmail   = []byte("email")
	keyFlag    = []byte("flag")
)

// BoltStore is a Store backed by a bbolt database file, so the hint
// survives process restarts.
type BoltStore struct {
	db *bbolt.DB
}

// OpenBolt opens (creating if needed) the hint database at path.
func OpenBolt(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening remember store: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating remember bucket: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Close releases the underlying database file.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// Load reads the stored hint. An empty database yields the zero Hint.
func (s *BoltStore) Load() (Hint, error) {
	var h Hint
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketName)
		h.Email = string(b.Get(keyEmail))
		h.Remember = string(b.Get(keyFlag)) == "true"
		return nil
	})
	if err != nil {
		return Hint{}, fmt.Errorf("loading remember hint: %w", err)
	}
	return h, nil
}

// Save writes both fields in a single transaction. With Remember false the
// email is dropped rather than stored.
func (s *BoltStore) Save(h Hint) error {
	if !h.Remember {
		h.Email = ""
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketName)
		flag := "false"
		if h.Remember {
			flag = "true"
		}
		if err := b.Put(keyEmail, []byte(h.Email)); err != nil {
			return err
		}
		return b.Put(keyFlag, []byte(flag))
	})
	if err != nil {
		return fmt.Errorf("saving remember hint: %w", err)
	}
	return nil
}
