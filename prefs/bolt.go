package prefs

import (
	"time"

	"github.com/boltdb/bolt"
	errgo "gopkg.in/errgo.v1"
)

var bucketName = []byte("prefs")

// BoltStore is a Store that keeps its values in a bolt database.
type BoltStore struct {
	db *bolt.DB
}

// OpenBolt opens the bolt database at the given path, creating
// it if needed. The returned store should be closed after use.
func OpenBolt(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0666, &bolt.Options{
		Timeout: 5 * time.Second,
	})
	if err != nil {
		return nil, errgo.Notef(err, "cannot open preferences database")
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	}); err != nil {
		db.Close()
		return nil, errgo.Notef(err, "cannot create preferences bucket")
	}
	return &BoltStore{
		db: db,
	}, nil
}

// Get implements Store.Get.
func (s *BoltStore) Get(key string) (string, error) {
	var value string
	found := false
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketName).Get([]byte(key))
		if v != nil {
			found = true
			value = string(v)
		}
		return nil
	})
	if err != nil {
		return "", errgo.Notef(err, "cannot read preference %q", key)
	}
	if !found {
		return "", errgo.WithCausef(nil, ErrNotFound, "no value for %q", key)
	}
	return value, nil
}

// Put implements Store.Put.
func (s *BoltStore) Put(key, value string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(key), []byte(value))
	})
	if err != nil {
		return errgo.Notef(err, "cannot write preference %q", key)
	}
	return nil
}

// Close closes the underlying database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}
