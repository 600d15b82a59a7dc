package boltdb

import (
	"errors"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/alphabill-org/auctionhouse/keyvaluedb"
	"github.com/alphabill-org/auctionhouse/types"
)

var recordsBucket = []byte("records")

// BoltDB stores CBOR encoded values in a single bucket of a Bolt database file.
type BoltDB struct {
	db *bolt.DB
}

var _ keyvaluedb.KeyValueDB = (*BoltDB)(nil)

// New opens the database file, creating it when missing.
func New(dbFile string) (*BoltDB, error) {
	db, err := bolt.Open(dbFile, 0600, &bolt.Options{Timeout: 3 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bolt db %q: %w", dbFile, err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(recordsBucket)
		return err
	}); err != nil {
		return nil, errors.Join(fmt.Errorf("creating bucket: %w", err), db.Close())
	}
	return &BoltDB{db: db}, nil
}

func (db *BoltDB) Read(key []byte, v any) (found bool, err error) {
	if err := keyvaluedb.CheckKeyAndValue(key, v); err != nil {
		return false, err
	}
	err = db.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(recordsBucket).Get(key)
		if data == nil {
			return nil
		}
		found = true
		return types.Cbor.Unmarshal(data, v)
	})
	if err != nil {
		return found, fmt.Errorf("reading %X: %w", key, err)
	}
	return found, nil
}

func (db *BoltDB) Write(key []byte, v any) error {
	if err := keyvaluedb.CheckKeyAndValue(key, v); err != nil {
		return err
	}
	data, err := types.Cbor.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding value of %X: %w", key, err)
	}
	return db.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(recordsBucket).Put(key, data)
	})
}

func (db *BoltDB) Last() keyvaluedb.Iterator {
	it := newIterator(db.db)
	if it.cursor != nil {
		it.set(it.cursor.Last())
	}
	return it
}

func (db *BoltDB) Find(key []byte) keyvaluedb.Iterator {
	it := newIterator(db.db)
	if it.cursor != nil {
		it.set(it.cursor.Seek(key))
	}
	return it
}

func (db *BoltDB) Close() error {
	return db.db.Close()
}
