package boltdb

import (
	"bytes"

	bolt "go.etcd.io/bbolt"

	"github.com/alphabill-org/auctionhouse/keyvaluedb"
	"github.com/alphabill-org/auctionhouse/types"
)

/*
Iterator holds a read only bolt transaction open until Close is called, the
iterated view does not change while it is open.
*/
type Iterator struct {
	tx     *bolt.Tx
	cursor *bolt.Cursor
	key    []byte
	value  []byte
	err    error
}

func newIterator(db *bolt.DB) *Iterator {
	it := &Iterator{}
	tx, err := db.Begin(false)
	if err != nil {
		it.err = err
		return it
	}
	it.tx = tx
	it.cursor = tx.Bucket(recordsBucket).Cursor()
	return it
}

func (it *Iterator) set(k, v []byte) {
	// the slices are only valid for the life of the transaction
	it.key = bytes.Clone(k)
	it.value = bytes.Clone(v)
}

func (it *Iterator) Valid() bool {
	return it.err == nil && it.key != nil
}

func (it *Iterator) Next() {
	if it.Valid() {
		it.set(it.cursor.Next())
	}
}

func (it *Iterator) Key() []byte {
	return it.key
}

func (it *Iterator) Value(v any) error {
	if !it.Valid() {
		return keyvaluedb.ErrIteratorEnd
	}
	return types.Cbor.Unmarshal(it.value, v)
}

func (it *Iterator) Close() error {
	if it.tx == nil {
		return it.err
	}
	err := it.tx.Rollback()
	it.tx, it.cursor, it.key, it.value = nil, nil, nil, nil
	return err
}
