package memorydb

import (
	"bytes"
	"fmt"
	"slices"
	"sync"

	"github.com/alphabill-org/auctionhouse/keyvaluedb"
	"github.com/alphabill-org/auctionhouse/types"
)

// MemoryDB keeps encoded values in a map, it is used when records need not survive a restart.
type MemoryDB struct {
	mu sync.RWMutex
	db map[string][]byte
}

var _ keyvaluedb.KeyValueDB = (*MemoryDB)(nil)

func New() *MemoryDB {
	return &MemoryDB{db: make(map[string][]byte)}
}

func (db *MemoryDB) Read(key []byte, v any) (bool, error) {
	if err := keyvaluedb.CheckKeyAndValue(key, v); err != nil {
		return false, err
	}
	db.mu.RLock()
	defer db.mu.RUnlock()
	data, ok := db.db[string(key)]
	if !ok {
		return false, nil
	}
	if err := types.Cbor.Unmarshal(data, v); err != nil {
		return true, fmt.Errorf("reading %X: %w", key, err)
	}
	return true, nil
}

func (db *MemoryDB) Write(key []byte, v any) error {
	if err := keyvaluedb.CheckKeyAndValue(key, v); err != nil {
		return err
	}
	b, err := types.Cbor.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding value of %X: %w", key, err)
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	db.db[string(key)] = b
	return nil
}

func (db *MemoryDB) Last() keyvaluedb.Iterator {
	it := db.snapshot()
	it.pos = len(it.keys) - 1
	return it
}

func (db *MemoryDB) Find(key []byte) keyvaluedb.Iterator {
	it := db.snapshot()
	it.pos, _ = slices.BinarySearchFunc(it.keys, key, func(k string, target []byte) int {
		return bytes.Compare([]byte(k), target)
	})
	return it
}

func (db *MemoryDB) Close() error { return nil }

// snapshot copies the current content, the iterator does not see later changes.
func (db *MemoryDB) snapshot() *iterator {
	db.mu.RLock()
	defer db.mu.RUnlock()
	it := &iterator{values: make(map[string][]byte, len(db.db))}
	for k, v := range db.db {
		it.keys = append(it.keys, k)
		it.values[k] = v
	}
	slices.Sort(it.keys)
	return it
}

type iterator struct {
	keys   []string
	values map[string][]byte
	pos    int
}

func (it *iterator) Valid() bool { return it.pos >= 0 && it.pos < len(it.keys) }

func (it *iterator) Next() {
	if it.Valid() {
		it.pos++
	}
}

func (it *iterator) Key() []byte {
	if !it.Valid() {
		return nil
	}
	return []byte(it.keys[it.pos])
}

func (it *iterator) Value(v any) error {
	if !it.Valid() {
		return keyvaluedb.ErrIteratorEnd
	}
	return types.Cbor.Unmarshal(it.values[it.keys[it.pos]], v)
}

func (it *iterator) Close() error {
	it.keys, it.values = nil, nil
	return nil
}
