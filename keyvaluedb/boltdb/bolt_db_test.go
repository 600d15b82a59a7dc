package boltdb

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alphabill-org/auctionhouse/keyvaluedb"
)

type record struct {
	_    struct{} `cbor:",toarray"`
	Seq  uint64
	Name string
}

func initBoltDB(t *testing.T) (*BoltDB, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "records.db")
	db, err := New(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, path
}

func TestBoltDB_ReadWrite(t *testing.T) {
	db, _ := initBoltDB(t)

	var r record
	found, err := db.Read([]byte{1}, &r)
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, db.Write([]byte{1}, &record{Seq: 1, Name: "sell"}))
	found, err = db.Read([]byte{1}, &r)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "sell", r.Name)

	require.NoError(t, db.Write([]byte{1}, &record{Seq: 1, Name: "buy"}))
	found, err = db.Read([]byte{1}, &r)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "buy", r.Name)

	require.ErrorIs(t, db.Write(nil, &r), keyvaluedb.ErrInvalidKey)
	require.ErrorIs(t, db.Write([]byte{1}, nil), keyvaluedb.ErrValueIsNil)
	_, err = db.Read([]byte{1}, (*record)(nil))
	require.ErrorIs(t, err, keyvaluedb.ErrValueIsNil)

	found, err = db.Read([]byte{1}, new(string))
	require.True(t, found)
	require.ErrorContains(t, err, "reading 01")
}

func TestBoltDB_Iterator(t *testing.T) {
	db, _ := initBoltDB(t)

	it := db.Last()
	require.False(t, it.Valid())
	require.NoError(t, it.Close())

	for i := byte(1); i <= 5; i++ {
		require.NoError(t, db.Write([]byte{0, i * 2}, &record{Seq: uint64(i)}))
	}

	it = db.Find([]byte{0, 5})
	var seqs []uint64
	for ; it.Valid(); it.Next() {
		var r record
		require.NoError(t, it.Value(&r))
		seqs = append(seqs, r.Seq)
	}
	require.Equal(t, []uint64{3, 4, 5}, seqs)
	require.ErrorIs(t, it.Value(&record{}), keyvaluedb.ErrIteratorEnd)
	require.NoError(t, it.Close())

	it = db.Last()
	require.Equal(t, []byte{0, 10}, it.Key())
	it.Next()
	require.False(t, it.Valid())
	require.NoError(t, it.Close())

	it = db.Find([]byte{1})
	require.False(t, it.Valid())
	require.NoError(t, it.Close())
}

func TestBoltDB_Reopen(t *testing.T) {
	db, path := initBoltDB(t)
	require.NoError(t, db.Write([]byte("k"), &record{Seq: 7}))
	require.NoError(t, db.Close())

	db, err := New(path)
	require.NoError(t, err)
	defer db.Close()
	var r record
	found, err := db.Read([]byte("k"), &r)
	require.NoError(t, err)
	require.True(t, found)
	require.EqualValues(t, 7, r.Seq)
}
