package localnet

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alphabill-org/auctionhouse/keyvaluedb/boltdb"
	"github.com/alphabill-org/auctionhouse/keyvaluedb/memorydb"
	"github.com/alphabill-org/auctionhouse/txsystem"
	"github.com/alphabill-org/auctionhouse/util"
)

func addRecords(t *testing.T, s *RecordStore, count int, success bool) {
	t.Helper()
	for i := 1; i <= count; i++ {
		require.NoError(t, s.Add(&txsystem.TransactionRecord{Seq: uint64(i), Success: success}))
	}
}

func TestRecordStore_RunsDoNotMix(t *testing.T) {
	db := memorydb.New()

	first, err := NewRecordStore(db)
	require.NoError(t, err)
	require.EqualValues(t, 1, first.Run())
	addRecords(t, first, 3, true)

	// second run reuses sequence numbers 1 and 2 and is shorter than the first
	second, err := NewRecordStore(db)
	require.NoError(t, err)
	require.EqualValues(t, 2, second.Run())
	recs, err := second.List(0, 0)
	require.NoError(t, err)
	require.Empty(t, recs)
	addRecords(t, second, 2, false)

	t.Run("current run", func(t *testing.T) {
		recs, err := second.List(1, 0)
		require.NoError(t, err)
		require.Len(t, recs, 2)
		for _, r := range recs {
			require.False(t, r.Success)
		}
		_, err = second.Get(3)
		require.ErrorIs(t, err, ErrRecordNotFound)
	})
	t.Run("earlier run is intact", func(t *testing.T) {
		recs, err := OpenRecordRun(db, 1).List(0, 0)
		require.NoError(t, err)
		require.Len(t, recs, 3)
		for _, r := range recs {
			require.True(t, r.Success)
		}
		rec, err := first.Get(2)
		require.NoError(t, err)
		require.True(t, rec.Success)
	})
	t.Run("limit", func(t *testing.T) {
		recs, err := first.List(2, 5)
		require.NoError(t, err)
		require.Len(t, recs, 2)
		require.EqualValues(t, 2, recs[0].Seq)
	})
	t.Run("nil record", func(t *testing.T) {
		require.EqualError(t, second.Add(nil), "record is nil")
	})
}

func TestRecordStore_Reopen(t *testing.T) {
	dbFile := filepath.Join(t.TempDir(), "records.db")
	db, err := boltdb.New(dbFile)
	require.NoError(t, err)
	store, err := NewRecordStore(db)
	require.NoError(t, err)
	addRecords(t, store, 2, true)
	require.NoError(t, store.Close())

	db, err = boltdb.New(dbFile)
	require.NoError(t, err)
	store, err = NewRecordStore(db)
	require.NoError(t, err)
	defer func() { require.NoError(t, store.Close()) }()
	require.EqualValues(t, 2, store.Run())
	recs, err := store.List(0, 0)
	require.NoError(t, err)
	require.Empty(t, recs)
}

func TestRecordStore_UnexpectedKey(t *testing.T) {
	db := memorydb.New()
	require.NoError(t, db.Write(util.Uint64ToBytes(7), &txsystem.TransactionRecord{Seq: 7}))
	_, err := NewRecordStore(db)
	require.ErrorContains(t, err, "unexpected record key 0000000000000007")
}
