package localnet

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/alphabill-org/auctionhouse/keyvaluedb"
	"github.com/alphabill-org/auctionhouse/txsystem"
	"github.com/alphabill-org/auctionhouse/util"
)

var ErrRecordNotFound = errors.New("transaction record not found")

// record key is run id followed by the batch sequence number, both big-endian
const recordKeyLength = 16

/*
RecordStore keeps the transaction records of one run keyed by batch sequence
number. Sequence numbers restart with every run so runs sharing a database are
told apart by the run id prefixing the key.
*/
type RecordStore struct {
	db  keyvaluedb.KeyValueDB
	run uint64
}

// NewRecordStore starts a new run following the last one recorded in db.
func NewRecordStore(db keyvaluedb.KeyValueDB) (*RecordStore, error) {
	it := db.Last()
	defer it.Close()
	if !it.Valid() {
		return &RecordStore{db: db, run: 1}, nil
	}
	key := it.Key()
	if len(key) != recordKeyLength {
		return nil, fmt.Errorf("unexpected record key %X, expected %d bytes", key, recordKeyLength)
	}
	return &RecordStore{db: db, run: util.BytesToUint64(key[:8]) + 1}, nil
}

// OpenRecordRun gives access to the records of an earlier run.
func OpenRecordRun(db keyvaluedb.KeyValueDB, run uint64) *RecordStore {
	return &RecordStore{db: db, run: run}
}

func (s *RecordStore) Run() uint64 { return s.run }

func (s *RecordStore) key(seq uint64) []byte {
	return append(util.Uint64ToBytes(s.run), util.Uint64ToBytes(seq)...)
}

func (s *RecordStore) Add(rec *txsystem.TransactionRecord) error {
	if rec == nil {
		return errors.New("record is nil")
	}
	return s.db.Write(s.key(rec.Seq), rec)
}

func (s *RecordStore) Get(seq uint64) (*txsystem.TransactionRecord, error) {
	rec := &txsystem.TransactionRecord{}
	found, err := s.db.Read(s.key(seq), rec)
	if err != nil {
		return nil, fmt.Errorf("reading record %d: %w", seq, err)
	}
	if !found {
		return nil, fmt.Errorf("%w: %d", ErrRecordNotFound, seq)
	}
	return rec, nil
}

// List returns at most limit records starting from sequence number from, zero limit means no limit.
func (s *RecordStore) List(from uint64, limit int) (_ []*txsystem.TransactionRecord, rErr error) {
	prefix := util.Uint64ToBytes(s.run)
	it := s.db.Find(s.key(from))
	defer func() { rErr = errors.Join(rErr, it.Close()) }()

	var recs []*txsystem.TransactionRecord
	for ; it.Valid() && bytes.HasPrefix(it.Key(), prefix) && (limit <= 0 || len(recs) < limit); it.Next() {
		rec := &txsystem.TransactionRecord{}
		if err := it.Value(rec); err != nil {
			return nil, fmt.Errorf("reading record %X: %w", it.Key(), err)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func (s *RecordStore) Close() error { return s.db.Close() }
