package txsystem

import (
	"errors"

	"github.com/alphabill-org/auctionhouse/types"
)

/*
CodedError is implemented by program errors which carry a numeric code. The
code of the failure is stored in the transaction record.
*/
type CodedError interface {
	error
	ErrorCode() uint32
}

// TransactionRecord is the outcome of a single batch.
type TransactionRecord struct {
	_           struct{} `cbor:",toarray"`
	Seq         uint64
	TxHash      []byte
	Transaction *Transaction
	Success     bool
	ErrorCode   uint32
	Error       string
	Targets     []types.Address
	StateHash   []byte
}

// ErrorCodeOf returns the code of the first CodedError in the chain of err.
func ErrorCodeOf(err error) (uint32, bool) {
	var ce CodedError
	if errors.As(err, &ce) {
		return ce.ErrorCode(), true
	}
	return 0, false
}

func (r *TransactionRecord) Bytes() ([]byte, error) {
	return types.Cbor.Marshal(r)
}
