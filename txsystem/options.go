package txsystem

import (
	"crypto"

	"github.com/alphabill-org/auctionhouse/state"
)

type Options struct {
	hashAlgorithm crypto.Hash
	state         *state.State
	onRecord      []func(rec *TransactionRecord)
}

type Option func(*Options)

func DefaultOptions() *Options {
	return &Options{
		hashAlgorithm: crypto.SHA256,
	}
}

func WithHashAlgorithm(hashAlgorithm crypto.Hash) Option {
	return func(g *Options) {
		g.hashAlgorithm = hashAlgorithm
	}
}

func WithState(s *state.State) Option {
	return func(g *Options) {
		g.state = s
	}
}

// WithRecordHandler registers a function which is called with the record of every executed batch.
func WithRecordHandler(f func(rec *TransactionRecord)) Option {
	return func(g *Options) {
		g.onRecord = append(g.onRecord, f)
	}
}
