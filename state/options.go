package state

import (
	"crypto"

	"github.com/alphabill-org/auctionhouse/types"
)

type (
	Options struct {
		hashAlgorithm crypto.Hash
		genesis       map[types.Address]*Account
	}

	Option func(o *Options)
)

func WithHashAlgorithm(hashAlgorithm crypto.Hash) Option {
	return func(o *Options) {
		o.hashAlgorithm = hashAlgorithm
	}
}

// WithAccount adds account to the initial (committed) state.
func WithAccount(addr types.Address, acc *Account) Option {
	return func(o *Options) {
		if o.genesis == nil {
			o.genesis = make(map[types.Address]*Account)
		}
		o.genesis[addr] = acc.Clone()
	}
}

func loadOptions(opts ...Option) *Options {
	options := &Options{
		hashAlgorithm: crypto.SHA256,
	}
	for _, opt := range opts {
		opt(options)
	}
	return options
}
