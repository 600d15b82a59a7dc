package state

import (
	"bytes"
	"fmt"

	"github.com/alphabill-org/auctionhouse/types"
)

// Account is an entry in the ledger: a lamport balance, the program owning
// the account and opaque data interpreted by the owner program.
type Account struct {
	_        struct{} `cbor:",toarray"`
	Lamports uint64
	Owner    types.Address
	Data     []byte
}

func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	return &Account{
		Lamports: a.Lamports,
		Owner:    a.Owner,
		Data:     bytes.Clone(a.Data),
	}
}

// HasData returns true when the account carries program data. Program state
// (orders, escrows, registries) exists only while the data is non-empty,
// lamports alone never make an account initialized.
func (a *Account) HasData() bool {
	return a != nil && len(a.Data) > 0
}

// IsEmpty returns true when the account holds neither lamports nor data.
func (a *Account) IsEmpty() bool {
	return a == nil || (a.Lamports == 0 && len(a.Data) == 0)
}

func (a *Account) String() string {
	return fmt.Sprintf("lamports=%d, owner=%s, data=%d bytes", a.Lamports, a.Owner, len(a.Data))
}
