package state

import (
	"errors"
	"fmt"
	"slices"

	"github.com/alphabill-org/auctionhouse/types"
)

var (
	ErrAccountNotFound   = errors.New("account not found")
	ErrAccountExists     = errors.New("account already exists")
	ErrAccountInUse      = errors.New("account already holds data")
	ErrInsufficientFunds = errors.New("insufficient lamports")
)

// accounts is the copy-on-write account map backing a savepoint. Account
// pointers stored in it are never mutated, updates store a new clone.
type accounts map[types.Address]*Account

func (m accounts) clone() accounts {
	c := make(accounts, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

func (m accounts) Add(addr types.Address, acc *Account) error {
	if _, ok := m[addr]; ok {
		return fmt.Errorf("%w: %s", ErrAccountExists, addr)
	}
	m[addr] = acc
	return nil
}

func (m accounts) Get(addr types.Address) (*Account, error) {
	acc, ok := m[addr]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, addr)
	}
	return acc, nil
}

func (m accounts) Update(addr types.Address, acc *Account) error {
	if _, ok := m[addr]; !ok {
		return fmt.Errorf("%w: %s", ErrAccountNotFound, addr)
	}
	m[addr] = acc
	return nil
}

func (m accounts) Delete(addr types.Address) error {
	if _, ok := m[addr]; !ok {
		return fmt.Errorf("%w: %s", ErrAccountNotFound, addr)
	}
	delete(m, addr)
	return nil
}

func (m accounts) sortedAddresses() []types.Address {
	keys := make([]types.Address, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b types.Address) int { return a.Compare(b) })
	return keys
}
