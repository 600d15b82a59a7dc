package state

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/alphabill-org/auctionhouse/types"
	"github.com/alphabill-org/auctionhouse/util"
)

type (
	LedgerState interface {
		Add(addr types.Address, acc *Account) error
		Get(addr types.Address) (*Account, error)
		Update(addr types.Address, acc *Account) error
		Delete(addr types.Address) error
	}

	Action func(s LedgerState) error

	// UpdateFunction is a function for updating the data of an account. Takes in previous data and returns new data.
	UpdateFunction func(data []byte) (newData []byte, err error)
)

// AddAccount adds a new account, fails when the address is already in use.
func AddAccount(addr types.Address, acc *Account) Action {
	return func(s LedgerState) error {
		if acc == nil {
			return errors.New("account is nil")
		}
		if err := s.Add(addr, acc.Clone()); err != nil {
			return fmt.Errorf("unable to add account: %w", err)
		}
		return nil
	}
}

/*
AllocateAccount assigns owner and data to the account at addr. The account may
already exist holding lamports only (anyone can send lamports to any address)
but allocating over an account which holds data fails with ErrAccountInUse.
*/
func AllocateAccount(addr types.Address, owner types.Address, data []byte) Action {
	return func(s LedgerState) error {
		if len(data) == 0 {
			return errors.New("allocating account without data")
		}
		acc, err := s.Get(addr)
		if errors.Is(err, ErrAccountNotFound) {
			return s.Add(addr, &Account{Owner: owner, Data: bytes.Clone(data)})
		}
		if err != nil {
			return err
		}
		if acc.HasData() {
			return fmt.Errorf("%w: %s", ErrAccountInUse, addr)
		}
		cloned := acc.Clone()
		cloned.Owner = owner
		cloned.Data = bytes.Clone(data)
		return s.Update(addr, cloned)
	}
}

// Transfer moves lamports between accounts. The receiving account is created when it does not exist.
func Transfer(from, to types.Address, amount uint64) Action {
	return func(s LedgerState) error {
		if from == to {
			return nil
		}
		src, err := s.Get(from)
		if err != nil {
			return fmt.Errorf("transfer source: %w", err)
		}
		if src.Lamports < amount {
			return fmt.Errorf("%w: %s has %d, needs %d", ErrInsufficientFunds, from, src.Lamports, amount)
		}
		dst, err := s.Get(to)
		switch {
		case errors.Is(err, ErrAccountNotFound):
			dst = &Account{Owner: types.SystemProgramID}
			if err := AddAccount(to, dst)(s); err != nil {
				return err
			}
		case err != nil:
			return fmt.Errorf("transfer destination: %w", err)
		}
		sum, _, err := util.AddUint64(dst.Lamports, amount)
		if err != nil {
			return fmt.Errorf("crediting %s: %w", to, err)
		}
		srcClone, dstClone := src.Clone(), dst.Clone()
		srcClone.Lamports -= amount
		dstClone.Lamports = sum
		if err := s.Update(from, srcClone); err != nil {
			return err
		}
		return s.Update(to, dstClone)
	}
}

// UpdateData changes the data of the account, leaves lamports and owner as is.
func UpdateData(addr types.Address, f UpdateFunction) Action {
	return func(s LedgerState) error {
		if f == nil {
			return errors.New("update function is nil")
		}
		acc, err := s.Get(addr)
		if err != nil {
			return fmt.Errorf("failed to get account: %w", err)
		}
		cloned := acc.Clone()
		newData, err := f(cloned.Data)
		if err != nil {
			return fmt.Errorf("unable to update account data: %w", err)
		}
		cloned.Data = newData
		return s.Update(addr, cloned)
	}
}

/*
CloseAccount moves all lamports of the account to dest and removes the account
from the state: afterwards the address holds neither lamports nor data.
*/
func CloseAccount(addr, dest types.Address) Action {
	return func(s LedgerState) error {
		if addr == dest {
			return fmt.Errorf("closing account %s into itself", addr)
		}
		acc, err := s.Get(addr)
		if err != nil {
			return fmt.Errorf("closing account: %w", err)
		}
		if acc.Lamports > 0 {
			if err := Transfer(addr, dest, acc.Lamports)(s); err != nil {
				return fmt.Errorf("reclaiming lamports: %w", err)
			}
		}
		return s.Delete(addr)
	}
}
