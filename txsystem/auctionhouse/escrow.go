package auctionhouse

import (
	"errors"
	"fmt"

	"github.com/alphabill-org/auctionhouse/state"
	"github.com/alphabill-org/auctionhouse/types"
	"github.com/alphabill-org/auctionhouse/util"
)

/*
Escrow accounts hold the lamports of a wallet for the auction house. The
account lamports always cover Balance + Reserved + rent: deposits move
lamports in, reservations only move value between Balance and Reserved, and
payouts move lamports out of Reserved.
*/

// Payout is a lamport payment made out of the reserved escrow funds.
type Payout struct {
	To     types.Address
	Amount uint64
}

func EscrowRent() uint64 { return types.RentExemptMinimum(EscrowSpace) }

/*
openEscrowAction creates the escrow of wallet when it does not exist yet, the
rent is paid by the wallet.
*/
func openEscrowAction(auctionHouse, wallet types.Address) state.Action {
	return func(s state.LedgerState) error {
		addr, bump := EscrowAddress(auctionHouse, wallet)
		acc, err := s.Get(addr)
		if err != nil && !errors.Is(err, state.ErrAccountNotFound) {
			return err
		}
		if acc.HasData() {
			e, err := DecodeEscrow(acc)
			if err != nil {
				return wrapError(InvalidTradeState, err, "escrow %s", addr)
			}
			if e.Wallet != wallet || e.AuctionHouse != auctionHouse {
				return newError(InvalidTradeState, "escrow %s belongs to %s", addr, e.Wallet)
			}
			return nil
		}
		data, err := encode(&EscrowData{Kind: KindEscrow, Bump: bump, Wallet: wallet, AuctionHouse: auctionHouse})
		if err != nil {
			return fmt.Errorf("encoding escrow: %w", err)
		}
		return allocate(s, wallet, addr, data, EscrowRent())
	}
}

/*
DepositAction moves amount lamports from the wallet into its escrow and
credits the escrow balance. The escrow is created on first deposit.
*/
func DepositAction(auctionHouse, wallet types.Address, amount uint64) state.Action {
	addr, _ := EscrowAddress(auctionHouse, wallet)
	return func(s state.LedgerState) error {
		if err := openEscrowAction(auctionHouse, wallet)(s); err != nil {
			return err
		}
		if err := updateEscrow(addr, func(e *EscrowData) error {
			if _, _, err := util.AddUint64(e.Balance, e.Reserved, amount); err != nil {
				return wrapError(Overflow, err, "escrow %s", addr)
			}
			e.Balance += amount
			return nil
		})(s); err != nil {
			return err
		}
		if err := state.Transfer(wallet, addr, amount)(s); err != nil {
			if errors.Is(err, util.ErrOverflow) {
				return wrapError(Overflow, err, "escrow %s", addr)
			}
			return fmt.Errorf("funding escrow: %w", err)
		}
		return nil
	}
}

/*
DebitAction takes amount from the escrow balance and commits it to an open buy
order. Fails with InsufficientEscrow when the balance is smaller than amount.
*/
func DebitAction(escrow types.Address, amount uint64) state.Action {
	return updateEscrow(escrow, func(e *EscrowData) error {
		if amount > e.Balance {
			return newError(InsufficientEscrow, "escrow %s balance %d, needs %d", escrow, e.Balance, amount)
		}
		e.Balance -= amount
		e.Reserved += amount
		return nil
	})
}

// ReleaseAction returns reserved funds of a cancelled buy order to the escrow balance.
func ReleaseAction(escrow types.Address, amount uint64) state.Action {
	return updateEscrow(escrow, func(e *EscrowData) error {
		if amount > e.Reserved {
			return newError(InsufficientEscrow, "escrow %s reserved %d, releasing %d", escrow, e.Reserved, amount)
		}
		e.Reserved -= amount
		e.Balance += amount
		return nil
	})
}

// PayoutAction pays out of the reserved escrow funds.
func PayoutAction(escrow types.Address, payouts ...Payout) state.Action {
	return func(s state.LedgerState) error {
		var total uint64
		for _, p := range payouts {
			sum, _, err := util.AddUint64(total, p.Amount)
			if err != nil {
				return wrapError(Overflow, err, "payout total")
			}
			total = sum
		}
		if err := updateEscrow(escrow, func(e *EscrowData) error {
			if total > e.Reserved {
				return newError(InsufficientEscrow, "escrow %s reserved %d, paying out %d", escrow, e.Reserved, total)
			}
			e.Reserved -= total
			return nil
		})(s); err != nil {
			return err
		}
		for _, p := range payouts {
			if p.Amount == 0 {
				continue
			}
			if err := state.Transfer(escrow, p.To, p.Amount)(s); err != nil {
				return fmt.Errorf("paying %d to %s: %w", p.Amount, p.To, err)
			}
		}
		return nil
	}
}

func updateEscrow(addr types.Address, f func(e *EscrowData) error) state.Action {
	return func(s state.LedgerState) error {
		acc, err := s.Get(addr)
		if errors.Is(err, state.ErrAccountNotFound) {
			return wrapError(InsufficientEscrow, err, "escrow %s", addr)
		}
		if err != nil {
			return err
		}
		e, err := DecodeEscrow(acc)
		if err != nil {
			return wrapError(InvalidTradeState, err, "escrow %s", addr)
		}
		if err := f(e); err != nil {
			return err
		}
		data, err := encode(e)
		if err != nil {
			return fmt.Errorf("encoding escrow: %w", err)
		}
		cloned := acc.Clone()
		cloned.Data = data
		return s.Update(addr, cloned)
	}
}

/*
allocate assigns data to a program owned account at addr, topping the account
up to rent lamports from payer. Lamports already at the address count towards
the rent.
*/
func allocate(s state.LedgerState, payer, addr types.Address, data []byte, rent uint64) error {
	var balance uint64
	acc, err := s.Get(addr)
	switch {
	case err == nil:
		balance = acc.Lamports
	case !errors.Is(err, state.ErrAccountNotFound):
		return err
	}
	if balance < rent {
		if err := state.Transfer(payer, addr, rent-balance)(s); err != nil {
			return fmt.Errorf("paying rent for %s: %w", addr, err)
		}
	}
	return state.AllocateAccount(addr, types.AuctionHouseProgramID, data)(s)
}
