package auctionhouse

import (
	"errors"
	"fmt"

	"github.com/alphabill-org/auctionhouse/state"
	"github.com/alphabill-org/auctionhouse/types"
)

func TradeStateRent() uint64 { return types.RentExemptMinimum(TradeStateSpace) }

/*
openTradeStateAction creates the trade state of key, paid for by payer. Fails
with AlreadyOpen when the address already holds data. An address holding only
lamports is not an open order and can be (re)opened.
*/
func openTradeStateAction(payer types.Address, key TradeKey, side Side) state.Action {
	return func(s state.LedgerState) error {
		addr, bump := key.Address()
		acc, err := s.Get(addr)
		if err != nil && !errors.Is(err, state.ErrAccountNotFound) {
			return err
		}
		if acc.HasData() {
			return newError(AlreadyOpen, "trade state %s", addr)
		}
		data, err := encode(&TradeStateData{
			Kind:         KindTradeState,
			Side:         side,
			Bump:         bump,
			Wallet:       key.Wallet,
			AuctionHouse: key.AuctionHouse,
			TokenAccount: key.TokenAccount,
			TreasuryMint: key.TreasuryMint,
			TokenMint:    key.TokenMint,
			Price:        key.Price,
			Size:         key.Size,
			Creator:      payer,
		})
		if err != nil {
			return fmt.Errorf("encoding trade state: %w", err)
		}
		return allocate(s, payer, addr, data, TradeStateRent())
	}
}

/*
CloseTradeStateAction destroys the trade state: the data is dropped and all the
lamports go back to the creator, leaving nothing at the address. Fails with
NotOpen when the address holds no data.
*/
func CloseTradeStateAction(addr types.Address) state.Action {
	return func(s state.LedgerState) error {
		acc, err := s.Get(addr)
		if err != nil && !errors.Is(err, state.ErrAccountNotFound) {
			return err
		}
		if !acc.HasData() {
			return newError(NotOpen, "trade state %s", addr)
		}
		ts, err := DecodeTradeState(acc)
		if err != nil {
			return wrapError(InvalidTradeState, err, "trade state %s", addr)
		}
		return state.CloseAccount(addr, ts.Creator)(s)
	}
}

/*
accountReader is the part of the execution context used to check orders: the
current view and the view at the start of the batch.
*/
type accountReader interface {
	GetAccount(addr types.Address) (*state.Account, error)
	GetAccountAtBatchStart(addr types.Address) (*state.Account, error)
}

/*
openTradeState returns the order at addr. The order counts as open only when
the account holds trade state data now and already held it when the batch
started: lamports alone or data written earlier in the same batch do not
make an order.
*/
func openTradeState(r accountReader, addr types.Address) (*TradeStateData, error) {
	for _, get := range []func(types.Address) (*state.Account, error){r.GetAccountAtBatchStart, r.GetAccount} {
		acc, err := get(addr)
		if err != nil && !errors.Is(err, state.ErrAccountNotFound) {
			return nil, err
		}
		if !acc.HasData() {
			return nil, newError(NotOpen, "trade state %s", addr)
		}
	}
	acc, err := r.GetAccount(addr)
	if err != nil {
		return nil, err
	}
	ts, err := DecodeTradeState(acc)
	if err != nil {
		return nil, wrapError(InvalidTradeState, err, "trade state %s", addr)
	}
	return ts, nil
}

// isOpen reports whether addr holds an order, used for the optional free trade states.
func isOpen(r accountReader, addr types.Address) bool {
	acc, err := r.GetAccount(addr)
	return err == nil && acc.HasData()
}

// matches verifies the order terms against the expected key and side.
func (ts *TradeStateData) matches(key TradeKey, side Side) error {
	if ts.Side != side {
		return newError(InvalidTradeState, "expected %s order, got %s order", side, ts.Side)
	}
	if ts.Key() != key {
		return newError(InvalidTradeState, "order terms do not match: price %d size %d", ts.Price, ts.Size)
	}
	return nil
}
