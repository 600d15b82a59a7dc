package auctionhouse

import (
	"fmt"

	"github.com/alphabill-org/auctionhouse/logger"
	"github.com/alphabill-org/auctionhouse/state"
	"github.com/alphabill-org/auctionhouse/txsystem"
	"github.com/alphabill-org/auctionhouse/types"
	"github.com/alphabill-org/auctionhouse/util"
)

/*
handleBuyTx places a bid: it opens the buy trade state and the free buy trade
state and reserves Price*Size of the buyer's escrow for the order. When the
escrow balance falls short the difference is first deposited from the
buyer's wallet.
*/
func (m *Module) handleBuyTx(_ *txsystem.Instruction, attr *BuyAttributes, exeCtx *txsystem.ExecutionContext) error {
	key, total, err := m.validateBuyTx(attr, exeCtx)
	if err != nil {
		return fmt.Errorf("buy validation error: %w", err)
	}
	escrow, _ := EscrowAddress(attr.AuctionHouse, attr.Wallet)
	actions := []state.Action{
		openEscrowAction(attr.AuctionHouse, attr.Wallet),
		topUpEscrowAction(attr.AuctionHouse, attr.Wallet, total),
		DebitAction(escrow, total),
		openTradeStateAction(attr.Wallet, key, SideBuy),
	}
	if key.Price != 0 {
		actions = append(actions, openTradeStateAction(attr.Wallet, key.Free(), SideBuy))
	}
	if err := exeCtx.Apply(actions...); err != nil {
		return err
	}
	ts, _ := key.Address()
	free, _ := key.Free().Address()
	exeCtx.AddTargets(ts, free, escrow)
	m.log.Debug().Func(logger.Address(ts)).Uint64("price", key.Price).Uint64("size", key.Size).Msg("buy order opened")
	return nil
}

func (m *Module) validateBuyTx(attr *BuyAttributes, exeCtx *txsystem.ExecutionContext) (TradeKey, uint64, error) {
	ah, err := getAuctionHouse(exeCtx, attr.AuctionHouse)
	if err != nil {
		return TradeKey{}, 0, err
	}
	if err := requireSigner(exeCtx, attr.Wallet); err != nil {
		return TradeKey{}, 0, err
	}
	if err := checkSignOff(exeCtx, ah); err != nil {
		return TradeKey{}, 0, err
	}
	if attr.Size == 0 {
		return TradeKey{}, 0, newError(InvalidTradeState, "token size is zero")
	}
	total, err := util.MulUint64(attr.Price, attr.Size)
	if err != nil {
		return TradeKey{}, 0, wrapError(Overflow, err, "order total")
	}
	ta, err := getTokenAccount(exeCtx, attr.TokenAccount)
	if err != nil {
		return TradeKey{}, 0, err
	}
	return TradeKey{
		Wallet:       attr.Wallet,
		AuctionHouse: attr.AuctionHouse,
		TokenAccount: attr.TokenAccount,
		TreasuryMint: ah.TreasuryMint,
		TokenMint:    ta.Mint,
		Price:        attr.Price,
		Size:         attr.Size,
	}, total, nil
}

// topUpEscrowAction deposits from the wallet whatever the escrow balance lacks to cover amount.
func topUpEscrowAction(auctionHouse, wallet types.Address, amount uint64) state.Action {
	escrow, _ := EscrowAddress(auctionHouse, wallet)
	return func(s state.LedgerState) error {
		acc, err := s.Get(escrow)
		if err != nil {
			return err
		}
		e, err := DecodeEscrow(acc)
		if err != nil {
			return wrapError(InvalidTradeState, err, "escrow %s", escrow)
		}
		if e.Balance >= amount {
			return nil
		}
		shortfall := amount - e.Balance
		w, err := s.Get(wallet)
		if err != nil {
			return wrapError(InsufficientEscrow, err, "wallet %s", wallet)
		}
		if w.Lamports < shortfall {
			return newError(InsufficientEscrow, "escrow balance %d and wallet balance %d do not cover %d", e.Balance, w.Lamports, amount)
		}
		return DepositAction(auctionHouse, wallet, shortfall)(s)
	}
}
