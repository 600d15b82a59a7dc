package auctionhouse

import (
	"fmt"

	"github.com/alphabill-org/auctionhouse/logger"
	"github.com/alphabill-org/auctionhouse/state"
	"github.com/alphabill-org/auctionhouse/txsystem"
	"github.com/alphabill-org/auctionhouse/txsystem/tokens"
	"github.com/alphabill-org/auctionhouse/util"
)

/*
handleCancelTx closes an open order of the wallet. Cancelling a sell order
revokes the program signer delegation, cancelling a buy order returns the
reserved funds to the escrow balance.
*/
func (m *Module) handleCancelTx(_ *txsystem.Instruction, attr *CancelAttributes, exeCtx *txsystem.ExecutionContext) error {
	ts, key, err := m.validateCancelTx(attr, exeCtx)
	if err != nil {
		return fmt.Errorf("cancel validation error: %w", err)
	}
	actions := []state.Action{CloseTradeStateAction(attr.TradeState)}
	exeCtx.AddTargets(attr.TradeState)

	if free, _ := key.Free().Address(); free != attr.TradeState && isOpen(exeCtx, free) {
		freeTS, err := openTradeState(exeCtx, free)
		if err == nil && freeTS.matches(key.Free(), ts.Side) == nil {
			actions = append(actions, CloseTradeStateAction(free))
			exeCtx.AddTargets(free)
		}
	}

	switch ts.Side {
	case SideSell:
		programSigner, _ := ProgramSignerAddress()
		if ta, err := getTokenAccount(exeCtx, attr.TokenAccount); err == nil && ta.Owner == attr.Wallet && ta.Delegate == programSigner {
			actions = append(actions, tokens.RevokeAction(attr.TokenAccount))
		}
	case SideBuy:
		total, err := util.MulUint64(ts.Price, ts.Size)
		if err != nil {
			return wrapError(Overflow, err, "order total")
		}
		escrow, _ := EscrowAddress(attr.AuctionHouse, attr.Wallet)
		actions = append(actions, ReleaseAction(escrow, total))
		exeCtx.AddTargets(escrow)
	}
	if err := exeCtx.Apply(actions...); err != nil {
		return err
	}
	m.log.Debug().Func(logger.Address(attr.TradeState)).Stringer("side", ts.Side).Msg("order cancelled")
	return nil
}

func (m *Module) validateCancelTx(attr *CancelAttributes, exeCtx *txsystem.ExecutionContext) (*TradeStateData, TradeKey, error) {
	ah, err := getAuctionHouse(exeCtx, attr.AuctionHouse)
	if err != nil {
		return nil, TradeKey{}, err
	}
	if !exeCtx.IsSigner(attr.Wallet) && !exeCtx.IsSigner(ah.Authority) {
		return nil, TradeKey{}, newError(Unauthorized, "cancel must be signed by %s or the auction house authority", attr.Wallet)
	}
	if err := checkSignOff(exeCtx, ah); err != nil {
		return nil, TradeKey{}, err
	}
	key := TradeKey{
		Wallet:       attr.Wallet,
		AuctionHouse: attr.AuctionHouse,
		TokenAccount: attr.TokenAccount,
		TreasuryMint: ah.TreasuryMint,
		TokenMint:    attr.TokenMint,
		Price:        attr.Price,
		Size:         attr.Size,
	}
	if addr, _ := key.Address(); addr != attr.TradeState {
		return nil, TradeKey{}, newError(InvalidTradeState, "trade state: supplied %s, derived %s", attr.TradeState, addr)
	}
	ts, err := openTradeState(exeCtx, attr.TradeState)
	if err != nil {
		return nil, TradeKey{}, err
	}
	if err := ts.matches(key, ts.Side); err != nil {
		return nil, TradeKey{}, err
	}
	return ts, key, nil
}
