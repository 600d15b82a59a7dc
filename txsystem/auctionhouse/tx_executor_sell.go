package auctionhouse

import (
	"fmt"

	"github.com/alphabill-org/auctionhouse/logger"
	"github.com/alphabill-org/auctionhouse/state"
	"github.com/alphabill-org/auctionhouse/txsystem"
	"github.com/alphabill-org/auctionhouse/txsystem/tokens"
	"github.com/alphabill-org/auctionhouse/types"
)

/*
handleSellTx lists Size tokens of the token account at Price: it opens the sell
trade state and the free (zero price) sell trade state and makes the program
signer the delegate of the listed tokens.
*/
func (m *Module) handleSellTx(_ *txsystem.Instruction, attr *SellAttributes, exeCtx *txsystem.ExecutionContext) error {
	key, err := m.validateSellTx(attr, exeCtx)
	if err != nil {
		return fmt.Errorf("sell validation error: %w", err)
	}
	programSigner, _ := ProgramSignerAddress()
	actions := []state.Action{openTradeStateAction(attr.Wallet, key, SideSell)}
	if key.Price != 0 {
		actions = append(actions, openTradeStateAction(attr.Wallet, key.Free(), SideSell))
	}
	actions = append(actions, tokens.ApproveAction(attr.TokenAccount, programSigner, attr.Size))
	if err := exeCtx.Apply(actions...); err != nil {
		return err
	}
	ts, _ := key.Address()
	free, _ := key.Free().Address()
	exeCtx.AddTargets(ts, free, attr.TokenAccount)
	m.log.Debug().Func(logger.Address(ts)).Uint64("price", key.Price).Uint64("size", key.Size).Msg("sell order opened")
	return nil
}

func (m *Module) validateSellTx(attr *SellAttributes, exeCtx *txsystem.ExecutionContext) (TradeKey, error) {
	ah, err := getAuctionHouse(exeCtx, attr.AuctionHouse)
	if err != nil {
		return TradeKey{}, err
	}
	if err := requireSigner(exeCtx, attr.Wallet); err != nil {
		return TradeKey{}, err
	}
	if err := checkSignOff(exeCtx, ah); err != nil {
		return TradeKey{}, err
	}
	if attr.Size == 0 {
		return TradeKey{}, newError(InvalidTradeState, "token size is zero")
	}
	if attr.Price == 0 && !ah.CanChangeSalePrice {
		return TradeKey{}, newError(InvalidTradeState, "zero price listing requires an auction house which allows sale price changes")
	}
	ta, err := getTokenAccount(exeCtx, attr.TokenAccount)
	if err != nil {
		return TradeKey{}, err
	}
	if ta.Owner != attr.Wallet {
		return TradeKey{}, newError(InvalidTradeState, "token account %s is owned by %s", attr.TokenAccount, ta.Owner)
	}
	if ta.Amount < attr.Size {
		return TradeKey{}, newError(InvalidTradeState, "token account %s holds %d tokens, listing %d", attr.TokenAccount, ta.Amount, attr.Size)
	}
	return TradeKey{
		Wallet:       attr.Wallet,
		AuctionHouse: attr.AuctionHouse,
		TokenAccount: attr.TokenAccount,
		TreasuryMint: ah.TreasuryMint,
		TokenMint:    ta.Mint,
		Price:        attr.Price,
		Size:         attr.Size,
	}, nil
}

func getTokenAccount(exeCtx *txsystem.ExecutionContext, addr types.Address) (*tokens.TokenAccount, error) {
	acc, err := exeCtx.GetAccount(addr)
	if err != nil {
		return nil, wrapError(InvalidTradeState, err, "token account %s", addr)
	}
	ta, err := tokens.DecodeTokenAccount(acc)
	if err != nil {
		return nil, wrapError(InvalidTradeState, err, "token account %s", addr)
	}
	return ta, nil
}
