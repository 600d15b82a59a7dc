package auctionhouse

import (
	"fmt"

	"github.com/alphabill-org/auctionhouse/logger"
	"github.com/alphabill-org/auctionhouse/txsystem"
)

func (m *Module) handleDepositTx(_ *txsystem.Instruction, attr *DepositAttributes, exeCtx *txsystem.ExecutionContext) error {
	if err := m.validateDepositTx(attr, exeCtx); err != nil {
		return fmt.Errorf("deposit validation error: %w", err)
	}
	if err := exeCtx.Apply(DepositAction(attr.AuctionHouse, attr.Wallet, attr.Amount)); err != nil {
		return err
	}
	escrow, _ := EscrowAddress(attr.AuctionHouse, attr.Wallet)
	exeCtx.AddTargets(attr.Wallet, escrow)
	if acc, err := exeCtx.GetAccount(escrow); err == nil {
		if e, err := DecodeEscrow(acc); err == nil {
			m.log.Debug().Func(logger.Address(escrow)).Uint64("balance", e.Balance).Msg("escrow credited")
		}
	}
	return nil
}

func (m *Module) validateDepositTx(attr *DepositAttributes, exeCtx *txsystem.ExecutionContext) error {
	if attr.Amount == 0 {
		return fmt.Errorf("deposit amount is zero")
	}
	ah, err := getAuctionHouse(exeCtx, attr.AuctionHouse)
	if err != nil {
		return err
	}
	if err := requireSigner(exeCtx, attr.Wallet); err != nil {
		return err
	}
	return checkSignOff(exeCtx, ah)
}
