package money

import (
	"errors"
	"fmt"

	"github.com/alphabill-org/auctionhouse/logger"
	"github.com/alphabill-org/auctionhouse/state"
	"github.com/alphabill-org/auctionhouse/txsystem"
	"github.com/alphabill-org/auctionhouse/types"
)

// TransferAttributes moves Amount lamports from From to To. From must sign the transaction.
type TransferAttributes struct {
	_      struct{} `cbor:",toarray"`
	From   types.Address
	To     types.Address
	Amount uint64
}

func NewTransfer(from, to types.Address, amount uint64) (*txsystem.Instruction, error) {
	return txsystem.NewInstruction(types.SystemProgramID, PayloadTypeTransfer, &TransferAttributes{From: from, To: to, Amount: amount})
}

func (m *Module) handleTransferTx(_ *txsystem.Instruction, attr *TransferAttributes, exeCtx *txsystem.ExecutionContext) error {
	if err := m.validateTransferTx(attr, exeCtx); err != nil {
		return fmt.Errorf("transfer validation error: %w", err)
	}
	if err := exeCtx.Apply(state.Transfer(attr.From, attr.To, attr.Amount)); err != nil {
		return fmt.Errorf("transfer: failed to update state: %w", err)
	}
	exeCtx.AddTargets(attr.From, attr.To)
	m.log.Debug().Func(logger.Address(attr.To)).Uint64("amount", attr.Amount).Msg("lamports transferred")
	return nil
}

func (m *Module) validateTransferTx(attr *TransferAttributes, exeCtx *txsystem.ExecutionContext) error {
	if attr.Amount == 0 {
		return errors.New("transfer amount is zero")
	}
	if !exeCtx.IsSigner(attr.From) {
		return fmt.Errorf("%w: %s", txsystem.ErrMissingSignature, attr.From)
	}
	acc, err := exeCtx.GetAccount(attr.From)
	if err != nil {
		return err
	}
	// accounts holding program data are debited by their program only
	if acc.HasData() {
		return fmt.Errorf("account %s carries data, owner %s", attr.From, acc.Owner)
	}
	return nil
}
