package tokens

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/alphabill-org/auctionhouse/logger"
	"github.com/alphabill-org/auctionhouse/txsystem"
	"github.com/alphabill-org/auctionhouse/types"
)

const (
	PayloadTypeTransfer = "transfer"
	PayloadTypeApprove  = "approve"
	PayloadTypeRevoke   = "revoke"

	PayloadTypeCreateAssociated = "create"
)

var (
	_ txsystem.Module = (*TokensModule)(nil)
	_ txsystem.Module = (*AssociatedTokenModule)(nil)
)

type (
	TokensModule struct {
		log *zerolog.Logger
	}

	// AssociatedTokenModule creates the canonical token accounts.
	AssociatedTokenModule struct {
		log *zerolog.Logger
	}

	TransferAttributes struct {
		_           struct{} `cbor:",toarray"`
		Source      types.Address
		Destination types.Address
		Authority   types.Address
		Amount      uint64
	}

	ApproveAttributes struct {
		_        struct{} `cbor:",toarray"`
		Account  types.Address
		Delegate types.Address
		Amount   uint64
	}

	RevokeAttributes struct {
		_       struct{} `cbor:",toarray"`
		Account types.Address
	}

	CreateAssociatedAttributes struct {
		_     struct{} `cbor:",toarray"`
		Payer types.Address
		Owner types.Address
		Mint  types.Address
	}
)

func NewTokensModule(log *zerolog.Logger) *TokensModule {
	return &TokensModule{log: logger.Module(log, "tokens")}
}

func NewAssociatedTokenModule(log *zerolog.Logger) *AssociatedTokenModule {
	return &AssociatedTokenModule{log: logger.Module(log, "associated-token")}
}

func (m *TokensModule) ProgramID() types.Address { return types.TokenProgramID }

func (m *TokensModule) TxExecutors() txsystem.TxExecutors {
	return txsystem.TxExecutors{
		PayloadTypeTransfer: txsystem.GenericExecuteFunc[TransferAttributes](m.handleTransferTx).ExecuteFunc(),
		PayloadTypeApprove:  txsystem.GenericExecuteFunc[ApproveAttributes](m.handleApproveTx).ExecuteFunc(),
		PayloadTypeRevoke:   txsystem.GenericExecuteFunc[RevokeAttributes](m.handleRevokeTx).ExecuteFunc(),
	}
}

func (m *AssociatedTokenModule) ProgramID() types.Address { return types.AssociatedTokenProgramID }

func (m *AssociatedTokenModule) TxExecutors() txsystem.TxExecutors {
	return txsystem.TxExecutors{
		PayloadTypeCreateAssociated: txsystem.GenericExecuteFunc[CreateAssociatedAttributes](m.handleCreateTx).ExecuteFunc(),
	}
}

func NewTransfer(source, destination, authority types.Address, amount uint64) (*txsystem.Instruction, error) {
	return txsystem.NewInstruction(types.TokenProgramID, PayloadTypeTransfer, &TransferAttributes{
		Source: source, Destination: destination, Authority: authority, Amount: amount,
	})
}

func NewApprove(account, delegate types.Address, amount uint64) (*txsystem.Instruction, error) {
	return txsystem.NewInstruction(types.TokenProgramID, PayloadTypeApprove, &ApproveAttributes{
		Account: account, Delegate: delegate, Amount: amount,
	})
}

func NewRevoke(account types.Address) (*txsystem.Instruction, error) {
	return txsystem.NewInstruction(types.TokenProgramID, PayloadTypeRevoke, &RevokeAttributes{Account: account})
}

func NewCreateAssociated(payer, owner, mint types.Address) (*txsystem.Instruction, error) {
	return txsystem.NewInstruction(types.AssociatedTokenProgramID, PayloadTypeCreateAssociated, &CreateAssociatedAttributes{
		Payer: payer, Owner: owner, Mint: mint,
	})
}

func (m *TokensModule) handleTransferTx(_ *txsystem.Instruction, attr *TransferAttributes, exeCtx *txsystem.ExecutionContext) error {
	if !exeCtx.IsSigner(attr.Authority) {
		return fmt.Errorf("%w: %s", txsystem.ErrMissingSignature, attr.Authority)
	}
	if err := exeCtx.Apply(TransferAction(attr.Source, attr.Destination, attr.Authority, attr.Amount)); err != nil {
		return err
	}
	exeCtx.AddTargets(attr.Source, attr.Destination)
	m.log.Debug().Func(logger.Address(attr.Destination)).Uint64("amount", attr.Amount).Msg("tokens transferred")
	return nil
}

func (m *TokensModule) handleApproveTx(_ *txsystem.Instruction, attr *ApproveAttributes, exeCtx *txsystem.ExecutionContext) error {
	if err := m.validateOwnerSigned(attr.Account, exeCtx); err != nil {
		return err
	}
	if err := exeCtx.Apply(ApproveAction(attr.Account, attr.Delegate, attr.Amount)); err != nil {
		return err
	}
	exeCtx.AddTargets(attr.Account)
	return nil
}

func (m *TokensModule) handleRevokeTx(_ *txsystem.Instruction, attr *RevokeAttributes, exeCtx *txsystem.ExecutionContext) error {
	if err := m.validateOwnerSigned(attr.Account, exeCtx); err != nil {
		return err
	}
	if err := exeCtx.Apply(RevokeAction(attr.Account)); err != nil {
		return err
	}
	exeCtx.AddTargets(attr.Account)
	return nil
}

func (m *TokensModule) validateOwnerSigned(account types.Address, exeCtx *txsystem.ExecutionContext) error {
	acc, err := exeCtx.GetAccount(account)
	if err != nil {
		return err
	}
	ta, err := DecodeTokenAccount(acc)
	if err != nil {
		return err
	}
	if !exeCtx.IsSigner(ta.Owner) {
		return fmt.Errorf("%w: token account owner %s", txsystem.ErrMissingSignature, ta.Owner)
	}
	return nil
}

func (m *AssociatedTokenModule) handleCreateTx(_ *txsystem.Instruction, attr *CreateAssociatedAttributes, exeCtx *txsystem.ExecutionContext) error {
	if !exeCtx.IsSigner(attr.Payer) {
		return fmt.Errorf("%w: %s", txsystem.ErrMissingSignature, attr.Payer)
	}
	if err := exeCtx.Apply(CreateAssociatedAccountAction(attr.Payer, attr.Owner, attr.Mint)); err != nil {
		return err
	}
	addr := AssociatedTokenAddress(attr.Owner, attr.Mint)
	exeCtx.AddTargets(addr)
	m.log.Debug().Func(logger.Address(addr)).Msg("associated token account ready")
	return nil
}
