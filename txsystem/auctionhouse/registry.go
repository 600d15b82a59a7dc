package auctionhouse

import (
	"errors"
	"fmt"

	"github.com/alphabill-org/auctionhouse/logger"
	"github.com/alphabill-org/auctionhouse/state"
	"github.com/alphabill-org/auctionhouse/txsystem"
	"github.com/alphabill-org/auctionhouse/types"
)

var ErrUnsupportedTreasuryMint = errors.New("only the native mint is supported as treasury mint")

func AuctionHouseRent() uint64 { return types.RentExemptMinimum(AuctionHouseSpace) }

func (m *Module) handleCreateAuctionHouseTx(_ *txsystem.Instruction, attr *CreateAuctionHouseAttributes, exeCtx *txsystem.ExecutionContext) error {
	if err := m.validateCreateAuctionHouseTx(attr, exeCtx); err != nil {
		return fmt.Errorf("create auction house validation error: %w", err)
	}
	addr, _ := AuctionHouseAddress(attr.Authority, attr.TreasuryMint)
	if err := exeCtx.Apply(CreateAuctionHouseAction(attr)); err != nil {
		return err
	}
	fee, _ := FeeAccountAddress(addr)
	treasury, _ := TreasuryAddress(addr)
	exeCtx.AddTargets(addr, fee, treasury)
	m.log.Info().Func(logger.Address(addr)).Uint16("fee_bps", attr.SellerFeeBasisPoints).Msg("auction house created")
	return nil
}

func (m *Module) validateCreateAuctionHouseTx(attr *CreateAuctionHouseAttributes, exeCtx *txsystem.ExecutionContext) error {
	if err := requireSigner(exeCtx, attr.Payer); err != nil {
		return err
	}
	if attr.TreasuryMint != types.NativeMint {
		return ErrUnsupportedTreasuryMint
	}
	if attr.SellerFeeBasisPoints > 10_000 {
		return fmt.Errorf("seller fee basis points %d exceeds 10000", attr.SellerFeeBasisPoints)
	}
	return nil
}

/*
CreateAuctionHouseAction writes the auction house record and funds its fee and
treasury accounts to the rent exempt minimum, everything paid by the payer.
Fails with AlreadyExists when the auction house address already holds data.
*/
func CreateAuctionHouseAction(attr *CreateAuctionHouseAttributes) state.Action {
	return func(s state.LedgerState) error {
		addr, bump := AuctionHouseAddress(attr.Authority, attr.TreasuryMint)
		acc, err := s.Get(addr)
		if err != nil && !errors.Is(err, state.ErrAccountNotFound) {
			return err
		}
		if acc.HasData() {
			return newError(AlreadyExists, "auction house %s", addr)
		}
		fee, feeBump := FeeAccountAddress(addr)
		treasury, treasuryBump := TreasuryAddress(addr)
		data, err := encode(&AuctionHouseData{
			Kind:                          KindAuctionHouse,
			Bump:                          bump,
			FeePayerBump:                  feeBump,
			TreasuryBump:                  treasuryBump,
			Authority:                     attr.Authority,
			Creator:                       attr.Payer,
			TreasuryMint:                  attr.TreasuryMint,
			FeeAccount:                    fee,
			Treasury:                      treasury,
			FeeWithdrawalDestination:      attr.FeeWithdrawalDestination,
			TreasuryWithdrawalDestination: attr.TreasuryWithdrawalDestination,
			SellerFeeBasisPoints:          attr.SellerFeeBasisPoints,
			RequiresSignOff:               attr.RequiresSignOff,
			CanChangeSalePrice:            attr.CanChangeSalePrice,
		})
		if err != nil {
			return fmt.Errorf("encoding auction house: %w", err)
		}
		if err := allocate(s, attr.Payer, addr, data, AuctionHouseRent()); err != nil {
			return err
		}
		for _, sub := range []types.Address{fee, treasury} {
			if err := fundSystemAccount(s, attr.Payer, sub, types.RentExemptMinimum(0)); err != nil {
				return err
			}
		}
		return nil
	}
}

// fundSystemAccount tops the lamport only account up to amount.
func fundSystemAccount(s state.LedgerState, payer, addr types.Address, amount uint64) error {
	var balance uint64
	acc, err := s.Get(addr)
	switch {
	case err == nil:
		balance = acc.Lamports
	case !errors.Is(err, state.ErrAccountNotFound):
		return err
	}
	if balance >= amount {
		return nil
	}
	if err := state.Transfer(payer, addr, amount-balance)(s); err != nil {
		return fmt.Errorf("funding %s: %w", addr, err)
	}
	return nil
}
