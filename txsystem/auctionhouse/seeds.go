package auctionhouse

import (
	"github.com/alphabill-org/auctionhouse/types"
	"github.com/alphabill-org/auctionhouse/util"
)

const (
	Prefix   = "auction_house"
	FeePayer = "fee_payer"
	Treasury = "treasury"
	Signer   = "signer"
)

// TradeKey is the tuple defining a trade state. Identical keys always derive the same address.
type TradeKey struct {
	Wallet       types.Address
	AuctionHouse types.Address
	TokenAccount types.Address
	TreasuryMint types.Address
	TokenMint    types.Address
	Price        uint64
	Size         uint64
}

func (k TradeKey) Seeds() [][]byte {
	return [][]byte{
		[]byte(Prefix),
		k.Wallet.Bytes(),
		k.AuctionHouse.Bytes(),
		k.TokenAccount.Bytes(),
		k.TreasuryMint.Bytes(),
		k.TokenMint.Bytes(),
		util.Uint64ToLEBytes(k.Price),
		util.Uint64ToLEBytes(k.Size),
	}
}

// Address returns the trade state address and its bump.
func (k TradeKey) Address() (types.Address, uint8) {
	return derive(k.Seeds()...)
}

// Free returns the key of the zero price trade state.
func (k TradeKey) Free() TradeKey {
	k.Price = 0
	return k
}

func AuctionHouseAddress(authority, treasuryMint types.Address) (types.Address, uint8) {
	return derive([]byte(Prefix), authority.Bytes(), treasuryMint.Bytes())
}

func FeeAccountAddress(auctionHouse types.Address) (types.Address, uint8) {
	return derive([]byte(Prefix), auctionHouse.Bytes(), []byte(FeePayer))
}

func TreasuryAddress(auctionHouse types.Address) (types.Address, uint8) {
	return derive([]byte(Prefix), auctionHouse.Bytes(), []byte(Treasury))
}

// ProgramSignerAddress is the delegate authority of listed tokens.
func ProgramSignerAddress() (types.Address, uint8) {
	return derive([]byte(Prefix), []byte(Signer))
}

func EscrowAddress(auctionHouse, wallet types.Address) (types.Address, uint8) {
	return derive([]byte(Prefix), auctionHouse.Bytes(), wallet.Bytes())
}

// all seeds used by the program are within limits, exhausting the bump space is unreachable
func derive(seeds ...[]byte) (types.Address, uint8) {
	return types.MustFindProgramAddress(seeds, types.AuctionHouseProgramID)
}
