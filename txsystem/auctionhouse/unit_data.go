package auctionhouse

import (
	"fmt"

	"github.com/alphabill-org/auctionhouse/state"
	"github.com/alphabill-org/auctionhouse/types"
)

// Account data kinds, the first element of every encoded record.
const (
	KindAuctionHouse uint8 = 1
	KindTradeState   uint8 = 2
	KindEscrow       uint8 = 3
)

// Space reserved for the records, rent is computed from these so it does not depend on the encoded values.
const (
	AuctionHouseSpace = 320
	TradeStateSpace   = 256
	EscrowSpace       = 128
)

type Side uint8

const (
	SideSell Side = 1
	SideBuy  Side = 2
)

func (s Side) String() string {
	switch s {
	case SideSell:
		return "sell"
	case SideBuy:
		return "buy"
	default:
		return fmt.Sprintf("side(%d)", uint8(s))
	}
}

type (
	AuctionHouseData struct {
		_                             struct{} `cbor:",toarray"`
		Kind                          uint8
		Bump                          uint8
		FeePayerBump                  uint8
		TreasuryBump                  uint8
		Authority                     types.Address
		Creator                       types.Address
		TreasuryMint                  types.Address
		FeeAccount                    types.Address
		Treasury                      types.Address
		FeeWithdrawalDestination      types.Address
		TreasuryWithdrawalDestination types.Address
		SellerFeeBasisPoints          uint16
		RequiresSignOff               bool
		CanChangeSalePrice            bool
	}

	/*
	TradeStateData is the content of an open order. The address of the trade
	state is derived from the key fields, the data repeats them so that the
	order can be matched against the claimed terms. Side is not part of the
	address: a sell and a buy of the same wallet on the same token account
	derive the same address.
	*/
	TradeStateData struct {
		_            struct{} `cbor:",toarray"`
		Kind         uint8
		Side         Side
		Bump         uint8
		Wallet       types.Address
		AuctionHouse types.Address
		TokenAccount types.Address
		TreasuryMint types.Address
		TokenMint    types.Address
		Price        uint64
		Size         uint64
		// receives the lamports when the trade state is closed
		Creator types.Address
	}

	// EscrowData is the custodial balance of a wallet. Reserved is the part
	// committed to open buy orders.
	EscrowData struct {
		_            struct{} `cbor:",toarray"`
		Kind         uint8
		Bump         uint8
		Wallet       types.Address
		AuctionHouse types.Address
		Balance      uint64
		Reserved     uint64
	}
)

func (ts *TradeStateData) Key() TradeKey {
	return TradeKey{
		Wallet:       ts.Wallet,
		AuctionHouse: ts.AuctionHouse,
		TokenAccount: ts.TokenAccount,
		TreasuryMint: ts.TreasuryMint,
		TokenMint:    ts.TokenMint,
		Price:        ts.Price,
		Size:         ts.Size,
	}
}

func DecodeAuctionHouse(acc *state.Account) (*AuctionHouseData, error) {
	ah := &AuctionHouseData{}
	if err := decode(acc, ah); err != nil {
		return nil, err
	}
	if ah.Kind != KindAuctionHouse {
		return nil, fmt.Errorf("kind %d is not an auction house", ah.Kind)
	}
	return ah, nil
}

func DecodeTradeState(acc *state.Account) (*TradeStateData, error) {
	ts := &TradeStateData{}
	if err := decode(acc, ts); err != nil {
		return nil, err
	}
	if ts.Kind != KindTradeState {
		return nil, fmt.Errorf("kind %d is not a trade state", ts.Kind)
	}
	return ts, nil
}

func DecodeEscrow(acc *state.Account) (*EscrowData, error) {
	e := &EscrowData{}
	if err := decode(acc, e); err != nil {
		return nil, err
	}
	if e.Kind != KindEscrow {
		return nil, fmt.Errorf("kind %d is not an escrow", e.Kind)
	}
	return e, nil
}

/*
DecodeKind returns the kind of the record in an account owned by the auction
house program, zero when the account holds no auction house record.
*/
func DecodeKind(acc *state.Account) uint8 {
	if !acc.HasData() || acc.Owner != types.AuctionHouseProgramID {
		return 0
	}
	var raw []types.RawCBOR
	if err := types.Cbor.Unmarshal(acc.Data, &raw); err != nil || len(raw) == 0 {
		return 0
	}
	var kind uint8
	if err := types.Cbor.Unmarshal(raw[0], &kind); err != nil {
		return 0
	}
	return kind
}

func decode(acc *state.Account, v any) error {
	if !acc.HasData() {
		return fmt.Errorf("account is not initialized")
	}
	if acc.Owner != types.AuctionHouseProgramID {
		return fmt.Errorf("account is owned by %s", acc.Owner)
	}
	return types.Cbor.Unmarshal(acc.Data, v)
}

func encode(v any) ([]byte, error) {
	return types.Cbor.Marshal(v)
}
