package auctionhouse

import (
	"github.com/alphabill-org/auctionhouse/txsystem"
	"github.com/alphabill-org/auctionhouse/txsystem/tokens"
	"github.com/alphabill-org/auctionhouse/types"
)

// Market holds the derived addresses of an auction house and builds its instructions.
type Market struct {
	Authority    types.Address
	TreasuryMint types.Address
	Address      types.Address
	FeeAccount   types.Address
	Treasury     types.Address
}

func NewMarket(authority, treasuryMint types.Address) *Market {
	addr, _ := AuctionHouseAddress(authority, treasuryMint)
	fee, _ := FeeAccountAddress(addr)
	treasury, _ := TreasuryAddress(addr)
	return &Market{
		Authority:    authority,
		TreasuryMint: treasuryMint,
		Address:      addr,
		FeeAccount:   fee,
		Treasury:     treasury,
	}
}

// TradeKey returns the key of an order of wallet on the tokens of tokenAccount.
func (m *Market) TradeKey(wallet, tokenAccount, tokenMint types.Address, price, size uint64) TradeKey {
	return TradeKey{
		Wallet:       wallet,
		AuctionHouse: m.Address,
		TokenAccount: tokenAccount,
		TreasuryMint: m.TreasuryMint,
		TokenMint:    tokenMint,
		Price:        price,
		Size:         size,
	}
}

func (m *Market) Escrow(wallet types.Address) types.Address {
	addr, _ := EscrowAddress(m.Address, wallet)
	return addr
}

func (m *Market) Create(payer types.Address, feeBps uint16, requiresSignOff, canChangeSalePrice bool) (*txsystem.Instruction, error) {
	return txsystem.NewInstruction(types.AuctionHouseProgramID, PayloadTypeCreateAuctionHouse, &CreateAuctionHouseAttributes{
		Payer:                         payer,
		Authority:                     m.Authority,
		TreasuryMint:                  m.TreasuryMint,
		FeeWithdrawalDestination:      m.Authority,
		TreasuryWithdrawalDestination: m.Authority,
		SellerFeeBasisPoints:          feeBps,
		RequiresSignOff:               requiresSignOff,
		CanChangeSalePrice:            canChangeSalePrice,
	})
}

func (m *Market) Deposit(wallet types.Address, amount uint64) (*txsystem.Instruction, error) {
	return txsystem.NewInstruction(types.AuctionHouseProgramID, PayloadTypeDeposit, &DepositAttributes{
		Wallet: wallet, AuctionHouse: m.Address, Amount: amount,
	})
}

func (m *Market) Sell(wallet, tokenAccount types.Address, price, size uint64) (*txsystem.Instruction, error) {
	return txsystem.NewInstruction(types.AuctionHouseProgramID, PayloadTypeSell, &SellAttributes{
		Wallet: wallet, TokenAccount: tokenAccount, AuctionHouse: m.Address, Price: price, Size: size,
	})
}

func (m *Market) Buy(wallet, tokenAccount types.Address, price, size uint64) (*txsystem.Instruction, error) {
	return txsystem.NewInstruction(types.AuctionHouseProgramID, PayloadTypeBuy, &BuyAttributes{
		Wallet: wallet, TokenAccount: tokenAccount, AuctionHouse: m.Address, Price: price, Size: size,
	})
}

/*
ExecuteSaleAttributes fills in the settlement accounts of a sale of the tokens
in tokenAccount from seller to buyer, deriving every address from the terms.
Callers wanting to present different accounts modify the result before
passing it to ExecuteSale.
*/
func (m *Market) ExecuteSaleAttributes(buyer, seller, tokenAccount, tokenMint types.Address, price, size uint64) *ExecuteSaleAttributes {
	buyerTS, _ := m.TradeKey(buyer, tokenAccount, tokenMint, price, size).Address()
	sellerKey := m.TradeKey(seller, tokenAccount, tokenMint, price, size)
	sellerTS, _ := sellerKey.Address()
	freeTS, _ := sellerKey.Free().Address()
	return &ExecuteSaleAttributes{
		Buyer:                    buyer,
		Seller:                   seller,
		TokenAccount:             tokenAccount,
		TokenMint:                tokenMint,
		AuctionHouse:             m.Address,
		Escrow:                   m.Escrow(buyer),
		SellerPaymentReceipt:     seller,
		BuyerReceiptTokenAccount: tokens.AssociatedTokenAddress(buyer, tokenMint),
		BuyerTradeState:          buyerTS,
		SellerTradeState:         sellerTS,
		FreeTradeState:           freeTS,
		Price:                    price,
		Size:                     size,
	}
}

func (m *Market) ExecuteSale(attr *ExecuteSaleAttributes) (*txsystem.Instruction, error) {
	return txsystem.NewInstruction(types.AuctionHouseProgramID, PayloadTypeExecuteSale, attr)
}

func (m *Market) Cancel(wallet, tokenAccount, tokenMint types.Address, price, size uint64) (*txsystem.Instruction, error) {
	ts, _ := m.TradeKey(wallet, tokenAccount, tokenMint, price, size).Address()
	return txsystem.NewInstruction(types.AuctionHouseProgramID, PayloadTypeCancel, &CancelAttributes{
		Wallet:       wallet,
		TokenAccount: tokenAccount,
		TokenMint:    tokenMint,
		AuctionHouse: m.Address,
		TradeState:   ts,
		Price:        price,
		Size:         size,
	})
}
