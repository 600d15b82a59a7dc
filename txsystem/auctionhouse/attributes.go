package auctionhouse

import "github.com/alphabill-org/auctionhouse/types"

const (
	PayloadTypeCreateAuctionHouse = "create_auction_house"
	PayloadTypeDeposit            = "deposit"
	PayloadTypeSell               = "sell"
	PayloadTypeBuy                = "buy"
	PayloadTypeExecuteSale        = "execute_sale"
	PayloadTypeCancel             = "cancel"
)

type (
	CreateAuctionHouseAttributes struct {
		_                             struct{} `cbor:",toarray"`
		Payer                         types.Address
		Authority                     types.Address
		TreasuryMint                  types.Address
		FeeWithdrawalDestination      types.Address
		TreasuryWithdrawalDestination types.Address
		SellerFeeBasisPoints          uint16
		RequiresSignOff               bool
		CanChangeSalePrice            bool
	}

	DepositAttributes struct {
		_            struct{} `cbor:",toarray"`
		Wallet       types.Address
		AuctionHouse types.Address
		Amount       uint64
	}

	SellAttributes struct {
		_            struct{} `cbor:",toarray"`
		Wallet       types.Address
		TokenAccount types.Address
		AuctionHouse types.Address
		Price        uint64
		Size         uint64
	}

	// BuyAttributes places a bid on the tokens in TokenAccount (the seller's account).
	BuyAttributes struct {
		_            struct{} `cbor:",toarray"`
		Wallet       types.Address
		TokenAccount types.Address
		AuctionHouse types.Address
		Price        uint64
		Size         uint64
	}

	ExecuteSaleAttributes struct {
		_                        struct{} `cbor:",toarray"`
		Buyer                    types.Address
		Seller                   types.Address
		TokenAccount             types.Address
		TokenMint                types.Address
		AuctionHouse             types.Address
		Escrow                   types.Address
		SellerPaymentReceipt     types.Address
		BuyerReceiptTokenAccount types.Address
		BuyerTradeState          types.Address
		SellerTradeState         types.Address
		FreeTradeState           types.Address
		Price                    uint64
		Size                     uint64
	}

	CancelAttributes struct {
		_            struct{} `cbor:",toarray"`
		Wallet       types.Address
		TokenAccount types.Address
		TokenMint    types.Address
		AuctionHouse types.Address
		TradeState   types.Address
		Price        uint64
		Size         uint64
	}
)
