package auctionhouse

import (
	"errors"
	"fmt"

	"github.com/alphabill-org/auctionhouse/logger"
	"github.com/alphabill-org/auctionhouse/state"
	"github.com/alphabill-org/auctionhouse/txsystem"
	"github.com/alphabill-org/auctionhouse/txsystem/tokens"
	"github.com/alphabill-org/auctionhouse/types"
	"github.com/alphabill-org/auctionhouse/util"
)

// SettlementReceipt describes an executed sale.
type SettlementReceipt struct {
	Buyer          types.Address
	Seller         types.Address
	TokenMint      types.Address
	Price          uint64
	Size           uint64
	Total          uint64
	Fee            uint64
	Royalties      uint64
	SellerProceeds uint64
	Closed         []types.Address
}

func (m *Module) handleExecuteSaleTx(_ *txsystem.Instruction, attr *ExecuteSaleAttributes, exeCtx *txsystem.ExecutionContext) error {
	receipt, err := m.executeSale(attr, exeCtx)
	if err != nil {
		return err
	}
	exeCtx.AddTargets(attr.Escrow, attr.TokenAccount, attr.BuyerReceiptTokenAccount, attr.SellerPaymentReceipt)
	exeCtx.AddTargets(receipt.Closed...)
	m.log.Info().Func(logger.Address(attr.BuyerReceiptTokenAccount)).Func(logger.Data(receipt)).Msg("sale executed")
	return nil
}

/*
executeSale settles a matching pair of orders. Preconditions are checked in
this order:
 1. every supplied address equals the one derived from the claimed terms (InvalidTradeState);
 2. both trade states hold data now and held it when the batch started (NotOpen);
 3. the trade state data matches the claimed terms and sides (InvalidTradeState);
 4. the buyer's escrow has price*size reserved (InsufficientEscrow).

The escrow payouts, the token transfer and closing of the consumed trade
states are applied as one action list: either all of them happen or none.
*/
func (m *Module) executeSale(attr *ExecuteSaleAttributes, exeCtx *txsystem.ExecutionContext) (*SettlementReceipt, error) {
	ah, err := getAuctionHouse(exeCtx, attr.AuctionHouse)
	if err != nil {
		return nil, err
	}
	if err := authorizeSale(attr, ah, exeCtx); err != nil {
		return nil, err
	}
	if attr.Size == 0 {
		return nil, newError(InvalidTradeState, "token size is zero")
	}

	buyerKey := TradeKey{
		Wallet:       attr.Buyer,
		AuctionHouse: attr.AuctionHouse,
		TokenAccount: attr.TokenAccount,
		TreasuryMint: ah.TreasuryMint,
		TokenMint:    attr.TokenMint,
		Price:        attr.Price,
		Size:         attr.Size,
	}
	sellerKey := buyerKey
	sellerKey.Wallet = attr.Seller
	if err := verifySaleAddresses(attr, buyerKey, sellerKey); err != nil {
		return nil, err
	}

	buyerTS, err := openTradeState(exeCtx, attr.BuyerTradeState)
	if err != nil {
		return nil, fmt.Errorf("buyer trade state: %w", err)
	}
	sellerTS, err := openTradeState(exeCtx, attr.SellerTradeState)
	if err != nil {
		return nil, fmt.Errorf("seller trade state: %w", err)
	}

	if err := buyerTS.matches(buyerKey, SideBuy); err != nil {
		return nil, fmt.Errorf("buyer trade state: %w", err)
	}
	if err := sellerTS.matches(sellerKey, SideSell); err != nil {
		return nil, fmt.Errorf("seller trade state: %w", err)
	}
	ta, err := getTokenAccount(exeCtx, attr.TokenAccount)
	if err != nil {
		return nil, err
	}
	if ta.Mint != attr.TokenMint || ta.Owner != attr.Seller {
		return nil, newError(InvalidTradeState, "token account %s holds mint %s of %s", attr.TokenAccount, ta.Mint, ta.Owner)
	}

	total, err := util.MulUint64(attr.Price, attr.Size)
	if err != nil {
		return nil, wrapError(Overflow, err, "sale total")
	}
	if err := checkReserved(exeCtx, attr.Escrow, total); err != nil {
		return nil, err
	}

	receipt := &SettlementReceipt{
		Buyer:     attr.Buyer,
		Seller:    attr.Seller,
		TokenMint: attr.TokenMint,
		Price:     attr.Price,
		Size:      attr.Size,
		Total:     total,
		Fee:       util.BasisPoints(total, ah.SellerFeeBasisPoints),
	}
	royaltyPayouts, err := royalties(exeCtx, attr.TokenMint, total)
	if err != nil {
		return nil, err
	}
	for _, p := range royaltyPayouts {
		receipt.Royalties += p.Amount
	}
	if receipt.Fee+receipt.Royalties > total {
		return nil, newError(Overflow, "fee %d and royalties %d exceed sale total %d", receipt.Fee, receipt.Royalties, total)
	}
	receipt.SellerProceeds = total - receipt.Fee - receipt.Royalties

	payouts := append([]Payout{{To: ah.Treasury, Amount: receipt.Fee}}, royaltyPayouts...)
	payouts = append(payouts, Payout{To: attr.SellerPaymentReceipt, Amount: receipt.SellerProceeds})
	programSigner, _ := ProgramSignerAddress()
	actions := []state.Action{
		PayoutAction(attr.Escrow, payouts...),
		tokens.CreateAssociatedAccountAction(ah.FeeAccount, attr.Buyer, attr.TokenMint),
		tokens.TransferAction(attr.TokenAccount, attr.BuyerReceiptTokenAccount, programSigner, attr.Size),
		CloseTradeStateAction(attr.SellerTradeState),
		CloseTradeStateAction(attr.BuyerTradeState),
	}
	receipt.Closed = []types.Address{attr.SellerTradeState, attr.BuyerTradeState}

	// the free trade state of the fulfilled (sell) side is retired when open
	if attr.FreeTradeState != attr.SellerTradeState && isOpen(exeCtx, attr.FreeTradeState) {
		freeTS, err := openTradeState(exeCtx, attr.FreeTradeState)
		if err != nil {
			return nil, fmt.Errorf("free trade state: %w", err)
		}
		if err := freeTS.matches(sellerKey.Free(), SideSell); err != nil {
			return nil, fmt.Errorf("free trade state: %w", err)
		}
		actions = append(actions, CloseTradeStateAction(attr.FreeTradeState))
		receipt.Closed = append(receipt.Closed, attr.FreeTradeState)
	}
	// so is the buyer's, allowing the buyer to bid on the token again
	if buyerFree, _ := buyerKey.Free().Address(); buyerFree != attr.BuyerTradeState && isOpen(exeCtx, buyerFree) {
		if freeTS, err := openTradeState(exeCtx, buyerFree); err == nil && freeTS.matches(buyerKey.Free(), SideBuy) == nil {
			actions = append(actions, CloseTradeStateAction(buyerFree))
			receipt.Closed = append(receipt.Closed, buyerFree)
		}
	}

	if err := exeCtx.Apply(actions...); err != nil {
		return nil, err
	}
	return receipt, nil
}

/*
authorizeSale: with sign-off the authority must sign, otherwise any of buyer,
seller or authority.
*/
func authorizeSale(attr *ExecuteSaleAttributes, ah *AuctionHouseData, exeCtx *txsystem.ExecutionContext) error {
	if ah.RequiresSignOff {
		return checkSignOff(exeCtx, ah)
	}
	if exeCtx.IsSigner(attr.Buyer) || exeCtx.IsSigner(attr.Seller) || exeCtx.IsSigner(ah.Authority) {
		return nil
	}
	return newError(Unauthorized, "sale must be signed by the buyer, the seller or the auction house authority")
}

func verifySaleAddresses(attr *ExecuteSaleAttributes, buyerKey, sellerKey TradeKey) error {
	buyerTS, _ := buyerKey.Address()
	sellerTS, _ := sellerKey.Address()
	freeTS, _ := sellerKey.Free().Address()
	escrow, _ := EscrowAddress(attr.AuctionHouse, attr.Buyer)
	checks := []struct {
		name     string
		supplied types.Address
		derived  types.Address
	}{
		{"buyer trade state", attr.BuyerTradeState, buyerTS},
		{"seller trade state", attr.SellerTradeState, sellerTS},
		{"free trade state", attr.FreeTradeState, freeTS},
		{"escrow", attr.Escrow, escrow},
		{"buyer receipt token account", attr.BuyerReceiptTokenAccount, tokens.AssociatedTokenAddress(attr.Buyer, attr.TokenMint)},
		{"seller payment receipt", attr.SellerPaymentReceipt, attr.Seller},
	}
	for _, c := range checks {
		if c.supplied != c.derived {
			return newError(InvalidTradeState, "%s: supplied %s, derived %s", c.name, c.supplied, c.derived)
		}
	}
	return nil
}

func checkReserved(exeCtx *txsystem.ExecutionContext, escrow types.Address, total uint64) error {
	acc, err := exeCtx.GetAccount(escrow)
	if errors.Is(err, state.ErrAccountNotFound) {
		return newError(InsufficientEscrow, "escrow %s does not exist", escrow)
	}
	if err != nil {
		return err
	}
	e, err := DecodeEscrow(acc)
	if err != nil {
		return wrapError(InvalidTradeState, err, "escrow %s", escrow)
	}
	if e.Reserved < total {
		return newError(InsufficientEscrow, "escrow %s reserved %d, sale total %d", escrow, e.Reserved, total)
	}
	return nil
}

/*
royalties splits the seller fee of the token metadata between the creators by
their shares. Tokens without metadata pay no royalties.
*/
func royalties(exeCtx *txsystem.ExecutionContext, mint types.Address, total uint64) ([]Payout, error) {
	addr := tokens.MetadataAddress(mint)
	acc, err := exeCtx.GetAccount(addr)
	if errors.Is(err, state.ErrAccountNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	md, err := tokens.DecodeMetadata(acc)
	if err != nil {
		return nil, wrapError(InvalidTradeState, err, "metadata %s", addr)
	}
	if md.Mint != mint {
		return nil, newError(InvalidTradeState, "metadata %s describes mint %s", addr, md.Mint)
	}
	if err := md.IsValid(); err != nil {
		return nil, wrapError(InvalidTradeState, err, "metadata %s", addr)
	}
	royalty := util.BasisPoints(total, md.SellerFeeBasisPoints)
	payouts := make([]Payout, 0, len(md.Creators))
	for _, c := range md.Creators {
		payouts = append(payouts, Payout{To: c.Address, Amount: util.BasisPoints(royalty, uint16(c.Share)*100)})
	}
	return payouts, nil
}
