package auctionhouse

import (
	"github.com/rs/zerolog"

	"github.com/alphabill-org/auctionhouse/logger"
	"github.com/alphabill-org/auctionhouse/txsystem"
	"github.com/alphabill-org/auctionhouse/types"
)

var _ txsystem.Module = (*Module)(nil)

// Module is the auction house program.
type Module struct {
	log *zerolog.Logger
}

func NewAuctionHouseModule(log *zerolog.Logger) *Module {
	return &Module{log: logger.Module(log, "auctionhouse")}
}

func (m *Module) ProgramID() types.Address { return types.AuctionHouseProgramID }

func (m *Module) TxExecutors() txsystem.TxExecutors {
	return txsystem.TxExecutors{
		PayloadTypeCreateAuctionHouse: handler(m.handleCreateAuctionHouseTx),
		PayloadTypeDeposit:            handler(m.handleDepositTx),
		PayloadTypeSell:               handler(m.handleSellTx),
		PayloadTypeBuy:                handler(m.handleBuyTx),
		PayloadTypeExecuteSale:        handler(m.handleExecuteSaleTx),
		PayloadTypeCancel:             handler(m.handleCancelTx),
	}
}

// handler maps collaborator errors of f into the error taxonomy.
func handler[T any](f func(*txsystem.Instruction, *T, *txsystem.ExecutionContext) error) txsystem.ExecuteFunc {
	return txsystem.GenericExecuteFunc[T](func(ins *txsystem.Instruction, attr *T, exeCtx *txsystem.ExecutionContext) error {
		return mapError(f(ins, attr, exeCtx))
	}).ExecuteFunc()
}

/*
getAuctionHouse loads the auction house record. A missing or foreign record is
reported as InvalidTradeState: the order refers to a market which does not exist.
*/
func getAuctionHouse(exeCtx *txsystem.ExecutionContext, addr types.Address) (*AuctionHouseData, error) {
	acc, err := exeCtx.GetAccount(addr)
	if err != nil {
		return nil, wrapError(InvalidTradeState, err, "auction house %s", addr)
	}
	ah, err := DecodeAuctionHouse(acc)
	if err != nil {
		return nil, wrapError(InvalidTradeState, err, "auction house %s", addr)
	}
	return ah, nil
}

/*
checkSignOff verifies the authority signature when the auction house requires
sign-off on every order.
*/
func checkSignOff(exeCtx *txsystem.ExecutionContext, ah *AuctionHouseData) error {
	if ah.RequiresSignOff && !exeCtx.IsSigner(ah.Authority) {
		return newError(Unauthorized, "auction house requires sign-off by %s", ah.Authority)
	}
	return nil
}

func requireSigner(exeCtx *txsystem.ExecutionContext, addr types.Address) error {
	if !exeCtx.IsSigner(addr) {
		return newError(Unauthorized, "missing signature of %s", addr)
	}
	return nil
}
