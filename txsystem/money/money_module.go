package money

import (
	"github.com/rs/zerolog"

	"github.com/alphabill-org/auctionhouse/logger"
	"github.com/alphabill-org/auctionhouse/txsystem"
	"github.com/alphabill-org/auctionhouse/types"
)

const PayloadTypeTransfer = "transfer"

var _ txsystem.Module = (*Module)(nil)

// Module is the system program: it moves lamports between accounts.
type Module struct {
	log *zerolog.Logger
}

func NewMoneyModule(log *zerolog.Logger) *Module {
	return &Module{log: logger.Module(log, "money")}
}

func (m *Module) ProgramID() types.Address {
	return types.SystemProgramID
}

func (m *Module) TxExecutors() txsystem.TxExecutors {
	return txsystem.TxExecutors{
		PayloadTypeTransfer: txsystem.GenericExecuteFunc[TransferAttributes](m.handleTransferTx).ExecuteFunc(),
	}
}
