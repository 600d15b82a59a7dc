package txsystem

import (
	"github.com/alphabill-org/auctionhouse/state"
	"github.com/alphabill-org/auctionhouse/types"
)

// ExecutionContext is passed to instruction handlers, it is valid for the duration of a single batch.
type ExecutionContext struct {
	txs         *GenericTxSystem
	signers     map[types.Address]struct{}
	savepointID int
	seq         uint64
	targets     []types.Address
}

// IsSigner returns true when the batch carries a valid signature of addr.
func (ec *ExecutionContext) IsSigner(addr types.Address) bool {
	_, ok := ec.signers[addr]
	return ok
}

// GetAccount returns the account including the changes made by earlier instructions of the batch.
func (ec *ExecutionContext) GetAccount(addr types.Address) (*state.Account, error) {
	return ec.txs.state.GetAccount(addr, false)
}

/*
GetAccountAtBatchStart returns the account as it was before the first
instruction of the current batch was executed.
*/
func (ec *ExecutionContext) GetAccountAtBatchStart(addr types.Address) (*state.Account, error) {
	return ec.txs.state.GetAccountBefore(ec.savepointID, addr)
}

// Apply applies the actions to the state atomically, see state.State.Apply.
func (ec *ExecutionContext) Apply(actions ...state.Action) error {
	return ec.txs.state.Apply(actions...)
}

// Seq is the sequence number of the batch being executed.
func (ec *ExecutionContext) Seq() uint64 { return ec.seq }

// AddTargets records accounts touched by the batch, they end up in the transaction record.
func (ec *ExecutionContext) AddTargets(addrs ...types.Address) {
	for _, a := range addrs {
		if !containsAddress(ec.targets, a) {
			ec.targets = append(ec.targets, a)
		}
	}
}

func containsAddress(s []types.Address, a types.Address) bool {
	for _, v := range s {
		if v == a {
			return true
		}
	}
	return false
}
