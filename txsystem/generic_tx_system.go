package txsystem

import (
	"crypto"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/alphabill-org/auctionhouse/logger"
	"github.com/alphabill-org/auctionhouse/state"
)

/*
GenericTxSystem executes transactions against the ledger state. Batches are
executed one at a time, in the order Execute is called: a batch either
commits all of its effects or none of them.
*/
type GenericTxSystem struct {
	mu            sync.Mutex
	hashAlgorithm crypto.Hash
	state         *state.State
	programs      programs
	seq           uint64
	onRecord      []func(rec *TransactionRecord)
	log           *zerolog.Logger
}

func NewGenericTxSystem(modules []Module, log *zerolog.Logger, opts ...Option) (*GenericTxSystem, error) {
	if log == nil {
		return nil, errors.New("logger is nil")
	}
	options := DefaultOptions()
	for _, option := range opts {
		option(options)
	}
	if options.state == nil {
		options.state = state.NewEmptyState(state.WithHashAlgorithm(options.hashAlgorithm))
	}
	txs := &GenericTxSystem{
		hashAlgorithm: options.hashAlgorithm,
		state:         options.state,
		programs:      make(programs),
		onRecord:      options.onRecord,
		log:           log,
	}
	for _, module := range modules {
		if module == nil {
			return nil, errors.New("module is nil")
		}
		if err := txs.programs.add(module); err != nil {
			return nil, fmt.Errorf("registering tx executors: %w", err)
		}
	}
	return txs, nil
}

/*
Execute runs all the instructions of the transaction as one atomic batch and
commits the result. On failure the state is left exactly as it was before the
call and the returned error describes the failed precondition. The record is
returned in both cases.
*/
func (m *GenericTxSystem) Execute(tx *Transaction) (*TransactionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	rec := &TransactionRecord{Seq: m.seq, Transaction: tx}
	var err error
	if tx == nil {
		err = errors.New("transaction is nil")
	} else {
		rec.TxHash = tx.Hash(m.hashAlgorithm)
		err = m.doExecute(tx, rec)
	}
	if err != nil {
		m.state.Revert()
		rec.Error = err.Error()
		rec.ErrorCode, _ = ErrorCodeOf(err)
		m.log.Warn().Func(logger.Round(rec.Seq)).Uint32("code", rec.ErrorCode).Err(err).Msg("batch rejected")
	} else {
		m.state.Commit()
		rec.Success = true
	}
	rec.StateHash = m.state.Hash()
	for _, f := range m.onRecord {
		f(rec)
	}
	return rec, err
}

func (m *GenericTxSystem) doExecute(tx *Transaction, rec *TransactionRecord) (rErr error) {
	if len(tx.Instructions) == 0 {
		return ErrNoInstructions
	}
	signers, err := tx.VerifySignatures()
	if err != nil {
		return err
	}

	savepointID := m.state.Savepoint()
	defer func() {
		if rErr != nil {
			// revert every change made by the instructions executed so far
			m.state.RollbackToSavepoint(savepointID)
			return
		}
		m.state.ReleaseToSavepoint(savepointID)
	}()

	exeCtx := &ExecutionContext{
		txs:         m,
		signers:     signers,
		savepointID: savepointID,
		seq:         rec.Seq,
	}
	for i, ins := range tx.Instructions {
		m.log.Debug().Func(logger.Round(rec.Seq)).Str(logger.ProgramKey, programName(ins)).Msgf("execute %s", instructionType(ins))
		if err := m.programs.execute(ins, exeCtx); err != nil {
			return fmt.Errorf("instruction %d: %w", i, err)
		}
	}
	rec.Targets = exeCtx.targets
	return nil
}

// State returns a copy of the current state, safe for read only use by other goroutines.
func (m *GenericTxSystem) State() *state.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Clone()
}

func (m *GenericTxSystem) StateHash() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Hash()
}

func (m *GenericTxSystem) HashAlgorithm() crypto.Hash { return m.hashAlgorithm }

// LastSeq returns the sequence number of the latest executed batch.
func (m *GenericTxSystem) LastSeq() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seq
}

func programName(ins *Instruction) string {
	if ins == nil {
		return ""
	}
	return ins.ProgramID.String()
}

func instructionType(ins *Instruction) string {
	if ins == nil {
		return "<nil>"
	}
	return ins.Type
}
