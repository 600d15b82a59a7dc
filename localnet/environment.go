package localnet

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/alphabill-org/auctionhouse/crypto"
	"github.com/alphabill-org/auctionhouse/state"
	"github.com/alphabill-org/auctionhouse/txsystem"
	"github.com/alphabill-org/auctionhouse/txsystem/auctionhouse"
	"github.com/alphabill-org/auctionhouse/types"
)

// Environment is a local ledger, batches submitted to it are executed one at a time.
type Environment struct {
	txs     *txsystem.GenericTxSystem
	records *RecordStore
	out     io.Writer
	log     *zerolog.Logger

	mu       sync.Mutex
	nonce    uint64
	outcomes []*Outcome
}

// Outcome is the printable result of a named batch.
type Outcome struct {
	Name    string
	Seq     uint64
	Success bool
	Code    auctionhouse.ErrorCode
	Err     error
	Targets []types.Address
}

func (o *Outcome) String() string {
	if o.Success {
		return fmt.Sprintf("#%d %-28s ok, touched %d accounts", o.Seq, o.Name, len(o.Targets))
	}
	return fmt.Sprintf("#%d %-28s FAILED %s (%d): %v", o.Seq, o.Name, o.Code, uint32(o.Code), o.Err)
}

/*
Execute runs tx as one batch, prints and stores the outcome. The failure
reports the code of the precondition which failed.
*/
func (e *Environment) Execute(name string, tx *txsystem.Transaction) *Outcome {
	rec, err := e.txs.Execute(tx)
	o := &Outcome{Name: name, Err: err, Success: err == nil, Code: auctionhouse.CodeOf(err)}
	if rec != nil {
		o.Seq = rec.Seq
		o.Targets = rec.Targets
		if err := e.records.Add(rec); err != nil {
			e.log.Error().Err(err).Uint64("seq", rec.Seq).Msg("storing transaction record")
		}
	}
	e.mu.Lock()
	e.outcomes = append(e.outcomes, o)
	e.mu.Unlock()
	fmt.Fprintln(e.out, o.String())
	return o
}

// Submit builds a batch of the instructions, signs it and executes it.
func (e *Environment) Submit(name string, signers []crypto.Signer, instructions ...*txsystem.Instruction) (*Outcome, error) {
	e.mu.Lock()
	e.nonce++
	tx := txsystem.NewTransaction(e.nonce, instructions...)
	e.mu.Unlock()
	if err := tx.Sign(signers...); err != nil {
		return nil, fmt.Errorf("signing %s: %w", name, err)
	}
	return e.Execute(name, tx), nil
}

func (e *Environment) Outcomes() []*Outcome {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*Outcome(nil), e.outcomes...)
}

func (e *Environment) Records() *RecordStore { return e.records }

func (e *Environment) Log() *zerolog.Logger { return e.log }

// State returns a snapshot of the committed ledger state.
func (e *Environment) State() *state.State { return e.txs.State() }

func (e *Environment) TxSystem() *txsystem.GenericTxSystem { return e.txs }

// Account returns the committed account at addr.
func (e *Environment) Account(addr types.Address) (*state.Account, error) {
	return e.txs.State().GetAccount(addr, true)
}

func (e *Environment) Lamports(addr types.Address) uint64 {
	acc, err := e.Account(addr)
	if err != nil {
		return 0
	}
	return acc.Lamports
}

// Summary returns the printable outcomes of all the batches executed so far.
func (e *Environment) Summary() string {
	var sb strings.Builder
	for _, o := range e.Outcomes() {
		sb.WriteString(o.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (e *Environment) Close() error { return e.records.Close() }
