package txsystem

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alphabill-org/auctionhouse/crypto"
	"github.com/alphabill-org/auctionhouse/state"
	testlogger "github.com/alphabill-org/auctionhouse/testutils/logger"
	"github.com/alphabill-org/auctionhouse/types"
)

var testProgramID = types.Address{0xAA, 1}

type (
	createAttr struct {
		_     struct{} `cbor:",toarray"`
		Addr  types.Address
		Data  []byte
		Owner types.Address
	}
	failAttr struct {
		_    struct{} `cbor:",toarray"`
		Code uint32
	}
	peekAttr struct {
		_    struct{} `cbor:",toarray"`
		Addr types.Address
	}

	codedErr uint32

	testModule struct {
		peeked []string
	}
)

func (e codedErr) Error() string     { return fmt.Sprintf("test error %d", uint32(e)) }
func (e codedErr) ErrorCode() uint32 { return uint32(e) }

func (m *testModule) ProgramID() types.Address { return testProgramID }

func (m *testModule) TxExecutors() TxExecutors {
	return TxExecutors{
		"create": GenericExecuteFunc[createAttr](func(ins *Instruction, attr *createAttr, exeCtx *ExecutionContext) error {
			if !exeCtx.IsSigner(attr.Owner) {
				return ErrMissingSignature
			}
			exeCtx.AddTargets(attr.Addr)
			return exeCtx.Apply(state.AllocateAccount(attr.Addr, testProgramID, attr.Data))
		}).ExecuteFunc(),
		"fail": GenericExecuteFunc[failAttr](func(ins *Instruction, attr *failAttr, exeCtx *ExecutionContext) error {
			return codedErr(attr.Code)
		}).ExecuteFunc(),
		"peek": GenericExecuteFunc[peekAttr](func(ins *Instruction, attr *peekAttr, exeCtx *ExecutionContext) error {
			_, errNow := exeCtx.GetAccount(attr.Addr)
			_, errBefore := exeCtx.GetAccountAtBatchStart(attr.Addr)
			m.peeked = append(m.peeked, fmt.Sprintf("now=%v before=%v", errNow == nil, errBefore == nil))
			return nil
		}).ExecuteFunc(),
	}
}

func newInstruction(t *testing.T, txType string, attr any) *Instruction {
	t.Helper()
	ins, err := NewInstruction(testProgramID, txType, attr)
	require.NoError(t, err)
	return ins
}

func newTestTxSystem(t *testing.T, opts ...Option) (*GenericTxSystem, *testModule) {
	t.Helper()
	m := &testModule{}
	txs, err := NewGenericTxSystem([]Module{m}, testlogger.New(t), opts...)
	require.NoError(t, err)
	return txs, m
}

func TestNewGenericTxSystem(t *testing.T) {
	_, err := NewGenericTxSystem(nil, nil)
	require.EqualError(t, err, "logger is nil")

	_, err = NewGenericTxSystem([]Module{&testModule{}, &testModule{}}, testlogger.New(t))
	require.ErrorContains(t, err, "is already registered")

	_, err = NewGenericTxSystem([]Module{nil}, testlogger.New(t))
	require.EqualError(t, err, "module is nil")
}

func TestExecute_OK(t *testing.T) {
	var records []*TransactionRecord
	txs, _ := newTestTxSystem(t, WithRecordHandler(func(rec *TransactionRecord) { records = append(records, rec) }))
	owner := crypto.Keypair(1)
	addr := types.Address{1}

	tx := NewTransaction(1, newInstruction(t, "create", &createAttr{Addr: addr, Data: []byte{1}, Owner: owner.Address()}))
	require.NoError(t, tx.Sign(owner))
	rec, err := txs.Execute(tx)
	require.NoError(t, err)
	require.True(t, rec.Success)
	require.EqualValues(t, 1, rec.Seq)
	require.Equal(t, []types.Address{addr}, rec.Targets)
	require.Equal(t, txs.StateHash(), rec.StateHash)
	require.Len(t, records, 1)
	require.EqualValues(t, 1, txs.LastSeq())

	s := txs.State()
	require.True(t, s.IsCommitted())
	acc, err := s.GetAccount(addr, true)
	require.NoError(t, err)
	require.Equal(t, []byte{1}, acc.Data)
}

func TestExecute_FailedBatchIsRolledBack(t *testing.T) {
	txs, _ := newTestTxSystem(t)
	owner := crypto.Keypair(1)
	hashBefore := txs.StateHash()

	tx := NewTransaction(1,
		newInstruction(t, "create", &createAttr{Addr: types.Address{1}, Data: []byte{1}, Owner: owner.Address()}),
		newInstruction(t, "fail", &failAttr{Code: 42}),
	)
	require.NoError(t, tx.Sign(owner))
	rec, err := txs.Execute(tx)
	require.ErrorIs(t, err, codedErr(42))
	require.False(t, rec.Success)
	require.EqualValues(t, 42, rec.ErrorCode)
	require.Contains(t, rec.Error, "instruction 1: fail failed: test error 42")
	require.Equal(t, hashBefore, rec.StateHash)
	require.Equal(t, hashBefore, txs.StateHash())

	_, err = txs.State().GetAccount(types.Address{1}, false)
	require.ErrorIs(t, err, state.ErrAccountNotFound)
}

func TestExecute_Signatures(t *testing.T) {
	txs, _ := newTestTxSystem(t)
	owner := crypto.Keypair(1)
	other := crypto.Keypair(2)

	t.Run("missing", func(t *testing.T) {
		tx := NewTransaction(1, newInstruction(t, "create", &createAttr{Addr: types.Address{1}, Data: []byte{1}, Owner: owner.Address()}))
		require.NoError(t, tx.Sign(other))
		_, err := txs.Execute(tx)
		require.ErrorIs(t, err, ErrMissingSignature)
	})

	t.Run("invalid", func(t *testing.T) {
		tx := NewTransaction(1, newInstruction(t, "create", &createAttr{Addr: types.Address{1}, Data: []byte{1}, Owner: owner.Address()}))
		require.NoError(t, tx.Sign(owner))
		// changing the payload invalidates the signature
		tx.Nonce = 2
		_, err := txs.Execute(tx)
		require.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("signing twice keeps one signature", func(t *testing.T) {
		tx := NewTransaction(1)
		require.NoError(t, tx.Sign(owner, owner))
		require.Len(t, tx.Signatures, 1)
		signers, err := tx.VerifySignatures()
		require.NoError(t, err)
		require.Contains(t, signers, owner.Address())
	})
}

func TestExecute_InvalidTransactions(t *testing.T) {
	txs, _ := newTestTxSystem(t)

	_, err := txs.Execute(nil)
	require.EqualError(t, err, "transaction is nil")

	_, err = txs.Execute(NewTransaction(1))
	require.ErrorIs(t, err, ErrNoInstructions)

	_, err = txs.Execute(NewTransaction(1, &Instruction{ProgramID: testProgramID, Type: "nope"}))
	require.ErrorIs(t, err, ErrUnknownInstruction)

	_, err = txs.Execute(NewTransaction(1, &Instruction{ProgramID: types.Address{9}, Type: "create"}))
	require.ErrorIs(t, err, ErrUnknownInstruction)

	_, err = txs.Execute(NewTransaction(1, &Instruction{ProgramID: testProgramID, Type: "create", Attributes: []byte{0xFF}}))
	require.ErrorContains(t, err, "failed to unmarshal create attributes")
	require.EqualValues(t, 5, txs.LastSeq())
}

func TestExecute_AccountAtBatchStart(t *testing.T) {
	txs, m := newTestTxSystem(t)
	owner := crypto.Keypair(1)
	addr := types.Address{1}

	tx := NewTransaction(1,
		newInstruction(t, "peek", &peekAttr{Addr: addr}),
		newInstruction(t, "create", &createAttr{Addr: addr, Data: []byte{1}, Owner: owner.Address()}),
		newInstruction(t, "peek", &peekAttr{Addr: addr}),
	)
	require.NoError(t, tx.Sign(owner))
	_, err := txs.Execute(tx)
	require.NoError(t, err)

	tx = NewTransaction(2, newInstruction(t, "peek", &peekAttr{Addr: addr}))
	_, err = txs.Execute(tx)
	require.NoError(t, err)
	require.Equal(t, []string{"now=false before=false", "now=true before=false", "now=true before=true"}, m.peeked)
}

func TestErrorCodeOf(t *testing.T) {
	code, ok := ErrorCodeOf(fmt.Errorf("wrapped: %w", codedErr(3)))
	require.True(t, ok)
	require.EqualValues(t, 3, code)

	_, ok = ErrorCodeOf(errors.New("plain"))
	require.False(t, ok)
}
