package auctionhouse

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alphabill-org/auctionhouse/crypto"
	"github.com/alphabill-org/auctionhouse/state"
	testlogger "github.com/alphabill-org/auctionhouse/testutils/logger"
	"github.com/alphabill-org/auctionhouse/txsystem"
	"github.com/alphabill-org/auctionhouse/txsystem/money"
	"github.com/alphabill-org/auctionhouse/txsystem/tokens"
	"github.com/alphabill-org/auctionhouse/types"
)

const (
	testPrice = 8_000_000_000
	testSize  = 1
)

var testMint = types.Address{0x4d, 0x49, 0x4e, 0x54}

type testEnv struct {
	txs       *txsystem.GenericTxSystem
	market    *Market
	authority *crypto.InMemoryEd25519Signer
	bob       *crypto.InMemoryEd25519Signer
	attacker  *crypto.InMemoryEd25519Signer
	mint      types.Address
	bobTokens types.Address
	nonce     uint64
}

type envOption func(opts *envOptions)

type envOptions struct {
	accounts []state.Option
}

func withMetadata(t *testing.T, md *tokens.Metadata) envOption {
	return func(opts *envOptions) {
		opts.accounts = append(opts.accounts, state.WithAccount(tokens.MetadataAddress(md.Mint), newTokenProgramAccount(t, types.MetadataProgramID, md)))
	}
}

/*
newTestEnv creates a ledger where bob owns one token of the mint and the
attacker has a funded wallet and an empty token account of the same mint.
*/
func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	env := &testEnv{
		authority: crypto.Keypair(1),
		bob:       crypto.Keypair(2),
		attacker:  crypto.Keypair(3),
		mint:      testMint,
	}
	env.market = NewMarket(env.authority.Address(), types.NativeMint)
	env.bobTokens = tokens.AssociatedTokenAddress(env.bob.Address(), env.mint)
	attackerTokens := tokens.AssociatedTokenAddress(env.attacker.Address(), env.mint)

	o := &envOptions{accounts: []state.Option{
		state.WithAccount(env.authority.Address(), &state.Account{Lamports: 1_000_000_000}),
		state.WithAccount(env.bob.Address(), &state.Account{Lamports: 1_000_000_000}),
		state.WithAccount(env.attacker.Address(), &state.Account{Lamports: 10_000_000_000}),
		state.WithAccount(env.mint, newTokenProgramAccount(t, types.TokenProgramID, tokens.NewMint(0, 1, env.bob.Address()))),
		state.WithAccount(env.bobTokens, newTokenProgramAccount(t, types.TokenProgramID, tokens.NewTokenAccount(env.mint, env.bob.Address(), 1))),
		state.WithAccount(attackerTokens, newTokenProgramAccount(t, types.TokenProgramID, tokens.NewTokenAccount(env.mint, env.attacker.Address(), 0))),
	}}
	for _, opt := range opts {
		opt(o)
	}

	log := testlogger.New(t)
	txs, err := txsystem.NewGenericTxSystem([]txsystem.Module{
		money.NewMoneyModule(log),
		tokens.NewTokensModule(log),
		tokens.NewAssociatedTokenModule(log),
		NewAuctionHouseModule(log),
	}, log, txsystem.WithState(state.NewEmptyState(o.accounts...)))
	require.NoError(t, err)
	env.txs = txs
	return env
}

func newTokenProgramAccount(t *testing.T, owner types.Address, data any) *state.Account {
	acc, err := tokens.NewAccount(owner, data)
	require.NoError(t, err)
	return acc
}

func (env *testEnv) execute(t *testing.T, ins *txsystem.Instruction, signers ...crypto.Signer) error {
	t.Helper()
	env.nonce++
	tx := txsystem.NewTransaction(env.nonce, ins)
	require.NoError(t, tx.Sign(signers...))
	_, err := env.txs.Execute(tx)
	return err
}

func (env *testEnv) mustExecute(t *testing.T, ins *txsystem.Instruction, err error, signers ...crypto.Signer) {
	t.Helper()
	require.NoError(t, err)
	require.NoError(t, env.execute(t, ins, signers...))
}

func (env *testEnv) createMarket(t *testing.T, feeBps uint16, requiresSignOff bool) {
	t.Helper()
	ins, err := env.market.Create(env.authority.Address(), feeBps, requiresSignOff, false)
	env.mustExecute(t, ins, err, env.authority)
}

// listAndBid runs the sale preparation: bob lists, the attacker deposits and bids.
func (env *testEnv) listAndBid(t *testing.T, price uint64) {
	t.Helper()
	ins, err := env.market.Sell(env.bob.Address(), env.bobTokens, price, testSize)
	env.mustExecute(t, ins, err, env.bob)
	ins, err = env.market.Deposit(env.attacker.Address(), price)
	env.mustExecute(t, ins, err, env.attacker)
	ins, err = env.market.Buy(env.attacker.Address(), env.bobTokens, price, testSize)
	env.mustExecute(t, ins, err, env.attacker)
}

func (env *testEnv) saleAttributes(price uint64) *ExecuteSaleAttributes {
	return env.market.ExecuteSaleAttributes(env.attacker.Address(), env.bob.Address(), env.bobTokens, env.mint, price, testSize)
}

func (env *testEnv) account(t *testing.T, addr types.Address) *state.Account {
	t.Helper()
	acc, err := env.txs.State().GetAccount(addr, true)
	require.NoError(t, err)
	return acc
}

func (env *testEnv) lamports(addr types.Address) uint64 {
	acc, err := env.txs.State().GetAccount(addr, true)
	if err != nil {
		return 0
	}
	return acc.Lamports
}

func (env *testEnv) escrow(t *testing.T, wallet types.Address) *EscrowData {
	t.Helper()
	e, err := DecodeEscrow(env.account(t, env.market.Escrow(wallet)))
	require.NoError(t, err)
	return e
}

func (env *testEnv) tokenAccount(t *testing.T, addr types.Address) *tokens.TokenAccount {
	t.Helper()
	ta, err := tokens.DecodeTokenAccount(env.account(t, addr))
	require.NoError(t, err)
	return ta
}

func (env *testEnv) requireClosed(t *testing.T, addrs ...types.Address) {
	t.Helper()
	for _, addr := range addrs {
		_, err := env.txs.State().GetAccount(addr, true)
		require.ErrorIs(t, err, state.ErrAccountNotFound, "account %s", addr)
	}
}

func (env *testEnv) requireOpen(t *testing.T, addrs ...types.Address) {
	t.Helper()
	for _, addr := range addrs {
		require.True(t, env.account(t, addr).HasData(), "account %s", addr)
	}
}
