package localnet

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alphabill-org/auctionhouse/crypto"
	"github.com/alphabill-org/auctionhouse/keyvaluedb/boltdb"
	testlogger "github.com/alphabill-org/auctionhouse/testutils/logger"
	"github.com/alphabill-org/auctionhouse/txsystem/auctionhouse"
	"github.com/alphabill-org/auctionhouse/txsystem/money"
	"github.com/alphabill-org/auctionhouse/txsystem/tokens"
	"github.com/alphabill-org/auctionhouse/types"
)

func TestBuilder(t *testing.T) {
	owner := crypto.Keypair(1)
	mint := types.Address{1}

	env, err := NewBuilder().
		WithLamports(owner.Address(), 100).
		WithLamports(owner.Address(), 50).
		WithMint(mint, 0, 1, owner.Address()).
		WithAssociatedTokens(owner.Address(), mint, 1).
		WithMetadata(mint, owner.Address(), 500, &tokens.Creator{Address: owner.Address(), Share: 100}).
		Build(testlogger.New(t))
	require.NoError(t, err)
	require.EqualValues(t, 150, env.Lamports(owner.Address()))

	acc, err := env.Account(tokens.AssociatedTokenAddress(owner.Address(), mint))
	require.NoError(t, err)
	ta, err := tokens.DecodeTokenAccount(acc)
	require.NoError(t, err)
	require.EqualValues(t, 1, ta.Amount)

	acc, err = env.Account(tokens.MetadataAddress(mint))
	require.NoError(t, err)
	md, err := tokens.DecodeMetadata(acc)
	require.NoError(t, err)
	require.EqualValues(t, 500, md.SellerFeeBasisPoints)

	t.Run("invalid metadata", func(t *testing.T) {
		_, err := NewBuilder().WithMetadata(mint, owner.Address(), 500, &tokens.Creator{Share: 99}).Build(testlogger.New(t))
		require.ErrorContains(t, err, "shares must add up to 100")
	})
	t.Run("account defined twice", func(t *testing.T) {
		_, err := NewBuilder().WithMint(mint, 0, 1, owner.Address()).WithMint(mint, 0, 1, owner.Address()).Build(testlogger.New(t))
		require.ErrorContains(t, err, "defined twice")
	})
	t.Run("nil logger", func(t *testing.T) {
		_, err := NewBuilder().Build(nil)
		require.EqualError(t, err, "logger is nil")
	})
}

func TestEnvironment_Execute(t *testing.T) {
	alice, bob := crypto.Keypair(1), crypto.Keypair(2)
	out := &bytes.Buffer{}
	db, err := boltdb.New(filepath.Join(t.TempDir(), "records.db"))
	require.NoError(t, err)

	env, err := NewBuilder().
		WithLamports(alice.Address(), 1000).
		WithRecordStore(db).
		WithOutput(out).
		Build(testlogger.New(t))
	require.NoError(t, err)
	defer func() { require.NoError(t, env.Close()) }()

	ins, err := money.NewTransfer(alice.Address(), bob.Address(), 600)
	require.NoError(t, err)
	o, err := env.Submit("pay bob", []crypto.Signer{alice}, ins)
	require.NoError(t, err)
	require.True(t, o.Success)
	require.Equal(t, auctionhouse.Success, o.Code)
	require.EqualValues(t, 1, o.Seq)
	require.EqualValues(t, 600, env.Lamports(bob.Address()))

	// not enough lamports left
	o, err = env.Submit("pay bob again", []crypto.Signer{alice}, ins)
	require.NoError(t, err)
	require.False(t, o.Success)
	require.Error(t, o.Err)
	require.EqualValues(t, 2, o.Seq)

	// coded failure of the auction house program
	market := auctionhouse.NewMarket(alice.Address(), types.NativeMint)
	ins, err = market.Sell(bob.Address(), types.Address{9}, 1, 1)
	require.NoError(t, err)
	o, err = env.Submit("sell on missing market", []crypto.Signer{bob}, ins)
	require.NoError(t, err)
	require.Equal(t, auctionhouse.InvalidTradeState, o.Code)

	require.Contains(t, out.String(), "pay bob")
	require.Contains(t, out.String(), "FAILED InvalidTradeState (6003)")
	require.Len(t, env.Outcomes(), 3)
	require.Equal(t, out.String(), env.Summary())

	recs, err := env.Records().List(0, 0)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	require.True(t, recs[0].Success)
	require.False(t, recs[2].Success)
	require.EqualValues(t, auctionhouse.InvalidTradeState, recs[2].ErrorCode)

	recs, err = env.Records().List(2, 1)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.EqualValues(t, 2, recs[0].Seq)

	rec, err := env.Records().Get(1)
	require.NoError(t, err)
	require.Equal(t, env.State().Hash(), recs[0].StateHash)
	require.NotEmpty(t, rec.TxHash)
	_, err = env.Records().Get(42)
	require.ErrorIs(t, err, ErrRecordNotFound)
}
