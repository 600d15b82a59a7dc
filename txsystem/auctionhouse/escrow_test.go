package auctionhouse

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alphabill-org/auctionhouse/state"
	"github.com/alphabill-org/auctionhouse/types"
)

func TestEscrow_DepositDebit(t *testing.T) {
	ah, wallet := types.Address{1}, types.Address{2}
	escrow, _ := EscrowAddress(ah, wallet)

	newState := func(lamports uint64) *state.State {
		return state.NewEmptyState(state.WithAccount(wallet, &state.Account{Lamports: lamports}))
	}
	getEscrow := func(t *testing.T, s *state.State) (*EscrowData, uint64) {
		acc, err := s.GetAccount(escrow, false)
		require.NoError(t, err)
		e, err := DecodeEscrow(acc)
		require.NoError(t, err)
		return e, acc.Lamports
	}

	t.Run("debit within balance", func(t *testing.T) {
		s := newState(10_000_000)
		require.NoError(t, s.Apply(DepositAction(ah, wallet, 1000)))
		require.NoError(t, s.Apply(DebitAction(escrow, 400)))
		e, lamports := getEscrow(t, s)
		require.EqualValues(t, 600, e.Balance)
		require.EqualValues(t, 400, e.Reserved)
		require.Equal(t, EscrowRent()+1000, lamports)
		require.Equal(t, wallet, e.Wallet)
		require.Equal(t, ah, e.AuctionHouse)
	})

	t.Run("debit over balance", func(t *testing.T) {
		s := newState(10_000_000)
		require.NoError(t, s.Apply(DepositAction(ah, wallet, 1000)))
		require.ErrorIs(t, s.Apply(DebitAction(escrow, 1001)), ErrInsufficientEscrow)
		e, _ := getEscrow(t, s)
		require.EqualValues(t, 1000, e.Balance)
		require.Zero(t, e.Reserved)
	})

	t.Run("deposits accumulate", func(t *testing.T) {
		s := newState(10_000_000)
		require.NoError(t, s.Apply(DepositAction(ah, wallet, 1000), DepositAction(ah, wallet, 234)))
		e, lamports := getEscrow(t, s)
		require.EqualValues(t, 1234, e.Balance)
		require.Equal(t, EscrowRent()+1234, lamports)
	})

	t.Run("deposit overflow", func(t *testing.T) {
		s := newState(10_000_000)
		require.NoError(t, s.Apply(DepositAction(ah, wallet, 1000)))
		require.ErrorIs(t, s.Apply(DepositAction(ah, wallet, math.MaxUint64-10)), ErrOverflow)
		e, _ := getEscrow(t, s)
		require.EqualValues(t, 1000, e.Balance)
	})

	t.Run("no escrow", func(t *testing.T) {
		s := newState(10_000_000)
		require.ErrorIs(t, s.Apply(DebitAction(escrow, 1)), ErrInsufficientEscrow)
	})

	t.Run("release and payout", func(t *testing.T) {
		s := newState(10_000_000)
		seller := types.Address{3}
		require.NoError(t, s.Apply(DepositAction(ah, wallet, 1000), DebitAction(escrow, 1000)))
		require.ErrorIs(t, s.Apply(PayoutAction(escrow, Payout{To: seller, Amount: 1001})), ErrInsufficientEscrow)
		require.NoError(t, s.Apply(ReleaseAction(escrow, 300)))
		require.NoError(t, s.Apply(PayoutAction(escrow, Payout{To: seller, Amount: 500}, Payout{To: ah, Amount: 200})))

		e, lamports := getEscrow(t, s)
		require.EqualValues(t, 300, e.Balance)
		require.Zero(t, e.Reserved)
		require.Equal(t, EscrowRent()+300, lamports)
		acc, err := s.GetAccount(seller, false)
		require.NoError(t, err)
		require.EqualValues(t, 500, acc.Lamports)
	})
}
