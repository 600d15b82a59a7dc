package types

import (
	"crypto/ed25519"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func leUint64(v uint64) []byte {
	return binary.LittleEndian.AppendUint64(nil, v)
}

func TestFindProgramAddress(t *testing.T) {
	owner := Address{1, 2, 3}
	seeds := [][]byte{[]byte("auction_house"), owner[:], NativeMint[:], leUint64(8_000_000_000), leUint64(1)}

	t.Run("deterministic", func(t *testing.T) {
		addr1, bump1, err := FindProgramAddress(seeds, AuctionHouseProgramID)
		require.NoError(t, err)
		addr2, bump2, err := FindProgramAddress(seeds, AuctionHouseProgramID)
		require.NoError(t, err)
		require.Equal(t, addr1, addr2)
		require.Equal(t, bump1, bump2)
		require.False(t, IsOnCurve(addr1[:]))
	})

	t.Run("bump recreates the address", func(t *testing.T) {
		addr, bump, err := FindProgramAddress(seeds, AuctionHouseProgramID)
		require.NoError(t, err)
		again, err := CreateProgramAddress(append(seeds, []byte{bump}), AuctionHouseProgramID)
		require.NoError(t, err)
		require.Equal(t, addr, again)
	})

	t.Run("numeric suffix changes the address", func(t *testing.T) {
		free := [][]byte{seeds[0], seeds[1], seeds[2], leUint64(0), leUint64(1)}
		addr1, _, err := FindProgramAddress(seeds, AuctionHouseProgramID)
		require.NoError(t, err)
		addr2, _, err := FindProgramAddress(free, AuctionHouseProgramID)
		require.NoError(t, err)
		require.NotEqual(t, addr1, addr2)
	})

	t.Run("program ID is part of the derivation", func(t *testing.T) {
		addr1, _, err := FindProgramAddress(seeds, AuctionHouseProgramID)
		require.NoError(t, err)
		addr2, _, err := FindProgramAddress(seeds, TokenProgramID)
		require.NoError(t, err)
		require.NotEqual(t, addr1, addr2)
	})

	t.Run("seed too long", func(t *testing.T) {
		_, _, err := FindProgramAddress([][]byte{make([]byte, MaxSeedLength+1)}, AuctionHouseProgramID)
		require.ErrorIs(t, err, ErrMaxSeedLengthExceeded)
	})

	t.Run("too many seeds", func(t *testing.T) {
		_, _, err := FindProgramAddress(make([][]byte, MaxSeeds), AuctionHouseProgramID)
		require.ErrorIs(t, err, ErrMaxSeedLengthExceeded)
	})
}

func TestIsOnCurve(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	require.True(t, IsOnCurve(pub))
}

func TestAddress_Text(t *testing.T) {
	require.Equal(t, "hausS13jsjafwWwGqZTUQRmWyvyxn9EQpqMwV1PBBmk", AuctionHouseProgramID.String())
	require.True(t, SystemProgramID.IsZero())
	require.Equal(t, "11111111111111111111111111111111", SystemProgramID.String())

	b, err := NativeMint.MarshalText()
	require.NoError(t, err)
	var a Address
	require.NoError(t, a.UnmarshalText(b))
	require.Equal(t, NativeMint, a)

	_, err = AddressFromString("abc")
	require.ErrorIs(t, err, ErrInvalidAddress)
	_, err = AddressFromBytes([]byte{1, 2})
	require.ErrorIs(t, err, ErrInvalidAddress)
}

func TestRentExemptMinimum(t *testing.T) {
	require.EqualValues(t, 890_880, RentExemptMinimum(0))
	require.Greater(t, RentExemptMinimum(100), RentExemptMinimum(10))
}
