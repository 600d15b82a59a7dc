package auctionhouse

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alphabill-org/auctionhouse/types"
)

func TestTradeKey_Address(t *testing.T) {
	key := TradeKey{
		Wallet:       types.Address{1},
		AuctionHouse: types.Address{2},
		TokenAccount: types.Address{3},
		TreasuryMint: types.NativeMint,
		TokenMint:    types.Address{5},
		Price:        8_000_000_000,
		Size:         1,
	}
	addr1, bump1 := key.Address()
	addr2, bump2 := key.Address()
	require.Equal(t, addr1, addr2)
	require.Equal(t, bump1, bump2)
	require.False(t, types.IsOnCurve(addr1.Bytes()))

	free, _ := key.Free().Address()
	require.NotEqual(t, addr1, free)
	require.Zero(t, key.Free().Price)
	require.EqualValues(t, 8_000_000_000, key.Price)

	// price and size are little endian fixed width
	seeds := key.Seeds()
	require.Len(t, seeds, 8)
	require.Equal(t, []byte("auction_house"), seeds[0])
	require.Equal(t, []byte{0x00, 0x50, 0xd6, 0xdc, 0x01, 0x00, 0x00, 0x00}, seeds[6])
	require.Equal(t, []byte{1, 0, 0, 0, 0, 0, 0, 0}, seeds[7])

	other := key
	other.Wallet = types.Address{9}
	otherAddr, _ := other.Address()
	require.NotEqual(t, addr1, otherAddr)
	other = key
	other.Size = 2
	otherAddr, _ = other.Address()
	require.NotEqual(t, addr1, otherAddr)
}

func TestMarketAddresses(t *testing.T) {
	authority := types.Address{7}
	m := NewMarket(authority, types.NativeMint)
	ah, _ := AuctionHouseAddress(authority, types.NativeMint)
	require.Equal(t, ah, m.Address)

	addrs := map[types.Address]string{}
	for name, addr := range map[string]types.Address{
		"auction house": m.Address,
		"fee account":   m.FeeAccount,
		"treasury":      m.Treasury,
		"escrow":        m.Escrow(types.Address{8}),
	} {
		require.NotContains(t, addrs, addr, name)
		addrs[addr] = name
	}
	require.Equal(t, m.Escrow(types.Address{8}), m.Escrow(types.Address{8}))

	signer1, bump1 := ProgramSignerAddress()
	signer2, bump2 := ProgramSignerAddress()
	require.Equal(t, signer1, signer2)
	require.Equal(t, bump1, bump2)
}
