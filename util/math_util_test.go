package util

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddUint64(t *testing.T) {
	t.Parallel()
	cases := []struct {
		args    []uint64
		want    uint64
		wantErr bool
	}{
		{nil, 0, false},
		{[]uint64{}, 0, false},
		{[]uint64{0}, 0, false},
		{[]uint64{1}, 1, false},
		{[]uint64{math.MaxUint64}, math.MaxUint64, false},
		{[]uint64{1, 2, 3}, 6, false},
		{[]uint64{math.MaxUint64, 1}, 0, true},
		{[]uint64{math.MaxUint64 - 1, 1}, math.MaxUint64, false},
	}
	for _, c := range cases {
		sum, overflow, err := AddUint64(c.args...)
		if c.wantErr {
			require.True(t, overflow)
			require.ErrorIs(t, err, ErrOverflow)
			continue
		}
		require.False(t, overflow)
		require.NoError(t, err)
		require.Equal(t, c.want, sum)
	}
}

func TestMulUint64(t *testing.T) {
	p, err := MulUint64(8_000_000_000, 1)
	require.NoError(t, err)
	require.EqualValues(t, 8_000_000_000, p)

	p, err = MulUint64(0, math.MaxUint64)
	require.NoError(t, err)
	require.Zero(t, p)

	_, err = MulUint64(math.MaxUint64, 2)
	require.ErrorIs(t, err, ErrOverflow)

	_, err = MulUint64(1<<32, 1<<32)
	require.ErrorIs(t, err, ErrOverflow)
}

func TestBasisPoints(t *testing.T) {
	require.EqualValues(t, 0, BasisPoints(8_000_000_000, 0))
	require.EqualValues(t, 200_000_000, BasisPoints(8_000_000_000, 250))
	require.EqualValues(t, 8_000_000_000, BasisPoints(8_000_000_000, 10_000))
	require.EqualValues(t, 0, BasisPoints(9, 1000))
	require.EqualValues(t, uint64(math.MaxUint64/2), BasisPoints(math.MaxUint64, 5_000))
}

func TestConverters(t *testing.T) {
	require.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0, 1}, Uint64ToBytes(1))
	require.EqualValues(t, 1, BytesToUint64(Uint64ToBytes(1)))
	require.Equal(t, []byte{1, 0, 0, 0, 0, 0, 0, 0}, Uint64ToLEBytes(1))
	require.Equal(t, []byte{0x00, 0x50, 0xd6, 0xdc, 0x01, 0x00, 0x00, 0x00}, Uint64ToLEBytes(8_000_000_000))
}
