package util

import (
	"errors"
	"fmt"
	"math"

	"github.com/holiman/uint256"
)

var ErrOverflow = errors.New("uint64 overflow")

// AddUint64 adds a list of uint64s together, returning an error and a boolean indicator if the sum overflows uint64.
func AddUint64(ns ...uint64) (sum uint64, overflow bool, err error) {
	if len(ns) == 0 {
		return 0, false, nil
	}
	sum = ns[0]
	for i := 1; i < len(ns); i++ {
		n := ns[i]
		if n > math.MaxUint64-sum {
			overflow = true
		}
		sum += n
	}

	if overflow {
		err = fmt.Errorf("%w: sum of %v", ErrOverflow, ns)
	}

	return
}

// MulUint64 returns a*b or ErrOverflow when the product does not fit into uint64.
func MulUint64(a, b uint64) (uint64, error) {
	p, overflow := new(uint256.Int).MulOverflow(uint256.NewInt(a), uint256.NewInt(b))
	if overflow || !p.IsUint64() {
		return 0, fmt.Errorf("%w: %d * %d", ErrOverflow, a, b)
	}
	return p.Uint64(), nil
}

// BasisPoints returns amount*bps/10000 rounded down. The intermediate product
// is computed in 256 bits so it can not overflow.
func BasisPoints(amount uint64, bps uint16) uint64 {
	p := new(uint256.Int).Mul(uint256.NewInt(amount), uint256.NewInt(uint64(bps)))
	return p.Div(p, uint256.NewInt(10_000)).Uint64()
}
