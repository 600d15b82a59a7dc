package types

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"filippo.io/edwards25519"
)

const (
	MaxSeeds      = 16
	MaxSeedLength = 32

	pdaMarker = "ProgramDerivedAddress"
)

var (
	ErrMaxSeedLengthExceeded = errors.New("max seed length exceeded")
	ErrInvalidSeeds          = errors.New("provided seeds do not result in a valid address")
	// ErrNoViableBump is returned when none of the 256 bump values yields an
	// address off the ed25519 curve. Not expected to ever happen.
	ErrNoViableBump = errors.New("unable to find a viable program address bump seed")
)

/*
CreateProgramAddress derives address from the seeds and program ID. The result
must not be a valid ed25519 point, so that no private key can exist for it.

The hash is sha256(seed_0 || ... || seed_n || programID || "ProgramDerivedAddress").
*/
func CreateProgramAddress(seeds [][]byte, programID Address) (Address, error) {
	if len(seeds) > MaxSeeds {
		return Address{}, fmt.Errorf("%w: %d seeds", ErrMaxSeedLengthExceeded, len(seeds))
	}
	hasher := sha256.New()
	for i, s := range seeds {
		if len(s) > MaxSeedLength {
			return Address{}, fmt.Errorf("%w: seed %d is %d bytes", ErrMaxSeedLengthExceeded, i, len(s))
		}
		hasher.Write(s)
	}
	hasher.Write(programID[:])
	hasher.Write([]byte(pdaMarker))
	var addr Address
	copy(addr[:], hasher.Sum(nil))
	if IsOnCurve(addr[:]) {
		return Address{}, ErrInvalidSeeds
	}
	return addr, nil
}

/*
FindProgramAddress searches for the first bump (starting from 255 downwards)
which, appended to the seeds, produces an address off the curve. Returns the
address and the bump ("discriminant"). The result is a pure function of the
input, calling it again with the same seeds gives the same pair.
*/
func FindProgramAddress(seeds [][]byte, programID Address) (Address, uint8, error) {
	if len(seeds) >= MaxSeeds {
		return Address{}, 0, fmt.Errorf("%w: %d seeds, bump needs a slot", ErrMaxSeedLengthExceeded, len(seeds))
	}
	bumpSeed := []byte{0}
	withBump := append(append(make([][]byte, 0, len(seeds)+1), seeds...), bumpSeed)
	for bump := 255; bump >= 0; bump-- {
		bumpSeed[0] = uint8(bump)
		addr, err := CreateProgramAddress(withBump, programID)
		switch {
		case err == nil:
			return addr, uint8(bump), nil
		case errors.Is(err, ErrInvalidSeeds):
			continue
		default:
			return Address{}, 0, err
		}
	}
	return Address{}, 0, ErrNoViableBump
}

// MustFindProgramAddress is FindProgramAddress for seeds known to be valid.
func MustFindProgramAddress(seeds [][]byte, programID Address) (Address, uint8) {
	addr, bump, err := FindProgramAddress(seeds, programID)
	if err != nil {
		panic(err)
	}
	return addr, bump
}

// IsOnCurve returns true when b is a valid compressed ed25519 point.
func IsOnCurve(b []byte) bool {
	_, err := new(edwards25519.Point).SetBytes(b)
	return err == nil
}
