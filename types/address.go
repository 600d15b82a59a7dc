package types

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/base58"
)

const AddressLength = 32

// Address identifies an account on the ledger. It is either an ed25519 public key
// or a program derived address (which has no private key).
type Address [AddressLength]byte

var ErrInvalidAddress = errors.New("invalid address")

// MustAddress decodes base58 encoded address and panics when it is not valid,
// meant for well known constant addresses only.
func MustAddress(s string) Address {
	a, err := AddressFromString(s)
	if err != nil {
		panic(err)
	}
	return a
}

func AddressFromString(s string) (Address, error) {
	b := base58.Decode(s)
	if len(b) != AddressLength {
		return Address{}, fmt.Errorf("%w: %q decodes to %d bytes", ErrInvalidAddress, s, len(b))
	}
	return Address(b), nil
}

func AddressFromBytes(b []byte) (Address, error) {
	if len(b) != AddressLength {
		return Address{}, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidAddress, AddressLength, len(b))
	}
	return Address(b), nil
}

func (a Address) Bytes() []byte {
	return a[:]
}

func (a Address) IsZero() bool {
	return a == Address{}
}

func (a Address) Compare(b Address) int {
	return bytes.Compare(a[:], b[:])
}

func (a Address) String() string {
	return base58.Encode(a[:])
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(src []byte) error {
	res, err := AddressFromString(string(src))
	if err != nil {
		return err
	}
	*a = res
	return nil
}
