package crypto

import (
	"github.com/alphabill-org/auctionhouse/types"
)

type (
	// Signer component for digitally signing data.
	Signer interface {
		// SignBytes signs the data using the private key specified by the Signer.
		// Returns signature bytes or error.
		SignBytes(data []byte) ([]byte, error)
		// Address returns the account address (public key) of the Signer.
		Address() types.Address
		// Verifier returns a verifier that verifies using the public key part.
		Verifier() Verifier
	}

	// Verifier component for verifying signatures.
	Verifier interface {
		// VerifyBytes verifies the bytes against the signature, using the internal public key.
		VerifyBytes(sig []byte, data []byte) error
		// Address returns the public key as account address.
		Address() types.Address
	}
)
