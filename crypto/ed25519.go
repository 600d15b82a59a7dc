package crypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/alphabill-org/auctionhouse/types"
)

var (
	ErrSignerIsNil        = errors.New("signer is nil")
	ErrVerifierIsNil      = errors.New("verifier is nil")
	ErrInvalidSignature   = errors.New("signature verification failed")
	ErrInvalidSignatureLn = errors.New("invalid signature length")
)

// keypairSalt makes Keypair(i) keys specific to this project.
var keypairSalt = []byte("auctionhouse keypair")

type (
	// InMemoryEd25519Signer for using during development
	InMemoryEd25519Signer struct {
		key ed25519.PrivateKey
	}

	Ed25519Verifier struct {
		key ed25519.PublicKey
	}
)

// NewInMemoryEd25519Signer generates new key and creates a new InMemoryEd25519Signer.
func NewInMemoryEd25519Signer() (*InMemoryEd25519Signer, error) {
	_, privateKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	return NewInMemoryEd25519SignerFromSeed(privateKey.Seed()), nil
}

// NewInMemoryEd25519SignerFromSeed creates new InMemoryEd25519Signer from private key seed bytes.
func NewInMemoryEd25519SignerFromSeed(seed []byte) *InMemoryEd25519Signer {
	privKey := ed25519.NewKeyFromSeed(seed) // will panic if key is incorrect
	return &InMemoryEd25519Signer{key: privKey}
}

/*
Keypair returns the i-th deterministic keypair. Scenarios use these so that
every run works with the same wallets (and thus the same derived addresses).
*/
func Keypair(i uint64) *InMemoryEd25519Signer {
	info := binary.BigEndian.AppendUint64(nil, i)
	seed := make([]byte, ed25519.SeedSize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, info, keypairSalt, nil), seed); err != nil {
		panic(fmt.Errorf("deriving keypair %d: %w", i, err))
	}
	return NewInMemoryEd25519SignerFromSeed(seed)
}

func (s *InMemoryEd25519Signer) SignBytes(data []byte) ([]byte, error) {
	if s == nil {
		return nil, ErrSignerIsNil
	}
	return ed25519.Sign(s.key, data), nil
}

func (s *InMemoryEd25519Signer) Address() types.Address {
	return types.Address(s.key.Public().(ed25519.PublicKey))
}

func (s *InMemoryEd25519Signer) Verifier() Verifier {
	return &Ed25519Verifier{key: s.key.Public().(ed25519.PublicKey)}
}

func NewVerifierFromAddress(addr types.Address) *Ed25519Verifier {
	return &Ed25519Verifier{key: ed25519.PublicKey(addr.Bytes())}
}

func (v *Ed25519Verifier) VerifyBytes(sig []byte, data []byte) error {
	if v == nil {
		return ErrVerifierIsNil
	}
	if len(sig) != ed25519.SignatureSize {
		return fmt.Errorf("%w: %d", ErrInvalidSignatureLn, len(sig))
	}
	if !ed25519.Verify(v.key, data, sig) {
		return ErrInvalidSignature
	}
	return nil
}

func (v *Ed25519Verifier) Address() types.Address {
	return types.Address(v.key)
}
