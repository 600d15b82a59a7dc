package txsystem

import (
	"crypto"
	"errors"
	"fmt"

	abcrypto "github.com/alphabill-org/auctionhouse/crypto"
	"github.com/alphabill-org/auctionhouse/types"
)

var (
	ErrNoInstructions   = errors.New("transaction has no instructions")
	ErrMissingSignature = errors.New("missing required signature")
	ErrInvalidSignature = errors.New("invalid signature")
)

type (
	// Instruction is a call to a single program. Attributes are the CBOR
	// encoded arguments of the instruction type.
	Instruction struct {
		_          struct{} `cbor:",toarray"`
		ProgramID  types.Address
		Type       string
		Attributes types.RawCBOR
	}

	Signature struct {
		_      struct{} `cbor:",toarray"`
		PubKey types.Address
		Sig    []byte
	}

	/*
	Transaction is a batch of instructions executed as a single atomic unit:
	either all instructions succeed or none of their effects are visible.
	*/
	Transaction struct {
		_            struct{} `cbor:",toarray"`
		Instructions []*Instruction
		Nonce        uint64
		Signatures   []*Signature
	}

	// transaction without signatures, the signed part
	txPayload struct {
		_            struct{} `cbor:",toarray"`
		Instructions []*Instruction
		Nonce        uint64
	}
)

func NewInstruction(programID types.Address, txType string, attr any) (*Instruction, error) {
	bs, err := types.Cbor.Marshal(attr)
	if err != nil {
		return nil, fmt.Errorf("encoding %s attributes: %w", txType, err)
	}
	return &Instruction{ProgramID: programID, Type: txType, Attributes: bs}, nil
}

func (i *Instruction) UnmarshalAttributes(v any) error {
	if i == nil {
		return errors.New("instruction is nil")
	}
	return types.Cbor.Unmarshal(i.Attributes, v)
}

func NewTransaction(nonce uint64, instructions ...*Instruction) *Transaction {
	return &Transaction{Instructions: instructions, Nonce: nonce}
}

// SigBytes returns the bytes covered by the signatures.
func (tx *Transaction) SigBytes() ([]byte, error) {
	return types.Cbor.Marshal(&txPayload{Instructions: tx.Instructions, Nonce: tx.Nonce})
}

// Sign adds a signature of every signer. Signing twice with the same key replaces the earlier signature.
func (tx *Transaction) Sign(signers ...abcrypto.Signer) error {
	sigBytes, err := tx.SigBytes()
	if err != nil {
		return fmt.Errorf("encoding transaction: %w", err)
	}
	for _, signer := range signers {
		if signer == nil {
			return abcrypto.ErrSignerIsNil
		}
		sig, err := signer.SignBytes(sigBytes)
		if err != nil {
			return fmt.Errorf("signing transaction: %w", err)
		}
		tx.setSignature(signer.Address(), sig)
	}
	return nil
}

func (tx *Transaction) setSignature(pubKey types.Address, sig []byte) {
	for _, s := range tx.Signatures {
		if s.PubKey == pubKey {
			s.Sig = sig
			return
		}
	}
	tx.Signatures = append(tx.Signatures, &Signature{PubKey: pubKey, Sig: sig})
}

/*
VerifySignatures checks every attached signature and returns the set of
addresses that signed the transaction.
*/
func (tx *Transaction) VerifySignatures() (map[types.Address]struct{}, error) {
	sigBytes, err := tx.SigBytes()
	if err != nil {
		return nil, fmt.Errorf("encoding transaction: %w", err)
	}
	signers := make(map[types.Address]struct{}, len(tx.Signatures))
	for _, s := range tx.Signatures {
		if s == nil {
			return nil, fmt.Errorf("%w: signature is nil", ErrInvalidSignature)
		}
		if err := abcrypto.NewVerifierFromAddress(s.PubKey).VerifyBytes(s.Sig, sigBytes); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidSignature, s.PubKey, err)
		}
		signers[s.PubKey] = struct{}{}
	}
	return signers, nil
}

func (tx *Transaction) Hash(algorithm crypto.Hash) []byte {
	bs, err := types.Cbor.Marshal(tx)
	if err != nil {
		return nil
	}
	hasher := algorithm.New()
	hasher.Write(bs)
	return hasher.Sum(nil)
}
