package types

import (
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

type cborHandler struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

// Cbor is the deterministic CBOR codec used for account data, instruction
// attributes and records.
var Cbor = newCborHandler()

func newCborHandler() cborHandler {
	enc, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(fmt.Errorf("creating CBOR encoder mode: %w", err))
	}
	dec, err := cbor.DecOptions{MaxArrayElements: 1 << 16, MaxMapPairs: 1 << 16}.DecMode()
	if err != nil {
		panic(fmt.Errorf("creating CBOR decoder mode: %w", err))
	}
	return cborHandler{enc: enc, dec: dec}
}

func (c cborHandler) Marshal(v any) ([]byte, error) {
	return c.enc.Marshal(v)
}

func (c cborHandler) Unmarshal(data []byte, v any) error {
	return c.dec.Unmarshal(data, v)
}

func (c cborHandler) GetEncoder(w io.Writer) *cbor.Encoder {
	return c.enc.NewEncoder(w)
}

func (c cborHandler) GetDecoder(r io.Reader) *cbor.Decoder {
	return c.dec.NewDecoder(r)
}

// RawCBOR is an already encoded CBOR value, embedded as is.
type RawCBOR = cbor.RawMessage
