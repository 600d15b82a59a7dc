package tokens

import (
	"errors"
	"fmt"

	"github.com/alphabill-org/auctionhouse/state"
	"github.com/alphabill-org/auctionhouse/types"
)

// Account data kinds, the first element of every encoded record.
const (
	KindMint         uint8 = 1
	KindTokenAccount uint8 = 2
	KindMetadata     uint8 = 3
)

const MaxCreators = 5

var (
	ErrInvalidAccountData = errors.New("invalid account data")
	ErrInsufficientTokens = errors.New("insufficient tokens")
	ErrMintMismatch       = errors.New("mint mismatch")
	ErrNotAuthorized      = errors.New("authority is neither the owner nor the delegate")
)

type (
	Mint struct {
		_             struct{} `cbor:",toarray"`
		Kind          uint8
		Decimals      uint8
		Supply        uint64
		MintAuthority types.Address
	}

	// TokenAccount holds Amount tokens of Mint for Owner. Delegate may move up
	// to DelegatedAmount tokens on behalf of the owner.
	TokenAccount struct {
		_               struct{} `cbor:",toarray"`
		Kind            uint8
		Mint            types.Address
		Owner           types.Address
		Amount          uint64
		Delegate        types.Address
		DelegatedAmount uint64
	}

	Creator struct {
		_        struct{} `cbor:",toarray"`
		Address  types.Address
		Verified bool
		Share    uint8
	}

	// Metadata describes the royalty terms of a mint.
	Metadata struct {
		_                    struct{} `cbor:",toarray"`
		Kind                 uint8
		Mint                 types.Address
		UpdateAuthority      types.Address
		Name                 string
		SellerFeeBasisPoints uint16
		Creators             []*Creator
	}
)

func NewMint(decimals uint8, supply uint64, authority types.Address) *Mint {
	return &Mint{Kind: KindMint, Decimals: decimals, Supply: supply, MintAuthority: authority}
}

func NewTokenAccount(mint, owner types.Address, amount uint64) *TokenAccount {
	return &TokenAccount{Kind: KindTokenAccount, Mint: mint, Owner: owner, Amount: amount}
}

func NewMetadata(mint, updateAuthority types.Address, name string, sellerFeeBps uint16, creators ...*Creator) *Metadata {
	return &Metadata{
		Kind:                 KindMetadata,
		Mint:                 mint,
		UpdateAuthority:      updateAuthority,
		Name:                 name,
		SellerFeeBasisPoints: sellerFeeBps,
		Creators:             creators,
	}
}

func (ta *TokenAccount) HasDelegate() bool {
	return !ta.Delegate.IsZero() && ta.DelegatedAmount > 0
}

func (md *Metadata) IsValid() error {
	if md.SellerFeeBasisPoints > 10000 {
		return fmt.Errorf("seller fee basis points %d exceeds 10000", md.SellerFeeBasisPoints)
	}
	if len(md.Creators) > MaxCreators {
		return fmt.Errorf("too many creators: %d", len(md.Creators))
	}
	if len(md.Creators) == 0 {
		return nil
	}
	var total uint
	for _, c := range md.Creators {
		if c == nil {
			return errors.New("creator is nil")
		}
		total += uint(c.Share)
	}
	if total != 100 {
		return fmt.Errorf("creator shares must add up to 100, got %d", total)
	}
	return nil
}

/*
NewAccount encodes data into a rent exempt account owned by owner. Used to
build the initial state.
*/
func NewAccount(owner types.Address, data any) (*state.Account, error) {
	bs, err := types.Cbor.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encoding account data: %w", err)
	}
	return &state.Account{Lamports: types.RentExemptMinimum(len(bs)), Owner: owner, Data: bs}, nil
}

func DecodeMint(acc *state.Account) (*Mint, error) {
	m := &Mint{}
	if err := decode(acc, types.TokenProgramID, m); err != nil {
		return nil, err
	}
	if m.Kind != KindMint {
		return nil, fmt.Errorf("%w: kind %d is not a mint", ErrInvalidAccountData, m.Kind)
	}
	return m, nil
}

func DecodeTokenAccount(acc *state.Account) (*TokenAccount, error) {
	ta := &TokenAccount{}
	if err := decode(acc, types.TokenProgramID, ta); err != nil {
		return nil, err
	}
	if ta.Kind != KindTokenAccount {
		return nil, fmt.Errorf("%w: kind %d is not a token account", ErrInvalidAccountData, ta.Kind)
	}
	return ta, nil
}

func DecodeMetadata(acc *state.Account) (*Metadata, error) {
	md := &Metadata{}
	if err := decode(acc, types.MetadataProgramID, md); err != nil {
		return nil, err
	}
	if md.Kind != KindMetadata {
		return nil, fmt.Errorf("%w: kind %d is not metadata", ErrInvalidAccountData, md.Kind)
	}
	return md, nil
}

func decode(acc *state.Account, owner types.Address, v any) error {
	if !acc.HasData() {
		return fmt.Errorf("%w: account is not initialized", ErrInvalidAccountData)
	}
	if acc.Owner != owner {
		return fmt.Errorf("%w: account is owned by %s", ErrInvalidAccountData, acc.Owner)
	}
	if err := types.Cbor.Unmarshal(acc.Data, v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidAccountData, err)
	}
	return nil
}
