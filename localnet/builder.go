package localnet

import (
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/alphabill-org/auctionhouse/keyvaluedb"
	"github.com/alphabill-org/auctionhouse/keyvaluedb/memorydb"
	"github.com/alphabill-org/auctionhouse/state"
	"github.com/alphabill-org/auctionhouse/txsystem"
	"github.com/alphabill-org/auctionhouse/txsystem/auctionhouse"
	"github.com/alphabill-org/auctionhouse/txsystem/money"
	"github.com/alphabill-org/auctionhouse/txsystem/tokens"
	"github.com/alphabill-org/auctionhouse/types"
)

/*
Builder describes the genesis of a local ledger: funded wallets, token mints,
token accounts and metadata. Every Build call creates an independent
environment.
*/
type Builder struct {
	accounts map[types.Address]*state.Account
	order    []types.Address
	db       keyvaluedb.KeyValueDB
	out      io.Writer
	errs     []error
}

func NewBuilder() *Builder {
	return &Builder{accounts: make(map[types.Address]*state.Account)}
}

// WithLamports credits lamports to the system account at addr.
func (b *Builder) WithLamports(addr types.Address, lamports uint64) *Builder {
	acc := b.account(addr)
	acc.Lamports += lamports
	return b
}

func (b *Builder) WithMint(mint types.Address, decimals uint8, supply uint64, authority types.Address) *Builder {
	return b.withData(mint, types.TokenProgramID, tokens.NewMint(decimals, supply, authority))
}

// WithAssociatedTokens creates the associated token account of owner holding amount tokens of mint.
func (b *Builder) WithAssociatedTokens(owner, mint types.Address, amount uint64) *Builder {
	return b.withData(tokens.AssociatedTokenAddress(owner, mint), types.TokenProgramID, tokens.NewTokenAccount(mint, owner, amount))
}

func (b *Builder) WithMetadata(mint, updateAuthority types.Address, sellerFeeBps uint16, creators ...*tokens.Creator) *Builder {
	md := tokens.NewMetadata(mint, updateAuthority, "", sellerFeeBps, creators...)
	if err := md.IsValid(); err != nil {
		b.errs = append(b.errs, fmt.Errorf("metadata of %s: %w", mint, err))
		return b
	}
	return b.withData(tokens.MetadataAddress(mint), types.MetadataProgramID, md)
}

// WithRecordStore sets the database of transaction records, in-memory by default.
func (b *Builder) WithRecordStore(db keyvaluedb.KeyValueDB) *Builder {
	b.db = db
	return b
}

// WithOutput sets the writer batch outcomes are printed to, nothing is printed by default.
func (b *Builder) WithOutput(w io.Writer) *Builder {
	b.out = w
	return b
}

func (b *Builder) account(addr types.Address) *state.Account {
	acc, ok := b.accounts[addr]
	if !ok {
		acc = &state.Account{Owner: types.SystemProgramID}
		b.accounts[addr] = acc
		b.order = append(b.order, addr)
	}
	return acc
}

func (b *Builder) withData(addr, owner types.Address, data any) *Builder {
	acc, err := tokens.NewAccount(owner, data)
	if err != nil {
		b.errs = append(b.errs, fmt.Errorf("account %s: %w", addr, err))
		return b
	}
	existing := b.account(addr)
	if existing.HasData() {
		b.errs = append(b.errs, fmt.Errorf("account %s is defined twice", addr))
		return b
	}
	existing.Owner = acc.Owner
	existing.Data = acc.Data
	existing.Lamports += acc.Lamports
	return b
}

// Build creates the ledger with the auction house, token and system programs.
func (b *Builder) Build(log *zerolog.Logger) (*Environment, error) {
	if err := errors.Join(b.errs...); err != nil {
		return nil, err
	}
	if log == nil {
		return nil, errors.New("logger is nil")
	}
	opts := make([]state.Option, 0, len(b.order))
	for _, addr := range b.order {
		opts = append(opts, state.WithAccount(addr, b.accounts[addr]))
	}
	db := b.db
	if db == nil {
		db = memorydb.New()
	}
	store, err := NewRecordStore(db)
	if err != nil {
		return nil, fmt.Errorf("opening record store: %w", err)
	}

	txs, err := txsystem.NewGenericTxSystem([]txsystem.Module{
		money.NewMoneyModule(log),
		tokens.NewTokensModule(log),
		tokens.NewAssociatedTokenModule(log),
		auctionhouse.NewAuctionHouseModule(log),
	}, log, txsystem.WithState(state.NewEmptyState(opts...)))
	if err != nil {
		return nil, fmt.Errorf("creating tx system: %w", err)
	}
	out := b.out
	if out == nil {
		out = io.Discard
	}
	return &Environment{txs: txs, records: store, out: out, log: log}, nil
}
