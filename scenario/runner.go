package scenario

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/alphabill-org/auctionhouse/crypto"
	"github.com/alphabill-org/auctionhouse/keyvaluedb"
	"github.com/alphabill-org/auctionhouse/localnet"
	"github.com/alphabill-org/auctionhouse/logger"
	"github.com/alphabill-org/auctionhouse/txsystem"
	"github.com/alphabill-org/auctionhouse/txsystem/auctionhouse"
	"github.com/alphabill-org/auctionhouse/txsystem/money"
	"github.com/alphabill-org/auctionhouse/txsystem/tokens"
	"github.com/alphabill-org/auctionhouse/types"
	"github.com/alphabill-org/auctionhouse/util"
)

const (
	authorityLamports = 1_000_000_000
	walletLamports    = 100_000_000_000
	// refund sent to every consumed trade state when no amount is given
	defaultRefund = 1_000_000
)

// Participants of every scenario, the keys are deterministic.
var (
	Authority = crypto.Keypair(1)
	Seller    = crypto.Keypair(2)
	Buyer     = crypto.Keypair(3)
	Mint      = crypto.Keypair(4).Address()
)

type (
	Runner struct {
		log *zerolog.Logger
		out io.Writer
		db  keyvaluedb.KeyValueDB
	}

	Option func(r *Runner)

	// Run is a scenario being executed, valid until Close.
	Run struct {
		Scenario *Scenario
		Env      *localnet.Environment
		Market   *auctionhouse.Market
		out      io.Writer
		log      *zerolog.Logger
	}
)

func WithOutput(w io.Writer) Option {
	return func(r *Runner) { r.out = w }
}

// WithRecordStore keeps the transaction records of the run in db.
func WithRecordStore(db keyvaluedb.KeyValueDB) Option {
	return func(r *Runner) { r.db = db }
}

func NewRunner(log *zerolog.Logger, opts ...Option) *Runner {
	r := &Runner{log: log, out: io.Discard}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

/*
Start creates a fresh ledger for the scenario: the authority, the seller and
the buyer get lamports, the seller owns Size tokens of Mint and the buyer has
an empty token account of it.
*/
func (r *Runner) Start(s *Scenario) (*Run, error) {
	if err := s.IsValid(); err != nil {
		return nil, err
	}
	b := localnet.NewBuilder().
		WithLamports(Authority.Address(), authorityLamports).
		WithLamports(Seller.Address(), walletLamports).
		WithLamports(Buyer.Address(), walletLamports).
		WithMint(Mint, 0, s.Size, Seller.Address()).
		WithAssociatedTokens(Seller.Address(), Mint, s.Size).
		WithAssociatedTokens(Buyer.Address(), Mint, 0).
		WithOutput(r.out)
	if s.RoyaltyBps > 0 {
		b.WithMetadata(Mint, Seller.Address(), s.RoyaltyBps, &tokens.Creator{Address: Seller.Address(), Verified: true, Share: 100})
	}
	if r.db != nil {
		b.WithRecordStore(r.db)
	}
	env, err := b.Build(r.log)
	if err != nil {
		return nil, fmt.Errorf("building environment: %w", err)
	}
	return &Run{
		Scenario: s,
		Env:      env,
		Market:   auctionhouse.NewMarket(Authority.Address(), types.NativeMint),
		out:      r.out,
		log:      r.log,
	}, nil
}

// Execute runs every step of the scenario on a fresh ledger and judges the outcomes.
func (r *Runner) Execute(s *Scenario) (*Result, error) {
	run, err := r.Start(s)
	if err != nil {
		return nil, err
	}
	defer run.Close()
	return run.Execute()
}

/*
Execute submits the steps of the scenario in order. The ledger of the run stays
available for inspection until Close.
*/
func (run *Run) Execute() (*Result, error) {
	s := run.Scenario
	fmt.Fprintf(run.out, "=== %s\n", s.Name)
	res := &Result{Scenario: s.Name}
	for i, step := range s.Steps {
		o, err := run.Step(step)
		if err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i, step.title(), err)
		}
		exp, _ := step.expectation()
		res.add(step, exp, o)
	}
	run.log.Info().Str("scenario", s.Name).Bool("passed", res.Passed()).Int("defects", len(res.Defects())).Msg("scenario finished")
	return res, nil
}

// Step submits the batch of the step.
func (run *Run) Step(step Step) (*localnet.Outcome, error) {
	price, size := step.Price, step.Size
	if price == 0 {
		price = run.Scenario.Price
	}
	if size == 0 {
		size = run.Scenario.Size
	}
	seller, buyer := Seller.Address(), Buyer.Address()
	sellerTokens := tokens.AssociatedTokenAddress(seller, Mint)
	m := run.Market

	var (
		ins     *txsystem.Instruction
		signers []crypto.Signer
		err     error
	)
	switch step.Op {
	case OpCreateAuctionHouse:
		ins, err = m.Create(Authority.Address(), run.Scenario.FeeBps, false, true)
		signers = []crypto.Signer{Authority}
	case OpSell:
		ins, err = m.Sell(seller, sellerTokens, price, size)
		signers = []crypto.Signer{Seller}
	case OpDeposit:
		wallet := run.wallet(step, Buyer)
		amount := step.Amount
		if amount == 0 {
			if amount, err = util.MulUint64(price, size); err != nil {
				return nil, fmt.Errorf("deposit amount: %w", err)
			}
		}
		ins, err = m.Deposit(wallet.Address(), amount)
		signers = []crypto.Signer{wallet}
	case OpBuy:
		ins, err = m.Buy(buyer, sellerTokens, price, size)
		signers = []crypto.Signer{Buyer}
	case OpExecuteSale:
		attr := m.ExecuteSaleAttributes(buyer, seller, sellerTokens, Mint, price, size)
		if step.BuyPrice != 0 {
			attr.BuyerTradeState, _ = m.TradeKey(buyer, sellerTokens, Mint, step.BuyPrice, size).Address()
		}
		ins, err = m.ExecuteSale(attr)
		signers = []crypto.Signer{Buyer}
	case OpExecuteSaleReversed:
		// the listing is presented as the bid and the bid as the listing
		ins, err = m.ExecuteSale(m.ExecuteSaleAttributes(seller, buyer, sellerTokens, Mint, price, size))
		signers = []crypto.Signer{Buyer}
	case OpRefund:
		return run.refund(step, price, size)
	case OpCancel:
		wallet := run.wallet(step, Seller)
		ins, err = m.Cancel(wallet.Address(), sellerTokens, Mint, price, size)
		signers = []crypto.Signer{wallet}
	default:
		return nil, fmt.Errorf("unknown operation %q", step.Op)
	}
	if err != nil {
		return nil, fmt.Errorf("building %s instruction: %w", step.Op, err)
	}
	return run.Env.Submit(step.title(), signers, ins)
}

/*
refund sends lamports from the buyer to every trade state of the sale: the
listing, its free trade state and the bid. Paying into an address is allowed
for anyone and is the first step of an attempt to revive a consumed order.
*/
func (run *Run) refund(step Step, price, size uint64) (*localnet.Outcome, error) {
	amount := step.Amount
	if amount == 0 {
		amount = defaultRefund
	}
	sellerTokens := tokens.AssociatedTokenAddress(Seller.Address(), Mint)
	sellKey := run.Market.TradeKey(Seller.Address(), sellerTokens, Mint, price, size)
	sellTS, _ := sellKey.Address()
	freeTS, _ := sellKey.Free().Address()
	buyTS, _ := run.Market.TradeKey(Buyer.Address(), sellerTokens, Mint, price, size).Address()

	var instructions []*txsystem.Instruction
	for _, addr := range []types.Address{freeTS, sellTS, buyTS} {
		ins, err := money.NewTransfer(Buyer.Address(), addr, amount)
		if err != nil {
			return nil, fmt.Errorf("building refund of %s: %w", addr, err)
		}
		instructions = append(instructions, ins)
	}
	o, err := run.Env.Submit(step.title(), []crypto.Signer{Buyer}, instructions...)
	if err == nil {
		run.Env.Log().Debug().Func(logger.Address(sellTS)).Uint64("amount", amount).Msg("trade states refunded")
	}
	return o, err
}

func (run *Run) wallet(step Step, def crypto.Signer) crypto.Signer {
	switch step.Wallet {
	case RoleSeller:
		return Seller
	case RoleBuyer:
		return Buyer
	}
	return def
}

func (run *Run) Close() error { return run.Env.Close() }
