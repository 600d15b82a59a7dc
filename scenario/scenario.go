package scenario

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/alphabill-org/auctionhouse/txsystem/auctionhouse"
)

// Operations a scenario step can perform.
const (
	OpCreateAuctionHouse  = "create_auction_house"
	OpSell                = "sell"
	OpDeposit             = "deposit"
	OpBuy                 = "buy"
	OpExecuteSale         = "execute_sale"
	OpExecuteSaleReversed = "execute_sale_reversed"
	OpRefund              = "refund"
	OpCancel              = "cancel"
)

const (
	RoleSeller = "seller"
	RoleBuyer  = "buyer"

	ExpectOK      = "ok"
	ExpectFailure = "fail"
)

type (
	Scenario struct {
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
		Price       uint64 `yaml:"price"`
		Size        uint64 `yaml:"size"`
		FeeBps      uint16 `yaml:"fee_bps"`
		RoyaltyBps  uint16 `yaml:"royalty_bps"`
		Steps       []Step `yaml:"steps"`
	}

	/*
	Step is a single batch. Price and Size default to the scenario values.
	Expect is "ok", "fail" or the name of the error code the batch must fail
	with.
	*/
	Step struct {
		Op     string `yaml:"op"`
		Name   string `yaml:"name"`
		Wallet string `yaml:"wallet"`
		Price  uint64 `yaml:"price"`
		Size   uint64 `yaml:"size"`
		// BuyPrice presents the buyer trade state of another price to execute_sale.
		BuyPrice uint64 `yaml:"buy_price"`
		// Amount of lamports for deposit and refund.
		Amount uint64 `yaml:"amount"`
		Expect string `yaml:"expect"`
	}
)

var validOps = map[string]struct{}{
	OpCreateAuctionHouse: {}, OpSell: {}, OpDeposit: {}, OpBuy: {},
	OpExecuteSale: {}, OpExecuteSaleReversed: {}, OpRefund: {}, OpCancel: {},
}

func LoadFile(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening scenario file: %w", err)
	}
	defer f.Close()
	return Load(f)
}

func Load(r io.Reader) (*Scenario, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	s := &Scenario{}
	if err := dec.Decode(s); err != nil {
		return nil, fmt.Errorf("decoding scenario: %w", err)
	}
	if err := s.IsValid(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scenario) IsValid() error {
	if s.Name == "" {
		return errors.New("scenario name is empty")
	}
	if s.Size == 0 {
		return fmt.Errorf("scenario %s: size is zero", s.Name)
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("scenario %s has no steps", s.Name)
	}
	for i, step := range s.Steps {
		if _, ok := validOps[step.Op]; !ok {
			return fmt.Errorf("step %d: unknown operation %q", i, step.Op)
		}
		if step.Wallet != "" && step.Wallet != RoleSeller && step.Wallet != RoleBuyer {
			return fmt.Errorf("step %d: unknown wallet %q", i, step.Wallet)
		}
		if _, err := step.expectation(); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
	}
	return nil
}

type expectation struct {
	ok   bool
	any  bool
	code auctionhouse.ErrorCode
}

func (s Step) expectation() (expectation, error) {
	switch s.Expect {
	case "", ExpectOK:
		return expectation{ok: true}, nil
	case ExpectFailure:
		return expectation{any: true}, nil
	}
	code, ok := auctionhouse.ErrorCodeByName(s.Expect)
	if !ok || code == auctionhouse.Success {
		return expectation{}, fmt.Errorf("unknown expectation %q", s.Expect)
	}
	return expectation{code: code}, nil
}

func (e expectation) String() string {
	switch {
	case e.ok:
		return ExpectOK
	case e.any:
		return "any failure"
	}
	return e.code.String()
}

func (s Step) title() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Op
}
