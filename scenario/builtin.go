package scenario

import (
	"fmt"
	"sort"

	"github.com/alphabill-org/auctionhouse/txsystem/auctionhouse"
)

const (
	defaultPrice = 8_000_000_000
	defaultSize  = 1
)

var builtins = map[string]func() *Scenario{
	"resurrection":       resurrection,
	"trade-state-switch": tradeStateSwitch,
	"mismatched-price":   mismatchedPrice,
}

// Builtin returns the named built-in scenario.
func Builtin(name string) (*Scenario, error) {
	f, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("unknown scenario %q, built-in scenarios: %v", name, BuiltinNames())
	}
	return f(), nil
}

func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func prelude() []Step {
	return []Step{
		{Op: OpCreateAuctionHouse, Name: "CREATE auction house"},
		{Op: OpSell, Name: "SELL seller's token"},
	}
}

func resurrection() *Scenario {
	notOpen := auctionhouse.NotOpen.String()
	return &Scenario{
		Name:        "resurrection",
		Description: "settle a sale, then replay the settlement before and after paying lamports into the consumed trade states",
		Price:       defaultPrice,
		Size:        defaultSize,
		Steps: append(prelude(),
			Step{Op: OpDeposit, Name: "DEPOSIT buyer", Wallet: RoleBuyer},
			Step{Op: OpBuy, Name: "BUY buyer"},
			Step{Op: OpExecuteSale, Name: "EXECUTE sale"},
			Step{Op: OpExecuteSale, Name: "EXECUTE sale again", Expect: notOpen},
			Step{Op: OpRefund, Name: "REFUND consumed trade states"},
			Step{Op: OpExecuteSale, Name: "EXECUTE sale after refund", Expect: notOpen},
		),
	}
}

func tradeStateSwitch() *Scenario {
	return &Scenario{
		Name:        "trade-state-switch",
		Description: "settle with the listing passed as the bid and the bid passed as the listing",
		Price:       defaultPrice,
		Size:        defaultSize,
		Steps: append(prelude(),
			Step{Op: OpDeposit, Name: "DEPOSIT seller", Wallet: RoleSeller},
			Step{Op: OpBuy, Name: "BUY buyer"},
			Step{Op: OpExecuteSaleReversed, Name: "EXECUTE sale in reverse", Expect: auctionhouse.InvalidTradeState.String()},
			Step{Op: OpExecuteSale, Name: "EXECUTE sale"},
		),
	}
}

func mismatchedPrice() *Scenario {
	return &Scenario{
		Name:        "mismatched-price",
		Description: "settle a listing with a bid of another price",
		Price:       defaultPrice,
		Size:        defaultSize,
		Steps: append(prelude(),
			Step{Op: OpBuy, Name: "BUY buyer at 1", Price: 1},
			Step{Op: OpExecuteSale, Name: "EXECUTE mismatched sale", BuyPrice: 1, Expect: auctionhouse.InvalidTradeState.String()},
		),
	}
}
