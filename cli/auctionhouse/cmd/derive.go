package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alphabill-org/auctionhouse/scenario"
	"github.com/alphabill-org/auctionhouse/txsystem/auctionhouse"
	"github.com/alphabill-org/auctionhouse/txsystem/tokens"
	"github.com/alphabill-org/auctionhouse/types"
)

type deriveConfiguration struct {
	Authority    string
	TreasuryMint string
	Seller       string
	Buyer        string
	TokenAccount string
	Mint         string
	Price        uint64
	Size         uint64
}

func newDeriveCmd(_ *baseConfiguration) *cobra.Command {
	config := &deriveConfiguration{}
	var cmd = &cobra.Command{
		Use:   "derive",
		Short: "Prints the derived addresses of an order",
		Long: `Prints the auction house accounts and the sell, free sell, buy and free buy trade state addresses.
Addresses default to the keys of the built-in scenarios.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return derive(cmd, config)
		},
	}
	cmd.Flags().StringVar(&config.Authority, "authority", "", "auction house authority (default is the scenario authority)")
	cmd.Flags().StringVar(&config.TreasuryMint, "treasury-mint", types.NativeMint.String(), "mint of the payment currency")
	cmd.Flags().StringVar(&config.Seller, "seller", "", "seller wallet (default is the scenario seller)")
	cmd.Flags().StringVar(&config.Buyer, "buyer", "", "buyer wallet (default is the scenario buyer)")
	cmd.Flags().StringVar(&config.Mint, "mint", "", "mint of the traded token (default is the scenario mint)")
	cmd.Flags().StringVar(&config.TokenAccount, "token-account", "", "token account holding the traded token (default is the associated token account of the seller)")
	cmd.Flags().Uint64Var(&config.Price, "price", 8_000_000_000, "sale price")
	cmd.Flags().Uint64Var(&config.Size, "size", 1, "token amount")
	return cmd
}

func derive(cmd *cobra.Command, config *deriveConfiguration) error {
	authority, err := addressOrDefault(config.Authority, scenario.Authority.Address())
	if err != nil {
		return fmt.Errorf("invalid authority: %w", err)
	}
	treasuryMint, err := types.AddressFromString(config.TreasuryMint)
	if err != nil {
		return fmt.Errorf("invalid treasury mint: %w", err)
	}
	seller, err := addressOrDefault(config.Seller, scenario.Seller.Address())
	if err != nil {
		return fmt.Errorf("invalid seller: %w", err)
	}
	buyer, err := addressOrDefault(config.Buyer, scenario.Buyer.Address())
	if err != nil {
		return fmt.Errorf("invalid buyer: %w", err)
	}
	mint, err := addressOrDefault(config.Mint, scenario.Mint)
	if err != nil {
		return fmt.Errorf("invalid mint: %w", err)
	}
	tokenAccount, err := addressOrDefault(config.TokenAccount, tokens.AssociatedTokenAddress(seller, mint))
	if err != nil {
		return fmt.Errorf("invalid token account: %w", err)
	}

	market := auctionhouse.NewMarket(authority, treasuryMint)
	signer, signerBump := auctionhouse.ProgramSignerAddress()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-16s %s\n", "auction house", market.Address)
	fmt.Fprintf(out, "%-16s %s\n", "fee account", market.FeeAccount)
	fmt.Fprintf(out, "%-16s %s\n", "treasury", market.Treasury)
	fmt.Fprintf(out, "%-16s %s bump %d\n", "program signer", signer, signerBump)
	fmt.Fprintf(out, "%-16s %s\n", "buyer escrow", market.Escrow(buyer))

	orders := []struct {
		name string
		key  auctionhouse.TradeKey
	}{
		{name: "sell", key: market.TradeKey(seller, tokenAccount, mint, config.Price, config.Size)},
		{name: "free sell", key: market.TradeKey(seller, tokenAccount, mint, config.Price, config.Size).Free()},
		{name: "buy", key: market.TradeKey(buyer, tokenAccount, mint, config.Price, config.Size)},
		{name: "free buy", key: market.TradeKey(buyer, tokenAccount, mint, config.Price, config.Size).Free()},
	}
	for _, o := range orders {
		addr, bump := o.key.Address()
		fmt.Fprintf(out, "%-16s %s bump %d\n", o.name, addr, bump)
	}
	return nil
}

func addressOrDefault(s string, def types.Address) (types.Address, error) {
	if s == "" {
		return def, nil
	}
	return types.AddressFromString(s)
}
