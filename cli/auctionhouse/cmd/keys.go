package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alphabill-org/auctionhouse/crypto"
	"github.com/alphabill-org/auctionhouse/scenario"
)

func newKeysCmd(_ *baseConfiguration) *cobra.Command {
	var count uint64
	var cmd = &cobra.Command{
		Use:   "keys",
		Short: "Prints the public keys of the deterministic harness keypairs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if count == 0 {
				return errors.New("count must be positive")
			}
			out := cmd.OutOrStdout()
			for i := uint64(1); i <= count; i++ {
				fmt.Fprintf(out, "%3d %s %s\n", i, crypto.Keypair(i).Address(), keyRole(i))
			}
			return nil
		},
	}
	cmd.Flags().Uint64VarP(&count, "count", "n", 4, "number of keypairs")
	return cmd
}

func keyRole(i uint64) string {
	switch crypto.Keypair(i).Address() {
	case scenario.Authority.Address():
		return "authority"
	case scenario.Seller.Address():
		return "seller"
	case scenario.Buyer.Address():
		return "buyer"
	case scenario.Mint:
		return "mint"
	}
	return ""
}
