package cmd

import (
	"fmt"

	"erc20/sender/internal/utils/amount"

	"github.com/spf13/cobra"
)

var balanceCmd = &cobra.Command{
	Use:   "balance <token symbol or address>",
	Short: "Show the sender's balance of a token",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		a, _, err := loadApp()
		if err != nil {
			return err
		}
		defer a.Close()

		tok, units, err := a.Form.Balance(c.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(c.OutOrStdout(), "%s %s (%s)\n", amount.FromUnits(units, tok.Decimals), tok.Symbol, a.Wallet.Address().Hex())
		return nil
	},
}
