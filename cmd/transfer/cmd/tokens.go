package cmd

import (
	"fmt"
	"text/tabwriter"

	"erc20/sender/internal/models"
	"erc20/sender/internal/services"

	"github.com/spf13/cobra"
)

var flagVerify bool

var tokensCmd = &cobra.Command{
	Use:   "tokens",
	Short: "List the tokens that can be sent",
	Args:  cobra.NoArgs,
	RunE: func(c *cobra.Command, args []string) error {
		tokens := models.SupportedTokens()

		w := tabwriter.NewWriter(c.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SYMBOL\tDECIMALS\tADDRESS")
		for _, t := range tokens {
			fmt.Fprintf(w, "%s\t%d\t%s\n", t.Symbol, t.Decimals, t.ID.Hex())
		}
		if err := w.Flush(); err != nil {
			return err
		}
		if !flagVerify {
			return nil
		}

		a, _, err := loadApp()
		if err != nil {
			return err
		}
		defer a.Close()
		if err := services.VerifyTokenDecimals(c.Context(), a.Wallet, tokens); err != nil {
			return err
		}
		fmt.Fprintln(c.OutOrStdout(), "decimals match the token contracts")
		return nil
	},
}

func init() {
	tokensCmd.Flags().BoolVar(&flagVerify, "verify", false, "check the decimals against the token contracts")
}
