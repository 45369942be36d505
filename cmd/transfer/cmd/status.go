package cmd

import (
	"encoding/json"
	"strings"

	"erc20/sender/internal/stores"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status <tx hash>",
	Short: "Show the recorded state of a transfer",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := stores.NewLocalTransferStore(cfg.TransferDBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		hash := strings.ToLower(args[0])
		if !strings.HasPrefix(hash, "0x") {
			hash = "0x" + hash
		}
		rec, err := store.Get(c.Context(), hash)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(c.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	},
}
