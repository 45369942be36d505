package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"erc20/sender/internal/services"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/spf13/cobra"
)

var flagNoWait bool

var sendCmd = &cobra.Command{
	Use:   "send <receiver> <token symbol or address> <amount>",
	Short: "Send <amount> of a token to <receiver> and wait for the receipt",
	Args:  cobra.ExactArgs(3),
	RunE: func(c *cobra.Command, args []string) error {
		a, log, err := loadApp()
		if err != nil {
			return err
		}
		defer a.Close()

		form := a.Form
		form.SetReceiver(args[0])
		form.SetAmount(args[2])
		if err := form.SelectToken(args[1]); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(c.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		events := make(chan services.Event, 4)
		unsubscribe := form.Observer().Subscribe(func(ev services.Event) {
			select {
			case events <- ev:
			default:
			}
		})
		defer unsubscribe()

		hash, err := form.Submit(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.OutOrStdout(), "submitted %s\n", hash.Hex())
		if flagNoWait {
			return nil
		}

		log.Info().Str("tx", hash.Hex()).Msg("waiting for receipt")
		return waitForEvent(ctx, c.OutOrStdout(), events, hash)
	},
}

func init() {
	sendCmd.Flags().BoolVar(&flagNoWait, "no-wait", false, "return once the transaction is broadcast")
}

// Blocks until the observer reports the outcome of hash
func waitForEvent(ctx context.Context, out io.Writer, events <-chan services.Event, hash common.Hash) error {
	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("stopped waiting, check later with: transfer status %s", hash.Hex())
		case ev := <-events:
			if ev.Hash != hash {
				continue
			}
			switch ev.Kind {
			case services.EventConfirmed:
				if ev.Receipt.Status != types.ReceiptStatusSuccessful {
					fmt.Fprintf(out, "mined in block %s but reverted\n", ev.Receipt.BlockNumber)
					return services.ErrTransactionReverted
				}
				fmt.Fprintf(out, "confirmed in block %s\n", ev.Receipt.BlockNumber)
				return nil
			default:
				return ev.Err
			}
		}
	}
}
