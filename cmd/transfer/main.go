package main

import (
	"os"

	"erc20/sender/cmd/transfer/cmd"
)

func main() {
	if err := cmd.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
