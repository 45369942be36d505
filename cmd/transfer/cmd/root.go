package cmd

import (
	"erc20/sender/internal/app"
	"erc20/sender/internal/config"
	"erc20/sender/internal/utils/logger"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	RootCmd *cobra.Command

	flagEnvFile  string
	flagLogLevel string
)

func init() {
	RootCmd = &cobra.Command{
		Use:           "transfer",
		Short:         "Send ERC-20 tokens from the configured sender account",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	RootCmd.PersistentFlags().StringVar(&flagEnvFile, "env-file", "", "dotenv file to load before the environment")
	RootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level, overrides LOG_LEVEL")

	RootCmd.AddCommand(tokensCmd, sendCmd, statusCmd, balanceCmd)
}

func loadConfig() (*config.Config, zerolog.Logger, error) {
	var files []string
	if flagEnvFile != "" {
		files = append(files, flagEnvFile)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	return cfg, logger.New(cfg.LogLevel), nil
}

func loadApp() (*app.App, zerolog.Logger, error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, log, err
	}
	a, err := app.New(cfg, log)
	return a, log, err
}
