package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"erc20/sender/internal/constants"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
)

type Config struct {
	RPCURL           string
	Sender           common.Address
	KeyStorePath     string
	KeyStorePassword string
	TransferDBPath   string
	APIAddr          string
	LogLevel         string
	WebhookURL       string

	Confirmations       uint64
	ReceiptPollInterval time.Duration
	ReceiptTimeout      time.Duration
}

// Reads the process environment, after merging in a .env file when one exists.
// SENDER_ADDRESS is only required by commands that send, see RequireSender.
func Load(files ...string) (*Config, error) {
	// a missing .env is fine, the environment may be set another way
	_ = godotenv.Load(files...)

	cfg := &Config{
		RPCURL:              getenv("RPC_URL", constants.RPCURL),
		KeyStorePath:        getenv("KEYSTORE_PATH", constants.KeyStorePath),
		KeyStorePassword:    getenv("KEYSTORE_PASSWORD", constants.KeyStorePassword),
		TransferDBPath:      getenv("TRANSFER_DB_PATH", constants.TransferDBPath),
		APIAddr:             getenv("API_ADDR", constants.APIAddr),
		LogLevel:            getenv("LOG_LEVEL", constants.LogLevel),
		WebhookURL:          os.Getenv("NOTIFY_WEBHOOK_URL"),
		Confirmations:       constants.Confirmations,
		ReceiptPollInterval: constants.ReceiptPollInterval,
		ReceiptTimeout:      constants.ReceiptTimeout,
	}

	if s := os.Getenv("SENDER_ADDRESS"); s != "" {
		if !common.IsHexAddress(s) {
			return nil, fmt.Errorf("SENDER_ADDRESS: invalid address %q", s)
		}
		cfg.Sender = common.HexToAddress(s)
	}

	if s := os.Getenv("CONFIRMATIONS"); s != "" {
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil || n == 0 {
			return nil, fmt.Errorf("CONFIRMATIONS: expected a positive integer, got %q", s)
		}
		cfg.Confirmations = n
	}

	var err error
	if cfg.ReceiptPollInterval, err = duration("RECEIPT_POLL_INTERVAL", cfg.ReceiptPollInterval); err != nil {
		return nil, err
	}
	if cfg.ReceiptTimeout, err = duration("RECEIPT_TIMEOUT", cfg.ReceiptTimeout); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) RequireSender() error {
	if c.Sender == (common.Address{}) {
		return fmt.Errorf("SENDER_ADDRESS is not set")
	}
	return nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func duration(key string, def time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s: expected a positive duration, got %q", key, s)
	}
	return d, nil
}
