package constants

import "time"

const (
	RPCURL           = "https://ethereum-sepolia-rpc.publicnode.com"
	KeyStorePath     = "./tmp/keys"
	KeyStorePassword = "password"
	TransferDBPath   = "./tmp/transfers.db"
	APIAddr          = ":8000"
	LogLevel         = "info"

	Confirmations       = 1
	ReceiptPollInterval = 2 * time.Second
	ReceiptTimeout      = 5 * time.Minute

	FeedCapacity    = 100
	ShutdownTimeout = 5 * time.Second
)
