package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog"
)

var ErrTransactionReverted = errors.New("transaction reverted")

type ReceiptClient interface {
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	BlockNumber(ctx context.Context) (uint64, error)
}

type ReceiptWaiter interface {
	// Blocks until the receipt for hash is available and confirmed, or ctx/timeout ends the wait.
	// A reverted receipt is returned as is, without error.
	WaitForReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)
}

type WatcherConfig struct {
	Interval      time.Duration
	Timeout       time.Duration
	Confirmations uint64
}

// Polls the node for a transaction receipt
type ReceiptWatcher struct {
	client        ReceiptClient
	interval      time.Duration
	timeout       time.Duration
	confirmations uint64
	log           zerolog.Logger
}

func NewReceiptWatcher(client ReceiptClient, cfg WatcherConfig, log zerolog.Logger) *ReceiptWatcher {
	w := &ReceiptWatcher{
		client:        client,
		interval:      2 * time.Second,
		timeout:       5 * time.Minute,
		confirmations: 1,
		log:           log.With().Str("component", "receipt_watcher").Logger(),
	}
	if cfg.Interval > 0 {
		w.interval = cfg.Interval
	}
	if cfg.Timeout > 0 {
		w.timeout = cfg.Timeout
	}
	if cfg.Confirmations > 0 {
		w.confirmations = cfg.Confirmations
	}
	return w
}

func (w *ReceiptWatcher) WaitForReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if rcpt, ok := w.poll(ctx, hash); ok {
			return rcpt, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for receipt of %s: %w", hash.Hex(), ctx.Err())
		case <-ticker.C:
		}
	}
}

// One polling round. RPC failures are logged and retried on the next tick.
func (w *ReceiptWatcher) poll(ctx context.Context, hash common.Hash) (*types.Receipt, bool) {
	rcpt, err := w.client.TransactionReceipt(ctx, hash)
	if err != nil {
		if !errors.Is(err, ethereum.NotFound) && ctx.Err() == nil {
			w.log.Warn().Err(err).Str("tx", hash.Hex()).Msg("receipt lookup failed")
		}
		return nil, false
	}
	if rcpt == nil {
		return nil, false
	}
	if w.confirmations <= 1 || rcpt.BlockNumber == nil {
		return rcpt, true
	}

	head, err := w.client.BlockNumber(ctx)
	if err != nil {
		if ctx.Err() == nil {
			w.log.Warn().Err(err).Msg("error getting latest block number")
		}
		return nil, false
	}
	if head+1 < rcpt.BlockNumber.Uint64()+w.confirmations {
		return nil, false
	}
	return rcpt, true
}
