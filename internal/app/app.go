package app

import (
	"fmt"

	"erc20/sender/internal/clients"
	"erc20/sender/internal/config"
	"erc20/sender/internal/constants"
	"erc20/sender/internal/services"
	"erc20/sender/internal/stores"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog"
)

// Everything a binary needs to run the transfer form
type App struct {
	Form   *services.TransferForm
	Store  *stores.LocalTransferStore
	Feed   *services.Feed
	Wallet *services.EvmWallet

	client *ethclient.Client
}

func New(cfg *config.Config, log zerolog.Logger) (*App, error) {
	if err := cfg.RequireSender(); err != nil {
		return nil, err
	}

	client, err := ethclient.Dial(cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to eth client: %w", err)
	}

	ks, err := stores.NewLocalKeyStore(cfg.KeyStorePassword, cfg.KeyStorePath)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to initialize key store: %w", err)
	}

	store, err := stores.NewLocalTransferStore(cfg.TransferDBPath)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to initialize transfer store: %w", err)
	}

	wallet := services.NewEvmWallet(ks, client, cfg.Sender)
	watcher := services.NewReceiptWatcher(client, services.WatcherConfig{
		Interval:      cfg.ReceiptPollInterval,
		Timeout:       cfg.ReceiptTimeout,
		Confirmations: cfg.Confirmations,
	}, log)

	feed := services.NewFeed(constants.FeedCapacity)
	notifiers := services.Notifiers{services.NewLogNotifier(log), feed}
	if cfg.WebhookURL != "" {
		hook := clients.NewHookClient(cfg.WebhookURL, 0)
		notifiers = append(notifiers, services.NewWebhookNotifier(hook, log))
	}

	return &App{
		Form:   services.NewTransferForm(wallet, watcher, store, notifiers, log),
		Store:  store,
		Feed:   feed,
		Wallet: wallet,
		client: client,
	}, nil
}

// Stops receipt watching first, watchers write to the store
func (a *App) Close() error {
	a.Form.Close()
	err := a.Store.Close()
	a.client.Close()
	return err
}
