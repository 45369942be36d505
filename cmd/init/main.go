package main

import (
	"context"
	"os"
	"strings"

	"erc20/sender/internal/config"
	"erc20/sender/internal/constants"
	"erc20/sender/internal/stores"
	"erc20/sender/internal/utils/logger"

	"github.com/ethereum/go-ethereum/crypto"
)

// Puts the sender key into the keystore: SENDER_PRIVATE_KEY is imported when
// set, otherwise a fresh account is created. Prints the address to put in
// SENDER_ADDRESS.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New(constants.LogLevel)
		fallback.Fatal().Err(err).Msg("invalid configuration")
	}
	log := logger.New(cfg.LogLevel)

	ks, err := stores.NewLocalKeyStore(cfg.KeyStorePassword, cfg.KeyStorePath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize key store")
	}

	hexKey := strings.TrimPrefix(strings.TrimSpace(os.Getenv("SENDER_PRIVATE_KEY")), "0x")
	if hexKey == "" {
		addr, err := ks.CreateKey(context.Background())
		if err != nil {
			log.Fatal().Err(err).Msg("create key failed")
		}
		log.Info().Str("address", addr.Hex()).Str("dir", cfg.KeyStorePath).Msg("created new sender key")
		return
	}

	privateKey, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid SENDER_PRIVATE_KEY")
	}
	addr := crypto.PubkeyToAddress(privateKey.PublicKey)
	if ks.HasKey(context.Background(), addr) {
		log.Info().Str("address", addr.Hex()).Msg("sender key already imported")
		return
	}

	if _, err := ks.ImportECDSA(privateKey); err != nil {
		log.Fatal().Err(err).Msg("import failed")
	}
	log.Info().Str("address", addr.Hex()).Str("dir", cfg.KeyStorePath).Msg("imported sender key")
}
