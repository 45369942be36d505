package stores

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var ErrKeyNotFound = errors.New("key not found")

// Holds the sender keys. Signing is the only way key material leaves the store.
type KeyStore interface {
	HasKey(ctx context.Context, address common.Address) bool
	SignTx(ctx context.Context, address common.Address, tx *types.Transaction, chainID *big.Int) (*types.Transaction, error)
}

type LocalKeyStore struct {
	ks         *keystore.KeyStore
	passphrase string
}

func NewLocalKeyStore(passphrase string, rootDir string) (*LocalKeyStore, error) {
	if err := os.MkdirAll(rootDir, 0700); err != nil {
		return nil, err
	}

	ks := keystore.NewKeyStore(rootDir, keystore.StandardScryptN, keystore.StandardScryptP)
	return &LocalKeyStore{ks: ks, passphrase: passphrase}, nil
}

func (l *LocalKeyStore) CreateKey(ctx context.Context) (common.Address, error) {
	account, err := l.ks.NewAccount(l.passphrase)
	if err != nil {
		return common.Address{}, err
	}
	return account.Address, nil
}

func (l *LocalKeyStore) HasKey(ctx context.Context, address common.Address) bool {
	return l.ks.HasAddress(address)
}

func (l *LocalKeyStore) Accounts() []common.Address {
	accs := l.ks.Accounts()
	out := make([]common.Address, 0, len(accs))
	for _, a := range accs {
		out = append(out, a.Address)
	}
	return out
}

// Signs with the passphrase for this call only, the account is never left unlocked
func (l *LocalKeyStore) SignTx(ctx context.Context, address common.Address, tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	account, err := l.get(address)
	if err != nil {
		return nil, err
	}
	return l.ks.SignTxWithPassphrase(account, l.passphrase, tx, chainID)
}

// Imports a raw private key under the store passphrase
func (l *LocalKeyStore) ImportECDSA(privKey *ecdsa.PrivateKey) (common.Address, error) {
	acct, err := l.ks.ImportECDSA(privKey, l.passphrase)
	if err != nil {
		return common.Address{}, err
	}
	return acct.Address, nil
}

func (l *LocalKeyStore) get(address common.Address) (accounts.Account, error) {
	if !l.ks.HasAddress(address) {
		return accounts.Account{}, fmt.Errorf("%w: %s", ErrKeyNotFound, address.Hex())
	}
	return l.ks.Find(accounts.Account{Address: address})
}
