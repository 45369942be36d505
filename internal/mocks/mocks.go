package mocks

import (
	"context"
	"math/big"
	"sync"

	"erc20/sender/internal/models"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

type MockKeyStore struct {
	HasKeyResp bool
	SignErr    error
	Signed     int
}

func (f *MockKeyStore) HasKey(ctx context.Context, addr common.Address) bool {
	return f.HasKeyResp
}

func (f *MockKeyStore) SignTx(ctx context.Context, address common.Address, tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	f.Signed++
	if f.SignErr != nil {
		return nil, f.SignErr
	}
	return tx, nil
}

type MockChainClient struct {
	ChainIDResp  *big.Int
	Nonce        uint64
	GasPrice     *big.Int
	GasLimit     uint64
	EstimateErr  error
	SendErr      error
	CallResp     []byte
	CallErr      error
	Sent         []*types.Transaction
	EstimateMsgs []ethereum.CallMsg
	CallMsgs     []ethereum.CallMsg
}

func (m *MockChainClient) ChainID(ctx context.Context) (*big.Int, error) {
	if m.ChainIDResp == nil {
		return big.NewInt(11155111), nil
	}
	return m.ChainIDResp, nil
}

func (m *MockChainClient) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	return m.Nonce, nil
}

func (m *MockChainClient) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	if m.GasPrice == nil {
		return big.NewInt(1_000_000_000), nil
	}
	return m.GasPrice, nil
}

func (m *MockChainClient) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	m.EstimateMsgs = append(m.EstimateMsgs, msg)
	if m.EstimateErr != nil {
		return 0, m.EstimateErr
	}
	if m.GasLimit == 0 {
		return 65000, nil
	}
	return m.GasLimit, nil
}

func (m *MockChainClient) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	if m.SendErr != nil {
		return m.SendErr
	}
	m.Sent = append(m.Sent, tx)
	return nil
}

func (m *MockChainClient) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	m.CallMsgs = append(m.CallMsgs, msg)
	return m.CallResp, m.CallErr
}

// Records every contract write, returning Hash or Err
type MockWallet struct {
	mu       sync.Mutex
	Hash     common.Hash
	Err      error
	Calls    []models.ContractCall
	Balance  *big.Int
	BalErr   error
	BlockCh  chan struct{} // when set, WriteContract waits for it
	Balances []common.Address
}

func (m *MockWallet) WriteContract(ctx context.Context, call models.ContractCall) (common.Hash, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, call)
	block := m.BlockCh
	m.mu.Unlock()

	if block != nil {
		<-block
	}
	return m.Hash, m.Err
}

func (m *MockWallet) BalanceOf(ctx context.Context, token common.Address) (*big.Int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Balances = append(m.Balances, token)
	return m.Balance, m.BalErr
}

func (m *MockWallet) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

type receiptResult struct {
	rcpt *types.Receipt
	err  error
}

// WaitForReceipt blocks until Resolve is called for the hash or ctx ends
type MockReceiptWaiter struct {
	mu      sync.Mutex
	waiting map[common.Hash]chan receiptResult
	Started chan common.Hash
}

func NewMockReceiptWaiter() *MockReceiptWaiter {
	return &MockReceiptWaiter{
		waiting: make(map[common.Hash]chan receiptResult),
		Started: make(chan common.Hash, 16),
	}
}

func (m *MockReceiptWaiter) ch(hash common.Hash) chan receiptResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.waiting[hash]
	if !ok {
		c = make(chan receiptResult, 1)
		m.waiting[hash] = c
	}
	return c
}

func (m *MockReceiptWaiter) WaitForReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	c := m.ch(hash)
	select {
	case m.Started <- hash:
	default:
	}
	select {
	case r := <-c:
		return r.rcpt, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (m *MockReceiptWaiter) Resolve(hash common.Hash, rcpt *types.Receipt, err error) {
	m.ch(hash) <- receiptResult{rcpt: rcpt, err: err}
}

type RecordingNotifier struct {
	mu        sync.Mutex
	Errors    []models.Notification
	Successes []models.Notification
}

func (r *RecordingNotifier) NotifyError(ctx context.Context, n models.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Errors = append(r.Errors, n)
}

func (r *RecordingNotifier) NotifySuccess(ctx context.Context, n models.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Successes = append(r.Successes, n)
}

func (r *RecordingNotifier) Counts() (errs int, successes int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Errors), len(r.Successes)
}

func (r *RecordingNotifier) LastError() models.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Errors) == 0 {
		return models.Notification{}
	}
	return r.Errors[len(r.Errors)-1]
}

func (r *RecordingNotifier) LastSuccess() models.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Successes) == 0 {
		return models.Notification{}
	}
	return r.Successes[len(r.Successes)-1]
}

// Receipt with the given status mined at block
func Receipt(hash common.Hash, status uint64, block int64) *types.Receipt {
	return &types.Receipt{
		TxHash:      hash,
		Status:      status,
		BlockNumber: big.NewInt(block),
	}
}
