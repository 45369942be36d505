package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog"
)

type rpcReq struct {
	ID     any           `json:"id"`
	Method string        `json:"method"`
	Params []interface{} `json:"params"`
}

type rpcResp struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      any         `json:"id"`
	Result  interface{} `json:"result"`
	Error   *rpcError   `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Minimal JSON-RPC node serving receipts and the head block number
type fakeChain struct {
	mu       sync.Mutex
	latest   uint64
	receipts map[common.Hash]map[string]any
	failRcpt bool
	lookups  int
}

func newFakeChain() *fakeChain {
	return &fakeChain{receipts: map[common.Hash]map[string]any{}}
}

func (fc *fakeChain) setLatest(n uint64) {
	fc.mu.Lock()
	fc.latest = n
	fc.mu.Unlock()
}

func (fc *fakeChain) setFail(fail bool) {
	fc.mu.Lock()
	fc.failRcpt = fail
	fc.mu.Unlock()
}

func (fc *fakeChain) lookupCount() int {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.lookups
}

func (fc *fakeChain) putReceipt(hash common.Hash, status uint64, block uint64) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.receipts[hash] = map[string]any{
		"transactionHash":   hash.Hex(),
		"transactionIndex":  "0x0",
		"blockHash":         "0xa444b1e4f2e0cc3d93d50c489aca46b04b263f55879688c061cb70daf5b8a0fa",
		"blockNumber":       fmt.Sprintf("0x%x", block),
		"cumulativeGasUsed": "0xc350",
		"gasUsed":           "0xc350",
		"effectiveGasPrice": "0x1",
		"contractAddress":   nil,
		"logs":              []any{},
		"logsBloom":         "0x" + strings.Repeat("0", 512),
		"status":            fmt.Sprintf("0x%x", status),
		"type":              "0x0",
	}
}

func (fc *fakeChain) serveRPC(w http.ResponseWriter, r *http.Request) {
	var req rpcReq
	buf := new(bytes.Buffer)
	_, _ = buf.ReadFrom(r.Body)
	_ = json.Unmarshal(buf.Bytes(), &req)

	write := func(res rpcResp) {
		res.JSONRPC = "2.0"
		_ = json.NewEncoder(w).Encode(res)
	}

	fc.mu.Lock()
	defer fc.mu.Unlock()

	switch req.Method {
	case "eth_getTransactionReceipt":
		fc.lookups++
		if fc.failRcpt {
			write(rpcResp{ID: req.ID, Error: &rpcError{Code: -32000, Message: "receipt failure"}})
			return
		}
		var arg string
		if len(req.Params) > 0 {
			arg, _ = req.Params[0].(string)
		}
		rcpt, ok := fc.receipts[common.HexToHash(arg)]
		if !ok {
			// unknown tx: null result
			write(rpcResp{ID: req.ID, Result: nil})
			return
		}
		write(rpcResp{ID: req.ID, Result: rcpt})

	case "eth_blockNumber":
		write(rpcResp{ID: req.ID, Result: fmt.Sprintf("0x%x", fc.latest)})

	default:
		write(rpcResp{ID: req.ID, Error: &rpcError{Code: -32601, Message: "method not found"}})
	}
}

func newEthClient(t *testing.T, fc *fakeChain) *ethclient.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(fc.serveRPC))
	t.Cleanup(srv.Close)

	cli, err := ethclient.Dial(srv.URL)
	if err != nil {
		t.Fatalf("ethclient.Dial: %v", err)
	}
	t.Cleanup(cli.Close)
	return cli
}

func newTestWatcher(client ReceiptClient, cfg WatcherConfig) *ReceiptWatcher {
	if cfg.Interval == 0 {
		cfg.Interval = 5 * time.Millisecond
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = time.Second
	}
	return NewReceiptWatcher(client, cfg, zerolog.Nop())
}

var watchedHash = common.HexToHash("0x5c504ed432cb51138bcf09aa5e8a410dd4a1e204ef84bfed1be16dfba1b22060")

func TestReceiptWatcher_ReturnsMinedReceipt(t *testing.T) {
	fc := newFakeChain()
	fc.putReceipt(watchedHash, 1, 12)
	fc.setLatest(12)

	w := newTestWatcher(newEthClient(t, fc), WatcherConfig{})

	rcpt, err := w.WaitForReceipt(context.Background(), watchedHash)
	if err != nil {
		t.Fatalf("WaitForReceipt error: %v", err)
	}
	if rcpt.Status != types.ReceiptStatusSuccessful {
		t.Fatalf("status = %d, want success", rcpt.Status)
	}
	if rcpt.BlockNumber.Uint64() != 12 {
		t.Fatalf("block = %v, want 12", rcpt.BlockNumber)
	}
}

func TestReceiptWatcher_ReturnsRevertedReceiptWithoutError(t *testing.T) {
	fc := newFakeChain()
	fc.putReceipt(watchedHash, 0, 3)

	w := newTestWatcher(newEthClient(t, fc), WatcherConfig{})

	rcpt, err := w.WaitForReceipt(context.Background(), watchedHash)
	if err != nil {
		t.Fatalf("WaitForReceipt error: %v", err)
	}
	if rcpt.Status != types.ReceiptStatusFailed {
		t.Fatalf("status = %d, want failed", rcpt.Status)
	}
}

func TestReceiptWatcher_KeepsPollingUntilMined(t *testing.T) {
	fc := newFakeChain()
	w := newTestWatcher(newEthClient(t, fc), WatcherConfig{})

	go func() {
		for fc.lookupCount() < 3 {
			time.Sleep(2 * time.Millisecond)
		}
		fc.putReceipt(watchedHash, 1, 5)
	}()

	rcpt, err := w.WaitForReceipt(context.Background(), watchedHash)
	if err != nil {
		t.Fatalf("WaitForReceipt error: %v", err)
	}
	if rcpt.TxHash != watchedHash {
		t.Fatalf("tx hash = %s, want %s", rcpt.TxHash.Hex(), watchedHash.Hex())
	}
	if fc.lookupCount() < 3 {
		t.Fatalf("lookups = %d, want at least 3", fc.lookupCount())
	}
}

func TestReceiptWatcher_WaitsForConfirmations(t *testing.T) {
	fc := newFakeChain()
	fc.putReceipt(watchedHash, 1, 10)
	fc.setLatest(10)

	w := newTestWatcher(newEthClient(t, fc), WatcherConfig{Confirmations: 3})

	go func() {
		for fc.lookupCount() < 2 {
			time.Sleep(2 * time.Millisecond)
		}
		// 10, 11, 12 makes three
		fc.setLatest(12)
	}()

	rcpt, err := w.WaitForReceipt(context.Background(), watchedHash)
	if err != nil {
		t.Fatalf("WaitForReceipt error: %v", err)
	}
	if rcpt.BlockNumber.Uint64() != 10 {
		t.Fatalf("block = %v, want 10", rcpt.BlockNumber)
	}
	if fc.lookupCount() < 2 {
		t.Fatalf("returned before enough confirmations")
	}
}

func TestReceiptWatcher_TimesOut(t *testing.T) {
	fc := newFakeChain()
	w := newTestWatcher(newEthClient(t, fc), WatcherConfig{Timeout: 40 * time.Millisecond})

	_, err := w.WaitForReceipt(context.Background(), watchedHash)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
	if !strings.Contains(err.Error(), watchedHash.Hex()) {
		t.Fatalf("error %q does not name the tx", err)
	}
}

func TestReceiptWatcher_RetriesAfterRPCFailure(t *testing.T) {
	fc := newFakeChain()
	fc.putReceipt(watchedHash, 1, 4)
	fc.setFail(true)

	w := newTestWatcher(newEthClient(t, fc), WatcherConfig{})

	go func() {
		for fc.lookupCount() < 2 {
			time.Sleep(2 * time.Millisecond)
		}
		fc.setFail(false)
	}()

	rcpt, err := w.WaitForReceipt(context.Background(), watchedHash)
	if err != nil {
		t.Fatalf("WaitForReceipt error: %v", err)
	}
	if rcpt.Status != types.ReceiptStatusSuccessful {
		t.Fatalf("status = %d, want success", rcpt.Status)
	}
}

func TestReceiptWatcher_CancelStopsWait(t *testing.T) {
	fc := newFakeChain()
	w := newTestWatcher(newEthClient(t, fc), WatcherConfig{Timeout: time.Minute})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := w.WaitForReceipt(ctx, watchedHash)
		done <- err
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("err = %v, want canceled", err)
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("wait did not stop")
	}
}

func TestNewReceiptWatcher_Defaults(t *testing.T) {
	w := NewReceiptWatcher(nil, WatcherConfig{}, zerolog.Nop())
	if w.interval != 2*time.Second || w.timeout != 5*time.Minute || w.confirmations != 1 {
		t.Fatalf("defaults = %v/%v/%d", w.interval, w.timeout, w.confirmations)
	}
}
