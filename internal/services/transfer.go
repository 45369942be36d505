package services

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"erc20/sender/internal/erc20"
	"erc20/sender/internal/models"
	"erc20/sender/internal/stores"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog"
)

var (
	ErrTransferInFlight = errors.New("a transfer is already in flight")
	ErrUnknownToken     = errors.New("unknown token")
	ErrFormClosed       = errors.New("transfer form closed")
)

type FormSnapshot struct {
	models.Form
	Loading bool   `json:"loading"`
	Pending string `json:"pending,omitempty"`
}

// Partial form update. Nil fields are left alone, an empty Token clears the selection.
type FormUpdate struct {
	Receiver *string `json:"receiver,omitempty"`
	Amount   *string `json:"amount,omitempty"`
	Token    *string `json:"token,omitempty"`
}

// The transfer form: field state, submission and result tracking
type TransferForm struct {
	mu         sync.Mutex
	form       models.Form
	tokens     []models.Token
	submitting bool
	pending    common.Hash

	wallet   Wallet
	waiter   ReceiptWaiter
	store    stores.TransferStore
	notifier Notifier
	observer *ResultObserver
	log      zerolog.Logger
	now      func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewTransferForm(wallet Wallet, waiter ReceiptWaiter, store stores.TransferStore, notifier Notifier, log zerolog.Logger) *TransferForm {
	ctx, cancel := context.WithCancel(context.Background())
	return &TransferForm{
		form:     models.NewForm(),
		tokens:   models.SupportedTokens(),
		wallet:   wallet,
		waiter:   waiter,
		store:    store,
		notifier: notifier,
		observer: NewResultObserver(notifier),
		log:      log.With().Str("component", "transfer_form").Logger(),
		now:      time.Now,
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (f *TransferForm) Observer() *ResultObserver { return f.observer }

func (f *TransferForm) Tokens() []models.Token {
	out := make([]models.Token, len(f.tokens))
	copy(out, f.tokens)
	return out
}

func (f *TransferForm) Snapshot() FormSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	snap := FormSnapshot{Form: f.form, Loading: f.loadingLocked()}
	if f.form.Token != nil {
		t := *f.form.Token
		snap.Token = &t
	}
	if f.pending != (common.Hash{}) {
		snap.Pending = f.pending.Hex()
	}
	return snap
}

// True while a transfer is being submitted or awaits its receipt
func (f *TransferForm) Loading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loadingLocked()
}

func (f *TransferForm) loadingLocked() bool {
	return f.submitting || f.pending != (common.Hash{})
}

func (f *TransferForm) SetReceiver(receiver string) {
	f.mu.Lock()
	f.form.Receiver = receiver
	f.mu.Unlock()
}

func (f *TransferForm) SetAmount(amount string) {
	f.mu.Lock()
	f.form.Amount = amount
	f.mu.Unlock()
}

// Selects by address or symbol. An empty key clears the selection, an
// unknown key clears it and reports ErrUnknownToken.
func (f *TransferForm) SelectToken(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if key == "" {
		f.form.Token = nil
		return nil
	}
	tok, ok := models.FindToken(f.tokens, key)
	f.form.Token = tok
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownToken, key)
	}
	return nil
}

func (f *TransferForm) Update(u FormUpdate) error {
	if u.Receiver != nil {
		f.SetReceiver(*u.Receiver)
	}
	if u.Amount != nil {
		f.SetAmount(*u.Amount)
	}
	if u.Token != nil {
		return f.SelectToken(*u.Token)
	}
	return nil
}

// Validates the form and submits an ERC-20 transfer. Validation failures
// are notified and returned without touching the form.
func (f *TransferForm) Submit(ctx context.Context) (common.Hash, error) {
	f.mu.Lock()
	if f.ctx.Err() != nil {
		f.mu.Unlock()
		return common.Hash{}, ErrFormClosed
	}
	if f.loadingLocked() {
		f.mu.Unlock()
		return common.Hash{}, ErrTransferInFlight
	}
	form := f.form
	f.submitting = true
	f.mu.Unlock()

	// parsed outside the lock, readers never wait on it
	req, err := NewTransferRequest(form)
	if err != nil {
		f.mu.Lock()
		f.submitting = false
		f.mu.Unlock()
		f.notifier.NotifyError(ctx, models.Notification{Title: titleValidation, Message: err.Error()})
		return common.Hash{}, err
	}

	hash, err := f.wallet.WriteContract(ctx, erc20.TransferCall(req.Token.ID, req.Receiver, req.Units))

	f.mu.Lock()
	f.submitting = false
	if err == nil {
		f.pending = hash
	}
	f.mu.Unlock()

	if err != nil {
		err = fmt.Errorf("submit transfer: %w", err)
		f.observer.Observe(ctx, Outcome{Err: err})
		return common.Hash{}, err
	}

	f.log.Info().
		Str("tx", hash.Hex()).
		Str("token", req.Token.Symbol).
		Str("receiver", req.Receiver.Hex()).
		Str("amount", req.Amount).
		Msg("transfer submitted")

	rec := models.NewTransferRecord(hash, req, f.now())
	if err := f.store.PutIfAbsent(ctx, rec); err != nil {
		f.log.Error().Err(err).Str("tx", hash.Hex()).Msg("failed to persist transfer")
	}
	f.watch(rec, true)
	return hash, nil
}

// Sender balance of the token identified by key
func (f *TransferForm) Balance(ctx context.Context, key string) (models.Token, *big.Int, error) {
	tok, ok := models.FindToken(f.tokens, key)
	if !ok {
		return models.Token{}, nil, fmt.Errorf("%w: %s", ErrUnknownToken, key)
	}
	bal, err := f.wallet.BalanceOf(ctx, tok.ID)
	if err != nil {
		return *tok, nil, err
	}
	return *tok, bal, nil
}

// Stops receipt watching and waits for watchers to exit. Unfinished
// transfers stay SUBMITTED and are picked up by Resume on the next start.
func (f *TransferForm) Close() {
	f.mu.Lock()
	f.cancel()
	f.mu.Unlock()
	f.wg.Wait()
}

// Waits for the receipt of rec on a separate goroutine. Only the form's
// own transfer (current) resets the form when it lands.
func (f *TransferForm) watch(rec *models.TransferRecord, current bool) {
	hash := common.HexToHash(rec.ID)

	f.mu.Lock()
	if f.ctx.Err() != nil {
		// closed while sending, Resume picks it up
		if current && f.pending == hash {
			f.pending = common.Hash{}
		}
		f.mu.Unlock()
		return
	}
	f.wg.Add(1)
	f.mu.Unlock()

	go func() {
		defer f.wg.Done()

		rcpt, err := f.waiter.WaitForReceipt(f.ctx, hash)
		if f.ctx.Err() != nil {
			return
		}

		f.record(rec, rcpt, err)

		if current {
			f.mu.Lock()
			if f.pending == hash {
				f.pending = common.Hash{}
			}
			f.mu.Unlock()
		}

		ev, ok := f.observer.Observe(f.ctx, Outcome{Hash: hash, Receipt: rcpt, Err: err})
		if ok && current && ev.Kind == EventConfirmed {
			f.mu.Lock()
			f.form.Reset()
			f.mu.Unlock()
		}
	}()
}

func (f *TransferForm) record(rec *models.TransferRecord, rcpt *types.Receipt, err error) {
	switch {
	case err != nil:
		rec.State = models.TransferFailed
		rec.Error = err.Error()
	case rcpt.Status == types.ReceiptStatusSuccessful:
		rec.State = models.TransferConfirmed
		rec.Error = ""
		if moved, ok := erc20.TransferredTo(rcpt.Logs, rec.Token, rec.Receiver); ok {
			f.log.Debug().Str("tx", rec.ID).Str("units", moved.String()).Msg("transfer event seen")
		}
	default:
		rec.State = models.TransferReverted
		rec.Error = ErrTransactionReverted.Error()
	}
	if rcpt != nil && rcpt.BlockNumber != nil {
		rec.BlockNumber = rcpt.BlockNumber.Uint64()
	}
	rec.UpdatedAt = f.now()

	if err := f.store.Put(f.ctx, rec); err != nil {
		f.log.Error().Err(err).Str("tx", rec.ID).Msg("failed to update transfer")
		return
	}
	f.log.Info().Str("tx", rec.ID).Str("state", string(rec.State)).Uint64("block", rec.BlockNumber).Msg("transfer settled")
}
