package services

import (
	"context"
	"fmt"
	"sync"

	"erc20/sender/internal/models"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

const (
	titleValidation = "Error:"
	titleFailure    = "An error occurred:"
	titleSuccess    = "Transfer successfully sent!"
)

// Latest known state of a submitted transfer
type Outcome struct {
	Hash    common.Hash
	Receipt *types.Receipt
	Err     error
}

type EventKind string

// A mined receipt is always EventConfirmed, its Status tells whether the
// call itself succeeded.
const (
	EventConfirmed EventKind = "confirmed"
	EventFailed    EventKind = "failed"
)

type Event struct {
	Kind    EventKind
	Hash    common.Hash
	Receipt *types.Receipt
	Err     error
}

// Turns outcome updates into notifications. Each receipt and each error
// occurrence is dispatched once no matter how often it is observed.
type ResultObserver struct {
	mu       sync.Mutex
	notifier Notifier
	seen     map[common.Hash]struct{}
	lastErr  error
	subs     map[int]func(Event)
	nextSub  int
}

func NewResultObserver(notifier Notifier) *ResultObserver {
	return &ResultObserver{
		notifier: notifier,
		seen:     make(map[common.Hash]struct{}),
		subs:     make(map[int]func(Event)),
	}
}

// Registers fn for every dispatched event. The returned func removes it.
func (o *ResultObserver) Subscribe(fn func(Event)) func() {
	o.mu.Lock()
	defer o.mu.Unlock()
	id := o.nextSub
	o.nextSub++
	o.subs[id] = fn
	return func() {
		o.mu.Lock()
		delete(o.subs, id)
		o.mu.Unlock()
	}
}

// Re-evaluates out. Reports the event and true when it was a new transition.
func (o *ResultObserver) Observe(ctx context.Context, out Outcome) (Event, bool) {
	o.mu.Lock()
	ev, ok := o.transition(out)
	subs := make([]func(Event), 0, len(o.subs))
	if ok {
		for _, fn := range o.subs {
			subs = append(subs, fn)
		}
	}
	o.mu.Unlock()

	if !ok {
		return Event{}, false
	}

	switch ev.Kind {
	case EventConfirmed:
		o.notifier.NotifySuccess(ctx, models.Notification{
			Title:   titleSuccess,
			Message: fmt.Sprintf("Hash: %s", ev.Hash.Hex()),
		})
	default:
		o.notifier.NotifyError(ctx, models.Notification{
			Title:   titleFailure,
			Message: ev.Err.Error(),
		})
	}

	for _, fn := range subs {
		fn(ev)
	}
	return ev, true
}

func (o *ResultObserver) transition(out Outcome) (Event, bool) {
	switch {
	case out.Receipt != nil:
		hash := out.Receipt.TxHash
		if hash == (common.Hash{}) {
			hash = out.Hash
		}
		if _, dup := o.seen[hash]; dup {
			return Event{}, false
		}
		o.seen[hash] = struct{}{}
		return Event{Kind: EventConfirmed, Hash: hash, Receipt: out.Receipt}, true

	case out.Err != nil:
		if out.Err == o.lastErr {
			return Event{}, false
		}
		o.lastErr = out.Err
		return Event{Kind: EventFailed, Hash: out.Hash, Err: out.Err}, true
	}
	return Event{}, false
}
