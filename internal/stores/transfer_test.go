package stores

import (
	"context"
	"errors"
	"math/big"
	"path/filepath"
	"reflect"
	"sort"
	"testing"

	"erc20/sender/internal/models"
)

func newTestTransferStore(t *testing.T) *LocalTransferStore {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "transfers.db")
	s, err := NewLocalTransferStore(dbPath)
	if err != nil {
		t.Fatalf("NewLocalTransferStore error: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestTransferStore_PutAndGet(t *testing.T) {
	store := newTestTransferStore(t)
	ctx := context.Background()

	in := &models.TransferRecord{
		ID:     "0xaa",
		Symbol: "USDC",
		Amount: "1.5",
		Units:  big.NewInt(1_500_000),
		State:  models.TransferSubmitted,
	}
	if err := store.Put(ctx, in); err != nil {
		t.Fatalf("Put error: %v", err)
	}

	out, err := store.Get(ctx, "0xaa")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if out.ID != in.ID || out.State != in.State || out.Units.Cmp(in.Units) != 0 {
		t.Fatalf("Get mismatch: got %+v, want %+v", out, in)
	}
}

func TestTransferStore_Put_Overwrites(t *testing.T) {
	store := newTestTransferStore(t)
	ctx := context.Background()

	rec := &models.TransferRecord{ID: "0xbb", State: models.TransferSubmitted}
	if err := store.Put(ctx, rec); err != nil {
		t.Fatalf("Put error: %v", err)
	}
	rec.State = models.TransferConfirmed
	rec.BlockNumber = 42
	if err := store.Put(ctx, rec); err != nil {
		t.Fatalf("Put error: %v", err)
	}

	out, err := store.Get(ctx, "0xbb")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if out.State != models.TransferConfirmed || out.BlockNumber != 42 {
		t.Fatalf("Get = %+v, want confirmed at 42", out)
	}
}

func TestTransferStore_Get_NotFound(t *testing.T) {
	store := newTestTransferStore(t)

	_, err := store.Get(context.Background(), "does-not-exist")
	if !errors.Is(err, ErrTransferNotFound) {
		t.Fatalf("expected ErrTransferNotFound, got %v", err)
	}
}

func TestTransferStore_PutIfAbsent_InsertOnce(t *testing.T) {
	store := newTestTransferStore(t)
	ctx := context.Background()

	if err := store.PutIfAbsent(ctx, &models.TransferRecord{ID: "same", Amount: "1"}); err != nil {
		t.Fatalf("PutIfAbsent(1) error: %v", err)
	}
	if err := store.PutIfAbsent(ctx, &models.TransferRecord{ID: "same", Amount: "2"}); err != nil {
		t.Fatalf("PutIfAbsent(2) error: %v", err)
	}

	out, err := store.Get(ctx, "same")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if out.Amount != "1" {
		t.Fatalf("Amount = %s, want first write to win", out.Amount)
	}
}

func TestTransferStore_Scan_VisitsAll(t *testing.T) {
	store := newTestTransferStore(t)
	ctx := context.Background()

	wantIDs := []string{"a", "b", "c", "d", "e"}
	for _, id := range wantIDs {
		if err := store.Put(ctx, &models.TransferRecord{ID: id}); err != nil {
			t.Fatalf("Put(%s) error: %v", id, err)
		}
	}

	var gotIDs []string
	if err := store.Scan(ctx, func(rec *models.TransferRecord) error {
		gotIDs = append(gotIDs, rec.ID)
		return nil
	}); err != nil {
		t.Fatalf("Scan error: %v", err)
	}

	sort.Strings(gotIDs)
	if !reflect.DeepEqual(gotIDs, wantIDs) {
		t.Fatalf("Scan IDs = %v, want %v", gotIDs, wantIDs)
	}
}

func TestTransferStore_Scan_StopsOnVisitorError(t *testing.T) {
	store := newTestTransferStore(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		if err := store.Put(ctx, &models.TransferRecord{ID: id}); err != nil {
			t.Fatalf("Put error: %v", err)
		}
	}

	stop := errors.New("stop")
	calls := 0
	err := store.Scan(ctx, func(rec *models.TransferRecord) error {
		calls++
		return stop
	})
	if !errors.Is(err, stop) {
		t.Fatalf("Scan error = %v, want %v", err, stop)
	}
	if calls != 1 {
		t.Fatalf("visitor called %d times, want 1", calls)
	}
}

func TestTransferStore_Scan_ContextCanceled(t *testing.T) {
	store := newTestTransferStore(t)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := store.Put(ctx, &models.TransferRecord{ID: string(rune('x' + i))}); err != nil {
			t.Fatalf("Put error: %v", err)
		}
	}

	cctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := store.Scan(cctx, func(rec *models.TransferRecord) error {
		calls++
		return nil
	})
	if err == nil {
		t.Fatal("expected context cancellation error, got nil")
	}
	if calls != 0 {
		t.Fatalf("visitor called %d times, expected 0 due to cancellation", calls)
	}
}
