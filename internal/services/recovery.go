package services

import (
	"context"

	"erc20/sender/internal/models"
)

// Re-attaches receipt watching to transfers left SUBMITTED by a previous
// run. Returns how many were picked up. Their outcomes are recorded and
// notified but never reset the current form.
func (f *TransferForm) Resume(ctx context.Context) (int, error) {
	var pending []*models.TransferRecord
	// collect first, watchers write to the store
	if err := f.store.Scan(ctx, func(rec *models.TransferRecord) error {
		if rec.State == models.TransferSubmitted {
			pending = append(pending, rec)
		}
		return nil
	}); err != nil {
		return 0, err
	}

	for _, rec := range pending {
		f.log.Info().Str("tx", rec.ID).Str("token", rec.Symbol).Msg("resuming transfer")
		f.watch(rec, false)
	}
	return len(pending), nil
}
