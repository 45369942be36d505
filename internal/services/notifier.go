package services

import (
	"context"
	"sync"
	"time"

	"erc20/sender/internal/clients"
	"erc20/sender/internal/models"

	"github.com/rs/zerolog"
)

type Notifier interface {
	NotifyError(ctx context.Context, n models.Notification)
	NotifySuccess(ctx context.Context, n models.Notification)
}

// Fans a notification out to every notifier in order
type Notifiers []Notifier

func (ns Notifiers) NotifyError(ctx context.Context, n models.Notification) {
	for _, x := range ns {
		x.NotifyError(ctx, n)
	}
}

func (ns Notifiers) NotifySuccess(ctx context.Context, n models.Notification) {
	for _, x := range ns {
		x.NotifySuccess(ctx, n)
	}
}

type LogNotifier struct {
	log zerolog.Logger
}

func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log.With().Str("component", "notifier").Logger()}
}

func (l *LogNotifier) NotifyError(ctx context.Context, n models.Notification) {
	l.log.Error().Str("title", n.Title).Msg(n.Message)
}

func (l *LogNotifier) NotifySuccess(ctx context.Context, n models.Notification) {
	l.log.Info().Str("title", n.Title).Msg(n.Message)
}

// Keeps the most recent notifications for clients that poll
type Feed struct {
	mu       sync.Mutex
	items    []models.Notification
	nextID   uint64
	capacity int
	now      func() time.Time
}

func NewFeed(capacity int) *Feed {
	if capacity <= 0 {
		capacity = 100
	}
	return &Feed{capacity: capacity, now: time.Now}
}

func (f *Feed) NotifyError(ctx context.Context, n models.Notification) {
	f.add(models.LevelError, n)
}

func (f *Feed) NotifySuccess(ctx context.Context, n models.Notification) {
	f.add(models.LevelSuccess, n)
}

func (f *Feed) add(level models.Level, n models.Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	n.ID = f.nextID
	n.Level = level
	n.CreatedAt = f.now()

	f.items = append(f.items, n)
	if over := len(f.items) - f.capacity; over > 0 {
		f.items = append(f.items[:0:0], f.items[over:]...)
	}
}

// Notifications with ID greater than `after`, oldest first
func (f *Feed) Since(after uint64) []models.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]models.Notification, 0, len(f.items))
	for _, n := range f.items {
		if n.ID > after {
			out = append(out, n)
		}
	}
	return out
}

// Posts notifications to an external hook. Delivery failures are logged only.
type WebhookNotifier struct {
	client *clients.HookClient
	log    zerolog.Logger
	now    func() time.Time
}

func NewWebhookNotifier(client *clients.HookClient, log zerolog.Logger) *WebhookNotifier {
	return &WebhookNotifier{
		client: client,
		log:    log.With().Str("component", "webhook").Logger(),
		now:    time.Now,
	}
}

func (w *WebhookNotifier) NotifyError(ctx context.Context, n models.Notification) {
	w.post(ctx, models.LevelError, n)
}

func (w *WebhookNotifier) NotifySuccess(ctx context.Context, n models.Notification) {
	w.post(ctx, models.LevelSuccess, n)
}

func (w *WebhookNotifier) post(ctx context.Context, level models.Level, n models.Notification) {
	n.Level = level
	if n.CreatedAt.IsZero() {
		n.CreatedAt = w.now()
	}
	if err := w.client.PostJSON(ctx, n); err != nil {
		w.log.Warn().Err(err).Str("title", n.Title).Msg("webhook delivery failed")
	}
}
