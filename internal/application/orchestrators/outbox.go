package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	json "github.com/goccy/go-json"

	"arff/internal/adapters/email"
	domain "arff/internal/domain/outbox"
	"arff/pkg/metrics"
)

// OutboxStore defines the outbox persistence the processor needs.
type OutboxStore interface {
	GetByID(ctx context.Context, id string) (domain.Entry, error)
	Save(ctx context.Context, e domain.Entry) error
	ListDue(ctx context.Context, now time.Time, limit int) ([]domain.Entry, error)
}

// OutboxProcessor delivers queued outbox entries with exponential backoff.
type OutboxProcessor struct {
	store     OutboxStore
	sender    email.Sender
	now       func() time.Time
	baseDelay time.Duration
	maxDelay  time.Duration
	batchSize int
	metrics   *metrics.Manager
}

// OutboxOption configures an OutboxProcessor.
type OutboxOption func(*OutboxProcessor)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) OutboxOption {
	return func(p *OutboxProcessor) { p.now = now }
}

// WithBackoff sets the first retry delay and its ceiling.
func WithBackoff(base, ceiling time.Duration) OutboxOption {
	return func(p *OutboxProcessor) {
		p.baseDelay = base
		p.maxDelay = ceiling
	}
}

// WithBatchSize bounds entries handled per pass.
func WithBatchSize(n int) OutboxOption {
	return func(p *OutboxProcessor) {
		if n > 0 {
			p.batchSize = n
		}
	}
}

// WithMetrics records delivery outcomes.
func WithMetrics(m *metrics.Manager) OutboxOption {
	return func(p *OutboxProcessor) { p.metrics = m }
}

// NewOutboxProcessor creates a new outbox processor.
func NewOutboxProcessor(store OutboxStore, sender email.Sender, opts ...OutboxOption) *OutboxProcessor {
	p := &OutboxProcessor{
		store:     store,
		sender:    sender,
		now:       time.Now,
		baseDelay: 30 * time.Second,
		maxDelay:  time.Hour,
		batchSize: 25,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ProcessPending delivers every entry due now.
// PRE: Context is valid
// POST: Each due entry is sent, rescheduled, failed or abandoned; returns the number sent
func (p *OutboxProcessor) ProcessPending(ctx context.Context) (int, error) {
	entries, err := p.store.ListDue(ctx, p.now(), p.batchSize)
	if err != nil {
		return 0, fmt.Errorf("list due outbox entries: %w", err)
	}
	sent := 0
	for _, entry := range entries {
		if ctx.Err() != nil {
			return sent, ctx.Err()
		}
		ok, err := p.processEntry(ctx, entry)
		if err != nil {
			slog.Error("outbox_process_failed", "entry_id", entry.ID, "kind", entry.Kind, "error", err)
			continue
		}
		if ok {
			sent++
		}
	}
	return sent, nil
}

// errUndeliverable marks payloads no retry can fix.
var errUndeliverable = errors.New("undeliverable")

func (p *OutboxProcessor) processEntry(ctx context.Context, entry domain.Entry) (bool, error) {
	externalID, err := p.deliver(ctx, entry)
	now := p.now()
	switch {
	case err == nil:
		entry.RecordSuccess(externalID, now)
		p.metrics.RecordDelivery(metrics.DeliverySent)
		slog.Info("outbox_delivered", "entry_id", entry.ID, "external_id", externalID, "dedup_key", entry.DedupKey)
	case errors.Is(err, errUndeliverable):
		entry.LastError = err.Error()
		_ = entry.Abandon() // entry is pending here, never sent
		p.metrics.RecordDelivery(metrics.DeliveryFailed)
		slog.Error("outbox_abandoned", "entry_id", entry.ID, "error", err)
	default:
		entry.RecordFailure(err, now, p.baseDelay, p.maxDelay)
		if entry.Status == domain.StatusFailed {
			p.metrics.RecordDelivery(metrics.DeliveryFailed)
		} else {
			p.metrics.RecordDelivery(metrics.DeliveryRetry)
		}
		slog.Warn("outbox_delivery_failed", "entry_id", entry.ID, "attempt", entry.Attempts, "status", entry.Status, "error", err)
	}
	return err == nil, p.store.Save(ctx, entry)
}

func (p *OutboxProcessor) deliver(ctx context.Context, entry domain.Entry) (string, error) {
	if entry.Kind != domain.KindEmail {
		return "", fmt.Errorf("%w: unknown kind %q", errUndeliverable, entry.Kind)
	}
	var payload EmailPayload
	if err := json.Unmarshal([]byte(entry.Payload), &payload); err != nil {
		return "", fmt.Errorf("%w: payload: %v", errUndeliverable, err)
	}
	if len(payload.To) == 0 {
		return "", fmt.Errorf("%w: no recipients", errUndeliverable)
	}
	res, err := p.sender.Send(ctx, email.SendRequest{
		To:      payload.To,
		Subject: payload.Subject,
		HTML:    payload.HTML,
		Text:    payload.Text,
		Tags:    payload.Tags,
	})
	if err != nil {
		return "", err
	}
	return res.MessageID, nil
}

// Retry requeues a failed entry for immediate delivery.
// PRE: entry status is failed
// POST: Status=pending, Attempts reset
func (p *OutboxProcessor) Retry(ctx context.Context, entryID string) error {
	entry, err := p.store.GetByID(ctx, entryID)
	if err != nil {
		return fmt.Errorf("get outbox entry: %w", err)
	}
	if err := entry.Requeue(p.now()); err != nil {
		return err
	}
	return p.store.Save(ctx, entry)
}

// Abandon stops delivery attempts for an entry.
// PRE: entryID is non-empty
// POST: Entry status set to abandoned unless it was already sent
func (p *OutboxProcessor) Abandon(ctx context.Context, entryID string) error {
	entry, err := p.store.GetByID(ctx, entryID)
	if err != nil {
		return fmt.Errorf("get outbox entry: %w", err)
	}
	if err := entry.Abandon(); err != nil {
		return err
	}
	return p.store.Save(ctx, entry)
}

// RunLoop processes pending entries every interval until ctx is cancelled.
func (p *OutboxProcessor) RunLoop(ctx context.Context, interval time.Duration) error {
	return RunEvery(ctx, "outbox", interval, func(ctx context.Context) error {
		_, err := p.ProcessPending(ctx)
		return err
	})
}
