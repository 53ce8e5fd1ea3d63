package app

import (
	"context"
	"errors"
	"log"
	"sync/atomic"
	"time"

	"github.com/Noushen23/CatalogoAPP-sub000/internal/clock"
	"github.com/Noushen23/CatalogoAPP-sub000/internal/domain"
	"github.com/Noushen23/CatalogoAPP-sub000/internal/metrics"
)

const (
	defaultSweepInterval = time.Minute
	defaultLookback      = 24 * time.Hour
	defaultSweepLimit    = 100
)

type ReconcileIntentStore interface {
	ListPendingSince(ctx context.Context, cutoff time.Time, limit int) ([]domain.CheckoutIntent, error)
}

// ReconcileService is the fallback path for lost or delayed webhooks: it
// polls the provider for intents stuck in PENDING and feeds the answers into
// the same event processor the webhook uses.
type ReconcileService struct {
	intents  ReconcileIntentStore
	provider ProviderQuerier
	events   EventProcessor
	clock    clock.Clock
	logger   *log.Logger
	interval time.Duration
	lookback time.Duration
	limit    int
	running  atomic.Bool
}

type ReconcileOption func(*ReconcileService)

func WithSweepInterval(d time.Duration) ReconcileOption {
	return func(s *ReconcileService) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithLookback bounds how far back the sweeper looks for PENDING intents.
// Older ones are presumed abandoned and never polled again.
func WithLookback(d time.Duration) ReconcileOption {
	return func(s *ReconcileService) {
		if d > 0 {
			s.lookback = d
		}
	}
}

func NewReconcileService(intents ReconcileIntentStore, provider ProviderQuerier, events EventProcessor, clk clock.Clock, logger *log.Logger, opts ...ReconcileOption) *ReconcileService {
	if logger == nil {
		logger = log.Default()
	}
	svc := &ReconcileService{
		intents:  intents,
		provider: provider,
		events:   events,
		clock:    clk,
		logger:   logger,
		interval: defaultSweepInterval,
		lookback: defaultLookback,
		limit:    defaultSweepLimit,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Run sweeps on a fixed interval until the context is cancelled.
func (s *ReconcileService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil {
				s.logger.Printf("ERROR: reconciliation sweep: %v", err)
			}
		}
	}
}

// Sweep polls every recent PENDING intent once. Overlapping runs are skipped
// rather than queued; one bad intent never aborts the rest.
func (s *ReconcileService) Sweep(ctx context.Context) (int, error) {
	if !s.running.CompareAndSwap(false, true) {
		metrics.SweepRuns.WithLabelValues("skipped_overlap").Inc()
		return 0, nil
	}
	defer s.running.Store(false)

	cutoff := s.clock.Now().Add(-s.lookback)
	intents, err := s.intents.ListPendingSince(ctx, cutoff, s.limit)
	if err != nil {
		metrics.SweepRuns.WithLabelValues("error").Inc()
		return 0, err
	}

	processed := 0
	for _, intent := range intents {
		if err := s.sweepOne(ctx, intent); err != nil {
			s.logger.Printf("WARN: sweep intent %s (reference %s): %v", intent.ID, intent.Reference, err)
			continue
		}
		processed++
	}
	metrics.SweepRuns.WithLabelValues("ok").Inc()
	return processed, nil
}

func (s *ReconcileService) sweepOne(ctx context.Context, intent domain.CheckoutIntent) error {
	var (
		ev  domain.ProviderEvent
		err error
	)
	if intent.ProviderTxID != "" {
		ev, err = s.provider.TransactionByID(ctx, intent.ProviderTxID)
	} else {
		ev, err = s.provider.TransactionByReference(ctx, intent.Reference)
	}
	if err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			// The buyer may never have reached the payment page.
			return nil
		}
		return err
	}

	ev.Reference = intent.Reference
	return s.events.Process(ctx, ev)
}
