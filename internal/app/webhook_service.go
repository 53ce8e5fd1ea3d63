package app

import (
	"context"
	"log"
	"time"

	"github.com/Noushen23/CatalogoAPP-sub000/internal/clock"
	"github.com/Noushen23/CatalogoAPP-sub000/internal/domain"
	"github.com/Noushen23/CatalogoAPP-sub000/internal/metrics"
)

// Settler is the settlement coordinator as the event paths see it.
type Settler interface {
	Confirm(ctx context.Context, intentID string) (domain.Order, error)
}

type WebhookIntentStore interface {
	GetByReference(ctx context.Context, reference string) (*domain.CheckoutIntent, error)
	UpdateStatus(ctx context.Context, id string, status domain.TransactionStatus, providerTxID string, now time.Time) error
}

// WebhookService applies normalized provider events to intents. The HTTP
// webhook, the reconciliation sweeper and the manual status query all feed
// it, so every path records transitions and settles identically.
type WebhookService struct {
	intents WebhookIntentStore
	settler Settler
	clock   clock.Clock
	logger  *log.Logger
}

func NewWebhookService(intents WebhookIntentStore, settler Settler, clk clock.Clock, logger *log.Logger) *WebhookService {
	if logger == nil {
		logger = log.Default()
	}
	return &WebhookService{
		intents: intents,
		settler: settler,
		clock:   clk,
		logger:  logger,
	}
}

// Process applies one event. A nil return means the event may be
// acknowledged to the provider; settlement failures are absorbed here and
// surfaced through the operator error channel, never back to the provider.
func (s *WebhookService) Process(ctx context.Context, ev domain.ProviderEvent) error {
	if ev.Reference == "" || ev.Status == "" {
		return domain.ErrEventIncomplete
	}

	intent, err := s.intents.GetByReference(ctx, ev.Reference)
	if err != nil {
		return err
	}
	if intent == nil {
		// Likely a propagation race: the provider knows the reference
		// before our intent row is visible. Acknowledge, don't retry.
		s.logger.Printf("WARN: event for unknown reference %s (tx %s), acknowledged", ev.Reference, ev.TransactionID)
		metrics.RecordWebhookEvent("unknown_reference")
		return nil
	}

	now := s.clock.Now()
	switch ev.Status {
	case domain.TransactionApproved:
		// Record the transition first so it survives a settlement failure.
		if err := s.intents.UpdateStatus(ctx, intent.ID, domain.TransactionApproved, ev.TransactionID, now); err != nil {
			return err
		}
		if _, err := s.settler.Confirm(ctx, intent.ID); err != nil {
			s.logger.Printf("ERROR: settlement for intent %s (reference %s) failed: %v", intent.ID, ev.Reference, err)
			metrics.AbsorbedSettlementFailures.Inc()
			metrics.RecordSettlement(false)
			return nil
		}
		metrics.RecordSettlement(true)
		metrics.RecordWebhookEvent("approved")

	case domain.TransactionDeclined, domain.TransactionVoided, domain.TransactionError:
		if intent.Status == domain.TransactionApproved {
			// An order may already exist; settled orders are never
			// auto-reversed by a later conflicting event.
			s.logger.Printf("WARN: %s for already-approved reference %s ignored", ev.Status, ev.Reference)
			metrics.RecordWebhookEvent("conflicting_terminal")
			return nil
		}
		if err := s.intents.UpdateStatus(ctx, intent.ID, ev.Status, ev.TransactionID, now); err != nil {
			return err
		}
		metrics.RecordWebhookEvent("terminal")

	case domain.TransactionPending:
		// Keep the provider's transaction id, change nothing else; a later
		// event or the sweeper resolves it.
		if err := s.intents.UpdateStatus(ctx, intent.ID, domain.TransactionPending, ev.TransactionID, now); err != nil {
			return err
		}
		metrics.RecordWebhookEvent("pending")

	default:
		s.logger.Printf("WARN: unknown status %q for reference %s, acknowledged", ev.Status, ev.Reference)
		metrics.RecordWebhookEvent("unknown_status")
	}
	return nil
}
