package app

import (
	"context"
	"errors"
	"log"

	"github.com/Noushen23/CatalogoAPP-sub000/internal/domain"
)

// ProviderQuerier polls the payment provider for a transaction's state.
type ProviderQuerier interface {
	TransactionByID(ctx context.Context, id string) (domain.ProviderEvent, error)
	TransactionByReference(ctx context.Context, reference string) (domain.ProviderEvent, error)
}

// EventProcessor is how discovered provider states re-enter the shared
// transition path.
type EventProcessor interface {
	Process(ctx context.Context, ev domain.ProviderEvent) error
}

// StatusService answers "where is my payment?". While the intent is still
// PENDING it asks the provider once and funnels whatever it learns through
// the same processor the webhook uses.
type StatusService struct {
	intents  WebhookIntentStore
	provider ProviderQuerier
	events   EventProcessor
	logger   *log.Logger
}

func NewStatusService(intents WebhookIntentStore, provider ProviderQuerier, events EventProcessor, logger *log.Logger) *StatusService {
	if logger == nil {
		logger = log.Default()
	}
	return &StatusService{
		intents:  intents,
		provider: provider,
		events:   events,
		logger:   logger,
	}
}

func (s *StatusService) Check(ctx context.Context, reference string) (domain.CheckoutIntent, error) {
	intent, err := s.intents.GetByReference(ctx, reference)
	if err != nil {
		return domain.CheckoutIntent{}, err
	}
	if intent == nil {
		return domain.CheckoutIntent{}, domain.ErrIntentNotFound
	}
	if intent.Status != domain.TransactionPending {
		return *intent, nil
	}

	ev, err := s.query(ctx, *intent)
	if err != nil {
		// Provider trouble is not the buyer's problem; report what we know.
		if errors.Is(err, domain.ErrProviderUnavailable) || errors.Is(err, domain.ErrTransactionNotFound) {
			s.logger.Printf("WARN: status query for %s: %v", reference, err)
			return *intent, nil
		}
		return domain.CheckoutIntent{}, err
	}
	ev.Reference = intent.Reference

	if err := s.events.Process(ctx, ev); err != nil {
		return domain.CheckoutIntent{}, err
	}

	updated, err := s.intents.GetByReference(ctx, reference)
	if err != nil {
		return domain.CheckoutIntent{}, err
	}
	if updated == nil {
		return *intent, nil
	}
	return *updated, nil
}

func (s *StatusService) query(ctx context.Context, intent domain.CheckoutIntent) (domain.ProviderEvent, error) {
	if intent.ProviderTxID != "" {
		return s.provider.TransactionByID(ctx, intent.ProviderTxID)
	}
	return s.provider.TransactionByReference(ctx, intent.Reference)
}
