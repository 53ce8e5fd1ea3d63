// Package provider queries the payment provider's transaction API. It is the
// reconciliation path's view of the provider; webhooks arrive elsewhere.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/Noushen23/CatalogoAPP-sub000/internal/domain"
)

const defaultTimeout = 10 * time.Second

type Client struct {
	baseURL    string
	privateKey string
	httpClient *http.Client
}

func NewClient(baseURL, privateKey string) *Client {
	return &Client{
		baseURL:    baseURL,
		privateKey: privateKey,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

type transactionPayload struct {
	ID                string `json:"id"`
	Reference         string `json:"reference"`
	Status            string `json:"status"`
	AmountInCents     int64  `json:"amount_in_cents"`
	Currency          string `json:"currency"`
	PaymentMethodType string `json:"payment_method_type"`
	StatusMessage     string `json:"status_message"`
}

// TransactionByID fetches a single transaction the provider has already
// assigned an id to.
func (c *Client) TransactionByID(ctx context.Context, id string) (domain.ProviderEvent, error) {
	var body struct {
		Data transactionPayload `json:"data"`
	}
	if err := c.get(ctx, c.baseURL+"/v1/transactions/"+url.PathEscape(id), &body); err != nil {
		return domain.ProviderEvent{}, err
	}
	if body.Data.ID == "" {
		return domain.ProviderEvent{}, domain.ErrTransactionNotFound
	}
	return normalize(body.Data), nil
}

// TransactionByReference finds the latest transaction for a payment
// reference. Used when no webhook ever delivered the provider's id.
func (c *Client) TransactionByReference(ctx context.Context, reference string) (domain.ProviderEvent, error) {
	var body struct {
		Data []transactionPayload `json:"data"`
	}
	endpoint := c.baseURL + "/v1/transactions?reference=" + url.QueryEscape(reference)
	if err := c.get(ctx, endpoint, &body); err != nil {
		return domain.ProviderEvent{}, err
	}
	if len(body.Data) == 0 {
		return domain.ProviderEvent{}, domain.ErrTransactionNotFound
	}
	return normalize(body.Data[len(body.Data)-1]), nil
}

func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}
	if c.privateKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.privateKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return domain.ErrTransactionNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", domain.ErrProviderUnavailable, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", domain.ErrProviderUnavailable, err)
	}
	return nil
}

func normalize(tx transactionPayload) domain.ProviderEvent {
	return domain.ProviderEvent{
		TransactionID: tx.ID,
		Reference:     tx.Reference,
		Status:        domain.TransactionStatus(tx.Status),
		AmountCents:   tx.AmountInCents,
		Currency:      tx.Currency,
		PaymentMethod: tx.PaymentMethodType,
		Message:       tx.StatusMessage,
	}
}
