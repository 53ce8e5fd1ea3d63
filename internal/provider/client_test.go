package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Noushen23/CatalogoAPP-sub000/internal/domain"
)

func TestClient_TransactionByID(t *testing.T) {
	t.Parallel()

	t.Run("returns normalized transaction", func(t *testing.T) {
		t.Parallel()
		var gotAuth, gotPath string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			gotPath = r.URL.Path
			w.Write([]byte(`{"data":{"id":"tx-9","reference":"CAT-ref1","status":"APPROVED","amount_in_cents":118000,"currency":"COP","payment_method_type":"CARD","status_message":"ok"}}`))
		}))
		defer srv.Close()

		client := NewClient(srv.URL, "prv_test_key")
		event, err := client.TransactionByID(context.Background(), "tx-9")
		if err != nil {
			t.Fatalf("TransactionByID() error = %v", err)
		}
		if gotAuth != "Bearer prv_test_key" {
			t.Errorf("Authorization = %q, want bearer private key", gotAuth)
		}
		if gotPath != "/v1/transactions/tx-9" {
			t.Errorf("path = %q", gotPath)
		}
		if event.TransactionID != "tx-9" || event.Reference != "CAT-ref1" {
			t.Errorf("event identity = %q/%q", event.TransactionID, event.Reference)
		}
		if event.Status != domain.TransactionApproved {
			t.Errorf("Status = %q, want APPROVED", event.Status)
		}
		if event.AmountCents != 118000 || event.Currency != "COP" {
			t.Errorf("amount = %d %s", event.AmountCents, event.Currency)
		}
		if event.PaymentMethod != "CARD" || event.Message != "ok" {
			t.Errorf("method/message = %q/%q", event.PaymentMethod, event.Message)
		}
	})

	t.Run("404 maps to not found", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL, "k").TransactionByID(context.Background(), "missing")
		if !errors.Is(err, domain.ErrTransactionNotFound) {
			t.Fatalf("error = %v, want ErrTransactionNotFound", err)
		}
	})

	t.Run("empty data object maps to not found", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"data":{}}`))
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL, "k").TransactionByID(context.Background(), "tx-9")
		if !errors.Is(err, domain.ErrTransactionNotFound) {
			t.Fatalf("error = %v, want ErrTransactionNotFound", err)
		}
	})

	t.Run("server error maps to provider unavailable", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL, "k").TransactionByID(context.Background(), "tx-9")
		if !errors.Is(err, domain.ErrProviderUnavailable) {
			t.Fatalf("error = %v, want ErrProviderUnavailable", err)
		}
	})

	t.Run("malformed body maps to provider unavailable", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"data":`))
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL, "k").TransactionByID(context.Background(), "tx-9")
		if !errors.Is(err, domain.ErrProviderUnavailable) {
			t.Fatalf("error = %v, want ErrProviderUnavailable", err)
		}
	})

	t.Run("unreachable host maps to provider unavailable", func(t *testing.T) {
		t.Parallel()
		_, err := NewClient("http://127.0.0.1:1", "k").TransactionByID(context.Background(), "tx-9")
		if !errors.Is(err, domain.ErrProviderUnavailable) {
			t.Fatalf("error = %v, want ErrProviderUnavailable", err)
		}
	})
}

func TestClient_TransactionByReference(t *testing.T) {
	t.Parallel()

	t.Run("returns latest transaction for the reference", func(t *testing.T) {
		t.Parallel()
		var gotQuery string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.RawQuery
			w.Write([]byte(`{"data":[
				{"id":"tx-1","reference":"CAT-ref1","status":"DECLINED","amount_in_cents":118000,"currency":"COP"},
				{"id":"tx-2","reference":"CAT-ref1","status":"APPROVED","amount_in_cents":118000,"currency":"COP"}
			]}`))
		}))
		defer srv.Close()

		event, err := NewClient(srv.URL, "k").TransactionByReference(context.Background(), "CAT-ref1")
		if err != nil {
			t.Fatalf("TransactionByReference() error = %v", err)
		}
		if gotQuery != "reference=CAT-ref1" {
			t.Errorf("query = %q", gotQuery)
		}
		if event.TransactionID != "tx-2" || event.Status != domain.TransactionApproved {
			t.Errorf("got %q/%q, want the last transaction in the list", event.TransactionID, event.Status)
		}
	})

	t.Run("empty list maps to not found", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"data":[]}`))
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL, "k").TransactionByReference(context.Background(), "CAT-none")
		if !errors.Is(err, domain.ErrTransactionNotFound) {
			t.Fatalf("error = %v, want ErrTransactionNotFound", err)
		}
	})
}
