package accounting

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erp/payments/internal/domain/payment"
	"github.com/erp/payments/internal/infrastructure/config"
)

func newTestClient(serverURL string) *JournalClient {
	return NewJournalClient(config.AccountingConfig{
		BaseURL:      serverURL,
		APIKey:       "test-key",
		Timeout:      5 * time.Second,
		BankAccounts: []string{"BANK_PBB", "BANK_MBB"},
	})
}

func TestJournalClient_CreateJournalEntry(t *testing.T) {
	t.Run("posts entry and returns journal entry id", func(t *testing.T) {
		invoiceID := uuid.New()
		recordID := uuid.New()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/api/v1/journal-entries", r.URL.Path)
			assert.Equal(t, "test-key", r.Header.Get("X-API-Key"))

			var body map[string]interface{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, invoiceID.String(), body["invoice_id"])
			assert.Equal(t, recordID.String(), body["record_id"])
			assert.Equal(t, "BANK_PBB", body["bank_account"])

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"journal_entry_id": "JE-2024-0001"})
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		entryID, err := client.CreateJournalEntry(context.Background(), payment.JournalEntryRequest{
			InvoiceID:   invoiceID,
			RecordID:    recordID,
			Amount:      decimal.NewFromInt(150),
			BankAccount: "BANK_PBB",
		})

		assert.NoError(t, err)
		assert.Equal(t, "JE-2024-0001", entryID)
	})

	t.Run("surfaces service error message", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnprocessableEntity)
			json.NewEncoder(w).Encode(map[string]string{
				"code":    "PERIOD_CLOSED",
				"message": "Accounting period is closed",
			})
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		entryID, err := client.CreateJournalEntry(context.Background(), payment.JournalEntryRequest{
			InvoiceID:   uuid.New(),
			RecordID:    uuid.New(),
			Amount:      decimal.NewFromInt(50),
			BankAccount: "BANK_MBB",
		})

		assert.Error(t, err)
		assert.Empty(t, entryID)
		assert.Contains(t, err.Error(), "PERIOD_CLOSED")
	})

	t.Run("rejects response without entry id", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{}`))
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		_, err := client.CreateJournalEntry(context.Background(), payment.JournalEntryRequest{
			InvoiceID:   uuid.New(),
			RecordID:    uuid.New(),
			Amount:      decimal.NewFromInt(50),
			BankAccount: "BANK_MBB",
		})

		assert.Error(t, err)
	})
}

func TestJournalClient_VoidJournalEntry(t *testing.T) {
	t.Run("posts to void endpoint", func(t *testing.T) {
		var gotPath string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		err := client.VoidJournalEntry(context.Background(), "JE-2024-0001")

		assert.NoError(t, err)
		assert.Equal(t, "/api/v1/journal-entries/JE-2024-0001/void", gotPath)
	})

	t.Run("propagates failure status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		err := client.VoidJournalEntry(context.Background(), "JE-2024-0001")

		assert.Error(t, err)
	})
}

func TestJournalClient_BankAccounts(t *testing.T) {
	client := newTestClient("http://localhost:8090")
	accounts := client.BankAccounts()

	assert.Equal(t, []payment.BankAccount{"BANK_PBB", "BANK_MBB"}, accounts)
}
