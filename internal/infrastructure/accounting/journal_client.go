// Package accounting provides the HTTP client for the external
// accounting-ledger service that records confirmed payments as
// journal entries.
package accounting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/erp/payments/internal/domain/payment"
	"github.com/erp/payments/internal/infrastructure/config"
)

const (
	journalEntriesPath  = "/api/v1/journal-entries"
	voidJournalPathTmpl = "/api/v1/journal-entries/%s/void"
)

// JournalClient implements payment.JournalService against the external
// accounting service over HTTP.
type JournalClient struct {
	baseURL      string
	apiKey       string
	bankAccounts []payment.BankAccount
	httpClient   *http.Client
}

// NewJournalClient creates a journal client from the accounting configuration
func NewJournalClient(cfg config.AccountingConfig) *JournalClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	accounts := make([]payment.BankAccount, len(cfg.BankAccounts))
	for i, a := range cfg.BankAccounts {
		accounts[i] = payment.BankAccount(a)
	}

	return &JournalClient{
		baseURL:      cfg.BaseURL,
		apiKey:       cfg.APIKey,
		bankAccounts: accounts,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type createEntryRequest struct {
	InvoiceID   uuid.UUID       `json:"invoice_id"`
	RecordID    uuid.UUID       `json:"record_id"`
	Amount      decimal.Decimal `json:"amount"`
	BankAccount string          `json:"bank_account"`
}

type createEntryResponse struct {
	JournalEntryID string `json:"journal_entry_id"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CreateJournalEntry records a confirmed payment in the external ledger
func (c *JournalClient) CreateJournalEntry(ctx context.Context, req payment.JournalEntryRequest) (string, error) {
	body := createEntryRequest{
		InvoiceID:   req.InvoiceID,
		RecordID:    req.RecordID,
		Amount:      req.Amount,
		BankAccount: string(req.BankAccount),
	}

	respBody, err := c.doRequest(ctx, http.MethodPost, journalEntriesPath, body)
	if err != nil {
		return "", err
	}

	var resp createEntryResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", fmt.Errorf("accounting: failed to parse response: %w", err)
	}
	if resp.JournalEntryID == "" {
		return "", fmt.Errorf("accounting: response missing journal entry id")
	}
	return resp.JournalEntryID, nil
}

// VoidJournalEntry voids a previously created journal entry
func (c *JournalClient) VoidJournalEntry(ctx context.Context, journalEntryID string) error {
	path := fmt.Sprintf(voidJournalPathTmpl, journalEntryID)
	_, err := c.doRequest(ctx, http.MethodPost, path, nil)
	return err
}

// BankAccounts returns the configured deposit accounts
func (c *JournalClient) BankAccounts() []payment.BankAccount {
	return c.bankAccounts
}

func (c *JournalClient) doRequest(ctx context.Context, method, path string, body interface{}) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("accounting: failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("accounting: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("accounting: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("accounting: failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp errorResponse
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Message != "" {
			return nil, fmt.Errorf("accounting: %s (%s): %s", resp.Status, errResp.Code, errResp.Message)
		}
		return nil, fmt.Errorf("accounting: unexpected status %s", resp.Status)
	}

	return respBody, nil
}
