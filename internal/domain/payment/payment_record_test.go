package payment

import (
	"testing"
	"time"

	"github.com/erp/payments/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helpers
func createTestPaymentRecord(t *testing.T, method PaymentMethod) *PaymentRecord {
	record, err := NewPaymentRecord(
		uuid.New(),
		uuid.New(),
		nil,
		valueobject.NewMoneyMYRFromFloat(250.00),
		RecordKindRegular,
		time.Now(),
		method,
		"",
	)
	require.NoError(t, err)
	return record
}

// ============================================
// PaymentMethod Tests
// ============================================

func TestPaymentMethod_InitialStatus(t *testing.T) {
	tests := []struct {
		method PaymentMethod
		want   RecordStatus
	}{
		{PaymentMethodCash, RecordStatusActive},
		{PaymentMethodBankTransfer, RecordStatusActive},
		{PaymentMethodOnline, RecordStatusActive},
		{PaymentMethodCheque, RecordStatusPending},
	}

	for _, tt := range tests {
		t.Run(string(tt.method), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.method.InitialStatus())
		})
	}
}

func TestPaymentMethod_IsValid(t *testing.T) {
	assert.True(t, PaymentMethodCash.IsValid())
	assert.True(t, PaymentMethodCheque.IsValid())
	assert.False(t, PaymentMethod("CRYPTO").IsValid())
	assert.False(t, PaymentMethod("").IsValid())
}

// ============================================
// NewPaymentRecord Tests
// ============================================

func TestNewPaymentRecord_Success(t *testing.T) {
	record := createTestPaymentRecord(t, PaymentMethodCash)

	assert.Equal(t, RecordStatusActive, record.Status)
	assert.Equal(t, RecordKindRegular, record.Kind)
	assert.Nil(t, record.BatchReference)
	assert.Nil(t, record.BankAccount)
	assert.Nil(t, record.JournalEntryID)
	assert.Len(t, record.GetDomainEvents(), 1)
}

func TestNewPaymentRecord_Validation(t *testing.T) {
	tenantID := uuid.New()
	invoiceID := uuid.New()
	emptyRef := ""

	tests := []struct {
		name      string
		invoiceID uuid.UUID
		ref       *string
		amount    valueobject.Money
		kind      RecordKind
		method    PaymentMethod
	}{
		{"nil invoice", uuid.Nil, nil, valueobject.NewMoneyMYRFromFloat(10), RecordKindRegular, PaymentMethodCash},
		{"zero amount", invoiceID, nil, valueobject.ZeroMYR(), RecordKindRegular, PaymentMethodCash},
		{"negative amount", invoiceID, nil, valueobject.NewMoneyMYRFromFloat(-10), RecordKindRegular, PaymentMethodCash},
		{"invalid kind", invoiceID, nil, valueobject.NewMoneyMYRFromFloat(10), RecordKind("BONUS"), PaymentMethodCash},
		{"invalid method", invoiceID, nil, valueobject.NewMoneyMYRFromFloat(10), RecordKindRegular, PaymentMethod("CRYPTO")},
		{"empty reference", invoiceID, &emptyRef, valueobject.NewMoneyMYRFromFloat(10), RecordKindRegular, PaymentMethodCash},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPaymentRecord(tenantID, tt.invoiceID, tt.ref, tt.amount, tt.kind, time.Now(), tt.method, "")
			assert.Error(t, err)
		})
	}
}

// ============================================
// Confirm Tests
// ============================================

func TestPaymentRecord_Confirm(t *testing.T) {
	record := createTestPaymentRecord(t, PaymentMethodCheque)
	require.True(t, record.CanConfirm())

	err := record.Confirm("BANK_PBB", "JE-1001")

	require.NoError(t, err)
	assert.Equal(t, RecordStatusActive, record.Status)
	assert.Equal(t, BankAccount("BANK_PBB"), *record.BankAccount)
	assert.Equal(t, "JE-1001", *record.JournalEntryID)
	assert.NotNil(t, record.ConfirmedAt)
	assert.False(t, record.CanConfirm())
}

func TestPaymentRecord_Confirm_InvalidStates(t *testing.T) {
	active := createTestPaymentRecord(t, PaymentMethodCash)
	assert.Error(t, active.Confirm("BANK_PBB", "JE-1"), "active record cannot be confirmed again at the aggregate level")

	cancelled := createTestPaymentRecord(t, PaymentMethodCheque)
	require.NoError(t, cancelled.Cancel())
	assert.Error(t, cancelled.Confirm("BANK_PBB", "JE-1"))
}

func TestPaymentRecord_Confirm_RequiresBankAccountAndJournal(t *testing.T) {
	record := createTestPaymentRecord(t, PaymentMethodCheque)

	assert.Error(t, record.Confirm("", "JE-1"))
	assert.Error(t, record.Confirm("BANK_PBB", ""))
	assert.Equal(t, RecordStatusPending, record.Status)
}

// ============================================
// Cancel Tests
// ============================================

func TestPaymentRecord_Cancel(t *testing.T) {
	tests := []struct {
		name   string
		method PaymentMethod
	}{
		{"pending record", PaymentMethodCheque},
		{"active record", PaymentMethodCash},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := createTestPaymentRecord(t, tt.method)

			require.NoError(t, record.Cancel())
			assert.Equal(t, RecordStatusCancelled, record.Status)
			assert.NotNil(t, record.CancelledAt)
		})
	}
}

func TestPaymentRecord_Cancel_IsTerminal(t *testing.T) {
	record := createTestPaymentRecord(t, PaymentMethodCash)
	require.NoError(t, record.Cancel())

	assert.Error(t, record.Cancel(), "cancellation is terminal")
	assert.Error(t, record.Confirm("BANK_PBB", "JE-1"), "a cancelled record is never resurrected")
}

// ============================================
// AffectsBalance Tests
// ============================================

func TestPaymentRecord_AffectsBalance(t *testing.T) {
	regular := createTestPaymentRecord(t, PaymentMethodCash)
	assert.True(t, regular.AffectsBalance())

	overpaid, err := NewPaymentRecord(uuid.New(), uuid.New(), nil,
		valueobject.NewMoneyMYRFromFloat(20), RecordKindOverpaid, time.Now(), PaymentMethodCash, "")
	require.NoError(t, err)
	assert.False(t, overpaid.AffectsBalance())
}

func TestPaymentRecord_GetAmountMoney(t *testing.T) {
	record := createTestPaymentRecord(t, PaymentMethodCash)

	money := record.GetAmountMoney()
	assert.True(t, money.Amount().Equal(decimal.NewFromFloat(250.00)))
	assert.Equal(t, valueobject.MYR, money.Currency())
}
