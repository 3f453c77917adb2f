package models

import (
	"time"

	"github.com/erp/payments/internal/domain/payment"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceModel is the persistence model for the Invoice aggregate root.
type InvoiceModel struct {
	TenantAggregateModel
	InvoiceNumber      string                `gorm:"type:varchar(50);not null;uniqueIndex:idx_invoice_tenant_number,priority:2"`
	CustomerName       string                `gorm:"type:varchar(200);not null"`
	TotalAmountPayable decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	BalanceDue         decimal.Decimal       `gorm:"type:decimal(18,4);not null;index"`
	Status             payment.InvoiceStatus `gorm:"type:varchar(20);not null;default:'UNPAID';index"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice entity.
func (m *InvoiceModel) ToDomain() *payment.Invoice {
	inv := &payment.Invoice{
		InvoiceNumber:      m.InvoiceNumber,
		CustomerName:       m.CustomerName,
		TotalAmountPayable: m.TotalAmountPayable,
		BalanceDue:         m.BalanceDue,
		Status:             m.Status,
	}
	m.PopulateTenantAggregateRoot(&inv.TenantAggregateRoot)
	return inv
}

// FromDomain populates the persistence model from a domain Invoice entity.
func (m *InvoiceModel) FromDomain(inv *payment.Invoice) {
	m.FromDomainTenantAggregateRoot(inv.TenantAggregateRoot)
	m.InvoiceNumber = inv.InvoiceNumber
	m.CustomerName = inv.CustomerName
	m.TotalAmountPayable = inv.TotalAmountPayable
	m.BalanceDue = inv.BalanceDue
	m.Status = inv.Status
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice.
func InvoiceModelFromDomain(inv *payment.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}

// PaymentRecordModel is the persistence model for the PaymentRecord aggregate root.
type PaymentRecordModel struct {
	TenantAggregateModel
	InvoiceID      uuid.UUID             `gorm:"type:uuid;not null;index"`
	BatchReference *string               `gorm:"type:varchar(100);index"`
	Amount         decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	Kind           payment.RecordKind    `gorm:"type:varchar(20);not null;default:'REGULAR'"`
	PaymentDate    time.Time             `gorm:"not null;index"`
	Method         payment.PaymentMethod `gorm:"type:varchar(20);not null;index"`
	Status         payment.RecordStatus  `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	BankAccount    *string               `gorm:"type:varchar(50)"`
	JournalEntryID *string               `gorm:"type:varchar(100)"`
	Notes          string                `gorm:"type:text"`
	ConfirmedAt    *time.Time
	CancelledAt    *time.Time
}

// TableName returns the table name for GORM
func (PaymentRecordModel) TableName() string {
	return "payment_records"
}

// ToDomain converts the persistence model to a domain PaymentRecord entity.
func (m *PaymentRecordModel) ToDomain() *payment.PaymentRecord {
	record := &payment.PaymentRecord{
		InvoiceID:      m.InvoiceID,
		BatchReference: m.BatchReference,
		Amount:         m.Amount,
		Kind:           m.Kind,
		PaymentDate:    m.PaymentDate,
		Method:         m.Method,
		Status:         m.Status,
		JournalEntryID: m.JournalEntryID,
		Notes:          m.Notes,
		ConfirmedAt:    m.ConfirmedAt,
		CancelledAt:    m.CancelledAt,
	}
	if m.BankAccount != nil {
		account := payment.BankAccount(*m.BankAccount)
		record.BankAccount = &account
	}
	m.PopulateTenantAggregateRoot(&record.TenantAggregateRoot)
	return record
}

// FromDomain populates the persistence model from a domain PaymentRecord entity.
func (m *PaymentRecordModel) FromDomain(record *payment.PaymentRecord) {
	m.FromDomainTenantAggregateRoot(record.TenantAggregateRoot)
	m.InvoiceID = record.InvoiceID
	m.BatchReference = record.BatchReference
	m.Amount = record.Amount
	m.Kind = record.Kind
	m.PaymentDate = record.PaymentDate
	m.Method = record.Method
	m.Status = record.Status
	m.JournalEntryID = record.JournalEntryID
	m.Notes = record.Notes
	m.ConfirmedAt = record.ConfirmedAt
	m.CancelledAt = record.CancelledAt
	if record.BankAccount != nil {
		account := record.BankAccount.String()
		m.BankAccount = &account
	} else {
		m.BankAccount = nil
	}
}

// PaymentRecordModelFromDomain creates a new persistence model from a domain PaymentRecord.
func PaymentRecordModelFromDomain(record *payment.PaymentRecord) *PaymentRecordModel {
	m := &PaymentRecordModel{}
	m.FromDomain(record)
	return m
}
