package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	paymentapp "github.com/erp/payments/internal/application/payment"
	"github.com/erp/payments/internal/domain/payment"
	"github.com/erp/payments/internal/domain/shared"
)

// PaymentHandler handles payment allocation and lifecycle endpoints
type PaymentHandler struct {
	BaseHandler
	allocationService *paymentapp.AllocationService
	transitionService *paymentapp.TransitionService
	listingService    *paymentapp.ListingService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(
	allocationService *paymentapp.AllocationService,
	transitionService *paymentapp.TransitionService,
	listingService *paymentapp.ListingService,
) *PaymentHandler {
	return &PaymentHandler{
		allocationService: allocationService,
		transitionService: transitionService,
		listingService:    listingService,
	}
}

// BatchItemRequest is one invoice/amount pair of an allocation batch
type BatchItemRequest struct {
	InvoiceID string  `json:"invoice_id" binding:"required,uuid"`
	Amount    float64 `json:"amount" binding:"required,gt=0"`
}

// AllocateBatchRequest represents a request to allocate a payment batch
type AllocateBatchRequest struct {
	Reference   *string            `json:"reference" binding:"omitempty,max=100"`
	PaymentDate time.Time          `json:"payment_date" binding:"required"`
	Method      string             `json:"method" binding:"required,payment_method"`
	Notes       string             `json:"notes" binding:"max=500"`
	Items       []BatchItemRequest `json:"items" binding:"required,min=1,dive"`
}

func (r AllocateBatchRequest) toBatch() payment.Batch {
	items := make([]payment.BatchItem, len(r.Items))
	for i, item := range r.Items {
		// uuid binding already validated the format
		id, _ := uuid.Parse(item.InvoiceID)
		items[i] = payment.BatchItem{
			InvoiceID: id,
			Amount:    decimal.NewFromFloat(item.Amount),
		}
	}
	return payment.Batch{
		Reference:   r.Reference,
		PaymentDate: r.PaymentDate,
		Method:      payment.PaymentMethod(r.Method),
		Notes:       r.Notes,
		Items:       items,
	}
}

// ConfirmRequest represents a request to confirm pending payments.
// Exactly one of record_id and batch_reference must be set.
type ConfirmRequest struct {
	RecordID       *string `json:"record_id" binding:"omitempty,uuid"`
	BatchReference *string `json:"batch_reference" binding:"omitempty,max=100"`
	BankAccount    string  `json:"bank_account" binding:"required"`
}

// AllocateBatch handles POST /payments/batches
func (h *PaymentHandler) AllocateBatch(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		h.Unauthorized(c, "Tenant context required")
		return
	}

	var req AllocateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	records, err := h.allocationService.Allocate(c.Request.Context(), tenantID, req.toBatch())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, records)
}

// PreviewBatch handles POST /payments/preview
func (h *PaymentHandler) PreviewBatch(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		h.Unauthorized(c, "Tenant context required")
		return
	}

	var req AllocateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	plan, err := h.allocationService.Preview(c.Request.Context(), tenantID, req.toBatch())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, plan)
}

// Confirm handles POST /payments/confirm
func (h *PaymentHandler) Confirm(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		h.Unauthorized(c, "Tenant context required")
		return
	}

	var req ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	var target paymentapp.ConfirmTarget
	if req.RecordID != nil {
		id, err := uuid.Parse(*req.RecordID)
		if err != nil {
			h.BadRequest(c, "Invalid record_id")
			return
		}
		target.RecordID = &id
	}
	target.BatchReference = req.BatchReference

	confirmed, err := h.transitionService.Confirm(
		c.Request.Context(), tenantID, target, payment.BankAccount(req.BankAccount))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, confirmed)
}

// CancelRecord handles POST /payments/records/:id/cancel
func (h *PaymentHandler) CancelRecord(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		h.Unauthorized(c, "Tenant context required")
		return
	}

	recordID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid record ID")
		return
	}

	record, err := h.transitionService.Cancel(c.Request.Context(), tenantID, recordID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, record)
}

// ListGroupsRequest represents query parameters for the grouped payment view
type ListGroupsRequest struct {
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Status    string `form:"status" binding:"omitempty,oneof=PENDING ACTIVE CANCELLED"`
	Method    string `form:"method"`
	Search    string `form:"search"`
	FromDate  string `form:"from_date" binding:"omitempty,datetime=2006-01-02"`
	ToDate    string `form:"to_date" binding:"omitempty,datetime=2006-01-02"`
	InvoiceID string `form:"invoice_id" binding:"omitempty,uuid"`
}

func (r ListGroupsRequest) toFilter() payment.RecordFilter {
	filter := payment.RecordFilter{Filter: shared.DefaultFilter()}
	if r.Page > 0 {
		filter.Page = r.Page
	}
	if r.PageSize > 0 {
		filter.PageSize = r.PageSize
	}
	filter.Search = r.Search
	if r.Status != "" {
		status := payment.RecordStatus(r.Status)
		filter.Status = &status
	}
	if r.Method != "" {
		method := payment.PaymentMethod(r.Method)
		filter.Method = &method
	}
	if r.FromDate != "" {
		from, _ := time.Parse("2006-01-02", r.FromDate)
		filter.FromDate = &from
	}
	if r.ToDate != "" {
		to, _ := time.Parse("2006-01-02", r.ToDate)
		filter.ToDate = &to
	}
	if r.InvoiceID != "" {
		id, _ := uuid.Parse(r.InvoiceID)
		filter.InvoiceID = &id
	}
	return filter
}

// ListGroups handles GET /payments/groups
func (h *PaymentHandler) ListGroups(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		h.Unauthorized(c, "Tenant context required")
		return
	}

	var req ListGroupsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := req.toFilter()
	groups, err := h.listingService.ListGrouped(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	total, err := h.listingService.CountRecords(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, groups, total, filter.Page, filter.PageSize)
}

// RegisterRoutes registers all payment routes
func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	payments := rg.Group("/payments")
	{
		payments.POST("/batches", h.AllocateBatch)
		payments.POST("/preview", h.PreviewBatch)
		payments.POST("/confirm", h.Confirm)
		payments.POST("/records/:id/cancel", h.CancelRecord)
		payments.GET("/groups", h.ListGroups)
	}
}
