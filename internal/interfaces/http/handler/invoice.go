package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	paymentapp "github.com/erp/payments/internal/application/payment"
	"github.com/erp/payments/internal/domain/shared"
	"github.com/erp/payments/internal/interfaces/http/dto"
)

// InvoiceHandler handles invoice ledger read endpoints
type InvoiceHandler struct {
	BaseHandler
	listingService *paymentapp.ListingService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(listingService *paymentapp.ListingService) *InvoiceHandler {
	return &InvoiceHandler{listingService: listingService}
}

// ListInvoices handles GET /invoices
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		h.Unauthorized(c, "Tenant context required")
		return
	}

	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := shared.DefaultFilter()
	if req.Page > 0 {
		filter.Page = req.Page
	}
	if req.PageSize > 0 {
		filter.PageSize = req.PageSize
	}
	if req.OrderBy != "" {
		filter.OrderBy = req.OrderBy
	}
	if req.OrderDir != "" {
		filter.OrderDir = req.OrderDir
	}
	filter.Search = req.Search
	if status := c.Query("status"); status != "" {
		filter.Filters["status"] = status
	}

	invoices, err := h.listingService.ListInvoices(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, invoices)
}

// GetInvoice handles GET /invoices/:id.
// The response includes the invoice and its payment records.
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		h.Unauthorized(c, "Tenant context required")
		return
	}

	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	detail, err := h.listingService.GetInvoice(c.Request.Context(), tenantID, invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, detail)
}

// RegisterRoutes registers all invoice routes
func (h *InvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	invoices := rg.Group("/invoices")
	{
		invoices.GET("", h.ListInvoices)
		invoices.GET("/:id", h.GetInvoice)
	}
}
