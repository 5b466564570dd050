package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/smallledger/arview/internal/clock"
	invoicedomain "github.com/smallledger/arview/internal/invoice/domain"
)

// SyncInvoices pulls invoices from QuickBooks and upserts them locally.
func (s *Server) SyncInvoices(c *gin.Context) {
	batch := intParam(c, "batch", 200, 1, 1000)

	upserts, err := s.syncSvc.Sync(c.Request.Context(), batch)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"upserts": upserts})
}

// ListInvoices serves the paged invoice listing with derived view fields.
func (s *Server) ListInvoices(c *gin.Context) {
	p, err := bindPagination(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	page, err := s.querySvc.PageViews(c.Request.Context(), invoicedomain.PageViewsRequest{
		Pagination: p,
		Status:     c.Query("status"),
		Query:      c.Query("q"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

type createInvoiceBody struct {
	Amount       *decimal.Decimal `json:"amount"`
	CustomerName string           `json:"customerName"`
	ItemName     string           `json:"itemName"`
	DaysUntilDue *int             `json:"daysUntilDue"`
	Note         string           `json:"note"`
}

// CreateInvoice writes an invoice to QuickBooks and mirrors it locally.
func (s *Server) CreateInvoice(c *gin.Context) {
	var body createInvoiceBody
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, newValidationError("body", "invalid_json", "request body must be valid JSON"))
		return
	}
	if body.Amount == nil {
		AbortWithError(c, newValidationError("amount", "required", "amount is required"))
		return
	}

	inv, err := s.createSvc.Create(c.Request.Context(), invoicedomain.CreateInvoiceRequest{
		Amount:       *body.Amount,
		CustomerName: body.CustomerName,
		ItemName:     body.ItemName,
		DaysUntilDue: body.DaysUntilDue,
		Note:         body.Note,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, invoicedomain.NewInvoiceView(inv, clock.Today(s.clock)))
}

// Aging serves the balance-weighted aging breakdown over open balances.
func (s *Server) Aging(c *gin.Context) {
	buckets, err := s.querySvc.Aging(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, buckets)
}

// OverdueAging serves the five fixed overdue buckets.
func (s *Server) OverdueAging(c *gin.Context) {
	buckets, err := s.querySvc.OverdueAging(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, buckets)
}

// ListOverdue serves the paged overdue listing, due-date ascending.
func (s *Server) ListOverdue(c *gin.Context) {
	p, err := bindPagination(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	page, err := s.querySvc.PageOverdue(c.Request.Context(), invoicedomain.PageOverdueRequest{
		Pagination: p,
		Bucket:     c.Query("bucket"),
		Query:      c.Query("q"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Summary serves the overview card aggregates.
func (s *Server) Summary(c *gin.Context) {
	summary, err := s.querySvc.Summary(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
