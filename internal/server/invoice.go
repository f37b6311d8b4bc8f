package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	invoicedomain "github.com/smallbiznis/bingkai/internal/invoice/domain"
	obstracing "github.com/smallbiznis/bingkai/internal/observability/tracing"
)

const (
	HeaderInvoiceNumber = "X-Invoice-Number"
	HeaderInvoiceID     = "X-Invoice-ID"
)

// GenerateInvoice renders the cart and returns the PDF as a download.
func (s *Server) GenerateInvoice(c *gin.Context) {
	var req invoicedomain.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	doc, err := s.invoiceSvc.Generate(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Set(obstracing.InvoiceNumberKey, doc.Number)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	c.Header(HeaderInvoiceNumber, doc.Number)
	c.Header(HeaderInvoiceID, doc.ID.String())
	c.Data(http.StatusOK, "application/pdf", doc.Bytes)
}

// PreviewInvoice lays the cart out without producing a PDF.
func (s *Server) PreviewInvoice(c *gin.Context) {
	var req invoicedomain.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	preview, err := s.invoiceSvc.Preview(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": preview})
}
