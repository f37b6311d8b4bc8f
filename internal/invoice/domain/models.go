// Package domain contains the invoice request and document models.
package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

// LineItem is one cart entry. Each item becomes exactly one invoice row.
//
// Price is in whole Rupiah. Negative prices or quantities are not validated;
// callers are trusted to send non-negative values.
type LineItem struct {
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int64  `json:"quantity"`
	ImageURL  string `json:"image_url"`
	Variation string `json:"variation,omitempty"`
}

// Subtotal returns price * quantity.
func (i LineItem) Subtotal() int64 {
	return i.Price * i.Quantity
}

// HasVariation reports whether a variation label should be drawn.
func (i LineItem) HasVariation() bool {
	return strings.TrimSpace(i.Variation) != ""
}

// CustomerFields holds the checkout form values stamped on the first page.
type CustomerFields struct {
	CompanyName      string `json:"company_name"`
	ContactPerson    string `json:"contact_person"`
	OrderChannel     string `json:"order_channel"`
	PaymentDate      string `json:"payment_date"`
	EstimatedArrival string `json:"estimated_arrival"`
	PaymentMethod    string `json:"payment_method"`
}

// GenerateRequest is the input of one invoice generation.
type GenerateRequest struct {
	Items    []LineItem     `json:"items"`
	Customer CustomerFields `json:"customer"`
}

// GrandTotal sums every item subtotal.
func GrandTotal(items []LineItem) int64 {
	var total int64
	for _, item := range items {
		total += item.Subtotal()
	}
	return total
}

// Document is a serialized invoice ready to be saved or downloaded.
type Document struct {
	ID            snowflake.ID
	Number        string
	Filename      string
	IssuedAt      time.Time
	Bytes         []byte
	Pages         int
	ProductCount  int
	Total         int64
	SkippedImages int
}
