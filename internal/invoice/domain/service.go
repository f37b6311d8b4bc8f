package domain

import (
	"context"
	"errors"
)

type Service interface {
	Generate(ctx context.Context, req GenerateRequest) (*Document, error)
	Preview(ctx context.Context, req GenerateRequest) (*Preview, error)
}

// Preview describes the laid out invoice without serializing it.
type Preview struct {
	Number       string        `json:"number"`
	Filename     string        `json:"filename"`
	Pages        int           `json:"pages"`
	ProductCount int           `json:"product_count"`
	Total        int64         `json:"total"`
	TotalText    string        `json:"total_text"`
	Footer       FooterPreview `json:"footer"`
	Operations   []Operation   `json:"operations"`
}

type FooterPreview struct {
	Page    int     `json:"page"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	NewPage bool    `json:"new_page"`
}

// Operation is one recorded draw call.
type Operation struct {
	Kind   string  `json:"kind"`
	Page   int     `json:"page"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
	Text   string  `json:"text,omitempty"`
	Font   string  `json:"font,omitempty"`
	Ref    string  `json:"ref,omitempty"`
}

var (
	ErrTemplateNotFound = errors.New("template_not_found")
	ErrInvalidTemplate  = errors.New("invalid_template")
	ErrFontNotFound     = errors.New("font_not_found")
	ErrInvalidFont      = errors.New("invalid_font")
	ErrSequence         = errors.New("invoice_sequence_unavailable")
	ErrRender           = errors.New("invoice_render_failed")
)
