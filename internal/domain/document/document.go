// Package document defines Document and Span: an ingested artifact and its
// minimal addressable content locators.
package document

import (
	"encoding/json"
	"time"
)

// Format is the closed set of ingestible artifact formats.
type Format string

const (
	FormatPDF  Format = "PDF"
	FormatXLSX Format = "XLSX"
	FormatDOCX Format = "DOCX"
	FormatPPTX Format = "PPTX"
)

// Document is an ingested artifact belonging to a deal.
type Document struct {
	DocumentID    string
	TenantID      string
	DealID        string
	Format        Format
	Filename      string
	Version       int
	ContentSHA256 string
	CreatedAt     time.Time
}

// SpanType is the closed set of span locator shapes, one per Format.
type SpanType string

const (
	SpanTypePDFPageLine        SpanType = "PDF_PAGE_LINE"
	SpanTypeXLSXCell           SpanType = "XLSX_CELL"
	SpanTypeDOCXParagraph      SpanType = "DOCX_PARAGRAPH"
	SpanTypePPTXShapeParagraph SpanType = "PPTX_SHAPE_PARAGRAPH"
)

// Locator holds the union of positional fields; only the fields matching
// SpanType are meaningful.
type Locator struct {
	Page      int    `json:"page,omitempty"`
	Line      int    `json:"line,omitempty"`
	Sheet     string `json:"sheet,omitempty"`
	Cell      string `json:"cell,omitempty"`
	Row       int    `json:"row,omitempty"`
	Col       int    `json:"col,omitempty"`
	Paragraph int    `json:"paragraph,omitempty"`
	Slide     int    `json:"slide,omitempty"`
	Shape     int    `json:"shape,omitempty"`
}

// Span is the minimal addressable locator of content within a Document.
type Span struct {
	SpanID        string
	TenantID      string
	DocumentID    string
	SpanType      SpanType
	Locator       Locator
	TextExcerpt   string
	ContentSHA256 string
	CreatedAt     time.Time
}

// LocatorJSON renders the locator as JSON for storage/export.
func (s Span) LocatorJSON() ([]byte, error) {
	return json.Marshal(s.Locator)
}
