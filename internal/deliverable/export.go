package deliverable

import (
	"github.com/albarami/idis/internal/platform/apperr"
	"github.com/albarami/idis/internal/validate"
)

// Format is the closed set of export output formats.
type Format string

const (
	FormatPDF  Format = "PDF"
	FormatDOCX Format = "DOCX"
)

// Result is one export's output.
type Result struct {
	Format                Format
	ContentBytes          []byte
	ContentLength         int
	IncludesAuditAppendix bool
}

// Exporter renders Deliverables to PDF or DOCX, gating every export on the
// No-Free-Facts check unless explicitly disabled (spec.md §4.7: "hard,
// pre-export").
type Exporter struct {
	ValidateBeforeExport bool
}

// NewExporter builds an Exporter with the No-Free-Facts gate enabled.
func NewExporter() *Exporter {
	return &Exporter{ValidateBeforeExport: true}
}

func (e *Exporter) validate(d Deliverable) error {
	if !e.ValidateBeforeExport {
		return nil
	}
	if err := validate.NoFreeFacts(d.ValidationFacts()); err != nil {
		nffErr, ok := err.(*validate.NoFreeFactsError)
		if !ok {
			return err
		}
		return apperr.NoFreeFactsViolation(nffErr.OffendingPaths)
	}
	return nil
}

// ExportToPDF validates d (unless disabled) and renders it to PDF bytes.
func (e *Exporter) ExportToPDF(d Deliverable, exportTimestamp string, includeAuditAppendix bool) (Result, error) {
	if err := e.validate(d); err != nil {
		return Result{}, err
	}
	content := BuildPDF(d, exportTimestamp, includeAuditAppendix)
	return Result{Format: FormatPDF, ContentBytes: content, ContentLength: len(content), IncludesAuditAppendix: includeAuditAppendix}, nil
}

// ExportToDOCX validates d (unless disabled) and renders it to DOCX bytes.
func (e *Exporter) ExportToDOCX(d Deliverable, exportTimestamp string, includeAuditAppendix bool) (Result, error) {
	if err := e.validate(d); err != nil {
		return Result{}, err
	}
	content, err := BuildDOCX(d, exportTimestamp, includeAuditAppendix)
	if err != nil {
		return Result{}, apperr.Internal("docx render failed", err)
	}
	return Result{Format: FormatDOCX, ContentBytes: content, ContentLength: len(content), IncludesAuditAppendix: includeAuditAppendix}, nil
}
