package extraction

import (
	"fmt"
	"time"

	"github.com/tidwall/gjson"

	"github.com/albarami/idis/internal/domain/document"
	"github.com/albarami/idis/internal/platform/idgen"
)

// ParseSpanExport reads the per-document JSON span export a concrete parser
// (PDF/XLSX/DOCX/PPTX, out of scope here) would produce and turns it into
// Span entities. The export shape is a top-level JSON array of objects, one
// per span:
//
//	{"span_type": "PDF_PAGE_LINE", "locator": {"page": 3, "line": 12},
//	 "text_excerpt": "...", "content_sha256": "..."}
//
// gjson reads each element's fields by path rather than decoding into a
// fixed struct. A top-level value that is not an array, or any element
// without a span_type, fails the whole export: no spans are returned.
func ParseSpanExport(tenantID, documentID string, raw []byte) ([]document.Span, error) {
	root := gjson.ParseBytes(raw)
	if !root.IsArray() {
		return nil, fmt.Errorf("extraction: span export is not a JSON array")
	}

	now := time.Now().UTC()
	var spans []document.Span
	var parseErr error
	root.ForEach(func(_, value gjson.Result) bool {
		spanType := document.SpanType(value.Get("span_type").String())
		if spanType == "" {
			parseErr = fmt.Errorf("extraction: span missing span_type")
			return false
		}
		loc := value.Get("locator")
		span := document.Span{
			SpanID:        idgen.New(),
			TenantID:      tenantID,
			DocumentID:    documentID,
			SpanType:      spanType,
			TextExcerpt:   value.Get("text_excerpt").String(),
			ContentSHA256: value.Get("content_sha256").String(),
			CreatedAt:     now,
			Locator: document.Locator{
				Page:      int(loc.Get("page").Int()),
				Line:      int(loc.Get("line").Int()),
				Sheet:     loc.Get("sheet").String(),
				Cell:      loc.Get("cell").String(),
				Row:       int(loc.Get("row").Int()),
				Col:       int(loc.Get("col").Int()),
				Paragraph: int(loc.Get("paragraph").Int()),
				Slide:     int(loc.Get("slide").Int()),
				Shape:     int(loc.Get("shape").Int()),
			},
		}
		spans = append(spans, span)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return spans, nil
}
