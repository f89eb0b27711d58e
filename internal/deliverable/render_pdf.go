package deliverable

import (
	"bytes"
	"fmt"
	"strings"
)

const pdfLineHeight = 14

// BuildPDF renders d to a minimal single-page PDF, byte-deterministic for a
// fixed exportTimestamp (spec.md §4.7: "PDF output begins %PDF and uses
// fixed creation/modification dates supplied by the caller"). No
// third-party PDF library exists anywhere in the corpus this repo draws
// from; the object/xref/trailer structure below is the minimum a PDF
// reader requires, hand-written against the PDF 1.4 object model.
func BuildPDF(d Deliverable, exportTimestamp string, includeAuditAppendix bool) []byte {
	pdfDate := toPDFDate(exportTimestamp)
	lines := strings.Split(strings.TrimRight(RenderText(d, includeAuditAppendix), "\n"), "\n")

	var content bytes.Buffer
	content.WriteString("BT /F1 10 Tf 12 TL 40 760 Td\n")
	for i, line := range lines {
		if i > 0 {
			content.WriteString("T*\n")
		}
		fmt.Fprintf(&content, "(%s) Tj\n", escapePDFString(line))
	}
	content.WriteString("ET\n")

	objects := make([][]byte, 0, 6)
	objects = append(objects, []byte("<< /Type /Catalog /Pages 2 0 R >>"))
	objects = append(objects, []byte("<< /Type /Pages /Kids [3 0 R] /Count 1 >>"))
	objects = append(objects, []byte("<< /Type /Page /Parent 2 0 R /Resources << /Font << /F1 5 0 R >> >> /MediaBox [0 0 612 792] /Contents 4 0 R >>"))
	objects = append(objects, []byte(fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", content.Len(), content.String())))
	objects = append(objects, []byte("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>"))
	objects = append(objects, []byte(fmt.Sprintf("<< /CreationDate (%s) /ModDate (%s) /Producer (idis-deliverable) >>", pdfDate, pdfDate)))

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	offsets := make([]int, len(objects)+1)
	for i, obj := range objects {
		offsets[i+1] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xrefStart := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for i := 1; i <= len(objects); i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[i])
	}

	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R /Info 6 0 R >>\nstartxref\n%d\n%%%%EOF", len(objects)+1, xrefStart)

	return buf.Bytes()
}

func escapePDFString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}

// toPDFDate converts an ISO-8601 export timestamp into a PDF date string
// (D:YYYYMMDDHHmmSSZ). Inputs are already UTC (spec.md export_timestamp
// convention); malformed input falls back to the zero PDF date rather than
// failing the export, since the date is informational only.
func toPDFDate(exportTimestamp string) string {
	digits := make([]byte, 0, 14)
	for _, r := range exportTimestamp {
		if r >= '0' && r <= '9' {
			digits = append(digits, byte(r))
		}
		if len(digits) == 14 {
			break
		}
	}
	for len(digits) < 14 {
		digits = append(digits, '0')
	}
	return "D:" + string(digits) + "Z"
}
