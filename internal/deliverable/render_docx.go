package deliverable

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"sort"
	"strings"
	"time"
)

// fixedZipModTime is written into every entry's header instead of the
// wall-clock time, so two exports of the same deliverable produce
// byte-identical zip bytes (spec.md §4.7: "a fixed DOS timestamp").
var fixedZipModTime = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

// BuildDOCX renders d to a minimal Word-compatible docx package:
// [Content_Types].xml, _rels/.rels, and word/document.xml, byte-deterministic
// for identical input. archive/zip is the standard library's zip writer;
// no third-party OOXML/zip library exists anywhere in the corpus this
// repo draws from, so the package is hand-assembled directly against the
// OOXML part-naming convention.
func BuildDOCX(d Deliverable, exportTimestamp string, includeAuditAppendix bool) ([]byte, error) {
	parts := map[string]string{
		"[Content_Types].xml": contentTypesXML,
		"_rels/.rels":         relsXML,
		"word/document.xml":   documentXML(d, includeAuditAppendix),
	}

	names := make([]string, 0, len(parts))
	for name := range parts {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, name := range names {
		header := &zip.FileHeader{
			Name:     name,
			Method:   zip.Deflate,
			Modified: fixedZipModTime,
		}
		fw, err := w.CreateHeader(header)
		if err != nil {
			return nil, err
		}
		if _, err := fw.Write([]byte(parts[name])); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/><Default Extension="xml" ContentType="application/xml"/><Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/></Types>`

const relsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/></Relationships>`

func documentXML(d Deliverable, includeAuditAppendix bool) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	b.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)

	for _, line := range strings.Split(strings.TrimRight(RenderText(d, includeAuditAppendix), "\n"), "\n") {
		b.WriteString("<w:p><w:r><w:t xml:space=\"preserve\">")
		xml.EscapeText(&b, []byte(line))
		b.WriteString("</w:t></w:r></w:p>")
	}

	b.WriteString(`</w:body></w:document>`)
	return b.String()
}
