package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/albarami/idis/internal/domain/document"
	"github.com/albarami/idis/internal/platform/apperr"
	"github.com/albarami/idis/internal/platform/idgen"
)

func unmarshalLocator(raw []byte, out *document.Locator) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, out)
}

// CreateDocument implements storage.DocumentStore.
func (s *Store) CreateDocument(ctx context.Context, d document.Document) (document.Document, error) {
	if d.DocumentID == "" {
		d.DocumentID = idgen.New()
	}
	_, err := DBTXFromContext(ctx, s.db).ExecContext(ctx, `
		INSERT INTO idis_documents (document_id, tenant_id, deal_id, format, filename, version, content_sha256, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, d.DocumentID, d.TenantID, d.DealID, d.Format, d.Filename, d.Version, d.ContentSHA256, d.CreatedAt)
	if err != nil {
		return document.Document{}, err
	}
	return d, nil
}

// GetDocument implements storage.DocumentStore.
func (s *Store) GetDocument(ctx context.Context, tenantID, documentID string) (document.Document, error) {
	row := DBTXFromContext(ctx, s.db).QueryRowContext(ctx, `
		SELECT document_id, tenant_id, deal_id, format, filename, version, content_sha256, created_at
		FROM idis_documents
		WHERE document_id = $1 AND tenant_id = $2
	`, documentID, tenantID)

	var d document.Document
	if err := row.Scan(&d.DocumentID, &d.TenantID, &d.DealID, &d.Format, &d.Filename, &d.Version, &d.ContentSHA256, &d.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return document.Document{}, apperr.NotFound("document", documentID)
		}
		return document.Document{}, err
	}
	return d, nil
}

// ListDocuments implements storage.DocumentStore.
func (s *Store) ListDocuments(ctx context.Context, tenantID, dealID string) ([]document.Document, error) {
	rows, err := DBTXFromContext(ctx, s.db).QueryContext(ctx, `
		SELECT document_id, tenant_id, deal_id, format, filename, version, content_sha256, created_at
		FROM idis_documents
		WHERE tenant_id = $1 AND deal_id = $2
		ORDER BY filename, version
	`, tenantID, dealID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []document.Document
	for rows.Next() {
		var d document.Document
		if err := rows.Scan(&d.DocumentID, &d.TenantID, &d.DealID, &d.Format, &d.Filename, &d.Version, &d.ContentSHA256, &d.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// LatestDocumentVersion implements storage.DocumentStore.
func (s *Store) LatestDocumentVersion(ctx context.Context, tenantID, dealID, filename string) (document.Document, error) {
	row := DBTXFromContext(ctx, s.db).QueryRowContext(ctx, `
		SELECT document_id, tenant_id, deal_id, format, filename, version, content_sha256, created_at
		FROM idis_documents
		WHERE tenant_id = $1 AND deal_id = $2 AND filename = $3
		ORDER BY version DESC
		LIMIT 1
	`, tenantID, dealID, filename)

	var d document.Document
	if err := row.Scan(&d.DocumentID, &d.TenantID, &d.DealID, &d.Format, &d.Filename, &d.Version, &d.ContentSHA256, &d.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return document.Document{}, apperr.NotFound("document", filename)
		}
		return document.Document{}, err
	}
	return d, nil
}

// CreateSpan implements storage.DocumentStore.
func (s *Store) CreateSpan(ctx context.Context, span document.Span) (document.Span, error) {
	if span.SpanID == "" {
		span.SpanID = idgen.New()
	}
	locatorJSON, err := span.LocatorJSON()
	if err != nil {
		return document.Span{}, err
	}
	_, err = DBTXFromContext(ctx, s.db).ExecContext(ctx, `
		INSERT INTO idis_spans (span_id, tenant_id, document_id, span_type, locator, text_excerpt, content_sha256, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, span.SpanID, span.TenantID, span.DocumentID, span.SpanType, locatorJSON, span.TextExcerpt, span.ContentSHA256, span.CreatedAt)
	if err != nil {
		return document.Span{}, err
	}
	return span, nil
}

// GetSpan implements storage.DocumentStore.
func (s *Store) GetSpan(ctx context.Context, tenantID, spanID string) (document.Span, error) {
	row := DBTXFromContext(ctx, s.db).QueryRowContext(ctx, `
		SELECT span_id, tenant_id, document_id, span_type, locator, text_excerpt, content_sha256, created_at
		FROM idis_spans
		WHERE span_id = $1 AND tenant_id = $2
	`, spanID, tenantID)

	var (
		span        document.Span
		locatorJSON []byte
	)
	if err := row.Scan(&span.SpanID, &span.TenantID, &span.DocumentID, &span.SpanType, &locatorJSON, &span.TextExcerpt, &span.ContentSHA256, &span.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return document.Span{}, apperr.NotFound("span", spanID)
		}
		return document.Span{}, err
	}
	if err := unmarshalLocator(locatorJSON, &span.Locator); err != nil {
		return document.Span{}, err
	}
	return span, nil
}

// ListSpans implements storage.DocumentStore.
func (s *Store) ListSpans(ctx context.Context, tenantID, documentID string) ([]document.Span, error) {
	rows, err := DBTXFromContext(ctx, s.db).QueryContext(ctx, `
		SELECT span_id, tenant_id, document_id, span_type, locator, text_excerpt, content_sha256, created_at
		FROM idis_spans
		WHERE tenant_id = $1 AND document_id = $2
		ORDER BY span_id
	`, tenantID, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []document.Span
	for rows.Next() {
		var (
			span        document.Span
			locatorJSON []byte
		)
		if err := rows.Scan(&span.SpanID, &span.TenantID, &span.DocumentID, &span.SpanType, &locatorJSON, &span.TextExcerpt, &span.ContentSHA256, &span.CreatedAt); err != nil {
			return nil, err
		}
		if err := unmarshalLocator(locatorJSON, &span.Locator); err != nil {
			return nil, err
		}
		out = append(out, span)
	}
	return out, rows.Err()
}
