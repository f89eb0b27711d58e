package memory

import (
	"context"

	"github.com/albarami/idis/internal/domain/document"
	"github.com/albarami/idis/internal/platform/apperr"
	"github.com/albarami/idis/internal/platform/idgen"
)

// CreateDocument implements storage.DocumentStore.
func (m *Memory) CreateDocument(_ context.Context, d document.Document) (document.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d.DocumentID == "" {
		d.DocumentID = idgen.New()
	}
	m.documents[d.DocumentID] = d
	return d, nil
}

// GetDocument implements storage.DocumentStore.
func (m *Memory) GetDocument(_ context.Context, tenantID, documentID string) (document.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.documents[documentID]
	if !ok || d.TenantID != tenantID {
		return document.Document{}, apperr.NotFound("document", documentID)
	}
	return d, nil
}

// ListDocuments implements storage.DocumentStore.
func (m *Memory) ListDocuments(_ context.Context, tenantID, dealID string) ([]document.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []document.Document
	for _, id := range sortedKeys(m.documents) {
		d := m.documents[id]
		if d.TenantID == tenantID && d.DealID == dealID {
			out = append(out, d)
		}
	}
	return out, nil
}

// LatestDocumentVersion implements storage.DocumentStore: the highest
// Version among documents sharing (tenant, deal, filename), used by I'lal
// version-drift detection (spec.md §4.2 step 4).
func (m *Memory) LatestDocumentVersion(_ context.Context, tenantID, dealID, filename string) (document.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var latest document.Document
	found := false
	for _, d := range m.documents {
		if d.TenantID != tenantID || d.DealID != dealID || d.Filename != filename {
			continue
		}
		if !found || d.Version > latest.Version {
			latest = d
			found = true
		}
	}
	if !found {
		return document.Document{}, apperr.NotFound("document", filename)
	}
	return latest, nil
}

// CreateSpan implements storage.DocumentStore.
func (m *Memory) CreateSpan(_ context.Context, s document.Span) (document.Span, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.SpanID == "" {
		s.SpanID = idgen.New()
	}
	m.spans[s.SpanID] = s
	return s, nil
}

// GetSpan implements storage.DocumentStore.
func (m *Memory) GetSpan(_ context.Context, tenantID, spanID string) (document.Span, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.spans[spanID]
	if !ok || s.TenantID != tenantID {
		return document.Span{}, apperr.NotFound("span", spanID)
	}
	return s, nil
}

// ListSpans implements storage.DocumentStore.
func (m *Memory) ListSpans(_ context.Context, tenantID, documentID string) ([]document.Span, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []document.Span
	for _, id := range sortedKeys(m.spans) {
		s := m.spans[id]
		if s.TenantID == tenantID && s.DocumentID == documentID {
			out = append(out, s)
		}
	}
	return out, nil
}
