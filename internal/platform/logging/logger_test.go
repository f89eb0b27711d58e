package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() (*Logger, *bytes.Buffer) {
	l := New("idis-test", "info", "json")
	var buf bytes.Buffer
	l.SetOutput(&buf)
	return l, &buf
}

func decodeLastLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	return out
}

func TestNew_InvalidLevelDefaultsToInfo(t *testing.T) {
	l := New("svc", "not-a-level", "json")

	assert.Equal(t, "info", l.GetLevel().String())
}

func TestWithContext_CarriesRequestTenantAndActorIDs(t *testing.T) {
	l, buf := newTestLogger()
	ctx := WithActorID(WithTenantID(WithRequestID(context.Background(), "req-1"), "tenant-1"), "actor-1")

	l.WithContext(ctx).Info("hello")

	entry := decodeLastLine(t, buf)
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "tenant-1", entry["tenant_id"])
	assert.Equal(t, "actor-1", entry["actor_id"])
	assert.Equal(t, "idis-test", entry["service"])
}

func TestWithContext_OmitsMissingIDs(t *testing.T) {
	l, buf := newTestLogger()

	l.WithContext(context.Background()).Info("hello")

	entry := decodeLastLine(t, buf)
	assert.NotContains(t, entry, "request_id")
}

func TestWithFields_TagsServiceAlongsideSuppliedFields(t *testing.T) {
	l, buf := newTestLogger()

	l.WithFields(map[string]interface{}{"deal_id": "deal-1"}).Info("hello")

	entry := decodeLastLine(t, buf)
	assert.Equal(t, "deal-1", entry["deal_id"])
	assert.Equal(t, "idis-test", entry["service"])
}

func TestWithError_IncludesErrorMessage(t *testing.T) {
	l, buf := newTestLogger()

	l.WithError(errors.New("boom")).Error("failed")

	entry := decodeLastLine(t, buf)
	assert.Equal(t, "boom", entry["error"])
}

func TestLogAudit_TagsAuditTrueAndEventFields(t *testing.T) {
	l, buf := newTestLogger()

	l.LogAudit(context.Background(), "deal.created", "deal", "deal-1")

	entry := decodeLastLine(t, buf)
	assert.Equal(t, true, entry["audit"])
	assert.Equal(t, "deal.created", entry["event_type"])
	assert.Equal(t, "deal", entry["resource_type"])
}

func TestLogSecurityEvent_TagsSecurityEventKind(t *testing.T) {
	l, buf := newTestLogger()

	l.LogSecurityEvent(context.Background(), "break_glass_invoked", map[string]interface{}{"deal_id": "deal-1"})

	entry := decodeLastLine(t, buf)
	assert.Equal(t, "break_glass_invoked", entry["security_event"])
	assert.Equal(t, "deal-1", entry["deal_id"])
}

func TestRequestIDContext_RoundTrips(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-42")

	assert.Equal(t, "req-42", GetRequestID(ctx))
	assert.Empty(t, GetTenantID(ctx))
}

func TestNewRequestID_ReturnsNonEmptyUUID(t *testing.T) {
	assert.NotEmpty(t, NewRequestID())
}

func TestDefault_InitializesFallbackWhenUnset(t *testing.T) {
	assert.NotNil(t, Default())
}
