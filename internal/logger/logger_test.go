package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureJSON(t *testing.T) *bytes.Buffer {
	t.Helper()
	prev := log
	var buf bytes.Buffer
	SetLogger(New("production", &buf))
	t.Cleanup(func() {
		if prev != nil {
			SetLogger(prev)
		}
	})
	return &buf
}

func TestOrphan_EmitsReconcilableRecord(t *testing.T) {
	buf := captureJSON(t)
	ctx := WithRequestID(context.Background(), "req-1")

	Orphan(ctx, "object", "65f0c0ffee", "pointer update failed", errors.New("connection reset"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "orphaned_blob", entry["event"])
	assert.Equal(t, "object", entry["backend"])
	assert.Equal(t, "65f0c0ffee", entry["handle"])
	assert.Equal(t, "connection reset", entry["error"])
	assert.Equal(t, "req-1", entry["request_id"])
}

func TestFromContext_AddsUserID(t *testing.T) {
	buf := captureJSON(t)
	ctx := WithUserID(context.Background(), "admin-1")

	CtxInfo(ctx, "hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "admin-1", entry["user_id"])
	assert.NotContains(t, entry, "request_id")
}
