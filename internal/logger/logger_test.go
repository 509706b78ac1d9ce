package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	InitializeWithWriter(&buf, "info", "json")
	defer Initialize("info", "text")

	StatusTransition("sub-1", "PENDING_CONFIRMATION", "OWNER_REJECTED")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "Sub-order status changed", rec["msg"])
	assert.Equal(t, "sub-1", rec["sub_order_id"])
	assert.Equal(t, "OWNER_REJECTED", rec["to"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	InitializeWithWriter(&buf, "info", "text")
	defer Initialize("info", "text")

	EnterMethod("ConfirmLineItem")
	assert.Empty(t, buf.String())

	ExitMethodRejected("ConfirmLineItem", errors.New("invalid state transition"))
	assert.True(t, strings.Contains(buf.String(), "level=WARN"))
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	InitializeWithWriter(&buf, "debug", "text")
	defer Initialize("info", "text")

	ctx := WithRequestID(context.Background(), "req-42")
	assert.Equal(t, "req-42", RequestID(ctx))

	FromContext(ctx).Info("hello")
	assert.Contains(t, buf.String(), "request_id=req-42")

	assert.Empty(t, RequestID(context.Background()))
}
