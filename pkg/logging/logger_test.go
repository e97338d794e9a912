package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"
)

func newTestLogger(buf *bytes.Buffer) *Logger {
	config := DefaultConfig("sales-service")
	config.Output = buf
	return New(config)
}

func decodeLogLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not valid JSON: %v\n%s", err, buf.String())
	}
	return entry
}

func TestLogger_SaleCommitted(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	logger.SaleCommitted(context.Background(), "TXN-20260829-101500-ABC123", "store-001", 3, 4797, 42*time.Millisecond)

	entry := decodeLogLine(t, &buf)

	if entry["msg"] != "Sale committed" {
		t.Errorf("msg = %v, want %q", entry["msg"], "Sale committed")
	}
	if entry["transactionId"] != "TXN-20260829-101500-ABC123" {
		t.Errorf("transactionId = %v", entry["transactionId"])
	}
	if entry["storeId"] != "store-001" {
		t.Errorf("storeId = %v", entry["storeId"])
	}
	if entry["itemCount"] != float64(3) {
		t.Errorf("itemCount = %v, want 3", entry["itemCount"])
	}
	if entry["totalCents"] != float64(4797) {
		t.Errorf("totalCents = %v, want 4797", entry["totalCents"])
	}
	if entry["durationMs"] != float64(42) {
		t.Errorf("durationMs = %v, want 42", entry["durationMs"])
	}
	if entry["service"] != "sales-service" {
		t.Errorf("service = %v, want sales-service", entry["service"])
	}
}

func TestLogger_WithContextRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	ctx := ContextWithRequestID(context.Background(), "req-42")
	logger.WithContext(ctx).Info("handled")

	entry := decodeLogLine(t, &buf)
	if entry["requestId"] != "req-42" {
		t.Errorf("requestId = %v, want req-42", entry["requestId"])
	}
}
