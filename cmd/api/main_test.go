package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/retail-platform/sales-service/pkg/logging"
)

func newCommitRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	config := logging.DefaultConfig("sales-service")
	config.Output = io.Discard
	logger := logging.New(config)

	router := gin.New()
	// Binding failures are rejected before the service or key
	// repository is touched, so nil collaborators are fine here.
	router.POST("/api/v1/sales", commitSaleHandler(nil, nil, logger))
	return router
}

func TestCommitSaleHandler_RejectsMissingTotalAmount(t *testing.T) {
	router := newCommitRouter()

	body := `{
		"storeId": "store-001",
		"currency": "USD",
		"items": [{"productId": "665f1b2c3d4e5f6a7b8c9d0e", "quantity": 2, "unitPrice": 599}]
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sales", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Code    string            `json:"code"`
		Details map[string]string `json:"details"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if _, ok := resp.Details["totalAmount"]; !ok {
		t.Errorf("expected a validation detail for totalAmount, got %v", resp.Details)
	}
}

func TestCommitSaleHandler_RejectsEmptyItems(t *testing.T) {
	router := newCommitRouter()

	body := `{"storeId": "store-001", "totalAmount": 1198, "items": []}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sales", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", rec.Code, rec.Body.String())
	}
}
