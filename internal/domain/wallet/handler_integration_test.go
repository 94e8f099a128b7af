package wallet_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/carfix/carfix-api/internal/domain/wallet"
	"github.com/carfix/carfix-api/internal/middleware"
	"github.com/carfix/carfix-api/internal/pkg/jwt"
)

type walletAPIResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func TestWalletEndpointsIntegration(t *testing.T) {
	db := setupTestDB(t)
	defer cleanupTestDB(db)

	userID := createTestUser(t, db)
	svc := newTestService(db)
	h := wallet.NewHandler(svc)

	jwtSvc := jwt.NewService("wallet-integration-secret", time.Hour, 24*time.Hour)
	token, err := jwtSvc.GenerateAccessToken(userID, "customer")
	if err != nil {
		t.Fatalf("generate token failed: %v", err)
	}

	r := chi.NewRouter()
	r.Mount("/api/v1/wallet", h.Routes(middleware.Auth(jwtSvc)))

	t.Run("GET initial summary", func(t *testing.T) {
		resp := performWalletRequest(t, r, token, http.MethodGet, "/api/v1/wallet", nil)
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
		}
		body := decodeWalletResponse(t, resp)
		var summary wallet.Summary
		if err := json.Unmarshal(body.Data, &summary); err != nil {
			t.Fatalf("decode summary: %v", err)
		}
		if !body.Success || !summary.Balance.IsZero() {
			t.Fatalf("expected success=true balance=0, got success=%v balance=%s", body.Success, summary.Balance)
		}
		if len(summary.Transactions) != 0 {
			t.Fatalf("expected empty history, got %d entries", len(summary.Transactions))
		}
	})

	t.Run("POST credit", func(t *testing.T) {
		resp := performWalletRequest(t, r, token, http.MethodPost, "/api/v1/wallet", map[string]interface{}{
			"amount":       100.50,
			"type":         "credit",
			"reference_id": "topup_1",
		})
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
		}
		body := decodeWalletResponse(t, resp)
		var result wallet.TransactionResult
		if err := json.Unmarshal(body.Data, &result); err != nil {
			t.Fatalf("decode result: %v", err)
		}
		if !result.NewBalance.Equal(decimal.RequireFromString("100.5")) {
			t.Fatalf("expected new balance 100.5, got %s", result.NewBalance)
		}
		if result.Description != "Wallet top-up" {
			t.Fatalf("expected default description, got %q", result.Description)
		}
	})

	t.Run("POST debit", func(t *testing.T) {
		resp := performWalletRequest(t, r, token, http.MethodPost, "/api/v1/wallet", map[string]interface{}{
			"amount":       40,
			"type":         "debit",
			"description":  "Diagnostic fee",
			"reference_id": "spend_1",
		})
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
		}
		body := decodeWalletResponse(t, resp)
		var result wallet.TransactionResult
		if err := json.Unmarshal(body.Data, &result); err != nil {
			t.Fatalf("decode result: %v", err)
		}
		if !result.NewBalance.Equal(decimal.RequireFromString("60.5")) {
			t.Fatalf("expected new balance 60.5, got %s", result.NewBalance)
		}
	})

	t.Run("POST insufficient funds", func(t *testing.T) {
		resp := performWalletRequest(t, r, token, http.MethodPost, "/api/v1/wallet", map[string]interface{}{
			"amount":       10000,
			"type":         "debit",
			"reference_id": "spend_2",
		})
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d: %s", resp.Code, resp.Body.String())
		}
		body := decodeWalletResponse(t, resp)
		if body.Error == nil || body.Error.Code != "INSUFFICIENT_FUNDS" {
			t.Fatalf("expected INSUFFICIENT_FUNDS error, got %+v", body.Error)
		}
	})

	t.Run("POST duplicate reference", func(t *testing.T) {
		resp := performWalletRequest(t, r, token, http.MethodPost, "/api/v1/wallet", map[string]interface{}{
			"amount":       100.50,
			"type":         "credit",
			"reference_id": "topup_1",
		})
		if resp.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d: %s", resp.Code, resp.Body.String())
		}
		body := decodeWalletResponse(t, resp)
		if body.Error == nil || body.Error.Code != "DUPLICATE_REFERENCE" {
			t.Fatalf("expected DUPLICATE_REFERENCE error, got %+v", body.Error)
		}
	})

	t.Run("POST negative amount", func(t *testing.T) {
		resp := performWalletRequest(t, r, token, http.MethodPost, "/api/v1/wallet", map[string]interface{}{
			"amount": -10,
			"type":   "credit",
		})
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d: %s", resp.Code, resp.Body.String())
		}
		body := decodeWalletResponse(t, resp)
		if body.Error == nil || body.Error.Code != "VALIDATION_ERROR" {
			t.Fatalf("expected VALIDATION_ERROR, got %+v", body.Error)
		}
		if body.Error.Details["amount"] == "" {
			t.Fatalf("expected a detail for amount, got %+v", body.Error.Details)
		}
	})

	t.Run("POST unknown type", func(t *testing.T) {
		resp := performWalletRequest(t, r, token, http.MethodPost, "/api/v1/wallet", map[string]interface{}{
			"amount": 10,
			"type":   "transfer",
		})
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d: %s", resp.Code, resp.Body.String())
		}
		body := decodeWalletResponse(t, resp)
		if body.Error == nil || body.Error.Code != "VALIDATION_ERROR" {
			t.Fatalf("expected VALIDATION_ERROR, got %+v", body.Error)
		}
		if body.Error.Details["type"] == "" {
			t.Fatalf("expected a detail for type, got %+v", body.Error.Details)
		}
	})

	t.Run("GET pagination", func(t *testing.T) {
		resp := performWalletRequest(t, r, token, http.MethodGet, "/api/v1/wallet?limit=1&offset=1", nil)
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
		}
		body := decodeWalletResponse(t, resp)
		var summary wallet.Summary
		if err := json.Unmarshal(body.Data, &summary); err != nil {
			t.Fatalf("decode summary: %v", err)
		}
		if len(summary.Transactions) != 1 {
			t.Fatalf("expected 1 transaction on page, got %d", len(summary.Transactions))
		}
		if summary.Pagination.Total != 2 || summary.Pagination.Limit != 1 || summary.Pagination.Offset != 1 {
			t.Fatalf("unexpected pagination: %+v", summary.Pagination)
		}
	})

	t.Run("unauthenticated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/wallet", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}

func performWalletRequest(t *testing.T, r chi.Router, token, method, path string, payload map[string]interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeWalletResponse(t *testing.T, rec *httptest.ResponseRecorder) walletAPIResponse {
	t.Helper()
	var body walletAPIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v (body: %s)", err, rec.Body.String())
	}
	return body
}
