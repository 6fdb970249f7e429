package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fintrack/internal/services"
	"fintrack/internal/store/memory"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	st := memory.New()
	srv := NewServer("127.0.0.1:0",
		services.NewTransactionService(st, nil),
		services.NewReportService(st),
		nil,
		Options{})
	t.Cleanup(func() {
		srv.cacheManager.Stop()
		srv.rateLimiter.stop()
	})
	return srv
}

func doRequest(srv *Server, method, target, owner string, body string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	if owner != "" {
		req.Header.Set("X-Owner-ID", owner)
	}
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	return rec
}

func createTransaction(t *testing.T, srv *Server, owner, body string) transactionResponse {
	t.Helper()
	rec := doRequest(srv, http.MethodPost, "/api/transactions", owner, body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp transactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("create: unmarshal: %v", err)
	}
	return resp
}

func TestHandleCreateTransaction(t *testing.T) {
	srv := newTestServer(t)

	t.Run("valid", func(t *testing.T) {
		resp := createTransaction(t, srv, "alice",
			`{"kind":"expense","category":"Groceries","amount":"12,34","date":"2024-03-10","notes":"weekly shop"}`)
		if resp.ID == 0 {
			t.Error("expected assigned id")
		}
		if resp.AmountCents != 1234 {
			t.Errorf("amountCents = %d, want 1234", resp.AmountCents)
		}
		if resp.Amount != "€12,34" {
			t.Errorf("amount = %q, want €12,34", resp.Amount)
		}
	})

	t.Run("missing owner header", func(t *testing.T) {
		rec := doRequest(srv, http.MethodPost, "/api/transactions", "",
			`{"kind":"expense","category":"Groceries","amount":"12.34","date":"2024-03-10"}`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := doRequest(srv, http.MethodPost, "/api/transactions", "alice", `{"kind":`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("invalid amount", func(t *testing.T) {
		rec := doRequest(srv, http.MethodPost, "/api/transactions", "alice",
			`{"kind":"expense","category":"Groceries","amount":"-5","date":"2024-03-10"}`)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want 422, body = %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("invalid date", func(t *testing.T) {
		rec := doRequest(srv, http.MethodPost, "/api/transactions", "alice",
			`{"kind":"expense","category":"Groceries","amount":"5","date":"10/03/2024"}`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("unknown kind", func(t *testing.T) {
		rec := doRequest(srv, http.MethodPost, "/api/transactions", "alice",
			`{"kind":"transfer","category":"Groceries","amount":"5","date":"2024-03-10"}`)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want 422", rec.Code)
		}
	})
}

func TestTransactionLifecycle(t *testing.T) {
	srv := newTestServer(t)

	created := createTransaction(t, srv, "alice",
		`{"kind":"income","category":"Salary","amount":"2500.00","date":"2024-03-01"}`)

	path := fmt.Sprintf("/api/transactions/%d", created.ID)

	rec := doRequest(srv, http.MethodGet, path, "alice", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get: status = %d", rec.Code)
	}

	rec = doRequest(srv, http.MethodPut, path, "alice",
		`{"kind":"income","category":"Salary","amount":"2600.00","date":"2024-03-01"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var updated transactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatalf("update: unmarshal: %v", err)
	}
	if updated.AmountCents != 260000 {
		t.Errorf("updated amountCents = %d, want 260000", updated.AmountCents)
	}

	rec = doRequest(srv, http.MethodDelete, path, "alice", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: status = %d", rec.Code)
	}

	rec = doRequest(srv, http.MethodGet, path, "alice", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete: status = %d, want 404", rec.Code)
	}
}

func TestOwnerIsolation(t *testing.T) {
	srv := newTestServer(t)

	created := createTransaction(t, srv, "alice",
		`{"kind":"expense","category":"Rent","amount":"800","date":"2024-03-01"}`)

	path := fmt.Sprintf("/api/transactions/%d", created.ID)
	rec := doRequest(srv, http.MethodGet, path, "bob", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("cross-owner get: status = %d, want 404", rec.Code)
	}

	rec = doRequest(srv, http.MethodGet, "/api/transactions", "bob", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list: status = %d", rec.Code)
	}
	var list []transactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("list: unmarshal: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("bob sees %d transactions, want 0", len(list))
	}
}

func TestHandleGetTransaction_InvalidID(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(srv, http.MethodGet, "/api/transactions/abc", "alice", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleReport(t *testing.T) {
	srv := newTestServer(t)

	createTransaction(t, srv, "alice",
		`{"kind":"income","category":"Salary","amount":"5000","date":"2024-03-01"}`)
	createTransaction(t, srv, "alice",
		`{"kind":"expense","category":"Rent","amount":"1500","date":"2024-03-05"}`)
	createTransaction(t, srv, "alice",
		`{"kind":"expense","category":"Groceries","amount":"1000","date":"2024-03-20"}`)

	rec := doRequest(srv, http.MethodGet, "/api/report?granularity=month&value=2024-03", "alice", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("report: status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var payload struct {
		Report struct {
			Totals struct {
				Income  struct{ Cents int64 }
				Expense struct{ Cents int64 }
			} `json:"totals"`
			HasTransactions bool `json:"hasTransactions"`
		} `json:"report"`
		CanNavigateForward bool `json:"canNavigateForward"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if payload.Report.Totals.Income.Cents != 500000 {
		t.Errorf("income = %d, want 500000", payload.Report.Totals.Income.Cents)
	}
	if payload.Report.Totals.Expense.Cents != 250000 {
		t.Errorf("expense = %d, want 250000", payload.Report.Totals.Expense.Cents)
	}
	if !payload.CanNavigateForward {
		t.Error("expected canNavigateForward for a past month")
	}

	t.Run("empty period is not an error", func(t *testing.T) {
		rec := doRequest(srv, http.MethodGet, "/api/report?granularity=month&value=2020-01", "alice", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"hasTransactions":false`) {
			t.Errorf("expected hasTransactions=false, body = %s", rec.Body.String())
		}
	})

	t.Run("invalid granularity", func(t *testing.T) {
		rec := doRequest(srv, http.MethodGet, "/api/report?granularity=quarter&value=2024", "alice", "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("custom range start after end", func(t *testing.T) {
		rec := doRequest(srv, http.MethodGet,
			"/api/report?granularity=custom&start=2024-03-10&end=2024-03-01", "alice", "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestReportCacheInvalidation(t *testing.T) {
	srv := newTestServer(t)

	createTransaction(t, srv, "alice",
		`{"kind":"expense","category":"Rent","amount":"100","date":"2024-03-01"}`)

	target := "/api/report?granularity=month&value=2024-03"
	first := doRequest(srv, http.MethodGet, target, "alice", "")
	if first.Code != http.StatusOK {
		t.Fatalf("first report: status = %d", first.Code)
	}

	// A write bumps the owner epoch, so the next read must see fresh data.
	createTransaction(t, srv, "alice",
		`{"kind":"expense","category":"Rent","amount":"100","date":"2024-03-02"}`)

	second := doRequest(srv, http.MethodGet, target, "alice", "")
	if second.Code != http.StatusOK {
		t.Fatalf("second report: status = %d", second.Code)
	}
	if !strings.Contains(second.Body.String(), `"cents":20000`) &&
		!strings.Contains(second.Body.String(), `"Cents":20000`) {
		t.Errorf("expected refreshed expense total 20000 cents, body = %s", second.Body.String())
	}
}

func TestHandleReportExport(t *testing.T) {
	srv := newTestServer(t)

	createTransaction(t, srv, "alice",
		`{"kind":"expense","category":"Rent","amount":"800","date":"2024-03-01"}`)

	tests := []struct {
		format      string
		contentType string
		prefix      string
	}{
		{"csv", "text/csv; charset=utf-8", "section,label"},
		{"json", "application/json; charset=utf-8", "{"},
		{"pdf", "application/pdf", "%PDF"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			rec := doRequest(srv, http.MethodGet,
				"/api/report/export?granularity=month&value=2024-03&format="+tt.format, "alice", "")
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
			}
			if got := rec.Header().Get("Content-Type"); got != tt.contentType {
				t.Errorf("content type = %q, want %q", got, tt.contentType)
			}
			if !strings.HasPrefix(rec.Body.String(), tt.prefix) {
				t.Errorf("body does not start with %q", tt.prefix)
			}
		})
	}

	t.Run("unsupported format", func(t *testing.T) {
		rec := doRequest(srv, http.MethodGet,
			"/api/report/export?granularity=month&value=2024-03&format=xml", "alice", "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestRateLimitOnWrites(t *testing.T) {
	srv := newTestServer(t)

	body := `{"kind":"expense","category":"Coffee","amount":"2.50","date":"2024-03-01"}`
	var limited bool
	for i := 0; i < 70; i++ {
		rec := doRequest(srv, http.MethodPost, "/api/transactions", "alice", body)
		if rec.Code == http.StatusTooManyRequests {
			limited = true
			if rec.Header().Get("Retry-After") != "60" {
				t.Errorf("Retry-After = %q, want 60", rec.Header().Get("Retry-After"))
			}
			break
		}
	}
	if !limited {
		t.Error("expected a 429 after exceeding the write rate limit")
	}

	// Reads are never rate limited.
	rec := doRequest(srv, http.MethodGet, "/api/transactions", "alice", "")
	if rec.Code != http.StatusOK {
		t.Errorf("read after limit: status = %d, want 200", rec.Code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(srv, http.MethodGet, "/api/transactions", "alice", "")
	headers := map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Referrer-Policy":        "strict-origin-when-cross-origin",
	}
	for name, want := range headers {
		if got := rec.Header().Get(name); got != want {
			t.Errorf("%s = %q, want %q", name, got, want)
		}
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(srv, http.MethodGet, "/healthz", "", "")
	if rec.Code != http.StatusOK {
		t.Errorf("healthz: status = %d", rec.Code)
	}

	rec = doRequest(srv, http.MethodGet, "/readyz", "", "")
	if rec.Code != http.StatusOK {
		t.Errorf("readyz without pinger: status = %d", rec.Code)
	}
}
