package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bukocash/internal/store"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	st := store.New(store.Snapshot{})
	return NewServer(":0", st, nil, 7, nil)
}

func doJSON(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Errorf("GET /healthz = %d, want 200", rec.Code)
	}
	var health struct {
		Status        string `json:"status"`
		RateLimitHits int64  `json:"rateLimitHits"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &health); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if health.Status != "ok" {
		t.Errorf("status = %q, want ok", health.Status)
	}
	if health.RateLimitHits != 0 {
		t.Errorf("rateLimitHits = %d, want 0 on a fresh server", health.RateLimitHits)
	}

	rec = doJSON(t, s, http.MethodGet, "/readyz", "")
	if rec.Code != http.StatusOK {
		t.Errorf("GET /readyz = %d, want 200", rec.Code)
	}
}

func TestCreateTransactionUpdatesBalance(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/transactions",
		`{"amount":150.5,"description":"Nómina","date":"2024-04-01","categoryId":"inc1","walletId":"w1","type":"income"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /api/transactions = %d, body %s", rec.Code, rec.Body.String())
	}

	var created struct {
		ID     string  `json:"id"`
		Amount float64 `json:"amount"`
		Date   string  `json:"date"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.ID == "" {
		t.Error("created transaction has empty id")
	}
	if created.Date != "2024-04-01" {
		t.Errorf("date = %q, want 2024-04-01", created.Date)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/wallets", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/wallets = %d", rec.Code)
	}
	var wallets []struct {
		ID      string  `json:"id"`
		Balance float64 `json:"balance"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &wallets); err != nil {
		t.Fatalf("decode wallets: %v", err)
	}
	for _, w := range wallets {
		if w.ID == "w1" && w.Balance != 150.5 {
			t.Errorf("w1 balance = %v, want 150.5", w.Balance)
		}
	}
}

func TestCreateTransactionValidation(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{
			name: "malformed json",
			body: `{`,
			want: http.StatusBadRequest,
		},
		{
			name: "bad date",
			body: `{"amount":10,"description":"x","date":"04/01/2024","categoryId":"exp1","walletId":"w1","type":"expense"}`,
			want: http.StatusBadRequest,
		},
		{
			name: "zero amount",
			body: `{"amount":0,"description":"x","date":"2024-04-01","categoryId":"exp1","walletId":"w1","type":"expense"}`,
			want: http.StatusUnprocessableEntity,
		},
		{
			name: "missing category",
			body: `{"amount":10,"description":"x","date":"2024-04-01","walletId":"w1","type":"expense"}`,
			want: http.StatusUnprocessableEntity,
		},
		{
			name: "unknown wallet",
			body: `{"amount":10,"description":"x","date":"2024-04-01","categoryId":"exp1","walletId":"nope","type":"expense"}`,
			want: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, s, http.MethodPost, "/api/transactions", tt.body)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestDeleteWalletConflicts(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/transactions",
		`{"amount":20,"description":"Super","date":"2024-04-01","categoryId":"exp1","walletId":"w1","type":"expense"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("seed transaction: %d", rec.Code)
	}

	rec = doJSON(t, s, http.MethodDelete, "/api/wallets/w1", "")
	if rec.Code != http.StatusConflict {
		t.Errorf("DELETE referenced wallet = %d, want 409", rec.Code)
	}

	rec = doJSON(t, s, http.MethodDelete, "/api/wallets/w2", "")
	if rec.Code != http.StatusNoContent {
		t.Errorf("DELETE free wallet = %d, want 204", rec.Code)
	}

	// w1 is now both referenced and the last wallet.
	rec = doJSON(t, s, http.MethodDelete, "/api/wallets/w1", "")
	if rec.Code != http.StatusConflict {
		t.Errorf("DELETE last wallet = %d, want 409", rec.Code)
	}
}

func TestRecurringLifecycle(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/recurring",
		`{"amount":15,"description":"Netflix","categoryId":"exp5","walletId":"w1","type":"expense","frequency":"monthly"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /api/recurring = %d, body %s", rec.Code, rec.Body.String())
	}
	var rule struct {
		ID      string `json:"id"`
		Active  bool   `json:"active"`
		NextDue string `json:"nextDueDate"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &rule); err != nil {
		t.Fatalf("decode rule: %v", err)
	}
	if !rule.Active {
		t.Error("new rule not active")
	}

	rec = doJSON(t, s, http.MethodPost, "/api/recurring/"+rule.ID+"/confirm", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("confirm = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, s, http.MethodGet, "/api/recurring/upcoming", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("upcoming = %d", rec.Code)
	}

	rec = doJSON(t, s, http.MethodDelete, "/api/recurring/"+rule.ID, "")
	if rec.Code != http.StatusNoContent {
		t.Errorf("DELETE rule = %d, want 204", rec.Code)
	}

	rec = doJSON(t, s, http.MethodDelete, "/api/recurring/"+rule.ID, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("DELETE missing rule = %d, want 404", rec.Code)
	}
}

func TestExportCSV(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/transactions",
		`{"amount":99.99,"description":"Mercado","date":"2024-04-02","categoryId":"exp1","walletId":"w1","type":"expense"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("seed transaction: %d", rec.Code)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/transactions/export", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("export = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type = %q, want text/csv", ct)
	}
	body := rec.Body.String()
	if !strings.HasPrefix(body, "Fecha,Tipo,Descripción") {
		t.Errorf("export missing header row: %q", body[:min(len(body), 60)])
	}
	if !strings.Contains(body, "Mercado") {
		t.Error("export missing seeded transaction")
	}
}

func TestSettingsPatch(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPut, "/api/settings", `{"hasOnboarded":true,"securityPin":"1234"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT /api/settings = %d", rec.Code)
	}
	var settings struct {
		HasOnboarded bool `json:"hasOnboarded"`
		PINSet       bool `json:"pinSet"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &settings); err != nil {
		t.Fatalf("decode settings: %v", err)
	}
	if !settings.HasOnboarded || !settings.PINSet {
		t.Errorf("settings = %+v, want onboarded and pin set", settings)
	}

	// The response must never echo the PIN itself.
	if strings.Contains(rec.Body.String(), "1234") {
		t.Error("settings response leaks the PIN")
	}
}

func TestSyncStatusWithoutMirror(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/api/sync", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/sync = %d", rec.Code)
	}
	var status struct {
		Version int64 `json:"version"`
		Online  bool  `json:"online"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if status.Version != 1 {
		t.Errorf("version = %d, want 1 for fresh store", status.Version)
	}
	if status.Online {
		t.Error("online = true without a mirror")
	}
}

func TestResetRestoresDefaults(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/transactions",
		`{"amount":10,"description":"x","date":"2024-04-01","categoryId":"exp1","walletId":"w1","type":"expense"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("seed transaction: %d", rec.Code)
	}

	rec = doJSON(t, s, http.MethodPost, "/api/reset", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("POST /api/reset = %d", rec.Code)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/transactions", "")
	var txs []json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &txs); err != nil {
		t.Fatalf("decode transactions: %v", err)
	}
	if len(txs) != 0 {
		t.Errorf("transactions after reset = %d, want 0", len(txs))
	}
}

func TestWalletBalanceFormatted(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/transactions",
		`{"amount":150.5,"description":"Nómina","date":"2024-04-01","categoryId":"inc1","walletId":"w1","type":"income"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /api/transactions = %d", rec.Code)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/wallets", "")
	var wallets []struct {
		ID               string `json:"id"`
		BalanceFormatted string `json:"balanceFormatted"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &wallets); err != nil {
		t.Fatalf("decode wallets: %v", err)
	}
	for _, w := range wallets {
		if w.ID == "w1" && w.BalanceFormatted != "$150.50" {
			t.Errorf("balanceFormatted = %q, want $150.50", w.BalanceFormatted)
		}
	}
}

func TestCreateTransactionStringAmount(t *testing.T) {
	s := newTestServer(t)

	// Comma decimals parse the same as dot decimals.
	rec := doJSON(t, s, http.MethodPost, "/api/transactions",
		`{"amount":"25,50","description":"Mercado","date":"2024-04-02","categoryId":"exp1","walletId":"w1","type":"expense"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /api/transactions = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, s, http.MethodGet, "/api/wallets", "")
	var wallets []struct {
		ID      string  `json:"id"`
		Balance float64 `json:"balance"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &wallets); err != nil {
		t.Fatalf("decode wallets: %v", err)
	}
	for _, w := range wallets {
		if w.ID == "w1" && w.Balance != -25.5 {
			t.Errorf("w1 balance = %v, want -25.5", w.Balance)
		}
	}

	for _, bad := range []string{`"abc"`, `"-5"`, `""`} {
		rec = doJSON(t, s, http.MethodPost, "/api/transactions",
			`{"amount":`+bad+`,"description":"x","date":"2024-04-02","categoryId":"exp1","walletId":"w1","type":"expense"}`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("amount %s = %d, want 400", bad, rec.Code)
		}
	}
}

func TestRateLimitExceededIsCounted(t *testing.T) {
	s := newTestServer(t)

	var lastCode int
	for i := 0; i < rateLimitPerMinute+1; i++ {
		rec := doJSON(t, s, http.MethodPost, "/api/recurring/process", "")
		lastCode = rec.Code
	}
	if lastCode != http.StatusTooManyRequests {
		t.Fatalf("request %d = %d, want 429", rateLimitPerMinute+1, lastCode)
	}

	rec := doJSON(t, s, http.MethodGet, "/healthz", "")
	var health struct {
		RateLimitHits int64 `json:"rateLimitHits"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &health); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if health.RateLimitHits < 1 {
		t.Errorf("rateLimitHits = %d, want >= 1", health.RateLimitHits)
	}
}
