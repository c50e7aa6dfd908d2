package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"nomina/internal/app/server"
	"nomina/internal/platform/config"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

func testConfig(dbURL string) config.Config {
	return config.Config{
		Addr:                 ":0",
		Environment:          "test",
		DatabaseURL:          dbURL,
		JWTSecret:            "test-secret",
		TokenTTL:             time.Hour,
		RunMigrations:        true,
		MigrationsDir:        migrationsDir(),
		RunSeed:              true,
		SeedAdminEmail:       "admin@test.local",
		SeedAdminPassword:    "ChangeMe123!",
		MaxBodyBytes:         1048576,
		RateLimitPerMinute:   1000,
		CORSAllowedOrigins:   []string{"*"},
		EmailFrom:            "no-reply@test.local",
		DailyReportInterval:  0,
		TokenCleanupInterval: 0,
		MetricsEnabled:       true,
	}
}

func migrationsDir() string {
	// Tests run from the package directory.
	return "../../../../migrations"
}

func startApp(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := testConfig(dbURL)
	app, err := server.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	t.Cleanup(app.Close)

	ts := httptest.NewServer(app.Router)
	t.Cleanup(ts.Close)

	token := login(t, ts.Client(), ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)
	return ts, token
}

func TestOvertimeAndPayrollJourney(t *testing.T) {
	ts, adminToken := startApp(t)
	client := ts.Client()

	employeeEmail := fmt.Sprintf("journey-%d@example.com", time.Now().UnixNano())
	createEmployee(t, client, ts.URL, adminToken, employeeEmail, 200)
	empToken := login(t, client, ts.URL, employeeEmail, "Secret123!")

	// 2h30m at 10 €/h must come out as 25.00.
	logOvertime(t, client, ts.URL, empToken, "2025-03-03", "normal", 2, 30, 10)

	totals := overtimeTotals(t, client, ts.URL, empToken, "2025-03-01", "2025-03-31")
	if totals["totalAmount"].(float64) != 25.0 {
		t.Fatalf("expected 25.0 overtime amount, got %v", totals["totalAmount"])
	}
	if totals["totalHours"].(float64) != 2.5 {
		t.Fatalf("expected 2.5 overtime hours, got %v", totals["totalHours"])
	}

	year := 2025
	saveConfig(t, client, ts.URL, adminToken, employeeEmail, year)

	nominaID := createNomina(t, client, ts.URL, adminToken, map[string]any{
		"email":        employeeEmail,
		"year":         year,
		"type":         "monthly",
		"month":        "marzo",
		"trienioCount": 0,
		"periodStart":  "2025-03-01",
		"periodEnd":    "2025-03-31",
	}, http.StatusCreated)
	if nominaID == "" {
		t.Fatal("expected nomina id")
	}

	// Same (employee, year, month, type) twice must be refused.
	createNomina(t, client, ts.URL, adminToken, map[string]any{
		"email":        employeeEmail,
		"year":         year,
		"type":         "monthly",
		"month":        "marzo",
		"trienioCount": 0,
		"periodStart":  "2025-03-01",
		"periodEnd":    "2025-03-31",
	}, http.StatusConflict)

	pdfReq, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/v1/nominas/"+nominaID+"/pdf", nil)
	pdfReq.Header.Set("Authorization", "Bearer "+empToken)
	pdfResp, err := client.Do(pdfReq)
	if err != nil {
		t.Fatalf("pdf request failed: %v", err)
	}
	defer pdfResp.Body.Close()
	if pdfResp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for pdf, got %d", pdfResp.StatusCode)
	}
	if ct := pdfResp.Header.Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("expected application/pdf, got %s", ct)
	}
}

func TestVacationLedgerJourney(t *testing.T) {
	ts, adminToken := startApp(t)
	client := ts.Client()

	employeeEmail := fmt.Sprintf("ledger-%d@example.com", time.Now().UnixNano())
	createEmployee(t, client, ts.URL, adminToken, employeeEmail, 200)
	empToken := login(t, client, ts.URL, employeeEmail, "Secret123!")

	dates := []string{"2025-07-01", "2025-07-02", "2025-07-03"}
	requestID := submitVacation(t, client, ts.URL, empToken, dates)

	balance := vacationBalance(t, client, ts.URL, empToken)
	if balance["pendingHours"].(float64) != 24 {
		t.Fatalf("expected 24 pending hours, got %v", balance["pendingHours"])
	}
	if balance["availableHours"].(float64) != 200 {
		t.Fatalf("expected 200 available before approval, got %v", balance["availableHours"])
	}

	doPost(t, client, ts.URL+"/api/v1/vacations/"+requestID+"/approve", adminToken, nil, http.StatusOK)

	balance = vacationBalance(t, client, ts.URL, empToken)
	if balance["availableHours"].(float64) != 176 {
		t.Fatalf("expected 176 available after approval, got %v", balance["availableHours"])
	}
	if balance["pendingHours"].(float64) != 0 {
		t.Fatalf("expected 0 pending after approval, got %v", balance["pendingHours"])
	}

	// Cancelling one of the three days refunds 8 hours.
	doPost(t, client, ts.URL+"/api/v1/vacations/"+requestID+"/cancel-partial", empToken,
		map[string]any{"dates": []string{"2025-07-02"}, "reason": "cambio de planes"}, http.StatusOK)

	balance = vacationBalance(t, client, ts.URL, empToken)
	if balance["availableHours"].(float64) != 184 {
		t.Fatalf("expected 184 available after partial cancel, got %v", balance["availableHours"])
	}

	// The same date cannot be cancelled twice.
	doPost(t, client, ts.URL+"/api/v1/vacations/"+requestID+"/cancel-partial", empToken,
		map[string]any{"dates": []string{"2025-07-02"}}, http.StatusConflict)
}

func login(t *testing.T, client *http.Client, baseURL, email, password string) string {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/v1/auth/login", "", map[string]any{
		"email":    email,
		"password": password,
	})
	var payload map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}
	token, _ := payload["token"].(string)
	if token == "" {
		t.Fatal("expected token")
	}
	return token
}

func createEmployee(t *testing.T, client *http.Client, baseURL, token, email string, allowance float64) {
	t.Helper()
	postJSON(t, client, baseURL+"/api/v1/employees", token, map[string]any{
		"email":          email,
		"name":           "Journey Tester",
		"role":           "employee",
		"password":       "Secret123!",
		"hireDate":       "2019-01-15",
		"allowanceHours": allowance,
		"defaultRate":    10,
	})
}

func logOvertime(t *testing.T, client *http.Client, baseURL, token, date, entryType string, hours, minutes int, rate float64) {
	t.Helper()
	postJSON(t, client, baseURL+"/api/v1/overtime", token, map[string]any{
		"date":    date,
		"type":    entryType,
		"hours":   hours,
		"minutes": minutes,
		"rate":    rate,
	})
}

func overtimeTotals(t *testing.T, client *http.Client, baseURL, token, start, end string) map[string]any {
	t.Helper()
	url := fmt.Sprintf("%s/api/v1/overtime/totals?period=custom&start=%s&end=%s", baseURL, start, end)
	resp := getJSON(t, client, url, token)
	var payload struct {
		Totals map[string]any `json:"totals"`
	}
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode totals: %v", err)
	}
	return payload.Totals
}

func saveConfig(t *testing.T, client *http.Client, baseURL, token, email string, year int) {
	t.Helper()
	url := fmt.Sprintf("%s/api/v1/payroll/config/%s/%d", baseURL, email, year)
	raw, _ := json.Marshal(map[string]any{
		"salaryLevel": 5,
		"baseSalary":  1500,
		"hasTrienios": false,
	})
	req, err := http.NewRequest(http.MethodPut, url, bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("config save failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected 200 saving config, got %d: %s", resp.StatusCode, raw)
	}
}

func createNomina(t *testing.T, client *http.Client, baseURL, token string, body map[string]any, wantStatus int) string {
	t.Helper()
	resp := doPost(t, client, baseURL+"/api/v1/nominas", token, body, wantStatus)
	if wantStatus != http.StatusCreated {
		return ""
	}
	var payload map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode nomina response: %v", err)
	}
	id, _ := payload["id"].(string)
	return id
}

func submitVacation(t *testing.T, client *http.Client, baseURL, token string, dates []string) string {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/v1/vacations", token, map[string]any{"dates": dates})
	var payload map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode vacation response: %v", err)
	}
	id, _ := payload["id"].(string)
	if id == "" {
		t.Fatal("expected request id")
	}
	return id
}

func vacationBalance(t *testing.T, client *http.Client, baseURL, token string) map[string]any {
	t.Helper()
	resp := getJSON(t, client, baseURL+"/api/v1/vacations/balance", token)
	var payload map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode balance: %v", err)
	}
	return payload
}

func postJSON(t *testing.T, client *http.Client, url, token string, body any) envelope {
	t.Helper()
	resp := doRequest(t, client, http.MethodPost, url, token, body)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response: %v", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		t.Fatalf("unexpected status %d for %s: %s", resp.StatusCode, url, raw)
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("failed to decode envelope: %v", err)
	}
	return env
}

func doPost(t *testing.T, client *http.Client, url, token string, body any, wantStatus int) envelope {
	t.Helper()
	resp := doRequest(t, client, http.MethodPost, url, token, body)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response: %v", err)
	}
	if resp.StatusCode != wantStatus {
		t.Fatalf("expected status %d for %s, got %d: %s", wantStatus, url, resp.StatusCode, raw)
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("failed to decode envelope: %v", err)
	}
	return env
}

func getJSON(t *testing.T, client *http.Client, url, token string) envelope {
	t.Helper()
	resp := doRequest(t, client, http.MethodGet, url, token, nil)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d for %s: %s", resp.StatusCode, url, raw)
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("failed to decode envelope: %v", err)
	}
	return env
}

func doRequest(t *testing.T, client *http.Client, method, url, token string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}
