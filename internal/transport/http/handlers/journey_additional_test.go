package handlers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"
)

func TestBreakfastOrderJourney(t *testing.T) {
	ts, adminToken := startApp(t)
	client := ts.Client()

	employeeEmail := fmt.Sprintf("orders-%d@example.com", time.Now().UnixNano())
	createEmployee(t, client, ts.URL, adminToken, employeeEmail, 0)
	empToken := login(t, client, ts.URL, employeeEmail, "Secret123!")

	resp := postJSON(t, client, ts.URL+"/api/v1/orders/products", adminToken, map[string]any{
		"name":  "Croissant",
		"price": 1.50,
	})
	var created map[string]string
	if err := json.Unmarshal(resp.Data, &created); err != nil {
		t.Fatalf("failed to decode product response: %v", err)
	}
	productID := created["id"]
	if productID == "" {
		t.Fatal("expected product id")
	}

	day := "2025-09-01"
	postJSON(t, client, ts.URL+"/api/v1/orders", empToken, map[string]any{
		"productId": productID,
		"date":      day,
		"quantity":  2,
	})

	summary := getJSON(t, client, ts.URL+"/api/v1/orders/summary?date="+day, empToken)
	var payload struct {
		Day   string  `json:"day"`
		Total float64 `json:"total"`
	}
	if err := json.Unmarshal(summary.Data, &payload); err != nil {
		t.Fatalf("failed to decode summary: %v", err)
	}
	if payload.Day != day {
		t.Fatalf("expected summary for %s, got %s", day, payload.Day)
	}
	if payload.Total != 3.0 {
		t.Fatalf("expected 3.0 total for two croissants, got %v", payload.Total)
	}

	// Ordering a product that does not exist is a 404.
	doPost(t, client, ts.URL+"/api/v1/orders", empToken, map[string]any{
		"productId": "00000000-0000-0000-0000-000000000000",
		"date":      day,
		"quantity":  1,
	}, http.StatusNotFound)
}

func TestBroadcastAndAdminSurfaces(t *testing.T) {
	ts, adminToken := startApp(t)
	client := ts.Client()

	employeeEmail := fmt.Sprintf("notify-%d@example.com", time.Now().UnixNano())
	createEmployee(t, client, ts.URL, adminToken, employeeEmail, 0)
	empToken := login(t, client, ts.URL, employeeEmail, "Secret123!")

	resp := postJSON(t, client, ts.URL+"/api/v1/notifications/broadcast", adminToken, map[string]any{
		"title":      "Oficina cerrada",
		"body":       "La oficina cierra el viernes.",
		"recipients": []string{employeeEmail},
	})
	var sent map[string]any
	if err := json.Unmarshal(resp.Data, &sent); err != nil {
		t.Fatalf("failed to decode broadcast response: %v", err)
	}
	if sent["recipients"].(float64) != 1 {
		t.Fatalf("expected 1 recipient, got %v", sent["recipients"])
	}

	list := getJSON(t, client, ts.URL+"/api/v1/notifications", empToken)
	var items []map[string]any
	if err := json.Unmarshal(list.Data, &items); err != nil {
		t.Fatalf("failed to decode notifications: %v", err)
	}
	if len(items) == 0 {
		t.Fatal("expected at least one notification")
	}
	if items[0]["title"].(string) != "Oficina cerrada" {
		t.Fatalf("unexpected notification title %v", items[0]["title"])
	}

	// Broadcast is admin-only.
	doPost(t, client, ts.URL+"/api/v1/notifications/broadcast", empToken, map[string]any{
		"title": "x",
		"body":  "y",
	}, http.StatusForbidden)

	metricsResp := getJSON(t, client, ts.URL+"/api/v1/admin/metrics", adminToken)
	var snapshot map[string]any
	if err := json.Unmarshal(metricsResp.Data, &snapshot); err != nil {
		t.Fatalf("failed to decode metrics: %v", err)
	}
	if snapshot["requestsTotal"].(float64) < 1 {
		t.Fatalf("expected request counter to be positive, got %v", snapshot["requestsTotal"])
	}

	jobResp := postJSON(t, client, ts.URL+"/api/v1/admin/jobs/push_token_cleanup/run", adminToken, nil)
	var jobResult map[string]any
	if err := json.Unmarshal(jobResp.Data, &jobResult); err != nil {
		t.Fatalf("failed to decode job response: %v", err)
	}
	if jobResult["job"].(string) != "push_token_cleanup" {
		t.Fatalf("unexpected job name %v", jobResult["job"])
	}

	reconcileResp := postJSON(t, client, ts.URL+"/api/v1/admin/jobs/balance_reconcile/run", adminToken, nil)
	var reconcile struct {
		Job    string         `json:"job"`
		Result map[string]any `json:"result"`
	}
	if err := json.Unmarshal(reconcileResp.Data, &reconcile); err != nil {
		t.Fatalf("failed to decode reconcile response: %v", err)
	}
	if reconcile.Job != "balance_reconcile" {
		t.Fatalf("unexpected job name %v", reconcile.Job)
	}
	// Admin plus the employee created above.
	if reconcile.Result["updated"].(float64) < 2 {
		t.Fatalf("expected at least 2 reconciled employees, got %v", reconcile.Result["updated"])
	}
}
