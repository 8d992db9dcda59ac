package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func decodeTriggers(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	header := rec.Header().Get("HX-Trigger")
	if header == "" {
		t.Fatal("HX-Trigger header missing")
	}
	var triggers map[string]interface{}
	if err := json.Unmarshal([]byte(header), &triggers); err != nil {
		t.Fatalf("HX-Trigger is not valid JSON: %v", err)
	}
	return triggers
}

func TestHTMXResponseTriggers(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHTMXResponse().
		TriggerDebtCreated(3).
		TriggerFormReset().
		TriggerSuccessNotification("ok").
		Write(rec)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}

	triggers := decodeTriggers(t, rec)
	created, ok := triggers["debt:created"].(map[string]interface{})
	if !ok {
		t.Fatalf("debt:created missing or wrong shape: %v", triggers)
	}
	if count, _ := created["count"].(float64); count != 3 {
		t.Errorf("debt:created count = %v, want 3", created["count"])
	}
	if _, ok := triggers["form:reset"]; !ok {
		t.Error("form:reset trigger missing")
	}

	notif, ok := triggers["show-notification"].(map[string]interface{})
	if !ok {
		t.Fatal("show-notification trigger missing")
	}
	if notif["type"] != "success" || notif["message"] != "ok" {
		t.Errorf("notification = %v", notif)
	}
}

func TestHTMXResponseWarningNotification(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHTMXResponse().TriggerWarningNotification("atenção").Write(rec)

	notif := decodeTriggers(t, rec)["show-notification"].(map[string]interface{})
	if notif["type"] != "warning" {
		t.Errorf("type = %v, want warning", notif["type"])
	}
}

func TestHTMXResponseNoTriggersNoHeader(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHTMXResponse().BodyString("oi").Write(rec)

	if rec.Header().Get("HX-Trigger") != "" {
		t.Error("HX-Trigger set without triggers")
	}
	if rec.Body.String() != "oi" {
		t.Errorf("body = %q, want oi", rec.Body.String())
	}
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name    string
		build   func(string) *HTMXResponseBuilder
		status  int
		message string
	}{
		{name: "bad request", build: BadRequestError, status: http.StatusBadRequest, message: "faltou o ID"},
		{name: "unprocessable", build: UnprocessableEntityError, status: http.StatusUnprocessableEntity, message: "Valor inválido"},
		{name: "internal", build: InternalServerError, status: http.StatusInternalServerError, message: "erro"},
		{name: "not found", build: NotFoundError, status: http.StatusNotFound, message: "não encontrada"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.build(tt.message).Write(rec)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			if !strings.Contains(rec.Body.String(), tt.message) {
				t.Errorf("body %q should contain %q", rec.Body.String(), tt.message)
			}
			if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "text/html") {
				t.Errorf("Content-Type = %q, want text/html", ct)
			}
		})
	}
}

func TestErrorResponseEscapesHTML(t *testing.T) {
	rec := httptest.NewRecorder()
	BadRequestError(`<script>alert("x")</script>`).Write(rec)

	body := rec.Body.String()
	if strings.Contains(body, "<script>") {
		t.Errorf("body not escaped: %q", body)
	}
	if !strings.Contains(body, "&lt;script&gt;") {
		t.Errorf("body missing escaped markup: %q", body)
	}
}

func TestCustomHeaderAndStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHTMXResponse().
		Status(http.StatusAccepted).
		Header("X-Custom", "valor").
		Write(rec)

	if rec.Code != http.StatusAccepted {
		t.Errorf("status = %d, want 202", rec.Code)
	}
	if rec.Header().Get("X-Custom") != "valor" {
		t.Error("custom header not written")
	}
}
