package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestJSONResponseBuilder(t *testing.T) {
	rr := httptest.NewRecorder()
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("X-Custom", "yes").
		Payload(map[string]string{"hello": "world"}).
		Write(rr)

	if rr.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", rr.Code)
	}
	if got := rr.Header().Get("Content-Type"); got != "application/json; charset=utf-8" {
		t.Errorf("Content-Type = %q", got)
	}
	if got := rr.Header().Get("X-Custom"); got != "yes" {
		t.Errorf("X-Custom = %q, want yes", got)
	}

	var body map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["hello"] != "world" {
		t.Errorf("body = %v", body)
	}
}

func TestJSONResponseBuilderNoPayload(t *testing.T) {
	rr := httptest.NewRecorder()
	NewJSONResponse().Status(http.StatusNoContent).Write(rr)
	if rr.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rr.Code)
	}
	if rr.Body.Len() != 0 {
		t.Errorf("body = %q, want empty", rr.Body.String())
	}
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name       string
		builder    *JSONResponseBuilder
		wantStatus int
	}{
		{"bad request", BadRequestError("nope"), http.StatusBadRequest},
		{"unauthorized", UnauthorizedError("nope"), http.StatusUnauthorized},
		{"not found", NotFoundError("nope"), http.StatusNotFound},
		{"conflict", ConflictError("nope"), http.StatusConflict},
		{"unprocessable", UnprocessableEntityError("nope"), http.StatusUnprocessableEntity},
		{"internal", InternalServerError("nope"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			tt.builder.Write(rr)
			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			var body errorPayload
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Error != "nope" {
				t.Errorf("error = %q, want nope", body.Error)
			}
		})
	}
}

func TestTooManyRequestsError(t *testing.T) {
	rr := httptest.NewRecorder()
	TooManyRequestsError().Write(rr)
	if rr.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", rr.Code)
	}
	if got := rr.Header().Get("Retry-After"); got != "60" {
		t.Errorf("Retry-After = %q, want 60", got)
	}
}
