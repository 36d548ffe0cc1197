package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/theodesde/retrohunt-app/internal/domain"
	"github.com/theodesde/retrohunt-app/internal/services"
)

type stubSuggestionService struct {
	receipt services.SubmissionReceipt
	err     error
	state   services.SubmissionState
	last    services.Suggestion
}

func (s *stubSuggestionService) Submit(ctx context.Context, sug services.Suggestion) (services.SubmissionReceipt, error) {
	s.last = sug
	return s.receipt, s.err
}

func (s *stubSuggestionService) State() services.SubmissionState {
	return s.state
}

func newSuggestionRouter(svc services.SuggestionService) chi.Router {
	r := chi.NewRouter()
	NewSuggestionHandlers(svc).Routes(r)
	return r
}

func TestSuggestionSubmitAccepted(t *testing.T) {
	stub := &stubSuggestionService{
		receipt: services.SubmissionReceipt{ID: "01J0TEST", State: domain.SubmissionSuccess},
	}
	r := newSuggestionRouter(stub)

	payload := `{"name":"Neo Legend","city":"Nice","address":"12 rue des Arcades","tags":["Arcade"],"note":"hi"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(payload))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rr.Code, rr.Body.String())
	}
	var body suggestionResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if body.ID != "01J0TEST" || body.State != "success" {
		t.Errorf("unexpected response: %+v", body)
	}
	if stub.last.Name != "Neo Legend" || len(stub.last.Tags) != 1 {
		t.Errorf("unexpected forwarded suggestion: %+v", stub.last)
	}
}

func TestSuggestionSubmitStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{name: "invalid input", err: services.ErrSuggestionInvalid, want: http.StatusBadRequest},
		{name: "in flight", err: services.ErrSuggestionInFlight, want: http.StatusConflict},
		{name: "relay failure", err: services.ErrSuggestionRelayFailed, want: http.StatusBadGateway},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newSuggestionRouter(&stubSuggestionService{err: tc.err})
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x","city":"y","address":"z"}`))
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)
			if rr.Code != tc.want {
				t.Errorf("expected %d, got %d", tc.want, rr.Code)
			}
		})
	}
}

func TestSuggestionSubmitMalformedBody(t *testing.T) {
	r := newSuggestionRouter(&stubSuggestionService{})
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{not json"))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestSuggestionRateLimit(t *testing.T) {
	stub := &stubSuggestionService{
		receipt: services.SubmissionReceipt{ID: "01J0TEST", State: domain.SubmissionSuccess},
	}
	r := chi.NewRouter()
	NewSuggestionHandlers(stub, WithSuggestionRateLimit(2, time.Minute)).Routes(r)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x","city":"y","address":"z"}`))
		req.RemoteAddr = "203.0.113.7:1234"
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}
	if codes[0] != http.StatusAccepted || codes[1] != http.StatusAccepted {
		t.Fatalf("expected first two accepted, got %v", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Fatalf("expected third rate limited, got %v", codes)
	}
}

func TestSuggestionState(t *testing.T) {
	r := newSuggestionRouter(&stubSuggestionService{state: domain.SubmissionPending})
	req := httptest.NewRequest(http.MethodGet, "/state", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if body["state"] != "pending" {
		t.Errorf("expected pending, got %q", body["state"])
	}
}
