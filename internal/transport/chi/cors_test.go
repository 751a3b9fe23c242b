package chi

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func corsRequest(h http.Handler, method, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/search", http.NoBody)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestCORS_Disabled(t *testing.T) {
	h := CORS(CORSConfig{})(okHandler())
	rr := corsRequest(h, http.MethodPost, "https://evil.example")
	if rr.Code != http.StatusOK {
		t.Errorf("got %d, want 200", rr.Code)
	}
	if rr.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("disabled CORS must not set headers")
	}
}

func TestCORS_AllowList(t *testing.T) {
	h := CORS(CORSConfig{AllowedOrigins: []string{"https://app.example"}})(okHandler())

	rr := corsRequest(h, http.MethodPost, "https://app.example")
	if rr.Code != http.StatusOK {
		t.Fatalf("allowed origin: got %d", rr.Code)
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example" {
		t.Errorf("allow-origin: got %q", got)
	}

	rr = corsRequest(h, http.MethodPost, "https://evil.example")
	if rr.Code != http.StatusForbidden {
		t.Errorf("disallowed origin: got %d, want 403", rr.Code)
	}

	rr = corsRequest(h, http.MethodPost, "")
	if rr.Code != http.StatusOK {
		t.Errorf("same-origin: got %d, want 200", rr.Code)
	}
}

func TestCORS_Wildcard(t *testing.T) {
	h := CORS(CORSConfig{AllowedOrigins: []string{"*"}})(okHandler())
	rr := corsRequest(h, http.MethodGet, "https://anything.example")
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("allow-origin: got %q, want *", got)
	}

	h = CORS(CORSConfig{AllowedOrigins: []string{"*"}, AllowCredentials: true})(okHandler())
	rr = corsRequest(h, http.MethodGet, "https://anything.example")
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://anything.example" {
		t.Errorf("credentials must echo origin, got %q", got)
	}
	if rr.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Error("missing allow-credentials")
	}
}

func TestCORS_Preflight(t *testing.T) {
	h := CORS(CORSConfig{AllowedOrigins: []string{"*"}, MaxAge: 600})(okHandler())
	rr := corsRequest(h, http.MethodOptions, "https://app.example")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("preflight: got %d, want 204", rr.Code)
	}
	if rr.Header().Get("Access-Control-Max-Age") != "600" {
		t.Errorf("max-age: got %q", rr.Header().Get("Access-Control-Max-Age"))
	}
	if rr.Header().Get("Access-Control-Allow-Methods") != "GET, POST, OPTIONS" {
		t.Errorf("methods: got %q", rr.Header().Get("Access-Control-Allow-Methods"))
	}
}
