package chi

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func authTestHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestBearerAuthMiddleware(t *testing.T) {
	cases := []struct {
		name       string
		keys       []string
		path       string
		authHeader string
		wantStatus int
	}{
		{"valid key", []string{"key-1"}, "/v1/search", "Bearer key-1", http.StatusOK},
		{"second key", []string{"key-1", "key-2"}, "/v1/search", "Bearer key-2", http.StatusOK},
		{"wrong key", []string{"key-1"}, "/v1/search", "Bearer nope", http.StatusUnauthorized},
		{"missing header", []string{"key-1"}, "/v1/search", "", http.StatusUnauthorized},
		{"wrong scheme", []string{"key-1"}, "/v1/search", "Basic key-1", http.StatusUnauthorized},
		{"health exempt", []string{"key-1"}, "/health", "", http.StatusOK},
		{"metrics exempt", []string{"key-1"}, "/metrics", "", http.StatusOK},
		{"auth disabled", nil, "/v1/search", "", http.StatusOK},
		{"blank keys ignored", []string{""}, "/v1/search", "", http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := BearerAuthMiddleware(tc.keys)(authTestHandler())

			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
		})
	}
}
