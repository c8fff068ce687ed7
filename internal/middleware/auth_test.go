package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func echoClient() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(GetClientFromContext(r.Context())))
	})
}

func TestAPIKeyAuth_DisabledWithoutKeys(t *testing.T) {
	h := APIKeyAuth(nil)(echoClient())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/analyze_logs", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestAPIKeyAuth(t *testing.T) {
	h := APIKeyAuth(map[string]string{"soc": "s3cret"})(echoClient())

	cases := []struct {
		header string
		status int
		client string
	}{
		{"", http.StatusUnauthorized, ""},
		{"Bearer ", http.StatusUnauthorized, ""},
		{"Bearer wrong", http.StatusUnauthorized, ""},
		{"Bearer s3cret", http.StatusOK, "soc"},
		{"s3cret", http.StatusOK, "soc"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodPost, "/analyze_logs", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != tc.status {
			t.Errorf("header %q: status = %d, want %d", tc.header, rec.Code, tc.status)
		}
		if tc.status == http.StatusOK && rec.Body.String() != tc.client {
			t.Errorf("header %q: client = %q, want %q", tc.header, rec.Body.String(), tc.client)
		}
	}
}
