package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/bryanwahyu/cyberrisk-advisor/internal/domain/ai"
	"github.com/bryanwahyu/cyberrisk-advisor/internal/middleware"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &middleware.ValidationError{Msg: "logs: field required"}, http.StatusUnprocessableEntity},
		{"missing key", ai.ErrMissingAPIKey, http.StatusInternalServerError},
		{"upstream 401", &ai.UpstreamError{StatusCode: 401, Body: "bad key"}, http.StatusUnauthorized},
		{"upstream odd status", &ai.UpstreamError{StatusCode: 302, Body: "moved"}, http.StatusBadGateway},
		{"timeout", fmt.Errorf("%w: slow", ai.ErrUpstreamTimeout), http.StatusGatewayTimeout},
		{"raw deadline", context.DeadlineExceeded, http.StatusGatewayTimeout},
		{"unreachable", fmt.Errorf("%w: refused", ai.ErrUpstreamUnavailable), http.StatusBadGateway},
		{"empty completion", ai.ErrEmptyCompletion, http.StatusBadGateway},
		{"malformed", ai.ErrMalformedOutput, http.StatusInternalServerError},
		{"schema", ai.ErrSchemaMismatch, http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, detail := classify(tc.err)
			if got != tc.want {
				t.Errorf("status = %d, want %d", got, tc.want)
			}
			if detail == "" {
				t.Error("detail should not be empty")
			}
		})
	}
}
