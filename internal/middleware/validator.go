package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/bryanwahyu/cyberrisk-advisor/internal/domain/analysis"
)

// ValidationError is a request body that cannot become an analysis.Request.
// It maps to 422 Unprocessable Entity.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// DecodeAnalysisRequest reads one JSON object from body. "logs" must be present
// and a string, possibly empty; "environment" and "question" may be omitted or null.
func DecodeAnalysisRequest(body io.Reader) (analysis.Request, error) {
	var raw struct {
		Logs        *string `json:"logs"`
		Environment *string `json:"environment"`
		Question    *string `json:"question"`
	}

	dec := json.NewDecoder(body)
	if err := dec.Decode(&raw); err != nil {
		return analysis.Request{}, invalidBody(err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return analysis.Request{}, &ValidationError{Msg: "request body must contain a single JSON object"}
	}
	if raw.Logs == nil {
		return analysis.Request{}, &ValidationError{Msg: "logs: field required"}
	}

	req := analysis.Request{Logs: *raw.Logs}
	if raw.Environment != nil {
		req.Environment = *raw.Environment
	}
	if raw.Question != nil {
		req.Question = *raw.Question
	}
	return req, nil
}

func invalidBody(err error) error {
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &typeErr):
		if typeErr.Field == "" {
			return &ValidationError{Msg: "request body must be a JSON object"}
		}
		return &ValidationError{Msg: fmt.Sprintf("%s: must be a string", typeErr.Field)}
	case errors.Is(err, io.EOF):
		return &ValidationError{Msg: "request body is empty"}
	default:
		return &ValidationError{Msg: fmt.Sprintf("invalid JSON: %v", err)}
	}
}

// WriteDetail writes a {"detail": msg} error body.
func WriteDetail(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"detail": msg})
}
