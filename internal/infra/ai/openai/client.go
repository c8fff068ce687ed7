package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/bryanwahyu/cyberrisk-advisor/internal/domain/ai"
	"github.com/bryanwahyu/cyberrisk-advisor/internal/logger"
)

// temperature is kept low so the agent sticks to the JSON schema.
const temperature float32 = 0.2

// Client talks to an OpenAI-compatible chat-completion endpoint at {BaseURL}/v1.
type Client struct {
	api    *openai.Client
	apiKey string
	Model  string
}

// NewClient builds a client for baseURL. An empty apiKey is accepted here and
// rejected per call, so the server can start without credentials.
func NewClient(apiKey, baseURL, model string, httpClient *http.Client) *Client {
	hc := &http.Client{}
	if httpClient != nil {
		copied := *httpClient
		hc = &copied
	}
	// A redirect would turn the POST into a GET against another URL.
	hc.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimRight(baseURL, "/") + "/v1"
	cfg.HTTPClient = &capturingDoer{next: hc}
	return &Client{api: openai.NewClientWithConfig(cfg), apiKey: apiKey, Model: model}
}

// Complete sends exactly one request; there is no retry.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if c.apiKey == "" {
		return "", ai.ErrMissingAPIKey
	}

	req := openai.ChatCompletionRequest{
		Model: c.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature: temperature,
	}

	capture := &errorBody{}
	resp, err := c.api.CreateChatCompletion(context.WithValue(ctx, errorBodyKey{}, capture), req)
	if err != nil {
		return "", c.translate(err, req, capture)
	}
	if len(resp.Choices) == 0 {
		return "", ai.ErrEmptyCompletion
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *Client) translate(err error, req openai.ChatCompletionRequest, capture *errorBody) error {
	var (
		upErr  *ai.UpstreamError
		apiErr *openai.APIError
		reqErr *openai.RequestError
		status int
	)
	switch {
	case errors.As(err, &upErr):
		status = upErr.StatusCode
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}

	if status != 0 {
		if upErr == nil {
			body := strings.TrimSpace(string(capture.body))
			if body == "" {
				body = err.Error()
			}
			upErr = &ai.UpstreamError{StatusCode: status, Body: body}
		}
		payload, _ := json.Marshal(req)
		logger.L().Error("agi api error",
			zap.Int("status", upErr.StatusCode),
			zap.String("body", upErr.Body),
			zap.Reflect("payload", json.RawMessage(payload)),
		)
		return upErr
	}

	log := logger.L().With(zap.String("model", c.Model), zap.Error(err))
	if errors.Is(err, context.DeadlineExceeded) {
		log.Error("agi api timeout")
		return fmt.Errorf("%w: %v", ai.ErrUpstreamTimeout, err)
	}
	log.Error("agi api request failed")
	return fmt.Errorf("%w: %v", ai.ErrUpstreamUnavailable, err)
}

type errorBodyKey struct{}

// errorBody receives the raw body of a failed response for the call that owns it.
type errorBody struct {
	body []byte
}

// capturingDoer keeps a copy of non-success response bodies, since go-openai
// only exposes the parsed error message for JSON error envelopes.
type capturingDoer struct {
	next *http.Client
}

// 3xx replies are returned as *ai.UpstreamError because go-openai would
// otherwise try to decode them as a completion.
func (d *capturingDoer) Do(req *http.Request) (*http.Response, error) {
	resp, err := d.next.Do(req)
	if err != nil || (resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices) {
		return resp, err
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("read error body: %w", err)
	}

	if resp.StatusCode < http.StatusBadRequest {
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = fmt.Sprintf("unexpected redirect to %q", resp.Header.Get("Location"))
		}
		return nil, &ai.UpstreamError{StatusCode: resp.StatusCode, Body: msg}
	}

	if capture, ok := req.Context().Value(errorBodyKey{}).(*errorBody); ok {
		capture.body = body
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))
	return resp, nil
}
