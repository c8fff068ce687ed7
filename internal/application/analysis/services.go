package analysis

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bryanwahyu/cyberrisk-advisor/internal/application"
	"github.com/bryanwahyu/cyberrisk-advisor/internal/domain/ai"
	domain "github.com/bryanwahyu/cyberrisk-advisor/internal/domain/analysis"
	"github.com/bryanwahyu/cyberrisk-advisor/internal/infra/ai/prompt"
	"github.com/bryanwahyu/cyberrisk-advisor/internal/logger"
)

// DefaultTimeout bounds one completion call when Service.Timeout is unset.
const DefaultTimeout = 60 * time.Second

// Outcome labels reported to the Observer.
const (
	OutcomeSuccess         = "success"
	OutcomeConfigError     = "config_error"
	OutcomeUpstreamError   = "upstream_error"
	OutcomeTimeout         = "timeout"
	OutcomeMalformedOutput = "malformed_output"
)

// Observer receives one call per finished analysis.
type Observer interface {
	ObserveAnalysis(outcome string, elapsed time.Duration)
}

// Service is stateless; one value is shared by all requests.
type Service struct {
	Client  ai.Client
	Timeout time.Duration
	Clock   application.Clock
	Metrics Observer
	// FollowCaller lets ctx cancellation abort the completion call. The HTTP
	// server leaves it off so a disconnected client does not cancel upstream.
	FollowCaller bool
}

// Result is a finished analysis and the ID its log lines carry.
type Result struct {
	ID       string
	Response *domain.Response
}

// Analyze runs prompt construction, the single completion call, JSON recovery
// and defaulting. Unless FollowCaller is set, the call is detached from ctx
// cancellation: a caller that disconnects does not abort it, only the timeout does.
func (s *Service) Analyze(ctx context.Context, req domain.Request) (*Result, error) {
	id := uuid.NewString()
	start := s.now()

	log := logger.L().With(zap.String("id", id))
	log.Info("analysis start", zap.String("environment", req.Environment), zap.Int("logs_bytes", len(req.Logs)))

	parent := ctx
	if !s.FollowCaller {
		parent = context.WithoutCancel(ctx)
	}
	callCtx, cancel := context.WithTimeout(parent, s.timeout())
	defer cancel()

	raw, err := s.Client.Complete(callCtx, prompt.GetSystemPrompt(), prompt.GetUserPrompt(req))
	if err != nil {
		s.finish(log, start, outcomeFor(err), err)
		return nil, err
	}

	parsed, err := RecoverJSON(raw)
	if err != nil {
		log.Debug("analysis raw output", zap.String("raw", raw))
		s.finish(log, start, OutcomeMalformedOutput, err)
		return nil, err
	}
	resp, err := BuildResponse(parsed)
	if err != nil {
		s.finish(log, start, OutcomeMalformedOutput, err)
		return nil, err
	}

	s.finish(log, start, OutcomeSuccess, nil)
	return &Result{ID: id, Response: resp}, nil
}

func (s *Service) finish(log *zap.Logger, start time.Time, outcome string, err error) {
	elapsed := application.Since(s.Clock, start)
	if err != nil {
		log.Warn("analysis failed", zap.String("outcome", outcome), zap.Duration("duration", elapsed), zap.Error(err))
	} else {
		log.Info("analysis done", zap.Duration("duration", elapsed))
	}
	if s.Metrics != nil {
		s.Metrics.ObserveAnalysis(outcome, elapsed)
	}
}

func (s *Service) timeout() time.Duration {
	if s.Timeout <= 0 {
		return DefaultTimeout
	}
	return s.Timeout
}

func (s *Service) now() time.Time {
	if s.Clock == nil {
		return time.Now()
	}
	return s.Clock.Now()
}

func outcomeFor(err error) string {
	switch {
	case errors.Is(err, ai.ErrMissingAPIKey):
		return OutcomeConfigError
	case errors.Is(err, ai.ErrUpstreamTimeout), errors.Is(err, context.DeadlineExceeded):
		return OutcomeTimeout
	default:
		return OutcomeUpstreamError
	}
}
