package analysis

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/bryanwahyu/cyberrisk-advisor/internal/domain/ai"
	domain "github.com/bryanwahyu/cyberrisk-advisor/internal/domain/analysis"
)

// RecoverJSON parses the completion text. When the direct parse fails it tries
// exactly once more after trimming whitespace and backtick fences and removing
// the first "json" token, which covers replies wrapped in a ```json block.
func RecoverJSON(raw string) (any, error) {
	var direct any
	if err := json.Unmarshal([]byte(raw), &direct); err == nil {
		return direct, nil
	}

	cleaned := strings.Trim(strings.TrimSpace(raw), "`")
	cleaned = strings.TrimSpace(strings.Replace(cleaned, "json", "", 1))

	var fallback any
	if err := json.Unmarshal([]byte(cleaned), &fallback); err != nil {
		return nil, fmt.Errorf("%w: %v", ai.ErrMalformedOutput, err)
	}
	return fallback, nil
}

// BuildResponse reads the schema fields out of a parsed reply. Absent fields
// get defaults; present fields of the wrong type fail with ErrSchemaMismatch.
func BuildResponse(parsed any) (*domain.Response, error) {
	obj, ok := parsed.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: top-level value is %s, want object", ai.ErrSchemaMismatch, kind(parsed))
	}

	score, err := floatField(obj, "overall_risk_score")
	if err != nil {
		return nil, err
	}
	summary, err := stringField(obj, "summary", "")
	if err != nil {
		return nil, err
	}
	actions, err := stringListField(obj, "recommended_actions")
	if err != nil {
		return nil, err
	}
	queries, err := stringListField(obj, "queries_to_run")
	if err != nil {
		return nil, err
	}

	detections := []domain.Detection{}
	if v, ok := obj["detections"]; ok {
		items, ok := v.([]any)
		if !ok {
			return nil, mismatch("detections", "array", v)
		}
		for i, item := range items {
			d, err := buildDetection(item)
			if err != nil {
				return nil, fmt.Errorf("detections[%d]: %w", i, err)
			}
			detections = append(detections, d)
		}
	}

	return &domain.Response{
		OverallRiskScore:   score,
		Summary:            summary,
		Detections:         detections,
		RecommendedActions: actions,
		QueriesToRun:       queries,
	}, nil
}

func buildDetection(item any) (domain.Detection, error) {
	obj, ok := item.(map[string]any)
	if !ok {
		return domain.Detection{}, fmt.Errorf("%w: detection is %s, want object", ai.ErrSchemaMismatch, kind(item))
	}
	var (
		d   domain.Detection
		err error
	)
	if d.Title, err = stringField(obj, "title", ""); err != nil {
		return d, err
	}
	if d.Description, err = stringField(obj, "description", ""); err != nil {
		return d, err
	}
	if d.Severity, err = stringField(obj, "severity", domain.DefaultSeverity); err != nil {
		return d, err
	}
	if d.Indicators, err = stringListField(obj, "indicators"); err != nil {
		return d, err
	}
	return d, nil
}

// floatField accepts JSON numbers, numeric strings and booleans (true is 1).
// The score is not clamped.
func floatField(obj map[string]any, key string) (float64, error) {
	v, ok := obj[key]
	if !ok {
		return 0, nil
	}
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case bool:
		if t {
			f = 1
		}
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, mismatch(key, "number", v)
		}
		f = parsed
	default:
		return 0, mismatch(key, "number", v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, mismatch(key, "finite number", v)
	}
	return f, nil
}

func stringField(obj map[string]any, key, def string) (string, error) {
	v, ok := obj[key]
	if !ok {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", mismatch(key, "string", v)
	}
	return s, nil
}

func stringListField(obj map[string]any, key string) ([]string, error) {
	out := []string{}
	v, ok := obj[key]
	if !ok {
		return out, nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil, mismatch(key, "array", v)
	}
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, mismatch(fmt.Sprintf("%s[%d]", key, i), "string", item)
		}
		out = append(out, s)
	}
	return out, nil
}

func mismatch(field, want string, got any) error {
	return fmt.Errorf("%w: %s is %s, want %s", ai.ErrSchemaMismatch, field, kind(got), want)
}

func kind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
