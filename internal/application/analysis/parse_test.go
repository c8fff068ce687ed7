package analysis

import (
	"errors"
	"reflect"
	"testing"

	"github.com/bryanwahyu/cyberrisk-advisor/internal/domain/ai"
	domain "github.com/bryanwahyu/cyberrisk-advisor/internal/domain/analysis"
)

const fullReply = `{
  "overall_risk_score": 72.5,
  "summary": "Repeated failed logins from 10.0.0.5.",
  "detections": [
    {"title": "Brute force", "description": "5 failed logins", "severity": "High", "indicators": ["10.0.0.5", "admin"]}
  ],
  "recommended_actions": ["Block 10.0.0.5", "Reset admin password"],
  "queries_to_run": ["index=auth src_ip=10.0.0.5"]
}`

func fullResponse() *domain.Response {
	return &domain.Response{
		OverallRiskScore: 72.5,
		Summary:          "Repeated failed logins from 10.0.0.5.",
		Detections: []domain.Detection{{
			Title:       "Brute force",
			Description: "5 failed logins",
			Severity:    "High",
			Indicators:  []string{"10.0.0.5", "admin"},
		}},
		RecommendedActions: []string{"Block 10.0.0.5", "Reset admin password"},
		QueriesToRun:       []string{"index=auth src_ip=10.0.0.5"},
	}
}

func parseAndBuild(t *testing.T, raw string) *domain.Response {
	t.Helper()
	parsed, err := RecoverJSON(raw)
	if err != nil {
		t.Fatalf("RecoverJSON: %v", err)
	}
	resp, err := BuildResponse(parsed)
	if err != nil {
		t.Fatalf("BuildResponse: %v", err)
	}
	return resp
}

func TestExactJSONRoundTrip(t *testing.T) {
	got := parseAndBuild(t, fullReply)
	if want := fullResponse(); !reflect.DeepEqual(got, want) {
		t.Errorf("response = %+v, want %+v", got, want)
	}
}

func TestFencedJSONRecovers(t *testing.T) {
	want := parseAndBuild(t, fullReply)

	for name, raw := range map[string]string{
		"json fence":        "```json\n" + fullReply + "\n```",
		"fence with spaces": "  \n```json" + fullReply + "```\n ",
		"bare fence":        "```\n" + fullReply + "\n```",
		"language tag only": "json " + fullReply,
	} {
		t.Run(name, func(t *testing.T) {
			if got := parseAndBuild(t, raw); !reflect.DeepEqual(got, want) {
				t.Errorf("response = %+v, want %+v", got, want)
			}
		})
	}
}

func TestUnrecoverableOutputFails(t *testing.T) {
	for name, raw := range map[string]string{
		"prose":             "I could not find anything suspicious in these logs.",
		"truncated":         `{"overall_risk_score": 40, "summary": "cut off`,
		"trailing comments": "```json\n{\"summary\":\"x\"}\n```\nLet me know if you need more.",
		"other language":    "```yaml\nsummary: x\n```",
		"empty":             "",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := RecoverJSON(raw)
			if !errors.Is(err, ai.ErrMalformedOutput) {
				t.Errorf("err = %v, want ErrMalformedOutput", err)
			}
		})
	}
}

func TestOnlyFirstJSONTokenRemoved(t *testing.T) {
	got := parseAndBuild(t, "```json\n{\"summary\": \"json logs look fine\"}\n```")
	if got.Summary != "json logs look fine" {
		t.Errorf("summary = %q, later occurrences must survive", got.Summary)
	}
}

func TestMissingFieldsDefault(t *testing.T) {
	got := parseAndBuild(t, `{}`)

	if got.OverallRiskScore != 0 {
		t.Errorf("score = %v, want 0", got.OverallRiskScore)
	}
	if got.Summary != "" {
		t.Errorf("summary = %q, want empty", got.Summary)
	}
	if got.Detections == nil || len(got.Detections) != 0 {
		t.Errorf("detections = %#v, want empty non-nil slice", got.Detections)
	}
	if got.RecommendedActions == nil || len(got.RecommendedActions) != 0 {
		t.Errorf("recommended_actions = %#v, want empty non-nil slice", got.RecommendedActions)
	}
	if got.QueriesToRun == nil || len(got.QueriesToRun) != 0 {
		t.Errorf("queries_to_run = %#v, want empty non-nil slice", got.QueriesToRun)
	}
}

func TestDetectionDefaults(t *testing.T) {
	got := parseAndBuild(t, `{"detections":[{"title":"A"},{"title":"B","severity":"Critical","indicators":["x"]}]}`)

	if len(got.Detections) != 2 {
		t.Fatalf("detections = %d, want 2", len(got.Detections))
	}
	first := got.Detections[0]
	if first.Severity != "Medium" {
		t.Errorf("severity = %q, want Medium", first.Severity)
	}
	if first.Description != "" {
		t.Errorf("description = %q, want empty", first.Description)
	}
	if first.Indicators == nil || len(first.Indicators) != 0 {
		t.Errorf("indicators = %#v, want empty non-nil slice", first.Indicators)
	}
	if got.Detections[1].Severity != "Critical" {
		t.Errorf("severity = %q, want Critical", got.Detections[1].Severity)
	}
}

func TestSeverityNotValidated(t *testing.T) {
	got := parseAndBuild(t, `{"detections":[{"severity":"spicy"}]}`)
	if got.Detections[0].Severity != "spicy" {
		t.Errorf("severity = %q, any string should pass", got.Detections[0].Severity)
	}
}

func TestScoreNotClamped(t *testing.T) {
	got := parseAndBuild(t, `{"overall_risk_score": 250}`)
	if got.OverallRiskScore != 250 {
		t.Errorf("score = %v, want 250", got.OverallRiskScore)
	}
	got = parseAndBuild(t, `{"overall_risk_score": "-3.5"}`)
	if got.OverallRiskScore != -3.5 {
		t.Errorf("score = %v, want -3.5 from numeric string", got.OverallRiskScore)
	}
}

func TestBooleanScoreCoerced(t *testing.T) {
	if got := parseAndBuild(t, `{"overall_risk_score": true}`); got.OverallRiskScore != 1 {
		t.Errorf("score = %v, want 1 for true", got.OverallRiskScore)
	}
	if got := parseAndBuild(t, `{"overall_risk_score": false}`); got.OverallRiskScore != 0 {
		t.Errorf("score = %v, want 0 for false", got.OverallRiskScore)
	}
}

func TestWrongTypesFail(t *testing.T) {
	for name, raw := range map[string]string{
		"array top level":     `[1, 2]`,
		"string score":        `{"overall_risk_score": "high"}`,
		"null score":          `{"overall_risk_score": null}`,
		"numeric summary":     `{"summary": 12}`,
		"detections object":   `{"detections": {"title": "x"}}`,
		"detection string":    `{"detections": ["x"]}`,
		"indicator number":    `{"detections": [{"indicators": [1]}]}`,
		"actions string":      `{"recommended_actions": "block it"}`,
		"queries with object": `{"queries_to_run": [{"q": "x"}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			parsed, err := RecoverJSON(raw)
			if err != nil {
				t.Fatalf("RecoverJSON: %v", err)
			}
			if _, err := BuildResponse(parsed); !errors.Is(err, ai.ErrSchemaMismatch) {
				t.Errorf("err = %v, want ErrSchemaMismatch", err)
			}
		})
	}
}
