package prompt

import (
	"fmt"

	"github.com/bryanwahyu/cyberrisk-advisor/internal/domain/analysis"
)

const (
	// DefaultEnvironment is used when the analyst gives no environment label.
	DefaultEnvironment = "Not specified"
	// DefaultQuestion is used when the analyst gives no focus question.
	DefaultQuestion = "General threat hunting and incident triage."
)

const systemPrompt = `You are a senior security analyst and threat hunter assisting a SOC team. Given raw security logs, your job is to:
- detect suspicious or malicious activity and group it into 'detections'
- assign each detection a severity: Low / Medium / High / Critical
- compute an overall risk score from 0 to 100 for the entire log batch
- describe the situation in a concise summary (3–5 sentences)
- propose concrete recommended_actions for the security team
- output follow-up queries_to_run in a SIEM (SPL, KQL, SQL-like).

Return ONLY valid JSON with this exact schema:
{
  "overall_risk_score": float,
  "summary": str,
  "detections": [
    {"title": str, "description": str, "severity": str, "indicators": [str, ...]},
  ],
  "recommended_actions": [str, ...],
  "queries_to_run": [str, ...]
}`

// GetSystemPrompt returns the fixed instructions and output schema.
func GetSystemPrompt() string {
	return systemPrompt
}

// GetUserPrompt interpolates the request. Logs go in verbatim: no escaping, no cap.
func GetUserPrompt(req analysis.Request) string {
	env := req.Environment
	if env == "" {
		env = DefaultEnvironment
	}
	question := req.Question
	if question == "" {
		question = DefaultQuestion
	}
	return fmt.Sprintf("ENVIRONMENT:\n%s\n\nANALYST QUESTION / FOCUS:\n%s\n\nLOGS:\n%s\n", env, question, req.Logs)
}
