package analysis

// Request is the inbound payload of POST /analyze_logs.
// Logs is forwarded verbatim, an empty string included.
type Request struct {
	Logs        string `json:"logs"`
	Environment string `json:"environment,omitempty"`
	Question    string `json:"question,omitempty"`
}

// Detection is one suspicious event or pattern reported by the AI agent.
// Severity is conventionally Low / Medium / High / Critical but never enforced.
type Detection struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Severity    string   `json:"severity"`
	Indicators  []string `json:"indicators"`
}

// Response is the structured result returned to the analyst
type Response struct {
	OverallRiskScore   float64     `json:"overall_risk_score"`
	Summary            string      `json:"summary"`
	Detections         []Detection `json:"detections"`
	RecommendedActions []string    `json:"recommended_actions"`
	QueriesToRun       []string    `json:"queries_to_run"`
}

// DefaultSeverity is used when a detection carries no severity.
const DefaultSeverity = "Medium"
