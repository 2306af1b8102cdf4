package domain

// AssistantMetrics is an aggregated view of assistant usage, returned by the
// GET /v1/metrics/assistant endpoint.
type AssistantMetrics struct {
	TotalRequests       int64   `json:"total_requests"`
	ErrorRate           float64 `json:"error_rate"`
	AvgTokensPerRequest float64 `json:"avg_tokens_per_request"`
	EstimatedCostUsd    float64 `json:"estimated_cost_usd"`
	CacheHitRate        float64 `json:"cache_hit_rate"`
	PipelinesRun        int64   `json:"pipelines_run"`
	PipelinesApproved   int64   `json:"pipelines_approved"`
	PipelinesRejected   int64   `json:"pipelines_rejected"`
	Period              string  `json:"period"`
}
