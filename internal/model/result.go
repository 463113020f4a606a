package model

// Metrics records timing, token, and cost accounting for one extraction
// request. CostUSD is nil when the resolved model has no pricing entry.
type Metrics struct {
	ASRMillis    int64    `json:"asr_ms"`
	VisionMillis int64    `json:"vision_ms"`
	LLMMillis    int64    `json:"llm_ms"`
	TotalMillis  int64    `json:"total_ms"`
	TokensIn     int      `json:"tokens_in"`
	TokensOut    int      `json:"tokens_out"`
	CostUSD      *float64 `json:"cost_usd,omitempty"`
	Provider     string   `json:"provider"`
	Model        string   `json:"model"`
}

// ExtractionResult is the per-request outcome: best-effort merged field
// values, the required fields still missing, and usage metrics.
type ExtractionResult struct {
	RequestID       string   `json:"request_id"`
	FormID          string   `json:"form_id,omitempty"`
	Fields          Fields   `json:"extracted"`
	MissingRequired []string `json:"missing_required"`
	Metrics         Metrics  `json:"metrics"`
}

// RowsResult is the outcome of a multi-row extraction over a tabular
// document: one Fields map per detected row.
type RowsResult struct {
	RequestID string     `json:"request_id"`
	Rows      []Fields   `json:"rows"`
	TotalRows int        `json:"total_rows"`
	Missing   [][]string `json:"missing_required,omitempty"`
	Metrics   Metrics    `json:"metrics"`
}
