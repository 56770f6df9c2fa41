package model

// RetrievalVerdict is the parsed result of one retrieval model call covering
// one section group. A nil verdict (call or parse failure) is represented by
// the caller as a nil pointer.
type RetrievalVerdict struct {
	Reasoning          string   `json:"reasoning"`
	RelevantSectionIDs []string `json:"relevant_section_ids"`
}

// AggregatedRetrieval is the merged retrieval verdict for one
// (document, line item) pair. Derived once by the aggregator, never mutated.
type AggregatedRetrieval struct {
	RelevantSections []string `json:"relevant_sections"`
	Reasoning        string   `json:"reasoning"`
	TokenCount       int      `json:"token_count"`
}

// PolicyMetadata is the filtered view of a policy's structured conditions
// injected into extraction prompts.
type PolicyMetadata struct {
	PolicyLevelInfo map[string]any   `json:"policy_level_info"`
	CoverageLimits  []map[string]any `json:"coverage_limits"`
}

// ExtractionResult is the parsed result of one extraction model call.
// Result is nil when the call failed or the arguments were malformed.
type ExtractionResult struct {
	Reasoning *string        `json:"reasoning"`
	Result    map[string]any `json:"result"`
}

// Outcome classifies one (prediction, ground truth) comparison.
type Outcome string

const (
	OutcomeCorrect         Outcome = "correct"
	OutcomeAPIError        Outcome = "API error"
	OutcomeExtractionError Outcome = "Extraction error"
	OutcomeFalsePositive   Outcome = "False positive"
	OutcomeFalseNegative   Outcome = "False negative"
	OutcomeIncorrectValue  Outcome = "Incorrect value"
)

// EvaluationRecord is the terminal per-(document, line item) artifact of the
// evaluation stage.
type EvaluationRecord struct {
	DocName             string   `json:"doc_name"`
	LineItemName        string   `json:"line_item_name"`
	IsCorrect           bool     `json:"is_correct"`
	WrongPredictionType *Outcome `json:"wrong_prediction_type"`
	GroundTruth         any      `json:"ground_truth"`
	Prediction          any      `json:"prediction"`
}
