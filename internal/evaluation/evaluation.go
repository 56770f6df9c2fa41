// Package evaluation classifies extraction predictions against ground truth
// and builds the benchmark report.
package evaluation

import (
	"encoding/json"
	"reflect"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/osprey-ai/policybench/internal/extraction"
	"github.com/osprey-ai/policybench/internal/model"
)

// CleanPrediction drops prediction keys whose value is null or empty-string
// when the ground truth never mentions the key: a model emitting an explicit
// null for a field the ground truth omits is not a disagreement. Keys with
// non-empty values are kept even when absent from ground truth. Non-object
// predictions are returned unchanged.
func CleanPrediction(prediction, groundTruth any) any {
	predMap, predOK := prediction.(map[string]any)
	gtMap, gtOK := groundTruth.(map[string]any)
	if !predOK || !gtOK {
		return prediction
	}

	clean := make(map[string]any, len(predMap))
	for key, v := range predMap {
		predEmpty := v == nil || v == ""
		_, inGT := gtMap[key]
		if predEmpty && !inGT {
			continue
		}
		clean[key] = v
	}
	return clean
}

// Evaluate classifies one extraction record. The checks run in order and the
// first match wins. A cleaned prediction that is an empty object still counts
// as non-null, so a null ground truth classifies it as a false positive.
func Evaluate(u extraction.UnitLog) model.Outcome {
	if !u.HasResponse {
		return model.OutcomeAPIError
	}
	if u.Result == nil {
		return model.OutcomeExtractionError
	}
	prediction, ok := u.Result["extraction"]
	if !ok {
		return model.OutcomeExtractionError
	}

	clean := CleanPrediction(prediction, u.GroundTruth)
	switch {
	case u.GroundTruth == nil && clean == nil:
		return model.OutcomeCorrect
	case u.GroundTruth == nil:
		return model.OutcomeFalsePositive
	case clean == nil:
		return model.OutcomeFalseNegative
	case !deepEqual(u.GroundTruth, clean):
		return model.OutcomeIncorrectValue
	}
	return model.OutcomeCorrect
}

// deepEqual compares two values structurally after a JSON round trip, so
// numeric representation and map key order never matter while array order
// does.
func deepEqual(a, b any) bool {
	aj, err := json.Marshal(a)
	if err != nil {
		return false
	}
	bj, err := json.Marshal(b)
	if err != nil {
		return false
	}
	var av, bv any
	if err := json.Unmarshal(aj, &av); err != nil {
		return false
	}
	if err := json.Unmarshal(bj, &bv); err != nil {
		return false
	}
	return reflect.DeepEqual(av, bv)
}

// Summary tallies outcomes across the whole run.
type Summary struct {
	Total               int     `json:"total"`
	NumAPIError         int     `json:"num_api_error"`
	FracAPIError        float64 `json:"frac_api_error"`
	NumExtractionError  int     `json:"num_extraction_error"`
	FracExtractionError float64 `json:"frac_extraction_error"`
	NumCorrect          int     `json:"num_correct"`
	FracCorrect         float64 `json:"frac_correct"`
}

// Report is the terminal artifact of a benchmark run.
type Report struct {
	RunID   string                   `json:"run_id"`
	Records []model.EvaluationRecord `json:"records"`
	Summary Summary                  `json:"summary"`
}

// BuildReport evaluates every extraction record and assembles the report.
func BuildReport(logs []extraction.UnitLog) Report {
	report := Report{
		RunID:   uuid.NewString(),
		Records: make([]model.EvaluationRecord, 0, len(logs)),
	}

	for _, u := range logs {
		outcome := Evaluate(u)

		rec := model.EvaluationRecord{
			DocName:      u.DocName,
			LineItemName: u.LineItemName,
			IsCorrect:    outcome == model.OutcomeCorrect,
			GroundTruth:  u.GroundTruth,
		}
		if u.Result != nil {
			rec.Prediction = u.Result["extraction"]
		}
		if !rec.IsCorrect {
			wrong := outcome
			rec.WrongPredictionType = &wrong
		}

		switch outcome {
		case model.OutcomeCorrect:
			report.Summary.NumCorrect++
		case model.OutcomeAPIError:
			report.Summary.NumAPIError++
		case model.OutcomeExtractionError:
			report.Summary.NumExtractionError++
		}
		report.Records = append(report.Records, rec)
	}

	report.Summary.Total = len(report.Records)
	if report.Summary.Total > 0 {
		n := float64(report.Summary.Total)
		report.Summary.FracAPIError = float64(report.Summary.NumAPIError) / n
		report.Summary.FracExtractionError = float64(report.Summary.NumExtractionError) / n
		report.Summary.FracCorrect = float64(report.Summary.NumCorrect) / n
	}

	zap.L().Info("evaluation complete",
		zap.String("run_id", report.RunID),
		zap.Int("total", report.Summary.Total),
		zap.Int("correct", report.Summary.NumCorrect),
		zap.Int("api_errors", report.Summary.NumAPIError),
		zap.Int("extraction_errors", report.Summary.NumExtractionError),
	)

	return report
}
