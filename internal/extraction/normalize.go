package extraction

import "github.com/osprey-ai/policybench/internal/model"

// policyLevelKeys is the allow-list of policy-condition fields surfaced to
// the extraction prompt.
var policyLevelKeys = map[string]struct{}{
	"aggregate_limit_of_liability": {},
	"premium":                      {},
	"retention":                    {},
	"waiting_period":               {},
	"indemnity_period":             {},
}

// isEmpty reports whether a raw metadata value is the null/zero/empty-string
// sentinel. false is meaningful and survives, as does any non-empty string.
func isEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case float64:
		return x == 0
	case int:
		return x == 0
	case int64:
		return x == 0
	}
	return false
}

// NormalizeMetadata strips a policy's structured conditions down to the
// fields worth showing the model: allow-listed policy-level fields and
// sub-limit fields whose values are present. Sub-limit entry order is
// preserved; fields failing the predicate are omitted, not nulled.
func NormalizeMetadata(policyConditions map[string]any, subLimits []map[string]any) model.PolicyMetadata {
	policyLevelInfo := map[string]any{}
	for key, v := range policyConditions {
		if _, interesting := policyLevelKeys[key]; !interesting {
			continue
		}
		if isEmpty(v) {
			continue
		}
		policyLevelInfo[key] = v
	}

	coverageLimits := make([]map[string]any, 0, len(subLimits))
	for _, sub := range subLimits {
		rec := map[string]any{}
		for key, v := range sub {
			if isEmpty(v) {
				continue
			}
			rec[key] = v
		}
		coverageLimits = append(coverageLimits, rec)
	}

	return model.PolicyMetadata{
		PolicyLevelInfo: policyLevelInfo,
		CoverageLimits:  coverageLimits,
	}
}
