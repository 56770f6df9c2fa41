// Package tokens provides token counting for batch sizing. Counts are used
// only to bound prompt sizes, so the estimator fallback is acceptable when
// the BPE tables are unavailable.
package tokens

import (
	"strings"

	"github.com/pkoukk/tiktoken-go"
	"go.uber.org/zap"
)

// Counter counts tokens in a string.
type Counter interface {
	Count(text string) int
}

// encodingName is the BPE encoding used for sizing prompts.
const encodingName = "cl100k_base"

// Tiktoken counts tokens with a real BPE encoding.
type Tiktoken struct {
	enc *tiktoken.Tiktoken
}

// NewTiktoken loads the BPE encoding.
func NewTiktoken() (*Tiktoken, error) {
	enc, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, err
	}
	return &Tiktoken{enc: enc}, nil
}

// Count returns the exact token count for text.
func (t *Tiktoken) Count(text string) int {
	return len(t.enc.Encode(text, nil, nil))
}

// Estimator is a words-based heuristic counter, roughly 1.33 tokens per word
// of English text.
type Estimator struct{}

// Count returns an approximate token count for text.
func (Estimator) Count(text string) int {
	if text == "" {
		return 0
	}
	words := len(strings.Fields(text))
	n := int(float64(words) * 1.33)
	if n < 1 {
		n = 1
	}
	return n
}

// NewCounter returns a Tiktoken counter, falling back to the heuristic
// estimator if the encoding cannot be loaded.
func NewCounter() Counter {
	t, err := NewTiktoken()
	if err != nil {
		zap.L().Warn("tokens: tiktoken unavailable, using estimator", zap.Error(err))
		return Estimator{}
	}
	return t
}
