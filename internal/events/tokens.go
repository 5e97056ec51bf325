package events

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

var (
	encoderOnce sync.Once
	encoder     *tiktoken.Tiktoken
)

// EstimateTokens returns an approximate token count for the given text.
// It uses the cl100k_base encoding when available and falls back to the
// bytes/4 heuristic if the encoder cannot be initialized.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}

	encoderOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err == nil {
			encoder = enc
		}
	})

	if encoder != nil {
		return len(encoder.Encode(text, nil, nil))
	}
	return (len(text) + 3) / 4
}
