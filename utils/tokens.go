package utils

import (
	"github.com/pkoukk/tiktoken-go"
)

// EstimateTokens provides a rough token estimation when no tokenizer or
// provider-reported usage is available.
func EstimateTokens(text string) int {
	// Rough estimation: 4 characters per token
	return len(text) / 4
}

// CountTokens counts tokens using the model's BPE encoding, falling back to
// EstimateTokens for unknown models or encoder load failures.
func CountTokens(model, text string) int {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return EstimateTokens(text)
		}
	}
	return len(enc.Encode(text, nil, nil))
}
