package utils

import (
	"strings"
	"testing"
)

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"abcd", 1},
		{"hello world, this is text", 6},
	}
	for _, tt := range tests {
		if got := EstimateTokens(tt.text); got != tt.want {
			t.Errorf("EstimateTokens(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

func TestCountTokens(t *testing.T) {
	if got := CountTokens("gpt-4o", ""); got != 0 {
		t.Errorf("CountTokens(empty) = %d, want 0", got)
	}

	short := CountTokens("gpt-4o", "hello world")
	if short == 0 {
		t.Error("expected non-zero count for non-empty text")
	}

	long := CountTokens("gpt-4o", strings.Repeat("hello world ", 50))
	if long <= short {
		t.Errorf("longer text counted %d tokens, shorter counted %d", long, short)
	}
}

func TestCountTokensUnknownModel(t *testing.T) {
	// Models without a known encoding still get a usable count.
	if got := CountTokens("llama3.2", "Renew your policy today for continued coverage."); got == 0 {
		t.Error("expected non-zero count for unknown model")
	}
}
