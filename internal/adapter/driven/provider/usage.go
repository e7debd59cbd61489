package provider

import (
	"strconv"
	"strings"

	"github.com/ericfisherdev/prpilot/internal/domain/model"
)

// extractUsage pulls token counts out of free-form CLI output. Vendor CLIs
// print usage in wildly different shapes, so this is best effort: any metric
// that cannot be found stays unset and renders as unavailable downstream.
func extractUsage(output string) model.TokenUsage {
	prompt := extractMetric(output, []string{
		"prompt_tokens", "prompt tokens", "input_tokens", "input tokens",
	})
	completion := extractMetric(output, []string{
		"completion_tokens", "completion tokens", "output_tokens", "output tokens",
	})
	total := extractMetric(output, []string{
		"total_tokens", "total tokens", "tokens total",
	})
	if total == nil && prompt != nil && completion != nil {
		sum := *prompt + *completion
		total = &sum
	}
	return model.TokenUsage{Prompt: prompt, Completion: completion, Total: total}
}

// extractMetric scans line by line first so "prompt_tokens: 120" style output
// wins, then falls back to the first number after the key anywhere in the text.
func extractMetric(text string, keys []string) *int64 {
	lower := strings.ToLower(text)
	for _, line := range strings.Split(lower, "\n") {
		for _, key := range keys {
			// Scan only the tail after the key so a line carrying
			// several metrics attributes each number correctly.
			if idx := strings.Index(line, key); idx >= 0 {
				if v, ok := firstNumber(line[idx+len(key):]); ok {
					return &v
				}
			}
		}
	}
	for _, key := range keys {
		if idx := strings.Index(lower, key); idx >= 0 {
			if v, ok := firstNumber(lower[idx+len(key):]); ok {
				return &v
			}
		}
	}
	return nil
}

func firstNumber(s string) (int64, bool) {
	var digits strings.Builder
	for _, ch := range s {
		if ch >= '0' && ch <= '9' {
			digits.WriteRune(ch)
			continue
		}
		if digits.Len() > 0 {
			break
		}
	}
	if digits.Len() == 0 {
		return 0, false
	}
	v, err := strconv.ParseInt(digits.String(), 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
