package model

import (
	"fmt"
	"strings"
)

const (
	PriorityHigh   = "High"
	PriorityMedium = "Medium"
	PriorityLow    = "Low"
)

var DefaultPriorities = []string{PriorityHigh, PriorityMedium, PriorityLow}

// NormalizePriority matches s case-insensitively against allowed and
// returns the allowed spelling.
func NormalizePriority(s string, allowed []string) (string, error) {
	s = strings.TrimSpace(s)
	for _, p := range allowed {
		if strings.EqualFold(p, s) {
			return p, nil
		}
	}
	return "", fmt.Errorf("invalid priority %q, expected one of %s", s, strings.Join(allowed, ", "))
}
