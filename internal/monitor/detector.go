package monitor

import (
	"regexp"
	"strings"

	"primex/api/internal/models"
)

// RequestSummary is the normalized view of a request that detection
// rules match against.
type RequestSummary struct {
	IPAddress string
	Method    string
	Path      string
	Query     string
	Body      string
	UserAgent string
}

// Rule is one detection signature. Match never mutates the summary.
type Rule struct {
	Name     string
	Severity models.Severity
	Match    func(RequestSummary) bool
}

var (
	sqlPattern    = regexp.MustCompile(`(?i)(\bUNION\b|\bSELECT\b|\bDROP\b|\bINSERT\b|\bUPDATE\b|\bDELETE\b)`)
	scriptPattern = regexp.MustCompile(`(?i)(<script|javascript:|onerror=|onload=)`)
)

// DefaultRules is the ordered signature set scanned on every request.
// New signatures are added here; dispatch never changes.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:     "Missing or invalid user agent",
			Severity: models.SeverityHigh,
			Match: func(s RequestSummary) bool {
				return len(s.UserAgent) < 10
			},
		},
		{
			Name:     "Potential SQL injection attempt",
			Severity: models.SeverityHigh,
			Match: func(s RequestSummary) bool {
				return sqlPattern.MatchString(s.Query) || sqlPattern.MatchString(s.Body)
			},
		},
		{
			Name:     "Potential XSS attempt",
			Severity: models.SeverityHigh,
			Match: func(s RequestSummary) bool {
				return scriptPattern.MatchString(s.Query) || scriptPattern.MatchString(s.Body)
			},
		},
		{
			Name:     "Path traversal attempt",
			Severity: models.SeverityHigh,
			Match: func(s RequestSummary) bool {
				return strings.Contains(s.Path, "..") || strings.Contains(s.Path, "~")
			},
		},
	}
}

// matchRules returns the names of all rules that fire on the summary.
func matchRules(rules []Rule, summary RequestSummary) []string {
	var matched []string
	for _, rule := range rules {
		if rule.Match(summary) {
			matched = append(matched, rule.Name)
		}
	}
	return matched
}
