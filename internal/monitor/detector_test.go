package monitor

import (
	"strings"
	"testing"
)

const goodAgent = "Mozilla/5.0 (X11; Linux x86_64)"

func TestDetectionRules(t *testing.T) {
	rules := DefaultRules()

	tests := []struct {
		name    string
		summary RequestSummary
		want    []string
	}{
		{
			name:    "clean request",
			summary: RequestSummary{Path: "/api/v1/user/me", UserAgent: goodAgent},
			want:    nil,
		},
		{
			name:    "sql keywords in query",
			summary: RequestSummary{Path: "/api/v1/user/me", Query: "id=1 UNION SELECT password", UserAgent: goodAgent},
			want:    []string{"Potential SQL injection attempt"},
		},
		{
			name:    "sql keywords in body",
			summary: RequestSummary{Path: "/login", Body: `{"username":"x' ; DROP TABLE users--"}`, UserAgent: goodAgent},
			want:    []string{"Potential SQL injection attempt"},
		},
		{
			name:    "script tag",
			summary: RequestSummary{Path: "/search", Query: "q=<script>alert(1)</script>", UserAgent: goodAgent},
			want:    []string{"Potential XSS attempt"},
		},
		{
			name:    "javascript handler",
			summary: RequestSummary{Path: "/search", Body: `{"bio":"<img onerror=steal()>"}`, UserAgent: goodAgent},
			want:    []string{"Potential XSS attempt"},
		},
		{
			name:    "path traversal dots",
			summary: RequestSummary{Path: "/files/../../etc/passwd", UserAgent: goodAgent},
			want:    []string{"Path traversal attempt"},
		},
		{
			name:    "path traversal tilde",
			summary: RequestSummary{Path: "/files/~root", UserAgent: goodAgent},
			want:    []string{"Path traversal attempt"},
		},
		{
			name:    "missing user agent",
			summary: RequestSummary{Path: "/api/v1/user/me"},
			want:    []string{"Missing or invalid user agent"},
		},
		{
			name:    "short user agent",
			summary: RequestSummary{Path: "/api/v1/user/me", UserAgent: "curl"},
			want:    []string{"Missing or invalid user agent"},
		},
		{
			name:    "multiple matches",
			summary: RequestSummary{Path: "/../x", Query: "q=SELECT 1", UserAgent: "x"},
			want:    []string{"Missing or invalid user agent", "Potential SQL injection attempt", "Path traversal attempt"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := matchRules(rules, tt.summary)
			if len(got) != len(tt.want) {
				t.Fatalf("matched %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("match[%d] = %q, want %q (order is rule order)", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestRulesAreCaseInsensitive(t *testing.T) {
	rules := DefaultRules()

	lower := RequestSummary{Query: "q=select * from users", UserAgent: goodAgent}
	upper := RequestSummary{Query: "q=SELECT * FROM USERS", UserAgent: goodAgent}

	if len(matchRules(rules, lower)) == 0 || len(matchRules(rules, upper)) == 0 {
		t.Error("sql rule should match regardless of case")
	}

	mixed := RequestSummary{Body: "<SCRIPT>x</SCRIPT>", UserAgent: goodAgent}
	matched := matchRules(rules, mixed)
	found := false
	for _, m := range matched {
		if strings.Contains(m, "XSS") {
			found = true
		}
	}
	if !found {
		t.Error("xss rule should match uppercase script tag")
	}
}
