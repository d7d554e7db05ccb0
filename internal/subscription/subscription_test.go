package subscription

import (
	"testing"
	"time"
)

func TestActive(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Second)
	future := now.Add(time.Hour)

	tests := []struct {
		name string
		end  *time.Time
		want bool
	}{
		{"nil is unlimited", nil, true},
		{"one second past", &past, false},
		{"future", &future, true},
		{"exactly now", &now, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Active(tt.end, now); got != tt.want {
				t.Errorf("Active(%v) = %v, want %v", tt.end, got, tt.want)
			}
		})
	}
}

func TestRenewalInfoLocale(t *testing.T) {
	tests := []struct {
		header    string
		wantTitle string
	}{
		{"ar", "يتطلب اشتراك"},
		{"ar-SA,ar;q=0.9", "يتطلب اشتراك"},
		{"en-US,en;q=0.9", "Subscription Required"},
		{"fr", "Subscription Required"},
		{"", "Subscription Required"},
	}

	for _, tt := range tests {
		info := RenewalInfo(tt.header)
		if info.Title != tt.wantTitle {
			t.Errorf("RenewalInfo(%q).Title = %q, want %q", tt.header, info.Title, tt.wantTitle)
		}
		if info.Message == "" || info.Contact == "" || info.PaymentMethods == "" {
			t.Errorf("RenewalInfo(%q) has empty fields: %+v", tt.header, info)
		}
	}
}
