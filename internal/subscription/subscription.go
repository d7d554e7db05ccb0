// Package subscription decides whether a subscriber's plan is current
// and builds the localized renewal payload returned when it is not.
package subscription

import (
	"strings"
	"time"
)

// Active reports whether a subscription with the given end date admits
// requests now. A nil end date is an unlimited subscription.
func Active(subscriptionEnd *time.Time, now time.Time) bool {
	if subscriptionEnd == nil {
		return true
	}
	return subscriptionEnd.After(now)
}

// Plans describes the available renewal plans in the chosen locale.
type Plans struct {
	Weekly  string `json:"weekly"`
	Monthly string `json:"monthly"`
	Yearly  string `json:"yearly"`
}

// Info is the renewal payload attached to an expired-subscription
// response.
type Info struct {
	Title          string `json:"title"`
	Message        string `json:"-"`
	Contact        string `json:"contact"`
	Email          string `json:"email"`
	Plans          Plans  `json:"plans"`
	PaymentMethods string `json:"payment_methods"`
}

var renewalInfo = map[string]Info{
	"en": {
		Title:   "Subscription Required",
		Message: "You need an active subscription to access this service.",
		Contact: "For subscription inquiries, please contact:",
		Email:   "info@paxdes.com",
		Plans: Plans{
			Weekly:  "Weekly Plan - 7 days",
			Monthly: "Monthly Plan - 30 days",
			Yearly:  "Yearly Plan - 365 days",
		},
		PaymentMethods: "Payment Methods: Credit Card, Bank Transfer, PayPal",
	},
	"ar": {
		Title:   "يتطلب اشتراك",
		Message: "تحتاج إلى اشتراك نشط للوصول إلى هذه الخدمة.",
		Contact: "للاستفسار عن الاشتراك، يرجى الاتصال:",
		Email:   "info@paxdes.com",
		Plans: Plans{
			Weekly:  "خطة أسبوعية - 7 أيام",
			Monthly: "خطة شهرية - 30 يوم",
			Yearly:  "خطة سنوية - 365 يوم",
		},
		PaymentMethods: "طرق الدفع: بطاقة ائتمان، تحويل بنكي، باي بال",
	},
}

// RenewalInfo returns the renewal payload for an Accept-Language header
// value. Arabic is recognized; everything else falls back to English.
func RenewalInfo(acceptLanguage string) Info {
	if strings.Contains(acceptLanguage, "ar") {
		return renewalInfo["ar"]
	}
	return renewalInfo["en"]
}
