// Package assist builds the deep links the mobile UI hands to the OS:
// phone dialing for emergency and workshop calls, and map navigation
// with a web fallback for devices without a native maps app.
package assist

import (
	"fmt"
	"net/url"
	"strings"
)

// EmergencyNumber is the traffic police hotline.
const EmergencyNumber = "111"

// DialURL returns a tel: link for the given phone number. An empty or
// malformed number is a reported error, never a panic: the caller shows
// it to the user and aborts the action.
func DialURL(phone string) (string, error) {
	cleaned := strings.TrimSpace(phone)
	if cleaned == "" {
		return "", fmt.Errorf("phone number is empty")
	}

	for i, r := range cleaned {
		switch {
		case r >= '0' && r <= '9':
		case r == '+' && i == 0:
		case r == '-' || r == ' ' || r == '(' || r == ')':
		default:
			return "", fmt.Errorf("phone number contains invalid character %q", r)
		}
	}

	// strip formatting so the dialer gets a plain number
	var b strings.Builder
	digits := 0
	for _, r := range cleaned {
		if r >= '0' && r <= '9' {
			digits++
		}
		if (r >= '0' && r <= '9') || r == '+' {
			b.WriteRune(r)
		}
	}
	if digits == 0 {
		return "", fmt.Errorf("phone number has no digits")
	}
	return "tel:" + b.String(), nil
}

// EmergencyDialURL never fails; the hotline number is a known constant.
func EmergencyDialURL() string {
	u, _ := DialURL(EmergencyNumber)
	return u
}

// Navigation carries both forms of a maps link. Clients try Native first
// and fall back to Web when no maps app handles the scheme.
type Navigation struct {
	Native string `json:"native"`
	Web    string `json:"web"`
}

func MapsURL(lat, lng float64, label string) Navigation {
	coords := fmt.Sprintf("%g,%g", lat, lng)
	q := coords
	if strings.TrimSpace(label) != "" {
		q = coords + "(" + strings.TrimSpace(label) + ")"
	}

	return Navigation{
		Native: "geo:" + coords + "?q=" + url.QueryEscape(q),
		Web:    "https://www.google.com/maps/search/?api=1&query=" + url.QueryEscape(coords),
	}
}
