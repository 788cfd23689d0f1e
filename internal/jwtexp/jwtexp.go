// Package jwtexp extracts the expiry claim embedded in a bearer token.
//
// The claim is decoded locally without any signature verification; it is an
// unverified estimate used only to schedule refreshes and expiry warnings,
// never for authorization decisions. The server remains the authority on
// token validity.
package jwtexp

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"
)

type claims struct {
	Exp float64 `json:"exp"`
}

// Expiry returns the unverified expiry of a three-segment bearer token.
// Any deviation from the expected structure (wrong segment count, decode
// failure, missing or non-numeric exp) yields ok=false rather than an error.
func Expiry(token string) (expiry time.Time, ok bool) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return time.Time{}, false
	}
	payload, err := decodeSegment(parts[1])
	if err != nil {
		return time.Time{}, false
	}
	var c claims
	if err := json.Unmarshal(payload, &c); err != nil {
		return time.Time{}, false
	}
	if c.Exp <= 0 {
		return time.Time{}, false
	}
	return time.Unix(int64(c.Exp), 0), true
}

func decodeSegment(seg string) ([]byte, error) {
	if data, err := base64.RawURLEncoding.DecodeString(seg); err == nil {
		return data, nil
	}
	return base64.URLEncoding.DecodeString(seg)
}
