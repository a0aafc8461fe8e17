package models

import (
	"net/url"
	"strconv"
	"strings"
)

// TOTP defaults used when a source omits them.
const (
	TotpDefaultDigits uint = 6
	TotpDefaultStep   uint = 30
)

// TotpSettings holds the material needed to generate time-based one-time
// passwords for an entry.
type TotpSettings struct {
	Key    string
	Digits uint
	Step   uint
}

// ParseTotpURI accepts either an otpauth:// URI or a bare base32 secret and
// returns the corresponding settings. Empty input yields nil.
func ParseTotpURI(value string) *TotpSettings {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	s := &TotpSettings{Digits: TotpDefaultDigits, Step: TotpDefaultStep}

	if !strings.HasPrefix(value, "otpauth://") {
		// Bare secret exported without URI wrapping.
		s.Key = value
		return s
	}

	u, err := url.Parse(value)
	if err != nil {
		return nil
	}
	q := u.Query()
	s.Key = q.Get("secret")
	if d, err := strconv.ParseUint(q.Get("digits"), 10, 32); err == nil && d > 0 {
		s.Digits = uint(d)
	}
	if p, err := strconv.ParseUint(q.Get("period"), 10, 32); err == nil && p > 0 {
		s.Step = uint(p)
	}
	return s
}
