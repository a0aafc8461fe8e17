package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Entry is one credential record. Readers fill it from foreign records and
// hand ownership to the enclosing group.
type Entry struct {
	UUID     uuid.UUID
	Title    string
	Username string
	Password string
	URL      string
	Notes    string

	Expires    bool
	ExpiryTime time.Time

	Attachments map[string][]byte

	group *Group
	attrs *EntryAttributes
	totp  *TotpSettings
	tags  map[string]struct{}
}

// NewEntry returns an empty entry with a fresh UUID.
func NewEntry() *Entry {
	return &Entry{
		UUID:        uuid.New(),
		Attachments: make(map[string][]byte),
		attrs:       NewEntryAttributes(),
		tags:        make(map[string]struct{}),
	}
}

// Group returns the group currently owning the entry.
func (e *Entry) Group() *Group { return e.group }

// Attributes returns the entry's attribute map.
func (e *Entry) Attributes() *EntryAttributes { return e.attrs }

// Attribute is shorthand for Attributes().Value(key).
func (e *Entry) Attribute(key string) string { return e.attrs.Value(key) }

// AddTag records a tag. Tags are a set; insertion order is irrelevant.
func (e *Entry) AddTag(tag string) {
	if tag != "" {
		e.tags[tag] = struct{}{}
	}
}

// HasTag reports whether the tag is set.
func (e *Entry) HasTag(tag string) bool {
	_, ok := e.tags[tag]
	return ok
}

// Tags returns all tags in unspecified order.
func (e *Entry) Tags() []string {
	out := make([]string, 0, len(e.tags))
	for t := range e.tags {
		out = append(out, t)
	}
	return out
}

// IsExpired reports whether the entry expires and its expiry time has passed.
func (e *Entry) IsExpired() bool {
	return e.Expires && !e.ExpiryTime.After(time.Now())
}

// HasTotp reports whether TOTP settings are present.
func (e *Entry) HasTotp() bool { return e.totp != nil }

// TotpSettings returns the entry's TOTP settings, or nil.
func (e *Entry) TotpSettings() *TotpSettings { return e.totp }

// SetTotp installs TOTP settings with first-wins semantics. When settings
// are already present the existing ones are left untouched and the raw
// competing value is recorded as a protected otp_<n> attribute so it is
// never silently dropped.
func (e *Entry) SetTotp(settings *TotpSettings, raw string) {
	if settings == nil {
		return
	}
	if e.totp == nil {
		e.totp = settings
		return
	}
	for n := 1; ; n++ {
		key := fmt.Sprintf("otp_%d", n)
		if !e.attrs.Contains(key) {
			e.attrs.Set(key, raw, true)
			return
		}
	}
}
