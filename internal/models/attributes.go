package models

// Passkey attribute keys shared by formats that export WebAuthn credentials.
const (
	AttrPasskeyCredentialID  = "KPEX_PASSKEY_CREDENTIAL_ID"
	AttrPasskeyPrivateKeyPem = "KPEX_PASSKEY_PRIVATE_KEY_PEM"
	AttrPasskeyUsername      = "KPEX_PASSKEY_USERNAME"
	AttrPasskeyRelyingParty  = "KPEX_PASSKEY_RELYING_PARTY"
	AttrPasskeyUserHandle    = "KPEX_PASSKEY_USER_HANDLE"
)

// EntryAttributes maps free-form attribute keys to string values. Each key
// additionally carries a protected flag for sensitive material (PINs, SSNs,
// card verification numbers) that the destination database must mask at rest.
type EntryAttributes struct {
	values    map[string]string
	protected map[string]bool
	keys      []string
}

// NewEntryAttributes returns an empty attribute map.
func NewEntryAttributes() *EntryAttributes {
	return &EntryAttributes{
		values:    make(map[string]string),
		protected: make(map[string]bool),
	}
}

// Set stores value under key. Values are stored verbatim: embedded newlines
// and leading/trailing whitespace survive untouched.
func (a *EntryAttributes) Set(key, value string, protect bool) {
	if _, ok := a.values[key]; !ok {
		a.keys = append(a.keys, key)
	}
	a.values[key] = value
	a.protected[key] = protect
}

// Value returns the value stored under key, or "" when absent.
func (a *EntryAttributes) Value(key string) string { return a.values[key] }

// Contains reports whether key is present.
func (a *EntryAttributes) Contains(key string) bool {
	_, ok := a.values[key]
	return ok
}

// IsProtected reports whether key is flagged sensitive.
func (a *EntryAttributes) IsProtected(key string) bool { return a.protected[key] }

// Keys returns the attribute keys in insertion order.
func (a *EntryAttributes) Keys() []string { return a.keys }

// Len returns the number of attributes.
func (a *EntryAttributes) Len() int { return len(a.values) }
