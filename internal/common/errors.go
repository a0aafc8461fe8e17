// Package common defines shared sentinel errors used across the import
// readers. Callers should use errors.Is to match these values; the readers
// wrap them with format-specific detail.
package common

import "errors"

var (
	// Structural errors: a required key, band or file is absent, or a JSON
	// value has the wrong type.
	ErrInvalidFormat = errors.New("invalid file format")

	// Cryptographic errors. Wrong password, key-unwrap failure and
	// ciphertext corruption are indistinguishable and all map here.
	ErrDecryptionFailed = errors.New("decryption failed")

	// Unsupported-feature errors.
	ErrUnsupportedKdf     = errors.New("unsupported key derivation function")
	ErrUnsupportedVersion = errors.New("unsupported format version")
)
