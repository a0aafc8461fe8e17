package cryptox

import (
	"crypto/aes"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/crypto/hkdf"

	"github.com/newhinton/keepassxc/internal/common"
)

// encTypeAesCbc256HmacSha256 is the only cipher suite Bitwarden uses for
// password-protected exports.
const encTypeAesCbc256HmacSha256 = 2

// EncString is Bitwarden's "<type>.<iv>|<data>|<mac>" payload encoding with
// base64 segments.
type EncString struct {
	Type int
	IV   []byte
	Data []byte
	Mac  []byte
}

// ParseEncString splits and decodes a serialized EncString.
func ParseEncString(s string) (*EncString, error) {
	head, rest, ok := strings.Cut(s, ".")
	if !ok {
		return nil, fmt.Errorf("%w: malformed enc string", common.ErrInvalidFormat)
	}
	typ, err := strconv.Atoi(head)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed enc string type", common.ErrInvalidFormat)
	}
	parts := strings.Split(rest, "|")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: enc string needs iv|data|mac", common.ErrInvalidFormat)
	}
	e := &EncString{Type: typ}
	for i, dst := range []*[]byte{&e.IV, &e.Data, &e.Mac} {
		if *dst, err = base64.StdEncoding.DecodeString(parts[i]); err != nil {
			return nil, fmt.Errorf("%w: enc string segment %d is not base64", common.ErrInvalidFormat, i)
		}
	}
	return e, nil
}

// Decrypt authenticates the payload with macKey and decrypts it with encKey.
func (e *EncString) Decrypt(encKey, macKey []byte) ([]byte, error) {
	if e.Type != encTypeAesCbc256HmacSha256 {
		return nil, fmt.Errorf("%w: enc string type %d", common.ErrUnsupportedVersion, e.Type)
	}
	if err := VerifyHmacSha256(macKey, e.Mac, e.IV, e.Data); err != nil {
		return nil, err
	}
	return DecryptAesCbc(encKey, e.IV, e.Data)
}

// SealEncString encrypts plaintext into a type-2 EncString. Round-trip
// support for tests building encrypted fixtures.
func SealEncString(plaintext, encKey, macKey []byte) (string, error) {
	iv := RandomBytes(aes.BlockSize)
	data, err := EncryptAesCbc(encKey, iv, plaintext)
	if err != nil {
		return "", err
	}
	mac := HmacSha256(macKey, iv, data)
	b64 := base64.StdEncoding.EncodeToString
	return fmt.Sprintf("%d.%s|%s|%s", encTypeAesCbc256HmacSha256, b64(iv), b64(data), b64(mac)), nil
}

// StretchKey expands a derived master key into separate encryption and MAC
// subkeys via HKDF-SHA256 with the fixed "enc"/"mac" info strings, matching
// Bitwarden's key stretching.
func StretchKey(key []byte) (encKey, macKey []byte, err error) {
	encKey = make([]byte, 32)
	if _, err = io.ReadFull(hkdf.Expand(sha256.New, key, []byte("enc")), encKey); err != nil {
		return nil, nil, err
	}
	macKey = make([]byte, 32)
	if _, err = io.ReadFull(hkdf.Expand(sha256.New, key, []byte("mac")), macKey); err != nil {
		return nil, nil, err
	}
	return encKey, macKey, nil
}
