package cryptox

import (
	"crypto/aes"
	"encoding/binary"
	"fmt"

	"github.com/newhinton/keepassxc/internal/common"
)

// opdata01 is 1Password's authenticated blob layout used throughout OPVault:
//
//	"opdata01" ‖ plaintext length (8 bytes LE) ‖ IV (16) ‖ ciphertext ‖ HMAC-SHA256 (32)
//
// The plaintext is front-padded with 1..16 random bytes to a block multiple;
// the HMAC covers everything before it.
const (
	opdataMagic     = "opdata01"
	opdataHeaderLen = 8 + 8 + 16
	opdataMacLen    = 32
)

// KeyPair is a 64-byte encryption/MAC key bundle as used by OPVault for the
// master, overview and per-item keys.
type KeyPair struct {
	Enc []byte
	Mac []byte
}

// KeyPairFromRaw splits 64 bytes of key material into an encryption and a
// MAC half.
func KeyPairFromRaw(raw []byte) (*KeyPair, error) {
	if len(raw) != 64 {
		return nil, fmt.Errorf("%w: key material must be 64 bytes, got %d", common.ErrDecryptionFailed, len(raw))
	}
	return &KeyPair{Enc: raw[:32], Mac: raw[32:]}, nil
}

// DecryptOpdata authenticates and decrypts one opdata01 blob, returning the
// unpadded plaintext.
func DecryptOpdata(blob []byte, keys *KeyPair) ([]byte, error) {
	if len(blob) < opdataHeaderLen+aes.BlockSize+opdataMacLen {
		return nil, fmt.Errorf("%w: opdata blob too short", common.ErrDecryptionFailed)
	}
	if string(blob[:8]) != opdataMagic {
		return nil, fmt.Errorf("%w: missing opdata01 header", common.ErrDecryptionFailed)
	}

	plainLen := binary.LittleEndian.Uint64(blob[8:16])
	iv := blob[16:32]
	ciphertext := blob[32 : len(blob)-opdataMacLen]
	mac := blob[len(blob)-opdataMacLen:]

	if err := VerifyHmacSha256(keys.Mac, mac, blob[:len(blob)-opdataMacLen]); err != nil {
		return nil, err
	}
	padded, err := cbcDecrypt(keys.Enc, iv, ciphertext)
	if err != nil {
		return nil, err
	}
	if uint64(len(padded)) < plainLen {
		return nil, fmt.Errorf("%w: opdata length mismatch", common.ErrDecryptionFailed)
	}
	// Random padding sits at the front of the plaintext.
	return padded[uint64(len(padded))-plainLen:], nil
}

// SealOpdata builds an opdata01 blob from plaintext. Used by tests to
// construct vaults that round-trip through DecryptOpdata.
func SealOpdata(plaintext []byte, keys *KeyPair) ([]byte, error) {
	padLen := aes.BlockSize - len(plaintext)%aes.BlockSize
	if padLen == 0 {
		padLen = aes.BlockSize
	}
	padded := append(RandomBytes(padLen), plaintext...)

	iv := RandomBytes(aes.BlockSize)
	ciphertext, err := cbcEncrypt(keys.Enc, iv, padded)
	if err != nil {
		return nil, err
	}

	blob := make([]byte, 0, opdataHeaderLen+len(ciphertext)+opdataMacLen)
	blob = append(blob, opdataMagic...)
	blob = binary.LittleEndian.AppendUint64(blob, uint64(len(plaintext)))
	blob = append(blob, iv...)
	blob = append(blob, ciphertext...)
	blob = append(blob, HmacSha256(keys.Mac, blob)...)
	return blob, nil
}
