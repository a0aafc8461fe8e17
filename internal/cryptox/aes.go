package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"fmt"

	"github.com/newhinton/keepassxc/internal/common"
)

// cbcDecrypt runs raw AES-CBC without any padding handling. The caller is
// responsible for stripping whatever padding scheme the format uses.
func cbcDecrypt(key, iv, ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	if len(iv) != aes.BlockSize || len(ciphertext)%aes.BlockSize != 0 || len(ciphertext) == 0 {
		return nil, fmt.Errorf("%w: truncated ciphertext", common.ErrDecryptionFailed)
	}
	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)
	return plaintext, nil
}

// cbcEncrypt runs raw AES-CBC; the plaintext must already be block-aligned.
func cbcEncrypt(key, iv, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	ciphertext := make([]byte, len(plaintext))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, plaintext)
	return ciphertext, nil
}

// DecryptAesCbcRaw decrypts AES-CBC ciphertext without touching padding,
// for formats that pad with random bytes or fixed-size key blobs.
func DecryptAesCbcRaw(key, iv, ciphertext []byte) ([]byte, error) {
	return cbcDecrypt(key, iv, ciphertext)
}

// EncryptAesCbcRaw encrypts block-aligned plaintext with AES-CBC, no padding.
func EncryptAesCbcRaw(key, iv, plaintext []byte) ([]byte, error) {
	return cbcEncrypt(key, iv, plaintext)
}

// DecryptAesCbc decrypts AES-CBC ciphertext and strips PKCS#7 padding.
func DecryptAesCbc(key, iv, ciphertext []byte) ([]byte, error) {
	plaintext, err := cbcDecrypt(key, iv, ciphertext)
	if err != nil {
		return nil, err
	}
	return pkcs7Strip(plaintext)
}

// EncryptAesCbc pads plaintext with PKCS#7 and encrypts it with AES-CBC.
// Decryption is what the readers need; encryption exists so round-trip tests
// can build valid containers with the same primitives.
func EncryptAesCbc(key, iv, plaintext []byte) ([]byte, error) {
	return cbcEncrypt(key, iv, pkcs7Pad(plaintext, aes.BlockSize))
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	padded := make([]byte, len(data), len(data)+n)
	copy(padded, data)
	for i := 0; i < n; i++ {
		padded = append(padded, byte(n))
	}
	return padded
}

func pkcs7Strip(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty plaintext", common.ErrDecryptionFailed)
	}
	n := int(data[len(data)-1])
	if n == 0 || n > aes.BlockSize || n > len(data) {
		return nil, fmt.Errorf("%w: invalid padding", common.ErrDecryptionFailed)
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, fmt.Errorf("%w: invalid padding", common.ErrDecryptionFailed)
		}
	}
	return data[:len(data)-n], nil
}

// HmacSha256 computes HMAC-SHA256 of the concatenated parts.
func HmacSha256(key []byte, parts ...[]byte) []byte {
	h := hmac.New(sha256.New, key)
	for _, p := range parts {
		h.Write(p)
	}
	return h.Sum(nil)
}

// VerifyHmacSha256 checks mac against HMAC-SHA256(key, parts...) in constant
// time. A mismatch is reported as a decryption failure: wrong password and
// corrupt ciphertext are indistinguishable here.
func VerifyHmacSha256(key, mac []byte, parts ...[]byte) error {
	if !hmac.Equal(mac, HmacSha256(key, parts...)) {
		return fmt.Errorf("%w: authentication check failed", common.ErrDecryptionFailed)
	}
	return nil
}

// RandomBytes returns n cryptographically random bytes.
func RandomBytes(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}
