// Package cryptox implements the key derivation and symmetric decryption
// primitives shared by the encrypted import containers: PBKDF2 and Argon2id
// password stretching, AES-CBC with HMAC authentication, 1Password opdata01
// blobs and Bitwarden EncString payloads.
//
// Everything here is pure and stateless: a password plus format-supplied
// parameters in, keys or cleartext out. No derived key is ever cached.
package cryptox

import (
	"crypto/sha256"
	"crypto/sha512"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"

	"github.com/newhinton/keepassxc/internal/common"
)

// KdfType discriminates the password-stretching scheme named in an encrypted
// container's cleartext header.
type KdfType int

const (
	// KdfPbkdf2Sha256 is PBKDF2-HMAC-SHA256 with an explicit iteration count.
	KdfPbkdf2Sha256 KdfType = 0
	// KdfArgon2id is Argon2id with explicit memory/iterations/parallelism.
	KdfArgon2id KdfType = 1
)

// KdfParams carries the derivation parameters read from a container header.
// Memory is in MiB as exported by Bitwarden; Iterations doubles as the
// Argon2 time cost.
type KdfParams struct {
	Type        KdfType
	Salt        []byte
	Iterations  int
	Memory      int
	Parallelism int
}

// DeriveKey stretches password into keyLen bytes according to params. An
// unknown discriminator fails before any derivation work is done.
func DeriveKey(password []byte, params KdfParams, keyLen int) ([]byte, error) {
	switch params.Type {
	case KdfPbkdf2Sha256:
		return pbkdf2.Key(password, params.Salt, params.Iterations, keyLen, sha256.New), nil
	case KdfArgon2id:
		return argon2.IDKey(password, params.Salt,
			uint32(params.Iterations), uint32(params.Memory)*1024,
			uint8(params.Parallelism), uint32(keyLen)), nil
	default:
		return nil, fmt.Errorf("%w: kdf type %d", common.ErrUnsupportedKdf, params.Type)
	}
}

// Pbkdf2Sha512 stretches password with PBKDF2-HMAC-SHA512. OPVault derives
// its 64-byte master key material this way.
func Pbkdf2Sha512(password, salt []byte, iterations, keyLen int) []byte {
	return pbkdf2.Key(password, salt, iterations, keyLen, sha512.New)
}

// Sha256Sum returns the SHA-256 digest of data as a fresh slice.
func Sha256Sum(data []byte) []byte {
	sum := sha256.Sum256(data)
	return sum[:]
}

// Sha512Sum returns the SHA-512 digest of data as a fresh slice.
func Sha512Sum(data []byte) []byte {
	sum := sha512.Sum512(data)
	return sum[:]
}
