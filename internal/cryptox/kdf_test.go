package cryptox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newhinton/keepassxc/internal/common"
)

func TestDeriveKey(t *testing.T) {
	tests := []struct {
		name   string
		params KdfParams
	}{
		{
			name: "pbkdf2-sha256",
			params: KdfParams{
				Type:       KdfPbkdf2Sha256,
				Salt:       []byte("salt"),
				Iterations: 1000,
			},
		},
		{
			name: "argon2id",
			params: KdfParams{
				Type:        KdfArgon2id,
				Salt:        []byte("0123456789abcdef0123456789abcdef"),
				Iterations:  2,
				Memory:      16,
				Parallelism: 1,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key1, err := DeriveKey([]byte("password"), tt.params, 32)
			require.NoError(t, err)
			require.Len(t, key1, 32)

			key2, err := DeriveKey([]byte("password"), tt.params, 32)
			require.NoError(t, err)
			assert.Equal(t, key1, key2, "derivation must be deterministic")

			key3, err := DeriveKey([]byte("Password"), tt.params, 32)
			require.NoError(t, err)
			assert.NotEqual(t, key1, key3, "different password must yield a different key")
		})
	}
}

func TestDeriveKey_UnknownType(t *testing.T) {
	_, err := DeriveKey([]byte("password"), KdfParams{Type: KdfType(42)}, 32)
	require.ErrorIs(t, err, common.ErrUnsupportedKdf)
}

func TestPbkdf2Sha512(t *testing.T) {
	key := Pbkdf2Sha512([]byte("freddy"), []byte("salty"), 5000, 64)
	require.Len(t, key, 64)
	assert.Equal(t, key, Pbkdf2Sha512([]byte("freddy"), []byte("salty"), 5000, 64))
	assert.NotEqual(t, key, Pbkdf2Sha512([]byte("freddy"), []byte("salty"), 5001, 64))
}

func TestDigestHelpers(t *testing.T) {
	assert.Len(t, Sha256Sum([]byte("x")), 32)
	assert.Len(t, Sha512Sum([]byte("x")), 64)
	assert.NotEqual(t, Sha256Sum([]byte("a")), Sha256Sum([]byte("b")))
}
