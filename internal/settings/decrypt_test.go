package settings

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// encrypt mirrors the producer side of the stored-secret format:
// base64(nonce||sealed) AES-256-GCM under sha256(passphrase).
func encrypt(t *testing.T, passphrase, plaintext string) string {
	t.Helper()
	key := sha256.Sum256([]byte(passphrase))
	block, err := aes.NewCipher(key[:])
	require.NoError(t, err)
	gcm, err := cipher.NewGCM(block)
	require.NoError(t, err)
	nonce := make([]byte, gcm.NonceSize())
	_, err = rand.Read(nonce)
	require.NoError(t, err)
	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed)
}

func TestDecryptRoundTrip(t *testing.T) {
	d := NewAESDecryptor("correct horse battery staple")
	ciphertext := encrypt(t, "correct horse battery staple", "sk-secret-value")

	plaintext, ok := d.Decrypt(ciphertext)
	assert.True(t, ok)
	assert.Equal(t, "sk-secret-value", plaintext)
}

func TestDecryptFailsClosed(t *testing.T) {
	d := NewAESDecryptor("passphrase")

	tests := []struct {
		name       string
		ciphertext string
	}{
		{"not base64", "!!! not base64 !!!"},
		{"too short for a nonce", base64.StdEncoding.EncodeToString([]byte("tiny"))},
		{"wrong key", encrypt(t, "a different passphrase", "sk-secret-value")},
		{"tampered payload", encrypt(t, "passphrase", "sk-secret-value")[:20] + "AAAA"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plaintext, ok := d.Decrypt(tt.ciphertext)
			assert.False(t, ok)
			assert.Empty(t, plaintext, "ciphertext must never leak through as a key")
		})
	}
}

func TestFileStoreGetSetting(t *testing.T) {
	s := NewMapStore(map[string]string{
		KeyEmbeddingProvider: "voyage",
		KeyEmbeddingModel:    "",
	})

	v, ok := s.GetSetting(KeyEmbeddingProvider)
	assert.True(t, ok)
	assert.Equal(t, "voyage", v)

	_, ok = s.GetSetting(KeyEmbeddingModel)
	assert.False(t, ok, "empty values read as unset")

	_, ok = s.GetSetting("nonexistent")
	assert.False(t, ok)
}
