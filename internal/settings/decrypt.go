package settings

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/base64"
	"errors"

	"github.com/rs/zerolog/log"
)

// Decryptor decrypts secrets stored by the settings UI. Implementations
// fail closed: on any failure they return ok=false and never the ciphertext.
type Decryptor interface {
	Decrypt(ciphertext string) (string, bool)
}

var errCiphertextShort = errors.New("ciphertext shorter than nonce")

// AESDecryptor decrypts base64(nonce||sealed) AES-256-GCM payloads with a
// key derived from the configured passphrase.
type AESDecryptor struct {
	key [32]byte
}

func NewAESDecryptor(passphrase string) *AESDecryptor {
	return &AESDecryptor{key: sha256.Sum256([]byte(passphrase))}
}

func (d *AESDecryptor) Decrypt(ciphertext string) (string, bool) {
	plaintext, err := d.decrypt(ciphertext)
	if err != nil {
		log.Warn().Err(err).Msg("secret decryption failed")
		return "", false
	}
	return plaintext, true
}

func (d *AESDecryptor) decrypt(ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", err
	}
	block, err := aes.NewCipher(d.key[:])
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}
	if len(raw) < gcm.NonceSize() {
		return "", errCiphertextShort
	}
	nonce, sealed := raw[:gcm.NonceSize()], raw[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}
