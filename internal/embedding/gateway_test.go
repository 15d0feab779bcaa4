package embedding

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supportkb/internal/settings"
)

const testPassphrase = "unit-test-passphrase"

func sealKey(t *testing.T, plaintext string) string {
	t.Helper()
	key := sha256.Sum256([]byte(testPassphrase))
	block, err := aes.NewCipher(key[:])
	require.NoError(t, err)
	gcm, err := cipher.NewGCM(block)
	require.NoError(t, err)
	nonce := make([]byte, gcm.NonceSize())
	_, err = rand.Read(nonce)
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(gcm.Seal(nonce, nonce, []byte(plaintext), nil))
}

func newTestGateway(values map[string]string) *Gateway {
	return NewGateway(settings.NewMapStore(values), settings.NewAESDecryptor(testPassphrase))
}

func TestResolveKeyFromSettings(t *testing.T) {
	g := newTestGateway(map[string]string{
		settings.KeyEmbeddingProvider: ProviderVoyage,
		settings.KeyEmbeddingModel:    "voyage-large-2",
		settings.KeyEmbeddingAPIKey:   sealKey(t, "pa-stored-key"),
	})

	rc, err := g.Resolve()
	require.NoError(t, err)
	assert.Equal(t, ProviderVoyage, rc.Provider)
	assert.Equal(t, "voyage-large-2", rc.Model)
	assert.Equal(t, "pa-stored-key", rc.APIKey)
	assert.Equal(t, KeyFromSettings, rc.KeySource)
}

func TestResolveDecryptFailureFallsToEnv(t *testing.T) {
	t.Setenv("MISTRAL_API_KEY", "env-key")
	g := newTestGateway(map[string]string{
		settings.KeyEmbeddingProvider: ProviderMistral,
		settings.KeyEmbeddingAPIKey:   "corrupted ciphertext",
	})

	rc, err := g.Resolve()
	require.NoError(t, err)
	assert.Equal(t, "env-key", rc.APIKey, "failed decrypt must not surface the ciphertext")
	assert.Equal(t, KeyFromEnv, rc.KeySource)
}

func TestResolveEnvFallback(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-from-env")
	g := newTestGateway(map[string]string{})

	rc, err := g.Resolve()
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, rc.Provider, "provider defaults to openai")
	assert.Equal(t, "text-embedding-3-small", rc.Model)
	assert.Equal(t, "sk-from-env", rc.APIKey)
	assert.Equal(t, KeyFromEnv, rc.KeySource)
}

func TestResolveNoKeyAnywhere(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	g := newTestGateway(map[string]string{
		settings.KeyEmbeddingProvider: ProviderGemini,
	})

	rc, err := g.Resolve()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Contains(t, err.Error(), ProviderGemini)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY", "error names the variable to set")
	assert.Equal(t, KeyMissing, rc.KeySource)
}

func TestResolveOllamaNeedsNoKey(t *testing.T) {
	g := newTestGateway(map[string]string{
		settings.KeyEmbeddingProvider: ProviderOllama,
	})

	rc, err := g.Resolve()
	require.NoError(t, err)
	assert.Equal(t, KeyNotRequired, rc.KeySource)
	assert.Empty(t, rc.APIKey)
	assert.Equal(t, "http://localhost:11434", rc.OllamaURL)
	assert.Equal(t, "nomic-embed-text", rc.Model)
}

func TestResolveOllamaCustomURL(t *testing.T) {
	g := newTestGateway(map[string]string{
		settings.KeyEmbeddingProvider: ProviderOllama,
		settings.KeyOllamaBaseURL:     "http://gpu-box:11434",
	})

	rc, err := g.Resolve()
	require.NoError(t, err)
	assert.Equal(t, "http://gpu-box:11434", rc.OllamaURL)
}

func TestResolveUnknownProvider(t *testing.T) {
	g := newTestGateway(map[string]string{
		settings.KeyEmbeddingProvider: "acme-embeddings",
	})

	_, err := g.Resolve()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "acme-embeddings")
}

func TestProviderModelDefaults(t *testing.T) {
	g := newTestGateway(map[string]string{})
	provider, model := g.ProviderModel()
	assert.Equal(t, ProviderOpenAI, provider)
	assert.Equal(t, "text-embedding-3-small", model)

	g = newTestGateway(map[string]string{
		settings.KeyEmbeddingProvider: ProviderGemini,
	})
	provider, model = g.ProviderModel()
	assert.Equal(t, ProviderGemini, provider)
	assert.Equal(t, "text-embedding-004", model)
}

func TestEmbedEmptyInput(t *testing.T) {
	g := newTestGateway(map[string]string{})
	vecs, err := g.Embed(context.Background(), nil)
	assert.NoError(t, err)
	assert.Nil(t, vecs)
}

func TestKeySourceString(t *testing.T) {
	assert.Equal(t, "missing", KeyMissing.String())
	assert.Equal(t, "settings", KeyFromSettings.String())
	assert.Equal(t, "env", KeyFromEnv.String())
	assert.Equal(t, "not-required", KeyNotRequired.String())
}
