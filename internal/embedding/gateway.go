package embedding

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/rs/zerolog/log"

	"supportkb/internal/settings"
)

// KeySource tags which branch of the credential fallback chain produced the
// API key, so callers and tests can assert the path taken.
type KeySource int

const (
	KeyMissing KeySource = iota
	KeyFromSettings
	KeyFromEnv
	KeyNotRequired
)

func (s KeySource) String() string {
	switch s {
	case KeyFromSettings:
		return "settings"
	case KeyFromEnv:
		return "env"
	case KeyNotRequired:
		return "not-required"
	default:
		return "missing"
	}
}

var envKeyVars = map[string]string{
	ProviderOpenAI:  "OPENAI_API_KEY",
	ProviderGemini:  "GEMINI_API_KEY",
	ProviderVoyage:  "VOYAGE_API_KEY",
	ProviderMistral: "MISTRAL_API_KEY",
}

var defaultModels = map[string]string{
	ProviderOpenAI:  "text-embedding-3-small",
	ProviderOllama:  "nomic-embed-text",
	ProviderGemini:  "text-embedding-004",
	ProviderVoyage:  "voyage-2",
	ProviderMistral: "mistral-embed",
}

const defaultOllamaURL = "http://localhost:11434"

// ResolvedConfig is the one provider configuration used for a single call.
type ResolvedConfig struct {
	Provider  string
	Model     string
	APIKey    string
	KeySource KeySource
	OllamaURL string
}

// Gateway resolves provider settings per call and dispatches to the closed
// set of backends. It implements the embedder contract the vector store
// depends on.
type Gateway struct {
	settings settings.Store
	decrypt  settings.Decryptor
	client   *http.Client
}

func NewGateway(st settings.Store, dec settings.Decryptor) *Gateway {
	return &Gateway{
		settings: st,
		decrypt:  dec,
		client:   &http.Client{Timeout: restTimeout},
	}
}

// Resolve computes the provider configuration for one call: stored
// provider/model settings, the decrypted stored key, then the provider's
// environment variable. A decrypt failure never falls back to treating the
// ciphertext as a usable key.
func (g *Gateway) Resolve() (ResolvedConfig, error) {
	rc := ResolvedConfig{Provider: ProviderOpenAI}
	if v, ok := g.settings.GetSetting(settings.KeyEmbeddingProvider); ok {
		rc.Provider = v
	}
	if _, known := defaultModels[rc.Provider]; !known {
		return rc, fmt.Errorf("unknown embedding provider %q", rc.Provider)
	}

	rc.Model = defaultModels[rc.Provider]
	if v, ok := g.settings.GetSetting(settings.KeyEmbeddingModel); ok {
		rc.Model = v
	}

	if rc.Provider == ProviderOllama {
		rc.KeySource = KeyNotRequired
		rc.OllamaURL = defaultOllamaURL
		if v, ok := g.settings.GetSetting(settings.KeyOllamaBaseURL); ok {
			rc.OllamaURL = v
		}
		return rc, nil
	}

	if ciphertext, ok := g.settings.GetSetting(settings.KeyEmbeddingAPIKey); ok {
		if plaintext, ok := g.decrypt.Decrypt(ciphertext); ok {
			rc.APIKey = plaintext
			rc.KeySource = KeyFromSettings
			log.Debug().Str("provider", rc.Provider).Str("key_source", rc.KeySource.String()).
				Msg("resolved embedding credentials")
			return rc, nil
		}
		log.Warn().Str("provider", rc.Provider).
			Msg("stored embedding key failed to decrypt, trying environment")
	}

	if key := os.Getenv(envKeyVars[rc.Provider]); key != "" {
		rc.APIKey = key
		rc.KeySource = KeyFromEnv
		log.Debug().Str("provider", rc.Provider).Str("key_source", rc.KeySource.String()).
			Msg("resolved embedding credentials")
		return rc, nil
	}

	rc.KeySource = KeyMissing
	return rc, fmt.Errorf("%w: no API key for provider %q (set %s)",
		ErrNotConfigured, rc.Provider, envKeyVars[rc.Provider])
}

// newProvider builds the backend for a resolved configuration. The switch
// is exhaustive over the closed provider set.
func (g *Gateway) newProvider(rc ResolvedConfig) (Provider, error) {
	switch rc.Provider {
	case ProviderOpenAI:
		return newOpenAIProvider(rc.APIKey, rc.Model)
	case ProviderOllama:
		return newOllamaProvider(rc.OllamaURL, rc.Model)
	case ProviderGemini:
		return newGeminiProvider(rc.APIKey, rc.Model, g.client), nil
	case ProviderVoyage:
		return newVoyageProvider(rc.APIKey, rc.Model, g.client), nil
	case ProviderMistral:
		return newMistralProvider(rc.APIKey, rc.Model)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", rc.Provider)
	}
}

// Embed resolves one configuration and embeds all texts with it. Providers
// are never mixed within a call.
func (g *Gateway) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	rc, err := g.Resolve()
	if err != nil {
		return nil, err
	}
	provider, err := g.newProvider(rc)
	if err != nil {
		return nil, err
	}
	return provider.Embed(ctx, texts)
}

// ProviderModel reports the currently-selected provider and model without
// requiring credentials; the vector store records it with every write.
func (g *Gateway) ProviderModel() (string, string) {
	provider := ProviderOpenAI
	if v, ok := g.settings.GetSetting(settings.KeyEmbeddingProvider); ok {
		provider = v
	}
	model := defaultModels[provider]
	if v, ok := g.settings.GetSetting(settings.KeyEmbeddingModel); ok {
		model = v
	}
	return provider, model
}
