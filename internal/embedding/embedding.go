// Package embedding abstracts the five supported embedding backends behind
// one call interface and resolves credentials from the settings store.
package embedding

import (
	"context"
	"errors"
	"fmt"
)

// Supported provider names. The dispatch in the gateway is a closed set
// over exactly these values.
const (
	ProviderOpenAI  = "openai"
	ProviderOllama  = "ollama"
	ProviderGemini  = "gemini"
	ProviderVoyage  = "voyage"
	ProviderMistral = "mistral"
)

// ErrNotConfigured means no usable credentials exist for the selected
// provider. The wrapping error names the provider.
var ErrNotConfigured = errors.New("embedding provider not configured")

// Provider is one embedding backend. Embed returns one vector per input
// text, in input order. A provider never mixes backends within one call;
// batch size limits are the caller's responsibility.
type Provider interface {
	Name() string
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// ProviderError is an upstream API failure. Body carries the upstream
// response body verbatim for diagnosability.
type ProviderError struct {
	Provider   string
	StatusCode int
	Body       string
	Err        error
}

func (e *ProviderError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s embedding request failed: status %d: %s", e.Provider, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s embedding request failed: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }
