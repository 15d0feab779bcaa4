package embedding

import (
	"context"
	"strings"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/mistral"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// langchainProvider adapts a langchaingo embedder to the Provider
// interface. OpenAI and Mistral go through their managed SDK clients;
// Ollama talks to the local daemon, which is called once per input text
// (the client has no native batching).
type langchainProvider struct {
	name     string
	embedder *embeddings.EmbedderImpl
}

func (p *langchainProvider) Name() string { return p.name }

func (p *langchainProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors, err := p.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, &ProviderError{Provider: p.name, Err: err}
	}
	return vectors, nil
}

func newOpenAIProvider(apiKey, model string) (Provider, error) {
	llm, err := openai.New(
		openai.WithToken(strings.TrimPrefix(apiKey, "Bearer ")),
		openai.WithModel(model),
		openai.WithEmbeddingModel(model),
	)
	if err != nil {
		return nil, err
	}
	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, err
	}
	return &langchainProvider{name: ProviderOpenAI, embedder: embedder}, nil
}

func newOllamaProvider(baseURL, model string) (Provider, error) {
	llm, err := ollama.New(
		ollama.WithServerURL(baseURL),
		ollama.WithModel(model),
	)
	if err != nil {
		return nil, err
	}
	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, err
	}
	return &langchainProvider{name: ProviderOllama, embedder: embedder}, nil
}

func newMistralProvider(apiKey, model string) (Provider, error) {
	llm, err := mistral.New(
		mistral.WithAPIKey(apiKey),
		mistral.WithModel(model),
	)
	if err != nil {
		return nil, err
	}
	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, err
	}
	return &langchainProvider{name: ProviderMistral, embedder: embedder}, nil
}
