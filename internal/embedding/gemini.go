package embedding

import (
	"context"
	"fmt"
	"net/http"
)

// var, not const, so tests can point it at a local server.
var geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// geminiProvider calls the Generative Language REST API directly
// (batchEmbedContents); there is no managed Go SDK in use here.
type geminiProvider struct {
	apiKey string
	model  string
	client *http.Client
}

func newGeminiProvider(apiKey, model string, client *http.Client) Provider {
	return &geminiProvider{apiKey: apiKey, model: model, client: client}
}

func (p *geminiProvider) Name() string { return ProviderGemini }

type geminiEmbedRequest struct {
	Requests []geminiContentRequest `json:"requests"`
}

type geminiContentRequest struct {
	Model   string        `json:"model"`
	Content geminiContent `json:"content"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiEmbedResponse struct {
	Embeddings []struct {
		Values []float32 `json:"values"`
	} `json:"embeddings"`
}

func (p *geminiProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	reqs := make([]geminiContentRequest, len(texts))
	for i, text := range texts {
		reqs[i] = geminiContentRequest{
			Model:   "models/" + p.model,
			Content: geminiContent{Parts: []geminiPart{{Text: text}}},
		}
	}

	url := fmt.Sprintf("%s/models/%s:batchEmbedContents?key=%s", geminiBaseURL, p.model, p.apiKey)
	var resp geminiEmbedResponse
	if err := postJSON(ctx, p.client, ProviderGemini, url, nil, geminiEmbedRequest{Requests: reqs}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, &ProviderError{
			Provider: ProviderGemini,
			Err:      fmt.Errorf("got %d embeddings for %d inputs", len(resp.Embeddings), len(texts)),
		}
	}

	vectors := make([][]float32, len(resp.Embeddings))
	for i, e := range resp.Embeddings {
		vectors[i] = e.Values
	}
	return vectors, nil
}
