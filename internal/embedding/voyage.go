package embedding

import (
	"context"
	"fmt"
	"net/http"
	"sort"
)

// var, not const, so tests can point it at a local server.
var voyageURL = "https://api.voyageai.com/v1/embeddings"

// voyageProvider is the second plain REST backend.
type voyageProvider struct {
	apiKey string
	model  string
	client *http.Client
}

func newVoyageProvider(apiKey, model string, client *http.Client) Provider {
	return &voyageProvider{apiKey: apiKey, model: model, client: client}
}

func (p *voyageProvider) Name() string { return ProviderVoyage }

type voyageEmbedRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

type voyageEmbedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}

func (p *voyageProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	headers := map[string]string{"Authorization": "Bearer " + p.apiKey}
	var resp voyageEmbedResponse
	err := postJSON(ctx, p.client, ProviderVoyage, voyageURL, headers,
		voyageEmbedRequest{Input: texts, Model: p.model}, &resp)
	if err != nil {
		return nil, err
	}
	if len(resp.Data) != len(texts) {
		return nil, &ProviderError{
			Provider: ProviderVoyage,
			Err:      fmt.Errorf("got %d embeddings for %d inputs", len(resp.Data), len(texts)),
		}
	}

	// The API documents result order as input order, but the index field is
	// authoritative.
	sort.Slice(resp.Data, func(i, j int) bool { return resp.Data[i].Index < resp.Data[j].Index })
	vectors := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		vectors[i] = d.Embedding
	}
	return vectors, nil
}
