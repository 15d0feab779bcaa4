package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const restTimeout = 60 * time.Second

// postJSON posts a JSON body and decodes the response into out. Non-2xx
// responses become a ProviderError carrying the upstream body verbatim.
func postJSON(ctx context.Context, client *http.Client, provider, url string, headers map[string]string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return &ProviderError{Provider: provider, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &ProviderError{Provider: provider, StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &ProviderError{
			Provider:   provider,
			StatusCode: resp.StatusCode,
			Body:       string(raw),
			Err:        fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &ProviderError{Provider: provider, StatusCode: resp.StatusCode, Err: err}
	}
	return nil
}
