package embedding

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"supportkb/internal/settings"
)

const describePrompt = "Describe this image from a technical document. " +
	"Focus on any text, diagrams, UI elements, or error messages it contains. " +
	"Answer with the description only."

// DescribeImage generates a text description of an image with the
// configured vision model. The description is embedded like any other
// chunk, making images searchable. Requires a vision_model setting and
// OpenAI-compatible credentials.
func (g *Gateway) DescribeImage(ctx context.Context, image []byte, mimeType string) (string, error) {
	model, ok := g.settings.GetSetting(settings.KeyVisionModel)
	if !ok {
		return "", fmt.Errorf("%w: no vision model configured", ErrNotConfigured)
	}
	rc, err := g.Resolve()
	if err != nil {
		return "", err
	}

	llm, err := openai.New(
		openai.WithToken(strings.TrimPrefix(rc.APIKey, "Bearer ")),
		openai.WithModel(model),
	)
	if err != nil {
		return "", err
	}

	messages := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.BinaryPart(mimeType, image),
				llms.TextContent{Text: describePrompt},
			},
		},
	}
	resp, err := llm.GenerateContent(ctx, messages)
	if err != nil {
		return "", &ProviderError{Provider: ProviderOpenAI, Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &ProviderError{Provider: ProviderOpenAI, Err: fmt.Errorf("empty vision response")}
	}
	return strings.TrimSpace(resp.Choices[0].Content), nil
}
