package helper

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// NewDocID creates a random unique document identifier.
func NewDocID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate doc id: %v", err)
	}
	return id.String(), nil
}

// FormatJSON renders v as indented JSON for CLI output.
func FormatJSON(v any) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to format output: %v", err)
	}
	return string(b), nil
}
