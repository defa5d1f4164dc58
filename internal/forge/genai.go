package forge

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/sheljulian96-lab/ManaForge/internal/deck"
)

// DefaultModel is the generative model used for deck and meta requests.
const DefaultModel = "gemini-3-flash-preview"

// generator issues one schema-constrained, search-grounded generation
// request and returns the raw JSON text plus any grounding sources.
// Narrowed to an interface so the service can be tested without the SDK.
type generator interface {
	generate(ctx context.Context, system, prompt string, schema *genai.Schema) (string, []deck.Source, error)
}

// genaiGenerator is the production generator backed by the Gemini API.
type genaiGenerator struct {
	client *genai.Client
	model  string
}

// NewGenAIClient creates the underlying Gemini client.
func NewGenAIClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return client, nil
}

func (g *genaiGenerator) generate(ctx context.Context, system, prompt string, schema *genai.Schema) (string, []deck.Source, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
			ResponseMIMEType:  "application/json",
			ResponseSchema:    schema,
			Tools:             []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
		},
	)
	if err != nil {
		return "", nil, fmt.Errorf("generation request failed: %w", err)
	}

	return resp.Text(), groundingSources(resp), nil
}

// groundingSources extracts grounding references for passthrough display.
func groundingSources(resp *genai.GenerateContentResponse) []deck.Source {
	var sources []deck.Source
	if len(resp.Candidates) == 0 || resp.Candidates[0].GroundingMetadata == nil {
		return sources
	}
	for _, chunk := range resp.Candidates[0].GroundingMetadata.GroundingChunks {
		if chunk == nil || chunk.Web == nil {
			continue
		}
		sources = append(sources, deck.Source{
			Title: chunk.Web.Title,
			URL:   chunk.Web.URI,
		})
	}
	return sources
}
