package scryfall

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// MaxBatchSize is the maximum number of identifiers per /cards/collection
// request (documented Scryfall quota).
const MaxBatchSize = 75

// CardIdentifier identifies a card for the /cards/collection endpoint.
type CardIdentifier struct {
	Name            string `json:"name,omitempty"`
	Set             string `json:"set,omitempty"`
	CollectorNumber string `json:"collector_number,omitempty"`
}

// CollectionRequest is the request body for /cards/collection.
type CollectionRequest struct {
	Identifiers []CardIdentifier `json:"identifiers"`
}

// CollectionResponse is the response from /cards/collection.
type CollectionResponse struct {
	Object   string           `json:"object"`
	NotFound []CardIdentifier `json:"not_found"`
	Data     []Card           `json:"data"`
}

// GetCardsByNames fetches multiple cards by name using the batch
// /cards/collection endpoint, chunking at MaxBatchSize identifiers per
// request and concatenating results in chunk order.
//
// A failed chunk contributes no results rather than aborting the whole
// batch, and result entries that lack a name or legalities (partial or
// error placeholders the API embeds inline) are filtered out. The second
// return value is the number of requested names the batch did not resolve.
func (c *Client) GetCardsByNames(ctx context.Context, names []string) ([]Card, int, error) {
	if len(names) == 0 {
		return []Card{}, 0, nil
	}

	identifiers := make([]CardIdentifier, len(names))
	for i, name := range names {
		identifiers[i] = CardIdentifier{Name: name}
	}

	var (
		all       []Card
		chunks    int
		failed    int
		lastError error
	)
	for i := 0; i < len(identifiers); i += MaxBatchSize {
		end := i + MaxBatchSize
		if end > len(identifiers) {
			end = len(identifiers)
		}
		chunks++

		cards, err := c.doCollectionRequest(ctx, identifiers[i:end])
		if err != nil {
			// Degrade to "no results for this chunk".
			failed++
			lastError = err
			continue
		}

		for _, card := range cards {
			if card.Resolved() {
				all = append(all, card)
			}
		}
	}

	// Every chunk failing is a wholesale failure, not a partial one.
	if failed == chunks {
		return nil, len(names), fmt.Errorf("all %d collection chunks failed: %w", chunks, lastError)
	}

	return all, len(names) - len(all), nil
}

// doCollectionRequest performs a single batch request to /cards/collection.
func (c *Client) doCollectionRequest(ctx context.Context, identifiers []CardIdentifier) ([]Card, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	reqBody := CollectionRequest{Identifiers: identifiers}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/cards/collection", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch cards from Scryfall: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("scryfall API returned status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var collectionResp CollectionResponse
	if err := json.Unmarshal(body, &collectionResp); err != nil {
		return nil, fmt.Errorf("failed to parse Scryfall response: %w", err)
	}

	return collectionResp.Data, nil
}
