package scryfall

import "fmt"

// Card represents a Magic card from Scryfall, trimmed to the fields the
// forge and UI actually consume.
type Card struct {
	Name            string  `json:"name"`
	SetCode         string  `json:"set"`
	CollectorNumber string  `json:"collector_number"`
	ManaCost        string  `json:"mana_cost,omitempty"`
	CMC             float64 `json:"cmc,omitempty"`
	TypeLine        string  `json:"type_line,omitempty"`
	OracleText      string  `json:"oracle_text,omitempty"`

	// Card faces (for DFCs, MDFCs, split cards)
	CardFaces []CardFace `json:"card_faces,omitempty"`

	ImageURIs *ImageURIs `json:"image_uris,omitempty"`
	Prices    *Prices    `json:"prices,omitempty"`

	// Legalities is the resolution marker: batch results without it are
	// treated as placeholder objects and filtered out.
	Legalities *Legalities `json:"legalities,omitempty"`
}

// Resolved reports whether the card is a real directory record rather than
// a partial or error placeholder embedded inline by the API.
func (c *Card) Resolved() bool {
	return c.Name != "" && c.Legalities != nil
}

// CardFace represents one face of a multi-faced card.
type CardFace struct {
	Name       string     `json:"name"`
	ManaCost   string     `json:"mana_cost,omitempty"`
	CMC        float64    `json:"cmc,omitempty"`
	TypeLine   string     `json:"type_line,omitempty"`
	OracleText string     `json:"oracle_text,omitempty"`
	ImageURIs  *ImageURIs `json:"image_uris,omitempty"`
}

// ImageURIs contains URLs for card images.
type ImageURIs struct {
	Small  string `json:"small"`
	Normal string `json:"normal"`
}

// Legalities holds per-format legality status for the Arena formats.
type Legalities struct {
	Standard      string `json:"standard"`
	Alchemy       string `json:"alchemy"`
	Explorer      string `json:"explorer"`
	Historic      string `json:"historic"`
	Timeless      string `json:"timeless"`
	Brawl         string `json:"brawl"`
	HistoricBrawl string `json:"historicbrawl"`
}

// Prices represents card prices.
type Prices struct {
	USD *string `json:"usd"`
}

// SearchResult represents search results from Scryfall.
type SearchResult struct {
	Object     string `json:"object"`
	TotalCards int    `json:"total_cards"`
	HasMore    bool   `json:"has_more"`
	Data       []Card `json:"data"`
}

// APIError represents an error response from the Scryfall API.
type APIError struct {
	Object  string `json:"object"`
	Code    string `json:"code"`
	Status  int    `json:"status"`
	Details string `json:"details"`
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("Scryfall API error (HTTP %d): %s", e.Status, e.Details)
	}
	return fmt.Sprintf("Scryfall API error (HTTP %d): %s", e.Status, e.Code)
}

// NotFoundError represents a 404 from the API.
type NotFoundError struct {
	URL string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("resource not found: %s", e.URL)
}

// IsNotFound returns true if the error is a NotFoundError.
func IsNotFound(err error) bool {
	_, ok := err.(*NotFoundError)
	return ok
}
