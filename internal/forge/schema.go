package forge

import "google.golang.org/genai"

// deckSchema is the fixed output schema for deck generation. The service
// response is parsed strictly against the raw types in service.go.
var deckSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"name":        {Type: genai.TypeString, Description: "Theme-appropriate deck name"},
		"explanation": {Type: genai.TypeString, Description: "Executive summary of the deck's strategy"},
		"strategyTips": {
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeString},
			Description: "Advanced strategic tips for playing the deck (e.g. Surveil prioritization, Firebending triggers)",
		},
		"mechanics": {
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeString},
			Description: "Key mechanics highlighted (e.g. Eerie, Airbend, Impending)",
		},
		"commander": {
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"name":  {Type: genai.TypeString},
				"count": {Type: genai.TypeNumber, Description: "Should always be 1 for commander"},
			},
			Description: "Only used for Brawl/Commander formats",
		},
		"mainboard": {
			Type:  genai.TypeArray,
			Items: entrySchema,
		},
		"sideboard": {
			Type:  genai.TypeArray,
			Items: entrySchema,
		},
	},
	Required: []string{"name", "explanation", "mainboard", "sideboard", "strategyTips", "mechanics"},
}

var entrySchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"name":  {Type: genai.TypeString},
		"count": {Type: genai.TypeNumber},
	},
	Required: []string{"name", "count"},
}

// scoutSchema is the fixed output schema for meta scans.
var scoutSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"summary": {Type: genai.TypeString, Description: "Brief overview of the current format meta"},
		"archetypes": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"name":        {Type: genai.TypeString, Description: "Archetype name (e.g. Boros Convoke)"},
					"description": {Type: genai.TypeString, Description: "Short description of why it's winning"},
					"tier":        {Type: genai.TypeString, Description: "Meta tier: S, A, or B"},
					"winRate":     {Type: genai.TypeString, Description: "Approximate win rate percentage if available"},
				},
				Required: []string{"name", "description", "tier"},
			},
		},
	},
	Required: []string{"summary", "archetypes"},
}
