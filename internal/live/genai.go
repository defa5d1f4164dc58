package live

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/sheljulian96-lab/ManaForge/internal/deck"
)

// LiveModel is the native-audio model the voice session connects to.
const LiveModel = "gemini-2.5-flash-native-audio-preview-12-2025"

// ForgeDeckToolName is the one callable tool the session declares.
const ForgeDeckToolName = "forgeDeck"

var forgeDeckTool = &genai.FunctionDeclaration{
	Name: ForgeDeckToolName,
	Parameters: &genai.Schema{
		Type:        genai.TypeObject,
		Description: "Call this function when the user definitively wants to generate a deck list for a specific theme and format.",
		Properties: map[string]*genai.Schema{
			"theme": {
				Type:        genai.TypeString,
				Description: `The specific theme or archetype discussed (e.g., "Red Aggro", "Blue-Black Control").`,
			},
			"format": {
				Type:        genai.TypeString,
				Description: "The MTG Arena format (Standard, Alchemy, Explorer, Historic, Timeless, Brawl).",
			},
		},
		Required: []string{"theme", "format"},
	},
}

// ServerEvent is one upstream message, reduced to what the bridge handles:
// an audio frame, a tool call, or neither (ignored turn metadata).
type ServerEvent struct {
	Audio []byte
	Tool  *ToolCall
}

type ToolCall struct {
	ID     string
	Name   string
	Theme  string
	Format string
}

// Upstream is the bidirectional model session the bridge talks to.
type Upstream interface {
	SendAudio(data []byte) error
	SendToolAck(id, name string) error
	Receive() (*ServerEvent, error)
	Close() error
}

// Dialer opens an upstream session for a voice conversation in the given
// format context.
type Dialer func(ctx context.Context, format deck.Format) (Upstream, error)

// NewGenAIDialer returns a Dialer backed by the Gemini Live API. An empty
// model selects the default native-audio model.
func NewGenAIDialer(client *genai.Client, model string) Dialer {
	if model == "" {
		model = LiveModel
	}
	return func(ctx context.Context, format deck.Format) (Upstream, error) {
		session, err := client.Live.Connect(ctx, model, &genai.LiveConnectConfig{
			ResponseModalities: []genai.Modality{genai.ModalityAudio},
			SpeechConfig: &genai.SpeechConfig{
				VoiceConfig: &genai.VoiceConfig{
					PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: "Kore"},
				},
			},
			SystemInstruction: genai.NewContentFromText(
				fmt.Sprintf("Master MTG assistant. Use forgeDeck for requests. Current format: %s.", format),
				genai.RoleUser),
			Tools: []*genai.Tool{
				{FunctionDeclarations: []*genai.FunctionDeclaration{forgeDeckTool}},
				{GoogleSearch: &genai.GoogleSearch{}},
			},
			InputAudioTranscription:  &genai.AudioTranscriptionConfig{},
			OutputAudioTranscription: &genai.AudioTranscriptionConfig{},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open live session: %w", err)
		}
		return &genaiUpstream{session: session}, nil
	}
}

// genaiUpstream adapts a *genai.Session to the upstream interface.
type genaiUpstream struct {
	session *genai.Session
}

func (u *genaiUpstream) SendAudio(data []byte) error {
	return u.session.SendRealtimeInput(genai.LiveRealtimeInput{
		Media: &genai.Blob{Data: data, MIMEType: InputMIMEType},
	})
}

func (u *genaiUpstream) SendToolAck(id, name string) error {
	return u.session.SendToolResponse(genai.LiveToolResponseInput{
		FunctionResponses: []*genai.FunctionResponse{{
			ID:       id,
			Name:     name,
			Response: map[string]any{"result": "Forging."},
		}},
	})
}

func (u *genaiUpstream) Receive() (*ServerEvent, error) {
	msg, err := u.session.Receive()
	if err != nil {
		return nil, err
	}

	event := &ServerEvent{}

	if msg.ServerContent != nil && msg.ServerContent.ModelTurn != nil {
		for _, part := range msg.ServerContent.ModelTurn.Parts {
			if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
				event.Audio = part.InlineData.Data
				break
			}
		}
	}

	if msg.ToolCall != nil {
		for _, fc := range msg.ToolCall.FunctionCalls {
			if fc == nil || fc.Name != ForgeDeckToolName {
				continue
			}
			call := &ToolCall{ID: fc.ID, Name: fc.Name}
			if theme, ok := fc.Args["theme"].(string); ok {
				call.Theme = theme
			}
			if format, ok := fc.Args["format"].(string); ok {
				call.Format = format
			}
			event.Tool = call
			break
		}
	}

	return event, nil
}

func (u *genaiUpstream) Close() error {
	return u.session.Close()
}
