package alexa

import "github.com/couchcryptid/snow-emergency-skill/internal/apl"

// ResponseEnvelope is the reply returned to the voice service.
type ResponseEnvelope struct {
	Version           string         `json:"version"`
	Response          ResponseBody   `json:"response"`
	SessionAttributes map[string]any `json:"sessionAttributes"`
}

type ResponseBody struct {
	OutputSpeech     OutputSpeech    `json:"outputSpeech"`
	ShouldEndSession bool            `json:"shouldEndSession"`
	Directives       []apl.Directive `json:"directives,omitempty"`
}

type OutputSpeech struct {
	Type string `json:"type"`
	SSML string `json:"ssml"`
}

// NewEnvelope wraps speech and an optional directive.
func NewEnvelope(ssml string, directive *apl.Directive, endSession bool) ResponseEnvelope {
	env := ResponseEnvelope{
		Version: "1.0",
		Response: ResponseBody{
			OutputSpeech:     OutputSpeech{Type: "SSML", SSML: ssml},
			ShouldEndSession: endSession,
		},
		SessionAttributes: map[string]any{},
	}
	if directive != nil {
		env.Response.Directives = []apl.Directive{*directive}
	}
	return env
}
