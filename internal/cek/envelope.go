// Package cek implements the Clova Extension Kit request/response envelope
// and the request signature check. Only the envelope fields the skill
// actually consumes are modeled.
package cek

// Request types delivered by the platform.
const (
	RequestTypeLaunch       = "LaunchRequest"
	RequestTypeIntent       = "IntentRequest"
	RequestTypeSessionEnded = "SessionEndedRequest"
)

// RequestEnvelope is one inbound CEK event.
type RequestEnvelope struct {
	Version string  `json:"version"`
	Session Session `json:"session"`
	Context Context `json:"context"`
	Request Request `json:"request"`
}

type Session struct {
	New               bool           `json:"new"`
	SessionID         string         `json:"sessionId"`
	SessionAttributes map[string]any `json:"sessionAttributes"`
	User              User           `json:"user"`
}

type User struct {
	UserID      string `json:"userId"`
	AccessToken string `json:"accessToken,omitempty"`
}

type Context struct {
	System System `json:"System"`
}

type System struct {
	Application Application `json:"application"`
	User        User        `json:"user"`
}

type Application struct {
	ApplicationID string `json:"applicationId"`
}

type Request struct {
	Type   string `json:"type"`
	Intent Intent `json:"intent"`
}

type Intent struct {
	Name  string          `json:"name"`
	Slots map[string]Slot `json:"slots"`
}

type Slot struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Slots flattens the intent's captured slots to name → value. Slots with no
// captured value are omitted so callers can treat lookup misses as absent.
func (e *RequestEnvelope) Slots() map[string]string {
	out := make(map[string]string, len(e.Request.Intent.Slots))
	for name, slot := range e.Request.Intent.Slots {
		if slot.Value == "" {
			continue
		}
		out[name] = slot.Value
	}
	return out
}

// UserID returns the platform identity for the session.
func (e *RequestEnvelope) UserID() string {
	return e.Session.User.UserID
}

// ResponseEnvelope is one outbound CEK response.
type ResponseEnvelope struct {
	Version           string         `json:"version"`
	SessionAttributes map[string]any `json:"sessionAttributes"`
	Response          Response       `json:"response"`
}

type Response struct {
	OutputSpeech     *OutputSpeech `json:"outputSpeech"`
	Reprompt         *Reprompt     `json:"reprompt,omitempty"`
	Directives       []any         `json:"directives"`
	ShouldEndSession bool          `json:"shouldEndSession"`
}

type Reprompt struct {
	OutputSpeech *OutputSpeech `json:"outputSpeech"`
}

type OutputSpeech struct {
	Type   string      `json:"type"`
	Values SpeechValue `json:"values"`
}

type SpeechValue struct {
	Type  string `json:"type"`
	Lang  string `json:"lang"`
	Value string `json:"value"`
}

const speechLang = "ja"

// SimpleSpeech builds a plain-text SimpleSpeech payload.
func SimpleSpeech(text string) *OutputSpeech {
	return &OutputSpeech{
		Type: "SimpleSpeech",
		Values: SpeechValue{
			Type:  "PlainText",
			Lang:  speechLang,
			Value: text,
		},
	}
}

// NewResponse assembles a complete response envelope. Reprompt is omitted
// when empty; attributes may be nil for a session-ending response.
func NewResponse(speech, reprompt string, attrs map[string]any, endSession bool) *ResponseEnvelope {
	if attrs == nil {
		attrs = map[string]any{}
	}
	resp := &ResponseEnvelope{
		Version:           "1.0",
		SessionAttributes: attrs,
		Response: Response{
			Directives:       []any{},
			ShouldEndSession: endSession,
		},
	}
	if speech != "" {
		resp.Response.OutputSpeech = SimpleSpeech(speech)
	}
	if reprompt != "" {
		resp.Response.Reprompt = &Reprompt{OutputSpeech: SimpleSpeech(reprompt)}
	}
	return resp
}
