package domain

// Phase is the current step of the postal-code/rating collection dialog.
// The wire values are what gets round-tripped through the platform's
// session-attribute bag between turns.
type Phase string

const (
	// PhaseNone means no dialog is in progress (fresh launch, or the
	// previous session already reached its goal and ended).
	PhaseNone               Phase = ""
	PhaseAskPostalCodeFirst Phase = "postal-first"
	PhaseAskPostalCodeRest  Phase = "postal-rest"
	PhaseAskTemperature     Phase = "input"
)

// parsePhase maps an attribute-bag value onto the closed Phase set.
// Anything unrecognized degrades to PhaseNone.
func parsePhase(v string) Phase {
	switch Phase(v) {
	case PhaseAskPostalCodeFirst, PhaseAskPostalCodeRest, PhaseAskTemperature:
		return Phase(v)
	default:
		return PhaseNone
	}
}

// Attribute-bag keys. These match what earlier turns of the same session
// wrote, so they are part of the session wire contract.
const (
	attrPhase           = "STATE"
	attrPostalCodeFirst = "postalCodeFirst"
	attrPostalCode      = "postalCode"
	attrTemperature     = "today"
)

// SessionState is the typed view of one conversation's session-attribute
// bag. It is ephemeral: the platform hands the previous turn's bag in and
// receives the next one back, and nothing here survives the session. The
// durable truth lives in the store.
type SessionState struct {
	Phase Phase

	// PostalCodeFirstHalf holds the 3-digit segment while the dialog is
	// waiting for the remaining 4 digits.
	PostalCodeFirstHalf string

	// PostalCode is the full NNN-NNNN code once fully collected.
	PostalCode string

	// PendingTemperature is the temperature looked up earlier in this
	// session, nil until a lookup has happened.
	PendingTemperature *int
}

// ParseSessionState decodes a raw session-attribute bag. Decoding is
// defensive: a missing or malformed field degrades to its zero value, so a
// corrupt bag reads as "no session" rather than failing the turn.
func ParseSessionState(attrs map[string]any) SessionState {
	var s SessionState
	if len(attrs) == 0 {
		return s
	}
	if v, ok := attrs[attrPhase].(string); ok {
		s.Phase = parsePhase(v)
	}
	if v, ok := attrs[attrPostalCodeFirst].(string); ok {
		s.PostalCodeFirstHalf = v
	}
	if v, ok := attrs[attrPostalCode].(string); ok {
		s.PostalCode = v
	}
	if t, ok := numberAttr(attrs[attrTemperature]); ok {
		s.PendingTemperature = &t
	}
	return s
}

// Attributes encodes the state back into a bag for the next turn. Unset
// fields are omitted so the bag stays minimal for the current phase.
func (s SessionState) Attributes() map[string]any {
	if s.Phase == PhaseNone {
		return map[string]any{}
	}
	attrs := map[string]any{attrPhase: string(s.Phase)}
	if s.PostalCodeFirstHalf != "" {
		attrs[attrPostalCodeFirst] = s.PostalCodeFirstHalf
	}
	if s.PostalCode != "" {
		attrs[attrPostalCode] = s.PostalCode
	}
	if s.PendingTemperature != nil {
		attrs[attrTemperature] = *s.PendingTemperature
	}
	return attrs
}

// numberAttr accepts the numeric shapes a JSON bag can carry. encoding/json
// decodes bag numbers as float64; ints appear when the bag was built
// in-process.
func numberAttr(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	default:
		return 0, false
	}
}
