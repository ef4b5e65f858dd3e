package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"clothcheck-skill/internal/cek"
	"clothcheck-skill/internal/domain"
)

func newTestController(t *testing.T, s *mockStore, w *mockWeather, n *mockNotifier) *Controller {
	t.Helper()
	c, err := NewController(newTestDialog(t, s, w, n))
	require.NoError(t, err)
	return c
}

func launchEnvelope(userID string) *cek.RequestEnvelope {
	return &cek.RequestEnvelope{
		Version: "1.0",
		Session: cek.Session{
			New:  true,
			User: cek.User{UserID: userID},
		},
		Request: cek.Request{Type: cek.RequestTypeLaunch},
	}
}

func intentEnvelope(userID, intent string, attrs map[string]any, slots map[string]cek.Slot) *cek.RequestEnvelope {
	return &cek.RequestEnvelope{
		Version: "1.0",
		Session: cek.Session{
			SessionAttributes: attrs,
			User:              cek.User{UserID: userID},
		},
		Request: cek.Request{
			Type:   cek.RequestTypeIntent,
			Intent: cek.Intent{Name: intent, Slots: slots},
		},
	}
}

func TestNewController_ValidatesDependency(t *testing.T) {
	_, err := NewController(nil)
	require.Error(t, err)
}

func TestDispatch_Launch_FreshUser(t *testing.T) {
	c := newTestController(t, &mockStore{}, &mockWeather{}, &mockNotifier{})

	resp, err := c.Dispatch(context.Background(), launchEnvelope("user-1"))
	require.NoError(t, err)
	require.Equal(t, "1.0", resp.Version)
	require.False(t, resp.Response.ShouldEndSession)

	require.NotNil(t, resp.Response.OutputSpeech)
	require.Equal(t, "SimpleSpeech", resp.Response.OutputSpeech.Type)
	require.Equal(t, "PlainText", resp.Response.OutputSpeech.Values.Type)
	require.Contains(t, resp.Response.OutputSpeech.Values.Value, msgAskPostalCode)
	require.NotNil(t, resp.Response.Reprompt)

	require.Equal(t, string(domain.PhaseAskPostalCodeFirst), resp.SessionAttributes["STATE"])
}

func TestDispatch_PostalCodeIntent_RoundTripsSessionBag(t *testing.T) {
	c := newTestController(t, &mockStore{}, &mockWeather{}, &mockNotifier{})

	env := intentEnvelope("user-1", IntentPostalCode,
		map[string]any{"STATE": "postal-first"},
		map[string]cek.Slot{
			"SerialOne":   {Name: "SerialOne", Value: "1"},
			"SerialTwo":   {Name: "SerialTwo", Value: "2"},
			"SerialThree": {Name: "SerialThree", Value: "3"},
		})

	resp, err := c.Dispatch(context.Background(), env)
	require.NoError(t, err)
	require.Equal(t, string(domain.PhaseAskPostalCodeRest), resp.SessionAttributes["STATE"])
	require.Equal(t, "123", resp.SessionAttributes["postalCodeFirst"])
}

// Session bags come off the wire as JSON, so numbers arrive as float64.
func TestDispatch_InputIntent_DecodesWireNumbers(t *testing.T) {
	store := &mockStore{}
	c := newTestController(t, store, &mockWeather{}, &mockNotifier{})

	env := intentEnvelope("user-1", IntentInput,
		map[string]any{"STATE": "input", "postalCode": "123-4567", "today": float64(18)},
		map[string]cek.Slot{"TempType": {Name: "TempType", Value: "hot"}})

	resp, err := c.Dispatch(context.Background(), env)
	require.NoError(t, err)
	require.True(t, resp.Response.ShouldEndSession)
	require.Empty(t, resp.SessionAttributes)
	require.Equal(t, 1, store.putRatingCalls)
	require.Equal(t, 18, store.savedTemperature)
}

func TestDispatch_MalformedBag_ReadsAsNoSession(t *testing.T) {
	c := newTestController(t, &mockStore{}, &mockWeather{}, &mockNotifier{})

	env := intentEnvelope("user-1", IntentPostalCode,
		map[string]any{"STATE": 42, "postalCodeFirst": []string{"boom"}},
		nil)

	resp, err := c.Dispatch(context.Background(), env)
	require.NoError(t, err)
	// Decoding degraded to no session, so the intent falls back.
	require.Equal(t, msgGenericError, resp.Response.OutputSpeech.Values.Value)
}

func TestDispatch_UnknownIntent_FallsBack(t *testing.T) {
	c := newTestController(t, &mockStore{}, &mockWeather{}, &mockNotifier{})

	attrs := map[string]any{"STATE": "input", "postalCode": "123-4567", "today": float64(18)}
	resp, err := c.Dispatch(context.Background(), intentEnvelope("user-1", "WeatherForecastIntent", attrs, nil))
	require.NoError(t, err)
	require.Equal(t, msgGenericError, resp.Response.OutputSpeech.Values.Value)
	// The bag survives the fallback untouched.
	require.Equal(t, "input", resp.SessionAttributes["STATE"])
	require.Equal(t, "123-4567", resp.SessionAttributes["postalCode"])
	require.Equal(t, 18, resp.SessionAttributes["today"])
}

func TestDispatch_CancelAndGuide(t *testing.T) {
	c := newTestController(t, &mockStore{}, &mockWeather{}, &mockNotifier{})

	resp, err := c.Dispatch(context.Background(), intentEnvelope("user-1", IntentCancel, nil, nil))
	require.NoError(t, err)
	require.True(t, resp.Response.ShouldEndSession)
	require.Equal(t, msgGoodbye, resp.Response.OutputSpeech.Values.Value)

	resp, err = c.Dispatch(context.Background(), intentEnvelope("user-1", IntentGuide,
		map[string]any{"STATE": "postal-rest", "postalCodeFirst": "123"}, nil))
	require.NoError(t, err)
	require.Equal(t, msgHelpPostalCodeRest, resp.Response.OutputSpeech.Values.Value)
	require.Equal(t, "postal-rest", resp.SessionAttributes["STATE"])
	require.Equal(t, "123", resp.SessionAttributes["postalCodeFirst"])
}

func TestDispatch_SessionEnded_Acknowledges(t *testing.T) {
	store := &mockStore{}
	c := newTestController(t, store, &mockWeather{}, &mockNotifier{})

	resp, err := c.Dispatch(context.Background(), &cek.RequestEnvelope{
		Version: "1.0",
		Request: cek.Request{Type: cek.RequestTypeSessionEnded},
	})
	require.NoError(t, err)
	require.True(t, resp.Response.ShouldEndSession)
	require.Nil(t, resp.Response.OutputSpeech)
	require.Zero(t, store.putPostalCodeCalls)
	require.Zero(t, store.putRatingCalls)
}

func TestDispatch_UnknownRequestType_RoutingError(t *testing.T) {
	c := newTestController(t, &mockStore{}, &mockWeather{}, &mockNotifier{})

	_, err := c.Dispatch(context.Background(), &cek.RequestEnvelope{
		Version: "1.0",
		Request: cek.Request{Type: "EventRequest"},
	})
	var ucErr *Error
	require.ErrorAs(t, err, &ucErr)
	require.Equal(t, ErrorRouting, ucErr.Code)
}

func TestDispatch_NilEnvelope(t *testing.T) {
	c := newTestController(t, &mockStore{}, &mockWeather{}, &mockNotifier{})

	_, err := c.Dispatch(context.Background(), nil)
	var ucErr *Error
	require.ErrorAs(t, err, &ucErr)
	require.Equal(t, ErrorInvalidEnvelope, ucErr.Code)
}

func TestDispatch_DependencyError_ReturnsNoEnvelope(t *testing.T) {
	store := &mockStore{
		postalCode:      domain.PostalCodeRecord{PostalCode: "123-4567"},
		postalCodeFound: true,
	}
	weather := &mockWeather{err: context.DeadlineExceeded}
	c := newTestController(t, store, weather, &mockNotifier{})

	resp, err := c.Dispatch(context.Background(), launchEnvelope("user-1"))
	require.Nil(t, resp)
	var ucErr *Error
	require.ErrorAs(t, err, &ucErr)
	require.Equal(t, ErrorDependency, ucErr.Code)
}
