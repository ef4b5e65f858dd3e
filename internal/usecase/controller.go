package usecase

import (
	"context"
	"errors"
	"fmt"

	"clothcheck-skill/internal/cek"
	"clothcheck-skill/internal/domain"
)

// Intent names declared in the skill's interaction model.
const (
	IntentPostalCode     = "PostalCodeIntent"
	IntentPostalCodeRest = "PostalCodeRestIntent"
	IntentInput          = "InputIntent"
	IntentCancel         = "Clova.CancelIntent"
	IntentGuide          = "Clova.GuideIntent"
)

type intentHandler func(ctx context.Context, userID string, state domain.SessionState, slots Slots) (Turn, error)

// Controller routes inbound platform events to the dialog engine and turns
// the engine's decision back into a response envelope. The session bag is
// treated as untyped input and decoded defensively on every turn.
type Controller struct {
	dialog  *DialogService
	intents map[string]intentHandler
}

func NewController(dialog *DialogService) (*Controller, error) {
	if dialog == nil {
		return nil, errors.New("usecase: dialog service must not be nil")
	}
	c := &Controller{dialog: dialog}
	c.intents = map[string]intentHandler{
		IntentPostalCode:     dialog.CollectPostalCodeFirst,
		IntentPostalCodeRest: dialog.CollectPostalCodeRest,
		IntentInput:          dialog.RecordRating,
		IntentCancel: func(ctx context.Context, userID string, state domain.SessionState, _ Slots) (Turn, error) {
			return dialog.Cancel(ctx, userID, state)
		},
		IntentGuide: func(ctx context.Context, userID string, state domain.SessionState, _ Slots) (Turn, error) {
			return dialog.Guide(ctx, userID, state)
		},
	}
	return c, nil
}

// Dispatch handles one inbound envelope. An unknown request type is a
// routing failure; an unknown intent inside an IntentRequest falls back to
// the generic correction, because that handler is registered.
func (c *Controller) Dispatch(ctx context.Context, req *cek.RequestEnvelope) (*cek.ResponseEnvelope, error) {
	if req == nil {
		return nil, newError(ErrorInvalidEnvelope, "nil_envelope", nil)
	}

	userID := req.UserID()
	state := domain.ParseSessionState(req.Session.SessionAttributes)

	var (
		turn Turn
		err  error
	)
	switch req.Request.Type {
	case cek.RequestTypeLaunch:
		turn, err = c.dialog.Launch(ctx, userID, state)

	case cek.RequestTypeIntent:
		handler, ok := c.intents[req.Request.Intent.Name]
		if !ok {
			handler = func(ctx context.Context, userID string, state domain.SessionState, _ Slots) (Turn, error) {
				return c.dialog.Fallback(ctx, userID, state)
			}
		}
		turn, err = handler(ctx, userID, state, req.Slots())

	case cek.RequestTypeSessionEnded:
		// Acknowledge only; the platform has already discarded the session.
		return cek.NewResponse("", "", nil, true), nil

	default:
		return nil, newError(ErrorRouting, fmt.Sprintf("no_handler_for_%s", req.Request.Type), nil)
	}
	if err != nil {
		return nil, err
	}

	attrs := turn.State.Attributes()
	if turn.EndSession {
		attrs = nil
	}
	return cek.NewResponse(turn.Speech, turn.Reprompt, attrs, turn.EndSession), nil
}
