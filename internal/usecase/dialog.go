package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"clothcheck-skill/internal/domain"
)

// Slot names captured by the voice interface. The postal code arrives one
// digit per slot, three slots for the first segment and four for the rest.
const (
	slotSerialOne   = "SerialOne"
	slotSerialTwo   = "SerialTwo"
	slotSerialThree = "SerialThree"
	slotSerialFour  = "SerialFour"
	slotSerialFive  = "SerialFive"
	slotSerialSix   = "SerialSix"
	slotSerialSeven = "SerialSeven"
	slotTempType    = "TempType"
)

var (
	threeDigits = regexp.MustCompile(`^[0-9]{3}$`)
	fourDigits  = regexp.MustCompile(`^[0-9]{4}$`)
)

// Slots is the per-turn captured slot values, absent slots omitted.
type Slots map[string]string

// RatingStore is the durable truth for postal codes and temperature ratings.
type RatingStore interface {
	GetPostalCode(ctx context.Context, userID string) (domain.PostalCodeRecord, bool, error)
	PutPostalCode(ctx context.Context, userID, postalCode string) error
	GetRating(ctx context.Context, userID string, temperature int) (domain.TemperatureRating, bool, error)
	PutRating(ctx context.Context, userID string, temperature int, result domain.Rating) error
}

// WeatherLookup resolves a postal code to the current outdoor temperature.
type WeatherLookup interface {
	CurrentTemperature(ctx context.Context, postalCode, countryCode string) (int, error)
}

// Notifier pushes the goal response to the user's companion chat channel.
type Notifier interface {
	PushRatingPrompt(ctx context.Context, userID string, temperature int, rating domain.Rating, withImage bool) error
}

// Turn is the engine's entire decision for one conversational turn: what to
// say, what to hand back as session state, and whether the session ends.
type Turn struct {
	Speech     string
	Reprompt   string
	State      domain.SessionState
	EndSession bool
}

// DialogService drives the multi-turn postal-code/rating dialog. Each
// handler takes the previous turn's state and returns the next Turn; all
// I/O is sequential and a dependency failure aborts the turn with no
// partial state committed.
type DialogService struct {
	store       RatingStore
	weather     WeatherLookup
	notifier    Notifier
	countryCode string
}

func NewDialogService(store RatingStore, weather WeatherLookup, notifier Notifier, countryCode string) (*DialogService, error) {
	if store == nil {
		return nil, errors.New("usecase: rating store must not be nil")
	}
	if weather == nil {
		return nil, errors.New("usecase: weather lookup must not be nil")
	}
	if notifier == nil {
		return nil, errors.New("usecase: notifier must not be nil")
	}
	countryCode = strings.TrimSpace(countryCode)
	if countryCode == "" {
		return nil, errors.New("usecase: country code must not be empty")
	}
	return &DialogService{
		store:       store,
		weather:     weather,
		notifier:    notifier,
		countryCode: countryCode,
	}, nil
}

// Launch handles a fresh session start. A user with no usable postal code
// on file is asked for one; otherwise the current temperature decides
// between prompting for a rating and answering from the stored one.
func (d *DialogService) Launch(ctx context.Context, userID string, _ domain.SessionState) (Turn, error) {
	rec, found, err := d.store.GetPostalCode(ctx, userID)
	if err != nil {
		return Turn{}, newError(ErrorDependency, "postalcode_read_error", err)
	}

	if !found || rec.PostalCode == "" {
		speech := msgAskPostalCode
		if !found {
			speech = msgGreeting + msgAskPostalCode
		}
		return Turn{
			Speech:   speech,
			Reprompt: msgAskPostalCodeReprompt,
			State:    domain.SessionState{Phase: domain.PhaseAskPostalCodeFirst},
		}, nil
	}

	temperature, err := d.weather.CurrentTemperature(ctx, rec.PostalCode, d.countryCode)
	if err != nil {
		return Turn{}, newError(ErrorDependency, "weather_lookup_error", err)
	}

	rating, found, err := d.store.GetRating(ctx, userID, temperature)
	if err != nil {
		return Turn{}, newError(ErrorDependency, "rating_read_error", err)
	}

	if !found || !rating.Rated() {
		return Turn{
			Speech:   fmt.Sprintf(msgAskRatingFormat, ""),
			Reprompt: msgAskRatingReprompt,
			State: domain.SessionState{
				Phase:              domain.PhaseAskTemperature,
				PostalCode:         rec.PostalCode,
				PendingTemperature: &temperature,
			},
		}, nil
	}

	return d.goalResponse(ctx, msgAlreadyRatedFormat, userID, temperature, rating.Result, rating.ImageKey != "")
}

// CollectPostalCodeFirst handles PostalCodeIntent: the 3-digit segment.
func (d *DialogService) CollectPostalCodeFirst(ctx context.Context, userID string, state domain.SessionState, slots Slots) (Turn, error) {
	switch state.Phase {
	case domain.PhaseAskPostalCodeFirst:
		one, two, three := slots[slotSerialOne], slots[slotSerialTwo], slots[slotSerialThree]
		first := one + two + three
		if !threeDigits.MatchString(first) {
			return Turn{
				Speech:   msgAskPostalCodeError,
				Reprompt: msgAskPostalCodeError,
				State:    domain.SessionState{Phase: domain.PhaseAskPostalCodeFirst},
			}, nil
		}
		return Turn{
			Speech:   fmt.Sprintf(msgAskPostalCodeRestFormat, one, two, three),
			Reprompt: msgAskPostalCodeRestReprompt,
			State: domain.SessionState{
				Phase:               domain.PhaseAskPostalCodeRest,
				PostalCodeFirstHalf: first,
			},
		}, nil

	case domain.PhaseAskPostalCodeRest:
		// First segment already captured; steer the user to the rest.
		return Turn{
			Speech:   msgWrongPhaseWantRest,
			Reprompt: msgWrongPhaseWantRest,
			State:    state,
		}, nil

	default:
		return d.Fallback(ctx, userID, state)
	}
}

// CollectPostalCodeRest handles PostalCodeRestIntent: the 4-digit segment.
// On success the full code is persisted, the temperature looked up, and the
// dialog moves on to the rating question.
func (d *DialogService) CollectPostalCodeRest(ctx context.Context, userID string, state domain.SessionState, slots Slots) (Turn, error) {
	switch state.Phase {
	case domain.PhaseAskPostalCodeRest:
		if state.PostalCodeFirstHalf == "" {
			// The bag lost the first segment; restart collection rather
			// than assemble a garbage code.
			return Turn{
				Speech:   msgWrongPhaseWantFirst,
				Reprompt: msgAskPostalCodeReprompt,
				State:    domain.SessionState{Phase: domain.PhaseAskPostalCodeFirst},
			}, nil
		}

		rest := slots[slotSerialFour] + slots[slotSerialFive] + slots[slotSerialSix] + slots[slotSerialSeven]
		if !fourDigits.MatchString(rest) {
			return Turn{
				Speech:   msgAskPostalCodeRestError,
				Reprompt: msgAskPostalCodeRestError,
				State:    state,
			}, nil
		}

		postalCode := state.PostalCodeFirstHalf + "-" + rest
		if err := d.store.PutPostalCode(ctx, userID, postalCode); err != nil {
			return Turn{}, newError(ErrorDependency, "postalcode_write_error", err)
		}

		temperature, err := d.weather.CurrentTemperature(ctx, postalCode, d.countryCode)
		if err != nil {
			return Turn{}, newError(ErrorDependency, "weather_lookup_error", err)
		}

		return Turn{
			Speech:   fmt.Sprintf(msgAskRatingFormat, fmt.Sprintf(msgPostalCodeSavedFormat, postalCode)),
			Reprompt: msgAskRatingReprompt,
			State: domain.SessionState{
				Phase:              domain.PhaseAskTemperature,
				PostalCode:         postalCode,
				PendingTemperature: &temperature,
			},
		}, nil

	case domain.PhaseAskPostalCodeFirst:
		return Turn{
			Speech:   msgWrongPhaseWantFirst,
			Reprompt: msgWrongPhaseWantFirst,
			State:    state,
		}, nil

	default:
		return d.Fallback(ctx, userID, state)
	}
}

// RecordRating handles InputIntent: the comfort rating for the pending
// temperature. Writing the rating is the single side effect of the turn;
// the goal response then ends the session.
func (d *DialogService) RecordRating(ctx context.Context, userID string, state domain.SessionState, slots Slots) (Turn, error) {
	if state.Phase != domain.PhaseAskTemperature {
		return d.Fallback(ctx, userID, state)
	}

	rating, ok := domain.ParseRating(slots[slotTempType])
	if !ok {
		return Turn{
			Speech:   msgGenericError,
			Reprompt: msgGenericErrorReprompt,
			State:    state,
		}, nil
	}

	var temperature int
	switch {
	case state.PendingTemperature != nil:
		temperature = *state.PendingTemperature
	case state.PostalCode != "":
		// The session lost the cached temperature; look it up again from
		// the postal code collected earlier in the session.
		t, err := d.weather.CurrentTemperature(ctx, state.PostalCode, d.countryCode)
		if err != nil {
			return Turn{}, newError(ErrorDependency, "weather_lookup_error", err)
		}
		temperature = t
	default:
		// Neither a temperature nor a postal code; nothing to attach the
		// rating to, so degrade to a reprompt.
		return Turn{
			Speech:   msgGenericError,
			Reprompt: msgGenericErrorReprompt,
			State:    state,
		}, nil
	}

	if err := d.store.PutRating(ctx, userID, temperature, rating); err != nil {
		return Turn{}, newError(ErrorDependency, "rating_write_error", err)
	}

	return d.goalResponse(ctx, msgRatingSavedFormat, userID, temperature, rating, false)
}

// Cancel ends the conversation on the user's request.
func (d *DialogService) Cancel(_ context.Context, _ string, _ domain.SessionState) (Turn, error) {
	return Turn{Speech: msgGoodbye, EndSession: true}, nil
}

// Guide speaks phase-specific help without changing phase or data. Outside
// a dialog there is nothing to resume, so the general help ends the session.
func (d *DialogService) Guide(_ context.Context, _ string, state domain.SessionState) (Turn, error) {
	switch state.Phase {
	case domain.PhaseAskPostalCodeFirst:
		return Turn{Speech: msgHelpPostalCodeFirst, Reprompt: msgAskPostalCodeReprompt, State: state}, nil
	case domain.PhaseAskPostalCodeRest:
		return Turn{Speech: msgHelpPostalCodeRest, Reprompt: msgAskPostalCodeRestReprompt, State: state}, nil
	case domain.PhaseAskTemperature:
		return Turn{Speech: msgHelpRating, Reprompt: msgAskRatingReprompt, State: state}, nil
	default:
		return Turn{Speech: msgHelpGeneral, EndSession: true}, nil
	}
}

// Fallback answers any intent the dialog has no use for in its current
// phase: a generic correction, state untouched.
func (d *DialogService) Fallback(_ context.Context, _ string, state domain.SessionState) (Turn, error) {
	return Turn{
		Speech:   msgGenericError,
		Reprompt: msgGenericErrorReprompt,
		State:    state,
	}, nil
}

// goalResponse builds the shared "here is your rating" ending: spoken
// summary, exactly one chat push, session over. The session state is
// dropped because the goal has been reached.
func (d *DialogService) goalResponse(ctx context.Context, format, userID string, temperature int, rating domain.Rating, withImage bool) (Turn, error) {
	if err := d.notifier.PushRatingPrompt(ctx, userID, temperature, rating, withImage); err != nil {
		return Turn{}, newError(ErrorDependency, "notification_push_error", err)
	}

	note := msgNoImageNote
	if withImage {
		note = msgImageNote
	}
	return Turn{
		Speech:     fmt.Sprintf(format, temperature, rating.Label(), note),
		EndSession: true,
	}, nil
}
