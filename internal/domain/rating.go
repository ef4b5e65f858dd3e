package domain

import "time"

// Rating is a user's comfort label for one temperature. The values are the
// literal slot tokens the voice interface delivers; anything else is treated
// as absent by ParseRating rather than canonicalized.
type Rating string

const (
	RatingHot  Rating = "hot"
	RatingCold Rating = "cold"
	RatingGood Rating = "good"
)

// ParseRating validates a captured slot value against the closed rating set.
func ParseRating(v string) (Rating, bool) {
	switch Rating(v) {
	case RatingHot, RatingCold, RatingGood:
		return Rating(v), true
	default:
		return "", false
	}
}

// Label returns the spoken form of the rating.
func (r Rating) Label() string {
	switch r {
	case RatingHot:
		return "hot"
	case RatingCold:
		return "cold"
	case RatingGood:
		return "just right"
	default:
		return ""
	}
}

// PostalCodeRecord is the one durable postal code per user, overwritten on
// resubmission. The code is always the validated NNN-NNNN form.
type PostalCodeRecord struct {
	UserID     string
	PostalCode string
	UpdatedAt  time.Time
}

// TemperatureRating is one (user, temperature) row. A row can exist with a
// zero Result: the temperature has been seen but not rated yet, which is
// distinct from never having been looked up at all.
type TemperatureRating struct {
	UserID      string
	Temperature int
	Result      Rating
	RatedAt     time.Time

	// ImageKey gates whether a companion image is pushed with the goal
	// response. The asset served is currently a fixed sample regardless of
	// this value.
	ImageKey string
}

// Rated reports whether the row carries an actual rating.
func (t TemperatureRating) Rated() bool {
	return t.Result != ""
}
