package models

// RecentSignalsRequest filters the signal history listing.
type RecentSignalsRequest struct {
	Symbol string `query:"symbol"`
	Hours  int    `query:"hours" default:"24" validate:"gte=1,lte=168"`
	Limit  int    `query:"limit" default:"50" validate:"gte=1,lte=500"`
}
