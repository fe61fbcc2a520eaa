package models

import "errors"

// ErrUnitNotFound is returned when a unit lookup misses the catalog
var ErrUnitNotFound = errors.New("unit not found")

// Rarity is a unit's tier name, e.g. "Godly" or "Common"
type Rarity string

// Demand is how sought-after a unit is, independent of its value
type Demand string

const (
	DemandVeryHigh Demand = "Very High"
	DemandHigh     Demand = "High"
	DemandNormal   Demand = "Normal"
	DemandLow      Demand = "Low"
)

// Trend is the direction a unit's value is moving
type Trend string

const (
	TrendRising       Trend = "Rising"
	TrendSlowlyRising Trend = "Slowly Rising"
	TrendStable       Trend = "Stable"
	TrendDropping     Trend = "Dropping"
	TrendUnstable     Trend = "Unstable"
	TrendOverpaid     Trend = "Overpaid"
	TrendUnderpaid    Trend = "Underpaid"
)

// Direction reports "up", "down" or "flat" for display arrows
func (t Trend) Direction() string {
	switch t {
	case TrendRising, TrendSlowlyRising:
		return "up"
	case TrendDropping:
		return "down"
	default:
		return "flat"
	}
}

// Symbol returns the short marker shown next to a trend
func (t Trend) Symbol() string {
	switch t {
	case TrendRising:
		return "↑↑"
	case TrendSlowlyRising:
		return "↑"
	case TrendDropping:
		return "↓"
	case TrendUnstable:
		return "↕"
	case TrendOverpaid:
		return "💰"
	case TrendUnderpaid:
		return "📉"
	default:
		return "→"
	}
}

// Unit represents a tradable unit record from the static value list.
// Its JSON keys follow the data file format (demandScore, obtainedFrom,
// shinyValue) and are served unchanged; fields the API derives on top of a
// unit use snake_case.
type Unit struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Slug         string   `json:"slug"`
	Image        string   `json:"image"`
	Rarity       Rarity   `json:"rarity"`
	Value        int64    `json:"value"`
	Demand       Demand   `json:"demand"`
	DemandScore  int      `json:"demandScore"` // 1-10
	Trend        Trend    `json:"trend"`
	ObtainedFrom string   `json:"obtainedFrom"`
	Traits       []string `json:"traits,omitempty"`
	Game         GameID   `json:"game"`

	// Display-only fields
	DPS         string `json:"dps,omitempty"`
	Notes       string `json:"notes,omitempty"`
	ShinyValue  *int64 `json:"shinyValue,omitempty"`
	Exists      *int64 `json:"exists,omitempty"`
	ShinyExists *int64 `json:"shinyExists,omitempty"`
}
