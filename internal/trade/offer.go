// Package trade compares two offers of units and classifies the outcome.
package trade

import (
	"github.com/google/uuid"
	"github.com/meur/unitvalues/internal/models"
)

// SelectedUnit is one unit placed into an offer. The same unit can be
// selected more than once; each selection has its own instance ID.
type SelectedUnit struct {
	InstanceID string      `json:"instance_id"`
	Unit       models.Unit `json:"unit"`
}

// Offer is the ordered list of units one side would give
type Offer struct {
	units []SelectedUnit
	newID func() string
}

// NewOffer returns an empty offer
func NewOffer() *Offer {
	return &Offer{newID: uuid.NewString}
}

// Add appends unit with a fresh instance ID and returns the selection
func (o *Offer) Add(unit models.Unit) SelectedUnit {
	if o.newID == nil {
		o.newID = uuid.NewString
	}
	s := SelectedUnit{InstanceID: o.newID(), Unit: unit}
	o.units = append(o.units, s)
	return s
}

// Remove drops the selection with instanceID. Missing IDs are ignored;
// the return value reports whether anything was removed.
func (o *Offer) Remove(instanceID string) bool {
	for i, s := range o.units {
		if s.InstanceID == instanceID {
			o.units = append(o.units[:i:i], o.units[i+1:]...)
			return true
		}
	}
	return false
}

// Clear empties the offer
func (o *Offer) Clear() {
	o.units = nil
}

// Units returns a copy of the selections in insertion order
func (o *Offer) Units() []SelectedUnit {
	out := make([]SelectedUnit, len(o.units))
	copy(out, o.units)
	return out
}

// Len returns the number of selections
func (o *Offer) Len() int {
	return len(o.units)
}

// Total sums the value of every selection
func (o *Offer) Total() int64 {
	return Total(o.units)
}

// Total sums the value of units
func Total(units []SelectedUnit) int64 {
	var total int64
	for _, s := range units {
		total += s.Unit.Value
	}
	return total
}
