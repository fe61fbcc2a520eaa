package trade

import (
	"fmt"

	"github.com/meur/unitvalues/internal/models"
)

// Side names one half of the calculator
type Side string

const (
	SideYours  Side = "your"
	SideTheirs Side = "their"
)

// ParseSide accepts "your"/"yours" and "their"/"theirs"
func ParseSide(s string) (Side, error) {
	switch s {
	case "your", "yours":
		return SideYours, nil
	case "their", "theirs":
		return SideTheirs, nil
	default:
		return "", fmt.Errorf("unknown trade side %q", s)
	}
}

// Session is one calculator: what you give (A) against what you get (B).
// Nothing in a session is persisted.
type Session struct {
	yours     *Offer
	theirs    *Offer
	evaluator Evaluator
}

// NewSession creates an empty session using evaluator
func NewSession(evaluator Evaluator) *Session {
	return &Session{
		yours:     NewOffer(),
		theirs:    NewOffer(),
		evaluator: evaluator,
	}
}

// Offer returns the offer for side
func (s *Session) Offer(side Side) *Offer {
	if side == SideTheirs {
		return s.theirs
	}
	return s.yours
}

// Add places unit on side
func (s *Session) Add(side Side, unit models.Unit) SelectedUnit {
	return s.Offer(side).Add(unit)
}

// Remove drops a selection from whichever side holds it
func (s *Session) Remove(instanceID string) bool {
	return s.yours.Remove(instanceID) || s.theirs.Remove(instanceID)
}

// Reset empties both sides
func (s *Session) Reset() {
	s.yours.Clear()
	s.theirs.Clear()
}

// Evaluate classifies the current state of both offers
func (s *Session) Evaluate() Result {
	return s.evaluator.Evaluate(s.yours.Units(), s.theirs.Units())
}
