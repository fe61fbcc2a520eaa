package api

import (
	"errors"
	"net/http"

	"github.com/meur/unitvalues/internal/format"
	"github.com/meur/unitvalues/internal/models"
	"github.com/meur/unitvalues/internal/trade"
	"go.uber.org/zap"
)

// TradeRequest lists unit IDs for each side. Repeating an ID selects that
// unit more than once.
type TradeRequest struct {
	YourOffer  []string `json:"your_offer"`
	TheirOffer []string `json:"their_offer"`
}

type selectedView struct {
	InstanceID string   `json:"instance_id"`
	Unit       unitView `json:"unit"`
}

// TradeResponse is the evaluated calculator state
type TradeResponse struct {
	YourOffer  []selectedView `json:"your_offer"`
	TheirOffer []selectedView `json:"their_offer"`
	trade.Result
	Message           string `json:"message"`
	TotalADisplay     string `json:"total_a_display"`
	TotalBDisplay     string `json:"total_b_display"`
	DifferenceDisplay string `json:"difference_display"`
	PercentDisplay    string `json:"percent_display"`
}

// handleEvaluateTrade builds a throwaway calculator session from the
// request and classifies it
func (s *Server) handleEvaluateTrade(w http.ResponseWriter, r *http.Request) {
	var req TradeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	session := trade.NewSession(s.evaluator)
	if err := s.fillOffer(session, trade.SideYours, req.YourOffer); err != nil {
		s.respondTradeError(w, err)
		return
	}
	if err := s.fillOffer(session, trade.SideTheirs, req.TheirOffer); err != nil {
		s.respondTradeError(w, err)
		return
	}

	result := session.Evaluate()
	s.logger.Debug("trade evaluated",
		zap.Int("your_units", session.Offer(trade.SideYours).Len()),
		zap.Int("their_units", session.Offer(trade.SideTheirs).Len()),
		zap.String("verdict", string(result.Verdict)),
	)

	respondJSON(w, http.StatusOK, TradeResponse{
		YourOffer:         s.viewSelected(session.Offer(trade.SideYours).Units()),
		TheirOffer:        s.viewSelected(session.Offer(trade.SideTheirs).Units()),
		Result:            result,
		Message:           result.Verdict.Message(),
		TotalADisplay:     format.Value(result.TotalA),
		TotalBDisplay:     format.Value(result.TotalB),
		DifferenceDisplay: format.Signed(result.Difference),
		PercentDisplay:    format.Percent(result.PercentDiff),
	})
}

func (s *Server) fillOffer(session *trade.Session, side trade.Side, ids []string) error {
	for _, id := range ids {
		unit, err := s.catalog.ByID(id)
		if err != nil {
			return err
		}
		session.Add(side, unit)
	}
	return nil
}

func (s *Server) respondTradeError(w http.ResponseWriter, err error) {
	if errors.Is(err, models.ErrUnitNotFound) {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondError(w, http.StatusInternalServerError, "Failed to evaluate trade")
}

func (s *Server) viewSelected(units []trade.SelectedUnit) []selectedView {
	out := make([]selectedView, 0, len(units))
	for _, su := range units {
		out = append(out, selectedView{InstanceID: su.InstanceID, Unit: s.viewUnit(su.Unit)})
	}
	return out
}
