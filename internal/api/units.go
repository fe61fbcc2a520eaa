package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/meur/unitvalues/internal/catalog"
	"github.com/meur/unitvalues/internal/format"
	"github.com/meur/unitvalues/internal/models"
)

// unitView is a unit plus the display strings a page needs. The embedded
// unit keeps its data file keys; the derived fields are snake_case.
type unitView struct {
	models.Unit
	GameName          string            `json:"game_name"`
	ValueDisplay      string            `json:"value_display"`
	ShinyValueDisplay string            `json:"shiny_value_display,omitempty"`
	TrendSymbol       string            `json:"trend_symbol"`
	TrendDirection    string            `json:"trend_direction"`
	RarityTier        models.RarityTier `json:"rarity_tier"`
}

func (s *Server) viewUnit(u models.Unit) unitView {
	tier, _ := s.catalog.Rarities().Tier(u.Rarity)
	v := unitView{
		Unit:           u,
		GameName:       u.Game.DisplayName(),
		ValueDisplay:   format.Value(u.Value),
		TrendSymbol:    u.Trend.Symbol(),
		TrendDirection: u.Trend.Direction(),
		RarityTier:     tier,
	}
	if u.ShinyValue != nil {
		v.ShinyValueDisplay = format.Value(*u.ShinyValue)
	}
	return v
}

func (s *Server) viewUnits(units []models.Unit) []unitView {
	out := make([]unitView, 0, len(units))
	for _, u := range units {
		out = append(out, s.viewUnit(u))
	}
	return out
}

// parseQuery reads the engine parameters from the query string
func (s *Server) parseQuery(r *http.Request) catalog.Query {
	q := r.URL.Query()
	return catalog.Query{
		Term:   strings.TrimSpace(q.Get("q")),
		Game:   catalog.ParseGameFilter(q.Get("game")),
		Rarity: catalog.ParseRarityFilter(q.Get("rarity"), s.catalog.Rarities()),
		Sort:   catalog.ParseSortKey(q.Get("sort")),
	}
}

// parsePage extracts limit/offset; limit 0 means everything up to MaxLimit
func (s *Server) parsePage(r *http.Request) (limit, offset int) {
	q := r.URL.Query()
	limit = s.opts.MaxLimit
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > s.opts.MaxLimit {
		limit = s.opts.MaxLimit
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}

// respondUnitPage runs q, pages the result and merges extra into the body
func (s *Server) respondUnitPage(w http.ResponseWriter, r *http.Request, q catalog.Query, extra map[string]interface{}) {
	units := s.catalog.Query(q)
	limit, offset := s.parsePage(r)

	total := len(units)
	start := offset
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	body := map[string]interface{}{
		"units":         s.viewUnits(units[start:end]),
		"total_count":   total,
		"catalog_count": s.catalog.Len(),
		"limit":         limit,
		"offset":        offset,
		"query": map[string]string{
			"q":      q.Term,
			"game":   string(q.Game),
			"rarity": string(q.Rarity),
			"sort":   string(q.Sort),
		},
	}
	for k, v := range extra {
		body[k] = v
	}
	respondJSON(w, http.StatusOK, body)
}

type gameView struct {
	models.Game
	Stats catalog.Stats `json:"stats"`
}

func (s *Server) viewGame(g models.Game) gameView {
	units := s.catalog.ByGame(g.ID)
	g.UnitCount = len(units)
	return gameView{Game: g, Stats: s.catalog.Stats(units)}
}

// handleGetGames returns both titles with their unit counts and stats
func (s *Server) handleGetGames(w http.ResponseWriter, r *http.Request) {
	games := models.Games()
	out := make([]gameView, 0, len(games))
	for _, g := range games {
		out = append(out, s.viewGame(g))
	}
	respondJSON(w, http.StatusOK, out)
}

// handleGetGameUnits lists one title's units
func (s *Server) handleGetGameUnits(w http.ResponseWriter, r *http.Request) {
	gameID := models.GameID(chi.URLParam(r, "gameID"))
	if !gameID.Valid() {
		respondError(w, http.StatusNotFound, "Game not found")
		return
	}

	var game models.Game
	for _, g := range models.Games() {
		if g.ID == gameID {
			game = g
			break
		}
	}

	q := s.parseQuery(r)
	q.Game = catalog.GameFilter(gameID)
	s.respondUnitPage(w, r, q, map[string]interface{}{"game": s.viewGame(game)})
}

// handleListUnits runs the query engine over the whole catalog
func (s *Server) handleListUnits(w http.ResponseWriter, r *http.Request) {
	s.respondUnitPage(w, r, s.parseQuery(r), nil)
}

// handleGetUnit returns a single unit by slug
func (s *Server) handleGetUnit(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	unit, ok := s.catalog.BySlug(slug)
	if !ok {
		respondError(w, http.StatusNotFound, "Unit not found")
		return
	}

	respondJSON(w, http.StatusOK, s.viewUnit(unit))
}

type rarityView struct {
	models.RarityTier
	UnitCount int           `json:"unit_count"`
	Stats     catalog.Stats `json:"stats"`
}

func (s *Server) viewRarity(tier models.RarityTier, units []models.Unit) rarityView {
	return rarityView{RarityTier: tier, UnitCount: len(units), Stats: s.catalog.Stats(units)}
}

// handleGetRarities lists the tiers that have units, rarest first
func (s *Server) handleGetRarities(w http.ResponseWriter, r *http.Request) {
	tiers := s.catalog.AvailableRarities()

	out := make([]rarityView, 0, len(tiers))
	for _, t := range tiers {
		out = append(out, s.viewRarity(t, s.catalog.ByRarity(t.Name)))
	}
	respondJSON(w, http.StatusOK, out)
}

// handleGetRarity returns one tier and its units, highest value first
func (s *Server) handleGetRarity(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	tier, ok := s.catalog.Rarities().BySlug(slug)
	if !ok {
		respondError(w, http.StatusNotFound, "Rarity not found")
		return
	}

	units := s.catalog.ByRarity(tier.Name)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"rarity":      s.viewRarity(tier, units),
		"units":       s.viewUnits(units),
		"total_count": len(units),
	})
}
