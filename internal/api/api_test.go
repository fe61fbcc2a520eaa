package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/meur/unitvalues/internal/api"
	"github.com/meur/unitvalues/internal/catalog"
	"github.com/meur/unitvalues/internal/models"
	"github.com/meur/unitvalues/internal/trade"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUnits() []models.Unit {
	shiny := int64(2_500_000)
	return []models.Unit{
		{ID: "titan", Name: "Titan Cameraman", Slug: "titan-cameraman", Rarity: "Godly", Value: 1000,
			Demand: models.DemandHigh, Trend: models.TrendRising, Game: models.GameSkibiDefense, ShinyValue: &shiny},
		{ID: "speaker", Name: "Speakerman", Slug: "speakerman", Rarity: "Common", Value: 10,
			Trend: models.TrendDropping, Game: models.GameSkibiDefense},
		{ID: "drill", Name: "Drill Man", Slug: "drill-man", Rarity: "Godly", Value: 1099,
			Traits: []string{"Splash"}, Game: models.GameToiletTowerDefense},
		{ID: "astro", Name: "Astro Toilet", Slug: "astro-toilet", Rarity: "ASTRAL", Value: 90000,
			Demand: models.DemandVeryHigh, Game: models.GameToiletTowerDefense},
	}
}

func newServer(t *testing.T, opts api.Options) *api.Server {
	t.Helper()
	cat, err := catalog.New(testUnits(), catalog.DefaultRarities())
	require.NoError(t, err)
	codes := []models.Code{
		{Code: "LAUNCH", Reward: "500 Gems", Status: models.CodeActive},
		{Code: "HALLOWEEN", Reward: "Crate", Status: models.CodeExpired},
	}
	return api.New(cat, codes, trade.NewEvaluator(trade.DefaultFairThresholdPct), opts)
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

type unitPage struct {
	Units []struct {
		ID           string `json:"id"`
		ValueDisplay string `json:"value_display"`
	} `json:"units"`
	TotalCount   int `json:"total_count"`
	CatalogCount int `json:"catalog_count"`
}

func pageIDs(p unitPage) []string {
	out := []string{}
	for _, u := range p.Units {
		out = append(out, u.ID)
	}
	return out
}

func TestHealth(t *testing.T) {
	rec := get(t, newServer(t, api.Options{}), "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestListUnits(t *testing.T) {
	s := newServer(t, api.Options{})

	tests := []struct {
		name string
		path string
		want []string
	}{
		{name: "default order", path: "/api/units", want: []string{"astro", "drill", "titan", "speaker"}},
		{name: "search", path: "/api/units?q=itan", want: []string{"titan"}},
		{name: "search rarity name", path: "/api/units?q=godly", want: []string{"drill", "titan"}},
		{name: "game filter", path: "/api/units?game=skibi-defense&sort=value-asc", want: []string{"speaker", "titan"}},
		{name: "rarity slug", path: "/api/units?rarity=astral", want: []string{"astro"}},
		{name: "unknown filters fall back", path: "/api/units?game=nope&rarity=nope&sort=nope", want: []string{"astro", "drill", "titan", "speaker"}},
		{name: "name sort", path: "/api/units?sort=name-asc", want: []string{"astro", "drill", "speaker", "titan"}},
		{name: "pagination", path: "/api/units?limit=2&offset=1", want: []string{"drill", "titan"}},
		{name: "offset past end", path: "/api/units?offset=99", want: []string{}},
		{name: "no match", path: "/api/units?q=zzz", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, s, tt.path)
			require.Equal(t, http.StatusOK, rec.Code)

			var page unitPage
			decode(t, rec, &page)
			assert.Equal(t, tt.want, pageIDs(page))
			assert.Equal(t, 4, page.CatalogCount)
		})
	}
}

func TestListUnits_TotalCountIgnoresPagination(t *testing.T) {
	rec := get(t, newServer(t, api.Options{}), "/api/units?limit=1")
	var page unitPage
	decode(t, rec, &page)
	assert.Len(t, page.Units, 1)
	assert.Equal(t, 4, page.TotalCount)
	assert.Equal(t, "90K", page.Units[0].ValueDisplay)
}

func TestGetUnit(t *testing.T) {
	s := newServer(t, api.Options{})

	rec := get(t, s, "/api/units/titan-cameraman")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	decode(t, rec, &body)
	assert.Equal(t, "Titan Cameraman", body["name"])
	assert.Equal(t, "Skibi Defense", body["game_name"])
	assert.Equal(t, "1K", body["value_display"])
	assert.Equal(t, "2.5M", body["shiny_value_display"])
	assert.Equal(t, "up", body["trend_direction"])

	// unit fields keep the data file keys, derived fields are snake_case
	assert.Contains(t, body, "demandScore")
	assert.Contains(t, body, "obtainedFrom")
	assert.Equal(t, float64(2_500_000), body["shinyValue"])
	assert.NotContains(t, body, "shiny_value")
	assert.NotContains(t, body, "demand_score")

	rec = get(t, s, "/api/units/nobody")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGames(t *testing.T) {
	s := newServer(t, api.Options{})

	rec := get(t, s, "/api/games")
	require.Equal(t, http.StatusOK, rec.Code)
	var games []models.Game
	decode(t, rec, &games)
	require.Len(t, games, 2)
	assert.Equal(t, 2, games[0].UnitCount)
	assert.Equal(t, 2, games[1].UnitCount)

	rec = get(t, s, "/api/games/toilet-tower-defense/units?sort=value-asc")
	require.Equal(t, http.StatusOK, rec.Code)
	var page unitPage
	decode(t, rec, &page)
	assert.Equal(t, []string{"drill", "astro"}, pageIDs(page))

	rec = get(t, s, "/api/games/fortnite/units")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type statsBody struct {
	Count       int                   `json:"count"`
	TotalValue  int64                 `json:"total_value"`
	AvgValue    int64                 `json:"avg_value"`
	MaxValue    int64                 `json:"max_value"`
	HighDemand  int                   `json:"high_demand"`
	TopRarities []catalog.RarityCount `json:"top_rarities"`
}

func TestGames_Stats(t *testing.T) {
	s := newServer(t, api.Options{})

	var games []struct {
		ID    models.GameID `json:"id"`
		Stats statsBody     `json:"stats"`
	}
	decode(t, get(t, s, "/api/games"), &games)
	require.Len(t, games, 2)

	assert.Equal(t, statsBody{
		Count: 2, TotalValue: 1010, AvgValue: 505, MaxValue: 1000, HighDemand: 1,
		TopRarities: []catalog.RarityCount{{Rarity: "Godly", Count: 1}, {Rarity: "Common", Count: 1}},
	}, games[0].Stats)

	// 91099 / 2 = 45549.5 rounds up
	assert.Equal(t, int64(45550), games[1].Stats.AvgValue)
	assert.Equal(t, int64(90000), games[1].Stats.MaxValue)

	// stats cover the whole title, not the filtered page
	var page struct {
		Game struct {
			UnitCount int       `json:"unit_count"`
			Stats     statsBody `json:"stats"`
		} `json:"game"`
		TotalCount int `json:"total_count"`
	}
	decode(t, get(t, s, "/api/games/toilet-tower-defense/units?q=drill"), &page)
	assert.Equal(t, 1, page.TotalCount)
	assert.Equal(t, 2, page.Game.UnitCount)
	assert.Equal(t, int64(91099), page.Game.Stats.TotalValue)
}

func TestRarities(t *testing.T) {
	s := newServer(t, api.Options{})

	rec := get(t, s, "/api/rarities")
	require.Equal(t, http.StatusOK, rec.Code)
	var tiers []struct {
		Name      string `json:"name"`
		UnitCount int    `json:"unit_count"`
	}
	decode(t, rec, &tiers)
	require.Len(t, tiers, 3)
	assert.Equal(t, "ASTRAL", tiers[0].Name)
	assert.Equal(t, "Godly", tiers[1].Name)
	assert.Equal(t, 2, tiers[1].UnitCount)
	assert.Equal(t, "Common", tiers[2].Name)

	rec = get(t, s, "/api/rarities/godly")
	require.Equal(t, http.StatusOK, rec.Code)
	var page unitPage
	decode(t, rec, &page)
	assert.Equal(t, []string{"drill", "titan"}, pageIDs(page))

	rec = get(t, s, "/api/rarities/plastic")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRarities_Stats(t *testing.T) {
	s := newServer(t, api.Options{})

	var tiers []struct {
		Name  string    `json:"name"`
		Stats statsBody `json:"stats"`
	}
	decode(t, get(t, s, "/api/rarities"), &tiers)
	require.Len(t, tiers, 3)
	assert.Equal(t, "Godly", tiers[1].Name)
	// 2099 / 2 = 1049.5 rounds up
	assert.Equal(t, int64(1050), tiers[1].Stats.AvgValue)
	assert.Equal(t, int64(1099), tiers[1].Stats.MaxValue)
	assert.Equal(t, 1, tiers[1].Stats.HighDemand)

	// a table tier without units is listed by slug but has zero stats
	var empty struct {
		Rarity struct {
			UnitCount int       `json:"unit_count"`
			Stats     statsBody `json:"stats"`
		} `json:"rarity"`
		Units []json.RawMessage `json:"units"`
	}
	rec := get(t, s, "/api/rarities/cosmic")
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &empty)
	assert.Empty(t, empty.Units)
	assert.Equal(t, 0, empty.Rarity.UnitCount)
	assert.Equal(t, statsBody{TopRarities: []catalog.RarityCount{}}, empty.Rarity.Stats)
}

func postTrade(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/trade/evaluate", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(rec, req)
	return rec
}

func TestEvaluateTrade(t *testing.T) {
	s := newServer(t, api.Options{})

	tests := []struct {
		name    string
		body    string
		verdict trade.Verdict
		totalA  int64
		totalB  int64
	}{
		{name: "fair", body: `{"your_offer":["titan"],"their_offer":["drill"]}`, verdict: trade.VerdictFair, totalA: 1000, totalB: 1099},
		{name: "win", body: `{"your_offer":["speaker"],"their_offer":["titan"]}`, verdict: trade.VerdictWin, totalA: 10, totalB: 1000},
		{name: "loss", body: `{"your_offer":["astro"],"their_offer":["titan","titan"]}`, verdict: trade.VerdictLoss, totalA: 90000, totalB: 2000},
		{name: "empty", body: `{}`, verdict: trade.VerdictEmpty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postTrade(t, s, tt.body)
			require.Equal(t, http.StatusOK, rec.Code)

			var resp api.TradeResponse
			decode(t, rec, &resp)
			assert.Equal(t, tt.verdict, resp.Verdict)
			assert.Equal(t, tt.totalA, resp.TotalA)
			assert.Equal(t, tt.totalB, resp.TotalB)
			assert.Equal(t, tt.verdict.Message(), resp.Message)
		})
	}
}

func TestEvaluateTrade_DuplicatesGetDistinctInstances(t *testing.T) {
	rec := postTrade(t, newServer(t, api.Options{}), `{"your_offer":["titan","titan"]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.TradeResponse
	decode(t, rec, &resp)
	require.Len(t, resp.YourOffer, 2)
	assert.NotEqual(t, resp.YourOffer[0].InstanceID, resp.YourOffer[1].InstanceID)
	assert.Equal(t, "-2K", resp.DifferenceDisplay)
}

func TestEvaluateTrade_BadInput(t *testing.T) {
	s := newServer(t, api.Options{})

	rec := postTrade(t, s, `{"your_offer":["ghost"]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "ghost")

	rec = postTrade(t, s, `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCodes(t *testing.T) {
	rec := get(t, newServer(t, api.Options{}), "/api/codes")
	require.Equal(t, http.StatusOK, rec.Code)

	var list models.CodeList
	decode(t, rec, &list)
	require.Len(t, list.Active, 1)
	require.Len(t, list.Expired, 1)
	assert.Equal(t, "LAUNCH", list.Active[0].Code)
}

type fakeLimiter struct {
	allowed int
	calls   int
	err     error
}

func (f *fakeLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	f.calls++
	if f.err != nil {
		return false, f.err
	}
	return f.calls <= f.allowed, nil
}

func TestRateLimit(t *testing.T) {
	limiter := &fakeLimiter{allowed: 1}
	s := newServer(t, api.Options{Limiter: limiter, RateLimit: 1, RateWindow: time.Minute})

	assert.Equal(t, http.StatusOK, get(t, s, "/api/codes").Code)
	rec := get(t, s, "/api/codes")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}

func TestRateLimit_FailsOpen(t *testing.T) {
	limiter := &fakeLimiter{err: errors.New("redis down")}
	s := newServer(t, api.Options{Limiter: limiter, RateLimit: 1, RateWindow: time.Minute})

	assert.Equal(t, http.StatusOK, get(t, s, "/api/codes").Code)
	assert.Equal(t, http.StatusOK, get(t, s, "/api/codes").Code)
}
