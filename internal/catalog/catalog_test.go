package catalog_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/meur/unitvalues/internal/catalog"
	"github.com/meur/unitvalues/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RejectsInvalidUnits(t *testing.T) {
	tests := []struct {
		name  string
		units []models.Unit
	}{
		{name: "negative value", units: []models.Unit{{ID: "a", Name: "A", Value: -1}}},
		{name: "duplicate id", units: []models.Unit{{ID: "a", Name: "A"}, {ID: "a", Name: "B"}}},
		{name: "missing id", units: []models.Unit{{Name: "A"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := catalog.New(tt.units, nil)
			assert.Error(t, err)
		})
	}
}

func TestCatalog_Lookups(t *testing.T) {
	c, err := catalog.New(fixtureUnits(), catalog.DefaultRarities())
	require.NoError(t, err)

	u, err := c.ByID("titan")
	require.NoError(t, err)
	assert.Equal(t, "Titan Cameraman", u.Name)

	_, err = c.ByID("missing")
	assert.True(t, errors.Is(err, models.ErrUnitNotFound))

	// slugs are derived from names when the data omits them
	u, ok := c.BySlug("titan-cameraman")
	require.True(t, ok)
	assert.Equal(t, "titan", u.ID)

	_, ok = c.BySlug("nope")
	assert.False(t, ok)

	assert.Equal(t, 6, c.Len())
	assert.Equal(t, []string{"titan", "speaker", "clock", "glitch"}, ids(c.ByGame(models.GameSkibiDefense)))
	assert.Equal(t, 2, c.CountByGame()[models.GameToiletTowerDefense])
	assert.Equal(t, []string{"titan", "drill"}, ids(c.ByRarity("Godly")))
	assert.Equal(t, []string{"glitch"}, ids(c.ByRarity("Mythical Glitch")))
}

func TestCatalog_UnitsReturnsCopy(t *testing.T) {
	c, err := catalog.New(fixtureUnits(), nil)
	require.NoError(t, err)

	units := c.Units()
	units[0].Value = 1

	u, err := c.ByID(units[0].ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), u.Value)
}

func TestCatalog_AvailableRarities(t *testing.T) {
	c, err := catalog.New(fixtureUnits(), nil)
	require.NoError(t, err)

	var names []models.Rarity
	for _, tier := range c.AvailableRarities() {
		names = append(names, tier.Name)
	}
	assert.Equal(t, []models.Rarity{"ASTRAL", "Godly", "Legendary", "Common"}, names)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "units.json")
	data := `[
		{"id": "1", "name": "Titan Cameraman", "slug": "titan-cameraman", "rarity": "Godly", "value": 5000,
		 "demand": "High", "demandScore": 8, "trend": "Rising", "obtainedFrom": "Crate", "game": "skibi-defense",
		 "shinyValue": 9000},
		{"id": "2", "name": "Speakerman", "slug": "speakerman", "rarity": "Common", "value": 10,
		 "demand": "Low", "demandScore": 2, "trend": "Stable", "obtainedFrom": "Summon", "game": "skibi-defense"}
	]`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	c, err := catalog.LoadFile(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())

	u, ok := c.BySlug("titan-cameraman")
	require.True(t, ok)
	require.NotNil(t, u.ShinyValue)
	assert.Equal(t, int64(9000), *u.ShinyValue)
	assert.Equal(t, models.TrendRising, u.Trend)

	_, err = catalog.LoadFile(filepath.Join(t.TempDir(), "missing.json"), nil)
	assert.Error(t, err)
}

func TestDefaultRarities(t *testing.T) {
	r := catalog.DefaultRarities()
	assert.Equal(t, 20, r.Len())
	assert.Equal(t, 0, r.Index("ASTRAL"))
	assert.Equal(t, 19, r.Index("Common"))
	assert.Equal(t, 20, r.Index("Unheard Of"))

	tier, ok := r.BySlug("astral")
	require.True(t, ok)
	assert.Equal(t, models.Rarity("ASTRAL"), tier.Name)
	assert.NotEmpty(t, tier.Description)

	tier, ok = r.Tier("Unheard Of")
	assert.False(t, ok)
	assert.Equal(t, "unheard-of", tier.Slug)
	assert.Equal(t, 20, tier.Order)
}

func TestParseRarities(t *testing.T) {
	r, err := catalog.ParseRarities([]byte(`
tiers:
  - name: Gold
  - name: Silver Plus
    slug: silver
`))
	require.NoError(t, err)
	assert.Equal(t, 0, r.Index("Gold"))
	assert.Equal(t, 1, r.Index("Silver Plus"))

	tier, ok := r.BySlug("gold")
	require.True(t, ok)
	assert.Equal(t, models.Rarity("Gold"), tier.Name)

	_, err = catalog.ParseRarities([]byte(`tiers: []`))
	assert.Error(t, err)

	_, err = catalog.ParseRarities([]byte("tiers:\n  - name: A\n  - name: A\n"))
	assert.Error(t, err)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "titan-cameraman", catalog.Slugify("Titan Cameraman"))
	assert.Equal(t, "g-man-2-0", catalog.Slugify("  G-Man 2.0!"))
}

func TestDebouncer_DeliversOnlyLatest(t *testing.T) {
	c, err := catalog.New(fixtureUnits(), nil)
	require.NoError(t, err)

	var mu sync.Mutex
	var delivered []string
	done := make(chan struct{}, 10)

	d := catalog.NewDebouncer(20*time.Millisecond, catalog.CatalogSearch(c), func(q catalog.Query, units []models.Unit) {
		mu.Lock()
		delivered = append(delivered, q.Term)
		mu.Unlock()
		done <- struct{}{}
	})
	defer d.Stop()

	d.Submit(catalog.Query{Term: "t"})
	d.Submit(catalog.Query{Term: "ti"})
	d.Submit(catalog.Query{Term: "itan"})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("no result delivered")
	}

	// give any superseded timers a chance to fire
	time.Sleep(60 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"itan"}, delivered)
}

func TestDebouncer_StopCancelsPending(t *testing.T) {
	called := make(chan struct{}, 1)
	d := catalog.NewDebouncer(20*time.Millisecond,
		func(ctx context.Context, q catalog.Query) []models.Unit { return nil },
		func(q catalog.Query, units []models.Unit) { called <- struct{}{} },
	)

	d.Submit(catalog.Query{Term: "x"})
	d.Stop()

	select {
	case <-called:
		t.Fatal("stopped debouncer delivered a result")
	case <-time.After(80 * time.Millisecond):
	}
}

func TestCatalog_Stats(t *testing.T) {
	c, err := catalog.New(fixtureUnits(), nil)
	require.NoError(t, err)

	tests := []struct {
		name  string
		units []models.Unit
		want  catalog.Stats
	}{
		{
			name:  "empty",
			units: nil,
			want:  catalog.Stats{TopRarities: []catalog.RarityCount{}},
		},
		{
			name: "average rounds half up",
			units: []models.Unit{
				{Rarity: "Rare", Value: 1, Demand: models.DemandHigh},
				{Rarity: "Rare", Value: 2, Demand: models.DemandVeryHigh},
			},
			want: catalog.Stats{
				Count: 2, TotalValue: 3, AvgValue: 2, MaxValue: 2, HighDemand: 2,
				TopRarities: []catalog.RarityCount{{Rarity: "Rare", Count: 2}},
			},
		},
		{
			name: "average rounds down below half",
			units: []models.Unit{
				{Rarity: "Rare", Value: 1, Demand: models.DemandNormal},
				{Rarity: "Epic", Value: 1},
				{Rarity: "Rare", Value: 2, Demand: models.DemandLow},
			},
			want: catalog.Stats{
				Count: 3, TotalValue: 4, AvgValue: 1, MaxValue: 2,
				TopRarities: []catalog.RarityCount{{Rarity: "Rare", Count: 2}, {Rarity: "Epic", Count: 1}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Stats(tt.units))
		})
	}
}

func TestCatalog_StatsTopRaritiesCapped(t *testing.T) {
	c, err := catalog.New(fixtureUnits(), nil)
	require.NoError(t, err)

	var units []models.Unit
	for i, r := range []models.Rarity{"A", "B", "C", "D", "E", "F"} {
		for n := 0; n <= i; n++ {
			units = append(units, models.Unit{Rarity: r})
		}
	}

	top := c.Stats(units).TopRarities
	require.Len(t, top, 5)
	assert.Equal(t, catalog.RarityCount{Rarity: "F", Count: 6}, top[0])
	assert.Equal(t, catalog.RarityCount{Rarity: "B", Count: 2}, top[4])
}

type fakeProvider struct {
	queries []catalog.Query
}

func (f *fakeProvider) Query(q catalog.Query) []models.Unit {
	f.queries = append(f.queries, q)
	return []models.Unit{{ID: "fake"}}
}

func TestCatalogSearch_UsesProvider(t *testing.T) {
	p := &fakeProvider{}
	search := catalog.CatalogSearch(p)

	units := search(context.Background(), catalog.Query{Term: "x"})
	assert.Equal(t, []string{"fake"}, ids(units))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Nil(t, search(ctx, catalog.Query{Term: "y"}))

	// a cancelled search never reaches the provider
	assert.Equal(t, []catalog.Query{{Term: "x"}}, p.queries)
}
