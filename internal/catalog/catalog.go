// Package catalog holds the read-only unit catalog and the query engine
// that filters and sorts it.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/meur/unitvalues/internal/models"
)

// Provider answers unit queries. *Catalog is the production implementation.
type Provider interface {
	Query(q Query) []models.Unit
}

var _ Provider = (*Catalog)(nil)

// Catalog is an immutable, indexed set of units built once at startup.
// It is safe for concurrent readers.
type Catalog struct {
	units    []models.Unit
	byID     map[string]int
	bySlug   map[string]int
	rarities *RarityTable
}

// New builds a catalog from units. Units with a negative value or a
// duplicate ID are rejected.
func New(units []models.Unit, rarities *RarityTable) (*Catalog, error) {
	if rarities == nil {
		rarities = DefaultRarities()
	}
	c := &Catalog{
		units:    make([]models.Unit, 0, len(units)),
		byID:     make(map[string]int, len(units)),
		bySlug:   make(map[string]int, len(units)),
		rarities: rarities,
	}
	for _, u := range units {
		if u.ID == "" {
			return nil, fmt.Errorf("unit %q has no id", u.Name)
		}
		if u.Value < 0 {
			return nil, fmt.Errorf("unit %s has negative value %d", u.ID, u.Value)
		}
		if _, dup := c.byID[u.ID]; dup {
			return nil, fmt.Errorf("duplicate unit id %s", u.ID)
		}
		if u.Slug == "" {
			u.Slug = slugify(u.Name)
		}
		c.byID[u.ID] = len(c.units)
		if _, taken := c.bySlug[u.Slug]; !taken {
			c.bySlug[u.Slug] = len(c.units)
		}
		c.units = append(c.units, u)
	}
	return c, nil
}

// LoadFile reads a JSON array of units and builds a catalog from it
func LoadFile(path string, rarities *RarityTable) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read units: %w", err)
	}
	var units []models.Unit
	if err := json.Unmarshal(data, &units); err != nil {
		return nil, fmt.Errorf("parse units %s: %w", path, err)
	}
	return New(units, rarities)
}

// Units returns a copy of every unit in load order
func (c *Catalog) Units() []models.Unit {
	out := make([]models.Unit, len(c.units))
	copy(out, c.units)
	return out
}

// Len returns the number of units
func (c *Catalog) Len() int {
	return len(c.units)
}

// Rarities returns the rarity table the catalog orders by
func (c *Catalog) Rarities() *RarityTable {
	return c.rarities
}

// ByID looks a unit up by its ID
func (c *Catalog) ByID(id string) (models.Unit, error) {
	i, ok := c.byID[id]
	if !ok {
		return models.Unit{}, fmt.Errorf("%w: %s", models.ErrUnitNotFound, id)
	}
	return c.units[i], nil
}

// BySlug looks a unit up by its URL slug
func (c *Catalog) BySlug(slug string) (models.Unit, bool) {
	i, ok := c.bySlug[slug]
	if !ok {
		return models.Unit{}, false
	}
	return c.units[i], true
}

// ByGame returns units of one title in load order
func (c *Catalog) ByGame(game models.GameID) []models.Unit {
	return Apply(c.units, Query{Game: GameFilter(game), Sort: Unsorted}, c.rarities)
}

// ByRarity returns units of one rarity, highest value first
func (c *Catalog) ByRarity(r models.Rarity) []models.Unit {
	return Apply(c.units, Query{Rarity: RarityFilter(r), Sort: ValueDescending}, c.rarities)
}

// CountByGame returns how many units each title has
func (c *Catalog) CountByGame() map[models.GameID]int {
	counts := make(map[models.GameID]int)
	for _, u := range c.units {
		counts[u.Game]++
	}
	return counts
}

// CountByRarity returns how many units each rarity has
func (c *Catalog) CountByRarity() map[models.Rarity]int {
	counts := make(map[models.Rarity]int)
	for _, u := range c.units {
		counts[u.Rarity]++
	}
	return counts
}

// AvailableRarities lists the known tiers that have at least one unit,
// in rarity order
func (c *Catalog) AvailableRarities() []models.RarityTier {
	present := c.CountByRarity()
	var out []models.RarityTier
	for _, tier := range c.rarities.Tiers() {
		if present[tier.Name] > 0 {
			out = append(out, tier)
		}
	}
	return out
}

// Query runs the query engine against the whole catalog
func (c *Catalog) Query(q Query) []models.Unit {
	return Apply(c.units, q, c.rarities)
}
