package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/meur/unitvalues/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed rarities.yaml
var defaultRaritiesYAML []byte

// RarityTable is the fixed rarest-first ordering of rarity tiers
type RarityTable struct {
	tiers  []models.RarityTier
	index  map[models.Rarity]int
	bySlug map[string]int
}

type rarityFile struct {
	Tiers []models.RarityTier `yaml:"tiers"`
}

// DefaultRarities returns the built-in rarity table
func DefaultRarities() *RarityTable {
	t, err := ParseRarities(defaultRaritiesYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded rarities.yaml: %v", err))
	}
	return t
}

// LoadRarities reads a rarity table from a YAML file
func LoadRarities(path string) (*RarityTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	t, err := ParseRarities(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// ParseRarities builds a table from YAML; list order is rarity order
func ParseRarities(raw []byte) (*RarityTable, error) {
	var f rarityFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse rarities: %w", err)
	}
	if len(f.Tiers) == 0 {
		return nil, fmt.Errorf("parse rarities: no tiers defined")
	}
	return NewRarityTable(f.Tiers)
}

// NewRarityTable indexes tiers in the given order
func NewRarityTable(tiers []models.RarityTier) (*RarityTable, error) {
	t := &RarityTable{
		tiers:  make([]models.RarityTier, 0, len(tiers)),
		index:  make(map[models.Rarity]int, len(tiers)),
		bySlug: make(map[string]int, len(tiers)),
	}
	for i, tier := range tiers {
		if tier.Name == "" {
			return nil, fmt.Errorf("rarity tier %d has no name", i)
		}
		if _, dup := t.index[tier.Name]; dup {
			return nil, fmt.Errorf("duplicate rarity %q", tier.Name)
		}
		if tier.Slug == "" {
			tier.Slug = slugify(string(tier.Name))
		}
		tier.Order = i
		t.index[tier.Name] = i
		t.bySlug[strings.ToLower(tier.Slug)] = i
		t.tiers = append(t.tiers, tier)
	}
	return t, nil
}

// Index returns the position of r in the table; unknown rarities sort last
func (t *RarityTable) Index(r models.Rarity) int {
	if i, ok := t.index[r]; ok {
		return i
	}
	return len(t.tiers)
}

// Contains reports whether r is a known rarity
func (t *RarityTable) Contains(r models.Rarity) bool {
	_, ok := t.index[r]
	return ok
}

// Tier returns the tier definition for r. Unknown rarities get a plain gray tier.
func (t *RarityTable) Tier(r models.Rarity) (models.RarityTier, bool) {
	if i, ok := t.index[r]; ok {
		return t.tiers[i], true
	}
	return models.RarityTier{
		Name:     r,
		Slug:     slugify(string(r)),
		Color:    "gray-400",
		Gradient: "from-gray-600 to-gray-400",
		Order:    len(t.tiers),
	}, false
}

// BySlug maps a URL slug such as "astral" back to its tier
func (t *RarityTable) BySlug(slug string) (models.RarityTier, bool) {
	i, ok := t.bySlug[strings.ToLower(slug)]
	if !ok {
		return models.RarityTier{}, false
	}
	return t.tiers[i], true
}

// Tiers returns a copy of all tiers in order
func (t *RarityTable) Tiers() []models.RarityTier {
	out := make([]models.RarityTier, len(t.tiers))
	copy(out, t.tiers)
	return out
}

// Len returns the number of known tiers
func (t *RarityTable) Len() int {
	return len(t.tiers)
}
