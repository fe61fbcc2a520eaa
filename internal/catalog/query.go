package catalog

import (
	"sort"
	"strings"

	"github.com/meur/unitvalues/internal/models"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// GameFilter restricts results to one title, or AllGames
type GameFilter string

// AllGames disables the game filter
const AllGames GameFilter = "all"

// RarityFilter restricts results to one rarity, or AllRarities
type RarityFilter string

// AllRarities disables the rarity filter
const AllRarities RarityFilter = "all"

// SortKey selects the result ordering
type SortKey string

const (
	ValueDescending SortKey = "value-desc"
	ValueAscending  SortKey = "value-asc"
	NameAscending   SortKey = "name-asc"
	NameDescending  SortKey = "name-desc"
	RarityOrder     SortKey = "rarity"

	// Unsorted keeps input order. Used internally for plain partitions.
	Unsorted SortKey = "none"
)

// Query is one pass of the engine. The zero value lists everything by value, highest first.
type Query struct {
	Term   string
	Game   GameFilter
	Rarity RarityFilter
	Sort   SortKey
}

// ParseGameFilter maps user input to a filter; anything unknown means AllGames
func ParseGameFilter(s string) GameFilter {
	s = strings.TrimSpace(s)
	if models.GameID(s).Valid() {
		return GameFilter(s)
	}
	return AllGames
}

// ParseRarityFilter accepts a rarity name (any case) or its slug.
// Anything unknown means AllRarities.
func ParseRarityFilter(s string, rarities *RarityTable) RarityFilter {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, string(AllRarities)) {
		return AllRarities
	}
	if rarities.Contains(models.Rarity(s)) {
		return RarityFilter(s)
	}
	if tier, ok := rarities.BySlug(s); ok {
		return RarityFilter(tier.Name)
	}
	for _, tier := range rarities.Tiers() {
		if strings.EqualFold(string(tier.Name), s) {
			return RarityFilter(tier.Name)
		}
	}
	return AllRarities
}

// ParseSortKey maps user input to a sort key, defaulting to ValueDescending
func ParseSortKey(s string) SortKey {
	switch k := SortKey(strings.TrimSpace(s)); k {
	case ValueDescending, ValueAscending, NameAscending, NameDescending, RarityOrder:
		return k
	default:
		return ValueDescending
	}
}

// Apply filters and sorts units for q. Filters run in a fixed order
// (game, search term, rarity) before the sort. The input is never
// modified and the result is always a fresh slice.
func Apply(units []models.Unit, q Query, rarities *RarityTable) []models.Unit {
	if rarities == nil {
		rarities = DefaultRarities()
	}

	game := q.Game
	if !models.GameID(game).Valid() {
		game = AllGames
	}

	result := make([]models.Unit, 0, len(units))
	for _, u := range units {
		if game != AllGames && u.Game != models.GameID(game) {
			continue
		}
		result = append(result, u)
	}

	if q.Term != "" {
		term := strings.ToLower(q.Term)
		result = retain(result, func(u models.Unit) bool {
			return matchesTerm(u, term)
		})
	}

	if rarity := q.Rarity; rarity != "" && rarity != AllRarities && knownRarity(units, rarity, rarities) {
		result = retain(result, func(u models.Unit) bool {
			return u.Rarity == models.Rarity(rarity)
		})
	}

	sortUnits(result, q.Sort, rarities)
	return result
}

// matchesTerm reports whether the lower-cased term is a substring of the
// unit's name, rarity, or any trait
func matchesTerm(u models.Unit, term string) bool {
	if strings.Contains(strings.ToLower(u.Name), term) {
		return true
	}
	if strings.Contains(strings.ToLower(string(u.Rarity)), term) {
		return true
	}
	for _, t := range u.Traits {
		if strings.Contains(strings.ToLower(t), term) {
			return true
		}
	}
	return false
}

// knownRarity treats a filter as recognized when the table lists it or
// some unit in the catalog carries it
func knownRarity(units []models.Unit, r RarityFilter, rarities *RarityTable) bool {
	if rarities.Contains(models.Rarity(r)) {
		return true
	}
	for _, u := range units {
		if u.Rarity == models.Rarity(r) {
			return true
		}
	}
	return false
}

func retain(units []models.Unit, keep func(models.Unit) bool) []models.Unit {
	out := units[:0]
	for _, u := range units {
		if keep(u) {
			out = append(out, u)
		}
	}
	return out
}

func sortUnits(units []models.Unit, key SortKey, rarities *RarityTable) {
	switch key {
	case Unsorted:
		return
	case ValueAscending:
		sort.SliceStable(units, func(i, j int) bool {
			return units[i].Value < units[j].Value
		})
	case NameAscending, NameDescending:
		// Collators keep internal buffers, so each sort gets its own.
		col := collate.New(language.English)
		desc := key == NameDescending
		sort.SliceStable(units, func(i, j int) bool {
			if desc {
				return col.CompareString(units[j].Name, units[i].Name) < 0
			}
			return col.CompareString(units[i].Name, units[j].Name) < 0
		})
	case RarityOrder:
		sort.SliceStable(units, func(i, j int) bool {
			return rarities.Index(units[i].Rarity) < rarities.Index(units[j].Rarity)
		})
	default:
		sort.SliceStable(units, func(i, j int) bool {
			return units[i].Value > units[j].Value
		})
	}
}
