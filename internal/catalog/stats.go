package catalog

import (
	"sort"

	"github.com/meur/unitvalues/internal/models"
)

// maxTopRarities caps Stats.TopRarities
const maxTopRarities = 5

// RarityCount is how many units carry one rarity
type RarityCount struct {
	Rarity models.Rarity `json:"rarity"`
	Count  int           `json:"count"`
}

// Stats summarizes a set of units for overview pages
type Stats struct {
	Count       int           `json:"count"`
	TotalValue  int64         `json:"total_value"`
	AvgValue    int64         `json:"avg_value"`
	MaxValue    int64         `json:"max_value"`
	HighDemand  int           `json:"high_demand"`
	TopRarities []RarityCount `json:"top_rarities"`
}

// Stats summarizes units, usually c.Units() or a query result. The average
// rounds halves up and an empty set has all-zero stats. TopRarities holds
// the most common rarities, ties kept in first-seen order.
func (c *Catalog) Stats(units []models.Unit) Stats {
	st := Stats{Count: len(units), TopRarities: []RarityCount{}}
	if len(units) == 0 {
		return st
	}

	index := make(map[models.Rarity]int)
	for _, u := range units {
		st.TotalValue += u.Value
		if u.Value > st.MaxValue {
			st.MaxValue = u.Value
		}
		if u.Demand == models.DemandHigh || u.Demand == models.DemandVeryHigh {
			st.HighDemand++
		}

		i, ok := index[u.Rarity]
		if !ok {
			i = len(st.TopRarities)
			index[u.Rarity] = i
			st.TopRarities = append(st.TopRarities, RarityCount{Rarity: u.Rarity})
		}
		st.TopRarities[i].Count++
	}

	n := int64(len(units))
	st.AvgValue = st.TotalValue / n
	if 2*(st.TotalValue%n) >= n {
		st.AvgValue++
	}

	sort.SliceStable(st.TopRarities, func(i, j int) bool {
		return st.TopRarities[i].Count > st.TopRarities[j].Count
	})
	if len(st.TopRarities) > maxTopRarities {
		st.TopRarities = st.TopRarities[:maxTopRarities]
	}
	return st
}
