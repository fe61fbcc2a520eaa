package models

// GameID identifies one of the supported titles
type GameID string

const (
	GameSkibiDefense       GameID = "skibi-defense"
	GameToiletTowerDefense GameID = "toilet-tower-defense"
)

// Game represents a supported title
type Game struct {
	ID        GameID `json:"id"`
	Name      string `json:"name"`
	Short     string `json:"short"`
	UnitCount int    `json:"unit_count"`
}

// Games returns both supported titles in display order
func Games() []Game {
	return []Game{
		{ID: GameSkibiDefense, Name: "Skibi Defense", Short: "SD"},
		{ID: GameToiletTowerDefense, Name: "Toilet Tower Defense", Short: "TTD"},
	}
}

// Valid reports whether id names a supported title
func (id GameID) Valid() bool {
	return id == GameSkibiDefense || id == GameToiletTowerDefense
}

// DisplayName returns the title name, falling back to the raw ID
func (id GameID) DisplayName() string {
	for _, g := range Games() {
		if g.ID == id {
			return g.Name
		}
	}
	return string(id)
}

// RarityTier defines one entry of the ordered rarity table
type RarityTier struct {
	Name        Rarity `json:"name" yaml:"name"`
	Slug        string `json:"slug" yaml:"slug"`
	Color       string `json:"color" yaml:"color"`       // text/border accent
	Gradient    string `json:"gradient" yaml:"gradient"` // badge background
	Description string `json:"description" yaml:"description"`
	Order       int    `json:"order" yaml:"-"`
}
