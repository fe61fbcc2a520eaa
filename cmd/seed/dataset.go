package main

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/meur/unitvalues/internal/catalog"
	"github.com/meur/unitvalues/internal/models"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	//go:embed schemas/units.schema.json
	unitsSchemaJSON string
	//go:embed schemas/codes.schema.json
	codesSchemaJSON string

	unitsSchema = jsonschema.MustCompileString("units.schema.json", unitsSchemaJSON)
	codesSchema = jsonschema.MustCompileString("codes.schema.json", codesSchemaJSON)
)

// stableID derives a deterministic unit ID so re-seeding keeps links valid
func stableID(game models.GameID, name string) string {
	input := fmt.Sprintf("%s:%s", game, name)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(input)).String()
}

// validate checks raw JSON against a schema before it is decoded
func validate(schema *jsonschema.Schema, raw []byte) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return err
	}
	return schema.Validate(doc)
}

// parseUnits validates and normalizes a units file. Names are trimmed,
// missing slugs and IDs are derived, and the result is run through
// catalog.New so anything the server would reject fails here.
func parseUnits(raw []byte, rarities *catalog.RarityTable) ([]models.Unit, error) {
	if err := validate(unitsSchema, raw); err != nil {
		return nil, err
	}

	var units []models.Unit
	if err := json.Unmarshal(raw, &units); err != nil {
		return nil, err
	}

	for i := range units {
		u := &units[i]
		u.Name = strings.TrimSpace(u.Name)
		if u.Slug == "" {
			u.Slug = catalog.Slugify(u.Name)
		}
		if u.ID == "" {
			u.ID = stableID(u.Game, u.Name)
		}
	}

	if _, err := catalog.New(units, rarities); err != nil {
		return nil, err
	}
	return units, nil
}

// parseCodes validates a codes file
func parseCodes(raw []byte) ([]models.Code, error) {
	if err := validate(codesSchema, raw); err != nil {
		return nil, err
	}

	var codes []models.Code
	if err := json.Unmarshal(raw, &codes); err != nil {
		return nil, err
	}
	for i := range codes {
		codes[i].Code = strings.TrimSpace(codes[i].Code)
	}
	return codes, nil
}

// raritySummary counts units per tier in table order; tiers missing from
// the table are appended last in first-seen order
func raritySummary(units []models.Unit, rarities *catalog.RarityTable) []rarityCount {
	counts := make(map[models.Rarity]int)
	var unknown []models.Rarity
	for _, u := range units {
		if counts[u.Rarity] == 0 && !rarities.Contains(u.Rarity) {
			unknown = append(unknown, u.Rarity)
		}
		counts[u.Rarity]++
	}

	var out []rarityCount
	for _, tier := range rarities.Tiers() {
		r := models.Rarity(tier.Name)
		if counts[r] > 0 {
			out = append(out, rarityCount{Rarity: r, Count: counts[r], Known: true})
		}
	}
	for _, r := range unknown {
		out = append(out, rarityCount{Rarity: r, Count: counts[r]})
	}
	return out
}

type rarityCount struct {
	Rarity models.Rarity
	Count  int
	Known  bool
}
