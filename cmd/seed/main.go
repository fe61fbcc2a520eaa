package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/meur/unitvalues/internal/catalog"
	"github.com/meur/unitvalues/internal/config"
	"github.com/meur/unitvalues/internal/format"
	"github.com/meur/unitvalues/internal/logging"
	"github.com/meur/unitvalues/internal/storage"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorYellow = "\033[33m"
	colorGreen  = "\033[32m"
	colorCyan   = "\033[36m"
)

func main() {
	configPath := flag.String("config", "config.toml", "Path to TOML config")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	unitsPath := flag.String("units", "", "Units JSON file (overrides config)")
	codesPath := flag.String("codes", "", "Codes JSON file (overrides config)")
	dryRun := flag.Bool("dry-run", false, "Validate and print a summary without writing to the database")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	if *unitsPath != "" {
		cfg.Data.UnitsPath = *unitsPath
	}
	if *codesPath != "" {
		cfg.Data.CodesPath = *codesPath
	}

	log := logging.NewCLI(cfg.LogLevel)
	defer log.Sync()

	rarities := catalog.DefaultRarities()
	if cfg.Data.RaritiesPath != "" {
		rarities, err = catalog.LoadRarities(cfg.Data.RaritiesPath)
		if err != nil {
			log.Fatalf("✗ Failed to load rarity table: %v", err)
		}
	}

	rawUnits, err := os.ReadFile(cfg.Data.UnitsPath)
	if err != nil {
		log.Fatalf("✗ Failed to read units: %v", err)
	}
	units, err := parseUnits(rawUnits, rarities)
	if err != nil {
		log.Fatalf("✗ Invalid units file %s: %v", cfg.Data.UnitsPath, err)
	}

	rawCodes, err := os.ReadFile(cfg.Data.CodesPath)
	if err != nil {
		log.Fatalf("✗ Failed to read codes: %v", err)
	}
	codes, err := parseCodes(rawCodes)
	if err != nil {
		log.Fatalf("✗ Invalid codes file %s: %v", cfg.Data.CodesPath, err)
	}

	fmt.Printf("%s📦 Loaded %s units and %s codes%s\n", colorCyan,
		format.Count(int64(len(units))), format.Count(int64(len(codes))), colorReset)

	var total int64
	for _, u := range units {
		total += u.Value
	}
	for _, rc := range raritySummary(units, rarities) {
		color := colorGreen
		if !rc.Known {
			color = colorYellow
		}
		fmt.Printf("  %s%-14s%s %4d\n", color, rc.Rarity, colorReset, rc.Count)
	}
	fmt.Printf("  combined value: %s gems\n", humanize.Comma(total))

	if *dryRun {
		log.Infof("Dry run: would import %d units and %d codes into %s", len(units), len(codes), cfg.Database.Path)
		return
	}

	store, err := storage.New(cfg.Database.Path)
	if err != nil {
		log.Fatalf("✗ Failed to open database: %v", err)
	}
	defer store.Close()

	existing, err := store.CountUnits()
	if err != nil {
		log.Fatalf("✗ Failed to count existing units: %v", err)
	}

	if err := store.ReplaceUnits(units); err != nil {
		log.Fatalf("✗ Failed to import units: %v", err)
	}
	if err := store.ReplaceCodes(codes); err != nil {
		log.Fatalf("✗ Failed to import codes: %v", err)
	}

	fmt.Printf("%s✓ Imported %d units (replaced %d) and %d codes%s\n", colorGreen, len(units), existing, len(codes), colorReset)
}
