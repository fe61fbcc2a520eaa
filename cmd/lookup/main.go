// Command lookup is a terminal search-as-you-type over the unit catalog.
// Each stdin line is a query; rapid lines collapse into the latest one.
//
// A line is a free-text term plus optional game:, rarity: and sort: tokens,
// for example "titan rarity:godly sort:name-asc".
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/meur/unitvalues/internal/catalog"
	"github.com/meur/unitvalues/internal/config"
	"github.com/meur/unitvalues/internal/format"
	"github.com/meur/unitvalues/internal/logging"
	"github.com/meur/unitvalues/internal/models"
)

func main() {
	configPath := flag.String("config", "config.toml", "Path to TOML config")
	unitsPath := flag.String("units", "", "Units JSON file (overrides config)")
	delay := flag.Duration("delay", 0, "Debounce delay (overrides config)")
	limit := flag.Int("limit", 10, "Maximum results to print")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *unitsPath != "" {
		cfg.Data.UnitsPath = *unitsPath
	}
	if *delay > 0 {
		cfg.Search.Debounce.Duration = *delay
	}

	log := logging.NewCLI(cfg.LogLevel)
	defer log.Sync()

	rarities := catalog.DefaultRarities()
	if cfg.Data.RaritiesPath != "" {
		if rarities, err = catalog.LoadRarities(cfg.Data.RaritiesPath); err != nil {
			log.Fatalf("Failed to load rarity table: %v", err)
		}
	}

	cat, err := catalog.LoadFile(cfg.Data.UnitsPath, rarities)
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}
	log.Debugf("loaded %d units from %s", cat.Len(), cfg.Data.UnitsPath)

	p := &printer{out: os.Stdout, limit: *limit, total: cat.Len(), done: make(chan catalog.Query, 1)}
	d := catalog.NewDebouncer(cfg.DebounceDelay(), catalog.CatalogSearch(cat), p.deliver)
	defer d.Stop()

	last, submitted := run(os.Stdin, d, rarities)
	if !submitted {
		return
	}

	// Wait for the final query so piped input still prints something
	timeout := time.After(cfg.DebounceDelay() + time.Second)
	for {
		select {
		case q := <-p.done:
			if q == last {
				return
			}
		case <-timeout:
			log.Warnf("no result for %q before exit", last.Term)
			return
		}
	}
}

// run submits every non-empty line and returns the last query
func run(r io.Reader, d *catalog.Debouncer, rarities *catalog.RarityTable) (catalog.Query, bool) {
	var last catalog.Query
	submitted := false

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		last = parseLine(line, rarities)
		submitted = true
		d.Submit(last)
	}
	return last, submitted
}

// parseLine splits key:value tokens from the free-text term
func parseLine(line string, rarities *catalog.RarityTable) catalog.Query {
	var q catalog.Query
	var terms []string
	for _, field := range strings.Fields(line) {
		key, value, ok := strings.Cut(field, ":")
		if !ok {
			terms = append(terms, field)
			continue
		}
		switch strings.ToLower(key) {
		case "game":
			q.Game = catalog.ParseGameFilter(value)
		case "rarity":
			q.Rarity = catalog.ParseRarityFilter(value, rarities)
		case "sort":
			q.Sort = catalog.ParseSortKey(value)
		default:
			terms = append(terms, field)
		}
	}
	q.Term = strings.Join(terms, " ")
	return q
}

type printer struct {
	out   io.Writer
	limit int
	total int
	done  chan catalog.Query
}

// deliver runs under the debouncer's lock
func (p *printer) deliver(q catalog.Query, units []models.Unit) {
	fmt.Fprintf(p.out, "%q: %d of %s units\n", q.Term, len(units), format.Count(int64(p.total)))
	for i, u := range units {
		if i == p.limit {
			fmt.Fprintf(p.out, "  ... %d more\n", len(units)-p.limit)
			break
		}
		fmt.Fprintf(p.out, "  %-28s %-12s %8s %s %s\n", u.Name, u.Rarity, format.Value(u.Value), u.Trend.Symbol(), u.Game.DisplayName())
	}

	select {
	case p.done <- q:
	default:
		// drop the stale signal so the newest one fits
		select {
		case <-p.done:
		default:
		}
		select {
		case p.done <- q:
		default:
		}
	}
}
