// Package catalog loads the trade show catalog used to anchor matching.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"stand-lead-engine/internal/models"
)

//go:embed tradeshows.yaml
var defaultCatalog []byte

type file struct {
	TradeShows []models.TradeShow `yaml:"tradeshows"`
}

// Catalog is an immutable slug-indexed set of trade shows.
type Catalog struct {
	shows map[string]*models.TradeShow
}

// Default returns the catalog compiled into the binary.
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("embedded trade show catalog is invalid: %v", err))
	}
	return c
}

// Load reads a catalog from path, or returns Default when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read trade show catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML catalog. Slugs are lowercased; duplicates and shows
// without a slug or location are rejected.
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse trade show catalog: %w", err)
	}

	c := &Catalog{shows: make(map[string]*models.TradeShow, len(f.TradeShows))}
	for i := range f.TradeShows {
		show := f.TradeShows[i]
		show.Slug = strings.ToLower(strings.TrimSpace(show.Slug))

		if show.Slug == "" {
			return nil, fmt.Errorf("trade show %d: missing slug", i)
		}
		if show.City == "" || show.Country == "" {
			return nil, fmt.Errorf("trade show %q: missing city or country", show.Slug)
		}
		if _, dup := c.shows[show.Slug]; dup {
			return nil, fmt.Errorf("trade show %q: duplicate slug", show.Slug)
		}
		c.shows[show.Slug] = &show
	}

	return c, nil
}

// Get returns the show with slug, or ErrTradeShowNotFound.
func (c *Catalog) Get(slug string) (*models.TradeShow, error) {
	show, ok := c.shows[strings.ToLower(strings.TrimSpace(slug))]
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrTradeShowNotFound, slug)
	}
	return show, nil
}

// List returns all shows sorted by slug.
func (c *Catalog) List() []*models.TradeShow {
	out := make([]*models.TradeShow, 0, len(c.shows))
	for _, s := range c.shows {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out
}
