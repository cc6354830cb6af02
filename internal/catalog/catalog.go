package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/saeedyasen/travelbot/core/logger"
	"log/slog"
)

// Area names form a closed set and double as button labels.
const (
	AreaNorth  = "North"
	AreaCentre = "Centre"
	AreaSouth  = "South"
)

// Trip is a single catalog entry. Field names follow the catalog file.
type Trip struct {
	Title               string `json:"title"`
	Area                string `json:"area"`
	Place               string `json:"place"`
	Description         string `json:"description"`
	ImageURL            string `json:"image_url"`
	ExpandedDescription string `json:"expanded_description,omitempty"`
}

// Catalog holds the trip list loaded at startup. Immutable after Load.
type Catalog struct {
	trips []Trip
}

// Load reads the catalog JSON array from path. Entries missing a title or an
// area are rejected; order is preserved as browsing order.
func Load(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}

	var trips []Trip
	if err := json.Unmarshal(raw, &trips); err != nil {
		return nil, fmt.Errorf("catalog: parse %s: %w", path, err)
	}

	for i, t := range trips {
		if t.Title == "" || t.Area == "" {
			return nil, fmt.Errorf("catalog: entry %d missing title or area", i)
		}
	}

	logger.Info(logger.Background(), "service.catalog", "catalog.load",
		slog.String("path", path),
		slog.Int("trips", len(trips)),
	)

	return &Catalog{trips: trips}, nil
}

// ByArea returns trips whose area equals the given tag, in catalog order.
func (c *Catalog) ByArea(area string) []Trip {
	var out []Trip
	for _, t := range c.trips {
		if t.Area == area {
			out = append(out, t)
		}
	}
	return out
}

// Areas returns the closed area set in presentation order.
func (c *Catalog) Areas() []string {
	return []string{AreaNorth, AreaCentre, AreaSouth}
}

// Len reports the total number of catalog entries.
func (c *Catalog) Len() int {
	return len(c.trips)
}
