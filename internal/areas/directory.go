// Package areas turns the API's region tree into the flat name→id dictionary
// the search form offers.
package areas

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/jonathan/talent-search/internal/logger"
	"github.com/jonathan/talent-search/internal/types"
)

// DefaultCountryID is Kazakhstan.
const DefaultCountryID = "40"

// Fetcher loads the region tree.
type Fetcher interface {
	Areas(ctx context.Context) ([]types.AreaNode, error)
}

// Fallback is served when the dictionary cannot be loaded.
func Fallback() []types.Area {
	return []types.Area{
		{Name: "Алматы", ID: "159"},
		{Name: "Астана", ID: "160"},
		{Name: "Казахстан", ID: "40"},
	}
}

// Directory memoizes the flattened dictionary of one country.
type Directory struct {
	fetcher   Fetcher
	countryID string
	logger    *zap.Logger

	mu     sync.Mutex
	loaded []types.Area
}

// NewDirectory creates a directory for countryID (DefaultCountryID when empty).
func NewDirectory(fetcher Fetcher, countryID string, log *zap.Logger) *Directory {
	if countryID == "" {
		countryID = DefaultCountryID
	}
	return &Directory{
		fetcher:   fetcher,
		countryID: countryID,
		logger:    logger.OrNop(log),
	}
}

// Get returns the sorted dictionary. On failure it returns Fallback together
// with the error; only successful loads are memoized.
func (d *Directory) Get(ctx context.Context) ([]types.Area, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.loaded != nil {
		return cloneAreas(d.loaded), nil
	}

	nodes, err := d.fetcher.Areas(ctx)
	if err != nil {
		d.logger.Warn("failed to load areas, using fallback", zap.Error(err))
		return Fallback(), fmt.Errorf("failed to load areas: %w", err)
	}

	country := findNode(nodes, d.countryID)
	if country == nil {
		err := fmt.Errorf("country %s not found in areas tree", d.countryID)
		d.logger.Warn("failed to load areas, using fallback", zap.Error(err))
		return Fallback(), err
	}

	d.loaded = Flatten(*country)
	return cloneAreas(d.loaded), nil
}

// Flatten lists the node and every descendant, sorted by name. Names are
// unique: when several nodes share a name, the last one visited (depth first)
// keeps it.
func Flatten(root types.AreaNode) []types.Area {
	var out []types.Area
	index := make(map[string]int)
	var walk func(n types.AreaNode)
	walk = func(n types.AreaNode) {
		if i, ok := index[n.Name]; ok {
			out[i].ID = n.ID
		} else {
			index[n.Name] = len(out)
			out = append(out, types.Area{Name: n.Name, ID: n.ID})
		}
		for _, child := range n.Areas {
			walk(child)
		}
	}
	walk(root)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

// DefaultIndex returns the index of the area called name, or 0.
func DefaultIndex(areas []types.Area, name string) int {
	for i, a := range areas {
		if a.Name == name {
			return i
		}
	}
	return 0
}

// IDByName returns the id of the area called name.
func IDByName(areas []types.Area, name string) (string, bool) {
	for _, a := range areas {
		if a.Name == name {
			return a.ID, true
		}
	}
	return "", false
}

// ResolveIDs maps each value to an area id. Numeric values are taken as ids;
// anything else is looked up by name. Blank values are dropped.
func ResolveIDs(areas []types.Area, values []string) ([]string, error) {
	ids := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		switch {
		case v == "":
			continue
		case isNumeric(v):
			ids = append(ids, v)
		default:
			id, ok := IDByName(areas, v)
			if !ok {
				return nil, fmt.Errorf("unknown area %q", v)
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func findNode(nodes []types.AreaNode, id string) *types.AreaNode {
	for i := range nodes {
		if nodes[i].ID == id {
			return &nodes[i]
		}
		if found := findNode(nodes[i].Areas, id); found != nil {
			return found
		}
	}
	return nil
}

func cloneAreas(in []types.Area) []types.Area {
	return append([]types.Area(nil), in...)
}
