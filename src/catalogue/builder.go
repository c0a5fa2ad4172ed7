package catalogue

import (
	"slices"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/ogri-la/addon-catalogue-aggregator-go/src/types"
)

// Predicate selects addons from a catalogue
type Predicate func(types.CatalogAddon) bool

// FilterCatalogue returns a new catalogue with the addons matching every predicate,
// in their original order
func FilterCatalogue(catalog types.Catalog, predicates ...Predicate) types.Catalog {
	filtered := make([]types.CatalogAddon, 0, len(catalog.Addons))

	for _, addon := range catalog.Addons {
		if matchesAll(addon, predicates) {
			filtered = append(filtered, addon)
		}
	}

	return types.Catalog{Addons: filtered}
}

func matchesAll(addon types.CatalogAddon, predicates []Predicate) bool {
	for _, predicate := range predicates {
		if !predicate(addon) {
			return false
		}
	}
	return true
}

// ShortenCatalogue drops unmaintained addons: those released before the cutoff
// and those with no known release date
func ShortenCatalogue(catalog types.Catalog, cutoffDate time.Time) types.Catalog {
	return FilterCatalogue(catalog, ReleasedSince(cutoffDate))
}

// ReleasedSince matches addons released on or after cutoff
func ReleasedSince(cutoff time.Time) Predicate {
	return func(addon types.CatalogAddon) bool {
		return addon.DateReleased != nil && !addon.DateReleased.Before(cutoff)
	}
}

// BySource matches addons from any of the given sources
func BySource(sources ...types.Source) Predicate {
	return func(addon types.CatalogAddon) bool {
		return slices.Contains(sources, addon.Source)
	}
}

// ByFlavor matches addons with a game version for any of the given flavors.
// The legacy flavors list is not consulted.
func ByFlavor(flavors ...types.Flavor) Predicate {
	return func(addon types.CatalogAddon) bool {
		for _, flavor := range flavors {
			if addon.SupportsFlavor(flavor) {
				return true
			}
		}
		return false
	}
}

// Search matches addons whose slugified name contains the slugified query,
// so "Deadly Boss Mods" finds "deadly-boss-mods-dbm"
func Search(query string) Predicate {
	needle := slug.Make(query)
	return func(addon types.CatalogAddon) bool {
		if needle == "" {
			return true
		}
		return strings.Contains(slug.Make(addon.Name), needle)
	}
}
