package catalogue

import (
	"github.com/ogri-la/addon-catalogue-aggregator-go/src/adapter"
	"github.com/ogri-la/addon-catalogue-aggregator-go/src/types"
)

const (
	CurseCatalogURL = "https://github.com/casperstorm/ajour-catalog/releases/latest/download/curse.json"
	TukuiCatalogURL = "https://github.com/casperstorm/ajour-catalog/releases/latest/download/tukui.json"
	WowiCatalogURL  = "https://github.com/casperstorm/ajour-catalog/releases/latest/download/wowi.json"
)

// Endpoint is one catalogue to fetch. A nil Adapter means the shared JSON format.
type Endpoint struct {
	Source  types.Source
	URL     string
	Headers map[string]string
	Adapter adapter.Adapter
}

// DefaultEndpoints returns the known catalogues in merge order
func DefaultEndpoints() []Endpoint {
	return []Endpoint{
		{Source: types.CurseSource, URL: CurseCatalogURL},
		{Source: types.TukuiSource, URL: TukuiCatalogURL},
		{Source: types.WowInterfaceSource, URL: WowiCatalogURL},
	}
}

// SelectEndpoints keeps the endpoints for the given sources, preserving
// declared order. No sources means all of them.
func SelectEndpoints(endpoints []Endpoint, sources []types.Source) []Endpoint {
	if len(sources) == 0 {
		return endpoints
	}

	wanted := make(map[types.Source]bool)
	for _, source := range sources {
		wanted[source] = true
	}

	var selected []Endpoint
	for _, endpoint := range endpoints {
		if wanted[endpoint.Source] {
			selected = append(selected, endpoint)
		}
	}
	return selected
}
