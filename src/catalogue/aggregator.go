package catalogue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ogri-la/addon-catalogue-aggregator-go/src/adapter"
	"github.com/ogri-la/addon-catalogue-aggregator-go/src/http"
	"github.com/ogri-la/addon-catalogue-aggregator-go/src/metrics"
	"github.com/ogri-la/addon-catalogue-aggregator-go/src/types"
	"github.com/ogri-la/addon-catalogue-aggregator-go/src/validation"
	"golang.org/x/sync/errgroup"
)

// SourceResult is the outcome of fetching and decoding one endpoint
type SourceResult struct {
	Source     types.Source
	URL        string
	StatusCode int
	Addons     []types.CatalogAddon
	Err        error
	Duration   time.Duration
}

func (r SourceResult) OK() bool {
	return r.Err == nil
}

// Aggregator fetches every endpoint concurrently and merges the results
type Aggregator struct {
	client    http.HTTPClient
	endpoints []Endpoint
	adapter   adapter.Adapter
	timeout   time.Duration
}

// NewAggregator creates an aggregator over endpoints, merged in the given order
func NewAggregator(client http.HTTPClient, endpoints []Endpoint, policy adapter.Policy, timeout time.Duration) *Aggregator {
	return &Aggregator{
		client:    client,
		endpoints: endpoints,
		adapter:   adapter.NewJSONAdapter(policy),
		timeout:   timeout,
	}
}

// FetchCatalog returns the addons of every source that succeeded, in
// endpoint order. Failed sources contribute nothing.
func (a *Aggregator) FetchCatalog(ctx context.Context) types.Catalog {
	return Merge(a.FetchSources(ctx))
}

// FetchSources fetches all endpoints concurrently and returns one result per
// endpoint, in endpoint order regardless of completion order.
func (a *Aggregator) FetchSources(ctx context.Context) []SourceResult {
	results := make([]SourceResult, len(a.endpoints))

	var g errgroup.Group
	for i, endpoint := range a.endpoints {
		g.Go(func() error {
			results[i] = a.fetchSource(ctx, endpoint)
			return nil
		})
	}
	_ = g.Wait() // fetchSource never fails the group

	failed := 0
	for _, result := range results {
		metrics.RecordSourceFetch(result.Source.String(), result.OK(), result.Duration, len(result.Addons))
		if !result.OK() {
			failed++
			slog.Warn("catalogue source failed", "source", result.Source, "url", result.URL, "status", result.StatusCode, "error", result.Err)
		}
	}
	if failed > 0 && failed == len(results) {
		slog.Error("every catalogue source failed, catalogue is empty", "sources", len(results))
	}

	return results
}

// fetchSource downloads and decodes a single endpoint. Errors are returned in
// the result, never raised.
func (a *Aggregator) fetchSource(ctx context.Context, endpoint Endpoint) (result SourceResult) {
	result = SourceResult{Source: endpoint.Source, URL: endpoint.URL}
	start := time.Now()
	defer func() { result.Duration = time.Since(start) }()

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	if err := validation.ValidateEndpoint(validation.Endpoint{Source: endpoint.Source, URL: endpoint.URL}); err != nil {
		result.Err = err
		return result
	}

	slog.Debug("fetching catalogue", "source", endpoint.Source, "url", endpoint.URL)
	resp, err := a.client.Get(ctx, endpoint.URL, endpoint.Headers)
	if err != nil {
		result.Err = fmt.Errorf("failed to fetch %s catalogue: %w", endpoint.Source, err)
		return result
	}
	result.StatusCode = resp.StatusCode

	if !resp.IsSuccess() {
		result.Err = fmt.Errorf("non-2xx status code %d for %s catalogue", resp.StatusCode, endpoint.Source)
		return result
	}

	decoder := endpoint.Adapter
	if decoder == nil {
		decoder = a.adapter
	}

	addons, err := decoder.Decode(endpoint.Source, resp.Body)
	if err != nil {
		result.Err = fmt.Errorf("failed to decode %s catalogue: %w", endpoint.Source, err)
		return result
	}

	result.Addons = addons
	slog.Info("fetched catalogue", "source", endpoint.Source, "addons", len(addons))
	return result
}

// Merge concatenates successful results in the order given
func Merge(results []SourceResult) types.Catalog {
	total := 0
	for _, result := range results {
		total += len(result.Addons)
	}

	addons := make([]types.CatalogAddon, 0, total)
	for _, result := range results {
		if result.OK() {
			addons = append(addons, result.Addons...)
		}
	}
	return types.Catalog{Addons: addons}
}

// Config holds everything FetchCatalog needs to build its own client
type Config struct {
	Endpoints []Endpoint
	Client    http.ClientConfig
	Policy    adapter.Policy

	// HTTPClient replaces the client built from Client when set
	HTTPClient http.HTTPClient
}

// FetchCatalog builds a fresh HTTP client and aggregates every endpoint.
// It fails only when the HTTP client cannot be built; a bad endpoint fails
// just its own source.
func FetchCatalog(ctx context.Context, config Config) (types.Catalog, error) {
	aggregator, err := NewAggregatorFromConfig(config)
	if err != nil {
		return types.Catalog{}, err
	}
	return aggregator.FetchCatalog(ctx), nil
}

// NewAggregatorFromConfig builds the client unless one is supplied
func NewAggregatorFromConfig(config Config) (*Aggregator, error) {
	client := config.HTTPClient
	if client == nil {
		realClient, err := http.NewRealHTTPClient(config.Client)
		if err != nil {
			return nil, fmt.Errorf("failed to create http client: %w", err)
		}
		client = realClient
	}

	return NewAggregator(client, config.Endpoints, config.Policy, config.Client.Timeout()), nil
}
