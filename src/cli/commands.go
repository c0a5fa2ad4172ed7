package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	json "github.com/goccy/go-json"
	"github.com/ogri-la/addon-catalogue-aggregator-go/src/adapter"
	"github.com/ogri-la/addon-catalogue-aggregator-go/src/cache"
	"github.com/ogri-la/addon-catalogue-aggregator-go/src/catalogue"
	"github.com/ogri-la/addon-catalogue-aggregator-go/src/http"
	"github.com/ogri-la/addon-catalogue-aggregator-go/src/metrics"
	"github.com/ogri-la/addon-catalogue-aggregator-go/src/types"
	"github.com/ogri-la/addon-catalogue-aggregator-go/src/validation"
)

// FetchConfig holds configuration for fetching
type FetchConfig struct {
	HTTPClient      http.HTTPClient
	Endpoints       []catalogue.Endpoint
	OutputFiles     []string
	Sources         []types.Source
	Flavors         []types.Flavor
	Since           time.Time
	Search          string
	Policy          adapter.Policy
	TimeoutSeconds  int
	MaxConnsPerHost int
	CacheDir        string
	CacheTTLHours   int
	MetricsFile     string
	UserAgent       string
}

// ValidateConfig holds configuration for validating catalogue files
type ValidateConfig struct {
	Files []string
}

// CommandHandler handles CLI commands
type CommandHandler struct {
	stdout io.Writer
}

// NewCommandHandler creates a new command handler
func NewCommandHandler() *CommandHandler {
	return &CommandHandler{
		stdout: os.Stdout,
	}
}

// Fetch executes the fetch command
func (h *CommandHandler) Fetch(ctx context.Context, config FetchConfig) error {
	endpoints := config.Endpoints
	if endpoints == nil {
		endpoints = catalogue.DefaultEndpoints()
	}
	endpoints = catalogue.SelectEndpoints(endpoints, config.Sources)

	slog.Info("starting fetch command", "sources", len(endpoints), "policy", config.Policy)

	clientConfig := config.ClientConfig()
	if config.HTTPClient == nil && config.CacheDir != "" {
		slog.Info("caching responses", "dir", config.CacheDir, "ttl", config.CacheTTL())
		clientConfig.Transport = cache.NewFileCachingTransport(
			cache.CacheConfig{Directory: config.CacheDir, TTL: config.CacheTTL()},
			http.NewPooledTransport(config.MaxConnsPerHost),
		)
	}

	aggregator, err := catalogue.NewAggregatorFromConfig(catalogue.Config{
		Endpoints:  endpoints,
		Client:     clientConfig,
		Policy:     config.Policy,
		HTTPClient: config.HTTPClient,
	})
	if err != nil {
		return err
	}

	results := aggregator.FetchSources(ctx)
	healthy := 0
	for _, result := range results {
		if result.OK() {
			healthy++
		}
		slog.Info("source summary", "source", result.Source, "ok", result.OK(), "addons", len(result.Addons), "duration", result.Duration.Round(time.Millisecond))
	}

	catalog := catalogue.FilterCatalogue(catalogue.Merge(results), h.predicates(config)...)
	slog.Info("built catalogue", "total-addons", catalog.Len())
	for source, count := range catalog.AddonCount() {
		slog.Debug("addons by source", "source", source, "count", count)
	}

	if err := h.writeCatalogue(catalog, config.OutputFiles); err != nil {
		return err
	}

	metrics.RecordCatalogue(catalog.Len(), healthy, time.Now())
	if config.MetricsFile != "" {
		if err := metrics.WriteTextfile(config.MetricsFile); err != nil {
			return err
		}
		slog.Info("wrote metrics", "file", config.MetricsFile)
	}

	return nil
}

// ClientConfig is the HTTP client configuration implied by the fetch flags
func (c FetchConfig) ClientConfig() http.ClientConfig {
	clientConfig := http.DefaultClientConfig(c.UserAgent)
	clientConfig.TimeoutSeconds = c.TimeoutSeconds
	clientConfig.MaxConnsPerHost = c.MaxConnsPerHost
	return clientConfig
}

// CacheTTL is the configured cache lifetime
func (c FetchConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLHours) * time.Hour
}

// predicates turns the fetch filters into catalogue predicates
func (h *CommandHandler) predicates(config FetchConfig) []catalogue.Predicate {
	var predicates []catalogue.Predicate
	if len(config.Flavors) > 0 {
		predicates = append(predicates, catalogue.ByFlavor(config.Flavors...))
	}
	if !config.Since.IsZero() {
		predicates = append(predicates, catalogue.ReleasedSince(config.Since))
	}
	if config.Search != "" {
		predicates = append(predicates, catalogue.Search(config.Search))
	}
	return predicates
}

// Validate executes the validate command
func (h *CommandHandler) Validate(ctx context.Context, config ValidateConfig) error {
	failed := 0
	for _, file := range config.Files {
		report, err := validation.ValidateCatalogueFile(file)
		if err != nil {
			slog.Error("failed to read catalogue", "file", file, "error", err)
			failed++
			continue
		}

		slog.Info("validated catalogue", "file", file, "total", report.Total, "valid", report.Valid, "undated", report.Undated)
		for source, count := range report.BySource {
			slog.Debug("addons by source", "file", file, "source", source, "count", count)
		}

		if err := report.Err(); err != nil {
			slog.Error("invalid catalogue", "file", file, "error", err)
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d catalogues failed validation", failed, len(config.Files))
	}
	return nil
}

// writeCatalogue writes the catalogue to the specified output files
func (h *CommandHandler) writeCatalogue(catalog types.Catalog, outputFiles []string) error {
	jsonData, err := json.MarshalIndent(catalog, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal catalogue: %w", err)
	}

	if len(outputFiles) == 0 {
		fmt.Fprintln(h.stdout, string(jsonData))
		return nil
	}

	for _, outputFile := range outputFiles {
		if err := os.WriteFile(outputFile, jsonData, 0644); err != nil {
			return fmt.Errorf("failed to write catalogue to %s: %w", outputFile, err)
		}
		slog.Info("wrote catalogue", "file", outputFile, "addons", catalog.Len())
	}

	return nil
}
