package cli

import (
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/ogri-la/addon-catalogue-aggregator-go/src/adapter"
	"github.com/ogri-la/addon-catalogue-aggregator-go/src/http"
	"github.com/ogri-la/addon-catalogue-aggregator-go/src/timestamp"
	"github.com/ogri-la/addon-catalogue-aggregator-go/src/types"
	flag "github.com/spf13/pflag"
)

// SubCommand represents CLI subcommands
type SubCommand string

const (
	FetchSubCommand    SubCommand = "fetch"
	ValidateSubCommand SubCommand = "validate"
)

var KnownSubCommands = []SubCommand{FetchSubCommand, ValidateSubCommand}

// Flags holds all CLI flags and configuration
type Flags struct {
	SubCommand     SubCommand
	LogLevel       slog.Level
	FetchConfig    FetchConfig
	ValidateConfig ValidateConfig
	ShowHelp       bool
	ShowVersion    bool
}

// ParseFlags parses command line arguments and returns configuration
func ParseFlags(args []string, version string) (*Flags, error) {
	flags := &Flags{}

	// Global flags
	defaults := flag.NewFlagSet("addon-catalogue-aggregator", flag.ContinueOnError)
	defaults.BoolVarP(&flags.ShowHelp, "help", "h", false, "print this help and exit")
	defaults.BoolVarP(&flags.ShowVersion, "version", "V", false, "print program version and exit")

	var logLevelStr string
	defaults.StringVar(&logLevelStr, "log-level", "info", "verbosity level. one of: debug, info, warn, error")

	// Determine subcommand
	var subcommand string
	if len(args) > 1 {
		subcommand = args[1]
	}

	var flagset *flag.FlagSet
	fetchConfig := FetchConfig{}
	validateConfig := ValidateConfig{}

	var sourcesStr, flavorsStr []string
	var sinceStr string
	var skipBadRecords bool

	switch subcommand {
	case string(FetchSubCommand):
		flagset = flag.NewFlagSet("fetch", flag.ContinueOnError)
		flagset.StringArrayVar(&fetchConfig.OutputFiles, "out", []string{}, "write catalogue to file (default: stdout)")
		flagset.StringArrayVar(&sourcesStr, "source", []string{}, "sources to fetch, one of: curse, tukui, wowi (default: all)")
		flagset.StringArrayVar(&flavorsStr, "flavor", []string{}, "keep addons supporting this flavor, e.g. retail")
		flagset.StringVar(&sinceStr, "since", "", "keep addons released on or after this date (YYYY-MM-DD)")
		flagset.StringVar(&fetchConfig.Search, "search", "", "keep addons whose name matches")
		flagset.BoolVar(&skipBadRecords, "skip-bad-records", false, "drop malformed addons instead of the whole source")
		flagset.IntVar(&fetchConfig.TimeoutSeconds, "timeout", http.DefaultTimeoutSeconds, "per-source timeout in seconds")
		flagset.IntVar(&fetchConfig.MaxConnsPerHost, "max-conns", http.DefaultMaxConnsPerHost, "maximum connections per host")
		flagset.StringVar(&fetchConfig.CacheDir, "cache-dir", "", "cache successful responses here (default: no cache)")
		flagset.IntVar(&fetchConfig.CacheTTLHours, "cache-ttl", 24, "hours a cached response stays fresh")
		flagset.StringVar(&fetchConfig.MetricsFile, "metrics-file", "", "write Prometheus metrics to this textfile after fetching")
		flagset.AddFlagSet(defaults)

	case string(ValidateSubCommand):
		flagset = flag.NewFlagSet("validate", flag.ContinueOnError)
		flagset.AddFlagSet(defaults)

	default:
		flagset = defaults
	}

	// Parse flags
	if err := flagset.Parse(args); err != nil {
		return nil, fmt.Errorf("failed to parse flags: %w", err)
	}

	// Handle help and version
	if flags.ShowHelp {
		printUsage(flagset)
		os.Exit(0)
	}

	if flags.ShowVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	// Validate subcommand
	if subcommand == "" || !slices.Contains(KnownSubCommands, SubCommand(subcommand)) {
		printUsage(flagset)
		return nil, fmt.Errorf("unknown subcommand: %s", subcommand)
	}

	// Parse log level
	logLevelMap := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}

	logLevel, exists := logLevelMap[logLevelStr]
	if !exists {
		return nil, fmt.Errorf("unknown log level: %s", logLevelStr)
	}

	switch SubCommand(subcommand) {
	case FetchSubCommand:
		for _, sourceStr := range sourcesStr {
			source, err := types.ParseSource(sourceStr)
			if err != nil {
				return nil, err
			}
			fetchConfig.Sources = append(fetchConfig.Sources, source)
		}

		for _, flavorStr := range flavorsStr {
			fetchConfig.Flavors = append(fetchConfig.Flavors, types.Flavor(flavorStr))
		}

		if sinceStr != "" {
			since, ok := timestamp.Parse(sinceStr)
			if !ok {
				return nil, fmt.Errorf("unknown date for --since: %s", sinceStr)
			}
			fetchConfig.Since = since
		}

		if skipBadRecords {
			fetchConfig.Policy = adapter.SkipRecord
		}

		if fetchConfig.CacheTTLHours <= 0 {
			return nil, fmt.Errorf("--cache-ttl must be positive: %d", fetchConfig.CacheTTLHours)
		}

	case ValidateSubCommand:
		// positional args after the program name and subcommand
		validateConfig.Files = flagset.Args()[2:]
		if len(validateConfig.Files) == 0 {
			return nil, fmt.Errorf("validate needs at least one catalogue file")
		}
	}

	// Assign parsed values
	flags.SubCommand = SubCommand(subcommand)
	flags.LogLevel = logLevel
	flags.FetchConfig = fetchConfig
	flags.ValidateConfig = validateConfig

	return flags, nil
}

// printUsage prints usage information
func printUsage(flagset *flag.FlagSet) {
	fmt.Println("usage: addon-catalogue-aggregator <fetch|validate> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  fetch     Fetch every addon catalogue and write one merged catalogue")
	fmt.Println("  validate  Check catalogue files for malformed addons")
	fmt.Println()
	fmt.Println("Options:")
	flagset.PrintDefaults()
}
