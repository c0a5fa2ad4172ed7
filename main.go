package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/lmittmann/tint"
	"github.com/ogri-la/addon-catalogue-aggregator-go/src/cli"
)

var APP_VERSION = "unreleased"
var APP_LOC = "https://github.com/ogri-la/addon-catalogue-aggregator-go"

func main() {
	// Parse command line flags
	flags, err := cli.ParseFlags(os.Args, APP_VERSION)
	if err != nil {
		slog.Error("failed to parse flags", "error", err)
		os.Exit(1)
	}

	// Setup logging
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level: flags.LogLevel,
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	handler := cli.NewCommandHandler()

	// Execute command
	switch flags.SubCommand {
	case cli.FetchSubCommand:
		config := flags.FetchConfig
		config.UserAgent = userAgent()

		if err := handler.Fetch(ctx, config); err != nil {
			slog.Error("fetch command failed", "error", err)
			stop()
			os.Exit(1)
		}

	case cli.ValidateSubCommand:
		if err := handler.Validate(ctx, flags.ValidateConfig); err != nil {
			slog.Error("validate command failed", "error", err)
			stop()
			os.Exit(1)
		}

	default:
		slog.Error("unknown subcommand", "subcommand", flags.SubCommand)
		os.Exit(1)
	}
}

func userAgent() string {
	return "addon-catalogue-aggregator-go/" + APP_VERSION + " (" + APP_LOC + ")"
}
