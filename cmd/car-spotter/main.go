package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/ironsheep/car-spotter/internal/config"
	"github.com/ironsheep/car-spotter/internal/logging"
	"github.com/ironsheep/car-spotter/internal/ocr"
	"github.com/ironsheep/car-spotter/internal/pipeline"
	"github.com/ironsheep/car-spotter/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			printVersion()
			return
		case "--help", "-h", "help":
			printHelp()
			return
		case "detect":
			os.Exit(runDetect(os.Args[2:]))
		}
	}

	os.Exit(runServer())
}

func printVersion() {
	fmt.Printf("car-spotter %s\n", Version)
	fmt.Printf("  Build time: %s\n", BuildTime)
	fmt.Printf("  Git commit: %s\n", GitCommit)

	info := ocr.Info()
	if info.Available {
		fmt.Printf("  OCR: %s %s\n", info.Backend, info.Version)
	} else {
		fmt.Printf("  OCR: unavailable (%s)\n", info.Error)
	}
}

func printHelp() {
	fmt.Println("car-spotter - vehicle detection from photos, served over MCP")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  car-spotter                       Run the MCP server on stdin/stdout")
	fmt.Println("  car-spotter detect <path> [lat lon]  Run detection once and print JSON")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  CAR_SPOTTER_CONFIG=<file>          Config file (yaml, toml or json)")
	fmt.Println("  CAR_SPOTTER_LOG_LEVEL=debug        Log level")
	fmt.Println("  CAR_SPOTTER_LOG_FILE=<file>        Also log to a rotating file")
	fmt.Println("  CAR_SPOTTER_LOG_CONSOLE=true       Human-readable logs")
	fmt.Println("  CAR_SPOTTER_OCR_LANGUAGE=eng       Tesseract language")
	fmt.Println("  CAR_SPOTTER_TESSDATA_PREFIX=<dir>  Tesseract data directory")
	fmt.Println("  CAR_SPOTTER_OCR_REGION_SCAN=true   Also read plate-shaped regions")
	fmt.Println("  CAR_SPOTTER_MAX_IMAGE_SIDE=1024    Scan larger photos at this size")
	fmt.Println()
	fmt.Println("Variables may also be set in a .env file in the working directory.")
	fmt.Println("Logs go to stderr; stdout carries the MCP protocol.")
}

// setup loads configuration and builds the logger. The returned cleanup
// closes the log file.
func setup() (*config.Config, zerolog.Logger, func(), error) {
	cfg, err := config.Load(os.Getenv(config.EnvPrefix + "_CONFIG"))
	if err != nil {
		return nil, zerolog.Nop(), nil, err
	}

	log, closer, err := logging.New(logging.Options{
		Level:   cfg.LogLevel,
		File:    cfg.LogFile,
		Console: cfg.LogConsole,
	})
	if err != nil {
		return nil, zerolog.Nop(), nil, err
	}
	return cfg, log, func() { _ = closer.Close() }, nil
}

func runServer() int {
	cfg, log, cleanup, err := setup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "car-spotter: %v\n", err)
		return 1
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Debug().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("commit", GitCommit).
		Msg("starting")

	srv := server.New(cfg, log, server.WithVersion(Version))
	if err := srv.Run(ctx, os.Stdin, os.Stdout); err != nil && ctx.Err() == nil {
		log.Error().Err(err).Msg("server error")
		return 1
	}
	return 0
}

func runDetect(args []string) int {
	if len(args) != 1 && len(args) != 3 {
		fmt.Fprintln(os.Stderr, "usage: car-spotter detect <path> [lat lon]")
		return 2
	}

	var loc *pipeline.Location
	if len(args) == 3 {
		lat, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "car-spotter: invalid latitude %q\n", args[1])
			return 2
		}
		lon, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "car-spotter: invalid longitude %q\n", args[2])
			return 2
		}
		loc = &pipeline.Location{Latitude: lat, Longitude: lon}
	}

	cfg, log, cleanup, err := setup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "car-spotter: %v\n", err)
		return 1
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg, log, server.WithVersion(Version))
	result, err := srv.DetectFile(ctx, args[0], loc)
	if err != nil {
		log.Error().Err(err).Str("path", args[0]).Msg("detection failed")
		return 1
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		log.Error().Err(err).Msg("failed to encode result")
		return 1
	}
	return 0
}
