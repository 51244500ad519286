package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/iconidentify/learnvid/internal/app"
	"github.com/iconidentify/learnvid/internal/classifier"
	"github.com/iconidentify/learnvid/internal/config"
	"github.com/iconidentify/learnvid/internal/domain"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

const usage = `Usage: learnvid-ingest [flags] <command>

Commands:
  run         search, insert and validate (ingest followed by sweep)
  ingest      search and insert candidates as pending
  sweep       validate every pending row
  revalidate  re-check every valid row
  stats       print store statistics

Flags:
`

func main() {
	// Parse flags
	configPath := flag.String("config", "", "Path to config file")
	subjects := flag.String("subjects", "", "Comma-separated subjects (default: configured subjects)")
	classLevels := flag.String("class-levels", "", "Comma-separated class levels (default: configured class levels)")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showVersion {
		fmt.Printf("learnvid-ingest %s (built %s)\n", Version, BuildTime)
		os.Exit(0)
	}
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	command := flag.Arg(0)

	// Setup logger
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer deps.Close()

	matrix, err := parseMatrix(deps.Classifier, *subjects, *classLevels, cfg.Ingestion)
	if err != nil {
		logger.Error("invalid matrix", "error", err)
		os.Exit(2)
	}

	var result any
	switch command {
	case "run":
		result, err = deps.Ingestion.Run(ctx, matrix)
	case "ingest":
		result, err = deps.Ingestion.Ingest(ctx, matrix)
	case "sweep":
		result, err = deps.Ingestion.Sweep(ctx)
	case "revalidate":
		result, err = deps.Ingestion.Revalidate(ctx)
	case "stats":
		result, err = deps.Store.Stats(ctx)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		logger.Error(command+" failed", "error", err)
		os.Exit(1)
	}

	if err := printJSON(os.Stdout, result); err != nil {
		logger.Error("failed to write result", "error", err)
		os.Exit(1)
	}
}

// parseMatrix builds the ingestion matrix from the flag values. An empty flag
// falls back to the configured list; both empty means the configured matrix.
func parseMatrix(cls *classifier.Classifier, subjects, classLevels string, cfg config.IngestionConfig) ([]domain.MatrixCell, error) {
	if subjects == "" && classLevels == "" {
		return nil, nil
	}

	subjList := splitList(subjects)
	if len(subjList) == 0 {
		subjList = cfg.Subjects
	}
	levelList := splitList(classLevels)
	if len(levelList) == 0 {
		levelList = cfg.ClassLevels
	}

	normalized := make([]string, 0, len(subjList))
	for _, s := range subjList {
		normalized = append(normalized, cls.NormalizeSubject(s))
	}
	bands := make([]domain.ClassBand, 0, len(levelList))
	for _, l := range levelList {
		b, ok := domain.ParseClassBand(l)
		if !ok {
			return nil, fmt.Errorf("unknown class level %q", l)
		}
		bands = append(bands, b)
	}
	return domain.BuildMatrix(normalized, bands), nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
