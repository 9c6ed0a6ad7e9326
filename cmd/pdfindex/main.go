package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/gops/agent"
	"github.com/viant/pdfindex/config"
	"github.com/viant/pdfindex/extractor"
	"github.com/viant/pdfindex/service"
	"go.uber.org/zap"
)

func main() {
	logger := newLogger()
	defer func() { _ = logger.Sync() }()
	startGops(logger)

	cmd, args := "index", os.Args[1:]
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}
	switch cmd {
	case "index":
		indexCmd(logger, args)
	case "stats":
		statsCmd(logger, args)
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: pdfindex [command] [options]")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  index   Embed PDF pages into the local vector store (default)")
	fmt.Fprintln(os.Stderr, "  stats   Show stored collections and entry counts")
}

func newLogger() *zap.SugaredLogger {
	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	return logger.Sugar()
}

// commonFlags registers flags shared by commands and returns a function
// that applies the explicitly set ones to cfg.
func commonFlags(flags *flag.FlagSet) (configPath *string, apply func(cfg *config.Config)) {
	configPath = flags.String("config", "", "config yaml (optional)")
	store := flags.String("store", "", "vector store directory (default "+config.DefaultStoreDir+")")
	collection := flags.String("collection", "", "collection name (default "+config.DefaultCollection+")")
	return configPath, func(cfg *config.Config) {
		flags.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "store":
				cfg.StoreDir = *store
			case "collection":
				cfg.Collection = *collection
			}
		})
	}
}

func indexCmd(logger *zap.SugaredLogger, args []string) {
	flags := flag.NewFlagSet("index", flag.ExitOnError)
	configPath, applyCommon := commonFlags(flags)
	pdfDir := flags.String("pdfs", "", "directory with PDF files (default "+config.DefaultPDFDir+")")
	provider := flags.String("provider", "", "embedder: gemini|openai|ollama|simple")
	model := flags.String("model", "", "embedding model (provider default when empty)")
	baseURL := flags.String("base-url", "", "embedding API base URL (optional)")
	pattern := flags.String("pattern", "", "input file name pattern (default "+config.DefaultPattern+")")
	minLength := flags.Int("min-length", 0, "minimum page text length in characters (default 11)")
	batchSize := flags.Int("batch", 0, "chunks per embedding request (default 90)")
	pauseMs := flags.Int("pause-ms", -1, "pause between embedding requests in milliseconds (default 1000)")
	debugSleep := flags.Int("debug-sleep", 0, "debug: sleep N seconds before execution (for gops)")
	flags.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("config: %v", err)
	}
	applyCommon(cfg)
	flags.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "pdfs":
			cfg.PDFDir = *pdfDir
		case "provider":
			cfg.Provider = *provider
		case "model":
			cfg.Model = *model
		case "base-url":
			cfg.BaseURL = *baseURL
		case "pattern":
			cfg.Pattern = *pattern
		case "min-length":
			cfg.MinLength = *minLength
		case "batch":
			cfg.BatchSize = *batchSize
		case "pause-ms":
			cfg.PauseMs = *pauseMs
		}
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	maybeDebugSleep(logger, "index", *debugSleep)

	result, err := runIndex(ctx, cfg, logger.Infof)
	switch {
	case errors.Is(err, config.ErrMissingCredential):
		fmt.Fprintf(os.Stderr, "Error: %s not found\n", cfg.KeyEnv())
		os.Exit(1)
	case errors.Is(err, service.ErrNoPDFs):
		fmt.Fprintf(os.Stderr, "No PDFs found in %s. Please add them and try again.\n", cfg.PDFDir)
		os.Exit(1)
	case err != nil:
		logger.Fatalf("index: %v", err)
	}
	if result.NoText {
		fmt.Println("No valid text found in PDFs.")
		return
	}
	fmt.Printf("Success! %d chunks stored in collection %q at %s (%d total).\n", result.Chunks, result.Collection, cfg.StoreDir, result.Total)
}

// runIndex validates cfg before any file is read, then indexes cfg.PDFDir.
// extractOpts are applied after the configured pattern and minimum length.
func runIndex(ctx context.Context, cfg *config.Config, logf func(format string, args ...any), extractOpts ...extractor.Option) (*service.IndexResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	emb, closeFn, err := selectEmbedder(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer func() { _ = closeFn() }()

	svc, err := service.NewService(
		service.WithEmbedder(emb),
		service.WithModel(modelName(cfg)),
		service.WithStoreDir(cfg.StoreDir),
		service.WithBatchSize(cfg.BatchSize),
		service.WithPause(time.Duration(cfg.PauseMs)*time.Millisecond),
		service.WithLogf(logf),
		service.WithExtractorOptions(append([]extractor.Option{
			extractor.WithPattern(cfg.Pattern),
			extractor.WithMinLength(cfg.MinLength),
		}, extractOpts...)...),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = svc.Close() }()
	return svc.Index(ctx, service.IndexRequest{PDFDir: cfg.PDFDir, Collection: cfg.Collection})
}

func statsCmd(logger *zap.SugaredLogger, args []string) {
	flags := flag.NewFlagSet("stats", flag.ExitOnError)
	configPath, applyCommon := commonFlags(flags)
	all := flags.Bool("all", false, "show every collection")
	flags.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("config: %v", err)
	}
	applyCommon(cfg)
	if _, err := os.Stat(cfg.StoreDir); err != nil {
		logger.Fatalf("stats: store %s: %v", cfg.StoreDir, err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	svc, err := service.NewService(service.WithStoreDir(cfg.StoreDir), service.WithLogf(logger.Infof))
	if err != nil {
		logger.Fatalf("service init: %v", err)
	}
	defer func() { _ = svc.Close() }()

	req := service.StatsRequest{Collection: cfg.Collection}
	if *all {
		req.Collection = ""
	}
	stats, err := svc.Stats(ctx, req)
	if err != nil {
		logger.Fatalf("stats: %v", err)
	}
	for _, s := range stats {
		fmt.Printf("collection=%s docs=%d model=%s created=%s\n", s.Name, s.Documents, s.EmbeddingModel, s.CreatedAt)
	}
}

func maybeDebugSleep(logger *zap.SugaredLogger, cmd string, seconds int) {
	if seconds <= 0 {
		seconds = debugSleepFromEnv()
	}
	if seconds <= 0 {
		return
	}
	logger.Infof("debug: cmd=%s pid=%d sleep=%ds", cmd, os.Getpid(), seconds)
	time.Sleep(time.Duration(seconds) * time.Second)
}

func startGops(logger *zap.SugaredLogger) {
	if err := agent.Listen(agent.Options{ShutdownCleanup: true}); err != nil {
		logger.Warnf("gops: %v", err)
	}
}

func debugSleepFromEnv() int {
	val := strings.TrimSpace(os.Getenv("PDFINDEX_DEBUG_SLEEP"))
	if val == "" {
		return 0
	}
	n, err := strconv.Atoi(val)
	if err != nil || n <= 0 {
		return 0
	}
	return n
}
