// Command cli runs extraction from the terminal: parse a message, scan a
// local statement file, or upload a document for the service to scan.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/rbarros/finassist/internal/config"
	"github.com/rbarros/finassist/internal/docscan"
	"github.com/rbarros/finassist/internal/extract"
	"github.com/rbarros/finassist/internal/gcstext"
	"github.com/rbarros/finassist/internal/llm"
	"github.com/rbarros/finassist/internal/logger"
	"github.com/rbarros/finassist/internal/pipeline"
	"github.com/rbarros/finassist/internal/store/inmemory"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "extract":
		runExtract(cfg, log)
	case "scan":
		runScan(log)
	case "upload":
		runUpload(cfg, log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("finassist CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  extract   Extract transactions from a message (or stdin)")
	fmt.Println("  scan      Extract transactions from a local statement text file")
	fmt.Println("  upload    Upload a document text file to GCS")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

func runExtract(cfg *config.Config, log zerolog.Logger) {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	text := fs.String("text", "", "Message to extract from (reads stdin when empty)")
	useModel := fs.Bool("llm", false, "Allow the Gemini fallback when the rules find nothing")
	fs.Parse(os.Args[2:])

	input := *text
	if input == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to read stdin")
		}
		input = string(data)
	}
	if input == "" {
		log.Fatal().Msg("Error: --text is required (or pipe a message on stdin)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	var model pipeline.Extractor
	if *useModel {
		if !cfg.LLMEnabled() {
			log.Fatal().Msg("Error: --llm requires GEMINI_API_KEY")
		}
		client, err := llm.NewClient(ctx, llm.Config{
			APIKey:   cfg.GeminiAPIKey,
			Model:    cfg.GeminiModel,
			Cooldown: cfg.GeminiCooldown,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create Gemini client")
		}
		model = client
	}

	engine := pipeline.New(inmemory.New(), model, nil)
	cands, err := engine.ExtractMessage(ctx, input)
	if err != nil {
		log.Fatal().Err(err).Msg("Extraction failed")
	}

	printCandidates(cands)
}

func runScan(log zerolog.Logger) {
	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	file := fs.String("file", "", "Path to a statement text file")
	fs.Parse(os.Args[2:])

	if *file == "" {
		log.Fatal().Msg("Error: --file is required")
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read file")
	}

	printCandidates(docscan.ScanText(string(data)))
}

func runUpload(cfg *config.Config, log zerolog.Logger) {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	bucket := fs.String("bucket", cfg.GCSBucket, "GCS bucket name (defaults to GCS_BUCKET)")
	object := fs.String("object", "", "GCS object name (defaults to filename)")
	file := fs.String("file", "", "Path to local text file")
	fs.Parse(os.Args[2:])

	if *bucket == "" || *file == "" {
		log.Fatal().Msg("Usage: cli upload -bucket NAME -file PATH")
	}
	if *object == "" {
		*object = filepath.Base(*file)
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read file")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	fetcher, err := gcstext.NewFetcher(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create storage client")
	}
	defer fetcher.Close()

	uri, err := fetcher.UploadText(ctx, *bucket, *object, string(data))
	if err != nil {
		log.Fatal().Err(err).Msg("Upload failed")
	}

	fmt.Printf("Uploaded %s to %s\n", *file, uri)
}

func printCandidates(cands []extract.Candidate) {
	if len(cands) == 0 {
		fmt.Println("No transactions found.")
		return
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(cands)
}
