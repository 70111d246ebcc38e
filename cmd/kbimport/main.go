package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/fr0stylo/relgraph/internal/adapters/ollama"
	"github.com/fr0stylo/relgraph/internal/adapters/sqlite"
	appservices "github.com/fr0stylo/relgraph/internal/app/services"
	"github.com/fr0stylo/relgraph/internal/config"
	"github.com/fr0stylo/relgraph/internal/domain/relations"
	"github.com/fr0stylo/relgraph/pkg/rebel"
)

const usage = `usage: kbimport <command> [flags]

commands:
  clean    strip annotations from a labelled corpus
  extract  extract relation triples from raw text with the configured LLM
  load     load a relations file into the knowledge base
`

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = run(ctx, cfg, os.Args[1], os.Args[2:], os.Stdout)
	if errors.Is(err, errUnknownCommand) {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		log.Fatalf("%s: %v", os.Args[1], err)
	}
}

var errUnknownCommand = errors.New("unknown command")

func run(ctx context.Context, cfg config.Config, command string, args []string, stdout io.Writer) error {
	switch command {
	case "clean":
		return runClean(args, stdout)
	case "extract":
		return runExtract(ctx, cfg, args, stdout)
	case "load":
		return runLoad(ctx, cfg, args, stdout)
	default:
		return errUnknownCommand
	}
}

func runClean(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("clean", flag.ContinueOnError)
	in := fs.String("in", "test.txt", "labelled input file")
	out := fs.String("out", "raw_text.txt", "clean output file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	src, err := os.Open(*in)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(*out)
	if err != nil {
		return err
	}
	n, err := rebel.CleanLines(src, dst)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "wrote %d sentences to %s\n", n, *out)
	return nil
}

func runExtract(ctx context.Context, cfg config.Config, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("extract", flag.ContinueOnError)
	in := fs.String("in", "raw_text.txt", "raw text input file")
	out := fs.String("out", cfg.Knowledge.RelationsFile, "relations output file")
	model := fs.String("model", cfg.LLM.Model, "ollama model")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if !cfg.LLMEnabled() {
		return errors.New("RELGRAPH_OLLAMA_URL is required for extraction")
	}
	client, err := ollama.NewClient(ollama.Params{
		BaseURL:               cfg.LLM.OllamaURL,
		Model:                 *model,
		APIKey:                cfg.LLM.APIKey,
		MaxConcurrentRequests: cfg.LLM.MaxConcurrency,
	})
	if err != nil {
		return err
	}

	raw, err := os.ReadFile(*in)
	if err != nil {
		return err
	}
	sentences := rebel.SplitSentences(string(raw))
	fmt.Fprintf(stdout, "read %d characters, %d sentences from %s\n", len(raw), len(sentences), *in)

	triples, stats, err := appservices.NewExtractor(client, int(cfg.LLM.MaxConcurrency)).Extract(ctx, sentences)
	if err != nil {
		return err
	}

	dst, err := os.Create(*out)
	if err != nil {
		return err
	}
	err = writeRelations(dst, triples)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "extracted %d unique relations (%d sentences failed), saved %s\n", stats.Triples, stats.Failed, *out)
	return nil
}

func writeRelations(w io.Writer, triples []relations.Triple) error {
	if triples == nil {
		triples = []relations.Triple{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(triples)
}

func runLoad(ctx context.Context, cfg config.Config, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("load", flag.ContinueOnError)
	in := fs.String("in", cfg.Knowledge.RelationsFile, "relations file")
	dbPath := fs.String("db", cfg.Knowledge.DBPath, "database path without .sqlite suffix")
	replace := fs.Bool("replace", false, "drop stored relations before loading")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := sqlite.OpenRelationStore(*dbPath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	var inserted int
	if *replace {
		src, err := os.Open(*in)
		if err != nil {
			return err
		}
		triples, err := appservices.ReadRelations(src)
		_ = src.Close()
		if err != nil {
			return err
		}
		inserted, err = store.ReplaceRelations(ctx, triples)
		if err != nil {
			return err
		}
	} else {
		inserted, err = appservices.LoadRelationsFile(ctx, store, *in)
		if err != nil {
			return err
		}
	}

	total, err := store.CountRelations(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "loaded %d new relations, knowledge base holds %d\n", inserted, total)
	return nil
}
