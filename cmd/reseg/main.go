package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	reseg "github.com/jamesainslie/go-reseg"
	"github.com/jamesainslie/go-reseg/conllu"
	"github.com/jamesainslie/go-reseg/format"
	"github.com/jamesainslie/go-reseg/neural"
	"github.com/jamesainslie/go-reseg/normalize"
	"github.com/jamesainslie/go-reseg/punkt"
	"github.com/jamesainslie/go-reseg/storage/sqlite/zombiezen"
)

func main() {
	var (
		parserKind = flag.String("parser", "punkt", "Parser: punkt, neural or conllu")
		modelPath  = flag.String("model", "", "Model file: ONNX model (neural) or Punkt training data (punkt)")
		vocabPath  = flag.String("vocab", "", "Vocabulary file (neural)")
		threshold  = flag.Float64("threshold", 0.5, "Boundary detection threshold (neural)")
		treebank   = flag.String("conllu", "", "CoNLL-U treebank to parse from (conllu)")
		mode       = flag.String("mode", "process", "Mode: process, repl or batch")
		outFormat  = flag.String("format", "text", "Output format: "+strings.Join(format.Supported(), ", "))
		policy     = flag.String("policy", "all", "Reparse policy: all or merged")
		normText   = flag.Bool("normalize", false, "Normalize punctuation and whitespace before parsing")
		markdown   = flag.Bool("markdown", false, "Extract plain text from Markdown input")
		mergePreps = flag.Bool("merge-preps", false, "Fold prepositions into their verb heads")
		parallel   = flag.Int("parallel", 0, "Concurrent documents in batch mode (0 = all CPUs)")
		dbPath     = flag.String("db", "", "SQLite database for storing results")
		docName    = flag.String("name", "", "Document name when storing")
		search     = flag.String("search", "", "Comma-separated lemmas: search the database and exit")
		list       = flag.Bool("list", false, "List stored documents and exit")
		verbose    = flag.Bool("v", false, "Enable debug logging")
	)
	flag.Parse()

	if *verbose {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	ctx := context.Background()

	// Query modes read the database and never touch a parser.
	if *list || *search != "" {
		if *dbPath == "" {
			fmt.Fprintln(os.Stderr, "error: -db required with -list or -search")
			flag.Usage()
			os.Exit(1)
		}
		store, err := zombiezen.Open(ctx, *dbPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error opening database: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = store.Close() }()

		if *list {
			runList(ctx, store)
			return
		}
		runSearch(ctx, store, splitLemmas(*search))
		return
	}

	// The conllu parser doubles as input: with no text arguments, process
	// mode runs over the treebank's own document text.
	var treeText string

	var parser reseg.Parser
	switch *parserKind {
	case "punkt":
		var err error
		if *modelPath != "" {
			parser, err = punkt.NewFromModel(*modelPath)
		} else {
			parser, err = punkt.New()
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "error creating parser: %v\n", err)
			os.Exit(1)
		}

	case "neural":
		if *modelPath == "" || *vocabPath == "" {
			fmt.Fprintln(os.Stderr, "error: -model and -vocab required with -parser neural")
			flag.Usage()
			os.Exit(1)
		}
		np, err := neural.New(*modelPath, *vocabPath, neural.WithThreshold(float32(*threshold)))
		if err != nil {
			fmt.Fprintf(os.Stderr, "error creating parser: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = np.Close() }()
		parser = np

	case "conllu":
		if *treebank == "" {
			fmt.Fprintln(os.Stderr, "error: -conllu required with -parser conllu")
			flag.Usage()
			os.Exit(1)
		}
		sents, err := conllu.ReadFile(*treebank)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error reading treebank: %v\n", err)
			os.Exit(1)
		}
		parse := conllu.ToParse(sents)
		parser = conllu.NewParser(parse)
		treeText = parse.Text

	default:
		fmt.Fprintf(os.Stderr, "unknown parser: %s\n", *parserKind)
		os.Exit(1)
	}

	var opts []reseg.Option
	switch *policy {
	case "all":
	case "merged":
		opts = append(opts, reseg.WithReparsePolicy(reseg.ReparseMerged))
	default:
		fmt.Fprintf(os.Stderr, "unknown policy: %s\n", *policy)
		os.Exit(1)
	}
	if *normText {
		opts = append(opts, reseg.WithNormalizer(normalize.Text))
	}

	engine, err := reseg.New(parser, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error creating engine: %v\n", err)
		os.Exit(1)
	}

	var store *zombiezen.DocStore
	if *dbPath != "" {
		store, err = zombiezen.Open(ctx, *dbPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error opening database: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = store.Close() }()
	}

	switch *mode {
	case "process":
		text := strings.Join(flag.Args(), " ")
		if text == "" {
			text = treeText
		}
		if text == "" {
			fmt.Fprintln(os.Stderr, "error: no text provided")
			os.Exit(1)
		}
		runProcess(ctx, engine, store, text, *outFormat, *docName, *markdown, *mergePreps)

	case "repl":
		runREPL(ctx, engine, *outFormat, *mergePreps)

	case "batch":
		runBatch(ctx, engine, store, flag.Args(), *markdown, *mergePreps, *parallel)

	default:
		fmt.Fprintf(os.Stderr, "unknown mode: %s\n", *mode)
		os.Exit(1)
	}
}

func runProcess(ctx context.Context, engine *reseg.Engine, store *zombiezen.DocStore, text, kind, name string, markdown, mergePreps bool) {
	if markdown {
		text = normalize.Markdown(text)
	}

	doc, err := engine.Process(ctx, text)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if mergePreps {
		doc.MergePrepositions()
	}

	enc, err := format.New(kind, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if err := enc.Encode(doc); err != nil {
		fmt.Fprintf(os.Stderr, "error encoding output: %v\n", err)
		os.Exit(1)
	}

	if store != nil {
		if name == "" {
			name = "untitled"
		}
		id, err := store.Put(ctx, name, doc)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error storing document: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "stored %s as document %d\n", name, id)
	}
}

func runList(ctx context.Context, store *zombiezen.DocStore) {
	infos, err := store.List(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error listing documents: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("%-6s %-10s %s\n", "ID", "Sentences", "Name")
	for _, info := range infos {
		fmt.Printf("%-6d %-10d %s\n", info.ID, info.Sentences, info.Name)
	}
}

func runSearch(ctx context.Context, store *zombiezen.DocStore, lemmas []string) {
	if len(lemmas) == 0 {
		fmt.Fprintln(os.Stderr, "error: no lemmas to search for")
		os.Exit(1)
	}
	hits, err := store.FindByLemma(ctx, lemmas)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error searching: %v\n", err)
		os.Exit(1)
	}
	if len(hits) == 0 {
		fmt.Println("no matches")
		return
	}
	for _, h := range hits {
		fmt.Printf("doc %d, sentence %d: %s\n", h.DocID, h.Index, h.Text)
	}
}

func splitLemmas(s string) []string {
	var lemmas []string
	for _, l := range strings.Split(s, ",") {
		if l = strings.TrimSpace(l); l != "" {
			lemmas = append(lemmas, l)
		}
	}
	return lemmas
}
