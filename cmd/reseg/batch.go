package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gosuri/uiprogress"

	reseg "github.com/jamesainslie/go-reseg"
	"github.com/jamesainslie/go-reseg/normalize"
	"github.com/jamesainslie/go-reseg/storage/sqlite/zombiezen"
)

// runBatch processes each named file as one document, with a progress bar.
// Documents go to the store when one is open, otherwise a per-file summary
// is printed. Files run concurrently in waves of the parallelism limit.
func runBatch(ctx context.Context, engine *reseg.Engine, store *zombiezen.DocStore, args []string, markdown, mergePreps bool, parallel int) {
	paths := expandGlobs(args)
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "error: batch mode needs input files")
		os.Exit(1)
	}
	if parallel <= 0 {
		parallel = 4
	}

	texts := make([]string, len(paths))
	for i, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error reading %s: %v\n", path, err)
			os.Exit(1)
		}
		text := string(data)
		if markdown || strings.EqualFold(filepath.Ext(path), ".md") {
			text = normalize.Markdown(text)
		}
		texts[i] = text
	}

	uiprogress.Start()
	bar := uiprogress.AddBar(len(texts))
	bar.AppendCompleted()
	bar.PrependElapsed()

	docs := make([]*reseg.Document, 0, len(texts))
	for start := 0; start < len(texts); start += parallel {
		end := start + parallel
		if end > len(texts) {
			end = len(texts)
		}
		wave, err := engine.ProcessAll(ctx, texts[start:end], parallel)
		if err != nil {
			uiprogress.Stop()
			fmt.Fprintf(os.Stderr, "error processing batch: %v\n", err)
			os.Exit(1)
		}
		docs = append(docs, wave...)
		for range wave {
			bar.Incr()
		}
	}
	uiprogress.Stop()

	for i, doc := range docs {
		if mergePreps {
			doc.MergePrepositions()
		}
		name := filepath.Base(paths[i])

		if store != nil {
			id, err := store.Put(ctx, name, doc)
			if err != nil {
				fmt.Fprintf(os.Stderr, "error storing %s: %v\n", name, err)
				os.Exit(1)
			}
			fmt.Printf("%s: %d sentences, stored as document %d\n", name, len(doc.Sentences), id)
			continue
		}
		fmt.Printf("%s: %d sentences, %d merges, %d invalid trees\n",
			name, len(doc.Sentences), doc.Stats.Merges, doc.Stats.InvalidTrees)
	}
}

// expandGlobs resolves glob patterns the shell did not, keeping literal
// arguments that match nothing so missing files surface as read errors.
func expandGlobs(args []string) []string {
	var paths []string
	for _, arg := range args {
		matches, err := filepath.Glob(arg)
		if err != nil || len(matches) == 0 {
			paths = append(paths, arg)
			continue
		}
		paths = append(paths, matches...)
	}
	return paths
}
