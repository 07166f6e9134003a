//go:build ignore

// Convert UD English Web Treebank CoNLL-U files into evaluation corpus
// files: a "# Key: value" header followed by one gold sentence per line.
// Usage: go run ./scripts/process-ud-ewt.go
package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jamesainslie/go-reseg/conllu"
)

func main() {
	dir := "testdata/ud-ewt"
	splits := []string{"train", "dev", "test"}

	total := 0
	for _, split := range splits {
		inFile := filepath.Join(dir, fmt.Sprintf("en_ewt-ud-%s.conllu", split))
		outFile := filepath.Join(dir, split+".txt")

		fmt.Printf("Processing %s...\n", split)
		lines, err := goldSentences(inFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error processing %s: %v\n", inFile, err)
			continue
		}

		if err := writeCorpus(outFile, "UD-EWT "+split, lines); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", outFile, err)
			continue
		}
		total += len(lines)

		fmt.Printf("  -> %s (%d sentences)\n", outFile, len(lines))
	}

	if total == 0 {
		fmt.Fprintln(os.Stderr, "No sentences extracted.")
		os.Exit(1)
	}

	fmt.Printf("\nDone! %d sentences across corpus files in %s/\n", total, dir)
}

// goldSentences extracts the annotated sentence texts from one treebank
// file, skipping entries without a text comment.
func goldSentences(path string) ([]string, error) {
	sents, err := conllu.ReadFile(path)
	if err != nil {
		return nil, err
	}

	lines := make([]string, 0, len(sents))
	for _, s := range sents {
		if s.Text != "" {
			lines = append(lines, s.Text)
		}
	}
	return lines, nil
}

func writeCorpus(path, title string, lines []string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	fmt.Fprintf(w, "# Source: https://github.com/UniversalDependencies/UD_English-EWT\n")
	fmt.Fprintf(w, "# Title: %s\n", title)
	fmt.Fprintln(w)
	for _, line := range lines {
		fmt.Fprintln(w, line)
	}
	return w.Flush()
}
