package main

import (
	"context"
	"fmt"
	"os"

	prompt "github.com/c-bata/go-prompt"

	reseg "github.com/jamesainslie/go-reseg"
	"github.com/jamesainslie/go-reseg/format"
)

// runREPL reads one document per line and prints its corrected sentences.
// Ctrl+F cycles the output format; "quit" exits.
func runREPL(ctx context.Context, engine *reseg.Engine, kind string, mergePreps bool) {
	kinds := format.Supported()
	cur := 0
	for i, k := range kinds {
		if k == kind {
			cur = i
		}
	}

	fmt.Println("one document per line, Ctrl+F: next format, quit to exit")

	history := []string{}
	for {
		in := prompt.Input("reseg> ", completer,
			prompt.OptionTitle("reseg"),
			prompt.OptionPrefixTextColor(prompt.Yellow),
			prompt.OptionHistory(history),
			prompt.OptionAddKeyBind(prompt.KeyBind{
				Key: prompt.ControlF,
				Fn: func(buf *prompt.Buffer) {
					cur = (cur + 1) % len(kinds)
					fmt.Println("format set to: " + kinds[cur])
				},
			}),
		)

		if in == "quit" {
			return
		}
		if in == "" {
			continue
		}
		history = append(history, in)

		doc, err := engine.Process(ctx, in)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			continue
		}
		if mergePreps {
			doc.MergePrepositions()
		}

		enc, err := format.New(kinds[cur], os.Stdout)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			continue
		}
		if err := enc.Encode(doc); err != nil {
			fmt.Printf("error: %v\n", err)
		}
	}
}

// completer offers no suggestions; input is free text.
func completer(in prompt.Document) []prompt.Suggest {
	return nil
}
