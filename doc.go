// Package reseg corrects sentence boundaries in parser output and rebuilds
// per-sentence dependency trees.
//
// # Quick Start
//
//	engine, err := reseg.New(parser)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	doc, err := engine.Process(ctx, "This is a sentence. (Or two.)")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, s := range doc.Sentences {
//	    fmt.Println(s.Text)
//	}
//
// # Pipeline
//
// Process parses the text once, then walks the parser's sentence candidates
// left to right, merging adjacent candidates that an ordered rule table
// classifies as fragments of one sentence. A follow-up pass shifts leading
// whitespace tokens onto the preceding sentence. If any merge happened, the
// finalized spans are reparsed so dependency heads reflect the corrected
// boundaries, and one tree is built per sentence.
//
// # Degradation
//
// Sentences whose tree cannot be built (no root, several roots, a head
// cycle) are still returned with the error recorded on the sentence; only a
// structurally malformed parse fails the whole document.
//
// # Thread Safety
//
// Engine holds no per-document state. It is safe for concurrent use when
// its Parser is; ProcessAll fans documents out across a bounded worker
// group.
package reseg
