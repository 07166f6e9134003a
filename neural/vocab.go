package neural

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// unkToken is the vocabulary entry unknown words map to. Every model
// vocabulary must carry it.
const unkToken = "<unk>"

// Vocab maps between surface strings and the row indices of the model's
// input embedding and output heads: word IDs in, tag and relation labels out.
type Vocab struct {
	ids  map[string]int64
	unk  int64
	size int
	tags []string
	deps []string
}

// vocabFile is the on-disk layout: one JSON object listing the token
// inventory and the label inventories of the two classification heads.
type vocabFile struct {
	Tokens []string `json:"tokens"`
	Tags   []string `json:"tags"`
	Deps   []string `json:"deps"`
}

// LoadVocab loads a model vocabulary from a JSON file.
func LoadVocab(path string) (*Vocab, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading vocab file: %w", err)
	}

	var vf vocabFile
	if err := json.Unmarshal(data, &vf); err != nil {
		return nil, fmt.Errorf("parsing vocab: %w", err)
	}
	if len(vf.Tokens) == 0 {
		return nil, errors.New("vocab has no tokens")
	}

	v := &Vocab{
		ids:  make(map[string]int64, len(vf.Tokens)),
		unk:  -1,
		size: len(vf.Tokens),
		tags: vf.Tags,
		deps: vf.Deps,
	}
	for i, tok := range vf.Tokens {
		if _, ok := v.ids[tok]; !ok {
			v.ids[tok] = int64(i)
		}
		if tok == unkToken {
			v.unk = int64(i)
		}
	}
	if v.unk < 0 {
		return nil, fmt.Errorf("vocab has no %s entry", unkToken)
	}

	return v, nil
}

// ID returns the input ID for a surface token: the exact entry, the
// lowercased entry, or the unknown ID.
func (v *Vocab) ID(text string) int64 {
	if id, ok := v.ids[text]; ok {
		return id
	}
	if id, ok := v.ids[strings.ToLower(text)]; ok {
		return id
	}
	return v.unk
}

// Tag returns the part-of-speech label for a tag head row index. Indices
// outside the inventory map to the UD catch-all "X".
func (v *Vocab) Tag(i int) string {
	if i < 0 || i >= len(v.tags) {
		return "X"
	}
	return v.tags[i]
}

// Dep returns the relation label for a relation head row index. Indices
// outside the inventory map to the UD catch-all "dep".
func (v *Vocab) Dep(i int) string {
	if i < 0 || i >= len(v.deps) {
		return "dep"
	}
	return v.deps[i]
}

// Size returns the number of token entries, counting duplicates.
func (v *Vocab) Size() int { return v.size }
