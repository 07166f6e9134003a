// Package bench evaluates boundary correction quality against gold-annotated
// corpora: corpus loading, precision/recall/F1 on sentence boundaries, and
// rule ablation.
package bench

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Header contains metadata parsed from a corpus file header.
type Header struct {
	Source  string
	Speaker string
	Title   string
}

// ParseHeader extracts metadata from the "# Key: value" comment lines at the
// top of a corpus file. Returns the header, the remaining annotated body,
// and any error.
func ParseHeader(text string) (Header, string, error) {
	var h Header
	scanner := bufio.NewScanner(strings.NewReader(text))
	var bodyStart int
	var lineEnd int

	for scanner.Scan() {
		line := scanner.Text()
		lineEnd += len(line) + 1 // +1 for newline

		if !strings.HasPrefix(line, "#") {
			if strings.TrimSpace(line) == "" {
				continue
			}
			bodyStart = lineEnd - len(line) - 1
			break
		}

		line = strings.TrimPrefix(line, "# ")
		if value, ok := strings.CutPrefix(line, "Source:"); ok {
			h.Source = strings.TrimSpace(value)
		} else if value, ok := strings.CutPrefix(line, "Speaker:"); ok {
			h.Speaker = strings.TrimSpace(value)
		} else if value, ok := strings.CutPrefix(line, "Title:"); ok {
			h.Title = strings.TrimSpace(value)
		}
	}

	if err := scanner.Err(); err != nil {
		return Header{}, "", fmt.Errorf("scan header: %w", err)
	}

	if h.Source == "" {
		return Header{}, "", errors.New("missing Source in header")
	}

	body := text[bodyStart:]
	body = strings.TrimSpace(body)

	return h, body, nil
}

// Sentence is one gold sentence with character offsets into the
// reconstructed talk text.
type Sentence struct {
	Text  string
	Start int
	End   int
}

// ParseGold reads a gold annotation body, one sentence per line, and
// reconstructs the running text by joining the sentences with single spaces.
// Offsets index into the reconstructed text. Blank lines are skipped.
func ParseGold(body string) (string, []Sentence) {
	var (
		sentences []Sentence
		text      strings.Builder
	)

	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if text.Len() > 0 {
			text.WriteByte(' ')
		}
		start := text.Len()
		text.WriteString(line)
		sentences = append(sentences, Sentence{
			Text:  line,
			Start: start,
			End:   text.Len(),
		})
	}

	return text.String(), sentences
}

// Talk is one loaded corpus file: the running text plus its gold sentence
// annotation.
type Talk struct {
	ID        string // filename without extension
	Source    string
	Speaker   string
	Title     string
	RawText   string // gold sentences joined with single spaces
	Sentences []Sentence
}

// LoadTalk loads and parses one corpus file.
func LoadTalk(path string) (*Talk, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	header, body, err := ParseHeader(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse header: %w", err)
	}

	base := filepath.Base(path)
	id := strings.TrimSuffix(base, filepath.Ext(base))

	text, sentences := ParseGold(body)

	return &Talk{
		ID:        id,
		Source:    header.Source,
		Speaker:   header.Speaker,
		Title:     header.Title,
		RawText:   text,
		Sentences: sentences,
	}, nil
}

// LoadCorpus loads all .txt corpus files from a directory.
func LoadCorpus(dir string) ([]*Talk, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}

	var talks []*Talk
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if filepath.Ext(entry.Name()) != ".txt" {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		talk, err := LoadTalk(path)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", entry.Name(), err)
		}
		talks = append(talks, talk)
	}

	return talks, nil
}

// Manifest names corpus files explicitly instead of scanning a directory,
// fixing evaluation order and allowing metadata overrides.
type Manifest struct {
	Corpus []ManifestEntry `yaml:"corpus"`
}

// ManifestEntry is one corpus file in a manifest. Speaker and Title, when
// set, override the values from the file's own header.
type ManifestEntry struct {
	Path    string `yaml:"path"`
	Speaker string `yaml:"speaker,omitempty"`
	Title   string `yaml:"title,omitempty"`
}

// LoadManifest loads the talks named by a YAML manifest, in manifest order.
// Relative paths are resolved against the manifest's directory.
func LoadManifest(path string) ([]*Talk, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	talks := make([]*Talk, 0, len(m.Corpus))
	dir := filepath.Dir(path)
	for _, entry := range m.Corpus {
		p := entry.Path
		if !filepath.IsAbs(p) {
			p = filepath.Join(dir, p)
		}
		talk, err := LoadTalk(p)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", entry.Path, err)
		}
		if entry.Speaker != "" {
			talk.Speaker = entry.Speaker
		}
		if entry.Title != "" {
			talk.Title = entry.Title
		}
		talks = append(talks, talk)
	}

	return talks, nil
}
