package zombiezen

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	reseg "github.com/jamesainslie/go-reseg"
	"github.com/jamesainslie/go-reseg/storage"
)

// DocStore persists processed documents in SQLite. Sentences are stored as
// JSON alongside a lemma index for search.
type DocStore struct {
	pool *sqlitex.Pool
}

var _ storage.Repository = (*DocStore)(nil)

// NewDocStore wraps an existing connection pool. The schema must already be
// in place.
func NewDocStore(pool *sqlitex.Pool) *DocStore {
	return &DocStore{pool: pool}
}

// Open creates the pool and schema for the database file at dbPath and
// returns a ready store. Close releases the pool.
func Open(ctx context.Context, dbPath string) (*DocStore, error) {
	pool, err := NewPool(dbPath)
	if err != nil {
		return nil, err
	}
	if err := InitSchema(ctx, pool); err != nil {
		_ = pool.Close()
		return nil, err
	}
	return NewDocStore(pool), nil
}

// Close releases the underlying connection pool.
func (s *DocStore) Close() error {
	return s.pool.Close()
}

// Put persists a document, its sentences and their lemma index in one
// transaction.
func (s *DocStore) Put(ctx context.Context, name string, doc *reseg.Document) (id int64, err error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return 0, err
	}
	defer s.pool.Put(conn)

	defer sqlitex.Save(conn)(&err)

	folds, err := json.Marshal(doc.Folds)
	if err != nil {
		return 0, fmt.Errorf("encoding folds: %w", err)
	}
	stats, err := json.Marshal(doc.Stats)
	if err != nil {
		return 0, fmt.Errorf("encoding stats: %w", err)
	}

	err = sqlitex.Execute(conn, "INSERT INTO docs (name, text, folds, stats) VALUES (?, ?, ?, ?)", &sqlitex.ExecOptions{
		Args: []any{name, doc.Text, string(folds), string(stats)},
	})
	if err != nil {
		return 0, fmt.Errorf("inserting doc: %w", err)
	}
	id = conn.LastInsertRowID()

	for i := range doc.Sentences {
		sen := &doc.Sentences[i]
		data, merr := json.Marshal(sen)
		if merr != nil {
			return 0, fmt.Errorf("encoding sentence %d: %w", i, merr)
		}

		valid := 0
		if sen.TreeValid() {
			valid = 1
		}
		err = sqlitex.Execute(conn, "INSERT INTO sentences (doc_id, idx, text, tree_valid, data) VALUES (?, ?, ?, ?, ?)", &sqlitex.ExecOptions{
			Args: []any{id, i, sen.Text, valid, string(data)},
		})
		if err != nil {
			return 0, fmt.Errorf("inserting sentence %d: %w", i, err)
		}
		sentID := conn.LastInsertRowID()

		for lemma := range sentenceLemmas(sen) {
			err = sqlitex.Execute(conn, "INSERT INTO sentence_lemmas (lemma, sentence_id) VALUES (?, ?)", &sqlitex.ExecOptions{
				Args: []any{lemma, sentID},
			})
			if err != nil {
				return 0, fmt.Errorf("inserting lemma: %w", err)
			}
		}
	}

	return id, nil
}

// sentenceLemmas collects the distinct non-empty lemmas of a sentence.
func sentenceLemmas(sen *reseg.Sentence) map[string]bool {
	lemmas := make(map[string]bool)
	for _, t := range sen.Tokens {
		if t.Lemma != "" && !t.IsWhitespace() {
			lemmas[t.Lemma] = true
		}
	}
	return lemmas
}

// List returns metadata for all stored documents in insertion order.
func (s *DocStore) List(ctx context.Context) ([]storage.Info, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, err
	}
	defer s.pool.Put(conn)

	var infos []storage.Info
	err = sqlitex.Execute(conn, `
		SELECT d.id, d.name, COUNT(s.id)
		FROM docs d LEFT JOIN sentences s ON s.doc_id = d.id
		GROUP BY d.id ORDER BY d.id
	`, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			infos = append(infos, storage.Info{
				ID:        stmt.ColumnInt64(0),
				Name:      stmt.ColumnText(1),
				Sentences: stmt.ColumnInt(2),
			})
			return nil
		},
	})
	if err != nil {
		return nil, err
	}
	return infos, nil
}

// Get returns a stored document by ID.
func (s *DocStore) Get(ctx context.Context, id int64) (*storage.Record, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, err
	}
	defer s.pool.Put(conn)

	rec := &storage.Record{ID: id, Doc: &reseg.Document{}}
	found := false
	err = sqlitex.Execute(conn, "SELECT name, text, folds, stats FROM docs WHERE id = ?", &sqlitex.ExecOptions{
		Args: []any{id},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			found = true
			rec.Name = stmt.ColumnText(0)
			rec.Doc.Text = stmt.ColumnText(1)
			if err := json.Unmarshal([]byte(stmt.ColumnText(2)), &rec.Doc.Folds); err != nil {
				return fmt.Errorf("decoding folds: %w", err)
			}
			if err := json.Unmarshal([]byte(stmt.ColumnText(3)), &rec.Doc.Stats); err != nil {
				return fmt.Errorf("decoding stats: %w", err)
			}
			return nil
		},
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: id %d", storage.ErrNotFound, id)
	}

	err = sqlitex.Execute(conn, "SELECT data FROM sentences WHERE doc_id = ? ORDER BY idx", &sqlitex.ExecOptions{
		Args: []any{id},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			var sen reseg.Sentence
			if err := json.Unmarshal([]byte(stmt.ColumnText(0)), &sen); err != nil {
				return fmt.Errorf("decoding sentence: %w", err)
			}
			rec.Doc.Sentences = append(rec.Doc.Sentences, sen)
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	return rec, nil
}

// FindByLemma returns the sentences containing all given lemmas.
func (s *DocStore) FindByLemma(ctx context.Context, lemmas []string) ([]storage.Hit, error) {
	if len(lemmas) == 0 {
		return nil, nil
	}

	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, err
	}
	defer s.pool.Put(conn)

	// INTERSECT keeps only sentence IDs carrying every lemma, and
	// deduplicates as a side effect.
	var query strings.Builder
	var args []any
	for i, lemma := range lemmas {
		if i > 0 {
			query.WriteString(" INTERSECT ")
		}
		query.WriteString("SELECT sentence_id FROM sentence_lemmas WHERE lemma = ?")
		args = append(args, lemma)
	}

	var ids []int64
	err = sqlitex.Execute(conn, query.String(), &sqlitex.ExecOptions{
		Args: args,
		ResultFunc: func(stmt *sqlite.Stmt) error {
			ids = append(ids, stmt.ColumnInt64(0))
			return nil
		},
	})
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	idStrings := make([]string, len(ids))
	for i, sid := range ids {
		idStrings[i] = strconv.FormatInt(sid, 10)
	}

	var hits []storage.Hit
	fetch := fmt.Sprintf("SELECT doc_id, idx, text FROM sentences WHERE id IN (%s) ORDER BY doc_id, idx",
		strings.Join(idStrings, ","))
	err = sqlitex.Execute(conn, fetch, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			hits = append(hits, storage.Hit{
				DocID: stmt.ColumnInt64(0),
				Index: stmt.ColumnInt(1),
				Text:  stmt.ColumnText(2),
			})
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	return hits, nil
}

// Delete removes a document, its sentences and its lemma index.
func (s *DocStore) Delete(ctx context.Context, id int64) (err error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return err
	}
	defer s.pool.Put(conn)

	defer sqlitex.Save(conn)(&err)

	err = sqlitex.Execute(conn, "DELETE FROM sentence_lemmas WHERE sentence_id IN (SELECT id FROM sentences WHERE doc_id = ?)", &sqlitex.ExecOptions{
		Args: []any{id},
	})
	if err != nil {
		return err
	}
	err = sqlitex.Execute(conn, "DELETE FROM sentences WHERE doc_id = ?", &sqlitex.ExecOptions{
		Args: []any{id},
	})
	if err != nil {
		return err
	}
	err = sqlitex.Execute(conn, "DELETE FROM docs WHERE id = ?", &sqlitex.ExecOptions{
		Args: []any{id},
	})
	if err != nil {
		return err
	}
	if conn.Changes() == 0 {
		return fmt.Errorf("%w: id %d", storage.ErrNotFound, id)
	}
	return nil
}
