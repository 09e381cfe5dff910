// Package persist round-trips a built vsmgo.Index to and from a SQLite
// file: WAL-mode pragmas for concurrent readers, one connection pool, one
// schema migration on Open, and blob columns for anything that isn't
// naturally relational. Posting-list and vector blobs are always
// zstd-compressed.
package persist

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/liliang-cn/vsmgo"
	"github.com/liliang-cn/vsmgo/backend"
	"github.com/liliang-cn/vsmgo/internal/memindex"
	"github.com/liliang-cn/vsmgo/internal/postingcodec"
	"github.com/liliang-cn/vsmgo/vector"
)

// Config configures a Store.
type Config struct {
	// Path is the SQLite file path. ":memory:" opens an in-memory database.
	Path string
	// CompressionLevel is the zstd level applied to stored vector and
	// posting-list blobs, mapped through zstd.EncoderLevelFromZstd.
	// Compression is not disabled by any value: 0 selects the fastest level.
	CompressionLevel int
}

// DefaultConfig returns a Config pointed at an in-memory database with
// zstd compression at level 3.
func DefaultConfig() *Config {
	return &Config{Path: ":memory:", CompressionLevel: 3}
}

// Store is a SQLite-backed persistence layer for a built Index.
type Store struct {
	mu     sync.RWMutex
	config *Config
	db     *sql.DB
	comp   *compressor
	closed bool
}

// Open opens (creating if necessary) the SQLite database at config.Path and
// migrates its schema.
func Open(ctx context.Context, config *Config) (*Store, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Path == "" {
		return nil, fmt.Errorf("persist: %w: empty path", vsmgo.ErrInvalidConfig)
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_cache_size=-2000", config.Path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, vsmgo.WrapError("open", fmt.Errorf("open database: %w", err))
	}
	if config.Path == ":memory:" {
		// Every pool connection to a plain :memory: DSN would open its own
		// private database, so writes from one connection would be invisible
		// to reads on another. A single connection keeps the store coherent.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(2 * time.Hour)
	}

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		db.Close()
		return nil, vsmgo.WrapError("open", fmt.Errorf("migrate schema: %w", err))
	}

	comp, err := newCompressor(config.CompressionLevel)
	if err != nil {
		db.Close()
		return nil, vsmgo.WrapError("open", err)
	}

	return &Store{config: config, db: db, comp: comp}, nil
}

// Close closes the underlying database connection. A Store must not be used
// after Close.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.comp.Close()
	return s.db.Close()
}

// Save persists an index, replacing any previously stored content. D must
// be encoding/json-serializable; M, if metadata is non-nil, must be too.
func Save[D, M any](ctx context.Context, s *Store, ix *vsmgo.Index[D, M]) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return vsmgo.WrapError("save", vsmgo.ErrStoreClosed)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return vsmgo.WrapError("save", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM vsm_terms"); err != nil {
		return vsmgo.WrapError("save", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM vsm_docs"); err != nil {
		return vsmgo.WrapError("save", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM vsm_postings"); err != nil {
		return vsmgo.WrapError("save", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM vsm_meta"); err != nil {
		return vsmgo.WrapError("save", err)
	}

	dict := ix.Dictionary()
	for id := 0; id < dict.Len(); id++ {
		term := dict.Get(vector.TermId(id))
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO vsm_terms (id, term, frequency) VALUES (?, ?, ?)",
			id, term.Term, term.Frequency); err != nil {
			return vsmgo.WrapError("save", fmt.Errorf("insert term %d: %w", id, err))
		}
	}

	storage := ix.Storage()
	for id := 0; id < storage.Len(); id++ {
		docVec := storage.Get(vector.DocId(id))
		docBlob, err := json.Marshal(docVec.Document)
		if err != nil {
			return vsmgo.WrapError("save", fmt.Errorf("marshal document %d: %w", id, err))
		}
		vecBlob := s.comp.compress(postingcodec.EncodeVector(&docVec.Vec))
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO vsm_docs (id, document, vector) VALUES (?, ?, ?)",
			id, docBlob, vecBlob); err != nil {
			return vsmgo.WrapError("save", fmt.Errorf("insert doc %d: %w", id, err))
		}
	}

	postings := ix.Postings()
	for bucket := 0; bucket < postings.Buckets(); bucket++ {
		for id := 0; id < dict.Len(); id++ {
			termID := vector.TermId(id)
			list := postings.Get(uint32(bucket), termID)
			if len(list) == 0 {
				continue
			}
			blob := s.comp.compress(postingcodec.EncodePostingList(list))
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO vsm_postings (bucket, term_id, list) VALUES (?, ?, ?)",
				bucket, termID, blob); err != nil {
				return vsmgo.WrapError("save", fmt.Errorf("insert postings bucket=%d term=%d: %w", bucket, termID, err))
			}
		}
	}

	meta := map[string]string{
		"build_id":     ix.BuildInfo.BuildID,
		"built_at":     ix.BuildInfo.BuiltAt.Format(time.RFC3339Nano),
		"weight_name":  ix.BuildInfo.WeightName,
		"doc_count":    fmt.Sprint(ix.BuildInfo.DocCount),
		"term_count":   fmt.Sprint(ix.BuildInfo.TermCount),
		"postings_len": fmt.Sprint(postings.Buckets()),
	}
	if ix.Metadata != nil {
		metaBlob, err := json.Marshal(ix.Metadata)
		if err != nil {
			return vsmgo.WrapError("save", fmt.Errorf("marshal metadata: %w", err))
		}
		meta["metadata"] = string(metaBlob)
	}
	for k, v := range meta {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO vsm_meta (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
			k, v); err != nil {
			return vsmgo.WrapError("save", fmt.Errorf("insert meta %s: %w", k, err))
		}
	}

	return vsmgo.WrapError("save", tx.Commit())
}

// Load rebuilds an Index of the given document and metadata types from the
// store. It returns vsmgo.ErrNotFound if the store has never been saved to.
func Load[D, M any](ctx context.Context, s *Store) (*vsmgo.Index[D, M], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, vsmgo.WrapError("load", vsmgo.ErrStoreClosed)
	}

	meta, err := s.readMeta(ctx)
	if err != nil {
		return nil, vsmgo.WrapError("load", err)
	}
	if len(meta) == 0 {
		return nil, vsmgo.WrapError("load", vsmgo.ErrNotFound)
	}

	dict := memindex.NewDictionary()
	termRows, err := s.db.QueryContext(ctx, "SELECT id, term, frequency FROM vsm_terms ORDER BY id ASC")
	if err != nil {
		return nil, vsmgo.WrapError("load", err)
	}
	defer termRows.Close()
	for termRows.Next() {
		var id int
		var term string
		var freq float32
		if err := termRows.Scan(&id, &term, &freq); err != nil {
			return nil, vsmgo.WrapError("load", err)
		}
		got := dict.Intern(term)
		dict.SetItem(got, vector.DictTerm{Term: term, Frequency: freq})
	}
	if err := termRows.Err(); err != nil {
		return nil, vsmgo.WrapError("load", err)
	}

	storage := memindex.NewStorage[D]()
	docRows, err := s.db.QueryContext(ctx, "SELECT id, document, vector FROM vsm_docs ORDER BY id ASC")
	if err != nil {
		return nil, vsmgo.WrapError("load", err)
	}
	defer docRows.Close()
	for docRows.Next() {
		var id int
		var docBlob, vecBlob []byte
		if err := docRows.Scan(&id, &docBlob, &vecBlob); err != nil {
			return nil, vsmgo.WrapError("load", err)
		}
		var doc D
		if err := json.Unmarshal(docBlob, &doc); err != nil {
			return nil, vsmgo.WrapError("load", fmt.Errorf("unmarshal document %d: %w", id, err))
		}
		rawVec, err := s.comp.decompress(vecBlob)
		if err != nil {
			return nil, vsmgo.WrapError("load", err)
		}
		vec, err := postingcodec.DecodeVector(rawVec)
		if err != nil {
			return nil, vsmgo.WrapError("load", fmt.Errorf("decode vector %d: %w", id, err))
		}
		storage.Insert(vector.NewDocVector(doc, vec))
	}
	if err := docRows.Err(); err != nil {
		return nil, vsmgo.WrapError("load", err)
	}

	postingsLen := 1
	if v, ok := meta["postings_len"]; ok {
		fmt.Sscanf(v, "%d", &postingsLen)
	}
	postings := memindex.NewPostings(postingsLen)
	postRows, err := s.db.QueryContext(ctx, "SELECT bucket, term_id, list FROM vsm_postings")
	if err != nil {
		return nil, vsmgo.WrapError("load", err)
	}
	defer postRows.Close()
	for postRows.Next() {
		var bucket, termID int
		var blob []byte
		if err := postRows.Scan(&bucket, &termID, &blob); err != nil {
			return nil, vsmgo.WrapError("load", err)
		}
		raw, err := s.comp.decompress(blob)
		if err != nil {
			return nil, vsmgo.WrapError("load", err)
		}
		ids, err := postingcodec.DecodePostingList(raw)
		if err != nil {
			return nil, vsmgo.WrapError("load", fmt.Errorf("decode postings bucket=%d term=%d: %w", bucket, termID, err))
		}
		for _, docID := range ids {
			postings.Map(uint32(bucket), docID, []vector.TermId{vector.TermId(termID)})
		}
	}
	if err := postRows.Err(); err != nil {
		return nil, vsmgo.WrapError("load", err)
	}

	var builtAt time.Time
	if v, ok := meta["built_at"]; ok {
		builtAt, _ = time.Parse(time.RFC3339Nano, v)
	}
	var docCount, termCount int
	fmt.Sscanf(meta["doc_count"], "%d", &docCount)
	fmt.Sscanf(meta["term_count"], "%d", &termCount)

	info := vsmgo.BuildInfo{
		BuildID:    meta["build_id"],
		BuiltAt:    builtAt,
		WeightName: meta["weight_name"],
		DocCount:   docCount,
		TermCount:  termCount,
	}

	var metadata *M
	if raw, ok := meta["metadata"]; ok {
		var m M
		if err := json.Unmarshal([]byte(raw), &m); err != nil {
			return nil, vsmgo.WrapError("load", fmt.Errorf("unmarshal metadata: %w", err))
		}
		metadata = &m
	}

	var dictIface backend.Dictionary = dict
	var storageIface backend.Storage[D] = storage
	var postingsIface backend.Postings = postings

	return vsmgo.FromBackends[D, M](dictIface, storageIface, postingsIface, metadata, info), nil
}

func (s *Store) readMeta(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM vsm_meta")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	meta := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		meta[k] = v
	}
	return meta, rows.Err()
}
