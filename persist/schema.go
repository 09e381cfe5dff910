package persist

const schemaSQL = `
CREATE TABLE IF NOT EXISTS vsm_meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS vsm_terms (
	id        INTEGER PRIMARY KEY,
	term      TEXT NOT NULL,
	frequency REAL NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_vsm_terms_term ON vsm_terms(term);

CREATE TABLE IF NOT EXISTS vsm_docs (
	id       INTEGER PRIMARY KEY,
	document BLOB NOT NULL,
	vector   BLOB NOT NULL
);

CREATE TABLE IF NOT EXISTS vsm_postings (
	bucket  INTEGER NOT NULL,
	term_id INTEGER NOT NULL,
	list    BLOB NOT NULL,
	PRIMARY KEY (bucket, term_id)
);
`
