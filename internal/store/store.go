// Package store persists imported translations and verses to SQLite.
// It is the write target of the importer; serving reads straight from the
// XML sources this database only mirrors.
package store

import (
	"context"
	"database/sql"
	"strings"

	coreerrors "github.com/openscripture/bibleapi/core/errors"
	"github.com/openscripture/bibleapi/core/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS translations (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	identifier TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	language TEXT NOT NULL,
	language_code TEXT NOT NULL,
	license TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS verses (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	book_num INTEGER NOT NULL,
	book_id TEXT NOT NULL,
	book TEXT NOT NULL,
	chapter INTEGER NOT NULL,
	verse INTEGER NOT NULL,
	text TEXT NOT NULL,
	translation_id INTEGER NOT NULL REFERENCES translations(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_verses_lookup
	ON verses (translation_id, book_id, chapter, verse);
`

// TranslationRecord is a row of the translations table.
type TranslationRecord struct {
	ID           int64
	Identifier   string
	Name         string
	Language     string
	LanguageCode string
	License      string
}

// VerseRecord is a row of the verses table.
type VerseRecord struct {
	BookNum int
	BookID  string
	Book    string
	Chapter int
	Verse   int
	Text    string
}

// Store wraps the SQLite database holding imported translations.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the
// schema.
func Open(path string) (*Store, error) {
	db, err := sqlite.Open(path)
	if err != nil {
		return nil, coreerrors.NewIO("open", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, coreerrors.Wrap(err, "applying schema")
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveTranslation inserts or replaces the translation row and returns its
// id. An existing identifier keeps its id so verses survive metadata
// refreshes.
func (s *Store) SaveTranslation(ctx context.Context, t TranslationRecord) (int64, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO translations (identifier, name, language, language_code, license)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(identifier) DO UPDATE SET
			name = excluded.name,
			language = excluded.language,
			language_code = excluded.language_code,
			license = excluded.license`,
		t.Identifier, t.Name, t.Language, t.LanguageCode, t.License)
	if err != nil {
		return 0, coreerrors.Wrap(err, "saving translation")
	}
	// LastInsertId is unreliable on the UPDATE path, so always resolve by
	// identifier.
	var id int64
	err = s.db.QueryRowContext(ctx, `SELECT id FROM translations WHERE identifier = ?`, t.Identifier).Scan(&id)
	if err != nil {
		return 0, coreerrors.Wrap(err, "resolving translation id")
	}
	return id, nil
}

// DeleteVerses removes all verses of a translation, typically before a
// re-import.
func (s *Store) DeleteVerses(ctx context.Context, translationID int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM verses WHERE translation_id = ?`, translationID)
	if err != nil {
		return coreerrors.Wrap(err, "deleting verses")
	}
	return nil
}

// InsertVerses writes a batch of verses in one transaction with a single
// multi-row INSERT per chunk.
func (s *Store) InsertVerses(ctx context.Context, translationID int64, batch []VerseRecord) error {
	if len(batch) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return coreerrors.Wrap(err, "starting transaction")
	}
	defer tx.Rollback()

	var (
		sb   strings.Builder
		args []interface{}
	)
	sb.WriteString(`INSERT INTO verses (book_num, book_id, book, chapter, verse, text, translation_id) VALUES `)
	for i, v := range batch {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(?, ?, ?, ?, ?, ?, ?)")
		args = append(args, v.BookNum, v.BookID, v.Book, v.Chapter, v.Verse, v.Text, translationID)
	}
	if _, err := tx.ExecContext(ctx, sb.String(), args...); err != nil {
		return coreerrors.Wrap(err, "inserting verse batch")
	}
	return tx.Commit()
}

// VerseCount reports how many verses a translation has stored.
func (s *Store) VerseCount(ctx context.Context, translationID int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM verses WHERE translation_id = ?`, translationID).Scan(&n)
	if err != nil {
		return 0, coreerrors.Wrap(err, "counting verses")
	}
	return n, nil
}

// Translations lists the stored translation rows.
func (s *Store) Translations(ctx context.Context) ([]TranslationRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, identifier, name, language, language_code, license
		FROM translations ORDER BY identifier`)
	if err != nil {
		return nil, coreerrors.Wrap(err, "listing translations")
	}
	defer rows.Close()

	var out []TranslationRecord
	for rows.Next() {
		var t TranslationRecord
		if err := rows.Scan(&t.ID, &t.Identifier, &t.Name, &t.Language, &t.LanguageCode, &t.License); err != nil {
			return nil, coreerrors.Wrap(err, "scanning translation")
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Verses reads back one chapter of a stored translation, ordered by verse.
func (s *Store) Verses(ctx context.Context, translationID int64, bookID string, chapter int) ([]VerseRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT book_num, book_id, book, chapter, verse, text
		FROM verses
		WHERE translation_id = ? AND book_id = ? AND chapter = ?
		ORDER BY verse`, translationID, bookID, chapter)
	if err != nil {
		return nil, coreerrors.Wrap(err, "querying verses")
	}
	defer rows.Close()

	var out []VerseRecord
	for rows.Next() {
		var v VerseRecord
		if err := rows.Scan(&v.BookNum, &v.BookID, &v.Book, &v.Chapter, &v.Verse, &v.Text); err != nil {
			return nil, coreerrors.Wrap(err, "scanning verse")
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
