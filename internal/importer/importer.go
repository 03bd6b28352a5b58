// Package importer loads a translation's XML source, extracts every verse
// and writes it to the SQLite store in batches. Each run gets a job id and
// reports progress through an optional callback so a websocket hub or a
// terminal bar can follow along.
package importer

import (
	"context"
	"fmt"

	"github.com/cheggaaa/pb/v3"
	"github.com/google/uuid"

	"github.com/openscripture/bibleapi/core/books"
	"github.com/openscripture/bibleapi/internal/catalog"
	"github.com/openscripture/bibleapi/internal/logging"
	"github.com/openscripture/bibleapi/internal/store"
)

// DefaultBatchSize is the number of verses written per transaction.
const DefaultBatchSize = 2000

// Options tunes a single import run.
type Options struct {
	// BatchSize caps verses per insert transaction; 0 means
	// DefaultBatchSize.
	BatchSize int
	// DryRun extracts and counts without touching the store.
	DryRun bool
	// ShowBar renders a terminal progress bar over the books.
	ShowBar bool
	// Progress, when set, receives one update per stage transition and
	// per finished book.
	Progress func(Update)
}

// Update is one progress notification of a running import.
type Update struct {
	JobID       string  `json:"job_id"`
	Translation string  `json:"translation"`
	Stage       string  `json:"stage"`
	Current     int     `json:"current"`
	Total       int     `json:"total"`
	Fraction    float64 `json:"fraction"`
}

// Result summarizes a finished import.
type Result struct {
	JobID       string `json:"job_id"`
	Translation string `json:"translation"`
	Books       int    `json:"books"`
	Verses      int    `json:"verses"`
	DryRun      bool   `json:"dry_run"`
}

// Importer runs translation imports from a catalog into a store.
type Importer struct {
	catalog *catalog.Catalog
	store   *store.Store
}

// New creates an Importer. The store may be nil only for dry runs.
func New(cat *catalog.Catalog, st *store.Store) *Importer {
	return &Importer{catalog: cat, store: st}
}

// Run imports one translation and returns its summary.
func (im *Importer) Run(ctx context.Context, identifier string, opts Options) (*Result, error) {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	jobID := uuid.NewString()
	notify := func(stage string, current, total int) {
		if opts.Progress == nil {
			return
		}
		u := Update{JobID: jobID, Translation: identifier, Stage: stage, Current: current, Total: total}
		if total > 0 {
			u.Fraction = float64(current) / float64(total)
		}
		opts.Progress(u)
	}

	logging.ImportEvent(jobID, "started", "translation", identifier, "dry_run", opts.DryRun)
	notify("loading", 0, 0)

	translation, err := im.catalog.Get(ctx, identifier)
	if err != nil {
		logging.ImportError(jobID, "loading", err)
		return nil, err
	}
	doc, err := im.catalog.Document(ctx, translation.Identifier)
	if err != nil {
		logging.ImportError(jobID, "loading", err)
		return nil, err
	}

	var translationID int64
	if !opts.DryRun {
		translationID, err = im.store.SaveTranslation(ctx, store.TranslationRecord{
			Identifier:   translation.Identifier,
			Name:         translation.Name,
			Language:     translation.Language,
			LanguageCode: translation.LanguageCode,
			License:      translation.License,
		})
		if err != nil {
			logging.ImportError(jobID, "saving", err)
			return nil, err
		}
		if err := im.store.DeleteVerses(ctx, translationID); err != nil {
			logging.ImportError(jobID, "saving", err)
			return nil, err
		}
	}

	bookList := doc.Books()
	var bar *pb.ProgressBar
	if opts.ShowBar {
		bar = pb.Full.Start(len(bookList))
		bar.Set("prefix", fmt.Sprintf("%s ", translation.Identifier))
		bar.Set(pb.CleanOnFinish, true)
		defer bar.Finish()
	}

	result := &Result{JobID: jobID, Translation: translation.Identifier, DryRun: opts.DryRun}
	var batch []store.VerseRecord
	flush := func() error {
		if opts.DryRun || len(batch) == 0 {
			return nil
		}
		if err := im.store.InsertVerses(ctx, translationID, batch); err != nil {
			return err
		}
		batch = batch[:0]
		return nil
	}

	notify("extracting", 0, len(bookList))
	for i, b := range bookList {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		// book_num is 1-based canon position; 0 marks non-canon books.
		bookNum := books.CanonOrder(books.Normalize(b.ID)) + 1
		seen := false
		for _, ch := range doc.ChaptersForBook(b.ID) {
			for _, v := range doc.VersesForChapter(b.ID, ch.Chapter, 0, 0) {
				batch = append(batch, store.VerseRecord{
					BookNum: bookNum,
					BookID:  v.BookID,
					Book:    v.Book,
					Chapter: v.Chapter,
					Verse:   v.Verse,
					Text:    v.Text,
				})
				result.Verses++
				seen = true
				if len(batch) >= opts.BatchSize {
					if err := flush(); err != nil {
						logging.ImportError(jobID, "writing", err)
						return nil, err
					}
				}
			}
		}
		if seen {
			result.Books++
		}
		if bar != nil {
			bar.Increment()
		}
		notify("extracting", i+1, len(bookList))
	}
	if err := flush(); err != nil {
		logging.ImportError(jobID, "writing", err)
		return nil, err
	}

	notify("done", len(bookList), len(bookList))
	logging.ImportEvent(jobID, "finished",
		"translation", translation.Identifier,
		"books", result.Books,
		"verses", result.Verses,
		"dry_run", opts.DryRun)
	return result, nil
}
