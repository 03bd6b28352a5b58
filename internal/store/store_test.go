package store

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "bible.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveTranslationUpsert(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rec := TranslationRecord{
		Identifier:   "kjv",
		Name:         "King James Version",
		Language:     "english",
		LanguageCode: "en",
		License:      "Public Domain",
	}
	id1, err := s.SaveTranslation(ctx, rec)
	if err != nil {
		t.Fatalf("SaveTranslation: %v", err)
	}

	rec.Name = "KJV (updated)"
	id2, err := s.SaveTranslation(ctx, rec)
	if err != nil {
		t.Fatalf("SaveTranslation again: %v", err)
	}
	if id1 != id2 {
		t.Errorf("identifier changed id on upsert: %d vs %d", id1, id2)
	}

	list, err := s.Translations(ctx)
	if err != nil {
		t.Fatalf("Translations: %v", err)
	}
	if len(list) != 1 || list[0].Name != "KJV (updated)" {
		t.Errorf("got %+v, want single updated row", list)
	}
}

func TestInsertAndReadVerses(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.SaveTranslation(ctx, TranslationRecord{
		Identifier: "kjv", Name: "KJV", Language: "english", LanguageCode: "en", License: "Public Domain",
	})
	if err != nil {
		t.Fatalf("SaveTranslation: %v", err)
	}

	batch := []VerseRecord{
		{BookNum: 1, BookID: "GEN", Book: "Genesis", Chapter: 1, Verse: 1, Text: "In the beginning."},
		{BookNum: 1, BookID: "GEN", Book: "Genesis", Chapter: 1, Verse: 2, Text: "And the earth."},
		{BookNum: 43, BookID: "JHN", Book: "John", Chapter: 3, Verse: 16, Text: "For God so loved."},
	}
	if err := s.InsertVerses(ctx, id, batch); err != nil {
		t.Fatalf("InsertVerses: %v", err)
	}

	n, err := s.VerseCount(ctx, id)
	if err != nil {
		t.Fatalf("VerseCount: %v", err)
	}
	if n != 3 {
		t.Errorf("count = %d, want 3", n)
	}

	verses, err := s.Verses(ctx, id, "GEN", 1)
	if err != nil {
		t.Fatalf("Verses: %v", err)
	}
	if len(verses) != 2 || verses[0].Verse != 1 || verses[1].Verse != 2 {
		t.Errorf("got %+v, want GEN 1:1-2 in order", verses)
	}

	if err := s.DeleteVerses(ctx, id); err != nil {
		t.Fatalf("DeleteVerses: %v", err)
	}
	n, err = s.VerseCount(ctx, id)
	if err != nil {
		t.Fatalf("VerseCount: %v", err)
	}
	if n != 0 {
		t.Errorf("count after delete = %d, want 0", n)
	}
}

func TestInsertVersesEmptyBatch(t *testing.T) {
	s := openTestStore(t)
	if err := s.InsertVerses(context.Background(), 1, nil); err != nil {
		t.Errorf("empty batch: %v", err)
	}
}
