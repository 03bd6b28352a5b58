package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/openscripture/bibleapi/internal/catalog"
	"github.com/openscripture/bibleapi/internal/source"
)

const kjvFixture = `<osis>
<osisText>
<header><work><title>King James Version</title><rights>Public Domain</rights></work></header>
<div type="book" osisID="GEN">
<verse osisID="GEN.1.1">In the beginning God created the heaven and the earth.</verse>
<verse osisID="GEN.1.2">And the earth was without form, and void.</verse>
</div>
</osisText>
</osis>`

const webFixture = `<bible title="World English Bible">
<book id="GEN" name="Genesis">
<chapter number="1">
<verse number="1">In the beginning, God created the heavens and the earth.</verse>
<verse number="2">The earth was formless and empty.</verse>
</chapter>
<chapter number="2">
<verse number="1">The heavens, the earth, and all their vast array were finished.</verse>
</chapter>
</book>
<book id="JHN" name="John">
<chapter number="3">
<verse number="16">For God so loved the world.</verse>
<verse number="17">For God did not send his Son to judge.</verse>
</chapter>
</book>
</bible>`

func newTestServer(t *testing.T, cfg Config) (*Server, string) {
	t.Helper()
	dir := t.TempDir()
	fixtures := map[string]string{
		"kjv.xml": kjvFixture,
		"web.xml": webFixture,
	}
	for name, data := range fixtures {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(data), 0o644); err != nil {
			t.Fatalf("writing fixture: %v", err)
		}
	}
	provider, err := source.NewFSProvider(dir)
	if err != nil {
		t.Fatalf("NewFSProvider: %v", err)
	}
	return NewWithCatalog(cfg, catalog.New(provider)), dir
}

func get(t *testing.T, s *Server, path string) (*http.Response, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	res := rec.Result()
	var body map[string]interface{}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decoding %s response: %v", path, err)
	}
	return res, body
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, Config{})
	res, body := get(t, s, "/healthz")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", res.StatusCode)
	}
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestListTranslations(t *testing.T) {
	s, _ := newTestServer(t, Config{})
	res, body := get(t, s, "/v1/data")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", res.StatusCode)
	}
	translations, ok := body["translations"].([]interface{})
	if !ok || len(translations) != 2 {
		t.Fatalf("translations = %v", body["translations"])
	}
	first := translations[0].(map[string]interface{})
	if first["identifier"] != "kjv" || first["name"] != "King James Version" {
		t.Errorf("first translation = %v", first)
	}
	if first["url"] == "" {
		t.Error("missing url")
	}
}

func TestTranslationBooks(t *testing.T) {
	s, _ := newTestServer(t, Config{})
	res, body := get(t, s, "/v1/data/web")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %v", res.StatusCode, body)
	}
	bookList, ok := body["books"].([]interface{})
	if !ok || len(bookList) != 2 {
		t.Fatalf("books = %v", body["books"])
	}
	first := bookList[0].(map[string]interface{})
	if first["id"] != "GEN" || first["name"] != "Genesis" {
		t.Errorf("first book = %v", first)
	}
}

func TestTranslationNotFound(t *testing.T) {
	s, _ := newTestServer(t, Config{})
	res, body := get(t, s, "/v1/data/asv")
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d", res.StatusCode)
	}
	if body["error"] == "" {
		t.Errorf("body = %v", body)
	}
}

func TestChapters(t *testing.T) {
	s, _ := newTestServer(t, Config{})
	res, body := get(t, s, "/v1/data/web/GEN")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %v", res.StatusCode, body)
	}
	chapters, ok := body["chapters"].([]interface{})
	if !ok || len(chapters) != 2 {
		t.Fatalf("chapters = %v", body["chapters"])
	}

	res, _ = get(t, s, "/v1/data/web/ZZZ")
	if res.StatusCode != http.StatusNotFound {
		t.Errorf("unknown book status = %d", res.StatusCode)
	}
}

func TestVerses(t *testing.T) {
	s, _ := newTestServer(t, Config{})
	res, body := get(t, s, "/v1/data/web/GEN/1")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %v", res.StatusCode, body)
	}
	verses, ok := body["verses"].([]interface{})
	if !ok || len(verses) != 2 {
		t.Fatalf("verses = %v", body["verses"])
	}
	first := verses[0].(map[string]interface{})
	if first["verse"] != float64(1) || first["book_id"] != "GEN" {
		t.Errorf("first verse = %v", first)
	}
	if res.Header.Get("ETag") == "" {
		t.Error("missing ETag")
	}

	res, _ = get(t, s, "/v1/data/web/GEN/99")
	if res.StatusCode != http.StatusNotFound {
		t.Errorf("absent chapter status = %d", res.StatusCode)
	}
}

func TestRandomVerse(t *testing.T) {
	s, _ := newTestServer(t, Config{})
	res, body := get(t, s, "/v1/data/web/random")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %v", res.StatusCode, body)
	}
	if body["random_verse"] == nil {
		t.Fatalf("body = %v", body)
	}

	res, body = get(t, s, "/v1/data/web/random/NT")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("NT status = %d", res.StatusCode)
	}
	v := body["random_verse"].(map[string]interface{})
	if v["book_id"] != "JHN" {
		t.Errorf("NT random verse from %v", v["book_id"])
	}
}

func TestSearch(t *testing.T) {
	s, _ := newTestServer(t, Config{})
	res, body := get(t, s, "/v1/search?translation=web&q=loved+the+world")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %v", res.StatusCode, body)
	}
	verses := body["verses"].([]interface{})
	if len(verses) != 1 {
		t.Fatalf("verses = %v", verses)
	}

	res, _ = get(t, s, "/v1/search")
	if res.StatusCode != http.StatusBadRequest {
		t.Errorf("missing q status = %d", res.StatusCode)
	}
}

func TestReferenceLookup(t *testing.T) {
	s, _ := newTestServer(t, Config{})

	req := httptest.NewRequest(http.MethodGet, "/John+3:16?translation=web", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var vr VerseResponse
	if err := json.NewDecoder(rec.Body).Decode(&vr); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if vr.Reference != "John 3:16" {
		t.Errorf("reference = %q", vr.Reference)
	}
	if len(vr.Verses) != 1 || vr.Verses[0].Verse != 16 {
		t.Errorf("verses = %+v", vr.Verses)
	}
	if vr.Text != "For God so loved the world." {
		t.Errorf("text = %q", vr.Text)
	}
	if vr.TranslationID != "web" {
		t.Errorf("translation_id = %q", vr.TranslationID)
	}
}

func TestReferenceRangeWithNumbers(t *testing.T) {
	s, _ := newTestServer(t, Config{})

	req := httptest.NewRequest(http.MethodGet, "/John+3:16-17?translation=web&verse_numbers=true", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var vr VerseResponse
	if err := json.NewDecoder(rec.Body).Decode(&vr); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if vr.Reference != "John 3:16-17" {
		t.Errorf("reference = %q", vr.Reference)
	}
	want := "(16) For God so loved the world. (17) For God did not send his Son to judge."
	if vr.Text != want {
		t.Errorf("text = %q, want %q", vr.Text, want)
	}
}

func TestReferenceInvalid(t *testing.T) {
	s, _ := newTestServer(t, Config{})
	for _, path := range []string{"/NotARef", "/John3:16"} {
		res, body := get(t, s, path)
		if res.StatusCode != http.StatusNotFound {
			t.Errorf("%s status = %d, body %v", path, res.StatusCode, body)
		}
	}
}

func TestDefaultTranslation(t *testing.T) {
	s, _ := newTestServer(t, Config{DefaultTranslation: "web"})
	res, body := get(t, s, "/John+3:16")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %v", res.StatusCode, body)
	}
	if body["translation_id"] != "web" {
		t.Errorf("translation_id = %v", body["translation_id"])
	}
}

func TestImportEndpoint(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "web.xml"), []byte(webFixture), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	s, err := New(Config{
		SourcesDir:   dir,
		DatabasePath: filepath.Join(dir, "bible.db"),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()

	req := httptest.NewRequest(http.MethodPost, "/v1/import/web", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var body map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["verses"] != float64(5) {
		t.Errorf("verses = %v, want 5", body["verses"])
	}
	if body["job_id"] == "" {
		t.Error("missing job_id")
	}
}
