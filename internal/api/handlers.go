package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/openscripture/bibleapi/core/books"
	coreerrors "github.com/openscripture/bibleapi/core/errors"
	"github.com/openscripture/bibleapi/core/reference"
	"github.com/openscripture/bibleapi/internal/catalog"
	"github.com/openscripture/bibleapi/internal/importer"
	"github.com/openscripture/bibleapi/internal/resolver"
)

// TranslationInfo is a catalog entry as served to clients.
type TranslationInfo struct {
	Identifier   string `json:"identifier"`
	Name         string `json:"name"`
	Language     string `json:"language"`
	LanguageCode string `json:"language_code"`
	License      string `json:"license"`
	URL          string `json:"url"`
}

// BookInfo is a book of a translation.
type BookInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ChapterInfo is a chapter of a book.
type ChapterInfo struct {
	BookID  string `json:"book_id"`
	Book    string `json:"book"`
	Chapter int    `json:"chapter"`
	URL     string `json:"url"`
}

// VerseResponse answers a reference lookup.
type VerseResponse struct {
	Reference       string           `json:"reference"`
	Verses          []resolver.Verse `json:"verses"`
	Text            string           `json:"text"`
	TranslationID   string           `json:"translation_id"`
	TranslationName string           `json:"translation_name"`
	TranslationNote string           `json:"translation_note"`
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps domain errors onto status codes: missing
// resources and unparseable references are 404s, everything else is a 500.
func respondServiceError(w http.ResponseWriter, err error) {
	var refErr *coreerrors.ReferenceError
	switch {
	case errors.Is(err, coreerrors.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &refErr):
		respondError(w, http.StatusNotFound, refErr.Error())
	default:
		respondError(w, http.StatusInternalServerError, "service unavailable")
	}
}

func baseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

func (s *Server) translationInfo(r *http.Request, t catalog.Translation) TranslationInfo {
	return TranslationInfo{
		Identifier:   t.Identifier,
		Name:         t.Name,
		Language:     t.Language,
		LanguageCode: t.LanguageCode,
		License:      t.License,
		URL:          fmt.Sprintf("%s/v1/data/%s", baseURL(r), t.Identifier),
	}
}

// setETag exposes the translation's source content hash so clients can
// detect when the underlying XML changed.
func setETag(w http.ResponseWriter, t catalog.Translation) {
	if t.SourceHash != "" {
		w.Header().Set("ETag", `"`+t.SourceHash+`"`)
	}
}

// lookupTranslation resolves the requested identifier, falling back to the
// configured default and then to the first listed translation.
func (s *Server) lookupTranslation(r *http.Request, identifier string) (catalog.Translation, error) {
	if identifier == "" {
		identifier = s.cfg.DefaultTranslation
	}
	if identifier == "" {
		return s.catalog.Default(r.Context())
	}
	return s.catalog.Get(r.Context(), identifier)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Has("random") {
		s.serveRandom(w, r, "", nil)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"name": "Bible API",
		"endpoints": []string{
			"GET /healthz",
			"GET /v1/data",
			"GET /v1/data/{translation}",
			"GET /v1/data/{translation}/random",
			"GET /v1/data/{translation}/random/{bookset}",
			"GET /v1/data/{translation}/{book}",
			"GET /v1/data/{translation}/{book}/{chapter}",
			"GET /v1/search?q={text}",
			"GET /{reference}",
		},
	})
}

func (s *Server) handleTranslations(w http.ResponseWriter, r *http.Request) {
	list, err := s.catalog.List(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	infos := make([]TranslationInfo, 0, len(list))
	for _, t := range list {
		infos = append(infos, s.translationInfo(r, t))
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"translations": infos})
}

func (s *Server) handleTranslation(w http.ResponseWriter, r *http.Request) {
	t, err := s.lookupTranslation(r, r.PathValue("translation"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	doc, err := s.catalog.Document(r.Context(), t.Identifier)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	var list []BookInfo
	for _, b := range doc.Books() {
		if !books.IsProtestant(books.Normalize(b.ID)) {
			continue
		}
		list = append(list, BookInfo{
			ID:   b.ID,
			Name: b.Name,
			URL:  fmt.Sprintf("%s/v1/data/%s/%s", baseURL(r), t.Identifier, b.ID),
		})
	}
	setETag(w, t)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"translation": s.translationInfo(r, t),
		"books":       list,
	})
}

func (s *Server) handleChapters(w http.ResponseWriter, r *http.Request) {
	t, err := s.lookupTranslation(r, r.PathValue("translation"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	doc, err := s.catalog.Document(r.Context(), t.Identifier)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	book := r.PathValue("book")
	chapters := doc.ChaptersForBook(book)
	if len(chapters) == 0 {
		respondError(w, http.StatusNotFound, fmt.Sprintf("book %q not found", book))
		return
	}
	var list []ChapterInfo
	for _, c := range chapters {
		list = append(list, ChapterInfo{
			BookID:  c.BookID,
			Book:    c.Book,
			Chapter: c.Chapter,
			URL:     fmt.Sprintf("%s/v1/data/%s/%s/%d", baseURL(r), t.Identifier, c.BookID, c.Chapter),
		})
	}
	setETag(w, t)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"translation": s.translationInfo(r, t),
		"chapters":    list,
	})
}

func (s *Server) handleVerses(w http.ResponseWriter, r *http.Request) {
	t, err := s.lookupTranslation(r, r.PathValue("translation"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	chapter, err := strconv.Atoi(r.PathValue("chapter"))
	if err != nil {
		respondError(w, http.StatusNotFound, "chapter must be a number")
		return
	}
	doc, err := s.catalog.Document(r.Context(), t.Identifier)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	book := r.PathValue("book")
	verses := doc.VersesForChapter(book, chapter, 0, 0)
	if len(verses) == 0 {
		respondError(w, http.StatusNotFound,
			fmt.Sprintf("no verses found for %s chapter %d", book, chapter))
		return
	}
	setETag(w, t)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"translation": s.translationInfo(r, t),
		"verses":      verses,
	})
}

func (s *Server) handleRandom(w http.ResponseWriter, r *http.Request) {
	s.serveRandom(w, r, r.PathValue("translation"), bookSet(r.PathValue("bookset")))
}

// bookSet expands the OT/NT shorthand, otherwise splitting a comma list of
// book identifiers.
func bookSet(spec string) []string {
	switch strings.ToUpper(spec) {
	case "":
		return nil
	case "OT":
		return books.OldTestament()
	case "NT":
		return books.NewTestament()
	default:
		parts := strings.Split(spec, ",")
		out := parts[:0]
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
}

func (s *Server) serveRandom(w http.ResponseWriter, r *http.Request, identifier string, filter []string) {
	t, err := s.lookupTranslation(r, identifier)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	doc, err := s.catalog.Document(r.Context(), t.Identifier)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	v := doc.RandomVerse(filter)
	if v == nil {
		respondError(w, http.StatusNotFound, "no verses available")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"translation":  s.translationInfo(r, t),
		"random_verse": v,
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		respondError(w, http.StatusBadRequest, "missing query parameter q")
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}
	t, err := s.lookupTranslation(r, r.URL.Query().Get("translation"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	doc, err := s.catalog.Document(r.Context(), t.Identifier)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	hits := doc.Search(query, limit)
	if hits == nil {
		hits = []resolver.Verse{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"translation": s.translationInfo(r, t),
		"query":       query,
		"verses":      hits,
	})
}

// handleReference serves the catch-all verse lookup, e.g. GET /John+3:16.
func (s *Server) handleReference(w http.ResponseWriter, r *http.Request) {
	ranges, err := reference.Parse(r.PathValue("ref"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	rng := ranges[0]

	t, err := s.lookupTranslation(r, r.URL.Query().Get("translation"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	doc, err := s.catalog.Document(r.Context(), t.Identifier)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	verses := doc.VersesForChapter(rng.Book, rng.Chapter, rng.VerseStart, rng.VerseEnd)
	if len(verses) == 0 {
		respondError(w, http.StatusNotFound, "verses not found")
		return
	}

	withNumbers := r.URL.Query().Get("verse_numbers") == "true"
	var text strings.Builder
	for i, v := range verses {
		if i > 0 {
			text.WriteString(" ")
		}
		if withNumbers {
			fmt.Fprintf(&text, "(%d) %s", v.Verse, v.Text)
		} else {
			text.WriteString(v.Text)
		}
	}

	displayRef := fmt.Sprintf("%s %d:%d", verses[0].Book, rng.Chapter, rng.VerseStart)
	if rng.VerseEnd > rng.VerseStart {
		displayRef += fmt.Sprintf("-%d", rng.VerseEnd)
	}
	setETag(w, t)
	respondJSON(w, http.StatusOK, VerseResponse{
		Reference:       displayRef,
		Verses:          verses,
		Text:            text.String(),
		TranslationID:   t.Identifier,
		TranslationName: t.Name,
		TranslationNote: t.License,
	})
}

// handleImport runs a synchronous import of one translation into the
// store, mirroring progress to the WebSocket hub.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	identifier := r.PathValue("translation")
	opts := importer.Options{
		DryRun: r.URL.Query().Get("dry_run") == "true",
		Progress: func(u importer.Update) {
			s.hub.Broadcast(ProgressMessage{
				Type:      "progress",
				Operation: "import",
				Stage:     u.Stage,
				Progress:  int(u.Fraction * 100),
				Message:   fmt.Sprintf("%s %s", u.Translation, u.Stage),
			})
		},
	}
	result, err := s.importer.Run(r.Context(), identifier, opts)
	if err != nil {
		s.hub.Broadcast(ProgressMessage{
			Type:      "error",
			Operation: "import",
			Message:   err.Error(),
		})
		respondServiceError(w, err)
		return
	}
	s.hub.Broadcast(ProgressMessage{
		Type:      "complete",
		Operation: "import",
		Progress:  100,
		Message:   fmt.Sprintf("imported %s", result.Translation),
		Data: map[string]interface{}{
			"job_id": result.JobID,
			"books":  result.Books,
			"verses": result.Verses,
		},
	})
	respondJSON(w, http.StatusOK, result)
}
