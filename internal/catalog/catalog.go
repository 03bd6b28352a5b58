// Package catalog discovers the translations available from a source
// provider and hands out parsed, cached documents for them. Discovery is
// memoized: the provider is listed once per catalog lifetime and each
// source file is read once to extract its display metadata.
package catalog

import (
	"context"
	"strings"
	"sync"

	"github.com/openscripture/bibleapi/core/cache"
	coreerrors "github.com/openscripture/bibleapi/core/errors"
	"github.com/openscripture/bibleapi/core/xml"
	"github.com/openscripture/bibleapi/internal/logging"
	"github.com/openscripture/bibleapi/internal/resolver"
	"github.com/openscripture/bibleapi/internal/source"
)

// Translation describes one available Bible translation.
type Translation struct {
	Identifier   string `json:"identifier"`
	Name         string `json:"name"`
	Language     string `json:"language"`
	LanguageCode string `json:"language_code"`
	License      string `json:"license"`
	SourcePath   string `json:"-"`
	SourceHash   string `json:"-"`
}

// Catalog lists translations and resolves their documents. Safe for
// concurrent use.
type Catalog struct {
	provider source.Provider
	docs     *cache.LRU[string, *resolver.Document]

	mu           sync.Mutex
	translations []Translation
	byID         map[string]Translation
	listed       bool
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithDocumentCacheSize bounds the number of parsed documents kept in
// memory at once.
func WithDocumentCacheSize(n int) Option {
	return func(c *Catalog) {
		c.docs = cache.New[string, *resolver.Document](cache.Config{MaxSize: n})
	}
}

// New creates a catalog over the given provider.
func New(provider source.Provider, opts ...Option) *Catalog {
	c := &Catalog{
		provider: provider,
		docs:     cache.New[string, *resolver.Document](cache.Config{MaxSize: 8}),
		byID:     make(map[string]Translation),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// List returns every available translation, in provider listing order.
// The provider is consulted once; later calls return the memoized slice.
func (c *Catalog) List(ctx context.Context) ([]Translation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.listed {
		return c.translations, nil
	}

	names, err := c.provider.List(ctx)
	if err != nil {
		return nil, coreerrors.Wrap(err, "listing translation sources")
	}

	for _, name := range names {
		identifier := source.Identifier(name)
		if identifier == "" {
			continue
		}
		t := c.describe(ctx, name, identifier)
		if _, seen := c.byID[identifier]; !seen {
			c.translations = append(c.translations, t)
		} else {
			for i := range c.translations {
				if c.translations[i].Identifier == identifier {
					c.translations[i] = t
				}
			}
		}
		c.byID[identifier] = t
		logging.CatalogEvent("translation_discovered", identifier)
	}
	c.listed = true
	return c.translations, nil
}

// Get returns the translation with the given identifier,
// case-insensitively. Returns ErrNotFound when absent.
func (c *Catalog) Get(ctx context.Context, identifier string) (Translation, error) {
	if _, err := c.List(ctx); err != nil {
		return Translation{}, err
	}
	c.mu.Lock()
	t, ok := c.byID[strings.ToLower(identifier)]
	c.mu.Unlock()
	if !ok {
		return Translation{}, coreerrors.NewNotFound("translation", identifier)
	}
	return t, nil
}

// Default returns the first listed translation.
func (c *Catalog) Default(ctx context.Context) (Translation, error) {
	list, err := c.List(ctx)
	if err != nil {
		return Translation{}, err
	}
	if len(list) == 0 {
		return Translation{}, coreerrors.NewNotFound("translation", "default")
	}
	return list[0], nil
}

// Document returns the parsed document for a translation, fetching and
// parsing at most once per identifier while it stays cached. Concurrent
// callers for the same identifier share one fetch.
func (c *Catalog) Document(ctx context.Context, identifier string) (*resolver.Document, error) {
	t, err := c.Get(ctx, identifier)
	if err != nil {
		return nil, err
	}
	return c.docs.GetOrCompute(t.Identifier, func() (*resolver.Document, error) {
		data, err := c.provider.Fetch(ctx, t.SourcePath)
		if err != nil {
			return nil, coreerrors.Wrap(err, "fetching translation source")
		}
		doc, err := resolver.Parse(data)
		if err != nil {
			return nil, coreerrors.NewParse("xml", t.SourcePath, err.Error())
		}
		logging.CatalogEvent("translation_loaded", t.Identifier)
		return doc, nil
	})
}

// describe reads a source file and extracts its display metadata. Failures
// degrade to a minimal record so a bad file never hides the translation.
func (c *Catalog) describe(ctx context.Context, name, identifier string) Translation {
	t := Translation{
		Identifier:   identifier,
		Name:         strings.ToUpper(identifier),
		Language:     "english",
		LanguageCode: "en",
		License:      "Public Domain",
		SourcePath:   name,
	}
	if strings.Contains(identifier, "romanian") || strings.HasPrefix(identifier, "ro-") {
		t.Language = "romanian"
		t.LanguageCode = "ro"
	}

	data, err := c.provider.Fetch(ctx, name)
	if err != nil {
		t.License = "Unknown"
		logging.Warn("could not read translation source", "identifier", identifier, "error", err)
		return t
	}
	t.SourceHash = source.Hash(data)

	doc, err := xml.Parse(data)
	if err != nil {
		t.License = "Unknown"
		logging.Warn("could not parse translation source", "identifier", identifier, "error", err)
		return t
	}
	applyMetadata(doc, &t)
	return t
}

// applyMetadata pulls title and license from the document header. OSIS
// files carry a work/title and work/rights header; other dialects at best
// have title or name attributes on the root.
func applyMetadata(doc *xml.Document, t *Translation) {
	root := doc.Root()
	if root == nil {
		return
	}

	if strings.HasSuffix(strings.ToLower(root.Name()), "osis") {
		if n, err := doc.XPathFirst("//work/title"); err == nil && n != nil {
			if title := strings.TrimSpace(n.InnerText()); title != "" {
				t.Name = title
			}
		}
		if n, err := doc.XPathFirst("//work/rights"); err == nil && n != nil {
			if rights := strings.TrimSpace(n.InnerText()); rights != "" {
				t.License = rights
			}
		}
		return
	}

	for _, attr := range []string{"title", "name"} {
		if v := strings.TrimSpace(root.Attr(attr)); v != "" {
			t.Name = v
			return
		}
	}
}
