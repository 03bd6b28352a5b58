// Command bibleapi serves Bible translations over HTTP and imports them
// into SQLite for offline use.
package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/openscripture/bibleapi/core/reference"
	"github.com/openscripture/bibleapi/internal/api"
	"github.com/openscripture/bibleapi/internal/catalog"
	"github.com/openscripture/bibleapi/internal/importer"
	"github.com/openscripture/bibleapi/internal/logging"
	"github.com/openscripture/bibleapi/internal/source"
	"github.com/openscripture/bibleapi/internal/store"
)

const version = "0.1.0"

// CLI defines the command-line interface for bibleapi.
var CLI struct {
	LogLevel  string `name:"log-level" default:"info" enum:"debug,info,warn,error" help:"Log level"`
	LogFormat string `name:"log-format" default:"text" enum:"json,text" help:"Log output format"`

	Serve        ServeCmd        `cmd:"" help:"Start the REST API server"`
	Import       ImportCmd       `cmd:"" help:"Import translations into SQLite"`
	Translations TranslationsCmd `cmd:"" help:"List available translations"`
	Verse        VerseCmd        `cmd:"" help:"Look up a verse reference"`
	Version      VersionCmd      `cmd:"" help:"Print version information"`
}

func initLogging() {
	level := map[string]logging.Level{
		"debug": logging.LevelDebug,
		"info":  logging.LevelInfo,
		"warn":  logging.LevelWarn,
		"error": logging.LevelError,
	}[CLI.LogLevel]
	format := logging.FormatText
	if CLI.LogFormat == "json" {
		format = logging.FormatJSON
	}
	logging.InitLogger(level, format)
}

func openCatalog(sourcesDir string) (*catalog.Catalog, error) {
	provider, err := source.NewFSProvider(sourcesDir)
	if err != nil {
		return nil, err
	}
	return catalog.New(provider), nil
}

// ServeCmd starts the REST API server.
type ServeCmd struct {
	Port        int      `help:"HTTP server port" default:"8080"`
	Sources     string   `help:"Directory containing translation XML files" default:"./bibles" type:"path"`
	Database    string   `help:"SQLite database path enabling the import endpoint" type:"path"`
	Translation string   `help:"Default translation identifier"`
	CacheSize   int      `name:"cache-size" help:"Parsed documents kept in memory" default:"8"`
	Origins     []string `help:"CORS allowed origins (empty = allow all)"`
	TLSCert     string   `name:"tls-cert" help:"TLS certificate file" type:"path"`
	TLSKey      string   `name:"tls-key" help:"TLS private key file" type:"path"`
}

func (c *ServeCmd) Run() error {
	initLogging()
	srv, err := api.New(api.Config{
		Port:               c.Port,
		SourcesDir:         c.Sources,
		DatabasePath:       c.Database,
		DefaultTranslation: c.Translation,
		DocumentCacheSize:  c.CacheSize,
		AllowedOrigins:     c.Origins,
		TLS: api.TLSConfig{
			Enabled:  c.TLSCert != "" || c.TLSKey != "",
			CertFile: c.TLSCert,
			KeyFile:  c.TLSKey,
		},
	})
	if err != nil {
		return err
	}
	defer srv.Close()
	return srv.Start()
}

// ImportCmd imports one or more translations into the SQLite store.
type ImportCmd struct {
	Identifiers []string `arg:"" optional:"" help:"Translation identifiers (default: all)"`
	Sources     string   `help:"Directory containing translation XML files" default:"./bibles" type:"path"`
	Database    string   `help:"SQLite database path" default:"./bible.db" type:"path"`
	BatchSize   int      `name:"batch-size" help:"Verses per insert transaction" default:"2000"`
	DryRun      bool     `name:"dry-run" help:"Extract and count without writing"`
	NoProgress  bool     `name:"no-progress" help:"Disable the progress bar"`
}

func (c *ImportCmd) Run() error {
	initLogging()
	ctx := context.Background()

	cat, err := openCatalog(c.Sources)
	if err != nil {
		return err
	}
	var st *store.Store
	if !c.DryRun {
		st, err = store.Open(c.Database)
		if err != nil {
			return err
		}
		defer st.Close()
	}
	im := importer.New(cat, st)

	identifiers := c.Identifiers
	if len(identifiers) == 0 {
		list, err := cat.List(ctx)
		if err != nil {
			return err
		}
		for _, t := range list {
			identifiers = append(identifiers, t.Identifier)
		}
	}

	for _, id := range identifiers {
		result, err := im.Run(ctx, id, importer.Options{
			BatchSize: c.BatchSize,
			DryRun:    c.DryRun,
			ShowBar:   !c.NoProgress,
		})
		if err != nil {
			return fmt.Errorf("importing %s: %w", id, err)
		}
		verb := "imported"
		if result.DryRun {
			verb = "would import"
		}
		fmt.Printf("%s %s: %d books, %d verses\n", verb, result.Translation, result.Books, result.Verses)
	}
	return nil
}

// TranslationsCmd lists available translations.
type TranslationsCmd struct {
	Sources string `help:"Directory containing translation XML files" default:"./bibles" type:"path"`
}

func (c *TranslationsCmd) Run() error {
	initLogging()
	cat, err := openCatalog(c.Sources)
	if err != nil {
		return err
	}
	list, err := cat.List(context.Background())
	if err != nil {
		return err
	}
	for _, t := range list {
		fmt.Printf("%-20s %s (%s, %s)\n", t.Identifier, t.Name, t.Language, t.License)
	}
	return nil
}

// VerseCmd looks up a verse reference and prints its text.
type VerseCmd struct {
	Reference    string `arg:"" help:"Reference such as 'John 3:16' or 'Gen 1:1-3'"`
	Sources      string `help:"Directory containing translation XML files" default:"./bibles" type:"path"`
	Translation  string `help:"Translation identifier (default: first available)"`
	VerseNumbers bool   `name:"verse-numbers" help:"Prefix each verse with its number"`
}

func (c *VerseCmd) Run() error {
	initLogging()
	ctx := context.Background()

	ranges, err := reference.Parse(c.Reference)
	if err != nil {
		return err
	}
	rng := ranges[0]

	cat, err := openCatalog(c.Sources)
	if err != nil {
		return err
	}
	t, err := func() (catalog.Translation, error) {
		if c.Translation != "" {
			return cat.Get(ctx, c.Translation)
		}
		return cat.Default(ctx)
	}()
	if err != nil {
		return err
	}
	doc, err := cat.Document(ctx, t.Identifier)
	if err != nil {
		return err
	}

	verses := doc.VersesForChapter(rng.Book, rng.Chapter, rng.VerseStart, rng.VerseEnd)
	if len(verses) == 0 {
		return fmt.Errorf("no verses found for %q in %s", c.Reference, t.Identifier)
	}

	var out strings.Builder
	for i, v := range verses {
		if i > 0 {
			out.WriteString(" ")
		}
		if c.VerseNumbers {
			fmt.Fprintf(&out, "(%d) %s", v.Verse, v.Text)
		} else {
			out.WriteString(v.Text)
		}
	}
	fmt.Printf("%s %d:%d (%s)\n%s\n", verses[0].Book, rng.Chapter, rng.VerseStart, t.Identifier, out.String())
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("bibleapi version %s\n", version)
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("bibleapi"),
		kong.Description("Bible verses and translations API"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	err := ctx.Run(ctx)
	ctx.FatalIfErrorf(err)
}
