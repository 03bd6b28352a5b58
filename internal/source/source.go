// Package source abstracts the storage backing Bible XML documents.
// A Provider lists available source identifiers and returns raw document
// bytes, hiding whether the data lives in a local directory, blob storage,
// or something else.
package source

import (
	"context"
	"encoding/hex"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"
	"github.com/zeebo/blake3"

	"github.com/openscripture/bibleapi/core/errors"
)

// Provider returns raw document content for source identifiers.
type Provider interface {
	// List returns the identifiers of all available XML documents.
	List(ctx context.Context) ([]string, error)

	// Fetch returns the decompressed document bytes for an identifier.
	// Returns an error unwrapping to errors.ErrNotFound when absent.
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// Identifier derives the translation identifier for a source path:
// the final path element without extension, lowercased.
func Identifier(name string) string {
	base := name
	if i := strings.LastIndex(base, "/"); i >= 0 {
		base = base[i+1:]
	}
	base = strings.TrimSuffix(base, ".xz")
	base = strings.TrimSuffix(base, ".xml")
	return strings.ToLower(base)
}

// Hash returns the hex-encoded BLAKE3 hash of document content, used as a
// stable content address for caching and ETags.
func Hash(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// FSProvider serves documents from a local directory tree. Files ending in
// .xml are served as-is; .xml.xz files are decompressed transparently.
type FSProvider struct {
	root string
}

// NewFSProvider creates a provider rooted at dir. The directory must exist;
// without a reachable source no catalog can be built.
func NewFSProvider(dir string) (*FSProvider, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, errors.NewIO("open", dir, err)
	}
	if !info.IsDir() {
		return nil, errors.NewIO("open", dir, errors.ErrInvalidInput)
	}
	return &FSProvider{root: dir}, nil
}

// List walks the source directory and returns relative slash-separated
// paths of every XML document found.
func (p *FSProvider) List(ctx context.Context) ([]string, error) {
	var names []string
	err := filepath.WalkDir(p.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			return nil
		}
		name := strings.ToLower(d.Name())
		if !strings.HasSuffix(name, ".xml") && !strings.HasSuffix(name, ".xml.xz") {
			return nil
		}
		rel, err := filepath.Rel(p.root, path)
		if err != nil {
			return err
		}
		names = append(names, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, errors.NewIO("list", p.root, err)
	}
	return names, nil
}

// Fetch reads a document by its relative path, decompressing .xz content.
func (p *FSProvider) Fetch(ctx context.Context, name string) ([]byte, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	path := filepath.Join(p.root, filepath.FromSlash(name))
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFound("source", name)
		}
		return nil, errors.NewIO("open", name, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(strings.ToLower(name), ".xz") {
		xr, err := xz.NewReader(f)
		if err != nil {
			return nil, errors.NewIO("decompress", name, err)
		}
		r = xr
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.NewIO("read", name, err)
	}
	return data, nil
}
