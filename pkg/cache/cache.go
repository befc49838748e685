// Package cache stores rendered diagram artifacts.
//
// Rendering through rsvg-convert or Graphviz is the slowest step of an
// export, and the same model is often exported repeatedly while it is being
// edited. The cache maps a hash of the expanded diagram plus the render
// settings to the rendered bytes.
//
// # Backends
//
//   - [FileCache]: one file per entry under a directory (CLI default)
//   - [RedisCache]: a shared Redis instance (HTTP server)
//   - [NullCache]: caching disabled
//
// # Keys
//
// Keys are built by a [Keyer]. [DefaultKeyer] hashes the render settings;
// [ScopedKeyer] adds a prefix so several tools can share one backend.
//
//	key := keyer.ArtifactKey(cache.Hash(diagramJSON), cache.ArtifactKeyOpts{Format: "pdf", Engine: "native"})
//	data, hit, err := c.Get(ctx, key)
//
// Cache failures are never fatal to an export. Callers log them and render
// as if the entry were missing.
package cache

import (
	"context"
	"time"
)

// DefaultTTL is how long artifacts stay cached.
const DefaultTTL = 7 * 24 * time.Hour

// Cache is a byte store with expiring entries. Implementations are safe for
// concurrent use.
type Cache interface {
	// Get returns the entry for key. A missing or expired entry is reported
	// with hit == false and a nil error.
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)
	// Set stores data under key. A ttl of zero means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// Clearer is implemented by caches that can drop all of their entries.
type Clearer interface {
	Clear(ctx context.Context) error
}

// ArtifactKeyOpts holds the render settings that change an artifact's bytes.
type ArtifactKeyOpts struct {
	Format string  `json:"format"`
	Engine string  `json:"engine"`
	Scale  float64 `json:"scale,omitempty"`
	Unit   float64 `json:"unit,omitempty"`
	// Background and Title are drawn into the artifact.
	Background string `json:"background,omitempty"`
	Title      string `json:"title,omitempty"`
}

// Keyer builds cache keys.
type Keyer interface {
	// ArtifactKey returns the key of a rendered artifact. diagramHash
	// identifies the expanded diagram.
	ArtifactKey(diagramHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer produces "artifact:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ArtifactKey implements [Keyer].
func (DefaultKeyer) ArtifactKey(diagramHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", diagramHash, opts)
}
