// Package cache keeps the last fetched pattern catalog of each tool, so a
// configuration can be matched against it without calling Codacy.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/JNZader/eslintsync/internal/codacy"
)

const catalogPrefix = "catalog:"

// ErrNotFound is returned when no usable catalog is cached for a tool.
var ErrNotFound = errors.New("no cached catalog")

// Options configures the catalog cache.
type Options struct {
	// Dir is the badger directory. Ignored when InMemory is set.
	Dir string

	// InMemory keeps the cache in memory only.
	InMemory bool

	// TTL is how long a catalog stays usable. Zero keeps entries forever.
	TTL time.Duration
}

// Entry is a cached catalog.
type Entry struct {
	ToolUUID  string                  `json:"tool_uuid"`
	FetchedAt time.Time               `json:"fetched_at"`
	Patterns  []codacy.CatalogPattern `json:"patterns"`
}

// CatalogCache stores catalogs in badger, keyed by tool UUID.
type CatalogCache struct {
	mu  sync.Mutex
	db  *badger.DB
	ttl time.Duration
	now func() time.Time
}

// Open opens or creates the cache.
func Open(opts Options) (*CatalogCache, error) {
	badgerOpts := badger.DefaultOptions(opts.Dir)
	if opts.InMemory {
		badgerOpts = badger.DefaultOptions("").WithInMemory(true)
	}
	badgerOpts.Logger = nil

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("opening badger db: %w", err)
	}
	return &CatalogCache{db: db, ttl: opts.TTL, now: time.Now}, nil
}

func catalogKey(toolUUID string) []byte {
	return []byte(catalogPrefix + toolUUID)
}

// Put replaces the cached catalog of a tool.
func (c *CatalogCache) Put(toolUUID string, patterns []codacy.CatalogPattern) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := json.Marshal(Entry{
		ToolUUID:  toolUUID,
		FetchedAt: c.now().UTC(),
		Patterns:  patterns,
	})
	if err != nil {
		return fmt.Errorf("marshal catalog: %w", err)
	}

	return c.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(catalogKey(toolUUID), data)
		if c.ttl > 0 {
			e = e.WithTTL(c.ttl)
		}
		return txn.SetEntry(e)
	})
}

// Get returns the cached catalog of a tool, or ErrNotFound when there is
// none or it expired.
func (c *CatalogCache) Get(toolUUID string) (*Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var entry Entry
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(catalogKey(toolUUID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &entry)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w for tool %s", ErrNotFound, toolUUID)
	}
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}

	// Badger expiry has second granularity; FetchedAt is exact.
	if c.ttl > 0 && c.now().Sub(entry.FetchedAt) > c.ttl {
		return nil, fmt.Errorf("%w for tool %s (expired)", ErrNotFound, toolUUID)
	}
	return &entry, nil
}

// Clear removes all cached catalogs.
func (c *CatalogCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.db.DropPrefix([]byte(catalogPrefix))
}

// Close releases the database.
func (c *CatalogCache) Close() error {
	return c.db.Close()
}
