package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/JNZader/eslintsync/internal/cache"
	"github.com/JNZader/eslintsync/internal/codacy"
	"github.com/JNZader/eslintsync/internal/config"
	"github.com/JNZader/eslintsync/internal/history"
	"github.com/JNZader/eslintsync/internal/logger"
	"github.com/JNZader/eslintsync/internal/standard"
)

func stateDir(cfg config.StateConfig) (string, error) {
	dir, err := cfg.ResolveDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating state directory: %w", err)
	}
	return dir, nil
}

func openHistory(cfg config.StateConfig) (*history.Store, error) {
	dir, err := stateDir(cfg)
	if err != nil {
		return nil, err
	}
	return history.NewStore(history.StoreConfig{Path: filepath.Join(dir, "history.db")})
}

func openCatalogCache(cfg config.StateConfig) (*cache.CatalogCache, error) {
	dir, err := stateDir(cfg)
	if err != nil {
		return nil, err
	}
	return cache.Open(cache.Options{Dir: filepath.Join(dir, "catalog"), TTL: cfg.CatalogTTL})
}

// cachingAPI stores every drained catalog in the catalog cache.
type cachingAPI struct {
	standard.API
	cache *cache.CatalogCache
	log   *logger.Logger
}

func (c cachingAPI) ListPatterns(ctx context.Context, standardID int64, toolUUID string, pageSize int) ([]codacy.CatalogPattern, error) {
	patterns, err := c.API.ListPatterns(ctx, standardID, toolUUID, pageSize)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Put(toolUUID, patterns); err != nil {
		c.log.Warn("caching catalog of tool %s: %v", toolUUID, err)
	}
	return patterns, nil
}

// withCatalogCache wraps api so drained catalogs are cached. The returned
// func releases the cache; cache failures only log a warning.
func withCatalogCache(api standard.API, cfg config.StateConfig, log *logger.Logger) (standard.API, func()) {
	if !cfg.CatalogCache {
		return api, func() {}
	}
	c, err := openCatalogCache(cfg)
	if err != nil {
		log.Warn("catalog cache disabled: %v", err)
		return api, func() {}
	}
	return cachingAPI{API: api, cache: c, log: log}, func() { _ = c.Close() }
}
