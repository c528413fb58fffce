package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"reception-backend/internal/shared/telemetry"
)

// DiskCache stores entries as JSON files under baseDir, sharded by the first
// two hex characters of the digest to bound directory fan-out.
type DiskCache struct {
	baseDir string
	ttl     time.Duration
}

// NewDiskCache creates a disk cache rooted at baseDir with the given TTL.
func NewDiskCache(baseDir string, ttl time.Duration) *DiskCache {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &DiskCache{baseDir: baseDir, ttl: ttl}
}

// TTL returns the configured entry lifetime.
func (c *DiskCache) TTL() time.Duration { return c.ttl }

// Lookup returns the entry for digest, or ErrMiss. A corrupt or expired file
// is deleted and reported as a miss.
func (c *DiskCache) Lookup(ctx context.Context, digest string) (Entry, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, err
	}
	path, err := c.entryPath(digest)
	if err != nil {
		return Entry{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Entry{}, ErrMiss
		}
		return Entry{}, fmt.Errorf("cache read %s: %w", digest, err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil || entry.Digest != digest {
		telemetry.Error("cache.corrupt_entry", map[string]any{"digest": digest})
		_ = os.Remove(path)
		return Entry{}, ErrMiss
	}

	if time.Now().UTC().After(entry.ExpiresAt) {
		_ = os.Remove(path)
		return Entry{}, ErrMiss
	}
	return entry, nil
}

// Store writes an entry atomically via temp-file-then-rename so a crash never
// leaves a partial entry visible. Concurrent stores for the same digest race
// harmlessly: identical digests imply identical payloads, last rename wins.
func (c *DiskCache) Store(ctx context.Context, entry Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := c.entryPath(entry.Digest)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	if entry.ExpiresAt.IsZero() {
		entry.ExpiresAt = entry.CreatedAt.Add(c.ttl)
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("cache marshal %s: %w", entry.Digest, err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cache mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp_*")
	if err != nil {
		return fmt.Errorf("cache temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("cache write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("cache close: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("cache rename: %w", err)
	}
	return nil
}

// Sweep removes entries whose expiry is before now and returns the count.
// It is idempotent and safe to run concurrently with lookups: removal of an
// expired file never blocks an in-flight read.
func (c *DiskCache) Sweep(ctx context.Context, now time.Time) (int, error) {
	shards, err := os.ReadDir(c.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("cache sweep: %w", err)
	}

	evicted := 0
	for _, shard := range shards {
		if err := ctx.Err(); err != nil {
			return evicted, err
		}
		if !shard.IsDir() {
			continue
		}
		shardDir := filepath.Join(c.baseDir, shard.Name())
		files, err := os.ReadDir(shardDir)
		if err != nil {
			continue
		}
		for _, f := range files {
			if f.IsDir() || strings.HasPrefix(f.Name(), ".tmp_") {
				continue
			}
			path := filepath.Join(shardDir, f.Name())
			data, err := os.ReadFile(path)
			if err != nil {
				continue
			}
			var entry Entry
			if err := json.Unmarshal(data, &entry); err != nil {
				// Unreadable entries are evicted like expired ones.
				if os.Remove(path) == nil {
					evicted++
				}
				continue
			}
			if now.After(entry.ExpiresAt) {
				if os.Remove(path) == nil {
					evicted++
				}
			}
		}
	}
	if evicted > 0 {
		telemetry.Info("cache.sweep", map[string]any{"evicted": evicted})
	}
	return evicted, nil
}

func (c *DiskCache) entryPath(digest string) (string, error) {
	if len(digest) < 4 || strings.ContainsAny(digest, "/\\.") {
		return "", fmt.Errorf("invalid digest: %q", digest)
	}
	return filepath.Join(c.baseDir, digest[:2], digest+".json"), nil
}

var _ Cache = (*DiskCache)(nil)
