package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Laky-64/gologging"
	"github.com/segmentio/encoding/json"
)

// FileIDEntry is one cached Telegram file id with the moment it was stored.
type FileIDEntry struct {
	FileID    string `json:"file_id"`
	Timestamp int64  `json:"timestamp"`
}

// FileIDCache maps SoundCloud track ids to previously uploaded Telegram file ids,
// so the same audio is never uploaded twice within the expiry window.
// Every mutation is persisted to a JSON file so the cache survives restarts.
type FileIDCache struct {
	mu      sync.Mutex
	entries map[string]FileIDEntry
	expiry  time.Duration
	path    string
}

// FileIDs is the process-wide file-id cache, set up in main from config.
var FileIDs *FileIDCache

// NewFileIDCache creates a cache persisting to path with the given expiry window.
func NewFileIDCache(path string, expiry time.Duration) *FileIDCache {
	return &FileIDCache{
		entries: make(map[string]FileIDEntry),
		expiry:  expiry,
		path:    path,
	}
}

// Get returns the cached file id for a track if present and not expired.
// An expired entry is evicted as a side effect.
func (c *FileIDCache) Get(trackID string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[trackID]
	if !ok {
		return "", false
	}
	if time.Now().Unix()-entry.Timestamp > int64(c.expiry.Seconds()) {
		delete(c.entries, trackID)
		return "", false
	}
	return entry.FileID, true
}

// Set stores a file id with the current timestamp and writes the cache to disk.
func (c *FileIDCache) Set(trackID, fileID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[trackID] = FileIDEntry{FileID: fileID, Timestamp: time.Now().Unix()}
	if err := c.saveLocked(); err != nil {
		gologging.WarnF("file-id cache: failed to persist: %v", err)
	}
}

// ClearExpired sweeps all entries past the expiry window and returns how many were removed.
// The file is rewritten only when something was dropped.
func (c *FileIDCache) ClearExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := time.Now().Unix() - int64(c.expiry.Seconds())
	removed := 0
	for id, entry := range c.entries {
		if entry.Timestamp < cutoff {
			delete(c.entries, id)
			removed++
		}
	}
	if removed > 0 {
		if err := c.saveLocked(); err != nil {
			gologging.WarnF("file-id cache: failed to persist after sweep: %v", err)
		}
	}
	return removed
}

// Size returns the number of entries currently stored.
func (c *FileIDCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Load reads the cache file if it exists and immediately sweeps expired entries.
// A missing file is not an error; a corrupt file starts the cache empty.
func (c *FileIDCache) Load() error {
	c.mu.Lock()
	data, err := os.ReadFile(c.path)
	if err != nil {
		c.mu.Unlock()
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("file-id cache: read %s: %w", c.path, err)
	}

	entries := make(map[string]FileIDEntry)
	if err := json.Unmarshal(data, &entries); err != nil {
		c.mu.Unlock()
		gologging.WarnF("file-id cache: %s is corrupt, starting empty: %v", c.path, err)
		return nil
	}
	c.entries = entries
	c.mu.Unlock()

	removed := c.ClearExpired()
	gologging.InfoF("file-id cache: loaded %d entries (%d expired dropped)", c.Size(), removed)
	return nil
}

// saveLocked serializes the whole cache to disk. The caller must hold c.mu.
// Writes go to a temp file first so a crash mid-write cannot corrupt the cache.
func (c *FileIDCache) saveLocked() error {
	data, err := json.Marshal(c.entries)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(c.path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return err
		}
	}

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, c.path)
}
