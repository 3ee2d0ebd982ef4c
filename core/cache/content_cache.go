package cache

import (
	"crypto/md5"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/tristendillon/importfix/core/logger"
)

// ContentEntry is the last known state of a file the tool wrote.
type ContentEntry struct {
	FilePath    string
	ContentHash string
	ModTime     time.Time
	Size        int64
}

type CacheStats struct {
	TotalFiles int
	Hits       int64
	Misses     int64
	HitRate    float64
}

// ContentCache remembers the content hash of every file the runner wrote,
// so that file events caused by those writes can be told apart from edits.
type ContentCache struct {
	entries map[string]*ContentEntry
	mutex   sync.RWMutex
	stats   struct {
		hits   int64
		misses int64
	}
}

func NewContentCache() *ContentCache {
	return &ContentCache{
		entries: make(map[string]*ContentEntry),
	}
}

// Record stores the hash of content as the known state of filePath.
func (cc *ContentCache) Record(filePath string, content []byte) {
	entry := &ContentEntry{
		FilePath:    filePath,
		ContentHash: hashBytes(content),
		Size:        int64(len(content)),
	}
	if stat, err := os.Stat(filePath); err == nil {
		entry.ModTime = stat.ModTime()
	}

	cc.mutex.Lock()
	defer cc.mutex.Unlock()
	cc.entries[filePath] = entry
	logger.Debug("ContentCache: Recorded %s (hash %s)", filePath, entry.ContentHash[:8])
}

// Changed reports whether filePath differs from its recorded state. Files
// never recorded, and recorded files that were deleted, count as changed.
func (cc *ContentCache) Changed(filePath string) (bool, error) {
	cc.mutex.Lock()
	defer cc.mutex.Unlock()

	existing, ok := cc.entries[filePath]
	if !ok {
		cc.stats.misses++
		return true, nil
	}

	stat, err := os.Stat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug("ContentCache: File deleted: %s", filePath)
			delete(cc.entries, filePath)
			cc.stats.misses++
			return true, nil
		}
		return false, fmt.Errorf("failed to stat file %s: %w", filePath, err)
	}

	if stat.Size() == existing.Size && stat.ModTime().Equal(existing.ModTime) {
		cc.stats.hits++
		return false, nil
	}

	hash, err := calculateFileHash(filePath)
	if err != nil {
		return false, fmt.Errorf("failed to calculate hash for %s: %w", filePath, err)
	}
	if hash != existing.ContentHash {
		logger.Debug("ContentCache: Content changed for %s (hash: %s -> %s)", filePath, existing.ContentHash[:8], hash[:8])
		delete(cc.entries, filePath)
		cc.stats.misses++
		return true, nil
	}

	// Same bytes, touched metadata.
	existing.ModTime = stat.ModTime()
	existing.Size = stat.Size()
	cc.stats.hits++
	return false, nil
}

func (cc *ContentCache) Remove(filePath string) {
	cc.mutex.Lock()
	defer cc.mutex.Unlock()
	delete(cc.entries, filePath)
}

func (cc *ContentCache) GetStats() *CacheStats {
	cc.mutex.RLock()
	defer cc.mutex.RUnlock()

	total := cc.stats.hits + cc.stats.misses
	hitRate := 0.0
	if total > 0 {
		hitRate = float64(cc.stats.hits) / float64(total) * 100
	}
	return &CacheStats{
		TotalFiles: len(cc.entries),
		Hits:       cc.stats.hits,
		Misses:     cc.stats.misses,
		HitRate:    hitRate,
	}
}

func (cc *ContentCache) LogStats() {
	stats := cc.GetStats()
	logger.Debug("Content cache: Hits=%d, Misses=%d, Hit Rate=%.1f%%, Tracked=%d",
		stats.Hits, stats.Misses, stats.HitRate, stats.TotalFiles)
}

func hashBytes(b []byte) string {
	return fmt.Sprintf("%x", md5.Sum(b))
}

func calculateFileHash(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash := md5.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}

	return fmt.Sprintf("%x", hash.Sum(nil)), nil
}
