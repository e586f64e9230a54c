// Package cache provides an LRU cache for per-file analysis results with
// disk persistence. Entries are keyed by the content hash of the source
// file, so a file that has not changed is never re-analyzed.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/l3aro/go-branch-query/pkg/shortcut"
)

// Entry holds the analysis results for one source file.
type Entry struct {
	Key        string            `msgpack:"key"`  // content hash
	Path       string            `msgpack:"path"` // path at analysis time, informational
	Results    []shortcut.Result `msgpack:"results"`
	AccessedAt time.Time         `msgpack:"accessed_at"`
	CreatedAt  time.Time         `msgpack:"created_at"`
}

// ResultCache is an in-memory LRU cache of analysis results with optional
// disk persistence.
type ResultCache struct {
	mu         sync.RWMutex
	items      map[string]*listItem
	lru        *list // doubly-linked list (most recent at front)
	maxEntries int
	hitCount   int64
	missCount  int64
}

// listItem is an item in the doubly-linked list.
type listItem struct {
	Entry
	prev *listItem
	next *listItem
}

// list represents a doubly-linked list.
type list struct {
	head *listItem // most recently accessed
	tail *listItem // least recently accessed
	len  int
}

// moveToFront moves an item to the front (most recently used).
func (l *list) moveToFront(item *listItem) {
	if item == l.head {
		return
	}

	// Remove from current position
	if item.prev != nil {
		item.prev.next = item.next
	}
	if item.next != nil {
		item.next.prev = item.prev
	}
	if item == l.tail {
		l.tail = item.prev
	}

	// Add to front
	item.prev = nil
	item.next = l.head
	if l.head != nil {
		l.head.prev = item
	}
	l.head = item

	if l.tail == nil {
		l.tail = item
	}
}

// removeBack removes and returns the least recently used item.
func (l *list) removeBack() *listItem {
	if l.tail == nil {
		return nil
	}

	item := l.tail
	l.tail = item.prev
	if l.tail != nil {
		l.tail.next = nil
	} else {
		l.head = nil
	}
	l.len--
	return item
}

// pushFront adds an item to the front of the list.
func (l *list) pushFront(item *listItem) {
	item.next = l.head
	item.prev = nil
	if l.head != nil {
		l.head.prev = item
	}
	l.head = item
	if l.tail == nil {
		l.tail = item
	}
	l.len++
}

// Options configures the result cache.
type Options struct {
	// MaxEntries is the maximum number of files to keep results for.
	// 0 means unlimited.
	MaxEntries int
}

// New creates a new result cache with the given options.
func New(opts Options) *ResultCache {
	return &ResultCache{
		items:      make(map[string]*listItem),
		lru:        &list{},
		maxEntries: opts.MaxEntries,
	}
}

// Key computes the cache key for a source file's content.
func Key(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// Get retrieves the results cached under key.
func (c *ResultCache) Get(key string) ([]shortcut.Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, found := c.items[key]
	if !found {
		c.missCount++
		return nil, false
	}

	c.hitCount++
	item.AccessedAt = time.Now()
	c.lru.moveToFront(item)
	return item.Results, true
}

// Set stores the results for a file under key, evicting the least recently
// used entry when the cache is full.
func (c *ResultCache) Set(key, path string, results []shortcut.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if item, exists := c.items[key]; exists {
		item.Path = path
		item.Results = results
		item.AccessedAt = time.Now()
		c.lru.moveToFront(item)
		return
	}

	item := &listItem{
		Entry: Entry{
			Key:        key,
			Path:       path,
			Results:    results,
			AccessedAt: time.Now(),
			CreatedAt:  time.Now(),
		},
	}

	c.items[key] = item
	c.lru.pushFront(item)

	c.evictIfNeeded()
}

// Delete removes a key from the cache.
func (c *ResultCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, found := c.items[key]
	if !found {
		return
	}

	if item.prev != nil {
		item.prev.next = item.next
	} else {
		c.lru.head = item.next
	}
	if item.next != nil {
		item.next.prev = item.prev
	} else {
		c.lru.tail = item.prev
	}
	c.lru.len--

	delete(c.items, key)
}

// Clear removes all entries from the cache.
func (c *ResultCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*listItem)
	c.lru = &list{}
}

// Len returns the number of entries in the cache.
func (c *ResultCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// evictIfNeeded evicts entries while the cache exceeds its limit.
func (c *ResultCache) evictIfNeeded() {
	for c.maxEntries > 0 && c.lru.len > c.maxEntries {
		item := c.lru.removeBack()
		if item == nil {
			break
		}
		delete(c.items, item.Key)
	}
}

// Save persists the cache to a writer using msgpack. Entries are written
// least recently used first so Load can rebuild the same LRU order.
func (c *ResultCache) Save(w io.Writer) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entries := make([]Entry, 0, len(c.items))
	for item := c.lru.tail; item != nil; item = item.prev {
		entries = append(entries, item.Entry)
	}

	enc := msgpack.NewEncoder(w)
	return enc.Encode(entries)
}

// Load restores the cache from a reader using msgpack.
func (c *ResultCache) Load(r io.Reader) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var entries []Entry
	dec := msgpack.NewDecoder(r)
	if err := dec.Decode(&entries); err != nil {
		return fmt.Errorf("failed to decode cache: %w", err)
	}

	c.items = make(map[string]*listItem)
	c.lru = &list{}

	for _, entry := range entries {
		item := &listItem{Entry: entry}
		c.items[entry.Key] = item
		c.lru.pushFront(item)
	}

	return nil
}

// SaveFile saves the cache to a file, creating parent directories if needed.
func (c *ResultCache) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	defer f.Close()

	return c.Save(f)
}

// LoadFile loads the cache from a file. A missing file is not an error.
func (c *ResultCache) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open cache file: %w", err)
	}
	defer f.Close()

	return c.Load(f)
}

// Stats returns cache statistics.
type Stats struct {
	Length    int   `json:"length"`
	HitCount  int64 `json:"hit_count"`
	MissCount int64 `json:"miss_count"`
}

// Stats returns the current cache statistics.
func (c *ResultCache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Stats{
		Length:    len(c.items),
		HitCount:  c.hitCount,
		MissCount: c.missCount,
	}
}

// HitRate returns the cache hit rate.
func (c *ResultCache) HitRate() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	total := c.hitCount + c.missCount
	if total == 0 {
		return 0
	}
	return float64(c.hitCount) / float64(total)
}
