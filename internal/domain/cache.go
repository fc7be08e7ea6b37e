package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// CacheState is the lookup state of a location in the coordinate cache.
type CacheState int

const (
	// CacheMiss means the location has never been looked up.
	CacheMiss CacheState = iota
	// CacheResolved means the location has known coordinates.
	CacheResolved
	// CacheUnresolvable means every resolution attempt failed before.
	CacheUnresolvable
)

func (s CacheState) String() string {
	switch s {
	case CacheResolved:
		return "resolved"
	case CacheUnresolvable:
		return "unresolvable"
	default:
		return "miss"
	}
}

// CacheEntry is the cached outcome for one location. Coordinates is only
// meaningful when State is CacheResolved.
type CacheEntry struct {
	State       CacheState
	Coordinates Coordinates
}

// CoordinateCache maps raw location strings to resolution outcomes. Entries
// are never removed, so a location is geocoded at most once across runs.
// It is safe for concurrent use.
//
// On disk it is a JSON object: resolved keys map to [lat, lon], unresolvable
// keys map to null.
type CoordinateCache struct {
	mu      sync.RWMutex
	entries map[string]CacheEntry
}

// NewCoordinateCache returns an empty cache.
func NewCoordinateCache() *CoordinateCache {
	return &CoordinateCache{entries: make(map[string]CacheEntry)}
}

// Lookup returns the entry for key, with State CacheMiss when absent.
func (c *CoordinateCache) Lookup(key string) CacheEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	if !ok {
		return CacheEntry{State: CacheMiss}
	}
	return entry
}

// Store records resolved coordinates for key.
func (c *CoordinateCache) Store(key string, coords Coordinates) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = CacheEntry{State: CacheResolved, Coordinates: coords}
}

// MarkUnresolvable records that key could not be resolved.
func (c *CoordinateCache) MarkUnresolvable(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = CacheEntry{State: CacheUnresolvable}
}

// Len returns the number of cached locations.
func (c *CoordinateCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *CoordinateCache) MarshalJSON() ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]*Coordinates, len(c.entries))
	for key, entry := range c.entries {
		if entry.State == CacheResolved {
			coords := entry.Coordinates
			out[key] = &coords
		} else {
			out[key] = nil
		}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func (c *CoordinateCache) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode coordinate cache: %w", err)
	}
	if raw == nil {
		return errors.New("decode coordinate cache: not a JSON object")
	}

	entries := make(map[string]CacheEntry, len(raw))
	for key, value := range raw {
		if string(bytes.TrimSpace(value)) == "null" {
			entries[key] = CacheEntry{State: CacheUnresolvable}
			continue
		}
		var coords Coordinates
		if err := json.Unmarshal(value, &coords); err != nil {
			return fmt.Errorf("decode coordinate cache entry %q: %w", key, err)
		}
		entries[key] = CacheEntry{State: CacheResolved, Coordinates: coords}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = entries
	return nil
}
