// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cache remembers which destinations each source URL was already
// written to, so repeat downloads become no-ops for the lifetime of a cache.
package cache

import (
	"sort"
	"sync"

	"golang.org/x/sync/singleflight"
)

// 💾 Cache maps a canonical source URL to the set of destinations it has been
// materialized at. A destination is only recorded after a successful transfer.
type Cache struct {
	mu      sync.RWMutex
	sources map[string]map[string]struct{}
	flight  singleflight.Group
}

// 🏭 New creates an empty cache
func New() *Cache {
	return &Cache{
		sources: make(map[string]map[string]struct{}),
	}
}

// Register makes sure source has a (possibly empty) destination set
func (c *Cache) Register(source string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.sources[source]; !ok {
		c.sources[source] = make(map[string]struct{})
	}
}

// Has reports whether source was already written to destination
func (c *Cache) Has(source, destination string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.sources[source][destination]
	return ok
}

// Add records a completed transfer of source to destination
func (c *Cache) Add(source, destination string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	set, ok := c.sources[source]
	if !ok {
		set = make(map[string]struct{})
		c.sources[source] = set
	}
	set[destination] = struct{}{}
}

// Destinations returns the recorded destinations of source, sorted.
// The second result is false when source was never registered.
func (c *Cache) Destinations(source string) ([]string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	set, ok := c.sources[source]
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(set))
	for d := range set {
		out = append(out, d)
	}
	sort.Strings(out)
	return out, true
}

// Len returns the number of registered sources
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.sources)
}

// 🔁 Do runs transfer unless source is already recorded at destination.
// Concurrent calls for the same pair share one transfer and its result.
// hit is true when no transfer was needed.
func (c *Cache) Do(source, destination string, transfer func() error) (hit bool, err error) {
	if c.Has(source, destination) {
		return true, nil
	}

	v, err, _ := c.flight.Do(flightKey(source, destination), func() (interface{}, error) {
		if c.Has(source, destination) {
			return true, nil
		}
		if err := transfer(); err != nil {
			return false, err
		}
		c.Add(source, destination)
		return false, nil
	})
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

func flightKey(source, destination string) string {
	return source + "\x00" + destination
}
