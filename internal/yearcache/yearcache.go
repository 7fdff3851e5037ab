// Package yearcache implements the year cache of spec.md §4.6/§5: a
// per-(zone, year) memoization layer in front of internal/transition.Build,
// so that repeated queries against the same zone and year never re-run the
// era/rule pipeline, and concurrent readers never block on each other.
//
// The concurrency shape — a read-locked presence check on the fast path, a
// write-locked build-and-publish on the slow path that re-checks first, so
// a goroutine that loses the race returns the winner's entry without
// building — is
// grounded on the teacher-adjacent luthersystems-svc/oracle.Oracle, which
// guards a similarly single-writer/many-reader cached value
// (cachedPhylumVersion) behind a sync.RWMutex rather than a channel or
// actor. This package follows the same RWMutex idiom, scaled out to a map
// keyed by (zone, year) instead of a single field.
package yearcache

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"

	"github.com/tzres/tzengine/internal/transition"
	"github.com/tzres/tzengine/zonetab"
)

var (
	hits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tzengine_yearcache_hits_total",
		Help: "Number of year cache lookups served from the cache.",
	})
	misses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tzengine_yearcache_misses_total",
		Help: "Number of year cache lookups that triggered a build.",
	})
	builds = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tzengine_yearcache_builds_total",
		Help: "Number of transition.Build calls the cache actually performed.",
	})
)

type key struct {
	zone string // ZoneInfo.CanonicalName(), never an alias name
	year int64
}

type entry struct {
	transitions []transition.Active
	err         error
}

// Cache memoizes transition.Build by (canonical zone name, year). The zero
// value is not usable; construct with New. A Cache is safe for concurrent
// use by multiple goroutines, matching spec.md §5's no-I/O-on-query-path,
// single-writer/many-reader requirement.
type Cache struct {
	mu      sync.RWMutex
	entries map[key]*entry
	log     *logrus.Entry
}

// New creates an empty Cache.
func New() *Cache {
	return &Cache{
		entries: make(map[key]*entry),
		log:     logrus.WithField("component", "yearcache"),
	}
}

// Get returns the ActiveTransition list for zone's canonical eras in year,
// building and publishing it if this is the first request for that pair.
// zone may be a canonical zone or an alias: the cache keys on
// zone.CanonicalName(), so an alias sharing its target's eras shares its
// target's cache slot rather than getting a second one.
func (c *Cache) Get(zone *zonetab.ZoneInfo, year int64) ([]transition.Active, error) {
	k := key{zone: zone.CanonicalName(), year: year}

	c.mu.RLock()
	e, ok := c.entries[k]
	c.mu.RUnlock()
	if ok {
		hits.Inc()
		return e.transitions, e.err
	}
	misses.Inc()

	c.mu.Lock()
	defer c.mu.Unlock()
	// Re-check under the write lock: another goroutine may have already
	// built this entry between our RUnlock and this Lock.
	if e, ok := c.entries[k]; ok {
		return e.transitions, e.err
	}

	builds.Inc()
	ts, err := transition.Build(zone, year)
	if err != nil {
		c.log.WithField("zone", k.zone).WithField("year", year).WithError(err).Warn("yearcache: build failed")
	}
	c.entries[k] = &entry{transitions: ts, err: err}
	return ts, err
}

// Len reports the number of (zone, year) pairs currently cached. Intended
// for diagnostics and tests, not for production decision-making.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
