// ABOUTME: Two-tier enrichment cache with per-facet TTL classes
// ABOUTME: LRU hot tier over a badger cold tier; failures degrade to cache misses
package cache

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/profitum/outreach/models"
)

// TTL classes are a property of the facet kind, not of individual entries.
// Activity-like facets (timing, profile) go stale fastest; structural
// business attributes (operational) last longest.
var facetTTLs = map[models.FacetKind]time.Duration{
	models.FacetTiming:      24 * time.Hour,
	models.FacetProfile:     72 * time.Hour,
	models.FacetPresence:    7 * 24 * time.Hour,
	models.FacetOperational: 30 * 24 * time.Hour,
	models.FacetFull:        7 * 24 * time.Hour,
}

// TTLFor returns the expiry duration for a facet kind.
func TTLFor(kind models.FacetKind) time.Duration {
	if ttl, ok := facetTTLs[kind]; ok {
		return ttl
	}
	return 24 * time.Hour
}

const defaultHotSize = 4096

// Options configures a Store.
type Options struct {
	// Path is the cold tier directory. Ignored when InMemory is set.
	Path string
	// InMemory keeps the cold tier in memory (tests).
	InMemory bool
	// HotSize caps the hot tier entry count. Defaults to 4096.
	HotSize int
	// Now overrides the clock (tests).
	Now func() time.Time
}

// Store is the facet cache. It is an optimization, never a source of
// truth: every operation degrades to a miss or a log line on failure.
type Store struct {
	hot   *lru.Cache[string, hotEntry]
	cold  *badger.DB
	locks *keyedMutex
	now   func() time.Time
}

type hotEntry struct {
	payload  json.RawMessage
	kind     models.FacetKind
	storedAt time.Time
}

// coldRecord is the per-prospect durable document. Each facet keeps its own
// write timestamp so a partial refresh does not extend its siblings.
type coldRecord struct {
	Version string               `json:"version"`
	Facets  map[string]coldFacet `json:"facets"`
}

type coldFacet struct {
	Payload  json.RawMessage `json:"payload"`
	StoredAt time.Time       `json:"stored_at"`
}

// Open creates a Store backed by the given cold-tier directory.
func Open(opts Options) (*Store, error) {
	size := opts.HotSize
	if size <= 0 {
		size = defaultHotSize
	}
	hot, err := lru.New[string, hotEntry](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create hot tier: %w", err)
	}

	var badgerOpts badger.Options
	if opts.InMemory {
		badgerOpts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(opts.Path, 0755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
		badgerOpts = badger.DefaultOptions(opts.Path)
	}
	badgerOpts = badgerOpts.WithLogger(nil)

	cold, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to open cold tier: %w", err)
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Store{
		hot:   hot,
		cold:  cold,
		locks: newKeyedMutex(),
		now:   now,
	}, nil
}

// DefaultPath returns the cache directory under the given data home.
func DefaultPath(dataHome string) string {
	return filepath.Join(dataHome, "outreach", "cache")
}

// Close releases the cold tier.
func (s *Store) Close() error {
	return s.cold.Close()
}

// Get returns the cached payload for (prospect, kind) if it is younger than
// the kind's TTL. A fresh cold-tier hit is promoted into the hot tier.
func (s *Store) Get(prospectID uuid.UUID, kind models.FacetKind) (json.RawMessage, bool) {
	key := hotKey(prospectID, kind)
	ttl := TTLFor(kind)

	if entry, ok := s.hot.Get(key); ok {
		if s.now().Sub(entry.storedAt) < ttl {
			return entry.payload, true
		}
		s.hot.Remove(key)
	}

	record, err := s.readRecord(prospectID)
	if err != nil {
		log.Printf("cache: cold read failed for %s/%s: %v", prospectID, kind, err)
		return nil, false
	}
	if record == nil || record.Version != models.SnapshotVersion {
		return nil, false
	}

	facet, ok := record.Facets[string(kind)]
	if !ok || s.now().Sub(facet.StoredAt) >= ttl {
		return nil, false
	}

	s.hot.Add(key, hotEntry{payload: facet.Payload, kind: kind, storedAt: facet.StoredAt})
	return facet.Payload, true
}

// Set stores a freshly computed payload in both tiers. Individual facet
// kinds are merged into the prospect's durable record under a per-prospect
// lock; the full kind replaces the whole-snapshot entry. Errors never reach
// the caller.
func (s *Store) Set(prospectID uuid.UUID, kind models.FacetKind, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("cache: marshal failed for %s/%s: %v", prospectID, kind, err)
		return
	}

	storedAt := s.now()
	s.hot.Add(hotKey(prospectID, kind), hotEntry{payload: data, kind: kind, storedAt: storedAt})

	unlock := s.locks.lock(prospectID.String())
	defer unlock()

	record, err := s.readRecord(prospectID)
	if err != nil {
		log.Printf("cache: cold read failed for %s/%s: %v", prospectID, kind, err)
		record = nil
	}
	if record == nil || record.Version != models.SnapshotVersion {
		record = &coldRecord{Version: models.SnapshotVersion, Facets: map[string]coldFacet{}}
	}

	record.Facets[string(kind)] = coldFacet{Payload: data, StoredAt: storedAt}

	if err := s.writeRecord(prospectID, record); err != nil {
		log.Printf("cache: cold write failed for %s/%s: %v", prospectID, kind, err)
	}
}

// Invalidate drops hot-tier entries for the prospect; with no kinds given,
// all facet kinds are dropped. The cold tier record is removed too so a
// forced recomputation cannot resurrect stale facets.
func (s *Store) Invalidate(prospectID uuid.UUID, kinds ...models.FacetKind) {
	if len(kinds) == 0 {
		kinds = append(append([]models.FacetKind{}, models.FacetKinds...), models.FacetFull)
	}
	for _, kind := range kinds {
		s.hot.Remove(hotKey(prospectID, kind))
	}

	unlock := s.locks.lock(prospectID.String())
	defer unlock()

	record, err := s.readRecord(prospectID)
	if err != nil || record == nil {
		return
	}
	for _, kind := range kinds {
		delete(record.Facets, string(kind))
	}
	if err := s.writeRecord(prospectID, record); err != nil {
		log.Printf("cache: invalidate write failed for %s: %v", prospectID, err)
	}
}

// Sweep evicts expired hot-tier entries and returns how many were removed.
// Correctness never depends on it: Get re-validates age on every read.
func (s *Store) Sweep() int {
	evicted := 0
	for _, key := range s.hot.Keys() {
		entry, ok := s.hot.Peek(key)
		if !ok {
			continue
		}
		if s.now().Sub(entry.storedAt) >= TTLFor(entry.kind) {
			s.hot.Remove(key)
			evicted++
		}
	}
	return evicted
}

// Run sweeps on a fixed interval until the channel closes.
func (s *Store) Run(stop <-chan struct{}, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				log.Printf("cache: swept %d expired entries", n)
			}
		}
	}
}

func hotKey(prospectID uuid.UUID, kind models.FacetKind) string {
	return prospectID.String() + ":" + string(kind)
}

func coldKey(prospectID uuid.UUID) []byte {
	return []byte("enrich:" + prospectID.String())
}

func (s *Store) readRecord(prospectID uuid.UUID) (*coldRecord, error) {
	var record *coldRecord
	err := s.cold.View(func(txn *badger.Txn) error {
		item, err := txn.Get(coldKey(prospectID))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var r coldRecord
			if err := json.Unmarshal(val, &r); err != nil {
				return err
			}
			record = &r
			return nil
		})
	})
	return record, err
}

func (s *Store) writeRecord(prospectID uuid.UUID, record *coldRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return s.cold.Update(func(txn *badger.Txn) error {
		return txn.Set(coldKey(prospectID), data)
	})
}
