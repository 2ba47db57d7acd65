package content

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/example/lingualisten/internal/sheet"
	"github.com/example/lingualisten/pkg/models"
	"golang.org/x/sync/singleflight"
)

// CacheKey is the single key the current generation is persisted under
const CacheKey = "@contentCache"

// Persister stores the encoded generation between runs
type Persister interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, payload []byte) error
	Delete(ctx context.Context, key string) error
}

// Config holds the store's collaborators
type Config struct {
	Source       Source
	Reachability Reachability
	Persister    Persister
	Sheet        sheet.Config
	FetchTimeout time.Duration
	Logger       *log.Logger
	Now          func() time.Time
}

// Store serves content with stale-while-revalidate semantics. Readers
// always see one complete generation; a refresh swaps it atomically.
type Store struct {
	source       Source
	reach        Reachability
	persist      Persister
	sheet        sheet.Config
	fetchTimeout time.Duration
	log          *log.Logger
	now          func() time.Time

	mu       sync.RWMutex
	resident *Generation

	group  singleflight.Group
	bg     sync.WaitGroup
	closed atomic.Bool
}

// NewStore creates a content store
func NewStore(cfg Config) *Store {
	s := &Store{
		source:       cfg.Source,
		reach:        cfg.Reachability,
		persist:      cfg.Persister,
		sheet:        cfg.Sheet,
		fetchTimeout: cfg.FetchTimeout,
		log:          cfg.Logger,
		now:          cfg.Now,
	}
	if s.reach == nil {
		s.reach = AlwaysReachable
	}
	if s.sheet.Columns == (sheet.Columns{}) {
		s.sheet = sheet.DefaultConfig()
	}
	if s.fetchTimeout <= 0 {
		s.fetchTimeout = DefaultFetchTimeout
	}
	if s.log == nil {
		s.log = log.New(io.Discard)
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Resident returns the generation currently in memory, or nil
func (s *Store) Resident() *Generation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resident
}

func (s *Store) install(g *Generation) {
	s.mu.Lock()
	s.resident = g
	s.mu.Unlock()
}

// Load returns content without waiting on the network when a cached
// generation exists. A persisted generation triggers a background refresh.
func (s *Store) Load(ctx context.Context) (*Generation, error) {
	g, _, err := s.LoadAndRevalidate(ctx)
	return g, err
}

// LoadAndRevalidate behaves like Load and also returns the background refresh
// it started, if any, so callers can observe its completion.
func (s *Store) LoadAndRevalidate(ctx context.Context) (*Generation, *RefreshTask, error) {
	if g := s.Resident(); g != nil {
		return g, nil, nil
	}

	if g := s.readPersisted(ctx); g != nil {
		s.mu.Lock()
		if s.resident == nil {
			s.resident = g
		} else {
			g = s.resident
		}
		s.mu.Unlock()
		return g, s.revalidate(), nil
	}

	g, err := s.Refresh(ctx)
	return g, nil, err
}

// Refresh fetches and parses the source and swaps in the new generation.
// Concurrent calls share one fetch, bounded by the fetch timeout; a caller
// whose ctx ends stops waiting without failing the others. When offline, the cached generation is
// returned instead. On a malformed payload the previous generation stays
// resident and ErrMalformedSource is returned.
func (s *Store) Refresh(ctx context.Context) (*Generation, error) {
	// the shared fetch must not die with whichever caller started it
	ch := s.group.DoChan("refresh", func() (interface{}, error) {
		return s.refresh(context.WithoutCancel(ctx))
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Generation), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Store) refresh(ctx context.Context) (*Generation, error) {
	if !s.reach.Reachable(ctx) {
		if g := s.Resident(); g != nil {
			s.log.Debug("content source unreachable, serving resident generation", "generation", g.ID)
			return g, nil
		}
		if g := s.readPersisted(ctx); g != nil {
			s.install(g)
			s.log.Info("content source unreachable, serving cached generation", "generation", g.ID)
			return g, nil
		}
		return nil, ErrOfflineNoCache
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	data, err := s.source.Fetch(fetchCtx)
	if err != nil {
		return nil, err
	}

	result, err := sheet.Parse(data, s.sheet)
	if err != nil {
		s.log.Warn("content source is malformed, keeping previous generation", "err", err)
		return nil, fmt.Errorf("%w: %v", ErrMalformedSource, err)
	}
	if len(result.Items) == 0 {
		s.log.Warn("content source has no published items, keeping previous generation",
			"rows", result.TotalRows, "unpublished", result.Unpublished, "skipped", result.Skipped)
		return nil, fmt.Errorf("%w: no published items", ErrMalformedSource)
	}
	for _, e := range result.Errors {
		s.log.Warn("skipped content row", "reason", e)
	}

	g := NewGeneration(result.Items, s.now())

	if s.persist != nil {
		if err := s.writePersisted(ctx, g); err != nil {
			// memory still gets the new generation
			s.log.Error("failed to persist content cache", "err", err)
		}
	}

	if s.closed.Load() {
		return g, nil
	}
	s.install(g)
	s.log.Info("content generation installed",
		"generation", g.ID,
		"items", g.Len(),
		"skipped", result.Skipped,
		"recategorized", result.Recategorized)
	return g, nil
}

// readPersisted returns the persisted generation or nil. Corrupt payloads
// are deleted so the next load fetches fresh content.
func (s *Store) readPersisted(ctx context.Context) *Generation {
	if s.persist == nil {
		return nil
	}

	data, ok, err := s.persist.Get(ctx, CacheKey)
	if err != nil {
		s.log.Warn("failed to read content cache", "err", err)
		return nil
	}
	if !ok {
		return nil
	}

	g, err := decodeGeneration(data)
	if err != nil {
		s.log.Warn("discarding content cache", "err", err)
		if delErr := s.persist.Delete(ctx, CacheKey); delErr != nil {
			s.log.Error("failed to delete corrupt content cache", "err", delErr)
		}
		return nil
	}
	return g
}

func (s *Store) writePersisted(ctx context.Context, g *Generation) error {
	payload, err := g.MarshalBinary()
	if err != nil {
		return fmt.Errorf("failed to encode generation: %w", err)
	}
	return s.persist.Put(ctx, CacheKey, payload)
}

func (s *Store) revalidate() *RefreshTask {
	task := newRefreshTask()
	if s.closed.Load() {
		task.finish(nil)
		return task
	}

	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.fetchTimeout)
		defer cancel()

		_, err := s.Refresh(ctx)
		if err != nil {
			s.log.Warn("background content refresh failed", "err", err)
		}
		task.finish(err)
	}()
	return task
}

// LookupByCode finds an item by its code, ignoring case
func (s *Store) LookupByCode(ctx context.Context, code string) (models.Item, bool, error) {
	g, err := s.Load(ctx)
	if err != nil {
		return models.Item{}, false, err
	}
	item, ok := g.LookupByCode(code)
	return item, ok, nil
}

// ByCategory returns the items of one category from the current generation
func (s *Store) ByCategory(ctx context.Context, category models.Category) ([]models.Item, error) {
	g, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return g.ByCategory(category), nil
}

// Search matches query against codes and both texts
func (s *Store) Search(ctx context.Context, query string) ([]models.Item, error) {
	g, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return g.Search(query), nil
}

// Close stops the store from installing new generations and waits for
// background refreshes to finish.
func (s *Store) Close() {
	s.closed.Store(true)
	s.bg.Wait()
}

// IsOffline reports whether err means content is unavailable because the
// device is offline.
func IsOffline(err error) bool {
	return errors.Is(err, ErrOfflineNoCache)
}
