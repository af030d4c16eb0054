package catalog

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/figmatch/figmatch/pkg/parts"
)

// Store serves read-only catalogs by category. Catalogs are loaded lazily,
// cached for the process lifetime, and evicted when the backing file is
// rewritten, so a regenerated catalog is picked up on the next match pass
// without a restart.
type Store struct {
	dir    string
	logger *zap.Logger

	mu      sync.RWMutex
	loaded  map[parts.Category]*Catalog
	watcher *fsnotify.Watcher
}

// NewStore creates a catalog store over dir and starts watching it for
// catalog rewrites.
func NewStore(dir string, logger *zap.Logger) (*Store, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating catalog watcher: %w", err)
	}

	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watching catalog dir %s: %w", dir, err)
	}

	s := &Store{
		dir:     dir,
		logger:  logger,
		loaded:  make(map[parts.Category]*Catalog),
		watcher: watcher,
	}

	go s.watch()

	return s, nil
}

// Path returns the catalog file path for a category.
func (s *Store) Path(category parts.Category) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s_embeddings.json", category))
}

// Load returns the catalog for a category, reading it from disk on first
// use. Concurrent callers share one cached copy; catalogs are never mutated
// after load so no further synchronization is needed to read them.
func (s *Store) Load(category parts.Category) (*Catalog, error) {
	s.mu.RLock()
	cat, ok := s.loaded[category]
	s.mu.RUnlock()
	if ok {
		return cat, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Re-check under the write lock; another caller may have loaded it.
	if cat, ok := s.loaded[category]; ok {
		return cat, nil
	}

	cat, err := Load(category, s.Path(category))
	if err != nil {
		return nil, err
	}

	s.logger.Info("loaded catalog",
		zap.String("category", string(category)),
		zap.Int("entries", cat.Len()),
		zap.Uint("dimensions", cat.Dimensions()),
	)

	s.loaded[category] = cat
	return cat, nil
}

// watch evicts cached catalogs when their backing file changes.
func (s *Store) watch() {
	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			s.evict(event.Name)

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("catalog watcher error", zap.Error(err))
		}
	}
}

// evict drops the cached catalog whose file path changed, if any.
func (s *Store) evict(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for category := range s.loaded {
		if s.Path(category) == filepath.Clean(path) {
			delete(s.loaded, category)
			s.logger.Info("catalog changed on disk, cache evicted",
				zap.String("category", string(category)),
			)
		}
	}
}

// Close stops the file watcher.
func (s *Store) Close() error {
	return s.watcher.Close()
}
