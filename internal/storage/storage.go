package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/drstein77/littlelemon/internal/models"
	"go.uber.org/zap"
)

var (
	// ErrStorageUnavailable means local storage could not be opened or initialized.
	ErrStorageUnavailable = errors.New("local storage unavailable")
	// ErrStorageWriteFailed means the fetched menu could not be persisted.
	ErrStorageWriteFailed = errors.New("local storage write failed")
	// ErrRemoteFetchFailed means the remote menu could not be fetched or decoded.
	ErrRemoteFetchFailed = errors.New("could not load menu")
)

// Source tells where a loaded menu came from.
type Source string

const (
	SourceCache  Source = "cache"
	SourceRemote Source = "remote"
)

type Log interface {
	Info(string, ...zap.Field)
	Warn(string, ...zap.Field)
	Error(string, ...zap.Field)
}

// Keeper interface for local menu persistence
type Keeper interface {
	Init(context.Context) error
	GetMenuItems(context.Context) ([]models.MenuItem, error)
	ReplaceMenuItems(context.Context, []models.MenuItem) error
}

// Fetcher interface for the remote menu source
type Fetcher interface {
	FetchMenu(context.Context) ([]models.MenuItem, error)
}

// LoadResult is the outcome of one load.
type LoadResult struct {
	Items     []models.MenuItem
	Source    Source
	Persisted bool
}

// MenuStorage prefers the local cache and falls back to the remote menu when the cache is empty.
// Loads are serialized so two of them never use the keeper at the same time.
type MenuStorage struct {
	mx sync.Mutex

	keeper  Keeper
	fetcher Fetcher
	log     Log
}

// NewMenuStorage creates a MenuStorage. keeper may be nil for remote-only mode.
func NewMenuStorage(keeper Keeper, fetcher Fetcher, log Log) *MenuStorage {
	return &MenuStorage{
		keeper:  keeper,
		fetcher: fetcher,
		log:     log,
	}
}

// Load returns the cached menu if there is one, otherwise fetches, normalizes and
// stores the remote menu. Only a remote failure is returned; it wraps ErrRemoteFetchFailed.
func (s *MenuStorage) Load(ctx context.Context) (*LoadResult, error) {
	s.mx.Lock()
	defer s.mx.Unlock()

	local := s.initialize(ctx)

	if local {
		items, err := s.keeper.GetMenuItems(ctx)
		if err != nil {
			s.log.Warn("Cannot read cached menu, fetching remote", zap.Error(err))
		} else if len(items) > 0 {
			s.log.Info("Using cached menu", zap.Int("count", len(items)))
			return &LoadResult{Items: items, Source: SourceCache, Persisted: true}, nil
		}
	}

	fetched, err := s.fetcher.FetchMenu(ctx)
	if err != nil {
		s.log.Error("Remote menu fetch failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrRemoteFetchFailed, err)
	}

	items := models.Normalize(fetched)
	result := &LoadResult{Items: items, Source: SourceRemote}

	if local {
		if err := s.keeper.ReplaceMenuItems(ctx, items); err != nil {
			s.log.Warn("Menu not persisted, using it for this session only",
				zap.Error(fmt.Errorf("%w: %w", ErrStorageWriteFailed, err)))
		} else {
			result.Persisted = true
		}
	}

	return result, nil
}

// initialize reports whether local storage can be used for this load.
func (s *MenuStorage) initialize(ctx context.Context) bool {
	if s.keeper == nil {
		return false
	}

	if err := s.keeper.Init(ctx); err != nil {
		s.log.Warn("Running in remote-only mode",
			zap.Error(fmt.Errorf("%w: %w", ErrStorageUnavailable, err)))
		return false
	}

	return true
}
