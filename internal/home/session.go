package home

import (
	"context"
	"fmt"
	"sync"

	"github.com/drstein77/littlelemon/internal/filter"
	"github.com/drstein77/littlelemon/internal/models"
	"github.com/drstein77/littlelemon/internal/storage"
	"go.uber.org/zap"
)

// Loader runs the cache-first menu load.
type Loader interface {
	Load(context.Context) (*storage.LoadResult, error)
}

// ImageResolver turns an image file name into a display URL.
type ImageResolver interface {
	ImageURL(string) string
}

type Log interface {
	Info(string, ...zap.Field)
	Error(string, ...zap.Field)
}

// Session is the state behind the home screen: the loaded menu and the current filter.
type Session struct {
	mx sync.RWMutex

	items   []models.MenuItem
	state   models.FilterState
	loading bool
	loadErr error
	// generation identifies the latest Activate; results of older ones are dropped.
	generation uint64

	loader Loader
	images ImageResolver
	log    Log
}

func NewSession(loader Loader, images ImageResolver, log Log) *Session {
	return &Session{
		items:  make([]models.MenuItem, 0),
		loader: loader,
		images: images,
		log:    log,
	}
}

// Activate loads the menu and replaces the session list with it.
// On a remote failure the list is emptied and the error is kept for display.
// If another Activate started meanwhile, or ctx was cancelled before the load
// finished, the result is discarded and the previous list stays.
func (s *Session) Activate(ctx context.Context) error {
	s.mx.Lock()
	s.generation++
	gen := s.generation
	s.loading = true
	s.mx.Unlock()

	res, err := s.loader.Load(ctx)

	s.mx.Lock()
	defer s.mx.Unlock()

	if gen != s.generation {
		s.log.Info("Discarding superseded menu load")
		return nil
	}

	s.loading = false
	if ctxErr := ctx.Err(); ctxErr != nil {
		s.log.Info("Discarding cancelled menu load", zap.Error(ctxErr))
		return ctxErr
	}
	if err != nil {
		s.log.Error("Menu unavailable, showing an empty list", zap.Error(err))
		s.items = make([]models.MenuItem, 0)
		s.loadErr = err
		return err
	}

	s.items = res.Items
	s.loadErr = nil
	s.log.Info("Menu loaded", zap.String("source", string(res.Source)), zap.Int("count", len(res.Items)))
	return nil
}

// SetQuery replaces the search query.
func (s *Session) SetQuery(query string) models.FilterState {
	s.mx.Lock()
	defer s.mx.Unlock()

	s.state.Query = query
	return s.state
}

// SelectCategory selects category, or clears the selection if it is already selected.
func (s *Session) SelectCategory(category string) models.FilterState {
	s.mx.Lock()
	defer s.mx.Unlock()

	s.state.Category = filter.ToggleCategory(s.state.Category, category)
	return s.state
}

func (s *Session) State() models.FilterState {
	s.mx.RLock()
	defer s.mx.RUnlock()

	return s.state
}

// Visible returns the menu filtered by the session state.
func (s *Session) Visible() []models.MenuItem {
	s.mx.RLock()
	defer s.mx.RUnlock()

	return filter.Apply(s.items, s.state)
}

// Search filters the loaded menu with an explicit state, leaving the session state untouched.
func (s *Session) Search(state models.FilterState) []models.MenuItem {
	s.mx.RLock()
	defer s.mx.RUnlock()

	return filter.Apply(s.items, state)
}

// Categories lists the categories present in the loaded menu.
func (s *Session) Categories() []string {
	s.mx.RLock()
	defer s.mx.RUnlock()

	return filter.Categories(s.items)
}

// View renders the session for display.
func (s *Session) View() models.HomeView {
	s.mx.RLock()
	defer s.mx.RUnlock()

	view := models.HomeView{
		Query:    s.state.Query,
		Category: s.state.Category,
		Loading:  s.loading,
		Items:    s.Render(filter.Apply(s.items, s.state)),
	}
	if s.loadErr != nil {
		view.Error = storage.ErrRemoteFetchFailed.Error()
	}
	return view
}

// Render converts menu entries into display rows.
func (s *Session) Render(items []models.MenuItem) []models.MenuItemView {
	out := make([]models.MenuItemView, 0, len(items))
	for _, item := range items {
		out = append(out, models.MenuItemView{
			Name:        item.Name,
			Price:       float64(item.Price),
			PriceLabel:  fmt.Sprintf("$%.2f", float64(item.Price)),
			Description: item.DisplayDescription(),
			ImageURL:    s.images.ImageURL(item.Image),
			Category:    item.Category,
		})
	}
	return out
}
