package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/drstein77/littlelemon/internal/middleware"
	"github.com/drstein77/littlelemon/internal/models"
	"github.com/drstein77/littlelemon/internal/storage"
	"github.com/go-chi/chi"
	chimw "github.com/go-chi/chi/middleware"
	"go.uber.org/zap"
)

// Home interface for the home screen session
type Home interface {
	Activate(context.Context) error
	SetQuery(string) models.FilterState
	SelectCategory(string) models.FilterState
	Search(models.FilterState) []models.MenuItem
	Render([]models.MenuItem) []models.MenuItemView
	Categories() []string
	View() models.HomeView
}

// Profile interface for preferences storage
type Profile interface {
	Profile(context.Context) (*models.Profile, error)
	SaveProfile(context.Context, models.Profile) error
}

// Pinger reports database liveness
type Pinger interface {
	Ping(context.Context) bool
}

// Log interface for logging
type Log interface {
	Info(string, ...zap.Field)
	Error(string, ...zap.Field)
}

// BaseController struct for handling requests
type BaseController struct {
	home    Home
	profile Profile
	pinger  Pinger
	log     Log
}

// NewBaseController creates a new BaseController instance. pinger may be nil in remote-only mode.
func NewBaseController(home Home, profile Profile, pinger Pinger, log Log) *BaseController {
	return &BaseController{
		home:    home,
		profile: profile,
		pinger:  pinger,
		log:     log,
	}
}

// Route sets up the routes for the BaseController
func (h *BaseController) Route() *chi.Mux {
	r := chi.NewRouter()

	r.Get("/ping", h.ping)

	r.Group(func(r chi.Router) {
		r.Use(chimw.Compress(5, "application/json"))
		r.Get("/api/v0/menu", h.getMenu)
		r.Get("/api/v0/home", h.getHome)
		r.Get("/api/v0/home/categories", h.getCategories)
		r.Get("/api/v0/profile", h.getProfile)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.DecompressRequestMiddleware)
		r.Post("/api/v0/home/reload", h.reloadHome)
		r.Put("/api/v0/home/query", h.putQuery)
		r.Post("/api/v0/home/categories/{category}", h.toggleCategory)
		r.Put("/api/v0/profile", h.putProfile)
	})

	return r
}

// getMenu filters the loaded menu by the q and category query parameters.
func (h *BaseController) getMenu(w http.ResponseWriter, r *http.Request) {
	state := models.FilterState{
		Query:    r.URL.Query().Get("q"),
		Category: r.URL.Query().Get("category"),
	}

	writeJSON(w, http.StatusOK, h.home.Render(h.home.Search(state)))
}

func (h *BaseController) getHome(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.home.View())
}

func (h *BaseController) getCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.home.Categories())
}

// reloadHome re-runs the menu load. A remote failure still answers with the
// view, which then carries the error and an empty list.
// The load outlives a client disconnect so a finished fetch still reaches the session.
func (h *BaseController) reloadHome(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	if err := h.home.Activate(context.WithoutCancel(r.Context())); err != nil {
		status = http.StatusBadGateway
	}

	writeJSON(w, status, h.home.View())
}

func (h *BaseController) putQuery(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	h.home.SetQuery(body.Query)
	writeJSON(w, http.StatusOK, h.home.View())
}

func (h *BaseController) toggleCategory(w http.ResponseWriter, r *http.Request) {
	h.home.SelectCategory(chi.URLParam(r, "category"))
	writeJSON(w, http.StatusOK, h.home.View())
}

func (h *BaseController) getProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.profile.Profile(r.Context())
	if err != nil {
		h.profileError(w, "Failed to load profile", err)
		return
	}

	writeJSON(w, http.StatusOK, p)
}

func (h *BaseController) putProfile(w http.ResponseWriter, r *http.Request) {
	var p models.Profile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.profile.SaveProfile(r.Context(), p); err != nil {
		h.profileError(w, "Failed to save changes. Please try again.", err)
		return
	}

	writeJSON(w, http.StatusOK, p)
}

func (h *BaseController) ping(w http.ResponseWriter, r *http.Request) {
	if h.pinger == nil || !h.pinger.Ping(r.Context()) {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *BaseController) profileError(w http.ResponseWriter, msg string, err error) {
	h.log.Error(msg, zap.Error(err))
	if errors.Is(err, storage.ErrStorageUnavailable) {
		http.Error(w, msg, http.StatusServiceUnavailable)
		return
	}
	http.Error(w, msg, http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// the status line is already sent, an encode failure can only be dropped
	_ = json.NewEncoder(w).Encode(v)
}
