package controllers

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/drstein77/littlelemon/internal/home"
	"github.com/drstein77/littlelemon/internal/models"
	"github.com/drstein77/littlelemon/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fetcher struct {
	items []models.MenuItem
	err   error
}

func (f *fetcher) FetchMenu(context.Context) ([]models.MenuItem, error) { return f.items, f.err }

type images struct{}

func (images) ImageURL(name string) string { return "https://img/" + name + "?raw=true" }

type profileStore struct {
	p   models.Profile
	err error
}

func (s *profileStore) Profile(context.Context) (*models.Profile, error) {
	if s.err != nil {
		return nil, s.err
	}
	p := s.p
	return &p, nil
}

func (s *profileStore) SaveProfile(_ context.Context, p models.Profile) error {
	if s.err != nil {
		return s.err
	}
	s.p = p
	return nil
}

type pinger bool

func (p pinger) Ping(context.Context) bool { return bool(p) }

func remoteMenu() []models.MenuItem {
	return []models.MenuItem{
		{Name: "Greek Salad", Category: "starters", Price: 12, Image: "greekSalad.jpg"},
		{Name: "Bruschetta", Category: "starters", Price: 7, Image: "bruschetta.jpg"},
		{Name: "Lemon Dessert", Category: "desserts", Price: 5, Image: "lemonDessert.jpg"},
		{Name: "Pasta", Price: 18, Image: "pasta.jpg"},
	}
}

func newTestServer(t *testing.T, f *fetcher, profile Profile, p Pinger) (*httptest.Server, *home.Session) {
	t.Helper()
	session := home.NewSession(storage.NewMenuStorage(nil, f, zap.NewNop()), images{}, zap.NewNop())
	srv := httptest.NewServer(NewBaseController(session, profile, p, zap.NewNop()).Route())
	t.Cleanup(srv.Close)
	return srv, session
}

func do(t *testing.T, method, url string, body io.Reader) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err)
	req.Header.Set("Accept-Encoding", "identity")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestHomeFlow(t *testing.T) {
	srv, _ := newTestServer(t, &fetcher{items: remoteMenu()}, &profileStore{}, pinger(true))

	resp := do(t, http.MethodPost, srv.URL+"/api/v0/home/reload", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	view := decode[models.HomeView](t, resp)
	require.Len(t, view.Items, 4)
	assert.Equal(t, models.DefaultCategory, view.Items[3].Category)
	assert.Equal(t, "https://img/pasta.jpg?raw=true", view.Items[3].ImageURL)

	resp = do(t, http.MethodPost, srv.URL+"/api/v0/home/categories/starters", nil)
	view = decode[models.HomeView](t, resp)
	assert.Equal(t, "starters", view.Category)
	assert.Len(t, view.Items, 2)

	resp = do(t, http.MethodPut, srv.URL+"/api/v0/home/query", bytes.NewBufferString(`{"query":"GREEK"}`))
	view = decode[models.HomeView](t, resp)
	require.Len(t, view.Items, 1)
	assert.Equal(t, "Greek Salad", view.Items[0].Name)

	// same category again clears it
	resp = do(t, http.MethodPost, srv.URL+"/api/v0/home/categories/starters", nil)
	view = decode[models.HomeView](t, resp)
	assert.Equal(t, "", view.Category)
	assert.Equal(t, "GREEK", view.Query)

	resp = do(t, http.MethodGet, srv.URL+"/api/v0/home/categories", nil)
	assert.Equal(t, []string{"starters", "desserts", "mains"}, decode[[]string](t, resp))
}

func TestGetMenu(t *testing.T) {
	srv, session := newTestServer(t, &fetcher{items: remoteMenu()}, &profileStore{}, nil)
	require.NoError(t, session.Activate(context.Background()))

	resp := do(t, http.MethodGet, srv.URL+"/api/v0/menu?q=lemon", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	items := decode[[]models.MenuItemView](t, resp)
	require.Len(t, items, 1)
	assert.Equal(t, "Lemon Dessert", items[0].Name)
	assert.Equal(t, "$5.00", items[0].PriceLabel)

	resp = do(t, http.MethodGet, srv.URL+"/api/v0/menu?category=STARTERS", nil)
	assert.Len(t, decode[[]models.MenuItemView](t, resp), 2)

	// stateless filter does not touch the session
	assert.Equal(t, models.FilterState{}, session.State())
}

func TestGetMenuGzip(t *testing.T) {
	srv, session := newTestServer(t, &fetcher{items: remoteMenu()}, &profileStore{}, nil)
	require.NoError(t, session.Activate(context.Background()))

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/v0/menu", nil)
	require.NoError(t, err)
	req.Header.Set("Accept-Encoding", "gzip")
	resp, err := http.DefaultTransport.RoundTrip(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, "gzip", resp.Header.Get("Content-Encoding"))
	zr, err := gzip.NewReader(resp.Body)
	require.NoError(t, err)
	var items []models.MenuItemView
	require.NoError(t, json.NewDecoder(zr).Decode(&items))
	assert.Len(t, items, 4)
}

func TestReloadRemoteFailure(t *testing.T) {
	srv, _ := newTestServer(t, &fetcher{err: errors.New("offline")}, &profileStore{}, nil)

	resp := do(t, http.MethodPost, srv.URL+"/api/v0/home/reload", nil)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	view := decode[models.HomeView](t, resp)
	assert.Equal(t, "could not load menu", view.Error)
	assert.NotNil(t, view.Items)
	assert.Empty(t, view.Items)

	resp = do(t, http.MethodGet, srv.URL+"/api/v0/home", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestPutQueryBadBody(t *testing.T) {
	srv, _ := newTestServer(t, &fetcher{}, &profileStore{}, nil)

	resp := do(t, http.MethodPut, srv.URL+"/api/v0/home/query", bytes.NewBufferString("{"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestProfile(t *testing.T) {
	store := &profileStore{}
	srv, _ := newTestServer(t, &fetcher{}, store, nil)

	resp := do(t, http.MethodPut, srv.URL+"/api/v0/profile",
		bytes.NewBufferString(`{"first_name":"Tilly","last_name":"Doe","email":"tilly@example.com"}`))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Tilly", store.p.FirstName)

	resp = do(t, http.MethodGet, srv.URL+"/api/v0/profile", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, models.Profile{FirstName: "Tilly", LastName: "Doe", Email: "tilly@example.com"}, decode[models.Profile](t, resp))
}

func TestProfileErrors(t *testing.T) {
	srv, _ := newTestServer(t, &fetcher{}, &profileStore{err: storage.ErrStorageUnavailable}, nil)
	resp := do(t, http.MethodGet, srv.URL+"/api/v0/profile", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	srv, _ = newTestServer(t, &fetcher{}, &profileStore{err: errors.New("disk")}, nil)
	resp = do(t, http.MethodPut, srv.URL+"/api/v0/profile", bytes.NewBufferString(`{}`))
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestPing(t *testing.T) {
	srv, _ := newTestServer(t, &fetcher{}, &profileStore{}, pinger(true))
	assert.Equal(t, http.StatusOK, do(t, http.MethodGet, srv.URL+"/ping", nil).StatusCode)

	srv, _ = newTestServer(t, &fetcher{}, &profileStore{}, pinger(false))
	assert.Equal(t, http.StatusInternalServerError, do(t, http.MethodGet, srv.URL+"/ping", nil).StatusCode)

	srv, _ = newTestServer(t, &fetcher{}, &profileStore{}, nil)
	assert.Equal(t, http.StatusInternalServerError, do(t, http.MethodGet, srv.URL+"/ping", nil).StatusCode)
}

type ctxFetcher struct{}

func (ctxFetcher) FetchMenu(ctx context.Context) ([]models.MenuItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return remoteMenu(), nil
}

func TestReloadOutlivesClientDisconnect(t *testing.T) {
	session := home.NewSession(storage.NewMenuStorage(nil, ctxFetcher{}, zap.NewNop()), images{}, zap.NewNop())
	router := NewBaseController(session, &profileStore{}, nil, zap.NewNop()).Route()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/api/v0/home/reload", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	view := session.View()
	assert.Empty(t, view.Error)
	assert.Len(t, view.Items, 4)
}
