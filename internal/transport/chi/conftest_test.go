package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"github.com/kailas-cloud/dinefind/internal/domain"
	"github.com/kailas-cloud/dinefind/internal/domain/restaurant"
	"github.com/kailas-cloud/dinefind/internal/domain/search/request"
	domsession "github.com/kailas-cloud/dinefind/internal/domain/session"
	"github.com/kailas-cloud/dinefind/internal/domain/upload"
	"github.com/kailas-cloud/dinefind/internal/metrics"
	detailuc "github.com/kailas-cloud/dinefind/internal/usecase/detail"
	healthuc "github.com/kailas-cloud/dinefind/internal/usecase/health"
	sessionuc "github.com/kailas-cloud/dinefind/internal/usecase/session"
)

func TestMain(m *testing.M) {
	metrics.Register()
	os.Exit(m.Run())
}

// --- Mocks ---

type fakeBackend struct {
	mu         sync.Mutex
	totalPages int
	perPage    int
	listErr    error
	details    map[int64]restaurant.Detail
	detailErr  error
	healthErr  error
	images     []upload.Image
	filtered   []request.Filtered
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{totalPages: 8, perPage: 20, details: map[int64]restaurant.Detail{}}
}

func (f *fakeBackend) ListRestaurants(_ context.Context, page int) (restaurant.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return restaurant.Page{}, f.listErr
	}
	return makePage(page, f.totalPages, f.perPage), nil
}

func (f *fakeBackend) SearchRestaurants(_ context.Context, q request.Filtered) (restaurant.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filtered = append(f.filtered, q)
	return makePage(q.Page, f.totalPages, f.perPage), nil
}

func (f *fakeBackend) SearchByImage(_ context.Context, img upload.Image) (restaurant.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.images = append(f.images, img)
	p := makePage(1, 0, 3)
	p.Page = 0
	return p, nil
}

func (f *fakeBackend) Restaurant(_ context.Context, id int64) (restaurant.Detail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.detailErr != nil {
		return restaurant.Detail{}, f.detailErr
	}
	d, ok := f.details[id]
	if !ok {
		return restaurant.Detail{}, fmt.Errorf("restaurant %d: %w", id, domain.ErrRestaurantNotFound)
	}
	return d, nil
}

func (f *fakeBackend) HealthCheck(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.healthErr
}

func (f *fakeBackend) set(fn func(f *fakeBackend)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func makePage(n, totalPages, count int) restaurant.Page {
	p := restaurant.Page{Page: n, TotalPages: totalPages, TotalRestaurants: totalPages * count}
	for i := range count {
		p.Restaurants = append(p.Restaurants, restaurant.Summary{
			ID:       int64(n*100 + i),
			Name:     fmt.Sprintf("Restaurant %d-%d", n, i),
			Cuisines: "Japanese, Sushi",
			Rating: restaurant.Rating{
				Aggregate: "4.5",
				Votes:     "120",
				Text:      "Very Good",
				Thumbnail: fmt.Sprintf("https://img.example/%d-%d.jpg", n, i),
			},
		})
	}
	return p
}

// --- Harness ---

type harness struct {
	backend  *fakeBackend
	registry *sessionuc.Registry
	server   *httptest.Server
}

func newHarness(t *testing.T, apiKeys ...string) *harness {
	t.Helper()
	backend := newFakeBackend()
	registry := sessionuc.NewRegistry(backend, sessionuc.Options{
		State: domsession.Options{PageLimit: 20, FallbackThumbnail: "/images/logo.png"},
	}, nil)
	srv := NewServer(registry, detailuc.New(backend), healthuc.New(backend, nil), nil).
		WithMaxImageBytes(64 << 10)
	ts := httptest.NewServer(NewRouter(srv, RouterConfig{APIKeys: apiKeys}))
	t.Cleanup(func() {
		ts.Close()
		registry.Wait()
	})
	return &harness{backend: backend, registry: registry, server: ts}
}

func (h *harness) do(t *testing.T, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var rd io.Reader = http.NoBody
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, h.server.URL+path, rd)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return h.send(t, req)
}

func (h *harness) send(t *testing.T, req *http.Request) (*http.Response, []byte) {
	t.Helper()
	resp, err := h.server.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, data
}

// mount creates a session and waits for its initial listing to settle.
func (h *harness) mount(t *testing.T) SessionResponse {
	t.Helper()
	resp, body := h.do(t, http.MethodPost, "/sessions", nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("POST /sessions: status %d: %s", resp.StatusCode, body)
	}
	created := decode[SessionResponse](t, body)
	h.registry.Wait()
	return h.snapshot(t, created.ID)
}

func (h *harness) snapshot(t *testing.T, id string) SessionResponse {
	t.Helper()
	resp, body := h.do(t, http.MethodGet, "/sessions/"+id, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /sessions/%s: status %d: %s", id, resp.StatusCode, body)
	}
	return decode[SessionResponse](t, body)
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		t.Fatalf("decode %T: %v: %s", v, err, body)
	}
	return v
}
