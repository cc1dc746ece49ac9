package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/dinefind/internal/config"
	"github.com/kailas-cloud/dinefind/internal/domain/restaurant"
	"github.com/kailas-cloud/dinefind/internal/domain/search/lifecycle"
	domsession "github.com/kailas-cloud/dinefind/internal/domain/session"
	"github.com/kailas-cloud/dinefind/internal/metrics"
	"github.com/kailas-cloud/dinefind/internal/transport/backend"
)

func TestMain(m *testing.M) {
	metrics.Register()
	os.Exit(m.Run())
}

type fakeAPI struct {
	mu       sync.Mutex
	queries  []string
	listings int
	images   int
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/getAllRestaurants/{page}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.listings++
		f.mu.Unlock()
		var n int
		_, _ = fmt.Sscan(r.PathValue("page"), &n)
		writePage(w, n, 3)
	})
	mux.HandleFunc("GET /api/getRestaurantsByFilter", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.queries = append(f.queries, r.URL.RawQuery)
		f.mu.Unlock()
		var n int
		_, _ = fmt.Sscan(r.URL.Query().Get("page"), &n)
		writePage(w, n, 2)
	})
	mux.HandleFunc("POST /api/getCuisinesByImage", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.images++
		f.mu.Unlock()
		p := page(1, 0)
		_ = json.NewEncoder(w).Encode(map[string]any{"restaurants": p.Restaurants})
	})
	return mux
}

func writePage(w http.ResponseWriter, n, total int) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(page(n, total))
}

func page(n, total int) restaurant.Page {
	p := restaurant.Page{Page: n, TotalPages: total, TotalRestaurants: total * 2}
	for i := range 2 {
		p.Restaurants = append(p.Restaurants, restaurant.Summary{
			ID:   int64(n*10 + i),
			Name: fmt.Sprintf("Place %d-%d", n, i),
			Rating: restaurant.Rating{
				Aggregate: "4.1",
				Text:      "Very Good",
			},
		})
	}
	return p
}

func newTestDeps(t *testing.T) (*deps, *fakeAPI) {
	t.Helper()
	api := &fakeAPI{}
	ts := httptest.NewServer(api.handler())
	t.Cleanup(ts.Close)

	client, err := backend.New(&backend.Config{BaseURL: ts.URL})
	if err != nil {
		t.Fatalf("backend.New: %v", err)
	}
	var cfg config.Config
	cfg.Backend.BaseURL = ts.URL
	cfg.ApplyDefaults()
	return &deps{env: "local", cfg: cfg, logger: zap.NewNop(), backend: client}, api
}

func TestRunSearch_Listing(t *testing.T) {
	d, api := newTestDeps(t)

	st, err := runSearch(context.Background(), d, searchInput{page: 2})
	if err != nil {
		t.Fatalf("runSearch: %v", err)
	}
	if st.Status() != lifecycle.Success || st.Pages().Current() != 2 {
		t.Errorf("status=%q page=%d, want success/2", st.Status(), st.Pages().Current())
	}
	if st.Results()[0].ID != 20 {
		t.Errorf("first result = %d, want 20", st.Results()[0].ID)
	}
	if len(api.queries) != 0 {
		t.Errorf("unexpected filtered queries: %v", api.queries)
	}
}

func TestRunSearch_Filtered(t *testing.T) {
	d, api := newTestDeps(t)

	st, err := runSearch(context.Background(), d, searchInput{mode: "cuisine", term: "Sushi", page: 1})
	if err != nil {
		t.Fatalf("runSearch: %v", err)
	}
	if !st.SearchActive() || st.Status() != lifecycle.Success {
		t.Errorf("search_active=%v status=%q", st.SearchActive(), st.Status())
	}

	api.mu.Lock()
	defer api.mu.Unlock()
	if len(api.queries) != 1 {
		t.Fatalf("filtered queries = %d, want 1", len(api.queries))
	}
	if !strings.Contains(api.queries[0], "cuisine=Sushi") || !strings.Contains(api.queries[0], "name=&") {
		t.Errorf("query = %q", api.queries[0])
	}
}

func TestRunSearch_AllFiltersFetchOnce(t *testing.T) {
	d, api := newTestDeps(t)

	in := searchInput{
		mode: "cuisine", term: "Sushi",
		distance: "5", lat: "40.7", lon: "-73.9",
		page: 1,
	}
	st, err := runSearch(context.Background(), d, in)
	if err != nil {
		t.Fatalf("runSearch: %v", err)
	}
	if st.Status() != lifecycle.Success {
		t.Errorf("status = %q, want success", st.Status())
	}

	api.mu.Lock()
	defer api.mu.Unlock()
	if api.listings != 1 {
		t.Errorf("listing fetches = %d, want only the mount fetch", api.listings)
	}
	if len(api.queries) != 1 {
		t.Fatalf("filtered queries = %d, want 1", len(api.queries))
	}
	for _, want := range []string{"distance=5", "latitude=40.7", "longitude=-73.9", "cuisine=&"} {
		if !strings.Contains(api.queries[0], want) {
			t.Errorf("query %q missing %q", api.queries[0], want)
		}
	}
}

func TestRunSearch_InvalidInput(t *testing.T) {
	d, _ := newTestDeps(t)

	if _, err := runSearch(context.Background(), d, searchInput{mode: "zipcode"}); err == nil {
		t.Error("expected error for unknown mode")
	}
	if _, err := runSearch(context.Background(), d, searchInput{distance: "far"}); err == nil {
		t.Error("expected error for invalid distance")
	}
	if _, err := runSearch(context.Background(), d, searchInput{page: 9}); err == nil {
		t.Error("expected error for page out of range")
	}
}

func TestRunSearch_Image(t *testing.T) {
	d, api := newTestDeps(t)

	path := filepath.Join(t.TempDir(), "dish.png")
	data := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	st, err := runSearch(context.Background(), d, searchInput{image: path})
	if err != nil {
		t.Fatalf("runSearch: %v", err)
	}
	if len(st.Results()) != 2 || st.Pages().Total() != 1 {
		t.Errorf("results=%d total=%d", len(st.Results()), st.Pages().Total())
	}
	if api.images != 1 {
		t.Errorf("image requests = %d, want 1", api.images)
	}
}

func TestRenderResults(t *testing.T) {
	s := domsession.New(domsession.Options{})
	s, q := s.Begin()
	s, _ = s.Settle(q, page(1, 8), nil)

	out := renderResults(s)
	for _, want := range []string{"Place 1-0", "Place 1-1", "4.1 Very Good", "page 1 of 8", "» 6"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	s, q = s.Begin()
	s, _ = s.Settle(q, restaurant.Page{}, nil)
	if out := renderResults(s); !strings.Contains(out, domsession.NoResultsMessage) {
		t.Errorf("error output = %q", out)
	}
}

func TestRenderDetail(t *testing.T) {
	out := renderDetail(&restaurant.Detail{
		Name:              "Ooma",
		PriceRange:        2,
		AverageCostForTwo: 1500,
		Currency:          "P",
		HasOnlineDelivery: 1,
	})
	for _, want := range []string{"Ooma", "Price: $$", "P 1500", "Online delivery: yes", "Delivering now: no"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
