package detailcache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kailas-cloud/dinefind/internal/domain"
	"github.com/kailas-cloud/dinefind/internal/domain/restaurant"
)

func newCounter() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_detail_cache_total"}, []string{"result"})
}

func TestRestaurant_MissThenHit(t *testing.T) {
	inner := &mockFetcher{detail: restaurant.Detail{ID: 18387, Name: "Ooma", PriceRange: 3}}
	store := newMemStore()
	counter := newCounter()
	c := New(inner, store, time.Hour, counter, zap.NewNop())

	for range 3 {
		d, err := c.Restaurant(context.Background(), 18387)
		if err != nil {
			t.Fatalf("Restaurant: %v", err)
		}
		if d.Name != "Ooma" || d.PriceRange != 3 {
			t.Errorf("unexpected detail: %+v", d)
		}
	}

	if inner.calls != 1 {
		t.Errorf("inner called %d times, want 1", inner.calls)
	}
	if got := store.ttls["dinefind:restaurant:18387"]; got != time.Hour {
		t.Errorf("ttl = %v, want 1h", got)
	}
	if miss := testutil.ToFloat64(counter.WithLabelValues("miss")); miss != 1 {
		t.Errorf("miss = %f, want 1", miss)
	}
	if hit := testutil.ToFloat64(counter.WithLabelValues("hit")); hit != 2 {
		t.Errorf("hit = %f, want 2", hit)
	}
}

func TestRestaurant_NoTTL(t *testing.T) {
	store := newMemStore()
	c := New(&mockFetcher{detail: restaurant.Detail{ID: 1}}, store, 0, nil, zap.NewNop())

	if _, err := c.Restaurant(context.Background(), 1); err != nil {
		t.Fatalf("Restaurant: %v", err)
	}
	if ttl, ok := store.ttls["dinefind:restaurant:1"]; !ok || ttl != 0 {
		t.Errorf("ttl = %v (stored=%v), want plain SET", ttl, ok)
	}
}

func TestRestaurant_NotFoundNotCached(t *testing.T) {
	inner := &mockFetcher{err: domain.ErrRestaurantNotFound}
	store := newMemStore()
	c := New(inner, store, time.Hour, nil, zap.NewNop())

	for range 2 {
		_, err := c.Restaurant(context.Background(), 5)
		if !errors.Is(err, domain.ErrRestaurantNotFound) {
			t.Fatalf("err = %v, want ErrRestaurantNotFound", err)
		}
	}
	if inner.calls != 2 {
		t.Errorf("inner called %d times, want 2", inner.calls)
	}
	if len(store.data) != 0 {
		t.Error("error response was cached")
	}
}

func TestRestaurant_CacheFailuresDegrade(t *testing.T) {
	inner := &mockFetcher{detail: restaurant.Detail{ID: 9, Name: "Izakaya"}}
	store := newMemStore()
	store.getErr = errors.New("connection reset")
	store.setErr = errors.New("connection reset")
	c := New(inner, store, time.Hour, nil, zap.NewNop())

	d, err := c.Restaurant(context.Background(), 9)
	if err != nil {
		t.Fatalf("cache failure surfaced: %v", err)
	}
	if d.Name != "Izakaya" {
		t.Errorf("unexpected detail: %+v", d)
	}
}

func TestRestaurant_CorruptEntry(t *testing.T) {
	inner := &mockFetcher{detail: restaurant.Detail{ID: 3, Name: "Fresh"}}
	store := newMemStore()
	store.data["dinefind:restaurant:3"] = []byte("{not json")
	c := New(inner, store, time.Hour, nil, zap.NewNop())

	d, err := c.Restaurant(context.Background(), 3)
	if err != nil {
		t.Fatalf("Restaurant: %v", err)
	}
	if d.Name != "Fresh" || inner.calls != 1 {
		t.Errorf("corrupt entry not refetched: %+v calls=%d", d, inner.calls)
	}
}
