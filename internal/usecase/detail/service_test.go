package detail

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/dinefind/internal/domain"
	"github.com/kailas-cloud/dinefind/internal/domain/restaurant"
)

// --- Mocks ---

type mockFetcher struct {
	detail restaurant.Detail
	err    error
	lastID int64
}

func (m *mockFetcher) Restaurant(_ context.Context, id int64) (restaurant.Detail, error) {
	m.lastID = id
	return m.detail, m.err
}

// --- Tests ---

func TestGet_Success(t *testing.T) {
	f := &mockFetcher{detail: restaurant.Detail{ID: 18387, Name: "Ooma"}}
	svc := New(f)

	d, err := svc.Get(context.Background(), 18387)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Name != "Ooma" || f.lastID != 18387 {
		t.Errorf("unexpected detail %+v (id %d)", d, f.lastID)
	}
}

func TestGet_Errors(t *testing.T) {
	tests := []struct {
		name    string
		id      int64
		err     error
		wantErr error
		message string
	}{
		{"invalid id", 0, nil, domain.ErrRestaurantNotFound, NotFoundMessage},
		{"not found", 7, domain.ErrRestaurantNotFound, domain.ErrRestaurantNotFound, NotFoundMessage},
		{"status", 7, domain.NewStatusError("detail", 500), domain.ErrBackendStatus, FailureMessage},
		{"transport", 7, domain.ErrBackendUnavailable, domain.ErrBackendUnavailable, FailureMessage},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := New(&mockFetcher{err: tc.err})
			_, err := svc.Get(context.Background(), tc.id)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("err = %v, want %v", err, tc.wantErr)
			}
			if got := Message(err); got != tc.message {
				t.Errorf("Message() = %q, want %q", got, tc.message)
			}
		})
	}
}

func TestMessage_Nil(t *testing.T) {
	if Message(nil) != "" {
		t.Error("expected empty message for nil error")
	}
}
