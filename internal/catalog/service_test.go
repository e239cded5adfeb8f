package catalog

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/zoudousouk/souk-go/internal/api"
	"github.com/zoudousouk/souk-go/pkg/kv"
	"github.com/zoudousouk/souk-go/pkg/logger"
)

type stubClient struct {
	products []api.Product
	searches []string
	err      error
}

func (s *stubClient) ListProducts(context.Context, int) ([]api.Product, error) {
	return s.products, s.err
}

func (s *stubClient) GetProduct(_ context.Context, id string) (*api.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, p := range s.products {
		if p.ID == id {
			found := p
			return &found, nil
		}
	}
	return nil, fmt.Errorf("not found")
}

func (s *stubClient) SearchProducts(_ context.Context, term, _ string) ([]api.Product, error) {
	s.searches = append(s.searches, term)
	return s.products, s.err
}

func (s *stubClient) ProductsByVendor(context.Context, string) ([]api.Product, error) {
	return s.products, s.err
}

func newTestService(t *testing.T, client *stubClient, backing kv.Store) Service {
	t.Helper()

	if backing == nil {
		backing = kv.NewMemory()
	}
	svc, err := NewService(client, backing, logger.New(logger.Options{ServiceName: "test", Output: io.Discard}))
	if err != nil {
		t.Fatalf("building service: %v", err)
	}
	return svc
}

func TestSearchRecordsHistoryMostRecentFirst(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newTestService(t, &stubClient{}, nil)

	for _, term := range []string{"riz", "savon", "huile"} {
		if _, err := svc.Search(ctx, term, ""); err != nil {
			t.Fatalf("search %q: %v", term, err)
		}
	}

	history := svc.RecentSearches(ctx)
	want := []string{"huile", "savon", "riz"}
	if len(history) != len(want) {
		t.Fatalf("expected %d entries, got %v", len(want), history)
	}
	for i := range want {
		if history[i] != want[i] {
			t.Fatalf("history order wrong: got %v, want %v", history, want)
		}
	}
}

func TestSearchDeduplicatesHistory(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newTestService(t, &stubClient{}, nil)

	for _, term := range []string{"riz", "savon", "Riz"} {
		if _, err := svc.Search(ctx, term, ""); err != nil {
			t.Fatalf("search %q: %v", term, err)
		}
	}

	history := svc.RecentSearches(ctx)
	if len(history) != 2 || history[0] != "Riz" || history[1] != "savon" {
		t.Fatalf("repeat search must move to front without duplicating, got %v", history)
	}
}

func TestSearchHistoryCapped(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newTestService(t, &stubClient{}, nil)

	for i := 0; i < recentSearchLimit+5; i++ {
		if _, err := svc.Search(ctx, fmt.Sprintf("terme-%d", i), ""); err != nil {
			t.Fatalf("search %d: %v", i, err)
		}
	}

	history := svc.RecentSearches(ctx)
	if len(history) != recentSearchLimit {
		t.Fatalf("expected %d entries, got %d", recentSearchLimit, len(history))
	}
	if history[0] != fmt.Sprintf("terme-%d", recentSearchLimit+4) {
		t.Fatalf("newest entry must be first, got %q", history[0])
	}
}

func TestBlankSearchNotRecorded(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := &stubClient{}
	svc := newTestService(t, client, nil)

	if _, err := svc.Search(ctx, "   ", ""); err != nil {
		t.Fatalf("blank search: %v", err)
	}
	if history := svc.RecentSearches(ctx); len(history) != 0 {
		t.Fatalf("blank term must not be recorded, got %v", history)
	}
	if len(client.searches) != 1 || client.searches[0] != "" {
		t.Fatalf("blank term still queries the backend trimmed, got %v", client.searches)
	}
}

func TestFailedSearchNotRecorded(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newTestService(t, &stubClient{err: fmt.Errorf("backend down")}, nil)

	if _, err := svc.Search(ctx, "riz", ""); err == nil {
		t.Fatal("expected search failure")
	}
	if history := svc.RecentSearches(ctx); len(history) != 0 {
		t.Fatalf("failed search must not be recorded, got %v", history)
	}
}

func TestClearRecentSearches(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newTestService(t, &stubClient{}, nil)

	if _, err := svc.Search(ctx, "riz", ""); err != nil {
		t.Fatalf("search: %v", err)
	}
	if err := svc.ClearRecentSearches(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if history := svc.RecentSearches(ctx); len(history) != 0 {
		t.Fatalf("history must be empty after clear, got %v", history)
	}
}

func TestToggleFavorite(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	backing := kv.NewMemory()
	svc := newTestService(t, &stubClient{}, backing)

	on, err := svc.ToggleFavorite(ctx, "p-1")
	if err != nil || !on {
		t.Fatalf("first toggle must favorite, got on=%v err=%v", on, err)
	}
	if !svc.IsFavorite(ctx, "p-1") {
		t.Fatal("p-1 should be a favorite")
	}

	// favorites survive a "restart"
	restarted := newTestService(t, &stubClient{}, backing)
	if !restarted.IsFavorite(ctx, "p-1") {
		t.Fatal("favorites must persist")
	}

	on, err = svc.ToggleFavorite(ctx, "p-1")
	if err != nil || on {
		t.Fatalf("second toggle must unfavorite, got on=%v err=%v", on, err)
	}
	if svc.IsFavorite(ctx, "p-1") {
		t.Fatal("p-1 should no longer be a favorite")
	}
}

func TestCorruptListsReadAsEmpty(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	backing := kv.NewMemory()
	for _, key := range []string{kv.KeyRecentSearches, kv.KeyFavoriteProducts} {
		if err := backing.Set(ctx, key, "not json"); err != nil {
			t.Fatalf("seeding: %v", err)
		}
	}

	svc := newTestService(t, &stubClient{}, backing)
	if history := svc.RecentSearches(ctx); len(history) != 0 {
		t.Fatalf("corrupt history must read as empty, got %v", history)
	}
	if favorites := svc.Favorites(ctx); len(favorites) != 0 {
		t.Fatalf("corrupt favorites must read as empty, got %v", favorites)
	}
	if svc.IsFavorite(ctx, "p-1") {
		t.Fatal("nothing can be favorite with a corrupt list")
	}
}

func TestProductValidation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newTestService(t, &stubClient{products: []api.Product{{ID: "p-1", Name: "Riz"}}}, nil)

	if _, err := svc.Product(ctx, " "); err == nil {
		t.Fatal("blank product id must fail")
	}
	product, err := svc.Product(ctx, "p-1")
	if err != nil {
		t.Fatalf("product lookup: %v", err)
	}
	if product.Name != "Riz" {
		t.Fatalf("unexpected product: %+v", product)
	}

	if _, err := svc.VendorProducts(ctx, ""); err == nil {
		t.Fatal("blank vendor id must fail")
	}
}
