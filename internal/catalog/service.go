// Package catalog drives product browsing: listing, search, the per-device
// recent-search history and the favorites list. Searches and favorites are
// local state mirrored through the key-value store; the products themselves
// always come from the backend.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/zoudousouk/souk-go/internal/api"
	pkgerrors "github.com/zoudousouk/souk-go/pkg/errors"
	"github.com/zoudousouk/souk-go/pkg/kv"
	"github.com/zoudousouk/souk-go/pkg/logger"
)

// recentSearchLimit caps the search history at the most recent entries.
const recentSearchLimit = 10

// Client is the slice of the backend API the catalog needs.
type Client interface {
	ListProducts(ctx context.Context, limit int) ([]api.Product, error)
	GetProduct(ctx context.Context, id string) (*api.Product, error)
	SearchProducts(ctx context.Context, term, category string) ([]api.Product, error)
	ProductsByVendor(ctx context.Context, vendorID string) ([]api.Product, error)
}

// Service is the catalog surface.
type Service interface {
	Browse(ctx context.Context, limit int) ([]api.Product, error)
	Product(ctx context.Context, id string) (*api.Product, error)
	Search(ctx context.Context, term, category string) ([]api.Product, error)
	VendorProducts(ctx context.Context, vendorID string) ([]api.Product, error)

	RecentSearches(ctx context.Context) []string
	ClearRecentSearches(ctx context.Context) error

	Favorites(ctx context.Context) []string
	ToggleFavorite(ctx context.Context, productID string) (bool, error)
	IsFavorite(ctx context.Context, productID string) bool
}

type service struct {
	client Client
	kv     kv.Store
	logger *logger.Logger
}

// NewService builds the catalog service over the given storage.
func NewService(client Client, store kv.Store, logg *logger.Logger) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("catalog client required")
	}
	if store == nil {
		return nil, fmt.Errorf("catalog storage required")
	}
	if logg == nil {
		return nil, fmt.Errorf("catalog logger required")
	}
	return &service{client: client, kv: store, logger: logg}, nil
}

func (s *service) Browse(ctx context.Context, limit int) ([]api.Product, error) {
	return s.client.ListProducts(ctx, limit)
}

func (s *service) Product(ctx context.Context, id string) (*api.Product, error) {
	if strings.TrimSpace(id) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	return s.client.GetProduct(ctx, id)
}

// Search queries the catalog and records a non-empty term in the local
// history. A failing history write never fails the search.
func (s *service) Search(ctx context.Context, term, category string) ([]api.Product, error) {
	term = strings.TrimSpace(term)
	products, err := s.client.SearchProducts(ctx, term, category)
	if err != nil {
		return nil, err
	}
	if term != "" {
		s.rememberSearch(ctx, term)
	}
	return products, nil
}

func (s *service) VendorProducts(ctx context.Context, vendorID string) ([]api.Product, error) {
	if strings.TrimSpace(vendorID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor id is required")
	}
	return s.client.ProductsByVendor(ctx, vendorID)
}

// RecentSearches returns the history, most recent first. A missing or corrupt
// history reads as empty.
func (s *service) RecentSearches(ctx context.Context) []string {
	return s.loadList(ctx, kv.KeyRecentSearches)
}

func (s *service) ClearRecentSearches(ctx context.Context) error {
	if err := s.kv.Delete(ctx, kv.KeyRecentSearches); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "clearing search history")
	}
	return nil
}

func (s *service) Favorites(ctx context.Context) []string {
	return s.loadList(ctx, kv.KeyFavoriteProducts)
}

// ToggleFavorite flips the favorite state for the product and reports the new
// state.
func (s *service) ToggleFavorite(ctx context.Context, productID string) (bool, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	favorites := s.loadList(ctx, kv.KeyFavoriteProducts)
	kept := favorites[:0]
	removed := false
	for _, id := range favorites {
		if id == productID {
			removed = true
			continue
		}
		kept = append(kept, id)
	}
	if !removed {
		kept = append(kept, productID)
	}

	if err := s.storeList(ctx, kv.KeyFavoriteProducts, kept); err != nil {
		return false, err
	}
	return !removed, nil
}

func (s *service) IsFavorite(ctx context.Context, productID string) bool {
	for _, id := range s.loadList(ctx, kv.KeyFavoriteProducts) {
		if id == productID {
			return true
		}
	}
	return false
}

// rememberSearch moves the term to the front of the history, dropping any
// earlier occurrence and trimming to the limit.
func (s *service) rememberSearch(ctx context.Context, term string) {
	history := s.loadList(ctx, kv.KeyRecentSearches)
	updated := make([]string, 0, len(history)+1)
	updated = append(updated, term)
	for _, previous := range history {
		if strings.EqualFold(previous, term) {
			continue
		}
		updated = append(updated, previous)
	}
	if len(updated) > recentSearchLimit {
		updated = updated[:recentSearchLimit]
	}
	if err := s.storeList(ctx, kv.KeyRecentSearches, updated); err != nil {
		s.logger.Warn(ctx, "search history not persisted")
	}
}

func (s *service) loadList(ctx context.Context, key string) []string {
	raw, err := s.kv.Get(ctx, key)
	if err != nil {
		return nil
	}
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		s.logger.Warn(ctx, "stored list corrupt, starting empty")
		return nil
	}
	return list
}

func (s *service) storeList(ctx context.Context, key string, list []string) error {
	encoded, err := json.Marshal(list)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "encoding list")
	}
	if err := s.kv.Set(ctx, key, string(encoded)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "persisting list")
	}
	return nil
}
