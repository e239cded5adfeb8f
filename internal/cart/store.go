package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	pkgerrors "github.com/zoudousouk/souk-go/pkg/errors"
	"github.com/zoudousouk/souk-go/pkg/kv"
	"github.com/zoudousouk/souk-go/pkg/logger"
)

// Store maintains the authoritative cart and keeps the persisted mirror in
// sync. All operations serialize on the store's mutex, so a mutation never
// observes another mutation's partial state.
type Store struct {
	kv     kv.Store
	logger *logger.Logger

	mu    sync.Mutex
	lines []Line
}

// NewStore builds an empty cart store over the given storage.
func NewStore(store kv.Store, logg *logger.Logger) (*Store, error) {
	if store == nil {
		return nil, fmt.Errorf("cart storage required")
	}
	if logg == nil {
		return nil, fmt.Errorf("cart logger required")
	}
	return &Store{kv: store, logger: logg}, nil
}

// Load replaces the in-memory cart with the persisted mirror. An absent or
// unreadable mirror yields an empty cart; load never fails. Safe to call
// repeatedly.
func (s *Store) Load(ctx context.Context) []Line {
	raw, err := s.kv.Get(ctx, kv.KeyCartItems)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			s.logger.Warn(ctx, "cart mirror unreadable, starting empty")
		}
		s.setLines(nil)
		return nil
	}

	var lines []Line
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		s.logger.Warn(ctx, "cart mirror corrupt, starting empty")
		s.setLines(nil)
		return nil
	}

	s.setLines(lines)
	return s.Snapshot()
}

// AddOrUpdate inserts a new line or replaces the existing line for the same
// product, keeping its original position. A quantity below one removes the
// line instead.
func (s *Store) AddOrUpdate(ctx context.Context, line Line) error {
	if strings.TrimSpace(line.ProductID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if line.UnitPrice < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "unit price cannot be negative")
	}
	if line.Quantity < 1 {
		return s.Remove(ctx, line.ProductID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	replaced := false
	for i := range s.lines {
		if s.lines[i].ProductID == line.ProductID {
			s.lines[i] = line
			replaced = true
			break
		}
	}
	if !replaced {
		s.lines = append(s.lines, line)
	}
	return s.persistLocked(ctx)
}

// SetQuantity adjusts the quantity of an existing line. A quantity below one
// removes the line. An unknown product with a positive quantity is a no-op:
// the caller owns the full line data and must go through AddOrUpdate.
func (s *Store) SetQuantity(ctx context.Context, productID string, quantity int) error {
	if quantity < 1 {
		return s.Remove(ctx, productID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			s.lines[i].Quantity = quantity
			return s.persistLocked(ctx)
		}
	}
	return nil
}

// Remove deletes the line if present; removing an absent line is a no-op.
func (s *Store) Remove(ctx context.Context, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
			return s.persistLocked(ctx)
		}
	}
	return nil
}

// Clear empties the cart and drops the persisted mirror.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = nil
	if err := s.kv.Delete(ctx, kv.KeyCartItems); err != nil {
		s.logger.Warn(ctx, "failed to drop cart mirror")
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "clearing cart mirror")
	}
	return nil
}

// Totals derives the item count and price over the current lines.
func (s *Store) Totals() Totals {
	s.mu.Lock()
	defer s.mu.Unlock()

	var totals Totals
	for _, line := range s.lines {
		totals.Items += line.Quantity
		totals.Price += line.Subtotal()
	}
	return totals
}

// Snapshot returns a copy of the current lines in insertion order.
func (s *Store) Snapshot() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.lines) == 0 {
		return nil
	}
	copied := make([]Line, len(s.lines))
	copy(copied, s.lines)
	return copied
}

// First returns the oldest line, if any.
func (s *Store) First() (Line, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.lines) == 0 {
		return Line{}, false
	}
	return s.lines[0], true
}

// IsEmpty reports whether the cart has no lines.
func (s *Store) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines) == 0
}

// persistLocked mirrors the in-memory lines to storage. On failure the
// in-memory mutation is kept; the caller receives a STORAGE_ERROR so the
// surface can warn, and the next successful mutation heals the mirror.
func (s *Store) persistLocked(ctx context.Context) error {
	encoded, err := json.Marshal(s.lines)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "encoding cart")
	}
	if err := s.kv.Set(ctx, kv.KeyCartItems, string(encoded)); err != nil {
		s.logger.Warn(ctx, "cart mirror write failed, keeping in-memory state")
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "persisting cart")
	}
	return nil
}

func (s *Store) setLines(lines []Line) {
	s.mu.Lock()
	s.lines = lines
	s.mu.Unlock()
}
