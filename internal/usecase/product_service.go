package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/sana-a-khan/fabrix/internal/domain"
)

// ProductService validates products and upserts them by URL
type ProductService struct {
	store  domain.ProductStore
	locks  *keyedMutex
	logger zerolog.Logger
}

// NewProductService creates a new product service
func NewProductService(store domain.ProductStore, logger zerolog.Logger) *ProductService {
	return &ProductService{
		store:  store,
		locks:  newKeyedMutex(),
		logger: logger.With().Str("component", "products").Logger(),
	}
}

// Save validates, sanitizes and upserts a product.
// Flow: validate -> sanitize -> lock url -> get -> insert or patch
func (s *ProductService) Save(ctx context.Context, product *domain.ProductRecord) (*domain.SaveResult, error) {
	if err := CheckProduct(product); err != nil {
		return nil, err
	}
	return s.upsert(ctx, SanitizeProduct(product))
}

// SaveInput is Save for a body decoded with DecodeProduct, so wrong-typed
// fields are listed with the other validation problems
func (s *ProductService) SaveInput(ctx context.Context, in *ProductInput) (*domain.SaveResult, error) {
	if err := problemsError(ValidateProductInput(in)); err != nil {
		return nil, err
	}
	return s.upsert(ctx, SanitizeProduct(in.Record))
}

func (s *ProductService) upsert(ctx context.Context, record *domain.ProductRecord) (*domain.SaveResult, error) {
	unlock := s.locks.Lock(record.URL)
	defer unlock()

	existing, err := s.store.Get(ctx, record.URL)
	if err != nil && !errors.Is(err, domain.ErrProductNotFound) {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	if existing == nil {
		record.CheckCount = 1
		if err := s.store.Insert(ctx, record); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
		}

		s.logger.Info().Str("url", record.URL).Str("grade", string(record.CompositionGrade)).Msg("product saved")
		return &domain.SaveResult{AlreadyExists: false, CheckCount: 1}, nil
	}

	checkCount := max(existing.CheckCount, 0) + 1
	changed := CompositionChanged(existing, record)

	patch := domain.ProductPatch{CheckCount: checkCount}
	if changed {
		patch.Composition = record
	}
	if err := s.store.Patch(ctx, record.URL, patch); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	s.logger.Info().
		Str("url", record.URL).
		Int("check_count", checkCount).
		Bool("composition_changed", changed).
		Msg("product re-checked")

	return &domain.SaveResult{
		AlreadyExists:      true,
		CheckCount:         checkCount,
		CompositionChanged: changed,
	}, nil
}

// CompositionChanged compares fibers, lining, trim and grade. Sequences are
// compared in order and an absent section differs from an empty one.
func CompositionChanged(stored, incoming *domain.ProductRecord) bool {
	return !sameEntries(stored.Fibers, incoming.Fibers) ||
		!sameEntries(stored.Lining, incoming.Lining) ||
		!sameEntries(stored.Trim, incoming.Trim) ||
		stored.CompositionGrade != incoming.CompositionGrade
}

func sameEntries(a, b []domain.FiberEntry) bool {
	if (a == nil) != (b == nil) || len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// keyedMutex serializes work per key and frees idle keys
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*keyedLock)}
}

// Lock blocks until key is free and returns its unlock function
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyedLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

// size reports how many keys are held or awaited
func (k *keyedMutex) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
