package wishlist

import (
	"context"
	"sync"

	"github.com/shopease/shopease-engine/internal/catalog"
	"github.com/shopease/shopease-engine/internal/store"
	pkgerrors "github.com/shopease/shopease-engine/pkg/errors"
	"github.com/shopease/shopease-engine/pkg/logger"
	"github.com/shopease/shopease-engine/pkg/metrics"
)

const documentVersion = 1

// State is the wishlist snapshot: a deduplicated saved-product set keyed by
// product ID, in insertion order.
type State struct {
	Items []catalog.Product `json:"items"`
}

// EngineParams groups dependencies for the wishlist engine.
type EngineParams struct {
	Store   store.Store
	Keys    store.Keys
	Logger  *logger.Logger
	Metrics *metrics.EngineMetrics
}

// Engine owns the saved-product set with write-through persistence.
type Engine struct {
	mu      sync.Mutex
	items   []catalog.Product
	persist store.Store
	key     string
	logg    *logger.Logger
	metrics *metrics.EngineMetrics
}

// NewEngine restores the persisted wishlist document (or starts empty).
func NewEngine(ctx context.Context, params EngineParams) (*Engine, error) {
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}

	engine := &Engine{
		persist: params.Store,
		key:     params.Keys.Wishlist(),
		logg:    params.Logger,
		metrics: params.Metrics,
	}

	var persisted []catalog.Product
	if store.LoadJSON(ctx, params.Store, params.Logger, engine.key, documentVersion, &persisted) {
		engine.items = dedupe(persisted)
	}
	return engine, nil
}

// Add saves the product. Adding an already-present product is a no-op.
func (e *Engine) Add(ctx context.Context, product catalog.Product) error {
	if !product.Valid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id and non-negative price are required")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.indexOf(product.ID) >= 0 {
		return nil
	}
	e.items = append(e.items, product)

	e.metrics.IncMutation("wishlist", "add")
	e.save(ctx)
	return nil
}

// Remove drops the product. Removing an absent product is a no-op.
func (e *Engine) Remove(ctx context.Context, productID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := e.indexOf(productID)
	if idx < 0 {
		return
	}
	e.items = append(e.items[:idx], e.items[idx+1:]...)

	e.metrics.IncMutation("wishlist", "remove")
	e.save(ctx)
}

// Toggle removes a present product and adds an absent one; it is its own
// inverse with respect to membership.
func (e *Engine) Toggle(ctx context.Context, product catalog.Product) error {
	if !product.Valid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id and non-negative price are required")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if idx := e.indexOf(product.ID); idx >= 0 {
		e.items = append(e.items[:idx], e.items[idx+1:]...)
	} else {
		e.items = append(e.items, product)
	}

	e.metrics.IncMutation("wishlist", "toggle")
	e.save(ctx)
	return nil
}

// Clear empties the wishlist and removes the persisted document.
func (e *Engine) Clear(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.items = nil
	e.metrics.IncMutation("wishlist", "clear")
	if err := e.persist.Clear(ctx, e.key); err != nil {
		e.logg.Error(ctx, "clearing wishlist document failed", err)
	}
}

// Contains reports membership for the given product ID.
func (e *Engine) Contains(productID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.indexOf(productID) >= 0
}

// State returns the current snapshot.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	items := make([]catalog.Product, len(e.items))
	copy(items, e.items)
	return State{Items: items}
}

func (e *Engine) indexOf(productID string) int {
	for i := range e.items {
		if e.items[i].ID == productID {
			return i
		}
	}
	return -1
}

func (e *Engine) save(ctx context.Context) {
	if err := store.SaveJSON(ctx, e.persist, e.key, documentVersion, e.items); err != nil {
		e.logg.Error(ctx, "persisting wishlist document failed", err)
	}
}

func dedupe(persisted []catalog.Product) []catalog.Product {
	seen := map[string]struct{}{}
	clean := make([]catalog.Product, 0, len(persisted))
	for _, item := range persisted {
		if !item.Valid() {
			continue
		}
		if _, dup := seen[item.ID]; dup {
			continue
		}
		seen[item.ID] = struct{}{}
		clean = append(clean, item)
	}
	if len(clean) == 0 {
		return nil
	}
	return clean
}
