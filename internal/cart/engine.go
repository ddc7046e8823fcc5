package cart

import (
	"context"
	"sync"

	"github.com/shopease/shopease-engine/internal/catalog"
	"github.com/shopease/shopease-engine/internal/store"
	pkgerrors "github.com/shopease/shopease-engine/pkg/errors"
	"github.com/shopease/shopease-engine/pkg/logger"
	"github.com/shopease/shopease-engine/pkg/metrics"
	"github.com/shopspring/decimal"
)

const documentVersion = 1

// Line is one distinct product entry in the cart with its own quantity.
type Line struct {
	ProductID     string           `json:"productId"`
	Title         string           `json:"title"`
	UnitPrice     decimal.Decimal  `json:"unitPrice"`
	Quantity      int              `json:"quantity"`
	OriginalPrice *decimal.Decimal `json:"originalPrice,omitempty"`
}

// State is the cart snapshot handed to the view layer. TotalItems and
// TotalPrice are derived and recomputed from Lines on every mutation.
type State struct {
	Lines      []Line          `json:"lines"`
	TotalItems int             `json:"totalItems"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

// EngineParams groups dependencies for the cart engine.
type EngineParams struct {
	Store   store.Store
	Keys    store.Keys
	Logger  *logger.Logger
	Metrics *metrics.EngineMetrics
}

// Engine owns the shopping-cart line items and their derived totals. Every
// mutation updates memory first and then write-through persists.
type Engine struct {
	mu      sync.Mutex
	lines   []Line
	persist store.Store
	key     string
	logg    *logger.Logger
	metrics *metrics.EngineMetrics
}

// NewEngine restores the persisted cart document (or starts empty) and
// returns a ready engine.
func NewEngine(ctx context.Context, params EngineParams) (*Engine, error) {
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}

	engine := &Engine{
		persist: params.Store,
		key:     params.Keys.Cart(),
		logg:    params.Logger,
		metrics: params.Metrics,
	}

	var persisted []Line
	if store.LoadJSON(ctx, params.Store, params.Logger, engine.key, documentVersion, &persisted) {
		engine.lines = sanitizeLines(persisted)
	}
	return engine, nil
}

// AddLine merges the product into the cart: an existing line has its
// quantity incremented, otherwise a new line is appended. Quantities below
// one fall back to one.
func (e *Engine) AddLine(ctx context.Context, product catalog.Product, quantity int) error {
	if !product.Valid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id and non-negative price are required")
	}
	if quantity < 1 {
		quantity = 1
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	merged := false
	for i := range e.lines {
		if e.lines[i].ProductID == product.ID {
			e.lines[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		e.lines = append(e.lines, Line{
			ProductID:     product.ID,
			Title:         product.Title,
			UnitPrice:     product.Price,
			Quantity:      quantity,
			OriginalPrice: product.OriginalPrice,
		})
	}

	e.metrics.IncMutation("cart", "add_line")
	e.save(ctx)
	return nil
}

// RemoveLine deletes the matching line. Removing an absent line is a no-op,
// not an error.
func (e *Engine) RemoveLine(ctx context.Context, productID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	kept := e.lines[:0]
	for _, line := range e.lines {
		if line.ProductID != productID {
			kept = append(kept, line)
		}
	}
	e.lines = kept

	e.metrics.IncMutation("cart", "remove_line")
	e.save(ctx)
}

// SetQuantity updates an existing line's quantity, clamping to a minimum of
// one. A line is never stored with quantity zero; removal deletes it instead.
// Absent lines are left alone.
func (e *Engine) SetQuantity(ctx context.Context, productID string, quantity int) {
	if quantity < 1 {
		quantity = 1
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range e.lines {
		if e.lines[i].ProductID == productID {
			e.lines[i].Quantity = quantity
			break
		}
	}

	e.metrics.IncMutation("cart", "set_quantity")
	e.save(ctx)
}

// Clear empties the cart and persists the empty state.
func (e *Engine) Clear(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.lines = nil
	e.metrics.IncMutation("cart", "clear")
	e.save(ctx)
}

// State returns the current snapshot with totals recomputed from the lines.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return computeState(e.lines)
}

// save persists the lines under the cart key. Persistence failures are
// logged and never surfaced: the in-memory state stays authoritative.
func (e *Engine) save(ctx context.Context) {
	if err := store.SaveJSON(ctx, e.persist, e.key, documentVersion, e.lines); err != nil {
		e.logg.Error(ctx, "persisting cart document failed", err)
	}
}

// computeState derives totals from scratch; totals are never patched
// incrementally, which rules out drift between lines and totals.
func computeState(lines []Line) State {
	state := State{
		Lines:      make([]Line, len(lines)),
		TotalPrice: decimal.Zero,
	}
	copy(state.Lines, lines)
	for _, line := range lines {
		state.TotalItems += line.Quantity
		state.TotalPrice = state.TotalPrice.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return state
}

// sanitizeLines drops restore entries that violate the invariants: missing
// product IDs, negative prices, duplicate lines. Quantities clamp to one.
func sanitizeLines(persisted []Line) []Line {
	seen := map[string]struct{}{}
	clean := make([]Line, 0, len(persisted))
	for _, line := range persisted {
		if line.ProductID == "" || line.UnitPrice.IsNegative() {
			continue
		}
		if _, dup := seen[line.ProductID]; dup {
			continue
		}
		seen[line.ProductID] = struct{}{}
		if line.Quantity < 1 {
			line.Quantity = 1
		}
		clean = append(clean, line)
	}
	if len(clean) == 0 {
		return nil
	}
	return clean
}
