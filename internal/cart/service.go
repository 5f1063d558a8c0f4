package cart

import (
	"context"
	"fmt"

	"sokoni-be/internal/logger"
	"sokoni-be/internal/product"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Catalog is the part of the catalog store the cart needs.
type Catalog interface {
	GetByID(ctx context.Context, id int64) (*product.Product, error)
}

// Service defines cart operations for one customer session.
type Service interface {
	Load(ctx context.Context, sessionID string) (*Cart, error)
	View(ctx context.Context, sessionID string) (*View, error)
	Add(ctx context.Context, sessionID string, productID int64, qty int) (int, error)
	SetQuantity(ctx context.Context, sessionID string, productID int64, qty int) (int, error)
	Remove(ctx context.Context, sessionID string, productID int64) (int, error)
	Clear(ctx context.Context, sessionID string) error
}

type service struct {
	store   Store
	catalog Catalog
}

func NewService(store Store, catalog Catalog) Service {
	return &service{store: store, catalog: catalog}
}

func (s *service) Load(ctx context.Context, sessionID string) (*Cart, error) {
	if sessionID == "" {
		return nil, ErrSessionRequired
	}

	payload, err := s.store.Load(ctx, sessionID)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to load cart",
			zap.String("layer", "service"),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %w", ErrFailedLoadCart, err)
	}

	c, skipped := Decode(payload)
	if skipped > 0 {
		logger.FromCtx(ctx).Warn("skipped malformed cart entries",
			zap.String("layer", "service"),
			zap.Int("skipped", skipped),
		)
	}
	return c, nil
}

func (s *service) View(ctx context.Context, sessionID string) (*View, error) {
	c, err := s.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	lines, subtotal, err := Resolve(ctx, s.catalog, c)
	if err != nil {
		return nil, err
	}

	return &View{Lines: lines, Subtotal: subtotal, Count: LineCount(lines)}, nil
}

// Add increments productID by qty (values below one count as one) and returns
// the new unit count of the cart.
func (s *service) Add(ctx context.Context, sessionID string, productID int64, qty int) (int, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "AddToCart"),
		zap.Int64("product_id", productID),
	)

	p, err := s.catalog.GetByID(ctx, productID)
	if err != nil {
		log.Error("failed to get product", zap.Error(err))
		return 0, err
	}
	if p == nil {
		log.Warn("product not found")
		return 0, ErrProductNotFound
	}

	if qty < 1 {
		qty = DefaultQuantity
	}

	c, err := s.Load(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	c.Add(productID, qty)

	if err := s.save(ctx, sessionID, c); err != nil {
		return 0, err
	}

	log.Info("cart item added", zap.Int("qty", c.Quantity(productID)))
	return s.count(ctx, c)
}

// SetQuantity overwrites the line quantity. Negative input is coerced to one,
// zero removes the line.
func (s *service) SetQuantity(ctx context.Context, sessionID string, productID int64, qty int) (int, error) {
	if qty < 0 {
		qty = DefaultQuantity
	}

	c, err := s.Load(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	c.Set(productID, qty)

	if err := s.save(ctx, sessionID, c); err != nil {
		return 0, err
	}
	return s.count(ctx, c)
}

// count sums quantities over lines the catalog still resolves.
func (s *service) count(ctx context.Context, c *Cart) (int, error) {
	lines, _, err := Resolve(ctx, s.catalog, c)
	if err != nil {
		return 0, err
	}
	return LineCount(lines), nil
}

func (s *service) Remove(ctx context.Context, sessionID string, productID int64) (int, error) {
	return s.SetQuantity(ctx, sessionID, productID, 0)
}

// Clear drops the whole cart. Clearing an empty cart is not an error.
func (s *service) Clear(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrSessionRequired
	}
	if err := s.store.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("%w: %w", ErrFailedSaveCart, err)
	}
	return nil
}

func (s *service) save(ctx context.Context, sessionID string, c *Cart) error {
	if !c.Dirty() {
		return nil
	}

	payload, err := Encode(c)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFailedSaveCart, err)
	}
	if err := s.store.Save(ctx, sessionID, payload); err != nil {
		logger.FromCtx(ctx).Error("failed to save cart",
			zap.String("layer", "service"),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %w", ErrFailedSaveCart, err)
	}
	c.markClean()
	return nil
}

// Resolve joins the cart against the catalog. Ids the catalog no longer knows
// are left out of both the lines and the subtotal.
func Resolve(ctx context.Context, catalog Catalog, c *Cart) ([]Line, decimal.Decimal, error) {
	lines := make([]Line, 0, len(c.items))
	subtotal := decimal.Zero

	for _, id := range c.ProductIDs() {
		p, err := catalog.GetByID(ctx, id)
		if err != nil {
			return nil, decimal.Zero, err
		}
		if p == nil {
			logger.FromCtx(ctx).Debug("dropping unresolved cart line", zap.Int64("product_id", id))
			continue
		}

		qty := c.items[id]
		total := p.Price.Mul(decimal.NewFromInt(int64(qty)))
		subtotal = subtotal.Add(total)
		lines = append(lines, Line{Product: p, Quantity: qty, LineTotal: total})
	}

	return lines, subtotal, nil
}
