package checkout

import (
	"context"
	"errors"
	"time"

	"sokoni-be/internal/cart"
	"sokoni-be/internal/events"
	"sokoni-be/internal/logger"
	"sokoni-be/internal/metrics"
	"sokoni-be/internal/order"
	"sokoni-be/internal/payment"
	"sokoni-be/internal/shipping"
	"sokoni-be/internal/utils"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const (
	orderNumberPrefix = "OM-"
	orderNumberLayout = "20060102-150405"

	// createAttempts bounds retries when another process already used the
	// generated order number.
	createAttempts = 3
)

type Service interface {
	Preview(ctx context.Context, sessionID string, form Form) (*Summary, error)
	PlaceOrder(ctx context.Context, sessionID, customerRef string, form Form) (*order.Order, error)
}

type Dependencies struct {
	Carts    cart.Service
	Catalog  cart.Catalog
	Orders   order.Repository
	Payments payment.Gateway
	Refs     *utils.ReferenceGenerator
	Notifier events.Notifier
	Metrics  *metrics.Registry
	Now      func() time.Time
}

type service struct {
	carts    cart.Service
	catalog  cart.Catalog
	orders   order.Repository
	payments payment.Gateway
	refs     *utils.ReferenceGenerator
	notifier events.Notifier
	metrics  *metrics.Registry
	now      func() time.Time
	validate *validator.Validate
}

func NewService(deps Dependencies) Service {
	s := &service{
		carts:    deps.Carts,
		catalog:  deps.Catalog,
		orders:   deps.Orders,
		payments: deps.Payments,
		refs:     deps.Refs,
		notifier: deps.Notifier,
		metrics:  deps.Metrics,
		now:      deps.Now,
		validate: validator.New(),
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.refs == nil {
		s.refs = utils.NewReferenceGenerator(s.now)
	}
	if s.notifier == nil {
		s.notifier = events.NoopNotifier{}
	}
	return s
}

// Preview prices the session's cart against the live catalog and the chosen
// shipping option. A cart whose products have all disappeared counts as empty.
func (s *service) Preview(ctx context.Context, sessionID string, form Form) (*Summary, error) {
	c, err := s.carts.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}

	lines, subtotal, err := cart.Resolve(ctx, s.catalog, c)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	form = form.normalize()
	fee := shipping.Fee(form.County, shipping.DeliveryOption(form.Delivery))

	return &Summary{
		Lines:        lines,
		Count:        cart.LineCount(lines),
		Subtotal:     subtotal,
		ShippingFee:  fee,
		Total:        subtotal.Add(fee),
		Form:         form,
		Counties:     shipping.Counties(),
		CountyListed: shipping.IsKnownCounty(form.County),
	}, nil
}

// PlaceOrder validates the form, takes payment, and records the order with
// its stock decrement as one unit of work. The cart is cleared only after the
// order is stored.
func (s *service) PlaceOrder(ctx context.Context, sessionID, customerRef string, form Form) (*order.Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "PlaceOrder"),
	)
	timer := s.metrics.OrderTimer()

	summary, err := s.Preview(ctx, sessionID, form)
	if err != nil {
		if errors.Is(err, ErrEmptyCart) {
			s.metrics.Inc(metrics.CheckoutEmptyCart)
			log.Warn("checkout attempted with empty cart")
		}
		return nil, err
	}

	if err := s.validate.Struct(summary.Form); err != nil {
		s.metrics.Inc(metrics.CheckoutValidationFailed)
		log.Info("checkout form invalid", zap.Error(err))
		return nil, &ValidationError{Fields: formatValidationError(err), Summary: summary}
	}

	pay, err := s.payments.Initiate(ctx, payment.ParseMethod(summary.Form.Payment), summary.Total)
	if err != nil {
		log.Error("payment initiation failed", zap.Error(err))
		return nil, err
	}

	o := s.buildOrder(customerRef, summary, pay)

	for attempt := 1; ; attempt++ {
		o.OrderNumber = s.refs.Next(orderNumberPrefix, orderNumberLayout)

		err = s.orders.Create(ctx, o)
		if errors.Is(err, order.ErrDuplicateOrderNumber) && attempt < createAttempts {
			log.Warn("order number taken, retrying", zap.String("order_number", o.OrderNumber))
			continue
		}
		break
	}
	if err != nil {
		if errors.Is(err, order.ErrInsufficientStock) {
			s.metrics.Inc(metrics.CheckoutStockExhausted)
			log.Warn("stock exhausted", zap.Error(err))
		} else {
			log.Error("failed to create order", zap.Error(err))
		}
		return nil, err
	}

	if err := s.carts.Clear(ctx, sessionID); err != nil {
		log.Error("order placed but cart not cleared",
			zap.String("order_number", o.OrderNumber),
			zap.Error(err),
		)
	}

	if err := s.notifier.PublishOrderPlaced(ctx, o); err != nil {
		s.metrics.Inc(metrics.EventPublishFailed)
		log.Warn("order event not published", zap.String("order_number", o.OrderNumber), zap.Error(err))
	}

	s.metrics.Inc(metrics.OrdersPlaced)
	log.Info("order placed",
		zap.String("order_number", o.OrderNumber),
		zap.String("total", o.Total.StringFixed(2)),
		zap.String("status", string(o.Status)),
		zap.Duration("duration", timer.ObserveDuration()),
	)
	return o, nil
}

func (s *service) buildOrder(customerRef string, summary *Summary, pay *payment.Result) *order.Order {
	now := s.now()

	status := order.StatusPending
	if pay.Status == payment.StatusPaid {
		status = order.StatusPaid
	}

	items := make([]order.Item, 0, len(summary.Lines))
	for _, l := range summary.Lines {
		items = append(items, order.Item{
			ProductID:   l.Product.ID,
			ProductName: l.Product.Name,
			Quantity:    l.Quantity,
			UnitPrice:   l.Product.Price,
			LineTotal:   l.LineTotal,
		})
	}

	return &order.Order{
		CustomerRef:      customerRef,
		Name:             summary.Form.Name,
		Phone:            summary.Form.Phone,
		County:           summary.Form.County,
		Address:          summary.Form.Address,
		Delivery:         summary.Form.Delivery,
		Items:            items,
		Subtotal:         summary.Subtotal,
		ShippingFee:      summary.ShippingFee,
		Total:            summary.Total,
		PaymentMethod:    string(pay.Method),
		PaymentReference: pay.Reference,
		Status:           status,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}
