package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"sokoni-be/internal/db"
	"sokoni-be/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	// Create persists the order with its items and takes the ordered stock
	// out of the catalog as one unit of work. On any failure nothing is
	// written and no stock is taken.
	Create(ctx context.Context, o *Order) error
	GetByNumber(ctx context.Context, number string) (*Order, error)
	ListByCustomer(ctx context.Context, customerRef string) ([]*Order, error)
	// UpdateStatus moves the order to status to if it is still in status from.
	UpdateStatus(ctx context.Context, number string, from, to Status) error
}

// StockDecrementer is the catalog write used inside the order transaction.
type StockDecrementer interface {
	DecrementStockTx(ctx context.Context, tx db.DBTX, id int64, qty int) error
}

type PostgresRepository struct {
	db    *sql.DB
	stock StockDecrementer
}

func NewRepository(conn *sql.DB, stock StockDecrementer) *PostgresRepository {
	return &PostgresRepository{db: conn, stock: stock}
}

const uniqueViolation = "23505"

func (r *PostgresRepository) Create(ctx context.Context, o *Order) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "CreateOrder"),
		zap.String("order_number", o.OrderNumber),
	)

	if len(o.Items) == 0 {
		return ErrNoItems
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	// 1. Insert order
	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (
			order_number, customer_ref, name, phone, county, address, delivery,
			subtotal, shipping_fee, total, payment_method, payment_reference,
			status, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		RETURNING id
	`,
		o.OrderNumber,
		o.CustomerRef,
		o.Name,
		o.Phone,
		o.County,
		o.Address,
		o.Delivery,
		o.Subtotal,
		o.ShippingFee,
		o.Total,
		o.PaymentMethod,
		o.PaymentReference,
		o.Status,
		o.CreatedAt,
		o.UpdatedAt,
	).Scan(&o.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrDuplicateOrderNumber
		}
		return fmt.Errorf("failed to insert order: %w", err)
	}

	// 2. Insert order items + deduct stock
	for i := range o.Items {
		item := &o.Items[i]
		item.OrderID = o.ID

		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (
				order_id, product_id, product_name,
				quantity, unit_price, line_total
			) VALUES ($1,$2,$3,$4,$5,$6)
		`,
			item.OrderID,
			item.ProductID,
			item.ProductName,
			item.Quantity,
			item.UnitPrice,
			item.LineTotal,
		)
		if err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}

		if err := r.stock.DecrementStockTx(ctx, tx, item.ProductID, item.Quantity); err != nil {
			log.Warn("stock decrement failed",
				zap.Int64("product_id", item.ProductID),
				zap.Int("quantity", item.Quantity),
				zap.Error(err),
			)
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Info("order created", zap.Int64("order_id", o.ID), zap.Int("items", len(o.Items)))
	return nil
}

const orderColumns = `
	id, order_number, customer_ref, name, phone, county, address, delivery,
	subtotal, shipping_fee, total, payment_method, payment_reference,
	status, created_at, updated_at`

func (r *PostgresRepository) GetByNumber(ctx context.Context, number string) (*Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE order_number = $1
	`, number))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	if o.Items, err = r.items(ctx, o.ID); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *PostgresRepository) ListByCustomer(ctx context.Context, customerRef string) ([]*Order, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE customer_ref = $1
		ORDER BY created_at DESC, id DESC
	`, customerRef)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		orders []*Order
		ids    []int64
	)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	if len(orders) == 0 {
		return orders, nil
	}

	byOrder, err := r.itemsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, o := range orders {
		o.Items = byOrder[o.ID]
	}
	return orders, nil
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, number string, from, to Status) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET status = $1, updated_at = NOW()
		WHERE order_number = $2 AND status = $3
	`, to, number, from)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrInvalidTransition
	}
	return nil
}

func (r *PostgresRepository) items(ctx context.Context, orderID int64) ([]Item, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT order_id, product_id, product_name, quantity, unit_price, line_total
		FROM order_items
		WHERE order_id = $1
		ORDER BY product_id ASC
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// itemsFor loads the lines of several orders in one query, keyed by order id.
func (r *PostgresRepository) itemsFor(ctx context.Context, orderIDs []int64) (map[int64][]Item, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT order_id, product_id, product_name, quantity, unit_price, line_total
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id ASC, product_id ASC
	`, pq.Array(orderIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64][]Item, len(orderIDs))
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out[it.OrderID] = append(out[it.OrderID], it)
	}
	return out, rows.Err()
}

func scanItem(s scanner) (Item, error) {
	var it Item
	err := s.Scan(
		&it.OrderID,
		&it.ProductID,
		&it.ProductName,
		&it.Quantity,
		&it.UnitPrice,
		&it.LineTotal,
	)
	return it, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOrder(s scanner) (*Order, error) {
	var (
		o       Order
		address sql.NullString
	)
	if err := s.Scan(
		&o.ID,
		&o.OrderNumber,
		&o.CustomerRef,
		&o.Name,
		&o.Phone,
		&o.County,
		&address,
		&o.Delivery,
		&o.Subtotal,
		&o.ShippingFee,
		&o.Total,
		&o.PaymentMethod,
		&o.PaymentReference,
		&o.Status,
		&o.CreatedAt,
		&o.UpdatedAt,
	); err != nil {
		return nil, err
	}
	o.Address = address.String
	return &o, nil
}
