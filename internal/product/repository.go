package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"sokoni-be/internal/db"
	"sokoni-be/internal/logger"

	"go.uber.org/zap"
)

// Repository is the read side of the catalog plus the one write the checkout
// flow is allowed to make: taking stock out.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Product, error)
	List(ctx context.Context, opts ListOptions) ([]*Product, error)
	DecrementStock(ctx context.Context, id int64, qty int) error
}

type PostgresRepository struct {
	db *sql.DB
}

func NewRepository(conn *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: conn}
}

const productColumns = `id, name, description, price, category, rating, stock, created_at`

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*Product, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE id = $1
	`, id)

	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PostgresRepository) List(ctx context.Context, opts ListOptions) ([]*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "ListProducts"),
	)
	start := time.Now()

	// ---------- where ----------
	where := []string{"1=1"}
	args := []any{}

	if s := strings.TrimSpace(opts.Search); s != "" {
		args = append(args, "%"+s+"%")
		where = append(where, fmt.Sprintf("name ILIKE $%d", len(args)))
	}
	if c := strings.TrimSpace(opts.Category); c != "" {
		args = append(args, c)
		where = append(where, fmt.Sprintf("category = $%d", len(args)))
	}

	// ---------- sort ----------
	orderBy := "id DESC"
	switch opts.Sort {
	case SortPriceAsc:
		orderBy = "price ASC, id DESC"
	case SortPriceDesc:
		orderBy = "price DESC, id DESC"
	case SortRating:
		orderBy = "rating DESC, id DESC"
	}

	query := `
	SELECT ` + productColumns + `
	FROM products
	WHERE ` + strings.Join(where, " AND ") + `
	ORDER BY ` + orderBy

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("query failed", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var products []*Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			log.Error("row scan failed", zap.Error(err))
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		log.Error("rows iteration failed", zap.Error(err))
		return nil, err
	}

	log.Debug("query success",
		zap.Int("rows", len(products)),
		zap.Duration("duration", time.Since(start)),
	)
	return products, nil
}

func (r *PostgresRepository) DecrementStock(ctx context.Context, id int64, qty int) error {
	return r.DecrementStockTx(ctx, r.db, id, qty)
}

// DecrementStockTx takes qty units of product id using a compare-and-decrement
// so concurrent callers can never push stock below zero. Pass a *sql.Tx to make
// the decrement part of a larger unit of work.
func (r *PostgresRepository) DecrementStockTx(ctx context.Context, tx db.DBTX, id int64, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE products
		SET stock = stock - $1
		WHERE id = $2 AND stock >= $1
	`, qty, id)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: product %d", ErrInsufficientStock, id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(s scanner) (*Product, error) {
	var (
		p    Product
		desc sql.NullString
	)
	if err := s.Scan(
		&p.ID,
		&p.Name,
		&desc,
		&p.Price,
		&p.Category,
		&p.Rating,
		&p.Stock,
		&p.CreatedAt,
	); err != nil {
		return nil, err
	}
	p.Description = desc.String
	return &p, nil
}
