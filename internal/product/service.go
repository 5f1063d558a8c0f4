package product

import (
	"context"
	"sort"
	"time"

	"sokoni-be/internal/logger"

	"go.uber.org/zap"
)

const relatedLimit = 4

type Service interface {
	List(ctx context.Context, opts ListOptions) (*ListResult, error)
	Detail(ctx context.Context, id int64) (*DetailResult, error)
}

type ListResult struct {
	Items      []*Product `json:"items"`
	Categories []string   `json:"categories"`
	Query      string     `json:"q"`
	Category   string     `json:"cat"`
	Sort       SortOption `json:"sort"`
}

type DetailResult struct {
	Product *Product   `json:"product"`
	Related []*Product `json:"related"`
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context, opts ListOptions) (*ListResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "ListProducts"),
	)
	start := time.Now()

	if opts.Sort == "" {
		opts.Sort = SortNewest
	}

	items, err := s.repo.List(ctx, opts)
	if err != nil {
		log.Error("failed to fetch product list", zap.Error(err))
		return nil, err
	}

	// Categories come from the unfiltered catalog so the filter menu stays stable.
	all, err := s.repo.List(ctx, ListOptions{Sort: SortNewest})
	if err != nil {
		log.Error("failed to fetch categories", zap.Error(err))
		return nil, err
	}

	log.Info("get product list success",
		zap.Int("count", len(items)),
		zap.String("sort", string(opts.Sort)),
		zap.Duration("duration", time.Since(start)),
	)

	return &ListResult{
		Items:      items,
		Categories: categoriesOf(all),
		Query:      opts.Search,
		Category:   opts.Category,
		Sort:       opts.Sort,
	}, nil
}

func (s *service) Detail(ctx context.Context, id int64) (*DetailResult, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProductNotFound
	}

	siblings, err := s.repo.List(ctx, ListOptions{Category: p.Category, Sort: SortNewest})
	if err != nil {
		return nil, err
	}

	related := make([]*Product, 0, relatedLimit)
	for _, sib := range siblings {
		if sib.ID == p.ID {
			continue
		}
		related = append(related, sib)
		if len(related) == relatedLimit {
			break
		}
	}

	return &DetailResult{Product: p, Related: related}, nil
}

func categoriesOf(products []*Product) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, p := range products {
		if _, ok := seen[p.Category]; ok || p.Category == "" {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	sort.Strings(out)
	return out
}
