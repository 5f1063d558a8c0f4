package order

import (
	"context"
	"fmt"

	"sokoni-be/internal/logger"

	"go.uber.org/zap"
)

type Service interface {
	Get(ctx context.Context, number string) (*Order, error)
	ListForCustomer(ctx context.Context, customerRef string) ([]*Order, error)
	UpdateStatus(ctx context.Context, number string, to Status) (*Order, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Get(ctx context.Context, number string) (*Order, error) {
	return s.repo.GetByNumber(ctx, number)
}

func (s *service) ListForCustomer(ctx context.Context, customerRef string) ([]*Order, error) {
	return s.repo.ListByCustomer(ctx, customerRef)
}

func (s *service) UpdateStatus(ctx context.Context, number string, to Status) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "UpdateStatus"),
		zap.String("order_number", number),
		zap.String("to", string(to)),
	)

	if !to.Valid() {
		return nil, ErrInvalidStatus
	}

	o, err := s.repo.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}

	if !CanTransition(o.Status, to) {
		log.Warn("transition rejected", zap.String("from", string(o.Status)))
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, to)
	}

	if err := s.repo.UpdateStatus(ctx, number, o.Status, to); err != nil {
		log.Error("update status failed", zap.Error(err))
		return nil, err
	}

	log.Info("order status updated", zap.String("from", string(o.Status)))
	return s.repo.GetByNumber(ctx, number)
}
