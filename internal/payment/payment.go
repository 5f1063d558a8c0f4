package payment

import (
	"context"

	"sokoni-be/internal/logger"
	"sokoni-be/internal/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const referenceLayout = "20060102150405"

type Gateway interface {
	Initiate(ctx context.Context, method Method, amount decimal.Decimal) (*Result, error)
}

// StubGateway simulates a payment provider. Mobile money is confirmed
// immediately; every other method waits for payment on delivery.
type StubGateway struct {
	refs *utils.ReferenceGenerator
}

func NewStubGateway(refs *utils.ReferenceGenerator) *StubGateway {
	return &StubGateway{refs: refs}
}

func (g *StubGateway) Initiate(ctx context.Context, method Method, amount decimal.Decimal) (*Result, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "gateway"),
		zap.String("method", "Initiate"),
		zap.String("payment_method", string(method)),
	)

	res := &Result{Method: method}
	if method == MethodMpesa {
		res.Reference = g.refs.Next("MPESA-", referenceLayout)
		res.Status = StatusPaid
	} else {
		res.Method = MethodCOD
		res.Reference = g.refs.Next("COD-", referenceLayout)
		res.Status = StatusPending
	}

	log.Info("payment initiated",
		zap.String("reference", res.Reference),
		zap.String("status", string(res.Status)),
		zap.String("amount", amount.StringFixed(2)),
	)
	return res, nil
}
