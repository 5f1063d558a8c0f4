package payment

import (
	"context"
	"testing"
	"time"

	"sokoni-be/internal/utils"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedGateway() *StubGateway {
	now := time.Date(2025, 6, 1, 8, 30, 0, 0, time.UTC)
	return NewStubGateway(utils.NewReferenceGenerator(func() time.Time { return now }))
}

func TestParseMethod(t *testing.T) {
	assert.Equal(t, MethodMpesa, ParseMethod("mpesa"))
	assert.Equal(t, MethodMpesa, ParseMethod("mobile_money"))
	assert.Equal(t, MethodCOD, ParseMethod("cod"))
	assert.Equal(t, MethodCOD, ParseMethod("cash_on_delivery"))
	assert.Equal(t, MethodCOD, ParseMethod(""))
}

func TestStubGateway_Initiate(t *testing.T) {
	ctx := context.Background()
	amount := decimal.NewFromInt(28197)

	t.Run("Mpesa is paid immediately", func(t *testing.T) {
		res, err := fixedGateway().Initiate(ctx, MethodMpesa, amount)

		require.NoError(t, err)
		assert.Equal(t, "MPESA-20250601083000", res.Reference)
		assert.Equal(t, StatusPaid, res.Status)
		assert.Equal(t, MethodMpesa, res.Method)
	})

	t.Run("Cash on delivery stays pending", func(t *testing.T) {
		res, err := fixedGateway().Initiate(ctx, ParseMethod("cash_on_delivery"), amount)

		require.NoError(t, err)
		assert.Equal(t, "COD-20250601083000", res.Reference)
		assert.Equal(t, StatusPending, res.Status)
		assert.Equal(t, MethodCOD, res.Method)
	})

	t.Run("Same second references differ", func(t *testing.T) {
		g := fixedGateway()

		first, err := g.Initiate(ctx, MethodMpesa, amount)
		require.NoError(t, err)
		second, err := g.Initiate(ctx, MethodMpesa, amount)
		require.NoError(t, err)

		assert.NotEqual(t, first.Reference, second.Reference)
		assert.Equal(t, "MPESA-20250601083000-2", second.Reference)
	})
}
