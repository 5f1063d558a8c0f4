package metrics

import (
	"database/sql"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, r *Registry) string {
	t.Helper()
	w := httptest.NewRecorder()
	r.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	return string(body)
}

func TestRegistry_Inc(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Inc(OrdersPlaced)
		}()
	}
	wg.Wait()
	r.Inc(CheckoutEmptyCart)

	assert.Equal(t, float64(100), r.Value(OrdersPlaced))
	assert.Equal(t, float64(1), r.Value(CheckoutEmptyCart))
	assert.Equal(t, float64(0), r.Value(CheckoutStockExhausted))
}

func TestRegistry_Handler(t *testing.T) {
	r := NewRegistry()
	r.Inc(CheckoutValidationFailed)

	body := scrape(t, r)

	assert.Contains(t, body, `sokoni_checkout_total{outcome="checkout_validation_failed"} 1`)
	assert.Contains(t, body, `sokoni_checkout_total{outcome="orders_placed"} 0`)
	assert.Contains(t, body, "go_goroutines")
}

func TestRegistry_OrderTimer(t *testing.T) {
	r := NewRegistry()

	timer := r.OrderTimer()
	time.Sleep(time.Millisecond)
	assert.GreaterOrEqual(t, timer.ObserveDuration(), time.Millisecond)

	assert.Contains(t, scrape(t, r), "sokoni_order_placement_duration_seconds_count 1")
}

func TestRegistry_MustRegister(t *testing.T) {
	conn, _, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	r := NewRegistry()
	r.MustRegister(collectors.NewDBStatsCollector(conn, "shop"))

	assert.Contains(t, scrape(t, r), `go_sql_max_open_connections{db_name="shop"}`)
}

func TestRegistry_Nil(t *testing.T) {
	var r *Registry
	var conn *sql.DB

	assert.NotPanics(t, func() {
		r.Inc(OrdersPlaced)
		r.OrderTimer().ObserveDuration()
		r.MustRegister(collectors.NewDBStatsCollector(conn, "x"))
	})
	assert.Equal(t, float64(0), r.Value(OrdersPlaced))

	w := httptest.NewRecorder()
	r.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
