package router_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Heinvv10/gaztime-sub000/internal/http/handlers"
	"github.com/Heinvv10/gaztime-sub000/internal/http/router"
	"github.com/Heinvv10/gaztime-sub000/internal/logx"
)

func newTestRouter() http.Handler {
	return router.New(router.Deps{
		Base:      handlers.New(),
		Orders:    &handlers.OrderHandler{},
		Offers:    &handlers.OfferHandler{},
		Drivers:   &handlers.DriverHandler{},
		Wallets:   &handlers.WalletHandler{},
		Cylinders: &handlers.CylinderHandler{},
		Logger:    logx.Nop(),
	})
}

func TestNew_Ping(t *testing.T) {
	t.Parallel()

	h := newTestRouter()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestNew_HealthcheckHead(t *testing.T) {
	t.Parallel()

	h := newTestRouter()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodHead, "/healthcheck", nil))

	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestNew_NotFound(t *testing.T) {
	t.Parallel()

	h := newTestRouter()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNew_MetricsMounted(t *testing.T) {
	t.Parallel()

	h := newTestRouter()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
}
