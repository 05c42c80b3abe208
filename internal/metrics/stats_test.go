package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/matryer/is"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"pingcrm-backend/internal/config"
)

var testCounter = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "pingcrm",
	Subsystem: "test",
	Name:      "hits_total",
	Help:      "Counter registered by the metrics tests",
})

func TestHandler(t *testing.T) {
	is := is.New(t)
	testCounter.Inc()

	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	is.Equal(w.Code, http.StatusOK)
	body, err := io.ReadAll(w.Body)
	is.NoErr(err)
	is.True(strings.Contains(string(body), "pingcrm_test_hits_total 1"))

	w = httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	is.Equal(w.Code, http.StatusNotFound)
}

func TestNewStatsServer(t *testing.T) {
	is := is.New(t)
	_, err := NewStatsServer(context.Background())
	is.Equal(err, config.ErrNilConfig)

	cfg := config.DefaultConfig()
	s, err := NewStatsServer(config.WithContext(context.Background(), cfg))
	is.NoErr(err)
	is.Equal(s.Addr(), "localhost:8081")
	is.NoErr(s.Close())
}
