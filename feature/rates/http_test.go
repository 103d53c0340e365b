package rates

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPGateway_FetchRate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rate", r.URL.Path)
		assert.Equal(t, "EUR", r.URL.Query().Get("from"))
		assert.Equal(t, "USD", r.URL.Query().Get("to"))
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))
		w.Write([]byte(`{"rate": "1.0842"}`))
	}))
	defer srv.Close()

	gw := NewHTTPGateway(Config{Endpoint: srv.URL, ApiKey: "secret"})

	rate, err := gw.FetchRate(context.Background(), "EUR", "USD")
	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.RequireFromString("1.0842")))
}

func TestHTTPGateway_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	gw := NewHTTPGateway(Config{Endpoint: srv.URL})

	_, err := gw.FetchRate(context.Background(), "EUR", "USD")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestHTTPGateway_NonPositiveRate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"rate": "0"}`))
	}))
	defer srv.Close()

	gw := NewHTTPGateway(Config{Endpoint: srv.URL})

	_, err := gw.FetchRate(context.Background(), "EUR", "USD")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestHTTPGateway_TestConnection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	gw := NewHTTPGateway(Config{Endpoint: srv.URL})
	assert.True(t, gw.TestConnection(context.Background()))

	srv.Close()
	assert.False(t, gw.TestConnection(context.Background()))
}
