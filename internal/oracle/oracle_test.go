package oracle

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestUSDPriceFetchesAndCaches(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "WNAT", r.URL.Query().Get("symbol"))
		fmt.Fprint(w, `{"symbol":"WNAT","price":"142.37"}`)
	}))
	defer srv.Close()

	c := New(srv.URL, zaptest.NewLogger(t), time.Minute)

	price, err := c.USDPrice(context.Background(), "WNAT")
	require.NoError(t, err)
	assert.Equal(t, "142.37", price.String())

	// Second read within the validity window never touches the server.
	price, err = c.USDPrice(context.Background(), "WNAT")
	require.NoError(t, err)
	assert.Equal(t, "142.37", price.String())
	assert.Equal(t, 1, calls)
}

func TestUSDPriceExpiredEntryRefetched(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		fmt.Fprintf(w, `{"symbol":"USDQ","price":"1.0%d"}`, calls)
	}))
	defer srv.Close()

	c := New(srv.URL, zaptest.NewLogger(t), time.Nanosecond)

	first, err := c.USDPrice(context.Background(), "USDQ")
	require.NoError(t, err)

	time.Sleep(time.Millisecond)
	second, err := c.USDPrice(context.Background(), "USDQ")
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.NotEqual(t, first.String(), second.String())
}

func TestUSDPriceErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error status",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, `{"symbol":`)
			},
		},
		{
			name: "unparsable price",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, `{"symbol":"X","price":"not-a-number"}`)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := New(srv.URL, zaptest.NewLogger(t), time.Minute)
			_, err := c.USDPrice(context.Background(), "X")
			require.Error(t, err)
		})
	}
}
