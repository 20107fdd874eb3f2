package api

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"feewatch/internal/model"
	"feewatch/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func seededStore() *store.Store {
	st := store.New()
	st.BaseFees.Merge([]model.BlockFeeRecord{
		{BlockNumber: 12, BaseFeeGwei: decimal.RequireFromString("12.5")},
		{BlockNumber: 10, BaseFeeGwei: decimal.NewFromInt(10)},
		{BlockNumber: 11, BaseFeeGwei: decimal.NewFromInt(11)},
	})
	st.Transfers.Merge([]model.TransferRecord{
		{BlockNumber: 20, Volume: decimal.NewFromInt(7), Transfers: 2},
	})
	return st
}

func do(t *testing.T, r http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestSeriesEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(seededStore(), zap.NewNop())

	tests := []struct {
		name      string
		target    string
		status    int
		feed      model.Feed
		wantCount int
		first     uint64
	}{
		{name: "full base fee series", target: "/api/v1/series/base-fee", status: http.StatusOK, feed: model.FeedBaseFee, wantCount: 3, first: 10},
		{name: "base fee since block", target: "/api/v1/series/base-fee?from=11", status: http.StatusOK, feed: model.FeedBaseFee, wantCount: 2, first: 11},
		{name: "empty miner fee series", target: "/api/v1/series/miner-fee", status: http.StatusOK, feed: model.FeedMinerFee, wantCount: 0},
		{name: "transfer volume", target: "/api/v1/series/transfer-volume", status: http.StatusOK, feed: model.FeedTransferVolume, wantCount: 1, first: 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, r, tt.target)
			require.Equal(t, tt.status, w.Code)
			assert.NotEmpty(t, w.Header().Get(CorrelationIDHeader))

			var body struct {
				Feed    model.Feed                  `json:"feed"`
				Count   int                         `json:"count"`
				Records []map[string]json.RawMessage `json:"records"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.feed, body.Feed)
			assert.Equal(t, tt.wantCount, body.Count)
			require.Len(t, body.Records, tt.wantCount)
			if tt.wantCount > 0 {
				var block uint64
				require.NoError(t, json.Unmarshal(body.Records[0]["blockNumber"], &block))
				assert.Equal(t, tt.first, block)
			}
		})
	}
}

func TestSeriesDecimalsAreStrings(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(seededStore(), zap.NewNop())

	w := do(t, r, "/api/v1/series/base-fee?from=12")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"feed":"base_fee","count":1,"records":[{"blockNumber":12,"baseFeeGwei":"12.5"}]}`, w.Body.String())
}

func TestInvalidFromIsRejected(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(seededStore(), zap.NewNop())

	for _, target := range []string{
		"/api/v1/series/base-fee?from=abc",
		"/api/v1/series/miner-fee?from=-1",
		"/api/v1/series/transfer-volume?from=",
	} {
		w := do(t, r, target)
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(store.New(), zap.NewNop())

	w := do(t, r, "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())

	do(t, r, "/api/v1/series/base-fee")
	w = do(t, r, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "feewatch_http_requests_total")
}

func TestCorrelationIDIsPropagated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(store.New(), zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(CorrelationIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get(CorrelationIDHeader))
}

func TestServerShutsDownOnCancel(t *testing.T) {
	gin.SetMode(gin.TestMode)

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	s := NewServer(addr, time.Second, seededStore(), zap.NewNop())
	assert.Equal(t, "http-api", s.String())

	ctx, cancel := context.WithCancel(context.Background())
	errC := make(chan error, 1)
	go func() { errC <- s.Serve(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-errC:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not shut down")
	}
}
