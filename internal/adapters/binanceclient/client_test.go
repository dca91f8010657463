package binanceclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"tradingengine/internal/ports"

	"github.com/adshao/go-binance/v2/common"
	"github.com/adshao/go-binance/v2/futures"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockLogger struct {
	errorMsgs []string
}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
	m.errorMsgs = append(m.errorMsgs, msg)
}

func TestTranslateBinanceKline(t *testing.T) {
	bk := &futures.Kline{
		OpenTime:  1704067200000,
		CloseTime: 1704070799999,
		Open:      "42000.5",
		High:      "42100",
		Low:       "41950.25",
		Close:     "42050",
		Volume:    "123.456",
	}
	k, err := translateBinanceKline(bk, "BTCUSDT", "1h")
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), k.OpenTime)
	assert.Equal(t, "BTCUSDT", k.Symbol)
	assert.Equal(t, "1h", k.Interval)
	assert.Equal(t, 42000.5, k.Open)
	assert.Equal(t, 41950.25, k.Low)
	assert.Equal(t, 123.456, k.Volume)

	_, err = translateBinanceKline(nil, "BTCUSDT", "1h")
	assert.Error(t, err)

	bk.Close = "not-a-number"
	_, err = translateBinanceKline(bk, "BTCUSDT", "1h")
	assert.Error(t, err)
}

func TestHandleError(t *testing.T) {
	logger := &mockLogger{}
	c, err := New(Config{Logger: logger})
	require.NoError(t, err)

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"rate limited", &common.APIError{Code: -1003, Message: "Too many requests"}, ports.ErrRateLimited},
		{"bad signature", &common.APIError{Code: -1022, Message: "Signature invalid"}, ports.ErrAuthenticationFailed},
		{"bad parameter", &common.APIError{Code: -1121, Message: "Invalid symbol"}, ports.ErrInvalidRequest},
		{"unmapped code", &common.APIError{Code: -9999, Message: "?"}, ports.ErrUnknown},
		{"deadline", fmt.Errorf("get: %w", context.DeadlineExceeded), ports.ErrTimeout},
		{"canceled", context.Canceled, ports.ErrContextCanceled},
		{"refused", errors.New("dial tcp: connection refused"), ports.ErrConnectionFailed},
		{"other", errors.New("boom"), ports.ErrUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.handleError(context.Background(), tt.err, "Op")
			assert.True(t, errors.Is(got, tt.want), "expected %v in %v", tt.want, got)
			assert.True(t, errors.Is(got, tt.err))
		})
	}
	assert.Len(t, logger.errorMsgs, len(tests))
	assert.NoError(t, c.handleError(context.Background(), nil, "Op"))
}

// klineServer serves total hourly klines starting at base, paging like the
// futures klines endpoint.
func klineServer(t *testing.T, base time.Time, total int, calls *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		if r.URL.Path == "/fapi/v1/ping" {
			fmt.Fprint(w, "{}")
			return
		}
		if r.URL.Path != "/fapi/v1/klines" {
			http.NotFound(w, r)
			return
		}
		if r.URL.Query().Get("symbol") == "BAD" {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"code":-1121,"msg":"Invalid symbol."}`)
			return
		}

		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		startMs, _ := strconv.ParseInt(r.URL.Query().Get("startTime"), 10, 64)

		fmt.Fprint(w, "[")
		written := 0
		for i := 0; i < total && written < limit; i++ {
			open := base.Add(time.Duration(i) * time.Hour).UnixMilli()
			if open < startMs {
				continue
			}
			if written > 0 {
				fmt.Fprint(w, ",")
			}
			closeMs := open + time.Hour.Milliseconds() - 1
			fmt.Fprintf(w, `[%d,"%d","%d","%d","%d","10",%d,"0",1,"0","0","0"]`, open, 100+i, 101+i, 99+i, 100+i, closeMs)
			written++
		}
		fmt.Fprint(w, "]")
	}))
}

func TestClient_GetKlines(t *testing.T) {
	var calls int32
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	srv := klineServer(t, base, 3, &calls)
	defer srv.Close()

	c, err := New(Config{Logger: &mockLogger{}, BaseURL: srv.URL, RequestsPerSecond: 1000})
	require.NoError(t, err)

	require.NoError(t, c.Ping(context.Background()))

	klines, err := c.GetKlines(context.Background(), "BTCUSDT", "1h", 10)
	require.NoError(t, err)
	require.Len(t, klines, 3)
	assert.Equal(t, base, klines[0].OpenTime)
	assert.Equal(t, 102.0, klines[2].Close)

	_, err = c.GetKlines(context.Background(), "BAD", "1h", 10)
	assert.ErrorIs(t, err, ports.ErrInvalidRequest)

	_, err = c.GetKlines(context.Background(), "BTCUSDT", "1h", 0)
	assert.ErrorIs(t, err, ports.ErrInvalidRequest)
}

func TestClient_GetKlinesRange(t *testing.T) {
	var calls int32
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	total := maxKlinesPerRequest + 20
	srv := klineServer(t, base, total, &calls)
	defer srv.Close()

	c, err := New(Config{Logger: &mockLogger{}, BaseURL: srv.URL, RequestsPerSecond: 1000})
	require.NoError(t, err)

	end := base.Add(time.Duration(total) * time.Hour)
	klines, err := c.GetKlinesRange(context.Background(), "BTCUSDT", "1h", base, end)
	require.NoError(t, err)
	require.Len(t, klines, total)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls), "two pages")
	for i := 1; i < len(klines); i++ {
		assert.Equal(t, time.Hour, klines[i].OpenTime.Sub(klines[i-1].OpenTime))
	}

	_, err = c.GetKlinesRange(context.Background(), "BTCUSDT", "1h", end, base)
	assert.ErrorIs(t, err, ports.ErrInvalidRequest)
}

func TestNew_RequiresLogger(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}
