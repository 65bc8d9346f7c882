package upbit

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// immediatePolicy keeps the default retry rules but never sleeps.
func immediatePolicy() RetryPolicy {
	p := DefaultRetryPolicy()
	p.Backoff = func(int) time.Duration { return 0 }
	return p
}

func newTestClient(url string) *Client {
	return NewClient(url+APIBasePath, WithRetryPolicy(immediatePolicy()))
}

func TestClientDo_GetSuccess(t *testing.T) {
	var gotPath, gotQuery, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAccept = r.Header.Get("Accept")
		w.Write([]byte(`[{"market":"KRW-BTC","trade_price":1}]`))
	}))
	defer srv.Close()

	raw, err := newTestClient(srv.URL).Do(context.Background(), Request{
		Method: http.MethodGet,
		Path:   "/ticker",
		Query:  Params{"markets": "KRW-BTC"},
		Shape:  Shape{Kind: ShapeArray, Required: []string{"market"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "/v1/ticker", gotPath)
	assert.Equal(t, "markets=KRW-BTC", gotQuery)
	assert.Equal(t, "application/json", gotAccept)
	assert.JSONEq(t, `[{"market":"KRW-BTC","trade_price":1}]`, string(raw))
}

func TestClientDo_QueryMatchesSignedEncoding(t *testing.T) {
	params := Params{"state": "wait", "market": "KRW-BTC", "page": 1, "order_by": "desc"}

	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Do(context.Background(), Request{Path: "/orders", Query: params})
	require.NoError(t, err)

	assert.Equal(t, params.Encode(), gotQuery)
}

func TestClientDo_PostBody(t *testing.T) {
	var gotBody map[string]any
	var gotContentType, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Empty(t, r.URL.RawQuery)
		gotContentType = r.Header.Get("Content-Type")
		gotAuth = r.Header.Get("Authorization")
		data, _ := io.ReadAll(r.Body)
		json.Unmarshal(data, &gotBody)
		w.Write([]byte(`{"uuid":"abc"}`))
	}))
	defer srv.Close()

	headers := http.Header{}
	headers.Set("Authorization", BearerHeader("token"))

	_, err := newTestClient(srv.URL).Do(context.Background(), Request{
		Method:  http.MethodPost,
		Path:    "/orders",
		Body:    Params{"market": "KRW-BTC", "side": "bid", "price": nil},
		Headers: headers,
		Shape:   Shape{Kind: ShapeObject, Required: []string{"uuid"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "application/json; charset=utf-8", gotContentType)
	assert.Equal(t, "Bearer token", gotAuth)
	assert.Equal(t, map[string]any{"market": "KRW-BTC", "side": "bid"}, gotBody)
}

func TestClientDo_RetriesServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	raw, err := newTestClient(srv.URL).Do(context.Background(), Request{Path: "/status"})
	require.NoError(t, err)

	assert.Equal(t, int32(2), calls.Load())
	assert.JSONEq(t, `{"ok":true}`, string(raw))
}

func TestClientDo_RetriesTooManyRequests(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Do(context.Background(), Request{Path: "/market/all"})
	require.NoError(t, err)

	assert.Equal(t, int32(3), calls.Load())
}

func TestClientDo_SignsEveryAttempt(t *testing.T) {
	var (
		mu    sync.Mutex
		auths []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		auths = append(auths, r.Header.Get("Authorization"))
		n := len(auths)
		mu.Unlock()
		if n == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	creds := testCreds
	query := Params{"state": "wait", "market": "KRW-BTC"}
	_, err := newTestClient(srv.URL).Do(context.Background(), Request{
		Path:        "/orders",
		Query:       query,
		Credentials: &creds,
	})
	require.NoError(t, err)
	require.Len(t, auths, 2)

	first := parseToken(t, strings.TrimPrefix(auths[0], "Bearer "))
	second := parseToken(t, strings.TrimPrefix(auths[1], "Bearer "))

	assert.NotEqual(t, first["nonce"], second["nonce"])
	assert.Equal(t, QueryHash(query), first["query_hash"])
	assert.Equal(t, first["query_hash"], second["query_hash"])
}

func TestClientDo_SignsPostBody(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"uuid":"abc"}`))
	}))
	defer srv.Close()

	creds := testCreds
	body := Params{"market": "KRW-BTC", "side": "bid"}
	_, err := newTestClient(srv.URL).Do(context.Background(), Request{
		Method:      http.MethodPost,
		Path:        "/orders",
		Body:        body,
		Credentials: &creds,
	})
	require.NoError(t, err)

	claims := parseToken(t, strings.TrimPrefix(gotAuth, "Bearer "))
	assert.Equal(t, QueryHash(body), claims["query_hash"])
	assert.Equal(t, "SHA512", claims["query_hash_alg"])
}

func TestClientDo_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"name":"invalid_query_payload","message":"Invalid query"}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Do(context.Background(), Request{Path: "/orders"})
	require.Error(t, err)

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, http.StatusBadRequest, te.Status)
	assert.Equal(t, "invalid_query_payload", te.Name)
	assert.Equal(t, "Invalid query", te.Message)
	assert.Contains(t, te.Error(), "400")
}

func TestClientDo_ExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Do(context.Background(), Request{Path: "/ticker"})
	require.Error(t, err)

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, http.StatusServiceUnavailable, te.Status)
	assert.Equal(t, int32(4), calls.Load())
}

func TestClientDo_ZeroRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := immediatePolicy()
	p.MaxRetries = 0
	c := NewClient(srv.URL, WithRetryPolicy(p))

	_, err := c.Do(context.Background(), Request{Path: "/ticker"})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClientDo_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := newTestClient(url).Do(context.Background(), Request{Path: "/ticker"})
	require.Error(t, err)

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, 0, te.Status)
	assert.Contains(t, te.Error(), "request failed")
}

func TestClientDo_CanceledContext(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(srv.URL).Do(ctx, Request{Path: "/ticker"})
	require.Error(t, err)

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, int32(0), calls.Load())
}

func TestClientDo_ShapeMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"market":"KRW-BTC"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Do(context.Background(), Request{
		Path:  "/ticker",
		Shape: Shape{Kind: ShapeArray},
	})
	require.Error(t, err)

	var se *SchemaError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "/ticker", se.Path)
	assert.Contains(t, se.Error(), "expected array")
}

func TestClientDo_EmptyBodyIsNull(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	raw, err := newTestClient(srv.URL).Do(context.Background(), Request{Path: "/status"})
	require.NoError(t, err)
	assert.Equal(t, "null", string(raw))
}

func TestNewClient_TrimsBaseURL(t *testing.T) {
	c := NewClient("https://api.upbit.com/v1/")
	assert.Equal(t, "https://api.upbit.com/v1", c.BaseURL())
}
