package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/apmconsole/internal/fakebackend"
	"github.com/imamik/apmconsole/internal/order"
)

func endpointsFor(base, apiKey string) Endpoints {
	return Endpoints{
		LoginURL:       base + fakebackend.LoginPath,
		LogoutURL:      base + fakebackend.LogoutPath,
		OrderSearchURL: base + fakebackend.OrderSearchPath,
		ProductsURL:    base + fakebackend.ProductsPath,
		APIKey:         apiKey,
	}
}

func newFakeBackend(t *testing.T) (*fakebackend.Server, *Client) {
	t.Helper()

	clock := func() time.Time { return time.Date(2022, 10, 3, 12, 0, 0, 0, time.UTC) }
	fake := fakebackend.New(fakebackend.DefaultSeed(), fakebackend.WithClock(clock))
	srv := httptest.NewServer(fake.Handler())
	t.Cleanup(srv.Close)

	return fake, NewClient(endpointsFor(srv.URL, "bench-key"), WithRetry(0, time.Millisecond))
}

func login(t *testing.T, c *Client) string {
	t.Helper()
	token, err := c.Login(context.Background(), "operator", "operator")
	require.NoError(t, err)
	return token
}

func TestClient_Login(t *testing.T) {
	t.Parallel()

	t.Run("returns a bearer token", func(t *testing.T) {
		t.Parallel()
		_, c := newFakeBackend(t)

		token := login(t, c)
		info, err := InspectToken(token)
		require.NoError(t, err)
		assert.Equal(t, "operator", info.Subject)
		assert.Equal(t, time.Date(2022, 10, 3, 20, 0, 0, 0, time.UTC), info.ExpiresAt.UTC())
	})

	t.Run("maps rejections to auth kinds", func(t *testing.T) {
		t.Parallel()
		_, c := newFakeBackend(t)

		_, err := c.Login(context.Background(), "operator", "wrong")
		var authErr *AuthError
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, InvalidCredentials, authErr.Kind)

		_, err = c.Login(context.Background(), "ghost", "x")
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, UserNotFound, authErr.Kind)
		assert.Contains(t, err.Error(), "user ghost not found")
	})

	t.Run("wrong API key", func(t *testing.T) {
		t.Parallel()
		fake := fakebackend.New(fakebackend.DefaultSeed())
		srv := httptest.NewServer(fake.Handler())
		defer srv.Close()

		c := NewClient(endpointsFor(srv.URL, "stolen-key"))
		_, err := c.Login(context.Background(), "operator", "operator")

		var authErr *AuthError
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, InvalidAPIKey, authErr.Kind)
		assert.True(t, IsAuth(err))
	})
}

func TestClient_SearchOrders(t *testing.T) {
	t.Parallel()
	_, c := newFakeBackend(t)
	token := login(t, c)

	orders, err := c.SearchOrders(context.Background(), token, "123")
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Equal(t, order.Order{ID: "101", Number: 123, CreatedAt: "2021-03-04T09:00:00"}, orders[0])

	id, err := order.Pick(orders, "123", "2022")
	require.NoError(t, err)
	assert.Equal(t, order.ID("102"), id)
}

func TestClient_SearchOrders_RequiresToken(t *testing.T) {
	t.Parallel()
	_, c := newFakeBackend(t)

	_, err := c.SearchOrders(context.Background(), "bogus", "123")
	assert.True(t, IsAPIErrorKind(err, Unauthorized))
}

func TestClient_CreateProduct(t *testing.T) {
	t.Parallel()

	t.Run("issues sequential numbers", func(t *testing.T) {
		t.Parallel()
		fake, c := newFakeBackend(t)
		token := login(t, c)

		fn, err := c.CreateProduct(context.Background(), token, "102", "APM.406233.002")
		require.NoError(t, err)
		assert.Equal(t, "2210000001", fn)

		fn, err = c.CreateProduct(context.Background(), token, "102", "APM.406233.002")
		require.NoError(t, err)
		assert.Equal(t, "2210000002", fn)

		products := fake.Products()
		require.Len(t, products, 2)
		assert.Equal(t, int64(102), products[0].OrderID)
		assert.Equal(t, DefaultProductStatus, products[0].Status)
		assert.Equal(t, "operator", products[0].CreatedBy)
	})

	t.Run("unknown order", func(t *testing.T) {
		t.Parallel()
		_, c := newFakeBackend(t)
		token := login(t, c)

		_, err := c.CreateProduct(context.Background(), token, "999", "APM.1")
		assert.True(t, IsAPIErrorKind(err, NotFound))
		assert.Contains(t, err.Error(), "order with id 999 not found")
	})

	t.Run("decimal number outside order", func(t *testing.T) {
		t.Parallel()
		_, c := newFakeBackend(t)
		token := login(t, c)

		_, err := c.CreateProduct(context.Background(), token, "104", "APM.999")
		assert.True(t, IsAPIErrorKind(err, Conflict))
	})

	t.Run("validation error names the field", func(t *testing.T) {
		t.Parallel()
		_, c := newFakeBackend(t)
		token := login(t, c)

		_, err := c.CreateProduct(context.Background(), token, "102", "")
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, ValidationError, apiErr.Kind)
		assert.Equal(t, "decimal_number", apiErr.Field)
		assert.Equal(t, "decimal_number: field required", err.Error())
	})
}

func TestClient_Logout(t *testing.T) {
	t.Parallel()
	_, c := newFakeBackend(t)
	token := login(t, c)

	require.NoError(t, c.Logout(context.Background(), token))

	_, err := c.SearchOrders(context.Background(), token, "123")
	assert.True(t, IsAPIErrorKind(err, Unauthorized))
}

func TestClient_Headers(t *testing.T) {
	t.Parallel()

	var seen http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Clone()
		_ = json.NewEncoder(w).Encode(map[string]any{"search_result": []any{}})
	}))
	defer srv.Close()

	c := NewClient(endpointsFor(srv.URL, "k"))
	_, err := c.SearchOrders(context.Background(), "tok", "1")
	require.NoError(t, err)

	assert.Equal(t, "k", seen.Get("X-API-KEY"))
	assert.Equal(t, "Bearer tok", seen.Get("Authorization"))
	assert.Len(t, seen.Get("X-Request-ID"), 36)
}

func TestClient_ConnectivityRetriesIdempotentCalls(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	var observed atomic.Int32
	c := NewClient(endpointsFor(url, "k"),
		WithRetry(2, time.Millisecond),
		WithObserver(func(string, error, time.Duration) { observed.Add(1) }))

	_, err := c.SearchOrders(context.Background(), "tok", "1")
	assert.True(t, IsConnectivity(err))
	assert.Equal(t, int32(3), observed.Load())

	observed.Store(0)
	_, err = c.CreateProduct(context.Background(), "tok", "1", "dn")
	assert.True(t, IsConnectivity(err))
	assert.Equal(t, int32(1), observed.Load(), "creation must not be retried")
}

func TestClient_Timeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	c := NewClient(endpointsFor(srv.URL, "k"), WithTimeout(50*time.Millisecond), WithRetry(0, time.Millisecond))
	_, err := c.CreateProduct(context.Background(), "tok", "1", "dn")
	assert.True(t, IsConnectivity(err))
}

func TestWithTimeout_LeavesSharedClientAlone(t *testing.T) {
	t.Parallel()
	shared := &http.Client{Timeout: time.Minute}

	before := NewClient(Endpoints{}, WithTimeout(2*time.Second), WithHTTPClient(shared))
	after := NewClient(Endpoints{}, WithHTTPClient(shared), WithTimeout(2*time.Second))
	untouched := NewClient(Endpoints{}, WithHTTPClient(shared))

	assert.Equal(t, time.Minute, shared.Timeout)
	assert.Equal(t, 2*time.Second, before.httpClient.Timeout)
	assert.Equal(t, 2*time.Second, after.httpClient.Timeout)
	assert.NotSame(t, shared, before.httpClient)
	assert.Same(t, shared, untouched.httpClient)
}

func TestRawString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "2210000001", rawString(json.RawMessage(`2210000001`)))
	assert.Equal(t, "2210000001", rawString(json.RawMessage(`"2210000001"`)))
	assert.Equal(t, "", rawString(json.RawMessage(`null`)))
	assert.Equal(t, "", rawString(nil))
}

func TestJSONID(t *testing.T) {
	t.Parallel()
	assert.Equal(t, json.Number("42"), jsonID("42"))
	assert.Equal(t, "a-42", jsonID("a-42"))
}

func TestInspectToken(t *testing.T) {
	t.Parallel()
	exp := time.Date(2024, 3, 1, 17, 0, 0, 0, time.UTC)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "operator",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("any-secret"))
	require.NoError(t, err)

	info, err := InspectToken(token)
	require.NoError(t, err)
	assert.Equal(t, "operator", info.Subject)
	assert.True(t, exp.Equal(info.ExpiresAt))
}

func TestInspectToken_Invalid(t *testing.T) {
	t.Parallel()
	_, err := InspectToken("not-a-jwt")
	assert.Error(t, err)
}

func TestTokenInfo_Expired(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.False(t, TokenInfo{}.Expired(now))
	assert.True(t, TokenInfo{ExpiresAt: now.Add(-time.Minute)}.Expired(now))
	assert.False(t, TokenInfo{ExpiresAt: now.Add(time.Minute)}.Expired(now))
}
