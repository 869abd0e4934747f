package fakebackend

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	t   *testing.T
	srv *Server
	url string
	key string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	seed := DefaultSeed()
	srv := New(seed, WithClock(func() time.Time {
		return time.Date(2022, time.October, 3, 8, 0, 0, 0, time.UTC)
	}))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return &harness{t: t, srv: srv, url: ts.URL, key: seed.APIKey}
}

func (h *harness) post(path, token string, body any) (int, map[string]any) {
	h.t.Helper()
	data, err := json.Marshal(body)
	require.NoError(h.t, err)

	req, err := http.NewRequest(http.MethodPost, h.url+path, bytes.NewReader(data))
	require.NoError(h.t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", h.key)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(h.t, err)
	defer func() { _ = resp.Body.Close() }()

	var out map[string]any
	require.NoError(h.t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func (h *harness) login() string {
	h.t.Helper()
	status, body := h.post(LoginPath, "", map[string]string{"username": "operator", "password": "operator"})
	require.Equal(h.t, http.StatusOK, status)
	token, _ := body["token"].(string)
	require.NotEmpty(h.t, token)
	return token
}

func TestLogin(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	h.login()

	status, _ := h.post(LoginPath, "", map[string]string{"username": "operator", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body := h.post(LoginPath, "", map[string]string{"username": "ghost", "password": "x"})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, body["detail"], "ghost")

	h.key = "wrong"
	status, _ = h.post(LoginPath, "", map[string]string{"username": "operator", "password": "operator"})
	assert.Equal(t, http.StatusForbidden, status)
}

func TestSearch(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	status, _ := h.post(OrderSearchPath, "", map[string]string{"request": "123"})
	assert.Equal(t, http.StatusUnauthorized, status)

	token := h.login()
	status, body := h.post(OrderSearchPath, token, map[string]string{"request": "123"})
	require.Equal(t, http.StatusOK, status)

	results, ok := body["search_result"].([]any)
	require.True(t, ok)
	assert.Len(t, results, 3)
}

func TestCreateProduct(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	token := h.login()

	status, body := h.post(ProductsPath, token, map[string]any{"order_id": 101, "decimal_number": "APM.1", "status": "ok"})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, float64(2210000001), body["factory_number"])

	status, body = h.post(ProductsPath, token, map[string]any{"order_id": 102, "decimal_number": "APM.1", "status": "ok"})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, float64(2210000002), body["factory_number"])

	products := h.srv.Products()
	require.Len(t, products, 2)
	assert.Equal(t, "operator", products[0].CreatedBy)
	assert.Equal(t, "2210000002", products[1].FactoryNumber)

	status, _ = h.post(ProductsPath, token, map[string]any{"order_id": 104, "decimal_number": "APM.1"})
	assert.Equal(t, http.StatusConflict, status)

	status, _ = h.post(ProductsPath, token, map[string]any{"order_id": 999, "decimal_number": "APM.1"})
	assert.Equal(t, http.StatusNotFound, status)

	status, body = h.post(ProductsPath, token, map[string]any{"order_id": 101, "decimal_number": " "})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.NotEmpty(t, body["detail"])
}

func TestLogout(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	token := h.login()

	status, _ := h.post(LogoutPath, token, map[string]string{})
	require.Equal(t, http.StatusOK, status)

	status, _ = h.post(OrderSearchPath, token, map[string]string{"request": "77"})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestLoadSeed(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "seed.yml")
	require.NoError(t, os.WriteFile(path, []byte(`api_key: k
users:
  - username: anna
    password: secret
orders:
  - id: 1
    number: 42
    created_at: "2023-01-02T00:00:00"
`), 0o600))

	seed, err := LoadSeed(path)
	require.NoError(t, err)
	assert.Equal(t, "k", seed.APIKey)
	require.Len(t, seed.Orders, 1)
	assert.Equal(t, int64(42), seed.Orders[0].Number)

	_, err = LoadSeed(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}
