// Package fakebackend serves an in-memory stand-in for the product database
// API so the console can be exercised on a bench without the real backend.
package fakebackend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gopkg.in/yaml.v3"

	"github.com/imamik/apmconsole/internal/config"
)

// Route paths served by the fake backend. They match the defaults the
// console derives from backend.base_url.
const (
	LoginPath       = config.DefaultLoginPath
	LogoutPath      = config.DefaultLogoutPath
	OrderSearchPath = config.DefaultOrderSearchPath
	ProductsPath    = config.DefaultProductsPath
)

// Seed is the data the fake backend starts with.
type Seed struct {
	APIKey string  `yaml:"api_key"`
	Users  []User  `yaml:"users"`
	Orders []Order `yaml:"orders"`
}

// User is an operator account.
type User struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// Order is a seeded order. An empty DecimalNumbers list accepts any product.
type Order struct {
	ID             int64    `yaml:"id"`
	Number         int64    `yaml:"number"`
	CreatedAt      string   `yaml:"created_at"`
	DecimalNumbers []string `yaml:"decimal_numbers"`
}

// Product is a product created through the API.
type Product struct {
	OrderID       int64
	DecimalNumber string
	Status        string
	FactoryNumber string
	CreatedBy     string
}

// DefaultSeed returns a small data set: one operator and orders sharing a
// number across years, plus one whose number contains another.
func DefaultSeed() Seed {
	return Seed{
		APIKey: "bench-key",
		Users:  []User{{Username: "operator", Password: "operator"}},
		Orders: []Order{
			{ID: 101, Number: 123, CreatedAt: "2021-03-04T09:00:00"},
			{ID: 102, Number: 123, CreatedAt: "2022-02-01T09:00:00"},
			{ID: 103, Number: 1234, CreatedAt: "2022-05-06T09:00:00"},
			{ID: 104, Number: 77, CreatedAt: "2024-01-10T09:00:00", DecimalNumbers: []string{"APM.406233.001"}},
		},
	}
}

// LoadSeed reads a seed from a YAML file.
func LoadSeed(path string) (Seed, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("failed to read seed file: %w", err)
	}

	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return Seed{}, fmt.Errorf("failed to unmarshal seed: %w", err)
	}
	return seed, nil
}

// Server is the fake backend.
type Server struct {
	seed   Seed
	secret []byte
	now    func() time.Time
	echo   *echo.Echo

	mu       sync.Mutex
	sessions map[string]string
	products []Product
	serials  map[string]uint32
}

// Option configures a Server.
type Option func(*Server)

// WithClock replaces the clock used for token expiry and number prefixes.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// New creates a fake backend over seed.
func New(seed Seed, opts ...Option) *Server {
	s := &Server{
		seed:     seed,
		secret:   []byte(uuid.NewString()),
		now:      time.Now,
		sessions: make(map[string]string),
		serials:  make(map[string]uint32),
	}
	for _, opt := range opts {
		opt(s)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(s.requireAPIKey)

	e.POST(LoginPath, s.handleLogin)
	e.POST(LogoutPath, s.handleLogout, s.requireToken)
	e.POST(OrderSearchPath, s.handleSearch, s.requireToken)
	e.POST(ProductsPath, s.handleCreateProduct, s.requireToken)

	s.echo = e
	return s
}

// Handler exposes the server for httptest.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves on addr until Shutdown.
func (s *Server) Start(addr string) error {
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Products returns the products created so far.
func (s *Server) Products() []Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.products)
}

type detail struct {
	Detail any `json:"detail"`
}

type validationItem struct {
	Loc []string `json:"loc"`
	Msg string   `json:"msg"`
	Typ string   `json:"type"`
}

const userKey = "username"

func (s *Server) requireAPIKey(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if c.Request().Header.Get("X-API-KEY") != s.seed.APIKey {
			return c.JSON(http.StatusForbidden, detail{Detail: "invalid API key"})
		}
		return next(c)
	}
}

func (s *Server) requireToken(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := strings.TrimPrefix(c.Request().Header.Get("Authorization"), "Bearer ")

		s.mu.Lock()
		user, ok := s.sessions[token]
		s.mu.Unlock()

		if !ok {
			return c.JSON(http.StatusUnauthorized, detail{Detail: "not authenticated"})
		}
		c.Set(userKey, user)
		return next(c)
	}
}

func (s *Server) handleLogin(c echo.Context) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, detail{Detail: err.Error()})
	}

	idx := slices.IndexFunc(s.seed.Users, func(u User) bool { return u.Username == req.Username })
	if idx < 0 {
		return c.JSON(http.StatusNotFound, detail{Detail: fmt.Sprintf("user %s does not exist", req.Username)})
	}
	if s.seed.Users[idx].Password != req.Password {
		return c.JSON(http.StatusUnauthorized, detail{Detail: "incorrect username or password"})
	}

	now := s.now()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   req.Username,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(8 * time.Hour)),
	}).SignedString(s.secret)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, detail{Detail: err.Error()})
	}

	s.mu.Lock()
	s.sessions[token] = req.Username
	s.mu.Unlock()

	return c.JSON(http.StatusOK, map[string]string{"token": token})
}

func (s *Server) handleLogout(c echo.Context) error {
	token := strings.TrimPrefix(c.Request().Header.Get("Authorization"), "Bearer ")

	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()

	return c.JSON(http.StatusOK, map[string]string{})
}

func (s *Server) handleSearch(c echo.Context) error {
	var req struct {
		Request string `json:"request"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, detail{Detail: err.Error()})
	}

	type result struct {
		ID        int64  `json:"id"`
		Number    int64  `json:"number"`
		CreatedAt string `json:"created_at"`
	}
	found := []result{}
	query := strings.TrimSpace(req.Request)
	for _, o := range s.seed.Orders {
		if query != "" && strings.Contains(strconv.FormatInt(o.Number, 10), query) {
			found = append(found, result{ID: o.ID, Number: o.Number, CreatedAt: o.CreatedAt})
		}
	}

	return c.JSON(http.StatusOK, map[string]any{"search_result": found})
}

func (s *Server) handleCreateProduct(c echo.Context) error {
	var req struct {
		OrderID       json.Number `json:"order_id"`
		DecimalNumber string      `json:"decimal_number"`
		Status        string      `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, detail{Detail: []validationItem{
			{Loc: []string{"body", "order_id"}, Msg: "value is not a valid integer", Typ: "type_error.integer"},
		}})
	}
	if strings.TrimSpace(req.DecimalNumber) == "" {
		return c.JSON(http.StatusUnprocessableEntity, detail{Detail: []validationItem{
			{Loc: []string{"body", "decimal_number"}, Msg: "field required", Typ: "value_error.missing"},
		}})
	}

	orderID, err := req.OrderID.Int64()
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, detail{Detail: []validationItem{
			{Loc: []string{"body", "order_id"}, Msg: "value is not a valid integer", Typ: "type_error.integer"},
		}})
	}

	idx := slices.IndexFunc(s.seed.Orders, func(o Order) bool { return o.ID == orderID })
	if idx < 0 {
		return c.JSON(http.StatusNotFound, detail{Detail: fmt.Sprintf("order with id %d not found", orderID)})
	}
	o := s.seed.Orders[idx]
	if len(o.DecimalNumbers) > 0 && !slices.Contains(o.DecimalNumbers, req.DecimalNumber) {
		return c.JSON(http.StatusConflict, detail{
			Detail: fmt.Sprintf("decimal number %s is not part of order %d", req.DecimalNumber, o.Number),
		})
	}

	user, _ := c.Get(userKey).(string)
	fn := s.issue(Product{OrderID: orderID, DecimalNumber: req.DecimalNumber, Status: req.Status, CreatedBy: user})

	number, _ := strconv.ParseInt(fn, 10, 64)
	return c.JSON(http.StatusCreated, map[string]int64{"factory_number": number})
}

// issue allocates the next factory number for the current month.
func (s *Server) issue(p Product) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	prefix := fmt.Sprintf("%02d%02d", now.Year()%100, int(now.Month()))
	s.serials[prefix]++

	p.FactoryNumber = fmt.Sprintf("%s%06d", prefix, s.serials[prefix])
	s.products = append(s.products, p)
	return p.FactoryNumber
}
