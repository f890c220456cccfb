package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/storefront/internal/auth"
	"github.com/prn-tf/storefront/internal/config"
	"github.com/prn-tf/storefront/internal/domain"
	"github.com/prn-tf/storefront/internal/metrics"
	"github.com/prn-tf/storefront/internal/pkg/crypto"
	"github.com/prn-tf/storefront/internal/repository/sqlite"
	"github.com/prn-tf/storefront/internal/service"
)

const (
	testSecret   = "0123456789abcdef0123456789abcdef"
	testPassword = "correct-horse"
)

type testServer struct {
	handler http.Handler
	users   *service.UserService
	metrics *metrics.Metrics
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()
	logger := zerolog.Nop()

	db, err := sqlite.NewDB(ctx, sqlite.DefaultConfig(sqlite.MemoryPath), logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate(ctx))
	repos := sqlite.NewRepositories(db)

	tokens, err := auth.NewTokenService(auth.TokenConfig{Secret: testSecret})
	require.NoError(t, err)

	m := metrics.New()
	hasher := crypto.NewPasswordHasher(4)
	paginator := service.NewPaginator(config.PaginationConfig{DefaultLimit: 10, MaxLimit: 100})

	users := service.NewUserService(repos.User, hasher, paginator, logger)
	authService := service.NewAuthService(repos.User, users, hasher, tokens, service.AuthConfig{AccessTokenTTL: 30 * time.Minute}, m, logger)
	categories := service.NewCategoryService(repos.Category, paginator, logger)
	products := service.NewProductService(repos.Product, repos.Category, paginator, logger)
	carts := service.NewCartService(repos.Cart, repos.Product, paginator, logger, service.WithMetrics(m))
	images := service.NewImageService(repos.Product, nil, service.ImageConfig{}, logger)

	router := NewRouter(RouterConfig{
		AuthHandler:     NewAuthHandler(authService, logger),
		AccountHandler:  NewAccountHandler(users, logger),
		UserHandler:     NewUserHandler(users, logger),
		CategoryHandler: NewCategoryHandler(categories, logger),
		ProductHandler:  NewProductHandler(products, images, logger),
		CartHandler:     NewCartHandler(carts, logger),
		HealthHandler:   NewHealthHandler(db, logger),
		Resolver:        auth.NewResolver(tokens, repos.User, logger),
		Metrics:         m,
		MetricsPath:     "/metrics",
		Logger:          logger,
	})

	return &testServer{handler: router.Handler(), users: users, metrics: m}
}

type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Code    string          `json:"code"`
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = strings.NewReader(string(raw))
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func (s *testServer) login(t *testing.T, username, password string) string {
	t.Helper()
	form := url.Values{"username": {username}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp service.TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "Bearer", resp.TokenType)
	require.Equal(t, 30, resp.ExpiresIn)
	return resp.AccessToken
}

func (s *testServer) signup(t *testing.T, username string) string {
	t.Helper()
	rec, _ := s.do(t, http.MethodPost, "/auth/signup", "", map[string]string{
		"full_name": "Test " + username,
		"username":  username,
		"email":     username + "@example.com",
		"password":  testPassword,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return s.login(t, username, testPassword)
}

func (s *testServer) admin(t *testing.T) string {
	t.Helper()
	_, err := s.users.Create(context.Background(), service.CreateUserInput{
		Username: "root",
		Email:    "root@example.com",
		Password: testPassword,
		Role:     domain.RoleAdmin,
	})
	require.NoError(t, err)
	return s.login(t, "root", testPassword)
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

// seedCatalog creates a category and two products: 100 at 10% off and 50 at full price.
func (s *testServer) seedCatalog(t *testing.T, adminToken string) (discounted, fullPrice int64) {
	t.Helper()

	rec, env := s.do(t, http.MethodPost, "/categories", adminToken, map[string]string{"name": "Phones"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	category := decodeData[domain.Category](t, env)

	create := func(title string, price, discount float64) int64 {
		rec, env := s.do(t, http.MethodPost, "/products", adminToken, map[string]any{
			"title":               title,
			"price":               price,
			"discount_percentage": discount,
			"stock":               10,
			"category_id":         category.ID,
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		return decodeData[domain.Product](t, env).ID
	}

	return create("Phone", 100, 10), create("Case", 50, 0)
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)
	token := s.signup(t, "alice")

	rec, env := s.do(t, http.MethodPost, "/auth/signup", "", map[string]string{
		"username": "alice", "email": "other@example.com", "password": testPassword,
	})
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, CodeAlreadyExists, env.Code)

	rec, env = s.do(t, http.MethodPost, "/auth/token", "", map[string]string{"username": "alice", "password": "wrong-password"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Incorrect username or password", env.Message)

	rec, env = s.do(t, http.MethodPost, "/auth/token", "", map[string]string{"username": "nobody", "password": "wrong-password"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Incorrect username or password", env.Message)

	rec, _ = s.do(t, http.MethodGet, "/account/me", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))

	rec, _ = s.do(t, http.MethodGet, "/account/me", "not-a-token", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, env = s.do(t, http.MethodGet, "/account/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decodeData[domain.User](t, env)
	require.Equal(t, "alice", me.Username)
	require.Equal(t, domain.RoleUser, me.Role)
	require.NotContains(t, string(env.Data), "password")
}

func TestAccount_UpdateIgnoresServerManagedFields(t *testing.T) {
	s := newTestServer(t)
	token := s.signup(t, "alice")

	rec, env := s.do(t, http.MethodPut, "/account/me", token, map[string]any{
		"full_name": "Alice Liddell",
		"role":      "admin",
		"is_active": false,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	me := decodeData[domain.User](t, env)
	require.Equal(t, "Alice Liddell", me.FullName)
	require.Equal(t, domain.RoleUser, me.Role)
	require.True(t, me.IsActive)

	rec, _ = s.do(t, http.MethodDelete, "/account/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = s.do(t, http.MethodGet, "/account/me", token, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminRoutes_RequireAdmin(t *testing.T) {
	s := newTestServer(t)
	userToken := s.signup(t, "alice")
	adminToken := s.admin(t)

	rec, env := s.do(t, http.MethodPost, "/categories", userToken, map[string]string{"name": "Phones"})
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, string(auth.CodeForbidden), env.Code)

	rec, _ = s.do(t, http.MethodGet, "/users", userToken, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec, env = s.do(t, http.MethodGet, "/users?page=1&limit=5&role=user", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "page 1 with 5 users", env.Message)
	require.Equal(t, "1", rec.Header().Get(TotalCountHeader))

	rec, env = s.do(t, http.MethodPost, "/categories", adminToken, map[string]string{"name": "Phones"})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "Category with id 1 was created successfully", env.Message)

	rec, _ = s.do(t, http.MethodPost, "/categories", adminToken, map[string]string{"name": "Phones"})
	require.Equal(t, http.StatusConflict, rec.Code)

	rec, env = s.do(t, http.MethodGet, "/categories/1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Details for Category with id 1", env.Message)
}

func TestProducts(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.admin(t)
	discounted, _ := s.seedCatalog(t, adminToken)

	rec, env := s.do(t, http.MethodGet, "/products?search=pho", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "page 1 with 10 products", env.Message)
	require.Equal(t, "1", rec.Header().Get(TotalCountHeader))

	rec, env = s.do(t, http.MethodPost, "/products", adminToken, map[string]any{"title": "Ghost", "price": 1, "category_id": 42})
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "Category with id 42 was not found", env.Message)

	rec, env = s.do(t, http.MethodPut, fmt.Sprintf("/products/%d", discounted), adminToken, map[string]any{"discount_percentage": 150})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, CodeValidation, env.Code)

	rec, env = s.do(t, http.MethodPost, fmt.Sprintf("/products/%d/images/upload-url", discounted), adminToken, map[string]string{
		"filename": "front.png", "content_type": "image/png",
	})
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Equal(t, CodeUnavailable, env.Code)

	rec, _ = s.do(t, http.MethodGet, "/products/abc", "", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCartLifecycle(t *testing.T) {
	s := newTestServer(t)
	discounted, fullPrice := s.seedCatalog(t, s.admin(t))
	alice := s.signup(t, "alice")
	bob := s.signup(t, "bob")

	rec, env := s.do(t, http.MethodPost, "/cart", alice, map[string]any{
		"cart_items": []map[string]int64{
			{"product_id": discounted, "quantity": 2},
			{"product_id": fullPrice, "quantity": 1},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	cart := decodeData[domain.Cart](t, env)
	require.Equal(t, fmt.Sprintf("Cart with id %d was created successfully", cart.ID), env.Message)
	require.Equal(t, 230.0, cart.TotalAmount)
	require.Len(t, cart.Items, 2)
	require.Equal(t, 180.0, cart.Items[0].Subtotal)
	require.NotNil(t, cart.Items[0].Product)

	cartPath := fmt.Sprintf("/cart/%d", cart.ID)

	// Other users cannot see or touch the cart
	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		rec, env = s.do(t, method, cartPath, bob, nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
		require.Equal(t, fmt.Sprintf("Cart with id %d was not found", cart.ID), env.Message)
	}
	rec, _ = s.do(t, http.MethodPut, cartPath, bob, map[string]any{"cart_items": []any{}})
	require.Equal(t, http.StatusNotFound, rec.Code)

	// Unknown product aborts without writing
	rec, env = s.do(t, http.MethodPut, cartPath, alice, map[string]any{
		"cart_items": []map[string]int64{{"product_id": 999, "quantity": 1}},
	})
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "Product with id 999 was not found", env.Message)

	rec, env = s.do(t, http.MethodGet, cartPath, alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decodeData[domain.Cart](t, env).Items, 2)

	// Replacing the items recomputes the total
	rec, env = s.do(t, http.MethodPut, cartPath, alice, map[string]any{
		"cart_items": []map[string]int64{{"product_id": fullPrice, "quantity": 3}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeData[domain.Cart](t, env)
	require.Len(t, updated.Items, 1)
	require.Equal(t, 150.0, updated.TotalAmount)

	rec, env = s.do(t, http.MethodPost, "/cart", alice, map[string]any{
		"cart_items": []map[string]int64{{"product_id": fullPrice, "quantity": 0}},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, CodeValidation, env.Code)

	rec, env = s.do(t, http.MethodGet, "/cart/?page=0&limit=500", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Retrieved 1 carts for page 1 with limit 100.", env.Message)

	rec, env = s.do(t, http.MethodDelete, cartPath, alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 150.0, decodeData[domain.Cart](t, env).TotalAmount)

	rec, _ = s.do(t, http.MethodGet, cartPath, alice, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	rec, _ := s.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"status":"healthy"`)

	rec, _ = s.do(t, http.MethodGet, "/ready", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = s.do(t, http.MethodGet, "/cart/7", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = s.do(t, http.MethodGet, "/nope", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = s.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, `storefront_http_requests_total{method="GET",route="/health",status="200"} 1`)
	require.Contains(t, body, `storefront_auth_failures_total{reason="unauthorized"} 1`)
	require.NotContains(t, body, `route="/cart/7"`)
}
