package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	gormlogger "gorm.io/gorm/logger"

	"github.com/marvelstore/backend/internal/domain/catalog"
	"github.com/marvelstore/backend/internal/domain/identity"
	"github.com/marvelstore/backend/internal/domain/shared"
	"github.com/marvelstore/backend/internal/infrastructure/config"
	"github.com/marvelstore/backend/internal/infrastructure/persistence"
	"github.com/marvelstore/backend/internal/interfaces/http/dto"
	"github.com/marvelstore/backend/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := middleware.SetupValidator(); err != nil {
		panic(err)
	}
}

// testStore is an in-memory SQLite database with the GORM repositories
type testStore struct {
	db       *persistence.Database
	products *persistence.GormProductRepository
	users    *persistence.GormUserRepository
	orders   *persistence.GormOrderRepository
}

func newTestStore(t *testing.T) *testStore {
	t.Helper()
	db, err := persistence.NewDatabaseWithCustomLogger(&config.DatabaseConfig{
		Driver:     config.DriverSQLite,
		SQLitePath: ":memory:",
	}, gormlogger.Default.LogMode(gormlogger.Silent))
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate())
	t.Cleanup(func() { _ = db.Close() })

	return &testStore{
		db:       db,
		products: persistence.NewGormProductRepository(db.DB),
		users:    persistence.NewGormUserRepository(db.DB),
		orders:   persistence.NewGormOrderRepository(db.DB),
	}
}

type productOpt func(*catalog.NewProductInput)

func withCategory(c catalog.Category) productOpt {
	return func(in *catalog.NewProductInput) { in.Category = c }
}

func withFeatured() productOpt {
	return func(in *catalog.NewProductInput) { in.Featured = true }
}

func withStock(n int) productOpt {
	return func(in *catalog.NewProductInput) { in.Stock = n }
}

func withImages(images ...catalog.ProductImage) productOpt {
	return func(in *catalog.NewProductInput) { in.Images = images }
}

// seedProduct stores a product. createdOffset keeps newest-first order stable.
func (s *testStore) seedProduct(t *testing.T, name string, price float64, createdOffset time.Duration, opts ...productOpt) *catalog.Product {
	t.Helper()
	in := catalog.NewProductInput{
		Name:        name,
		Description: "Official Marvel merchandise",
		Price:       decimal.NewFromFloat(price),
		Category:    catalog.CategoryShirts,
		Stock:       10,
		Sizes:       []catalog.Size{"M", "L"},
		Colors:      []catalog.Color{{Name: "Red", Hex: "#ff0000"}},
	}
	for _, opt := range opts {
		opt(&in)
	}
	p, err := catalog.NewProduct(in)
	require.NoError(t, err)
	p.CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(createdOffset)
	p.UpdatedAt = p.CreatedAt
	require.NoError(t, s.products.Save(t.Context(), p))
	return p
}

// seedUser stores a user without hashing a password
func (s *testStore) seedUser(t *testing.T, email string, role identity.Role) *identity.User {
	t.Helper()
	user := &identity.User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              "Peter Parker",
		Email:             email,
		PasswordHash:      "not-a-hash",
		Role:              role,
	}
	require.NoError(t, s.users.Save(t.Context(), user))
	return user
}

// asUser stands in for middleware.Protect
func asUser(user *identity.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.CurrentUserKey, user)
		c.Next()
	}
}

func perform(r http.Handler, method, target string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func performJSON(t *testing.T, r http.Handler, method, target string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	return perform(r, method, target, body, "application/json")
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	return decodeBody[dto.ErrorResponse](t, w)
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
