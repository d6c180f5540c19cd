package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	catalogapp "github.com/marvelstore/backend/internal/application/catalog"
	"github.com/marvelstore/backend/internal/domain/catalog"
	"github.com/marvelstore/backend/internal/infrastructure/storage"
)

// pngBytes is a PNG signature followed by padding, enough for sniffing
var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0x01}, 64)...)

type mockMediaStorage struct {
	mock.Mock
}

func (m *mockMediaStorage) Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	args := m.Called(ctx, key, contentType, body, size)
	return args.String(0), args.Error(1)
}

func (m *mockMediaStorage) Delete(ctx context.Context, publicID string) error {
	args := m.Called(ctx, publicID)
	return args.Error(0)
}

func newProductEngine(t *testing.T, store *testStore, media catalogapp.MediaStorage) *gin.Engine {
	t.Helper()
	service := catalogapp.NewProductService(store.products, media, nil, nil)
	h := NewProductHandler(service, 5)

	r := gin.New()
	products := r.Group("/api/products")
	products.GET("", h.List)
	products.GET("/featured", h.Featured)
	products.GET("/category/:category", h.ByCategory)
	products.GET("/:id", h.Get)
	products.POST("", h.Create)
	products.PUT("/:id", h.Update)
	products.DELETE("/:id", h.Delete)
	products.DELETE("/:id/images/:imageId", h.DeleteImage)
	return r
}

func newLocalMedia(t *testing.T) *storage.LocalMediaStorage {
	t.Helper()
	media, err := storage.NewLocalMediaStorage(t.TempDir(), storage.DefaultLocalURLPrefix, 5<<20)
	require.NoError(t, err)
	return media
}

type multipartFile struct {
	name        string
	contentType string
	data        []byte
}

// multipartBody encodes fields and files as a multipart form. An empty
// contentType on a file leaves the part as application/octet-stream.
func multipartBody(t *testing.T, fields map[string]string, files ...multipartFile) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		var part io.Writer
		var err error
		if f.contentType == "" {
			part, err = w.CreateFormFile(ImagesField, f.name)
		} else {
			header := make(textproto.MIMEHeader)
			header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, ImagesField, f.name))
			header.Set("Content-Type", f.contentType)
			part, err = w.CreatePart(header)
		}
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func productFields() map[string]string {
	return map[string]string{
		"name":        "Stark Industries Hoodie",
		"description": "Fleece hoodie with the Stark Industries logo",
		"price":       "59.99",
		"category":    "hoodies",
		"character":   "iron-man",
		"stock":       "25",
		"sizes":       `["M","L"]`,
		"colors":      `[{"name":"Red","hex":"#b11313"}]`,
	}
}

func dirEntries(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	return names
}

func TestProductHandler_List(t *testing.T) {
	store := newTestStore(t)
	for i, price := range []float64{10, 30, 20, 40, 15} {
		store.seedProduct(t, fmt.Sprintf("hoodie-%d", i), price, time.Duration(i)*time.Hour, withCategory(catalog.CategoryHoodies))
	}
	store.seedProduct(t, "tee", 5, 10*time.Hour)
	r := newProductEngine(t, store, newLocalMedia(t))

	t.Run("filters sorts and paginates", func(t *testing.T) {
		w := perform(r, http.MethodGet, "/api/products?category=hoodies&sort=price-low&page=1&limit=2", nil, "")
		require.Equal(t, http.StatusOK, w.Code)

		result := decodeBody[catalogapp.ListProductsResult](t, w)
		require.Len(t, result.Products, 2)
		assert.Equal(t, 10.0, result.Products[0].Price)
		assert.Equal(t, 15.0, result.Products[1].Price)
		assert.Equal(t, 1, result.Page)
		assert.Equal(t, 3, result.Pages)
		assert.Equal(t, int64(5), result.Total)
	})

	t.Run("empty featured means no filter", func(t *testing.T) {
		w := perform(r, http.MethodGet, "/api/products?featured=&minPrice=", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int64(6), decodeBody[catalogapp.ListProductsResult](t, w).Total)
	})

	t.Run("non-numeric page is rejected", func(t *testing.T) {
		w := perform(r, http.MethodGet, "/api/products?page=abc", nil, "")
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_QUERY", decodeError(t, w).Code)
	})

	t.Run("negative price is a validation error", func(t *testing.T) {
		w := perform(r, http.MethodGet, "/api/products?minPrice=-1", nil, "")
		require.Equal(t, http.StatusBadRequest, w.Code)
		body := decodeError(t, w)
		assert.Equal(t, "VALIDATION_ERROR", body.Code)
		require.Len(t, body.Details, 1)
		assert.Equal(t, "minPrice", body.Details[0].Field)
	})
}

func TestProductHandler_Get(t *testing.T) {
	store := newTestStore(t)
	p := store.seedProduct(t, "shield", 120, 0)
	r := newProductEngine(t, store, newLocalMedia(t))

	w := perform(r, http.MethodGet, "/api/products/"+p.ID.String(), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	got := decodeBody[catalogapp.ProductResponse](t, w)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, "shield", got.Name)

	w = perform(r, http.MethodGet, "/api/products/not-a-uuid", nil, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, "INVALID_ID", body.Code)
	assert.Equal(t, "Invalid product id", body.Message)

	w = perform(r, http.MethodGet, "/api/products/00000000-0000-0000-0000-000000000001", nil, "")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Product not found", decodeError(t, w).Message)
}

func TestProductHandler_FeaturedAndCategory(t *testing.T) {
	store := newTestStore(t)
	store.seedProduct(t, "mjolnir", 80, 0, withFeatured(), withCategory(catalog.CategoryCollectibles))
	store.seedProduct(t, "cap", 20, time.Hour, withCategory(catalog.CategoryCaps))
	r := newProductEngine(t, store, newLocalMedia(t))

	w := perform(r, http.MethodGet, "/api/products/featured", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	featured := decodeBody[[]catalogapp.ProductResponse](t, w)
	require.Len(t, featured, 1)
	assert.Equal(t, "mjolnir", featured[0].Name)

	w = perform(r, http.MethodGet, "/api/products/category/caps", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	caps := decodeBody[[]catalogapp.ProductResponse](t, w)
	require.Len(t, caps, 1)
	assert.Equal(t, "cap", caps[0].Name)

	w = perform(r, http.MethodGet, "/api/products/category/capes", nil, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_CATEGORY", decodeError(t, w).Code)
}

func TestProductHandler_Create(t *testing.T) {
	t.Run("uploads images and returns 201", func(t *testing.T) {
		store := newTestStore(t)
		media := newLocalMedia(t)
		r := newProductEngine(t, store, media)

		body, contentType := multipartBody(t, productFields(),
			multipartFile{name: "front.png", contentType: "image/png", data: pngBytes},
			multipartFile{name: "back.png", data: pngBytes},
		)
		w := perform(r, http.MethodPost, "/api/products", body, contentType)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		got := decodeBody[catalogapp.ProductResponse](t, w)
		assert.Equal(t, "Stark Industries Hoodie", got.Name)
		assert.Equal(t, 59.99, got.Price)
		assert.Equal(t, []string{"M", "L"}, got.Sizes)
		require.Len(t, got.Images, 2)
		for _, img := range got.Images {
			assert.Equal(t, storage.DefaultLocalURLPrefix+"/"+img.PublicID, img.URL)
			assert.FileExists(t, filepath.Join(media.Dir(), img.PublicID))
		}
	})

	t.Run("more than five images", func(t *testing.T) {
		store := newTestStore(t)
		media := newLocalMedia(t)
		r := newProductEngine(t, store, media)

		files := make([]multipartFile, 6)
		for i := range files {
			files[i] = multipartFile{name: fmt.Sprintf("%d.png", i), contentType: "image/png", data: pngBytes}
		}
		body, contentType := multipartBody(t, productFields(), files...)
		w := perform(r, http.MethodPost, "/api/products", body, contentType)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "TOO_MANY_IMAGES", decodeError(t, w).Code)
		assert.Empty(t, dirEntries(t, media.Dir()))
	})

	t.Run("rejected product evicts uploaded images", func(t *testing.T) {
		store := newTestStore(t)
		media := newLocalMedia(t)
		r := newProductEngine(t, store, media)

		fields := productFields()
		fields["category"] = "capes"
		body, contentType := multipartBody(t, fields,
			multipartFile{name: "front.png", contentType: "image/png", data: pngBytes})
		w := perform(r, http.MethodPost, "/api/products", body, contentType)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Empty(t, dirEntries(t, media.Dir()))
	})

	t.Run("non-image upload", func(t *testing.T) {
		store := newTestStore(t)
		r := newProductEngine(t, store, newLocalMedia(t))

		body, contentType := multipartBody(t, productFields(),
			multipartFile{name: "notes.txt", contentType: "text/plain", data: []byte("hello")})
		w := perform(r, http.MethodPost, "/api/products", body, contentType)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_IMAGE_TYPE", decodeError(t, w).Code)
	})

	t.Run("price must be a number", func(t *testing.T) {
		store := newTestStore(t)
		r := newProductEngine(t, store, newLocalMedia(t))

		fields := productFields()
		fields["price"] = "cheap"
		body, contentType := multipartBody(t, fields)
		w := perform(r, http.MethodPost, "/api/products", body, contentType)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_PRICE", decodeError(t, w).Code)
	})
}

func TestProductHandler_Update(t *testing.T) {
	store := newTestStore(t)
	media := newLocalMedia(t)
	p := store.seedProduct(t, "shield", 120, 0)
	r := newProductEngine(t, store, media)

	body, contentType := multipartBody(t, map[string]string{"price": "99.5", "stock": "0"},
		multipartFile{name: "side.png", contentType: "image/png", data: pngBytes})
	w := perform(r, http.MethodPut, "/api/products/"+p.ID.String(), body, contentType)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	got := decodeBody[catalogapp.ProductResponse](t, w)
	assert.Equal(t, "shield", got.Name)
	assert.Equal(t, 99.5, got.Price)
	assert.Equal(t, 0, got.Stock)
	assert.Len(t, got.Images, 1)
}

func TestProductHandler_Delete(t *testing.T) {
	t.Run("evicts images then deletes", func(t *testing.T) {
		store := newTestStore(t)
		media := newLocalMedia(t)
		require.NoError(t, os.WriteFile(filepath.Join(media.Dir(), "front.png"), pngBytes, 0o600))
		p := store.seedProduct(t, "shield", 120, 0,
			withImages(catalog.NewProductImage("/uploads/front.png", "front.png")))
		r := newProductEngine(t, store, media)

		w := perform(r, http.MethodDelete, "/api/products/"+p.ID.String(), nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"message":"Product deleted successfully"}`, w.Body.String())
		assert.NoFileExists(t, filepath.Join(media.Dir(), "front.png"))

		w = perform(r, http.MethodGet, "/api/products/"+p.ID.String(), nil, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("keeps product when eviction fails", func(t *testing.T) {
		store := newTestStore(t)
		media := new(mockMediaStorage)
		media.On("Delete", mock.Anything, "ok").Return(nil)
		media.On("Delete", mock.Anything, "stuck").Return(errors.New("media host unavailable"))
		p := store.seedProduct(t, "shield", 120, 0, withImages(
			catalog.NewProductImage("https://cdn.example.com/ok.png", "ok"),
			catalog.NewProductImage("https://cdn.example.com/stuck.png", "stuck"),
		))
		r := newProductEngine(t, store, media)

		w := perform(r, http.MethodDelete, "/api/products/"+p.ID.String(), nil, "")
		require.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "MEDIA_EVICTION_FAILED", decodeError(t, w).Code)
		media.AssertExpectations(t)

		kept, err := store.products.FindByID(t.Context(), p.ID)
		require.NoError(t, err)
		require.Len(t, kept.Images, 1)
		assert.Equal(t, "stuck", kept.Images[0].PublicID)
	})
}

func TestProductHandler_DeleteImage(t *testing.T) {
	store := newTestStore(t)
	media := new(mockMediaStorage)
	front := catalog.NewProductImage("https://cdn.example.com/front.png", "front")
	back := catalog.NewProductImage("https://cdn.example.com/back.png", "back")
	p := store.seedProduct(t, "shield", 120, 0, withImages(front, back))
	media.On("Delete", mock.Anything, "front").Return(nil).Once()
	r := newProductEngine(t, store, media)

	w := perform(r, http.MethodDelete, "/api/products/"+p.ID.String()+"/images/"+front.ID.String(), nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got := decodeBody[catalogapp.ProductResponse](t, w)
	require.Len(t, got.Images, 1)
	assert.Equal(t, back.ID, got.Images[0].ID)
	media.AssertExpectations(t)

	w = perform(r, http.MethodDelete, "/api/products/"+p.ID.String()+"/images/"+uuid.NewString(), nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, decodeBody[catalogapp.ProductResponse](t, w).Images, 1)

	w = perform(r, http.MethodDelete, "/api/products/"+p.ID.String()+"/images/bogus", nil, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid image id", decodeError(t, w).Message)
}
