package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"bakehouse/internal/assist"
	"bakehouse/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type productsStoreStub struct {
	product  *store.Product
	setErr   error
	setCalls int
	setURLs  []string
}

func (s *productsStoreStub) Create(context.Context, *store.Product) error { return nil }
func (s *productsStoreStub) GetByID(context.Context, int64) (*store.Product, error) {
	if s.product == nil {
		return nil, store.ErrNotFound
	}
	return s.product, nil
}
func (s *productsStoreStub) List(context.Context, int64, int, int) ([]store.Product, int, error) {
	return nil, 0, nil
}
func (s *productsStoreStub) Update(context.Context, *store.Product) error { return nil }
func (s *productsStoreStub) Delete(context.Context, int64) error          { return nil }
func (s *productsStoreStub) Query(context.Context, assist.Predicate) ([]assist.Product, error) {
	return nil, nil
}
func (s *productsStoreStub) SetImageURLs(_ context.Context, _ int64, urls []string) error {
	s.setCalls++
	s.setURLs = urls
	return s.setErr
}

// mediaStub succeeds for the first failAfter uploads and rejects the rest.
type mediaStub struct {
	mu        sync.Mutex
	uploads   int
	failAfter int
	destroyed []string
}

func (m *mediaStub) Upload(_ context.Context, _ io.Reader, name string) (string, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.uploads >= m.failAfter {
		return "", "", errors.New("upstream rejected the file")
	}
	m.uploads++
	publicID := "bakehouse/products/" + name
	return "https://cdn.example.com/" + name, publicID, nil
}

func (m *mediaStub) Destroy(_ context.Context, publicID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.destroyed = append(m.destroyed, publicID)
	return nil
}

func (m *mediaStub) destroyedIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.destroyed...)
}

var pngHeader = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}

func multipartImages(t *testing.T, payloads [][]byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for i, payload := range payloads {
		part, err := writer.CreateFormFile("images", fmt.Sprintf("photo_%d.png", i))
		require.NoError(t, err)
		_, err = part.Write(payload)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func uploadRequest(body *bytes.Buffer, contentType string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/v1/admin/products/7/images", body)
	req.Header.Set("Content-Type", contentType)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("productID", "7")
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestUploadProductImagesHandler(t *testing.T) {
	product := &store.Product{ID: 7, Name: "Black Forest", IsActive: true}

	t.Run("stores the uploaded urls", func(t *testing.T) {
		products := &productsStoreStub{product: product}
		media := &mediaStub{failAfter: 10}
		app := &application{
			logger: zap.NewNop().Sugar(),
			store:  store.Storage{Products: products},
			media:  media,
		}

		body, contentType := multipartImages(t, [][]byte{pngHeader, pngHeader})
		rr := httptest.NewRecorder()
		app.uploadProductImagesHandler(rr, uploadRequest(body, contentType))

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Len(t, products.setURLs, 2)
		assert.Empty(t, media.destroyedIDs())
	})

	t.Run("a mid-batch upload failure removes what already reached the CDN", func(t *testing.T) {
		products := &productsStoreStub{product: product}
		media := &mediaStub{failAfter: 1}
		app := &application{
			logger: zap.NewNop().Sugar(),
			store:  store.Storage{Products: products},
			media:  media,
		}

		body, contentType := multipartImages(t, [][]byte{pngHeader, pngHeader})
		rr := httptest.NewRecorder()
		app.uploadProductImagesHandler(rr, uploadRequest(body, contentType))

		require.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Equal(t, 0, products.setCalls)
		require.Eventually(t, func() bool {
			return len(media.destroyedIDs()) == 1
		}, time.Second, 10*time.Millisecond)
		assert.Contains(t, media.destroyedIDs()[0], "bakehouse/products/product_7_")
	})

	t.Run("a rejected file type removes the earlier uploads", func(t *testing.T) {
		products := &productsStoreStub{product: product}
		media := &mediaStub{failAfter: 10}
		app := &application{
			logger: zap.NewNop().Sugar(),
			store:  store.Storage{Products: products},
			media:  media,
		}

		body, contentType := multipartImages(t, [][]byte{pngHeader, []byte("plain text, not an image")})
		rr := httptest.NewRecorder()
		app.uploadProductImagesHandler(rr, uploadRequest(body, contentType))

		require.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, 0, products.setCalls)
		require.Eventually(t, func() bool {
			return len(media.destroyedIDs()) == 1
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("a failed database write removes the whole batch", func(t *testing.T) {
		products := &productsStoreStub{product: product, setErr: errors.New("connection reset")}
		media := &mediaStub{failAfter: 10}
		app := &application{
			logger: zap.NewNop().Sugar(),
			store:  store.Storage{Products: products},
			media:  media,
		}

		body, contentType := multipartImages(t, [][]byte{pngHeader, pngHeader})
		rr := httptest.NewRecorder()
		app.uploadProductImagesHandler(rr, uploadRequest(body, contentType))

		require.Equal(t, http.StatusInternalServerError, rr.Code)
		require.Eventually(t, func() bool {
			return len(media.destroyedIDs()) == 2
		}, time.Second, 10*time.Millisecond)
	})
}
