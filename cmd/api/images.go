package main

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"bakehouse/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const (
	maxUploadSize    = 10 << 20 // 10mb across all files
	maxProductImages = 5
	uploadFolder     = "bakehouse/products"
)

// uploadProductImagesHandler godoc
//
//	@Summary		Upload product images
//	@Description	Accepts up to five JPEG/PNG/WebP files and replaces the product's image set
//	@Tags			admin
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			productID	path		int		true	"Product ID"
//	@Param			images		formData	file	true	"Image files"
//	@Success		200			{object}	map[string]any
//	@Failure		400			{object}	error
//	@Security		ApiKeyAuth
//	@Router			/admin/products/{productID}/images [post]
func (app *application) uploadProductImagesHandler(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if _, err := app.store.Products.GetByID(r.Context(), productID); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	files := r.MultipartForm.File["images"]
	if len(files) == 0 {
		app.badRequestResponse(w, r, errors.New("no image files provided"))
		return
	}
	if len(files) > maxProductImages {
		app.badRequestResponse(w, r, fmt.Errorf("at most %d images are allowed", maxProductImages))
		return
	}

	// The batch is all-or-nothing: any failure destroys what already reached
	// the CDN before the error response goes out.
	var (
		urls      []string
		publicIDs []string
	)
	for _, header := range files {
		file, err := header.Open()
		if err != nil {
			app.removeImages(publicIDs)
			app.internalServerError(w, r, err)
			return
		}

		// Sniff the real content type; the client's header is not trusted.
		buf := make([]byte, 512)
		n, err := file.Read(buf)
		if err != nil && n == 0 {
			file.Close()
			app.removeImages(publicIDs)
			app.badRequestResponse(w, r, fmt.Errorf("read %s: %w", header.Filename, err))
			return
		}
		if !allowedImageType(http.DetectContentType(buf[:n])) {
			file.Close()
			app.removeImages(publicIDs)
			app.badRequestResponse(w, r, fmt.Errorf("%s is not a supported image type", header.Filename))
			return
		}
		if _, err := file.Seek(0, 0); err != nil {
			file.Close()
			app.removeImages(publicIDs)
			app.internalServerError(w, r, err)
			return
		}

		name := fmt.Sprintf("product_%d_%s", productID, uuid.New().String())
		url, publicID, err := app.media.Upload(r.Context(), file, name)
		file.Close()
		if err != nil {
			app.removeImages(publicIDs)
			app.internalServerError(w, r, err)
			return
		}
		urls = append(urls, url)
		publicIDs = append(publicIDs, publicID)
	}

	if err := app.store.Products.SetImageURLs(r.Context(), productID, urls); err != nil {
		app.removeImages(publicIDs)
		app.internalServerError(w, r, err)
		return
	}

	resp := map[string]any{
		"product_id": productID,
		"image_urls": urls,
	}
	if err := app.jsonResponse(w, http.StatusOK, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}

func allowedImageType(contentType string) bool {
	switch contentType {
	case "image/jpeg", "image/png", "image/webp":
		return true
	}
	return false
}
