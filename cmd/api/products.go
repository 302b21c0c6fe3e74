package main

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"bakehouse/internal/params"
	"bakehouse/internal/store"

	"github.com/go-chi/chi/v5"
)

// listProductsHandler godoc
//
//	@Summary		List products
//	@Tags			products
//	@Produce		json
//	@Param			subcategory_id	query		int	false	"Filter by subcategory"
//	@Param			limit			query		int	false	"Page size"
//	@Param			page			query		int	false	"Page number"
//	@Success		200				{object}	map[string]any
//	@Router			/products [get]
func (app *application) listProductsHandler(w http.ResponseWriter, r *http.Request) {
	p := params.ParsePagination(r.URL.Query())

	var subcategoryID int64
	if raw := r.URL.Query().Get("subcategory_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			app.badRequestResponse(w, r, errors.New("subcategory_id must be an integer"))
			return
		}
		subcategoryID = id
	}

	products, total, err := app.store.Products.List(r.Context(), subcategoryID, p.Limit, p.Offset)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	p.ComputeMeta(total)

	if products == nil {
		products = []store.Product{}
	}
	resp := map[string]any{
		"products":   products,
		"pagination": p,
	}
	if err := app.jsonResponse(w, http.StatusOK, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}

type productDetail struct {
	store.Product
	AverageRating float64 `json:"average_rating"`
	TotalRatings  int     `json:"total_ratings"`
}

// getProductHandler godoc
//
//	@Summary		Product detail with rating summary
//	@Tags			products
//	@Produce		json
//	@Param			productID	path		int	true	"Product ID"
//	@Success		200			{object}	productDetail
//	@Failure		404			{object}	error
//	@Router			/products/{productID} [get]
func (app *application) getProductHandler(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	product, err := app.store.Products.GetByID(r.Context(), productID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	ratings, err := app.store.Orders.RatingsForProduct(r.Context(), productID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	detail := productDetail{Product: *product}
	if len(ratings) > 0 {
		sum := 0
		for _, rating := range ratings {
			sum += rating
		}
		detail.TotalRatings = len(ratings)
		// Same one-decimal rounding the chat results carry.
		avg := float64(sum) / float64(len(ratings))
		detail.AverageRating = math.Round(avg*10) / 10
	}

	if err := app.jsonResponse(w, http.StatusOK, detail); err != nil {
		app.internalServerError(w, r, err)
	}
}

type CreateProductPayload struct {
	SubcategoryID int64   `json:"subcategory_id" validate:"required,gt=0"`
	Name          string  `json:"name" validate:"required,max=120"`
	Price         float64 `json:"price" validate:"required,gt=0"`
	Specification *string `json:"specification" validate:"omitempty,max=2000"`
	PromoTag      *string `json:"promo_tag" validate:"omitempty,max=60"`
}

// createProductHandler godoc
//
//	@Summary		Create a product
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		CreateProductPayload	true	"Product fields"
//	@Success		201		{object}	store.Product
//	@Failure		409		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/admin/products [post]
func (app *application) createProductHandler(w http.ResponseWriter, r *http.Request) {
	var payload CreateProductPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	product := &store.Product{
		SubcategoryID: payload.SubcategoryID,
		Name:          payload.Name,
		Price:         payload.Price,
		Specification: payload.Specification,
		PromoTag:      payload.PromoTag,
		ImageURLs:     []string{},
		IsActive:      true,
	}

	if err := app.store.Products.Create(r.Context(), product); err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicateProduct):
			app.conflictResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, product); err != nil {
		app.internalServerError(w, r, err)
	}
}

type UpdateProductPayload struct {
	SubcategoryID int64   `json:"subcategory_id" validate:"omitempty,gt=0"`
	Name          string  `json:"name" validate:"omitempty,max=120"`
	Price         float64 `json:"price" validate:"omitempty,gt=0"`
	Specification *string `json:"specification" validate:"omitempty,max=2000"`
	PromoTag      *string `json:"promo_tag" validate:"omitempty,max=60"`
	IsActive      *bool   `json:"is_active"`
}

// updateProductHandler applies a partial update; empty fields keep their
// current values.
func (app *application) updateProductHandler(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var payload UpdateProductPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	current, err := app.store.Products.GetByID(r.Context(), productID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	isActive := current.IsActive
	if payload.IsActive != nil {
		isActive = *payload.IsActive
	}

	product := &store.Product{
		ID:            productID,
		SubcategoryID: payload.SubcategoryID,
		Name:          payload.Name,
		Price:         payload.Price,
		Specification: payload.Specification,
		PromoTag:      payload.PromoTag,
		IsActive:      isActive,
	}

	if err := app.store.Products.Update(r.Context(), product); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, product); err != nil {
		app.internalServerError(w, r, err)
	}
}

// deleteProductHandler godoc
//
//	@Summary		Delete a product
//	@Tags			admin
//	@Param			productID	path	int	true	"Product ID"
//	@Success		204
//	@Failure		404	{object}	error
//	@Security		ApiKeyAuth
//	@Router			/admin/products/{productID} [delete]
func (app *application) deleteProductHandler(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := app.store.Products.Delete(r.Context(), productID); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
