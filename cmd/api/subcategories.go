package main

import (
	"errors"
	"net/http"
	"strconv"

	"bakehouse/internal/store"

	"github.com/go-chi/chi/v5"
)

// listSubcategoriesHandler godoc
//
//	@Summary		List subcategories
//	@Tags			subcategories
//	@Produce		json
//	@Success		200	{array}	store.Subcategory
//	@Router			/subcategories [get]
func (app *application) listSubcategoriesHandler(w http.ResponseWriter, r *http.Request) {
	subcategories, err := app.store.Subcategories.List(r.Context())
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if subcategories == nil {
		subcategories = []store.Subcategory{}
	}
	if err := app.jsonResponse(w, http.StatusOK, subcategories); err != nil {
		app.internalServerError(w, r, err)
	}
}

type CreateSubcategoryPayload struct {
	Name     string  `json:"name" validate:"required,max=80"`
	Category string  `json:"category" validate:"required,oneof=cake pastry"`
	ImageURL *string `json:"image_url" validate:"omitempty,url"`
}

// createSubcategoryHandler godoc
//
//	@Summary		Create a subcategory
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		CreateSubcategoryPayload	true	"Subcategory fields"
//	@Success		201		{object}	store.Subcategory
//	@Failure		409		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/admin/subcategories [post]
func (app *application) createSubcategoryHandler(w http.ResponseWriter, r *http.Request) {
	var payload CreateSubcategoryPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	subcategory := &store.Subcategory{
		Name:     payload.Name,
		Category: payload.Category,
		ImageURL: payload.ImageURL,
	}

	if err := app.store.Subcategories.Create(r.Context(), subcategory); err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicateSubcategory):
			app.conflictResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, subcategory); err != nil {
		app.internalServerError(w, r, err)
	}
}

type UpdateSubcategoryPayload struct {
	Name     string  `json:"name" validate:"omitempty,max=80"`
	Category string  `json:"category" validate:"omitempty,oneof=cake pastry"`
	ImageURL *string `json:"image_url" validate:"omitempty,url"`
}

func (app *application) updateSubcategoryHandler(w http.ResponseWriter, r *http.Request) {
	subcategoryID, err := strconv.ParseInt(chi.URLParam(r, "subcategoryID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var payload UpdateSubcategoryPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	subcategory := &store.Subcategory{
		ID:       subcategoryID,
		Name:     payload.Name,
		Category: payload.Category,
		ImageURL: payload.ImageURL,
	}

	if err := app.store.Subcategories.Update(r.Context(), subcategory); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, subcategory); err != nil {
		app.internalServerError(w, r, err)
	}
}

// deleteSubcategoryHandler refuses to delete a subcategory that still has
// products; the conflict maps to a 409.
func (app *application) deleteSubcategoryHandler(w http.ResponseWriter, r *http.Request) {
	subcategoryID, err := strconv.ParseInt(chi.URLParam(r, "subcategoryID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := app.store.Subcategories.Delete(r.Context(), subcategoryID); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		case errors.Is(err, store.ErrConflict):
			app.conflictResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
