package main

import (
	"errors"
	"net/http"
	"strconv"

	"bakehouse/internal/params"
	"bakehouse/internal/store"

	"github.com/go-chi/chi/v5"
)

// listBlogsHandler godoc
//
//	@Summary		List blog posts
//	@Tags			blogs
//	@Produce		json
//	@Param			limit	query		int	false	"Page size"
//	@Param			page	query		int	false	"Page number"
//	@Success		200		{object}	map[string]any
//	@Router			/blogs [get]
func (app *application) listBlogsHandler(w http.ResponseWriter, r *http.Request) {
	p := params.ParsePagination(r.URL.Query())

	blogs, total, err := app.store.Blogs.List(r.Context(), p.Limit, p.Offset)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	p.ComputeMeta(total)

	if blogs == nil {
		blogs = []store.Blog{}
	}
	resp := map[string]any{
		"blogs":      blogs,
		"pagination": p,
	}
	if err := app.jsonResponse(w, http.StatusOK, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}

// getBlogHandler godoc
//
//	@Summary		Blog post detail
//	@Tags			blogs
//	@Produce		json
//	@Param			blogID	path		int	true	"Blog ID"
//	@Success		200		{object}	store.Blog
//	@Failure		404		{object}	error
//	@Router			/blogs/{blogID} [get]
func (app *application) getBlogHandler(w http.ResponseWriter, r *http.Request) {
	blogID, err := strconv.ParseInt(chi.URLParam(r, "blogID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	blog, err := app.store.Blogs.GetByID(r.Context(), blogID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, blog); err != nil {
		app.internalServerError(w, r, err)
	}
}

type CreateBlogPayload struct {
	Title         string  `json:"title" validate:"required,max=200"`
	Content       string  `json:"content" validate:"required"`
	Author        string  `json:"author" validate:"required,max=100"`
	CoverImageURL *string `json:"cover_image_url" validate:"omitempty,url"`
}

func (app *application) createBlogHandler(w http.ResponseWriter, r *http.Request) {
	var payload CreateBlogPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	blog := &store.Blog{
		Title:         payload.Title,
		Content:       payload.Content,
		Author:        payload.Author,
		CoverImageURL: payload.CoverImageURL,
	}

	if err := app.store.Blogs.Create(r.Context(), blog); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, blog); err != nil {
		app.internalServerError(w, r, err)
	}
}

type UpdateBlogPayload struct {
	Title         string  `json:"title" validate:"omitempty,max=200"`
	Content       string  `json:"content"`
	Author        string  `json:"author" validate:"omitempty,max=100"`
	CoverImageURL *string `json:"cover_image_url" validate:"omitempty,url"`
}

func (app *application) updateBlogHandler(w http.ResponseWriter, r *http.Request) {
	blogID, err := strconv.ParseInt(chi.URLParam(r, "blogID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var payload UpdateBlogPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	blog := &store.Blog{
		ID:            blogID,
		Title:         payload.Title,
		Content:       payload.Content,
		Author:        payload.Author,
		CoverImageURL: payload.CoverImageURL,
	}

	if err := app.store.Blogs.Update(r.Context(), blog); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, blog); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) deleteBlogHandler(w http.ResponseWriter, r *http.Request) {
	blogID, err := strconv.ParseInt(chi.URLParam(r, "blogID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := app.store.Blogs.Delete(r.Context(), blogID); err != nil {
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
