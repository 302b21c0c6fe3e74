package main

import (
	"net/http"

	"bakehouse/internal/params"
	"bakehouse/internal/store"
)

type contextKey string

const userCtx contextKey = "user"

func getUserFromContext(r *http.Request) *store.User {
	user, _ := r.Context().Value(userCtx).(*store.User)
	return user
}

// profileHandler godoc
//
//	@Summary		Current shopper profile
//	@Tags			users
//	@Produce		json
//	@Success		200	{object}	store.User
//	@Security		ApiKeyAuth
//	@Router			/profile [get]
func (app *application) profileHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	if err := app.jsonResponse(w, http.StatusOK, user); err != nil {
		app.internalServerError(w, r, err)
	}
}

// listUsersHandler godoc
//
//	@Summary		List registered users
//	@Tags			admin
//	@Produce		json
//	@Param			limit	query		int	false	"Page size"
//	@Param			page	query		int	false	"Page number"
//	@Success		200		{object}	map[string]any
//	@Security		ApiKeyAuth
//	@Router			/admin/users [get]
func (app *application) listUsersHandler(w http.ResponseWriter, r *http.Request) {
	p := params.ParsePagination(r.URL.Query())

	users, total, err := app.store.Users.List(r.Context(), p.Limit, p.Offset)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	p.ComputeMeta(total)

	if users == nil {
		users = []store.User{}
	}
	resp := map[string]any{
		"users":      users,
		"pagination": p,
	}
	if err := app.jsonResponse(w, http.StatusOK, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}
