package main

import (
	"errors"
	"net/http"

	"bakehouse/internal/assist"
)

type ChatPayload struct {
	Message string `json:"message" validate:"required,max=500"`
}

// chatHandler godoc
//
//	@Summary		Keyword product chat
//	@Description	Turns a free-text request into catalog filters and matching products
//	@Tags			chat
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		ChatPayload	true	"Shopper message"
//	@Success		200		{object}	assist.Result
//	@Failure		400		{object}	error
//	@Router			/chat [post]
func (app *application) chatHandler(w http.ResponseWriter, r *http.Request) {
	app.respondWith(w, r, app.chat)
}

// assistantHandler godoc
//
//	@Summary		Generative product assistant
//	@Description	Same contract as /chat but extraction and the explanation come from the language model, with a silent keyword fallback
//	@Tags			chat
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		ChatPayload	true	"Shopper message"
//	@Success		200		{object}	assist.Result
//	@Failure		400		{object}	error
//	@Router			/assistant [post]
func (app *application) assistantHandler(w http.ResponseWriter, r *http.Request) {
	app.respondWith(w, r, app.assistant)
}

func (app *application) respondWith(w http.ResponseWriter, r *http.Request, svc responder) {
	var payload ChatPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	result, err := svc.Respond(r.Context(), payload.Message)
	if err != nil {
		switch {
		case errors.Is(err, assist.ErrEmptyQuery):
			app.badRequestResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, result); err != nil {
		app.internalServerError(w, r, err)
	}
}
