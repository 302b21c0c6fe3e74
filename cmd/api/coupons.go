package main

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"bakehouse/internal/params"
	"bakehouse/internal/store"

	"github.com/go-chi/chi/v5"
)

type ValidateCouponPayload struct {
	Code        string  `json:"code" validate:"required,max=30"`
	OrderAmount float64 `json:"order_amount" validate:"required,gt=0"`
}

type couponQuote struct {
	Coupon   *store.Coupon `json:"coupon"`
	Discount float64       `json:"discount"`
	Payable  float64       `json:"payable"`
}

// validateCouponHandler godoc
//
//	@Summary		Quote a coupon against an order amount
//	@Tags			coupons
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		ValidateCouponPayload	true	"Coupon code and order amount"
//	@Success		200		{object}	couponQuote
//	@Failure		400		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/coupons/validate [post]
func (app *application) validateCouponHandler(w http.ResponseWriter, r *http.Request) {
	var payload ValidateCouponPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	coupon, discount, err := app.store.Coupons.Redeem(r.Context(), payload.Code, payload.OrderAmount)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound),
			errors.Is(err, store.ErrCouponInactive),
			errors.Is(err, store.ErrCouponExpired),
			errors.Is(err, store.ErrCouponMinOrder):
			app.badRequestResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	quote := couponQuote{
		Coupon:   coupon,
		Discount: discount,
		Payable:  payload.OrderAmount - discount,
	}
	if err := app.jsonResponse(w, http.StatusOK, quote); err != nil {
		app.internalServerError(w, r, err)
	}
}

type CreateCouponPayload struct {
	Code           string     `json:"code" validate:"required,max=30"`
	Type           string     `json:"type" validate:"required,oneof=percent flat"`
	Value          float64    `json:"value" validate:"required,gt=0"`
	MinOrderAmount float64    `json:"min_order_amount" validate:"gte=0"`
	ExpiresAt      *time.Time `json:"expires_at"`
}

// createCouponHandler godoc
//
//	@Summary		Create a coupon
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		CreateCouponPayload	true	"Coupon fields"
//	@Success		201		{object}	store.Coupon
//	@Failure		409		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/admin/coupons [post]
func (app *application) createCouponHandler(w http.ResponseWriter, r *http.Request) {
	var payload CreateCouponPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if payload.Type == store.CouponTypePercent && payload.Value > 100 {
		app.badRequestResponse(w, r, errors.New("percent value cannot exceed 100"))
		return
	}

	coupon := &store.Coupon{
		Code:           payload.Code,
		Type:           payload.Type,
		Value:          payload.Value,
		MinOrderAmount: payload.MinOrderAmount,
		ExpiresAt:      payload.ExpiresAt,
		IsActive:       true,
	}

	if err := app.store.Coupons.Create(r.Context(), coupon); err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicateCoupon):
			app.conflictResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, coupon); err != nil {
		app.internalServerError(w, r, err)
	}
}

// listCouponsHandler godoc
//
//	@Summary		List coupons
//	@Tags			admin
//	@Produce		json
//	@Success		200	{object}	map[string]any
//	@Security		ApiKeyAuth
//	@Router			/admin/coupons [get]
func (app *application) listCouponsHandler(w http.ResponseWriter, r *http.Request) {
	p := params.ParsePagination(r.URL.Query())

	coupons, total, err := app.store.Coupons.List(r.Context(), p.Limit, p.Offset)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	p.ComputeMeta(total)

	if coupons == nil {
		coupons = []store.Coupon{}
	}
	resp := map[string]any{
		"coupons":    coupons,
		"pagination": p,
	}
	if err := app.jsonResponse(w, http.StatusOK, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}

type UpdateCouponPayload struct {
	Value          float64    `json:"value" validate:"omitempty,gt=0"`
	MinOrderAmount float64    `json:"min_order_amount" validate:"gte=0"`
	ExpiresAt      *time.Time `json:"expires_at"`
	IsActive       bool       `json:"is_active"`
}

func (app *application) updateCouponHandler(w http.ResponseWriter, r *http.Request) {
	couponID, err := strconv.ParseInt(chi.URLParam(r, "couponID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var payload UpdateCouponPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	coupon := &store.Coupon{
		ID:             couponID,
		Value:          payload.Value,
		MinOrderAmount: payload.MinOrderAmount,
		ExpiresAt:      payload.ExpiresAt,
		IsActive:       payload.IsActive,
	}

	if err := app.store.Coupons.Update(r.Context(), coupon); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, coupon); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) deleteCouponHandler(w http.ResponseWriter, r *http.Request) {
	couponID, err := strconv.ParseInt(chi.URLParam(r, "couponID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := app.store.Coupons.Delete(r.Context(), couponID); err != nil {
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
