package main

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"bakehouse/internal/mailer"
	"bakehouse/internal/params"
	"bakehouse/internal/store"

	"github.com/go-chi/chi/v5"
)

type CreateOrderPayload struct {
	ProductID     int64   `json:"product_id" validate:"required,gt=0"`
	Quantity      int     `json:"quantity" validate:"required,gt=0,lte=50"`
	Customization *string `json:"customization" validate:"omitempty,max=500"`
	Address       string  `json:"address" validate:"required,max=300"`
	CouponCode    string  `json:"coupon_code" validate:"omitempty,max=30"`
}

// createOrderHandler godoc
//
//	@Summary		Place an order
//	@Description	Prices the order server-side, applies an optional coupon and emails a confirmation
//	@Tags			orders
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		CreateOrderPayload	true	"Order fields"
//	@Success		201		{object}	store.Order
//	@Failure		400		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/orders [post]
func (app *application) createOrderHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	var payload CreateOrderPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	product, err := app.store.Products.GetByID(r.Context(), payload.ProductID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.badRequestResponse(w, r, errors.New("product does not exist"))
		default:
			app.internalServerError(w, r, err)
		}
		return
	}
	if !product.IsActive {
		app.badRequestResponse(w, r, errors.New("product is not available"))
		return
	}

	total := product.Price * float64(payload.Quantity)

	var couponID *int64
	if payload.CouponCode != "" {
		coupon, discount, err := app.store.Coupons.Redeem(r.Context(), payload.CouponCode, total)
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
		total -= discount
		couponID = &coupon.ID
	}

	order := &store.Order{
		UserID:        user.ID,
		ProductID:     product.ID,
		Quantity:      payload.Quantity,
		Customization: payload.Customization,
		Address:       payload.Address,
		Price:         total,
		CouponID:      couponID,
	}

	if err := app.store.Orders.Create(r.Context(), order); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.background(func() {
		data := map[string]any{
			"Username":      user.FirstName,
			"ReferenceCode": order.ReferenceCode,
			"ProductName":   product.Name,
			"Quantity":      order.Quantity,
			"Total":         order.Price,
		}
		if _, err := app.mailer.Send(mailer.OrderConfirmationTemplate, user.FirstName, user.Email, data); err != nil {
			app.logger.Errorw("order confirmation email failed", "order", order.ReferenceCode, "error", err)
		}
	})

	if err := app.jsonResponse(w, http.StatusCreated, order); err != nil {
		app.internalServerError(w, r, err)
	}
}

// listMyOrdersHandler godoc
//
//	@Summary		List the shopper's orders
//	@Tags			orders
//	@Produce		json
//	@Param			limit	query		int	false	"Page size"
//	@Param			page	query		int	false	"Page number"
//	@Success		200		{object}	map[string]any
//	@Security		ApiKeyAuth
//	@Router			/orders [get]
func (app *application) listMyOrdersHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	p := params.ParsePagination(r.URL.Query())

	orders, total, err := app.store.Orders.ListByUser(r.Context(), user.ID, p.Limit, p.Offset)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	p.ComputeMeta(total)

	if orders == nil {
		orders = []store.Order{}
	}
	resp := map[string]any{
		"orders":     orders,
		"pagination": p,
	}
	if err := app.jsonResponse(w, http.StatusOK, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}

type RateOrderPayload struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"omitempty,max=1000"`
}

// rateOrderHandler godoc
//
//	@Summary		Rate a delivered order
//	@Tags			orders
//	@Accept			json
//	@Param			orderID	path		int					true	"Order ID"
//	@Param			payload	body		RateOrderPayload	true	"Rating"
//	@Success		200		{object}	map[string]string
//	@Failure		400		{object}	error
//	@Failure		409		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/orders/{orderID}/rating [post]
func (app *application) rateOrderHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	orderID, err := strconv.ParseInt(chi.URLParam(r, "orderID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var payload RateOrderPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.store.Orders.Rate(r.Context(), orderID, user.ID, payload.Rating, payload.Comment)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		case errors.Is(err, store.ErrOrderNotDelivered), errors.Is(err, store.ErrInvalidRating):
			app.badRequestResponse(w, r, err)
		case errors.Is(err, store.ErrAlreadyRated):
			app.conflictResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, map[string]string{"message": "thank you for your feedback"}); err != nil {
		app.internalServerError(w, r, err)
	}
}

// listOrdersHandler godoc
//
//	@Summary		List all orders
//	@Tags			admin
//	@Produce		json
//	@Param			status	query		string	false	"Filter by status"
//	@Param			limit	query		int		false	"Page size"
//	@Param			page	query		int		false	"Page number"
//	@Success		200		{object}	map[string]any
//	@Security		ApiKeyAuth
//	@Router			/admin/orders [get]
func (app *application) listOrdersHandler(w http.ResponseWriter, r *http.Request) {
	p := params.ParsePagination(r.URL.Query())

	status := r.URL.Query().Get("status")
	if status != "" && !validOrderStatus(status) {
		app.badRequestResponse(w, r, fmt.Errorf("unknown order status %q", status))
		return
	}

	orders, total, err := app.store.Orders.List(r.Context(), status, p.Limit, p.Offset)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	p.ComputeMeta(total)

	if orders == nil {
		orders = []store.Order{}
	}
	resp := map[string]any{
		"orders":     orders,
		"pagination": p,
	}
	if err := app.jsonResponse(w, http.StatusOK, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}

type UpdateOrderStatusPayload struct {
	Status string `json:"status" validate:"required"`
}

// updateOrderStatusHandler godoc
//
//	@Summary		Advance an order through its lifecycle
//	@Tags			admin
//	@Accept			json
//	@Param			orderID	path		int							true	"Order ID"
//	@Param			payload	body		UpdateOrderStatusPayload	true	"New status"
//	@Success		200		{object}	map[string]string
//	@Failure		400		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/admin/orders/{orderID}/status [patch]
func (app *application) updateOrderStatusHandler(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "orderID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var payload UpdateOrderStatusPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if !validOrderStatus(payload.Status) {
		app.badRequestResponse(w, r, fmt.Errorf("unknown order status %q", payload.Status))
		return
	}

	if err := app.store.Orders.UpdateStatus(r.Context(), orderID, payload.Status); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		case errors.Is(err, store.ErrInvalidStatus):
			app.badRequestResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, map[string]string{"status": payload.Status}); err != nil {
		app.internalServerError(w, r, err)
	}
}

func validOrderStatus(status string) bool {
	switch status {
	case store.OrderStatusPlaced, store.OrderStatusConfirmed, store.OrderStatusBaking,
		store.OrderStatusDelivered, store.OrderStatusCancelled:
		return true
	}
	return false
}
