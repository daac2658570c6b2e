package handler

import (
	"net/http"

	"github.com/mmeshcher/simushop/internal/checkout"
	"github.com/mmeshcher/simushop/internal/model"
	"github.com/mmeshcher/simushop/internal/payment"
	"github.com/mmeshcher/simushop/internal/service"
)

type cartItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Name      string `json:"name"`
	Price     int64  `json:"price" validate:"gte=0"`
	Quantity  int    `json:"quantity" validate:"gte=0"`
}

type quantityRequest struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

// GetCart возвращает содержимое корзины и сумму к оплате.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.service.Cart())
}

// AddToCart добавляет товар в корзину.
func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req cartItemRequest
	if !h.decode(w, r, &req) {
		return
	}

	view := h.service.AddToCart(model.LineItem{
		ProductID: req.ProductID,
		Name:      req.Name,
		Price:     req.Price,
		Quantity:  req.Quantity,
	})
	h.writeJSON(w, http.StatusOK, view)
}

// UpdateCartItem задаёт количество товара. Нулевое количество удаляет позицию.
func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var req quantityRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.writeJSON(w, http.StatusOK, h.service.UpdateCartItem(urlParam(r, "productID"), req.Quantity))
}

// RemoveFromCart удаляет позицию из корзины.
func (h *Handler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.service.RemoveFromCart(urlParam(r, "productID")))
}

type addressRequest struct {
	Name      string `json:"name" validate:"required"`
	Street    string `json:"street" validate:"required"`
	City      string `json:"city" validate:"required"`
	Zip       string `json:"zip" validate:"required"`
	IsDefault bool   `json:"isDefault"`
}

func (a addressRequest) toModel(id string) model.Address {
	return model.Address{
		ID:        id,
		Name:      a.Name,
		Street:    a.Street,
		City:      a.City,
		Zip:       a.Zip,
		IsDefault: a.IsDefault,
	}
}

// GetAddresses возвращает адресную книгу.
func (h *Handler) GetAddresses(w http.ResponseWriter, r *http.Request) {
	addresses := h.service.Addresses()
	if addresses == nil {
		addresses = []model.Address{}
	}
	h.writeJSON(w, http.StatusOK, addresses)
}

// AddAddress добавляет адрес доставки.
func (h *Handler) AddAddress(w http.ResponseWriter, r *http.Request) {
	var req addressRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.writeJSON(w, http.StatusCreated, h.service.AddAddress(r.Context(), req.toModel("")))
}

// UpdateAddress изменяет адрес доставки.
func (h *Handler) UpdateAddress(w http.ResponseWriter, r *http.Request) {
	var req addressRequest
	if !h.decode(w, r, &req) {
		return
	}

	a := req.toModel(urlParam(r, "addressID"))
	if err := h.service.UpdateAddress(r.Context(), a); err != nil {
		h.writeError(w, "update address", err)
		return
	}
	h.writeJSON(w, http.StatusOK, a)
}

// DeleteAddress удаляет адрес доставки.
func (h *Handler) DeleteAddress(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteAddress(r.Context(), urlParam(r, "addressID")); err != nil {
		h.writeError(w, "delete address", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type checkoutRequest struct {
	AddressID  string `json:"addressId"`
	Method     string `json:"method" validate:"required,oneof=balance installment external"`
	Provider   string `json:"provider" validate:"required_if=Method external"`
	CardNumber string `json:"cardNumber"`
	PlanID     string `json:"planId" validate:"required_if=Method installment"`
	// Decline имитирует отказ покупателя в окне провайдера.
	Decline bool `json:"decline"`
}

// Checkout оформляет заказ из корзины.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if !h.decode(w, r, &req) {
		return
	}

	receipt, err := h.service.Checkout(r.Context(), service.CheckoutRequest{
		AddressID:  req.AddressID,
		Method:     checkout.Method(req.Method),
		Provider:   payment.Provider(req.Provider),
		CardNumber: req.CardNumber,
		PlanID:     req.PlanID,
		Decline:    req.Decline,
	})
	if err != nil {
		h.writeError(w, "checkout", err)
		return
	}

	h.writeJSON(w, http.StatusCreated, receipt)
}
