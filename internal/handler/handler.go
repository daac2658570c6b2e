// Package handler содержит HTTP-обработчики API симулятора SimuShop.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mmeshcher/simushop/internal/addressbook"
	"github.com/mmeshcher/simushop/internal/checkout"
	"github.com/mmeshcher/simushop/internal/installment"
	"github.com/mmeshcher/simushop/internal/ledger"
	"github.com/mmeshcher/simushop/internal/middleware"
	"github.com/mmeshcher/simushop/internal/model"
	"github.com/mmeshcher/simushop/internal/notify"
	"github.com/mmeshcher/simushop/internal/payment"
	"github.com/mmeshcher/simushop/internal/service"
	"github.com/mmeshcher/simushop/internal/subscription"
)

// Service определяет контракт сессии покупателя, используемой HTTP-обработчиками.
type Service interface {
	Profile() (string, bool)
	Signup(ctx context.Context, name string) error
	Now() time.Time
	ResetClock(ctx context.Context, confirm bool) (time.Time, error)
	Balance() int64
	AddFunds(ctx context.Context, amount int64) (int64, error)
	Subscription() model.Subscription
	PrimeFee() int64
	Subscribe(ctx context.Context) (model.Subscription, error)
	CancelSubscription(ctx context.Context) model.Subscription
	Cart() service.CartView
	AddToCart(item model.LineItem) service.CartView
	UpdateCartItem(productID string, quantity int) service.CartView
	RemoveFromCart(productID string) service.CartView
	Addresses() []model.Address
	AddAddress(ctx context.Context, a model.Address) model.Address
	UpdateAddress(ctx context.Context, a model.Address) error
	DeleteAddress(ctx context.Context, id string) error
	Checkout(ctx context.Context, req service.CheckoutRequest) (checkout.Receipt, error)
	Orders() []model.Order
	Plans() []model.FinancePlan
	Notifications() []notify.Notification
	DeleteAccount(ctx context.Context) error
}

// Handler реализует HTTP-обработчики API симулятора.
type Handler struct {
	service  Service
	logger   *zap.Logger
	gate     *middleware.SessionGate
	limiter  func(http.Handler) http.Handler
	validate *validator.Validate
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
// limiter применяется к изменяющим маршрутам и может быть nil.
func NewHandler(s Service, logger *zap.Logger, gate *middleware.SessionGate, limiter func(http.Handler) http.Handler) *Handler {
	return &Handler{
		service:  s,
		logger:   logger,
		gate:     gate,
		limiter:  limiter,
		validate: validator.New(),
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encode response error", zap.Error(err))
	}
}

// decode читает JSON-тело запроса и проверяет его по тегам validate.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

// writeError переводит доменную ошибку в HTTP-статус.
func (h *Handler) writeError(w http.ResponseWriter, op string, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, ledger.ErrInsufficientFunds), errors.Is(err, checkout.ErrPaymentDeclined):
		status = http.StatusPaymentRequired
	case errors.Is(err, ledger.ErrNegativeAmount), errors.Is(err, service.ErrNameRequired):
		status = http.StatusBadRequest
	case errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, checkout.ErrNoAddress),
		errors.Is(err, checkout.ErrUnknownMethod),
		errors.Is(err, checkout.ErrMissingTerms),
		errors.Is(err, checkout.ErrTotalMismatch),
		errors.Is(err, installment.ErrInvalidTerms),
		errors.Is(err, payment.ErrUnknownProvider),
		errors.Is(err, payment.ErrUnknownPlan):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, subscription.ErrAlreadySubscribed), errors.Is(err, service.ErrResetNeedsConfirmation):
		status = http.StatusConflict
	case errors.Is(err, addressbook.ErrAddressNotFound):
		status = http.StatusNotFound
	}

	if status == http.StatusInternalServerError {
		h.logger.Error(op+" error", zap.Error(err))
		http.Error(w, http.StatusText(status), status)
		return
	}

	h.logger.Debug(op+" rejected", zap.Error(err), zap.Int("status", status))
	http.Error(w, err.Error(), status)
}

type signupRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type profileResponse struct {
	Name     string `json:"name"`
	SignedUp bool   `json:"signedUp"`
}

// Signup регистрирует покупателя и выдаёт cookie сессии.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.service.Signup(r.Context(), req.Name); err != nil {
		h.writeError(w, "signup", err)
		return
	}

	name, signedUp := h.service.Profile()
	h.gate.SetSessionCookie(w, name)
	h.writeJSON(w, http.StatusOK, profileResponse{Name: name, SignedUp: signedUp})
}

// GetProfile возвращает профиль текущего покупателя.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	name, signedUp := h.service.Profile()
	h.writeJSON(w, http.StatusOK, profileResponse{Name: name, SignedUp: signedUp})
}

type clockResponse struct {
	SimulatedDate time.Time `json:"simulatedDate"`
}

// GetClock возвращает текущую симулированную дату.
func (h *Handler) GetClock(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, clockResponse{SimulatedDate: h.service.Now()})
}

// ResetClock возвращает календарь к реальной дате. Параметр confirm подтверждает отмену Prime.
func (h *Handler) ResetClock(w http.ResponseWriter, r *http.Request) {
	confirm := false
	if v := r.URL.Query().Get("confirm"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		confirm = parsed
	}

	now, err := h.service.ResetClock(r.Context(), confirm)
	if err != nil {
		h.writeError(w, "reset clock", err)
		return
	}

	h.writeJSON(w, http.StatusOK, clockResponse{SimulatedDate: now})
}

type walletResponse struct {
	Balance int64 `json:"balance"`
}

type fundsRequest struct {
	Amount int64 `json:"amount" validate:"gt=0"`
}

// GetWallet возвращает баланс кошелька.
func (h *Handler) GetWallet(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, walletResponse{Balance: h.service.Balance()})
}

// AddFunds пополняет кошелёк.
func (h *Handler) AddFunds(w http.ResponseWriter, r *http.Request) {
	var req fundsRequest
	if !h.decode(w, r, &req) {
		return
	}

	balance, err := h.service.AddFunds(r.Context(), req.Amount)
	if err != nil {
		h.writeError(w, "add funds", err)
		return
	}

	h.writeJSON(w, http.StatusOK, walletResponse{Balance: balance})
}

type primeResponse struct {
	model.Subscription
	Member bool  `json:"member"`
	Fee    int64 `json:"fee"`
}

func (h *Handler) primeView(s model.Subscription) primeResponse {
	return primeResponse{Subscription: s, Member: s.IsMember(), Fee: h.service.PrimeFee()}
}

// GetPrime возвращает состояние подписки Prime.
func (h *Handler) GetPrime(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.primeView(h.service.Subscription()))
}

// Subscribe оформляет подписку Prime.
func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	sub, err := h.service.Subscribe(r.Context())
	if err != nil {
		h.writeError(w, "subscribe", err)
		return
	}
	h.writeJSON(w, http.StatusOK, h.primeView(sub))
}

// CancelPrime запрашивает отмену подписки в дату продления.
func (h *Handler) CancelPrime(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.primeView(h.service.CancelSubscription(r.Context())))
}

// GetOrders возвращает историю заказов.
func (h *Handler) GetOrders(w http.ResponseWriter, r *http.Request) {
	orders := h.service.Orders()
	if len(orders) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.writeJSON(w, http.StatusOK, orders)
}

// GetPlans возвращает планы рассрочки.
func (h *Handler) GetPlans(w http.ResponseWriter, r *http.Request) {
	plans := h.service.Plans()
	if len(plans) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.writeJSON(w, http.StatusOK, plans)
}

// GetFinanceOptions возвращает доступные варианты рассрочки.
func (h *Handler) GetFinanceOptions(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, payment.FinanceOptions())
}

type notificationResponse struct {
	Kind    notify.Kind `json:"kind"`
	Message string      `json:"message"`
	Failure bool        `json:"failure"`
	Ref     string      `json:"ref,omitempty"`
	Amount  int64       `json:"amount,omitempty"`
	SimDate time.Time   `json:"simDate"`
}

// GetNotifications возвращает последние уведомления, от новых к старым.
func (h *Handler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	items := h.service.Notifications()

	resp := make([]notificationResponse, 0, len(items))
	for i := len(items) - 1; i >= 0; i-- {
		n := items[i]
		resp = append(resp, notificationResponse{
			Kind:    n.Kind,
			Message: n.Message(),
			Failure: n.Failure(),
			Ref:     n.Ref,
			Amount:  n.Amount,
			SimDate: n.SimDate,
		})
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// DeleteAccount удаляет все данные покупателя и закрывает сессию.
func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteAccount(r.Context()); err != nil {
		h.writeError(w, "delete account", err)
		return
	}

	h.gate.ClearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func urlParam(r *http.Request, name string) string {
	return chi.URLParam(r, name)
}
