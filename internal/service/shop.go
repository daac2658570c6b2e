package service

import (
	"context"
	"fmt"

	"github.com/mmeshcher/simushop/internal/checkout"
	"github.com/mmeshcher/simushop/internal/model"
	"github.com/mmeshcher/simushop/internal/payment"
)

// CartView описывает содержимое корзины и сумму к оплате.
type CartView struct {
	Items []model.LineItem `json:"items"`
	Count int              `json:"count"`
	Quote checkout.Quote   `json:"quote"`
}

// CheckoutRequest описывает запрос на оформление заказа из корзины.
type CheckoutRequest struct {
	// AddressID пустой означает адрес по умолчанию.
	AddressID  string
	Method     checkout.Method
	Provider   payment.Provider
	CardNumber string
	PlanID     string
	Decline    bool
}

// Cart возвращает содержимое корзины.
func (s *Service) Cart() CartView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cartView()
}

// AddToCart добавляет товар в корзину.
func (s *Service) AddToCart(item model.LineItem) CartView {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart.Add(item)
	return s.cartView()
}

// UpdateCartItem задаёт количество товара в корзине.
func (s *Service) UpdateCartItem(productID string, quantity int) CartView {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart.UpdateQuantity(productID, quantity)
	return s.cartView()
}

// RemoveFromCart удаляет товар из корзины.
func (s *Service) RemoveFromCart(productID string) CartView {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart.Remove(productID)
	return s.cartView()
}

func (s *Service) cartView() CartView {
	return CartView{
		Items: s.cart.Items(),
		Count: s.cart.Count(),
		Quote: s.coordinator.Quote(s.cart),
	}
}

// Addresses возвращает адресную книгу.
func (s *Service) Addresses() []model.Address {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addresses.List()
}

// AddAddress добавляет адрес доставки.
func (s *Service) AddAddress(ctx context.Context, a model.Address) model.Address {
	s.mu.Lock()
	defer s.mu.Unlock()

	added := s.addresses.Add(a)
	s.saveAddresses(ctx)
	return added
}

// UpdateAddress изменяет адрес доставки.
func (s *Service) UpdateAddress(ctx context.Context, a model.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.addresses.Update(a); err != nil {
		return err
	}
	s.saveAddresses(ctx)
	return nil
}

// DeleteAddress удаляет адрес доставки.
func (s *Service) DeleteAddress(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.addresses.Delete(id); err != nil {
		return err
	}
	s.saveAddresses(ctx)
	return nil
}

// Checkout оформляет заказ из корзины выбранным способом оплаты.
//
// Обращение к внешнему провайдеру выполняется без блокировки сессии: календарь продолжает идти,
// пока провайдер отвечает.
func (s *Service) Checkout(ctx context.Context, req CheckoutRequest) (checkout.Receipt, error) {
	amount, err := s.checkoutAmount(req.AddressID)
	if err != nil {
		return checkout.Receipt{}, err
	}

	var outcome *payment.Result

	if req.Method == checkout.MethodExternal || req.Method == checkout.MethodInstallment {
		provider := req.Provider
		if req.Method == checkout.MethodInstallment {
			provider = payment.ProviderAffirm
		}

		res, err := s.payments.Authorize(ctx, payment.Request{
			Provider:   provider,
			Amount:     amount,
			CardNumber: req.CardNumber,
			PlanID:     req.PlanID,
			Decline:    req.Decline,
		})
		if err != nil {
			return checkout.Receipt{}, fmt.Errorf("authorize %s: %w", provider, err)
		}
		outcome = &res
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	receipt, err := s.coordinator.Checkout(s.cart, s.shippingAddress(req.AddressID), checkout.Payment{Method: req.Method, Outcome: outcome})
	if err != nil {
		return checkout.Receipt{}, err
	}

	s.saveLedger(ctx)
	s.saveOrders(ctx)
	if receipt.Plan != nil {
		s.savePlans(ctx)
	}
	return receipt, nil
}

// checkoutAmount проверяет корзину и адрес и возвращает сумму к оплате.
func (s *Service) checkoutAmount(addressID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.coordinator.Validate(s.cart, s.shippingAddress(addressID)); err != nil {
		return 0, err
	}
	return s.coordinator.Quote(s.cart).Total, nil
}

// shippingAddress возвращает выбранный адрес или адрес по умолчанию, если id пуст.
func (s *Service) shippingAddress(id string) *model.Address {
	if id != "" {
		if a, ok := s.addresses.Get(id); ok {
			return &a
		}
		return nil
	}
	if a, ok := s.addresses.Default(); ok {
		return &a
	}
	return nil
}
