// Package model содержит доменные сущности симулятора магазина SimuShop.
package model

import "time"

// Address описывает адрес доставки из адресной книги покупателя.
type Address struct {
	ID        string `json:"id" validate:"required"`
	Name      string `json:"name" validate:"required"`
	Street    string `json:"street" validate:"required"`
	City      string `json:"city" validate:"required"`
	Zip       string `json:"zip" validate:"required"`
	IsDefault bool   `json:"isDefault,omitempty"`
}

// LineItem описывает позицию корзины или заказа. Цена указана в центах.
type LineItem struct {
	ProductID string `json:"productId" validate:"required"`
	Name      string `json:"name"`
	Price     int64  `json:"price" validate:"gte=0"`
	Quantity  int    `json:"quantity" validate:"gt=0"`
}

// OrderStatus описывает стадию доставки заказа.
type OrderStatus string

const (
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
)

// Rank возвращает порядковый номер статуса. Переходы разрешены только в сторону увеличения.
func (s OrderStatus) Rank() int {
	switch s {
	case OrderStatusProcessing:
		return 0
	case OrderStatusShipped:
		return 1
	case OrderStatusDelivered:
		return 2
	default:
		return -1
	}
}

// Order описывает оформленный заказ. Адрес и суммы фиксируются в момент покупки.
type Order struct {
	ID                string      `json:"id" validate:"required"`
	Items             []LineItem  `json:"items" validate:"dive"`
	Total             int64       `json:"total" validate:"gte=0"`
	ShippingAddress   Address     `json:"shippingAddress"`
	Status            OrderStatus `json:"status" validate:"oneof=Processing Shipped Delivered"`
	OrderDate         time.Time   `json:"orderDate" validate:"required"`
	EstimatedDelivery time.Time   `json:"estimatedDelivery" validate:"required,gtefield=OrderDate"`
}

// PlanStatus описывает состояние плана рассрочки.
type PlanStatus string

const (
	PlanStatusActive  PlanStatus = "Active"
	PlanStatusPaidOff PlanStatus = "PaidOff"
)

// FinancePlan описывает план рассрочки по заказу. Суммы указаны в центах.
type FinancePlan struct {
	ID              string     `json:"id" validate:"required"`
	OrderID         string     `json:"orderId" validate:"required"`
	TotalAmount     int64      `json:"totalAmount" validate:"gte=0"`
	AmountPaid      int64      `json:"amountPaid" validate:"gte=0,ltefield=TotalAmount"`
	MonthlyPayment  int64      `json:"monthlyPayment" validate:"gte=0"`
	PaymentsMade    int        `json:"paymentsMade" validate:"gte=0"`
	DurationMonths  int        `json:"duration" validate:"gt=0"`
	InterestRate    float64    `json:"interestRate" validate:"gte=0"`
	NextPaymentDate time.Time  `json:"nextPaymentDate" validate:"required"`
	Status          PlanStatus `json:"status" validate:"oneof=Active PaidOff"`
}

// Remaining возвращает непогашенный остаток по плану.
func (p FinancePlan) Remaining() int64 {
	return p.TotalAmount - p.AmountPaid
}

// SubscriptionStatus описывает состояние подписки Prime.
type SubscriptionStatus string

const (
	SubscriptionInactive      SubscriptionStatus = "inactive"
	SubscriptionActive        SubscriptionStatus = "active"
	SubscriptionPendingCancel SubscriptionStatus = "active-pending-cancel"
)

// Subscription содержит снимок состояния подписки Prime.
type Subscription struct {
	Status      SubscriptionStatus `json:"status" validate:"oneof=inactive active active-pending-cancel"`
	RenewalDate *time.Time         `json:"renewalDate,omitempty" validate:"required_unless=Status inactive"`
}

// IsMember сообщает, действуют ли привилегии Prime.
func (s Subscription) IsMember() bool {
	return s.Status == SubscriptionActive || s.Status == SubscriptionPendingCancel
}
