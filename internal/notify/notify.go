// Package notify передаёт наружу видимые пользователю переходы состояний.
package notify

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Kind определяет тип перехода, о котором уведомляется покупатель.
type Kind string

const (
	KindSubscribed          Kind = "subscription_started"
	KindSubscriptionCancel  Kind = "subscription_cancel_requested"
	KindSubscriptionExpired Kind = "subscription_expired"
	KindRenewed             Kind = "subscription_renewed"
	KindRenewalFailed       Kind = "subscription_renewal_failed"
	KindForceCancelled      Kind = "subscription_force_cancelled"
	KindPaymentMade         Kind = "installment_payment_made"
	KindPaymentFailed       Kind = "installment_payment_failed"
	KindPlanPaidOff         Kind = "installment_plan_paid_off"
	KindOrderShipped        Kind = "order_shipped"
	KindOrderDelivered      Kind = "order_delivered"
	KindOrderPlaced         Kind = "order_placed"
)

// Notification описывает одно уведомление. Amount указывается в центах, если применимо.
type Notification struct {
	Kind    Kind      `json:"kind"`
	Ref     string    `json:"ref,omitempty"`
	Amount  int64     `json:"amount,omitempty"`
	SimDate time.Time `json:"simDate"`
}

// Failure сообщает, относится ли уведомление к неудачному переходу.
func (n Notification) Failure() bool {
	return n.Kind == KindRenewalFailed || n.Kind == KindPaymentFailed
}

// Message формирует человекочитаемый текст уведомления.
func (n Notification) Message() string {
	switch n.Kind {
	case KindSubscribed:
		return "Welcome to Prime! You now get expedited virtual shipping."
	case KindSubscriptionCancel:
		return "Your Prime membership will end on the renewal date."
	case KindSubscriptionExpired:
		return "Your Prime membership has expired."
	case KindRenewed:
		return fmt.Sprintf("Your Prime membership renewed for %s.", FormatCents(n.Amount))
	case KindRenewalFailed:
		return "Prime renewal failed: insufficient funds."
	case KindForceCancelled:
		return "Your Prime membership has been cancelled."
	case KindPaymentMade:
		return fmt.Sprintf("Your payment of %s was successful.", FormatCents(n.Amount))
	case KindPaymentFailed:
		return "Insufficient funds for your scheduled payment."
	case KindPlanPaidOff:
		return "Your financing plan is paid off."
	case KindOrderShipped:
		return fmt.Sprintf("Order %s has shipped.", n.Ref)
	case KindOrderDelivered:
		return fmt.Sprintf("Order %s was delivered.", n.Ref)
	case KindOrderPlaced:
		return fmt.Sprintf("Order %s placed for %s.", n.Ref, FormatCents(n.Amount))
	default:
		return string(n.Kind)
	}
}

// FormatCents форматирует сумму в центах как долларовую строку.
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}

// Notifier принимает уведомления от автоматов состояний.
type Notifier interface {
	Notify(n Notification)
}

// Discard отбрасывает все уведомления.
var Discard Notifier = discard{}

type discard struct{}

func (discard) Notify(Notification) {}

// Feed хранит последние уведомления и дублирует их в журнал.
type Feed struct {
	mu     sync.Mutex
	logger *zap.Logger
	limit  int
	items  []Notification
}

// NewFeed создаёт ленту уведомлений ограниченного размера.
func NewFeed(logger *zap.Logger, limit int) *Feed {
	if logger == nil {
		logger = zap.NewNop()
	}
	if limit <= 0 {
		limit = 50
	}
	return &Feed{logger: logger, limit: limit}
}

// Notify добавляет уведомление в ленту.
func (f *Feed) Notify(n Notification) {
	fields := []zap.Field{
		zap.String("kind", string(n.Kind)),
		zap.String("ref", n.Ref),
		zap.Int64("amount", n.Amount),
		zap.Time("simDate", n.SimDate),
	}
	if n.Failure() {
		f.logger.Warn(n.Message(), fields...)
	} else {
		f.logger.Info(n.Message(), fields...)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.items = append(f.items, n)
	if len(f.items) > f.limit {
		f.items = f.items[len(f.items)-f.limit:]
	}
}

// Recent возвращает копию накопленных уведомлений, от старых к новым.
func (f *Feed) Recent() []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()

	res := make([]Notification, len(f.items))
	copy(res, f.items)
	return res
}

// Reset очищает ленту.
func (f *Feed) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = nil
}
