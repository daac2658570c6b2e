// Package fulfillment отслеживает доставку заказов по симулированному времени.
package fulfillment

import (
	"time"

	"github.com/google/uuid"

	"github.com/mmeshcher/simushop/internal/model"
	"github.com/mmeshcher/simushop/internal/notify"
)

// Day задаёт длительность одного симулированного дня.
const Day = 24 * time.Hour

// Durations задаёт сроки обработки и доставки.
type Durations struct {
	Processing time.Duration
	Normal     time.Duration
	Prime      time.Duration
}

// DefaultDurations возвращает стандартные сроки: 5 дней обработки, 30 дней обычной доставки и 10 дней для Prime.
func DefaultDurations() Durations {
	return Durations{
		Processing: 5 * Day,
		Normal:     30 * Day,
		Prime:      10 * Day,
	}
}

// Tracker хранит историю заказов в порядке оформления и продвигает их статусы.
type Tracker struct {
	durations Durations
	notifier  notify.Notifier
	orders    []model.Order
}

// New создаёт трекер с пустой историей заказов.
func New(d Durations, n notify.Notifier) *Tracker {
	if n == nil {
		n = notify.Discard
	}
	return &Tracker{durations: d, notifier: n}
}

// CreateOrder добавляет заказ в историю. Срок доставки фиксируется в момент оформления.
func (t *Tracker) CreateOrder(now time.Time, items []model.LineItem, total int64, address model.Address, isPrime bool) model.Order {
	shipping := t.durations.Normal
	if isPrime {
		shipping = t.durations.Prime
	}

	snapshot := make([]model.LineItem, len(items))
	copy(snapshot, items)

	order := model.Order{
		ID:                uuid.NewString(),
		Items:             snapshot,
		Total:             total,
		ShippingAddress:   address,
		Status:            model.OrderStatusProcessing,
		OrderDate:         now,
		EstimatedDelivery: now.Add(shipping),
	}
	t.orders = append(t.orders, order)
	return order
}

// Orders возвращает копию истории заказов.
func (t *Tracker) Orders() []model.Order {
	res := make([]model.Order, len(t.orders))
	copy(res, t.orders)
	return res
}

// Restore заменяет историю заказов сохранённой.
func (t *Tracker) Restore(orders []model.Order) {
	t.orders = make([]model.Order, len(orders))
	copy(t.orders, orders)
}

// Reset очищает историю заказов.
func (t *Tracker) Reset() {
	t.orders = nil
}

// Evaluate пересчитывает статусы всех недоставленных заказов. Возвращает true, если хотя бы один изменился.
func (t *Tracker) Evaluate(now time.Time) bool {
	changed := false
	for i := range t.orders {
		o := &t.orders[i]
		if o.Status == model.OrderStatusDelivered {
			continue
		}

		next := t.statusAt(*o, now)
		if next.Rank() <= o.Status.Rank() {
			continue
		}

		o.Status = next
		changed = true

		kind := notify.KindOrderShipped
		if next == model.OrderStatusDelivered {
			kind = notify.KindOrderDelivered
		}
		t.notifier.Notify(notify.Notification{Kind: kind, Ref: o.ID, SimDate: now})
	}
	return changed
}

func (t *Tracker) statusAt(o model.Order, now time.Time) model.OrderStatus {
	elapsed := now.Sub(o.OrderDate)
	shipping := o.EstimatedDelivery.Sub(o.OrderDate)

	switch {
	case elapsed >= shipping:
		return model.OrderStatusDelivered
	case elapsed >= t.durations.Processing:
		return model.OrderStatusShipped
	default:
		return model.OrderStatusProcessing
	}
}
