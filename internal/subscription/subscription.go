// Package subscription реализует жизненный цикл членства Prime.
package subscription

import (
	"errors"
	"fmt"
	"time"

	"github.com/mmeshcher/simushop/internal/ledger"
	"github.com/mmeshcher/simushop/internal/model"
	"github.com/mmeshcher/simushop/internal/notify"
)

// DefaultFee задаёт стоимость периода Prime в центах.
const DefaultFee int64 = 1499

// ErrAlreadySubscribed возвращается при попытке оформить подписку, которая уже действует.
var ErrAlreadySubscribed = errors.New("already subscribed")

// Manager управляет автоматом состояний Inactive → Active → PendingCancel.
type Manager struct {
	ledger   *ledger.Ledger
	notifier notify.Notifier
	fee      int64

	status  model.SubscriptionStatus
	renewal time.Time
}

// New создаёт менеджер неактивной подписки.
func New(l *ledger.Ledger, fee int64, n notify.Notifier) *Manager {
	if n == nil {
		n = notify.Discard
	}
	return &Manager{
		ledger:   l,
		notifier: n,
		fee:      fee,
		status:   model.SubscriptionInactive,
	}
}

// Fee возвращает стоимость одного периода.
func (m *Manager) Fee() int64 {
	return m.fee
}

// Status возвращает текущее состояние.
func (m *Manager) Status() model.SubscriptionStatus {
	return m.status
}

// IsMember сообщает, действуют ли привилегии Prime.
func (m *Manager) IsMember() bool {
	return m.Snapshot().IsMember()
}

// Snapshot возвращает копию состояния для сохранения и отображения.
func (m *Manager) Snapshot() model.Subscription {
	s := model.Subscription{Status: m.status}
	if m.status != model.SubscriptionInactive {
		renewal := m.renewal
		s.RenewalDate = &renewal
	}
	return s
}

// Restore восстанавливает состояние из снимка. Снимок без даты продления считается неактивной подпиской.
func (m *Manager) Restore(s model.Subscription) {
	if s.Status == model.SubscriptionInactive || s.RenewalDate == nil {
		m.clear()
		return
	}
	m.status = s.Status
	m.renewal = *s.RenewalDate
}

// Subscribe списывает плату и активирует подписку до now + 1 месяц.
func (m *Manager) Subscribe(now time.Time) error {
	if m.status != model.SubscriptionInactive {
		return ErrAlreadySubscribed
	}
	if err := m.ledger.Charge(m.fee); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}

	m.status = model.SubscriptionActive
	m.renewal = now.AddDate(0, 1, 0)
	m.notifier.Notify(notify.Notification{Kind: notify.KindSubscribed, Amount: m.fee, SimDate: now})
	return nil
}

// RequestCancellation помечает активную подписку к отмене в дату продления.
// Повторный вызов ничего не меняет. Возвращает true, если состояние изменилось.
func (m *Manager) RequestCancellation(now time.Time) bool {
	if m.status != model.SubscriptionActive {
		return false
	}
	m.status = model.SubscriptionPendingCancel
	m.notifier.Notify(notify.Notification{Kind: notify.KindSubscriptionCancel, SimDate: now})
	return true
}

// ForceCancelNow немедленно переводит подписку в Inactive из любого состояния.
func (m *Manager) ForceCancelNow(now time.Time) bool {
	if m.status == model.SubscriptionInactive {
		return false
	}
	m.clear()
	m.notifier.Notify(notify.Notification{Kind: notify.KindForceCancelled, SimDate: now})
	return true
}

// Evaluate применяет правило продления к дате now. Возвращает true, если состояние изменилось.
//
// Отложенная отмена всегда побеждает продление.
func (m *Manager) Evaluate(now time.Time) bool {
	if m.status == model.SubscriptionInactive || now.Before(m.renewal) {
		return false
	}

	if m.status == model.SubscriptionPendingCancel {
		m.clear()
		m.notifier.Notify(notify.Notification{Kind: notify.KindSubscriptionExpired, SimDate: now})
		return true
	}

	if !m.ledger.Deduct(m.fee) {
		m.clear()
		m.notifier.Notify(notify.Notification{Kind: notify.KindRenewalFailed, Amount: m.fee, SimDate: now})
		return true
	}

	m.renewal = now.AddDate(0, 1, 0)
	m.notifier.Notify(notify.Notification{Kind: notify.KindRenewed, Amount: m.fee, SimDate: now})
	return true
}

func (m *Manager) clear() {
	m.status = model.SubscriptionInactive
	m.renewal = time.Time{}
}
