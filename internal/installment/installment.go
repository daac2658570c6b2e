// Package installment реализует планировщик ежемесячных платежей по рассрочке.
package installment

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmeshcher/simushop/internal/ledger"
	"github.com/mmeshcher/simushop/internal/model"
	"github.com/mmeshcher/simushop/internal/notify"
)

// ErrInvalidTerms возвращается при некорректном сроке или ставке рассрочки.
var ErrInvalidTerms = errors.New("invalid financing terms")

// Terms описывает условия рассрочки.
type Terms struct {
	DurationMonths int     `json:"durationMonths"`
	InterestRate   float64 `json:"interestRate"`
}

// Scheduler хранит планы рассрочки и списывает с кошелька наступившие платежи.
type Scheduler struct {
	ledger   *ledger.Ledger
	notifier notify.Notifier
	plans    []model.FinancePlan
}

// New создаёт планировщик без планов.
func New(l *ledger.Ledger, n notify.Notifier) *Scheduler {
	if n == nil {
		n = notify.Discard
	}
	return &Scheduler{ledger: l, notifier: n}
}

// TotalWithInterest возвращает round(total × (1 + rate)).
func TotalWithInterest(total int64, rate float64) int64 {
	factor := decimal.NewFromInt(1).Add(decimal.NewFromFloat(rate))
	return decimal.NewFromInt(total).Mul(factor).Round(0).IntPart()
}

// CreatePlan регистрирует план по заказу. Первый платёж наступает через месяц после now.
func (s *Scheduler) CreatePlan(now time.Time, orderID string, total int64, terms Terms) (model.FinancePlan, error) {
	if terms.DurationMonths <= 0 || terms.InterestRate < 0 || total < 0 {
		return model.FinancePlan{}, ErrInvalidTerms
	}

	amount := TotalWithInterest(total, terms.InterestRate)
	months := int64(terms.DurationMonths)

	plan := model.FinancePlan{
		ID:              uuid.NewString(),
		OrderID:         orderID,
		TotalAmount:     amount,
		MonthlyPayment:  (amount + months - 1) / months,
		DurationMonths:  terms.DurationMonths,
		InterestRate:    terms.InterestRate,
		NextPaymentDate: now.AddDate(0, 1, 0),
		Status:          model.PlanStatusActive,
	}
	s.plans = append(s.plans, plan)
	return plan, nil
}

// Plans возвращает копию всех планов.
func (s *Scheduler) Plans() []model.FinancePlan {
	res := make([]model.FinancePlan, len(s.plans))
	copy(res, s.plans)
	return res
}

// Restore заменяет планы сохранёнными.
func (s *Scheduler) Restore(plans []model.FinancePlan) {
	s.plans = make([]model.FinancePlan, len(plans))
	copy(s.plans, plans)
}

// Reset удаляет все планы.
func (s *Scheduler) Reset() {
	s.plans = nil
}

// Evaluate проводит наступившие платежи. Неудачный платёж повторяется на каждом следующем тике.
// Возвращает true, если хотя бы один план изменился.
func (s *Scheduler) Evaluate(now time.Time) bool {
	changed := false
	for i := range s.plans {
		p := &s.plans[i]
		if p.Status != model.PlanStatusActive || now.Before(p.NextPaymentDate) {
			continue
		}

		payment := min(p.MonthlyPayment, p.Remaining())
		if payment <= 0 {
			p.Status = model.PlanStatusPaidOff
			changed = true
			continue
		}

		if !s.ledger.Deduct(payment) {
			s.notifier.Notify(notify.Notification{Kind: notify.KindPaymentFailed, Ref: p.ID, Amount: payment, SimDate: now})
			continue
		}

		p.AmountPaid += payment
		p.PaymentsMade++
		changed = true
		s.notifier.Notify(notify.Notification{Kind: notify.KindPaymentMade, Ref: p.ID, Amount: payment, SimDate: now})

		if p.AmountPaid >= p.TotalAmount {
			p.Status = model.PlanStatusPaidOff
			s.notifier.Notify(notify.Notification{Kind: notify.KindPlanPaidOff, Ref: p.ID, SimDate: now})
			continue
		}
		p.NextPaymentDate = p.NextPaymentDate.AddDate(0, 1, 0)
	}
	return changed
}
