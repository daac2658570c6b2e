// Package payment моделирует внешних платёжных провайдеров. Ядро получает от них только итог: успех или отказ.
package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/mmeshcher/simushop/internal/installment"
	"github.com/mmeshcher/simushop/internal/validation"
)

// Provider определяет внешний платёжный сценарий.
type Provider string

const (
	ProviderCard      Provider = "card"
	ProviderPayPal    Provider = "paypal"
	ProviderGooglePay Provider = "googlepay"
	ProviderApplePay  Provider = "applepay"
	ProviderPayBud    Provider = "paybud"
	ProviderAffirm    Provider = "affirm"
)

var (
	// ErrUnknownProvider возвращается для неизвестного провайдера.
	ErrUnknownProvider = errors.New("unknown payment provider")
	// ErrUnknownPlan возвращается, если выбран несуществующий вариант рассрочки.
	ErrUnknownPlan = errors.New("unknown financing plan")
)

// Request описывает запрос к провайдеру.
type Request struct {
	Provider   Provider
	Amount     int64
	CardNumber string
	PlanID     string
	// Decline имитирует отказ пользователя или провайдера.
	Decline bool
}

// Result описывает итоговый ответ провайдера.
type Result struct {
	Success bool
	Reason  string
	// Terms и TotalAmount заполняются только провайдером рассрочки.
	Terms       *installment.Terms
	TotalAmount int64
}

// Declined формирует отказ с причиной.
func Declined(reason string) Result {
	return Result{Success: false, Reason: reason}
}

// Authorizer проводит платёж у внешнего провайдера.
type Authorizer interface {
	Authorize(ctx context.Context, req Request) (Result, error)
}

// FinanceOption описывает вариант рассрочки, предлагаемый провайдером Affirm.
type FinanceOption struct {
	ID             string  `json:"id"`
	DurationMonths int     `json:"durationMonths"`
	InterestRate   float64 `json:"interestRate"`
}

// FinanceOptions возвращает доступные варианты рассрочки.
func FinanceOptions() []FinanceOption {
	return []FinanceOption{
		{ID: "1", DurationMonths: 3, InterestRate: 0},
		{ID: "2", DurationMonths: 6, InterestRate: 0.0499},
		{ID: "3", DurationMonths: 12, InterestRate: 0.0999},
	}
}

// FindFinanceOption ищет вариант рассрочки по идентификатору.
func FindFinanceOption(id string) (FinanceOption, error) {
	for _, o := range FinanceOptions() {
		if o.ID == id {
			return o, nil
		}
	}
	return FinanceOption{}, fmt.Errorf("%w: %q", ErrUnknownPlan, id)
}

// Simulator проводит платежи локально без обращения к сети.
type Simulator struct{}

// Authorize имитирует прохождение платёжного сценария провайдера.
func (Simulator) Authorize(_ context.Context, req Request) (Result, error) {
	if req.Decline {
		return Declined("payment cancelled"), nil
	}

	switch req.Provider {
	case ProviderCard:
		if !validation.IsValidCardNumber(req.CardNumber) {
			return Declined("invalid card number"), nil
		}
		return Result{Success: true}, nil
	case ProviderPayPal, ProviderGooglePay, ProviderApplePay, ProviderPayBud:
		return Result{Success: true}, nil
	case ProviderAffirm:
		opt, err := FindFinanceOption(req.PlanID)
		if err != nil {
			return Result{}, err
		}
		return Result{
			Success:     true,
			Terms:       &installment.Terms{DurationMonths: opt.DurationMonths, InterestRate: opt.InterestRate},
			TotalAmount: installment.TotalWithInterest(req.Amount, opt.InterestRate),
		}, nil
	default:
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownProvider, req.Provider)
	}
}
