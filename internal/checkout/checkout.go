// Package checkout оформляет покупку: проверяет условия, проводит оплату и создаёт заказ.
package checkout

import (
	"errors"
	"fmt"
	"time"

	"github.com/mmeshcher/simushop/internal/fulfillment"
	"github.com/mmeshcher/simushop/internal/installment"
	"github.com/mmeshcher/simushop/internal/ledger"
	"github.com/mmeshcher/simushop/internal/model"
	"github.com/mmeshcher/simushop/internal/notify"
	"github.com/mmeshcher/simushop/internal/payment"
)

var (
	// ErrEmptyCart возвращается при оформлении пустой корзины.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrNoAddress возвращается, если не выбран адрес доставки.
	ErrNoAddress = errors.New("no shipping address")
	// ErrPaymentDeclined возвращается, если внешний провайдер отклонил платёж.
	ErrPaymentDeclined = errors.New("payment declined")
	// ErrUnknownMethod возвращается для неизвестного способа оплаты.
	ErrUnknownMethod = errors.New("unknown payment method")
	// ErrMissingTerms возвращается, если провайдер рассрочки не передал условия.
	ErrMissingTerms = errors.New("financing terms are missing")
	// ErrTotalMismatch возвращается, если сумма, одобренная провайдером рассрочки, расходится с суммой заказа.
	ErrTotalMismatch = errors.New("financed total does not match the order")
)

// Method определяет способ оплаты заказа.
type Method string

const (
	MethodBalance     Method = "balance"
	MethodInstallment Method = "installment"
	MethodExternal    Method = "external"
)

// Cart описывает корзину, из которой оформляется заказ.
type Cart interface {
	Items() []model.LineItem
	Subtotal() int64
	Clear()
}

// Clock возвращает текущую симулированную дату.
type Clock interface {
	Now() time.Time
}

// Membership сообщает, действуют ли привилегии Prime.
type Membership interface {
	IsMember() bool
}

// Payment описывает выбранный способ оплаты и ответ внешнего провайдера, если он участвовал.
type Payment struct {
	Method  Method
	Outcome *payment.Result
}

// Receipt содержит результат успешного оформления.
type Receipt struct {
	Order model.Order        `json:"order"`
	Plan  *model.FinancePlan `json:"plan,omitempty"`
	Quote Quote              `json:"quote"`
}

// Coordinator оформляет покупки. Это единственная точка создания заказов и планов рассрочки.
type Coordinator struct {
	ledger     *ledger.Ledger
	clock      Clock
	membership Membership
	tracker    *fulfillment.Tracker
	scheduler  *installment.Scheduler
	pricing    Pricing
	notifier   notify.Notifier
}

// Deps объединяет зависимости координатора.
type Deps struct {
	Ledger     *ledger.Ledger
	Clock      Clock
	Membership Membership
	Tracker    *fulfillment.Tracker
	Scheduler  *installment.Scheduler
	Pricing    Pricing
	Notifier   notify.Notifier
}

// New создаёт координатор оформления заказов.
func New(d Deps) *Coordinator {
	n := d.Notifier
	if n == nil {
		n = notify.Discard
	}
	return &Coordinator{
		ledger:     d.Ledger,
		clock:      d.Clock,
		membership: d.Membership,
		tracker:    d.Tracker,
		scheduler:  d.Scheduler,
		pricing:    d.Pricing,
		notifier:   n,
	}
}

// Quote рассчитывает сумму к оплате для корзины.
func (c *Coordinator) Quote(cart Cart) Quote {
	return c.pricing.Quote(cart.Subtotal(), c.membership.IsMember())
}

// Validate проверяет, что заказ можно оформить, до обращения к платёжному провайдеру.
func (c *Coordinator) Validate(cart Cart, address *model.Address) error {
	if len(cart.Items()) == 0 {
		return ErrEmptyCart
	}
	if address == nil {
		return ErrNoAddress
	}
	return nil
}

// Checkout оформляет заказ из корзины. При любой ошибке состояние не меняется.
func (c *Coordinator) Checkout(cart Cart, address *model.Address, p Payment) (Receipt, error) {
	if err := c.Validate(cart, address); err != nil {
		return Receipt{}, err
	}
	items := cart.Items()

	isPrime := c.membership.IsMember()
	quote := c.pricing.Quote(cart.Subtotal(), isPrime)
	now := c.clock.Now()

	var terms *installment.Terms

	switch p.Method {
	case MethodBalance:
		if err := c.ledger.Charge(quote.Total); err != nil {
			return Receipt{}, err
		}
	case MethodExternal:
		if err := checkOutcome(p.Outcome); err != nil {
			return Receipt{}, err
		}
		// Успех внешнего провайдера всё равно требует списания с кошелька.
		if err := c.ledger.Charge(quote.Total); err != nil {
			return Receipt{}, err
		}
	case MethodInstallment:
		if err := checkOutcome(p.Outcome); err != nil {
			return Receipt{}, err
		}
		terms = p.Outcome.Terms
		if terms == nil {
			return Receipt{}, ErrMissingTerms
		}
		if terms.DurationMonths <= 0 || terms.InterestRate < 0 {
			return Receipt{}, installment.ErrInvalidTerms
		}
		// Нулевая сумма означает, что провайдер её не сообщил.
		if reported := p.Outcome.TotalAmount; reported != 0 {
			if want := installment.TotalWithInterest(quote.Total, terms.InterestRate); reported != want {
				return Receipt{}, fmt.Errorf("%w: provider %d, order %d", ErrTotalMismatch, reported, want)
			}
		}
	default:
		return Receipt{}, fmt.Errorf("%w: %q", ErrUnknownMethod, p.Method)
	}

	order := c.tracker.CreateOrder(now, items, quote.Total, *address, isPrime)
	receipt := Receipt{Order: order, Quote: quote}

	if terms != nil {
		plan, err := c.scheduler.CreatePlan(now, order.ID, quote.Total, *terms)
		if err != nil {
			return Receipt{}, fmt.Errorf("create plan: %w", err)
		}
		receipt.Plan = &plan
	}

	cart.Clear()
	c.notifier.Notify(notify.Notification{Kind: notify.KindOrderPlaced, Ref: order.ID, Amount: quote.Total, SimDate: now})

	return receipt, nil
}

func checkOutcome(res *payment.Result) error {
	if res == nil {
		return fmt.Errorf("%w: no response from provider", ErrPaymentDeclined)
	}
	if !res.Success {
		return fmt.Errorf("%w: %s", ErrPaymentDeclined, res.Reason)
	}
	return nil
}
